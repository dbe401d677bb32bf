package shell_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/storefront-orders/orderstore"
	"github.com/AntonStoeckl/storefront-orders/storefront/core"
	"github.com/AntonStoeckl/storefront-orders/storefront/shell"
)

type contactForm struct {
	FullName string `json:"nom_complet" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Method   string `json:"methode_livraison" validate:"required,oneof=domicile bureau_a"`
}

func Test_ValidateStruct_ReportsWireFieldNames(t *testing.T) {
	// act
	err := shell.ValidateStruct(contactForm{Email: "not-an-email", Method: "drone"})

	// assert
	require.ErrorIs(t, err, core.ErrValidation)

	var verr *core.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "is required", verr.Fields["nom_complet"])
	assert.Equal(t, "must be a valid email address", verr.Fields["email"])
	assert.Equal(t, "must be one of: domicile, bureau_a", verr.Fields["methode_livraison"])
}

func Test_ValidateStruct_AcceptsValidInput(t *testing.T) {
	err := shell.ValidateStruct(contactForm{FullName: "Amel", Email: "amel@example.dz", Method: "domicile"})

	assert.NoError(t, err)
}

func Test_OrderListFrom_FillsEveryStatusCount(t *testing.T) {
	// arrange
	page := orderstore.OrderPage{
		Orders:         []orderstore.StorableOrder{},
		Page:           orderstore.NewPage(2, 10),
		TotalCount:     25,
		CountsByStatus: map[string]int{"en_attente": 20, "livree": 5},
	}

	// act
	list, err := shell.OrderListFrom(page)

	// assert
	require.NoError(t, err)
	assert.Equal(t, 3, list.TotalPages)
	assert.Equal(t, 2, list.Page)
	assert.Len(t, list.CountsByStatus, len(core.AllStatuses()))
	assert.Equal(t, 20, list.CountsByStatus[core.StatusPending])
	assert.Equal(t, 0, list.CountsByStatus[core.StatusShipped])
}
