package core_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AntonStoeckl/storefront-orders/storefront/core"
)

func Test_ParseWireValues(t *testing.T) {
	status, ok := core.ParseStatus("expediee")
	assert.True(t, ok)
	assert.Equal(t, core.StatusShipped, status)

	_, ok = core.ParseStatus("shipped")
	assert.False(t, ok)

	method, ok := core.ParseMethod("bureau_b")
	assert.True(t, ok)
	assert.True(t, method.IsOffice())

	_, ok = core.ParseMethod("office")
	assert.False(t, ok)

	speed, ok := core.ParseSpeed("economique")
	assert.True(t, ok)
	assert.Equal(t, core.SpeedEconomy, speed)
}

func Test_Order_CanBeViewedBy(t *testing.T) {
	owned := givenOrder(ptr("cust-1"), core.StatusPending)
	guest := givenOrder(nil, core.StatusPending)

	assert.NoError(t, owned.CanBeViewedBy(core.CustomerActor("cust-1")))
	assert.NoError(t, owned.CanBeViewedBy(core.AdminActor("admin-1")))
	assert.ErrorIs(t, owned.CanBeViewedBy(core.CustomerActor("cust-2")), core.ErrNotOrderOwner)
	assert.ErrorIs(t, owned.CanBeViewedBy(core.GuestActor()), core.ErrNotOrderOwner)
	assert.NoError(t, guest.CanBeViewedBy(core.GuestActor()))
	assert.NoError(t, guest.CanBeViewedBy(core.CustomerActor("cust-2")))
}

func Test_TransitionPolicy_AllowedTargetsReturnsCopy(t *testing.T) {
	policy := core.DefaultTransitionPolicy()

	targets := policy.AllowedTargets(core.RoleCustomer, core.StatusPending)
	targets[0] = core.StatusShipped

	assert.Equal(t, []core.Status{core.StatusCancelled}, policy.AllowedTargets(core.RoleCustomer, core.StatusPending))
	assert.Empty(t, policy.AllowedTargets(core.RoleCustomer, core.StatusConfirmed))
	assert.Len(t, policy.AllowedTargets(core.RoleAdmin, core.StatusCancelled), 5)
}

func Test_ValidationError(t *testing.T) {
	verr := core.NewValidationError()
	assert.NoError(t, verr.OrNil())

	verr.Add("email", "required")
	verr.Add("email", "ignored")
	verr.Add("adresse", "required")

	err := verr.OrNil()
	assert.True(t, errors.Is(err, core.ErrValidation))
	assert.Equal(t, "validation failed: adresse: required, email: required", err.Error())
}
