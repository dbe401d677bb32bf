package checkout_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/storefront-orders/storefront/cart"
	"github.com/AntonStoeckl/storefront-orders/storefront/catalog"
	"github.com/AntonStoeckl/storefront-orders/storefront/checkout"
	"github.com/AntonStoeckl/storefront-orders/storefront/core"
	"github.com/AntonStoeckl/storefront-orders/storefront/pricing"
)

var robe = catalog.Product{ID: 1, Name: "Robe kabyle", Price: 3500, Stock: 3}

type rendererStub struct {
	err error
}

func (r rendererStub) Render(_ context.Context, submission checkout.Submission) (checkout.Document, error) {
	if r.err != nil {
		return checkout.Document{}, r.err
	}

	return checkout.Document{FileName: "facture.pdf", Content: []byte("%PDF-1.4 total")}, nil
}

type submitterStub struct {
	calls int
	err   error
}

func (s *submitterStub) Submit(_ context.Context, _ checkout.Submission, _ string) (checkout.SubmitResult, error) {
	s.calls++
	if s.err != nil {
		return checkout.SubmitResult{}, s.err
	}

	return checkout.SubmitResult{OrderID: "order-1", Status: "en_attente", Total: 7590}, nil
}

func givenTable(t *testing.T) *pricing.Table {
	table, err := pricing.DefaultTable()
	require.NoError(t, err, "error in arranging test data")

	return table
}

func givenCartWithTwoRobes() *cart.Cart {
	c := cart.New()
	c.Add(robe, "rouge", 2, nil)

	return c
}

func validCustomer() checkout.CustomerInfo {
	return checkout.CustomerInfo{
		FullName: "Lydia Amrani",
		Email:    "lydia@example.dz",
		Phone:    "0555123456",
		Address:  "12 rue Abane Ramdane",
		City:     "Azazga",
	}
}

func tiziOuzouHomeExpress() checkout.DeliveryChoice {
	return checkout.DeliveryChoice{Region: "Tizi Ouzou", Method: "domicile", Speed: "express"}
}

func Test_Assembler_Assemble_ComputesTotals(t *testing.T) {
	// arrange
	assembler := checkout.NewAssembler(givenTable(t))

	// act
	submission, err := assembler.Assemble(context.Background(), givenCartWithTwoRobes(), validCustomer(), tiziOuzouHomeExpress())

	// assert
	require.NoError(t, err)
	assert.Equal(t, int64(7000), submission.Subtotal)
	assert.Equal(t, int64(590), submission.DeliveryFee)
	assert.Equal(t, int64(7590), submission.Total)
	assert.Equal(t, core.MethodHome, submission.Method)
	assert.Equal(t, []checkout.LineItem{{ProductID: 1, Quantity: 2, UnitPrice: 3500, Color: "rouge"}}, submission.Lines)
	assert.Nil(t, submission.Invoice)
}

func Test_Assembler_Assemble_Rejections(t *testing.T) {
	table := givenTable(t)

	blankName := validCustomer()
	blankName.FullName = ""

	badEmail := validCustomer()
	badEmail.Email = "lydia"

	testCases := []struct {
		name          string
		cart          *cart.Cart
		customer      checkout.CustomerInfo
		delivery      checkout.DeliveryChoice
		expectedErr   error
		expectedField string
	}{
		{name: "empty cart", cart: cart.New(), customer: validCustomer(), delivery: tiziOuzouHomeExpress(), expectedErr: checkout.ErrEmptyCart},
		{name: "nil cart", cart: nil, customer: validCustomer(), delivery: tiziOuzouHomeExpress(), expectedErr: checkout.ErrEmptyCart},
		{name: "blank full name", cart: givenCartWithTwoRobes(), customer: blankName, delivery: tiziOuzouHomeExpress(), expectedErr: core.ErrValidation, expectedField: "nom_complet"},
		{name: "invalid email", cart: givenCartWithTwoRobes(), customer: badEmail, delivery: tiziOuzouHomeExpress(), expectedErr: core.ErrValidation, expectedField: "email"},
		{name: "no region", cart: givenCartWithTwoRobes(), customer: validCustomer(), delivery: checkout.DeliveryChoice{Method: "domicile", Speed: "express"}, expectedErr: core.ErrValidation, expectedField: "wilaya"},
		{name: "unknown speed", cart: givenCartWithTwoRobes(), customer: validCustomer(), delivery: checkout.DeliveryChoice{Region: "Tizi Ouzou", Method: "domicile", Speed: "lente"}, expectedErr: core.ErrValidation, expectedField: "vitesse_livraison"},
		{name: "ineligible region", cart: givenCartWithTwoRobes(), customer: validCustomer(), delivery: checkout.DeliveryChoice{Region: "In Guezzam", Method: "domicile", Speed: "express"}, expectedErr: core.ErrDeliveryUnavailable},
		{name: "unavailable combination", cart: givenCartWithTwoRobes(), customer: validCustomer(), delivery: checkout.DeliveryChoice{Region: "Adrar", Method: "domicile", Speed: "economique"}, expectedErr: core.ErrDeliveryUnavailable},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// arrange
			renderer := &countingRenderer{}
			assembler := checkout.NewAssembler(table, checkout.WithInvoiceRenderer(renderer))

			// act
			_, err := assembler.Assemble(context.Background(), tc.cart, tc.customer, tc.delivery)

			// assert
			assert.ErrorIs(t, err, tc.expectedErr)
			assert.Zero(t, renderer.calls, "nothing is rendered for a rejected checkout")

			if tc.expectedField != "" {
				var verr *core.ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Contains(t, verr.Fields, tc.expectedField)
			}
		})
	}
}

type countingRenderer struct {
	calls int
}

func (r *countingRenderer) Render(ctx context.Context, submission checkout.Submission) (checkout.Document, error) {
	r.calls++

	return rendererStub{}.Render(ctx, submission)
}

func Test_Assembler_Assemble_AttachesInvoice(t *testing.T) {
	// arrange
	assembler := checkout.NewAssembler(givenTable(t), checkout.WithInvoiceRenderer(rendererStub{}))

	// act
	submission, err := assembler.Assemble(context.Background(), givenCartWithTwoRobes(), validCustomer(), tiziOuzouHomeExpress())

	// assert
	require.NoError(t, err)
	require.NotNil(t, submission.Invoice)
	assert.Equal(t, "facture.pdf", submission.Invoice.FileName)
}

func Test_Assembler_Assemble_FailsWhenRenderingFails(t *testing.T) {
	// arrange
	assembler := checkout.NewAssembler(givenTable(t), checkout.WithInvoiceRenderer(rendererStub{err: errors.New("no font")}))

	// act
	_, err := assembler.Assemble(context.Background(), givenCartWithTwoRobes(), validCustomer(), tiziOuzouHomeExpress())

	// assert
	assert.ErrorIs(t, err, checkout.ErrRenderingInvoiceFailed)
}

func Test_Submitter_Submit_PostsMultipartForm(t *testing.T) {
	// arrange
	var received struct {
		authorization string
		fields        map[string]string
		invoice       []byte
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/commandes", r.URL.Path)
		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			return
		}

		received.authorization = r.Header.Get("Authorization")
		received.fields = make(map[string]string)
		for k, v := range r.MultipartForm.Value {
			received.fields[k] = v[0]
		}

		if file, _, err := r.FormFile("facture"); assert.NoError(t, err) {
			received.invoice, _ = io.ReadAll(file)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"success":true,"data":{"id":"order-1","statut":"en_attente","total":7590}}`))
	}))
	t.Cleanup(server.Close)

	assembler := checkout.NewAssembler(givenTable(t), checkout.WithInvoiceRenderer(rendererStub{}))
	submission, err := assembler.Assemble(context.Background(), givenCartWithTwoRobes(), validCustomer(), tiziOuzouHomeExpress())
	require.NoError(t, err, "error in arranging test data")

	// act
	result, err := checkout.NewSubmitter(server.URL).Submit(context.Background(), submission, "token-1")

	// assert
	require.NoError(t, err)
	assert.Equal(t, "order-1", result.OrderID)
	assert.Equal(t, int64(7590), result.Total)
	assert.Equal(t, "Bearer token-1", received.authorization)
	assert.Equal(t, "Tizi Ouzou", received.fields["wilaya"])
	assert.Equal(t, "7000", received.fields["sous_total"])
	assert.Equal(t, []byte("%PDF-1.4 total"), received.invoice)

	var articles []checkout.LineItem
	require.NoError(t, jsoniter.ConfigFastest.UnmarshalFromString(received.fields["articles"], &articles))
	assert.Equal(t, submission.Lines, articles)
}

func Test_Submitter_Submit_ReturnsRejection(t *testing.T) {
	// arrange
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"success":false,"message":"validation failed","erreurs":{"email":"must be a valid email address"}}`))
	}))
	t.Cleanup(server.Close)

	submission := checkout.Submission{Lines: []checkout.LineItem{{ProductID: 1, Quantity: 1, UnitPrice: 3500}}}

	// act
	_, err := checkout.NewSubmitter(server.URL).Submit(context.Background(), submission, "")

	// assert
	assert.ErrorIs(t, err, checkout.ErrSubmissionRejected)

	var rejection *checkout.RejectionError
	require.ErrorAs(t, err, &rejection)
	assert.Equal(t, http.StatusBadRequest, rejection.StatusCode)
	assert.Equal(t, "must be a valid email address", rejection.Fields["email"])
}

func Test_Submitter_Submit_FailsOnGarbage(t *testing.T) {
	// arrange
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`<html>bad gateway</html>`))
	}))
	t.Cleanup(server.Close)

	// act
	_, err := checkout.NewSubmitter(server.URL).Submit(context.Background(), checkout.Submission{}, "")

	// assert
	assert.ErrorIs(t, err, checkout.ErrSubmittingOrderFailed)
}

func Test_Checkout_PlaceOrder_ClearsCartOnlyOnSuccess(t *testing.T) {
	testCases := []struct {
		name              string
		submitErr         error
		expectedCartItems int
	}{
		{name: "accepted", expectedCartItems: 0},
		{name: "rejected", submitErr: &checkout.RejectionError{StatusCode: 409}, expectedCartItems: 2},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// arrange
			ctx := context.Background()
			carts := cart.NewMemoryStore()
			require.NoError(t, carts.Save(ctx, "session-1", givenCartWithTwoRobes()), "error in arranging test data")
			submitter := &submitterStub{err: tc.submitErr}
			flow := checkout.New(checkout.NewAssembler(givenTable(t)), submitter, carts)

			// act
			_, err := flow.PlaceOrder(ctx, "session-1", validCustomer(), tiziOuzouHomeExpress(), "")

			// assert
			if tc.submitErr != nil {
				assert.ErrorIs(t, err, checkout.ErrSubmissionRejected)
			} else {
				require.NoError(t, err)
			}

			assert.Equal(t, 1, submitter.calls)

			stored, loadErr := carts.Load(ctx, "session-1")
			require.NoError(t, loadErr)
			assert.Equal(t, tc.expectedCartItems, stored.TotalItems())
		})
	}
}

func Test_Checkout_PlaceOrder_EmptyCartIsNotSubmitted(t *testing.T) {
	// arrange
	submitter := &submitterStub{}
	flow := checkout.New(checkout.NewAssembler(givenTable(t)), submitter, cart.NewMemoryStore())

	// act
	_, err := flow.PlaceOrder(context.Background(), "unknown-session", validCustomer(), tiziOuzouHomeExpress(), "")

	// assert
	assert.ErrorIs(t, err, checkout.ErrEmptyCart)
	assert.Zero(t, submitter.calls)
}
