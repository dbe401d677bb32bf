package checkout

import (
	"context"

	"github.com/AntonStoeckl/storefront-orders/storefront/cart"
)

// OrderSubmitter sends an assembled submission to the order API.
type OrderSubmitter interface {
	Submit(ctx context.Context, submission Submission, bearerToken string) (SubmitResult, error)
}

// Checkout runs assemble -> submit -> clear for one browsing session.
type Checkout struct {
	assembler Assembler
	submitter OrderSubmitter
	carts     cart.Store
}

// New creates a Checkout.
func New(assembler Assembler, submitter OrderSubmitter, carts cart.Store) Checkout {
	return Checkout{
		assembler: assembler,
		submitter: submitter,
		carts:     carts,
	}
}

// PlaceOrder submits the session's cart. The cart is cleared only after the API accepted the order;
// on any error it is left as it was so the customer can retry.
func (c Checkout) PlaceOrder(
	ctx context.Context,
	sessionID string,
	customer CustomerInfo,
	delivery DeliveryChoice,
	bearerToken string,
) (SubmitResult, error) {

	current, err := c.carts.Load(ctx, sessionID)
	if err != nil {
		return SubmitResult{}, err
	}

	submission, err := c.assembler.Assemble(ctx, current, customer, delivery)
	if err != nil {
		return SubmitResult{}, err
	}

	result, err := c.submitter.Submit(ctx, submission, bearerToken)
	if err != nil {
		return SubmitResult{}, err
	}

	current.Clear()

	if err = c.carts.Save(ctx, sessionID, current); err != nil {
		return result, err
	}

	return result, nil
}
