// Package checkout turns a cart plus the customer's delivery choices into an order submission
// and posts it to the order API.
//
// Assembly fails without submitting anything if the cart is empty, a required contact field is
// blank, or no delivery fee exists for the chosen region, method, and speed. Totals are computed
// from the prices frozen in the cart, never from the live catalog.
package checkout
