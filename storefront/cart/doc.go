// Package cart holds the shopper's cart: lines keyed by product, color, and size, with the unit
// price frozen when a line is first added.
//
// A Cart is UI state owned by one session and is not safe for concurrent use. Stores persist it
// between requests.
package cart
