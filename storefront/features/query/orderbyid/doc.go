// Package orderbyid implements the read of a single order, gated by the viewing rule:
// admins and the owning customer may read an order, and guest orders are readable by anyone who knows the id.
package orderbyid
