// Package catalog is the read side of the product catalog as the order core sees it.
//
// The catalog itself is owned by another subsystem. This package only reads products: their
// current price, promotion, and stock. Two readers exist: GormReader for the catalog database
// and MemoryReader, seeded from YAML, for development and tests.
package catalog
