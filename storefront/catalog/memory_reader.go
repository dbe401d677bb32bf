package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"gopkg.in/yaml.v3"
)

// MemoryReader is an in-memory ProductReader, safe for concurrent use.
type MemoryReader struct {
	mu       sync.RWMutex
	products map[int64]Product
}

type seedDocument struct {
	Products []Product `yaml:"products"`
}

func NewMemoryReader(products ...Product) *MemoryReader {
	r := &MemoryReader{products: make(map[int64]Product, len(products))}

	for _, p := range products {
		r.products[p.ID] = p
	}

	return r
}

// LoadSeed builds a MemoryReader from a YAML document with a top-level "products" list.
func LoadSeed(in io.Reader) (*MemoryReader, error) {
	decoder := yaml.NewDecoder(in)
	decoder.KnownFields(true)

	var doc seedDocument
	if err := decoder.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Join(ErrInvalidSeed, err)
	}

	r := NewMemoryReader()

	for _, p := range doc.Products {
		if p.ID <= 0 || p.Name == "" || p.Price < 0 {
			return nil, errors.Join(ErrInvalidSeed, fmt.Errorf("product %d %q", p.ID, p.Name))
		}

		if _, exists := r.products[p.ID]; exists {
			return nil, errors.Join(ErrInvalidSeed, fmt.Errorf("duplicate product id %d", p.ID))
		}

		r.products[p.ID] = p
	}

	return r, nil
}

// Put inserts or replaces a product.
func (r *MemoryReader) Put(p Product) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.products[p.ID] = p
}

func (r *MemoryReader) ProductsByID(ctx context.Context, ids []int64) (map[int64]Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Join(ErrReadingCatalogFailed, err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[int64]Product, len(ids))

	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			result[id] = p
		}
	}

	return result, nil
}
