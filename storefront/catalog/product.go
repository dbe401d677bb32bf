package catalog

import (
	"context"
	"errors"

	"github.com/AntonStoeckl/storefront-orders/storefront/core"
)

var (
	ErrProductNotFound      = errors.New("product not found")
	ErrReadingCatalogFailed = errors.New("reading catalog failed")
	ErrInvalidSeed          = errors.New("invalid catalog seed")
)

// Product is a catalog product as far as cart and checkout are concerned. Prices are in DZD.
type Product struct {
	ID           int64  `json:"id" yaml:"id"`
	Name         string `json:"nom" yaml:"name"`
	Price        int64  `json:"prix" yaml:"price"`
	PromoPrice   *int64 `json:"prix_promo,omitempty" yaml:"promo_price"`
	PromoPercent *int   `json:"pourcentage_promo,omitempty" yaml:"promo_percent"`
	Stock        int    `json:"stock" yaml:"stock"`
	OutOfStock   bool   `json:"rupture_stock" yaml:"out_of_stock"`
}

// EffectivePrice is the price a cart line freezes on first insertion: the promotional price if it is
// set and lower than the base price, else the base price reduced by the promotional percentage
// (rounded down to the dinar), else the base price.
func (p Product) EffectivePrice() int64 {
	if p.PromoPrice != nil && *p.PromoPrice >= 0 && *p.PromoPrice < p.Price {
		return *p.PromoPrice
	}

	if p.PromoPercent != nil && *p.PromoPercent > 0 && *p.PromoPercent <= 100 {
		return p.Price * int64(100-*p.PromoPercent) / 100
	}

	return p.Price
}

// AvailableStock is the quantity a cart may hold; out-of-stock products have none.
func (p Product) AvailableStock() int {
	if p.OutOfStock || p.Stock < 0 {
		return 0
	}

	return p.Stock
}

// ToStock converts the product to what the placement decision validates against.
func (p Product) ToStock() core.ProductStock {
	return core.ProductStock{
		ProductID:    p.ID,
		Name:         p.Name,
		Stock:        p.Stock,
		OutOfStock:   p.OutOfStock,
		CatalogPrice: p.EffectivePrice(),
	}
}

// ProductReader reads products by id. Unknown ids are simply missing from the result.
type ProductReader interface {
	ProductsByID(ctx context.Context, ids []int64) (map[int64]Product, error)
}

// StockByID reads the given products and converts them for the placement decision.
func StockByID(ctx context.Context, reader ProductReader, ids []int64) (map[int64]core.ProductStock, error) {
	products, err := reader.ProductsByID(ctx, uniqueIDs(ids))
	if err != nil {
		return nil, err
	}

	stock := make(map[int64]core.ProductStock, len(products))
	for id, p := range products {
		stock[id] = p.ToStock()
	}

	return stock, nil
}

// Get reads one product or returns ErrProductNotFound.
func Get(ctx context.Context, reader ProductReader, id int64) (Product, error) {
	products, err := reader.ProductsByID(ctx, []int64{id})
	if err != nil {
		return Product{}, err
	}

	p, ok := products[id]
	if !ok {
		return Product{}, ErrProductNotFound
	}

	return p, nil
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	result := make([]int64, 0, len(ids))

	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}

		seen[id] = struct{}{}
		result = append(result, id)
	}

	return result
}
