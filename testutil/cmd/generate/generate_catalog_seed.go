package main

import (
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/AntonStoeckl/storefront-orders/storefront/catalog"
)

const (
	defaultNumProducts = 200
	defaultOutputFile  = "testutil/fixtures/catalog.yaml"

	minPrice = 800
	maxPrice = 25000

	// Roughly one product in ten is on promotion, one in twenty is out of stock.
	promoEvery      = 10
	outOfStockEvery = 20
)

var garments = []string{"Robe kabyle", "Burnous", "Gandoura", "Karakou", "Djellaba", "Chedda", "Foulard", "Caftan"}
var fabrics = []string{"soie", "velours", "coton", "lin", "brocart"}

type seedDocument struct {
	Products []catalog.Product `yaml:"products"`
}

func main() {
	numProducts := flag.Int("products", defaultNumProducts, "number of products to generate")
	output := flag.String("out", defaultOutputFile, "YAML file to write")
	seed := flag.Uint64("seed", 1, "random seed, the same seed yields the same catalog")
	flag.Parse()

	if err := writeSeed(*output, GenerateProducts(*numProducts, *seed)); err != nil {
		fmt.Fprintf(os.Stderr, "generating catalog seed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("wrote %d products to %s\n", *numProducts, *output)
}

// GenerateProducts returns n products with ids 1..n.
func GenerateProducts(n int, seed uint64) []catalog.Product {
	rng := rand.New(rand.NewPCG(seed, seed))
	products := make([]catalog.Product, 0, n)

	for i := 1; i <= n; i++ {
		price := int64(minPrice + rng.IntN(maxPrice-minPrice))
		price -= price % 50

		product := catalog.Product{
			ID:    int64(i),
			Name:  fmt.Sprintf("%s en %s %d", garments[rng.IntN(len(garments))], fabrics[rng.IntN(len(fabrics))], i),
			Price: price,
			Stock: rng.IntN(25),
		}

		switch {
		case i%outOfStockEvery == 0:
			product.OutOfStock = true
			product.Stock = 0

		case i%promoEvery == 0 && rng.IntN(2) == 0:
			promo := price * 8 / 10
			product.PromoPrice = &promo

		case i%promoEvery == 0:
			percent := 10 + rng.IntN(4)*10
			product.PromoPercent = &percent
		}

		products = append(products, product)
	}

	return products
}

func writeSeed(path string, products []catalog.Product) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(2)

	if err = encoder.Encode(seedDocument{Products: products}); err != nil {
		return fmt.Errorf("encoding products: %w", err)
	}

	return encoder.Close()
}
