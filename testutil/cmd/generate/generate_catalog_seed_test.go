package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/storefront-orders/storefront/catalog"
)

func Test_GenerateProducts_IsDeterministicPerSeed(t *testing.T) {
	// act
	first := GenerateProducts(50, 7)
	second := GenerateProducts(50, 7)

	// assert
	assert.Equal(t, first, second)
	assert.Len(t, first, 50)
	assert.True(t, first[19].OutOfStock)
	assert.Zero(t, first[19].Stock)
}

func Test_WriteSeed_ProducesALoadableCatalog(t *testing.T) {
	// setup
	path := filepath.Join(t.TempDir(), "fixtures", "catalog.yaml")
	products := GenerateProducts(40, 3)

	// act
	require.NoError(t, writeSeed(path, products))

	// assert
	file, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = file.Close() }()

	reader, err := catalog.LoadSeed(file)
	require.NoError(t, err)

	loaded, err := reader.ProductsByID(context.Background(), []int64{1, 10, 40})
	require.NoError(t, err)
	assert.Equal(t, products[0], loaded[1])
	assert.Equal(t, products[9], loaded[10])
	assert.Equal(t, products[39], loaded[40])
}
