package cart_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/storefront-orders/storefront/cart"
	"github.com/AntonStoeckl/storefront-orders/storefront/catalog"
)

func ptr[T any](v T) *T { return &v }

func robe(stock int) catalog.Product {
	return catalog.Product{ID: 1, Name: "Robe kabyle", Price: 7000, Stock: stock}
}

func Test_Cart_Add_ClampsToStock(t *testing.T) {
	// arrange
	c := cart.New()
	require.True(t, c.Add(robe(3), "rouge", 3, nil))

	// act
	fullyAdded := c.Add(robe(3), "rouge", 2, nil)

	// assert
	assert.False(t, fullyAdded)
	assert.Equal(t, 3, c.Quantity(1, "rouge", nil))
}

func Test_Cart_Add_PartiallyAddsUpToStock(t *testing.T) {
	// arrange
	c := cart.New()
	c.Add(robe(5), "rouge", 2, ptr("M"))

	// act
	fullyAdded := c.Add(robe(5), "rouge", 10, ptr("M"))

	// assert
	assert.False(t, fullyAdded)
	assert.Equal(t, 5, c.Quantity(1, "rouge", ptr("M")))
}

func Test_Cart_Add_NeverExceedsStock(t *testing.T) {
	for stock := 0; stock <= 6; stock++ {
		for existing := 0; existing <= stock; existing++ {
			for requested := 1; requested <= 8; requested++ {
				c := cart.New()
				if existing > 0 {
					require.True(t, c.Add(robe(stock), "bleu", existing, nil))
				}

				fullyAdded := c.Add(robe(stock), "bleu", requested, nil)

				quantity := c.Quantity(1, "bleu", nil)
				assert.LessOrEqual(t, quantity, stock)
				assert.Equal(t, requested <= stock-existing, fullyAdded)
				if !fullyAdded {
					assert.Equal(t, stock, quantity)
				}
			}
		}
	}
}

func Test_Cart_Add_KeysLinesByColorAndSize(t *testing.T) {
	c := cart.New()

	c.Add(robe(10), "rouge", 1, ptr("S"))
	c.Add(robe(10), "rouge", 1, ptr("M"))
	c.Add(robe(10), "vert", 1, ptr("S"))
	c.Add(robe(10), "rouge", 1, ptr("S"))

	lines := c.Lines()
	require.Len(t, lines, 3)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.Equal(t, "M", *lines[1].Size)
	assert.Equal(t, "vert", lines[2].Color)
}

func Test_Cart_Add_FreezesUnitPrice(t *testing.T) {
	// arrange
	c := cart.New()
	product := robe(10)
	product.PromoPrice = ptr(int64(6000))
	c.Add(product, "rouge", 1, nil)

	// act
	product.PromoPrice = nil
	product.Price = 9000
	c.Add(product, "rouge", 1, nil)

	// assert
	lines := c.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, int64(6000), lines[0].UnitPrice)
	assert.Equal(t, int64(12000), c.TotalPrice())
}

func Test_Cart_Add_IgnoresNonPositiveQuantityAndOutOfStock(t *testing.T) {
	c := cart.New()

	assert.False(t, c.Add(robe(3), "rouge", 0, nil))
	assert.False(t, c.Add(robe(3), "rouge", -2, nil))

	soldOut := robe(3)
	soldOut.OutOfStock = true
	assert.False(t, c.Add(soldOut, "rouge", 1, nil))

	assert.True(t, c.IsEmpty())
}

func Test_Cart_SetQuantity(t *testing.T) {
	// arrange
	c := cart.New()
	c.Add(robe(3), "rouge", 2, nil)

	// act
	c.SetQuantity(1, "rouge", 7, nil)

	// assert: no stock check here, unlike Add
	assert.Equal(t, 7, c.Quantity(1, "rouge", nil))

	c.SetQuantity(1, "rouge", 0, nil)
	assert.True(t, c.IsEmpty())

	c.SetQuantity(1, "rouge", 4, nil)
	assert.True(t, c.IsEmpty(), "setting a missing line does not create it")
}

func Test_Cart_Totals_RemoveAndClear(t *testing.T) {
	// arrange
	c := cart.New()
	c.Add(robe(10), "rouge", 2, nil)
	c.Add(catalog.Product{ID: 2, Name: "Gandoura", Price: 4500, Stock: 5}, "blanc", 1, ptr("L"))

	// assert
	assert.Equal(t, 3, c.TotalItems())
	assert.Equal(t, int64(18500), c.TotalPrice())

	c.Remove(1, "rouge", nil)
	assert.Equal(t, 1, c.TotalItems())

	c.Remove(99, "noir", nil)
	assert.Equal(t, 1, c.TotalItems())

	c.Clear()
	assert.Equal(t, 0, c.TotalItems())
	assert.Equal(t, int64(0), c.TotalPrice())
}

func Test_Cart_Lines_ReturnsCopy(t *testing.T) {
	c := cart.New()
	c.Add(robe(10), "rouge", 1, ptr("S"))

	lines := c.Lines()
	lines[0].Quantity = 99
	*lines[0].Size = "XL"

	assert.Equal(t, 1, c.Quantity(1, "rouge", ptr("S")))
}

func Test_MemoryStore_RoundTrip(t *testing.T) {
	// arrange
	ctx := context.Background()
	store := cart.NewMemoryStore()
	c := cart.New()
	c.Add(robe(3), "rouge", 2, ptr("M"))

	// act
	require.NoError(t, store.Save(ctx, "session-1", c))
	loaded, err := store.Load(ctx, "session-1")

	// assert
	require.NoError(t, err)
	assert.Equal(t, c.Lines(), loaded.Lines())

	empty, err := store.Load(ctx, "unknown")
	require.NoError(t, err)
	assert.True(t, empty.IsEmpty())

	require.NoError(t, store.Delete(ctx, "session-1"))
	gone, err := store.Load(ctx, "session-1")
	require.NoError(t, err)
	assert.True(t, gone.IsEmpty())
}

func Test_SessionCodec_Decode(t *testing.T) {
	codec := cart.SessionCodec{}

	c, err := codec.Decode([]byte(`{"v":1,"lignes":[
		{"produit_id":1,"nom":"Robe","couleur":"rouge","quantite":2,"prix_unitaire":7000},
		{"produit_id":1,"nom":"Robe","couleur":"rouge","quantite":1,"prix_unitaire":8000},
		{"produit_id":2,"nom":"Gandoura","couleur":"blanc","quantite":0,"prix_unitaire":4500}]}`))

	require.NoError(t, err)
	require.Len(t, c.Lines(), 1)
	assert.Equal(t, 3, c.TotalItems())
	assert.Equal(t, int64(21000), c.TotalPrice())

	_, err = codec.Decode([]byte(`{"lignes":`))
	assert.ErrorIs(t, err, cart.ErrDecodingCartFailed)
}
