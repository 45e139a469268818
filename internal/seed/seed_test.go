package seed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"julianmorley.ca/con-plar/storefront/pkg/global"
)

func TestProducts(t *testing.T) {
	products, err := Products()
	require.NoError(t, err)
	require.Len(t, products, 6)

	first := products[0]
	assert.Equal(t, "Elegant Evening Dress", first.Name)
	assert.Equal(t, 129.99, first.Price)
	require.NotNil(t, first.OriginalPrice)
	assert.Equal(t, 159.99, *first.OriginalPrice)
	assert.True(t, first.IsFeatured())
	assert.Equal(t, []string{"elegant", "evening", "formal"}, first.Tags)

	jeans := products[3]
	require.NotNil(t, jeans.Featured)
	assert.False(t, *jeans.Featured)
	assert.Nil(t, jeans.OriginalPrice)

	featured := 0
	for _, p := range products {
		assert.True(t, p.InStock, p.Name)
		assert.True(t, p.ID.IsZero(), "ids are assigned on insert")
		if p.IsFeatured() {
			featured++
		}
	}
	assert.Equal(t, 5, featured)
}

func TestProducts_FreshValues(t *testing.T) {
	a, err := Products()
	require.NoError(t, err)
	b, err := Products()
	require.NoError(t, err)

	a[0].Price = 1
	assert.Equal(t, 129.99, b[0].Price)
}

func TestParse_Invalid(t *testing.T) {
	_, err := parse([]byte("products:\n  - name: X\n    price: -1\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, global.ErrValidation)

	_, err = parse([]byte("products: ["))
	require.Error(t, err)
}
