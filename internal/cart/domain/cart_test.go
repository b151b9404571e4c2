package domain

import (
	"testing"

	"github.com/aniskhan146/Cartify-sub000/internal/apperr"
	catalog "github.com/aniskhan146/Cartify-sub000/internal/catalog/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func line(productID, variantID string, price float64, stock, qty int) CartLine {
	return CartLine{
		ProductID:   productID,
		ProductName: "Tee",
		Variant:     catalog.Variant{ID: variantID, Name: "Red / M", Price: price, Stock: stock},
		Quantity:    qty,
	}
}

func TestAdd_MergesSameVariant(t *testing.T) {
	sut := NewCart("u1")

	require.NoError(t, sut.Add(line("p1", "v1", 500, 10, 2)))
	require.NoError(t, sut.Add(line("p1", "v1", 500, 10, 3)))

	require.Len(t, sut.Lines, 1)
	assert.Equal(t, 5, sut.Lines[0].Quantity)
	assert.False(t, sut.Lines[0].AddedAt.IsZero())
}

func TestAdd_MergeClampsToStock(t *testing.T) {
	sut := NewCart("u1")

	require.NoError(t, sut.Add(line("p1", "v1", 500, 4, 3)))
	require.NoError(t, sut.Add(line("p1", "v1", 500, 4, 3)))

	require.Len(t, sut.Lines, 1)
	assert.Equal(t, 4, sut.Lines[0].Quantity)
}

func TestAdd_DifferentVariantsAreSeparateLines(t *testing.T) {
	sut := NewCart("u1")

	require.NoError(t, sut.Add(line("p1", "v1", 500, 4, 1)))
	require.NoError(t, sut.Add(line("p1", "v2", 500, 4, 1)))
	require.NoError(t, sut.Add(line("p2", "v1", 500, 4, 1)))

	assert.Len(t, sut.Lines, 3)
	assert.Equal(t, 3, sut.ItemCount())
}

func TestAdd_DefaultsQuantityToOne(t *testing.T) {
	sut := NewCart("u1")
	require.NoError(t, sut.Add(line("p1", "v1", 500, 4, 0)))
	assert.Equal(t, 1, sut.Lines[0].Quantity)
}

func TestAdd_OutOfStock(t *testing.T) {
	sut := NewCart("u1")
	err := sut.Add(line("p1", "v1", 500, 0, 1))

	assert.ErrorIs(t, err, ErrOutOfStock)
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.True(t, sut.IsEmpty())
}

func TestUpdateQuantity_Clamps(t *testing.T) {
	sut := NewCart("u1")
	require.NoError(t, sut.Add(line("p1", "v1", 500, 5, 1)))

	require.NoError(t, sut.UpdateQuantity("p1", "v1", 99))
	assert.Equal(t, 5, sut.Lines[0].Quantity)

	require.NoError(t, sut.UpdateQuantity("p1", "v1", -3))
	assert.Equal(t, 1, sut.Lines[0].Quantity)

	require.NoError(t, sut.UpdateQuantity("p1", "v1", 3))
	assert.Equal(t, 3, sut.Lines[0].Quantity)

	assert.ErrorIs(t, sut.UpdateQuantity("p1", "nope", 3), ErrLineNotFound)
}

func TestRemove(t *testing.T) {
	sut := NewCart("u1")
	require.NoError(t, sut.Add(line("p1", "v1", 500, 5, 1)))
	require.NoError(t, sut.Add(line("p1", "v2", 300, 5, 1)))

	require.NoError(t, sut.Remove("p1", "v1"))
	require.Len(t, sut.Lines, 1)
	assert.Equal(t, "v2", sut.Lines[0].Variant.ID)

	assert.ErrorIs(t, sut.Remove("p1", "v1"), apperr.ErrNotFound)
}

func TestSubtotalAndClear(t *testing.T) {
	sut := NewCart("u1")
	require.NoError(t, sut.Add(line("p1", "v1", 500, 5, 2)))
	require.NoError(t, sut.Add(line("p2", "v9", 25.5, 5, 2)))

	assert.True(t, decimal.NewFromInt(1051).Equal(sut.Subtotal()))

	sut.Clear()
	assert.True(t, sut.IsEmpty())
	assert.True(t, sut.Subtotal().IsZero())
}

func TestRefreshed_UsesCurrentCatalogData(t *testing.T) {
	l := line("p1", "v1", 500, 10, 6)
	p := &catalog.Product{
		ID: "p1", Name: "Tee v2", ImageURLs: []string{"new.png"},
		Variants: []catalog.Variant{{ID: "v1", Name: "Red / M", Price: 450, Stock: 4}},
	}

	got, err := l.Refreshed(p)
	require.NoError(t, err)
	assert.Equal(t, "Tee v2", got.ProductName)
	assert.Equal(t, "new.png", got.ProductImage)
	assert.InDelta(t, 450, got.UnitPrice(), 0.001)
	assert.Equal(t, 4, got.Quantity)
	assert.Equal(t, 6, l.Quantity, "receiver is not modified")
}

func TestRefreshed_Unavailable(t *testing.T) {
	l := line("p1", "v1", 500, 10, 1)

	_, err := l.Refreshed(&catalog.Product{ID: "p1", Name: "Tee"})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = l.Refreshed(&catalog.Product{ID: "p1", Name: "Tee", Variants: []catalog.Variant{{ID: "v1", Price: 500}}})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestRefreshVariant(t *testing.T) {
	sut := NewCart("u1")
	require.NoError(t, sut.Add(line("p1", "v1", 500, 10, 5)))

	require.NoError(t, sut.RefreshVariant("p1", catalog.Variant{ID: "v1", Price: 450, Stock: 2}))
	require.NoError(t, sut.UpdateQuantity("p1", "v1", 5))
	assert.Equal(t, 2, sut.Lines[0].Quantity)
	assert.InDelta(t, 450, sut.Lines[0].Variant.Price, 0.001)

	assert.ErrorIs(t, sut.RefreshVariant("p1", catalog.Variant{ID: "v9"}), ErrLineNotFound)
}
