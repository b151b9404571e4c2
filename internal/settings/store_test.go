package settings

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aniskhan146/Cartify-sub000/internal/apperr"
	"github.com/aniskhan146/Cartify-sub000/internal/pricing"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var defaults = pricing.CheckoutConfig{
	ShippingChargeInsideZone:  60,
	ShippingChargeOutsideZone: 120,
	TaxAmount:                 0,
}

func setupStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewStore(client, defaults), mr
}

func TestGetCheckoutConfig_DefaultsWhenUnset(t *testing.T) {
	sut, _ := setupStore(t)

	cfg, err := sut.GetCheckoutConfig(context.Background())
	require.NoError(t, err)
	assert.Equal(t, defaults, cfg)
}

func TestSetThenGet(t *testing.T) {
	sut, mr := setupStore(t)
	ctx := context.Background()
	want := pricing.CheckoutConfig{ShippingChargeInsideZone: 40, ShippingChargeOutsideZone: 90, TaxAmount: 10}

	require.NoError(t, sut.SetCheckoutConfig(ctx, want))
	assert.Equal(t, "40", mr.HGet(checkoutKey, fieldInside))

	got, err := sut.GetCheckoutConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSet_RejectsNegative(t *testing.T) {
	sut, mr := setupStore(t)

	err := sut.SetCheckoutConfig(context.Background(), pricing.CheckoutConfig{TaxAmount: -5})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.False(t, mr.Exists(checkoutKey))
}

func TestGet_PartialHashKeepsDefaults(t *testing.T) {
	sut, mr := setupStore(t)
	mr.HSet(checkoutKey, fieldTax, "7.5")

	cfg, err := sut.GetCheckoutConfig(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7.5, cfg.TaxAmount)
	assert.Equal(t, 60.0, cfg.ShippingChargeInsideZone)
}

func TestGet_CorruptValue(t *testing.T) {
	sut, mr := setupStore(t)
	mr.HSet(checkoutKey, fieldInside, "forty")

	_, err := sut.GetCheckoutConfig(context.Background())
	assert.ErrorContains(t, err, fieldInside)
}

func TestReset(t *testing.T) {
	sut, _ := setupStore(t)
	ctx := context.Background()
	require.NoError(t, sut.SetCheckoutConfig(ctx, pricing.CheckoutConfig{TaxAmount: 3}))

	require.NoError(t, sut.Reset(ctx))
	cfg, err := sut.GetCheckoutConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, defaults, cfg)
}
