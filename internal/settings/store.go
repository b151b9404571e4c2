// Package settings keeps process-wide admin settings in Redis.
package settings

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/aniskhan146/Cartify-sub000/internal/pricing"
	"github.com/redis/go-redis/v9"
)

const checkoutKey = "settings:checkout"

const (
	fieldInside  = "shipping_charge_inside_zone"
	fieldOutside = "shipping_charge_outside_zone"
	fieldTax     = "tax_amount"
)

type Store struct {
	client   *redis.Client
	defaults pricing.CheckoutConfig
}

// NewStore falls back to defaults until an admin saves a config.
func NewStore(client *redis.Client, defaults pricing.CheckoutConfig) *Store {
	return &Store{client: client, defaults: defaults}
}

func (s *Store) GetCheckoutConfig(ctx context.Context) (pricing.CheckoutConfig, error) {
	values, err := s.client.HGetAll(ctx, checkoutKey).Result()
	if err != nil {
		return pricing.CheckoutConfig{}, fmt.Errorf("read checkout config: %w", err)
	}
	if len(values) == 0 {
		return s.defaults, nil
	}

	cfg := s.defaults
	fields := map[string]*float64{
		fieldInside:  &cfg.ShippingChargeInsideZone,
		fieldOutside: &cfg.ShippingChargeOutsideZone,
		fieldTax:     &cfg.TaxAmount,
	}
	for name, dst := range fields {
		raw, ok := values[name]
		if !ok {
			continue
		}
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return pricing.CheckoutConfig{}, fmt.Errorf("checkout config field %s: %w", name, err)
		}
		*dst = f
	}
	return cfg, nil
}

func (s *Store) SetCheckoutConfig(ctx context.Context, cfg pricing.CheckoutConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	err := s.client.HSet(ctx, checkoutKey,
		fieldInside, strconv.FormatFloat(cfg.ShippingChargeInsideZone, 'f', -1, 64),
		fieldOutside, strconv.FormatFloat(cfg.ShippingChargeOutsideZone, 'f', -1, 64),
		fieldTax, strconv.FormatFloat(cfg.TaxAmount, 'f', -1, 64),
	).Err()
	if err != nil {
		return fmt.Errorf("write checkout config: %w", err)
	}
	return nil
}

// Reset drops the stored config so defaults apply again.
func (s *Store) Reset(ctx context.Context) error {
	if err := s.client.Del(ctx, checkoutKey).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("reset checkout config: %w", err)
	}
	return nil
}
