// Package pricing computes cart totals from lines and the checkout config.
package pricing

import (
	"strings"

	"github.com/aniskhan146/Cartify-sub000/internal/apperr"
	"github.com/shopspring/decimal"
)

type Zone string

const (
	ZoneInside  Zone = "inside"
	ZoneOutside Zone = "outside"
)

// ParseZone accepts any casing; an empty string means inside.
func ParseZone(s string) (Zone, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(ZoneInside):
		return ZoneInside, nil
	case string(ZoneOutside):
		return ZoneOutside, nil
	default:
		return "", apperr.Validation("zone", "shipping zone must be inside or outside")
	}
}

// CheckoutConfig holds the flat fees applied at checkout. Tax is a fixed
// amount per order, not a percentage.
type CheckoutConfig struct {
	ShippingChargeInsideZone  float64 `json:"shippingChargeInsideZone"`
	ShippingChargeOutsideZone float64 `json:"shippingChargeOutsideZone"`
	TaxAmount                 float64 `json:"taxAmount"`
}

func (c CheckoutConfig) Validate() error {
	if c.ShippingChargeInsideZone < 0 {
		return apperr.Validation("shippingChargeInsideZone", "must not be negative")
	}
	if c.ShippingChargeOutsideZone < 0 {
		return apperr.Validation("shippingChargeOutsideZone", "must not be negative")
	}
	if c.TaxAmount < 0 {
		return apperr.Validation("taxAmount", "must not be negative")
	}
	return nil
}

func (c CheckoutConfig) ShippingFor(z Zone) float64 {
	if z == ZoneOutside {
		return c.ShippingChargeOutsideZone
	}
	return c.ShippingChargeInsideZone
}

// Line is anything priced per unit.
type Line interface {
	UnitPrice() float64
	Units() int
}

type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shipping"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

func Subtotal[L Line](lines []L) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(decimal.NewFromFloat(l.UnitPrice()).Mul(decimal.NewFromInt(int64(l.Units()))))
	}
	return sum
}

// Compute charges no shipping or tax on an empty subtotal.
func Compute[L Line](lines []L, cfg CheckoutConfig, zone Zone) Totals {
	subtotal := Subtotal(lines)
	if subtotal.IsZero() {
		return Totals{Subtotal: decimal.Zero, Shipping: decimal.Zero, Tax: decimal.Zero, Total: decimal.Zero}
	}

	shipping := decimal.NewFromFloat(cfg.ShippingFor(zone))
	tax := decimal.NewFromFloat(cfg.TaxAmount)
	return Totals{
		Subtotal: subtotal,
		Shipping: shipping,
		Tax:      tax,
		Total:    subtotal.Add(shipping).Add(tax),
	}
}
