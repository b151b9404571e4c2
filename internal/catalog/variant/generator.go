// Package variant builds variant lists from option selections and resolves
// shopper selections back to a single variant.
package variant

import (
	"fmt"
	"strings"

	"github.com/aniskhan146/Cartify-sub000/internal/apperr"
	"github.com/aniskhan146/Cartify-sub000/internal/catalog/domain"
	"github.com/google/uuid"
)

const nameSeparator = " / "

// Selection is one option type chosen for generation together with the
// subset of its values to combine, in display order.
type Selection struct {
	Type   string   `json:"type"`
	Values []string `json:"values"`
}

// Generate returns one variant per element of the Cartesian product of the
// selections. The last selection varies fastest. Type names and values must be
// unique ignoring case. Combinations already present in existing keep their
// id, prices, stock and image; new ones start at zero.
func Generate(selections []Selection, existing []domain.Variant) ([]domain.Variant, error) {
	if len(selections) == 0 {
		return nil, apperr.Validation("options", "select at least one option type")
	}
	seenTypes := make(map[string]struct{}, len(selections))
	for _, s := range selections {
		if strings.TrimSpace(s.Type) == "" {
			return nil, apperr.Validation("options", "option type name is required")
		}
		typeKey := strings.ToLower(strings.TrimSpace(s.Type))
		if _, dup := seenTypes[typeKey]; dup {
			return nil, apperr.Validation("options", fmt.Sprintf("option type %q selected twice", s.Type))
		}
		seenTypes[typeKey] = struct{}{}
		if len(s.Values) == 0 {
			return nil, apperr.Validation("options", fmt.Sprintf("select at least one value for %q", s.Type))
		}
		seenValues := make(map[string]struct{}, len(s.Values))
		for _, v := range s.Values {
			key := strings.ToLower(strings.TrimSpace(v))
			if key == "" {
				return nil, apperr.Validation("options", fmt.Sprintf("empty value selected for %q", s.Type))
			}
			if _, dup := seenValues[key]; dup {
				return nil, apperr.Validation("options", fmt.Sprintf("value %q selected twice for %q", v, s.Type))
			}
			seenValues[key] = struct{}{}
		}
	}

	byKey := make(map[string]domain.Variant, len(existing))
	for _, v := range existing {
		byKey[v.Options.Key()] = v
	}

	total := 1
	for _, s := range selections {
		total *= len(s.Values)
	}

	variants := make([]domain.Variant, 0, total)
	idx := make([]int, len(selections))
	for n := 0; n < total; n++ {
		opts := make(domain.Options, len(selections))
		names := make([]string, len(selections))
		for i, s := range selections {
			value := s.Values[idx[i]]
			opts[s.Type] = value
			names[i] = value
		}

		v := domain.Variant{
			Name:    strings.Join(names, nameSeparator),
			Options: opts,
		}
		if prev, ok := byKey[opts.Key()]; ok {
			v.ID = prev.ID
			v.Price = prev.Price
			v.OriginalPrice = prev.OriginalPrice
			v.Stock = prev.Stock
			v.ImageURL = prev.ImageURL
		}
		if v.ID == "" {
			v.ID = uuid.NewString()
		}
		variants = append(variants, v)

		// odometer step, rightmost first
		for i := len(idx) - 1; i >= 0; i-- {
			idx[i]++
			if idx[i] < len(selections[i].Values) {
				break
			}
			idx[i] = 0
		}
	}

	return variants, nil
}
