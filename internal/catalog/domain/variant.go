package domain

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aniskhan146/Cartify-sub000/internal/apperr"
)

// Options maps an option type name to the chosen value name.
type Options map[string]string

// Equal reports whether both maps hold the same type/value pairs.
func (o Options) Equal(other Options) bool {
	if len(o) != len(other) {
		return false
	}
	for k, v := range o {
		if ov, ok := other[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// Key is a canonical, order independent encoding of the map.
func (o Options) Key() string {
	keys := o.TypeNames()
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+o[k])
	}
	return strings.Join(parts, ";")
}

func (o Options) TypeNames() []string {
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type Variant struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Options       Options  `json:"options"`
	Price         float64  `json:"price"`
	OriginalPrice *float64 `json:"originalPrice,omitempty"`
	Stock         int      `json:"stock"`
	ImageURL      string   `json:"imageUrl,omitempty"`
}

func (v Variant) InStock() bool {
	return v.Stock > 0
}

func (v Variant) Validate() error {
	if v.Price <= 0 {
		return apperr.Validation("price", fmt.Sprintf("variant %q: price must be positive", v.Name))
	}
	if v.Stock < 0 {
		return apperr.Validation("stock", fmt.Sprintf("variant %q: stock must not be negative", v.Name))
	}
	if v.OriginalPrice != nil && *v.OriginalPrice <= v.Price {
		return apperr.Validation("originalPrice", fmt.Sprintf("variant %q: original price must be greater than price", v.Name))
	}
	return nil
}
