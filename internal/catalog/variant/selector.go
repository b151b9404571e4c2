package variant

import (
	"sort"

	"github.com/aniskhan146/Cartify-sub000/internal/catalog/domain"
)

// ValueState describes one selectable value for display.
type ValueState struct {
	Value     string `json:"value"`
	Available bool   `json:"available"`
	Selected  bool   `json:"selected"`
}

// Selector tracks a shopper's partial option selection for one product.
// It is not safe for concurrent use.
type Selector struct {
	variants []domain.Variant
	types    []string
	selected domain.Options
	resolved *domain.Variant
	quantity int
}

// NewSelector starts with nothing selected and a quantity of 1.
func NewSelector(variants []domain.Variant) *Selector {
	typeSet := make(map[string]struct{})
	for _, v := range variants {
		for t := range v.Options {
			typeSet[t] = struct{}{}
		}
	}
	types := make([]string, 0, len(typeSet))
	for t := range typeSet {
		types = append(types, t)
	}
	sort.Strings(types)

	s := &Selector{
		variants: variants,
		types:    types,
		selected: make(domain.Options),
		quantity: 1,
	}
	s.resolve()
	return s
}

// NewSelectorWith replays a stored selection in type-name order.
func NewSelectorWith(variants []domain.Variant, selected map[string]string) *Selector {
	s := NewSelector(variants)
	keys := make([]string, 0, len(selected))
	for k := range selected {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		s.SelectOption(k, selected[k])
	}
	return s
}

// OptionTypes lists the option type names used by the variants, sorted.
func (s *Selector) OptionTypes() []string {
	return append([]string(nil), s.types...)
}

// IsOptionAvailable reports whether some variant carries value for typ and
// agrees with every other current selection. The current choice for typ
// itself is ignored so switching values is never blocked.
func (s *Selector) IsOptionAvailable(typ, value string) bool {
	for _, v := range s.variants {
		if v.Options[typ] != value {
			continue
		}
		if s.matchesExcept(v, typ) {
			return true
		}
	}
	return false
}

func (s *Selector) matchesExcept(v domain.Variant, skip string) bool {
	for t, val := range s.selected {
		if t == skip {
			continue
		}
		if v.Options[t] != val {
			return false
		}
	}
	return true
}

// SelectOption fixes typ to value and clears any other selection that can no
// longer be reached together with it.
func (s *Selector) SelectOption(typ, value string) {
	s.selected[typ] = value
	for _, other := range s.selected.TypeNames() {
		if other == typ {
			continue
		}
		if !s.IsOptionAvailable(other, s.selected[other]) {
			delete(s.selected, other)
		}
	}
	s.resolve()
}

// Deselect clears the value chosen for typ.
func (s *Selector) Deselect(typ string) {
	delete(s.selected, typ)
	s.resolve()
}

// Selected returns a copy of the current selection.
func (s *Selector) Selected() map[string]string {
	out := make(map[string]string, len(s.selected))
	for k, v := range s.selected {
		out[k] = v
	}
	return out
}

// Complete reports whether every option type has a value.
func (s *Selector) Complete() bool {
	for _, t := range s.types {
		if _, ok := s.selected[t]; !ok {
			return false
		}
	}
	return true
}

// Resolved returns the variant matching a complete selection. A complete
// selection with no matching variant is a valid, unpurchasable state.
func (s *Selector) Resolved() (*domain.Variant, bool) {
	if s.resolved == nil {
		return nil, false
	}
	v := *s.resolved
	return &v, true
}

// Purchasable is true when a variant is resolved and has stock.
func (s *Selector) Purchasable() bool {
	return s.resolved != nil && s.resolved.InStock()
}

// Quantity is always at least 1.
func (s *Selector) Quantity() int {
	return s.quantity
}

// SetQuantity clamps n into [1, stock] of the resolved variant.
func (s *Selector) SetQuantity(n int) {
	if s.resolved == nil {
		s.quantity = 1
		return
	}
	s.quantity = max(1, min(s.resolved.Stock, n))
}

// Values lists the values of typ in first-seen order with availability.
func (s *Selector) Values(typ string) []ValueState {
	seen := make(map[string]struct{})
	var out []ValueState
	for _, v := range s.variants {
		value, ok := v.Options[typ]
		if !ok {
			continue
		}
		if _, dup := seen[value]; dup {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, ValueState{
			Value:     value,
			Available: s.IsOptionAvailable(typ, value),
			Selected:  s.selected[typ] == value,
		})
	}
	return out
}

func (s *Selector) resolve() {
	var next *domain.Variant
	if s.Complete() {
		for i := range s.variants {
			if s.variants[i].Options.Equal(s.selected) {
				next = &s.variants[i]
				break
			}
		}
	}

	if next == nil || s.resolved == nil || next.ID != s.resolved.ID {
		s.quantity = 1
	}
	s.resolved = next
}
