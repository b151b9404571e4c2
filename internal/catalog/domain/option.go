package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aniskhan146/Cartify-sub000/internal/apperr"
)

// OptionValue is one allowed value of an option type. Stored documents carry
// either a bare string or an object; both decode into this shape.
type OptionValue struct {
	Name      string `json:"name"`
	ColorCode string `json:"colorCode,omitempty"`
}

func (v *OptionValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		*v = OptionValue{Name: name}
		return nil
	}

	type plain OptionValue
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("option value must be a string or an object: %w", err)
	}
	*v = OptionValue(p)
	return nil
}

type OptionType struct {
	ID     string        `json:"id"`
	Name   string        `json:"name"`
	Values []OptionValue `json:"values"`
}

func (o OptionType) Validate() error {
	if strings.TrimSpace(o.Name) == "" {
		return apperr.Validation("name", "option type name is required")
	}
	seen := make(map[string]struct{}, len(o.Values))
	for _, v := range o.Values {
		name := strings.TrimSpace(v.Name)
		if name == "" {
			return apperr.Validation("values", "option value name is required")
		}
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			return apperr.Validation("values", fmt.Sprintf("duplicate option value %q", v.Name))
		}
		seen[key] = struct{}{}
	}
	return nil
}

// HasValue compares case-insensitively.
func (o OptionType) HasValue(name string) bool {
	_, ok := o.Value(name)
	return ok
}

// Value finds the stored value matching name case-insensitively, so callers
// can replace user input with the stored spelling.
func (o OptionType) Value(name string) (OptionValue, bool) {
	name = strings.TrimSpace(name)
	for _, v := range o.Values {
		if strings.EqualFold(v.Name, name) {
			return v, true
		}
	}
	return OptionValue{}, false
}

type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Brand struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
