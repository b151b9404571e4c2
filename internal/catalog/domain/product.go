package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/aniskhan146/Cartify-sub000/internal/apperr"
)

type Product struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Category          string    `json:"category"`
	BrandID           *string   `json:"brandId,omitempty"`
	Description       string    `json:"description"`
	ImageURLs         []string  `json:"imageUrls"`
	Variants          []Variant `json:"variants"`
	Rating            float64   `json:"rating"`
	Reviews           int       `json:"reviews"`
	DeliveryTimescale string    `json:"deliveryTimescale,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// Validate checks the product as submitted by the admin form.
func (p Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return apperr.Validation("name", "product name is required")
	}
	if strings.TrimSpace(p.Category) == "" {
		return apperr.Validation("category", "category is required")
	}
	if len(p.Variants) == 0 {
		return apperr.Validation("variants", "at least one variant is required")
	}

	typeKey := strings.Join(p.Variants[0].Options.TypeNames(), ",")
	combos := make(map[string]struct{}, len(p.Variants))
	for _, v := range p.Variants {
		if err := v.Validate(); err != nil {
			return err
		}
		if strings.Join(v.Options.TypeNames(), ",") != typeKey {
			return apperr.Validation("variants", fmt.Sprintf("variant %q uses a different set of option types", v.Name))
		}
		key := v.Options.Key()
		if _, dup := combos[key]; dup {
			return apperr.Validation("variants", fmt.Sprintf("duplicate option combination %q", v.Name))
		}
		combos[key] = struct{}{}
	}
	return nil
}

func (p Product) FindVariant(id string) (Variant, bool) {
	for _, v := range p.Variants {
		if v.ID == id {
			return v, true
		}
	}
	return Variant{}, false
}

// OptionTypeNames lists the option types shared by the variants, sorted.
func (p Product) OptionTypeNames() []string {
	if len(p.Variants) == 0 {
		return nil
	}
	return p.Variants[0].Options.TypeNames()
}

func (p Product) TotalStock() int {
	total := 0
	for _, v := range p.Variants {
		total += v.Stock
	}
	return total
}

// MinPrice is the "from" price shown on listing cards; zero without variants.
func (p Product) MinPrice() float64 {
	if len(p.Variants) == 0 {
		return 0
	}
	lowest := p.Variants[0].Price
	for _, v := range p.Variants[1:] {
		if v.Price < lowest {
			lowest = v.Price
		}
	}
	return lowest
}

// PrimaryImage falls back to the first variant image when the product has none.
func (p Product) PrimaryImage() string {
	if len(p.ImageURLs) > 0 {
		return p.ImageURLs[0]
	}
	for _, v := range p.Variants {
		if v.ImageURL != "" {
			return v.ImageURL
		}
	}
	return ""
}
