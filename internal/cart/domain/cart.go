package domain

import (
	"fmt"
	"time"

	"github.com/aniskhan146/Cartify-sub000/internal/apperr"
	catalog "github.com/aniskhan146/Cartify-sub000/internal/catalog/domain"
	"github.com/aniskhan146/Cartify-sub000/internal/pricing"
	"github.com/shopspring/decimal"
)

var (
	ErrOutOfStock   = apperr.Validation("variant", "variant is out of stock")
	ErrLineNotFound = apperr.NotFound("cart line")
)

// CartLine carries a copy of the variant as it was when added.
type CartLine struct {
	ProductID    string          `bson:"product_id" json:"productId"`
	ProductName  string          `bson:"product_name" json:"productName"`
	ProductImage string          `bson:"product_image" json:"productImage"`
	Variant      catalog.Variant `bson:"variant" json:"variant"`
	Quantity     int             `bson:"quantity" json:"quantity"`
	AddedAt      time.Time       `bson:"added_at" json:"addedAt"`
}

func (l CartLine) UnitPrice() float64 { return l.Variant.Price }
func (l CartLine) Units() int         { return l.Quantity }

// Refreshed re-prices the line from the product's current data and clamps the
// quantity to current stock. A variant that is gone or sold out is a
// validation error on "items".
func (l CartLine) Refreshed(p *catalog.Product) (CartLine, error) {
	v, ok := p.FindVariant(l.Variant.ID)
	if !ok {
		return l, apperr.Validation("items", fmt.Sprintf("%s (%s) is no longer available", p.Name, l.Variant.Name))
	}
	if !v.InStock() {
		return l, apperr.Validation("items", fmt.Sprintf("%s (%s) is out of stock", p.Name, v.Name))
	}
	l.ProductName = p.Name
	l.ProductImage = p.PrimaryImage()
	l.Variant = v
	l.Quantity = max(1, min(l.Quantity, v.Stock))
	return l, nil
}

func (l CartLine) matches(productID, variantID string) bool {
	return l.ProductID == productID && l.Variant.ID == variantID
}

// Cart is owned either by a signed-in user or by a guest session id.
type Cart struct {
	ID        string     `bson:"_id,omitempty" json:"-"`
	OwnerID   string     `bson:"owner_id" json:"ownerId"`
	Lines     []CartLine `bson:"lines" json:"lines"`
	CreatedAt time.Time  `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time  `bson:"updated_at" json:"updatedAt"`
}

func NewCart(ownerID string) *Cart {
	now := time.Now()
	return &Cart{OwnerID: ownerID, Lines: []CartLine{}, CreatedAt: now, UpdatedAt: now}
}

// Add merges with an existing line for the same product and variant. The
// merged quantity is clamped to stock and the variant copy is refreshed.
func (c *Cart) Add(line CartLine) error {
	if !line.Variant.InStock() {
		return ErrOutOfStock
	}
	qty := max(1, line.Quantity)

	for i := range c.Lines {
		if c.Lines[i].matches(line.ProductID, line.Variant.ID) {
			c.Lines[i].Variant = line.Variant
			c.Lines[i].ProductName = line.ProductName
			c.Lines[i].ProductImage = line.ProductImage
			c.Lines[i].Quantity = min(line.Variant.Stock, c.Lines[i].Quantity+qty)
			c.touch()
			return nil
		}
	}

	line.Quantity = min(line.Variant.Stock, qty)
	if line.AddedAt.IsZero() {
		line.AddedAt = time.Now()
	}
	c.Lines = append(c.Lines, line)
	c.touch()
	return nil
}

func (c *Cart) Remove(productID, variantID string) error {
	for i := range c.Lines {
		if c.Lines[i].matches(productID, variantID) {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			c.touch()
			return nil
		}
	}
	return ErrLineNotFound
}

// RefreshVariant replaces the variant copy held by a line.
func (c *Cart) RefreshVariant(productID string, v catalog.Variant) error {
	for i := range c.Lines {
		if c.Lines[i].matches(productID, v.ID) {
			c.Lines[i].Variant = v
			return nil
		}
	}
	return ErrLineNotFound
}

// UpdateQuantity sets max(1, min(stock, n)).
func (c *Cart) UpdateQuantity(productID, variantID string, n int) error {
	for i := range c.Lines {
		if c.Lines[i].matches(productID, variantID) {
			c.Lines[i].Quantity = max(1, min(c.Lines[i].Variant.Stock, n))
			c.touch()
			return nil
		}
	}
	return ErrLineNotFound
}

func (c *Cart) Clear() {
	c.Lines = []CartLine{}
	c.touch()
}

func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

func (c *Cart) ItemCount() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

func (c *Cart) Subtotal() decimal.Decimal {
	return pricing.Subtotal(c.Lines)
}

func (c *Cart) touch() {
	c.UpdatedAt = time.Now()
}

// Wishlist is a per-user set of product ids.
type Wishlist struct {
	UserID     string    `bson:"user_id" json:"userId"`
	ProductIDs []string  `bson:"product_ids" json:"productIds"`
	UpdatedAt  time.Time `bson:"updated_at" json:"updatedAt"`
}
