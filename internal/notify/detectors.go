// Package notify raises admin notifications from catalog and order snapshots.
package notify

import (
	"fmt"
	"time"

	catalog "github.com/aniskhan146/Cartify-sub000/internal/catalog/domain"
	"github.com/aniskhan146/Cartify-sub000/internal/feed"
	orders "github.com/aniskhan146/Cartify-sub000/internal/orders/domain"
	"github.com/google/uuid"
)

type Kind string

const (
	KindLowStock Kind = "low_stock"
	KindNewOrder Kind = "new_order"
)

type Notification struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	Message   string    `json:"message"`
	RefID     string    `json:"refId"`
	CreatedAt time.Time `json:"createdAt"`
	Read      bool      `json:"read"`
}

func newNotification(kind Kind, refID, message string) Notification {
	return Notification{
		ID:        uuid.NewString(),
		Kind:      kind,
		Message:   message,
		RefID:     refID,
		CreatedAt: time.Now(),
	}
}

type stockLevel struct {
	productID   string
	productName string
	variantID   string
	variantName string
	stock       int
}

func stockLevels(products []catalog.Product) []stockLevel {
	var out []stockLevel
	for _, p := range products {
		for _, v := range p.Variants {
			out = append(out, stockLevel{
				productID:   p.ID,
				productName: p.Name,
				variantID:   v.ID,
				variantName: v.Name,
				stock:       v.Stock,
			})
		}
	}
	return out
}

// LowStock reports variants that are at or below threshold in next but were
// not in prev, either because they were above it or did not exist.
func LowStock(prev, next []catalog.Product, threshold int) []Notification {
	low := func(s stockLevel) bool { return s.stock <= threshold }
	changes := feed.Diff(stockLevels(prev), stockLevels(next),
		func(s stockLevel) string { return s.productID + "/" + s.variantID },
		func(a, b stockLevel) bool { return low(a) == low(b) },
	)

	var out []Notification
	for _, s := range append(changes.Added, changes.Changed...) {
		if !low(s) {
			continue
		}
		name := s.productName
		if s.variantName != "" {
			name = fmt.Sprintf("%s (%s)", s.productName, s.variantName)
		}
		out = append(out, newNotification(KindLowStock, s.productID,
			fmt.Sprintf("%s is low on stock: %d left", name, s.stock)))
	}
	return out
}

// NewOrders reports orders present in next but not in prev.
func NewOrders(prev, next []orders.Order) []Notification {
	changes := feed.Diff(prev, next,
		func(o orders.Order) string { return o.ID },
		func(a, b orders.Order) bool { return true },
	)

	out := make([]Notification, 0, len(changes.Added))
	for _, o := range changes.Added {
		out = append(out, newNotification(KindNewOrder, o.ID,
			fmt.Sprintf("New order from %s: %d item(s), total %.2f", o.CustomerName, o.ItemCount(), o.Total)))
	}
	return out
}
