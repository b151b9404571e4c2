package domain

import (
	"time"

	"github.com/aniskhan146/Cartify-sub000/internal/pricing"
)

// OrderItem is a frozen copy of a cart line. Catalog edits never reach it.
type OrderItem struct {
	ProductID    string  `json:"productId"`
	ProductName  string  `json:"productName"`
	ProductImage string  `json:"productImage"`
	VariantID    string  `json:"variantId"`
	VariantName  string  `json:"variantName"`
	VariantPrice float64 `json:"variantPrice"`
	Quantity     int     `json:"quantity"`
}

func (i OrderItem) UnitPrice() float64 { return i.VariantPrice }
func (i OrderItem) Units() int         { return i.Quantity }

type Order struct {
	ID             string       `json:"id"`
	UserID         string       `json:"userId"`
	CustomerName   string       `json:"customerName"`
	Date           time.Time    `json:"date"`
	Zone           pricing.Zone `json:"zone"`
	Subtotal       float64      `json:"subtotal"`
	Shipping       float64      `json:"shipping"`
	Tax            float64      `json:"tax"`
	Total          float64      `json:"total"`
	Status         OrderStatus  `json:"status"`
	Items          []OrderItem  `json:"items"`
	IdempotencyKey string       `json:"-"`
	UpdatedAt      time.Time    `json:"updatedAt"`
}

func (o Order) ItemCount() int {
	n := 0
	for _, it := range o.Items {
		n += it.Quantity
	}
	return n
}

const (
	EventOrderPlaced        = "order.placed"
	EventOrderStatusChanged = "order.status_changed"
)

// OrderEvent is the outbox payload published for every order change.
type OrderEvent struct {
	Type       string      `json:"type"`
	OrderID    string      `json:"order_id"`
	UserID     string      `json:"user_id"`
	Status     OrderStatus `json:"status"`
	Total      float64     `json:"total"`
	OccurredAt time.Time   `json:"occurred_at"`
}

// OutboxEvent is a stored, not yet published event.
type OutboxEvent struct {
	ID          string
	AggregateID string
	EventType   string
	Payload     []byte
	CreatedAt   time.Time
	ProcessedAt *time.Time
}
