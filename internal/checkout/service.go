// Package checkout turns a cart into an order.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/aniskhan146/Cartify-sub000/internal/apperr"
	cart "github.com/aniskhan146/Cartify-sub000/internal/cart/domain"
	catalog "github.com/aniskhan146/Cartify-sub000/internal/catalog/domain"
	"github.com/aniskhan146/Cartify-sub000/internal/orders/domain"
	"github.com/aniskhan146/Cartify-sub000/internal/orders/repository"
	"github.com/aniskhan146/Cartify-sub000/internal/pricing"
)

var ErrEmptyCart = apperr.Validation("cart", "cart is empty")

// CartStore reads carts from storage, not from a cache.
type CartStore interface {
	LoadCart(ctx context.Context, ownerID string) (*cart.Cart, error)
	ClearCart(ctx context.Context, ownerID string) error
}

type ProductLookup interface {
	GetProduct(ctx context.Context, id string) (*catalog.Product, error)
}

type ConfigSource interface {
	GetCheckoutConfig(ctx context.Context) (pricing.CheckoutConfig, error)
}

type OrderStore interface {
	CreateOrder(ctx context.Context, order *domain.Order) error
	GetOrderByIdempotencyKey(ctx context.Context, userID, key string) (*domain.Order, error)
}

type Request struct {
	Zone           pricing.Zone `json:"zone"`
	CustomerName   string       `json:"customerName"`
	IdempotencyKey string       `json:"idempotencyKey"`
}

type Service struct {
	carts    CartStore
	products ProductLookup
	config   ConfigSource
	orders   OrderStore
}

func NewService(carts CartStore, products ProductLookup, config ConfigSource, orders OrderStore) *Service {
	return &Service{
		carts:    carts,
		products: products,
		config:   config,
		orders:   orders,
	}
}

// PlaceOrder snapshots the user's cart into a Pending order. The cart is
// cleared only after the order is stored.
func (s *Service) PlaceOrder(ctx context.Context, userID string, req Request) (*domain.Order, error) {
	if userID == "" {
		return nil, apperr.ErrAuthRequired
	}
	req.CustomerName = strings.TrimSpace(req.CustomerName)
	if req.CustomerName == "" {
		return nil, apperr.Validation("customerName", "customer name is required")
	}
	zone, err := pricing.ParseZone(string(req.Zone))
	if err != nil {
		return nil, err
	}

	if req.IdempotencyKey != "" {
		existing, err := s.orders.GetOrderByIdempotencyKey(ctx, userID, req.IdempotencyKey)
		if err == nil {
			log.Printf("[checkout] duplicate request idempotency_key %v returns order %v", req.IdempotencyKey, existing.ID)
			return existing, nil
		}
		if !errors.Is(err, repository.ErrOrderNotFound) {
			return nil, fmt.Errorf("failed to check idempotency: %w", err)
		}
	}

	c, err := s.carts.LoadCart(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	if c.IsEmpty() {
		return nil, ErrEmptyCart
	}

	items, err := s.snapshot(ctx, c.Lines)
	if err != nil {
		return nil, err
	}

	cfg, err := s.config.GetCheckoutConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load checkout config: %w", err)
	}
	totals := pricing.Compute(items, cfg, zone)

	order := &domain.Order{
		UserID:         userID,
		CustomerName:   req.CustomerName,
		Zone:           zone,
		Subtotal:       totals.Subtotal.InexactFloat64(),
		Shipping:       totals.Shipping.InexactFloat64(),
		Tax:            totals.Tax.InexactFloat64(),
		Total:          totals.Total.InexactFloat64(),
		Status:         domain.OrderStatusPending,
		Items:          items,
		IdempotencyKey: req.IdempotencyKey,
	}

	if err := s.orders.CreateOrder(ctx, order); err != nil {
		if errors.Is(err, repository.ErrDuplicateOrder) {
			// a concurrent request from this user with the same key won the race
			return s.orders.GetOrderByIdempotencyKey(ctx, userID, req.IdempotencyKey)
		}
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	log.Printf("[checkout] order %v placed by %v total %.2f", order.ID, userID, order.Total)

	if err := s.carts.ClearCart(ctx, userID); err != nil {
		log.Printf("[checkout] failed to clear cart for %v after order %v: %v", userID, order.ID, err)
	}
	return order, nil
}

// Quote previews the totals PlaceOrder would charge for the owner's cart,
// using the same catalog snapshot. It fails where PlaceOrder would.
func (s *Service) Quote(ctx context.Context, ownerID string, zone pricing.Zone) (pricing.Totals, error) {
	c, err := s.carts.LoadCart(ctx, ownerID)
	if err != nil {
		return pricing.Totals{}, err
	}
	items, err := s.snapshot(ctx, c.Lines)
	if err != nil {
		return pricing.Totals{}, err
	}
	cfg, err := s.config.GetCheckoutConfig(ctx)
	if err != nil {
		return pricing.Totals{}, err
	}
	return pricing.Compute(items, cfg, zone), nil
}

// snapshot copies the catalog's current name, image and price for every
// line. Quantities above current stock are clamped.
func (s *Service) snapshot(ctx context.Context, lines []cart.CartLine) ([]domain.OrderItem, error) {
	items := make([]domain.OrderItem, 0, len(lines))
	for _, line := range lines {
		p, err := s.products.GetProduct(ctx, line.ProductID)
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.Validation("items", fmt.Sprintf("%s is no longer available", line.ProductName))
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get product %v: %w", line.ProductID, err)
		}

		fresh, err := line.Refreshed(p)
		if err != nil {
			return nil, err
		}
		items = append(items, domain.OrderItem{
			ProductID:    fresh.ProductID,
			ProductName:  fresh.ProductName,
			ProductImage: fresh.ProductImage,
			VariantID:    fresh.Variant.ID,
			VariantName:  fresh.Variant.Name,
			VariantPrice: fresh.Variant.Price,
			Quantity:     fresh.Quantity,
		})
	}
	return items, nil
}
