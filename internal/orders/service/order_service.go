package service

import (
	"context"
	"log"

	"github.com/aniskhan146/Cartify-sub000/internal/apperr"
	"github.com/aniskhan146/Cartify-sub000/internal/feed"
	"github.com/aniskhan146/Cartify-sub000/internal/orders/domain"
	"github.com/aniskhan146/Cartify-sub000/internal/orders/repository"
)

// InvoiceRenderer turns an order into a printable document.
type InvoiceRenderer interface {
	Render(order *domain.Order) ([]byte, error)
}

type OrderService struct {
	repo     repository.OrderRepository
	invoices InvoiceRenderer
	orders   *feed.Hub[[]domain.Order]
}

func NewOrderService(repo repository.OrderRepository, invoices InvoiceRenderer, orders *feed.Hub[[]domain.Order]) *OrderService {
	return &OrderService{
		repo:     repo,
		invoices: invoices,
		orders:   orders,
	}
}

func (s *OrderService) GetOrder(ctx context.Context, userID, orderID string) (*domain.Order, error) {
	if userID == "" {
		return nil, apperr.ErrAuthRequired
	}
	return s.repo.GetOrder(ctx, userID, orderID)
}

func (s *OrderService) ListOrders(ctx context.Context, userID string) ([]*domain.Order, error) {
	if userID == "" {
		return nil, apperr.ErrAuthRequired
	}
	return s.repo.ListOrdersByUserID(ctx, userID)
}

func (s *OrderService) ListAllOrders(ctx context.Context) ([]*domain.Order, error) {
	return s.repo.ListOrders(ctx)
}

// UpdateOrderStatus applies one state-machine step chosen by an admin.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, userID, orderID string, status domain.OrderStatus) (*domain.Order, error) {
	order, err := s.repo.UpdateStatus(ctx, userID, orderID, status)
	if err != nil {
		return nil, err
	}
	log.Printf("[orders] order %s moved to %s", order.ID, order.Status)
	s.publish(ctx)
	return order, nil
}

// AdvanceOrder moves the order to its single forward successor.
func (s *OrderService) AdvanceOrder(ctx context.Context, userID, orderID string) (*domain.Order, error) {
	order, err := s.repo.GetOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	next, ok := order.Status.Next()
	if !ok {
		return nil, &domain.IllegalTransitionError{From: order.Status, To: order.Status}
	}
	return s.UpdateOrderStatus(ctx, userID, orderID, next)
}

func (s *OrderService) CancelOrder(ctx context.Context, userID, orderID string) (*domain.Order, error) {
	return s.UpdateOrderStatus(ctx, userID, orderID, domain.OrderStatusCanceled)
}

func (s *OrderService) Invoice(ctx context.Context, userID, orderID string) ([]byte, error) {
	order, err := s.GetOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	return s.invoices.Render(order)
}

// Refresh publishes the authoritative order list to subscribers.
func (s *OrderService) Refresh(ctx context.Context) error {
	orders, err := s.repo.ListOrders(ctx)
	if err != nil {
		return err
	}
	snapshot := make([]domain.Order, 0, len(orders))
	for _, o := range orders {
		snapshot = append(snapshot, *o)
	}
	s.orders.Publish(snapshot)
	return nil
}

func (s *OrderService) Orders() *feed.Hub[[]domain.Order] {
	return s.orders
}

func (s *OrderService) publish(ctx context.Context) {
	if err := s.Refresh(ctx); err != nil {
		log.Printf("[orders] refresh order feed: %v", err)
	}
}
