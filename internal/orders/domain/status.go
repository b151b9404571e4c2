package domain

import (
	"fmt"
	"strings"

	"github.com/aniskhan146/Cartify-sub000/internal/apperr"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "Pending"
	OrderStatusProcessed OrderStatus = "Processed"
	OrderStatusShipped   OrderStatus = "Shipped"
	OrderStatusDelivered OrderStatus = "Delivered"
	OrderStatusCanceled  OrderStatus = "Canceled"
)

var forward = map[OrderStatus]OrderStatus{
	OrderStatusPending:   OrderStatusProcessed,
	OrderStatusProcessed: OrderStatusShipped,
	OrderStatusShipped:   OrderStatusDelivered,
}

// ParseOrderStatus is case-insensitive and accepts "Cancelled".
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending":
		return OrderStatusPending, nil
	case "processed":
		return OrderStatusProcessed, nil
	case "shipped":
		return OrderStatusShipped, nil
	case "delivered":
		return OrderStatusDelivered, nil
	case "canceled", "cancelled":
		return OrderStatusCanceled, nil
	}
	return "", apperr.Validation("status", fmt.Sprintf("unknown order status %q", s))
}

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCanceled
}

// Next is the single forward step, if any.
func (s OrderStatus) Next() (OrderStatus, bool) {
	n, ok := forward[s]
	return n, ok
}

// CanTransitionTo allows one forward step or cancelling a non-terminal order.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	if s.IsTerminal() {
		return false
	}
	if target == OrderStatusCanceled {
		return true
	}
	next, ok := s.Next()
	return ok && next == target
}

func (s OrderStatus) String() string {
	return string(s)
}

// IllegalTransitionError reports a status change the state machine forbids.
type IllegalTransitionError struct {
	From OrderStatus
	To   OrderStatus
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal order status transition: %s -> %s", e.From, e.To)
}

func (e *IllegalTransitionError) Is(target error) bool {
	return target == apperr.ErrValidation
}
