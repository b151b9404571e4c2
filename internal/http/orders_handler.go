package http

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/aniskhan146/Cartify-sub000/internal/auth"
	"github.com/aniskhan146/Cartify-sub000/internal/checkout"
	"github.com/aniskhan146/Cartify-sub000/internal/orders/domain"
	"github.com/aniskhan146/Cartify-sub000/internal/pricing"
	"github.com/go-chi/chi/v5"
)

type Orders interface {
	GetOrder(ctx context.Context, userID, orderID string) (*domain.Order, error)
	ListOrders(ctx context.Context, userID string) ([]*domain.Order, error)
	ListAllOrders(ctx context.Context) ([]*domain.Order, error)
	UpdateOrderStatus(ctx context.Context, userID, orderID string, status domain.OrderStatus) (*domain.Order, error)
	AdvanceOrder(ctx context.Context, userID, orderID string) (*domain.Order, error)
	CancelOrder(ctx context.Context, userID, orderID string) (*domain.Order, error)
	Invoice(ctx context.Context, userID, orderID string) ([]byte, error)
}

type Checkout interface {
	PlaceOrder(ctx context.Context, userID string, req checkout.Request) (*domain.Order, error)
	Quote(ctx context.Context, ownerID string, zone pricing.Zone) (pricing.Totals, error)
}

type OrdersHandler struct {
	orders   Orders
	checkout Checkout
	timeout  time.Duration
}

func NewOrdersHandler(orders Orders, checkout Checkout, timeout time.Duration) *OrdersHandler {
	return &OrdersHandler{
		orders:   orders,
		checkout: checkout,
		timeout:  timeout,
	}
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// POST /api/v1/checkout
func (h *OrdersHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req checkout.Request
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.IdempotencyKey == "" {
		req.IdempotencyKey = r.Header.Get("Idempotency-Key")
	}

	order, err := h.checkout.PlaceOrder(ctx, auth.UserID(r.Context()), req)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, order)
}

// GET /api/v1/checkout/quote?zone=outside
func (h *OrdersHandler) Quote(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	zone, err := pricing.ParseZone(r.URL.Query().Get("zone"))
	if err != nil {
		handleError(w, r, err)
		return
	}

	totals, err := h.checkout.Quote(ctx, auth.UserID(r.Context()), zone)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, totals)
}

// GET /api/v1/orders
func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	orders, err := h.orders.ListOrders(ctx, auth.UserID(r.Context()))
	if err != nil {
		handleError(w, r, err)
		return
	}
	if orders == nil {
		orders = []*domain.Order{}
	}
	respondJSON(w, http.StatusOK, orders)
}

// GET /api/v1/orders/{order_id}
func (h *OrdersHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	order, err := h.orders.GetOrder(ctx, auth.UserID(r.Context()), chi.URLParam(r, "order_id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}

// GET /api/v1/orders/{order_id}/invoice
func (h *OrdersHandler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	orderID := chi.URLParam(r, "order_id")
	pdf, err := h.orders.Invoice(ctx, auth.UserID(r.Context()), orderID)
	if err != nil {
		handleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="invoice-%s.pdf"`, orderID))
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(pdf); err != nil {
		log.Printf("[http] failed to write invoice %s: %v", orderID, err)
	}
}

// GET /api/v1/admin/orders
func (h *OrdersHandler) ListAllOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	orders, err := h.orders.ListAllOrders(ctx)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if orders == nil {
		orders = []*domain.Order{}
	}
	respondJSON(w, http.StatusOK, orders)
}

// PATCH /api/v1/admin/orders/{user_id}/{order_id}/status
func (h *OrdersHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req UpdateStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	status, err := domain.ParseOrderStatus(req.Status)
	if err != nil {
		handleError(w, r, err)
		return
	}

	order, err := h.orders.UpdateOrderStatus(ctx, chi.URLParam(r, "user_id"), chi.URLParam(r, "order_id"), status)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}

// POST /api/v1/admin/orders/{user_id}/{order_id}/advance
func (h *OrdersHandler) Advance(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.orders.AdvanceOrder)
}

// POST /api/v1/admin/orders/{user_id}/{order_id}/cancel
func (h *OrdersHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.orders.CancelOrder)
}

func (h *OrdersHandler) transition(w http.ResponseWriter, r *http.Request, fn func(context.Context, string, string) (*domain.Order, error)) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	order, err := fn(ctx, chi.URLParam(r, "user_id"), chi.URLParam(r, "order_id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}
