package http

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/aniskhan146/Cartify-sub000/internal/analytics"
	"github.com/aniskhan146/Cartify-sub000/internal/auth"
	catalog "github.com/aniskhan146/Cartify-sub000/internal/catalog/domain"
	"github.com/aniskhan146/Cartify-sub000/internal/catalog/repository"
	"github.com/aniskhan146/Cartify-sub000/internal/notify"
	orders "github.com/aniskhan146/Cartify-sub000/internal/orders/domain"
	"github.com/aniskhan146/Cartify-sub000/internal/pricing"
	"github.com/aniskhan146/Cartify-sub000/internal/suggest"
)

type Settings interface {
	GetCheckoutConfig(ctx context.Context) (pricing.CheckoutConfig, error)
	SetCheckoutConfig(ctx context.Context, cfg pricing.CheckoutConfig) error
	Reset(ctx context.Context) error
}

type Notifications interface {
	List() ([]notify.Notification, int)
	MarkAllRead()
}

type Suggestions interface {
	SuggestColor(ctx context.Context, session, name string) (suggest.ColorSuggestion, error)
	Describe(ctx context.Context, req suggest.DescriptionRequest) (string, error)
}

type productLister interface {
	ListProducts(ctx context.Context, filter repository.ProductFilter) ([]catalog.Product, error)
}

type orderLister interface {
	ListAllOrders(ctx context.Context) ([]*orders.Order, error)
}

type AdminHandler struct {
	settings          Settings
	notifications     Notifications
	suggestions       Suggestions
	products          productLister
	orders            orderLister
	lowStockThreshold int
	timeout           time.Duration
}

type AdminDeps struct {
	Settings          Settings
	Notifications     Notifications
	Suggestions       Suggestions
	Products          productLister
	Orders            orderLister
	LowStockThreshold int
}

func NewAdminHandler(deps AdminDeps, timeout time.Duration) *AdminHandler {
	return &AdminHandler{
		settings:          deps.Settings,
		notifications:     deps.Notifications,
		suggestions:       deps.Suggestions,
		products:          deps.Products,
		orders:            deps.Orders,
		lowStockThreshold: deps.LowStockThreshold,
		timeout:           timeout,
	}
}

type NotificationsResponse struct {
	Items  []notify.Notification `json:"items"`
	Unread int                   `json:"unread"`
}

type ColorRequest struct {
	Name    string `json:"name"`
	Session string `json:"session"`
}

type DescriptionResponse struct {
	Description string `json:"description"`
}

// GET /api/v1/admin/settings/checkout
func (h *AdminHandler) GetCheckoutConfig(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	cfg, err := h.settings.GetCheckoutConfig(ctx)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, cfg)
}

// PUT /api/v1/admin/settings/checkout
func (h *AdminHandler) SetCheckoutConfig(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var cfg pricing.CheckoutConfig
	if !decodeJSON(w, r, &cfg) {
		return
	}
	if err := cfg.Validate(); err != nil {
		handleError(w, r, err)
		return
	}

	if err := h.settings.SetCheckoutConfig(ctx, cfg); err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, cfg)
}

// DELETE /api/v1/admin/settings/checkout
func (h *AdminHandler) ResetCheckoutConfig(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.settings.Reset(ctx); err != nil {
		handleError(w, r, err)
		return
	}
	h.GetCheckoutConfig(w, r)
}

// GET /api/v1/admin/analytics
func (h *AdminHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	all, err := h.orders.ListAllOrders(ctx)
	if err != nil {
		handleError(w, r, err)
		return
	}
	products, err := h.products.ListProducts(ctx, repository.ProductFilter{})
	if err != nil {
		handleError(w, r, err)
		return
	}

	values := make([]orders.Order, 0, len(all))
	for _, o := range all {
		values = append(values, *o)
	}
	respondJSON(w, http.StatusOK, analytics.Summarize(values, products, h.lowStockThreshold))
}

// GET /api/v1/admin/notifications
func (h *AdminHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	items, unread := h.notifications.List()
	if items == nil {
		items = []notify.Notification{}
	}
	respondJSON(w, http.StatusOK, NotificationsResponse{Items: items, Unread: unread})
}

// POST /api/v1/admin/notifications/read
func (h *AdminHandler) MarkNotificationsRead(w http.ResponseWriter, r *http.Request) {
	h.notifications.MarkAllRead()
	w.WriteHeader(http.StatusNoContent)
}

// POST /api/v1/admin/ai/color
//
// Lookups are debounced per editing session; a request replaced by a newer
// one for the same session answers 409.
func (h *AdminHandler) SuggestColor(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req ColorRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "name is required")
		return
	}

	session := auth.UserID(r.Context()) + ":" + req.Session
	color, err := h.suggestions.SuggestColor(ctx, session, req.Name)
	if err != nil {
		h.handleAIError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, color)
}

// POST /api/v1/admin/ai/description
func (h *AdminHandler) Describe(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req suggest.DescriptionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "name is required")
		return
	}

	text, err := h.suggestions.Describe(ctx, req)
	if err != nil {
		h.handleAIError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, DescriptionResponse{Description: text})
}

func (h *AdminHandler) handleAIError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, suggest.ErrNotConfigured) {
		respondError(w, http.StatusServiceUnavailable, "ai_unavailable", "AI suggestions are not configured")
		return
	}
	handleError(w, r, err)
}
