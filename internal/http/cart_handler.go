package http

import (
	"context"
	"net/http"
	"time"

	"github.com/aniskhan146/Cartify-sub000/internal/auth"
	"github.com/aniskhan146/Cartify-sub000/internal/cart/domain"
	"github.com/aniskhan146/Cartify-sub000/internal/cart/service"
	"github.com/aniskhan146/Cartify-sub000/internal/pricing"
	"github.com/go-chi/chi/v5"
)

type Carts interface {
	AddItem(ctx context.Context, ownerID, productID, variantID string, quantity int) (*domain.Cart, error)
	UpdateQuantity(ctx context.Context, ownerID, productID, variantID string, quantity int) (*domain.Cart, error)
	RemoveItem(ctx context.Context, ownerID, productID, variantID string) (*domain.Cart, error)
	ClearCart(ctx context.Context, ownerID string) error
	Summary(ctx context.Context, ownerID string, zone pricing.Zone) (*service.Summary, error)

	GetWishlist(ctx context.Context, userID string) (*domain.Wishlist, error)
	AddToWishlist(ctx context.Context, userID, productID string) error
	RemoveFromWishlist(ctx context.Context, userID, productID string) error
}

type CartHandler struct {
	carts   Carts
	timeout time.Duration
}

func NewCartHandler(carts Carts, timeout time.Duration) *CartHandler {
	return &CartHandler{
		carts:   carts,
		timeout: timeout,
	}
}

type AddItemRequest struct {
	ProductID string `json:"productId"`
	VariantID string `json:"variantId"`
	Quantity  int    `json:"quantity"`
}

type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type WishlistRequest struct {
	ProductID string `json:"productId"`
}

// GET /api/v1/cart?zone=inside
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	owner, err := cartOwner(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	zone, err := pricing.ParseZone(r.URL.Query().Get("zone"))
	if err != nil {
		handleError(w, r, err)
		return
	}

	summary, err := h.carts.Summary(ctx, owner, zone)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

// POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	owner, err := cartOwner(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	var req AddItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ProductID == "" || req.VariantID == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "productId and variantId are required")
		return
	}

	cart, err := h.carts.AddItem(ctx, owner, req.ProductID, req.VariantID, req.Quantity)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, cart)
}

// PUT /api/v1/cart/items/{product_id}/{variant_id}
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	owner, err := cartOwner(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	var req UpdateQuantityRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	cart, err := h.carts.UpdateQuantity(ctx, owner, chi.URLParam(r, "product_id"), chi.URLParam(r, "variant_id"), req.Quantity)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, cart)
}

// DELETE /api/v1/cart/items/{product_id}/{variant_id}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	owner, err := cartOwner(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	cart, err := h.carts.RemoveItem(ctx, owner, chi.URLParam(r, "product_id"), chi.URLParam(r, "variant_id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, cart)
}

// DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	owner, err := cartOwner(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	if err := h.carts.ClearCart(ctx, owner); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /api/v1/wishlist
func (h *CartHandler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	wl, err := h.carts.GetWishlist(ctx, auth.UserID(r.Context()))
	if err != nil {
		handleError(w, r, err)
		return
	}
	if wl.ProductIDs == nil {
		wl.ProductIDs = []string{}
	}
	respondJSON(w, http.StatusOK, wl)
}

// POST /api/v1/wishlist
func (h *CartHandler) AddToWishlist(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req WishlistRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "productId is required")
		return
	}

	if err := h.carts.AddToWishlist(ctx, auth.UserID(r.Context()), req.ProductID); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DELETE /api/v1/wishlist/{product_id}
func (h *CartHandler) RemoveFromWishlist(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.carts.RemoveFromWishlist(ctx, auth.UserID(r.Context()), chi.URLParam(r, "product_id")); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
