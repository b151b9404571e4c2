package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/aniskhan146/Cartify-sub000/internal/catalog/domain"
	"github.com/aniskhan146/Cartify-sub000/internal/catalog/export"
	"github.com/aniskhan146/Cartify-sub000/internal/catalog/repository"
	"github.com/aniskhan146/Cartify-sub000/internal/catalog/service"
	"github.com/aniskhan146/Cartify-sub000/internal/catalog/variant"
	"github.com/aniskhan146/Cartify-sub000/internal/feed"
	"github.com/go-chi/chi/v5"
)

// Catalog is the part of the catalog service the HTTP layer calls.
type Catalog interface {
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	ListProducts(ctx context.Context, filter repository.ProductFilter) ([]domain.Product, error)
	SaveProduct(ctx context.Context, p *domain.Product, id string) (string, error)
	DeleteProduct(ctx context.Context, id string) error
	GenerateVariants(ctx context.Context, productID string, selections []variant.Selection) ([]domain.Variant, error)
	Select(ctx context.Context, productID string, selected map[string]string, typ, value string, quantity int) (*service.SelectionView, error)

	ListOptionTypes(ctx context.Context) ([]domain.OptionType, error)
	SaveOptionType(ctx context.Context, ot *domain.OptionType) (string, error)
	DeleteOptionType(ctx context.Context, id string) error

	ListCategories(ctx context.Context) ([]domain.Category, error)
	CreateCategory(ctx context.Context, name string) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id string) error

	ListBrands(ctx context.Context) ([]domain.Brand, error)
	CreateBrand(ctx context.Context, name string) (*domain.Brand, error)
	DeleteBrand(ctx context.Context, id string) error

	Products() *feed.Hub[[]domain.Product]
}

type CatalogHandler struct {
	catalog Catalog
	timeout time.Duration
}

func NewCatalogHandler(catalog Catalog, timeout time.Duration) *CatalogHandler {
	return &CatalogHandler{
		catalog: catalog,
		timeout: timeout,
	}
}

type SelectionRequest struct {
	Selected map[string]string `json:"selected"`
	Type     string            `json:"type"`
	Value    string            `json:"value"`
	Quantity int               `json:"quantity"`
}

type GenerateVariantsRequest struct {
	Selections []variant.Selection `json:"selections"`
}

type NameRequest struct {
	Name string `json:"name"`
}

type IDResponse struct {
	ID string `json:"id"`
}

// GET /api/v1/products
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	filter := repository.ProductFilter{
		Category: r.URL.Query().Get("category"),
		BrandID:  r.URL.Query().Get("brand"),
	}
	products, err := h.catalog.ListProducts(ctx, filter)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if products == nil {
		products = []domain.Product{}
	}
	respondJSON(w, http.StatusOK, products)
}

// GET /api/v1/products/{id}
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	p, err := h.catalog.GetProduct(ctx, chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

// POST /api/v1/products/{id}/selection
func (h *CatalogHandler) Select(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req SelectionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	view, err := h.catalog.Select(ctx, chi.URLParam(r, "id"), req.Selected, req.Type, req.Value, req.Quantity)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// GET /api/v1/products/stream
//
// Server-sent events carrying the whole product list each time it changes.
func (h *CatalogHandler) StreamProducts(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "internal_error", "streaming unsupported")
		return
	}

	updates, unsubscribe := h.catalog.Products().Subscribe()
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case products, ok := <-updates:
			if !ok {
				return
			}
			data, err := json.Marshal(products)
			if err != nil {
				log.Printf("[http] failed to encode product snapshot: %v", err)
				continue
			}
			if _, err := fmt.Fprintf(w, "event: products\ndata: %s\n\n", data); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

// GET /api/v1/categories
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	categories, err := h.catalog.ListCategories(ctx)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if categories == nil {
		categories = []domain.Category{}
	}
	respondJSON(w, http.StatusOK, categories)
}

// GET /api/v1/brands
func (h *CatalogHandler) ListBrands(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	brands, err := h.catalog.ListBrands(ctx)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if brands == nil {
		brands = []domain.Brand{}
	}
	respondJSON(w, http.StatusOK, brands)
}

// GET /api/v1/option-types
func (h *CatalogHandler) ListOptionTypes(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	types, err := h.catalog.ListOptionTypes(ctx)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if types == nil {
		types = []domain.OptionType{}
	}
	respondJSON(w, http.StatusOK, types)
}

// POST /api/v1/admin/products
func (h *CatalogHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	h.saveProduct(w, r, "", http.StatusCreated)
}

// PUT /api/v1/admin/products/{id}
func (h *CatalogHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	h.saveProduct(w, r, chi.URLParam(r, "id"), http.StatusOK)
}

func (h *CatalogHandler) saveProduct(w http.ResponseWriter, r *http.Request, id string, status int) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var p domain.Product
	if !decodeJSON(w, r, &p) {
		return
	}

	savedID, err := h.catalog.SaveProduct(ctx, &p, id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, status, IDResponse{ID: savedID})
}

// DELETE /api/v1/admin/products/{id}
func (h *CatalogHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.catalog.DeleteProduct(ctx, chi.URLParam(r, "id")); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// POST /api/v1/admin/products/{id}/variants/generate
// POST /api/v1/admin/variants/generate
func (h *CatalogHandler) GenerateVariants(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req GenerateVariantsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	variants, err := h.catalog.GenerateVariants(ctx, chi.URLParam(r, "id"), req.Selections)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if variants == nil {
		variants = []domain.Variant{}
	}
	respondJSON(w, http.StatusOK, variants)
}

// GET /api/v1/admin/products/export
func (h *CatalogHandler) ExportProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	products, err := h.catalog.ListProducts(ctx, repository.ProductFilter{})
	if err != nil {
		handleError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, products); err != nil {
		handleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="products.csv"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		log.Printf("[http] failed to write export: %v", err)
	}
}

// POST /api/v1/admin/option-types
// PUT /api/v1/admin/option-types/{id}
func (h *CatalogHandler) SaveOptionType(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var ot domain.OptionType
	if !decodeJSON(w, r, &ot) {
		return
	}

	status := http.StatusCreated
	if id := chi.URLParam(r, "id"); id != "" {
		ot.ID = id
		status = http.StatusOK
	}

	id, err := h.catalog.SaveOptionType(ctx, &ot)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, status, IDResponse{ID: id})
}

// DELETE /api/v1/admin/option-types/{id}
func (h *CatalogHandler) DeleteOptionType(w http.ResponseWriter, r *http.Request) {
	h.delete(w, r, h.catalog.DeleteOptionType)
}

// POST /api/v1/admin/categories
func (h *CatalogHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req NameRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	c, err := h.catalog.CreateCategory(ctx, req.Name)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, c)
}

// DELETE /api/v1/admin/categories/{id}
func (h *CatalogHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	h.delete(w, r, h.catalog.DeleteCategory)
}

// POST /api/v1/admin/brands
func (h *CatalogHandler) CreateBrand(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req NameRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	b, err := h.catalog.CreateBrand(ctx, req.Name)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, b)
}

// DELETE /api/v1/admin/brands/{id}
func (h *CatalogHandler) DeleteBrand(w http.ResponseWriter, r *http.Request) {
	h.delete(w, r, h.catalog.DeleteBrand)
}

func (h *CatalogHandler) delete(w http.ResponseWriter, r *http.Request, fn func(context.Context, string) error) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := fn(ctx, chi.URLParam(r, "id")); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
