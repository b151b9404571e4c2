package http

import (
	"net/http"
	"time"

	"github.com/aniskhan146/Cartify-sub000/internal/auth"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
)

type RouterDeps struct {
	Catalog  *CatalogHandler
	Carts    *CartHandler
	Orders   *OrdersHandler
	Admin    *AdminHandler
	Verifier *auth.Verifier

	// RateLimitClient is optional; admin routes are unlimited without it.
	RateLimitClient *redis.Client
	RateLimitMax    int
	RateLimitWindow time.Duration

	RequestTimeout time.Duration
}

func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestIDMiddleware)
	r.Use(middleware.Compress(5))
	r.Use(Authenticate(deps.Verifier))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		// long-lived, so outside the request timeout
		r.Get("/products/stream", deps.Catalog.StreamProducts)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(deps.RequestTimeout))

			r.Get("/products", deps.Catalog.ListProducts)
			r.Get("/products/{id}", deps.Catalog.GetProduct)
			r.Post("/products/{id}/selection", deps.Catalog.Select)
			r.Get("/categories", deps.Catalog.ListCategories)
			r.Get("/brands", deps.Catalog.ListBrands)
			r.Get("/option-types", deps.Catalog.ListOptionTypes)

			r.Get("/cart", deps.Carts.GetCart)
			r.Delete("/cart", deps.Carts.ClearCart)
			r.Post("/cart/items", deps.Carts.AddItem)
			r.Put("/cart/items/{product_id}/{variant_id}", deps.Carts.UpdateQuantity)
			r.Delete("/cart/items/{product_id}/{variant_id}", deps.Carts.RemoveItem)

			r.Group(func(r chi.Router) {
				r.Use(RequireUser)

				r.Get("/wishlist", deps.Carts.GetWishlist)
				r.Post("/wishlist", deps.Carts.AddToWishlist)
				r.Delete("/wishlist/{product_id}", deps.Carts.RemoveFromWishlist)

				r.Post("/checkout", deps.Orders.Checkout)
				r.Get("/checkout/quote", deps.Orders.Quote)

				r.Get("/orders", deps.Orders.ListOrders)
				r.Get("/orders/{order_id}", deps.Orders.GetOrder)
				r.Get("/orders/{order_id}/invoice", deps.Orders.GetInvoice)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(RequireAdmin)
				if deps.RateLimitClient != nil {
					r.Use(RateLimiter(deps.RateLimitClient, deps.RateLimitMax, deps.RateLimitWindow))
				}

				r.Post("/products", deps.Catalog.CreateProduct)
				r.Get("/products/export", deps.Catalog.ExportProducts)
				r.Put("/products/{id}", deps.Catalog.UpdateProduct)
				r.Delete("/products/{id}", deps.Catalog.DeleteProduct)
				r.Post("/products/{id}/variants/generate", deps.Catalog.GenerateVariants)
				r.Post("/variants/generate", deps.Catalog.GenerateVariants)

				r.Post("/option-types", deps.Catalog.SaveOptionType)
				r.Put("/option-types/{id}", deps.Catalog.SaveOptionType)
				r.Delete("/option-types/{id}", deps.Catalog.DeleteOptionType)
				r.Post("/categories", deps.Catalog.CreateCategory)
				r.Delete("/categories/{id}", deps.Catalog.DeleteCategory)
				r.Post("/brands", deps.Catalog.CreateBrand)
				r.Delete("/brands/{id}", deps.Catalog.DeleteBrand)

				r.Get("/orders", deps.Orders.ListAllOrders)
				r.Patch("/orders/{user_id}/{order_id}/status", deps.Orders.UpdateStatus)
				r.Post("/orders/{user_id}/{order_id}/advance", deps.Orders.Advance)
				r.Post("/orders/{user_id}/{order_id}/cancel", deps.Orders.Cancel)

				r.Get("/settings/checkout", deps.Admin.GetCheckoutConfig)
				r.Put("/settings/checkout", deps.Admin.SetCheckoutConfig)
				r.Delete("/settings/checkout", deps.Admin.ResetCheckoutConfig)

				r.Get("/analytics", deps.Admin.Analytics)
				r.Get("/notifications", deps.Admin.ListNotifications)
				r.Post("/notifications/read", deps.Admin.MarkNotificationsRead)

				r.Post("/ai/color", deps.Admin.SuggestColor)
				r.Post("/ai/description", deps.Admin.Describe)
			})
		})
	})

	return r
}
