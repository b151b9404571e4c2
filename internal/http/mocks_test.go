package http

import (
	"context"
	"net/http"

	"github.com/aniskhan146/Cartify-sub000/internal/auth"
	cart "github.com/aniskhan146/Cartify-sub000/internal/cart/domain"
	cartservice "github.com/aniskhan146/Cartify-sub000/internal/cart/service"
	catalog "github.com/aniskhan146/Cartify-sub000/internal/catalog/domain"
	"github.com/aniskhan146/Cartify-sub000/internal/catalog/repository"
	catalogservice "github.com/aniskhan146/Cartify-sub000/internal/catalog/service"
	"github.com/aniskhan146/Cartify-sub000/internal/catalog/variant"
	"github.com/aniskhan146/Cartify-sub000/internal/checkout"
	"github.com/aniskhan146/Cartify-sub000/internal/feed"
	"github.com/aniskhan146/Cartify-sub000/internal/notify"
	orders "github.com/aniskhan146/Cartify-sub000/internal/orders/domain"
	"github.com/aniskhan146/Cartify-sub000/internal/pricing"
	"github.com/aniskhan146/Cartify-sub000/internal/suggest"
	"github.com/go-chi/chi/v5"
)

// --- Catalog ---

type mockCatalog struct {
	product    *catalog.Product
	products   []catalog.Product
	view       *catalogservice.SelectionView
	variants   []catalog.Variant
	savedID    string
	hub        *feed.Hub[[]catalog.Product]
	err        error
	lastFilter repository.ProductFilter
	lastID     string
	lastSel    SelectionRequest
	deleted    string
}

func (m *mockCatalog) GetProduct(ctx context.Context, id string) (*catalog.Product, error) {
	m.lastID = id
	return m.product, m.err
}

func (m *mockCatalog) ListProducts(ctx context.Context, filter repository.ProductFilter) ([]catalog.Product, error) {
	m.lastFilter = filter
	return m.products, m.err
}

func (m *mockCatalog) SaveProduct(ctx context.Context, p *catalog.Product, id string) (string, error) {
	m.lastID = id
	return m.savedID, m.err
}

func (m *mockCatalog) DeleteProduct(ctx context.Context, id string) error {
	m.deleted = id
	return m.err
}

func (m *mockCatalog) GenerateVariants(ctx context.Context, productID string, selections []variant.Selection) ([]catalog.Variant, error) {
	m.lastID = productID
	return m.variants, m.err
}

func (m *mockCatalog) Select(ctx context.Context, productID string, selected map[string]string, typ, value string, quantity int) (*catalogservice.SelectionView, error) {
	m.lastID = productID
	m.lastSel = SelectionRequest{Selected: selected, Type: typ, Value: value, Quantity: quantity}
	return m.view, m.err
}

func (m *mockCatalog) ListOptionTypes(ctx context.Context) ([]catalog.OptionType, error) {
	return nil, m.err
}

func (m *mockCatalog) SaveOptionType(ctx context.Context, ot *catalog.OptionType) (string, error) {
	m.lastID = ot.ID
	return m.savedID, m.err
}

func (m *mockCatalog) DeleteOptionType(ctx context.Context, id string) error {
	m.deleted = id
	return m.err
}

func (m *mockCatalog) ListCategories(ctx context.Context) ([]catalog.Category, error) {
	return nil, m.err
}

func (m *mockCatalog) CreateCategory(ctx context.Context, name string) (*catalog.Category, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &catalog.Category{ID: "c1", Name: name}, nil
}

func (m *mockCatalog) DeleteCategory(ctx context.Context, id string) error {
	m.deleted = id
	return m.err
}

func (m *mockCatalog) ListBrands(ctx context.Context) ([]catalog.Brand, error) {
	return nil, m.err
}

func (m *mockCatalog) CreateBrand(ctx context.Context, name string) (*catalog.Brand, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &catalog.Brand{ID: "b1", Name: name}, nil
}

func (m *mockCatalog) DeleteBrand(ctx context.Context, id string) error {
	m.deleted = id
	return m.err
}

func (m *mockCatalog) Products() *feed.Hub[[]catalog.Product] {
	return m.hub
}

// --- Carts ---

type mockCarts struct {
	cart     *cart.Cart
	summary  *cartservice.Summary
	wishlist *cart.Wishlist
	err      error

	lastOwner string
	lastZone  pricing.Zone
	lastQty   int
}

func (m *mockCarts) AddItem(ctx context.Context, ownerID, productID, variantID string, quantity int) (*cart.Cart, error) {
	m.lastOwner, m.lastQty = ownerID, quantity
	return m.cart, m.err
}

func (m *mockCarts) UpdateQuantity(ctx context.Context, ownerID, productID, variantID string, quantity int) (*cart.Cart, error) {
	m.lastOwner, m.lastQty = ownerID, quantity
	return m.cart, m.err
}

func (m *mockCarts) RemoveItem(ctx context.Context, ownerID, productID, variantID string) (*cart.Cart, error) {
	m.lastOwner = ownerID
	return m.cart, m.err
}

func (m *mockCarts) ClearCart(ctx context.Context, ownerID string) error {
	m.lastOwner = ownerID
	return m.err
}

func (m *mockCarts) Summary(ctx context.Context, ownerID string, zone pricing.Zone) (*cartservice.Summary, error) {
	m.lastOwner, m.lastZone = ownerID, zone
	return m.summary, m.err
}

func (m *mockCarts) GetWishlist(ctx context.Context, userID string) (*cart.Wishlist, error) {
	m.lastOwner = userID
	return m.wishlist, m.err
}

func (m *mockCarts) AddToWishlist(ctx context.Context, userID, productID string) error {
	m.lastOwner = userID
	return m.err
}

func (m *mockCarts) RemoveFromWishlist(ctx context.Context, userID, productID string) error {
	m.lastOwner = userID
	return m.err
}

// --- Orders / Checkout ---

type mockOrders struct {
	order   *orders.Order
	orders  []*orders.Order
	invoice []byte
	err     error

	lastUser   string
	lastOrder  string
	lastStatus orders.OrderStatus
}

func (m *mockOrders) GetOrder(ctx context.Context, userID, orderID string) (*orders.Order, error) {
	m.lastUser, m.lastOrder = userID, orderID
	return m.order, m.err
}

func (m *mockOrders) ListOrders(ctx context.Context, userID string) ([]*orders.Order, error) {
	m.lastUser = userID
	return m.orders, m.err
}

func (m *mockOrders) ListAllOrders(ctx context.Context) ([]*orders.Order, error) {
	return m.orders, m.err
}

func (m *mockOrders) UpdateOrderStatus(ctx context.Context, userID, orderID string, status orders.OrderStatus) (*orders.Order, error) {
	m.lastUser, m.lastOrder, m.lastStatus = userID, orderID, status
	return m.order, m.err
}

func (m *mockOrders) AdvanceOrder(ctx context.Context, userID, orderID string) (*orders.Order, error) {
	m.lastUser, m.lastOrder = userID, orderID
	return m.order, m.err
}

func (m *mockOrders) CancelOrder(ctx context.Context, userID, orderID string) (*orders.Order, error) {
	m.lastUser, m.lastOrder = userID, orderID
	return m.order, m.err
}

func (m *mockOrders) Invoice(ctx context.Context, userID, orderID string) ([]byte, error) {
	m.lastUser, m.lastOrder = userID, orderID
	return m.invoice, m.err
}

type mockCheckout struct {
	order  *orders.Order
	totals pricing.Totals
	err    error

	lastUser string
	lastReq  checkout.Request
}

func (m *mockCheckout) PlaceOrder(ctx context.Context, userID string, req checkout.Request) (*orders.Order, error) {
	m.lastUser, m.lastReq = userID, req
	return m.order, m.err
}

func (m *mockCheckout) Quote(ctx context.Context, ownerID string, zone pricing.Zone) (pricing.Totals, error) {
	m.lastUser = ownerID
	return m.totals, m.err
}

// --- Admin ---

type mockSettings struct {
	cfg   pricing.CheckoutConfig
	err   error
	saved bool
	reset bool
}

func (m *mockSettings) GetCheckoutConfig(ctx context.Context) (pricing.CheckoutConfig, error) {
	return m.cfg, m.err
}

func (m *mockSettings) SetCheckoutConfig(ctx context.Context, cfg pricing.CheckoutConfig) error {
	if m.err != nil {
		return m.err
	}
	m.cfg, m.saved = cfg, true
	return nil
}

func (m *mockSettings) Reset(ctx context.Context) error {
	m.reset = true
	return m.err
}

type mockNotifications struct {
	items  []notify.Notification
	marked bool
}

func (m *mockNotifications) List() ([]notify.Notification, int) {
	unread := 0
	for _, n := range m.items {
		if !n.Read {
			unread++
		}
	}
	return m.items, unread
}

func (m *mockNotifications) MarkAllRead() {
	m.marked = true
}

type mockSuggestions struct {
	color       suggest.ColorSuggestion
	description string
	err         error
	lastSession string
}

func (m *mockSuggestions) SuggestColor(ctx context.Context, session, name string) (suggest.ColorSuggestion, error) {
	m.lastSession = session
	return m.color, m.err
}

func (m *mockSuggestions) Describe(ctx context.Context, req suggest.DescriptionRequest) (string, error) {
	return m.description, m.err
}

// --- helpers ---

func withUser(r *http.Request, id string) *http.Request {
	return r.WithContext(auth.WithUser(r.Context(), &auth.User{ID: id}))
}

func withAdmin(r *http.Request) *http.Request {
	return r.WithContext(auth.WithUser(r.Context(), &auth.User{ID: "admin-1", Admin: true}))
}

func withURLParams(r *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}
