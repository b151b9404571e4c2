package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/aniskhan146/Cartify-sub000/internal/apperr"
	"github.com/aniskhan146/Cartify-sub000/internal/cache"
	"github.com/aniskhan146/Cartify-sub000/internal/catalog/domain"
	"github.com/aniskhan146/Cartify-sub000/internal/catalog/repository"
	"github.com/aniskhan146/Cartify-sub000/internal/catalog/variant"
	"github.com/aniskhan146/Cartify-sub000/internal/feed"
	"golang.org/x/sync/singleflight"
)

type CatalogService struct {
	repo     repository.CatalogRepository
	cache    cache.Cache[domain.Product]
	products *feed.Hub[[]domain.Product]
	sfg      singleflight.Group
}

func NewCatalogService(repo repository.CatalogRepository, c cache.Cache[domain.Product], products *feed.Hub[[]domain.Product]) *CatalogService {
	return &CatalogService{
		repo:     repo,
		cache:    c,
		products: products,
	}
}

func (s *CatalogService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	v, err, _ := s.sfg.Do(id, func() (interface{}, error) {
		p, err := s.cache.Get(ctx, id)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Printf("[catalog] cache get error: %v", err)
		}

		p, err = s.repo.GetProduct(ctx, id)
		if err != nil {
			return nil, err
		}

		go func() {
			if err := s.cache.Set(context.Background(), id, p); err != nil {
				log.Printf("[catalog] cache set error: %v", err)
			}
		}()
		return p, nil
	})
	if err != nil {
		return nil, err
	}

	// callers may mutate the product; hand each a private copy
	p := *v.(*domain.Product)
	p.Variants = append([]domain.Variant(nil), p.Variants...)
	return &p, nil
}

func (s *CatalogService) ListProducts(ctx context.Context, filter repository.ProductFilter) ([]domain.Product, error) {
	return s.repo.ListProducts(ctx, filter)
}

// SaveProduct validates and persists, then refreshes the product feed.
func (s *CatalogService) SaveProduct(ctx context.Context, p *domain.Product, id string) (string, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.Category = strings.TrimSpace(p.Category)
	if err := p.Validate(); err != nil {
		return "", err
	}

	savedID, err := s.repo.SaveProduct(ctx, p, id)
	if err != nil {
		return "", err
	}

	s.invalidate(savedID)
	s.publish(ctx)
	return savedID, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		return err
	}
	s.invalidate(id)
	s.publish(ctx)
	return nil
}

// GenerateVariants builds a fresh variant list for editing. Nothing is
// persisted until the product is saved.
func (s *CatalogService) GenerateVariants(ctx context.Context, productID string, selections []variant.Selection) ([]domain.Variant, error) {
	var existing []domain.Variant
	if productID != "" {
		p, err := s.GetProduct(ctx, productID)
		if err != nil {
			return nil, err
		}
		existing = p.Variants
	}

	canonical, err := s.canonicalSelections(ctx, selections)
	if err != nil {
		return nil, err
	}
	return variant.Generate(canonical, existing)
}

// canonicalSelections rejects types and values that are not in the catalog
// and rewrites the rest to their stored spelling.
func (s *CatalogService) canonicalSelections(ctx context.Context, selections []variant.Selection) ([]variant.Selection, error) {
	types, err := s.repo.ListOptionTypes(ctx)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]domain.OptionType, len(types))
	for _, ot := range types {
		byName[strings.ToLower(ot.Name)] = ot
	}

	out := make([]variant.Selection, 0, len(selections))
	for _, sel := range selections {
		ot, ok := byName[strings.ToLower(strings.TrimSpace(sel.Type))]
		if !ok {
			return nil, apperr.Validation("options", fmt.Sprintf("unknown option type %q", sel.Type))
		}
		values := make([]string, 0, len(sel.Values))
		for _, v := range sel.Values {
			stored, ok := ot.Value(v)
			if !ok {
				return nil, apperr.Validation("options", fmt.Sprintf("%q is not a value of %q", v, ot.Name))
			}
			values = append(values, stored.Name)
		}
		out = append(out, variant.Selection{Type: ot.Name, Values: values})
	}
	return out, nil
}

// SelectionView is what the product page needs after a shopper picks a value.
type SelectionView struct {
	Options   map[string][]variant.ValueState `json:"options"`
	Selected  map[string]string               `json:"selected"`
	Complete  bool                            `json:"complete"`
	Variant   *domain.Variant                 `json:"variant"`
	Available bool                            `json:"available"`
	Quantity  int                             `json:"quantity"`
}

// Select replays the stored selection, applies the new pick (if any) and
// clamps the requested quantity.
func (s *CatalogService) Select(ctx context.Context, productID string, selected map[string]string, typ, value string, quantity int) (*SelectionView, error) {
	p, err := s.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	sel := variant.NewSelectorWith(p.Variants, selected)
	before, _ := sel.Resolved()
	if typ != "" {
		sel.SelectOption(typ, value)
	}
	after, resolved := sel.Resolved()
	// quantity only carries over while the same variant stays resolved
	if typ == "" || (resolved && before != nil && before.ID == after.ID) {
		sel.SetQuantity(quantity)
	}

	view := &SelectionView{
		Options:   make(map[string][]variant.ValueState),
		Selected:  sel.Selected(),
		Complete:  sel.Complete(),
		Variant:   after,
		Available: sel.Purchasable(),
		Quantity:  sel.Quantity(),
	}
	for _, t := range sel.OptionTypes() {
		view.Options[t] = sel.Values(t)
	}
	return view, nil
}

func (s *CatalogService) ListOptionTypes(ctx context.Context) ([]domain.OptionType, error) {
	return s.repo.ListOptionTypes(ctx)
}

func (s *CatalogService) SaveOptionType(ctx context.Context, ot *domain.OptionType) (string, error) {
	ot.Name = strings.TrimSpace(ot.Name)
	for i := range ot.Values {
		ot.Values[i].Name = strings.TrimSpace(ot.Values[i].Name)
	}
	if err := ot.Validate(); err != nil {
		return "", err
	}
	return s.repo.SaveOptionType(ctx, ot)
}

func (s *CatalogService) DeleteOptionType(ctx context.Context, id string) error {
	return s.repo.DeleteOptionType(ctx, id)
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.repo.ListCategories(ctx)
}

func (s *CatalogService) CreateCategory(ctx context.Context, name string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation("name", "category name is required")
	}
	return s.repo.CreateCategory(ctx, name)
}

func (s *CatalogService) DeleteCategory(ctx context.Context, id string) error {
	return s.repo.DeleteCategory(ctx, id)
}

func (s *CatalogService) ListBrands(ctx context.Context) ([]domain.Brand, error) {
	return s.repo.ListBrands(ctx)
}

func (s *CatalogService) CreateBrand(ctx context.Context, name string) (*domain.Brand, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation("name", "brand name is required")
	}
	return s.repo.CreateBrand(ctx, name)
}

// DeleteBrand also evicts the cached products that referenced the brand.
func (s *CatalogService) DeleteBrand(ctx context.Context, id string) error {
	affected, err := s.repo.ListProducts(ctx, repository.ProductFilter{BrandID: id})
	if err != nil {
		return err
	}
	if err := s.repo.DeleteBrand(ctx, id); err != nil {
		return err
	}
	for _, p := range affected {
		s.invalidate(p.ID)
	}
	s.publish(ctx)
	return nil
}

// Refresh pushes the current product list to subscribers.
func (s *CatalogService) Refresh(ctx context.Context) error {
	products, err := s.repo.ListProducts(ctx, repository.ProductFilter{})
	if err != nil {
		return err
	}
	s.products.Publish(products)
	return nil
}

func (s *CatalogService) Products() *feed.Hub[[]domain.Product] {
	return s.products
}

func (s *CatalogService) publish(ctx context.Context) {
	if err := s.Refresh(ctx); err != nil {
		log.Printf("[catalog] refresh product feed: %v", err)
	}
}

func (s *CatalogService) invalidate(id string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, id); err != nil {
		log.Printf("[catalog] cache invalidate error: %v", err)
	}
}
