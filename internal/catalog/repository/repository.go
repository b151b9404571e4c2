package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/aniskhan146/Cartify-sub000/internal/apperr"
	"github.com/aniskhan146/Cartify-sub000/internal/catalog/domain"
)

var (
	ErrProductNotFound    = apperr.NotFound("product")
	ErrOptionTypeNotFound = apperr.NotFound("option type")
	ErrCategoryNotFound   = apperr.NotFound("category")
	ErrBrandNotFound      = apperr.NotFound("brand")
	ErrDuplicateName      = errors.New("name already exists")
)

type ProductFilter struct {
	Category string
	BrandID  string
}

// CatalogRepository is what the catalog service needs from storage.
type CatalogRepository interface {
	ListProducts(ctx context.Context, filter ProductFilter) ([]domain.Product, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	SaveProduct(ctx context.Context, p *domain.Product, id string) (string, error)
	DeleteProduct(ctx context.Context, id string) error

	ListOptionTypes(ctx context.Context) ([]domain.OptionType, error)
	SaveOptionType(ctx context.Context, ot *domain.OptionType) (string, error)
	DeleteOptionType(ctx context.Context, id string) error

	ListCategories(ctx context.Context) ([]domain.Category, error)
	CreateCategory(ctx context.Context, name string) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id string) error

	ListBrands(ctx context.Context) ([]domain.Brand, error)
	CreateBrand(ctx context.Context, name string) (*domain.Brand, error)
	DeleteBrand(ctx context.Context, id string) error
}

func duplicateName(what, name string) error {
	return fmt.Errorf("%w: %w", apperr.Validation("name", fmt.Sprintf("%s %q already exists", what, name)), ErrDuplicateName)
}
