package service

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"log"
	"sync"
	"time"

	"github.com/aniskhan146/Cartify-sub000/internal/apperr"
	"github.com/aniskhan146/Cartify-sub000/internal/cache"
	"github.com/aniskhan146/Cartify-sub000/internal/cart/domain"
	"github.com/aniskhan146/Cartify-sub000/internal/cart/repository"
	catalog "github.com/aniskhan146/Cartify-sub000/internal/catalog/domain"
	"github.com/aniskhan146/Cartify-sub000/internal/pricing"
	"golang.org/x/sync/singleflight"
)

var ErrVariantNotFound = apperr.NotFound("variant")

type ProductLookup interface {
	GetProduct(ctx context.Context, id string) (*catalog.Product, error)
}

type ConfigSource interface {
	GetCheckoutConfig(ctx context.Context) (pricing.CheckoutConfig, error)
}

const lockStripes = 64

type CartService struct {
	repo      repository.CartRepository
	wishlists repository.WishlistRepository
	cache     cache.Cache[domain.Cart]
	products  ProductLookup
	config    ConfigSource
	sfg       singleflight.Group
	locks     [lockStripes]sync.Mutex
}

func NewCartService(
	repo repository.CartRepository,
	wishlists repository.WishlistRepository,
	c cache.Cache[domain.Cart],
	products ProductLookup,
	config ConfigSource,
) *CartService {
	return &CartService{
		repo:      repo,
		wishlists: wishlists,
		cache:     c,
		products:  products,
		config:    config,
	}
}

// GetCart never fails for an unknown owner; it returns an empty cart.
func (s *CartService) GetCart(ctx context.Context, ownerID string) (*domain.Cart, error) {
	v, err, _ := s.sfg.Do(ownerID, func() (interface{}, error) {
		cart, err := s.cache.Get(ctx, ownerID)
		if err == nil {
			return cart, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Printf("[cart] cache get error: %v", err)
		}
		return s.fill(ctx, ownerID)
	})
	if err != nil {
		return nil, err
	}

	cart := *v.(*domain.Cart)
	cart.Lines = append([]domain.CartLine{}, cart.Lines...)
	return &cart, nil
}

// fill reads the stored cart and caches it while holding the owner's lock,
// the same lock mutate holds across its write and invalidation. A fill can
// therefore never put back a cart older than the last write.
func (s *CartService) fill(ctx context.Context, ownerID string) (*domain.Cart, error) {
	mu := s.lockFor(ownerID)
	mu.Lock()
	defer mu.Unlock()

	cart, err := s.repo.GetCart(ctx, ownerID)
	if errors.Is(err, repository.ErrCartNotFound) {
		return domain.NewCart(ownerID), nil
	}
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, ownerID, cart); err != nil {
		log.Printf("[cart] cache set error: %v", err)
	}
	return cart, nil
}

// LoadCart reads the stored cart without going through the cache.
func (s *CartService) LoadCart(ctx context.Context, ownerID string) (*domain.Cart, error) {
	cart, err := s.repo.GetCart(ctx, ownerID)
	if errors.Is(err, repository.ErrCartNotFound) {
		return domain.NewCart(ownerID), nil
	}
	if err != nil {
		return nil, err
	}
	return cart, nil
}

// AddItem copies the current product and variant data into the cart line.
func (s *CartService) AddItem(ctx context.Context, ownerID, productID, variantID string, quantity int) (*domain.Cart, error) {
	p, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	v, ok := p.FindVariant(variantID)
	if !ok {
		return nil, ErrVariantNotFound
	}

	return s.mutate(ctx, ownerID, func(c *domain.Cart) error {
		return c.Add(domain.CartLine{
			ProductID:    p.ID,
			ProductName:  p.Name,
			ProductImage: p.PrimaryImage(),
			Variant:      v,
			Quantity:     quantity,
		})
	})
}

// UpdateQuantity clamps against the catalog's current stock and refreshes the
// line's variant copy.
func (s *CartService) UpdateQuantity(ctx context.Context, ownerID, productID, variantID string, quantity int) (*domain.Cart, error) {
	p, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	v, ok := p.FindVariant(variantID)
	if !ok {
		return nil, ErrVariantNotFound
	}

	return s.mutate(ctx, ownerID, func(c *domain.Cart) error {
		if err := c.RefreshVariant(productID, v); err != nil {
			return err
		}
		if !v.InStock() {
			return domain.ErrOutOfStock
		}
		return c.UpdateQuantity(productID, variantID, quantity)
	})
}

func (s *CartService) RemoveItem(ctx context.Context, ownerID, productID, variantID string) (*domain.Cart, error) {
	return s.mutate(ctx, ownerID, func(c *domain.Cart) error {
		return c.Remove(productID, variantID)
	})
}

func (s *CartService) ClearCart(ctx context.Context, ownerID string) error {
	mu := s.lockFor(ownerID)
	mu.Lock()
	defer mu.Unlock()

	err := s.repo.DeleteCart(ctx, ownerID)
	if err != nil && !errors.Is(err, repository.ErrCartNotFound) {
		log.Printf("[cart] repo delete cart error: %v", err)
		return err
	}
	s.invalidateCache(ownerID)
	return nil
}

// Summary prices the cart the way checkout will: Cart.Lines carry current
// catalog prices clamped to stock, and lines checkout would reject are moved
// to Unavailable and left out of the totals.
type Summary struct {
	Cart        *domain.Cart           `json:"cart"`
	Unavailable []domain.CartLine      `json:"unavailable"`
	Zone        pricing.Zone           `json:"zone"`
	Totals      pricing.Totals         `json:"totals"`
	Config      pricing.CheckoutConfig `json:"config"`
}

func (s *CartService) Summary(ctx context.Context, ownerID string, zone pricing.Zone) (*Summary, error) {
	cart, err := s.GetCart(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	cfg, err := s.config.GetCheckoutConfig(ctx)
	if err != nil {
		return nil, err
	}

	priced := make([]domain.CartLine, 0, len(cart.Lines))
	unavailable := []domain.CartLine{}
	for _, line := range cart.Lines {
		p, err := s.products.GetProduct(ctx, line.ProductID)
		if errors.Is(err, apperr.ErrNotFound) {
			unavailable = append(unavailable, line)
			continue
		}
		if err != nil {
			return nil, err
		}
		fresh, err := line.Refreshed(p)
		if err != nil {
			unavailable = append(unavailable, line)
			continue
		}
		priced = append(priced, fresh)
	}
	cart.Lines = priced

	return &Summary{
		Cart:        cart,
		Unavailable: unavailable,
		Zone:        zone,
		Totals:      pricing.Compute(priced, cfg, zone),
		Config:      cfg,
	}, nil
}

// mutate loads the cart from storage, applies fn and writes it back. Writes
// for one owner are serialised within this process.
func (s *CartService) mutate(ctx context.Context, ownerID string, fn func(*domain.Cart) error) (*domain.Cart, error) {
	mu := s.lockFor(ownerID)
	mu.Lock()
	defer mu.Unlock()

	cart, err := s.repo.GetCart(ctx, ownerID)
	if errors.Is(err, repository.ErrCartNotFound) {
		cart = domain.NewCart(ownerID)
	} else if err != nil {
		return nil, err
	}

	if err := fn(cart); err != nil {
		return nil, err
	}

	if err := s.repo.UpsertCart(ctx, cart); err != nil {
		log.Printf("[cart] repo upsert cart error: %v", err)
		return nil, err
	}
	s.invalidateCache(ownerID)
	return cart, nil
}

func (s *CartService) lockFor(ownerID string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(ownerID))
	return &s.locks[h.Sum32()%lockStripes]
}

func (s *CartService) invalidateCache(ownerID string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, ownerID); err != nil {
		log.Printf("[cart] cache invalidate error: %v", err)
	}
}

func (s *CartService) GetWishlist(ctx context.Context, userID string) (*domain.Wishlist, error) {
	return s.wishlists.GetWishlist(ctx, userID)
}

// AddToWishlist only accepts products that exist.
func (s *CartService) AddToWishlist(ctx context.Context, userID, productID string) error {
	if _, err := s.products.GetProduct(ctx, productID); err != nil {
		return fmt.Errorf("wishlist product %s: %w", productID, err)
	}
	return s.wishlists.AddToWishlist(ctx, userID, productID)
}

func (s *CartService) RemoveFromWishlist(ctx context.Context, userID, productID string) error {
	return s.wishlists.RemoveFromWishlist(ctx, userID, productID)
}
