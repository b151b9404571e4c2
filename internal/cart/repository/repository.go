package repository

import (
	"context"

	"github.com/aniskhan146/Cartify-sub000/internal/apperr"
	"github.com/aniskhan146/Cartify-sub000/internal/cart/domain"
)

var ErrCartNotFound = apperr.NotFound("cart")

// CartRepository persists whole carts; line rules live in the domain.
type CartRepository interface {
	GetCart(ctx context.Context, ownerID string) (*domain.Cart, error)
	UpsertCart(ctx context.Context, cart *domain.Cart) error
	DeleteCart(ctx context.Context, ownerID string) error
}

type WishlistRepository interface {
	GetWishlist(ctx context.Context, userID string) (*domain.Wishlist, error)
	AddToWishlist(ctx context.Context, userID, productID string) error
	RemoveFromWishlist(ctx context.Context, userID, productID string) error
}
