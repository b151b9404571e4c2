package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aniskhan146/Cartify-sub000/internal/cart/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoRepository struct {
	carts     *mongo.Collection
	wishlists *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{
		carts:     db.Collection("carts"),
		wishlists: db.Collection("wishlists"),
	}
}

func (m *MongoRepository) GetCart(ctx context.Context, ownerID string) (*domain.Cart, error) {
	var cart domain.Cart
	err := m.carts.FindOne(ctx, bson.M{"owner_id": ownerID}).Decode(&cart)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	if cart.Lines == nil {
		cart.Lines = []domain.CartLine{}
	}
	return &cart, nil
}

func (m *MongoRepository) UpsertCart(ctx context.Context, cart *domain.Cart) error {
	now := time.Now()
	if cart.CreatedAt.IsZero() {
		cart.CreatedAt = now
	}
	cart.UpdatedAt = now

	lines := cart.Lines
	if lines == nil {
		lines = []domain.CartLine{}
	}
	update := bson.M{
		"$set": bson.M{
			"lines":      lines,
			"updated_at": cart.UpdatedAt,
		},
		"$setOnInsert": bson.M{
			"created_at": cart.CreatedAt,
		},
	}
	opts := options.Update().SetUpsert(true)

	if _, err := m.carts.UpdateOne(ctx, bson.M{"owner_id": cart.OwnerID}, update, opts); err != nil {
		return fmt.Errorf("failed to upsert cart: %w", err)
	}
	return nil
}

func (m *MongoRepository) DeleteCart(ctx context.Context, ownerID string) error {
	result, err := m.carts.DeleteOne(ctx, bson.M{"owner_id": ownerID})
	if err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrCartNotFound
	}
	return nil
}

// GetWishlist returns an empty list for users that never saved anything.
func (m *MongoRepository) GetWishlist(ctx context.Context, userID string) (*domain.Wishlist, error) {
	var w domain.Wishlist
	err := m.wishlists.FindOne(ctx, bson.M{"user_id": userID}).Decode(&w)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return &domain.Wishlist{UserID: userID, ProductIDs: []string{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get wishlist: %w", err)
	}
	if w.ProductIDs == nil {
		w.ProductIDs = []string{}
	}
	return &w, nil
}

func (m *MongoRepository) AddToWishlist(ctx context.Context, userID, productID string) error {
	update := bson.M{
		"$addToSet": bson.M{"product_ids": productID},
		"$set":      bson.M{"updated_at": time.Now()},
	}
	opts := options.Update().SetUpsert(true)
	if _, err := m.wishlists.UpdateOne(ctx, bson.M{"user_id": userID}, update, opts); err != nil {
		return fmt.Errorf("failed to add to wishlist: %w", err)
	}
	return nil
}

func (m *MongoRepository) RemoveFromWishlist(ctx context.Context, userID, productID string) error {
	update := bson.M{
		"$pull": bson.M{"product_ids": productID},
		"$set":  bson.M{"updated_at": time.Now()},
	}
	if _, err := m.wishlists.UpdateOne(ctx, bson.M{"user_id": userID}, update); err != nil {
		return fmt.Errorf("failed to remove from wishlist: %w", err)
	}
	return nil
}

func (m *MongoRepository) CreateIndexes(ctx context.Context) error {
	cartIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "owner_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "updated_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(90 * 24 * 60 * 60), // abandoned carts expire after 90 days
		},
	}
	if _, err := m.carts.Indexes().CreateMany(ctx, cartIndexes); err != nil {
		return fmt.Errorf("failed to create cart indexes: %w", err)
	}

	_, err := m.wishlists.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create wishlist indexes: %w", err)
	}
	return nil
}
