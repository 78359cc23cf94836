// Package store declares the persistence contracts used by the domain
// packages. The MongoDB implementation lives in package db and an
// in-memory one in storage/memory.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/imjustneko/Travel-web/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrNotFound is returned when the addressed document does not exist.
	ErrNotFound = errors.New("store: not found")
	// ErrDuplicate is returned when a write violates a unique index.
	ErrDuplicate = errors.New("store: duplicate key")
)

// ItemFilter selects catalog items. Zero values mean "no constraint".
// Query is matched case-insensitively as a literal substring against
// title, description and location.
type ItemFilter struct {
	Category models.Category
	Featured *bool
	Query    string
	Skip     int64
	Limit    int64
}

// ReviewStats aggregates every review of one item.
type ReviewStats struct {
	Count   int64
	Average float64
}

type CatalogStore interface {
	FindItem(ctx context.Context, id primitive.ObjectID) (*models.CatalogItem, error)
	// FindItems resolves the given ids; missing ids are simply absent from
	// the result.
	FindItems(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.CatalogItem, error)
	// ListItems returns matching items newest first and the total number of
	// matches ignoring Skip/Limit.
	ListItems(ctx context.Context, f ItemFilter) ([]models.CatalogItem, int64, error)
	CountByCategory(ctx context.Context) (map[models.Category]int64, error)
	CreateItem(ctx context.Context, item *models.CatalogItem) error
	UpdateItem(ctx context.Context, item *models.CatalogItem) error
	DeleteItem(ctx context.Context, id primitive.ObjectID) error
	SetItemRating(ctx context.Context, id primitive.ObjectID, rating float64) error
}

type UserStore interface {
	FindUser(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	// CreateUser fails with ErrDuplicate when the email is taken.
	CreateUser(ctx context.Context, u *models.User) error
	// SetSubscription writes only the subscription fields.
	SetSubscription(ctx context.Context, id primitive.ObjectID, account models.AccountType, status models.SubscriptionStatus, expiry *time.Time) error
	// UpdateProfile sets the name, and the password hash when non-empty.
	UpdateProfile(ctx context.Context, id primitive.ObjectID, name, passwordHash string) error
	// ExpireSubscriptions marks active subscriptions whose expiry is before
	// now as expired and returns how many were changed.
	ExpireSubscriptions(ctx context.Context, now time.Time) (int64, error)
}

type ReservationStore interface {
	CreateReservation(ctx context.Context, r *models.Reservation) error
	FindReservation(ctx context.Context, id primitive.ObjectID) (*models.Reservation, error)
	// ListReservationsByUser returns the user's reservations newest first.
	ListReservationsByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Reservation, error)
	SetReservationStatus(ctx context.Context, id primitive.ObjectID, status models.ReservationStatus, at time.Time) (*models.Reservation, error)
	DeleteReservation(ctx context.Context, id primitive.ObjectID) error
}

type ReviewStore interface {
	// CreateReview fails with ErrDuplicate when the user already reviewed
	// the item.
	CreateReview(ctx context.Context, r *models.Review) error
	FindReview(ctx context.Context, id primitive.ObjectID) (*models.Review, error)
	FindReviewByUserItem(ctx context.Context, userID, itemID primitive.ObjectID) (*models.Review, error)
	// ListReviewsByItem returns one page of the item's reviews newest first.
	ListReviewsByItem(ctx context.Context, itemID primitive.ObjectID, skip, limit int64) ([]models.Review, error)
	ReviewStats(ctx context.Context, itemID primitive.ObjectID) (ReviewStats, error)
	ListReviewsByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Review, error)
	DeleteReview(ctx context.Context, id primitive.ObjectID) error
}

type FavoriteStore interface {
	// CreateFavorite fails with ErrDuplicate when the item is already a
	// favourite of the user.
	CreateFavorite(ctx context.Context, f *models.Favorite) error
	ListFavoritesByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Favorite, error)
	DeleteFavorite(ctx context.Context, userID, itemID primitive.ObjectID) error
}

// Store is the full persistence surface of the service.
type Store interface {
	CatalogStore
	UserStore
	ReservationStore
	ReviewStore
	FavoriteStore
}
