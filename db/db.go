package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/imjustneko/Travel-web/store"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	DestinationsCollection = "destinations"
	UsersCollection        = "users"
	ReservationsCollection = "reservations"
	ReviewsCollection      = "reviews"
	FavoritesCollection    = "favorites"
)

// Store is the MongoDB implementation of store.Store.
type Store struct {
	Client       *mongo.Client
	Destinations *mongo.Collection
	Users        *mongo.Collection
	Reservations *mongo.Collection
	Reviews      *mongo.Collection
	Favorites    *mongo.Collection
}

var _ store.Store = (*Store)(nil)

// Connect dials MongoDB, verifies the connection and ensures indexes.
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	s := New(client, database)
	if err := s.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	log.WithField("database", database).Info("MongoDB connected")
	return s, nil
}

// New binds the collections of database without touching the server.
func New(client *mongo.Client, database string) *Store {
	d := client.Database(database)
	return &Store{
		Client:       client,
		Destinations: d.Collection(DestinationsCollection),
		Users:        d.Collection(UsersCollection),
		Reservations: d.Collection(ReservationsCollection),
		Reviews:      d.Collection(ReviewsCollection),
		Favorites:    d.Collection(FavoritesCollection),
	}
}

// EnsureIndexes creates the indexes the service relies on. The unique
// (user, item) index on reviews is what actually guarantees one review per
// user per item; the service-level check only produces a nicer message.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	specs := []struct {
		coll   *mongo.Collection
		models []mongo.IndexModel
	}{
		{s.Users, []mongo.IndexModel{
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "subscriptionStatus", Value: 1}, {Key: "subscriptionExpiry", Value: 1}}},
		}},
		{s.Destinations, []mongo.IndexModel{
			{Keys: bson.D{{Key: "category", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "featured", Value: 1}}},
		}},
		{s.Reservations, []mongo.IndexModel{
			{Keys: bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: -1}}},
		}},
		{s.Reviews, []mongo.IndexModel{
			{Keys: bson.D{{Key: "user", Value: 1}, {Key: "item", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "item", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "user", Value: 1}}},
		}},
		{s.Favorites, []mongo.IndexModel{
			{Keys: bson.D{{Key: "user", Value: 1}, {Key: "item", Value: 1}}, Options: options.Index().SetUnique(true)},
		}},
	}

	for _, spec := range specs {
		if _, err := spec.coll.Indexes().CreateMany(ctx, spec.models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", spec.coll.Name(), err)
		}
	}
	return nil
}

// Disconnect closes the client.
func (s *Store) Disconnect(ctx context.Context) error {
	return s.Client.Disconnect(ctx)
}

// translate maps driver errors onto the store sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return store.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", store.ErrDuplicate, err)
	}
	return err
}

var newestFirst = bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}

func findAll[T any](ctx context.Context, coll *mongo.Collection, filter any, opts ...*options.FindOptions) ([]T, error) {
	cur, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []T{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func findOne[T any](ctx context.Context, coll *mongo.Collection, filter any) (*T, error) {
	var v T
	if err := coll.FindOne(ctx, filter).Decode(&v); err != nil {
		return nil, translate(err)
	}
	return &v, nil
}

func deleteOne(ctx context.Context, coll *mongo.Collection, filter any) error {
	res, err := coll.DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}
