package db

import (
	"context"

	"github.com/imjustneko/Travel-web/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (s *Store) CreateFavorite(ctx context.Context, f *models.Favorite) error {
	if f.ID.IsZero() {
		f.ID = primitive.NewObjectID()
	}
	_, err := s.Favorites.InsertOne(ctx, f)
	return translate(err)
}

func (s *Store) ListFavoritesByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Favorite, error) {
	return findAll[models.Favorite](ctx, s.Favorites, bson.M{"user": userID}, options.Find().SetSort(newestFirst))
}

func (s *Store) DeleteFavorite(ctx context.Context, userID, itemID primitive.ObjectID) error {
	return deleteOne(ctx, s.Favorites, bson.M{"user": userID, "item": itemID})
}
