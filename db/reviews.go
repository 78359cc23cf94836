package db

import (
	"context"

	"github.com/imjustneko/Travel-web/models"
	"github.com/imjustneko/Travel-web/store"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (s *Store) CreateReview(ctx context.Context, r *models.Review) error {
	if r.ID.IsZero() {
		r.ID = primitive.NewObjectID()
	}
	_, err := s.Reviews.InsertOne(ctx, r)
	return translate(err)
}

func (s *Store) FindReview(ctx context.Context, id primitive.ObjectID) (*models.Review, error) {
	return findOne[models.Review](ctx, s.Reviews, bson.M{"_id": id})
}

func (s *Store) FindReviewByUserItem(ctx context.Context, userID, itemID primitive.ObjectID) (*models.Review, error) {
	return findOne[models.Review](ctx, s.Reviews, bson.M{"user": userID, "item": itemID})
}

func (s *Store) ListReviewsByItem(ctx context.Context, itemID primitive.ObjectID, skip, limit int64) ([]models.Review, error) {
	opts := options.Find().SetSort(newestFirst).SetSkip(skip)
	if limit > 0 {
		opts.SetLimit(limit)
	}
	return findAll[models.Review](ctx, s.Reviews, bson.M{"item": itemID}, opts)
}

// reviewStatsPipeline averages and counts every review of itemID.
func reviewStatsPipeline(itemID primitive.ObjectID) bson.A {
	return bson.A{
		bson.M{"$match": bson.M{"item": itemID}},
		bson.M{"$group": bson.M{
			"_id":       nil,
			"avgRating": bson.M{"$avg": "$rating"},
			"count":     bson.M{"$sum": 1},
		}},
	}
}

func (s *Store) ReviewStats(ctx context.Context, itemID primitive.ObjectID) (store.ReviewStats, error) {
	cur, err := s.Reviews.Aggregate(ctx, reviewStatsPipeline(itemID))
	if err != nil {
		return store.ReviewStats{}, err
	}
	defer cur.Close(ctx)

	var rows []struct {
		AvgRating float64 `bson:"avgRating"`
		Count     int64   `bson:"count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return store.ReviewStats{}, err
	}
	if len(rows) == 0 {
		return store.ReviewStats{}, nil
	}
	return store.ReviewStats{Count: rows[0].Count, Average: rows[0].AvgRating}, nil
}

func (s *Store) ListReviewsByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Review, error) {
	return findAll[models.Review](ctx, s.Reviews, bson.M{"user": userID}, options.Find().SetSort(newestFirst))
}

func (s *Store) DeleteReview(ctx context.Context, id primitive.ObjectID) error {
	return deleteOne(ctx, s.Reviews, bson.M{"_id": id})
}
