package db

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/imjustneko/Travel-web/models"
	"github.com/imjustneko/Travel-web/store"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (s *Store) FindItem(ctx context.Context, id primitive.ObjectID) (*models.CatalogItem, error) {
	return findOne[models.CatalogItem](ctx, s.Destinations, bson.M{"_id": id})
}

func (s *Store) FindItems(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.CatalogItem, error) {
	out := make(map[primitive.ObjectID]models.CatalogItem, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	items, err := findAll[models.CatalogItem](ctx, s.Destinations, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		out[item.ID] = item
	}
	return out, nil
}

// itemFilter builds the query document for f.
func itemFilter(f store.ItemFilter) bson.M {
	filter := bson.M{}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.Featured != nil {
		filter["featured"] = *f.Featured
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(q), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"title": pattern},
			bson.M{"description": pattern},
			bson.M{"location": pattern},
		}
	}
	return filter
}

func (s *Store) ListItems(ctx context.Context, f store.ItemFilter) ([]models.CatalogItem, int64, error) {
	filter := itemFilter(f)

	opts := options.Find().SetSort(newestFirst)
	if f.Skip > 0 {
		opts.SetSkip(f.Skip)
	}
	if f.Limit > 0 {
		opts.SetLimit(f.Limit)
	}

	items, err := findAll[models.CatalogItem](ctx, s.Destinations, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.Destinations.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (s *Store) CountByCategory(ctx context.Context) (map[models.Category]int64, error) {
	pipeline := bson.A{
		bson.M{"$group": bson.M{"_id": "$category", "count": bson.M{"$sum": 1}}},
	}
	cur, err := s.Destinations.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []struct {
		Category models.Category `bson:"_id"`
		Count    int64           `bson:"count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	out := make(map[models.Category]int64, len(rows))
	for _, row := range rows {
		out[row.Category] = row.Count
	}
	return out, nil
}

func (s *Store) CreateItem(ctx context.Context, item *models.CatalogItem) error {
	if item.ID.IsZero() {
		item.ID = primitive.NewObjectID()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}
	_, err := s.Destinations.InsertOne(ctx, item)
	return translate(err)
}

func (s *Store) UpdateItem(ctx context.Context, item *models.CatalogItem) error {
	update := bson.M{"$set": bson.M{
		"title":         item.Title,
		"description":   item.Description,
		"price":         item.Price,
		"location":      item.Location,
		"images":        item.Images,
		"rating":        item.Rating,
		"duration":      item.Duration,
		"featured":      item.Featured,
		"discount":      item.Discount,
		"originalPrice": item.OriginalPrice,
		"category":      item.Category,
	}}
	res, err := s.Destinations.UpdateByID(ctx, item.ID, update)
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteItem(ctx context.Context, id primitive.ObjectID) error {
	return deleteOne(ctx, s.Destinations, bson.M{"_id": id})
}

func (s *Store) SetItemRating(ctx context.Context, id primitive.ObjectID, rating float64) error {
	res, err := s.Destinations.UpdateByID(ctx, id, bson.M{"$set": bson.M{"rating": rating}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}
