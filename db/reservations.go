package db

import (
	"context"
	"time"

	"github.com/imjustneko/Travel-web/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (s *Store) CreateReservation(ctx context.Context, r *models.Reservation) error {
	if r.ID.IsZero() {
		r.ID = primitive.NewObjectID()
	}
	_, err := s.Reservations.InsertOne(ctx, r)
	return translate(err)
}

func (s *Store) FindReservation(ctx context.Context, id primitive.ObjectID) (*models.Reservation, error) {
	return findOne[models.Reservation](ctx, s.Reservations, bson.M{"_id": id})
}

func (s *Store) ListReservationsByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Reservation, error) {
	return findAll[models.Reservation](ctx, s.Reservations, bson.M{"user": userID}, options.Find().SetSort(newestFirst))
}

func (s *Store) SetReservationStatus(ctx context.Context, id primitive.ObjectID, status models.ReservationStatus, at time.Time) (*models.Reservation, error) {
	var out models.Reservation
	err := s.Reservations.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status, "updatedAt": at}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&out)
	if err != nil {
		return nil, translate(err)
	}
	return &out, nil
}

func (s *Store) DeleteReservation(ctx context.Context, id primitive.ObjectID) error {
	return deleteOne(ctx, s.Reservations, bson.M{"_id": id})
}
