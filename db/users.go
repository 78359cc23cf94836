package db

import (
	"context"
	"time"

	"github.com/imjustneko/Travel-web/models"
	"github.com/imjustneko/Travel-web/store"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func (s *Store) FindUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return findOne[models.User](ctx, s.Users, bson.M{"_id": id})
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return findOne[models.User](ctx, s.Users, bson.M{"email": email})
}

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	_, err := s.Users.InsertOne(ctx, u)
	return translate(err)
}

func (s *Store) SetSubscription(ctx context.Context, id primitive.ObjectID, account models.AccountType, status models.SubscriptionStatus, expiry *time.Time) error {
	return s.setUserFields(ctx, id, bson.M{
		"accountType":        account,
		"subscriptionStatus": status,
		"subscriptionExpiry": expiry,
	})
}

func (s *Store) UpdateProfile(ctx context.Context, id primitive.ObjectID, name, passwordHash string) error {
	set := bson.M{"name": name}
	if passwordHash != "" {
		set["password"] = passwordHash
	}
	return s.setUserFields(ctx, id, set)
}

func (s *Store) setUserFields(ctx context.Context, id primitive.ObjectID, set bson.M) error {
	res, err := s.Users.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) ExpireSubscriptions(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.Users.UpdateMany(ctx,
		bson.M{
			"subscriptionStatus": models.SubscriptionActive,
			"subscriptionExpiry": bson.M{"$ne": nil, "$lt": now},
		},
		bson.M{"$set": bson.M{"subscriptionStatus": models.SubscriptionExpired}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}
