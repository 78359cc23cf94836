package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	MinRating        = 1
	MaxRating        = 5
	MinCommentLength = 10
	MaxCommentLength = 1000
)

// Review is a user's rating of a catalog item. UserName is copied from the
// author's profile when the review is written.
type Review struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	User      primitive.ObjectID `json:"user" bson:"user"`
	UserName  string             `json:"userName" bson:"userName"`
	Item      primitive.ObjectID `json:"item" bson:"item"`
	ItemType  Category           `json:"itemType" bson:"itemType"`
	Rating    int                `json:"rating" bson:"rating"`
	Comment   string             `json:"comment" bson:"comment"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}

type ReviewDetail struct {
	Review
	Item *ItemRef `json:"item"`
}
