package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Favorite struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	User      primitive.ObjectID `json:"user" bson:"user"`
	Item      primitive.ObjectID `json:"item" bson:"item"`
	ItemType  Category           `json:"itemType" bson:"itemType"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}

type FavoriteDetail struct {
	Favorite
	Item *ItemRef `json:"item"`
}
