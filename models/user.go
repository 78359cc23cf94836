package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AccountType string

const (
	AccountGuest   AccountType = "guest"
	AccountPremium AccountType = "premium"
)

type SubscriptionStatus string

const (
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionInactive SubscriptionStatus = "inactive"
	SubscriptionExpired  SubscriptionStatus = "expired"
)

// User is an identity record. Password holds the bcrypt hash and is never
// serialised.
type User struct {
	ID                 primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Name               string             `json:"name" bson:"name"`
	Email              string             `json:"email" bson:"email"`
	Password           string             `json:"-" bson:"password"`
	IsAdmin            bool               `json:"isAdmin" bson:"isAdmin"`
	AccountType        AccountType        `json:"accountType" bson:"accountType"`
	SubscriptionStatus SubscriptionStatus `json:"subscriptionStatus" bson:"subscriptionStatus"`
	SubscriptionExpiry *time.Time         `json:"subscriptionExpiry" bson:"subscriptionExpiry"`
	CreatedAt          time.Time          `json:"createdAt" bson:"createdAt"`
}

// Actor is the authenticated caller of an operation, as asserted by its
// access token.
type Actor struct {
	UserID  string
	IsAdmin bool
}
