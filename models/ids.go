package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// ParseID reports whether s is a well-formed document identifier and
// returns it decoded.
func ParseID(s string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}

// NewID returns a fresh document identifier.
func NewID() primitive.ObjectID {
	return primitive.NewObjectID()
}
