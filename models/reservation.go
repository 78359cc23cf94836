package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ReservationStatus string

const (
	ReservationConfirmed ReservationStatus = "confirmed"
	ReservationPending   ReservationStatus = "pending"
	ReservationCancelled ReservationStatus = "cancelled"
)

// ItemSnapshot is copied from the catalog item when a reservation is made
// and never refreshed afterwards.
type ItemSnapshot struct {
	Title    string   `json:"title" bson:"title"`
	Price    string   `json:"price" bson:"price"`
	Image    *string  `json:"image" bson:"image"`
	Category Category `json:"category" bson:"category"`
}

type Reservation struct {
	ID          primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	User        primitive.ObjectID `json:"user" bson:"user"`
	Item        primitive.ObjectID `json:"item" bson:"item"`
	ItemDetails ItemSnapshot       `json:"itemDetails" bson:"itemDetails"`
	Status      ReservationStatus  `json:"status" bson:"status"`
	CheckIn     *time.Time         `json:"checkIn" bson:"checkIn"`
	CheckOut    *time.Time         `json:"checkOut" bson:"checkOut"`
	Guests      int                `json:"guests" bson:"guests"`
	Notes       string             `json:"notes" bson:"notes"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// ReservationDetail is a reservation with its catalog item joined in place
// of the bare reference. Item is nil once the source item is gone.
type ReservationDetail struct {
	Reservation
	Item *ItemRef `json:"item"`
}
