package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Category classifies a catalog listing.
type Category string

const (
	CategoryRoom     Category = "room"
	CategoryDining   Category = "dining"
	CategoryActivity Category = "activity"
	CategoryEvent    Category = "event"
	CategoryOffer    Category = "offer"
)

// Categories lists every category in display order.
var Categories = []Category{CategoryRoom, CategoryDining, CategoryActivity, CategoryEvent, CategoryOffer}

func (c Category) Valid() bool {
	switch c {
	case CategoryRoom, CategoryDining, CategoryActivity, CategoryEvent, CategoryOffer:
		return true
	}
	return false
}

const (
	DefaultItemRating   = 4.5
	DefaultItemDuration = "5 days"
)

// CatalogItem is a bookable listing: a room, a dining option, an activity,
// an event or a special offer. Price and duration are display strings.
type CatalogItem struct {
	ID            primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Title         string             `json:"title" bson:"title"`
	Description   string             `json:"description" bson:"description"`
	Price         string             `json:"price" bson:"price"`
	Location      string             `json:"location" bson:"location"`
	Images        []string           `json:"images" bson:"images"`
	Rating        float64            `json:"rating" bson:"rating"`
	Duration      string             `json:"duration" bson:"duration"`
	Featured      bool               `json:"featured" bson:"featured"`
	Discount      *string            `json:"discount" bson:"discount"`
	OriginalPrice *string            `json:"originalPrice" bson:"originalPrice"`
	Category      Category           `json:"category" bson:"category"`
	CreatedAt     time.Time          `json:"createdAt" bson:"createdAt"`
}

// Snapshot captures the fields a reservation keeps once it is made.
func (c CatalogItem) Snapshot() ItemSnapshot {
	s := ItemSnapshot{
		Title:    c.Title,
		Price:    c.Price,
		Category: c.Category,
	}
	if len(c.Images) > 0 {
		img := c.Images[0]
		s.Image = &img
	}
	return s
}

// Ref is the live view of an item joined onto reservations, reviews and
// favourites for display.
func (c CatalogItem) Ref(withDescription bool) *ItemRef {
	ref := &ItemRef{
		ID:       c.ID,
		Title:    c.Title,
		Price:    c.Price,
		Images:   c.Images,
		Category: c.Category,
	}
	if withDescription {
		ref.Description = c.Description
	}
	return ref
}

// ItemRef is a read-only projection of a CatalogItem.
type ItemRef struct {
	ID          primitive.ObjectID `json:"_id"`
	Title       string             `json:"title"`
	Price       string             `json:"price,omitempty"`
	Images      []string           `json:"images"`
	Category    Category           `json:"category"`
	Description string             `json:"description,omitempty"`
}
