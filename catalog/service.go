package catalog

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/imjustneko/Travel-web/apperr"
	"github.com/imjustneko/Travel-web/models"
	"github.com/imjustneko/Travel-web/mq"
	"github.com/imjustneko/Travel-web/store"
)

// Input is the editable part of a catalog item. Empty Category means room,
// nil Rating keeps the current (or default) rating.
type Input struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Price         string   `json:"price"`
	Location      string   `json:"location"`
	Images        []string `json:"images"`
	Rating        *float64 `json:"rating"`
	Duration      string   `json:"duration"`
	Featured      bool     `json:"featured"`
	Discount      *string  `json:"discount"`
	OriginalPrice *string  `json:"originalPrice"`
	Category      string   `json:"category"`
}

// Home is the landing page payload.
type Home struct {
	Featured []models.CatalogItem      `json:"featured"`
	Counts   map[models.Category]int64 `json:"counts"`
}

type Service struct {
	store  store.CatalogStore
	events mq.Emitter
	now    func() time.Time
}

func NewService(st store.CatalogStore, events mq.Emitter) *Service {
	return &Service{store: st, events: events, now: time.Now}
}

func notFound(c models.Category) *apperr.Error {
	label := "Item"
	switch c {
	case models.CategoryRoom:
		label = "Room"
	case models.CategoryDining:
		label = "Dining option"
	case models.CategoryActivity:
		label = "Activity"
	case models.CategoryEvent:
		label = "Event"
	case models.CategoryOffer:
		label = "Offer"
	}
	return apperr.NewNotFound(label + " not found")
}

func optional(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

func (in *Input) normalize() error {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" || in.Description == "" || in.Price == "" || in.Location == "" {
		return apperr.NewValidation("Title, description, price and location are required")
	}
	if in.Category == "" {
		in.Category = string(models.CategoryRoom)
	}
	if !models.Category(in.Category).Valid() {
		return apperr.NewValidation("Invalid category")
	}
	if in.Rating != nil && (*in.Rating < 0 || *in.Rating > 5) {
		return apperr.NewValidation("Rating must be between 0 and 5")
	}
	if in.Duration == "" {
		in.Duration = models.DefaultItemDuration
	}
	if in.Images == nil {
		in.Images = []string{}
	}
	in.Discount = optional(in.Discount)
	in.OriginalPrice = optional(in.OriginalPrice)
	return nil
}

func (in Input) apply(item *models.CatalogItem) {
	item.Title = in.Title
	item.Description = in.Description
	item.Price = in.Price
	item.Location = in.Location
	item.Images = in.Images
	item.Duration = in.Duration
	item.Featured = in.Featured
	item.Discount = in.Discount
	item.OriginalPrice = in.OriginalPrice
	item.Category = models.Category(in.Category)
	if in.Rating != nil {
		item.Rating = *in.Rating
	}
}

// List returns matching items newest first with the total match count.
func (s *Service) List(ctx context.Context, f store.ItemFilter) ([]models.CatalogItem, int64, error) {
	items, total, err := s.store.ListItems(ctx, f)
	if err != nil {
		return nil, 0, apperr.Wrap(err, "Failed to fetch items")
	}
	return items, total, nil
}

// Get resolves an item. A non-empty category also requires the item to be
// of that category.
func (s *Service) Get(ctx context.Context, id string, category models.Category) (*models.CatalogItem, error) {
	oid, ok := models.ParseID(id)
	if !ok {
		return nil, notFound(category)
	}
	item, err := s.store.FindItem(ctx, oid)
	if errors.Is(err, store.ErrNotFound) {
		return nil, notFound(category)
	}
	if err != nil {
		return nil, apperr.Wrap(err, "Failed to fetch item")
	}
	if category != "" && item.Category != category {
		return nil, notFound(category)
	}
	return item, nil
}

func (s *Service) Create(ctx context.Context, in Input) (*models.CatalogItem, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	item := &models.CatalogItem{
		ID:        models.NewID(),
		Rating:    models.DefaultItemRating,
		CreatedAt: s.now().UTC(),
	}
	in.apply(item)
	if err := s.store.CreateItem(ctx, item); err != nil {
		return nil, apperr.Wrap(err, "Failed to create item")
	}
	s.emit(ctx, mq.ItemCreated, item)
	return item, nil
}

// Update overwrites an item in place. Reservations keep their snapshot of
// the previous values.
func (s *Service) Update(ctx context.Context, id string, in Input) (*models.CatalogItem, error) {
	item, err := s.Get(ctx, id, "")
	if err != nil {
		return nil, err
	}
	if err := in.normalize(); err != nil {
		return nil, err
	}
	in.apply(item)
	if err := s.store.UpdateItem(ctx, item); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFound("")
		}
		return nil, apperr.Wrap(err, "Failed to update item")
	}
	s.emit(ctx, mq.ItemUpdated, item)
	return item, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	item, err := s.Get(ctx, id, "")
	if err != nil {
		return err
	}
	if err := s.store.DeleteItem(ctx, item.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return notFound("")
		}
		return apperr.Wrap(err, "Failed to delete item")
	}
	s.emit(ctx, mq.ItemDeleted, item)
	return nil
}

// Home returns up to limit featured items and per-category counts.
func (s *Service) Home(ctx context.Context, limit int64) (*Home, error) {
	featured := true
	items, _, err := s.store.ListItems(ctx, store.ItemFilter{Featured: &featured, Limit: limit})
	if err != nil {
		return nil, apperr.Wrap(err, "Failed to load home page")
	}
	counts, err := s.store.CountByCategory(ctx)
	if err != nil {
		return nil, apperr.Wrap(err, "Failed to load home page")
	}
	for _, c := range models.Categories {
		if _, ok := counts[c]; !ok {
			counts[c] = 0
		}
	}
	return &Home{Featured: items, Counts: counts}, nil
}

func (s *Service) emit(ctx context.Context, name string, item *models.CatalogItem) {
	s.events.Emit(ctx, mq.Event{
		Name:       name,
		EntityType: "item",
		EntityID:   item.ID.Hex(),
		ItemID:     item.ID.Hex(),
		ItemType:   string(item.Category),
	})
}
