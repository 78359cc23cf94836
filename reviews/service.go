package reviews

import (
	"context"
	"errors"
	"math"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/imjustneko/Travel-web/apperr"
	"github.com/imjustneko/Travel-web/metrics"
	"github.com/imjustneko/Travel-web/models"
	"github.com/imjustneko/Travel-web/mq"
	"github.com/imjustneko/Travel-web/store"
	"github.com/imjustneko/Travel-web/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store is the persistence the review ledger needs.
type Store interface {
	store.CatalogStore
	store.UserStore
	store.ReviewStore
}

type CreateInput struct {
	ItemID   string
	ItemType string
	Rating   float64
	Comment  string
}

// Page is one page of an item's reviews together with aggregates over all
// of them.
type Page struct {
	Reviews       []models.Review
	AverageRating float64
	TotalReviews  int64
	Pagination    utils.Pagination
}

type Service struct {
	store  Store
	events mq.Emitter
	now    func() time.Time
}

func NewService(st Store, events mq.Emitter) *Service {
	return &Service{store: st, events: events, now: time.Now}
}

var errDuplicate = apperr.NewConflict("You have already reviewed this item").WithStatus(http.StatusBadRequest)

func validate(in CreateInput) error {
	if in.ItemID == "" || in.ItemType == "" || in.Rating == 0 || in.Comment == "" {
		return apperr.NewValidation("All fields are required")
	}
	if in.Rating < models.MinRating || in.Rating > models.MaxRating {
		return apperr.NewValidation("Rating must be between 1 and 5")
	}
	if in.Rating != math.Trunc(in.Rating) {
		return apperr.NewValidation("Rating must be a whole number")
	}
	if n := utf8.RuneCountInString(in.Comment); n < models.MinCommentLength || n > models.MaxCommentLength {
		return apperr.NewValidation("Comment must be between 10 and 1000 characters")
	}
	if !models.Category(in.ItemType).Valid() {
		return apperr.NewValidation("Invalid item type")
	}
	return nil
}

// Create records the caller's review of an item. A user reviews an item at
// most once; the unique index on (user, item) backs the early check.
func (s *Service) Create(ctx context.Context, actor models.Actor, in CreateInput) (*models.Review, error) {
	if err := validate(in); err != nil {
		return nil, err
	}
	userID, ok := models.ParseID(actor.UserID)
	if !ok {
		return nil, apperr.New(apperr.Unauthorized, "Invalid token")
	}

	itemID, ok := models.ParseID(in.ItemID)
	if !ok {
		return nil, apperr.NewNotFound("Item not found")
	}
	item, err := s.store.FindItem(ctx, itemID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NewNotFound("Item not found")
	}
	if err != nil {
		return nil, apperr.Wrap(err, "Failed to submit review")
	}

	_, err = s.store.FindReviewByUserItem(ctx, userID, item.ID)
	switch {
	case err == nil:
		return nil, errDuplicate
	case !errors.Is(err, store.ErrNotFound):
		return nil, apperr.Wrap(err, "Failed to submit review")
	}

	user, err := s.store.FindUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NewNotFound("User not found")
	}
	if err != nil {
		return nil, apperr.Wrap(err, "Failed to submit review")
	}

	review := &models.Review{
		ID:        models.NewID(),
		User:      userID,
		UserName:  user.Name,
		Item:      item.ID,
		ItemType:  models.Category(in.ItemType),
		Rating:    int(in.Rating),
		Comment:   in.Comment,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.CreateReview(ctx, review); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, errDuplicate
		}
		return nil, apperr.Wrap(err, "Failed to submit review")
	}

	metrics.RecordReview("created")
	s.emit(ctx, mq.ReviewAdded, review)
	return review, nil
}

// ListForItem returns one page of an item's reviews newest first. The
// average and total cover every review of the item, not just the page.
func (s *Service) ListForItem(ctx context.Context, itemID string, p utils.Pagination) (*Page, error) {
	oid, ok := models.ParseID(itemID)
	if !ok {
		return nil, apperr.NewValidation("Invalid item ID format")
	}

	list, err := s.store.ListReviewsByItem(ctx, oid, p.Skip(), p.Limit)
	if err != nil {
		return nil, apperr.Wrap(err, "Failed to fetch reviews")
	}
	stats, err := s.store.ReviewStats(ctx, oid)
	if err != nil {
		return nil, apperr.Wrap(err, "Failed to fetch reviews")
	}

	return &Page{
		Reviews:       list,
		AverageRating: roundRating(stats),
		TotalReviews:  stats.Count,
		Pagination:    p,
	}, nil
}

func roundRating(stats store.ReviewStats) float64 {
	if stats.Count == 0 {
		return 0
	}
	return math.Round(stats.Average*10) / 10
}

// ListMine returns the caller's reviews newest first with the reviewed item
// joined where it still exists.
func (s *Service) ListMine(ctx context.Context, actor models.Actor) ([]models.ReviewDetail, error) {
	userID, ok := models.ParseID(actor.UserID)
	if !ok {
		return nil, apperr.New(apperr.Unauthorized, "Invalid token")
	}
	list, err := s.store.ListReviewsByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Wrap(err, "Failed to fetch reviews")
	}

	ids := make([]primitive.ObjectID, 0, len(list))
	for _, r := range list {
		ids = append(ids, r.Item)
	}
	items, err := s.store.FindItems(ctx, ids)
	if err != nil {
		return nil, apperr.Wrap(err, "Failed to fetch reviews")
	}

	out := make([]models.ReviewDetail, 0, len(list))
	for _, r := range list {
		d := models.ReviewDetail{Review: r}
		if item, ok := items[r.Item]; ok {
			ref := item.Ref(false)
			ref.Price = ""
			d.Item = ref
		}
		out = append(out, d)
	}
	return out, nil
}

// Delete removes a review. The author may delete it, and so may an admin;
// admin rights are read from the user record rather than the token.
func (s *Service) Delete(ctx context.Context, actor models.Actor, reviewID string) error {
	oid, ok := models.ParseID(reviewID)
	if !ok {
		return apperr.NewNotFound("Review not found")
	}
	review, err := s.store.FindReview(ctx, oid)
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NewNotFound("Review not found")
	}
	if err != nil {
		return apperr.Wrap(err, "Failed to delete review")
	}

	if review.User.Hex() != actor.UserID {
		admin, err := s.isAdmin(ctx, actor.UserID)
		if err != nil {
			return apperr.Wrap(err, "Failed to delete review")
		}
		if !admin {
			return apperr.NewForbidden("Not authorized to delete this review")
		}
	}

	if err := s.store.DeleteReview(ctx, oid); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NewNotFound("Review not found")
		}
		return apperr.Wrap(err, "Failed to delete review")
	}

	metrics.RecordReview("deleted")
	s.emit(ctx, mq.ReviewDeleted, review)
	return nil
}

func (s *Service) isAdmin(ctx context.Context, userID string) (bool, error) {
	id, ok := models.ParseID(userID)
	if !ok {
		return false, nil
	}
	u, err := s.store.FindUser(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return u.IsAdmin, nil
}

func (s *Service) emit(ctx context.Context, name string, r *models.Review) {
	s.events.Emit(ctx, mq.Event{
		Name:       name,
		EntityType: "review",
		EntityID:   r.ID.Hex(),
		ItemID:     r.Item.Hex(),
		ItemType:   string(r.ItemType),
		UserID:     r.User.Hex(),
	})
}

// RatingSync keeps a catalog item's rating equal to the rounded average of
// its reviews. Items without reviews keep whatever rating they carry.
func RatingSync(st Store) mq.Handler {
	return func(ctx context.Context, ev mq.Event) error {
		if ev.Name != mq.ReviewAdded && ev.Name != mq.ReviewDeleted {
			return nil
		}
		itemID, ok := models.ParseID(ev.ItemID)
		if !ok {
			return nil
		}
		stats, err := st.ReviewStats(ctx, itemID)
		if err != nil {
			return err
		}
		if stats.Count == 0 {
			return nil
		}
		if err := st.SetItemRating(ctx, itemID, roundRating(stats)); err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
		return nil
	}
}
