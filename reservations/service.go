package reservations

import (
	"context"
	"errors"
	"time"

	"github.com/imjustneko/Travel-web/apperr"
	"github.com/imjustneko/Travel-web/metrics"
	"github.com/imjustneko/Travel-web/models"
	"github.com/imjustneko/Travel-web/mq"
	"github.com/imjustneko/Travel-web/store"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store is the persistence the reservation ledger needs.
type Store interface {
	store.CatalogStore
	store.ReservationStore
}

// CreateInput carries the caller-supplied fields of a new reservation.
// Guests <= 0 means "not given".
type CreateInput struct {
	ItemID   string
	CheckIn  *time.Time
	CheckOut *time.Time
	Guests   int
	Notes    string
}

type Service struct {
	store  Store
	events mq.Emitter
	signer *Signer
	now    func() time.Time
}

func NewService(st Store, events mq.Emitter, signer *Signer) *Service {
	return &Service{store: st, events: events, signer: signer, now: time.Now}
}

var (
	errNotFound = apperr.NewNotFound("Reservation not found")
	errDenied   = apperr.NewForbidden("Access denied")
)

func callerID(actor models.Actor) (primitive.ObjectID, error) {
	id, ok := models.ParseID(actor.UserID)
	if !ok {
		return primitive.NilObjectID, apperr.New(apperr.Unauthorized, "Invalid token")
	}
	return id, nil
}

// Create books a catalog item for the caller. The item's display fields are
// copied into the reservation and never refreshed.
func (s *Service) Create(ctx context.Context, actor models.Actor, in CreateInput) (*models.Reservation, error) {
	userID, err := callerID(actor)
	if err != nil {
		return nil, err
	}
	if in.ItemID == "" {
		return nil, apperr.NewValidation("Room ID is required")
	}
	itemID, ok := models.ParseID(in.ItemID)
	if !ok {
		return nil, apperr.NewNotFound("Room not found")
	}
	item, err := s.store.FindItem(ctx, itemID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NewNotFound("Room not found")
	}
	if err != nil {
		return nil, apperr.Wrap(err, "Failed to create reservation")
	}

	guests := in.Guests
	if guests <= 0 {
		guests = 1
	}
	now := s.now().UTC()
	res := &models.Reservation{
		ID:          models.NewID(),
		User:        userID,
		Item:        item.ID,
		ItemDetails: item.Snapshot(),
		Status:      models.ReservationConfirmed,
		CheckIn:     in.CheckIn,
		CheckOut:    in.CheckOut,
		Guests:      guests,
		Notes:       in.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.CreateReservation(ctx, res); err != nil {
		return nil, apperr.Wrap(err, "Failed to create reservation")
	}

	metrics.RecordReservation("created")
	s.emit(ctx, mq.ReservationCreated, res)
	return res, nil
}

// ListMine returns the caller's reservations newest first, each joined with
// the live catalog item when it still exists.
func (s *Service) ListMine(ctx context.Context, actor models.Actor) ([]models.ReservationDetail, error) {
	userID, err := callerID(actor)
	if err != nil {
		return nil, err
	}
	list, err := s.store.ListReservationsByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Wrap(err, "Failed to fetch reservations")
	}

	ids := make([]primitive.ObjectID, 0, len(list))
	for _, r := range list {
		ids = append(ids, r.Item)
	}
	items, err := s.store.FindItems(ctx, ids)
	if err != nil {
		return nil, apperr.Wrap(err, "Failed to fetch reservations")
	}

	out := make([]models.ReservationDetail, 0, len(list))
	for _, r := range list {
		d := models.ReservationDetail{Reservation: r}
		if item, ok := items[r.Item]; ok {
			d.Item = item.Ref(false)
		}
		out = append(out, d)
	}
	return out, nil
}

// authorize loads a reservation the caller may see: its owner or an admin.
func (s *Service) authorize(ctx context.Context, actor models.Actor, id string) (*models.Reservation, error) {
	oid, ok := models.ParseID(id)
	if !ok {
		return nil, errNotFound
	}
	res, err := s.store.FindReservation(ctx, oid)
	if errors.Is(err, store.ErrNotFound) {
		return nil, errNotFound
	}
	if err != nil {
		return nil, apperr.Wrap(err, "Failed to fetch reservation")
	}
	if res.User.Hex() != actor.UserID && !actor.IsAdmin {
		return nil, errDenied
	}
	return res, nil
}

func (s *Service) Get(ctx context.Context, actor models.Actor, id string) (*models.ReservationDetail, error) {
	res, err := s.authorize(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	d := &models.ReservationDetail{Reservation: *res}
	item, err := s.store.FindItem(ctx, res.Item)
	switch {
	case err == nil:
		d.Item = item.Ref(true)
	case !errors.Is(err, store.ErrNotFound):
		return nil, apperr.Wrap(err, "Failed to fetch reservation")
	}
	return d, nil
}

// Cancel marks the reservation cancelled. Cancelling twice is allowed and
// only refreshes updatedAt.
func (s *Service) Cancel(ctx context.Context, actor models.Actor, id string) (*models.Reservation, error) {
	res, err := s.authorize(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	updated, err := s.store.SetReservationStatus(ctx, res.ID, models.ReservationCancelled, s.now().UTC())
	if errors.Is(err, store.ErrNotFound) {
		return nil, errNotFound
	}
	if err != nil {
		return nil, apperr.Wrap(err, "Failed to cancel reservation")
	}

	metrics.RecordReservation("cancelled")
	s.emit(ctx, mq.ReservationCancelled, updated)
	return updated, nil
}

// Delete removes a reservation outright. Only admins may delete, whatever
// route the call arrives through.
func (s *Service) Delete(ctx context.Context, actor models.Actor, id string) error {
	if !actor.IsAdmin {
		return apperr.NewForbidden("Admin access required")
	}
	oid, ok := models.ParseID(id)
	if !ok {
		return errNotFound
	}
	res, err := s.store.FindReservation(ctx, oid)
	if errors.Is(err, store.ErrNotFound) {
		return errNotFound
	}
	if err != nil {
		return apperr.Wrap(err, "Failed to delete reservation")
	}
	if err := s.store.DeleteReservation(ctx, oid); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return errNotFound
		}
		return apperr.Wrap(err, "Failed to delete reservation")
	}

	metrics.RecordReservation("deleted")
	s.emit(ctx, mq.ReservationDeleted, res)
	return nil
}

// Receipt renders a PDF confirmation of a reservation the caller may see.
func (s *Service) Receipt(ctx context.Context, actor models.Actor, id string) ([]byte, error) {
	res, err := s.authorize(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	pdf, err := s.signer.Render(res)
	if err != nil {
		return nil, apperr.Wrap(err, "Failed to generate receipt")
	}
	return pdf, nil
}

func (s *Service) emit(ctx context.Context, name string, r *models.Reservation) {
	s.events.Emit(ctx, mq.Event{
		Name:       name,
		EntityType: "reservation",
		EntityID:   r.ID.Hex(),
		ItemID:     r.Item.Hex(),
		ItemType:   string(r.ItemDetails.Category),
		UserID:     r.User.Hex(),
	})
}
