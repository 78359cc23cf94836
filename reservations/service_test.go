package reservations

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/imjustneko/Travel-web/apperr"
	"github.com/imjustneko/Travel-web/models"
	"github.com/imjustneko/Travel-web/mq"
	"github.com/imjustneko/Travel-web/storage/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	events []mq.Event
}

func (r *recorder) Emit(_ context.Context, ev mq.Event) {
	r.events = append(r.events, ev)
}

type fixture struct {
	svc   *Service
	store *memory.Store
	rec   *recorder
	item  *models.CatalogItem
	owner models.Actor
	other models.Actor
	admin models.Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := memory.New()
	rec := &recorder{}
	svc := NewService(st, rec, NewSigner([]byte("receipt-secret")))

	item := &models.CatalogItem{
		Title:    "Ocean Suite",
		Price:    "$450/night",
		Location: "East Wing",
		Images:   []string{"/uploads/suite-1.jpg", "/uploads/suite-2.jpg"},
		Category: models.CategoryRoom,
	}
	require.NoError(t, st.CreateItem(context.Background(), item))

	return &fixture{
		svc:   svc,
		store: st,
		rec:   rec,
		item:  item,
		owner: models.Actor{UserID: models.NewID().Hex()},
		other: models.Actor{UserID: models.NewID().Hex()},
		admin: models.Actor{UserID: models.NewID().Hex(), IsAdmin: true},
	}
}

func (f *fixture) book(t *testing.T) *models.Reservation {
	t.Helper()
	res, err := f.svc.Create(context.Background(), f.owner, CreateInput{ItemID: f.item.ID.Hex()})
	require.NoError(t, err)
	return res
}

func TestCreateDefaultsAndSnapshot(t *testing.T) {
	f := newFixture(t)
	res := f.book(t)

	assert.Equal(t, models.ReservationConfirmed, res.Status)
	assert.Equal(t, 1, res.Guests)
	assert.Equal(t, "", res.Notes)
	assert.Nil(t, res.CheckIn)
	assert.Equal(t, res.CreatedAt, res.UpdatedAt)
	assert.Equal(t, "Ocean Suite", res.ItemDetails.Title)
	assert.Equal(t, "$450/night", res.ItemDetails.Price)
	require.NotNil(t, res.ItemDetails.Image)
	assert.Equal(t, "/uploads/suite-1.jpg", *res.ItemDetails.Image)
	assert.Equal(t, models.CategoryRoom, res.ItemDetails.Category)

	require.Len(t, f.rec.events, 1)
	assert.Equal(t, mq.ReservationCreated, f.rec.events[0].Name)
	assert.Equal(t, res.ID.Hex(), f.rec.events[0].EntityID)
}

func TestCreateWithOptionalFields(t *testing.T) {
	f := newFixture(t)
	in := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	out := in.AddDate(0, 0, 3)

	res, err := f.svc.Create(context.Background(), f.owner, CreateInput{
		ItemID:   f.item.ID.Hex(),
		CheckIn:  &in,
		CheckOut: &out,
		Guests:   3,
		Notes:    "Late arrival",
	})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Guests)
	assert.Equal(t, "Late arrival", res.Notes)
	assert.Equal(t, in, *res.CheckIn)

	res, err = f.svc.Create(context.Background(), f.owner, CreateInput{ItemID: f.item.ID.Hex(), Guests: -2})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Guests)
}

func TestCreateSnapshotWithoutImages(t *testing.T) {
	f := newFixture(t)
	bare := &models.CatalogItem{Title: "Spa Day", Price: "$90", Category: models.CategoryActivity}
	require.NoError(t, f.store.CreateItem(context.Background(), bare))

	res, err := f.svc.Create(context.Background(), f.owner, CreateInput{ItemID: bare.ID.Hex()})
	require.NoError(t, err)
	assert.Nil(t, res.ItemDetails.Image)
}

func TestCreateRejectsBadItem(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.owner, CreateInput{})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.Validation))
	assert.Equal(t, "Room ID is required", apperr.From(err).Message)

	for _, id := range []string{"bogus", models.NewID().Hex()} {
		_, err = f.svc.Create(ctx, f.owner, CreateInput{ItemID: id})
		require.Error(t, err)
		assert.True(t, apperr.Is(err, apperr.NotFound), id)
		assert.Equal(t, "Room not found", apperr.From(err).Message)
	}
	assert.Empty(t, f.rec.events)
}

func TestSnapshotSurvivesItemEditAndDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res := f.book(t)

	edited := *f.item
	edited.Title = "Renamed Suite"
	edited.Price = "$999"
	edited.Images = nil
	require.NoError(t, f.store.UpdateItem(ctx, &edited))

	got, err := f.svc.Get(ctx, f.owner, res.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "Ocean Suite", got.ItemDetails.Title)
	require.NotNil(t, got.Item)
	assert.Equal(t, "Renamed Suite", got.Item.Title)

	require.NoError(t, f.store.DeleteItem(ctx, f.item.ID))
	got, err = f.svc.Get(ctx, f.owner, res.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "Ocean Suite", got.ItemDetails.Title)
	assert.Equal(t, "$450/night", got.ItemDetails.Price)
	assert.Nil(t, got.Item)
}

func TestListMineNewestFirstWithJoin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return base }
	first := f.book(t)
	f.svc.now = func() time.Time { return base.Add(time.Hour) }
	second := f.book(t)

	_, err := f.svc.Create(ctx, f.other, CreateInput{ItemID: f.item.ID.Hex()})
	require.NoError(t, err)

	list, err := f.svc.ListMine(ctx, f.owner)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
	require.NotNil(t, list[0].Item)
	assert.Equal(t, "Ocean Suite", list[0].Item.Title)
	assert.Empty(t, list[0].Item.Description)
}

func TestGetAccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res := f.book(t)

	_, err := f.svc.Get(ctx, f.other, res.ID.Hex())
	assert.True(t, apperr.Is(err, apperr.Forbidden))
	assert.Equal(t, "Access denied", apperr.From(err).Message)

	got, err := f.svc.Get(ctx, f.admin, res.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, res.ID, got.ID)

	_, err = f.svc.Get(ctx, f.owner, models.NewID().Hex())
	assert.True(t, apperr.Is(err, apperr.NotFound))
	_, err = f.svc.Get(ctx, f.owner, "nope")
	assert.True(t, apperr.Is(err, apperr.NotFound))
}

func TestCancel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res := f.book(t)

	_, err := f.svc.Cancel(ctx, f.other, res.ID.Hex())
	assert.True(t, apperr.Is(err, apperr.Forbidden))

	later := res.CreatedAt.Add(time.Minute)
	f.svc.now = func() time.Time { return later }
	cancelled, err := f.svc.Cancel(ctx, f.owner, res.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, models.ReservationCancelled, cancelled.Status)
	assert.True(t, cancelled.UpdatedAt.Equal(later))
	assert.Equal(t, res.ItemDetails, cancelled.ItemDetails)

	again, err := f.svc.Cancel(ctx, f.admin, res.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, models.ReservationCancelled, again.Status)

	assert.Equal(t, mq.ReservationCancelled, f.rec.events[len(f.rec.events)-1].Name)
}

func TestDeleteRequiresAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res := f.book(t)

	err := f.svc.Delete(ctx, f.owner, res.ID.Hex())
	assert.True(t, apperr.Is(err, apperr.Forbidden))

	require.NoError(t, f.svc.Delete(ctx, f.admin, res.ID.Hex()))

	err = f.svc.Delete(ctx, f.admin, res.ID.Hex())
	assert.True(t, apperr.Is(err, apperr.NotFound))

	list, err := f.svc.ListMine(ctx, f.owner)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestReceipt(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res := f.book(t)

	pdf, err := f.svc.Receipt(ctx, f.owner, res.ID.Hex())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(pdf), "%PDF"))

	_, err = f.svc.Receipt(ctx, f.other, res.ID.Hex())
	assert.True(t, apperr.Is(err, apperr.Forbidden))
}

func TestSignerPayload(t *testing.T) {
	s := NewSigner([]byte("k"))
	res := &models.Reservation{ID: models.NewID(), User: models.NewID()}

	payload := s.Payload(res)
	rid, uid, ok := s.Verify(payload)
	require.True(t, ok)
	assert.Equal(t, res.ID.Hex(), rid)
	assert.Equal(t, res.User.Hex(), uid)

	_, _, ok = NewSigner([]byte("other")).Verify(payload)
	assert.False(t, ok)
	_, _, ok = s.Verify("a|b")
	assert.False(t, ok)
}
