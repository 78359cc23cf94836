package reviews

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/imjustneko/Travel-web/apperr"
	"github.com/imjustneko/Travel-web/models"
	"github.com/imjustneko/Travel-web/mq"
	"github.com/imjustneko/Travel-web/storage/memory"
	"github.com/imjustneko/Travel-web/store"
	"github.com/imjustneko/Travel-web/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
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
	alice *models.User
	bob   *models.User
	admin *models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	st := memory.New()
	rec := &recorder{}

	item := &models.CatalogItem{Title: "Sunset Cruise", Price: "$120", Images: []string{"/uploads/cruise.jpg"}, Category: models.CategoryActivity}
	require.NoError(t, st.CreateItem(ctx, item))

	mk := func(name, email string, admin bool) *models.User {
		u := &models.User{Name: name, Email: email, IsAdmin: admin, AccountType: models.AccountGuest}
		require.NoError(t, st.CreateUser(ctx, u))
		return u
	}

	return &fixture{
		svc:   NewService(st, rec),
		store: st,
		rec:   rec,
		item:  item,
		alice: mk("Alice", "alice@example.com", false),
		bob:   mk("Bob", "bob@example.com", false),
		admin: mk("Root", "root@example.com", true),
	}
}

func actor(u *models.User) models.Actor {
	return models.Actor{UserID: u.ID.Hex(), IsAdmin: u.IsAdmin}
}

func (f *fixture) input(rating float64) CreateInput {
	return CreateInput{
		ItemID:   f.item.ID.Hex(),
		ItemType: string(models.CategoryActivity),
		Rating:   rating,
		Comment:  "Wonderful evening on the water.",
	}
}

func TestCreate(t *testing.T) {
	f := newFixture(t)

	review, err := f.svc.Create(context.Background(), actor(f.alice), f.input(4))
	require.NoError(t, err)
	assert.Equal(t, "Alice", review.UserName)
	assert.Equal(t, 4, review.Rating)
	assert.Equal(t, f.item.ID, review.Item)
	assert.False(t, review.CreatedAt.IsZero())

	require.Len(t, f.rec.events, 1)
	assert.Equal(t, mq.ReviewAdded, f.rec.events[0].Name)
	assert.Equal(t, f.item.ID.Hex(), f.rec.events[0].ItemID)
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []struct {
		name string
		edit func(*CreateInput)
		msg  string
	}{
		{"missing item", func(in *CreateInput) { in.ItemID = "" }, "All fields are required"},
		{"missing type", func(in *CreateInput) { in.ItemType = "" }, "All fields are required"},
		{"missing rating", func(in *CreateInput) { in.Rating = 0 }, "All fields are required"},
		{"missing comment", func(in *CreateInput) { in.Comment = "" }, "All fields are required"},
		{"rating low", func(in *CreateInput) { in.Rating = -1 }, "Rating must be between 1 and 5"},
		{"rating high", func(in *CreateInput) { in.Rating = 6 }, "Rating must be between 1 and 5"},
		{"rating fractional", func(in *CreateInput) { in.Rating = 3.5 }, "Rating must be a whole number"},
		{"comment short", func(in *CreateInput) { in.Comment = "too short" }, "Comment must be between 10 and 1000 characters"},
		{"comment long", func(in *CreateInput) { in.Comment = strings.Repeat("a", 1001) }, "Comment must be between 10 and 1000 characters"},
		{"bad type", func(in *CreateInput) { in.ItemType = "spaceship" }, "Invalid item type"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := f.input(5)
			tc.edit(&in)
			_, err := f.svc.Create(ctx, actor(f.alice), in)
			require.Error(t, err)
			assert.True(t, apperr.Is(err, apperr.Validation))
			assert.Equal(t, tc.msg, apperr.From(err).Message)
		})
	}

	stats, err := f.store.ReviewStats(ctx, f.item.ID)
	require.NoError(t, err)
	assert.Zero(t, stats.Count)
	assert.Empty(t, f.rec.events)
}

func TestCommentLengthCountsCharacters(t *testing.T) {
	f := newFixture(t)
	in := f.input(5)
	in.Comment = strings.Repeat("é", 10)

	_, err := f.svc.Create(context.Background(), actor(f.alice), in)
	assert.NoError(t, err)
}

func TestCreateUnknownItem(t *testing.T) {
	f := newFixture(t)
	for _, id := range []string{"bogus", models.NewID().Hex()} {
		in := f.input(5)
		in.ItemID = id
		_, err := f.svc.Create(context.Background(), actor(f.alice), in)
		require.Error(t, err)
		assert.True(t, apperr.Is(err, apperr.NotFound))
		assert.Equal(t, "Item not found", apperr.From(err).Message)
	}
}

func TestCreateDuplicate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, actor(f.alice), f.input(5))
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, actor(f.alice), f.input(3))
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.Conflict))
	assert.Equal(t, 400, apperr.From(err).HTTPStatus())
	assert.Equal(t, "You have already reviewed this item", apperr.From(err).Message)

	_, err = f.svc.Create(ctx, actor(f.bob), f.input(3))
	assert.NoError(t, err)
}

// blindStore hides existing reviews from the early check so the insert hits
// the unique constraint.
type blindStore struct {
	*memory.Store
}

func (blindStore) FindReviewByUserItem(context.Context, primitive.ObjectID, primitive.ObjectID) (*models.Review, error) {
	return nil, store.ErrNotFound
}

func TestCreateDuplicateFromStorage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewService(blindStore{f.store}, f.rec)

	_, err := svc.Create(ctx, actor(f.alice), f.input(5))
	require.NoError(t, err)

	_, err = svc.Create(ctx, actor(f.alice), f.input(4))
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.Conflict))
}

func TestListForItem(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	ratings := []float64{5, 4, 4}
	authors := []*models.User{f.alice, f.bob, f.admin}
	for i, rating := range ratings {
		at := base.Add(time.Duration(i) * time.Hour)
		f.svc.now = func() time.Time { return at }
		_, err := f.svc.Create(ctx, actor(authors[i]), f.input(rating))
		require.NoError(t, err)
	}

	page, err := f.svc.ListForItem(ctx, f.item.ID.Hex(), utils.Pagination{Page: 1, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Reviews, 2)
	assert.Equal(t, "Root", page.Reviews[0].UserName)
	assert.Equal(t, "Bob", page.Reviews[1].UserName)
	assert.Equal(t, 4.3, page.AverageRating)
	assert.EqualValues(t, 3, page.TotalReviews)
	assert.EqualValues(t, 2, page.Pagination.Pages(page.TotalReviews))

	page, err = f.svc.ListForItem(ctx, f.item.ID.Hex(), utils.Pagination{Page: 2, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Reviews, 1)
	assert.Equal(t, "Alice", page.Reviews[0].UserName)
	assert.Equal(t, 4.3, page.AverageRating)

	empty, err := f.svc.ListForItem(ctx, models.NewID().Hex(), utils.Pagination{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, empty.Reviews)
	assert.Zero(t, empty.AverageRating)

	_, err = f.svc.ListForItem(ctx, "xyz", utils.Pagination{Page: 1, Limit: 10})
	require.Error(t, err)
	assert.Equal(t, "Invalid item ID format", apperr.From(err).Message)
}

func TestListMine(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	other := &models.CatalogItem{Title: "Chef's Table", Price: "$80", Category: models.CategoryDining}
	require.NoError(t, f.store.CreateItem(ctx, other))

	_, err := f.svc.Create(ctx, actor(f.alice), f.input(5))
	require.NoError(t, err)
	f.svc.now = func() time.Time { return time.Now().Add(time.Hour) }
	_, err = f.svc.Create(ctx, actor(f.alice), CreateInput{
		ItemID: other.ID.Hex(), ItemType: "dining", Rating: 3, Comment: "Good but pricey food.",
	})
	require.NoError(t, err)
	require.NoError(t, f.store.DeleteItem(ctx, other.ID))

	list, err := f.svc.ListMine(ctx, actor(f.alice))
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Nil(t, list[0].Item)
	require.NotNil(t, list[1].Item)
	assert.Equal(t, "Sunset Cruise", list[1].Item.Title)
	assert.Empty(t, list[1].Item.Price)
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	review, err := f.svc.Create(ctx, actor(f.alice), f.input(5))
	require.NoError(t, err)

	err = f.svc.Delete(ctx, actor(f.bob), review.ID.Hex())
	assert.True(t, apperr.Is(err, apperr.Forbidden))

	// a forged admin claim is not enough
	err = f.svc.Delete(ctx, models.Actor{UserID: f.bob.ID.Hex(), IsAdmin: true}, review.ID.Hex())
	assert.True(t, apperr.Is(err, apperr.Forbidden))

	require.NoError(t, f.svc.Delete(ctx, actor(f.admin), review.ID.Hex()))

	err = f.svc.Delete(ctx, actor(f.alice), review.ID.Hex())
	assert.True(t, apperr.Is(err, apperr.NotFound))

	page, err := f.svc.ListForItem(ctx, f.item.ID.Hex(), utils.Pagination{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, page.Reviews)

	// deleting frees the pair for a new review
	_, err = f.svc.Create(ctx, actor(f.alice), f.input(2))
	assert.NoError(t, err)
	assert.Equal(t, mq.ReviewDeleted, f.rec.events[1].Name)
}

func TestOwnerCanDelete(t *testing.T) {
	f := newFixture(t)
	review, err := f.svc.Create(context.Background(), actor(f.alice), f.input(5))
	require.NoError(t, err)
	assert.NoError(t, f.svc.Delete(context.Background(), actor(f.alice), review.ID.Hex()))
}

func TestRatingSync(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sync := RatingSync(f.store)

	a, err := f.svc.Create(ctx, actor(f.alice), f.input(5))
	require.NoError(t, err)
	b, err := f.svc.Create(ctx, actor(f.bob), f.input(2))
	require.NoError(t, err)

	require.NoError(t, sync(ctx, mq.Event{Name: mq.ReviewAdded, ItemID: f.item.ID.Hex()}))
	item, err := f.store.FindItem(ctx, f.item.ID)
	require.NoError(t, err)
	assert.Equal(t, 3.5, item.Rating)

	require.NoError(t, f.store.DeleteReview(ctx, a.ID))
	require.NoError(t, f.store.DeleteReview(ctx, b.ID))
	require.NoError(t, f.store.SetItemRating(ctx, f.item.ID, 2.0))
	require.NoError(t, sync(ctx, mq.Event{Name: mq.ReviewDeleted, ItemID: f.item.ID.Hex()}))
	item, err = f.store.FindItem(ctx, f.item.ID)
	require.NoError(t, err)
	assert.Equal(t, 2.0, item.Rating)

	assert.NoError(t, sync(ctx, mq.Event{Name: mq.ReservationCreated, ItemID: "x"}))
}

var _ Store = blindStore{}
