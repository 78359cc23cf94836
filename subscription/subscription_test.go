package subscription

import (
	"context"
	"testing"
	"time"

	"github.com/imjustneko/Travel-web/apperr"
	"github.com/imjustneko/Travel-web/models"
	"github.com/imjustneko/Travel-web/mq"
	"github.com/imjustneko/Travel-web/storage/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var fixedNow = time.Date(2025, time.January, 31, 12, 0, 0, 0, time.UTC)

type recorder struct {
	events []mq.Event
}

func (r *recorder) Emit(_ context.Context, ev mq.Event) {
	r.events = append(r.events, ev)
}

func newService(t *testing.T) (*Service, *memory.Store, *recorder) {
	t.Helper()
	st := memory.New()
	rec := &recorder{}
	svc := NewService(st, rec)
	svc.now = func() time.Time { return fixedNow }
	return svc, st, rec
}

func guest(t *testing.T, st *memory.Store) *models.User {
	t.Helper()
	u := &models.User{
		Name:               "Guest",
		Email:              "guest@example.com",
		AccountType:        models.AccountGuest,
		SubscriptionStatus: models.SubscriptionInactive,
	}
	require.NoError(t, st.CreateUser(context.Background(), u))
	return u
}

func TestIsActive(t *testing.T) {
	now := fixedNow
	past := now.Add(-time.Second)
	future := now.Add(time.Hour)

	cases := []struct {
		name string
		user *models.User
		want bool
	}{
		{"nil user", nil, false},
		{"guest", &models.User{AccountType: models.AccountGuest, SubscriptionStatus: models.SubscriptionActive}, false},
		{"premium inactive", &models.User{AccountType: models.AccountPremium, SubscriptionStatus: models.SubscriptionInactive}, false},
		{"premium no expiry", &models.User{AccountType: models.AccountPremium, SubscriptionStatus: models.SubscriptionActive}, true},
		{"premium future expiry", &models.User{AccountType: models.AccountPremium, SubscriptionStatus: models.SubscriptionActive, SubscriptionExpiry: &future}, true},
		{"premium lapsed", &models.User{AccountType: models.AccountPremium, SubscriptionStatus: models.SubscriptionActive, SubscriptionExpiry: &past}, false},
		{"premium expiring exactly now", &models.User{AccountType: models.AccountPremium, SubscriptionStatus: models.SubscriptionActive, SubscriptionExpiry: &now}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsActive(tc.user, now))
		})
	}
}

func TestBenefits(t *testing.T) {
	assert.Len(t, Benefits(models.AccountPremium), 6)
	assert.Equal(t, "Early booking access", Benefits(models.AccountPremium)[0])
	assert.Equal(t, []string{"Standard booking", "Regular pricing", "Email support"}, Benefits(models.AccountGuest))

	b := Benefits(models.AccountGuest)
	b[0] = "changed"
	assert.Equal(t, "Standard booking", Benefits(models.AccountGuest)[0])
}

func TestUpgradeThenDowngrade(t *testing.T) {
	svc, st, rec := newService(t)
	u := guest(t, st)
	ctx := context.Background()

	up, err := svc.Upgrade(ctx, u.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, models.AccountPremium, up.AccountType)
	assert.Equal(t, models.SubscriptionActive, up.SubscriptionStatus)
	require.NotNil(t, up.SubscriptionExpiry)
	// January 31 plus one calendar month normalises into March.
	assert.Equal(t, fixedNow.AddDate(0, 1, 0), *up.SubscriptionExpiry)

	_, err = svc.Upgrade(ctx, u.ID.Hex())
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.Conflict))
	assert.Equal(t, 400, apperr.From(err).HTTPStatus())
	assert.Equal(t, "Already a premium member", apperr.From(err).Message)

	status, err := svc.Status(ctx, u.ID.Hex())
	require.NoError(t, err)
	assert.True(t, status.IsActive)
	assert.Len(t, status.Benefits, 6)

	down, err := svc.Downgrade(ctx, u.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, models.AccountGuest, down.AccountType)
	assert.Equal(t, models.SubscriptionInactive, down.SubscriptionStatus)
	assert.Nil(t, down.SubscriptionExpiry)

	_, err = svc.Downgrade(ctx, u.ID.Hex())
	require.Error(t, err)
	assert.Equal(t, "Already a guest account", apperr.From(err).Message)

	require.Len(t, rec.events, 2)
	assert.Equal(t, mq.SubscriptionUpgraded, rec.events[0].Name)
	assert.Equal(t, mq.SubscriptionDowngraded, rec.events[1].Name)
}

func TestUnknownUser(t *testing.T) {
	svc, _, _ := newService(t)

	_, err := svc.Upgrade(context.Background(), models.NewID().Hex())
	assert.True(t, apperr.Is(err, apperr.NotFound))

	_, err = svc.Status(context.Background(), "not-an-id")
	assert.True(t, apperr.Is(err, apperr.NotFound))
}

func TestStatusAfterExpiry(t *testing.T) {
	svc, st, _ := newService(t)
	u := guest(t, st)
	ctx := context.Background()

	_, err := svc.Upgrade(ctx, u.ID.Hex())
	require.NoError(t, err)

	svc.now = func() time.Time { return fixedNow.AddDate(0, 2, 0) }
	status, err := svc.Status(ctx, u.ID.Hex())
	require.NoError(t, err)
	assert.False(t, status.IsActive)
	assert.Equal(t, models.SubscriptionActive, status.SubscriptionStatus)

	n, err := svc.ExpireLapsed(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	stored, err := st.FindUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionExpired, stored.SubscriptionStatus)
	assert.Equal(t, models.AccountPremium, stored.AccountType)

	n, err = svc.ExpireLapsed(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

// interleavedStore applies a profile edit right after the service reads the
// user, as a concurrent request would.
type interleavedStore struct {
	*memory.Store
	once bool
}

func (s *interleavedStore) FindUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	u, err := s.Store.FindUser(ctx, id)
	if err == nil && !s.once {
		s.once = true
		if err := s.Store.UpdateProfile(ctx, id, "Alice", "NEW-HASH"); err != nil {
			return nil, err
		}
	}
	return u, err
}

func TestUpgradeKeepsConcurrentProfileEdit(t *testing.T) {
	st := memory.New()
	u := &models.User{
		Name:               "Guest",
		Email:              "alice@example.com",
		Password:           "OLD-HASH",
		AccountType:        models.AccountGuest,
		SubscriptionStatus: models.SubscriptionInactive,
	}
	require.NoError(t, st.CreateUser(context.Background(), u))

	svc := NewService(&interleavedStore{Store: st}, &recorder{})
	svc.now = func() time.Time { return fixedNow }

	_, err := svc.Upgrade(context.Background(), u.ID.Hex())
	require.NoError(t, err)

	stored, err := st.FindUser(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, "NEW-HASH", stored.Password)
	assert.Equal(t, "Alice", stored.Name)
	assert.Equal(t, models.AccountPremium, stored.AccountType)
	assert.Equal(t, models.SubscriptionActive, stored.SubscriptionStatus)
}
