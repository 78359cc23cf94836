package subscription

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/imjustneko/Travel-web/apperr"
	"github.com/imjustneko/Travel-web/metrics"
	"github.com/imjustneko/Travel-web/models"
	"github.com/imjustneko/Travel-web/mq"
	"github.com/imjustneko/Travel-web/store"

	log "github.com/sirupsen/logrus"
)

var (
	premiumBenefits = []string{
		"Early booking access",
		"10% discount on all bookings",
		"Priority customer support",
		"Exclusive event invitations",
		"Free room upgrades (subject to availability)",
		"Late checkout",
	}
	guestBenefits = []string{
		"Standard booking",
		"Regular pricing",
		"Email support",
	}
)

// Benefits lists the perks of an account type in display order.
func Benefits(t models.AccountType) []string {
	src := guestBenefits
	if t == models.AccountPremium {
		src = premiumBenefits
	}
	return append([]string(nil), src...)
}

// IsActive reports whether u holds a live premium subscription at now. The
// stored status alone is not trusted; an elapsed expiry always wins.
func IsActive(u *models.User, now time.Time) bool {
	if u == nil || u.AccountType != models.AccountPremium || u.SubscriptionStatus != models.SubscriptionActive {
		return false
	}
	return u.SubscriptionExpiry == nil || u.SubscriptionExpiry.After(now)
}

// Status is the subscription view returned to the account owner.
type Status struct {
	AccountType        models.AccountType        `json:"accountType"`
	SubscriptionStatus models.SubscriptionStatus `json:"subscriptionStatus"`
	SubscriptionExpiry *time.Time                `json:"subscriptionExpiry"`
	IsActive           bool                      `json:"isActive"`
	Benefits           []string                  `json:"benefits"`
}

type Service struct {
	users  store.UserStore
	events mq.Emitter
	now    func() time.Time
}

func NewService(users store.UserStore, events mq.Emitter) *Service {
	return &Service{users: users, events: events, now: time.Now}
}

func (s *Service) loadUser(ctx context.Context, userID string) (*models.User, error) {
	id, ok := models.ParseID(userID)
	if !ok {
		return nil, apperr.NewNotFound("User not found")
	}
	u, err := s.users.FindUser(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NewNotFound("User not found")
	}
	if err != nil {
		return nil, apperr.Wrap(err, "Failed to load user")
	}
	return u, nil
}

// Upgrade moves a guest to an active premium subscription lasting one
// calendar month.
func (s *Service) Upgrade(ctx context.Context, userID string) (*models.User, error) {
	u, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.AccountType == models.AccountPremium {
		return nil, apperr.NewConflict("Already a premium member").WithStatus(http.StatusBadRequest)
	}

	expiry := s.now().AddDate(0, 1, 0)
	u.AccountType = models.AccountPremium
	u.SubscriptionStatus = models.SubscriptionActive
	u.SubscriptionExpiry = &expiry
	if err := s.users.SetSubscription(ctx, u.ID, u.AccountType, u.SubscriptionStatus, u.SubscriptionExpiry); err != nil {
		return nil, apperr.Wrap(err, "Failed to upgrade subscription")
	}

	metrics.RecordSubscription("upgrade")
	s.emit(ctx, mq.SubscriptionUpgraded, u)
	return u, nil
}

// Downgrade returns a premium member to a guest account.
func (s *Service) Downgrade(ctx context.Context, userID string) (*models.User, error) {
	u, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.AccountType == models.AccountGuest {
		return nil, apperr.NewConflict("Already a guest account").WithStatus(http.StatusBadRequest)
	}

	u.AccountType = models.AccountGuest
	u.SubscriptionStatus = models.SubscriptionInactive
	u.SubscriptionExpiry = nil
	if err := s.users.SetSubscription(ctx, u.ID, u.AccountType, u.SubscriptionStatus, nil); err != nil {
		return nil, apperr.Wrap(err, "Failed to cancel subscription")
	}

	metrics.RecordSubscription("downgrade")
	s.emit(ctx, mq.SubscriptionDowngraded, u)
	return u, nil
}

func (s *Service) Status(ctx context.Context, userID string) (*Status, error) {
	u, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Status{
		AccountType:        u.AccountType,
		SubscriptionStatus: u.SubscriptionStatus,
		SubscriptionExpiry: u.SubscriptionExpiry,
		IsActive:           IsActive(u, s.now()),
		Benefits:           Benefits(u.AccountType),
	}, nil
}

// ExpireLapsed flips the stored status of every elapsed subscription to
// expired. Account types are left alone.
func (s *Service) ExpireLapsed(ctx context.Context) (int64, error) {
	n, err := s.users.ExpireSubscriptions(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		log.WithField("count", n).Info("expired lapsed subscriptions")
		metrics.RecordSubscriptionN("expire", n)
		s.events.Emit(ctx, mq.Event{Name: mq.SubscriptionsExpired, EntityType: "user"})
	}
	return n, nil
}

func (s *Service) emit(ctx context.Context, name string, u *models.User) {
	s.events.Emit(ctx, mq.Event{
		Name:       name,
		EntityType: "user",
		EntityID:   u.ID.Hex(),
		UserID:     u.ID.Hex(),
	})
}
