package auth

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/imjustneko/Travel-web/apperr"
	"github.com/imjustneko/Travel-web/middleware"
	"github.com/imjustneko/Travel-web/models"
	"github.com/imjustneko/Travel-web/store"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// refreshWindow is how close to expiry a token must be before Refresh
// issues a new one.
const refreshWindow = 30 * time.Minute

const MinPasswordLength = 6

// SessionStore records the live token of each user.
type SessionStore interface {
	Store(ctx context.Context, userID, token string, ttl time.Duration) error
	Remove(ctx context.Context, userID string) error
}

// Session is a signed-in user and the token that proves it.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *models.User
}

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Service struct {
	users    store.UserStore
	tokens   *middleware.Auth
	sessions SessionStore
	ttl      time.Duration
	cost     int
}

// NewService builds the identity service. sessions may be nil when no
// Redis is configured.
func NewService(users store.UserStore, tokens *middleware.Auth, sessions SessionStore, ttl time.Duration) *Service {
	return &Service{users: users, tokens: tokens, sessions: sessions, ttl: ttl, cost: bcrypt.DefaultCost}
}

// NormalizeEmail lower-cases and trims an address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// HashPassword returns the bcrypt hash of password.
func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the stored hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	name := strings.TrimSpace(in.Name)
	email := NormalizeEmail(in.Email)
	if name == "" || email == "" || in.Password == "" {
		return nil, apperr.NewValidation("Please provide name, email and password")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperr.NewValidation("Please provide a valid email")
	}
	if len(in.Password) < MinPasswordLength {
		return nil, apperr.NewValidation("Password must be at least 6 characters")
	}

	hash, err := s.HashPassword(in.Password)
	if err != nil {
		return nil, apperr.Wrap(err, "Failed to register user")
	}
	u := &models.User{
		ID:                 models.NewID(),
		Name:               name,
		Email:              email,
		Password:           hash,
		AccountType:        models.AccountGuest,
		SubscriptionStatus: models.SubscriptionInactive,
		CreatedAt:          time.Now().UTC(),
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apperr.NewConflict("User already exists")
		}
		return nil, apperr.Wrap(err, "Failed to register user")
	}

	log.WithField("user", u.ID.Hex()).Info("user registered")
	return s.issue(ctx, u)
}

func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperr.NewValidation("Please provide email and password")
	}

	u, err := s.users.FindUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.New(apperr.Unauthorized, "Invalid credentials")
	}
	if err != nil {
		return nil, apperr.Wrap(err, "Login failed")
	}
	if !CheckPassword(u.Password, password) {
		return nil, apperr.New(apperr.Unauthorized, "Invalid credentials")
	}
	return s.issue(ctx, u)
}

// Logout ends the user's session. Without a session store tokens simply
// run until they expire.
func (s *Service) Logout(ctx context.Context, userID string) error {
	if s.sessions == nil {
		return nil
	}
	if err := s.sessions.Remove(ctx, userID); err != nil {
		return apperr.Wrap(err, "Logout failed")
	}
	return nil
}

// Refresh re-issues the caller's token once it is within the refresh
// window of expiry. Earlier calls return the current token unchanged.
func (s *Service) Refresh(ctx context.Context, raw string) (*Session, bool, error) {
	claims, err := s.tokens.ParseToken(raw)
	if err != nil {
		return nil, false, apperr.New(apperr.Unauthorized, "Invalid token")
	}
	id, ok := models.ParseID(claims.UserID)
	if !ok {
		return nil, false, apperr.New(apperr.Unauthorized, "Invalid token")
	}
	u, err := s.users.FindUser(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, false, apperr.New(apperr.Unauthorized, "User no longer exists")
	}
	if err != nil {
		return nil, false, apperr.Wrap(err, "Failed to refresh token")
	}

	expiresAt := claims.ExpiresAt.Time
	if time.Until(expiresAt) > refreshWindow {
		return &Session{Token: raw, ExpiresAt: expiresAt, User: u}, false, nil
	}
	sess, err := s.issue(ctx, u)
	if err != nil {
		return nil, false, err
	}
	return sess, true, nil
}

func (s *Service) issue(ctx context.Context, u *models.User) (*Session, error) {
	token, claims, err := s.tokens.Sign(u.ID.Hex(), u.Name, u.IsAdmin, s.ttl)
	if err != nil {
		return nil, apperr.Wrap(err, "Failed to generate token")
	}
	if s.sessions != nil {
		if err := s.sessions.Store(ctx, u.ID.Hex(), token, s.ttl); err != nil {
			return nil, apperr.Wrap(err, "Failed to store session")
		}
	}
	return &Session{Token: token, ExpiresAt: claims.ExpiresAt.Time, User: u}, nil
}
