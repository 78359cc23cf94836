package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/imjustneko/Travel-web/globals"
	"github.com/imjustneko/Travel-web/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	log "github.com/sirupsen/logrus"
)

// JWT claims
type Claims struct {
	UserID  string `json:"userId"`
	Name    string `json:"name"`
	IsAdmin bool   `json:"isAdmin"`
	jwt.RegisteredClaims
}

var ErrInvalidToken = errors.New("invalid token")

// SessionChecker reports whether token is still the user's live session.
type SessionChecker interface {
	Active(ctx context.Context, userID, token string) (bool, error)
}

// Auth validates bearer tokens issued by the auth package. Sessions is
// optional; without it any well-signed unexpired token is accepted.
type Auth struct {
	secret   []byte
	sessions SessionChecker
}

func NewAuth(secret []byte, sessions SessionChecker) *Auth {
	return &Auth{secret: secret, sessions: sessions}
}

// Sign issues an HS256 token for the given identity.
func (a *Auth) Sign(userID, name string, isAdmin bool, ttl time.Duration) (string, *Claims, error) {
	now := time.Now()
	claims := &Claims{
		UserID:  userID,
		Name:    name,
		IsAdmin: isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return signed, claims, nil
}

// ParseToken validates a raw token string.
func (a *Auth) ParseToken(raw string) (*Claims, error) {
	if raw == "" {
		return nil, ErrInvalidToken
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (any, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// BearerToken extracts the token from the Authorization header. WebSocket
// upgrades may pass it as ?token= instead since browsers cannot set headers
// on them.
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(header[len("Bearer "):])
	}
	if websocket.IsWebSocketUpgrade(r) {
		return r.URL.Query().Get("token")
	}
	return ""
}

func (a *Auth) verify(r *http.Request) (*Claims, string, error) {
	raw := BearerToken(r)
	if raw == "" {
		return nil, "", errMissingToken
	}
	claims, err := a.ParseToken(raw)
	if err != nil {
		return nil, "", err
	}
	if a.sessions != nil {
		ok, err := a.sessions.Active(r.Context(), claims.UserID, raw)
		switch {
		case err != nil:
			log.WithError(err).Warn("session lookup failed; accepting signed token")
		case !ok:
			return nil, "", errSessionEnded
		}
	}
	return claims, raw, nil
}

var (
	errMissingToken = errors.New("missing token")
	errSessionEnded = errors.New("session ended")
)

func withClaims(r *http.Request, claims *Claims, raw string) *http.Request {
	ctx := context.WithValue(r.Context(), globals.UserIDKey, claims.UserID)
	ctx = context.WithValue(ctx, globals.IsAdminKey, claims.IsAdmin)
	ctx = context.WithValue(ctx, globals.TokenKey, raw)
	return r.WithContext(ctx)
}

func (a *Auth) Authenticate(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		claims, raw, err := a.verify(r)
		if err != nil {
			msg := "Invalid token"
			switch {
			case errors.Is(err, errMissingToken):
				msg = "Missing token"
			case errors.Is(err, errSessionEnded):
				msg = "Session has ended"
			}
			utils.RespondWithError(w, http.StatusUnauthorized, msg)
			return
		}
		next(w, withClaims(r, claims, raw), ps)
	}
}

// RequireAdmin authenticates and rejects non-admin callers.
func (a *Auth) RequireAdmin(next httprouter.Handle) httprouter.Handle {
	return a.Authenticate(func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if !utils.IsAdminFromRequest(r) {
			utils.RespondWithError(w, http.StatusForbidden, "Admin access required")
			return
		}
		next(w, r, ps)
	})
}

// TokenFromRequest returns the raw token attached by Authenticate.
func TokenFromRequest(r *http.Request) string {
	token, _ := r.Context().Value(globals.TokenKey).(string)
	return token
}
