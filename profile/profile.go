package profile

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/imjustneko/Travel-web/apperr"
	"github.com/imjustneko/Travel-web/auth"
	"github.com/imjustneko/Travel-web/models"
	"github.com/imjustneko/Travel-web/store"
	"github.com/imjustneko/Travel-web/utils"

	"github.com/julienschmidt/httprouter"
)

// Hasher produces password hashes for stored credentials.
type Hasher interface {
	HashPassword(password string) (string, error)
}

type Service struct {
	users  store.UserStore
	hasher Hasher
}

func NewService(users store.UserStore, hasher Hasher) *Service {
	return &Service{users: users, hasher: hasher}
}

// UpdateInput changes the name and/or password. A new password requires
// the current one.
type UpdateInput struct {
	Name            string `json:"name"`
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (s *Service) load(ctx context.Context, userID string) (*models.User, error) {
	id, ok := models.ParseID(userID)
	if !ok {
		return nil, apperr.NewNotFound("User not found")
	}
	u, err := s.users.FindUser(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NewNotFound("User not found")
	}
	if err != nil {
		return nil, apperr.Wrap(err, "Server error")
	}
	return u, nil
}

func (s *Service) Get(ctx context.Context, userID string) (*models.User, error) {
	return s.load(ctx, userID)
}

func (s *Service) Update(ctx context.Context, userID string, in UpdateInput) (*models.User, error) {
	u, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	var newHash string
	if name := strings.TrimSpace(in.Name); name != "" {
		u.Name = name
	}
	if in.NewPassword != "" {
		if in.CurrentPassword == "" {
			return nil, apperr.NewValidation("Current password is required to set a new password")
		}
		if !auth.CheckPassword(u.Password, in.CurrentPassword) {
			return nil, apperr.NewValidation("Current password is incorrect")
		}
		if len(in.NewPassword) < auth.MinPasswordLength {
			return nil, apperr.NewValidation("New password must be at least 6 characters")
		}
		hash, err := s.hasher.HashPassword(in.NewPassword)
		if err != nil {
			return nil, apperr.Wrap(err, "Failed to update profile")
		}
		u.Password = hash
		newHash = hash
	}

	if err := s.users.UpdateProfile(ctx, u.ID, u.Name, newHash); err != nil {
		return nil, apperr.Wrap(err, "Failed to update profile")
	}
	return u, nil
}

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// GET /api/user/profile
func (h *Handler) Get(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	u, err := h.svc.Get(ctx, utils.GetUserIDFromRequest(r))
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"id":          u.ID,
		"name":        u.Name,
		"email":       u.Email,
		"isAdmin":     u.IsAdmin,
		"memberSince": u.CreatedAt,
	})
}

// PUT /api/user/profile
func (h *Handler) Update(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var in UpdateInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	u, err := h.svc.Update(ctx, utils.GetUserIDFromRequest(r), in)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"message": "Profile updated successfully",
		"user": utils.M{
			"id":      u.ID,
			"name":    u.Name,
			"email":   u.Email,
			"isAdmin": u.IsAdmin,
		},
	})
}
