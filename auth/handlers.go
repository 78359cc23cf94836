package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/imjustneko/Travel-web/middleware"
	"github.com/imjustneko/Travel-web/models"
	"github.com/imjustneko/Travel-web/utils"

	"github.com/julienschmidt/httprouter"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func publicUser(u *models.User) utils.M {
	return utils.M{
		"id":                 u.ID,
		"name":               u.Name,
		"email":              u.Email,
		"isAdmin":            u.IsAdmin,
		"accountType":        u.AccountType,
		"subscriptionStatus": u.SubscriptionStatus,
	}
}

func sessionBody(msg string, s *Session) utils.M {
	return utils.M{
		"success":   true,
		"message":   msg,
		"token":     s.Token,
		"expiresAt": s.ExpiresAt,
		"user":      publicUser(s.User),
	}
}

// POST /api/auth/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var in RegisterInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	sess, err := h.svc.Register(ctx, in)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, sessionBody("Registration successful", sess))
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// POST /api/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req loginRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	sess, err := h.svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, sessionBody("Login successful", sess))
}

// POST /api/auth/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.svc.Logout(ctx, utils.GetUserIDFromRequest(r)); err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "message": "Logged out successfully"})
}

// POST /api/auth/token/refresh
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	sess, renewed, err := h.svc.Refresh(ctx, middleware.TokenFromRequest(r))
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	msg := "Token still valid"
	if renewed {
		msg = "Token refreshed"
	}
	utils.RespondWithJSON(w, http.StatusOK, sessionBody(msg, sess))
}
