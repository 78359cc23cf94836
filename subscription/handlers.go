package subscription

import (
	"context"
	"net/http"
	"time"

	"github.com/imjustneko/Travel-web/utils"

	"github.com/julienschmidt/httprouter"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// PUT /api/subscription/upgrade
func (h *Handler) Upgrade(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	u, err := h.svc.Upgrade(ctx, utils.GetUserIDFromRequest(r))
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"success": true,
		"message": "Successfully upgraded to Premium!",
		"user": utils.M{
			"accountType":        u.AccountType,
			"subscriptionStatus": u.SubscriptionStatus,
			"subscriptionExpiry": u.SubscriptionExpiry,
			"benefits":           Benefits(u.AccountType),
		},
	})
}

// PUT /api/subscription/downgrade
func (h *Handler) Downgrade(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	u, err := h.svc.Downgrade(ctx, utils.GetUserIDFromRequest(r))
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"success": true,
		"message": "Subscription cancelled. Downgraded to Guest account.",
		"user": utils.M{
			"accountType":        u.AccountType,
			"subscriptionStatus": u.SubscriptionStatus,
			"benefits":           Benefits(u.AccountType),
		},
	})
}

// GET /api/subscription/status
func (h *Handler) Status(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	st, err := h.svc.Status(ctx, utils.GetUserIDFromRequest(r))
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"success":            true,
		"accountType":        st.AccountType,
		"subscriptionStatus": st.SubscriptionStatus,
		"subscriptionExpiry": st.SubscriptionExpiry,
		"isActive":           st.IsActive,
		"benefits":           st.Benefits,
	})
}
