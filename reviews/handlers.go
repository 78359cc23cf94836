package reviews

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

type createRequest struct {
	ItemID   string  `json:"itemId"`
	ItemType string  `json:"itemType"`
	Rating   float64 `json:"rating"`
	Comment  string  `json:"comment"`
}

// POST /api/reviews
func (h *Handler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req createRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	review, err := h.svc.Create(ctx, utils.ActorFromRequest(r), CreateInput(req))
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, utils.M{
		"success": true,
		"message": "Review submitted successfully",
		"review":  review,
	})
}

// GET /api/reviews/item/:itemId
func (h *Handler) ListForItem(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	p := utils.ParsePagination(r, 10, 100)
	page, err := h.svc.ListForItem(ctx, ps.ByName("itemId"), p)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"success":       true,
		"reviews":       page.Reviews,
		"averageRating": page.AverageRating,
		"totalReviews":  page.TotalReviews,
		"pagination": utils.M{
			"page":  p.Page,
			"pages": p.Pages(page.TotalReviews),
			"total": page.TotalReviews,
		},
	})
}

// GET /api/reviews/user/my
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	list, err := h.svc.ListMine(ctx, utils.ActorFromRequest(r))
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "reviews": list})
}

// DELETE /api/reviews/:id
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.svc.Delete(ctx, utils.ActorFromRequest(r), ps.ByName("id")); err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"success": true,
		"message": "Review deleted successfully",
	})
}
