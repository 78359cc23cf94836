package reservations

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/imjustneko/Travel-web/apperr"
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
	ItemID   string `json:"itemId"`
	CheckIn  string `json:"checkIn"`
	CheckOut string `json:"checkOut"`
	Guests   int    `json:"guests"`
	Notes    string `json:"notes"`
}

var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"}

func parseDate(s, field string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	return nil, apperr.NewValidation("Invalid " + field + " date")
}

// POST /api/reservations
func (h *Handler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req createRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	checkIn, err := parseDate(req.CheckIn, "check-in")
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	checkOut, err := parseDate(req.CheckOut, "check-out")
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	res, err := h.svc.Create(ctx, utils.ActorFromRequest(r), CreateInput{
		ItemID:   req.ItemID,
		CheckIn:  checkIn,
		CheckOut: checkOut,
		Guests:   req.Guests,
		Notes:    req.Notes,
	})
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, utils.M{
		"success":     true,
		"message":     "Reservation confirmed successfully!",
		"reservation": res,
	})
}

// GET /api/reservations/my
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	list, err := h.svc.ListMine(ctx, utils.ActorFromRequest(r))
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"success":      true,
		"count":        len(list),
		"reservations": list,
	})
}

// GET /api/reservations/:id
func (h *Handler) Get(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := h.svc.Get(ctx, utils.ActorFromRequest(r), ps.ByName("id"))
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "reservation": res})
}

// PUT /api/reservations/:id/cancel
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := h.svc.Cancel(ctx, utils.ActorFromRequest(r), ps.ByName("id"))
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"success":     true,
		"message":     "Reservation cancelled successfully",
		"reservation": res,
	})
}

// DELETE /api/reservations/:id
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.svc.Delete(ctx, utils.ActorFromRequest(r), ps.ByName("id")); err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"success": true,
		"message": "Reservation deleted successfully",
	})
}

// GET /api/reservations/:id/receipt
func (h *Handler) Receipt(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	id := ps.ByName("id")
	pdf, err := h.svc.Receipt(ctx, utils.ActorFromRequest(r), id)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=reservation-"+id+".pdf")
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	w.WriteHeader(http.StatusOK)
	w.Write(pdf)
}
