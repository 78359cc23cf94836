package catalog

import (
	"context"
	"net/http"
	"time"

	"github.com/imjustneko/Travel-web/models"
	"github.com/imjustneko/Travel-web/store"
	"github.com/imjustneko/Travel-web/utils"

	"github.com/julienschmidt/httprouter"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func filterFromQuery(r *http.Request) store.ItemFilter {
	q := r.URL.Query()
	f := store.ItemFilter{Featured: utils.ParseBool(r, "featured")}
	if c := models.Category(q.Get("category")); c.Valid() {
		f.Category = c
	}
	return f
}

// GET /api/destinations
// Bare array, newest first. ?page and ?limit are honoured only when given.
func (h *Handler) ListAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	f := filterFromQuery(r)
	if r.URL.Query().Has("limit") || r.URL.Query().Has("page") {
		p := utils.ParsePagination(r, 10, 100)
		f.Skip, f.Limit = p.Skip(), p.Limit
	}

	items, _, err := h.svc.List(ctx, f)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, items)
}

// GET /api/destinations/:id
func (h *Handler) GetOne(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	item, err := h.svc.Get(ctx, ps.ByName("id"), "")
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, item)
}

// ListCategory serves GET /api/<category> as {success, data, pagination}.
func (h *Handler) ListCategory(c models.Category) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		p := utils.ParsePagination(r, 10, 100)
		items, total, err := h.svc.List(ctx, store.ItemFilter{
			Category: c,
			Featured: utils.ParseBool(r, "featured"),
			Skip:     p.Skip(),
			Limit:    p.Limit,
		})
		if err != nil {
			utils.RespondWithAppError(w, r, err)
			return
		}

		utils.RespondWithJSON(w, http.StatusOK, utils.M{
			"success": true,
			"data":    items,
			"pagination": utils.M{
				"total": total,
				"page":  p.Page,
				"pages": p.Pages(total),
			},
		})
	}
}

// GetCategory serves GET /api/<category>/:id; items of another category
// are reported as not found.
func (h *Handler) GetCategory(c models.Category) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		item, err := h.svc.Get(ctx, ps.ByName("id"), c)
		if err != nil {
			utils.RespondWithAppError(w, r, err)
			return
		}
		utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "data": item})
	}
}

// GET /api/home
func (h *Handler) Home(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	home, err := h.svc.Home(ctx, 6)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"success":  true,
		"featured": home.Featured,
		"counts":   home.Counts,
	})
}

// GET /api/admin/destinations
func (h *Handler) AdminList(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	items, _, err := h.svc.List(ctx, store.ItemFilter{})
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, items)
}

// POST /api/admin/destinations
func (h *Handler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var in Input
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	item, err := h.svc.Create(ctx, in)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, item)
}

// PUT /api/admin/destinations/:id
func (h *Handler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var in Input
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	item, err := h.svc.Update(ctx, ps.ByName("id"), in)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, item)
}

// DELETE /api/admin/destinations/:id
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.svc.Delete(ctx, ps.ByName("id")); err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "message": "Destination deleted successfully"})
}
