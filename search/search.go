package search

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/imjustneko/Travel-web/apperr"
	"github.com/imjustneko/Travel-web/models"
	"github.com/imjustneko/Travel-web/store"
	"github.com/imjustneko/Travel-web/utils"

	"github.com/julienschmidt/httprouter"
)

type Service struct {
	items store.CatalogStore
}

func NewService(items store.CatalogStore) *Service {
	return &Service{items: items}
}

// Search matches query as a literal, case-insensitive substring of title,
// description or location. A blank query matches everything; category ""
// or "all" means every category.
func (s *Service) Search(ctx context.Context, query, category string) ([]models.CatalogItem, error) {
	f := store.ItemFilter{Query: strings.TrimSpace(query)}
	if category != "" && category != "all" {
		c := models.Category(category)
		if !c.Valid() {
			return []models.CatalogItem{}, nil
		}
		f.Category = c
	}
	items, _, err := s.items.ListItems(ctx, f)
	if err != nil {
		return nil, apperr.Wrap(err, "Search failed")
	}
	if items == nil {
		items = []models.CatalogItem{}
	}
	return items, nil
}

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// GET /api/search?query=&category=
func (h *Handler) Search(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	q := r.URL.Query()
	items, err := h.svc.Search(ctx, q.Get("query"), q.Get("category"))
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, items)
}
