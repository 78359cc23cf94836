package favorites

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/imjustneko/Travel-web/apperr"
	"github.com/imjustneko/Travel-web/models"
	"github.com/imjustneko/Travel-web/store"
	"github.com/imjustneko/Travel-web/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Store interface {
	store.CatalogStore
	store.FavoriteStore
}

type Service struct {
	store Store
	now   func() time.Time
}

func NewService(st Store) *Service {
	return &Service{store: st, now: time.Now}
}

func caller(userID string) (primitive.ObjectID, error) {
	id, ok := models.ParseID(userID)
	if !ok {
		return primitive.NilObjectID, apperr.New(apperr.Unauthorized, "Invalid token")
	}
	return id, nil
}

// Add marks an item as a favourite of the user. Each item can be a
// favourite once per user.
func (s *Service) Add(ctx context.Context, userID, itemID string) (*models.Favorite, error) {
	uid, err := caller(userID)
	if err != nil {
		return nil, err
	}
	if itemID == "" {
		return nil, apperr.NewValidation("Item ID is required")
	}
	iid, ok := models.ParseID(itemID)
	if !ok {
		return nil, apperr.NewNotFound("Item not found")
	}
	item, err := s.store.FindItem(ctx, iid)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NewNotFound("Item not found")
	}
	if err != nil {
		return nil, apperr.Wrap(err, "Failed to add favorite")
	}

	fav := &models.Favorite{
		ID:        models.NewID(),
		User:      uid,
		Item:      item.ID,
		ItemType:  item.Category,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.CreateFavorite(ctx, fav); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apperr.NewConflict("Item is already in favorites")
		}
		return nil, apperr.Wrap(err, "Failed to add favorite")
	}
	return fav, nil
}

// List returns the user's favourites newest first with the live item
// joined where it still exists.
func (s *Service) List(ctx context.Context, userID string) ([]models.FavoriteDetail, error) {
	uid, err := caller(userID)
	if err != nil {
		return nil, err
	}
	favs, err := s.store.ListFavoritesByUser(ctx, uid)
	if err != nil {
		return nil, apperr.Wrap(err, "Failed to fetch favorites")
	}
	ids := make([]primitive.ObjectID, 0, len(favs))
	for _, f := range favs {
		ids = append(ids, f.Item)
	}
	items, err := s.store.FindItems(ctx, ids)
	if err != nil {
		return nil, apperr.Wrap(err, "Failed to fetch favorites")
	}

	out := make([]models.FavoriteDetail, 0, len(favs))
	for _, f := range favs {
		d := models.FavoriteDetail{Favorite: f}
		if item, ok := items[f.Item]; ok {
			d.Item = item.Ref(false)
		}
		out = append(out, d)
	}
	return out, nil
}

func (s *Service) Remove(ctx context.Context, userID, itemID string) error {
	uid, err := caller(userID)
	if err != nil {
		return err
	}
	iid, ok := models.ParseID(itemID)
	if !ok {
		return apperr.NewNotFound("Favorite not found")
	}
	if err := s.store.DeleteFavorite(ctx, uid, iid); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NewNotFound("Favorite not found")
		}
		return apperr.Wrap(err, "Failed to remove favorite")
	}
	return nil
}

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// POST /api/favorites
func (h *Handler) Add(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req struct {
		ItemID string `json:"itemId"`
	}
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	fav, err := h.svc.Add(ctx, utils.GetUserIDFromRequest(r), req.ItemID)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"success": true, "favorite": fav})
}

// GET /api/favorites
func (h *Handler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	favs, err := h.svc.List(ctx, utils.GetUserIDFromRequest(r))
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "count": len(favs), "favorites": favs})
}

// DELETE /api/favorites/:itemId
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.svc.Remove(ctx, utils.GetUserIDFromRequest(r), ps.ByName("itemId")); err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "message": "Removed from favorites"})
}
