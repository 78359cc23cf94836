// Package memory is an in-memory implementation of the store interfaces.
// It is safe for concurrent use and is intended for tests and local
// development (STORE_DRIVER=memory).
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/imjustneko/Travel-web/models"
	"github.com/imjustneko/Travel-web/store"
	"github.com/imjustneko/Travel-web/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type pairKey struct {
	user primitive.ObjectID
	item primitive.ObjectID
}

type Store struct {
	mu           sync.RWMutex
	items        map[primitive.ObjectID]models.CatalogItem
	users        map[primitive.ObjectID]models.User
	emails       map[string]primitive.ObjectID
	reservations map[primitive.ObjectID]models.Reservation
	reviews      map[primitive.ObjectID]models.Review
	reviewPairs  map[pairKey]primitive.ObjectID
	favorites    map[pairKey]models.Favorite
}

var _ store.Store = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		items:        make(map[primitive.ObjectID]models.CatalogItem),
		users:        make(map[primitive.ObjectID]models.User),
		emails:       make(map[string]primitive.ObjectID),
		reservations: make(map[primitive.ObjectID]models.Reservation),
		reviews:      make(map[primitive.ObjectID]models.Review),
		reviewPairs:  make(map[pairKey]primitive.ObjectID),
		favorites:    make(map[pairKey]models.Favorite),
	}
}

// Catalog ---------------------------------------------------------------------

func (s *Store) FindItem(_ context.Context, id primitive.ObjectID) (*models.CatalogItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	c := cloneItem(item)
	return &c, nil
}

func (s *Store) FindItems(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.CatalogItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[primitive.ObjectID]models.CatalogItem, len(ids))
	for _, id := range ids {
		if item, ok := s.items[id]; ok {
			out[id] = cloneItem(item)
		}
	}
	return out, nil
}

func (s *Store) ListItems(_ context.Context, f store.ItemFilter) ([]models.CatalogItem, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []models.CatalogItem
	for _, item := range s.items {
		if matchItem(item, f) {
			matched = append(matched, cloneItem(item))
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return newerThan(matched[i].CreatedAt, matched[j].CreatedAt, matched[i].ID, matched[j].ID)
	})

	total := int64(len(matched))
	return page(matched, f.Skip, f.Limit), total, nil
}

func matchItem(item models.CatalogItem, f store.ItemFilter) bool {
	if f.Category != "" && item.Category != f.Category {
		return false
	}
	if f.Featured != nil && item.Featured != *f.Featured {
		return false
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		if !utils.ContainsIgnoreCase(item.Title, q) &&
			!utils.ContainsIgnoreCase(item.Description, q) &&
			!utils.ContainsIgnoreCase(item.Location, q) {
			return false
		}
	}
	return true
}

func (s *Store) CountByCategory(_ context.Context) (map[models.Category]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[models.Category]int64)
	for _, item := range s.items {
		out[item.Category]++
	}
	return out, nil
}

func (s *Store) CreateItem(_ context.Context, item *models.CatalogItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if item.ID.IsZero() {
		item.ID = models.NewID()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}
	s.items[item.ID] = cloneItem(*item)
	return nil
}

func (s *Store) UpdateItem(_ context.Context, item *models.CatalogItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	orig, ok := s.items[item.ID]
	if !ok {
		return store.ErrNotFound
	}
	item.CreatedAt = orig.CreatedAt
	s.items[item.ID] = cloneItem(*item)
	return nil
}

func (s *Store) DeleteItem(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.items, id)
	return nil
}

func (s *Store) SetItemRating(_ context.Context, id primitive.ObjectID, rating float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[id]
	if !ok {
		return store.ErrNotFound
	}
	item.Rating = rating
	s.items[id] = item
	return nil
}

// Users -----------------------------------------------------------------------

func (s *Store) FindUser(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	c := cloneUser(u)
	return &c, nil
}

func (s *Store) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.emails[email]
	if !ok {
		return nil, store.ErrNotFound
	}
	c := cloneUser(s.users[id])
	return &c, nil
}

func (s *Store) CreateUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.emails[u.Email]; taken {
		return store.ErrDuplicate
	}
	if u.ID.IsZero() {
		u.ID = models.NewID()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	s.users[u.ID] = cloneUser(*u)
	s.emails[u.Email] = u.ID
	return nil
}

func (s *Store) SetSubscription(_ context.Context, id primitive.ObjectID, account models.AccountType, status models.SubscriptionStatus, expiry *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return store.ErrNotFound
	}
	u.AccountType = account
	u.SubscriptionStatus = status
	u.SubscriptionExpiry = nil
	if expiry != nil {
		e := *expiry
		u.SubscriptionExpiry = &e
	}
	s.users[id] = u
	return nil
}

func (s *Store) UpdateProfile(_ context.Context, id primitive.ObjectID, name, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return store.ErrNotFound
	}
	u.Name = name
	if passwordHash != "" {
		u.Password = passwordHash
	}
	s.users[id] = u
	return nil
}

func (s *Store) ExpireSubscriptions(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for id, u := range s.users {
		if u.SubscriptionStatus == models.SubscriptionActive &&
			u.SubscriptionExpiry != nil && u.SubscriptionExpiry.Before(now) {
			u.SubscriptionStatus = models.SubscriptionExpired
			s.users[id] = u
			n++
		}
	}
	return n, nil
}

// Reservations ----------------------------------------------------------------

func (s *Store) CreateReservation(_ context.Context, r *models.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.ID.IsZero() {
		r.ID = models.NewID()
	}
	s.reservations[r.ID] = cloneReservation(*r)
	return nil
}

func (s *Store) FindReservation(_ context.Context, id primitive.ObjectID) (*models.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.reservations[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	c := cloneReservation(r)
	return &c, nil
}

func (s *Store) ListReservationsByUser(_ context.Context, userID primitive.ObjectID) ([]models.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Reservation{}
	for _, r := range s.reservations {
		if r.User == userID {
			out = append(out, cloneReservation(r))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return newerThan(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	return out, nil
}

func (s *Store) SetReservationStatus(_ context.Context, id primitive.ObjectID, status models.ReservationStatus, at time.Time) (*models.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.reservations[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	r.Status = status
	r.UpdatedAt = at
	s.reservations[id] = r
	c := cloneReservation(r)
	return &c, nil
}

func (s *Store) DeleteReservation(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.reservations[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.reservations, id)
	return nil
}

// Reviews ---------------------------------------------------------------------

func (s *Store) CreateReview(_ context.Context, r *models.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pairKey{r.User, r.Item}
	if _, exists := s.reviewPairs[key]; exists {
		return store.ErrDuplicate
	}
	if r.ID.IsZero() {
		r.ID = models.NewID()
	}
	s.reviews[r.ID] = *r
	s.reviewPairs[key] = r.ID
	return nil
}

func (s *Store) FindReview(_ context.Context, id primitive.ObjectID) (*models.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.reviews[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &r, nil
}

func (s *Store) FindReviewByUserItem(_ context.Context, userID, itemID primitive.ObjectID) (*models.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.reviewPairs[pairKey{userID, itemID}]
	if !ok {
		return nil, store.ErrNotFound
	}
	r := s.reviews[id]
	return &r, nil
}

func (s *Store) itemReviewsLocked(itemID primitive.ObjectID) []models.Review {
	out := []models.Review{}
	for _, r := range s.reviews {
		if r.Item == itemID {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return newerThan(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	return out
}

func (s *Store) ListReviewsByItem(_ context.Context, itemID primitive.ObjectID, skip, limit int64) ([]models.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return page(s.itemReviewsLocked(itemID), skip, limit), nil
}

func (s *Store) ReviewStats(_ context.Context, itemID primitive.ObjectID) (store.ReviewStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var stats store.ReviewStats
	var sum int
	for _, r := range s.reviews {
		if r.Item == itemID {
			stats.Count++
			sum += r.Rating
		}
	}
	if stats.Count > 0 {
		stats.Average = float64(sum) / float64(stats.Count)
	}
	return stats, nil
}

func (s *Store) ListReviewsByUser(_ context.Context, userID primitive.ObjectID) ([]models.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Review{}
	for _, r := range s.reviews {
		if r.User == userID {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return newerThan(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	return out, nil
}

func (s *Store) DeleteReview(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.reviews[id]
	if !ok {
		return store.ErrNotFound
	}
	delete(s.reviews, id)
	delete(s.reviewPairs, pairKey{r.User, r.Item})
	return nil
}

// Favorites -------------------------------------------------------------------

func (s *Store) CreateFavorite(_ context.Context, f *models.Favorite) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pairKey{f.User, f.Item}
	if _, exists := s.favorites[key]; exists {
		return store.ErrDuplicate
	}
	if f.ID.IsZero() {
		f.ID = models.NewID()
	}
	s.favorites[key] = *f
	return nil
}

func (s *Store) ListFavoritesByUser(_ context.Context, userID primitive.ObjectID) ([]models.Favorite, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Favorite{}
	for key, f := range s.favorites {
		if key.user == userID {
			out = append(out, f)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return newerThan(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	return out, nil
}

func (s *Store) DeleteFavorite(_ context.Context, userID, itemID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pairKey{userID, itemID}
	if _, ok := s.favorites[key]; !ok {
		return store.ErrNotFound
	}
	delete(s.favorites, key)
	return nil
}

// helpers ---------------------------------------------------------------------

// newerThan orders by creation time descending; ObjectIDs break ties since
// they grow monotonically within a process.
func newerThan(a, b time.Time, aID, bID primitive.ObjectID) bool {
	if !a.Equal(b) {
		return a.After(b)
	}
	return aID.Hex() > bID.Hex()
}

func page[T any](all []T, skip, limit int64) []T {
	if skip < 0 {
		skip = 0
	}
	if skip >= int64(len(all)) {
		return []T{}
	}
	all = all[skip:]
	if limit > 0 && limit < int64(len(all)) {
		all = all[:limit]
	}
	return all
}

func cloneItem(item models.CatalogItem) models.CatalogItem {
	item.Images = append([]string{}, item.Images...)
	if item.Discount != nil {
		d := *item.Discount
		item.Discount = &d
	}
	if item.OriginalPrice != nil {
		p := *item.OriginalPrice
		item.OriginalPrice = &p
	}
	return item
}

func cloneUser(u models.User) models.User {
	if u.SubscriptionExpiry != nil {
		t := *u.SubscriptionExpiry
		u.SubscriptionExpiry = &t
	}
	return u
}

func cloneReservation(r models.Reservation) models.Reservation {
	if r.ItemDetails.Image != nil {
		img := *r.ItemDetails.Image
		r.ItemDetails.Image = &img
	}
	if r.CheckIn != nil {
		t := *r.CheckIn
		r.CheckIn = &t
	}
	if r.CheckOut != nil {
		t := *r.CheckOut
		r.CheckOut = &t
	}
	return r
}
