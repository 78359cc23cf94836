package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
)

func tag(name string, trail *[]string) middlewareFunc {
	return func(next httprouter.Handle) httprouter.Handle {
		return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			*trail = append(*trail, name)
			next(w, r, ps)
		}
	}
}

func TestChainRunsFirstOutermost(t *testing.T) {
	var trail []string
	h := chain(tag("a", &trail), tag("b", &trail))(func(http.ResponseWriter, *http.Request, httprouter.Params) {
		trail = append(trail, "handler")
	})

	h(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil), nil)
	assert.Equal(t, []string{"a", "b", "handler"}, trail)
}

func TestMineOr(t *testing.T) {
	var hit string
	mine := func(http.ResponseWriter, *http.Request, httprouter.Params) { hit = "mine" }
	byID := func(http.ResponseWriter, *http.Request, httprouter.Params) { hit = "byID" }

	router := httprouter.New()
	router.GET("/api/reservations/:id", mineOr(mine, byID))

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/reservations/my", nil))
	assert.Equal(t, "mine", hit)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/reservations/64b7f0c2a1b2c3d4e5f60718", nil))
	assert.Equal(t, "byID", hit)
}

func TestIndex(t *testing.T) {
	rec := httptest.NewRecorder()
	Index(rec, httptest.NewRequest(http.MethodGet, "/", nil), nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Travel App API v2 is running!"}`, rec.Body.String())
}
