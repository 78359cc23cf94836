package reservations

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/imjustneko/Travel-web/globals"
	"github.com/imjustneko/Travel-web/models"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withActor(req *http.Request, a models.Actor) *http.Request {
	ctx := context.WithValue(req.Context(), globals.UserIDKey, a.UserID)
	ctx = context.WithValue(ctx, globals.IsAdminKey, a.IsAdmin)
	return req.WithContext(ctx)
}

func call(h httprouter.Handle, req *http.Request, ps httprouter.Params) (*httptest.ResponseRecorder, map[string]any) {
	rec := httptest.NewRecorder()
	h(rec, req, ps)
	var body map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	return rec, body
}

func TestCreateHandler(t *testing.T) {
	f := newFixture(t)
	h := NewHandler(f.svc)

	payload := `{"itemId":"` + f.item.ID.Hex() + `","checkIn":"2025-06-01","guests":2}`
	req := withActor(httptest.NewRequest(http.MethodPost, "/api/reservations", strings.NewReader(payload)), f.owner)
	rec, body := call(h.Create, req, nil)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Reservation confirmed successfully!", body["message"])
	res := body["reservation"].(map[string]any)
	assert.Equal(t, "confirmed", res["status"])
	assert.EqualValues(t, 2, res["guests"])
	assert.Equal(t, "Ocean Suite", res["itemDetails"].(map[string]any)["title"])

	req = withActor(httptest.NewRequest(http.MethodPost, "/api/reservations", strings.NewReader(`{}`)), f.owner)
	rec, body = call(h.Create, req, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Room ID is required", body["message"])

	req = withActor(httptest.NewRequest(http.MethodPost, "/api/reservations", strings.NewReader(`{"itemId":"x"}`)), f.owner)
	rec, body = call(h.Create, req, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Room not found", body["message"])

	bad := `{"itemId":"` + f.item.ID.Hex() + `","checkIn":"June first"}`
	req = withActor(httptest.NewRequest(http.MethodPost, "/api/reservations", strings.NewReader(bad)), f.owner)
	rec, _ = call(h.Create, req, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListGetCancelDeleteHandlers(t *testing.T) {
	f := newFixture(t)
	h := NewHandler(f.svc)
	res := f.book(t)
	ps := httprouter.Params{{Key: "id", Value: res.ID.Hex()}}

	rec, body := call(h.ListMine, withActor(httptest.NewRequest(http.MethodGet, "/api/reservations/my", nil), f.owner), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, body["count"])
	list := body["reservations"].([]any)
	item := list[0].(map[string]any)["item"].(map[string]any)
	assert.Equal(t, "Ocean Suite", item["title"])

	rec, body = call(h.Get, withActor(httptest.NewRequest(http.MethodGet, "/", nil), f.other), ps)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Access denied", body["message"])

	rec, body = call(h.Cancel, withActor(httptest.NewRequest(http.MethodPut, "/", nil), f.owner), ps)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Reservation cancelled successfully", body["message"])
	assert.Equal(t, "cancelled", body["reservation"].(map[string]any)["status"])

	rec, _ = call(h.Delete, withActor(httptest.NewRequest(http.MethodDelete, "/", nil), f.owner), ps)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, body = call(h.Delete, withActor(httptest.NewRequest(http.MethodDelete, "/", nil), f.admin), ps)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Reservation deleted successfully", body["message"])

	rec, body = call(h.Get, withActor(httptest.NewRequest(http.MethodGet, "/", nil), f.owner), ps)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Reservation not found", body["message"])
}

func TestReceiptHandler(t *testing.T) {
	f := newFixture(t)
	h := NewHandler(f.svc)
	res := f.book(t)

	rec := httptest.NewRecorder()
	h.Receipt(rec, withActor(httptest.NewRequest(http.MethodGet, "/", nil), f.owner), httprouter.Params{{Key: "id", Value: res.ID.Hex()}})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF"))
}
