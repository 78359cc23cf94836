package ratelim

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
)

func ok(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	w.WriteHeader(http.StatusOK)
}

func call(h httprouter.Handle, addr string) int {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.RemoteAddr = addr
	rec := httptest.NewRecorder()
	h(rec, req, nil)
	return rec.Code
}

func TestLimitPerIP(t *testing.T) {
	rl := NewRateLimiter(0.001, 2)
	h := rl.Limit(ok)

	assert.Equal(t, http.StatusOK, call(h, "10.0.0.1:1000"))
	assert.Equal(t, http.StatusOK, call(h, "10.0.0.1:1001"))
	assert.Equal(t, http.StatusTooManyRequests, call(h, "10.0.0.1:1002"))

	assert.Equal(t, http.StatusOK, call(h, "10.0.0.2:1000"))
}

func TestCleanupDropsIdleVisitors(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	rl.getLimiter("10.0.0.1")
	rl.visitors["10.0.0.1"].lastSeen = time.Now().Add(-time.Hour)
	rl.getLimiter("10.0.0.2")

	rl.Cleanup()

	assert.NotContains(t, rl.visitors, "10.0.0.1")
	assert.Contains(t, rl.visitors, "10.0.0.2")
}
