package metrics

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "travel",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "travel",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "travel",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "route"},
	)

	reservations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "travel",
			Subsystem: "reservations",
			Name:      "events_total",
			Help:      "Reservation ledger mutations by action.",
		},
		[]string{"action"},
	)

	reviews = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "travel",
			Subsystem: "reviews",
			Name:      "events_total",
			Help:      "Review ledger mutations by action.",
		},
		[]string{"action"},
	)

	subscriptions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "travel",
			Subsystem: "subscriptions",
			Name:      "transitions_total",
			Help:      "Subscription state transitions.",
		},
		[]string{"transition"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		reservations,
		reviews,
		subscriptions,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
}

// Handler exposes the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Instrument wraps h so that requests to route are counted and timed. The
// route pattern, not the concrete path, is used as label.
func Instrument(method, route string, h httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		httpInFlight.Inc()
		defer httpInFlight.Dec()

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		h(rec, r, ps)

		httpRequests.WithLabelValues(method, route, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

func RecordReservation(action string) {
	reservations.WithLabelValues(action).Inc()
}

func RecordReview(action string) {
	reviews.WithLabelValues(action).Inc()
}

func RecordSubscription(transition string) {
	subscriptions.WithLabelValues(transition).Inc()
}

// RecordSubscriptionN counts n transitions at once, as done by the expiry
// sweep.
func RecordSubscriptionN(transition string, n int64) {
	subscriptions.WithLabelValues(transition).Add(float64(n))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// Hijack passes through so websocket upgrades keep working behind Instrument.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("metrics: response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}
