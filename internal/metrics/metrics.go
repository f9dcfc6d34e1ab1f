// Package metrics declares the Prometheus collectors of the service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DongsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dongsplit_dongs_created_total",
		Help: "Dongs created by acting users.",
	}, []string{"joint"})

	PropagationTargets = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dongsplit_propagation_targets_total",
		Help: "Joint account replication outcomes per target subscriber.",
	}, []string{"outcome"})

	CategoryMatches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dongsplit_category_matches_total",
		Help: "Category resolution branch taken during propagation.",
	}, []string{"kind"})

	PushMessages = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dongsplit_push_messages_total",
		Help: "Push delivery outcomes per message.",
	}, []string{"outcome"})

	Tasks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dongsplit_tasks_total",
		Help: "Background task attempts by outcome.",
	}, []string{"task", "outcome"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dongsplit_http_request_duration_seconds",
		Help:    "HTTP request latency by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

// Middleware records request latency labelled by the matched chi route pattern
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		HTTPDuration.WithLabelValues(r.Method, route, strconv.Itoa(status)).Observe(time.Since(start).Seconds())
	})
}
