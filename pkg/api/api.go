// Package api serves monitor status and Prometheus metrics over HTTP.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sigobj/beaconfence/pkg/fence"
)

// StatusSource provides the state reported by GET /status.
// *monitor.Monitor satisfies it.
type StatusSource interface {
	Fence() *fence.Fence
	Inside() bool
	Monitoring() bool
}

// Status is the JSON body of GET /status.
type Status struct {
	Region     string  `json:"region"`
	Name       string  `json:"name"`
	Major      uint16  `json:"major"`
	Minor      uint16  `json:"minor"`
	Inside     bool    `json:"inside"`
	Monitoring bool    `json:"monitoring"`
	Location   string  `json:"location"`
	Proximity  string  `json:"proximity"`
	Distance   float64 `json:"distance"`
}

// Handler serves the status endpoints.
type Handler struct {
	logger   *slog.Logger
	source   StatusSource
	gatherer prometheus.Gatherer
}

// New creates a Handler. A nil gatherer serves the default registry.
func New(source StatusSource, gatherer prometheus.Gatherer, logger *slog.Logger) *Handler {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, source: source, gatherer: gatherer}
}

// Register registers the routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/status", h.handleStatus)
	r.Get("/healthz", h.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))
}

// NewRouter returns a router with the handler's routes and standard middleware.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(10 * time.Second))
	h.Register(r)
	return r
}

// NewMetricsRouter returns a router serving only /healthz and /metrics.
func NewMetricsRouter(gatherer prometheus.Gatherer) http.Handler {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return r
}

// StatusOf builds the status snapshot of source.
func StatusOf(source StatusSource) Status {
	f := source.Fence()
	id := f.Identity()

	status := Status{
		Region:     id.RegionID().String(),
		Name:       id.Name(),
		Major:      id.Major(),
		Minor:      id.Minor(),
		Inside:     source.Inside(),
		Monitoring: source.Monitoring(),
		Location:   f.Describe(),
		Proximity:  fence.ProximityUnknown.String(),
		Distance:   -1,
	}
	if r, ok := f.LastReading(); ok {
		status.Proximity = r.Proximity.String()
		status.Distance = r.Distance
	}
	return status
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := StatusOf(h.source)
	h.logger.Debug("status requested",
		"request_id", middleware.GetReqID(r.Context()),
		"inside", status.Inside,
	)
	writeJSON(w, http.StatusOK, status)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
