// Package api implements the trafdat HTTP surface.
//
// All endpoints are GET requests under the /trafdat scope. Several URL
// shapes are overloaded; each is resolved by trying a fixed list of
// interpretations in order and serving the first that yields a defined
// result. A year/date prefix mismatch is itself a defined result (400),
// so it stops the fallback chain.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mnit-rtmc/trafdat/internal/archive"
	"github.com/mnit-rtmc/trafdat/internal/config"
	"github.com/mnit-rtmc/trafdat/internal/log"
	"github.com/mnit-rtmc/trafdat/internal/metro"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Server holds the request-independent state of the trafdat service: the
// configuration and the two read-only stores.
type Server struct {
	cfg     config.AppConfig
	traffic *archive.Store
	metro   *metro.Store
	logger  zerolog.Logger
}

// New creates a Server over the configured archive roots.
func New(cfg config.AppConfig) *Server {
	return &Server{
		cfg:     cfg,
		traffic: archive.New(cfg.TrafficRoot),
		metro:   metro.New(cfg.ConfigRoot),
		logger:  log.WithComponent("api"),
	}
}

// Router builds the HTTP routing tree. The service is mounted under
// /trafdat; /metrics exposes Prometheus metrics outside that scope.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(timed)
	r.Get("/trafdat", s.handleIndex)
	r.Get("/trafdat/", s.handleIndex)
	r.Get("/trafdat/index.html", s.handleIndex)
	r.Get("/trafdat/trafdat.css", s.handleCSS)
	r.Get("/trafdat/districts", s.handleDistricts)
	r.Get("/trafdat/metro_config/{p1}", s.handleMetroDoc)
	r.Get("/trafdat/metro_config/{p1}/{p2}", s.handleMetroCorridor)
	r.Get("/trafdat/{p1}", s.handleOne)
	r.Get("/trafdat/{p1}/{p2}", s.handleTwo)
	r.Get("/trafdat/{p1}/{p2}/{p3}", s.handleThree)
	r.Handle("/metrics", promhttp.Handler())
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		recordRequest("unknown", http.StatusNotFound)
		notFound(w)
	})
	return r
}

// attempt is one interpretation of an overloaded URL shape. It returns nil
// when its preconditions do not hold, handing over to the next attempt.
// kind labels the request metrics when the attempt wins.
type attempt struct {
	name string
	kind string
	run  func() *response
}

// resolve runs attempts in order and returns the first defined response
// along with its kind. A miss carries the fallback kind.
func resolve(fallback string, attempts []attempt) (string, *response) {
	for _, a := range attempts {
		if res := a.run(); res != nil {
			return a.kind, res
		}
	}
	return fallback, nil
}

// serve writes the resolved response, or the uniform 404 when every
// interpretation came up empty.
func (s *Server) serve(w http.ResponseWriter, r *http.Request, kind string, res *response) {
	if res == nil {
		recordRequest(kind, http.StatusNotFound)
		notFound(w)
		return
	}
	recordRequest(kind, res.status)
	if res.status >= http.StatusBadRequest {
		s.logger.Debug().
			Str("event", "request.rejected").
			Str("kind", kind).
			Int("status", res.status).
			Str("path", r.URL.Path).
			Msg("request rejected")
	}
	res.write(w)
}
