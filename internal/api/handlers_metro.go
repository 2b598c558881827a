package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/mnit-rtmc/trafdat/internal/dates"
)

// handleMetroDoc serves /metro_config/{date}.json and
// /metro_config/{date}.xml: the whole snapshot for one date.
func (s *Server) handleMetroDoc(w http.ResponseWriter, r *http.Request) {
	p1 := chi.URLParam(r, "p1")
	if date, found := strings.CutSuffix(p1, ".json"); found {
		if dates.IsValidDate(date) {
			if js, got := s.metro.FullJSON(date); got {
				s.serve(w, r, "config", okResponse(ctJSON, js))
				return
			}
		}
		s.serve(w, r, "config", nil)
		return
	}
	if date, found := strings.CutSuffix(p1, ".xml"); found {
		if dates.IsValidDate(date) {
			if xml, got := s.metro.ReadXML(date); got {
				s.serve(w, r, "config", okResponse(ctXML, xml))
				return
			}
		}
		s.serve(w, r, "config", nil)
		return
	}
	s.serve(w, r, "config", nil)
}

// handleMetroCorridor serves the corridor level of the metro config URL
// space: /metro_config/{date}/corridors lists the route_dir pairs present
// on a date, and /metro_config/{date}/{route}_{dir}.json or .xml slices
// the snapshot to one corridor.
func (s *Server) handleMetroCorridor(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "p1")
	p2 := chi.URLParam(r, "p2")
	if !dates.IsValidDate(date) {
		s.serve(w, r, "corridor", nil)
		return
	}
	if p2 == "corridors" {
		s.serve(w, r, "corridor", listJSON(s.metro.Corridors(date)))
		return
	}
	if stem, found := strings.CutSuffix(p2, ".json"); found {
		route, dir, split := splitCorridor(stem)
		if split {
			if js, got := s.metro.CorridorJSON(date, route, dir); got {
				s.serve(w, r, "corridor", okResponse(ctJSON, js))
				return
			}
		}
		s.serve(w, r, "corridor", nil)
		return
	}
	if stem, found := strings.CutSuffix(p2, ".xml"); found {
		route, dir, split := splitCorridor(stem)
		if split {
			if xml, got := s.metro.CorridorXML(date, route, dir); got {
				s.serve(w, r, "corridor", okResponse(ctXML, xml))
				return
			}
		}
		s.serve(w, r, "corridor", nil)
		return
	}
	s.serve(w, r, "corridor", nil)
}

// splitCorridor splits a "<route>_<dir>" stem at the last underscore, so
// route names containing underscores keep their full form.
func splitCorridor(stem string) (route, dir string, ok bool) {
	i := strings.LastIndex(stem, "_")
	if i < 0 || i == len(stem)-1 || i == 0 {
		return "", "", false
	}
	return stem[:i], stem[i+1:], true
}
