package api

import (
	"embed"
	"net/http"
)

//go:embed static
var staticFS embed.FS

// handleIndex serves the embedded landing page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.serveStatic(w, r, "static/index.html", ctHTML)
}

// handleCSS serves the embedded stylesheet.
func (s *Server) handleCSS(w http.ResponseWriter, r *http.Request) {
	s.serveStatic(w, r, "static/trafdat.css", ctCSS)
}

func (s *Server) serveStatic(w http.ResponseWriter, r *http.Request, name, contentType string) {
	body, err := staticFS.ReadFile(name)
	if err != nil {
		s.serve(w, r, "static", nil)
		return
	}
	s.serve(w, r, "static", okResponse(contentType, body))
}
