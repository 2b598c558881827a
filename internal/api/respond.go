package api

import (
	"net/http"
	"sort"
	"strings"
)

// Content types served by trafdat. The octet stream type uses an
// underscore to stay wire-compatible with existing archive clients.
const (
	ctHTML   = "text/html"
	ctCSS    = "text/css"
	ctText   = "text/plain"
	ctJSON   = "application/json"
	ctXML    = "application/xml"
	ctBinary = "application/octet_stream"
)

// response is one fully shaped HTTP response. A nil *response means the
// resource was undefined and the next dispatch alternative should run.
type response struct {
	status      int
	contentType string
	body        []byte
}

// okResponse shapes a 200 response.
func okResponse(contentType string, body []byte) *response {
	return &response{status: http.StatusOK, contentType: contentType, body: body}
}

// badRequest is the 400 response for a year/date prefix mismatch. It is a
// defined result, so it short-circuits any remaining alternatives.
func badRequest() *response {
	return &response{
		status:      http.StatusBadRequest,
		contentType: ctText,
		body:        []byte("Bad request"),
	}
}

// listJSON shapes a sequence of names as a JSON array of strings. An empty
// sequence is undefined, not "[]"; absent archives serve 404.
func listJSON(items []string) *response {
	if len(items) == 0 {
		return nil
	}
	var b strings.Builder
	b.WriteByte('[')
	for i, item := range items {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(item)
		b.WriteByte('"')
	}
	b.WriteByte(']')
	return okResponse(ctJSON, []byte(b.String()))
}

// datesText shapes a date list as sorted newline-terminated plain text.
func datesText(dates []string) *response {
	if len(dates) == 0 {
		return nil
	}
	sorted := make([]string, len(dates))
	copy(sorted, dates)
	sort.Strings(sorted)
	var b strings.Builder
	for _, date := range sorted {
		b.WriteString(date)
		b.WriteByte('\n')
	}
	return okResponse(ctText, []byte(b.String()))
}

// write sends the shaped response.
func (r *response) write(w http.ResponseWriter) {
	w.Header().Set("Content-Type", r.contentType)
	w.WriteHeader(r.status)
	_, _ = w.Write(r.body)
}

// notFound writes the uniform 404 body.
func notFound(w http.ResponseWriter) {
	w.Header().Set("Content-Type", ctText)
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write([]byte("Not Found"))
}
