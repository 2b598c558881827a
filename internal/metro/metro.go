// Package metro reads historical network configuration snapshots.
//
// Snapshots are gzip-compressed XML documents named
// metro_config_YYYYMMDD.xml.gz. The full document or a single corridor
// subtree can be served as raw XML or projected to JSON with the DTD
// defaults filled in.
package metro

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/beevik/etree"
	"github.com/mnit-rtmc/trafdat/internal/log"
	"github.com/rs/zerolog"
)

// Store provides read access to one metro config snapshot directory. It is
// stateless and safe for concurrent use.
type Store struct {
	root   string
	logger zerolog.Logger
}

// New returns a Store reading from the given snapshot root.
func New(root string) *Store {
	return &Store{root: root, logger: log.WithComponent("metro")}
}

// ReadXML returns the decompressed snapshot document for a date verbatim,
// or false when no snapshot exists for that date. The date is validated by
// the caller.
func (s *Store) ReadXML(date string) ([]byte, bool) {
	name := fmt.Sprintf("metro_config_%s.xml.gz", date)
	f, err := os.Open(filepath.Join(s.root, name))
	if err != nil {
		return nil, false
	}
	defer f.Close()
	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, false
	}
	defer gz.Close()
	xml, err := io.ReadAll(gz)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("event", "config.read_failed").
			Str("date", date).
			Msg("truncated config snapshot")
		return nil, false
	}
	return xml, true
}

// parse reads one snapshot into an etree document.
func (s *Store) parse(date string) (*etree.Document, bool) {
	xml, ok := s.ReadXML(date)
	if !ok {
		return nil, false
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(xml); err != nil {
		s.logger.Warn().
			Err(err).
			Str("event", "config.parse_failed").
			Str("date", date).
			Msg("malformed config snapshot")
		return nil, false
	}
	return doc, true
}

// FullJSON projects the whole snapshot for a date to JSON.
func (s *Store) FullJSON(date string) ([]byte, bool) {
	doc, ok := s.parse(date)
	if !ok {
		return nil, false
	}
	cfg, err := parseConfig(doc.Root())
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("event", "config.transform_failed").
			Str("date", date).
			Msg("snapshot does not match schema")
		return nil, false
	}
	js, err := json.Marshal(cfg)
	if err != nil {
		return nil, false
	}
	return js, true
}

// findCorridor selects the unique corridor element matching route and dir.
func findCorridor(doc *etree.Document, route, dir string) *etree.Element {
	path, err := etree.CompilePath(fmt.Sprintf(
		"//corridor[@route='%s'][@dir='%s']", route, dir))
	if err != nil {
		return nil
	}
	return doc.FindElementPath(path)
}

// CorridorXML returns the corridor subtree for (date, route, dir)
// re-serialized as an XML fragment.
func (s *Store) CorridorXML(date, route, dir string) ([]byte, bool) {
	doc, ok := s.parse(date)
	if !ok {
		return nil, false
	}
	cor := findCorridor(doc, route, dir)
	if cor == nil {
		return nil, false
	}
	out := etree.NewDocument()
	out.AddChild(cor.Copy())
	xml, err := out.WriteToBytes()
	if err != nil || len(xml) == 0 {
		return nil, false
	}
	return xml, true
}

// CorridorJSON projects the corridor subtree for (date, route, dir) to
// JSON with the same schema as the full document.
func (s *Store) CorridorJSON(date, route, dir string) ([]byte, bool) {
	doc, ok := s.parse(date)
	if !ok {
		return nil, false
	}
	el := findCorridor(doc, route, dir)
	if el == nil {
		return nil, false
	}
	cor, err := parseCorridor(el)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("event", "corridor.transform_failed").
			Str("date", date).
			Str("route", route).
			Str("dir", dir).
			Msg("corridor does not match schema")
		return nil, false
	}
	js, err := json.Marshal(cor)
	if err != nil {
		return nil, false
	}
	return js, true
}

// Corridors lists the "<route>_<dir>" pairs present in the snapshot for a
// date, in document order.
func (s *Store) Corridors(date string) []string {
	doc, ok := s.parse(date)
	if !ok {
		return nil
	}
	var list []string
	for _, el := range doc.FindElements("//corridor") {
		route := el.SelectAttrValue("route", "")
		dir := el.SelectAttrValue("dir", "")
		if route != "" && dir != "" {
			list = append(list, route+"_"+dir)
		}
	}
	return list
}
