package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/mnit-rtmc/trafdat/internal/dates"
	"github.com/mnit-rtmc/trafdat/internal/sample"
)

// outputMode selects how sample bytes are shaped at the output stage.
type outputMode int

const (
	modeBinary outputMode = iota
	modeJSON
)

// handleDistricts serves the district directory list.
func (s *Server) handleDistricts(w http.ResponseWriter, r *http.Request) {
	s.serve(w, r, "districts", listJSON(s.traffic.Districts()))
}

// handleOne serves /{p1}: the date list for a year in the default district.
func (s *Server) handleOne(w http.ResponseWriter, r *http.Request) {
	p1 := chi.URLParam(r, "p1")
	s.serve(w, r, "dates", s.datesForYear(s.cfg.DefaultDistrict, p1))
}

// handleTwo serves /{p1}/{p2} and /{p1}/{p2}.json.
func (s *Server) handleTwo(w http.ResponseWriter, r *http.Request) {
	p1 := chi.URLParam(r, "p1")
	p2 := chi.URLParam(r, "p2")
	if year, ok := strings.CutSuffix(p2, ".json"); ok {
		s.serve(w, r, "dates", s.datesJSONForYear(p1, year))
		return
	}
	kind, res := resolve("sensors", s.twoSegmentAttempts(p1, p2))
	s.serve(w, r, kind, res)
}

// twoSegmentAttempts lists the interpretations of /{p1}/{p2} in fallback
// order: sensor list for a district and date, sensor list for the default
// district with an explicit year, then date list for a district and year.
func (s *Server) twoSegmentAttempts(p1, p2 string) []attempt {
	return []attempt{
		{"sensors-district-date", "sensors", func() *response {
			return s.sensorsForDate(p1, p2)
		}},
		{"sensors-default-year-date", "sensors", func() *response {
			return s.sensorsForYearDate(s.cfg.DefaultDistrict, p1, p2)
		}},
		{"dates-district-year", "dates", func() *response {
			return s.datesForYear(p1, p2)
		}},
	}
}

// handleThree serves /{p1}/{p2}/{p3} and /{p1}/{p2}/{p3}.json.
func (s *Server) handleThree(w http.ResponseWriter, r *http.Request) {
	p1 := chi.URLParam(r, "p1")
	p2 := chi.URLParam(r, "p2")
	p3 := chi.URLParam(r, "p3")
	if stem, ok := strings.CutSuffix(p3, ".json"); ok {
		kind, res := resolve("sample", s.threeSegmentJSONAttempts(p1, p2, stem))
		s.serve(w, r, kind, res)
		return
	}
	kind, res := resolve("sample", s.threeSegmentAttempts(p1, p2, p3))
	s.serve(w, r, kind, res)
}

// threeSegmentJSONAttempts lists the interpretations of
// /{p1}/{p2}/{p3}.json: sample data for a district, the extension list
// for a sensor, sample data for the default district with an explicit
// year, then the sensor list for a district, year and date. The last
// interpretation is what raises a 400 when the date falls outside the
// year.
func (s *Server) threeSegmentJSONAttempts(p1, p2, p3 string) []attempt {
	return []attempt{
		{"sample-district-date", "sample", func() *response {
			return s.sampleForDate(p1, p2, p3, modeJSON)
		}},
		{"extensions-district-date-sid", "extensions", func() *response {
			return s.extensionsForSid(p1, p2, p3)
		}},
		{"sample-default-year-date", "sample", func() *response {
			return s.sampleForYearDate(s.cfg.DefaultDistrict, p1, p2, p3, modeJSON)
		}},
		{"sensors-district-year-date", "sensors", func() *response {
			return s.sensorsForYearDate(p1, p2, p3)
		}},
	}
}

// threeSegmentAttempts lists the interpretations of /{p1}/{p2}/{p3}:
// sample data for a district, sample data for the default district with an
// explicit year, then the sensor list for a district, year and date.
func (s *Server) threeSegmentAttempts(p1, p2, p3 string) []attempt {
	return []attempt{
		{"sample-district-date", "sample", func() *response {
			return s.sampleForDate(p1, p2, p3, modeBinary)
		}},
		{"sample-default-year-date", "sample", func() *response {
			return s.sampleForYearDate(s.cfg.DefaultDistrict, p1, p2, p3, modeBinary)
		}},
		{"sensors-district-year-date", "sensors", func() *response {
			return s.sensorsForYearDate(p1, p2, p3)
		}},
	}
}

// datesForYear shapes the plain-text date list for a district and year.
func (s *Server) datesForYear(district, year string) *response {
	if _, ok := dates.ParseYear(year); !ok {
		return nil
	}
	return datesText(s.traffic.Dates(district, year))
}

// datesJSONForYear shapes the JSON date list for a district and year.
func (s *Server) datesJSONForYear(district, year string) *response {
	if _, ok := dates.ParseYear(year); !ok {
		return nil
	}
	return listJSON(s.traffic.Dates(district, year))
}

// sensorsForDate shapes the sensor id list for a district and date.
func (s *Server) sensorsForDate(district, date string) *response {
	if !dates.IsValidDate(date) {
		return nil
	}
	return listJSON(s.traffic.Sensors(district, date))
}

// sensorsForYearDate is sensorsForDate with an explicit year segment. A
// date outside the year is a client error, not a miss.
func (s *Server) sensorsForYearDate(district, year, date string) *response {
	if !dates.IsValidYearDate(year, date) {
		return nil
	}
	if date[:4] != year {
		return badRequest()
	}
	return s.sensorsForDate(district, date)
}

// extensionsForSid shapes the extension list for one sensor on a date.
func (s *Server) extensionsForSid(district, date, sid string) *response {
	if !dates.IsValidDate(date) {
		return nil
	}
	return listJSON(s.traffic.Extensions(district, date, sid))
}

// sampleForDate reads one sample file and shapes it for the output mode.
// The third segment must carry both a sensor id and an extension.
func (s *Server) sampleForDate(district, date, sidExt string, mode outputMode) *response {
	sid, ext, ok := sample.SplitSidExt(sidExt)
	if !ok {
		return nil
	}
	data, ok := s.traffic.ReadSample(district, date, sid, ext)
	if !ok {
		return nil
	}
	recordSampleBytes(len(data))
	switch mode {
	case modeJSON:
		vals := make([]string, len(data))
		for i, b := range data {
			vals[i] = strconv.Itoa(int(b))
		}
		return listJSON(vals)
	default:
		return okResponse(ctBinary, data)
	}
}

// sampleForYearDate is sampleForDate with an explicit year segment.
func (s *Server) sampleForYearDate(district, year, date, sidExt string, mode outputMode) *response {
	if !dates.IsValidYearDate(year, date) {
		return nil
	}
	if date[:4] != year {
		return badRequest()
	}
	return s.sampleForDate(district, date, sidExt, mode)
}
