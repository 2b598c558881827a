package api

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/mnit-rtmc/trafdat/internal/config"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

const testConfigDoc = `<?xml version="1.0"?>
<tms_config time_stamp="Mon Jun 15 03:04:05 2020">
<corridor route="35W" dir="NB">
<r_node name="rnd_1" lon="-93.28" lat="44.96">
<detector name="100" lane="1"/>
</r_node>
</corridor>
<corridor route="94" dir="EB">
<r_node name="rnd_2" lon="-93.10" lat="44.95"/>
</corridor>
</tms_config>
`

// newTestServer builds a server over populated scratch roots.
func newTestServer(t *testing.T) *Server {
	t.Helper()
	traffic := t.TempDir()
	configRoot := t.TempDir()

	// Districts: tms and rtest, plus a stray file.
	day := filepath.Join(traffic, "tms", "2020", "20200101")
	require.NoError(t, os.MkdirAll(day, 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(traffic, "rtest"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(traffic, "README"), []byte("x"), 0600))

	// Dates for 2020: two directories and one bundle.
	require.NoError(t, os.MkdirAll(filepath.Join(traffic, "tms", "2020", "20200103"), 0755))
	writeZip(t, filepath.Join(traffic, "tms", "2020", "20200102.traffic"),
		map[string][]byte{"300.s30": make([]byte, 2880)})

	// Loose sample and a bundle-only sample on 20200101.
	require.NoError(t, os.WriteFile(filepath.Join(day, "100.v30"),
		bytes.Repeat([]byte{1}, 2880), 0600))
	writeZip(t, day+".traffic",
		map[string][]byte{"200.v30": bytes.Repeat([]byte{2}, 2880)})

	// Config snapshot.
	writeGzip(t, filepath.Join(configRoot, "metro_config_20200615.xml.gz"),
		[]byte(testConfigDoc))

	cfg := config.AppConfig{
		ListenAddr:      "127.0.0.1:0",
		DefaultDistrict: "tms",
		TrafficRoot:     traffic,
		ConfigRoot:      configRoot,
		LogLevel:        "error",
	}
	return New(cfg)
}

func writeZip(t *testing.T, path string, members map[string][]byte) {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, data := range members {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0600))
}

func writeGzip(t *testing.T, path string, data []byte) {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write(data)
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0600))
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func TestDistricts(t *testing.T) {
	s := newTestServer(t)
	w := get(t, s, "/trafdat/districts")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var got []string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	sort.Strings(got)
	require.Equal(t, []string{"rtest", "tms"}, got)
}

func TestDatesTextDefaultDistrict(t *testing.T) {
	s := newTestServer(t)
	w := get(t, s, "/trafdat/2020")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "text/plain", w.Header().Get("Content-Type"))
	require.Equal(t, "20200101\n20200102\n20200103\n", w.Body.String())
}

func TestDatesJSON(t *testing.T) {
	s := newTestServer(t)
	w := get(t, s, "/trafdat/tms/2020.json")
	require.Equal(t, http.StatusOK, w.Code)
	var got []string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Equal(t, []string{"20200101", "20200102", "20200103"}, got)
}

func TestSampleLoose(t *testing.T) {
	s := newTestServer(t)
	w := get(t, s, "/trafdat/tms/20200101/100.v30")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "application/octet_stream", w.Header().Get("Content-Type"))
	require.Equal(t, bytes.Repeat([]byte{1}, 2880), w.Body.Bytes())
}

func TestSampleBundleFallback(t *testing.T) {
	s := newTestServer(t)
	w := get(t, s, "/trafdat/tms/20200101/200.v30")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, bytes.Repeat([]byte{2}, 2880), w.Body.Bytes())
}

func TestSampleDefaultDistrictWithYear(t *testing.T) {
	s := newTestServer(t)
	w := get(t, s, "/trafdat/2020/20200101/100.v30")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, bytes.Repeat([]byte{1}, 2880), w.Body.Bytes())
}

func TestSampleJSON(t *testing.T) {
	s := newTestServer(t)
	w := get(t, s, "/trafdat/tms/20200101/100.v30.json")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var got []string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 2880)
	require.Equal(t, "1", got[0])
}

func TestExtensionList(t *testing.T) {
	s := newTestServer(t)
	w := get(t, s, "/trafdat/tms/20200101/100.json")
	require.Equal(t, http.StatusOK, w.Code)
	var got []string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Equal(t, []string{"v30"}, got)
}

func TestSensorList(t *testing.T) {
	s := newTestServer(t)
	w := get(t, s, "/trafdat/tms/20200101")
	require.Equal(t, http.StatusOK, w.Code)
	var got []string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	sort.Strings(got)
	require.Equal(t, []string{"100", "200"}, got)
}

func TestSensorListWithYear(t *testing.T) {
	s := newTestServer(t)
	w := get(t, s, "/trafdat/tms/2020/20200101")
	require.Equal(t, http.StatusOK, w.Code)
	var got []string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	sort.Strings(got)
	require.Equal(t, []string{"100", "200"}, got)
}

func TestYearDateMismatch(t *testing.T) {
	s := newTestServer(t)
	for _, path := range []string{
		"/trafdat/tms/2020/20210101.json",
		"/trafdat/2020/20210101/100.v30",
		"/trafdat/tms/2020/20210101",
	} {
		w := get(t, s, path)
		require.Equal(t, http.StatusBadRequest, w.Code, path)
		require.Equal(t, "Bad request", w.Body.String(), path)
	}
}

func TestEmptyListIs404(t *testing.T) {
	s := newTestServer(t)
	// Valid date, but nothing archived: never "[]".
	w := get(t, s, "/trafdat/tms/20200109")
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "Not Found", w.Body.String())
}

func TestNotFoundFallthrough(t *testing.T) {
	s := newTestServer(t)
	for _, path := range []string{
		"/trafdat/nosuchyear",
		"/trafdat/tms/20200101/100.c30",
		"/trafdat/tms/20200101/999.v30",
		"/trafdat/tms/1999",
		"/elsewhere",
		"/trafdat/a/b/c/d",
	} {
		w := get(t, s, path)
		require.Equal(t, http.StatusNotFound, w.Code, path)
		require.Equal(t, "Not Found", w.Body.String(), path)
	}
}

func TestWrongLengthSampleIs404(t *testing.T) {
	s := newTestServer(t)
	day := filepath.Join(s.cfg.TrafficRoot, "tms", "2020", "20200103")
	require.NoError(t, os.WriteFile(filepath.Join(day, "500.v30"),
		make([]byte, 100), 0600))
	w := get(t, s, "/trafdat/tms/20200103/500.v30")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestMetroConfigJSON(t *testing.T) {
	s := newTestServer(t)
	w := get(t, s, "/trafdat/metro_config/20200615.json")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	require.Equal(t, "Mon Jun 15 03:04:05 2020", doc["time_stamp"])
}

func TestMetroConfigXML(t *testing.T) {
	s := newTestServer(t)
	w := get(t, s, "/trafdat/metro_config/20200615.xml")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "application/xml", w.Header().Get("Content-Type"))
	require.Equal(t, testConfigDoc, w.Body.String())
}

func TestMetroCorridorJSON(t *testing.T) {
	s := newTestServer(t)
	w := get(t, s, "/trafdat/metro_config/20200615/35W_NB.json")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var cor map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cor))
	require.Equal(t, "35W", cor["route"])
	require.Equal(t, "NB", cor["dir"])
	rnodes, ok := cor["r_node"].([]any)
	require.True(t, ok)
	require.Len(t, rnodes, 1)
	rn := rnodes[0].(map[string]any)
	// DTD defaults filled in, implied-absent attributes omitted.
	require.Equal(t, "Station", rn["n_type"])
	require.Equal(t, "55", rn["s_limit"])
	_, present := rn["station_id"]
	require.False(t, present)
}

func TestMetroCorridorXML(t *testing.T) {
	s := newTestServer(t)
	w := get(t, s, "/trafdat/metro_config/20200615/94_EB.xml")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `route="94"`)
	require.NotContains(t, w.Body.String(), `route="35W"`)
}

func TestMetroCorridors(t *testing.T) {
	s := newTestServer(t)
	w := get(t, s, "/trafdat/metro_config/20200615/corridors")
	require.Equal(t, http.StatusOK, w.Code)
	var got []string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Equal(t, []string{"35W_NB", "94_EB"}, got)
}

func TestMetroNotFound(t *testing.T) {
	s := newTestServer(t)
	for _, path := range []string{
		"/trafdat/metro_config/20200616.json",
		"/trafdat/metro_config/20200615/66_NB.json",
		"/trafdat/metro_config/notadate.json",
		"/trafdat/metro_config/20200615/corridor",
	} {
		w := get(t, s, path)
		require.Equal(t, http.StatusNotFound, w.Code, path)
	}
}

func TestStaticAssets(t *testing.T) {
	s := newTestServer(t)
	w := get(t, s, "/trafdat/index.html")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "text/html", w.Header().Get("Content-Type"))
	require.Contains(t, w.Body.String(), "trafdat")

	w = get(t, s, "/trafdat/trafdat.css")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "text/css", w.Header().Get("Content-Type"))
}

// The fallback order of the overloaded URL shapes is part of the contract;
// enumerate the attempted interpretations.
func TestDispatchOrdering(t *testing.T) {
	s := newTestServer(t)

	names := func(attempts []attempt) []string {
		out := make([]string, len(attempts))
		for i, a := range attempts {
			out[i] = a.name
		}
		return out
	}
	kinds := func(attempts []attempt) []string {
		out := make([]string, len(attempts))
		for i, a := range attempts {
			out[i] = a.kind
		}
		return out
	}

	two := s.twoSegmentAttempts("p1", "p2")
	require.Equal(t, []string{
		"sensors-district-date",
		"sensors-default-year-date",
		"dates-district-year",
	}, names(two))
	require.Equal(t, []string{"sensors", "sensors", "dates"}, kinds(two))

	threeJSON := s.threeSegmentJSONAttempts("p1", "p2", "p3")
	require.Equal(t, []string{
		"sample-district-date",
		"extensions-district-date-sid",
		"sample-default-year-date",
		"sensors-district-year-date",
	}, names(threeJSON))
	require.Equal(t, []string{"sample", "extensions", "sample", "sensors"},
		kinds(threeJSON))

	three := s.threeSegmentAttempts("p1", "p2", "p3")
	require.Equal(t, []string{
		"sample-district-date",
		"sample-default-year-date",
		"sensors-district-year-date",
	}, names(three))
	require.Equal(t, []string{"sample", "sample", "sensors"}, kinds(three))
}

// The metrics kind label follows the winning interpretation, not the URL
// shape: /{district}/{year} resolves through the sensor attempts to a date
// list and must be counted as "dates".
func TestMetricsKindFollowsResolution(t *testing.T) {
	s := newTestServer(t)
	before := testutil.ToFloat64(requestsTotal.WithLabelValues("dates", "200"))
	w := get(t, s, "/trafdat/tms/2020")
	require.Equal(t, http.StatusOK, w.Code)
	after := testutil.ToFloat64(requestsTotal.WithLabelValues("dates", "200"))
	require.Equal(t, before+1, after)
}
