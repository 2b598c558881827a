package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trafdat_requests_total",
		Help: "Requests served, by resource kind and status code",
	}, []string{"kind", "status"})

	requestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "trafdat_request_duration_seconds",
		Help:    "Request handling duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.001, 2.0, 12), // 1ms .. ~4s
	})

	sampleBytesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "trafdat_sample_bytes_total",
		Help: "Sample payload bytes served from loose files and bundles",
	})
)

func recordRequest(kind string, status int) {
	requestsTotal.WithLabelValues(kind, strconv.Itoa(status)).Inc()
}

func recordSampleBytes(n int) {
	sampleBytesTotal.Add(float64(n))
}

// timed is a chi middleware observing request duration.
func timed(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		requestDuration.Observe(time.Since(start).Seconds())
	})
}
