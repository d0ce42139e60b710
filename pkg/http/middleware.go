package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/negroni"

	log "github.com/sirupsen/logrus"
)

var (
	requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "todoapi_http_requests_total",
		Help: "Number of HTTP requests by method and status code",
	}, []string{"method", "code"})

	requestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "todoapi_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})
)

func init() {
	prometheus.MustRegister(requestsTotal, requestDuration)
}

func status(rw http.ResponseWriter) int {
	if nrw, ok := rw.(negroni.ResponseWriter); ok && nrw.Status() != 0 {
		return nrw.Status()
	}
	return http.StatusOK
}

func metricsMiddleware(rw http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
	start := time.Now()
	next(rw, r)

	requestDuration.WithLabelValues(r.Method).Observe(time.Since(start).Seconds())
	requestsTotal.WithLabelValues(r.Method, strconv.Itoa(status(rw))).Inc()
}

func loggingMiddleware(rw http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
	start := time.Now()
	path := r.URL.Path
	next(rw, r)

	log.WithFields(log.Fields{
		"method":   r.Method,
		"path":     path,
		"status":   status(rw),
		"duration": time.Since(start),
		"remote":   r.RemoteAddr,
	}).Debug("http: request served")
}
