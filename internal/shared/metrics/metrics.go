package metrics

import (
	"database/sql"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Upload outcomes, one per terminal state of the upload pipeline.
const (
	OutcomeSuccess          = "success"
	OutcomeIntakeFailed     = "intake_failed"
	OutcomeExtractionFailed = "extraction_failed"
	OutcomeAnalysisFailed   = "analysis_failed"
	OutcomePersistFailed    = "persist_failed"
)

// Registry holds every collector exposed on /metrics.
var Registry = prometheus.NewRegistry()

var (
	uploadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resume_uploads_total",
			Help: "Resume uploads by terminal outcome.",
		},
		[]string{"outcome"},
	)
	analysisFallbackTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "resume_analysis_fallback_total",
		Help: "Analyses answered with the canned fallback record.",
	})
	analysisDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "resume_analysis_duration_seconds",
		Help:    "Wall time of the analysis step, retries included.",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
	})
	cleanupFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "resume_file_cleanup_failures_total",
		Help: "Best-effort stored file deletions that failed.",
	})
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests processed.",
		},
		[]string{"method", "path", "status"},
	)
)

func init() {
	Registry.MustRegister(
		uploadsTotal,
		analysisFallbackTotal,
		analysisDuration,
		cleanupFailuresTotal,
		httpRequestsTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// IncUpload counts an upload reaching the given outcome.
func IncUpload(outcome string) {
	uploadsTotal.WithLabelValues(outcome).Inc()
}

// IncAnalysisFallback counts an analysis that degraded to the fallback record.
func IncAnalysisFallback() {
	analysisFallbackTotal.Inc()
}

// ObserveAnalysisDuration records how long the analysis step took.
func ObserveAnalysisDuration(d time.Duration) {
	if d < 0 {
		d = 0
	}
	analysisDuration.Observe(d.Seconds())
}

// IncCleanupFailure counts a stored file that could not be removed.
func IncCleanupFailure() {
	cleanupFailuresTotal.Inc()
}

// ObserveHTTPRequest counts a completed request by route template.
func ObserveHTTPRequest(method, path string, status int) {
	httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
}

var (
	dbStatsMu sync.Mutex
	dbStats   prometheus.Collector
)

// RegisterDBStats exposes the pool statistics of db, replacing any pool registered before it.
func RegisterDBStats(db *sql.DB) {
	dbStatsMu.Lock()
	defer dbStatsMu.Unlock()
	if dbStats != nil {
		Registry.Unregister(dbStats)
	}
	dbStats = collectors.NewDBStatsCollector(db, "resumes")
	Registry.MustRegister(dbStats)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
	return gin.WrapH(h)
}
