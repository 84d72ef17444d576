package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestIncUploadCountsByOutcome(t *testing.T) {
	before := testutil.ToFloat64(uploadsTotal.WithLabelValues(OutcomeExtractionFailed))
	IncUpload(OutcomeExtractionFailed)
	IncUpload(OutcomeExtractionFailed)
	after := testutil.ToFloat64(uploadsTotal.WithLabelValues(OutcomeExtractionFailed))
	if after-before != 2 {
		t.Fatalf("expected +2, got %v", after-before)
	}
}

func TestHandlerRendersCollectors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	IncAnalysisFallback()
	ObserveAnalysisDuration(1500 * time.Millisecond)
	ObserveHTTPRequest(http.MethodGet, "/api/health", http.StatusOK)

	r := gin.New()
	r.GET("/metrics", Handler())

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	body := resp.Body.String()
	for _, name := range []string{"resume_analysis_fallback_total", "resume_analysis_duration_seconds_bucket", "http_requests_total"} {
		if !strings.Contains(body, name) {
			t.Fatalf("expected %s in metrics output", name)
		}
	}
}

func TestRegisterDBStatsReplacesPreviousPool(t *testing.T) {
	for i := 0; i < 2; i++ {
		db, _, err := sqlmock.New()
		if err != nil {
			t.Fatalf("sqlmock: %v", err)
		}
		defer db.Close()
		db.SetMaxOpenConns(3 + i)
		RegisterDBStats(db)
	}

	n, err := testutil.GatherAndCount(Registry, "go_sql_max_open_connections")
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected one pool on the registry, got %d", n)
	}
}
