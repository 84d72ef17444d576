package bootstrap_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"resume-analyzer/internal/bootstrap"
	"resume-analyzer/internal/extract/extracttest"
	"resume-analyzer/internal/shared/config"
	"resume-analyzer/internal/shared/telemetry"
)

func buildApp(t *testing.T, burst int) *bootstrap.App {
	t.Helper()
	gin.SetMode(gin.TestMode)
	restore := telemetry.SetOutput(&bytes.Buffer{})
	t.Cleanup(restore)

	cfg := config.Config{
		Port:             "0",
		Env:              "dev",
		CORSAllowOrigin:  []string{"http://localhost:4200"},
		ObjectStoreType:  "local",
		UploadDir:        t.TempDir(),
		LLMProvider:      "none",
		UploadRatePerSec: 0.001,
		UploadRateBurst:  burst,
	}
	app, err := bootstrap.Build(context.Background(), cfg)
	if err != nil {
		t.Fatalf("bootstrap build: %v", err)
	}
	t.Cleanup(func() { _ = app.Close() })
	return app
}

func uploadRequest(t *testing.T, name string, content []byte) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	fw, err := writer.CreateFormFile("resume", name)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write(content); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := writer.WriteField("userId", "user-1"); err != nil {
		t.Fatalf("write field: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/resumes/upload", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestBuildWithoutDatabaseServesPipeline(t *testing.T) {
	app := buildApp(t, 5)

	resp := httptest.NewRecorder()
	app.Router.ServeHTTP(resp, uploadRequest(t, "cv.pdf", extracttest.PDF("Jane Doe", "Go engineer")))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var up struct {
		ResumeID string `json:"resumeId"`
		Analysis struct {
			Degraded bool   `json:"degraded"`
			Source   string `json:"source"`
		} `json:"analysis"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &up); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if up.ResumeID == "" || !up.Analysis.Degraded || up.Analysis.Source != "fallback" {
		t.Fatalf("unexpected upload response: %s", resp.Body.String())
	}

	list := httptest.NewRecorder()
	app.Router.ServeHTTP(list, httptest.NewRequest(http.MethodGet, "/api/resumes/user/user-1", nil))
	if !strings.Contains(list.Body.String(), up.ResumeID) {
		t.Fatalf("expected uploaded resume in list: %s", list.Body.String())
	}
}

func TestHealthAndDiscoveryRoutes(t *testing.T) {
	app := buildApp(t, 5)

	health := httptest.NewRecorder()
	app.Router.ServeHTTP(health, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if health.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", health.Code)
	}
	var status struct {
		Status         string `json:"status"`
		StoreConnected bool   `json:"storeConnected"`
	}
	if err := json.Unmarshal(health.Body.Bytes(), &status); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if status.Status != "ok" || !status.StoreConnected {
		t.Fatalf("unexpected health: %s", health.Body.String())
	}

	test := httptest.NewRecorder()
	app.Router.ServeHTTP(test, httptest.NewRequest(http.MethodGet, "/api/test", nil))
	if !strings.Contains(test.Body.String(), "POST /api/resumes/upload") {
		t.Fatalf("unexpected /api/test body: %s", test.Body.String())
	}

	metrics := httptest.NewRecorder()
	app.Router.ServeHTTP(metrics, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if metrics.Code != http.StatusOK || !strings.Contains(metrics.Body.String(), "http_requests_total") {
		t.Fatalf("expected prometheus exposition, got %d", metrics.Code)
	}

	missing := httptest.NewRecorder()
	app.Router.ServeHTTP(missing, httptest.NewRequest(http.MethodGet, "/api/nope", nil))
	if missing.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", missing.Code)
	}
}

func TestUploadRouteIsRateLimited(t *testing.T) {
	app := buildApp(t, 1)

	first := httptest.NewRecorder()
	app.Router.ServeHTTP(first, uploadRequest(t, "cv.pdf", extracttest.PDF("Jane Doe")))
	if first.Code != http.StatusOK {
		t.Fatalf("expected first upload 200, got %d", first.Code)
	}

	second := httptest.NewRecorder()
	app.Router.ServeHTTP(second, uploadRequest(t, "cv.pdf", extracttest.PDF("Jane Doe")))
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", second.Code)
	}

	read := httptest.NewRecorder()
	app.Router.ServeHTTP(read, httptest.NewRequest(http.MethodGet, "/api/resumes/user/user-1", nil))
	if read.Code != http.StatusOK {
		t.Fatalf("reads must not be limited, got %d", read.Code)
	}
}

func TestBuildRequiresDatabaseInProduction(t *testing.T) {
	restore := telemetry.SetOutput(&bytes.Buffer{})
	defer restore()

	_, err := bootstrap.Build(context.Background(), config.Config{Env: "production", LLMProvider: "none"})
	if err == nil || !strings.Contains(err.Error(), "DATABASE_URL") {
		t.Fatalf("expected DATABASE_URL error, got %v", err)
	}
}
