package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"resume-analyzer/internal/health"
	"resume-analyzer/internal/resumes"
	"resume-analyzer/internal/shared/config"
	"resume-analyzer/internal/shared/metrics"
	"resume-analyzer/internal/shared/server/middleware"
	"resume-analyzer/internal/shared/server/respond"
)

// ServiceName names the service in traces.
const ServiceName = "resume-analyzer"

const uploadRateGroup = "UPLOAD"

// RouterDeps carries the handlers the router mounts.
type RouterDeps struct {
	Config        config.Config
	ResumeHandler *resumes.Handler
	HealthHandler *health.Handler
	// UploadLimiter is shared across routers in tests; nil builds a fresh one.
	UploadLimiter *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		otelgin.Middleware(ServiceName, otelgin.WithGinFilter(func(c *gin.Context) bool {
			return c.Request.URL.Path != "/metrics"
		})),
		middleware.Logging(),
		middleware.Metrics(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api")
	if deps.HealthHandler != nil {
		deps.HealthHandler.RegisterRoutes(api)
	}
	api.GET("/test", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{
			"message": "API is working",
			"endpoints": gin.H{
				"upload":         "POST /api/resumes/upload",
				"getUserResumes": "GET /api/resumes/user/:userId",
				"getResume":      "GET /api/resumes/:resumeId",
				"deleteResume":   "DELETE /api/resumes/:resumeId",
				"health":         "GET /api/health",
			},
		})
	})

	if deps.ResumeHandler != nil {
		limiter := deps.UploadLimiter
		if limiter == nil {
			limiter = middleware.NewRateLimiter(nil)
		}
		uploadLimit := middleware.RateLimit(middleware.RateLimitConfig{
			DefaultGroup: uploadRateGroup,
			Limiter:      limiter,
			Rules: map[string]middleware.RateLimitRule{
				uploadRateGroup: {
					Rate:  deps.Config.UploadRatePerSec,
					Burst: deps.Config.UploadRateBurst,
				},
			},
		})
		deps.ResumeHandler.RegisterRoutes(api.Group("/resumes"), uploadLimit)
	}

	r.NoRoute(func(c *gin.Context) {
		respond.Error(c, http.StatusNotFound, "not_found", "Route not found", nil)
	})

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
