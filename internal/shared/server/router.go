package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"resumeflow/internal/services/health"
	"resumeflow/internal/shared/auth"
	"resumeflow/internal/shared/config"
	"resumeflow/internal/shared/metrics"
	"resumeflow/internal/shared/server/middleware"
	"resumeflow/internal/shared/server/respond"
)

const (
	apiPrefix   = "/api/v1"
	WebhookPath = apiPrefix + "/payments/webhook"
	aiPrefix    = apiPrefix + "/ai/"
)

// Registrar is implemented by every feature handler.
type Registrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// RouterDeps carries what NewRouter needs from the composition root.
type RouterDeps struct {
	Config   config.Config
	Verifier auth.Verifier
	Handlers []Registrar
	Health   *health.Service
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	limiter := middleware.NewRateLimiter(map[string]middleware.Rule{
		"ai": middleware.PerMinute(deps.Config.AIRatePerMinute, deps.Config.AIRateBurst),
	}, nil)
	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Auth(deps.Verifier, apiPrefix+"/health", apiPrefix+"/metrics", WebhookPath),
		middleware.RateLimit(limiter, aiScope),
	)
	r.NoRoute(func(c *gin.Context) {
		respond.Error(c, http.StatusNotFound, "not_found", "route not found", nil)
	})

	api := r.Group(apiPrefix)
	healthSvc := deps.Health
	if healthSvc == nil {
		healthSvc = health.NewService()
	}
	api.GET("/health", func(c *gin.Context) {
		report := healthSvc.Status(c.Request.Context())
		status := http.StatusOK
		if !report.OK {
			status = http.StatusServiceUnavailable
		}
		respond.JSON(c, status, report)
	})
	api.GET("/metrics", gin.WrapH(metrics.Handler()))
	api.GET("/me", me)
	for _, h := range deps.Handlers {
		if h != nil {
			h.RegisterRoutes(api)
		}
	}

	return r
}

func aiScope(c *gin.Context) string {
	if strings.HasPrefix(c.Request.URL.Path, aiPrefix) {
		return "ai"
	}
	return ""
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
