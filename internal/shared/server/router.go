package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"interview-backend/internal/account"
	googleauth "interview-backend/internal/auth"
	"interview-backend/internal/documents"
	"interview-backend/internal/interviews"
	"interview-backend/internal/reports"
	"interview-backend/internal/services/health"
	"interview-backend/internal/shared/config"
	"interview-backend/internal/shared/metrics"
	"interview-backend/internal/shared/server/middleware"
	"interview-backend/internal/shared/server/respond"
	"interview-backend/internal/uploads"
	"interview-backend/internal/usage"
	"interview-backend/internal/users"
)

// RouterDeps carries the wired handlers. Nil entries are skipped so
// tests can mount only what they exercise.
type RouterDeps struct {
	Config           config.Config
	Health           *health.Service
	GoogleAuth       *googleauth.GoogleService
	AccountHandler   *account.Handler
	DocumentHandler  *documents.Handler
	InterviewHandler *interviews.Handler
	ReportHandler    *reports.Handler
	UsageHandler     *usage.Handler
	UserHandler      *users.Handler
	UploadsEnabled   bool
}

// NewRouter constructs the Gin engine with middleware and routes
// registered. Health and metrics sit outside the auth group so probes
// need no identity.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	r.GET("/health", healthEndpoint(deps.Health))
	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.Use(
		middleware.RateLimit(rateLimitConfig()),
		middleware.Auth(deps.Config.Env),
	)

	if deps.GoogleAuth != nil {
		deps.GoogleAuth.RegisterRoutes(api)
	}
	if deps.UserHandler != nil {
		deps.UserHandler.RegisterRoutes(api)
	}
	if deps.AccountHandler != nil {
		deps.AccountHandler.RegisterRoutes(api)
	}
	if deps.DocumentHandler != nil {
		deps.DocumentHandler.RegisterRoutes(api)
	}
	if deps.InterviewHandler != nil {
		deps.InterviewHandler.RegisterRoutes(api)
	}
	if deps.ReportHandler != nil {
		deps.ReportHandler.RegisterRoutes(api)
	}
	if deps.UsageHandler != nil {
		deps.UsageHandler.RegisterRoutes(api)
	}
	if deps.UploadsEnabled {
		uploads.RegisterRoutes(api)
	}

	if deps.Config.Env == "dev" {
		dev := api.Group("/dev")
		if deps.UsageHandler != nil {
			deps.UsageHandler.RegisterDevRoutes(dev)
		}
		if deps.InterviewHandler != nil {
			debug := api.Group("/debug")
			deps.InterviewHandler.RegisterDebugRoutes(debug)
		}
	}

	return r
}

func healthEndpoint(svc *health.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := svc.Status(c.Request.Context())
		code := http.StatusOK
		if ok, _ := status["ok"].(bool); !ok {
			code = http.StatusServiceUnavailable
		}
		respond.JSON(c, code, status)
	}
}

// rateLimitConfig throttles per identity. Status polling gets a laxer
// rule than mutating calls.
func rateLimitConfig() middleware.RateLimitConfig {
	return middleware.RateLimitConfig{
		DefaultGroup: "DEFAULT",
		GroupFor: func(c *gin.Context) string {
			if c.Request.Method == http.MethodGet &&
				strings.HasPrefix(c.Request.URL.Path, "/api/v1/interviews/") {
				return "POLLING"
			}
			return "DEFAULT"
		},
		Rules: map[string]middleware.RateLimitRule{
			"DEFAULT": {Rate: 5, Burst: 20},
			"POLLING": {Rate: 20, Burst: 60},
		},
	}
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
