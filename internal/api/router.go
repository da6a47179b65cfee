package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/campusportal/student-records/internal/api/handler"
	"github.com/campusportal/student-records/internal/api/middleware"
	"github.com/campusportal/student-records/internal/core/domain"
	"github.com/campusportal/student-records/internal/core/ports"

	_ "github.com/campusportal/student-records/docs"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Auth     ports.AuthService
	Students ports.StudentService
	Tokens   middleware.TokenValidator
	Health   map[string]handler.Pinger
	Log      zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	e.Use(echoprometheus.NewMiddleware("student_portal"))

	authHandler := handler.NewAuthHandler(d.Auth)
	studentHandler := handler.NewStudentHandler(d.Students)
	healthHandler := handler.NewHealthHandler(d.Health)
	requireAuth := middleware.Auth(d.Tokens)
	adminOnly := middleware.RBAC(domain.RoleAdmin)

	// --- Auth routes ---
	auth := e.Group("/api/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/signin", authHandler.Login)
	auth.POST("/register", authHandler.Register)
	auth.POST("/signup", authHandler.Register)
	auth.POST("/change-password", authHandler.ChangePassword)
	auth.POST("/logout", authHandler.Logout, requireAuth)

	// --- Student records (admin) ---
	v1 := e.Group("/v1", requireAuth, adminOnly)
	v1.GET("/students", studentHandler.List)
	v1.POST("/students", studentHandler.Create)
	v1.POST("/students/batch", studentHandler.CreateBatch)
	v1.GET("/students/:id", studentHandler.Get)
	v1.PUT("/students/:id", studentHandler.Update)
	v1.DELETE("/students/:id", studentHandler.Delete)
	v1.POST("/admin/accounts/reconcile", studentHandler.ReconcileAccounts)

	// --- Operational endpoints (no auth required) ---
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

// requestLogger emits one zerolog event per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Status >= http.StatusInternalServerError {
				evt = log.Error().Err(v.Error)
			}
			evt.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
