// middleware.go - Request logging, request IDs and Prometheus instrumentation
package api

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/corpfin/dashboard/internal/logging"
	"github.com/corpfin/dashboard/internal/metrics"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// MiddlewareConfig controls SetupMiddleware.
type MiddlewareConfig struct {
	RequestLogging   bool
	EnableCORS       bool
	AllowOrigins     []string
	EnableXSRF       bool
	BodyLimit        string
	ShowErrorDetails bool
	Metrics          *metrics.Metrics
}

// XSRF token transport shared with the dashboard script.
const (
	XSRFHeader = "X-XSRF-Token"
	XSRFCookie = "_xsrf"
)

// SetupMiddleware configures common middleware
func SetupMiddleware(e *echo.Echo, cfg MiddlewareConfig) {
	e.HTTPErrorHandler = ErrorHandler(cfg.ShowErrorDetails)

	e.Use(middleware.RequestID())
	e.Use(requestContext)
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper: func(c echo.Context) bool {
			if !cfg.RequestLogging {
				return true
			}
			return quietPath(c.Request().URL.Path)
		},
		LogMethod:     true,
		LogURI:        true,
		LogStatus:     true,
		LogLatency:    true,
		LogError:      true,
		HandleError:   true,
		LogValuesFunc: logRequest,
	}))
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 1024 * 4,
	}))
	if cfg.Metrics != nil {
		e.Use(Instrument(cfg.Metrics))
	}
	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level: 5,
		Skipper: func(c echo.Context) bool {
			return c.Request().URL.Path == "/metrics"
		},
	}))

	if cfg.BodyLimit != "" {
		e.Use(middleware.BodyLimit(cfg.BodyLimit))
	}

	if cfg.EnableCORS {
		origins := cfg.AllowOrigins
		if len(origins) == 0 {
			origins = []string{"*"}
		}
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: origins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, XSRFHeader},
		}))
	}

	if cfg.EnableXSRF {
		e.Use(middleware.CSRFWithConfig(middleware.CSRFConfig{
			TokenLookup:    "header:" + XSRFHeader,
			CookieName:     XSRFCookie,
			CookiePath:     "/",
			CookieSameSite: http.SameSiteStrictMode,
		}))
	}
}

// quietPath reports paths too frequent to be worth a log line.
func quietPath(path string) bool {
	return path == "/api/health" ||
		path == "/metrics" ||
		strings.HasPrefix(path, "/static/")
}

// requestContext copies the request ID into the request context so slog
// records written by handlers carry it.
func requestContext(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if id := c.Response().Header().Get(echo.HeaderXRequestID); id != "" {
			req := c.Request()
			c.SetRequest(req.WithContext(logging.WithRequestID(req.Context(), id)))
		}
		return next(c)
	}
}

func logRequest(c echo.Context, v middleware.RequestLoggerValues) error {
	attrs := []slog.Attr{
		slog.String("method", v.Method),
		slog.String("uri", v.URI),
		slog.Int("status", v.Status),
		slog.Duration("latency", v.Latency),
	}
	level := slog.LevelInfo
	if v.Error != nil {
		level = slog.LevelWarn
		attrs = append(attrs, slog.String("error", v.Error.Error()))
	}
	slog.LogAttrs(c.Request().Context(), level, "request", attrs...)
	return nil
}

// Instrument records request counts and latency by route pattern.
func Instrument(m *metrics.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				status = statusOf(err)
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			m.ObserveRequest(route, c.Request().Method, status, time.Since(start))
			return err
		}
	}
}
