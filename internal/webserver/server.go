package webserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/talkincode/prodcatalog/config"
)

// multipart framing allowance on top of the configured upload size
const bodyLimitSlack = 1 << 20

type route struct {
	method  string
	path    string
	handler echo.HandlerFunc
	mws     []echo.MiddlewareFunc
}

var (
	routesMu  sync.Mutex
	apiRoutes []route
)

func addRoute(method, path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	routesMu.Lock()
	defer routesMu.Unlock()
	apiRoutes = append(apiRoutes, route{method: method, path: path, handler: h, mws: m})
}

// ApiGET registers a GET route under the API prefix of every server built
// afterwards.
func ApiGET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	addRoute(http.MethodGet, path, h, m...)
}

func ApiPOST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	addRoute(http.MethodPost, path, h, m...)
}

// AdminServer is the HTTP front of the catalog service.
type AdminServer struct {
	root   *echo.Echo
	api    *echo.Group
	config *config.AppConfig
}

// NewAdminServer builds the echo instance, its middleware chain, and mounts
// every registered API route under cfg.Web.ApiPrefix. The extra middleware
// runs on API routes only, after the common chain.
func NewAdminServer(cfg *config.AppConfig, m ...echo.MiddlewareFunc) *AdminServer {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewValidator()
	e.JSONSerializer = JSONSerializer{}
	e.HTTPErrorHandler = errorHandler

	e.Use(middleware.Recover())
	e.Use(requestLogger())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.Web.AllowOrigins,
		AllowCredentials: true,
		AllowMethods: []string{
			http.MethodGet, http.MethodHead, http.MethodPut, http.MethodPatch,
			http.MethodPost, http.MethodDelete, http.MethodOptions,
		},
		AllowHeaders: []string{"*"},
	}))
	if cfg.Web.MaxUploadBytes > 0 {
		e.Use(middleware.BodyLimit(fmt.Sprintf("%dB", cfg.Web.MaxUploadBytes+bodyLimitSlack)))
	}

	if cfg.Web.Metrics {
		reg := prometheus.NewRegistry()
		e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
			Subsystem:  "prodcatalog",
			Registerer: reg,
			Skipper: func(c echo.Context) bool {
				return c.Path() == "/metrics"
			},
		}))
		e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: reg}))
	}

	prefix := "/" + strings.Trim(cfg.Web.ApiPrefix, "/")
	if prefix == "/" {
		prefix = ""
	}
	s := &AdminServer{root: e, api: e.Group(prefix, m...), config: cfg}

	routesMu.Lock()
	defer routesMu.Unlock()
	for _, r := range apiRoutes {
		s.api.Add(r.method, r.path, r.handler, r.mws...)
	}
	return s
}

func (s *AdminServer) Echo() *echo.Echo {
	return s.root
}

// Start blocks serving until Shutdown is called.
func (s *AdminServer) Start() error {
	addr := s.config.ListenAddr()
	zap.S().Infof("catalog api listening on %s%s", addr, s.config.Web.ApiPrefix)
	err := s.root.Start(addr)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *AdminServer) Shutdown(ctx context.Context) error {
	return s.root.Shutdown(ctx)
}

func requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogMethod:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("remote_ip", v.RemoteIP),
			}
			if v.Error != nil {
				zap.L().Warn("request failed", append(fields, zap.Error(v.Error))...)
				return nil
			}
			zap.L().Info("request", fields...)
			return nil
		},
	})
}

// errorHandler renders framework errors (unknown route, body too large,
// recovered panics) in the same {"detail": ...} shape the handlers use.
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	status := http.StatusInternalServerError
	detail := http.StatusText(status)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		detail = fmt.Sprint(he.Message)
	}
	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, map[string]string{"detail": detail})
	}
	if err != nil {
		zap.L().Error("writing error response", zap.Error(err))
	}
}
