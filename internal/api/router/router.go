package router

import (
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"
	"github/chapool/go-batchpay/internal/api"
	"github/chapool/go-batchpay/internal/api/handlers"
	"github/chapool/go-batchpay/internal/api/middleware"
)

const metricsPath = "/metrics"

func Init(s *api.Server) error {
	s.Echo = echo.New()

	s.Echo.Debug = s.Config.Echo.Debug
	s.Echo.HideBanner = true
	s.Echo.Logger.SetOutput(&echoLogger{level: s.Config.Logger.RequestLevel, log: log.With().Str("component", "echo").Logger()})

	s.Echo.HTTPErrorHandler = HTTPErrorHandlerWithConfig(HTTPErrorHandlerConfig{
		HideInternalServerErrorDetails: s.Config.Echo.HideInternalServerErrorDetails,
	})

	// ---
	// General middleware
	if s.Config.Echo.EnableTrailingSlashMiddleware {
		s.Echo.Pre(echoMiddleware.RemoveTrailingSlash())
	} else {
		log.Warn().Msg("Disabling trailing slash middleware due to environment config")
	}

	if s.Config.Echo.EnableRecoverMiddleware {
		s.Echo.Use(echoMiddleware.Recover())
	} else {
		log.Warn().Msg("Disabling recover middleware due to environment config")
	}

	if s.Config.Echo.EnableRequestIDMiddleware {
		s.Echo.Use(echoMiddleware.RequestIDWithConfig(echoMiddleware.RequestIDConfig{
			Generator: uuid.NewString,
		}))
	} else {
		log.Warn().Msg("Disabling request ID middleware due to environment config")
	}

	if s.Config.Echo.EnableLoggerMiddleware {
		s.Echo.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
			Level:            s.Config.Logger.RequestLevel,
			LogRequestHeader: s.Config.Logger.LogRequestHeader,
			LogRequestQuery:  s.Config.Logger.LogRequestQuery,
			Skipper: func(c echo.Context) bool {
				return c.Path() == metricsPath
			},
		}))
	} else {
		log.Warn().Msg("Disabling logger middleware due to environment config")
	}

	s.Echo.Use(echoMiddleware.BodyLimit(s.Config.Echo.BodyLimit))

	if s.Config.Echo.EnableCORSMiddleware {
		s.Echo.Use(echoMiddleware.CORS())
	} else {
		log.Warn().Msg("Disabling CORS middleware due to environment config")
	}

	s.Echo.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "batchpay",
		Registerer: s.Metrics.Registry,
		Skipper: func(c echo.Context) bool {
			return c.Path() == metricsPath || strings.HasPrefix(c.Path(), "/-/")
		},
	}))

	if s.Config.Auth.APIKey == "" {
		log.Warn().Msg("SERVER_AUTH_API_KEY is empty, the transaction API is not protected")
	}

	s.Router = &api.Router{
		Routes: nil, // will be populated by handlers.AttachAllRoutes(s)

		// Unsecured base group available at /**
		Root: s.Echo.Group(""),

		// Management endpoints, e.g. readiness and liveness probes at /-/**
		Management: s.Echo.Group("/-"),

		// API V1 transaction endpoints guarded by the shared API key at /api/v1/transaction/**
		APIV1Transaction: s.Echo.Group("/api/v1/transaction", middleware.APIKeyWithConfig(middleware.APIKeyConfig{
			Key: s.Config.Auth.APIKey,
		})),
	}

	s.Echo.GET(metricsPath, echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: s.Metrics.Registry,
	}))

	// ---
	// Finally attach our handlers
	handlers.AttachAllRoutes(s)

	return nil
}
