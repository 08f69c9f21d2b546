package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github/chapool/go-batchpay/internal/util"
)

type LoggerConfig struct {
	Skipper middleware.Skipper
	Level   zerolog.Level

	LogRequestHeader bool
	LogRequestQuery  bool
}

var DefaultLoggerConfig = LoggerConfig{
	Skipper: middleware.DefaultSkipper,
	Level:   zerolog.DebugLevel,
}

// LoggerWithConfig attaches a request scoped logger to the request context and logs
// every completed request. Bodies are never logged, they carry signing keys.
func LoggerWithConfig(config LoggerConfig) echo.MiddlewareFunc {
	if config.Skipper == nil {
		config.Skipper = DefaultLoggerConfig.Skipper
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if config.Skipper(c) {
				return next(c)
			}

			req := c.Request()
			res := c.Response()

			id := req.Header.Get(echo.HeaderXRequestID)
			if id == "" {
				id = res.Header().Get(echo.HeaderXRequestID)
			}

			logger := log.With().
				Str("id", id).
				Str("method", req.Method).
				Str("path", c.Path()).
				Logger()

			ctx := logger.WithContext(req.Context())
			ctx = util.WithRequestID(ctx, id)
			c.SetRequest(req.WithContext(ctx))

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			event := logger.WithLevel(config.Level)
			if res.Status >= http.StatusInternalServerError {
				event = logger.Error()
			}

			event = event.
				Int("status", res.Status).
				Str("ip", c.RealIP()).
				Int64("bytes_out", res.Size).
				Dur("duration_ms", time.Since(start))

			if config.LogRequestQuery {
				event = event.Str("query", req.URL.RawQuery)
			}
			if config.LogRequestHeader {
				header := zerolog.Dict()
				for k, v := range req.Header {
					if k == HeaderAPIKey || k == echo.HeaderAuthorization {
						continue
					}
					header.Strs(k, v)
				}
				event = event.Dict("header", header)
			}

			event.Msg("http_request")

			// the error was handled by c.Error above
			return nil
		}
	}
}
