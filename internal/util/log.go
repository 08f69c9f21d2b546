package util

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type contextKey string

const (
	CTXKeyRequestID contextKey = "request_id"
	CTXKeyLogger    contextKey = "logger"
)

// LogFromContext returns the request-scoped logger, or the global one outside of a request.
func LogFromContext(ctx context.Context) *zerolog.Logger {
	l := log.Ctx(ctx)
	if l.GetLevel() == zerolog.Disabled {
		if ShouldDisableLogger(ctx) {
			return l
		}
		l = &log.Logger
	}

	return l
}

func LogFromEchoContext(c echo.Context) *zerolog.Logger {
	return LogFromContext(c.Request().Context())
}

// ShouldDisableLogger is set by the request logger for explicitly silenced routes.
func ShouldDisableLogger(ctx context.Context) bool {
	disable, ok := ctx.Value(CTXKeyLogger).(bool)
	return ok && disable
}

func DisableLogger(ctx context.Context, disable bool) context.Context {
	return context.WithValue(ctx, CTXKeyLogger, disable)
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, CTXKeyRequestID, id)
}

func RequestIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(CTXKeyRequestID).(string)
	return id, ok
}

func LogLevelFromString(s string) zerolog.Level {
	level, err := zerolog.ParseLevel(strings.ToLower(s))
	if err != nil {
		log.Error().Err(err).Str("level", s).Msg("Failed to parse log level, defaulting to debug")
		return zerolog.DebugLevel
	}

	return level
}
