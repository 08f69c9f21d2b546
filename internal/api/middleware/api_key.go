package middleware

import (
	"crypto/subtle"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github/chapool/go-batchpay/internal/api/httperrors"
)

// HeaderAPIKey carries the shared secret guarding the transaction API.
const HeaderAPIKey = "X-Api-Key"

type APIKeyConfig struct {
	Skipper middleware.Skipper
	Key     string
}

// APIKeyWithConfig rejects requests whose X-Api-Key header does not match the configured key.
// An empty key disables the check.
func APIKeyWithConfig(config APIKeyConfig) echo.MiddlewareFunc {
	if config.Skipper == nil {
		config.Skipper = middleware.DefaultSkipper
	}

	expected := []byte(config.Key)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if len(expected) == 0 || config.Skipper(c) {
				return next(c)
			}

			provided := []byte(c.Request().Header.Get(HeaderAPIKey))
			if subtle.ConstantTimeCompare(provided, expected) != 1 {
				return httperrors.ErrUnauthorizedInvalidAPIKey
			}

			return next(c)
		}
	}
}
