package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-batchpay/internal/api/httperrors"
	"github/chapool/go-batchpay/internal/api/middleware"
)

func serve(t *testing.T, key string, header string) (bool, error) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(middleware.HeaderAPIKey, header)
	}
	c := e.NewContext(req, httptest.NewRecorder())

	called := false
	h := middleware.APIKeyWithConfig(middleware.APIKeyConfig{Key: key})(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusNoContent)
	})

	err := h(c)

	return called, err
}

func TestAPIKeyMatches(t *testing.T) {
	called, err := serve(t, "s3cret", "s3cret")
	require.NoError(t, err)
	assert.True(t, called)
}

func TestAPIKeyMismatch(t *testing.T) {
	for _, header := range []string{"", "s3cre", "s3cret ", "S3CRET"} {
		called, err := serve(t, "s3cret", header)
		assert.Equal(t, httperrors.ErrUnauthorizedInvalidAPIKey, err, "header %q", header)
		assert.False(t, called)
	}
}

func TestAPIKeyDisabled(t *testing.T) {
	called, err := serve(t, "", "")
	require.NoError(t, err)
	assert.True(t, called)
}
