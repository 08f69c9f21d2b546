package test

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-openapi/runtime"
	"github.com/go-openapi/strfmt"
	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-batchpay/internal/api"
	"github/chapool/go-batchpay/internal/api/httperrors"
	"github/chapool/go-batchpay/internal/api/middleware"
)

type GenericPayload map[string]any

func (g GenericPayload) Reader(t *testing.T) *bytes.Reader {
	t.Helper()

	b, err := json.Marshal(g)
	if err != nil {
		t.Fatalf("failed to serialize payload: %v", err)
	}

	return bytes.NewReader(b)
}

// PerformRequestWithParams runs a request against the server's echo instance without a network round trip.
func PerformRequestWithParams(t *testing.T, s *api.Server, method string, path string, body GenericPayload, headers http.Header, queryParams map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	if body == nil {
		return PerformRequestWithRawBody(t, s, method, path, nil, headers, queryParams)
	}

	return PerformRequestWithRawBody(t, s, method, path, body.Reader(t), headers, queryParams)
}

func PerformRequestWithRawBody(t *testing.T, s *api.Server, method string, path string, body io.Reader, headers http.Header, queryParams map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, body)

	for k, v := range headers {
		req.Header[k] = v
	}
	if body != nil && len(req.Header.Get(echo.HeaderContentType)) == 0 {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}

	if queryParams != nil {
		q := req.URL.Query()
		for k, v := range queryParams {
			q.Add(k, v)
		}

		req.URL.RawQuery = q.Encode()
	}

	res := httptest.NewRecorder()

	s.Echo.ServeHTTP(res, req)

	return res
}

func PerformRequest(t *testing.T, s *api.Server, method string, path string, body GenericPayload, headers http.Header) *httptest.ResponseRecorder {
	t.Helper()

	return PerformRequestWithParams(t, s, method, path, body, headers, nil)
}

// HeadersWithAPIKey returns headers carrying the test server's API key.
func HeadersWithAPIKey() http.Header {
	return http.Header{
		http.CanonicalHeaderKey(middleware.HeaderAPIKey): []string{TestAPIKey},
	}
}

func ParseResponseBody(t *testing.T, res *httptest.ResponseRecorder, v any) {
	t.Helper()

	if err := json.NewDecoder(res.Result().Body).Decode(v); err != nil {
		t.Fatalf("Failed to parse response body: %v", err)
	}
}

func ParseResponseAndValidate(t *testing.T, res *httptest.ResponseRecorder, v runtime.Validatable) {
	t.Helper()

	ParseResponseBody(t, res, v)

	if err := v.Validate(strfmt.Default); err != nil {
		t.Fatalf("Failed to validate response: %v", err)
	}
}

// RequireHTTPError checks status code, error type and title of an HTTPError response.
func RequireHTTPError(t *testing.T, res *httptest.ResponseRecorder, httpErr *httperrors.HTTPError) httperrors.HTTPError {
	t.Helper()

	var response httperrors.HTTPError
	ParseResponseBody(t, res, &response)

	require.Equal(t, int(*httpErr.Code), res.Result().StatusCode)
	require.NotNil(t, response.Code)
	assert.Equal(t, *httpErr.Code, *response.Code)
	require.NotNil(t, response.Type)
	assert.Equal(t, *httpErr.Type, *response.Type)
	require.NotNil(t, response.Title)
	assert.Equal(t, *httpErr.Title, *response.Title)

	return response
}

// RequireHTTPValidationError asserts a 400 validation error mentioning every key.
func RequireHTTPValidationError(t *testing.T, res *httptest.ResponseRecorder, keys ...string) httperrors.HTTPValidationError {
	t.Helper()

	var response httperrors.HTTPValidationError
	ParseResponseBody(t, res, &response)

	require.Equal(t, http.StatusBadRequest, res.Result().StatusCode)

	var got []string
	for _, ve := range response.ValidationErrors {
		if ve.Key != nil {
			got = append(got, *ve.Key)
		}
	}

	for _, key := range keys {
		found := false
		for _, g := range got {
			if g == key || strings.HasPrefix(g, key+".") {
				found = true
				break
			}
		}
		assert.Truef(t, found, "expected validation error for %q, got %v", key, got)
	}

	return response
}
