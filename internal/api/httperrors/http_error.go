package httperrors

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-openapi/swag"
	"github.com/labstack/echo/v4"
	"github/chapool/go-batchpay/internal/types"
)

type HTTPError struct {
	types.PublicHTTPError
	Internal       error          `json:"-"`
	AdditionalData map[string]any `json:"-"`
}

type HTTPValidationError struct {
	types.PublicHTTPValidationError
	Internal       error          `json:"-"`
	AdditionalData map[string]any `json:"-"`
}

// HTTPTransferError reports a transfer that failed after reaching the network.
type HTTPTransferError struct {
	types.PublicHTTPTransferError
	Internal error `json:"-"`
}

func NewHTTPError(code int, errorType types.PublicHTTPErrorType, title string) *HTTPError {
	return &HTTPError{
		PublicHTTPError: types.PublicHTTPError{
			Code:  swag.Int64(int64(code)),
			Type:  errorType.Pointer(),
			Title: swag.String(title),
		},
	}
}

func NewHTTPErrorWithDetail(code int, errorType types.PublicHTTPErrorType, title string, detail string) *HTTPError {
	err := NewHTTPError(code, errorType, title)
	err.Detail = detail

	return err
}

func NewFromEcho(e *echo.HTTPError) *HTTPError {
	return NewHTTPErrorWithDetail(e.Code, types.PublicHTTPErrorTypeGeneric, http.StatusText(e.Code), fmt.Sprintf("%v", e.Message))
}

func (e *HTTPError) Error() string {
	var b strings.Builder

	fmt.Fprintf(&b, "HTTPError %d (%s): %s", *e.Code, *e.Type, *e.Title)

	if len(e.Detail) > 0 {
		fmt.Fprintf(&b, " - %s", e.Detail)
	}
	if e.Internal != nil {
		fmt.Fprintf(&b, ", %v", e.Internal)
	}
	if len(e.AdditionalData) > 0 {
		fmt.Fprintf(&b, ". Additional: %v", e.AdditionalData)
	}

	return b.String()
}

func NewHTTPValidationError(code int, errorType types.PublicHTTPErrorType, title string, validationErrors []*types.HTTPValidationErrorDetail) *HTTPValidationError {
	return &HTTPValidationError{
		PublicHTTPValidationError: types.PublicHTTPValidationError{
			PublicHTTPError: types.PublicHTTPError{
				Code:  swag.Int64(int64(code)),
				Type:  errorType.Pointer(),
				Title: swag.String(title),
			},
			ValidationErrors: validationErrors,
		},
	}
}

func NewHTTPValidationErrorWithDetail(code int, errorType types.PublicHTTPErrorType, title string, validationErrors []*types.HTTPValidationErrorDetail, detail string) *HTTPValidationError {
	err := NewHTTPValidationError(code, errorType, title, validationErrors)
	err.Detail = detail

	return err
}

func (e *HTTPValidationError) Error() string {
	var b strings.Builder

	fmt.Fprintf(&b, "HTTPValidationError %d (%s): %s", *e.Code, *e.Type, *e.Title)

	if len(e.Detail) > 0 {
		fmt.Fprintf(&b, " - %s", e.Detail)
	}
	if e.Internal != nil {
		fmt.Fprintf(&b, ", %v", e.Internal)
	}
	if len(e.AdditionalData) > 0 {
		fmt.Fprintf(&b, ". Additional: %v", e.AdditionalData)
	}

	b.WriteString(" - Validation: ")
	for i, ve := range e.ValidationErrors {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s (in %s): %s", swag.StringValue(ve.Key), swag.StringValue(ve.In), swag.StringValue(ve.Error))
	}

	return b.String()
}

func (e *HTTPTransferError) Error() string {
	var b strings.Builder

	fmt.Fprintf(&b, "HTTPTransferError %d (%s): %s", *e.Code, *e.Type, *e.Title)

	if len(e.TransactionHash) > 0 {
		fmt.Fprintf(&b, " [tx %s]", e.TransactionHash)
	}
	if e.Internal != nil {
		fmt.Fprintf(&b, ", %v", e.Internal)
	}

	return b.String()
}
