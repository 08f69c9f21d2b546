package util

import (
	"context"
	"net/http"

	oerrors "github.com/go-openapi/errors"
	"github.com/go-openapi/runtime"
	"github.com/go-openapi/strfmt"
	"github.com/go-openapi/swag"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github/chapool/go-batchpay/internal/api/httperrors"
	"github/chapool/go-batchpay/internal/types"
)

// BindAndValidateBody binds the request body into v and validates it against its schema.
func BindAndValidateBody(c echo.Context, v runtime.Validatable) error {
	binder, ok := c.Echo().Binder.(*echo.DefaultBinder)
	if !ok {
		return errors.New("echo binder is not a *echo.DefaultBinder")
	}

	if err := binder.BindBody(c, v); err != nil {
		return err
	}

	return validatePayload(c, v)
}

// ValidateAndReturn validates a response payload before sending it.
// An invalid response is a bug on our side and is reported as 500.
func ValidateAndReturn(c echo.Context, code int, v runtime.Validatable) error {
	if err := v.Validate(strfmt.Default); err != nil {
		var compositeError *oerrors.CompositeError
		if errors.As(err, &compositeError) {
			LogFromEchoContext(c).Error().Errs("validation_errors", compositeError.Errors).Msg("Response did not match schema")
		} else {
			LogFromEchoContext(c).Error().Err(err).Msg("Failed to validate response payload")
		}

		return httperrors.NewHTTPError(http.StatusInternalServerError, types.PublicHTTPErrorTypeGeneric, http.StatusText(http.StatusInternalServerError))
	}

	return c.JSON(code, v)
}

func validatePayload(c echo.Context, v runtime.Validatable) error {
	if err := v.Validate(strfmt.Default); err != nil {
		var compositeError *oerrors.CompositeError
		if errors.As(err, &compositeError) {
			LogFromEchoContext(c).Debug().Errs("validation_errors", compositeError.Errors).Msg("Payload did not match schema, returning HTTP validation error")

			return httperrors.NewHTTPValidationError(
				http.StatusBadRequest,
				types.PublicHTTPErrorTypeGeneric,
				http.StatusText(http.StatusBadRequest),
				formatValidationErrors(c.Request().Context(), compositeError),
			)
		}

		var validationError *oerrors.Validation
		if errors.As(err, &validationError) {
			return httperrors.NewHTTPValidationError(
				http.StatusBadRequest,
				types.PublicHTTPErrorTypeGeneric,
				http.StatusText(http.StatusBadRequest),
				[]*types.HTTPValidationErrorDetail{validationDetail(validationError)},
			)
		}

		LogFromEchoContext(c).Error().Err(err).Msg("Failed to validate payload, returning generic HTTP error")

		return httperrors.NewHTTPError(http.StatusBadRequest, types.PublicHTTPErrorTypeGeneric, http.StatusText(http.StatusBadRequest))
	}

	return nil
}

func formatValidationErrors(ctx context.Context, err *oerrors.CompositeError) []*types.HTTPValidationErrorDetail {
	valErrs := make([]*types.HTTPValidationErrorDetail, 0, len(err.Errors))
	for _, e := range err.Errors {
		switch ee := e.(type) { //nolint:errorlint
		case *oerrors.Validation:
			valErrs = append(valErrs, validationDetail(ee))
		case *oerrors.CompositeError:
			valErrs = append(valErrs, formatValidationErrors(ctx, ee)...)
		default:
			LogFromContext(ctx).Warn().Err(e).Str("err_type", e.Error()).Msg("Received unknown error type while validating payload, skipping")
		}
	}

	return valErrs
}

func validationDetail(e *oerrors.Validation) *types.HTTPValidationErrorDetail {
	return &types.HTTPValidationErrorDetail{
		Key:   swag.String(e.Name),
		In:    swag.String(e.In),
		Error: swag.String(e.Error()),
	}
}
