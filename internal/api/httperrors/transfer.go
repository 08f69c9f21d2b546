package httperrors

import (
	"net/http"

	"github.com/go-openapi/swag"
	"github.com/pkg/errors"
	"github/chapool/go-batchpay/internal/transfer"
	"github/chapool/go-batchpay/internal/types"
)

// NewFromTransferError maps the transfer error taxonomy onto HTTP.
//
//	validation         400  nothing was sent
//	revert             422  the network rejected the call
//	dependency         502  a collaborator was unavailable, nothing was sent
//	timeout            504  outcome unknown, check the transaction hash later
//	partial completion 409  approval landed, distribution did not
func NewFromTransferError(err error) error {
	var (
		validation *transfer.ValidationError
		partial    *transfer.PartialCompletionError
		timeout    *transfer.TimeoutError
		revert     *transfer.RevertError
	)

	switch transfer.Kind(err) {
	case transfer.KindValidation:
		_ = errors.As(err, &validation)

		return NewHTTPValidationErrorWithDetail(
			http.StatusBadRequest,
			types.PublicHTTPErrorTypeINVALIDTRANSFER,
			http.StatusText(http.StatusBadRequest),
			[]*types.HTTPValidationErrorDetail{{
				Key:   swag.String(validation.Field),
				In:    swag.String("body"),
				Error: swag.String(validation.Reason),
			}},
			validation.Error(),
		)

	case transfer.KindPartialCompletion:
		_ = errors.As(err, &partial)

		e := newTransferError(http.StatusConflict, types.PublicHTTPErrorTypePARTIALCOMPLETION,
			"The approval was confirmed but the distribution did not complete. The allowance remains in place.", err)
		e.PartialCompletion = &types.PartialCompletionDetail{
			Token:          partial.Token,
			Spender:        partial.Spender,
			Owner:          partial.Owner,
			ApprovedAmount: partial.ApprovedAmount,
			ApprovalTxHash: partial.ApprovalTxHash,
		}
		if errors.As(err, &timeout) {
			e.TransactionHash = timeout.TxHash
		} else if errors.As(err, &revert) {
			e.TransactionHash = revert.TxHash
			e.Reason = revert.Reason
		}

		return e

	case transfer.KindTimeout:
		_ = errors.As(err, &timeout)

		e := newTransferError(http.StatusGatewayTimeout, types.PublicHTTPErrorTypeOUTCOMEUNKNOWN,
			"The network did not confirm in time or the connection was lost after sending. The outcome is unknown; the transaction may still be included.", err)
		e.TransactionHash = timeout.TxHash

		return e

	case transfer.KindRevert:
		_ = errors.As(err, &revert)

		e := newTransferError(http.StatusUnprocessableEntity, types.PublicHTTPErrorTypeTRANSFERREJECTED,
			"The network rejected the transfer.", err)
		e.TransactionHash = revert.TxHash
		e.Reason = revert.Reason

		return e

	case transfer.KindDependency:
		return newTransferError(http.StatusBadGateway, types.PublicHTTPErrorTypeDEPENDENCYUNAVAILABLE,
			"A required upstream service is unavailable. Nothing was sent.", err)

	case transfer.KindNone, transfer.KindUnknown:
	}

	return &HTTPError{
		PublicHTTPError: NewHTTPError(http.StatusInternalServerError, types.PublicHTTPErrorTypeGeneric, http.StatusText(http.StatusInternalServerError)).PublicHTTPError,
		Internal:        err,
	}
}

func newTransferError(code int, errorType types.PublicHTTPErrorType, title string, err error) *HTTPTransferError {
	return &HTTPTransferError{
		PublicHTTPTransferError: types.PublicHTTPTransferError{
			PublicHTTPError: types.PublicHTTPError{
				Code:  swag.Int64(int64(code)),
				Type:  errorType.Pointer(),
				Title: swag.String(title),
			},
		},
		Internal: err,
	}
}
