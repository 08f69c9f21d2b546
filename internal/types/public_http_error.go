package types

import (
	"github.com/go-openapi/errors"
	"github.com/go-openapi/strfmt"
	"github.com/go-openapi/swag"
	"github.com/go-openapi/validate"
)

// PublicHTTPErrorType is the machine readable error type sent to clients.
type PublicHTTPErrorType string

const (
	PublicHTTPErrorTypeGeneric               PublicHTTPErrorType = "generic"
	PublicHTTPErrorTypeINVALIDAPIKEY         PublicHTTPErrorType = "INVALID_API_KEY"
	PublicHTTPErrorTypeTRANSFERNOTFOUND      PublicHTTPErrorType = "TRANSFER_NOT_FOUND"
	PublicHTTPErrorTypeINVALIDTRANSFER       PublicHTTPErrorType = "INVALID_TRANSFER"
	PublicHTTPErrorTypeTRANSFERREJECTED      PublicHTTPErrorType = "TRANSFER_REJECTED"
	PublicHTTPErrorTypeDEPENDENCYUNAVAILABLE PublicHTTPErrorType = "DEPENDENCY_UNAVAILABLE"
	PublicHTTPErrorTypeOUTCOMEUNKNOWN        PublicHTTPErrorType = "OUTCOME_UNKNOWN"
	PublicHTTPErrorTypePARTIALCOMPLETION     PublicHTTPErrorType = "PARTIAL_COMPLETION"
)

func (m PublicHTTPErrorType) Pointer() *PublicHTTPErrorType {
	return &m
}

// PublicHTTPError is the body of every non-2xx response.
type PublicHTTPError struct {
	// HTTP status code returned for the error
	// Required: true
	Code *int64 `json:"status"`

	// More detailed, human-readable, optional explanation of the error
	Detail string `json:"detail,omitempty"`

	// Short, human-readable description of the error
	// Required: true
	Title *string `json:"title"`

	// Type of error returned, should be used for client-side error handling
	// Required: true
	Type *PublicHTTPErrorType `json:"type"`
}

func (m *PublicHTTPError) Validate(formats strfmt.Registry) error {
	var res []error

	if err := validate.Required("status", "body", m.Code); err != nil {
		res = append(res, err)
	}

	if err := validate.Required("title", "body", m.Title); err != nil {
		res = append(res, err)
	}

	if err := validate.Required("type", "body", m.Type); err != nil {
		res = append(res, err)
	}

	if len(res) > 0 {
		return errors.CompositeValidationError(res...)
	}

	return nil
}

func (m *PublicHTTPError) MarshalBinary() ([]byte, error) {
	if m == nil {
		return nil, nil
	}
	return swag.WriteJSON(m)
}

// HTTPValidationErrorDetail points at one invalid field of a request.
type HTTPValidationErrorDetail struct {
	// Error describing field validation failure
	// Required: true
	Error *string `json:"error"`

	// Indicates how the invalid field was provided
	// Required: true
	In *string `json:"in"`

	// Key of field failing validation
	// Required: true
	Key *string `json:"key"`
}

// PublicHTTPValidationError is a PublicHTTPError with per-field details.
type PublicHTTPValidationError struct {
	PublicHTTPError

	// List of errors received while validating payload against schema
	// Required: true
	ValidationErrors []*HTTPValidationErrorDetail `json:"validationErrors"`
}

// PartialCompletionDetail is what an operator needs to recover from a half finished token transfer.
type PartialCompletionDetail struct {
	Token          string `json:"tokenAddress"`
	Spender        string `json:"spender"`
	Owner          string `json:"owner"`
	ApprovedAmount string `json:"approvedAmount"`
	ApprovalTxHash string `json:"approvalTransactionHash"`
}

// PublicHTTPTransferError is returned when a transfer failed after reaching the network.
type PublicHTTPTransferError struct {
	PublicHTTPError

	// Hash of the transaction whose outcome is unknown or rejected, if it was broadcast
	TransactionHash string `json:"transactionHash,omitempty"`

	// Reason given by the network for a rejection
	Reason string `json:"reason,omitempty"`

	// Set when an approval landed but the distribution did not
	PartialCompletion *PartialCompletionDetail `json:"partialCompletion,omitempty"`
}
