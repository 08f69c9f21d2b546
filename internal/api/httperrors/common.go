package httperrors

import (
	"net/http"

	"github/chapool/go-batchpay/internal/types"
)

var (
	ErrUnauthorizedInvalidAPIKey = NewHTTPError(http.StatusUnauthorized, types.PublicHTTPErrorTypeINVALIDAPIKEY, "The API key is missing or invalid.")
	ErrNotFoundTransfer          = NewHTTPError(http.StatusNotFound, types.PublicHTTPErrorTypeTRANSFERNOTFOUND, "No transfer with the given hash is stored.")
	ErrBadRequestInvalidHash     = NewHTTPError(http.StatusBadRequest, types.PublicHTTPErrorTypeGeneric, "The given transaction hash is not valid.")
)
