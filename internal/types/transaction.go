package types

import (
	"strconv"

	"github.com/go-openapi/errors"
	"github.com/go-openapi/strfmt"
	"github.com/go-openapi/swag"
	"github.com/go-openapi/validate"
)

const (
	addressPattern = `^0x[0-9a-fA-F]{40}$`
	amountPattern  = `^[0-9]+(\.[0-9]+)?$`
	// empty fee fields are accepted and mean "let the network decide"
	optionalAmountPattern = `^([0-9]+(\.[0-9]+)?)?$`
	optionalUintPattern   = `^([0-9]+)?$`

	maxRecipients = 500
)

// PostSendCoinPayload batch transfers the native coin.
type PostSendCoinPayload struct {
	// Hex encoded signing key of the sender, used for this request only
	// Required: true
	PrivateKey *string `json:"privateKey"`

	// Recipients, index aligned with amount
	// Required: true
	// Min Items: 1
	ReceiverAddress []string `json:"receiverAddress"`

	// Amounts in the human readable denomination
	// Required: true
	// Min Items: 1
	Amount []string `json:"amount"`

	// Optional gas limit
	GasLimit string `json:"gasLimit,omitempty"`

	// Optional max fee per gas in gwei
	MaxFeePerGas string `json:"maxFeePerGas,omitempty"`

	// Optional max priority fee per gas in gwei
	MaxPriorityFeePerGas string `json:"maxPriorityFeePerGas,omitempty"`
}

func (m *PostSendCoinPayload) Validate(formats strfmt.Registry) error {
	var res []error

	if err := validate.Required("privateKey", "body", m.PrivateKey); err != nil {
		res = append(res, err)
	} else if err := validate.MinLength("privateKey", "body", *m.PrivateKey, 1); err != nil {
		res = append(res, err)
	}

	res = append(res, validateBatch(m.ReceiverAddress, m.Amount)...)
	res = append(res, validateFees(m.GasLimit, m.MaxFeePerGas, m.MaxPriorityFeePerGas)...)

	if len(res) > 0 {
		return errors.CompositeValidationError(res...)
	}

	return nil
}

func (m *PostSendCoinPayload) MarshalBinary() ([]byte, error) {
	if m == nil {
		return nil, nil
	}
	return swag.WriteJSON(m)
}

func (m *PostSendCoinPayload) UnmarshalBinary(b []byte) error {
	var res PostSendCoinPayload
	if err := swag.ReadJSON(b, &res); err != nil {
		return err
	}
	*m = res
	return nil
}

// PostSendTokenPayload batch transfers a fungible token.
type PostSendTokenPayload struct {
	PostSendCoinPayload

	// Address of the token contract
	// Required: true
	// Pattern: ^0x[0-9a-fA-F]{40}$
	TokenAddress *string `json:"tokenAddress"`
}

func (m *PostSendTokenPayload) Validate(formats strfmt.Registry) error {
	var res []error

	if err := m.PostSendCoinPayload.Validate(formats); err != nil {
		res = append(res, err)
	}

	if err := validate.Required("tokenAddress", "body", m.TokenAddress); err != nil {
		res = append(res, err)
	} else if err := validate.Pattern("tokenAddress", "body", *m.TokenAddress, addressPattern); err != nil {
		res = append(res, err)
	}

	if len(res) > 0 {
		return errors.CompositeValidationError(res...)
	}

	return nil
}

func validateBatch(receivers []string, amounts []string) []error {
	var res []error

	if err := validate.Required("receiverAddress", "body", receivers); err != nil {
		res = append(res, err)
	} else {
		if err := validate.MinItems("receiverAddress", "body", int64(len(receivers)), 1); err != nil {
			res = append(res, err)
		}
		if err := validate.MaxItems("receiverAddress", "body", int64(len(receivers)), maxRecipients); err != nil {
			res = append(res, err)
		}
		for i, r := range receivers {
			if err := validate.Pattern("receiverAddress"+"."+strconv.Itoa(i), "body", r, addressPattern); err != nil {
				res = append(res, err)
			}
		}
	}

	if err := validate.Required("amount", "body", amounts); err != nil {
		res = append(res, err)
	} else {
		if err := validate.MinItems("amount", "body", int64(len(amounts)), 1); err != nil {
			res = append(res, err)
		}
		for i, a := range amounts {
			if err := validate.Pattern("amount"+"."+strconv.Itoa(i), "body", a, amountPattern); err != nil {
				res = append(res, err)
			}
		}
	}

	// amounts are index aligned with receivers
	if len(receivers) > 0 && len(amounts) > 0 {
		if err := validate.MinItems("amount", "body", int64(len(amounts)), int64(len(receivers))); err != nil {
			res = append(res, err)
		}
		if err := validate.MaxItems("amount", "body", int64(len(amounts)), int64(len(receivers))); err != nil {
			res = append(res, err)
		}
	}

	return res
}

func validateFees(gasLimit string, maxFee string, maxPriorityFee string) []error {
	var res []error

	if err := validate.Pattern("gasLimit", "body", gasLimit, optionalUintPattern); err != nil {
		res = append(res, err)
	}
	if err := validate.Pattern("maxFeePerGas", "body", maxFee, optionalAmountPattern); err != nil {
		res = append(res, err)
	}
	if err := validate.Pattern("maxPriorityFeePerGas", "body", maxPriorityFee, optionalAmountPattern); err != nil {
		res = append(res, err)
	}

	return res
}

// ConfirmedTransfer is an included batch transfer.
type ConfirmedTransfer struct {
	// Address the transfer was signed by
	// Required: true
	Sender *string `json:"sender"`

	// Hash of the distribution transaction
	// Required: true
	Hash *string `json:"hash"`

	// Gas limit of the distribution transaction
	// Required: true
	GasLimit *string `json:"gasLimit"`

	// Max fee per gas in gwei
	// Required: true
	MaxFeePerGas *string `json:"maxFeePerGas"`

	// Max priority fee per gas in gwei
	// Required: true
	MaxPriorityFeePerGas *string `json:"maxPriorityFeePerGas"`

	TokenAddress            string `json:"tokenAddress,omitempty"`
	ApprovalTransactionHash string `json:"approvalTransactionHash,omitempty"`
	TotalBaseUnits          string `json:"totalBaseUnits,omitempty"`
	RecipientCount          int64  `json:"recipientCount,omitempty"`
	BlockNumber             int64  `json:"blockNumber,omitempty"`
	GasUsed                 int64  `json:"gasUsed,omitempty"`
}

func (m *ConfirmedTransfer) Validate(formats strfmt.Registry) error {
	var res []error

	for name, v := range map[string]*string{
		"sender":               m.Sender,
		"hash":                 m.Hash,
		"gasLimit":             m.GasLimit,
		"maxFeePerGas":         m.MaxFeePerGas,
		"maxPriorityFeePerGas": m.MaxPriorityFeePerGas,
	} {
		if err := validate.Required(name, "body", v); err != nil {
			res = append(res, err)
		}
	}

	if len(res) > 0 {
		return errors.CompositeValidationError(res...)
	}

	return nil
}

// TransferResponse wraps a ConfirmedTransfer.
type TransferResponse struct {
	// Required: true
	Data *ConfirmedTransfer `json:"data"`
}

func (m *TransferResponse) Validate(formats strfmt.Registry) error {
	if err := validate.Required("data", "body", m.Data); err != nil {
		return err
	}

	if err := m.Data.Validate(formats); err != nil {
		if ve, ok := err.(*errors.Validation); ok { //nolint:errorlint
			return ve.ValidateName("data")
		}
		return err
	}

	return nil
}

// FeeEstimate holds the current fee tiers in gwei.
type FeeEstimate struct {
	// Required: true
	Low *string `json:"low"`
	// Required: true
	Market *string `json:"market"`
	// Required: true
	Aggressive *string `json:"aggressive"`
	// Required: true
	BaseFee *string `json:"baseFee"`
}

func (m *FeeEstimate) Validate(formats strfmt.Registry) error {
	var res []error

	if err := validate.Required("low", "body", m.Low); err != nil {
		res = append(res, err)
	}
	if err := validate.Required("market", "body", m.Market); err != nil {
		res = append(res, err)
	}
	if err := validate.Required("aggressive", "body", m.Aggressive); err != nil {
		res = append(res, err)
	}
	if err := validate.Required("baseFee", "body", m.BaseFee); err != nil {
		res = append(res, err)
	}

	if len(res) > 0 {
		return errors.CompositeValidationError(res...)
	}

	return nil
}

// FeeEstimateResponse wraps a FeeEstimate.
type FeeEstimateResponse struct {
	// Required: true
	Data *FeeEstimate `json:"data"`
}

func (m *FeeEstimateResponse) Validate(formats strfmt.Registry) error {
	if err := validate.Required("data", "body", m.Data); err != nil {
		return err
	}

	return m.Data.Validate(formats)
}

// TransferReceipt is a stored record of a confirmed transfer.
type TransferReceipt struct {
	// Required: true
	ID *strfmt.UUID `json:"id"`

	// Required: true
	Sender *string `json:"sender"`

	// Required: true
	Hash *string `json:"hash"`

	// Required: true
	AssetKind *string `json:"assetKind"`

	TokenAddress            string `json:"tokenAddress,omitempty"`
	ApprovalTransactionHash string `json:"approvalTransactionHash,omitempty"`
	RecipientCount          int64  `json:"recipientCount"`
	TotalBaseUnits          string `json:"totalBaseUnits"`
	GasLimit                string `json:"gasLimit"`
	MaxFeePerGas            string `json:"maxFeePerGas"`
	MaxPriorityFeePerGas    string `json:"maxPriorityFeePerGas"`
	BlockNumber             int64  `json:"blockNumber"`

	// Required: true
	CreatedAt *strfmt.DateTime `json:"createdAt"`
}

func (m *TransferReceipt) Validate(formats strfmt.Registry) error {
	var res []error

	if err := validate.Required("id", "body", m.ID); err != nil {
		res = append(res, err)
	} else if err := validate.FormatOf("id", "body", "uuid", m.ID.String(), formats); err != nil {
		res = append(res, err)
	}

	if err := validate.Required("sender", "body", m.Sender); err != nil {
		res = append(res, err)
	}
	if err := validate.Required("hash", "body", m.Hash); err != nil {
		res = append(res, err)
	}
	if err := validate.Required("assetKind", "body", m.AssetKind); err != nil {
		res = append(res, err)
	}
	if err := validate.Required("createdAt", "body", m.CreatedAt); err != nil {
		res = append(res, err)
	}

	if len(res) > 0 {
		return errors.CompositeValidationError(res...)
	}

	return nil
}

// TransferReceiptResponse wraps a TransferReceipt.
type TransferReceiptResponse struct {
	// Required: true
	Data *TransferReceipt `json:"data"`
}

func (m *TransferReceiptResponse) Validate(formats strfmt.Registry) error {
	if err := validate.Required("data", "body", m.Data); err != nil {
		return err
	}

	return m.Data.Validate(formats)
}
