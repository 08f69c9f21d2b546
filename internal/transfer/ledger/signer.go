package ledger

import (
	"crypto/ecdsa"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
)

var ErrInvalidSigningKey = errors.New("invalid signing key")

// Signer holds the key material of exactly one request.
// Never cache or share a Signer between requests, derive a new one from the supplied key.
type Signer struct {
	key     *ecdsa.PrivateKey
	address common.Address
}

// NewSigner parses a hex encoded secp256k1 private key, with or without 0x prefix.
func NewSigner(hexKey string) (*Signer, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(hexKey), "0x"))
	if err != nil {
		// the underlying error may echo key bytes, so it is dropped
		return nil, ErrInvalidSigningKey
	}

	return &Signer{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
	}, nil
}

// Address is the sender address derived from the key.
func (s *Signer) Address() common.Address {
	return s.address
}

// SignTx signs an EIP-1559 transaction for chainID.
func (s *Signer) SignTx(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	if s.key == nil {
		return nil, errors.New("signer already closed")
	}

	signedTx, err := types.SignTx(tx, types.NewLondonSigner(chainID), s.key)
	if err != nil {
		return nil, errors.Wrap(err, "failed to sign transaction")
	}

	return signedTx, nil
}

// Close wipes the private scalar. The Signer is unusable afterwards.
func (s *Signer) Close() {
	if s.key == nil {
		return
	}

	s.key.D.SetInt64(0)
	s.key = nil
}
