package amount

import (
	"math/big"
	"regexp"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

const (
	// NativePrecision is the number of decimals of the network's native coin.
	NativePrecision int32 = 18
	// GweiPrecision is the number of decimals between wei and gwei.
	GweiPrecision int32 = 9
	// MaxPrecision bounds the decimals a token contract may declare (uint8 on-chain).
	MaxPrecision int32 = 255
)

var (
	ErrEmpty             = errors.New("amount is empty")
	ErrNotNumeric        = errors.New("amount is not a plain non-negative decimal number")
	ErrPrecisionOverflow = errors.New("amount has more fractional digits than the asset precision")
	ErrInvalidPrecision  = errors.New("precision out of range")
)

// only plain digits with an optional fraction, no sign, no exponent
var plainDecimal = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?$`)

// Parse checks that s is a plain non-negative decimal string and returns its value.
func Parse(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, ErrEmpty
	}

	if !plainDecimal.MatchString(s) {
		return decimal.Zero, errors.Wrapf(ErrNotNumeric, "%q", s)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, errors.Wrapf(ErrNotNumeric, "%q", s)
	}

	return d, nil
}

// ToBaseUnits converts a human-readable decimal amount into the asset's smallest unit.
// Trailing zeros in the fraction are accepted, any other digit beyond precision is rejected.
func ToBaseUnits(s string, precision int32) (*big.Int, error) {
	if precision < 0 || precision > MaxPrecision {
		return nil, errors.Wrapf(ErrInvalidPrecision, "%d", precision)
	}

	d, err := Parse(s)
	if err != nil {
		return nil, err
	}

	scaled := d.Shift(precision)
	if !scaled.IsInteger() {
		return nil, errors.Wrapf(ErrPrecisionOverflow, "%q exceeds %d decimals", s, precision)
	}

	return scaled.BigInt(), nil
}

// FromBaseUnits renders base units back into the human-readable denomination.
func FromBaseUnits(v *big.Int, precision int32) string {
	if v == nil {
		return "0"
	}

	return decimal.NewFromBigInt(v, -precision).String()
}

// Sum adds up base-unit values without mutating them.
func Sum(values []*big.Int) *big.Int {
	total := new(big.Int)
	for _, v := range values {
		if v != nil {
			total.Add(total, v)
		}
	}

	return total
}

// ToBaseUnitsAll converts every amount at the same precision and returns the values and their sum.
// The returned error names the offending index.
func ToBaseUnitsAll(amounts []string, precision int32) ([]*big.Int, *big.Int, error) {
	values := make([]*big.Int, 0, len(amounts))
	for i, a := range amounts {
		v, err := ToBaseUnits(a, precision)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "amount[%d]", i)
		}
		values = append(values, v)
	}

	return values, Sum(values), nil
}
