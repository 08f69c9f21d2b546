package mocks

import (
	"context"
	"sync/atomic"

	"github/chapool/go-batchpay/internal/transfer/oracle"
)

// Oracle is a fixed-answer oracle.Service.
type Oracle struct {
	Levels oracle.Levels
	Err    error

	calls atomic.Int32
}

var _ oracle.Service = (*Oracle)(nil)

func NewOracle() *Oracle {
	return &Oracle{
		Levels: oracle.Levels{
			Safe:             "1.2",
			Propose:          "1.5",
			Fast:             "2.1",
			SuggestedBaseFee: "1.15",
		},
	}
}

func (o *Oracle) FetchGasOracle(_ context.Context) (oracle.Levels, error) {
	o.calls.Add(1)

	if o.Err != nil {
		return oracle.Levels{}, o.Err
	}

	return o.Levels, nil
}

// Calls returns how many times the oracle was read.
func (o *Oracle) Calls() int {
	return int(o.calls.Load())
}
