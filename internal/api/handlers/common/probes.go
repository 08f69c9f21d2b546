package common

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github/chapool/go-batchpay/internal/transfer/receipt"
)

// ProbeReadiness checks the dependencies the service needs to accept requests.
// The network and the explorer are not probed, their failures are reported per request.
func ProbeReadiness(ctx context.Context, store receipt.Store, timeout time.Duration) []error {
	var errs []error

	if store == nil {
		return append(errs, errors.New("receipt store is not initialized"))
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := store.Ping(ctx); err != nil {
		errs = append(errs, errors.Wrap(err, "receipt store ping failed"))
	}

	return errs
}
