package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github/chapool/go-batchpay/internal/transfer"
)

const namespace = "batchpay"

// Asset labels.
const (
	AssetNative = "native"
	AssetToken  = "token"
)

// Service owns the service's prometheus registry and collectors.
type Service struct {
	Registry *prometheus.Registry

	transfers         *prometheus.CounterVec
	transferDuration  *prometheus.HistogramVec
	feeEstimates      *prometheus.CounterVec
	receiptPersistErr prometheus.Counter
}

func New() (*Service, error) {
	registry := prometheus.NewRegistry()

	s := &Service{
		Registry: registry,
		transfers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transfers_total",
			Help:      "Batch transfers by asset kind and outcome.",
		}, []string{"asset", "outcome"}),
		transferDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "transfer_duration_seconds",
			Help:      "End to end duration of batch transfers, including confirmation waits.",
			Buckets:   []float64{1, 2.5, 5, 10, 15, 30, 60, 120, 300},
		}, []string{"asset"}),
		feeEstimates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fee_estimates_total",
			Help:      "Fee oracle reads by outcome.",
		}, []string{"outcome"}),
		receiptPersistErr: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "receipt_persist_failures_total",
			Help:      "Confirmed transfers whose receipt could not be stored.",
		}),
	}

	for _, c := range []prometheus.Collector{
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		s.transfers,
		s.transferDuration,
		s.feeEstimates,
		s.receiptPersistErr,
	} {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// ObserveTransfer records one finished transfer. err may be nil.
func (s *Service) ObserveTransfer(asset string, started time.Time, err error) {
	s.transfers.WithLabelValues(asset, outcome(err)).Inc()
	s.transferDuration.WithLabelValues(asset).Observe(time.Since(started).Seconds())
}

func (s *Service) ObserveFeeEstimate(err error) {
	s.feeEstimates.WithLabelValues(outcome(err)).Inc()
}

func (s *Service) ReceiptPersistFailed() {
	s.receiptPersistErr.Inc()
}

func outcome(err error) string {
	if err == nil {
		return "success"
	}

	return string(transfer.Kind(err))
}
