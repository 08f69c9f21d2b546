package mocks

import (
	"context"
	"strings"
	"sync"

	"github/chapool/go-batchpay/internal/transfer/receipt"
)

// ReceiptStore is an in-memory receipt.Store.
type ReceiptStore struct {
	mu      sync.Mutex
	records map[string]*receipt.Record

	SaveErr error
	PingErr error
}

var _ receipt.Store = (*ReceiptStore)(nil)

func NewReceiptStore() *ReceiptStore {
	return &ReceiptStore{records: map[string]*receipt.Record{}}
}

func (s *ReceiptStore) Save(_ context.Context, rec *receipt.Record) error {
	if s.SaveErr != nil {
		return s.SaveErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(rec.TXHash)
	if _, ok := s.records[key]; !ok {
		s.records[key] = rec
	}

	return nil
}

func (s *ReceiptStore) GetByTXHash(_ context.Context, txHash string) (*receipt.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[strings.ToLower(txHash)]
	if !ok {
		return nil, receipt.ErrNotFound
	}

	return rec, nil
}

func (s *ReceiptStore) Ping(_ context.Context) error {
	return s.PingErr
}

// Len returns the number of stored receipts.
func (s *ReceiptStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.records)
}
