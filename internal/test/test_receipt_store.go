package test

import (
	"database/sql"
	"testing"

	"github/chapool/go-batchpay/internal/transfer/receipt"
)

func WithTestReceiptStore(t *testing.T, closure func(store *receipt.PostgresStore, db *sql.DB)) {
	t.Helper()

	WithTestDatabase(t, func(db *sql.DB) {
		t.Helper()
		closure(NewTestReceiptStore(t, db), db)
	})
}

func NewTestReceiptStore(t *testing.T, db *sql.DB) *receipt.PostgresStore {
	t.Helper()

	return receipt.NewPostgresStore(db)
}
