package receipt

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/aarondl/sqlboiler/v4/queries"
	"github.com/aarondl/sqlboiler/v4/queries/qm"
	"github.com/aarondl/strmangle"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github/chapool/go-batchpay/internal/transfer"
)

const (
	AssetKindNative = "native"
	AssetKindToken  = "token"
)

var ErrNotFound = errors.New("transfer receipt not found")

// Record is the stored form of a ConfirmedTransfer.
type Record struct {
	ID                   string      `boil:"id" json:"id"`
	Sender               string      `boil:"sender" json:"sender"`
	TXHash               string      `boil:"tx_hash" json:"tx_hash"`
	AssetKind            string      `boil:"asset_kind" json:"asset_kind"`
	TokenAddress         null.String `boil:"token_address" json:"token_address,omitempty"`
	ApprovalTXHash       null.String `boil:"approval_tx_hash" json:"approval_tx_hash,omitempty"`
	RecipientCount       int         `boil:"recipient_count" json:"recipient_count"`
	TotalBaseUnits       string      `boil:"total_base_units" json:"total_base_units"`
	GasLimit             string      `boil:"gas_limit" json:"gas_limit"`
	MaxFeePerGas         string      `boil:"max_fee_per_gas" json:"max_fee_per_gas"`
	MaxPriorityFeePerGas string      `boil:"max_priority_fee_per_gas" json:"max_priority_fee_per_gas"`
	BlockNumber          int64       `boil:"block_number" json:"block_number"`
	CreatedAt            time.Time   `boil:"created_at" json:"created_at"`
}

const receiptTable = "transfer_receipts"

var TransferReceiptColumns = struct {
	ID                   string
	Sender               string
	TXHash               string
	AssetKind            string
	TokenAddress         string
	ApprovalTXHash       string
	RecipientCount       string
	TotalBaseUnits       string
	GasLimit             string
	MaxFeePerGas         string
	MaxPriorityFeePerGas string
	BlockNumber          string
	CreatedAt            string
}{
	ID:                   "id",
	Sender:               "sender",
	TXHash:               "tx_hash",
	AssetKind:            "asset_kind",
	TokenAddress:         "token_address",
	ApprovalTXHash:       "approval_tx_hash",
	RecipientCount:       "recipient_count",
	TotalBaseUnits:       "total_base_units",
	GasLimit:             "gas_limit",
	MaxFeePerGas:         "max_fee_per_gas",
	MaxPriorityFeePerGas: "max_priority_fee_per_gas",
	BlockNumber:          "block_number",
	CreatedAt:            "created_at",
}

var (
	receiptAllColumns = []string{
		TransferReceiptColumns.ID,
		TransferReceiptColumns.Sender,
		TransferReceiptColumns.TXHash,
		TransferReceiptColumns.AssetKind,
		TransferReceiptColumns.TokenAddress,
		TransferReceiptColumns.ApprovalTXHash,
		TransferReceiptColumns.RecipientCount,
		TransferReceiptColumns.TotalBaseUnits,
		TransferReceiptColumns.GasLimit,
		TransferReceiptColumns.MaxFeePerGas,
		TransferReceiptColumns.MaxPriorityFeePerGas,
		TransferReceiptColumns.BlockNumber,
		TransferReceiptColumns.CreatedAt,
	}

	recordType    = reflect.TypeOf(&Record{})
	recordMapping = queries.MakeStructMapping(recordType)

	// 同一哈希重复保存时保留第一条
	insertReceipt = fmt.Sprintf("INSERT INTO \"%s\" (%s) VALUES (%s) ON CONFLICT (\"%s\") DO NOTHING",
		receiptTable,
		strings.Join(strmangle.IdentQuoteSlice(dialect.LQ, dialect.RQ, receiptAllColumns), ","),
		strmangle.Placeholders(dialect.UseIndexPlaceholders, len(receiptAllColumns), 1, 1),
		TransferReceiptColumns.TXHash,
	)
)

// NewRecord builds a record for a confirmed transfer.
func NewRecord(res *transfer.ConfirmedTransfer) *Record {
	rec := &Record{
		ID:                   uuid.NewString(),
		Sender:               res.SenderAddress,
		TXHash:               strings.ToLower(res.TransactionHash),
		AssetKind:            AssetKindNative,
		RecipientCount:       res.RecipientCount,
		TotalBaseUnits:       res.TotalBaseUnits,
		GasLimit:             res.GasLimitUsed,
		MaxFeePerGas:         res.EffectiveMaxFeePerUnit,
		MaxPriorityFeePerGas: res.EffectivePriorityFeePerUnit,
		BlockNumber:          int64(res.BlockNumber), //nolint:gosec // block numbers fit into int64
		CreatedAt:            time.Now().UTC(),
	}

	if res.AssetAddress != "" {
		rec.AssetKind = AssetKindToken
		rec.TokenAddress = null.StringFrom(res.AssetAddress)
	}

	if res.ApprovalTransactionHash != "" {
		rec.ApprovalTXHash = null.StringFrom(res.ApprovalTransactionHash)
	}

	return rec
}

// Store persists receipts of confirmed transfers.
type Store interface {
	Save(ctx context.Context, rec *Record) error
	GetByTXHash(ctx context.Context, txHash string) (*Record, error)
	Ping(ctx context.Context) error
}

// PostgresStore keeps receipts in the transfer_receipts table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Save(ctx context.Context, rec *Record) error {
	vals, err := insertValues(rec)
	if err != nil {
		return err
	}

	if _, err := queries.Raw(insertReceipt, vals...).ExecContext(ctx, s.db); err != nil {
		return errors.Wrapf(err, "failed to save receipt %s", rec.TXHash)
	}

	return nil
}

func (s *PostgresStore) GetByTXHash(ctx context.Context, txHash string) (*Record, error) {
	var rec Record

	err := selectByTXHash(txHash).Bind(ctx, s.db, &rec)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load receipt %s", txHash)
	}

	return &rec, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func selectByTXHash(txHash string) *queries.Query {
	return NewQuery(
		qm.Select(receiptAllColumns...),
		qm.From(receiptTable),
		qm.Where(TransferReceiptColumns.TXHash+" = ?", strings.ToLower(txHash)),
		qm.Limit(1),
	)
}

// insertValues returns the record's values in receiptAllColumns order.
func insertValues(rec *Record) ([]any, error) {
	mapping, err := queries.BindMapping(recordType, recordMapping, receiptAllColumns)
	if err != nil {
		return nil, errors.Wrap(err, "failed to map receipt columns")
	}

	return queries.ValuesFromMapping(reflect.Indirect(reflect.ValueOf(rec)), mapping), nil
}
