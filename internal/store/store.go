package store

import (
	"context"
	"errors"
	"fmt"

	"currency-ledger-go/internal/models"

	"github.com/shopspring/decimal"
)

// Sentinel errors shared across all backend implementations.
var (
	ErrConnectionFailure      = errors.New("ledger store unreachable")
	ErrNotConnected           = errors.New("ledger store not connected")
	ErrInvalidDenomination    = errors.New("invalid denomination")
	ErrInvalidTransactionKind = errors.New("invalid transaction kind")
	ErrInvalidOperator        = errors.New("invalid arithmetic operator")
	ErrInvalidAmount          = errors.New("invalid amount")
	ErrInvalidIdentity        = errors.New("invalid identity key")
	ErrAccountNotFound        = errors.New("account not found")
	ErrInsufficientFunds      = errors.New("insufficient funds")
	ErrTransactionFailure     = errors.New("transaction failed")
)

// TransferState is a step of the transfer protocol. A failed transfer
// reports the last state it reached before rolling back.
type TransferState int

const (
	StateInit TransferState = iota
	StateSenderLocked
	StateFundsChecked
	StateReceiverEnsured
	StateDebited
	StateCredited
	StateCommitted
	StateRolledBack
)

var transferStateNames = [...]string{
	StateInit:            "init",
	StateSenderLocked:    "sender_locked",
	StateFundsChecked:    "funds_checked",
	StateReceiverEnsured: "receiver_ensured",
	StateDebited:         "debited",
	StateCredited:        "credited",
	StateCommitted:       "committed",
	StateRolledBack:      "rolled_back",
}

func (s TransferState) String() string {
	if s < 0 || int(s) >= len(transferStateNames) {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return transferStateNames[s]
}

// TransferError reports a transfer that was rolled back. Err is one of the
// sentinel errors above, optionally wrapping the driver error.
type TransferError struct {
	State TransferState // last state reached before the rollback
	Err   error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("transfer rolled back after %s: %v", e.State, e.Err)
}

func (e *TransferError) Unwrap() error { return e.Err }

// LedgerStore defines the contract that every backend (SQLite, MySQL, PostgreSQL) must satisfy.
type LedgerStore interface {
	// --- Lifecycle ---
	Backend() Backend
	// Scale is the number of fractional digits every amount is held at.
	Scale() int32
	// Connect is idempotent: calling it on an open store is a no-op.
	Connect(ctx context.Context) error
	// EnsureSchema creates missing tables and never drops data.
	EnsureSchema(ctx context.Context) error
	// Disconnect is safe to call repeatedly, including before Connect.
	Disconnect() error

	// --- Accounts ---
	AccountExists(ctx context.Context, playerUUID string) (bool, error)
	// EnsureAccount inserts the row only when absent; an existing row keeps its balances.
	EnsureAccount(ctx context.Context, playerUUID string, coin, copper, silver, gold decimal.Decimal) error
	GetAccount(ctx context.Context, playerUUID string) (*models.Account, error)

	// --- Balances ---
	GetBalance(ctx context.Context, playerUUID string, denomination Denomination) (decimal.Decimal, error)
	// AdjustBalance applies balance = balance + delta in a single statement.
	AdjustBalance(ctx context.Context, playerUUID string, denomination Denomination, delta decimal.Decimal) error

	// --- Transactions ---
	RecordTransaction(ctx context.Context, params RecordTransactionParams) (*models.TransactionRecord, error)
	// Transfer atomically moves amount of denomination from sender to receiver.
	// It does not write an audit record.
	Transfer(ctx context.Context, sender, receiver string, denomination Denomination, amount decimal.Decimal) error
}

// RecordTransactionParams contains the parameters for appending an audit record.
type RecordTransactionParams struct {
	Sender       string
	Receiver     string
	Denomination Denomination
	Kind         TransactionKind
	Amount       decimal.Decimal
	Notes        string
}
