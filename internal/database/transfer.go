package database

import (
	"context"
	"fmt"
	"strings"

	"currency-ledger-go/internal/store"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// maxTransferAttempts bounds how often a transfer aborted by the engine's
// deadlock detector is run again.
const maxTransferAttempts = 3

// Transfer atomically moves amount of one denomination from sender to
// receiver. Both rows are read in key order inside one transaction, with
// FOR UPDATE where the engine has row locks; SQLite instead holds the
// database write lock from BEGIN IMMEDIATE. A receiver without an account
// is created with zero balances. An attempt the engine aborts as a deadlock
// victim is rolled back and run again. Failures after the transaction
// opened are returned as *store.TransferError.
func (s *Service) Transfer(ctx context.Context, sender, receiver string, denomination store.Denomination, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: transfer amount must be positive, got %s", store.ErrInvalidAmount, amount.String())
	}
	if err := s.checkScale(amount); err != nil {
		return err
	}
	lockQuery, err := queryLockBalances(s.dialect, denomination)
	if err != nil {
		zap.L().Warn("Rejected transfer", zap.String("denomination", string(denomination)))
		return err
	}
	debit, err := buildAdjustBalance(s.dialect, s.scale, sender, denomination, opMinus, amount, store.OverdraftAllow)
	if err != nil {
		return err
	}
	credit, err := buildAdjustBalance(s.dialect, s.scale, receiver, denomination, opPlus, amount, store.OverdraftAllow)
	if err != nil {
		return err
	}

	db, err := s.conn()
	if err != nil {
		return err
	}

	fields := []zap.Field{
		zap.String("sender", sender),
		zap.String("receiver", receiver),
		zap.String("denomination", string(denomination)),
		zap.String("amount", amount.String()),
	}

	for attempt := 1; ; attempt++ {
		err := s.transferOnce(ctx, db, lockQuery, debit, credit, sender, receiver, denomination, amount, fields)
		if err == nil || attempt == maxTransferAttempts || !s.dialect.retryable(err) {
			return err
		}
		zap.L().Warn("Retrying transfer after lock conflict", append(fields, zap.Int("attempt", attempt), zap.Error(err))...)
	}
}

// transferOnce runs one attempt of the protocol in its own transaction.
func (s *Service) transferOnce(ctx context.Context, db *sqlx.DB, lockQuery string, debit, credit statement,
	sender, receiver string, denomination store.Denomination, amount decimal.Decimal, fields []zap.Field) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		zap.L().Error("Failed to begin transfer", append(fields, zap.Error(err))...)
		return &store.TransferError{State: store.StateInit, Err: fmt.Errorf("%w: begin: %w", store.ErrTransactionFailure, err)}
	}
	defer tx.Rollback()

	state := store.StateInit
	fail := func(err error) error {
		if rbErr := tx.Rollback(); rbErr != nil {
			zap.L().Warn("Failed to roll back transfer", append(fields, zap.Error(rbErr))...)
		}
		zap.L().Warn("Transfer rolled back",
			append(fields, zap.Stringer("state", state), zap.Stringer("outcome", store.StateRolledBack), zap.Error(err))...)
		return &store.TransferError{State: state, Err: err}
	}

	balances, err := lockBalances(ctx, tx, lockQuery, sender, receiver)
	if err != nil {
		return fail(fmt.Errorf("%w: lock balances: %w", store.ErrTransactionFailure, err))
	}
	senderBalance, ok := balances[strings.ToLower(sender)]
	if !ok {
		return fail(fmt.Errorf("%w: %s", store.ErrAccountNotFound, sender))
	}
	state = store.StateSenderLocked

	senderBalance = senderBalance.Round(s.scale)
	if senderBalance.LessThan(amount) {
		return fail(fmt.Errorf("%w: %s has %s %s, needs %s",
			store.ErrInsufficientFunds, sender, senderBalance.String(), denomination, amount.String()))
	}
	state = store.StateFundsChecked

	zero := decimal.Zero
	if _, err := tx.ExecContext(ctx, tx.Rebind(s.dialect.insertAccountIfAbsent(s.scale)), receiver, zero, zero, zero, zero); err != nil {
		return fail(fmt.Errorf("%w: ensure receiver: %w", store.ErrTransactionFailure, err))
	}
	state = store.StateReceiverEnsured

	if err := execSingleRow(ctx, tx, debit); err != nil {
		return fail(fmt.Errorf("%w: debit: %w", store.ErrTransactionFailure, err))
	}
	state = store.StateDebited

	if err := execSingleRow(ctx, tx, credit); err != nil {
		return fail(fmt.Errorf("%w: credit: %w", store.ErrTransactionFailure, err))
	}
	state = store.StateCredited

	if err := tx.Commit(); err != nil {
		zap.L().Error("Failed to commit transfer", append(fields, zap.Error(err))...)
		return &store.TransferError{State: state, Err: fmt.Errorf("%w: commit: %w", store.ErrTransactionFailure, err)}
	}

	zap.L().Info("Transfer committed", append(fields, zap.Stringer("state", store.StateCommitted))...)
	return nil
}

// lockBalances returns the locked balances keyed by lower-cased player key.
func lockBalances(ctx context.Context, tx *sqlx.Tx, query, sender, receiver string) (map[string]decimal.Decimal, error) {
	rows, err := tx.QueryxContext(ctx, tx.Rebind(query), sender, receiver)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}()

	balances := make(map[string]decimal.Decimal, 2)
	for rows.Next() {
		var key string
		var balance decimal.Decimal
		if err := rows.Scan(&key, &balance); err != nil {
			return nil, err
		}
		balances[strings.ToLower(key)] = balance
	}
	return balances, rows.Err()
}

func execSingleRow(ctx context.Context, tx *sqlx.Tx, stmt statement) error {
	result, err := tx.ExecContext(ctx, tx.Rebind(stmt.query), stmt.args...)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n != 1 {
		return fmt.Errorf("expected 1 row affected, got %d", n)
	}
	return nil
}
