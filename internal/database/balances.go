package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"currency-ledger-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// GetBalance returns the stored value of one denomination. On any error the
// returned amount is zero.
func (s *Service) GetBalance(ctx context.Context, playerUUID string, denomination store.Denomination) (decimal.Decimal, error) {
	query, err := querySelectBalance(denomination)
	if err != nil {
		zap.L().Warn("Rejected balance lookup", zap.String("denomination", string(denomination)))
		return decimal.Zero, err
	}

	db, err := s.conn()
	if err != nil {
		return decimal.Zero, err
	}

	zap.L().Debug("Getting balance", zap.String("player_uuid", playerUUID), zap.String("denomination", string(denomination)))

	var balance decimal.Decimal
	err = db.QueryRowxContext(ctx, db.Rebind(query), playerUUID).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, fmt.Errorf("%w: %s", store.ErrAccountNotFound, playerUUID)
	}
	if err != nil {
		zap.L().Error("Failed to get balance",
			zap.String("player_uuid", playerUUID),
			zap.String("denomination", string(denomination)),
			zap.Error(err))
		return decimal.Zero, fmt.Errorf("failed to get balance: %w", err)
	}

	return balance.Round(s.scale), nil
}

// AdjustBalance applies balance = balance + delta in a single statement.
// Negative deltas follow the configured overdraft policy.
func (s *Service) AdjustBalance(ctx context.Context, playerUUID string, denomination store.Denomination, delta decimal.Decimal) error {
	if err := s.checkScale(delta); err != nil {
		return err
	}

	op, amount := opPlus, delta
	if delta.IsNegative() {
		op, amount = opMinus, delta.Neg()
	}

	stmt, err := buildAdjustBalance(s.dialect, s.scale, playerUUID, denomination, op, amount, s.policy)
	if err != nil {
		zap.L().Warn("Rejected balance adjustment",
			zap.String("player_uuid", playerUUID),
			zap.String("denomination", string(denomination)),
			zap.Error(err))
		return err
	}

	db, err := s.conn()
	if err != nil {
		return err
	}

	result, err := db.ExecContext(ctx, db.Rebind(stmt.query), stmt.args...)
	if err != nil {
		zap.L().Error("Failed to adjust balance",
			zap.String("player_uuid", playerUUID),
			zap.String("denomination", string(denomination)),
			zap.String("delta", delta.String()),
			zap.Error(err))
		return fmt.Errorf("failed to adjust balance: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected > 0 {
		zap.L().Info("Balance adjusted",
			zap.String("player_uuid", playerUUID),
			zap.String("denomination", string(denomination)),
			zap.String("delta", delta.String()))
		return nil
	}

	// No row matched: either the account is missing or the guarded debit
	// would have overdrawn it.
	exists, err := s.AccountExists(ctx, playerUUID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", store.ErrAccountNotFound, playerUUID)
	}

	zap.L().Warn("Debit rejected, insufficient funds",
		zap.String("player_uuid", playerUUID),
		zap.String("denomination", string(denomination)),
		zap.String("amount", amount.String()))
	return fmt.Errorf("%w: %s %s from %s", store.ErrInsufficientFunds, amount.String(), denomination, playerUUID)
}
