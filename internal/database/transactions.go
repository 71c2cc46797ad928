package database

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"currency-ledger-go/internal/models"
	"currency-ledger-go/internal/store"

	"go.uber.org/zap"
)

const maxNotesLength = 255

// RecordTransaction appends an audit record. It does not touch balances.
func (s *Service) RecordTransaction(ctx context.Context, params store.RecordTransactionParams) (*models.TransactionRecord, error) {
	if !params.Denomination.Valid() {
		zap.L().Warn("Rejected transaction record", zap.String("denomination", string(params.Denomination)))
		return nil, fmt.Errorf("%w: %q", store.ErrInvalidDenomination, params.Denomination)
	}
	if !params.Kind.Valid() {
		zap.L().Warn("Rejected transaction record", zap.String("kind", string(params.Kind)))
		return nil, fmt.Errorf("%w: %q", store.ErrInvalidTransactionKind, params.Kind)
	}
	if !params.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive, got %s", store.ErrInvalidAmount, params.Amount.String())
	}
	if err := s.checkScale(params.Amount); err != nil {
		return nil, err
	}

	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	record := &models.TransactionRecord{
		Sender:       params.Sender,
		Receiver:     params.Receiver,
		Denomination: string(params.Denomination),
		Kind:         string(params.Kind),
		Amount:       params.Amount,
		Notes:        truncateNotes(params.Notes),
	}
	args := []any{record.Sender, record.Receiver, record.Denomination, record.Kind, record.Amount, record.Notes}
	insert := buildInsertTransaction(s.dialect, s.scale)

	if s.dialect.supportsReturning() {
		query := insert + " RETURNING transaction_id, " + s.dialect.timestampColumn()
		if err := db.QueryRowxContext(ctx, db.Rebind(query), args...).Scan(&record.ID, &record.Timestamp); err != nil {
			zap.L().Error("Failed to record transaction", zap.String("sender", record.Sender), zap.Error(err))
			return nil, fmt.Errorf("failed to insert transaction: %w", err)
		}
	} else {
		result, err := db.ExecContext(ctx, db.Rebind(insert), args...)
		if err != nil {
			zap.L().Error("Failed to record transaction", zap.String("sender", record.Sender), zap.Error(err))
			return nil, fmt.Errorf("failed to insert transaction: %w", err)
		}
		if record.ID, err = result.LastInsertId(); err != nil {
			return nil, fmt.Errorf("failed to read transaction id: %w", err)
		}
		query := fmt.Sprintf(queryGetTransactionTimestamp, s.dialect.timestampColumn())
		if err := db.GetContext(ctx, &record.Timestamp, db.Rebind(query), record.ID); err != nil {
			return nil, fmt.Errorf("failed to read transaction timestamp: %w", err)
		}
	}
	record.Timestamp = record.Timestamp.In(time.UTC)

	zap.L().Info("Transaction recorded",
		zap.Int64("transaction_id", record.ID),
		zap.String("sender", record.Sender),
		zap.String("receiver", record.Receiver),
		zap.String("denomination", record.Denomination),
		zap.String("kind", record.Kind),
		zap.String("amount", record.Amount.String()))
	return record, nil
}

func truncateNotes(notes string) string {
	if utf8.RuneCountInString(notes) <= maxNotesLength {
		return notes
	}
	return string([]rune(notes)[:maxNotesLength])
}
