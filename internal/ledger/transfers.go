package ledger

import (
	"context"
	"fmt"
	"time"

	"currency-ledger-go/internal/events"
	"currency-ledger-go/internal/models"
	"currency-ledger-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Transfer moves amount of one denomination between two accounts. The
// receiver is created if missing. No audit record is written; see Pay.
func (s *Service) Transfer(ctx context.Context, sender, receiver, denomination string, amount decimal.Decimal) error {
	from, to, err := canonicalPair(sender, receiver)
	if err != nil {
		return err
	}
	d, err := store.ParseDenomination(denomination)
	if err != nil {
		return err
	}

	if err := s.store.Transfer(ctx, from, to, d, amount); err != nil {
		return err
	}

	s.publish(ctx, events.TopicTransferCompleted, events.TransferCompleted{
		Sender:       from,
		Receiver:     to,
		Denomination: string(d),
		Amount:       amount,
		OccurredAt:   time.Now().UTC(),
	})
	return nil
}

// RecordTransaction appends an audit record without moving balances.
func (s *Service) RecordTransaction(ctx context.Context, sender, receiver, denomination, kind string,
	amount decimal.Decimal, notes string) (*models.TransactionRecord, error) {
	from, to, err := canonicalPair(sender, receiver)
	if err != nil {
		return nil, err
	}
	d, err := store.ParseDenomination(denomination)
	if err != nil {
		return nil, err
	}
	k, err := store.ParseTransactionKind(kind)
	if err != nil {
		return nil, err
	}

	record, err := s.store.RecordTransaction(ctx, store.RecordTransactionParams{
		Sender:       from,
		Receiver:     to,
		Denomination: d,
		Kind:         k,
		Amount:       amount,
		Notes:        notes,
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.TopicTransactionRecorded, events.TransactionRecorded{
		TransactionID: record.ID,
		Sender:        record.Sender,
		Receiver:      record.Receiver,
		Denomination:  record.Denomination,
		Kind:          record.Kind,
		Amount:        record.Amount,
		Notes:         record.Notes,
		Timestamp:     record.Timestamp,
	})
	return record, nil
}

// Pay transfers amount and, once the transfer committed, records it with
// kind "pay". If only the record fails the transfer stands and the error
// says so.
func (s *Service) Pay(ctx context.Context, sender, receiver, denomination string,
	amount decimal.Decimal, notes string) (*models.TransactionRecord, error) {
	if err := s.Transfer(ctx, sender, receiver, denomination, amount); err != nil {
		return nil, err
	}

	record, err := s.RecordTransaction(ctx, sender, receiver, denomination, string(store.KindPay), amount, notes)
	if err != nil {
		zap.L().Error("Payment committed but audit record failed",
			zap.String("sender", sender),
			zap.String("receiver", receiver),
			zap.String("denomination", denomination),
			zap.String("amount", amount.String()),
			zap.Error(err))
		return nil, fmt.Errorf("payment committed, audit record failed: %w", err)
	}
	return record, nil
}

func (s *Service) publish(ctx context.Context, topic string, event any) {
	if err := s.publisher.Publish(ctx, topic, event); err != nil {
		zap.L().Warn("Failed to publish ledger event", zap.String("topic", topic), zap.Error(err))
	}
}
