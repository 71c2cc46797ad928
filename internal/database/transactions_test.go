package database

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"currency-ledger-go/internal/store"
)

func TestRecordTransaction(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()
	ctx := context.Background()

	mustEnsure(t, service, alice, "0", "0", "0", "0")
	mustEnsure(t, service, bob, "0", "0", "0", "0")

	before := time.Now().UTC().Add(-time.Minute)
	first, err := service.RecordTransaction(ctx, store.RecordTransactionParams{
		Sender:       alice,
		Receiver:     bob,
		Denomination: store.Gold,
		Kind:         store.KindPay,
		Amount:       dec("12.50"),
		Notes:        "rent",
	})
	if err != nil {
		t.Fatalf("RecordTransaction failed: %v", err)
	}
	second, err := service.RecordTransaction(ctx, store.RecordTransactionParams{
		Sender:       bob,
		Receiver:     alice,
		Denomination: store.Copper,
		Kind:         store.KindRefund,
		Amount:       dec("1"),
	})
	if err != nil {
		t.Fatalf("RecordTransaction failed: %v", err)
	}

	if first.ID <= 0 || second.ID <= first.ID {
		t.Errorf("Expected increasing ids, got %d and %d", first.ID, second.ID)
	}
	if first.Timestamp.Before(before) {
		t.Errorf("Expected server-assigned timestamp, got %v", first.Timestamp)
	}
	if first.Kind != "pay" || first.Denomination != "gold" || first.Notes != "rent" {
		t.Errorf("Unexpected record: %+v", first)
	}

	// Audit records never move balances.
	assertBalance(t, service, alice, store.Gold, "0")
	assertBalance(t, service, bob, store.Gold, "0")
}

func TestRecordTransaction_TruncatesNotes(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	mustEnsure(t, service, alice, "0", "0", "0", "0")
	record, err := service.RecordTransaction(context.Background(), store.RecordTransactionParams{
		Sender:       alice,
		Receiver:     alice,
		Denomination: store.Coin,
		Kind:         store.KindGrant,
		Amount:       dec("3"),
		Notes:        strings.Repeat("é", 300),
	})
	if err != nil {
		t.Fatalf("RecordTransaction failed: %v", err)
	}
	if got := len([]rune(record.Notes)); got != maxNotesLength {
		t.Errorf("Expected notes truncated to %d characters, got %d", maxNotesLength, got)
	}
}

func TestRecordTransaction_Validation(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	valid := store.RecordTransactionParams{
		Sender:       alice,
		Receiver:     bob,
		Denomination: store.Coin,
		Kind:         store.KindPurchase,
		Amount:       dec("1"),
	}

	tests := []struct {
		name    string
		mutate  func(*store.RecordTransactionParams)
		wantErr error
	}{
		{"unknown denomination", func(p *store.RecordTransactionParams) { p.Denomination = "platinum" }, store.ErrInvalidDenomination},
		{"unknown kind", func(p *store.RecordTransactionParams) { p.Kind = "theft" }, store.ErrInvalidTransactionKind},
		{"zero amount", func(p *store.RecordTransactionParams) { p.Amount = dec("0") }, store.ErrInvalidAmount},
		{"excess precision", func(p *store.RecordTransactionParams) { p.Amount = dec("0.125") }, store.ErrInvalidAmount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := valid
			tt.mutate(&params)
			if _, err := service.RecordTransaction(context.Background(), params); !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestRecordTransaction_UnknownAccountRejectedByForeignKey(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	_, err := service.RecordTransaction(context.Background(), store.RecordTransactionParams{
		Sender:       alice,
		Receiver:     bob,
		Denomination: store.Coin,
		Kind:         store.KindPay,
		Amount:       dec("1"),
	})
	if err == nil {
		t.Error("Expected foreign key violation for accounts that do not exist")
	}
}
