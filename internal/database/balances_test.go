package database

import (
	"context"
	"errors"
	"testing"

	"currency-ledger-go/internal/store"
)

func TestGetBalance_FractionalAmounts(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	mustEnsure(t, service, alice, "12.34", "0.10", "7", "0")
	assertBalance(t, service, alice, store.Coin, "12.34")
	assertBalance(t, service, alice, store.Copper, "0.1")
	assertBalance(t, service, alice, store.Silver, "7")
	assertBalance(t, service, alice, store.Gold, "0")
}

func TestGetBalance_MissingAccount(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	balance, err := service.GetBalance(context.Background(), alice, store.Coin)
	if !errors.Is(err, store.ErrAccountNotFound) {
		t.Errorf("Expected ErrAccountNotFound, got %v", err)
	}
	if !balance.IsZero() {
		t.Errorf("Expected zero fallback, got %s", balance.String())
	}
}

func TestInvalidDenomination_NoMutation(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()
	ctx := context.Background()

	mustEnsure(t, service, alice, "10", "10", "10", "10")

	if _, err := service.GetBalance(ctx, alice, store.Denomination("platinum")); !errors.Is(err, store.ErrInvalidDenomination) {
		t.Errorf("GetBalance: expected ErrInvalidDenomination, got %v", err)
	}
	if err := service.AdjustBalance(ctx, alice, store.Denomination("platinum"), dec("5")); !errors.Is(err, store.ErrInvalidDenomination) {
		t.Errorf("AdjustBalance: expected ErrInvalidDenomination, got %v", err)
	}
	if err := service.AdjustBalance(ctx, alice, store.Denomination("coin = 0; --"), dec("5")); !errors.Is(err, store.ErrInvalidDenomination) {
		t.Errorf("AdjustBalance: expected ErrInvalidDenomination for injected name, got %v", err)
	}

	account, err := service.GetAccount(ctx, alice)
	if err != nil {
		t.Fatalf("GetAccount failed: %v", err)
	}
	for _, d := range store.Denominations {
		balance, err := d.BalanceOf(account)
		if err != nil {
			t.Fatalf("BalanceOf(%s) failed: %v", d, err)
		}
		if !balance.Equal(dec("10")) {
			t.Errorf("Expected %s to stay 10, got %s", d, balance.String())
		}
	}
}

func TestAdjustBalance_CreditAndDebit(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()
	ctx := context.Background()

	mustEnsure(t, service, alice, "0", "0", "0", "0")

	if err := service.AdjustBalance(ctx, alice, store.Silver, dec("25.75")); err != nil {
		t.Fatalf("Credit failed: %v", err)
	}
	if err := service.AdjustBalance(ctx, alice, store.Silver, dec("-5.25")); err != nil {
		t.Fatalf("Debit failed: %v", err)
	}
	if err := service.AdjustBalance(ctx, alice, store.Silver, dec("0")); err != nil {
		t.Fatalf("Zero delta failed: %v", err)
	}
	assertBalance(t, service, alice, store.Silver, "20.5")
}

func TestAdjustBalance_MissingAccount(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	err := service.AdjustBalance(context.Background(), alice, store.Coin, dec("5"))
	if !errors.Is(err, store.ErrAccountNotFound) {
		t.Errorf("Expected ErrAccountNotFound, got %v", err)
	}
}

func TestAdjustBalance_OverdraftPolicies(t *testing.T) {
	tests := []struct {
		policy   string
		wantErr  error
		expected string
	}{
		{"", store.ErrInsufficientFunds, "10"},
		{"reject", store.ErrInsufficientFunds, "10"},
		{"clamp", nil, "0"},
		{"allow", nil, "-5"},
	}

	for _, tt := range tests {
		name := tt.policy
		if name == "" {
			name = "default"
		}
		t.Run(name, func(t *testing.T) {
			cfg := testSQLiteConfig(t)
			cfg.OverdraftPolicy = tt.policy
			service, cleanup := setupTestDbWithConfig(t, cfg)
			defer cleanup()

			mustEnsure(t, service, alice, "10", "0", "0", "0")
			err := service.AdjustBalance(context.Background(), alice, store.Coin, dec("-15"))
			if tt.wantErr == nil && err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("Expected %v, got %v", tt.wantErr, err)
			}
			assertBalance(t, service, alice, store.Coin, tt.expected)
		})
	}
}

func TestAdjustBalance_ExactDebitToZero(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	mustEnsure(t, service, alice, "10", "0", "0", "0")
	if err := service.AdjustBalance(context.Background(), alice, store.Coin, dec("-10")); err != nil {
		t.Fatalf("Debit of the full balance failed: %v", err)
	}
	assertBalance(t, service, alice, store.Coin, "0")
}

func TestAdjustBalance_DebitReportedBalanceInFull(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()
	ctx := context.Background()

	mustEnsure(t, service, alice, "0.70", "0", "0", "0")

	if err := service.AdjustBalance(ctx, alice, store.Coin, dec("-0.40")); err != nil {
		t.Fatalf("First debit failed: %v", err)
	}
	assertBalance(t, service, alice, store.Coin, "0.3")

	if err := service.AdjustBalance(ctx, alice, store.Coin, dec("-0.30")); err != nil {
		t.Fatalf("Debit of the reported balance failed: %v", err)
	}
	assertBalance(t, service, alice, store.Coin, "0")
	if stored := storedBalance(t, service, alice, store.Coin); stored != 0 {
		t.Errorf("Expected stored balance 0, got %v", stored)
	}
}

func TestAdjustBalance_RepeatedCentsStayExact(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()
	ctx := context.Background()

	mustEnsure(t, service, alice, "0", "0", "0", "0")
	for i := 0; i < 10; i++ {
		if err := service.AdjustBalance(ctx, alice, store.Copper, dec("0.1")); err != nil {
			t.Fatalf("Credit %d failed: %v", i, err)
		}
	}
	if err := service.AdjustBalance(ctx, alice, store.Copper, dec("-1")); err != nil {
		t.Fatalf("Debit of ten credits failed: %v", err)
	}
	if stored := storedBalance(t, service, alice, store.Copper); stored != 0 {
		t.Errorf("Expected stored balance 0, got %v", stored)
	}
}
