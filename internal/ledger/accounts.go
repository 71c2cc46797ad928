package ledger

import (
	"context"
	"fmt"

	"currency-ledger-go/internal/models"
	"currency-ledger-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// EnsureAccount creates the account with zero balances if it does not exist.
func (s *Service) EnsureAccount(ctx context.Context, key string) error {
	return s.EnsureAccountWithBalances(ctx, key, decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero)
}

// EnsureAccountWithBalances creates the account with the given opening
// balances. An existing account is left untouched.
func (s *Service) EnsureAccountWithBalances(ctx context.Context, key string, coin, copper, silver, gold decimal.Decimal) error {
	id, err := canonicalKey(key)
	if err != nil {
		return err
	}
	for _, v := range []decimal.Decimal{coin, copper, silver, gold} {
		if v.IsNegative() {
			return fmt.Errorf("%w: opening balance cannot be negative, got %s", store.ErrInvalidAmount, v.String())
		}
	}
	return s.store.EnsureAccount(ctx, id, coin, copper, silver, gold)
}

func (s *Service) AccountExists(ctx context.Context, key string) (bool, error) {
	id, err := canonicalKey(key)
	if err != nil {
		return false, err
	}
	return s.store.AccountExists(ctx, id)
}

// GetBalance returns one denomination of the account. On error the amount
// is zero.
func (s *Service) GetBalance(ctx context.Context, key, denomination string) (decimal.Decimal, error) {
	id, err := canonicalKey(key)
	if err != nil {
		return decimal.Zero, err
	}
	d, err := store.ParseDenomination(denomination)
	if err != nil {
		return decimal.Zero, err
	}
	return s.store.GetBalance(ctx, id, d)
}

// Balances initializes a missing account and returns all four balances.
func (s *Service) Balances(ctx context.Context, key string) (*models.Account, error) {
	id, err := canonicalKey(key)
	if err != nil {
		return nil, err
	}
	if err := s.store.EnsureAccount(ctx, id, decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero); err != nil {
		return nil, err
	}
	return s.store.GetAccount(ctx, id)
}

// AdjustBalance applies a signed delta to one denomination. Debits follow
// the store's overdraft policy.
func (s *Service) AdjustBalance(ctx context.Context, key, denomination string, delta decimal.Decimal) error {
	id, err := canonicalKey(key)
	if err != nil {
		return err
	}
	d, err := store.ParseDenomination(denomination)
	if err != nil {
		return err
	}
	if err := s.store.AdjustBalance(ctx, id, d, delta); err != nil {
		zap.L().Warn("Balance adjustment failed",
			zap.String("player_uuid", id),
			zap.String("denomination", string(d)),
			zap.String("delta", delta.String()),
			zap.Error(err))
		return err
	}
	return nil
}

// Add credits a positive amount.
func (s *Service) Add(ctx context.Context, key, denomination string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive, got %s", store.ErrInvalidAmount, amount.String())
	}
	return s.AdjustBalance(ctx, key, denomination, amount)
}

// Subtract debits a positive amount.
func (s *Service) Subtract(ctx context.Context, key, denomination string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive, got %s", store.ErrInvalidAmount, amount.String())
	}
	return s.AdjustBalance(ctx, key, denomination, amount.Neg())
}
