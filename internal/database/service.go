/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"currency-ledger-go/internal/models"
	"currency-ledger-go/internal/store"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Compile-time check: *Service must satisfy store.LedgerStore.
var _ store.LedgerStore = (*Service)(nil)

const (
	maxScale           = 8
	defaultPingTimeout = 5 * time.Second
)

// Service implements store.LedgerStore on top of a relational engine. The
// engine specific SQL lives in the dialect; the protocol is shared.
type Service struct {
	mu      sync.RWMutex
	db      *sqlx.DB
	dialect dialect
	cfg     models.DatabaseConfig
	scale   int32
	policy  store.OverdraftPolicy
}

// NewService validates the configuration for backend. It does not open a
// connection; call Connect.
func NewService(backend store.Backend, cfg models.DatabaseConfig) (*Service, error) {
	if cfg.MaxOpenConns < 0 {
		return nil, fmt.Errorf("max open connections cannot be negative, got %d", cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns < 0 {
		return nil, fmt.Errorf("max idle connections cannot be negative, got %d", cfg.MaxIdleConns)
	}
	if cfg.Scale < 0 || cfg.Scale > maxScale {
		return nil, fmt.Errorf("scale must be between 0 and %d, got %d", maxScale, cfg.Scale)
	}
	policy, err := store.ParseOverdraftPolicy(cfg.OverdraftPolicy)
	if err != nil {
		return nil, err
	}

	d, err := newDialect(backend, cfg)
	if err != nil {
		return nil, err
	}
	if _, err := d.dsn(); err != nil {
		return nil, fmt.Errorf("invalid %s configuration: %w", backend, err)
	}

	return &Service{dialect: d, cfg: cfg, scale: cfg.Scale, policy: policy}, nil
}

func (s *Service) Backend() store.Backend { return s.dialect.backend() }

// Scale is the number of fractional digits amounts are stored with.
func (s *Service) Scale() int32 { return s.scale }

func (s *Service) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return nil
	}

	dsn, err := s.dialect.dsn()
	if err != nil {
		return err
	}

	zap.L().Info("Opening ledger database", zap.String("backend", string(s.Backend())))
	db, err := sqlx.Open(s.dialect.driverName(), dsn)
	if err != nil {
		return fmt.Errorf("%w: unable to open database: %v", store.ErrConnectionFailure, err)
	}

	if s.cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(s.cfg.MaxOpenConns)
	}
	db.SetMaxIdleConns(s.cfg.MaxIdleConns)
	db.SetConnMaxLifetime(s.cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(s.cfg.ConnMaxIdleTime)
	if sd, ok := s.dialect.(*sqliteDialect); ok && sd.inMemory() {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	pingTimeout := s.cfg.PingTimeout
	if pingTimeout <= 0 {
		pingTimeout = defaultPingTimeout
	}
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			zap.L().Warn("Failed to close database after failed ping", zap.Error(closeErr))
		}
		zap.L().Error("Failed to connect to ledger database",
			zap.String("backend", string(s.Backend())), zap.Error(err))
		return fmt.Errorf("%w: unable to ping database: %v", store.ErrConnectionFailure, err)
	}

	s.db = db
	zap.L().Info("Connected to ledger database", zap.String("backend", string(s.Backend())))
	return nil
}

func (s *Service) EnsureSchema(ctx context.Context) error {
	db, err := s.conn()
	if err != nil {
		return err
	}

	for _, stmt := range s.dialect.schema(s.scale) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			zap.L().Error("Failed to create ledger schema", zap.String("backend", string(s.Backend())), zap.Error(err))
			return fmt.Errorf("unable to initialize schema: %w", err)
		}
	}

	zap.L().Info("Ledger schema ensured", zap.String("backend", string(s.Backend())))
	return nil
}

func (s *Service) Disconnect() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	if err != nil {
		zap.L().Warn("Failed to close database connection", zap.Error(err))
		return err
	}
	zap.L().Info("Disconnected from ledger database", zap.String("backend", string(s.Backend())))
	return nil
}

func (s *Service) conn() (*sqlx.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return nil, store.ErrNotConnected
	}
	return s.db, nil
}

func (s *Service) AccountExists(ctx context.Context, playerUUID string) (bool, error) {
	db, err := s.conn()
	if err != nil {
		return false, err
	}

	var count int
	if err := db.GetContext(ctx, &count, db.Rebind(queryAccountExists), playerUUID); err != nil {
		zap.L().Error("Failed to check account existence", zap.String("player_uuid", playerUUID), zap.Error(err))
		return false, fmt.Errorf("unable to check account existence: %w", err)
	}
	return count > 0, nil
}

func (s *Service) EnsureAccount(ctx context.Context, playerUUID string, coin, copper, silver, gold decimal.Decimal) error {
	for _, v := range []decimal.Decimal{coin, copper, silver, gold} {
		if err := s.checkScale(v); err != nil {
			return err
		}
	}

	db, err := s.conn()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, db.Rebind(s.dialect.insertAccountIfAbsent(s.scale)), playerUUID, coin, copper, silver, gold)
	if err != nil {
		zap.L().Error("Failed to ensure account", zap.String("player_uuid", playerUUID), zap.Error(err))
		return fmt.Errorf("unable to ensure account: %w", err)
	}
	return nil
}

func (s *Service) GetAccount(ctx context.Context, playerUUID string) (*models.Account, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	var account models.Account
	err = db.QueryRowxContext(ctx, db.Rebind(queryGetAccount), playerUUID).Scan(
		&account.PlayerUUID, &account.Coin, &account.Copper, &account.Silver, &account.Gold)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", store.ErrAccountNotFound, playerUUID)
		}
		zap.L().Error("Failed to query account", zap.String("player_uuid", playerUUID), zap.Error(err))
		return nil, fmt.Errorf("unable to query account: %w", err)
	}

	account.Coin = account.Coin.Round(s.scale)
	account.Copper = account.Copper.Round(s.scale)
	account.Silver = account.Silver.Round(s.scale)
	account.Gold = account.Gold.Round(s.scale)
	return &account, nil
}

// checkScale rejects amounts with more fractional digits than the column holds.
func (s *Service) checkScale(amount decimal.Decimal) error {
	if !amount.Equal(amount.Truncate(s.scale)) {
		return fmt.Errorf("%w: %s has more than %d decimal places", store.ErrInvalidAmount, amount.String(), s.scale)
	}
	return nil
}
