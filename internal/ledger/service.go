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

package ledger

import (
	"context"
	"fmt"
	"sync"

	"currency-ledger-go/internal/database"
	"currency-ledger-go/internal/events"
	"currency-ledger-go/internal/models"
	"currency-ledger-go/internal/store"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Service is the entry point for callers of the ledger. It owns one store
// for its lifetime and validates identity keys, denominations and amounts
// before delegating.
type Service struct {
	store     store.LedgerStore
	publisher events.Publisher

	mu sync.Mutex
}

type Option func(*Service)

// WithPublisher replaces the publisher derived from the events config.
func WithPublisher(p events.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithStore replaces the SQL store selected from the database config.
func WithStore(ls store.LedgerStore) Option {
	return func(s *Service) { s.store = ls }
}

// New selects the backend named by cfg.Database.Type. Unrecognized names
// fall back to SQLite. No connection is made until Start.
func New(cfg *models.Config, opts ...Option) (*Service, error) {
	s := &Service{}
	for _, opt := range opts {
		opt(s)
	}

	if s.store == nil {
		backend, ok := store.ParseBackend(cfg.Database.Type)
		if !ok {
			zap.L().Warn("Unrecognized database type, falling back to sqlite",
				zap.String("type", cfg.Database.Type))
		}
		dbService, err := database.NewService(backend, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to configure %s store: %w", backend, err)
		}
		s.store = dbService
	}
	if s.publisher == nil {
		s.publisher = events.NewPublisher(cfg.Events)
	}
	return s, nil
}

func (s *Service) Backend() store.Backend { return s.store.Backend() }

// Scale is the number of fractional digits amounts are held at.
func (s *Service) Scale() int32 { return s.store.Scale() }

// Start connects the store and ensures its schema.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Connect(ctx); err != nil {
		zap.L().Error("Ledger store unavailable", zap.String("backend", string(s.Backend())), zap.Error(err))
		return err
	}
	if err := s.store.EnsureSchema(ctx); err != nil {
		return err
	}
	zap.L().Info("Ledger service started", zap.String("backend", string(s.Backend())))
	return nil
}

// Close disconnects the store and flushes the publisher. It is safe to call
// on a service that was never started.
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return multierr.Combine(s.store.Disconnect(), s.publisher.Close())
}

// HealthCheck runs a read against the store.
func (s *Service) HealthCheck(ctx context.Context) error {
	if _, err := s.store.AccountExists(ctx, uuid.Nil.String()); err != nil {
		return fmt.Errorf("ledger health check failed: %w", err)
	}
	return nil
}

// canonicalKey parses an identity key and returns its lower-case hyphenated form.
func canonicalKey(key string) (string, error) {
	id, err := uuid.Parse(key)
	if err != nil {
		return "", fmt.Errorf("%w: %q", store.ErrInvalidIdentity, key)
	}
	return id.String(), nil
}

func canonicalPair(sender, receiver string) (string, string, error) {
	from, err := canonicalKey(sender)
	if err != nil {
		return "", "", err
	}
	to, err := canonicalKey(receiver)
	if err != nil {
		return "", "", err
	}
	return from, to, nil
}
