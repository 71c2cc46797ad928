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

package main

import (
	"context"
	"flag"
	"fmt"

	"currency-ledger-go/internal/common"
	"currency-ledger-go/internal/config"
	"currency-ledger-go/internal/ledger"

	"go.uber.org/zap"
)

func seedAccounts(ctx context.Context, svc *ledger.Service, seedFile string) (int, error) {
	zap.L().Info("Loading seed accounts", zap.String("file", seedFile))
	accounts, err := common.LoadSeedAccounts(seedFile)
	if err != nil {
		return 0, err
	}

	for _, account := range accounts {
		coin, copper, silver, gold, err := account.OpeningBalances()
		if err != nil {
			return 0, err
		}
		if err := svc.EnsureAccountWithBalances(ctx, account.Player, coin, copper, silver, gold); err != nil {
			return 0, fmt.Errorf("failed to seed %s: %w", account.Player, err)
		}
		zap.L().Info("Seeded account", zap.String("player_uuid", account.Player))
	}
	return len(accounts), nil
}

func main() {
	ctx := context.Background()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	seedFlag := flag.String("seed", "", "YAML file of accounts to create with opening balances (optional)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	logger.Info("Initializing ledger schema", zap.String("type", cfg.Database.Type))
	svc, err := common.InitializeLedger(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize ledger", zap.Error(err))
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.Warn("Failed to close ledger", zap.Error(err))
		}
	}()

	seeded := 0
	if *seedFlag != "" {
		if seeded, err = seedAccounts(ctx, svc, *seedFlag); err != nil {
			logger.Error("Seeding failed", zap.Error(err))
			return
		}
	}

	common.PrintFooter(fmt.Sprintf("Ledger ready on %s (%d accounts seeded)", svc.Backend(), seeded), common.DefaultWidth)
}
