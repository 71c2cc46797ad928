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
	"os"

	"currency-ledger-go/internal/common"
	"currency-ledger-go/internal/config"

	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	playerFlag := flag.String("player", "", "Player UUID (required)")
	flag.Parse()

	if *playerFlag == "" {
		logger.Fatal("Missing required -player flag")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	svc, err := common.InitializeLedger(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize ledger", zap.Error(err))
	}
	defer svc.Close()

	account, err := svc.Balances(ctx, *playerFlag)
	if err != nil {
		logger.Error("Failed to read balances", zap.String("player_uuid", *playerFlag), zap.Error(err))
		return
	}

	common.PrintHeader("PLAYER BALANCES", common.DefaultWidth)
	if err := common.WriteAccount(os.Stdout, account, svc.Scale()); err != nil {
		logger.Error("Failed to write balances", zap.Error(err))
		return
	}
	common.PrintSeparator("=", common.DefaultWidth)
}
