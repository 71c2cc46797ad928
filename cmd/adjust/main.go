package main

import (
	"context"
	"flag"
	"fmt"

	"currency-ledger-go/internal/common"
	"currency-ledger-go/internal/config"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	playerFlag := flag.String("player", "", "Player UUID (required)")
	denominationFlag := flag.String("denomination", "coin", "coin, copper, silver or gold")
	amountFlag := flag.String("amount", "", "Positive amount (required)")
	minusFlag := flag.Bool("minus", false, "Subtract instead of add")
	flag.Parse()

	if *playerFlag == "" || *amountFlag == "" {
		logger.Fatal("Missing required flags", zap.String("usage", "adjust -player <uuid> -amount <n> [-denomination coin] [-minus]"))
	}
	amount, err := decimal.NewFromString(*amountFlag)
	if err != nil {
		logger.Fatal("Invalid amount", zap.String("amount", *amountFlag), zap.Error(err))
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

	if err := svc.EnsureAccount(ctx, *playerFlag); err != nil {
		logger.Error("Failed to ensure account", zap.Error(err))
		return
	}

	verb := "Added"
	if *minusFlag {
		verb = "Subtracted"
		err = svc.Subtract(ctx, *playerFlag, *denominationFlag, amount)
	} else {
		err = svc.Add(ctx, *playerFlag, *denominationFlag, amount)
	}
	if err != nil {
		logger.Error("Adjustment failed", zap.Error(err))
		return
	}

	balance, err := svc.GetBalance(ctx, *playerFlag, *denominationFlag)
	if err != nil {
		logger.Error("Failed to read balance", zap.Error(err))
		return
	}
	fmt.Printf("%s %s %s, new balance %s\n", verb, amount.String(), *denominationFlag, balance.StringFixed(svc.Scale()))
}
