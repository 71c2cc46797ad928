package main

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"currency-ledger-go/internal/common"
	"currency-ledger-go/internal/config"
	"currency-ledger-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	fromFlag := flag.String("from", "", "Sender UUID (required)")
	toFlag := flag.String("to", "", "Receiver UUID (required)")
	denominationFlag := flag.String("denomination", "coin", "coin, copper, silver or gold")
	amountFlag := flag.String("amount", "", "Positive amount (required)")
	notesFlag := flag.String("notes", "", "Free-form notes stored with the payment")
	flag.Parse()

	if *fromFlag == "" || *toFlag == "" || *amountFlag == "" {
		logger.Fatal("Missing required flags", zap.String("usage", "pay -from <uuid> -to <uuid> -amount <n> [-denomination coin] [-notes text]"))
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

	record, err := svc.Pay(ctx, *fromFlag, *toFlag, *denominationFlag, amount, *notesFlag)
	switch {
	case errors.Is(err, store.ErrInsufficientFunds):
		fmt.Printf("Payment declined: sender does not have %s %s\n", amount.String(), *denominationFlag)
		return
	case errors.Is(err, store.ErrAccountNotFound):
		fmt.Println("Payment declined: sender has no account")
		return
	case err != nil:
		logger.Error("Payment failed", zap.Error(err))
		return
	}

	common.PrintHeader("PAYMENT COMPLETE", common.DefaultWidth)
	fmt.Printf("Transaction: %d\n", record.ID)
	fmt.Printf("From:        %s\n", record.Sender)
	fmt.Printf("To:          %s\n", record.Receiver)
	fmt.Printf("Amount:      %s %s\n", record.Amount.StringFixed(svc.Scale()), record.Denomination)
	fmt.Printf("Time:        %s\n", record.Timestamp.Format("2006-01-02 15:04:05"))
	common.PrintSeparator("=", common.DefaultWidth)
}
