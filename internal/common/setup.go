package common

import (
	"context"
	"log"
	"strings"

	"currency-ledger-go/internal/ledger"
	"currency-ledger-go/internal/models"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// init loads environment variables from .env file if it exists
func init() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Note: No .env file found or unable to load it: %v\n", err)
	} else {
		log.Println("✓ Loaded environment variables from .env file")
	}
}

func InitializeLogger() (*zap.Logger, func()) {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	zap.ReplaceGlobals(logger)

	cleanup := func() {
		if err := logger.Sync(); err != nil {
			if !isIgnorableSyncError(err) {
				log.Printf("Failed to sync logger: %v\n", err)
			}
		}
	}

	return logger, cleanup
}

// InitializeLedger builds the ledger service for cfg and starts it. The
// caller owns the returned service and must Close it.
func InitializeLedger(ctx context.Context, cfg *models.Config) (*ledger.Service, error) {
	svc, err := ledger.New(cfg)
	if err != nil {
		return nil, err
	}
	if err := svc.Start(ctx); err != nil {
		if closeErr := svc.Close(); closeErr != nil {
			zap.L().Warn("Failed to close ledger after failed start", zap.Error(closeErr))
		}
		return nil, err
	}
	return svc, nil
}

func isIgnorableSyncError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "sync /dev/stderr: inappropriate ioctl for device") ||
		strings.Contains(msg, "sync /dev/stdout: inappropriate ioctl for device")
}
