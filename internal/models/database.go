package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account represents the per-identity row holding all four denomination balances
type Account struct {
	PlayerUUID string          `db:"player_uuid"`
	Coin       decimal.Decimal `db:"coin"`
	Copper     decimal.Decimal `db:"copper"`
	Silver     decimal.Decimal `db:"silver"`
	Gold       decimal.Decimal `db:"gold"`
}

// TransactionRecord represents an append-only audit entry
type TransactionRecord struct {
	ID           int64           `db:"transaction_id"`
	Sender       string          `db:"player_uuid_sender"`
	Receiver     string          `db:"player_uuid_receiver"`
	Denomination string          `db:"currency_type"`
	Kind         string          `db:"transaction_type"`
	Amount       decimal.Decimal `db:"amount"`
	Timestamp    time.Time       `db:"timestamp"`
	Notes        string          `db:"notes"`
}
