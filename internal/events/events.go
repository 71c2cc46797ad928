package events

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

const (
	TopicTransferCompleted   = "transfer_completed"
	TopicTransactionRecorded = "transaction_recorded"
)

// Publisher delivers ledger events to downstream consumers. Publication is
// best effort: a ledger mutation is never undone because its event failed.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}

// Keyed events are partitioned by their key so all events for one account
// stay ordered.
type Keyed interface {
	EventKey() string
}

// TransferCompleted is emitted after a transfer committed.
type TransferCompleted struct {
	Sender       string          `json:"sender"`
	Receiver     string          `json:"receiver"`
	Denomination string          `json:"denomination"`
	Amount       decimal.Decimal `json:"amount"`
	OccurredAt   time.Time       `json:"occurred_at"`
}

func (e TransferCompleted) EventKey() string { return e.Sender }

// TransactionRecorded is emitted after an audit record was stored.
type TransactionRecorded struct {
	TransactionID int64           `json:"transaction_id"`
	Sender        string          `json:"sender"`
	Receiver      string          `json:"receiver"`
	Denomination  string          `json:"denomination"`
	Kind          string          `json:"kind"`
	Amount        decimal.Decimal `json:"amount"`
	Notes         string          `json:"notes,omitempty"`
	Timestamp     time.Time       `json:"timestamp"`
}

func (e TransactionRecorded) EventKey() string { return e.Sender }

// NopPublisher discards every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, any) error { return nil }

func (NopPublisher) Close() error { return nil }
