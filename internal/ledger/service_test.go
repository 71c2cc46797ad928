package ledger

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"currency-ledger-go/internal/events"
	"currency-ledger-go/internal/models"
	"currency-ledger-go/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	alice = "0B7A5F9E-3C1D-4F6A-9A0E-2D4C8B6E1F01"
	bob   = "5e2c1a7b-8d4f-4b3a-b6c9-7f1e0d2a3b02"
)

type publishedEvent struct {
	topic string
	event any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
	closed bool
}

func (p *recordingPublisher) Publish(_ context.Context, topic string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{topic: topic, event: event})
	return p.err
}

func (p *recordingPublisher) Close() error {
	p.closed = true
	return nil
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func testConfig(t *testing.T) *models.Config {
	t.Helper()
	return &models.Config{
		Database: models.DatabaseConfig{
			Type:         "sqlite",
			SQLite:       models.SQLiteConfig{Path: filepath.Join(t.TempDir(), "ledger.db")},
			Scale:        2,
			MaxOpenConns: 4,
			MaxIdleConns: 2,
			PingTimeout:  5 * time.Second,
			BusyTimeout:  10 * time.Second,
		},
	}
}

func startService(t *testing.T) (*Service, *recordingPublisher) {
	t.Helper()
	pub := &recordingPublisher{}
	svc, err := New(testConfig(t), WithPublisher(pub))
	require.NoError(t, err)
	require.NoError(t, svc.Start(context.Background()))
	t.Cleanup(func() { assert.NoError(t, svc.Close()) })
	return svc, pub
}

func TestNew_FallsBackToSQLite(t *testing.T) {
	cfg := testConfig(t)
	cfg.Database.Type = "cassandra"

	svc, err := New(cfg, WithPublisher(events.NopPublisher{}))
	require.NoError(t, err)
	assert.Equal(t, store.BackendSQLite, svc.Backend())
}

func TestClose_NeverStarted(t *testing.T) {
	pub := &recordingPublisher{}
	svc, err := New(testConfig(t), WithPublisher(pub))
	require.NoError(t, err)

	assert.NoError(t, svc.Close())
	assert.NoError(t, svc.Close())
	assert.True(t, pub.closed)
}

func TestInvalidIdentity(t *testing.T) {
	svc, _ := startService(t)
	ctx := context.Background()

	assert.ErrorIs(t, svc.EnsureAccount(ctx, "steve"), store.ErrInvalidIdentity)
	assert.ErrorIs(t, svc.Transfer(ctx, alice, "not-a-uuid", "coin", dec("1")), store.ErrInvalidIdentity)
	_, err := svc.GetBalance(ctx, "", "coin")
	assert.ErrorIs(t, err, store.ErrInvalidIdentity)
}

func TestKeysAreCanonicalized(t *testing.T) {
	svc, _ := startService(t)
	ctx := context.Background()

	require.NoError(t, svc.EnsureAccountWithBalances(ctx, alice, dec("5"), dec("0"), dec("0"), dec("0")))

	exists, err := svc.AccountExists(ctx, strings.ToLower(alice))
	require.NoError(t, err)
	assert.True(t, exists)

	balance, err := svc.GetBalance(ctx, strings.ToLower(alice), "COIN")
	require.NoError(t, err)
	assert.True(t, balance.Equal(dec("5")))
}

func TestBalances_InitializesMissingAccount(t *testing.T) {
	svc, _ := startService(t)

	account, err := svc.Balances(context.Background(), bob)
	require.NoError(t, err)
	assert.Equal(t, bob, account.PlayerUUID)
	for _, d := range store.Denominations {
		balance, err := d.BalanceOf(account)
		require.NoError(t, err)
		assert.True(t, balance.IsZero(), "%s should start at zero", d)
	}
}

func TestAddSubtract(t *testing.T) {
	svc, _ := startService(t)
	ctx := context.Background()

	require.NoError(t, svc.EnsureAccount(ctx, alice))
	require.NoError(t, svc.Add(ctx, alice, "silver", dec("20")))
	require.NoError(t, svc.Subtract(ctx, alice, "silver", dec("7.5")))

	balance, err := svc.GetBalance(ctx, alice, "silver")
	require.NoError(t, err)
	assert.True(t, balance.Equal(dec("12.5")), "got %s", balance)

	assert.ErrorIs(t, svc.Subtract(ctx, alice, "silver", dec("100")), store.ErrInsufficientFunds)
	assert.ErrorIs(t, svc.Add(ctx, alice, "silver", dec("-1")), store.ErrInvalidAmount)
	assert.ErrorIs(t, svc.Add(ctx, alice, "platinum", dec("1")), store.ErrInvalidDenomination)
}

func TestPay_TransfersRecordsAndPublishes(t *testing.T) {
	svc, pub := startService(t)
	ctx := context.Background()

	require.NoError(t, svc.EnsureAccountWithBalances(ctx, alice, dec("100"), dec("0"), dec("0"), dec("0")))

	record, err := svc.Pay(ctx, alice, bob, "coin", dec("30"), "for the sword")
	require.NoError(t, err)
	assert.Equal(t, "pay", record.Kind)
	assert.Equal(t, strings.ToLower(alice), record.Sender)
	assert.Equal(t, "for the sword", record.Notes)

	from, err := svc.GetBalance(ctx, alice, "coin")
	require.NoError(t, err)
	to, err := svc.GetBalance(ctx, bob, "coin")
	require.NoError(t, err)
	assert.True(t, from.Equal(dec("70")), "sender has %s", from)
	assert.True(t, to.Equal(dec("30")), "receiver has %s", to)

	require.Len(t, pub.events, 2)
	assert.Equal(t, events.TopicTransferCompleted, pub.events[0].topic)
	assert.Equal(t, events.TopicTransactionRecorded, pub.events[1].topic)
	recorded, ok := pub.events[1].event.(events.TransactionRecorded)
	require.True(t, ok)
	assert.Equal(t, record.ID, recorded.TransactionID)
}

func TestPay_InsufficientFundsWritesNothing(t *testing.T) {
	svc, pub := startService(t)
	ctx := context.Background()

	require.NoError(t, svc.EnsureAccountWithBalances(ctx, alice, dec("10"), dec("0"), dec("0"), dec("0")))

	_, err := svc.Pay(ctx, alice, bob, "coin", dec("1000"), "")
	require.ErrorIs(t, err, store.ErrInsufficientFunds)

	var transferErr *store.TransferError
	require.True(t, errors.As(err, &transferErr))
	assert.Equal(t, store.StateSenderLocked, transferErr.State)
	assert.Empty(t, pub.events)
}

func TestPublishFailureDoesNotUndoTransfer(t *testing.T) {
	svc, pub := startService(t)
	pub.err = errors.New("broker down")
	ctx := context.Background()

	require.NoError(t, svc.EnsureAccountWithBalances(ctx, alice, dec("0"), dec("0"), dec("0"), dec("9")))
	require.NoError(t, svc.Transfer(ctx, alice, bob, "gold", dec("4")))

	balance, err := svc.GetBalance(ctx, bob, "gold")
	require.NoError(t, err)
	assert.True(t, balance.Equal(dec("4")))
}

func TestRecordTransaction_RejectsUnknownKind(t *testing.T) {
	svc, _ := startService(t)

	_, err := svc.RecordTransaction(context.Background(), alice, bob, "coin", "theft", dec("1"), "")
	assert.ErrorIs(t, err, store.ErrInvalidTransactionKind)
}

func TestHealthCheck(t *testing.T) {
	svc, err := New(testConfig(t), WithPublisher(events.NopPublisher{}))
	require.NoError(t, err)
	assert.ErrorIs(t, svc.HealthCheck(context.Background()), store.ErrNotConnected)

	require.NoError(t, svc.Start(context.Background()))
	defer svc.Close()
	assert.NoError(t, svc.HealthCheck(context.Background()))
}

type unreachableStore struct {
	store.LedgerStore
}

func (unreachableStore) Backend() store.Backend { return store.BackendMySQL }

func (unreachableStore) Connect(context.Context) error {
	return store.ErrConnectionFailure
}

func (unreachableStore) Disconnect() error { return nil }

func TestStart_ConnectionFailure(t *testing.T) {
	svc, err := New(testConfig(t), WithStore(unreachableStore{}), WithPublisher(events.NopPublisher{}))
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Start(context.Background()), store.ErrConnectionFailure)
	assert.NoError(t, svc.Close())
}
