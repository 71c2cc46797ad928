package database

import (
	"fmt"
	"time"

	"currency-ledger-go/internal/models"
	"currency-ledger-go/internal/store"

	_ "github.com/mattn/go-sqlite3"
)

const defaultBusyTimeout = 5 * time.Second

// sqliteDialect targets the embedded single-file engine. SQLite admits one
// writer at a time, so transfers open their transaction with BEGIN IMMEDIATE
// (_txlock=immediate) and hold the database write lock for the whole
// protocol instead of locking rows.
type sqliteDialect struct {
	cfg         models.SQLiteConfig
	busyTimeout time.Duration
}

func (d *sqliteDialect) backend() store.Backend { return store.BackendSQLite }

func (d *sqliteDialect) driverName() string { return "sqlite3" }

func (d *sqliteDialect) dsn() (string, error) {
	if d.cfg.Path == "" {
		return "", fmt.Errorf("sqlite path cannot be empty")
	}
	timeout := d.busyTimeout
	if timeout <= 0 {
		timeout = defaultBusyTimeout
	}
	return fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=%d&_txlock=immediate&_foreign_keys=on",
		d.cfg.Path, timeout.Milliseconds()), nil
}

func (d *sqliteDialect) inMemory() bool {
	return d.cfg.Path == ":memory:" || d.cfg.Path == "file::memory:"
}

func (d *sqliteDialect) schema(scale int32) []string {
	num := decimalType(scale)
	return []string{
		`CREATE TABLE IF NOT EXISTS currency (
			player_uuid VARCHAR(36) PRIMARY KEY NOT NULL,
			coin ` + num + ` NOT NULL DEFAULT 0,
			copper ` + num + ` NOT NULL DEFAULT 0,
			silver ` + num + ` NOT NULL DEFAULT 0,
			gold ` + num + ` NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS currency_transaction (
			transaction_id INTEGER PRIMARY KEY AUTOINCREMENT,
			player_uuid_sender VARCHAR(36) NOT NULL REFERENCES currency(player_uuid),
			player_uuid_receiver VARCHAR(36) NOT NULL REFERENCES currency(player_uuid),
			currency_type TEXT NOT NULL CHECK (currency_type IN (` + denominationList() + `)),
			transaction_type TEXT NOT NULL CHECK (transaction_type IN (` + transactionKindList() + `)),
			amount ` + num + ` NOT NULL,
			"timestamp" TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			notes VARCHAR(255)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_currency_transaction_sender ON currency_transaction(player_uuid_sender)`,
		`CREATE INDEX IF NOT EXISTS idx_currency_transaction_receiver ON currency_transaction(player_uuid_receiver)`,
	}
}

func (d *sqliteDialect) insertAccountIfAbsent(_ int32) string {
	return `INSERT INTO currency (player_uuid, coin, copper, silver, gold)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (player_uuid) DO NOTHING`
}

func (d *sqliteDialect) lockSuffix() string { return "" }

func (d *sqliteDialect) amount(_ int32) string { return "?" }

// DECIMAL columns have NUMERIC affinity and hold REAL values. Every result is
// rounded so the stored value stays the nearest double to a scale-digit decimal.
func (d *sqliteDialect) round(expr string, scale int32) string {
	return fmt.Sprintf("ROUND(%s, %d)", expr, scale)
}

func (d *sqliteDialect) greatest() string { return "MAX" }

func (d *sqliteDialect) timestampColumn() string { return `"timestamp"` }

// supportsReturning is false: RETURNING columns carry no declared type, so the
// driver would hand back the timestamp as text.
func (d *sqliteDialect) supportsReturning() bool { return false }

// retryable is false: BEGIN IMMEDIATE serializes writers and the busy timeout
// already waits for the lock.
func (d *sqliteDialect) retryable(error) bool { return false }
