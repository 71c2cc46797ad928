package database

import (
	"fmt"
	"strings"

	"currency-ledger-go/internal/models"
	"currency-ledger-go/internal/store"
)

// dialect encapsulates everything that differs between the relational
// engines: driver, DSN, DDL, the insert-if-absent idiom, row locking and
// the scalar functions used for clamping. Statements are written with `?`
// placeholders and rebound by sqlx for the driver in use.
type dialect interface {
	backend() store.Backend
	driverName() string
	dsn() (string, error)
	// schema returns the DDL statements, executed in order.
	schema(scale int32) []string
	// insertAccountIfAbsent takes (player_uuid, coin, copper, silver, gold)
	// and must be a no-op when the primary key already exists.
	insertAccountIfAbsent(scale int32) string
	// lockSuffix is appended to the balance read of a transfer.
	lockSuffix() string
	// amount is the placeholder expression for a bound decimal amount.
	amount(scale int32) string
	// round wraps a balance arithmetic expression so its result is exact at
	// scale fractional digits.
	round(expr string, scale int32) string
	// greatest names the two-argument maximum function.
	greatest() string
	timestampColumn() string
	supportsReturning() bool
	// retryable reports whether err is a lock conflict the engine resolved
	// by aborting this transaction, so running the transfer again is safe.
	retryable(err error) bool
}

func newDialect(backend store.Backend, cfg models.DatabaseConfig) (dialect, error) {
	switch backend {
	case store.BackendSQLite:
		return &sqliteDialect{cfg: cfg.SQLite, busyTimeout: cfg.BusyTimeout}, nil
	case store.BackendMySQL:
		return &mysqlDialect{cfg: cfg.MySQL}, nil
	case store.BackendPostgreSQL:
		return &postgresDialect{cfg: cfg.PostgreSQL}, nil
	}
	return nil, fmt.Errorf("unsupported backend %q", backend)
}

// denominationList renders the allow-list as a SQL literal list for CHECK
// and ENUM definitions.
func denominationList() string {
	quoted := make([]string, len(store.Denominations))
	for i, d := range store.Denominations {
		quoted[i] = "'" + string(d) + "'"
	}
	return strings.Join(quoted, ", ")
}

func transactionKindList() string {
	quoted := make([]string, len(store.TransactionKinds))
	for i, k := range store.TransactionKinds {
		quoted[i] = "'" + string(k) + "'"
	}
	return strings.Join(quoted, ", ")
}

func decimalType(scale int32) string {
	return fmt.Sprintf("DECIMAL(19,%d)", scale)
}
