package database

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"

	"currency-ledger-go/internal/models"
	"currency-ledger-go/internal/store"

	"github.com/lib/pq"
)

// postgresDialect targets PostgreSQL. Account keys use the native UUID type.
type postgresDialect struct {
	cfg models.ServerConfig
}

func (d *postgresDialect) backend() store.Backend { return store.BackendPostgreSQL }

func (d *postgresDialect) driverName() string { return "postgres" }

func (d *postgresDialect) dsn() (string, error) {
	if d.cfg.Host == "" || d.cfg.Name == "" {
		return "", fmt.Errorf("postgresql host and database name are required")
	}
	sslMode := "disable"
	if d.cfg.SSL {
		sslMode = "require"
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.cfg.User, d.cfg.Password),
		Host:     net.JoinHostPort(d.cfg.Host, strconv.Itoa(d.cfg.Port)),
		Path:     "/" + d.cfg.Name,
		RawQuery: url.Values{"sslmode": []string{sslMode}}.Encode(),
	}
	return u.String(), nil
}

func (d *postgresDialect) schema(scale int32) []string {
	num := fmt.Sprintf("NUMERIC(19,%d)", scale)
	return []string{
		`CREATE TABLE IF NOT EXISTS currency (
			player_uuid UUID PRIMARY KEY,
			coin ` + num + ` NOT NULL DEFAULT 0,
			copper ` + num + ` NOT NULL DEFAULT 0,
			silver ` + num + ` NOT NULL DEFAULT 0,
			gold ` + num + ` NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS currency_transaction (
			transaction_id BIGSERIAL PRIMARY KEY,
			player_uuid_sender UUID NOT NULL REFERENCES currency(player_uuid),
			player_uuid_receiver UUID NOT NULL REFERENCES currency(player_uuid),
			currency_type VARCHAR(10) NOT NULL CHECK (currency_type IN (` + denominationList() + `)),
			transaction_type VARCHAR(10) NOT NULL CHECK (transaction_type IN (` + transactionKindList() + `)),
			amount ` + num + ` NOT NULL,
			"timestamp" TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			notes VARCHAR(255)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_currency_transaction_sender ON currency_transaction(player_uuid_sender)`,
		`CREATE INDEX IF NOT EXISTS idx_currency_transaction_receiver ON currency_transaction(player_uuid_receiver)`,
	}
}

func (d *postgresDialect) insertAccountIfAbsent(scale int32) string {
	return "INSERT INTO currency (player_uuid, coin, copper, silver, gold) VALUES (?, " +
		d.amount(scale) + ", " + d.amount(scale) + ", " + d.amount(scale) + ", " + d.amount(scale) + ") " +
		"ON CONFLICT (player_uuid) DO NOTHING"
}

func (d *postgresDialect) lockSuffix() string { return " FOR UPDATE" }

func (d *postgresDialect) amount(scale int32) string {
	return fmt.Sprintf("CAST(? AS NUMERIC(19,%d))", scale)
}

func (d *postgresDialect) round(expr string, _ int32) string { return expr }

func (d *postgresDialect) greatest() string { return "GREATEST" }

func (d *postgresDialect) timestampColumn() string { return `"timestamp"` }

func (d *postgresDialect) supportsReturning() bool { return true }

func (d *postgresDialect) retryable(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "40P01" // deadlock_detected
}
