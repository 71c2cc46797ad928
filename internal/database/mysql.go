package database

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"currency-ledger-go/internal/models"
	"currency-ledger-go/internal/store"

	"github.com/go-sql-driver/mysql"
)

// mysqlDialect targets MySQL/MariaDB with InnoDB row locks.
type mysqlDialect struct {
	cfg models.ServerConfig
}

func (d *mysqlDialect) backend() store.Backend { return store.BackendMySQL }

func (d *mysqlDialect) driverName() string { return "mysql" }

func (d *mysqlDialect) dsn() (string, error) {
	if d.cfg.Host == "" || d.cfg.Name == "" {
		return "", fmt.Errorf("mysql host and database name are required")
	}
	cfg := mysql.NewConfig()
	cfg.User = d.cfg.User
	cfg.Passwd = d.cfg.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(d.cfg.Host, strconv.Itoa(d.cfg.Port))
	cfg.DBName = d.cfg.Name
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	// Report matched rather than changed rows so a zero delta on an
	// existing account is not mistaken for a missing one.
	cfg.ClientFoundRows = true
	if d.cfg.SSL {
		cfg.TLSConfig = "true"
	} else {
		cfg.TLSConfig = "false"
	}
	return cfg.FormatDSN(), nil
}

func (d *mysqlDialect) schema(scale int32) []string {
	num := decimalType(scale)
	return []string{
		"CREATE TABLE IF NOT EXISTS currency (" +
			"player_uuid VARCHAR(36) NOT NULL PRIMARY KEY," +
			"coin " + num + " NOT NULL DEFAULT 0," +
			"copper " + num + " NOT NULL DEFAULT 0," +
			"silver " + num + " NOT NULL DEFAULT 0," +
			"gold " + num + " NOT NULL DEFAULT 0" +
			") ENGINE=InnoDB",
		"CREATE TABLE IF NOT EXISTS currency_transaction (" +
			"transaction_id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY," +
			"player_uuid_sender VARCHAR(36) NOT NULL," +
			"player_uuid_receiver VARCHAR(36) NOT NULL," +
			"currency_type ENUM(" + denominationList() + ") NOT NULL," +
			"transaction_type ENUM(" + transactionKindList() + ") NOT NULL," +
			"amount " + num + " NOT NULL," +
			"`timestamp` TIMESTAMP DEFAULT CURRENT_TIMESTAMP," +
			"notes VARCHAR(255)," +
			"INDEX idx_currency_transaction_sender (player_uuid_sender)," +
			"INDEX idx_currency_transaction_receiver (player_uuid_receiver)," +
			"FOREIGN KEY (player_uuid_sender) REFERENCES currency(player_uuid)," +
			"FOREIGN KEY (player_uuid_receiver) REFERENCES currency(player_uuid)" +
			") ENGINE=InnoDB",
	}
}

// insertAccountIfAbsent uses a self-assignment on duplicate key rather than
// INSERT IGNORE, which would also swallow unrelated errors.
func (d *mysqlDialect) insertAccountIfAbsent(scale int32) string {
	return "INSERT INTO currency (player_uuid, coin, copper, silver, gold) VALUES (?, " +
		d.amount(scale) + ", " + d.amount(scale) + ", " + d.amount(scale) + ", " + d.amount(scale) + ") " +
		"ON DUPLICATE KEY UPDATE player_uuid = player_uuid"
}

func (d *mysqlDialect) lockSuffix() string { return " FOR UPDATE" }

// amount casts the bound string so arithmetic stays in DECIMAL instead of
// MySQL's default string-to-DOUBLE coercion.
func (d *mysqlDialect) amount(scale int32) string {
	return "CAST(? AS " + decimalType(scale) + ")"
}

func (d *mysqlDialect) round(expr string, _ int32) string { return expr }

func (d *mysqlDialect) greatest() string { return "GREATEST" }

func (d *mysqlDialect) timestampColumn() string { return "`timestamp`" }

func (d *mysqlDialect) supportsReturning() bool { return false }

// erDeadlock is ER_LOCK_DEADLOCK. InnoDB can pick a transfer as the victim
// when two transfers gap-lock the same absent receiver and then insert it.
const erDeadlock = 1213

func (d *mysqlDialect) retryable(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == erDeadlock
}
