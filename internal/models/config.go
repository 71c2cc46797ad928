package models

import "time"

// Config represents the application configuration
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Events   EventsConfig   `yaml:"events"`
}

// DatabaseConfig holds the backend selector plus per-backend connection settings
type DatabaseConfig struct {
	Type            string        `yaml:"type" env:"LEDGER_DB_TYPE"`
	SQLite          SQLiteConfig  `yaml:"sqlite"`
	MySQL           ServerConfig  `yaml:"mysql" envPrefix:"LEDGER_MYSQL_"`
	PostgreSQL      ServerConfig  `yaml:"postgresql" envPrefix:"LEDGER_POSTGRES_"`
	Scale           int32         `yaml:"scale" env:"LEDGER_SCALE"`
	OverdraftPolicy string        `yaml:"overdraft_policy" env:"LEDGER_OVERDRAFT_POLICY"`
	MaxOpenConns    int           `yaml:"max_open_conns" env:"LEDGER_DB_MAX_OPEN_CONNS"`
	MaxIdleConns    int           `yaml:"max_idle_conns" env:"LEDGER_DB_MAX_IDLE_CONNS"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env:"LEDGER_DB_CONN_MAX_LIFETIME"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time" env:"LEDGER_DB_CONN_MAX_IDLE_TIME"`
	PingTimeout     time.Duration `yaml:"ping_timeout" env:"LEDGER_DB_PING_TIMEOUT"`
	BusyTimeout     time.Duration `yaml:"busy_timeout" env:"LEDGER_SQLITE_BUSY_TIMEOUT"`
}

// SQLiteConfig holds embedded file store settings
type SQLiteConfig struct {
	Path string `yaml:"path" env:"LEDGER_SQLITE_PATH"`
}

// ServerConfig holds networked engine connection settings
type ServerConfig struct {
	Host     string `yaml:"host" env:"HOST"`
	Port     int    `yaml:"port" env:"PORT"`
	Name     string `yaml:"name" env:"NAME"`
	User     string `yaml:"user" env:"USER"`
	Password string `yaml:"password" env:"PASSWORD"`
	SSL      bool   `yaml:"ssl" env:"SSL"`
}

// EventsConfig holds ledger event publication settings
type EventsConfig struct {
	KafkaBrokers []string      `yaml:"kafka_brokers" env:"LEDGER_KAFKA_BROKERS" envSeparator:","`
	TopicPrefix  string        `yaml:"topic_prefix" env:"LEDGER_KAFKA_TOPIC_PREFIX"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"LEDGER_KAFKA_WRITE_TIMEOUT"`
}
