/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package config

import (
	"fmt"
	"os"
	"time"

	"currency-ledger-go/internal/models"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v2"
)

// ConfigFileEnv names an optional YAML file applied on top of the defaults.
const ConfigFileEnv = "LEDGER_CONFIG_FILE"

// Load builds the configuration from defaults, then the YAML file named by
// LEDGER_CONFIG_FILE, then LEDGER_* environment variables.
func Load() (*models.Config, error) {
	cfg := Defaults()

	if path := os.Getenv(ConfigFileEnv); path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("invalid environment configuration: %w", err)
	}
	return cfg, nil
}

func Defaults() *models.Config {
	return &models.Config{
		Database: models.DatabaseConfig{
			Type:            "sqlite",
			SQLite:          models.SQLiteConfig{Path: "ledger.db"},
			MySQL:           models.ServerConfig{Host: "localhost", Port: 3306, Name: "ledger", User: "ledger"},
			PostgreSQL:      models.ServerConfig{Host: "localhost", Port: 5432, Name: "ledger", User: "ledger"},
			Scale:           2,
			OverdraftPolicy: "reject",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
			ConnMaxIdleTime: 30 * time.Second,
			PingTimeout:     5 * time.Second,
			BusyTimeout:     5 * time.Second,
		},
		Events: models.EventsConfig{
			TopicPrefix:  "ledger.",
			WriteTimeout: 10 * time.Second,
		},
	}
}

func loadFile(path string, cfg *models.Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}
