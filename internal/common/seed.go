package common

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v2"
)

// SeedAccount is one opening account listed in a seed file.
type SeedAccount struct {
	Player string `yaml:"player"`
	Coin   string `yaml:"coin"`
	Copper string `yaml:"copper"`
	Silver string `yaml:"silver"`
	Gold   string `yaml:"gold"`
}

type SeedFile struct {
	Accounts []SeedAccount `yaml:"accounts"`
}

// OpeningBalances parses the four amounts. Missing amounts are zero.
func (a SeedAccount) OpeningBalances() (coin, copper, silver, gold decimal.Decimal, err error) {
	values := make([]decimal.Decimal, 4)
	for i, raw := range []string{a.Coin, a.Copper, a.Silver, a.Gold} {
		if raw == "" {
			continue
		}
		if values[i], err = decimal.NewFromString(raw); err != nil {
			return coin, copper, silver, gold, fmt.Errorf("invalid amount %q for %s: %w", raw, a.Player, err)
		}
	}
	return values[0], values[1], values[2], values[3], nil
}

// LoadSeedAccounts reads the accounts of a seed file and validates their keys
// and amounts.
func LoadSeedAccounts(seedFile string) ([]SeedAccount, error) {
	data, err := os.ReadFile(seedFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", seedFile, err)
	}

	var seed SeedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("unable to parse %s: %w", seedFile, err)
	}

	for i, account := range seed.Accounts {
		if _, err := uuid.Parse(account.Player); err != nil {
			return nil, fmt.Errorf("account at index %d has invalid player %q", i, account.Player)
		}
		if _, _, _, _, err := account.OpeningBalances(); err != nil {
			return nil, fmt.Errorf("account at index %d: %w", i, err)
		}
	}

	return seed.Accounts, nil
}
