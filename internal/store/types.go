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

package store

import (
	"fmt"
	"strings"

	"currency-ledger-go/internal/models"

	"github.com/shopspring/decimal"
)

// Denomination names one of the four balance columns of an account.
// The value doubles as the SQL column identifier, so it must only ever be
// produced by ParseDenomination or taken from the constants below.
type Denomination string

const (
	Coin   Denomination = "coin"
	Copper Denomination = "copper"
	Silver Denomination = "silver"
	Gold   Denomination = "gold"
)

// Denominations lists every recognized denomination in column order.
var Denominations = []Denomination{Coin, Copper, Silver, Gold}

// Valid reports whether d is on the allow-list.
func (d Denomination) Valid() bool {
	switch d {
	case Coin, Copper, Silver, Gold:
		return true
	}
	return false
}

func (d Denomination) String() string { return string(d) }

// BalanceOf returns the column of account that d names.
func (d Denomination) BalanceOf(account *models.Account) (decimal.Decimal, error) {
	switch d {
	case Coin:
		return account.Coin, nil
	case Copper:
		return account.Copper, nil
	case Silver:
		return account.Silver, nil
	case Gold:
		return account.Gold, nil
	}
	return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidDenomination, d)
}

// ParseDenomination maps caller input onto the allow-list. Matching is
// case-insensitive; anything else fails with ErrInvalidDenomination.
func ParseDenomination(s string) (Denomination, error) {
	d := Denomination(strings.ToLower(strings.TrimSpace(s)))
	if !d.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidDenomination, s)
	}
	return d, nil
}

// TransactionKind tags an audit record.
type TransactionKind string

const (
	KindPay      TransactionKind = "pay"
	KindPurchase TransactionKind = "purchase"
	KindGrant    TransactionKind = "grant"
	KindRefund   TransactionKind = "refund"
)

// TransactionKinds lists every recognized transaction kind.
var TransactionKinds = []TransactionKind{KindPay, KindPurchase, KindGrant, KindRefund}

func (k TransactionKind) Valid() bool {
	switch k {
	case KindPay, KindPurchase, KindGrant, KindRefund:
		return true
	}
	return false
}

func (k TransactionKind) String() string { return string(k) }

func ParseTransactionKind(s string) (TransactionKind, error) {
	k := TransactionKind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidTransactionKind, s)
	}
	return k, nil
}

// Backend selects the relational engine behind the ledger.
type Backend string

const (
	BackendSQLite     Backend = "sqlite"
	BackendMySQL      Backend = "mysql"
	BackendPostgreSQL Backend = "postgresql"
)

// ParseBackend returns the backend named by s. Unrecognized names resolve to
// BackendSQLite and ok is false so the caller can log the fallback.
func ParseBackend(s string) (b Backend, ok bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sqlite", "sqlite3":
		return BackendSQLite, true
	case "mysql", "mariadb":
		return BackendMySQL, true
	case "postgresql", "postgres", "pg":
		return BackendPostgreSQL, true
	}
	return BackendSQLite, false
}

// OverdraftPolicy decides what AdjustBalance does with a debit larger than
// the current balance.
type OverdraftPolicy string

const (
	// OverdraftReject leaves the row untouched and fails with ErrInsufficientFunds.
	OverdraftReject OverdraftPolicy = "reject"
	// OverdraftClamp floors the resulting balance at zero.
	OverdraftClamp OverdraftPolicy = "clamp"
	// OverdraftAllow applies the arithmetic as-is; balances may go negative.
	OverdraftAllow OverdraftPolicy = "allow"
)

func ParseOverdraftPolicy(s string) (OverdraftPolicy, error) {
	switch p := OverdraftPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case OverdraftReject, OverdraftClamp, OverdraftAllow:
		return p, nil
	case "":
		return OverdraftReject, nil
	}
	return "", fmt.Errorf("unknown overdraft policy %q", s)
}
