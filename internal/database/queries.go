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

package database

import (
	"fmt"

	"currency-ledger-go/internal/store"

	"github.com/shopspring/decimal"
)

const (
	// Account queries
	queryAccountExists = `
		SELECT COUNT(*) FROM currency WHERE player_uuid = ?`

	queryGetAccount = `
		SELECT player_uuid, coin, copper, silver, gold
		FROM currency
		WHERE player_uuid = ?`

	// Transaction queries
	queryInsertTransaction = `
		INSERT INTO currency_transaction (
			player_uuid_sender, player_uuid_receiver, currency_type, transaction_type, amount, notes
		) VALUES (?, ?, ?, ?, %s, ?)`

	queryGetTransactionTimestamp = `
		SELECT %s FROM currency_transaction WHERE transaction_id = ?`
)

// Denomination and transaction-kind values are schema identifiers, not
// data, so every builder below re-checks the allow-list before the name is
// placed into the statement text.

func querySelectBalance(denomination store.Denomination) (string, error) {
	if !denomination.Valid() {
		return "", fmt.Errorf("%w: %q", store.ErrInvalidDenomination, denomination)
	}
	return "SELECT " + string(denomination) + " FROM currency WHERE player_uuid = ?", nil
}

// queryLockBalances reads the denomination column of up to two accounts in
// key order. With a FOR UPDATE suffix the rows are locked in that same order,
// so opposing transfers between one pair of accounts cannot deadlock.
func queryLockBalances(d dialect, denomination store.Denomination) (string, error) {
	if !denomination.Valid() {
		return "", fmt.Errorf("%w: %q", store.ErrInvalidDenomination, denomination)
	}
	return "SELECT player_uuid, " + string(denomination) +
		" FROM currency WHERE player_uuid IN (?, ?) ORDER BY player_uuid" + d.lockSuffix(), nil
}

type operator string

const (
	opPlus  operator = "+"
	opMinus operator = "-"
)

func (o operator) valid() bool { return o == opPlus || o == opMinus }

// statement is a query with its positional arguments.
type statement struct {
	query string
	args  []any
}

// buildAdjustBalance renders `UPDATE currency SET col = col <op> amount`.
// Under OverdraftReject a subtraction only matches rows that can afford it;
// under OverdraftClamp the result is floored at zero.
func buildAdjustBalance(d dialect, scale int32, playerUUID string, denomination store.Denomination,
	op operator, amount decimal.Decimal, policy store.OverdraftPolicy) (statement, error) {
	if !denomination.Valid() {
		return statement{}, fmt.Errorf("%w: %q", store.ErrInvalidDenomination, denomination)
	}
	if !op.valid() {
		return statement{}, fmt.Errorf("%w: %q", store.ErrInvalidOperator, op)
	}

	col := string(denomination)
	expr := d.round(col+" "+string(op)+" "+d.amount(scale), scale)

	if op == opPlus {
		policy = store.OverdraftAllow
	}

	switch policy {
	case store.OverdraftReject:
		return statement{
			query: "UPDATE currency SET " + col + " = " + expr +
				" WHERE player_uuid = ? AND " + expr + " >= 0",
			args: []any{amount, playerUUID, amount},
		}, nil
	case store.OverdraftClamp:
		return statement{
			query: "UPDATE currency SET " + col + " = " + d.greatest() + "(" + expr + ", 0) WHERE player_uuid = ?",
			args:  []any{amount, playerUUID},
		}, nil
	case store.OverdraftAllow:
		return statement{
			query: "UPDATE currency SET " + col + " = " + expr + " WHERE player_uuid = ?",
			args:  []any{amount, playerUUID},
		}, nil
	}
	return statement{}, fmt.Errorf("unknown overdraft policy %q", policy)
}

func buildInsertTransaction(d dialect, scale int32) string {
	return fmt.Sprintf(queryInsertTransaction, d.amount(scale))
}
