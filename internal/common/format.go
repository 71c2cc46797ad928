package common

import (
	"fmt"
	"io"
	"strings"

	"currency-ledger-go/internal/models"
	"currency-ledger-go/internal/store"
)

// DefaultWidth is the separator width of command output.
const DefaultWidth = 72

// PrintSeparator prints a separator line with the specified character and width
func PrintSeparator(char string, width int) {
	fmt.Println(strings.Repeat(char, width))
}

// PrintHeader prints a formatted header with title and separators
func PrintHeader(title string, width int) {
	fmt.Println("\n" + strings.Repeat("=", width))
	fmt.Println(title)
	PrintSeparator("=", width)
}

// PrintFooter prints a formatted footer with message and separators
func PrintFooter(message string, width int) {
	fmt.Println("\n" + strings.Repeat("=", width))
	fmt.Println(message)
	fmt.Println(strings.Repeat("=", width) + "\n")
}

// BoxPrefix returns the box-drawing prefix for list items
func BoxPrefix(isLast bool) string {
	if isLast {
		return "└  "
	}
	return "│  "
}

// WriteAccount renders the four balances of an account as a box list with
// scale fractional digits.
func WriteAccount(w io.Writer, account *models.Account, scale int32) error {
	if _, err := fmt.Fprintf(w, "┌─ Player: %s\n", account.PlayerUUID); err != nil {
		return err
	}
	for i, d := range store.Denominations {
		balance, err := d.BalanceOf(account)
		if err != nil {
			return err
		}
		isLast := i == len(store.Denominations)-1
		if _, err := fmt.Fprintf(w, "%s%-8s %20s\n", BoxPrefix(isLast), d, balance.StringFixed(scale)); err != nil {
			return err
		}
	}
	return nil
}
