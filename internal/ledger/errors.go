package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/sheikh-saqib/account-ledger-system/internal/models"
)

// Business validation failures. These are detected before any lock is taken
// or any record read, so a caller that receives one knows no state was
// touched. Storage-level failures (not found, duplicate, busy, version
// conflict) are declared in the interfaces package beside the stores.
var (
	ErrInvalidAmount = errors.New("transaction amount must be positive")
	ErrSameAccount   = errors.New("source and target accounts cannot be the same")
)

// UnsupportedCurrencyError means the currency is not on the allow-list.
type UnsupportedCurrencyError struct {
	Currency models.Currency
}

func (e *UnsupportedCurrencyError) Error() string {
	return fmt.Sprintf("currency %s is not supported", e.Currency)
}

// InsufficientFundsError means a debit would drive the balance negative.
// It is detected after locking but before any mutation.
type InsufficientFundsError struct {
	AccountNumber string
	Balance       decimal.Decimal
	Requested     decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds in account %s: current balance %s, required amount %s",
		e.AccountNumber, e.Balance, e.Requested)
}
