package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is a named holder of a non-negative balance in one currency.
type Account struct {
	AccountNumber string          `json:"account_number"`
	Balance       decimal.Decimal `json:"balance"`
	Currency      Currency        `json:"currency"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	// Version increases on every balance mutation. The store rejects a
	// commit whose expected version no longer matches the stored one.
	Version int64 `json:"version"`
}

// NewAccount creates an account with a zero balance.
func NewAccount(accountNumber string, currency Currency) *Account {
	now := time.Now().UTC()
	return &Account{
		AccountNumber: accountNumber,
		Balance:       decimal.Zero,
		Currency:      currency,
		CreatedAt:     now,
		UpdatedAt:     now,
		Version:       1,
	}
}

// Clone returns an independent copy of the account.
func (a *Account) Clone() *Account {
	cp := *a
	return &cp
}
