package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies a balance-changing operation.
type TransactionType string

const (
	TypeDeposit    TransactionType = "DEPOSIT"
	TypeWithdrawal TransactionType = "WITHDRAWAL"
	TypeTransfer   TransactionType = "TRANSFER"
)

// Transaction is an immutable record of one completed balance-changing
// operation. SourceAccount and TargetAccount hold account numbers, not
// embedded accounts; a nil side means no account on that side:
// DEPOSIT has only a target, WITHDRAWAL only a source, TRANSFER both.
type Transaction struct {
	ID            int64           `json:"id"`
	SourceAccount *string         `json:"source_account,omitempty"`
	TargetAccount *string         `json:"target_account,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      Currency        `json:"currency"`
	Timestamp     time.Time       `json:"timestamp"`
	Description   string          `json:"description,omitempty"`
	Type          TransactionType `json:"type"`
}

// Involves reports whether the account is the source or target of the
// transaction.
func (t *Transaction) Involves(accountNumber string) bool {
	if t.SourceAccount != nil && *t.SourceAccount == accountNumber {
		return true
	}
	if t.TargetAccount != nil && *t.TargetAccount == accountNumber {
		return true
	}
	return false
}

// Clone returns an independent copy of the transaction.
func (t *Transaction) Clone() *Transaction {
	cp := *t
	if t.SourceAccount != nil {
		src := *t.SourceAccount
		cp.SourceAccount = &src
	}
	if t.TargetAccount != nil {
		tgt := *t.TargetAccount
		cp.TargetAccount = &tgt
	}
	return &cp
}

// TransactionPage is one bounded page of an account's transaction history,
// newest first.
type TransactionPage struct {
	Transactions []*Transaction `json:"transactions"`
	Page         int            `json:"page"`
	Size         int            `json:"size"`
	TotalCount   int64          `json:"total_count"`
}
