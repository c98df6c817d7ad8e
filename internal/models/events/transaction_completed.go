package events

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionCompleted is published after a mutation commits. Delivery is
// best effort; ledger correctness never depends on it.
type TransactionCompleted struct {
	EventID       string          `json:"event_id"`
	TransactionID int64           `json:"transaction_id"`
	Type          string          `json:"type"`
	SourceAccount string          `json:"source_account,omitempty"`
	TargetAccount string          `json:"target_account,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	OccurredAt    time.Time       `json:"occurred_at"`
}
