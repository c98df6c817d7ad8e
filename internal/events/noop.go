package events

import (
	"context"

	"github.com/sheikh-saqib/account-ledger-system/internal/interfaces"
)

// NopPublisher discards every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, event any) error {
	return nil
}

var _ interfaces.EventPublisher = NopPublisher{}
