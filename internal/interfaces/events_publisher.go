package interfaces

import "context"

// EventPublisher delivers post-commit notifications. Publish failures are
// logged and otherwise ignored; the ledger never depends on delivery.
type EventPublisher interface {
	Publish(ctx context.Context, event any) error
}
