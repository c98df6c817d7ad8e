package interfaces

import (
	"context"
	"errors"
	"time"

	"github.com/sheikh-saqib/account-ledger-system/internal/models"
)

// Storage-level failures. Business validation errors live with the engine;
// these are the kinds a store itself can produce.
var (
	ErrAccountNotFound  = errors.New("account not found")
	ErrDuplicateAccount = errors.New("account already exists")
	// ErrAccountBusy means an exclusive handle could not be acquired within
	// the timeout. Transient; callers may retry.
	ErrAccountBusy = errors.New("account is busy")
	// ErrVersionConflict means a commit carried a stale account version.
	// With exclusive handles held this is a defensive double-check only.
	ErrVersionConflict = errors.New("account version conflict")
)

// Unlocker releases one exclusive per-account handle.
type Unlocker interface {
	Unlock()
}

// AccountStore is durable keyed storage of account records.
type AccountStore interface {
	// Find returns a copy of the account, or ErrAccountNotFound.
	Find(ctx context.Context, accountNumber string) (*models.Account, error)
	ExistsByNumber(ctx context.Context, accountNumber string) (bool, error)
	// Create persists a new account, or fails with ErrDuplicateAccount.
	Create(ctx context.Context, account *models.Account) (*models.Account, error)
	// AcquireExclusive blocks other exclusive acquisitions of the same
	// account until the returned handle is unlocked. Fails with
	// ErrAccountBusy when the handle cannot be acquired within timeout.
	AcquireExclusive(ctx context.Context, accountNumber string, timeout time.Duration) (Unlocker, error)
}

// TransactionLog is append-only durable storage of transaction records.
// Records are only ever written through LedgerStore.Commit; there are no
// update or delete operations.
type TransactionLog interface {
	// FindByAccount returns every transaction where the account is source
	// or target, newest first.
	FindByAccount(ctx context.Context, accountNumber string) ([]*models.Transaction, error)
	// FindByAccountPage returns one bounded page, newest first, with the
	// total count. page is zero-based.
	FindByAccountPage(ctx context.Context, accountNumber string, page, size int) (*models.TransactionPage, error)
}

// LedgerStore is the durable boundary the engine runs against.
type LedgerStore interface {
	AccountStore
	TransactionLog

	// Commit durably applies the account updates and appends the
	// transaction as one atomic unit, assigning the transaction id and
	// timestamp. Each account's Version must match the stored one and is
	// incremented as part of the commit; a mismatch fails the whole unit
	// with ErrVersionConflict. Callers must hold the exclusive handles of
	// every account passed in.
	Commit(ctx context.Context, accounts []*models.Account, tx *models.Transaction) (*models.Transaction, error)

	// Ping reports whether the store is reachable.
	Ping(ctx context.Context) error
}
