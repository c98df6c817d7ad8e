package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sheikh-saqib/account-ledger-system/internal/interfaces"
	"github.com/sheikh-saqib/account-ledger-system/internal/models"
	"github.com/sheikh-saqib/account-ledger-system/internal/storage/locks"
)

// MemoryLedgerStore is an in-memory implementation of interfaces.LedgerStore.
// Commits take the write lock for their whole duration, so readers never
// observe a half-applied debit/credit pair.
type MemoryLedgerStore struct {
	mu           sync.RWMutex
	accounts     map[string]*models.Account
	transactions []*models.Transaction
	txIndex      map[string][]*models.Transaction // per-account, append order
	nextTxID     int64
	locks        *locks.Table
}

func NewMemoryLedgerStore() *MemoryLedgerStore {
	return &MemoryLedgerStore{
		accounts: make(map[string]*models.Account),
		txIndex:  make(map[string][]*models.Transaction),
		nextTxID: 1,
		locks:    locks.NewTable(),
	}
}

func (m *MemoryLedgerStore) Find(ctx context.Context, accountNumber string) (*models.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	account, ok := m.accounts[accountNumber]
	if !ok {
		return nil, fmt.Errorf("%w: %s", interfaces.ErrAccountNotFound, accountNumber)
	}
	return account.Clone(), nil
}

func (m *MemoryLedgerStore) ExistsByNumber(ctx context.Context, accountNumber string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.accounts[accountNumber]
	return ok, nil
}

func (m *MemoryLedgerStore) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.accounts[account.AccountNumber]; ok {
		return nil, fmt.Errorf("%w: %s", interfaces.ErrDuplicateAccount, account.AccountNumber)
	}

	m.accounts[account.AccountNumber] = account.Clone()
	return account.Clone(), nil
}

func (m *MemoryLedgerStore) AcquireExclusive(ctx context.Context, accountNumber string, timeout time.Duration) (interfaces.Unlocker, error) {
	handle, err := m.locks.Acquire(ctx, accountNumber, timeout)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", interfaces.ErrAccountBusy, accountNumber, err)
	}
	return handle, nil
}

// Commit applies the account updates and appends the transaction under one
// write lock. Versions are double-checked against the stored records; any
// mismatch fails the whole unit with nothing applied.
func (m *MemoryLedgerStore) Commit(ctx context.Context, accounts []*models.Account, tx *models.Transaction) (*models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, account := range accounts {
		stored, ok := m.accounts[account.AccountNumber]
		if !ok {
			return nil, fmt.Errorf("%w: %s", interfaces.ErrAccountNotFound, account.AccountNumber)
		}
		if stored.Version != account.Version {
			return nil, fmt.Errorf("%w: %s: expected version %d, have %d",
				interfaces.ErrVersionConflict, account.AccountNumber, account.Version, stored.Version)
		}
	}

	now := time.Now().UTC()
	for _, account := range accounts {
		updated := account.Clone()
		updated.Version++
		updated.UpdatedAt = now
		m.accounts[account.AccountNumber] = updated
	}

	saved := tx.Clone()
	saved.ID = m.nextTxID
	m.nextTxID++
	if saved.Timestamp.IsZero() {
		saved.Timestamp = now
	}

	m.transactions = append(m.transactions, saved)
	if saved.SourceAccount != nil {
		m.txIndex[*saved.SourceAccount] = append(m.txIndex[*saved.SourceAccount], saved)
	}
	if saved.TargetAccount != nil {
		m.txIndex[*saved.TargetAccount] = append(m.txIndex[*saved.TargetAccount], saved)
	}

	return saved.Clone(), nil
}

func (m *MemoryLedgerStore) FindByAccount(ctx context.Context, accountNumber string) ([]*models.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.newestFirst(accountNumber), nil
}

func (m *MemoryLedgerStore) FindByAccountPage(ctx context.Context, accountNumber string, page, size int) (*models.TransactionPage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := m.newestFirst(accountNumber)

	start := page * size
	end := start + size
	if start > len(all) {
		start = len(all)
	}
	if end > len(all) {
		end = len(all)
	}

	return &models.TransactionPage{
		Transactions: all[start:end],
		Page:         page,
		Size:         size,
		TotalCount:   int64(len(all)),
	}, nil
}

// newestFirst returns copies of the account's transactions ordered by
// timestamp descending, ties broken by id descending. Caller holds m.mu.
func (m *MemoryLedgerStore) newestFirst(accountNumber string) []*models.Transaction {
	indexed := m.txIndex[accountNumber]

	result := make([]*models.Transaction, 0, len(indexed))
	for _, tx := range indexed {
		result = append(result, tx.Clone())
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Timestamp.Equal(result[j].Timestamp) {
			return result[i].ID > result[j].ID
		}
		return result[i].Timestamp.After(result[j].Timestamp)
	})
	return result
}

func (m *MemoryLedgerStore) Ping(ctx context.Context) error {
	return nil
}

var _ interfaces.LedgerStore = (*MemoryLedgerStore)(nil)
