package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sheikh-saqib/account-ledger-system/internal/interfaces"
	"github.com/sheikh-saqib/account-ledger-system/internal/metrics"
	"github.com/sheikh-saqib/account-ledger-system/internal/models"
	modelevents "github.com/sheikh-saqib/account-ledger-system/internal/models/events"
)

// DefaultLockTimeout bounds how long a mutation waits for an exclusive
// account handle before failing with ErrAccountBusy.
const DefaultLockTimeout = 5 * time.Second

// Ledger orchestrates validation, locking, mutation and logging for every
// balance-changing operation. It is the sole mutator of the account store
// and the sole writer of the transaction log.
type Ledger struct {
	store       interfaces.LedgerStore
	publisher   interfaces.EventPublisher
	metrics     *metrics.TransactionMetrics
	logger      *slog.Logger
	lockTimeout time.Duration
	supported   map[models.Currency]struct{}
}

// Config carries the engine's policy knobs. Zero values fall back to
// defaults: DefaultLockTimeout and an allow-list of just the default
// currency.
type Config struct {
	LockTimeout         time.Duration
	SupportedCurrencies []models.Currency
}

// NewLedger wires the engine. publisher may be nil when no event boundary
// is configured; metrics may be nil in tests.
func NewLedger(store interfaces.LedgerStore, publisher interfaces.EventPublisher, txMetrics *metrics.TransactionMetrics, logger *slog.Logger, cfg Config) *Ledger {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.LockTimeout <= 0 {
		cfg.LockTimeout = DefaultLockTimeout
	}
	if len(cfg.SupportedCurrencies) == 0 {
		cfg.SupportedCurrencies = []models.Currency{models.DefaultCurrency}
	}

	supported := make(map[models.Currency]struct{}, len(cfg.SupportedCurrencies))
	for _, c := range cfg.SupportedCurrencies {
		supported[c] = struct{}{}
	}

	return &Ledger{
		store:       store,
		publisher:   publisher,
		metrics:     txMetrics,
		logger:      logger,
		lockTimeout: cfg.LockTimeout,
		supported:   supported,
	}
}

// CreateAccount creates an account with a zero balance.
func (l *Ledger) CreateAccount(ctx context.Context, accountNumber string, currency models.Currency) (*models.Account, error) {
	if err := l.validateCurrency(currency); err != nil {
		return nil, err
	}

	account, err := l.store.Create(ctx, models.NewAccount(accountNumber, currency))
	if err != nil {
		return nil, err
	}

	l.logger.InfoContext(ctx, "account created",
		slog.String("account", account.AccountNumber),
		slog.String("currency", string(account.Currency)))
	return account, nil
}

// GetAccount returns the account, or ErrAccountNotFound.
func (l *Ledger) GetAccount(ctx context.Context, accountNumber string) (*models.Account, error) {
	return l.store.Find(ctx, accountNumber)
}

// GetBalance returns the account's current balance.
func (l *Ledger) GetBalance(ctx context.Context, accountNumber string) (decimal.Decimal, error) {
	account, err := l.store.Find(ctx, accountNumber)
	if err != nil {
		return decimal.Zero, err
	}
	return account.Balance, nil
}

// Deposit increases the account's balance by amount and appends a DEPOSIT
// transaction as one atomic unit.
func (l *Ledger) Deposit(ctx context.Context, accountNumber string, amount decimal.Decimal, currency models.Currency, description string) (*models.Transaction, error) {
	if err := l.validateAmount(amount); err != nil {
		return nil, err
	}
	if err := l.validateCurrency(currency); err != nil {
		return nil, err
	}

	handles, err := l.acquireOrdered(ctx, accountNumber)
	if err != nil {
		return nil, err
	}
	defer releaseAll(handles)

	account, err := l.store.Find(ctx, accountNumber)
	if err != nil {
		return nil, err
	}

	account.Balance = account.Balance.Add(amount)

	tx := &models.Transaction{
		TargetAccount: &accountNumber,
		Amount:        amount,
		Currency:      currency,
		Description:   description,
		Type:          models.TypeDeposit,
	}

	saved, err := l.store.Commit(ctx, []*models.Account{account}, tx)
	if err != nil {
		return nil, err
	}

	l.afterCommit(ctx, saved)
	return saved, nil
}

// Withdraw decreases the account's balance by amount and appends a
// WITHDRAWAL transaction. Fails with InsufficientFundsError if the balance
// is short; nothing is mutated in that case.
func (l *Ledger) Withdraw(ctx context.Context, accountNumber string, amount decimal.Decimal, currency models.Currency, description string) (*models.Transaction, error) {
	if err := l.validateAmount(amount); err != nil {
		return nil, err
	}
	if err := l.validateCurrency(currency); err != nil {
		return nil, err
	}

	handles, err := l.acquireOrdered(ctx, accountNumber)
	if err != nil {
		return nil, err
	}
	defer releaseAll(handles)

	account, err := l.store.Find(ctx, accountNumber)
	if err != nil {
		return nil, err
	}

	if account.Balance.Cmp(amount) < 0 {
		return nil, &InsufficientFundsError{
			AccountNumber: accountNumber,
			Balance:       account.Balance,
			Requested:     amount,
		}
	}

	account.Balance = account.Balance.Sub(amount)

	tx := &models.Transaction{
		SourceAccount: &accountNumber,
		Amount:        amount,
		Currency:      currency,
		Description:   description,
		Type:          models.TypeWithdrawal,
	}

	saved, err := l.store.Commit(ctx, []*models.Account{account}, tx)
	if err != nil {
		return nil, err
	}

	l.afterCommit(ctx, saved)
	return saved, nil
}

// Transfer debits the source and credits the target by the same amount and
// appends one TRANSFER transaction, all in one atomic unit. Both exclusive
// handles are taken in canonical (lexicographic) order before either
// account is read, so opposite-direction transfers between the same pair
// cannot deadlock.
func (l *Ledger) Transfer(ctx context.Context, sourceNumber, targetNumber string, amount decimal.Decimal, currency models.Currency, description string) (*models.Transaction, error) {
	if err := l.validateAmount(amount); err != nil {
		return nil, err
	}
	if err := l.validateCurrency(currency); err != nil {
		return nil, err
	}
	if sourceNumber == targetNumber {
		return nil, ErrSameAccount
	}

	handles, err := l.acquireOrdered(ctx, sourceNumber, targetNumber)
	if err != nil {
		return nil, err
	}
	defer releaseAll(handles)

	source, err := l.store.Find(ctx, sourceNumber)
	if err != nil {
		return nil, err
	}
	target, err := l.store.Find(ctx, targetNumber)
	if err != nil {
		return nil, err
	}

	if source.Balance.Cmp(amount) < 0 {
		return nil, &InsufficientFundsError{
			AccountNumber: sourceNumber,
			Balance:       source.Balance,
			Requested:     amount,
		}
	}

	source.Balance = source.Balance.Sub(amount)
	target.Balance = target.Balance.Add(amount)

	tx := &models.Transaction{
		SourceAccount: &sourceNumber,
		TargetAccount: &targetNumber,
		Amount:        amount,
		Currency:      currency,
		Description:   description,
		Type:          models.TypeTransfer,
	}

	saved, err := l.store.Commit(ctx, []*models.Account{source, target}, tx)
	if err != nil {
		return nil, err
	}

	l.afterCommit(ctx, saved)
	return saved, nil
}

// ListTransactions returns every transaction involving the account,
// newest first.
func (l *Ledger) ListTransactions(ctx context.Context, accountNumber string) ([]*models.Transaction, error) {
	if err := l.requireAccount(ctx, accountNumber); err != nil {
		return nil, err
	}
	return l.store.FindByAccount(ctx, accountNumber)
}

// ListTransactionsPage returns one bounded page of the account's history,
// newest first, with the total count. page is zero-based.
func (l *Ledger) ListTransactionsPage(ctx context.Context, accountNumber string, page, size int) (*models.TransactionPage, error) {
	if err := l.requireAccount(ctx, accountNumber); err != nil {
		return nil, err
	}
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = 20
	}
	return l.store.FindByAccountPage(ctx, accountNumber, page, size)
}

func (l *Ledger) requireAccount(ctx context.Context, accountNumber string) error {
	exists, err := l.store.ExistsByNumber(ctx, accountNumber)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", interfaces.ErrAccountNotFound, accountNumber)
	}
	return nil
}

// acquireOrdered takes the exclusive handle of every named account in
// lexicographic order, releasing any already held on failure.
func (l *Ledger) acquireOrdered(ctx context.Context, accountNumbers ...string) ([]interfaces.Unlocker, error) {
	ordered := make([]string, len(accountNumbers))
	copy(ordered, accountNumbers)
	sort.Strings(ordered)

	handles := make([]interfaces.Unlocker, 0, len(ordered))
	for _, number := range ordered {
		handle, err := l.store.AcquireExclusive(ctx, number, l.lockTimeout)
		if err != nil {
			releaseAll(handles)
			return nil, err
		}
		handles = append(handles, handle)
	}
	return handles, nil
}

func releaseAll(handles []interfaces.Unlocker) {
	for _, h := range handles {
		h.Unlock()
	}
}

// afterCommit records the per-type counter and publishes the completion
// event. Both are side effects with no correctness dependency.
func (l *Ledger) afterCommit(ctx context.Context, tx *models.Transaction) {
	if l.metrics != nil {
		l.metrics.Record(tx.Type)
	}

	l.logger.InfoContext(ctx, "transaction committed",
		slog.Int64("transaction_id", tx.ID),
		slog.String("type", string(tx.Type)),
		slog.String("amount", tx.Amount.String()),
		slog.String("currency", string(tx.Currency)))

	if l.publisher == nil {
		return
	}

	event := modelevents.TransactionCompleted{
		EventID:       uuid.New().String(),
		TransactionID: tx.ID,
		Type:          string(tx.Type),
		Amount:        tx.Amount,
		Currency:      string(tx.Currency),
		OccurredAt:    tx.Timestamp,
	}
	if tx.SourceAccount != nil {
		event.SourceAccount = *tx.SourceAccount
	}
	if tx.TargetAccount != nil {
		event.TargetAccount = *tx.TargetAccount
	}

	if err := l.publisher.Publish(ctx, event); err != nil {
		l.logger.WarnContext(ctx, "event publish failed",
			slog.Int64("transaction_id", tx.ID),
			slog.String("error", err.Error()))
	}
}

func (l *Ledger) validateAmount(amount decimal.Decimal) error {
	if amount.Cmp(decimal.Zero) <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (l *Ledger) validateCurrency(currency models.Currency) error {
	if _, ok := l.supported[currency]; !ok {
		return &UnsupportedCurrencyError{Currency: currency}
	}
	return nil
}
