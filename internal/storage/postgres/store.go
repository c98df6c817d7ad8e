package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/sheikh-saqib/account-ledger-system/internal/interfaces"
	"github.com/sheikh-saqib/account-ledger-system/internal/models"
	"github.com/sheikh-saqib/account-ledger-system/internal/storage/locks"
)

// PostgresLedgerStore is a postgres-backed implementation of
// interfaces.LedgerStore. Exclusive account handles are process-local
// (the engine is the sole writer); durability and atomicity come from a
// database transaction per commit, with a version-checked UPDATE as a
// defensive double-check.
type PostgresLedgerStore struct {
	db    *sql.DB
	locks *locks.Table
}

func NewPostgresLedgerStore(db *sql.DB) *PostgresLedgerStore {
	return &PostgresLedgerStore{
		db:    db,
		locks: locks.NewTable(),
	}
}

// Open connects to postgres and verifies the connection.
func Open(dsn string) (*PostgresLedgerStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return NewPostgresLedgerStore(db), nil
}

func (p *PostgresLedgerStore) Find(ctx context.Context, accountNumber string) (*models.Account, error) {
	const query = `SELECT account_number, balance, currency, created_at, updated_at, version
	FROM accounts WHERE account_number = $1`

	var account models.Account
	err := p.db.QueryRowContext(ctx, query, accountNumber).Scan(
		&account.AccountNumber,
		&account.Balance,
		&account.Currency,
		&account.CreatedAt,
		&account.UpdatedAt,
		&account.Version,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", interfaces.ErrAccountNotFound, accountNumber)
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (p *PostgresLedgerStore) ExistsByNumber(ctx context.Context, accountNumber string) (bool, error) {
	const query = `SELECT 1 FROM accounts WHERE account_number = $1 LIMIT 1`

	var one int
	err := p.db.QueryRowContext(ctx, query, accountNumber).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (p *PostgresLedgerStore) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	const query = `INSERT INTO accounts (account_number, balance, currency, created_at, updated_at, version)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (account_number) DO NOTHING`

	res, err := p.db.ExecContext(ctx, query,
		account.AccountNumber, account.Balance, account.Currency,
		account.CreatedAt, account.UpdatedAt, account.Version)
	if err != nil {
		return nil, err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, fmt.Errorf("%w: %s", interfaces.ErrDuplicateAccount, account.AccountNumber)
	}
	return account.Clone(), nil
}

func (p *PostgresLedgerStore) AcquireExclusive(ctx context.Context, accountNumber string, timeout time.Duration) (interfaces.Unlocker, error) {
	handle, err := p.locks.Acquire(ctx, accountNumber, timeout)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", interfaces.ErrAccountBusy, accountNumber, err)
	}
	return handle, nil
}

// Commit applies the account updates and inserts the transaction record in
// one database transaction. An UPDATE that matches zero rows means the
// stored version moved under us; the whole unit rolls back.
func (p *PostgresLedgerStore) Commit(ctx context.Context, accounts []*models.Account, tx *models.Transaction) (saved *models.Transaction, err error) {
	dbTx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	defer func() {
		if err != nil {
			dbTx.Rollback()
		}
	}()

	now := time.Now().UTC()
	for _, account := range accounts {
		if err = p.updateAccount(ctx, dbTx, account, now); err != nil {
			return nil, err
		}
	}

	saved = tx.Clone()
	if saved.Timestamp.IsZero() {
		saved.Timestamp = now
	}

	const insert = `INSERT INTO transactions (source_account, target_account, amount, currency, timestamp, description, type)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING id`

	err = dbTx.QueryRowContext(ctx, insert,
		saved.SourceAccount, saved.TargetAccount, saved.Amount,
		saved.Currency, saved.Timestamp, saved.Description, saved.Type,
	).Scan(&saved.ID)
	if err != nil {
		return nil, err
	}

	if err = dbTx.Commit(); err != nil {
		return nil, err
	}
	return saved, nil
}

func (p *PostgresLedgerStore) updateAccount(ctx context.Context, dbTx *sql.Tx, account *models.Account, now time.Time) error {
	const update = `UPDATE accounts
	SET balance = $1, updated_at = $2, version = version + 1
	WHERE account_number = $3 AND version = $4`

	res, err := dbTx.ExecContext(ctx, update, account.Balance, now, account.AccountNumber, account.Version)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s: version %d is stale",
			interfaces.ErrVersionConflict, account.AccountNumber, account.Version)
	}
	return nil
}

func (p *PostgresLedgerStore) FindByAccount(ctx context.Context, accountNumber string) ([]*models.Transaction, error) {
	const query = `SELECT id, source_account, target_account, amount, currency, timestamp, description, type
	FROM transactions
	WHERE source_account = $1 OR target_account = $1
	ORDER BY timestamp DESC, id DESC`

	rows, err := p.db.QueryContext(ctx, query, accountNumber)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTransactions(rows)
}

func (p *PostgresLedgerStore) FindByAccountPage(ctx context.Context, accountNumber string, page, size int) (*models.TransactionPage, error) {
	const countQuery = `SELECT count(*) FROM transactions
	WHERE source_account = $1 OR target_account = $1`

	var total int64
	if err := p.db.QueryRowContext(ctx, countQuery, accountNumber).Scan(&total); err != nil {
		return nil, err
	}

	const query = `SELECT id, source_account, target_account, amount, currency, timestamp, description, type
	FROM transactions
	WHERE source_account = $1 OR target_account = $1
	ORDER BY timestamp DESC, id DESC
	LIMIT $2 OFFSET $3`

	rows, err := p.db.QueryContext(ctx, query, accountNumber, size, page*size)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transactions, err := scanTransactions(rows)
	if err != nil {
		return nil, err
	}

	return &models.TransactionPage{
		Transactions: transactions,
		Page:         page,
		Size:         size,
		TotalCount:   total,
	}, nil
}

func scanTransactions(rows *sql.Rows) ([]*models.Transaction, error) {
	transactions := make([]*models.Transaction, 0)
	for rows.Next() {
		var tx models.Transaction
		var description sql.NullString
		err := rows.Scan(
			&tx.ID,
			&tx.SourceAccount,
			&tx.TargetAccount,
			&tx.Amount,
			&tx.Currency,
			&tx.Timestamp,
			&description,
			&tx.Type,
		)
		if err != nil {
			return nil, err
		}
		tx.Description = description.String
		transactions = append(transactions, &tx)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return transactions, nil
}

func (p *PostgresLedgerStore) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

var _ interfaces.LedgerStore = (*PostgresLedgerStore)(nil)
