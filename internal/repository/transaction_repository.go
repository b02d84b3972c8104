package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/bancore/transaction-service/internal/apperr"
	"github.com/bancore/transaction-service/internal/model"
)

// TransactionRepository persists ledger rows in PostgreSQL. The ledger is
// append-only: rows are inserted once and never updated or deleted. Business
// validation happens upstream; the repository fails only on storage errors.
type TransactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

const transactionColumns = `
	id, transaction_type, amount, account_id, credit_id, customer_id,
	status, description, balance_after, commission, error_message, created_at
`

// Save assigns an id and inserts the row. The input value is not mutated; the
// returned copy carries the assigned id.
func (r *TransactionRepository) Save(ctx context.Context, transaction *model.Transaction) (*model.Transaction, error) {
	saved := *transaction
	saved.ID = uuid.NewString()

	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.db.ExecContext(ctx, query,
		saved.ID, saved.TransactionType, saved.Amount,
		nullString(saved.AccountID), nullString(saved.CreditID), saved.CustomerID,
		saved.Status, nullString(saved.Description), saved.BalanceAfter,
		saved.Commission, nullString(saved.ErrorMessage), saved.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to save transaction: %w", err)
	}
	return &saved, nil
}

// FindByID returns a single ledger row, or a not-found error.
func (r *TransactionRepository) FindByID(ctx context.Context, id string) (*model.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`

	transaction, err := scanTransaction(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("Transaction", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return transaction, nil
}

// FindAll returns every ledger row in storage order.
func (r *TransactionRepository) FindAll(ctx context.Context) ([]model.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions ORDER BY created_at`
	return r.list(ctx, query)
}

// FindByAccountID returns the rows that reference accountID. An empty result
// is not an error.
func (r *TransactionRepository) FindByAccountID(ctx context.Context, accountID string) ([]model.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE account_id = $1 ORDER BY created_at`
	return r.list(ctx, query, accountID)
}

// FindByCreditID returns the rows that reference creditID.
func (r *TransactionRepository) FindByCreditID(ctx context.Context, creditID string) ([]model.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE credit_id = $1 ORDER BY created_at`
	return r.list(ctx, query, creditID)
}

// FindByCustomerID returns the rows owned by customerID.
func (r *TransactionRepository) FindByCustomerID(ctx context.Context, customerID string) ([]model.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE customer_id = $1 ORDER BY created_at`
	return r.list(ctx, query, customerID)
}

// FindByType returns the rows of one transaction type.
func (r *TransactionRepository) FindByType(ctx context.Context, transactionType model.TransactionType) ([]model.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_type = $1 ORDER BY created_at`
	return r.list(ctx, query, string(transactionType))
}

func (r *TransactionRepository) list(ctx context.Context, query string, args ...any) ([]model.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var transactions []model.Transaction
	for rows.Next() {
		transaction, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, *transaction)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}
	return transactions, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*model.Transaction, error) {
	var t model.Transaction
	var accountID, creditID, description, errorMessage sql.NullString

	err := row.Scan(
		&t.ID, &t.TransactionType, &t.Amount,
		&accountID, &creditID, &t.CustomerID,
		&t.Status, &description, &t.BalanceAfter,
		&t.Commission, &errorMessage, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.AccountID = accountID.String
	t.CreditID = creditID.String
	t.Description = description.String
	t.ErrorMessage = errorMessage.String
	return &t, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
