package repository

import (
	"context"
	"fmt"

	"walletbot/database"
	"walletbot/models"

	"github.com/jackc/pgx/v5"
)

// TransactionRepository implements the service.TransactionRepository interface
type TransactionRepository struct {
	q queryable
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *database.DB) *TransactionRepository {
	return &TransactionRepository{q: db.Pool}
}

// newTransactionRepositoryWithTx creates a new transaction repository with a transaction
func newTransactionRepositoryWithTx(tx queryable) *TransactionRepository {
	return &TransactionRepository{q: tx}
}

// Create appends a journal entry, filling ID and CreatedAt
func (r *TransactionRepository) Create(ctx context.Context, txn *models.Transaction) error {
	query := `
		INSERT INTO transactions (transaction_id, telegram_id, type, amount, status, method, utr, selection, period_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		txn.TransactionID,
		txn.TelegramID,
		txn.Type,
		txn.Amount,
		txn.Status,
		txn.Method,
		txn.UTR,
		txn.Selection,
		txn.PeriodID,
	).Scan(&txn.ID, &txn.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create transaction %s: %w", txn.TransactionID, err)
	}

	return nil
}

// GetByTransactionID retrieves a journal entry by its opaque token
func (r *TransactionRepository) GetByTransactionID(ctx context.Context, transactionID string) (*models.Transaction, error) {
	query := `
		SELECT id, transaction_id, telegram_id, type, amount, status, method, utr, selection, period_id, confirmed_by, created_at
		FROM transactions
		WHERE transaction_id = $1
	`

	var txn models.Transaction
	err := r.q.QueryRow(ctx, query, transactionID).Scan(
		&txn.ID,
		&txn.TransactionID,
		&txn.TelegramID,
		&txn.Type,
		&txn.Amount,
		&txn.Status,
		&txn.Method,
		&txn.UTR,
		&txn.Selection,
		&txn.PeriodID,
		&txn.ConfirmedBy,
		&txn.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction %s: %w", transactionID, err)
	}

	return &txn, nil
}

// UpdateStatusIf transitions status from expected to next and records the
// settling admin. Zero affected rows means the precondition no longer held
// and the caller must treat the settlement as already done.
func (r *TransactionRepository) UpdateStatusIf(ctx context.Context, transactionID string, expected, next models.TransactionStatus, confirmedBy string) (bool, error) {
	query := `
		UPDATE transactions
		SET status = $1, confirmed_by = $2
		WHERE transaction_id = $3 AND status = $4
	`

	result, err := r.q.Exec(ctx, query, next, confirmedBy, transactionID, expected)
	if err != nil {
		return false, fmt.Errorf("failed to update status of transaction %s: %w", transactionID, err)
	}

	return result.RowsAffected() > 0, nil
}

// GetRecentByUser returns the newest journal entries for a user filtered by
// type, newest first
func (r *TransactionRepository) GetRecentByUser(ctx context.Context, telegramID int64, types []models.TransactionType, limit int) ([]*models.Transaction, error) {
	query := `
		SELECT id, transaction_id, telegram_id, type, amount, status, method, utr, selection, period_id, confirmed_by, created_at
		FROM transactions
		WHERE telegram_id = $1 AND type = ANY($2)
		ORDER BY created_at DESC, id DESC
		LIMIT $3
	`

	typeNames := make([]string, len(types))
	for i, t := range types {
		typeNames[i] = string(t)
	}

	rows, err := r.q.Query(ctx, query, telegramID, typeNames, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent transactions for user %d: %w", telegramID, err)
	}
	defer rows.Close()

	var txns []*models.Transaction
	for rows.Next() {
		var txn models.Transaction
		err := rows.Scan(
			&txn.ID,
			&txn.TransactionID,
			&txn.TelegramID,
			&txn.Type,
			&txn.Amount,
			&txn.Status,
			&txn.Method,
			&txn.UTR,
			&txn.Selection,
			&txn.PeriodID,
			&txn.ConfirmedBy,
			&txn.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txns = append(txns, &txn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	return txns, nil
}
