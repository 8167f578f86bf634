package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"walletbot/database"
	"walletbot/models"

	"github.com/jackc/pgx/v5"
)

// UserRepository implements the service.UserRepository interface
type UserRepository struct {
	q queryable
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{q: db.Pool}
}

// newUserRepositoryWithTx creates a new user repository with a transaction
func newUserRepositoryWithTx(tx queryable) *UserRepository {
	return &UserRepository{q: tx}
}

const userColumns = `
	telegram_id,
	username,
	first_name,
	balance,
	points,
	last_deposit_amount,
	current_bet_rollover,
	state,
	temp_data,
	withdrawal_details,
	created_at,
	updated_at
`

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	var tempData []byte
	var withdrawalDetails []byte

	err := row.Scan(
		&user.TelegramID,
		&user.Username,
		&user.FirstName,
		&user.Balance,
		&user.Points,
		&user.LastDepositAmount,
		&user.CurrentBetRollover,
		&user.State,
		&tempData,
		&withdrawalDetails,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(tempData) > 0 {
		if err := json.Unmarshal(tempData, &user.TempData); err != nil {
			return nil, fmt.Errorf("failed to decode temp data: %w", err)
		}
	}
	if len(withdrawalDetails) > 0 {
		var details models.WithdrawalDetails
		if err := json.Unmarshal(withdrawalDetails, &details); err != nil {
			return nil, fmt.Errorf("failed to decode withdrawal details: %w", err)
		}
		user.WithdrawalDetails = &details
	}

	return &user, nil
}

// GetByTelegramID retrieves a user by their Telegram ID
func (r *UserRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE telegram_id = $1`

	user, err := scanUser(r.q.QueryRow(ctx, query, telegramID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by telegram ID %d: %w", telegramID, err)
	}

	return user, nil
}

// Create creates a new user in the idle state with a zero balance
func (r *UserRepository) Create(ctx context.Context, telegramID int64, username, firstName string) (*models.User, error) {
	query := `
		INSERT INTO users (telegram_id, username, first_name)
		VALUES ($1, $2, $3)
		RETURNING ` + userColumns

	user, err := scanUser(r.q.QueryRow(ctx, query, telegramID, username, firstName))
	if err != nil {
		return nil, fmt.Errorf("failed to create user with telegram ID %d: %w", telegramID, err)
	}

	return user, nil
}

// SetConversationState updates the state machine position and scratch data
func (r *UserRepository) SetConversationState(ctx context.Context, telegramID int64, state models.UserState, temp models.TempData) error {
	tempJSON, err := json.Marshal(temp)
	if err != nil {
		return fmt.Errorf("failed to encode temp data: %w", err)
	}

	query := `
		UPDATE users
		SET state = $1, temp_data = $2, updated_at = NOW()
		WHERE telegram_id = $3
	`

	result, err := r.q.Exec(ctx, query, state, tempJSON, telegramID)
	if err != nil {
		return fmt.Errorf("failed to set conversation state for user %d: %w", telegramID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("user with telegram ID %d not found", telegramID)
	}

	return nil
}

// UpdateWithdrawalDetails overwrites the stored payout destination
func (r *UserRepository) UpdateWithdrawalDetails(ctx context.Context, telegramID int64, details *models.WithdrawalDetails) error {
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("failed to encode withdrawal details: %w", err)
	}

	query := `
		UPDATE users
		SET withdrawal_details = $1, updated_at = NOW()
		WHERE telegram_id = $2
	`

	result, err := r.q.Exec(ctx, query, detailsJSON, telegramID)
	if err != nil {
		return fmt.Errorf("failed to update withdrawal details for user %d: %w", telegramID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("user with telegram ID %d not found", telegramID)
	}

	return nil
}

// CreditDepositIf applies a confirmed deposit guarded by the previously read
// balance. A confirmed deposit establishes a new rollover baseline, so the
// rollover counter resets in the same statement.
func (r *UserRepository) CreditDepositIf(ctx context.Context, telegramID int64, expectedBalance, amount int64) (bool, error) {
	if amount <= 0 {
		return false, fmt.Errorf("amount must be positive")
	}

	query := `
		UPDATE users
		SET balance = balance + $1,
		    last_deposit_amount = $1,
		    current_bet_rollover = 0,
		    updated_at = NOW()
		WHERE telegram_id = $2 AND balance = $3
	`

	result, err := r.q.Exec(ctx, query, amount, telegramID, expectedBalance)
	if err != nil {
		return false, fmt.Errorf("failed to credit deposit for user %d: %w", telegramID, err)
	}

	return result.RowsAffected() > 0, nil
}

// DebitIf decrements the balance guarded by the previously read balance.
// The balance >= amount guard keeps the wallet non-negative even if the
// caller's validation raced.
func (r *UserRepository) DebitIf(ctx context.Context, telegramID int64, expectedBalance, amount int64) (bool, error) {
	if amount <= 0 {
		return false, fmt.Errorf("amount must be positive")
	}

	query := `
		UPDATE users
		SET balance = balance - $1, updated_at = NOW()
		WHERE telegram_id = $2 AND balance = $3 AND balance >= $1
	`

	result, err := r.q.Exec(ctx, query, amount, telegramID, expectedBalance)
	if err != nil {
		return false, fmt.Errorf("failed to debit balance for user %d: %w", telegramID, err)
	}

	return result.RowsAffected() > 0, nil
}

// ApplyWagerIf moves amount from the balance into the rollover counter as one
// statement, guarded by the previously read balance. A wager that fails to
// deduct must not partially update the rollover.
func (r *UserRepository) ApplyWagerIf(ctx context.Context, telegramID int64, expectedBalance, amount int64) (bool, error) {
	if amount <= 0 {
		return false, fmt.Errorf("amount must be positive")
	}

	query := `
		UPDATE users
		SET balance = balance - $1,
		    current_bet_rollover = current_bet_rollover + $1,
		    updated_at = NOW()
		WHERE telegram_id = $2 AND balance = $3 AND balance >= $1
	`

	result, err := r.q.Exec(ctx, query, amount, telegramID, expectedBalance)
	if err != nil {
		return false, fmt.Errorf("failed to apply wager for user %d: %w", telegramID, err)
	}

	return result.RowsAffected() > 0, nil
}
