package service

import (
	"context"

	"walletbot/events"
	"walletbot/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// GetByTelegramID retrieves a user by their Telegram ID, nil when unknown
	GetByTelegramID(ctx context.Context, telegramID int64) (*models.User, error)

	// Create creates a new user in the idle state with a zero balance
	Create(ctx context.Context, telegramID int64, username, firstName string) (*models.User, error)

	// SetConversationState updates the state machine position and scratch data
	SetConversationState(ctx context.Context, telegramID int64, state models.UserState, temp models.TempData) error

	// UpdateWithdrawalDetails overwrites the stored payout destination
	UpdateWithdrawalDetails(ctx context.Context, telegramID int64, details *models.WithdrawalDetails) error

	// CreditDepositIf applies a confirmed deposit as one conditional update:
	// balance += amount, last_deposit_amount = amount, current_bet_rollover = 0,
	// guarded by balance == expectedBalance. Returns false on a stale read.
	CreditDepositIf(ctx context.Context, telegramID int64, expectedBalance, amount int64) (bool, error)

	// DebitIf decrements the balance guarded by balance == expectedBalance.
	// Returns false on a stale read. The caller checks amount <= expectedBalance
	// before calling; the SQL additionally never lets balance go negative.
	DebitIf(ctx context.Context, telegramID int64, expectedBalance, amount int64) (bool, error)

	// ApplyWagerIf performs balance -= amount and current_bet_rollover += amount
	// as one conditional update guarded by balance == expectedBalance.
	ApplyWagerIf(ctx context.Context, telegramID int64, expectedBalance, amount int64) (bool, error)
}

// TransactionRepository defines the interface for the money-movement journal
type TransactionRepository interface {
	// Create appends a journal entry, filling ID and CreatedAt
	Create(ctx context.Context, txn *models.Transaction) error

	// GetByTransactionID retrieves a journal entry by its opaque token,
	// nil when unknown
	GetByTransactionID(ctx context.Context, transactionID string) (*models.Transaction, error)

	// UpdateStatusIf transitions status from expected to next and records the
	// settling admin. Returns false when the precondition no longer held
	// (already settled).
	UpdateStatusIf(ctx context.Context, transactionID string, expected, next models.TransactionStatus, confirmedBy string) (bool, error)

	// GetRecentByUser returns the newest journal entries for a user filtered
	// by type, newest first
	GetRecentByUser(ctx context.Context, telegramID int64, types []models.TransactionType, limit int) ([]*models.Transaction, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction and flushes pending events
	Commit() error

	// Rollback rolls back the transaction and discards pending events
	Rollback() error

	// Repository getters
	UserRepository() UserRepository
	TransactionRepository() TransactionRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// GameClock is the read-only view of the external periodic draw. The wallet
// core never owns or mutates this state.
type GameClock interface {
	// CurrentPeriod returns a snapshot of the running period
	CurrentPeriod(ctx context.Context) (*models.GamePeriod, error)

	// RecentResults returns the latest settled draws, newest first
	RecentResults(ctx context.Context, limit int) ([]models.PeriodResult, error)
}

// UserService defines the interface for user lookup and lazy creation
type UserService interface {
	// GetOrCreateUser retrieves an existing user or creates one on the first
	// inbound event for an unseen identity
	GetOrCreateUser(ctx context.Context, telegramID int64, username, firstName string) (*models.User, error)

	// GetUser retrieves an existing user, ErrNotFound when unknown
	GetUser(ctx context.Context, telegramID int64) (*models.User, error)
}

// WalletService defines the atomic ledger operations. Every mutation runs as
// a conditional update keyed on the previously read balance with bounded
// retries; losers surface ErrConcurrentModification rather than applying a
// stale delta.
type WalletService interface {
	// Credit increases the balance and establishes a new rollover baseline:
	// rollover resets to zero and lastDepositAmount becomes amount
	Credit(ctx context.Context, telegramID int64, amount int64) error

	// Debit decreases the balance, ErrInsufficientFunds when amount > balance
	Debit(ctx context.Context, telegramID int64, amount int64) error

	// RecordWager debits the balance and grows the rollover counter as one unit
	RecordWager(ctx context.Context, telegramID int64, amount int64) error
}

// ConversationService drives the per-user deposit/withdrawal conversation
// state machine. Handlers return the outbound messages for the transport to
// deliver; they never talk to the chat network themselves.
type ConversationService interface {
	// HandleMessage processes a free-text chat message from a user
	HandleMessage(ctx context.Context, from models.ChatUser, text string) ([]models.Outbound, error)

	// HandleCallback processes an inline-button press from a user
	HandleCallback(ctx context.Context, from models.ChatUser, data string) ([]models.Outbound, error)
}

// AdminService settles pending transactions. Settlement is idempotent: a
// second confirmation of the same transaction returns ErrAlreadySettled and
// changes nothing.
type AdminService interface {
	// ConfirmDeposit moves a Pending deposit to Success and credits the wallet
	ConfirmDeposit(ctx context.Context, transactionID, adminName string, ref models.MessageRef) ([]models.Outbound, error)

	// ConfirmWithdrawal moves a Processing withdrawal to Success; the funds
	// were already debited when the request was finalized
	ConfirmWithdrawal(ctx context.Context, transactionID, adminName string, ref models.MessageRef) ([]models.Outbound, error)
}

// BettingService is the ledger entry point reachable from the game API
type BettingService interface {
	// PlaceBet wagers amount on selection for the current period
	PlaceBet(ctx context.Context, telegramID int64, amount int64, selection string) (*models.BetResult, error)

	// RecentBets returns the user's latest Bet/Win journal entries
	RecentBets(ctx context.Context, telegramID int64, limit int) ([]*models.Transaction, error)
}
