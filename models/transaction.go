package models

import "time"

// TransactionType represents the kind of money movement
type TransactionType string

const (
	TransactionTypeDeposit    TransactionType = "Deposit"
	TransactionTypeWithdrawal TransactionType = "Withdrawal"
	TransactionTypeBet        TransactionType = "Bet"
	TransactionTypeWin        TransactionType = "Win"
	TransactionTypeReferral   TransactionType = "Referral"
)

// TransactionStatus represents the settlement state of a transaction.
// Deposits are created Pending (funds not yet moved), withdrawals Processing
// (funds already debited, awaiting payout). Either moves to Success exactly
// once via a conditional update.
type TransactionStatus string

const (
	StatusPending    TransactionStatus = "Pending"
	StatusProcessing TransactionStatus = "Processing"
	StatusSuccess    TransactionStatus = "Success"
	StatusFailed     TransactionStatus = "Failed"
)

// Transaction is one entry in the append-only money-movement journal.
// Immutable once created except for Status/ConfirmedBy.
type Transaction struct {
	ID            int64             `db:"id"`
	TransactionID string            `db:"transaction_id"`
	TelegramID    int64             `db:"telegram_id"`
	Type          TransactionType   `db:"type"`
	Amount        int64             `db:"amount"`
	Status        TransactionStatus `db:"status"`
	Method        string            `db:"method"`
	UTR           string            `db:"utr"`
	Selection     string            `db:"selection"`
	PeriodID      int64             `db:"period_id"`
	ConfirmedBy   *string           `db:"confirmed_by"`
	CreatedAt     time.Time         `db:"created_at"`
}

// BetResult represents the outcome of a placed bet (returned to the caller)
type BetResult struct {
	TransactionID string
	NewBalance    int64
	NewRollover   int64
	PeriodID      int64
}
