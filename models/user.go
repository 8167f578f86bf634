package models

import (
	"time"
)

// UserState drives the per-user conversation state machine. New users start
// in StateIdle.
type UserState string

const (
	StateIdle                      UserState = "idle"
	StateAwaitingDepositAmount     UserState = "waiting_for_deposit_amount"
	StateAwaitingDepositUTR        UserState = "waiting_for_deposit_utr"
	StateAwaitingWithdrawalAmount  UserState = "waiting_for_withdrawal_amount"
	StateAwaitingWithdrawalDetail1 UserState = "waiting_for_withdrawal_detail_1"
	StateAwaitingWithdrawalDetail2 UserState = "waiting_for_withdrawal_detail_2"
)

// PaymentMethod identifies how money enters or leaves a wallet
type PaymentMethod string

const (
	MethodBank PaymentMethod = "bank"
	MethodUPI  PaymentMethod = "upi"
	MethodGame PaymentMethod = "game"
)

// DepositFlowData holds the fields collected so far during a deposit flow
type DepositFlowData struct {
	Method PaymentMethod `json:"method"`
	Amount int64         `json:"amount,omitempty"`
}

// WithdrawalFlowData holds the fields collected so far during a withdrawal flow
type WithdrawalFlowData struct {
	Method        PaymentMethod `json:"method"`
	Amount        int64         `json:"amount,omitempty"`
	HolderName    string        `json:"holder_name,omitempty"`
	AccountNumber string        `json:"account_number,omitempty"`
	MobileNumber  string        `json:"mobile_number,omitempty"`
	UpiID         string        `json:"upi_id,omitempty"`
}

// TempData is the flow-scoped scratch space persisted alongside the user's
// conversation state. At most one variant is set; a non-idle state implies
// the matching variant is present.
type TempData struct {
	Deposit    *DepositFlowData    `json:"deposit,omitempty"`
	Withdrawal *WithdrawalFlowData `json:"withdrawal,omitempty"`
}

// IsEmpty reports whether no flow data is being carried
func (t TempData) IsEmpty() bool {
	return t.Deposit == nil && t.Withdrawal == nil
}

// WithdrawalDetails is the last payout destination a user completed a
// withdrawal with, overwritten on each finished withdrawal flow
type WithdrawalDetails struct {
	HolderName    string `json:"holder_name,omitempty"`
	AccountNumber string `json:"account_number,omitempty"`
	IfscCode      string `json:"ifsc_code,omitempty"`
	UpiID         string `json:"upi_id,omitempty"`
}

// User represents a Telegram user with a wallet
type User struct {
	TelegramID         int64              `db:"telegram_id"`
	Username           string             `db:"username"`
	FirstName          string             `db:"first_name"`
	Balance            int64              `db:"balance"`
	Points             int64              `db:"points"`
	LastDepositAmount  int64              `db:"last_deposit_amount"`
	CurrentBetRollover int64              `db:"current_bet_rollover"`
	State              UserState          `db:"state"`
	TempData           TempData           `db:"temp_data"`
	WithdrawalDetails  *WithdrawalDetails `db:"withdrawal_details"`
	CreatedAt          time.Time          `db:"created_at"`
	UpdatedAt          time.Time          `db:"updated_at"`
}
