package models

import "strings"

// Callback data vocabulary shared between the core and the transport. User
// method-selection buttons carry the plain values; admin settlement buttons
// carry a prefix plus the transaction id.
const (
	CallbackDepositBank    = "deposit_bank"
	CallbackDepositUPI     = "deposit_upi"
	CallbackWithdrawalBank = "withdrawal_bank"
	CallbackWithdrawalUPI  = "withdrawal_upi"
)

// Main-menu reply button labels. The transport renders these on the
// persistent keyboard; the core matches on them as plain message text.
const (
	MenuPlay       = "🎮 Play"
	MenuDeposit    = "💰 Deposit"
	MenuWithdrawal = "💸 Withdrawal"
	MenuProfile    = "👤 Profile"
	MenuShareEarn  = "🎁 Share & Earn"
)

// ConfirmKind distinguishes the two admin settlement actions
type ConfirmKind string

const (
	ConfirmDeposit    ConfirmKind = "deposit"
	ConfirmWithdrawal ConfirmKind = "withdrawal"
)

const (
	adminConfirmDepositPrefix    = "admin_confirm_deposit_"
	adminConfirmWithdrawalPrefix = "admin_confirm_withdrawal_"
)

// EncodeAdminConfirm builds the callback data for an admin settlement button
func EncodeAdminConfirm(kind ConfirmKind, transactionID string) string {
	if kind == ConfirmWithdrawal {
		return adminConfirmWithdrawalPrefix + transactionID
	}
	return adminConfirmDepositPrefix + transactionID
}

// ParseAdminConfirm extracts the settlement action from callback data.
// Returns ok=false when the data is not an admin settlement payload.
func ParseAdminConfirm(data string) (kind ConfirmKind, transactionID string, ok bool) {
	switch {
	case strings.HasPrefix(data, adminConfirmDepositPrefix):
		return ConfirmDeposit, strings.TrimPrefix(data, adminConfirmDepositPrefix), true
	case strings.HasPrefix(data, adminConfirmWithdrawalPrefix):
		return ConfirmWithdrawal, strings.TrimPrefix(data, adminConfirmWithdrawalPrefix), true
	}
	return "", "", false
}
