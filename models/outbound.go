package models

// ChatUser identifies the sender of an inbound chat event
type ChatUser struct {
	TelegramID int64
	ChatID     int64
	Username   string
	FirstName  string
}

// KeyboardKind is a semantic hint telling the transport which reply markup to
// render alongside an outbound message. The core never builds transport
// markup itself.
type KeyboardKind string

const (
	KeyboardNone              KeyboardKind = ""
	KeyboardMainMenu          KeyboardKind = "main_menu"
	KeyboardDepositMethods    KeyboardKind = "deposit_methods"
	KeyboardWithdrawalMethods KeyboardKind = "withdrawal_methods"
	KeyboardAdminConfirm      KeyboardKind = "admin_confirm"
	KeyboardGameLink          KeyboardKind = "game_link"
)

// MessageRef points at an already-sent chat message, used when a handler
// wants the transport to edit it in place
type MessageRef struct {
	ChatID    int64
	MessageID int
}

// AdminConfirmButton carries the payload for the admin settlement button
type AdminConfirmButton struct {
	Kind          ConfirmKind
	TransactionID string
	Amount        int64
}

// Outbound is a transport-agnostic message the core asks the transport to
// deliver. When Edit is set the transport edits the referenced message
// instead of sending a new one.
type Outbound struct {
	ChatID   int64
	Text     string
	Keyboard KeyboardKind
	Confirm  *AdminConfirmButton
	LinkURL  string
	Edit     *MessageRef
}
