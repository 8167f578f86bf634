package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"walletbot/models"
)

// replyMarkup renders the semantic keyboard hint on an outbound message into
// Telegram reply markup. Returns nil when the message carries no keyboard.
func replyMarkup(o models.Outbound) interface{} {
	switch o.Keyboard {
	case models.KeyboardMainMenu:
		return tgbotapi.NewReplyKeyboard(
			tgbotapi.NewKeyboardButtonRow(
				tgbotapi.NewKeyboardButton(models.MenuPlay),
			),
			tgbotapi.NewKeyboardButtonRow(
				tgbotapi.NewKeyboardButton(models.MenuDeposit),
				tgbotapi.NewKeyboardButton(models.MenuWithdrawal),
			),
			tgbotapi.NewKeyboardButtonRow(
				tgbotapi.NewKeyboardButton(models.MenuProfile),
				tgbotapi.NewKeyboardButton(models.MenuShareEarn),
			),
		)

	case models.KeyboardDepositMethods:
		return tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("🏦 Bank Transfer", models.CallbackDepositBank),
				tgbotapi.NewInlineKeyboardButtonData("📲 UPI", models.CallbackDepositUPI),
			),
		)

	case models.KeyboardWithdrawalMethods:
		return tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("🏦 Bank Transfer", models.CallbackWithdrawalBank),
				tgbotapi.NewInlineKeyboardButtonData("📲 UPI", models.CallbackWithdrawalUPI),
			),
		)

	case models.KeyboardGameLink:
		if o.LinkURL == "" {
			return nil
		}
		return tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonURL(models.MenuPlay, o.LinkURL),
			),
		)

	case models.KeyboardAdminConfirm:
		if o.Confirm == nil {
			return nil
		}
		label := fmt.Sprintf("✅ Confirm ₹%d", o.Confirm.Amount)
		return tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(label,
					models.EncodeAdminConfirm(o.Confirm.Kind, o.Confirm.TransactionID)),
			),
		)
	}

	return nil
}
