package bot

import (
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"walletbot/models"
)

func TestReplyMarkup_MainMenu(t *testing.T) {
	markup := replyMarkup(models.Outbound{Keyboard: models.KeyboardMainMenu})

	keyboard, ok := markup.(tgbotapi.ReplyKeyboardMarkup)
	require.True(t, ok)
	require.Len(t, keyboard.Keyboard, 3)
	assert.Equal(t, models.MenuPlay, keyboard.Keyboard[0][0].Text)
	assert.Equal(t, models.MenuDeposit, keyboard.Keyboard[1][0].Text)
	assert.Equal(t, models.MenuWithdrawal, keyboard.Keyboard[1][1].Text)
	assert.Equal(t, models.MenuProfile, keyboard.Keyboard[2][0].Text)
	assert.Equal(t, models.MenuShareEarn, keyboard.Keyboard[2][1].Text)
}

func TestReplyMarkup_GameLink(t *testing.T) {
	markup := replyMarkup(models.Outbound{
		Keyboard: models.KeyboardGameLink,
		LinkURL:  "https://game.example.com",
	})

	keyboard, ok := markup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	button := keyboard.InlineKeyboard[0][0]
	assert.Equal(t, models.MenuPlay, button.Text)
	require.NotNil(t, button.URL)
	assert.Equal(t, "https://game.example.com", *button.URL)

	assert.Nil(t, replyMarkup(models.Outbound{Keyboard: models.KeyboardGameLink}))
}

func TestReplyMarkup_MethodSelection(t *testing.T) {
	markup := replyMarkup(models.Outbound{Keyboard: models.KeyboardDepositMethods})

	keyboard, ok := markup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	require.Len(t, keyboard.InlineKeyboard, 1)
	assert.Equal(t, models.CallbackDepositBank, *keyboard.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, models.CallbackDepositUPI, *keyboard.InlineKeyboard[0][1].CallbackData)

	markup = replyMarkup(models.Outbound{Keyboard: models.KeyboardWithdrawalMethods})

	keyboard, ok = markup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	assert.Equal(t, models.CallbackWithdrawalBank, *keyboard.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, models.CallbackWithdrawalUPI, *keyboard.InlineKeyboard[0][1].CallbackData)
}

func TestReplyMarkup_AdminConfirm(t *testing.T) {
	markup := replyMarkup(models.Outbound{
		Keyboard: models.KeyboardAdminConfirm,
		Confirm: &models.AdminConfirmButton{
			Kind:          models.ConfirmDeposit,
			TransactionID: "txn-1",
			Amount:        150,
		},
	})

	keyboard, ok := markup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	button := keyboard.InlineKeyboard[0][0]
	assert.Contains(t, button.Text, "₹150")
	assert.Equal(t, models.EncodeAdminConfirm(models.ConfirmDeposit, "txn-1"), *button.CallbackData)
}

func TestReplyMarkup_NoKeyboard(t *testing.T) {
	assert.Nil(t, replyMarkup(models.Outbound{Text: "plain"}))
	// A confirm keyboard without a payload renders nothing
	assert.Nil(t, replyMarkup(models.Outbound{Keyboard: models.KeyboardAdminConfirm}))
}
