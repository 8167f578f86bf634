package bot

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"walletbot/config"
	"walletbot/models"
	"walletbot/service"
)

// Bot is the Telegram transport. It turns updates into service calls and
// delivers the outbound messages the services return; all conversation and
// settlement logic lives behind the service interfaces.
type Bot struct {
	api          *tgbotapi.BotAPI
	cfg          *config.Config
	conversation service.ConversationService
	admin        service.AdminService
}

// New authorizes against the Telegram API and creates the transport
func New(cfg *config.Config, conversation service.ConversationService, admin service.AdminService) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to authorize bot: %w", err)
	}

	log.WithField("username", api.Self.UserName).Info("Telegram bot authorized")

	return &Bot{
		api:          api,
		cfg:          cfg,
		conversation: conversation,
		admin:        admin,
	}, nil
}

// Run long-polls for updates until ctx is cancelled
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update := <-updates:
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.Message != nil && update.Message.From != nil:
		b.handleMessage(ctx, update.Message)
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	from := models.ChatUser{
		TelegramID: msg.From.ID,
		ChatID:     msg.Chat.ID,
		Username:   msg.From.UserName,
		FirstName:  msg.From.FirstName,
	}

	out, err := b.conversation.HandleMessage(ctx, from, msg.Text)
	if err != nil {
		log.WithFields(log.Fields{
			"telegramID": from.TelegramID,
			"error":      err,
		}).Error("Failed to handle message")
		b.deliver([]models.Outbound{{
			ChatID: from.ChatID,
			Text:   "Something went wrong. Please try again.",
		}})
		return
	}

	b.deliver(out)
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	// Acknowledge immediately so the button stops spinning
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		log.WithField("error", err).Warn("Failed to answer callback query")
	}

	if cb.Message == nil {
		return
	}

	if kind, transactionID, ok := models.ParseAdminConfirm(cb.Data); ok {
		b.handleAdminConfirm(ctx, cb, kind, transactionID)
		return
	}

	from := models.ChatUser{
		TelegramID: cb.From.ID,
		ChatID:     cb.Message.Chat.ID,
		Username:   cb.From.UserName,
		FirstName:  cb.From.FirstName,
	}

	out, err := b.conversation.HandleCallback(ctx, from, cb.Data)
	if err != nil {
		log.WithFields(log.Fields{
			"telegramID": from.TelegramID,
			"data":       cb.Data,
			"error":      err,
		}).Error("Failed to handle callback")
		return
	}

	b.deliver(out)
}

// handleAdminConfirm settles a transaction from the admin chat. Buttons
// pressed outside the admin chat are ignored; forwarding a settlement
// message must not grant the settle permission with it.
func (b *Bot) handleAdminConfirm(ctx context.Context, cb *tgbotapi.CallbackQuery, kind models.ConfirmKind, transactionID string) {
	if cb.Message.Chat.ID != b.cfg.AdminChatID {
		log.WithFields(log.Fields{
			"chatID":        cb.Message.Chat.ID,
			"transactionID": transactionID,
		}).Warn("Ignoring admin confirmation from outside the admin chat")
		return
	}

	adminName := cb.From.FirstName
	if cb.From.UserName != "" {
		adminName = "@" + cb.From.UserName
	}

	ref := models.MessageRef{
		ChatID:    cb.Message.Chat.ID,
		MessageID: cb.Message.MessageID,
	}

	var out []models.Outbound
	var err error
	switch kind {
	case models.ConfirmWithdrawal:
		out, err = b.admin.ConfirmWithdrawal(ctx, transactionID, adminName, ref)
	default:
		out, err = b.admin.ConfirmDeposit(ctx, transactionID, adminName, ref)
	}

	if errors.Is(err, service.ErrAlreadySettled) {
		// Replayed button tap, stay silent
		return
	}
	if errors.Is(err, service.ErrNotFound) {
		b.deliver([]models.Outbound{{
			ChatID: b.cfg.AdminChatID,
			Text:   fmt.Sprintf("⚠️ Unknown transaction %s", transactionID),
		}})
		return
	}
	if err != nil {
		log.WithFields(log.Fields{
			"transactionID": transactionID,
			"kind":          kind,
			"error":         err,
		}).Error("Failed to settle transaction")
		return
	}

	b.deliver(out)
}

// deliver sends or edits messages as the services requested. A delivery
// failure is logged and does not stop the remaining messages.
func (b *Bot) deliver(out []models.Outbound) {
	for _, o := range out {
		var err error
		if o.Edit != nil {
			edit := tgbotapi.NewEditMessageText(o.Edit.ChatID, o.Edit.MessageID, o.Text)
			_, err = b.api.Send(edit)
		} else {
			msg := tgbotapi.NewMessage(o.ChatID, o.Text)
			if markup := replyMarkup(o); markup != nil {
				msg.ReplyMarkup = markup
			}
			_, err = b.api.Send(msg)
		}

		if err != nil {
			log.WithFields(log.Fields{
				"chatID": o.ChatID,
				"error":  err,
			}).Error("Failed to deliver message")
		}
	}
}
