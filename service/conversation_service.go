package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"walletbot/config"
	"walletbot/events"
	"walletbot/models"
)

// minUTRLength is the shortest payment reference we accept; real UTRs are
// 12 digits but some apps show shortened reference ids.
const minUTRLength = 10

type conversationService struct {
	uowFactory UnitOfWorkFactory
	cfg        *config.Config
}

// NewConversationService creates a new conversation service
func NewConversationService(uowFactory UnitOfWorkFactory, cfg *config.Config) ConversationService {
	return &conversationService{
		uowFactory: uowFactory,
		cfg:        cfg,
	}
}

// HandleMessage processes a free-text chat message from a user. The whole
// turn runs in one unit of work, so a handler error leaves the conversation
// state untouched.
func (s *conversationService) HandleMessage(ctx context.Context, from models.ChatUser, text string) ([]models.Outbound, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := getOrCreateUser(ctx, uow, from.TelegramID, from.Username, from.FirstName)
	if err != nil {
		return nil, err
	}

	trimmed := strings.TrimSpace(text)

	// Telegram commands may arrive as /start@BotName or carry a payload
	command, _, _ := strings.Cut(trimmed, " ")
	command, _, _ = strings.Cut(command, "@")

	var out []models.Outbound
	switch {
	case command == "/start":
		// /start cancels whatever flow is in progress, always
		out, err = s.handleStart(ctx, uow, user, from)

	case user.State != models.StateIdle && strings.HasPrefix(trimmed, "/"):
		out = []models.Outbound{{
			ChatID: from.ChatID,
			Text:   "Please finish your current request first, or send /start to cancel it.",
		}}

	default:
		switch user.State {
		case models.StateIdle:
			out, err = s.handleIdle(user, from, trimmed)
		case models.StateAwaitingDepositAmount:
			out, err = s.handleDepositAmount(ctx, uow, user, from, trimmed)
		case models.StateAwaitingDepositUTR:
			out, err = s.handleDepositUTR(ctx, uow, user, from, trimmed)
		case models.StateAwaitingWithdrawalAmount:
			out, err = s.handleWithdrawalAmount(ctx, uow, user, from, trimmed)
		case models.StateAwaitingWithdrawalDetail1:
			out, err = s.handleWithdrawalDetail1(ctx, uow, user, from, trimmed)
		case models.StateAwaitingWithdrawalDetail2:
			out, err = s.handleWithdrawalDetail2(ctx, uow, user, from, trimmed)
		default:
			// Unknown persisted state, likely from an older build. Reset.
			log.WithFields(log.Fields{
				"telegramID": user.TelegramID,
				"state":      user.State,
			}).Warn("Resetting user with unrecognized conversation state")
			out, err = s.handleStart(ctx, uow, user, from)
		}
	}
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return out, nil
}

// HandleCallback processes an inline-button press from a user. Admin
// settlement buttons are routed by the transport before this is called.
func (s *conversationService) HandleCallback(ctx context.Context, from models.ChatUser, data string) ([]models.Outbound, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := getOrCreateUser(ctx, uow, from.TelegramID, from.Username, from.FirstName)
	if err != nil {
		return nil, err
	}

	var out []models.Outbound
	switch data {
	case models.CallbackDepositBank, models.CallbackDepositUPI:
		method := models.MethodBank
		if data == models.CallbackDepositUPI {
			method = models.MethodUPI
		}
		temp := models.TempData{Deposit: &models.DepositFlowData{Method: method}}
		if err := uow.UserRepository().SetConversationState(ctx, user.TelegramID, models.StateAwaitingDepositAmount, temp); err != nil {
			return nil, err
		}
		out = []models.Outbound{{
			ChatID: from.ChatID,
			Text:   fmt.Sprintf("Enter the amount you want to deposit (minimum ₹%d):", s.cfg.MinDepositAmount),
		}}

	case models.CallbackWithdrawalBank, models.CallbackWithdrawalUPI:
		method := models.MethodBank
		if data == models.CallbackWithdrawalUPI {
			method = models.MethodUPI
		}
		temp := models.TempData{Withdrawal: &models.WithdrawalFlowData{Method: method}}
		if err := uow.UserRepository().SetConversationState(ctx, user.TelegramID, models.StateAwaitingWithdrawalAmount, temp); err != nil {
			return nil, err
		}
		out = []models.Outbound{{
			ChatID: from.ChatID,
			Text: fmt.Sprintf("Your balance is ₹%d.\nEnter the amount you want to withdraw (minimum ₹%d):",
				user.Balance, s.cfg.MinWithdrawalAmount),
		}}

	default:
		log.WithFields(log.Fields{
			"telegramID": from.TelegramID,
			"data":       data,
		}).Debug("Ignoring unrecognized callback data")
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return out, nil
}

// handleStart resets the user to idle and shows the main menu
func (s *conversationService) handleStart(ctx context.Context, uow UnitOfWork, user *models.User, from models.ChatUser) ([]models.Outbound, error) {
	if user.State != models.StateIdle || !user.TempData.IsEmpty() {
		if err := uow.UserRepository().SetConversationState(ctx, user.TelegramID, models.StateIdle, models.TempData{}); err != nil {
			return nil, err
		}
	}

	return []models.Outbound{{
		ChatID:   from.ChatID,
		Text:     fmt.Sprintf("Welcome, %s! 🎉\n\nUse the menu below to manage your wallet.", user.FirstName),
		Keyboard: models.KeyboardMainMenu,
	}}, nil
}

func (s *conversationService) handleIdle(user *models.User, from models.ChatUser, text string) ([]models.Outbound, error) {
	switch text {
	case models.MenuPlay:
		if s.cfg.GameAppURL == "" {
			return []models.Outbound{{
				ChatID: from.ChatID,
				Text:   "The game is temporarily unavailable. Please try again later.",
			}}, nil
		}
		return []models.Outbound{{
			ChatID:   from.ChatID,
			Text:     "Tap below to open the game. Good luck! 🍀",
			Keyboard: models.KeyboardGameLink,
			LinkURL:  s.cfg.GameAppURL,
		}}, nil

	case models.MenuDeposit:
		return []models.Outbound{{
			ChatID:   from.ChatID,
			Text:     "How would you like to deposit?",
			Keyboard: models.KeyboardDepositMethods,
		}}, nil

	case models.MenuWithdrawal:
		return []models.Outbound{{
			ChatID:   from.ChatID,
			Text:     "How would you like to receive your withdrawal?",
			Keyboard: models.KeyboardWithdrawalMethods,
		}}, nil

	case models.MenuProfile:
		required := RequiredRollover(user, s.cfg.RolloverMultiplier)
		return []models.Outbound{{
			ChatID: from.ChatID,
			Text: fmt.Sprintf("👤 Your Profile\n\nBalance: ₹%d\nRollover: ₹%d / ₹%d\nPoints: %d",
				user.Balance, user.CurrentBetRollover, required, user.Points),
		}}, nil

	case models.MenuShareEarn:
		return []models.Outbound{{
			ChatID: from.ChatID,
			Text:   "🎁 Share & Earn\n\nInvite your friends and earn bonus points when they join and play. Your personal referral link is coming soon!",
		}}, nil
	}

	return []models.Outbound{{
		ChatID:   from.ChatID,
		Text:     "Please use the menu below.",
		Keyboard: models.KeyboardMainMenu,
	}}, nil
}

func (s *conversationService) handleDepositAmount(ctx context.Context, uow UnitOfWork, user *models.User, from models.ChatUser, text string) ([]models.Outbound, error) {
	temp := user.TempData
	if temp.Deposit == nil {
		return s.handleStart(ctx, uow, user, from)
	}

	amount, err := strconv.ParseInt(text, 10, 64)
	if err != nil || amount < s.cfg.MinDepositAmount {
		return []models.Outbound{{
			ChatID: from.ChatID,
			Text:   fmt.Sprintf("Please enter a valid amount (minimum ₹%d).", s.cfg.MinDepositAmount),
		}}, nil
	}

	temp.Deposit.Amount = amount
	if err := uow.UserRepository().SetConversationState(ctx, user.TelegramID, models.StateAwaitingDepositUTR, temp); err != nil {
		return nil, err
	}

	return []models.Outbound{{
		ChatID: from.ChatID,
		Text:   s.depositInstructions(temp.Deposit.Method, amount),
	}}, nil
}

func (s *conversationService) depositInstructions(method models.PaymentMethod, amount int64) string {
	b := s.cfg.Bank
	if method == models.MethodUPI {
		return fmt.Sprintf("✅ Deposit of ₹%d initiated.\n\nPay the exact amount to this UPI ID:\n\n📲 %s (%s)\n\nAfter paying, reply here with the UTR / reference number from your payment app.",
			amount, b.UpiID, b.HolderName)
	}
	return fmt.Sprintf("✅ Deposit of ₹%d initiated.\n\nPay the exact amount to:\n\n🏦 %s\nName: %s\nA/C: %s\nIFSC: %s\n\nAfter paying, reply here with the UTR / reference number from your payment app.",
		amount, b.BankName, b.HolderName, b.AccountNumber, b.IfscCode)
}

func (s *conversationService) handleDepositUTR(ctx context.Context, uow UnitOfWork, user *models.User, from models.ChatUser, text string) ([]models.Outbound, error) {
	temp := user.TempData
	if temp.Deposit == nil || temp.Deposit.Amount == 0 {
		return s.handleStart(ctx, uow, user, from)
	}

	if len(text) < minUTRLength {
		return []models.Outbound{{
			ChatID: from.ChatID,
			Text:   fmt.Sprintf("That reference number looks too short. Please send the full UTR / reference ID (at least %d characters).", minUTRLength),
		}}, nil
	}

	txn := &models.Transaction{
		TransactionID: uuid.NewString(),
		TelegramID:    user.TelegramID,
		Type:          models.TransactionTypeDeposit,
		Amount:        temp.Deposit.Amount,
		Status:        models.StatusPending,
		Method:        string(temp.Deposit.Method),
		UTR:           text,
	}
	if err := uow.TransactionRepository().Create(ctx, txn); err != nil {
		return nil, err
	}

	if err := uow.UserRepository().SetConversationState(ctx, user.TelegramID, models.StateIdle, models.TempData{}); err != nil {
		return nil, err
	}

	uow.EventBus().Publish(events.TransactionCreatedEvent{
		TransactionID:   txn.TransactionID,
		TelegramID:      user.TelegramID,
		TransactionType: txn.Type,
		Amount:          txn.Amount,
		Status:          txn.Status,
	})

	return []models.Outbound{
		{
			ChatID:   from.ChatID,
			Text:     fmt.Sprintf("🙏 Thank you! Your deposit of ₹%d is being verified.\nYou will be notified as soon as it is credited.", txn.Amount),
			Keyboard: models.KeyboardMainMenu,
		},
		{
			ChatID: s.cfg.AdminChatID,
			Text: fmt.Sprintf("🚨 NEW DEPOSIT REQUEST\n\nUser: %s (@%s)\nID: %d\nAmount: ₹%d\nMethod: %s\nUTR: %s",
				user.FirstName, user.Username, user.TelegramID, txn.Amount, txn.Method, txn.UTR),
			Keyboard: models.KeyboardAdminConfirm,
			Confirm: &models.AdminConfirmButton{
				Kind:          models.ConfirmDeposit,
				TransactionID: txn.TransactionID,
				Amount:        txn.Amount,
			},
		},
	}, nil
}

func (s *conversationService) handleWithdrawalAmount(ctx context.Context, uow UnitOfWork, user *models.User, from models.ChatUser, text string) ([]models.Outbound, error) {
	temp := user.TempData
	if temp.Withdrawal == nil {
		return s.handleStart(ctx, uow, user, from)
	}

	amount, err := strconv.ParseInt(text, 10, 64)
	if err != nil || amount < s.cfg.MinWithdrawalAmount {
		return []models.Outbound{{
			ChatID: from.ChatID,
			Text:   fmt.Sprintf("Please enter a valid amount (minimum ₹%d).", s.cfg.MinWithdrawalAmount),
		}}, nil
	}

	if !IsWithdrawalEligible(user, s.cfg.RolloverMultiplier) {
		// Deliberately vague, the exact threshold is not disclosed to users
		if err := uow.UserRepository().SetConversationState(ctx, user.TelegramID, models.StateIdle, models.TempData{}); err != nil {
			return nil, err
		}
		return []models.Outbound{{
			ChatID:   from.ChatID,
			Text:     "❌ Your withdrawal request cannot be processed right now. Please keep playing and try again later.",
			Keyboard: models.KeyboardMainMenu,
		}}, nil
	}

	if amount > user.Balance {
		return []models.Outbound{{
			ChatID: from.ChatID,
			Text:   fmt.Sprintf("Insufficient balance. You have ₹%d available.", user.Balance),
		}}, nil
	}

	temp.Withdrawal.Amount = amount
	if err := uow.UserRepository().SetConversationState(ctx, user.TelegramID, models.StateAwaitingWithdrawalDetail1, temp); err != nil {
		return nil, err
	}

	prompt := "Enter the account holder's name:"
	if temp.Withdrawal.Method == models.MethodUPI {
		prompt = "Enter the mobile number registered with your UPI app:"
	}
	return []models.Outbound{{ChatID: from.ChatID, Text: prompt}}, nil
}

func (s *conversationService) handleWithdrawalDetail1(ctx context.Context, uow UnitOfWork, user *models.User, from models.ChatUser, text string) ([]models.Outbound, error) {
	temp := user.TempData
	if temp.Withdrawal == nil {
		return s.handleStart(ctx, uow, user, from)
	}

	var prompt string
	if temp.Withdrawal.Method == models.MethodUPI {
		temp.Withdrawal.MobileNumber = text
		prompt = "Enter your UPI ID (e.g. name@bank):"
	} else {
		temp.Withdrawal.HolderName = text
		prompt = "Enter the account number and IFSC code, separated by a space\n(e.g. 123456789012 SBIN0001234):"
	}

	if err := uow.UserRepository().SetConversationState(ctx, user.TelegramID, models.StateAwaitingWithdrawalDetail2, temp); err != nil {
		return nil, err
	}

	return []models.Outbound{{ChatID: from.ChatID, Text: prompt}}, nil
}

func (s *conversationService) handleWithdrawalDetail2(ctx context.Context, uow UnitOfWork, user *models.User, from models.ChatUser, text string) ([]models.Outbound, error) {
	temp := user.TempData
	if temp.Withdrawal == nil || temp.Withdrawal.Amount == 0 {
		return s.handleStart(ctx, uow, user, from)
	}

	var details *models.WithdrawalDetails
	if temp.Withdrawal.Method == models.MethodUPI {
		if !strings.Contains(text, "@") {
			return []models.Outbound{{
				ChatID: from.ChatID,
				Text:   "That doesn't look like a UPI ID. Please send it in the name@bank format.",
			}}, nil
		}
		temp.Withdrawal.UpiID = text
		details = &models.WithdrawalDetails{UpiID: text}
	} else {
		fields := strings.Fields(strings.ReplaceAll(text, ",", " "))
		if len(fields) < 2 {
			return []models.Outbound{{
				ChatID: from.ChatID,
				Text:   "Please send both the account number and the IFSC code, separated by a space.",
			}}, nil
		}
		temp.Withdrawal.AccountNumber = fields[0]
		details = &models.WithdrawalDetails{
			HolderName:    temp.Withdrawal.HolderName,
			AccountNumber: fields[0],
			IfscCode:      fields[1],
		}
	}

	return s.finalizeWithdrawal(ctx, uow, user, from, temp.Withdrawal, details)
}

// finalizeWithdrawal reserves the funds and opens a Processing journal entry.
// The debit and the journal entry commit together; if the balance was spent
// mid-flow the request is cancelled and the user told to start over.
func (s *conversationService) finalizeWithdrawal(ctx context.Context, uow UnitOfWork, user *models.User, from models.ChatUser, flow *models.WithdrawalFlowData, details *models.WithdrawalDetails) ([]models.Outbound, error) {
	updated, err := debitBalance(ctx, uow, user.TelegramID, flow.Amount, models.TransactionTypeWithdrawal)
	if errors.Is(err, ErrInsufficientFunds) || errors.Is(err, ErrConcurrentModification) {
		if stateErr := uow.UserRepository().SetConversationState(ctx, user.TelegramID, models.StateIdle, models.TempData{}); stateErr != nil {
			return nil, stateErr
		}
		return []models.Outbound{{
			ChatID:   from.ChatID,
			Text:     fmt.Sprintf("❌ Your balance no longer covers ₹%d, so the request was cancelled. Please start again.", flow.Amount),
			Keyboard: models.KeyboardMainMenu,
		}}, nil
	}
	if err != nil {
		return nil, err
	}

	if err := uow.UserRepository().UpdateWithdrawalDetails(ctx, user.TelegramID, details); err != nil {
		return nil, err
	}

	// The journal entry carries its own copy of the destination; the copy on
	// the user row is overwritten by the next withdrawal flow.
	destination, err := json.Marshal(details)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal withdrawal destination: %w", err)
	}

	txn := &models.Transaction{
		TransactionID: uuid.NewString(),
		TelegramID:    user.TelegramID,
		Type:          models.TransactionTypeWithdrawal,
		Amount:        flow.Amount,
		Status:        models.StatusProcessing,
		Method:        string(flow.Method),
		Selection:     string(destination),
	}
	if err := uow.TransactionRepository().Create(ctx, txn); err != nil {
		return nil, err
	}

	if err := uow.UserRepository().SetConversationState(ctx, user.TelegramID, models.StateIdle, models.TempData{}); err != nil {
		return nil, err
	}

	uow.EventBus().Publish(events.TransactionCreatedEvent{
		TransactionID:   txn.TransactionID,
		TelegramID:      user.TelegramID,
		TransactionType: txn.Type,
		Amount:          txn.Amount,
		Status:          txn.Status,
	})

	var payout string
	if flow.Method == models.MethodUPI {
		payout = fmt.Sprintf("UPI: %s\nMobile: %s", flow.UpiID, flow.MobileNumber)
	} else {
		payout = fmt.Sprintf("Name: %s\nA/C: %s\nIFSC: %s", details.HolderName, details.AccountNumber, details.IfscCode)
	}

	return []models.Outbound{
		{
			ChatID: from.ChatID,
			Text: fmt.Sprintf("✅ Withdrawal request of ₹%d received. It will be processed shortly.\nRemaining balance: ₹%d",
				txn.Amount, updated.Balance),
			Keyboard: models.KeyboardMainMenu,
		},
		{
			ChatID: s.cfg.AdminChatID,
			Text: fmt.Sprintf("🚨 NEW WITHDRAWAL REQUEST\n\nUser: %s (@%s)\nID: %d\nAmount: ₹%d\nMethod: %s\n%s",
				user.FirstName, user.Username, user.TelegramID, txn.Amount, txn.Method, payout),
			Keyboard: models.KeyboardAdminConfirm,
			Confirm: &models.AdminConfirmButton{
				Kind:          models.ConfirmWithdrawal,
				TransactionID: txn.TransactionID,
				Amount:        txn.Amount,
			},
		},
	}, nil
}
