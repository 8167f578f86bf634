package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"walletbot/config"
	"walletbot/events"
	"walletbot/models"
)

func conversationTestConfig() *config.Config {
	return &config.Config{
		AdminChatID:         999,
		MinDepositAmount:    100,
		MinWithdrawalAmount: 500,
		RolloverMultiplier:  1,
		Bank: config.BankDetails{
			HolderName:    "Test Holder",
			BankName:      "Test Bank",
			AccountNumber: "111122223333",
			IfscCode:      "TEST0000001",
			UpiID:         "testpay@bank",
		},
	}
}

func conversationTestUser(state models.UserState, temp models.TempData) *models.User {
	return &models.User{
		TelegramID: 123456,
		Username:   "testuser",
		FirstName:  "Test",
		Balance:    1000,
		State:      state,
		TempData:   temp,
	}
}

var testChatUser = models.ChatUser{
	TelegramID: 123456,
	ChatID:     123456,
	Username:   "testuser",
	FirstName:  "Test",
}

func setupConversationMocks() (*MockUnitOfWorkFactory, *MockUnitOfWork, *MockUserRepository, *MockTransactionRepository) {
	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)
	mockTxnRepo := new(MockTransactionRepository)
	mockUoW.SetRepositories(mockUserRepo, mockTxnRepo)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", mock.Anything).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	return mockFactory, mockUoW, mockUserRepo, mockTxnRepo
}

func TestConversationService_Start_ResetsActiveFlow(t *testing.T) {
	ctx := context.Background()
	mockFactory, _, mockUserRepo, _ := setupConversationMocks()
	svc := NewConversationService(mockFactory, conversationTestConfig())

	user := conversationTestUser(models.StateAwaitingDepositUTR,
		models.TempData{Deposit: &models.DepositFlowData{Method: models.MethodBank, Amount: 150}})
	mockUserRepo.On("GetByTelegramID", ctx, int64(123456)).Return(user, nil)
	mockUserRepo.On("SetConversationState", ctx, int64(123456), models.StateIdle, models.TempData{}).Return(nil)

	out, err := svc.HandleMessage(ctx, testChatUser, "/start")

	assert.NoError(t, err)
	assert.Len(t, out, 1)
	assert.Equal(t, models.KeyboardMainMenu, out[0].Keyboard)
	assert.Contains(t, out[0].Text, "Test")
	mockUserRepo.AssertExpectations(t)
}

func TestConversationService_Start_AcceptsBotMention(t *testing.T) {
	ctx := context.Background()
	mockFactory, _, mockUserRepo, _ := setupConversationMocks()
	svc := NewConversationService(mockFactory, conversationTestConfig())

	user := conversationTestUser(models.StateAwaitingDepositAmount,
		models.TempData{Deposit: &models.DepositFlowData{Method: models.MethodBank}})
	mockUserRepo.On("GetByTelegramID", ctx, int64(123456)).Return(user, nil)
	mockUserRepo.On("SetConversationState", ctx, int64(123456), models.StateIdle, models.TempData{}).Return(nil)

	// Group chats address the command to the bot
	out, err := svc.HandleMessage(ctx, testChatUser, "/start@TestWalletBot")

	assert.NoError(t, err)
	assert.Len(t, out, 1)
	assert.Equal(t, models.KeyboardMainMenu, out[0].Keyboard)
	mockUserRepo.AssertExpectations(t)
}

func TestConversationService_Start_CreatesUnknownUser(t *testing.T) {
	ctx := context.Background()
	mockFactory, mockUoW, mockUserRepo, _ := setupConversationMocks()
	svc := NewConversationService(mockFactory, conversationTestConfig())

	created := conversationTestUser(models.StateIdle, models.TempData{})
	mockUserRepo.On("GetByTelegramID", ctx, int64(123456)).Return(nil, nil)
	mockUserRepo.On("Create", ctx, int64(123456), "testuser", "Test").Return(created, nil)

	out, err := svc.HandleMessage(ctx, testChatUser, "/start")

	assert.NoError(t, err)
	assert.Len(t, out, 1)

	published := mockUoW.PublishedEvents()
	assert.Len(t, published, 1)
	assert.IsType(t, events.UserCreatedEvent{}, published[0])
	mockUserRepo.AssertExpectations(t)
}

func TestConversationService_Callback_DepositMethodStartsFlow(t *testing.T) {
	ctx := context.Background()
	mockFactory, _, mockUserRepo, _ := setupConversationMocks()
	svc := NewConversationService(mockFactory, conversationTestConfig())

	user := conversationTestUser(models.StateIdle, models.TempData{})
	mockUserRepo.On("GetByTelegramID", ctx, int64(123456)).Return(user, nil)
	mockUserRepo.On("SetConversationState", ctx, int64(123456), models.StateAwaitingDepositAmount,
		models.TempData{Deposit: &models.DepositFlowData{Method: models.MethodUPI}}).Return(nil)

	out, err := svc.HandleCallback(ctx, testChatUser, models.CallbackDepositUPI)

	assert.NoError(t, err)
	assert.Len(t, out, 1)
	assert.Contains(t, out[0].Text, "₹100")
	mockUserRepo.AssertExpectations(t)
}

func TestConversationService_DepositAmount_Valid(t *testing.T) {
	ctx := context.Background()
	mockFactory, _, mockUserRepo, _ := setupConversationMocks()
	svc := NewConversationService(mockFactory, conversationTestConfig())

	user := conversationTestUser(models.StateAwaitingDepositAmount,
		models.TempData{Deposit: &models.DepositFlowData{Method: models.MethodBank}})
	mockUserRepo.On("GetByTelegramID", ctx, int64(123456)).Return(user, nil)
	mockUserRepo.On("SetConversationState", ctx, int64(123456), models.StateAwaitingDepositUTR,
		models.TempData{Deposit: &models.DepositFlowData{Method: models.MethodBank, Amount: 150}}).Return(nil)

	out, err := svc.HandleMessage(ctx, testChatUser, "150")

	assert.NoError(t, err)
	assert.Len(t, out, 1)
	// Payment instructions must carry the receiving account
	assert.Contains(t, out[0].Text, "111122223333")
	assert.Contains(t, out[0].Text, "TEST0000001")
	mockUserRepo.AssertExpectations(t)
}

func TestConversationService_DepositAmount_BelowMinimum(t *testing.T) {
	ctx := context.Background()
	mockFactory, _, mockUserRepo, _ := setupConversationMocks()
	svc := NewConversationService(mockFactory, conversationTestConfig())

	user := conversationTestUser(models.StateAwaitingDepositAmount,
		models.TempData{Deposit: &models.DepositFlowData{Method: models.MethodBank}})
	mockUserRepo.On("GetByTelegramID", ctx, int64(123456)).Return(user, nil)

	out, err := svc.HandleMessage(ctx, testChatUser, "50")

	assert.NoError(t, err)
	assert.Len(t, out, 1)
	assert.Contains(t, out[0].Text, "₹100")
	// Invalid input re-prompts without a state transition
	mockUserRepo.AssertNotCalled(t, "SetConversationState", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestConversationService_DepositUTR_TooShort(t *testing.T) {
	ctx := context.Background()
	mockFactory, _, mockUserRepo, mockTxnRepo := setupConversationMocks()
	svc := NewConversationService(mockFactory, conversationTestConfig())

	user := conversationTestUser(models.StateAwaitingDepositUTR,
		models.TempData{Deposit: &models.DepositFlowData{Method: models.MethodUPI, Amount: 150}})
	mockUserRepo.On("GetByTelegramID", ctx, int64(123456)).Return(user, nil)

	out, err := svc.HandleMessage(ctx, testChatUser, "12345")

	assert.NoError(t, err)
	assert.Len(t, out, 1)
	mockTxnRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestConversationService_DepositUTR_CreatesPendingTransaction(t *testing.T) {
	ctx := context.Background()
	mockFactory, mockUoW, mockUserRepo, mockTxnRepo := setupConversationMocks()
	cfg := conversationTestConfig()
	svc := NewConversationService(mockFactory, cfg)

	user := conversationTestUser(models.StateAwaitingDepositUTR,
		models.TempData{Deposit: &models.DepositFlowData{Method: models.MethodUPI, Amount: 150}})
	mockUserRepo.On("GetByTelegramID", ctx, int64(123456)).Return(user, nil)
	mockUserRepo.On("SetConversationState", ctx, int64(123456), models.StateIdle, models.TempData{}).Return(nil)

	mockTxnRepo.On("Create", ctx, mock.MatchedBy(func(txn *models.Transaction) bool {
		return txn.TelegramID == 123456 &&
			txn.Type == models.TransactionTypeDeposit &&
			txn.Status == models.StatusPending &&
			txn.Amount == 150 &&
			txn.UTR == "UTR1234567890" &&
			txn.TransactionID != ""
	})).Return(nil)

	out, err := svc.HandleMessage(ctx, testChatUser, "UTR1234567890")

	assert.NoError(t, err)
	assert.Len(t, out, 2)

	// First message acknowledges the user, second notifies the admin chat
	assert.Equal(t, testChatUser.ChatID, out[0].ChatID)
	assert.Equal(t, cfg.AdminChatID, out[1].ChatID)
	assert.NotNil(t, out[1].Confirm)
	assert.Equal(t, models.ConfirmDeposit, out[1].Confirm.Kind)
	assert.Equal(t, int64(150), out[1].Confirm.Amount)

	published := mockUoW.PublishedEvents()
	assert.Len(t, published, 1)
	assert.IsType(t, events.TransactionCreatedEvent{}, published[0])

	mockUserRepo.AssertExpectations(t)
	mockTxnRepo.AssertExpectations(t)
}

func TestConversationService_WithdrawalAmount_RolloverNotMet(t *testing.T) {
	ctx := context.Background()
	mockFactory, _, mockUserRepo, _ := setupConversationMocks()
	svc := NewConversationService(mockFactory, conversationTestConfig())

	user := conversationTestUser(models.StateAwaitingWithdrawalAmount,
		models.TempData{Withdrawal: &models.WithdrawalFlowData{Method: models.MethodBank}})
	user.Balance = 2000
	user.LastDepositAmount = 1000
	user.CurrentBetRollover = 400

	mockUserRepo.On("GetByTelegramID", ctx, int64(123456)).Return(user, nil)
	mockUserRepo.On("SetConversationState", ctx, int64(123456), models.StateIdle, models.TempData{}).Return(nil)

	out, err := svc.HandleMessage(ctx, testChatUser, "600")

	assert.NoError(t, err)
	assert.Len(t, out, 1)
	assert.Contains(t, out[0].Text, "cannot be processed")
	// The rejection never leaks the wagering requirement
	assert.NotContains(t, out[0].Text, "1000")
	assert.NotContains(t, out[0].Text, "400")
	mockUserRepo.AssertExpectations(t)
}

func TestConversationService_WithdrawalAmount_RolloverCheckedBeforeBalance(t *testing.T) {
	ctx := context.Background()
	mockFactory, _, mockUserRepo, _ := setupConversationMocks()
	svc := NewConversationService(mockFactory, conversationTestConfig())

	// Fails both checks; the rollover rejection ends the flow rather than
	// re-prompting on balance
	user := conversationTestUser(models.StateAwaitingWithdrawalAmount,
		models.TempData{Withdrawal: &models.WithdrawalFlowData{Method: models.MethodBank}})
	user.Balance = 300
	user.LastDepositAmount = 1000
	user.CurrentBetRollover = 100

	mockUserRepo.On("GetByTelegramID", ctx, int64(123456)).Return(user, nil)
	mockUserRepo.On("SetConversationState", ctx, int64(123456), models.StateIdle, models.TempData{}).Return(nil)

	out, err := svc.HandleMessage(ctx, testChatUser, "600")

	assert.NoError(t, err)
	assert.Len(t, out, 1)
	assert.Contains(t, out[0].Text, "cannot be processed")
	assert.NotContains(t, out[0].Text, "Insufficient balance")
	mockUserRepo.AssertExpectations(t)
}

func TestConversationService_WithdrawalAmount_InsufficientBalance(t *testing.T) {
	ctx := context.Background()
	mockFactory, _, mockUserRepo, _ := setupConversationMocks()
	svc := NewConversationService(mockFactory, conversationTestConfig())

	user := conversationTestUser(models.StateAwaitingWithdrawalAmount,
		models.TempData{Withdrawal: &models.WithdrawalFlowData{Method: models.MethodBank}})
	user.Balance = 550

	mockUserRepo.On("GetByTelegramID", ctx, int64(123456)).Return(user, nil)

	out, err := svc.HandleMessage(ctx, testChatUser, "600")

	assert.NoError(t, err)
	assert.Len(t, out, 1)
	assert.Contains(t, out[0].Text, "Insufficient balance")
	mockUserRepo.AssertNotCalled(t, "SetConversationState", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestConversationService_Withdrawal_FinalizeBank(t *testing.T) {
	ctx := context.Background()
	mockFactory, mockUoW, mockUserRepo, mockTxnRepo := setupConversationMocks()
	cfg := conversationTestConfig()
	svc := NewConversationService(mockFactory, cfg)

	user := conversationTestUser(models.StateAwaitingWithdrawalDetail2,
		models.TempData{Withdrawal: &models.WithdrawalFlowData{
			Method:     models.MethodBank,
			Amount:     600,
			HolderName: "Ram Kumar",
		}})
	user.CurrentBetRollover = 1000
	user.LastDepositAmount = 1000

	mockUserRepo.On("GetByTelegramID", ctx, int64(123456)).Return(user, nil)
	mockUserRepo.On("DebitIf", ctx, int64(123456), int64(1000), int64(600)).Return(true, nil)
	mockUserRepo.On("UpdateWithdrawalDetails", ctx, int64(123456), mock.MatchedBy(func(d *models.WithdrawalDetails) bool {
		return d.HolderName == "Ram Kumar" &&
			d.AccountNumber == "123456789012" &&
			d.IfscCode == "SBIN0001234"
	})).Return(nil)
	mockUserRepo.On("SetConversationState", ctx, int64(123456), models.StateIdle, models.TempData{}).Return(nil)

	mockTxnRepo.On("Create", ctx, mock.MatchedBy(func(txn *models.Transaction) bool {
		// The journal entry keeps its own copy of the payout destination
		var dest models.WithdrawalDetails
		if err := json.Unmarshal([]byte(txn.Selection), &dest); err != nil {
			return false
		}
		return txn.Type == models.TransactionTypeWithdrawal &&
			txn.Status == models.StatusProcessing &&
			txn.Amount == 600 &&
			dest.HolderName == "Ram Kumar" &&
			dest.AccountNumber == "123456789012" &&
			dest.IfscCode == "SBIN0001234"
	})).Return(nil)

	out, err := svc.HandleMessage(ctx, testChatUser, "123456789012 SBIN0001234")

	assert.NoError(t, err)
	assert.Len(t, out, 2)
	assert.Contains(t, out[0].Text, "₹400") // remaining balance after the debit
	assert.Equal(t, cfg.AdminChatID, out[1].ChatID)
	assert.NotNil(t, out[1].Confirm)
	assert.Equal(t, models.ConfirmWithdrawal, out[1].Confirm.Kind)

	published := mockUoW.PublishedEvents()
	assert.Len(t, published, 2) // balance change + transaction created

	mockUserRepo.AssertExpectations(t)
	mockTxnRepo.AssertExpectations(t)
}

func TestConversationService_CommandDuringFlow_AsksToFinish(t *testing.T) {
	ctx := context.Background()
	mockFactory, _, mockUserRepo, _ := setupConversationMocks()
	svc := NewConversationService(mockFactory, conversationTestConfig())

	user := conversationTestUser(models.StateAwaitingDepositAmount,
		models.TempData{Deposit: &models.DepositFlowData{Method: models.MethodBank}})
	mockUserRepo.On("GetByTelegramID", ctx, int64(123456)).Return(user, nil)

	out, err := svc.HandleMessage(ctx, testChatUser, "/help")

	assert.NoError(t, err)
	assert.Len(t, out, 1)
	assert.Contains(t, out[0].Text, "/start")
	mockUserRepo.AssertNotCalled(t, "SetConversationState", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestConversationService_Idle_PlayLinksGame(t *testing.T) {
	ctx := context.Background()
	mockFactory, _, mockUserRepo, _ := setupConversationMocks()
	cfg := conversationTestConfig()
	cfg.GameAppURL = "https://game.example.com"
	svc := NewConversationService(mockFactory, cfg)

	user := conversationTestUser(models.StateIdle, models.TempData{})
	mockUserRepo.On("GetByTelegramID", ctx, int64(123456)).Return(user, nil)

	out, err := svc.HandleMessage(ctx, testChatUser, models.MenuPlay)

	assert.NoError(t, err)
	assert.Len(t, out, 1)
	assert.Equal(t, models.KeyboardGameLink, out[0].Keyboard)
	assert.Equal(t, "https://game.example.com", out[0].LinkURL)
}

func TestConversationService_Idle_Profile(t *testing.T) {
	ctx := context.Background()
	mockFactory, _, mockUserRepo, _ := setupConversationMocks()
	svc := NewConversationService(mockFactory, conversationTestConfig())

	user := conversationTestUser(models.StateIdle, models.TempData{})
	user.Balance = 750
	user.CurrentBetRollover = 200
	user.LastDepositAmount = 500
	user.Points = 12

	mockUserRepo.On("GetByTelegramID", ctx, int64(123456)).Return(user, nil)

	out, err := svc.HandleMessage(ctx, testChatUser, models.MenuProfile)

	assert.NoError(t, err)
	assert.Len(t, out, 1)
	assert.Contains(t, out[0].Text, "₹750")
	assert.Contains(t, out[0].Text, "₹200 / ₹500")
}
