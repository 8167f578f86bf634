package testutil

import (
	"walletbot/models"

	"github.com/google/uuid"
)

// CreateTestDeposit creates a Pending deposit journal entry
func CreateTestDeposit(telegramID int64, amount int64) *models.Transaction {
	return &models.Transaction{
		TransactionID: uuid.NewString(),
		TelegramID:    telegramID,
		Type:          models.TransactionTypeDeposit,
		Amount:        amount,
		Status:        models.StatusPending,
		Method:        string(models.MethodUPI),
		UTR:           "UTR1234567890",
	}
}

// CreateTestWithdrawal creates a Processing withdrawal journal entry
func CreateTestWithdrawal(telegramID int64, amount int64) *models.Transaction {
	return &models.Transaction{
		TransactionID: uuid.NewString(),
		TelegramID:    telegramID,
		Type:          models.TransactionTypeWithdrawal,
		Amount:        amount,
		Status:        models.StatusProcessing,
		Method:        string(models.MethodBank),
	}
}

// CreateTestBet creates a settled bet journal entry
func CreateTestBet(telegramID int64, amount int64, selection string, periodID int64) *models.Transaction {
	return &models.Transaction{
		TransactionID: uuid.NewString(),
		TelegramID:    telegramID,
		Type:          models.TransactionTypeBet,
		Amount:        amount,
		Status:        models.StatusSuccess,
		Method:        string(models.MethodGame),
		Selection:     selection,
		PeriodID:      periodID,
	}
}
