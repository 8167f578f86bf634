package service

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"walletbot/events"
	"walletbot/models"
)

type adminService struct {
	uowFactory UnitOfWorkFactory
}

// NewAdminService creates a new admin settlement service
func NewAdminService(uowFactory UnitOfWorkFactory) AdminService {
	return &adminService{uowFactory: uowFactory}
}

// ConfirmDeposit moves a Pending deposit to Success and credits the wallet.
// The status transition is a conditional update, so a double tap on the same
// button settles once: the second call sees zero affected rows and returns
// ErrAlreadySettled without touching the ledger.
func (s *adminService) ConfirmDeposit(ctx context.Context, transactionID, adminName string, ref models.MessageRef) ([]models.Outbound, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	txn, err := uow.TransactionRepository().GetByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if txn == nil {
		return nil, ErrNotFound
	}

	moved, err := uow.TransactionRepository().UpdateStatusIf(ctx, transactionID, models.StatusPending, models.StatusSuccess, adminName)
	if err != nil {
		return nil, err
	}
	if !moved {
		log.WithFields(log.Fields{
			"transactionID": transactionID,
			"status":        txn.Status,
			"admin":         adminName,
		}).Info("Deposit already settled, skipping")
		if err := uow.Commit(); err != nil {
			return nil, fmt.Errorf("failed to commit transaction: %w", err)
		}
		return nil, ErrAlreadySettled
	}

	// Credit only on the winning confirmation
	user, err := creditDeposit(ctx, uow, txn.TelegramID, txn.Amount)
	if err != nil {
		return nil, err
	}

	uow.EventBus().Publish(events.TransactionSettledEvent{
		TransactionID:   transactionID,
		TelegramID:      txn.TelegramID,
		TransactionType: txn.Type,
		Amount:          txn.Amount,
		ConfirmedBy:     adminName,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return []models.Outbound{
		{
			ChatID: txn.TelegramID,
			Text:   fmt.Sprintf("✅ Your deposit of ₹%d has been credited!\nNew balance: ₹%d", txn.Amount, user.Balance),
		},
		{
			ChatID: ref.ChatID,
			Text:   fmt.Sprintf("✅ Deposit ₹%d confirmed by %s", txn.Amount, adminName),
			Edit:   &ref,
		},
	}, nil
}

// ConfirmWithdrawal moves a Processing withdrawal to Success. The funds were
// already debited when the request was finalized, so settlement carries no
// ledger effect.
func (s *adminService) ConfirmWithdrawal(ctx context.Context, transactionID, adminName string, ref models.MessageRef) ([]models.Outbound, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	txn, err := uow.TransactionRepository().GetByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if txn == nil {
		return nil, ErrNotFound
	}

	moved, err := uow.TransactionRepository().UpdateStatusIf(ctx, transactionID, models.StatusProcessing, models.StatusSuccess, adminName)
	if err != nil {
		return nil, err
	}
	if !moved {
		log.WithFields(log.Fields{
			"transactionID": transactionID,
			"status":        txn.Status,
			"admin":         adminName,
		}).Info("Withdrawal already settled, skipping")
		if err := uow.Commit(); err != nil {
			return nil, fmt.Errorf("failed to commit transaction: %w", err)
		}
		return nil, ErrAlreadySettled
	}

	uow.EventBus().Publish(events.TransactionSettledEvent{
		TransactionID:   transactionID,
		TelegramID:      txn.TelegramID,
		TransactionType: txn.Type,
		Amount:          txn.Amount,
		ConfirmedBy:     adminName,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return []models.Outbound{
		{
			ChatID: txn.TelegramID,
			Text:   fmt.Sprintf("✅ Your withdrawal of ₹%d has been paid out.", txn.Amount),
		},
		{
			ChatID: ref.ChatID,
			Text:   fmt.Sprintf("✅ Withdrawal ₹%d paid by %s", txn.Amount, adminName),
			Edit:   &ref,
		},
	}, nil
}
