package service

import (
	"context"
	"fmt"

	"walletbot/events"
	"walletbot/models"
)

// maxBalanceAttempts bounds the optimistic-concurrency retry loop on ledger
// mutations. A loser that exhausts its attempts surfaces
// ErrConcurrentModification instead of applying a stale delta.
const maxBalanceAttempts = 3

// creditDeposit applies a confirmed deposit inside an already-begun unit of
// work: balance grows by amount and the rollover baseline resets. Returns the
// user with the post-credit ledger fields.
func creditDeposit(ctx context.Context, uow UnitOfWork, telegramID, amount int64) (*models.User, error) {
	for attempt := 0; attempt < maxBalanceAttempts; attempt++ {
		user, err := uow.UserRepository().GetByTelegramID(ctx, telegramID)
		if err != nil {
			return nil, fmt.Errorf("failed to get user: %w", err)
		}
		if user == nil {
			return nil, ErrNotFound
		}

		ok, err := uow.UserRepository().CreditDepositIf(ctx, telegramID, user.Balance, amount)
		if err != nil {
			return nil, fmt.Errorf("failed to credit deposit: %w", err)
		}
		if !ok {
			continue // stale read, re-read and retry
		}

		uow.EventBus().Publish(events.BalanceChangeEvent{
			TelegramID:   telegramID,
			OldBalance:   user.Balance,
			NewBalance:   user.Balance + amount,
			ChangeAmount: amount,
			Reason:       models.TransactionTypeDeposit,
		})

		user.Balance += amount
		user.LastDepositAmount = amount
		user.CurrentBetRollover = 0
		return user, nil
	}

	return nil, ErrConcurrentModification
}

// debitBalance removes amount from the balance inside an already-begun unit
// of work. Fails with ErrInsufficientFunds when the balance read at execution
// time cannot cover the amount.
func debitBalance(ctx context.Context, uow UnitOfWork, telegramID, amount int64, reason models.TransactionType) (*models.User, error) {
	for attempt := 0; attempt < maxBalanceAttempts; attempt++ {
		user, err := uow.UserRepository().GetByTelegramID(ctx, telegramID)
		if err != nil {
			return nil, fmt.Errorf("failed to get user: %w", err)
		}
		if user == nil {
			return nil, ErrNotFound
		}

		if amount > user.Balance {
			return nil, ErrInsufficientFunds
		}

		ok, err := uow.UserRepository().DebitIf(ctx, telegramID, user.Balance, amount)
		if err != nil {
			return nil, fmt.Errorf("failed to debit balance: %w", err)
		}
		if !ok {
			continue
		}

		uow.EventBus().Publish(events.BalanceChangeEvent{
			TelegramID:   telegramID,
			OldBalance:   user.Balance,
			NewBalance:   user.Balance - amount,
			ChangeAmount: -amount,
			Reason:       reason,
		})

		user.Balance -= amount
		return user, nil
	}

	return nil, ErrConcurrentModification
}

// applyWager moves amount from the balance into the rollover counter inside
// an already-begun unit of work. The two field changes land as one
// conditional update so a failed deduction never grows the rollover.
func applyWager(ctx context.Context, uow UnitOfWork, telegramID, amount int64) (*models.User, error) {
	for attempt := 0; attempt < maxBalanceAttempts; attempt++ {
		user, err := uow.UserRepository().GetByTelegramID(ctx, telegramID)
		if err != nil {
			return nil, fmt.Errorf("failed to get user: %w", err)
		}
		if user == nil {
			return nil, ErrNotFound
		}

		if amount > user.Balance {
			return nil, ErrInsufficientFunds
		}

		ok, err := uow.UserRepository().ApplyWagerIf(ctx, telegramID, user.Balance, amount)
		if err != nil {
			return nil, fmt.Errorf("failed to apply wager: %w", err)
		}
		if !ok {
			continue
		}

		uow.EventBus().Publish(events.BalanceChangeEvent{
			TelegramID:   telegramID,
			OldBalance:   user.Balance,
			NewBalance:   user.Balance - amount,
			ChangeAmount: -amount,
			Reason:       models.TransactionTypeBet,
		})

		user.Balance -= amount
		user.CurrentBetRollover += amount
		return user, nil
	}

	return nil, ErrConcurrentModification
}

type walletService struct {
	uowFactory UnitOfWorkFactory
}

// NewWalletService creates a new wallet service
func NewWalletService(uowFactory UnitOfWorkFactory) WalletService {
	return &walletService{uowFactory: uowFactory}
}

func (s *walletService) Credit(ctx context.Context, telegramID int64, amount int64) error {
	if amount <= 0 {
		return &ValidationError{Field: "amount", Reason: "must be positive"}
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if _, err := creditDeposit(ctx, uow, telegramID, amount); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *walletService) Debit(ctx context.Context, telegramID int64, amount int64) error {
	if amount <= 0 {
		return &ValidationError{Field: "amount", Reason: "must be positive"}
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if _, err := debitBalance(ctx, uow, telegramID, amount, models.TransactionTypeWithdrawal); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *walletService) RecordWager(ctx context.Context, telegramID int64, amount int64) error {
	if amount <= 0 {
		return &ValidationError{Field: "amount", Reason: "must be positive"}
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if _, err := applyWager(ctx, uow, telegramID, amount); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
