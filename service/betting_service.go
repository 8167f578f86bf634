package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"walletbot/events"
	"walletbot/models"
)

type bettingService struct {
	uowFactory UnitOfWorkFactory
	clock      GameClock
}

// NewBettingService creates a new betting service
func NewBettingService(uowFactory UnitOfWorkFactory, clock GameClock) BettingService {
	return &bettingService{
		uowFactory: uowFactory,
		clock:      clock,
	}
}

// PlaceBet wagers amount on selection for the current period. The debit, the
// rollover growth and the journal entry commit as one unit; a bet is never
// journaled without the matching ledger movement.
func (s *bettingService) PlaceBet(ctx context.Context, telegramID int64, amount int64, selection string) (*models.BetResult, error) {
	if amount <= 0 {
		return nil, &ValidationError{Field: "amount", Reason: "must be positive"}
	}
	if selection == "" {
		return nil, &ValidationError{Field: "selection", Reason: "must not be empty"}
	}

	period, err := s.clock.CurrentPeriod(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current period: %w", err)
	}
	if period.Status != models.PeriodOpen {
		return nil, &ValidationError{Field: "period", Reason: "betting is closed for this period"}
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := applyWager(ctx, uow, telegramID, amount)
	if err != nil {
		return nil, err
	}

	txn := &models.Transaction{
		TransactionID: uuid.NewString(),
		TelegramID:    telegramID,
		Type:          models.TransactionTypeBet,
		Amount:        amount,
		Status:        models.StatusSuccess,
		Method:        string(models.MethodGame),
		Selection:     selection,
		PeriodID:      period.ID,
	}
	if err := uow.TransactionRepository().Create(ctx, txn); err != nil {
		return nil, err
	}

	uow.EventBus().Publish(events.BetPlacedEvent{
		TelegramID:    telegramID,
		TransactionID: txn.TransactionID,
		Amount:        amount,
		Selection:     selection,
		PeriodID:      period.ID,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.BetResult{
		TransactionID: txn.TransactionID,
		NewBalance:    user.Balance,
		NewRollover:   user.CurrentBetRollover,
		PeriodID:      period.ID,
	}, nil
}

// RecentBets returns the user's latest Bet/Win journal entries, newest first
func (s *bettingService) RecentBets(ctx context.Context, telegramID int64, limit int) ([]*models.Transaction, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	txns, err := uow.TransactionRepository().GetRecentByUser(ctx, telegramID,
		[]models.TransactionType{models.TransactionTypeBet, models.TransactionTypeWin}, limit)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return txns, nil
}
