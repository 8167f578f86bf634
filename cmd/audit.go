package cmd

import (
	"context"

	log "github.com/sirupsen/logrus"

	"walletbot/events"
)

// registerAuditLogger writes every money-movement event to the structured
// log, an audit trail independent of the journal table
func registerAuditLogger(bus *events.Bus) {
	bus.Subscribe(events.EventTypeUserCreated, func(ctx context.Context, e events.Event) {
		ev, ok := e.(events.UserCreatedEvent)
		if !ok {
			return
		}
		log.WithFields(log.Fields{
			"telegramID": ev.TelegramID,
			"username":   ev.Username,
		}).Info("User created")
	})

	bus.Subscribe(events.EventTypeBalanceChange, func(ctx context.Context, e events.Event) {
		ev, ok := e.(events.BalanceChangeEvent)
		if !ok {
			return
		}
		log.WithFields(log.Fields{
			"telegramID": ev.TelegramID,
			"oldBalance": ev.OldBalance,
			"newBalance": ev.NewBalance,
			"change":     ev.ChangeAmount,
			"reason":     ev.Reason,
		}).Info("Balance changed")
	})

	bus.Subscribe(events.EventTypeTransactionCreated, func(ctx context.Context, e events.Event) {
		ev, ok := e.(events.TransactionCreatedEvent)
		if !ok {
			return
		}
		log.WithFields(log.Fields{
			"transactionID": ev.TransactionID,
			"telegramID":    ev.TelegramID,
			"type":          ev.TransactionType,
			"amount":        ev.Amount,
			"status":        ev.Status,
		}).Info("Transaction created")
	})

	bus.Subscribe(events.EventTypeTransactionSettled, func(ctx context.Context, e events.Event) {
		ev, ok := e.(events.TransactionSettledEvent)
		if !ok {
			return
		}
		log.WithFields(log.Fields{
			"transactionID": ev.TransactionID,
			"telegramID":    ev.TelegramID,
			"type":          ev.TransactionType,
			"amount":        ev.Amount,
			"confirmedBy":   ev.ConfirmedBy,
		}).Info("Transaction settled")
	})

	bus.Subscribe(events.EventTypeBetPlaced, func(ctx context.Context, e events.Event) {
		ev, ok := e.(events.BetPlacedEvent)
		if !ok {
			return
		}
		log.WithFields(log.Fields{
			"transactionID": ev.TransactionID,
			"telegramID":    ev.TelegramID,
			"amount":        ev.Amount,
			"selection":     ev.Selection,
			"period":        ev.PeriodID,
		}).Info("Bet placed")
	})
}
