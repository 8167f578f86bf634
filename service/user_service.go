package service

import (
	"context"
	"fmt"

	"walletbot/events"
	"walletbot/models"
)

type userService struct {
	uowFactory UnitOfWorkFactory
}

// NewUserService creates a new user service
func NewUserService(uowFactory UnitOfWorkFactory) UserService {
	return &userService{uowFactory: uowFactory}
}

// getOrCreateUser looks up a user inside an already-begun unit of work,
// creating one lazily on the first inbound event for an unseen identity
func getOrCreateUser(ctx context.Context, uow UnitOfWork, telegramID int64, username, firstName string) (*models.User, error) {
	user, err := uow.UserRepository().GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user != nil {
		return user, nil
	}

	user, err = uow.UserRepository().Create(ctx, telegramID, username, firstName)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	uow.EventBus().Publish(events.UserCreatedEvent{
		TelegramID: telegramID,
		Username:   username,
		FirstName:  firstName,
	})

	return user, nil
}

func (s *userService) GetOrCreateUser(ctx context.Context, telegramID int64, username, firstName string) (*models.User, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := getOrCreateUser(ctx, uow, telegramID, username, firstName)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return user, nil
}

func (s *userService) GetUser(ctx context.Context, telegramID int64) (*models.User, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrNotFound
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return user, nil
}
