package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"walletbot/events"
	"walletbot/models"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*models.User, error) {
	args := m.Called(ctx, telegramID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, telegramID int64, username, firstName string) (*models.User, error) {
	args := m.Called(ctx, telegramID, username, firstName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) SetConversationState(ctx context.Context, telegramID int64, state models.UserState, temp models.TempData) error {
	args := m.Called(ctx, telegramID, state, temp)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateWithdrawalDetails(ctx context.Context, telegramID int64, details *models.WithdrawalDetails) error {
	args := m.Called(ctx, telegramID, details)
	return args.Error(0)
}

func (m *MockUserRepository) CreditDepositIf(ctx context.Context, telegramID int64, expectedBalance, amount int64) (bool, error) {
	args := m.Called(ctx, telegramID, expectedBalance, amount)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) DebitIf(ctx context.Context, telegramID int64, expectedBalance, amount int64) (bool, error) {
	args := m.Called(ctx, telegramID, expectedBalance, amount)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) ApplyWagerIf(ctx context.Context, telegramID int64, expectedBalance, amount int64) (bool, error) {
	args := m.Called(ctx, telegramID, expectedBalance, amount)
	return args.Bool(0), args.Error(1)
}

// MockTransactionRepository is a mock implementation of TransactionRepository
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Create(ctx context.Context, txn *models.Transaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockTransactionRepository) GetByTransactionID(ctx context.Context, transactionID string) (*models.Transaction, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) UpdateStatusIf(ctx context.Context, transactionID string, expected, next models.TransactionStatus, confirmedBy string) (bool, error) {
	args := m.Called(ctx, transactionID, expected, next, confirmedBy)
	return args.Bool(0), args.Error(1)
}

func (m *MockTransactionRepository) GetRecentByUser(ctx context.Context, telegramID int64, types []models.TransactionType, limit int) ([]*models.Transaction, error) {
	args := m.Called(ctx, telegramID, types, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Transaction), args.Error(1)
}

// MockEventPublisher records published events without dispatching them
type MockEventPublisher struct {
	Events []events.Event
}

func (m *MockEventPublisher) Publish(e events.Event) {
	m.Events = append(m.Events, e)
}

// MockUnitOfWork is a mock implementation of UnitOfWork that hands out the
// repositories it was configured with
type MockUnitOfWork struct {
	mock.Mock
	userRepo        UserRepository
	transactionRepo TransactionRepository
	eventBus        *MockEventPublisher
}

// SetRepositories configures the repositories returned by the getters
func (m *MockUnitOfWork) SetRepositories(userRepo UserRepository, transactionRepo TransactionRepository) {
	m.userRepo = userRepo
	m.transactionRepo = transactionRepo
	m.eventBus = &MockEventPublisher{}
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) UserRepository() UserRepository {
	return m.userRepo
}

func (m *MockUnitOfWork) TransactionRepository() TransactionRepository {
	return m.transactionRepo
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	return m.eventBus
}

// PublishedEvents returns the events captured by the mock bus
func (m *MockUnitOfWork) PublishedEvents() []events.Event {
	return m.eventBus.Events
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}

// MockUserService is a mock implementation of UserService
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) GetOrCreateUser(ctx context.Context, telegramID int64, username, firstName string) (*models.User, error) {
	args := m.Called(ctx, telegramID, username, firstName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) GetUser(ctx context.Context, telegramID int64) (*models.User, error) {
	args := m.Called(ctx, telegramID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// MockBettingService is a mock implementation of BettingService
type MockBettingService struct {
	mock.Mock
}

func (m *MockBettingService) PlaceBet(ctx context.Context, telegramID int64, amount int64, selection string) (*models.BetResult, error) {
	args := m.Called(ctx, telegramID, amount, selection)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BetResult), args.Error(1)
}

func (m *MockBettingService) RecentBets(ctx context.Context, telegramID int64, limit int) ([]*models.Transaction, error) {
	args := m.Called(ctx, telegramID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Transaction), args.Error(1)
}

// MockGameClock is a mock implementation of GameClock
type MockGameClock struct {
	mock.Mock
}

func (m *MockGameClock) CurrentPeriod(ctx context.Context) (*models.GamePeriod, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GamePeriod), args.Error(1)
}

func (m *MockGameClock) RecentResults(ctx context.Context, limit int) ([]models.PeriodResult, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PeriodResult), args.Error(1)
}
