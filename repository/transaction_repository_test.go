package repository

import (
	"context"
	"testing"

	"walletbot/models"
	"walletbot/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionRepository_CreateAndGet(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	userRepo := NewUserRepository(testDB.DB)
	repo := NewTransactionRepository(testDB.DB)
	ctx := context.Background()

	_, err := userRepo.Create(ctx, 123456, "testuser", "Test")
	require.NoError(t, err)

	t.Run("unknown token returns nil", func(t *testing.T) {
		txn, err := repo.GetByTransactionID(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, txn)
	})

	t.Run("deposit round trip", func(t *testing.T) {
		original := testutil.CreateTestDeposit(123456, 150)
		err := repo.Create(ctx, original)
		require.NoError(t, err)
		assert.NotZero(t, original.ID)
		assert.False(t, original.CreatedAt.IsZero())

		txn, err := repo.GetByTransactionID(ctx, original.TransactionID)
		require.NoError(t, err)
		require.NotNil(t, txn)

		assert.Equal(t, models.TransactionTypeDeposit, txn.Type)
		assert.Equal(t, models.StatusPending, txn.Status)
		assert.Equal(t, int64(150), txn.Amount)
		assert.Equal(t, "UTR1234567890", txn.UTR)
		assert.Nil(t, txn.ConfirmedBy)
	})
}

func TestTransactionRepository_UpdateStatusIf(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	userRepo := NewUserRepository(testDB.DB)
	repo := NewTransactionRepository(testDB.DB)
	ctx := context.Background()

	_, err := userRepo.Create(ctx, 123456, "testuser", "Test")
	require.NoError(t, err)

	deposit := testutil.CreateTestDeposit(123456, 150)
	require.NoError(t, repo.Create(ctx, deposit))

	t.Run("first settlement wins", func(t *testing.T) {
		ok, err := repo.UpdateStatusIf(ctx, deposit.TransactionID, models.StatusPending, models.StatusSuccess, "@admin")
		require.NoError(t, err)
		assert.True(t, ok)

		txn, err := repo.GetByTransactionID(ctx, deposit.TransactionID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusSuccess, txn.Status)
		require.NotNil(t, txn.ConfirmedBy)
		assert.Equal(t, "@admin", *txn.ConfirmedBy)
	})

	t.Run("replayed settlement affects nothing", func(t *testing.T) {
		ok, err := repo.UpdateStatusIf(ctx, deposit.TransactionID, models.StatusPending, models.StatusSuccess, "@other")
		require.NoError(t, err)
		assert.False(t, ok)

		txn, err := repo.GetByTransactionID(ctx, deposit.TransactionID)
		require.NoError(t, err)
		require.NotNil(t, txn.ConfirmedBy)
		assert.Equal(t, "@admin", *txn.ConfirmedBy)
	})

	t.Run("withdrawal settles from Processing", func(t *testing.T) {
		withdrawal := testutil.CreateTestWithdrawal(123456, 600)
		require.NoError(t, repo.Create(ctx, withdrawal))

		ok, err := repo.UpdateStatusIf(ctx, withdrawal.TransactionID, models.StatusProcessing, models.StatusSuccess, "@admin")
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestTransactionRepository_GetRecentByUser(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	userRepo := NewUserRepository(testDB.DB)
	repo := NewTransactionRepository(testDB.DB)
	ctx := context.Background()

	_, err := userRepo.Create(ctx, 123456, "testuser", "Test")
	require.NoError(t, err)
	_, err = userRepo.Create(ctx, 654321, "otheruser", "Other")
	require.NoError(t, err)

	require.NoError(t, repo.Create(ctx, testutil.CreateTestDeposit(123456, 150)))
	require.NoError(t, repo.Create(ctx, testutil.CreateTestBet(123456, 100, "red", 20260830000785)))
	require.NoError(t, repo.Create(ctx, testutil.CreateTestBet(123456, 200, "green", 20260830000786)))
	require.NoError(t, repo.Create(ctx, testutil.CreateTestBet(654321, 300, "violet", 20260830000786)))

	t.Run("filters by type and user", func(t *testing.T) {
		bets, err := repo.GetRecentByUser(ctx, 123456,
			[]models.TransactionType{models.TransactionTypeBet, models.TransactionTypeWin}, 10)
		require.NoError(t, err)
		require.Len(t, bets, 2)

		// Newest first
		assert.Equal(t, "green", bets[0].Selection)
		assert.Equal(t, int64(20260830000786), bets[0].PeriodID)
		assert.Equal(t, "red", bets[1].Selection)
	})

	t.Run("honors the limit", func(t *testing.T) {
		bets, err := repo.GetRecentByUser(ctx, 123456,
			[]models.TransactionType{models.TransactionTypeBet}, 1)
		require.NoError(t, err)
		assert.Len(t, bets, 1)
	})
}
