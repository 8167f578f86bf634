package service

import "walletbot/models"

// RequiredRollover returns the cumulative wager total a user must reach
// before withdrawing, based on the last settled deposit.
func RequiredRollover(user *models.User, multiplier int64) int64 {
	return user.LastDepositAmount * multiplier
}

// IsWithdrawalEligible reports whether the user has wagered enough since the
// last settled deposit. A user with no settled deposit has a zero
// requirement and is trivially eligible; that is a deliberate policy choice.
func IsWithdrawalEligible(user *models.User, multiplier int64) bool {
	return user.CurrentBetRollover >= RequiredRollover(user, multiplier)
}
