package service

import (
	"github.com/open-builders/giveaway-bot/internal/utils/random"
)

// SelectWinners draws quota distinct participants uniformly at random.
// Fewer participants than quota means there are no valid winners.
func SelectWinners(participants []int64, quota int) ([]int64, error) {
	if quota <= 0 || len(participants) < quota {
		return []int64{}, nil
	}
	return random.Sample(participants, quota)
}
