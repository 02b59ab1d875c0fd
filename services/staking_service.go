// services/staking_service.go
package services

import (
	"errors"
	"log"
	"strings"

	"fanfi-engagement-service/models"
)

// StakingService receives stake/unstake notifications from the frontend after
// the on-chain transaction confirms. The contract is the source of truth for
// staked amounts; this side only feeds the quest evaluator.
type StakingService struct {
	Sink ActionSink
}

func NewStakingService(sink ActionSink) *StakingService {
	return &StakingService{Sink: sink}
}

// Track publishes a staking action event. Only "stake" can satisfy quests;
// "unstake" is accepted and ignored so the frontend can fire both blindly.
func (s *StakingService) Track(wallet, action string, amount int64) error {
	wallet = strings.ToLower(wallet)

	switch action {
	case "stake":
		if amount <= 0 {
			return errors.New("stake amount must be positive")
		}
		if s.Sink == nil {
			return nil
		}
		return s.Sink.HandleAction(ActionEvent{
			Wallet:    wallet,
			Category:  models.QuestCategoryStaking,
			Kind:      models.RewardActionStake,
			Magnitude: amount,
		})
	case "unstake":
		log.Printf("➡️ Unstake tracked for %s (amount=%d), no quest impact", wallet, amount)
		return nil
	default:
		return errors.New("unknown staking action: " + action)
	}
}
