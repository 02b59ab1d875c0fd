// services/reward_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"fanfi-engagement-service/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// RewardPolicy is the token/point payout for one action kind
type RewardPolicy struct {
	Tokens int64
	Points int64
}

// DefaultRewardPolicies — tunable via admin config later
var DefaultRewardPolicies = map[models.RewardAction]RewardPolicy{
	models.RewardActionDailyCheckin: {Tokens: 5, Points: 10},
	models.RewardActionStake:        {Tokens: 10, Points: 20},
	models.RewardActionWatchMatch:   {Tokens: 0, Points: 5},
	models.RewardActionPrediction:   {Tokens: 5, Points: 15},
	models.RewardActionDuelWin:      {Tokens: 25, Points: 50},
	models.RewardActionVerify:       {Tokens: 50, Points: 100},
}

// RewardService owns the append-only reward ledger and the users' denormalized
// balances. Every grant runs inside one transaction: ledger row + balance bump
// commit or roll back together.
type RewardService struct {
	DB       *gorm.DB
	Redis    *redis.Client // optional fast path for cooldown keys
	Policies map[models.RewardAction]RewardPolicy
}

func NewRewardService(db *gorm.DB, rdb *redis.Client) *RewardService {
	return &RewardService{
		DB:       db,
		Redis:    rdb,
		Policies: DefaultRewardPolicies,
	}
}

// Award grants the policy amount for an action, subject to an optional
// cooldown. The cooldown check is authoritative against the ledger; Redis is
// only a fast path to skip the query on hot actions.
func (s *RewardService) Award(ctx context.Context, wallet string, action models.RewardAction, sourceType, sourceID string, cooldown time.Duration) (*models.UserReward, error) {
	wallet = strings.ToLower(wallet)

	policy, ok := s.Policies[action]
	if !ok {
		return nil, fmt.Errorf("no reward policy for action %q", action)
	}

	if cooldown > 0 {
		key := cooldownKey(wallet, action)
		if s.Redis != nil {
			n, err := s.Redis.Exists(ctx, key).Result()
			if err == nil && n > 0 {
				return nil, ErrCooldownActive
			}
		}

		var last models.UserReward
		err := s.DB.Where("wallet_address = ? AND action = ?", wallet, action).
			Order("created_at DESC").
			First(&last).Error
		if err == nil && time.Since(last.CreatedAt) < cooldown {
			return nil, ErrCooldownActive
		}
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	var reward *models.UserReward
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var txErr error
		reward, txErr = s.Grant(tx, wallet, action, policy.Tokens, policy.Points, sourceType, sourceID)
		return txErr
	})
	if err != nil {
		return nil, err
	}

	if cooldown > 0 && s.Redis != nil {
		if err := s.Redis.Set(ctx, cooldownKey(wallet, action), reward.ID, cooldown).Err(); err != nil {
			log.Printf("⚠️ Failed to set cooldown key for %s/%s: %v", wallet, action, err)
		}
	}

	return reward, nil
}

// Grant appends a ledger row and bumps the user's balances inside the caller's
// transaction. The balance bump is a relative update expression, never a
// read-modify-write.
func (s *RewardService) Grant(tx *gorm.DB, wallet string, action models.RewardAction, tokens, points int64, sourceType, sourceID string) (*models.UserReward, error) {
	wallet = strings.ToLower(wallet)

	user, err := s.ensureUser(tx, wallet)
	if err != nil {
		return nil, err
	}

	reward := &models.UserReward{
		ID:            uuid.NewString(),
		UserID:        user.ID,
		WalletAddress: wallet,
		Action:        action,
		Tokens:        tokens,
		Points:        points,
		SourceType:    sourceType,
		SourceID:      sourceID,
	}
	if err := tx.Create(reward).Error; err != nil {
		return nil, err
	}

	if err := tx.Model(&models.User{}).
		Where("wallet_address = ?", wallet).
		Updates(map[string]interface{}{
			"total_tokens": gorm.Expr("total_tokens + ?", tokens),
			"total_points": gorm.Expr("total_points + ?", points),
		}).Error; err != nil {
		return nil, err
	}

	return reward, nil
}

// MarkMinted records the on-chain receipt on an existing ledger row.
// Amounts are immutable; only the receipt columns are touched.
func (s *RewardService) MarkMinted(rewardID, txHash string) error {
	return s.DB.Model(&models.UserReward{}).
		Where("id = ?", rewardID).
		Updates(map[string]interface{}{
			"tx_hash":  txHash,
			"on_chain": true,
		}).Error
}

// ensureUser creates the user row on first contact (wallet is the identity)
func (s *RewardService) ensureUser(tx *gorm.DB, wallet string) (*models.User, error) {
	var user models.User
	err := tx.Where("wallet_address = ?", wallet).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user = models.User{
			ID:            uuid.NewString(),
			WalletAddress: wallet,
		}
		if err := tx.Create(&user).Error; err != nil {
			return nil, err
		}
		return &user, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func cooldownKey(wallet string, action models.RewardAction) string {
	return fmt.Sprintf("cooldown:%s:%s", wallet, action)
}
