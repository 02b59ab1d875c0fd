// services/quest_service.go
package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"fanfi-engagement-service/models"

	"github.com/bsm/redislock"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// QuestService evaluates action events against quest definitions and handles
// reward claims. It subscribes to ActionEvents rather than being wired into
// specific routes, so any service whose action can satisfy a quest just
// publishes an event.
type QuestService struct {
	DB      *gorm.DB
	Rewards *RewardService
	Mint    *MintClient
	Locker  *redislock.Client // optional, shrinks the claim race window
}

func NewQuestService(db *gorm.DB, rewards *RewardService, mint *MintClient, locker *redislock.Client) *QuestService {
	return &QuestService{
		DB:      db,
		Rewards: rewards,
		Mint:    mint,
		Locker:  locker,
	}
}

// HandleAction marks every active quest in the event's category whose
// requirement is satisfied by the magnitude as completed for the wallet.
// Idempotent per (wallet, quest): the upsert's conflict target is the
// composite unique index, and an existing row is left untouched.
func (s *QuestService) HandleAction(ev ActionEvent) error {
	wallet := strings.ToLower(ev.Wallet)

	var quests []models.Quest
	if err := s.DB.Where("category = ? AND active = ?", ev.Category, true).
		Find(&quests).Error; err != nil {
		return err
	}

	now := time.Now()
	for _, q := range quests {
		if !requirementMet(q, ev.Magnitude) {
			continue
		}

		uq := models.UserQuest{
			ID:            uuid.NewString(),
			WalletAddress: wallet,
			QuestID:       q.ID,
			Completed:     true,
			CompletedAt:   &now,
			Progress:      ev.Magnitude,
		}
		if err := s.DB.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "wallet_address"}, {Name: "quest_id"}},
			DoNothing: true,
		}).Create(&uq).Error; err != nil {
			return err
		}

		log.Printf("🏅 Quest completed: %s → %s (%s, magnitude=%d)", wallet, q.Slug, ev.Kind, ev.Magnitude)
	}

	return nil
}

func requirementMet(q models.Quest, magnitude int64) bool {
	switch q.RequirementType {
	case models.RequirementMinStake, models.RequirementWatchMinutes, models.RequirementCount:
		return magnitude >= q.RequirementValue
	default:
		return false
	}
}

// ClaimResult is what the claim endpoint returns
type ClaimResult struct {
	Reward  *models.UserReward
	Quest   *models.Quest
	TxHash  string
	OnChain bool
}

// Claim pays out a completed quest exactly once. The reward_claimed flip is a
// conditional update with the expected previous state in the WHERE clause, so
// two concurrent claims cannot both pass. The on-chain mint runs after commit
// and is best-effort: a missing minter configuration (or a transient RPC
// failure) leaves the claim in database-only mode rather than failing it.
func (s *QuestService) Claim(ctx context.Context, wallet, questID string) (*ClaimResult, error) {
	wallet = strings.ToLower(wallet)

	var quest models.Quest
	if err := s.DB.First(&quest, "id = ?", questID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuestNotFound
		}
		return nil, err
	}

	if s.Locker != nil {
		lock, err := s.Locker.Obtain(ctx, "claim:"+wallet+":"+questID, 10*time.Second, nil)
		if err == nil {
			defer lock.Release(ctx)
		} else if err != redislock.ErrNotObtained {
			log.Printf("⚠️ Claim lock error for %s/%s: %v", wallet, questID, err)
		}
	}

	var reward *models.UserReward
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		res := tx.Model(&models.UserQuest{}).
			Where("wallet_address = ? AND quest_id = ? AND completed = ? AND reward_claimed = ?",
				wallet, questID, true, false).
			Updates(map[string]interface{}{
				"reward_claimed": true,
				"claimed_at":     now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotClaimable
		}

		var txErr error
		reward, txErr = s.Rewards.Grant(tx, wallet, models.RewardActionQuestClaim,
			quest.RewardTokens, quest.RewardPoints, "quest", quest.ID)
		return txErr
	})
	if err != nil {
		return nil, err
	}

	result := &ClaimResult{Reward: reward, Quest: &quest}

	if quest.RewardTokens > 0 {
		txHash, err := s.Mint.Mint(ctx, wallet, quest.RewardTokens, "quest:"+quest.Slug)
		switch {
		case err == nil:
			result.TxHash = txHash
			result.OnChain = true
			if err := s.Rewards.MarkMinted(reward.ID, txHash); err != nil {
				log.Printf("⚠️ Failed to record mint receipt %s on reward %s: %v", txHash, reward.ID, err)
			}
		case errors.Is(err, ErrMintNotConfigured):
			log.Printf("➡️ Minter not configured — quest %s claimed database-only for %s", quest.Slug, wallet)
		default:
			log.Printf("❌ Mint failed for %s (quest %s): %v — claim stays database-only", wallet, quest.Slug, err)
		}
	}

	return result, nil
}

// CreateQuest adds a quest definition (admin). The slug is derived from the
// title and must be unique.
func (s *QuestService) CreateQuest(q *models.Quest) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	if q.Slug == "" {
		q.Slug = slug.Make(q.Title)
	}
	return s.DB.Create(q).Error
}

// QuestWithStatus is a quest joined with the caller's completion state
type QuestWithStatus struct {
	models.Quest
	Completed     bool `json:"completed"`
	RewardClaimed bool `json:"reward_claimed"`
}

// ListForWallet returns all active quests with the wallet's completion state
func (s *QuestService) ListForWallet(wallet string) ([]QuestWithStatus, error) {
	wallet = strings.ToLower(wallet)

	var quests []models.Quest
	if err := s.DB.Where("active = ?", true).Order("created_at ASC").Find(&quests).Error; err != nil {
		return nil, err
	}

	var userQuests []models.UserQuest
	if err := s.DB.Where("wallet_address = ?", wallet).Find(&userQuests).Error; err != nil {
		return nil, err
	}
	byQuest := make(map[string]models.UserQuest, len(userQuests))
	for _, uq := range userQuests {
		byQuest[uq.QuestID] = uq
	}

	out := make([]QuestWithStatus, 0, len(quests))
	for _, q := range quests {
		uq := byQuest[q.ID]
		out = append(out, QuestWithStatus{
			Quest:         q,
			Completed:     uq.Completed,
			RewardClaimed: uq.RewardClaimed,
		})
	}
	return out, nil
}
