package models

import "time"

// QuestCategory groups quests by the kind of fan action that can complete them
type QuestCategory string

const (
	QuestCategoryStaking    QuestCategory = "staking"
	QuestCategorySocial     QuestCategory = "social"
	QuestCategoryWatch      QuestCategory = "watch"
	QuestCategoryPrediction QuestCategory = "prediction"
	QuestCategoryDuel       QuestCategory = "duel"
)

// RequirementType tells the evaluator how to compare an action's magnitude
// against RequirementValue
type RequirementType string

const (
	RequirementMinStake     RequirementType = "min_stake"     // magnitude = tokens staked
	RequirementWatchMinutes RequirementType = "watch_minutes" // magnitude = whole minutes watched
	RequirementCount        RequirementType = "count"         // magnitude = times the action occurred
)

// Quest is a static definition, read-only from the ledger's perspective.
// Created by admins, matched by the quest evaluator on incoming action events.
type Quest struct {
	ID          string        `gorm:"primaryKey;type:uuid" json:"id"`
	Slug        string        `gorm:"uniqueIndex;not null" json:"slug"`
	Title       string        `gorm:"not null" json:"title"`
	Description string        `gorm:"type:text" json:"description"`
	Category    QuestCategory `gorm:"type:varchar(32);index;not null" json:"category"`

	RequirementType  RequirementType `gorm:"type:varchar(32);not null" json:"requirement_type"`
	RequirementValue int64           `json:"requirement_value"`

	RewardTokens int64  `json:"reward_tokens"`
	RewardPoints int64  `json:"reward_points"`
	IconURL      string `gorm:"type:text" json:"icon_url,omitempty"`

	Active bool `gorm:"default:true;index" json:"active"`

	Timestamps
}

// UserQuest joins a wallet to a quest. The (wallet_address, quest_id) pair is
// the upsert conflict target, which makes completion idempotent per user.
// Invariant: RewardClaimed may only be true once Completed is true.
type UserQuest struct {
	ID            string `gorm:"primaryKey;type:uuid" json:"id"`
	WalletAddress string `gorm:"uniqueIndex:idx_user_quest;not null" json:"wallet_address"`
	QuestID       string `gorm:"uniqueIndex:idx_user_quest;not null" json:"quest_id"`

	Completed   bool       `gorm:"default:false" json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	RewardClaimed bool       `gorm:"default:false" json:"reward_claimed"`
	ClaimedAt     *time.Time `json:"claimed_at,omitempty"`

	// Progress snapshot at completion time (e.g., amount staked)
	Progress int64 `json:"progress" gorm:"default:0"`

	Timestamps
}
