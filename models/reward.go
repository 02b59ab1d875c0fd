package models

import "time"

// RewardAction identifies what earned the tokens. New actions only need a new
// policy entry, not a schema change.
type RewardAction string

const (
	RewardActionDailyCheckin RewardAction = "daily_checkin"
	RewardActionStake        RewardAction = "stake"
	RewardActionWatchMatch   RewardAction = "watch_match"
	RewardActionQuestClaim   RewardAction = "quest_claim"
	RewardActionPrediction   RewardAction = "prediction"
	RewardActionDuelWin      RewardAction = "duel_win"
	RewardActionVerify       RewardAction = "verify"
)

// UserReward is an append-only ledger row recording every token/point grant,
// independent of on-chain state. Amounts are immutable and rows are never
// deleted (only the mint receipt columns may be set after the fact); the
// user's denormalized balance must always equal the sum of their ledger rows
// (the reconciliation worker repairs drift).
type UserReward struct {
	ID            string       `gorm:"primaryKey;type:uuid" json:"id"`
	UserID        string       `gorm:"index" json:"user_id"`
	WalletAddress string       `gorm:"index;not null" json:"wallet_address"`
	Action        RewardAction `gorm:"type:varchar(32);index;not null" json:"action"`

	Tokens int64 `json:"tokens"`
	Points int64 `json:"points"`

	// What triggered the grant (quest id, match id, duel id, ...)
	SourceType string `gorm:"type:varchar(32)" json:"source_type,omitempty"`
	SourceID   string `gorm:"index" json:"source_id,omitempty"`

	// On-chain mint receipt, when the bridge was configured and succeeded
	TxHash  string `gorm:"type:varchar(80)" json:"tx_hash,omitempty"`
	OnChain bool   `gorm:"default:false" json:"on_chain"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime;index"`
}
