package models

import "time"

// DuelStatus state machine: open → active → completed, or open → expired
// (background job). The open→active transition is a conditional update so two
// concurrent joins cannot both win.
type DuelStatus string

const (
	DuelStatusOpen      DuelStatus = "open"
	DuelStatusActive    DuelStatus = "active"
	DuelStatusCompleted DuelStatus = "completed"
	DuelStatusExpired   DuelStatus = "expired"
)

// Duel is a head-to-head token wager between two fans
type Duel struct {
	ID             string     `gorm:"primaryKey;type:uuid" json:"id"`
	CreatorWallet  string     `gorm:"index;not null" json:"creator_wallet"`
	OpponentWallet *string    `gorm:"index" json:"opponent_wallet,omitempty"`
	MatchID        string     `gorm:"index" json:"match_id,omitempty"`
	StakeTokens    int64      `json:"stake_tokens"`
	Status         DuelStatus `gorm:"type:varchar(16);index;default:'open'" json:"status"`

	StartedAt *time.Time `json:"started_at,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`

	Timestamps
}
