package models

import "time"

// WatchSession records one viewing session per (wallet, match) pair.
// (wallet_address, match_id) is the upsert conflict target: re-joining
// overwrites the prior session instead of erroring.
//
// Lifecycle: upserted active on join, finalized (IsActive=false,
// RewardsEarned set) exactly once on leave.
type WatchSession struct {
	ID            string `gorm:"primaryKey;type:uuid" json:"id"`
	WalletAddress string `gorm:"uniqueIndex:idx_watch_session;not null" json:"wallet_address"`
	MatchID       string `gorm:"uniqueIndex:idx_watch_session;not null" json:"match_id"`
	RoomID        string `json:"room_id,omitempty"`

	JoinedAt time.Time  `json:"joined_at"`
	LeftAt   *time.Time `json:"left_at,omitempty"`
	IsActive bool       `gorm:"default:true;index" json:"is_active"`

	// Engagement counters, incremented while the session is active
	MessagesSent       int64 `json:"messages_sent" gorm:"default:0"`
	PollsParticipated  int64 `json:"polls_participated" gorm:"default:0"`

	WatchSeconds  int64 `json:"watch_seconds" gorm:"default:0"`
	RewardsEarned int64 `json:"rewards_earned" gorm:"default:0"`

	Timestamps
}
