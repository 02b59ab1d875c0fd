package models

import (
	"time"

	"gorm.io/gorm"
)

// User is keyed by wallet address (stored lowercase). Rows are never deleted;
// TotalTokens/TotalPoints are denormalized counters kept in sync by the
// reward ledger and repaired by the reconciliation worker.
type User struct {
	ID            string `gorm:"primaryKey;type:uuid" json:"id"`
	WalletAddress string `gorm:"uniqueIndex;not null" json:"wallet_address"`
	Username      string `gorm:"index" json:"username"`

	// Off-chain balances (source of truth: user_rewards ledger)
	TotalTokens int64 `json:"total_tokens" gorm:"default:0"`
	TotalPoints int64 `json:"total_points" gorm:"default:0"`

	// Identity verification (ZK passport proof via external verifier)
	Verified    bool       `json:"verified" gorm:"default:false"`
	Nationality string     `gorm:"type:varchar(8)" json:"nationality,omitempty"`
	VerifiedAt  *time.Time `json:"verified_at,omitempty"`

	Timestamps
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
