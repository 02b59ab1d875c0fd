package models

import "time"

// PredictionMarket mirrors an on-chain prediction market created for a match.
// Unique on MatchID: creating the same market twice is treated as success
// with the stored receipt echoed back.
type PredictionMarket struct {
	ID          string `gorm:"primaryKey;type:uuid" json:"id"`
	MatchID     string `gorm:"uniqueIndex;not null" json:"match_id"`
	MatchIDHash string `gorm:"type:varchar(80);not null" json:"match_id_hash"`

	LockTime  time.Time `json:"lock_time"`
	MatchTime time.Time `json:"match_time"`

	TxHash string `gorm:"type:varchar(80)" json:"tx_hash,omitempty"`
	Status string `gorm:"type:varchar(16);default:'created'" json:"status"`

	Timestamps
}
