// models/chain_balance.go
package models

import "time"

// ChainBalance mirrors per-wallet balance data gathered by the reconciliation
// worker. Off-chain figures come from the user_rewards ledger, on-chain figures
// from the minter service's balance endpoint. Written only by the worker.
// Table name: chain_balances
type ChainBalance struct {
	ID            string `gorm:"primaryKey;type:uuid;not null" json:"id"`
	WalletAddress string `gorm:"uniqueIndex;not null" json:"wallet_address"`

	OffChainTokens int64 `json:"off_chain_tokens"`
	OnChainTokens  int64 `json:"on_chain_tokens"`
	Drift          int64 `json:"drift"` // off-chain minus on-chain

	LastCheckedAt time.Time `gorm:"not null" json:"last_checked_at"`
	CreatedAt     time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time `gorm:"not null" json:"updated_at"`
}
