package workers

import (
	"context"
	"errors"
	"log"
	"time"

	"fanfi-engagement-service/models"
	"fanfi-engagement-service/services"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BalanceReconciler closes the two consistency gaps the request path cannot:
//   - users.total_tokens drifting from the sum of their ledger rows
//     (a crash between statements in old data, or manual DB edits)
//   - the off-chain ledger diverging from the on-chain token balance
//
// Off-chain drift is repaired (the ledger is the source of truth). On-chain
// drift is only recorded in chain_balances and logged — mints are best-effort,
// so divergence there is expected, not an error.
type BalanceReconciler struct {
	DB   *gorm.DB
	Mint *services.MintClient
}

func NewBalanceReconciler(db *gorm.DB, mint *services.MintClient) *BalanceReconciler {
	return &BalanceReconciler{DB: db, Mint: mint}
}

type ledgerSum struct {
	WalletAddress string
	Tokens        int64
	Points        int64
}

// Run polls at the given interval until ctx is cancelled
func (r *BalanceReconciler) Run(ctx context.Context, interval time.Duration) {
	log.Println("Starting balance reconciliation worker...")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Balance reconciliation stopped.")
			return
		case <-ticker.C:
			if err := r.ReconcileOnce(ctx); err != nil {
				log.Printf("❌ Reconciliation pass failed: %v", err)
			}
		}
	}
}

// ReconcileOnce runs a single reconciliation pass over all wallets
func (r *BalanceReconciler) ReconcileOnce(ctx context.Context) error {
	var sums []ledgerSum
	if err := r.DB.Model(&models.UserReward{}).
		Select("wallet_address, COALESCE(SUM(tokens), 0) AS tokens, COALESCE(SUM(points), 0) AS points").
		Group("wallet_address").
		Scan(&sums).Error; err != nil {
		return err
	}

	repaired := 0
	for _, sum := range sums {
		var user models.User
		if err := r.DB.Where("wallet_address = ?", sum.WalletAddress).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				log.Printf("⚠️ Ledger rows exist for unknown wallet %s", sum.WalletAddress)
				continue
			}
			return err
		}

		if user.TotalTokens != sum.Tokens || user.TotalPoints != sum.Points {
			log.Printf("🔧 Repairing balance drift for %s: tokens %d→%d, points %d→%d",
				sum.WalletAddress, user.TotalTokens, sum.Tokens, user.TotalPoints, sum.Points)
			if err := r.DB.Model(&models.User{}).
				Where("wallet_address = ?", sum.WalletAddress).
				Updates(map[string]interface{}{
					"total_tokens": sum.Tokens,
					"total_points": sum.Points,
				}).Error; err != nil {
				return err
			}
			repaired++
		}

		if err := r.recordChainBalance(ctx, sum.WalletAddress, sum.Tokens); err != nil {
			// On-chain data is best-effort; keep going
			log.Printf("⚠️ Chain balance check failed for %s: %v", sum.WalletAddress, err)
		}
	}

	if repaired > 0 {
		log.Printf("✅ Reconciliation repaired %d wallet balance(s)", repaired)
	}
	return nil
}

// Snapshot returns the latest reconciliation rows, biggest drift first
func (r *BalanceReconciler) Snapshot() ([]models.ChainBalance, error) {
	var balances []models.ChainBalance
	err := r.DB.Order("ABS(drift) DESC, wallet_address ASC").Find(&balances).Error
	return balances, err
}

func (r *BalanceReconciler) recordChainBalance(ctx context.Context, wallet string, offChain int64) error {
	if !r.Mint.Configured() {
		return nil
	}

	onChain, err := r.Mint.BalanceOf(ctx, wallet)
	if err != nil {
		return err
	}

	drift := offChain - onChain
	if drift != 0 {
		log.Printf("📊 Wallet %s: off-chain=%d on-chain=%d drift=%d", wallet, offChain, onChain, drift)
	}

	now := time.Now()
	balance := models.ChainBalance{
		ID:             uuid.NewString(),
		WalletAddress:  wallet,
		OffChainTokens: offChain,
		OnChainTokens:  onChain,
		Drift:          drift,
		LastCheckedAt:  now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	return r.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "wallet_address"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"off_chain_tokens",
			"on_chain_tokens",
			"drift",
			"last_checked_at",
			"updated_at",
		}),
	}).Create(&balance).Error
}
