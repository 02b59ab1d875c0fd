// services/user_service.go
package services

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"time"

	"fanfi-engagement-service/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	leaderboardCacheKey = "leaderboard:tokens"
	leaderboardCacheTTL = 30 * time.Second
	leaderboardCacheMax = 100
)

type UserService struct {
	DB       *gorm.DB
	Redis    *redis.Client // optional leaderboard cache
	Verifier *VerifierClient
}

func NewUserService(db *gorm.DB, rdb *redis.Client, verifier *VerifierClient) *UserService {
	return &UserService{DB: db, Redis: rdb, Verifier: verifier}
}

// LeaderboardEntry is the public leaderboard row shape
type LeaderboardEntry struct {
	Rank          int    `json:"rank"`
	WalletAddress string `json:"wallet_address"`
	Username      string `json:"username,omitempty"`
	TotalTokens   int64  `json:"total_tokens"`
	TotalPoints   int64  `json:"total_points"`
	Verified      bool   `json:"verified"`
}

// Leaderboard returns the top users by token balance. The cache always holds
// the full top-100 list under one key; each caller's limit is applied by
// slicing, so a small-limit request never shortens what later callers see.
func (s *UserService) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 || limit > leaderboardCacheMax {
		limit = 50
	}

	if s.Redis != nil {
		cached, err := s.Redis.Get(ctx, leaderboardCacheKey).Result()
		if err == nil {
			var entries []LeaderboardEntry
			// A cached list shorter than the limit cannot prove there are no
			// more users; only serve the hit when it covers the request.
			if json.Unmarshal([]byte(cached), &entries) == nil && len(entries) >= limit {
				return entries[:limit], nil
			}
		}
	}

	var users []models.User
	if err := s.DB.Order("total_tokens DESC, total_points DESC").
		Limit(leaderboardCacheMax).
		Find(&users).Error; err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, len(users))
	for i, u := range users {
		entries[i] = LeaderboardEntry{
			Rank:          i + 1,
			WalletAddress: u.WalletAddress,
			Username:      u.Username,
			TotalTokens:   u.TotalTokens,
			TotalPoints:   u.TotalPoints,
			Verified:      u.Verified,
		}
	}

	if s.Redis != nil {
		if data, err := json.Marshal(entries); err == nil {
			if err := s.Redis.Set(ctx, leaderboardCacheKey, data, leaderboardCacheTTL).Err(); err != nil {
				log.Printf("⚠️ Failed to cache leaderboard: %v", err)
			}
		}
	}

	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// VerifyIdentity forwards a ZK attestation to the verifier service and, on
// success, marks the wallet verified with the disclosed nationality.
// Proof cryptography is entirely the verifier's problem.
func (s *UserService) VerifyIdentity(ctx context.Context, req VerifyRequest) (*VerifyResult, error) {
	result, err := s.Verifier.Verify(ctx, req)
	if err != nil {
		return nil, err
	}
	if !result.Valid {
		return result, nil
	}

	wallet := strings.ToLower(result.Wallet)
	now := time.Now()

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		var user models.User
		dbErr := tx.Where("wallet_address = ?", wallet).First(&user).Error
		if errors.Is(dbErr, gorm.ErrRecordNotFound) {
			user = models.User{
				ID:            uuid.NewString(),
				WalletAddress: wallet,
				Verified:      true,
				Nationality:   result.Nationality,
				VerifiedAt:    &now,
			}
			return tx.Create(&user).Error
		}
		if dbErr != nil {
			return dbErr
		}
		return tx.Model(&user).Updates(map[string]interface{}{
			"verified":    true,
			"nationality": result.Nationality,
			"verified_at": now,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Wallet %s verified (nationality=%s)", wallet, result.Nationality)
	return result, nil
}

// GetByWallet returns the user row, or nil when the wallet is unknown
func (s *UserService) GetByWallet(wallet string) (*models.User, error) {
	var user models.User
	err := s.DB.Where("wallet_address = ?", strings.ToLower(wallet)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
