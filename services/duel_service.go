// services/duel_service.go
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
	"gorm.io/gorm"
)

// openDuelTTL is how long a duel waits for an opponent before expiring
const openDuelTTL = 24 * time.Hour

// DuelService manages head-to-head wagers. The only externally triggered
// transition is open→active on join; expiry runs from the scheduler.
type DuelService struct {
	DB     *gorm.DB
	Locker *redislock.Client // optional
}

func NewDuelService(db *gorm.DB, locker *redislock.Client) *DuelService {
	return &DuelService{DB: db, Locker: locker}
}

// Create opens a duel waiting for an opponent
func (s *DuelService) Create(creatorWallet, matchID string, stakeTokens int64) (*models.Duel, error) {
	creatorWallet = strings.ToLower(creatorWallet)
	expires := time.Now().Add(openDuelTTL)

	duel := &models.Duel{
		ID:            uuid.NewString(),
		CreatorWallet: creatorWallet,
		MatchID:       matchID,
		StakeTokens:   stakeTokens,
		Status:        models.DuelStatusOpen,
		ExpiresAt:     &expires,
	}
	if err := s.DB.Create(duel).Error; err != nil {
		return nil, err
	}
	return duel, nil
}

// Join transitions an open duel to active. The status change is a conditional
// update predicated on status='open' and the expiry deadline — under two
// concurrent joins only one affects a row, the other sees RowsAffected 0 and
// reports the slot taken. The advisory lock just keeps the loser from doing
// the wasted read.
func (s *DuelService) Join(ctx context.Context, duelID, opponentWallet string) (*models.Duel, error) {
	opponentWallet = strings.ToLower(opponentWallet)

	if s.Locker != nil {
		lock, err := s.Locker.Obtain(ctx, "duel:join:"+duelID, 5*time.Second, nil)
		if err == nil {
			defer lock.Release(ctx)
		} else if err != redislock.ErrNotObtained {
			log.Printf("⚠️ Duel join lock error for %s: %v", duelID, err)
		}
	}

	var duel models.Duel
	err := s.DB.First(&duel, "id = ?", duelID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrDuelNotOpen
	}
	if err != nil {
		return nil, err
	}

	if strings.EqualFold(duel.CreatorWallet, opponentWallet) {
		return nil, ErrSelfJoin
	}
	if duel.Status == models.DuelStatusActive {
		return nil, ErrDuelTaken
	}

	now := time.Now()
	if duel.Status != models.DuelStatusOpen || (duel.ExpiresAt != nil && duel.ExpiresAt.Before(now)) {
		// Expired duels are not joinable even before the sweep flips them
		return nil, ErrDuelNotOpen
	}

	res := s.DB.Model(&models.Duel{}).
		Where("id = ? AND status = ? AND (expires_at IS NULL OR expires_at > ?)",
			duelID, models.DuelStatusOpen, now).
		Updates(map[string]interface{}{
			"opponent_wallet": opponentWallet,
			"status":          models.DuelStatusActive,
			"started_at":      now,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		// Lost the race between read and write: another opponent took the
		// slot, or the duel expired underneath us.
		if err := s.DB.First(&duel, "id = ?", duelID).Error; err == nil && duel.Status == models.DuelStatusActive {
			return nil, ErrDuelTaken
		}
		return nil, ErrDuelNotOpen
	}

	if err := s.DB.First(&duel, "id = ?", duelID).Error; err != nil {
		return nil, err
	}
	return &duel, nil
}

// ExpireOpenDuels marks open duels past their deadline as expired
func (s *DuelService) ExpireOpenDuels() error {
	res := s.DB.Model(&models.Duel{}).
		Where("status = ? AND expires_at < ?", models.DuelStatusOpen, time.Now()).
		Update("status", models.DuelStatusExpired)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		log.Printf("🧹 Expired %d open duel(s)", res.RowsAffected)
	}
	return nil
}

// GetOpen lists duels still waiting for an opponent
func (s *DuelService) GetOpen(limit int) ([]models.Duel, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var duels []models.Duel
	err := s.DB.Where("status = ?", models.DuelStatusOpen).
		Order("created_at DESC").
		Limit(limit).
		Find(&duels).Error
	return duels, err
}
