// services/watch_service.go
package services

import (
	"errors"
	"log"
	"strings"
	"time"

	"fanfi-engagement-service/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WatchService tracks per-(wallet, match) viewing sessions and converts watch
// time plus engagement into token rewards on leave.
//
// Reward formula: floor(minutes/5) + messages_sent + 2*polls_participated,
// time truncated toward zero, always >= 0.
type WatchService struct {
	DB      *gorm.DB
	Rewards *RewardService
	Sink    ActionSink // quest evaluator; nil disables quest matching
}

func NewWatchService(db *gorm.DB, rewards *RewardService, sink ActionSink) *WatchService {
	return &WatchService{DB: db, Rewards: rewards, Sink: sink}
}

// Join upserts an active session. Re-joining a match overwrites the previous
// session data — counters reset, the clock restarts.
func (s *WatchService) Join(wallet, matchID, roomID string) (*models.WatchSession, error) {
	wallet = strings.ToLower(wallet)
	now := time.Now()

	session := models.WatchSession{
		ID:            uuid.NewString(),
		WalletAddress: wallet,
		MatchID:       matchID,
		RoomID:        roomID,
		JoinedAt:      now,
		IsActive:      true,
	}
	if err := s.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "wallet_address"}, {Name: "match_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"room_id",
			"joined_at",
			"left_at",
			"is_active",
			"messages_sent",
			"polls_participated",
			"watch_seconds",
			"rewards_earned",
			"updated_at",
		}),
	}).Create(&session).Error; err != nil {
		return nil, err
	}

	// The upsert may have kept the original row's id — read it back
	var saved models.WatchSession
	if err := s.DB.Where("wallet_address = ? AND match_id = ?", wallet, matchID).
		First(&saved).Error; err != nil {
		return nil, err
	}
	return &saved, nil
}

// RecordActivity bumps an engagement counter on the active session.
// Relative update expression — no read-modify-write.
func (s *WatchService) RecordActivity(wallet, matchID, kind string) error {
	wallet = strings.ToLower(wallet)

	var column string
	switch kind {
	case "message":
		column = "messages_sent"
	case "poll":
		column = "polls_participated"
	default:
		return errors.New("unknown activity kind: " + kind)
	}

	res := s.DB.Model(&models.WatchSession{}).
		Where("wallet_address = ? AND match_id = ? AND is_active = ?", wallet, matchID, true).
		Update(column, gorm.Expr(column+" + ?", 1))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNoActiveSession
	}
	return nil
}

// LeaveResult is the breakdown returned by the leave endpoint
type LeaveResult struct {
	Session      *models.WatchSession
	WatchSeconds int64
	WatchMinutes int64
	BaseReward   int64
	MessageBonus int64
	PollBonus    int64
	TotalReward  int64
}

// Leave finalizes the active session. The is_active=true predicate in the
// finalizing update means a session cannot be left twice: the second call
// affects zero rows and reports no active session.
func (s *WatchService) Leave(wallet, matchID string) (*LeaveResult, error) {
	return s.leaveAt(wallet, matchID, time.Now())
}

func (s *WatchService) leaveAt(wallet, matchID string, now time.Time) (*LeaveResult, error) {
	wallet = strings.ToLower(wallet)

	var session models.WatchSession
	err := s.DB.Where("wallet_address = ? AND match_id = ? AND is_active = ?", wallet, matchID, true).
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoActiveSession
	}
	if err != nil {
		return nil, err
	}

	watchSeconds := int64(now.Sub(session.JoinedAt).Seconds())
	if watchSeconds < 0 {
		watchSeconds = 0
	}
	minutes := watchSeconds / 60

	base := minutes / 5
	messageBonus := session.MessagesSent
	pollBonus := 2 * session.PollsParticipated
	total := base + messageBonus + pollBonus

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.WatchSession{}).
			Where("id = ? AND is_active = ?", session.ID, true).
			Updates(map[string]interface{}{
				"is_active":      false,
				"left_at":        now,
				"watch_seconds":  watchSeconds,
				"rewards_earned": total,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNoActiveSession
		}

		if total > 0 {
			if _, err := s.Rewards.Grant(tx, wallet, models.RewardActionWatchMatch,
				total, 0, "watch_session", session.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.Sink != nil {
		if err := s.Sink.HandleAction(ActionEvent{
			Wallet:    wallet,
			Category:  models.QuestCategoryWatch,
			Kind:      models.RewardActionWatchMatch,
			Magnitude: minutes,
			SourceID:  session.ID,
		}); err != nil {
			log.Printf("⚠️ Quest evaluation failed for watch session %s: %v", session.ID, err)
		}
	}

	session.IsActive = false
	session.LeftAt = &now
	session.WatchSeconds = watchSeconds
	session.RewardsEarned = total

	return &LeaveResult{
		Session:      &session,
		WatchSeconds: watchSeconds,
		WatchMinutes: minutes,
		BaseReward:   base,
		MessageBonus: messageBonus,
		PollBonus:    pollBonus,
		TotalReward:  total,
	}, nil
}

// maxSessionAge caps how long a session can stay active before the scheduler
// force-finalizes it (client crashed or never sent leave).
const maxSessionAge = 6 * time.Hour

// FinalizeStaleSessions force-leaves sessions active past maxSessionAge.
// Rewards are computed from the cap, not from wall-clock now.
func (s *WatchService) FinalizeStaleSessions() error {
	cutoff := time.Now().Add(-maxSessionAge)

	var stale []models.WatchSession
	if err := s.DB.Where("is_active = ? AND joined_at < ?", true, cutoff).
		Find(&stale).Error; err != nil {
		return err
	}

	for _, session := range stale {
		if _, err := s.leaveAt(session.WalletAddress, session.MatchID, session.JoinedAt.Add(maxSessionAge)); err != nil {
			if errors.Is(err, ErrNoActiveSession) {
				continue // lost the race to a real leave
			}
			log.Printf("❌ Failed to finalize stale session %s: %v", session.ID, err)
			continue
		}
		log.Printf("🧹 Finalized stale watch session %s (%s / %s)", session.ID, session.WalletAddress, session.MatchID)
	}
	return nil
}
