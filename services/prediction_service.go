// services/prediction_service.go
package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log"
	"time"

	"fanfi-engagement-service/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PredictionService creates on-chain prediction markets for fixtures via the
// minter service. Creation is idempotent on match id: a market that already
// exists (locally or on-chain) is returned as success.
type PredictionService struct {
	DB   *gorm.DB
	Mint *MintClient
}

func NewPredictionService(db *gorm.DB, mint *MintClient) *PredictionService {
	return &PredictionService{DB: db, Mint: mint}
}

// MatchIDHash is the deterministic 32-byte identifier the prediction contract
// keys markets by.
func MatchIDHash(matchID string) string {
	sum := sha256.Sum256([]byte(matchID))
	return "0x" + hex.EncodeToString(sum[:])
}

// CreateMarketResult is returned by CreateMarket
type CreateMarketResult struct {
	Market        *models.PredictionMarket
	AlreadyExists bool
}

func (s *PredictionService) CreateMarket(ctx context.Context, matchID string, lockTime, matchTime time.Time) (*CreateMarketResult, error) {
	var existing models.PredictionMarket
	err := s.DB.Where("match_id = ?", matchID).First(&existing).Error
	if err == nil {
		return &CreateMarketResult{Market: &existing, AlreadyExists: true}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash := MatchIDHash(matchID)

	market := &models.PredictionMarket{
		ID:          uuid.NewString(),
		MatchID:     matchID,
		MatchIDHash: hash,
		LockTime:    lockTime,
		MatchTime:   matchTime,
		Status:      "created",
	}

	txHash, alreadyOnChain, err := s.Mint.CreateMarket(ctx, hash, lockTime, matchTime)
	switch {
	case err == nil:
		market.TxHash = txHash
		if alreadyOnChain {
			log.Printf("➡️ Market for match %s already exists on-chain, recording locally", matchID)
		}
	case errors.Is(err, ErrMintNotConfigured):
		market.Status = "local_only"
		log.Printf("➡️ Minter not configured — market for match %s recorded database-only", matchID)
	default:
		return nil, err
	}

	if err := s.DB.Create(market).Error; err != nil {
		// A concurrent create may have won the match_id unique index between
		// the existence check and the insert; the stored row is the answer.
		if lookupErr := s.DB.Where("match_id = ?", matchID).First(&existing).Error; lookupErr == nil {
			log.Printf("➡️ Market for match %s created concurrently, returning stored row", matchID)
			return &CreateMarketResult{Market: &existing, AlreadyExists: true}, nil
		}
		return nil, err
	}
	return &CreateMarketResult{Market: market, AlreadyExists: alreadyOnChain}, nil
}
