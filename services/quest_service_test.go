package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fanfi-engagement-service/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedQuest(t *testing.T, db *gorm.DB, category models.QuestCategory, reqType models.RequirementType, reqValue, tokens int64) *models.Quest {
	t.Helper()
	quest := &models.Quest{
		ID:               uuid.NewString(),
		Slug:             "quest-" + uuid.NewString()[:8],
		Title:            "Test Quest",
		Category:         category,
		RequirementType:  reqType,
		RequirementValue: reqValue,
		RewardTokens:     tokens,
		RewardPoints:     tokens * 2,
		Active:           true,
	}
	require.NoError(t, db.Create(quest).Error)
	return quest
}

func newQuestService(db *gorm.DB) *QuestService {
	rewards := NewRewardService(db, nil)
	return NewQuestService(db, rewards, NewMintClient(), nil)
}

func TestHandleAction_StakeCompletesMatchingQuest(t *testing.T) {
	db := setupTestDB(t)
	svc := newQuestService(db)
	quest := seedQuest(t, db, models.QuestCategoryStaking, models.RequirementMinStake, 100, 50)

	staking := NewStakingService(svc)
	require.NoError(t, staking.Track("0xAAA", "stake", 150))

	var uq models.UserQuest
	require.NoError(t, db.Where("wallet_address = ? AND quest_id = ?", "0xaaa", quest.ID).First(&uq).Error)
	assert.True(t, uq.Completed)
	assert.False(t, uq.RewardClaimed)
	assert.Equal(t, int64(150), uq.Progress)
	require.NotNil(t, uq.CompletedAt)
}

func TestHandleAction_IdempotentAcrossRepeatedCalls(t *testing.T) {
	db := setupTestDB(t)
	svc := newQuestService(db)
	quest := seedQuest(t, db, models.QuestCategoryStaking, models.RequirementMinStake, 100, 50)

	staking := NewStakingService(svc)
	require.NoError(t, staking.Track("0xaaa", "stake", 150))
	require.NoError(t, staking.Track("0xaaa", "stake", 150))
	require.NoError(t, staking.Track("0xaaa", "stake", 999))

	var count int64
	db.Model(&models.UserQuest{}).Where("wallet_address = ? AND quest_id = ?", "0xaaa", quest.ID).Count(&count)
	assert.Equal(t, int64(1), count, "repeated qualifying actions must not duplicate completions")
}

func TestHandleAction_BelowRequirementDoesNothing(t *testing.T) {
	db := setupTestDB(t)
	svc := newQuestService(db)
	seedQuest(t, db, models.QuestCategoryStaking, models.RequirementMinStake, 100, 50)

	staking := NewStakingService(svc)
	require.NoError(t, staking.Track("0xaaa", "stake", 99))

	var count int64
	db.Model(&models.UserQuest{}).Count(&count)
	assert.Zero(t, count)
}

func TestHandleAction_InactiveAndOtherCategoryIgnored(t *testing.T) {
	db := setupTestDB(t)
	svc := newQuestService(db)

	inactive := seedQuest(t, db, models.QuestCategoryStaking, models.RequirementMinStake, 10, 50)
	require.NoError(t, db.Model(inactive).Update("active", false).Error)
	seedQuest(t, db, models.QuestCategoryWatch, models.RequirementWatchMinutes, 10, 50)

	staking := NewStakingService(svc)
	require.NoError(t, staking.Track("0xaaa", "stake", 1000))

	var count int64
	db.Model(&models.UserQuest{}).Count(&count)
	assert.Zero(t, count)
}

func TestTrack_UnstakeIgnoredUnknownRejected(t *testing.T) {
	db := setupTestDB(t)
	svc := newQuestService(db)
	seedQuest(t, db, models.QuestCategoryStaking, models.RequirementMinStake, 1, 50)

	staking := NewStakingService(svc)
	assert.NoError(t, staking.Track("0xaaa", "unstake", 500))
	assert.Error(t, staking.Track("0xaaa", "burn", 500))

	var count int64
	db.Model(&models.UserQuest{}).Count(&count)
	assert.Zero(t, count)
}

func TestClaim_PaysOutExactlyOnce(t *testing.T) {
	db := setupTestDB(t)
	svc := newQuestService(db)
	quest := seedQuest(t, db, models.QuestCategoryStaking, models.RequirementMinStake, 100, 50)

	require.NoError(t, svc.HandleAction(ActionEvent{
		Wallet: "0xaaa", Category: models.QuestCategoryStaking,
		Kind: models.RewardActionStake, Magnitude: 200,
	}))

	result, err := svc.Claim(context.Background(), "0xAAA", quest.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(50), result.Reward.Tokens)
	assert.Equal(t, int64(100), result.Reward.Points)
	assert.False(t, result.OnChain, "no minter configured in tests")

	var user models.User
	require.NoError(t, db.Where("wallet_address = ?", "0xaaa").First(&user).Error)
	assert.Equal(t, int64(50), user.TotalTokens)

	// Second claim must fail and change nothing
	_, err = svc.Claim(context.Background(), "0xaaa", quest.ID)
	assert.ErrorIs(t, err, ErrNotClaimable)

	var rewards int64
	db.Model(&models.UserReward{}).Where("wallet_address = ?", "0xaaa").Count(&rewards)
	assert.Equal(t, int64(1), rewards)
}

func TestClaim_RequiresCompletion(t *testing.T) {
	db := setupTestDB(t)
	svc := newQuestService(db)
	quest := seedQuest(t, db, models.QuestCategoryStaking, models.RequirementMinStake, 100, 50)

	// No completion at all
	_, err := svc.Claim(context.Background(), "0xaaa", quest.ID)
	assert.ErrorIs(t, err, ErrNotClaimable)

	// Explicit incomplete row must also be rejected
	require.NoError(t, db.Create(&models.UserQuest{
		ID: uuid.NewString(), WalletAddress: "0xbbb", QuestID: quest.ID,
	}).Error)
	_, err = svc.Claim(context.Background(), "0xbbb", quest.ID)
	assert.ErrorIs(t, err, ErrNotClaimable)

	var rewards int64
	db.Model(&models.UserReward{}).Count(&rewards)
	assert.Zero(t, rewards, "rejected claims must not mutate the ledger")
}

func TestClaim_UnknownQuest(t *testing.T) {
	db := setupTestDB(t)
	svc := newQuestService(db)

	_, err := svc.Claim(context.Background(), "0xaaa", uuid.NewString())
	assert.ErrorIs(t, err, ErrQuestNotFound)
}

func TestClaim_RecordsMintReceiptWhenConfigured(t *testing.T) {
	db := setupTestDB(t)

	minter := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/mint", r.URL.Path)
		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "50000000000000000000", req["amount"], "50 tokens in 18-decimal base units")
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "tx_hash": "0xfeed"})
	}))
	defer minter.Close()

	rewards := NewRewardService(db, nil)
	mint := &MintClient{BaseURL: minter.URL, Client: minter.Client()}
	svc := NewQuestService(db, rewards, mint, nil)

	quest := seedQuest(t, db, models.QuestCategoryStaking, models.RequirementMinStake, 100, 50)
	require.NoError(t, svc.HandleAction(ActionEvent{
		Wallet: "0xaaa", Category: models.QuestCategoryStaking,
		Kind: models.RewardActionStake, Magnitude: 200,
	}))

	result, err := svc.Claim(context.Background(), "0xaaa", quest.ID)
	require.NoError(t, err)
	assert.True(t, result.OnChain)
	assert.Equal(t, "0xfeed", result.TxHash)

	var saved models.UserReward
	require.NoError(t, db.First(&saved, "id = ?", result.Reward.ID).Error)
	assert.True(t, saved.OnChain)
	assert.Equal(t, "0xfeed", saved.TxHash)
}

func TestClaim_MintFailureStaysDatabaseOnly(t *testing.T) {
	db := setupTestDB(t)

	minter := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer minter.Close()

	rewards := NewRewardService(db, nil)
	mint := &MintClient{BaseURL: minter.URL, Client: minter.Client()}
	svc := NewQuestService(db, rewards, mint, nil)

	quest := seedQuest(t, db, models.QuestCategoryStaking, models.RequirementMinStake, 100, 50)
	require.NoError(t, svc.HandleAction(ActionEvent{
		Wallet: "0xaaa", Category: models.QuestCategoryStaking,
		Kind: models.RewardActionStake, Magnitude: 200,
	}))

	result, err := svc.Claim(context.Background(), "0xaaa", quest.ID)
	require.NoError(t, err, "mint failure must not fail the claim")
	assert.False(t, result.OnChain)
	assert.Empty(t, result.TxHash)

	var user models.User
	require.NoError(t, db.Where("wallet_address = ?", "0xaaa").First(&user).Error)
	assert.Equal(t, int64(50), user.TotalTokens, "off-chain payout still commits")
}

func TestListForWallet_ReportsStatus(t *testing.T) {
	db := setupTestDB(t)
	svc := newQuestService(db)

	done := seedQuest(t, db, models.QuestCategoryStaking, models.RequirementMinStake, 100, 50)
	seedQuest(t, db, models.QuestCategoryWatch, models.RequirementWatchMinutes, 30, 20)

	require.NoError(t, svc.HandleAction(ActionEvent{
		Wallet: "0xaaa", Category: models.QuestCategoryStaking,
		Kind: models.RewardActionStake, Magnitude: 200,
	}))

	quests, err := svc.ListForWallet("0xaaa")
	require.NoError(t, err)
	require.Len(t, quests, 2)

	byID := map[string]QuestWithStatus{}
	for _, q := range quests {
		byID[q.ID] = q
	}
	assert.True(t, byID[done.ID].Completed)
	assert.False(t, byID[done.ID].RewardClaimed)
}

func TestCreateQuest_DerivesSlug(t *testing.T) {
	db := setupTestDB(t)
	svc := newQuestService(db)

	quest := &models.Quest{
		Title:            "Stake 100 CHZ!",
		Category:         models.QuestCategoryStaking,
		RequirementType:  models.RequirementMinStake,
		RequirementValue: 100,
		RewardTokens:     10,
		Active:           true,
	}
	require.NoError(t, svc.CreateQuest(quest))
	assert.NotEmpty(t, quest.ID)
	assert.Equal(t, "stake-100-chz", quest.Slug)

	var saved models.Quest
	require.NoError(t, db.First(&saved, "id = ?", quest.ID).Error)
	assert.WithinDuration(t, time.Now(), saved.CreatedAt, time.Minute)
}
