package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fanfi-engagement-service/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeaderboard_OrdersByTokens(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db, nil, nil)

	for _, u := range []models.User{
		{ID: uuid.NewString(), WalletAddress: "0xlow", TotalTokens: 10},
		{ID: uuid.NewString(), WalletAddress: "0xhigh", TotalTokens: 500},
		{ID: uuid.NewString(), WalletAddress: "0xmid", TotalTokens: 100},
	} {
		require.NoError(t, db.Create(&u).Error)
	}

	entries, err := svc.Leaderboard(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "0xhigh", entries[0].WalletAddress)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, "0xmid", entries[1].WalletAddress)
	assert.Equal(t, 2, entries[1].Rank)
}

func TestLeaderboard_SmallLimitDoesNotPoisonCache(t *testing.T) {
	db := setupTestDB(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	svc := NewUserService(db, rdb, nil)

	for _, u := range []models.User{
		{ID: uuid.NewString(), WalletAddress: "0xa", TotalTokens: 10},
		{ID: uuid.NewString(), WalletAddress: "0xb", TotalTokens: 20},
		{ID: uuid.NewString(), WalletAddress: "0xc", TotalTokens: 30},
	} {
		require.NoError(t, db.Create(&u).Error)
	}

	ctx := context.Background()

	one, err := svc.Leaderboard(ctx, 1)
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.Equal(t, "0xc", one[0].WalletAddress)

	// A larger request inside the cache TTL must still see everyone
	three, err := svc.Leaderboard(ctx, 3)
	require.NoError(t, err)
	require.Len(t, three, 3)
	assert.Equal(t, "0xc", three[0].WalletAddress)
	assert.Equal(t, "0xb", three[1].WalletAddress)
	assert.Equal(t, "0xa", three[2].WalletAddress)
}

func TestLeaderboard_ServesFromCacheWithinTTL(t *testing.T) {
	db := setupTestDB(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	svc := NewUserService(db, rdb, nil)

	for _, u := range []models.User{
		{ID: uuid.NewString(), WalletAddress: "0xold1", TotalTokens: 100},
		{ID: uuid.NewString(), WalletAddress: "0xold2", TotalTokens: 50},
	} {
		require.NoError(t, db.Create(&u).Error)
	}

	ctx := context.Background()

	first, err := svc.Leaderboard(ctx, 10)
	require.NoError(t, err)
	require.Len(t, first, 2)

	// New user arrives after the cache was written
	require.NoError(t, db.Create(&models.User{
		ID: uuid.NewString(), WalletAddress: "0xnew", TotalTokens: 500,
	}).Error)

	cached, err := svc.Leaderboard(ctx, 2)
	require.NoError(t, err)
	require.Len(t, cached, 2)
	assert.Equal(t, "0xold1", cached[0].WalletAddress, "served from cache, new user not yet visible")

	// Once the TTL lapses the next call refreshes from the DB
	mr.FastForward(leaderboardCacheTTL + time.Second)
	fresh, err := svc.Leaderboard(ctx, 2)
	require.NoError(t, err)
	require.Len(t, fresh, 2)
	assert.Equal(t, "0xnew", fresh[0].WalletAddress)
}

func TestVerifyIdentity_MarksUserVerified(t *testing.T) {
	db := setupTestDB(t)

	verifier := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/verify", r.URL.Path)
		json.NewEncoder(w).Encode(VerifyResult{
			Valid:       true,
			Wallet:      "0xVerifiedUser",
			Nationality: "BR",
		})
	}))
	defer verifier.Close()

	svc := NewUserService(db, nil, &VerifierClient{BaseURL: verifier.URL, Client: verifier.Client()})

	result, err := svc.VerifyIdentity(context.Background(), VerifyRequest{
		AttestationID:   "att-1",
		Proof:           json.RawMessage(`{}`),
		PublicSignals:   json.RawMessage(`[]`),
		UserContextData: "ctx",
	})
	require.NoError(t, err)
	assert.True(t, result.Valid)

	user, err := svc.GetByWallet("0xverifieduser")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.True(t, user.Verified)
	assert.Equal(t, "BR", user.Nationality)
	require.NotNil(t, user.VerifiedAt)
}

func TestVerifyIdentity_InvalidProofDoesNotMutate(t *testing.T) {
	db := setupTestDB(t)

	verifier := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(VerifyResult{Valid: false, Wallet: "0xsomeone", Reason: "proof verification failed"})
	}))
	defer verifier.Close()

	svc := NewUserService(db, nil, &VerifierClient{BaseURL: verifier.URL, Client: verifier.Client()})

	result, err := svc.VerifyIdentity(context.Background(), VerifyRequest{AttestationID: "att-1"})
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, "proof verification failed", result.Reason)

	user, err := svc.GetByWallet("0xsomeone")
	require.NoError(t, err)
	assert.Nil(t, user, "failed verification must not create a user")
}

func TestVerifyIdentity_UpdatesExistingUser(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, db.Create(&models.User{
		ID: uuid.NewString(), WalletAddress: "0xexisting", TotalTokens: 42,
	}).Error)

	verifier := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(VerifyResult{Valid: true, Wallet: "0xExisting", Nationality: "AR"})
	}))
	defer verifier.Close()

	svc := NewUserService(db, nil, &VerifierClient{BaseURL: verifier.URL, Client: verifier.Client()})
	_, err := svc.VerifyIdentity(context.Background(), VerifyRequest{AttestationID: "att-1"})
	require.NoError(t, err)

	user, err := svc.GetByWallet("0xexisting")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.True(t, user.Verified)
	assert.Equal(t, "AR", user.Nationality)
	assert.Equal(t, int64(42), user.TotalTokens, "balance untouched by verification")
}
