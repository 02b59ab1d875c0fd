package workers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"fanfi-engagement-service/models"
	"fanfi-engagement-service/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.UserReward{},
		&models.ChainBalance{},
	))

	return db
}

func seedLedger(t *testing.T, db *gorm.DB, wallet string, grants ...[2]int64) {
	t.Helper()
	for _, g := range grants {
		require.NoError(t, db.Create(&models.UserReward{
			ID:            uuid.NewString(),
			WalletAddress: wallet,
			Action:        models.RewardActionStake,
			Tokens:        g[0],
			Points:        g[1],
		}).Error)
	}
}

func TestReconcileOnce_RepairsDriftedBalance(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, db.Create(&models.User{
		ID:            uuid.NewString(),
		WalletAddress: "0xdrifted",
		TotalTokens:   999, // does not match the ledger
		TotalPoints:   1,
	}).Error)
	seedLedger(t, db, "0xdrifted", [2]int64{10, 5}, [2]int64{30, 15})

	r := NewBalanceReconciler(db, &services.MintClient{})
	require.NoError(t, r.ReconcileOnce(context.Background()))

	var user models.User
	require.NoError(t, db.Where("wallet_address = ?", "0xdrifted").First(&user).Error)
	assert.Equal(t, int64(40), user.TotalTokens)
	assert.Equal(t, int64(20), user.TotalPoints)
}

func TestReconcileOnce_LeavesConsistentBalanceAlone(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, db.Create(&models.User{
		ID:            uuid.NewString(),
		WalletAddress: "0xconsistent",
		TotalTokens:   25,
		TotalPoints:   10,
	}).Error)
	seedLedger(t, db, "0xconsistent", [2]int64{25, 10})
	var before models.User
	require.NoError(t, db.Where("wallet_address = ?", "0xconsistent").First(&before).Error)

	r := NewBalanceReconciler(db, &services.MintClient{})
	require.NoError(t, r.ReconcileOnce(context.Background()))

	var after models.User
	require.NoError(t, db.Where("wallet_address = ?", "0xconsistent").First(&after).Error)
	assert.Equal(t, before.UpdatedAt, after.UpdatedAt, "consistent rows must not be rewritten")
}

func TestReconcileOnce_ToleratesOrphanLedgerRows(t *testing.T) {
	db := setupTestDB(t)

	// Ledger rows without a user row: logged and skipped, not an error
	seedLedger(t, db, "0xghost", [2]int64{10, 10})

	r := NewBalanceReconciler(db, &services.MintClient{})
	require.NoError(t, r.ReconcileOnce(context.Background()))

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.Zero(t, count, "reconciliation must not invent users")
}

func TestReconcileOnce_RecordsChainBalances(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, db.Create(&models.User{
		ID:            uuid.NewString(),
		WalletAddress: "0xabc",
		TotalTokens:   100,
	}).Error)
	seedLedger(t, db, "0xabc", [2]int64{100, 0})

	// Minter reports 60 whole tokens on-chain
	minter := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"wallet":  "0xabc",
			"balance": "60000000000000000000",
		})
	}))
	defer minter.Close()

	mint := &services.MintClient{BaseURL: minter.URL, Client: minter.Client()}
	r := NewBalanceReconciler(db, mint)
	require.NoError(t, r.ReconcileOnce(context.Background()))

	var balance models.ChainBalance
	require.NoError(t, db.Where("wallet_address = ?", "0xabc").First(&balance).Error)
	assert.Equal(t, int64(100), balance.OffChainTokens)
	assert.Equal(t, int64(60), balance.OnChainTokens)
	assert.Equal(t, int64(40), balance.Drift)

	// Second pass upserts the same row instead of stacking new ones
	require.NoError(t, r.ReconcileOnce(context.Background()))
	var count int64
	require.NoError(t, db.Model(&models.ChainBalance{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestReconcileOnce_SkipsChainCheckWhenMintUnconfigured(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, db.Create(&models.User{
		ID:            uuid.NewString(),
		WalletAddress: "0xoffline",
		TotalTokens:   5,
	}).Error)
	seedLedger(t, db, "0xoffline", [2]int64{5, 0})

	r := NewBalanceReconciler(db, &services.MintClient{})
	require.NoError(t, r.ReconcileOnce(context.Background()))

	var count int64
	require.NoError(t, db.Model(&models.ChainBalance{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestSnapshot_OrdersByAbsoluteDrift(t *testing.T) {
	db := setupTestDB(t)

	for _, b := range []models.ChainBalance{
		{ID: uuid.NewString(), WalletAddress: "0xsmall", Drift: 2},
		{ID: uuid.NewString(), WalletAddress: "0xbig", Drift: -50},
		{ID: uuid.NewString(), WalletAddress: "0xmedium", Drift: 10},
	} {
		require.NoError(t, db.Create(&b).Error)
	}

	r := NewBalanceReconciler(db, &services.MintClient{})
	balances, err := r.Snapshot()
	require.NoError(t, err)
	require.Len(t, balances, 3)
	assert.Equal(t, "0xbig", balances[0].WalletAddress)
	assert.Equal(t, "0xmedium", balances[1].WalletAddress)
	assert.Equal(t, "0xsmall", balances[2].WalletAddress)
}
