package services

import (
	"testing"

	"fanfi-engagement-service/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens an in-memory SQLite database with the full schema.
// Max one open connection: each :memory: connection is its own database.
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
		&models.Quest{},
		&models.UserQuest{},
		&models.UserReward{},
		&models.WatchSession{},
		&models.Duel{},
		&models.Match{},
		&models.PredictionMarket{},
		&models.ChainBalance{},
	))

	return db
}
