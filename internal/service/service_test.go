package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/venditio/crm-api/internal/auth"
	"github.com/venditio/crm-api/internal/database"
	"github.com/venditio/crm-api/internal/domain"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens an isolated in-memory SQLite database per test and runs
// the schema migration against it.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, database.AutoMigrate(db))
	return db
}

func adminContext() context.Context {
	return auth.WithUserContext(context.Background(), &auth.UserContext{
		UserID:      "admin-1",
		DisplayName: "Asha Admin",
		Email:       "asha@example.com",
		Role:        domain.RoleAdmin,
	})
}

func salesContext(userID string) context.Context {
	return auth.WithUserContext(context.Background(), &auth.UserContext{
		UserID:      userID,
		DisplayName: "Sam Sales",
		Email:       userID + "@example.com",
		Role:        domain.RoleSales,
	})
}

func createTestDeal(t *testing.T, db *gorm.DB, ownerID string) *domain.Deal {
	t.Helper()

	deal := &domain.Deal{
		DealNumber:   fmt.Sprintf("OPP-250829-%04d", dealCounter(db)),
		CustomerName: "Acme Industries",
		Stage:        domain.StageNew,
		OwnerID:      ownerID,
		OwnerName:    "Sam Sales",
	}
	require.NoError(t, db.Create(deal).Error)
	return deal
}

func dealCounter(db *gorm.DB) int64 {
	var count int64
	db.Model(&domain.Deal{}).Count(&count)
	return count + 1
}

func testLogger() *zap.Logger {
	return zap.NewNop()
}
