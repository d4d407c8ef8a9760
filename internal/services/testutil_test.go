// internal/services/testutil_test.go
package services

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/licensestack/ls-backend/internal/config"
	"github.com/licensestack/ls-backend/internal/models"
	"github.com/licensestack/ls-backend/internal/utils"
)

var testDBCounter int64

// setupTestDB opens an isolated in-memory database per test. The pool is
// capped at one connection so concurrent transactions queue instead of
// failing with a busy error.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:services_test_%d?mode=memory&cache=shared&_busy_timeout=5000&_txlock=immediate",
		atomic.AddInt64(&testDBCounter, 1))

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.User{},
		&models.Software{},
		&models.License{},
		&models.ResellerAllocation{},
		&models.APIKey{},
	)
	require.NoError(t, err)

	t.Cleanup(func() { sqlDB.Close() })

	return db
}

func testConfig() *config.Config {
	return &config.Config{
		Environment: "test",
		Issuance: config.IssuanceConfig{
			BuyerLicenseLimit: 5,
			KeyAttempts:       3,
		},
	}
}

func createTestAdmin(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()

	admin := &models.User{
		Name:   "Test Admin",
		Email:  fmt.Sprintf("admin-%s@example.com", uuid.NewString()[:8]),
		Role:   models.RoleAdmin,
		Status: models.UserStatusActive,
	}
	require.NoError(t, admin.SetPassword("AdminPass123!"))
	require.NoError(t, db.Create(admin).Error)
	return admin
}

func createTestReseller(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()

	reseller := &models.User{
		Name:   "Test Reseller",
		Email:  fmt.Sprintf("reseller-%s@example.com", uuid.NewString()[:8]),
		Role:   models.RoleReseller,
		Status: models.UserStatusActive,
	}
	require.NoError(t, reseller.SetPassword("ResellerPass123!"))
	require.NoError(t, db.Create(reseller).Error)
	return reseller
}

func createTestSoftware(t *testing.T, db *gorm.DB) *models.Software {
	t.Helper()

	software := &models.Software{
		Name:     "Test Product",
		Type:     "desktop",
		Version:  "1.0.0",
		IsActive: true,
	}
	require.NoError(t, db.Create(software).Error)
	return software
}

func grantTestQuota(t *testing.T, db *gorm.DB, resellerID, softwareID uuid.UUID, quota int) *models.ResellerAllocation {
	t.Helper()

	allocation := &models.ResellerAllocation{
		ResellerID: resellerID,
		SoftwareID: softwareID,
		Quota:      quota,
		Consumed:   0,
	}
	require.NoError(t, db.Create(allocation).Error)
	return allocation
}

func defaultPagination() utils.PaginationParams {
	return utils.PaginationParams{Page: 1, Limit: 20, Sort: "created_at", Order: "desc"}
}

func issueRequest(softwareID uuid.UUID, buyerEmail string) *IssueLicenseRequest {
	return &IssueLicenseRequest{
		SoftwareID: softwareID,
		BuyerName:  "Test Buyer",
		BuyerEmail: buyerEmail,
		BuyerPhone: "+1-555-0100",
		BuyerCity:  "Springfield",
	}
}
