// internal/services/admin_service_test.go
package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/licensestack/ls-backend/internal/models"
)

type AdminServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *AdminService
}

func (suite *AdminServiceTestSuite) SetupTest() {
	suite.db = setupTestDB(suite.T())
	suite.service = NewAdminService(suite.db)
}

func (suite *AdminServiceTestSuite) TestDashboardStats() {
	admin := createTestAdmin(suite.T(), suite.db)
	reseller := createTestReseller(suite.T(), suite.db)
	software := createTestSoftware(suite.T(), suite.db)
	grantTestQuota(suite.T(), suite.db, reseller.ID, software.ID, 5)

	licenseService := NewLicenseService(suite.db, testConfig(), nil)
	_, err := licenseService.IssueLicense(context.Background(), admin.ID,
		issueRequest(software.ID, "buyer@example.com"))
	assert.NoError(suite.T(), err)

	stats, recent, err := suite.service.GetDashboardStats(context.Background())
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(2), stats.TotalUsers)
	assert.Equal(suite.T(), int64(1), stats.TotalSoftware)
	assert.Equal(suite.T(), int64(1), stats.TotalLicenses)
	assert.Equal(suite.T(), int64(1), stats.TotalAllocations)
	assert.Len(suite.T(), recent, 1)
	assert.Equal(suite.T(), software.Name, recent[0].Software.Name)
}

func (suite *AdminServiceTestSuite) TestCreateReseller() {
	reseller, err := suite.service.CreateReseller(context.Background(), &CreateResellerRequest{
		Name:     "Acme Distribution",
		Email:    "sales@acme.example.com",
		Password: "StrongPass123!",
	})

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.RoleReseller, reseller.Role)
	assert.Equal(suite.T(), models.UserStatusActive, reseller.Status)
	assert.NoError(suite.T(), reseller.CheckPassword("StrongPass123!"))

	// Duplicate email is rejected.
	_, err = suite.service.CreateReseller(context.Background(), &CreateResellerRequest{
		Name:     "Acme Again",
		Email:    "sales@acme.example.com",
		Password: "StrongPass123!",
	})
	assert.EqualError(suite.T(), err, "user with this email already exists")
}

func (suite *AdminServiceTestSuite) TestCreateResellerRejectsWeakPassword() {
	_, err := suite.service.CreateReseller(context.Background(), &CreateResellerRequest{
		Name:     "Acme Distribution",
		Email:    "sales@acme.example.com",
		Password: "weakpass",
	})
	assert.Error(suite.T(), err)

	var count int64
	suite.db.Model(&models.User{}).Count(&count)
	assert.Equal(suite.T(), int64(0), count)
}

func (suite *AdminServiceTestSuite) TestListResellers() {
	createTestAdmin(suite.T(), suite.db)
	createTestReseller(suite.T(), suite.db)
	createTestReseller(suite.T(), suite.db)

	resellers, total, err := suite.service.ListResellers(context.Background(), defaultPagination())
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(2), total)
	for _, r := range resellers {
		assert.Equal(suite.T(), models.RoleReseller, r.Role)
	}
}

func TestAdminServiceSuite(t *testing.T) {
	suite.Run(t, new(AdminServiceTestSuite))
}
