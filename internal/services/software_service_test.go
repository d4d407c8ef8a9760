// internal/services/software_service_test.go
package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

type SoftwareServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *SoftwareService
}

func (suite *SoftwareServiceTestSuite) SetupTest() {
	suite.db = setupTestDB(suite.T())
	suite.service = NewSoftwareService(suite.db)
}

func (suite *SoftwareServiceTestSuite) TestCreateAndGet() {
	created, err := suite.service.Create(context.Background(), &CreateSoftwareRequest{
		Name:    "PhotoSuite Pro",
		Type:    "desktop",
		Version: "2.1.0",
		Tags:    []string{"design", "pro"},
	})
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), created.IsActive)

	found, err := suite.service.Get(context.Background(), created.ID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "PhotoSuite Pro", found.Name)
	assert.Equal(suite.T(), []string{"design", "pro"}, []string(found.Tags))

	_, err = suite.service.Get(context.Background(), uuid.New())
	assert.ErrorIs(suite.T(), err, ErrSoftwareNotFound)
}

func (suite *SoftwareServiceTestSuite) TestCreateRejectsInvalidInput() {
	_, err := suite.service.Create(context.Background(), &CreateSoftwareRequest{
		Name:    "",
		Type:    "desktop",
		Version: "1.0",
	})
	assert.Error(suite.T(), err)
}

func (suite *SoftwareServiceTestSuite) TestUpdate() {
	created, err := suite.service.Create(context.Background(), &CreateSoftwareRequest{
		Name:    "PhotoSuite Pro",
		Type:    "desktop",
		Version: "2.1.0",
	})
	assert.NoError(suite.T(), err)

	newVersion := "2.2.0"
	updated, err := suite.service.Update(context.Background(), created.ID, &UpdateSoftwareRequest{
		Version: &newVersion,
	})
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "2.2.0", updated.Version)
	// Untouched fields survive a partial update.
	assert.Equal(suite.T(), "PhotoSuite Pro", updated.Name)

	_, err = suite.service.Update(context.Background(), uuid.New(), &UpdateSoftwareRequest{
		Version: &newVersion,
	})
	assert.ErrorIs(suite.T(), err, ErrSoftwareNotFound)
}

func (suite *SoftwareServiceTestSuite) TestDeactivate() {
	created, err := suite.service.Create(context.Background(), &CreateSoftwareRequest{
		Name:    "PhotoSuite Pro",
		Type:    "desktop",
		Version: "2.1.0",
	})
	assert.NoError(suite.T(), err)

	deactivated, err := suite.service.Deactivate(context.Background(), created.ID)
	assert.NoError(suite.T(), err)
	assert.False(suite.T(), deactivated.IsActive)

	// The record survives, it just stops accepting issuance.
	found, err := suite.service.Get(context.Background(), created.ID)
	assert.NoError(suite.T(), err)
	assert.False(suite.T(), found.IsActive)
}

func (suite *SoftwareServiceTestSuite) TestListActiveOnly() {
	active, err := suite.service.Create(context.Background(), &CreateSoftwareRequest{
		Name: "Active Product", Type: "desktop", Version: "1.0",
	})
	assert.NoError(suite.T(), err)

	inactive, err := suite.service.Create(context.Background(), &CreateSoftwareRequest{
		Name: "Retired Product", Type: "desktop", Version: "1.0",
	})
	assert.NoError(suite.T(), err)
	_, err = suite.service.Deactivate(context.Background(), inactive.ID)
	assert.NoError(suite.T(), err)

	list, total, err := suite.service.List(context.Background(), SoftwareFilter{
		PaginationParams: defaultPagination(),
		ActiveOnly:       true,
	})
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(1), total)
	assert.Equal(suite.T(), active.ID, list[0].ID)

	_, total, err = suite.service.List(context.Background(), SoftwareFilter{
		PaginationParams: defaultPagination(),
	})
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(2), total)
}

func TestSoftwareServiceSuite(t *testing.T) {
	suite.Run(t, new(SoftwareServiceTestSuite))
}
