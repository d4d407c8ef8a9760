// internal/services/apikey_service_test.go
package services

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/licensestack/ls-backend/internal/models"
)

type APIKeyServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *APIKeyService
	admin   *models.User
}

func (suite *APIKeyServiceTestSuite) SetupTest() {
	suite.db = setupTestDB(suite.T())
	suite.service = NewAPIKeyService(suite.db)
	suite.admin = createTestAdmin(suite.T(), suite.db)
}

func (suite *APIKeyServiceTestSuite) TestCreate() {
	created, err := suite.service.Create(context.Background(), suite.admin.ID,
		&CreateAPIKeyRequest{Name: "storefront"})

	assert.NoError(suite.T(), err)
	assert.True(suite.T(), strings.HasPrefix(created.Secret, "lsk_"))
	assert.True(suite.T(), strings.HasPrefix(created.Secret, created.Key.Prefix))
	assert.NotEqual(suite.T(), created.Secret, created.Key.KeyHash)
	assert.True(suite.T(), created.Key.IsActive)

	// Only the hash is persisted.
	var stored models.APIKey
	suite.db.First(&stored, "id = ?", created.Key.ID)
	assert.NotContains(suite.T(), stored.KeyHash, created.Secret)
	assert.Len(suite.T(), stored.KeyHash, 64)
}

func (suite *APIKeyServiceTestSuite) TestAuthenticate() {
	created, err := suite.service.Create(context.Background(), suite.admin.ID,
		&CreateAPIKeyRequest{Name: "storefront"})
	assert.NoError(suite.T(), err)

	key, err := suite.service.Authenticate(context.Background(), created.Secret)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), created.Key.ID, key.ID)

	_, err = suite.service.Authenticate(context.Background(), "lsk_definitely_not_issued")
	assert.EqualError(suite.T(), err, "invalid API key")

	_, err = suite.service.Authenticate(context.Background(), "")
	assert.EqualError(suite.T(), err, "missing API key")
}

func (suite *APIKeyServiceTestSuite) TestRevoke() {
	created, err := suite.service.Create(context.Background(), suite.admin.ID,
		&CreateAPIKeyRequest{Name: "storefront"})
	assert.NoError(suite.T(), err)

	assert.NoError(suite.T(), suite.service.Revoke(context.Background(), created.Key.ID))

	_, err = suite.service.Authenticate(context.Background(), created.Secret)
	assert.EqualError(suite.T(), err, "invalid API key")

	assert.Error(suite.T(), suite.service.Revoke(context.Background(), uuid.New()))
}

func (suite *APIKeyServiceTestSuite) TestList() {
	for _, name := range []string{"storefront", "partner-portal"} {
		_, err := suite.service.Create(context.Background(), suite.admin.ID,
			&CreateAPIKeyRequest{Name: name})
		assert.NoError(suite.T(), err)
	}

	keys, total, err := suite.service.List(context.Background(), defaultPagination())
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(2), total)
	assert.Len(suite.T(), keys, 2)
}

func TestAPIKeyServiceSuite(t *testing.T) {
	suite.Run(t, new(APIKeyServiceTestSuite))
}
