// internal/handlers/license_handler_test.go
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/licensestack/ls-backend/internal/config"
	"github.com/licensestack/ls-backend/internal/middleware"
	"github.com/licensestack/ls-backend/internal/models"
	"github.com/licensestack/ls-backend/internal/services"
	"github.com/licensestack/ls-backend/internal/utils"
)

var handlerDBCounter int64

type LicenseAPITestSuite struct {
	suite.Suite
	db            *gorm.DB
	router        *gin.Engine
	cfg           *config.Config
	admin         *models.User
	reseller      *models.User
	software      *models.Software
	adminToken    string
	resellerToken string
}

func (suite *LicenseAPITestSuite) SetupTest() {
	t := suite.T()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:handlers_test_%d?mode=memory&cache=shared&_busy_timeout=5000&_txlock=immediate",
		atomic.AddInt64(&handlerDBCounter, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Software{},
		&models.License{},
		&models.ResellerAllocation{},
		&models.APIKey{},
	))

	suite.db = db
	suite.cfg = &config.Config{
		Environment: "test",
		JWT: config.JWTConfig{
			SecretKey:       "handler-test-secret",
			AccessTokenTTL:  1,
			RefreshTokenTTL: 24,
		},
		Issuance: config.IssuanceConfig{
			BuyerLicenseLimit: 5,
			KeyAttempts:       3,
		},
	}
	utils.SetJWTSecret(suite.cfg.JWT.SecretKey)

	suite.admin = suite.createUser("Admin", "admin@example.com", models.RoleAdmin)
	suite.reseller = suite.createUser("Reseller", "reseller@example.com", models.RoleReseller)
	suite.software = &models.Software{Name: "PhotoSuite Pro", Type: "desktop", Version: "2.1.0", IsActive: true}
	require.NoError(t, db.Create(suite.software).Error)

	suite.adminToken, err = utils.GenerateJWT(suite.admin.ID, suite.admin.Email, string(suite.admin.Role), 1)
	require.NoError(t, err)
	suite.resellerToken, err = utils.GenerateJWT(suite.reseller.ID, suite.reseller.Email, string(suite.reseller.Role), 1)
	require.NoError(t, err)

	licenseService := services.NewLicenseService(db, suite.cfg, nil)
	allocationService := services.NewAllocationService(db)
	apiKeyService := services.NewAPIKeyService(db)

	licenseHandler := NewLicenseHandler(licenseService)
	allocationHandler := NewAllocationHandler(allocationService)
	verificationHandler := NewVerificationHandler(licenseService)

	r := gin.New()
	v1 := r.Group("/v1")
	{
		licenses := v1.Group("/licenses", middleware.AuthRequired())
		licenses.POST("", licenseHandler.IssueLicense)
		licenses.GET("/recent", licenseHandler.GetRecentLicenses)

		v1.GET("/allocations/remaining", middleware.AuthRequired(), allocationHandler.GetRemainingQuota)

		admin := v1.Group("/admin", middleware.AuthRequired(), middleware.AdminRequired())
		admin.POST("/allocations", allocationHandler.GrantAllocation)

		v1.GET("/verify/:key", middleware.APIKeyRequired(apiKeyService), verificationHandler.VerifyLicenseKey)
	}
	suite.router = r
}

func (suite *LicenseAPITestSuite) createUser(name, email string, role models.UserRole) *models.User {
	user := &models.User{Name: name, Email: email, Role: role, Status: models.UserStatusActive}
	require.NoError(suite.T(), user.SetPassword("TestPass123!"))
	require.NoError(suite.T(), suite.db.Create(user).Error)
	return user
}

func (suite *LicenseAPITestSuite) request(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(suite.T(), json.NewEncoder(&buf).Encode(body))
	}

	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *LicenseAPITestSuite) grantQuota(quota int) {
	w := suite.request("POST", "/v1/admin/allocations", suite.adminToken, gin.H{
		"reseller_id": suite.reseller.ID,
		"software_id": suite.software.ID,
		"quota_delta": quota,
	})
	require.Equal(suite.T(), http.StatusCreated, w.Code, w.Body.String())
}

func issueBody(softwareID, buyerEmail string) gin.H {
	return gin.H{
		"software_id": softwareID,
		"buyer_name":  "Test Buyer",
		"buyer_email": buyerEmail,
		"buyer_phone": "+1-555-0100",
	}
}

func (suite *LicenseAPITestSuite) TestIssueLicenseRequiresAuth() {
	w := suite.request("POST", "/v1/licenses", "", issueBody(suite.software.ID.String(), "buyer@example.com"))
	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
}

func (suite *LicenseAPITestSuite) TestIssueLicense() {
	suite.grantQuota(2)

	w := suite.request("POST", "/v1/licenses", suite.resellerToken,
		issueBody(suite.software.ID.String(), "buyer@example.com"))
	assert.Equal(suite.T(), http.StatusCreated, w.Code, w.Body.String())

	var response map[string]interface{}
	require.NoError(suite.T(), json.Unmarshal(w.Body.Bytes(), &response))
	assert.True(suite.T(), response["success"].(bool))

	data := response["data"].(map[string]interface{})
	key := data["license_key"].(string)
	assert.Regexp(suite.T(), `^LS-[A-Z0-9]{2}-[A-Z0-9]{4}-[A-Z0-9]{4}$`, key)
}

func (suite *LicenseAPITestSuite) TestQuotaExceededResponse() {
	suite.grantQuota(1)

	w := suite.request("POST", "/v1/licenses", suite.resellerToken,
		issueBody(suite.software.ID.String(), "first@example.com"))
	require.Equal(suite.T(), http.StatusCreated, w.Code)

	w = suite.request("POST", "/v1/licenses", suite.resellerToken,
		issueBody(suite.software.ID.String(), "second@example.com"))
	assert.Equal(suite.T(), http.StatusUnprocessableEntity, w.Code)

	var response map[string]interface{}
	require.NoError(suite.T(), json.Unmarshal(w.Body.Bytes(), &response))
	assert.False(suite.T(), response["success"].(bool))
	errObj := response["error"].(map[string]interface{})
	assert.Equal(suite.T(), "QUOTA_EXCEEDED", errObj["code"])
}

func (suite *LicenseAPITestSuite) TestIssueLicenseValidation() {
	suite.grantQuota(2)

	w := suite.request("POST", "/v1/licenses", suite.resellerToken,
		issueBody(suite.software.ID.String(), "not-an-email"))
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)

	var response map[string]interface{}
	require.NoError(suite.T(), json.Unmarshal(w.Body.Bytes(), &response))
	errObj := response["error"].(map[string]interface{})
	assert.Equal(suite.T(), "VALIDATION_ERROR", errObj["code"])
}

func (suite *LicenseAPITestSuite) TestRemainingQuotaEndpoint() {
	suite.grantQuota(3)

	w := suite.request("GET", "/v1/allocations/remaining?software_id="+suite.software.ID.String(),
		suite.resellerToken, nil)
	assert.Equal(suite.T(), http.StatusOK, w.Code, w.Body.String())

	var response map[string]interface{}
	require.NoError(suite.T(), json.Unmarshal(w.Body.Bytes(), &response))
	quota := response["data"].(map[string]interface{})["quota"].(map[string]interface{})
	assert.Equal(suite.T(), float64(3), quota["remaining"])
	assert.Equal(suite.T(), false, quota["unlimited"])

	// Admins see an unlimited allowance.
	w = suite.request("GET", "/v1/allocations/remaining?software_id="+suite.software.ID.String(),
		suite.adminToken, nil)
	assert.Equal(suite.T(), http.StatusOK, w.Code)
	require.NoError(suite.T(), json.Unmarshal(w.Body.Bytes(), &response))
	quota = response["data"].(map[string]interface{})["quota"].(map[string]interface{})
	assert.Equal(suite.T(), true, quota["unlimited"])
}

func (suite *LicenseAPITestSuite) TestGrantAllocationRequiresAdmin() {
	w := suite.request("POST", "/v1/admin/allocations", suite.resellerToken, gin.H{
		"reseller_id": suite.reseller.ID,
		"software_id": suite.software.ID,
		"quota_delta": 5,
	})
	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
}

func (suite *LicenseAPITestSuite) TestVerifyLicenseKey() {
	suite.grantQuota(1)

	w := suite.request("POST", "/v1/licenses", suite.resellerToken,
		issueBody(suite.software.ID.String(), "buyer@example.com"))
	require.Equal(suite.T(), http.StatusCreated, w.Code)

	var issued map[string]interface{}
	require.NoError(suite.T(), json.Unmarshal(w.Body.Bytes(), &issued))
	key := issued["data"].(map[string]interface{})["license_key"].(string)

	apiKeyService := services.NewAPIKeyService(suite.db)
	created, err := apiKeyService.Create(context.Background(), suite.admin.ID,
		&services.CreateAPIKeyRequest{Name: "verifier"})
	require.NoError(suite.T(), err)

	// Without an API key the endpoint refuses.
	w = suite.request("GET", "/v1/verify/"+key, "", nil)
	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)

	req, _ := http.NewRequest("GET", "/v1/verify/"+key, nil)
	req.Header.Set("X-API-Key", created.Secret)
	w = httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	assert.Equal(suite.T(), http.StatusOK, w.Code, w.Body.String())

	var response map[string]interface{}
	require.NoError(suite.T(), json.Unmarshal(w.Body.Bytes(), &response))
	data := response["data"].(map[string]interface{})
	assert.Equal(suite.T(), true, data["valid"])
	license := data["license"].(map[string]interface{})
	assert.Equal(suite.T(), key, license["license_key"])
	software := license["software"].(map[string]interface{})
	assert.Equal(suite.T(), suite.software.Name, software["name"])

	// Unknown keys come back as 404, not as invalid credentials.
	req, _ = http.NewRequest("GET", "/v1/verify/LS-ZZ-ZZZZ-ZZZZ", nil)
	req.Header.Set("X-API-Key", created.Secret)
	w = httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func TestLicenseAPISuite(t *testing.T) {
	suite.Run(t, new(LicenseAPITestSuite))
}
