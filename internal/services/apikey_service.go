// internal/services/apikey_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/licensestack/ls-backend/internal/models"
	"github.com/licensestack/ls-backend/internal/utils"
)

type APIKeyService struct {
	db *gorm.DB
}

type CreateAPIKeyRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// CreatedAPIKey carries the plaintext key exactly once, at creation.
type CreatedAPIKey struct {
	Key    *models.APIKey `json:"api_key"`
	Secret string         `json:"secret"`
}

func NewAPIKeyService(db *gorm.DB) *APIKeyService {
	return &APIKeyService{db: db}
}

func (s *APIKeyService) Create(ctx context.Context, createdBy uuid.UUID, req *CreateAPIKeyRequest) (*CreatedAPIKey, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	secret, err := utils.GenerateAPIKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate API key: %w", err)
	}

	key := &models.APIKey{
		Name:      req.Name,
		KeyHash:   utils.HashString(secret),
		Prefix:    utils.APIKeyDisplayPrefix(secret),
		IsActive:  true,
		CreatedBy: createdBy,
	}

	if err := s.db.WithContext(ctx).Create(key).Error; err != nil {
		return nil, fmt.Errorf("failed to create API key: %w", err)
	}

	return &CreatedAPIKey{Key: key, Secret: secret}, nil
}

// Authenticate resolves a plaintext key from the X-API-Key header to its
// record, and stamps last_used_at without blocking the request.
func (s *APIKeyService) Authenticate(ctx context.Context, secret string) (*models.APIKey, error) {
	if secret == "" {
		return nil, errors.New("missing API key")
	}

	var key models.APIKey
	err := s.db.WithContext(ctx).
		Where("key_hash = ? AND is_active = ?", utils.HashString(secret), true).
		First(&key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.New("invalid API key")
	}
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	go func(id uuid.UUID) {
		now := time.Now()
		if err := s.db.Model(&models.APIKey{}).Where("id = ?", id).
			Update("last_used_at", now).Error; err != nil {
			logrus.WithError(err).Warn("Failed to stamp API key usage")
		}
	}(key.ID)

	return &key, nil
}

func (s *APIKeyService) Revoke(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Model(&models.APIKey{}).
		Where("id = ?", id).
		Update("is_active", false)
	if result.Error != nil {
		return fmt.Errorf("failed to revoke API key: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.New("API key not found")
	}
	return nil
}

func (s *APIKeyService) List(ctx context.Context, params utils.PaginationParams) ([]models.APIKey, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.APIKey{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count API keys: %w", err)
	}

	allowedSortFields := []string{"created_at", "name", "last_used_at"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var keys []models.APIKey
	if err := query.Find(&keys).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch API keys: %w", err)
	}

	return keys, total, nil
}
