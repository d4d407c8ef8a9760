// internal/services/software_service.go
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/licensestack/ls-backend/internal/models"
	"github.com/licensestack/ls-backend/internal/utils"
)

type SoftwareService struct {
	db *gorm.DB
}

type CreateSoftwareRequest struct {
	Name    string   `json:"name" validate:"required,max=255"`
	Type    string   `json:"type" validate:"required,max=50"`
	Version string   `json:"version" validate:"required,max=50"`
	Tags    []string `json:"tags,omitempty"`
}

type UpdateSoftwareRequest struct {
	Name     *string  `json:"name,omitempty" validate:"omitempty,max=255"`
	Type     *string  `json:"type,omitempty" validate:"omitempty,max=50"`
	Version  *string  `json:"version,omitempty" validate:"omitempty,max=50"`
	IsActive *bool    `json:"is_active,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

type SoftwareFilter struct {
	utils.PaginationParams
	ActiveOnly bool `json:"active_only"`
}

func NewSoftwareService(db *gorm.DB) *SoftwareService {
	return &SoftwareService{db: db}
}

func (s *SoftwareService) Create(ctx context.Context, req *CreateSoftwareRequest) (*models.Software, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	software := &models.Software{
		Name:     req.Name,
		Type:     req.Type,
		Version:  req.Version,
		IsActive: true,
		Tags:     pq.StringArray(req.Tags),
	}

	if err := s.db.WithContext(ctx).Create(software).Error; err != nil {
		return nil, fmt.Errorf("failed to create software: %w", err)
	}

	return software, nil
}

func (s *SoftwareService) Update(ctx context.Context, id uuid.UUID, req *UpdateSoftwareRequest) (*models.Software, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var software models.Software
	if err := s.db.WithContext(ctx).First(&software, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSoftwareNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Type != nil {
		updates["type"] = *req.Type
	}
	if req.Version != nil {
		updates["version"] = *req.Version
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.Tags != nil {
		updates["tags"] = pq.StringArray(req.Tags)
	}

	if len(updates) == 0 {
		return &software, nil
	}

	if err := s.db.WithContext(ctx).Model(&software).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update software: %w", err)
	}

	return &software, nil
}

// Deactivate stops new issuance for a product without touching its
// existing licenses. Software with licenses is never deleted.
func (s *SoftwareService) Deactivate(ctx context.Context, id uuid.UUID) (*models.Software, error) {
	inactive := false
	return s.Update(ctx, id, &UpdateSoftwareRequest{IsActive: &inactive})
}

func (s *SoftwareService) Get(ctx context.Context, id uuid.UUID) (*models.Software, error) {
	var software models.Software
	if err := s.db.WithContext(ctx).First(&software, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSoftwareNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &software, nil
}

func (s *SoftwareService) List(ctx context.Context, filter SoftwareFilter) ([]models.Software, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Software{})

	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}

	if filter.Search != "" {
		query = query.Where("name ILIKE ?", "%"+filter.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count software: %w", err)
	}

	allowedSortFields := []string{"created_at", "updated_at", "name", "version"}
	query = utils.ApplySort(query, filter.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, filter.PaginationParams)

	var software []models.Software
	if err := query.Find(&software).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch software: %w", err)
	}

	return software, total, nil
}
