// internal/services/admin_service.go
package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/licensestack/ls-backend/internal/models"
	"github.com/licensestack/ls-backend/internal/utils"
)

type AdminService struct {
	db *gorm.DB
}

type DashboardStats struct {
	TotalUsers       int64 `json:"total_users"`
	TotalSoftware    int64 `json:"total_software"`
	TotalLicenses    int64 `json:"total_licenses"`
	TotalAllocations int64 `json:"total_allocations"`
}

type CreateResellerRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,strong_password"`
}

func NewAdminService(db *gorm.DB) *AdminService {
	return &AdminService{db: db}
}

// GetDashboardStats backs the admin overview: entity totals plus the ten
// most recent licenses across all issuers.
func (s *AdminService) GetDashboardStats(ctx context.Context) (*DashboardStats, []models.License, error) {
	stats := &DashboardStats{}
	db := s.db.WithContext(ctx)

	db.Model(&models.User{}).Count(&stats.TotalUsers)
	db.Model(&models.Software{}).Count(&stats.TotalSoftware)
	db.Model(&models.License{}).Count(&stats.TotalLicenses)
	db.Model(&models.ResellerAllocation{}).Count(&stats.TotalAllocations)

	var recent []models.License
	if err := db.Model(&models.License{}).
		Preload("Software").
		Order("created_at DESC").
		Limit(10).
		Find(&recent).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to fetch recent licenses: %w", err)
	}

	return stats, recent, nil
}

func (s *AdminService) CreateReseller(ctx context.Context, req *CreateResellerRequest) (*models.User, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var existing models.User
	if err := s.db.WithContext(ctx).Where("email = ?", req.Email).First(&existing).Error; err == nil {
		return nil, errors.New("user with this email already exists")
	}

	reseller := &models.User{
		Name:   req.Name,
		Email:  req.Email,
		Role:   models.RoleReseller,
		Status: models.UserStatusActive,
	}

	if err := reseller.SetPassword(req.Password); err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.db.WithContext(ctx).Create(reseller).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errors.New("user with this email already exists")
		}
		return nil, fmt.Errorf("failed to create reseller: %w", err)
	}

	return reseller, nil
}

func (s *AdminService) ListResellers(ctx context.Context, params utils.PaginationParams) ([]models.User, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.User{}).
		Where("role = ?", models.RoleReseller)

	if params.Search != "" {
		query = query.Where("name ILIKE ? OR email ILIKE ?", "%"+params.Search+"%", "%"+params.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count resellers: %w", err)
	}

	allowedSortFields := []string{"created_at", "name", "email", "last_login_at"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var resellers []models.User
	if err := query.Find(&resellers).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch resellers: %w", err)
	}

	return resellers, total, nil
}
