// internal/services/allocation_service.go
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/licensestack/ls-backend/internal/models"
	"github.com/licensestack/ls-backend/internal/utils"
)

type AllocationService struct {
	db *gorm.DB
}

type GrantAllocationRequest struct {
	ResellerID uuid.UUID `json:"reseller_id" validate:"required"`
	SoftwareID uuid.UUID `json:"software_id" validate:"required"`
	QuotaDelta int       `json:"quota_delta" validate:"required"`
}

type SetQuotaRequest struct {
	ResellerID uuid.UUID `json:"reseller_id" validate:"required"`
	SoftwareID uuid.UUID `json:"software_id" validate:"required"`
	NewQuota   int       `json:"new_quota" validate:"min=0"`
}

type AllocationFilter struct {
	utils.PaginationParams
	ResellerID *uuid.UUID `json:"reseller_id,omitempty"`
	SoftwareID *uuid.UUID `json:"software_id,omitempty"`
}

// RemainingQuota distinguishes unlimited admin issuance from the bounded
// reseller allocation.
type RemainingQuota struct {
	Unlimited bool `json:"unlimited"`
	Remaining int  `json:"remaining"`
}

func NewAllocationService(db *gorm.DB) *AllocationService {
	return &AllocationService{db: db}
}

// lockForUpdate adds a row lock on dialects that support it. SQLite
// serializes writers on its own.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// Grant adjusts a reseller's quota by a delta, creating the allocation
// with consumed = 0 when no record exists yet. The adjusted quota may
// never drop below what is already consumed.
func (s *AllocationService) Grant(ctx context.Context, req *GrantAllocationRequest) (*models.ResellerAllocation, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if err := s.checkPair(ctx, req.ResellerID, req.SoftwareID); err != nil {
		return nil, err
	}

	var allocation models.ResellerAllocation
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := lockForUpdate(tx).
			Where("reseller_id = ? AND software_id = ?", req.ResellerID, req.SoftwareID).
			First(&allocation).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if req.QuotaDelta < 0 {
				return ErrInvalidQuota
			}
			allocation = models.ResellerAllocation{
				ResellerID: req.ResellerID,
				SoftwareID: req.SoftwareID,
				Quota:      req.QuotaDelta,
				Consumed:   0,
			}
			if err := tx.Create(&allocation).Error; err != nil {
				return fmt.Errorf("failed to create allocation: %w", err)
			}
			return nil
		}
		if err != nil {
			return fmt.Errorf("database error: %w", err)
		}

		newQuota := allocation.Quota + req.QuotaDelta
		if newQuota < allocation.Consumed {
			return ErrInvalidQuota
		}

		allocation.Quota = newQuota
		if err := tx.Model(&allocation).Update("quota", newQuota).Error; err != nil {
			return fmt.Errorf("failed to update allocation: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &allocation, nil
}

// SetQuota replaces the allocation's quota outright. Consumed is left
// untouched and the new quota may not undercut it.
func (s *AllocationService) SetQuota(ctx context.Context, req *SetQuotaRequest) (*models.ResellerAllocation, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if req.NewQuota < 0 {
		return nil, ErrInvalidQuota
	}

	if err := s.checkPair(ctx, req.ResellerID, req.SoftwareID); err != nil {
		return nil, err
	}

	var allocation models.ResellerAllocation
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := lockForUpdate(tx).
			Where("reseller_id = ? AND software_id = ?", req.ResellerID, req.SoftwareID).
			First(&allocation).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			allocation = models.ResellerAllocation{
				ResellerID: req.ResellerID,
				SoftwareID: req.SoftwareID,
				Quota:      req.NewQuota,
				Consumed:   0,
			}
			if err := tx.Create(&allocation).Error; err != nil {
				return fmt.Errorf("failed to create allocation: %w", err)
			}
			return nil
		}
		if err != nil {
			return fmt.Errorf("database error: %w", err)
		}

		if req.NewQuota < allocation.Consumed {
			return ErrInvalidQuota
		}

		allocation.Quota = req.NewQuota
		if err := tx.Model(&allocation).Update("quota", req.NewQuota).Error; err != nil {
			return fmt.Errorf("failed to update allocation: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &allocation, nil
}

// GetRemainingQuota reports how many licenses the principal may still
// issue for a software product. Admins are always unlimited; a reseller
// without an allocation record has zero quota.
func (s *AllocationService) GetRemainingQuota(ctx context.Context, resellerID, softwareID uuid.UUID) (*RemainingQuota, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", resellerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if user.Role == models.RoleAdmin {
		return &RemainingQuota{Unlimited: true}, nil
	}

	var allocation models.ResellerAllocation
	err := s.db.WithContext(ctx).
		Where("reseller_id = ? AND software_id = ?", resellerID, softwareID).
		First(&allocation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &RemainingQuota{Remaining: 0}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	return &RemainingQuota{Remaining: allocation.Remaining()}, nil
}

// List returns allocations with reseller and software preloaded, for the
// admin console.
func (s *AllocationService) List(ctx context.Context, filter AllocationFilter) ([]models.ResellerAllocation, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.ResellerAllocation{}).
		Preload("Reseller").Preload("Software")

	if filter.ResellerID != nil {
		query = query.Where("reseller_id = ?", *filter.ResellerID)
	}
	if filter.SoftwareID != nil {
		query = query.Where("software_id = ?", *filter.SoftwareID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count allocations: %w", err)
	}

	allowedSortFields := []string{"created_at", "updated_at", "quota", "consumed"}
	query = utils.ApplySort(query, filter.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, filter.PaginationParams)

	var allocations []models.ResellerAllocation
	if err := query.Find(&allocations).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch allocations: %w", err)
	}

	return allocations, total, nil
}

// checkPair verifies the reseller and software the allocation refers to.
func (s *AllocationService) checkPair(ctx context.Context, resellerID, softwareID uuid.UUID) error {
	var reseller models.User
	if err := s.db.WithContext(ctx).First(&reseller, "id = ?", resellerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("database error: %w", err)
	}
	if reseller.Role != models.RoleReseller {
		return errors.New("allocations can only be granted to resellers")
	}

	var software models.Software
	if err := s.db.WithContext(ctx).First(&software, "id = ?", softwareID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSoftwareNotFound
		}
		return fmt.Errorf("database error: %w", err)
	}

	return nil
}
