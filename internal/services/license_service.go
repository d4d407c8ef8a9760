// internal/services/license_service.go
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/licensestack/ls-backend/internal/config"
	"github.com/licensestack/ls-backend/internal/keygen"
	"github.com/licensestack/ls-backend/internal/models"
	"github.com/licensestack/ls-backend/internal/utils"
)

type LicenseService struct {
	db                  *gorm.DB
	cfg                 *config.Config
	notificationService *NotificationService
	generateKey         func() (string, error)
}

type IssueLicenseRequest struct {
	SoftwareID   uuid.UUID `json:"software_id" validate:"required"`
	BuyerName    string    `json:"buyer_name" validate:"required,max=100"`
	BuyerEmail   string    `json:"buyer_email" validate:"required,email"`
	BuyerPhone   string    `json:"buyer_phone" validate:"required,max=50"`
	BuyerCity    string    `json:"buyer_city,omitempty" validate:"max=100"`
	BuyerCountry string    `json:"buyer_country,omitempty" validate:"max=100"`
}

func NewLicenseService(db *gorm.DB, cfg *config.Config, notificationService *NotificationService) *LicenseService {
	return &LicenseService{
		db:                  db,
		cfg:                 cfg,
		notificationService: notificationService,
		generateKey:         keygen.Generate,
	}
}

// IssueLicense creates one license as a single transaction: resolve the
// software, enforce the per-buyer ceiling and the reseller quota, generate
// a key, and persist. Resellers consume one unit of their allocation;
// admins are exempt from both the ceiling and the quota. On any failure
// the transaction rolls back and no state survives.
func (s *LicenseService) IssueLicense(ctx context.Context, principalID uuid.UUID, req *IssueLicenseRequest) (*models.License, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var principal models.User
	if err := s.db.WithContext(ctx).First(&principal, "id = ?", principalID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if principal.Status != models.UserStatusActive {
		return nil, errors.New("issuing account is not active")
	}

	var license *models.License
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var software models.Software
		if err := tx.First(&software, "id = ?", req.SoftwareID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSoftwareNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}

		if !software.IsActive {
			return ErrSoftwareInactive
		}

		// Serialize concurrent issuance for the same buyer+software pair.
		// The advisory lock is released at commit/rollback.
		if tx.Dialector.Name() == "postgres" {
			lockKey := req.BuyerEmail + ":" + req.SoftwareID.String()
			if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", lockKey).Error; err != nil {
				return fmt.Errorf("failed to acquire issuance lock: %w", err)
			}
		}

		switch principal.Role {
		case models.RoleAdmin:
			// Unlimited issuance: no buyer ceiling, no quota.
		case models.RoleReseller:
			var count int64
			if err := tx.Model(&models.License{}).
				Where("buyer_email = ? AND software_id = ?", req.BuyerEmail, req.SoftwareID).
				Count(&count).Error; err != nil {
				return fmt.Errorf("failed to count buyer licenses: %w", err)
			}

			if count >= int64(s.cfg.Issuance.BuyerLicenseLimit) {
				return ErrBuyerLimitExceeded
			}

			// Conditional increment: the WHERE clause makes the quota
			// check and the consume a single atomic statement, so two
			// concurrent issuances can never both take the last unit.
			result := tx.Model(&models.ResellerAllocation{}).
				Where("reseller_id = ? AND software_id = ? AND consumed < quota", principal.ID, req.SoftwareID).
				Update("consumed", gorm.Expr("consumed + 1"))
			if result.Error != nil {
				return fmt.Errorf("failed to consume allocation: %w", result.Error)
			}
			if result.RowsAffected == 0 {
				return ErrQuotaExceeded
			}
		default:
			return fmt.Errorf("unknown issuing role %q", principal.Role)
		}

		created, err := s.insertWithFreshKey(tx, &principal, &software, req)
		if err != nil {
			return err
		}

		license = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Preload("Software").
		First(license, "id = ?", license.ID).Error; err != nil {
		logrus.WithError(err).WithField("license_id", license.ID).
			Warn("Failed to reload issued license")
	}

	if s.notificationService != nil {
		go s.notificationService.SendLicenseIssuedEmail(license)
	}

	return license, nil
}

// insertWithFreshKey persists the license, regenerating the key on a
// duplicate-key collision up to the configured attempt budget. Each
// attempt runs under a savepoint: postgres aborts the enclosing
// transaction after a failed INSERT, so the savepoint must be rolled
// back before the next attempt can execute.
func (s *LicenseService) insertWithFreshKey(tx *gorm.DB, principal *models.User, software *models.Software, req *IssueLicenseRequest) (*models.License, error) {
	for attempt := 0; attempt < s.cfg.Issuance.KeyAttempts; attempt++ {
		key, err := s.generateKey()
		if err != nil {
			return nil, fmt.Errorf("failed to generate license key: %w", err)
		}

		license := &models.License{
			LicenseKey:   key,
			SoftwareID:   software.ID,
			BuyerName:    req.BuyerName,
			BuyerEmail:   req.BuyerEmail,
			BuyerPhone:   req.BuyerPhone,
			BuyerCity:    req.BuyerCity,
			BuyerCountry: req.BuyerCountry,
			CreatedBy:    principal.ID,
		}

		if err := tx.SavePoint("fresh_key").Error; err != nil {
			return nil, fmt.Errorf("failed to create savepoint: %w", err)
		}

		err = tx.Create(license).Error
		if err == nil {
			return license, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("failed to create license: %w", err)
		}
		if err := tx.RollbackTo("fresh_key").Error; err != nil {
			return nil, fmt.Errorf("failed to roll back savepoint: %w", err)
		}
	}

	return nil, ErrKeyGenerationExhausted
}

// ListRecentLicenses returns the principal's licenses, newest first.
// Admins may request licenses across all issuers.
func (s *LicenseService) ListRecentLicenses(ctx context.Context, principalID uuid.UUID, limit int, allIssuers bool) ([]models.License, error) {
	var principal models.User
	if err := s.db.WithContext(ctx).First(&principal, "id = ?", principalID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if limit < 1 || limit > 100 {
		limit = 10
	}

	query := s.db.WithContext(ctx).Model(&models.License{}).
		Preload("Software").
		Order("created_at DESC").
		Limit(limit)

	if !allIssuers || principal.Role != models.RoleAdmin {
		query = query.Where("created_by = ?", principalID)
	}

	var licenses []models.License
	if err := query.Find(&licenses).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch recent licenses: %w", err)
	}

	return licenses, nil
}

// BuyerIssuanceCount reports how many licenses already exist for a
// (buyer email, software) pair.
func (s *LicenseService) BuyerIssuanceCount(ctx context.Context, buyerEmail string, softwareID uuid.UUID) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.License{}).
		Where("buyer_email = ? AND software_id = ?", buyerEmail, softwareID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count buyer licenses: %w", err)
	}
	return count, nil
}

// GetLicenseByKey resolves a license key for the verification endpoint.
func (s *LicenseService) GetLicenseByKey(ctx context.Context, key string) (*models.License, error) {
	if !keygen.Pattern.MatchString(key) {
		return nil, ErrLicenseNotFound
	}

	var license models.License
	if err := s.db.WithContext(ctx).Preload("Software").
		First(&license, "license_key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLicenseNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	return &license, nil
}
