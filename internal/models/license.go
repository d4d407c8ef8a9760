// internal/models/license.go
package models

import "github.com/google/uuid"

// License is insert-only: once created it is never updated or deleted.
// The unique index on LicenseKey is the correctness backstop for key
// generation collisions.
type License struct {
	BaseModel
	LicenseKey   string    `json:"license_key" gorm:"uniqueIndex;size:20;not null"`
	SoftwareID   uuid.UUID `json:"software_id" gorm:"type:uuid;not null;index:idx_licenses_buyer_software,priority:2"`
	BuyerName    string    `json:"buyer_name" gorm:"size:100;not null"`
	BuyerEmail   string    `json:"buyer_email" gorm:"size:255;not null;index:idx_licenses_buyer_software,priority:1"`
	BuyerPhone   string    `json:"buyer_phone" gorm:"size:50;not null"`
	BuyerCity    string    `json:"buyer_city,omitempty" gorm:"size:100"`
	BuyerCountry string    `json:"buyer_country,omitempty" gorm:"size:100"`
	CreatedBy    uuid.UUID `json:"created_by" gorm:"type:uuid;not null;index"`

	// Relationships
	Software Software `json:"software,omitempty" gorm:"foreignKey:SoftwareID"`
	Creator  User     `json:"creator,omitempty" gorm:"foreignKey:CreatedBy"`
}
