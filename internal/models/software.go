// internal/models/software.go
package models

import "github.com/lib/pq"

// Software is catalog reference data. Issuance reads it but never
// mutates it; only active software may receive new licenses.
type Software struct {
	BaseModel
	Name     string         `json:"name" gorm:"size:255;not null;index"`
	Type     string         `json:"type" gorm:"size:50;not null"`
	Version  string         `json:"version" gorm:"size:50;not null"`
	IsActive bool           `json:"is_active" gorm:"default:true;index"`
	Tags     pq.StringArray `json:"tags,omitempty" gorm:"type:text[]"`

	// Relationships
	Licenses    []License            `json:"licenses,omitempty" gorm:"foreignKey:SoftwareID"`
	Allocations []ResellerAllocation `json:"allocations,omitempty" gorm:"foreignKey:SoftwareID"`
}

func (Software) TableName() string {
	return "software"
}
