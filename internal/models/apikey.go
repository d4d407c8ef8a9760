// internal/models/apikey.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// APIKey authenticates the public license-verification endpoint. Only the
// SHA-256 hash of the key is stored; Prefix keeps the first characters
// around for display in the admin console.
type APIKey struct {
	BaseModel
	Name       string     `json:"name" gorm:"size:100;not null"`
	KeyHash    string     `json:"-" gorm:"uniqueIndex;size:64;not null"`
	Prefix     string     `json:"prefix" gorm:"size:12;not null"`
	IsActive   bool       `json:"is_active" gorm:"default:true;index"`
	LastUsedAt *time.Time `json:"last_used_at"`
	CreatedBy  uuid.UUID  `json:"created_by" gorm:"type:uuid;not null"`

	// Relationships
	Creator User `json:"creator,omitempty" gorm:"foreignKey:CreatedBy"`
}
