// internal/models/allocation.go
package models

import "github.com/google/uuid"

// ResellerAllocation grants a reseller the right to issue up to Quota
// licenses for one software product. Invariant: Consumed <= Quota.
// Consumed is only ever incremented by the issuance transaction through
// a conditional update, so the check constraint should never fire.
type ResellerAllocation struct {
	BaseModel
	ResellerID uuid.UUID `json:"reseller_id" gorm:"type:uuid;not null;uniqueIndex:idx_allocations_reseller_software"`
	SoftwareID uuid.UUID `json:"software_id" gorm:"type:uuid;not null;uniqueIndex:idx_allocations_reseller_software"`
	Quota      int       `json:"quota" gorm:"not null"`
	Consumed   int       `json:"consumed" gorm:"not null;default:0;check:consumed <= quota"`

	// Relationships
	Reseller User     `json:"reseller,omitempty" gorm:"foreignKey:ResellerID"`
	Software Software `json:"software,omitempty" gorm:"foreignKey:SoftwareID"`
}

// Remaining reports how many licenses the allocation can still issue.
func (a *ResellerAllocation) Remaining() int {
	return a.Quota - a.Consumed
}
