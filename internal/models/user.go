// internal/models/user.go
package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

type User struct {
	BaseModel
	Name         string     `json:"name" gorm:"size:100;not null"`
	Email        string     `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string     `json:"-" gorm:"size:255;not null"`
	Role         UserRole   `json:"role" gorm:"type:varchar(20);not null;index"`
	Status       UserStatus `json:"status" gorm:"type:varchar(20);default:'active'"`
	ProfileData  JSONB      `json:"profile_data,omitempty" gorm:"type:jsonb"`
	LastLoginAt  *time.Time `json:"last_login_at"`

	// Relationships
	Licenses    []License            `json:"licenses,omitempty" gorm:"foreignKey:CreatedBy"`
	Allocations []ResellerAllocation `json:"allocations,omitempty" gorm:"foreignKey:ResellerID"`
}

func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}
