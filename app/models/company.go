package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// Company is the tenant unit: one restaurant business with its own menu,
// staff and subscription.
type Company struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"type:varchar(150);not null" json:"name" validate:"required,min=2,max=150"`
	Slug      string         `gorm:"type:varchar(160);uniqueIndex" json:"slug" validate:"required,min=2,max=160"`
	OwnerID   uint           `gorm:"not null;index" json:"owner_id"`
	Email     string         `gorm:"type:varchar(200);default:''" json:"email" validate:"omitempty,email"`
	Phone     string         `gorm:"type:varchar(20);default:''" json:"phone" validate:"max=20"`
	Address   string         `gorm:"type:varchar(255);default:''" json:"address" validate:"max=255"`
	City      string         `gorm:"type:varchar(100);default:''" json:"city" validate:"max=100"`
	LogoURL   string         `gorm:"type:varchar(255);default:''" json:"logo_url" validate:"max=255"`
	IsActive  bool           `gorm:"default:true;index" json:"is_active"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (c *Company) Validate() error {
	v := validator.New()

	return v.Struct(c)
}
