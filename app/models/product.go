package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// Product is a menu item belonging to a company's catalog.
type Product struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	CompanyID   uint           `gorm:"not null;index:idx_products_company_category,priority:1" json:"company_id"`
	CategoryID  *uint          `gorm:"index:idx_products_company_category,priority:2" json:"category_id,omitempty"`
	Name        string         `gorm:"type:varchar(150);not null" json:"name" validate:"required,min=1,max=150"`
	Description string         `gorm:"type:text" json:"description"`
	PriceCents  int64          `gorm:"not null;default:0" json:"price_cents" validate:"gte=0"`
	Currency    string         `gorm:"type:varchar(3);not null;default:'COP'" json:"currency" validate:"required,len=3"`
	ImageURL    string         `gorm:"type:varchar(255);default:''" json:"image_url" validate:"max=255"`
	IsAvailable bool           `gorm:"default:true;index" json:"is_available"`
	SortOrder   int            `gorm:"default:0" json:"sort_order"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (p *Product) Validate() error {
	v := validator.New()

	return v.Struct(p)
}
