package models

import (
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	BillingIntervalMonthly = "monthly"
	BillingIntervalYearly  = "yearly"
	BillingIntervalWeekly  = "weekly"
)

// Plan is a subscription plan offered to companies. Prices are stored in
// minor currency units (COP cents / USD cents).
type Plan struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Name            string    `gorm:"type:varchar(100);not null;uniqueIndex" json:"name" validate:"required,min=2,max=100"`
	Description     string    `gorm:"type:text" json:"description"`
	PriceCents      int64     `gorm:"not null;default:0" json:"price_cents" validate:"gte=0"`
	Currency        string    `gorm:"type:varchar(3);not null;default:'COP'" json:"currency" validate:"required,len=3"`
	BillingInterval string    `gorm:"type:varchar(16);not null;default:'monthly'" json:"billing_interval" validate:"oneof=monthly yearly weekly"`
	FeaturesJSON    string    `gorm:"type:text" json:"-"`
	IsActive        bool      `gorm:"default:true;index" json:"is_active"`
	IsFeatured      bool      `gorm:"default:false" json:"is_featured"`
	SortOrder       int       `gorm:"default:0;index" json:"sort_order"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p *Plan) Validate() error {
	v := validator.New()

	return v.Struct(p)
}

// IsFree reports whether the plan requires no payment at all.
func (p *Plan) IsFree() bool {
	return p.PriceCents == 0
}

// Features decodes the ordered feature list. An empty or broken column
// yields an empty list, never an error, since features are display-only.
func (p *Plan) Features() []string {
	if p.FeaturesJSON == "" {
		return nil
	}
	var features []string
	if err := json.Unmarshal([]byte(p.FeaturesJSON), &features); err != nil {
		return nil
	}
	return features
}

// SetFeatures encodes the ordered feature list into the JSON column.
func (p *Plan) SetFeatures(features []string) error {
	b, err := json.Marshal(features)
	if err != nil {
		return err
	}
	p.FeaturesJSON = string(b)
	return nil
}
