package models

import "time"

// QRAsset is a pre-provisioned QR payment image for a (plan, provider)
// pair, uploaded by an administrator and stored in object storage.
type QRAsset struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	PlanID     uint       `gorm:"not null;index:idx_qr_assets_plan_provider,priority:1" json:"plan_id"`
	Provider   string     `gorm:"type:varchar(20);not null;index:idx_qr_assets_plan_provider,priority:2" json:"provider"`
	ImageURL   string     `gorm:"type:varchar(255);not null" json:"image_url"`
	StorageKey string     `gorm:"type:varchar(255);not null;default:''" json:"-"`
	IsActive   bool       `gorm:"default:true;index" json:"is_active"`
	ExpiresAt  *time.Time `gorm:"type:timestamp;default:null" json:"expires_at,omitempty"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsUsable reports whether the asset may be offered at checkout: active and
// not past its expiry.
func (q *QRAsset) IsUsable(now time.Time) bool {
	if !q.IsActive {
		return false
	}
	if q.ExpiresAt != nil && !q.ExpiresAt.After(now) {
		return false
	}
	return true
}
