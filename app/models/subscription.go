package models

import "time"

const (
	SubscriptionStatusPending  = "pending" // user claims payment, not verified
	SubscriptionStatusActive   = "active"
	SubscriptionStatusPastDue  = "past_due"
	SubscriptionStatusCanceled = "canceled"
	SubscriptionStatusExpired  = "expired"
)

// Subscription links a company to a plan. A row is created in pending state
// when the user confirms checkout; only verified provider webhooks move it
// to active.
type Subscription struct {
	ID                     uint       `gorm:"primaryKey" json:"id"`
	CompanyID              uint       `gorm:"not null;index" json:"company_id"`
	PlanID                 uint       `gorm:"not null;index" json:"plan_id"`
	Provider               string     `gorm:"type:varchar(20);not null;index:ux_subscriptions_provider_ref,unique,priority:1" json:"provider"`
	ProviderSubscriptionID string     `gorm:"type:varchar(191);not null;index:ux_subscriptions_provider_ref,unique,priority:2" json:"provider_subscription_id"`
	PaymentReference       string     `gorm:"type:varchar(100);index" json:"payment_reference"`
	Status                 string     `gorm:"type:varchar(32);not null;default:'pending';index" json:"status"`
	CurrentPeriodStart     *time.Time `gorm:"type:timestamp;default:null" json:"current_period_start,omitempty"`
	CurrentPeriodEnd       *time.Time `gorm:"type:timestamp;default:null" json:"current_period_end,omitempty"`
	CancelAtPeriodEnd      bool       `gorm:"default:false" json:"cancel_at_period_end"`
	RawPayloadJSON         string     `gorm:"type:longtext" json:"-"`
	CreatedAt              time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt              time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsEntitling reports whether the subscription currently grants plan
// benefits to the company.
func (s *Subscription) IsEntitling() bool {
	switch s.Status {
	case SubscriptionStatusActive, SubscriptionStatusPastDue:
		return true
	default:
		return false
	}
}
