package models

import (
	"encoding/json"
	"strings"
	"time"
)

// Payment provider constants used across billing-related models.
const (
	PaymentProviderStripe      = "stripe"
	PaymentProviderMercadoPago = "mercado_pago"
	PaymentProviderNequi       = "nequi"
	PaymentProviderBancolombia = "bancolombia"
	PaymentProviderQRCode      = "qr_code"
)

// AllPaymentProviders lists the supported provider types in display order.
var AllPaymentProviders = []string{
	PaymentProviderStripe,
	PaymentProviderMercadoPago,
	PaymentProviderNequi,
	PaymentProviderBancolombia,
	PaymentProviderQRCode,
}

// IsKnownPaymentProvider reports whether the given provider type is one of
// the fixed enumeration.
func IsKnownPaymentProvider(provider string) bool {
	p := strings.ToLower(strings.TrimSpace(provider))
	for _, known := range AllPaymentProviders {
		if p == known {
			return true
		}
	}
	return false
}

// PaymentMethodConfig is an administrator-managed payment method. The
// ConfigJSON column holds the provider-specific key/value configuration
// (secrets included); the checkout core reads it as a capability source and
// never mutates it.
type PaymentMethodConfig struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Provider    string    `gorm:"type:varchar(20);not null;index" json:"provider"`
	DisplayName string    `gorm:"type:varchar(100);not null;default:''" json:"display_name"`
	IsActive    bool      `gorm:"default:true;index" json:"is_active"`
	ConfigJSON  string    `gorm:"type:text" json:"-"`
	WebhookURL  string    `gorm:"type:varchar(255);default:''" json:"webhook_url"`
	CreatedAt   time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Config decodes the provider-specific configuration mapping. A missing or
// malformed column yields an empty map so required-key validation fails
// closed instead of panicking.
func (m *PaymentMethodConfig) Config() map[string]string {
	cfg := map[string]string{}
	if m.ConfigJSON == "" {
		return cfg
	}
	if err := json.Unmarshal([]byte(m.ConfigJSON), &cfg); err != nil {
		return map[string]string{}
	}
	return cfg
}

// SetConfig encodes the configuration mapping into the JSON column.
func (m *PaymentMethodConfig) SetConfig(cfg map[string]string) error {
	b, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	m.ConfigJSON = string(b)
	return nil
}

// RedactedConfig returns a copy of the configuration with secret-looking
// values masked for display. Eligibility checks always use the raw config.
func (m *PaymentMethodConfig) RedactedConfig() map[string]string {
	out := map[string]string{}
	for k, v := range m.Config() {
		if v == "" {
			out[k] = ""
			continue
		}
		lk := strings.ToLower(k)
		if strings.Contains(lk, "secret") || strings.Contains(lk, "private") || strings.Contains(lk, "token") {
			out[k] = "••••••"
			continue
		}
		out[k] = v
	}
	return out
}
