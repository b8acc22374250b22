package models

import (
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// Setting represents a single persisted system setting.
type Setting struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"column:setting_key;size:255;not null;uniqueIndex" json:"key" validate:"required,min=1,max=255"`
	Value     string    `gorm:"type:text" json:"value"`
	Type      string    `gorm:"size:50;not null" json:"type" validate:"required"` // string, boolean, integer
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AppSettings represents the in-memory application settings structure.
type AppSettings struct {
	SiteTitle           string `json:"site_title" validate:"required,min=1,max=255"`
	SiteDescription     string `json:"site_description" validate:"max=500"`
	CheckoutEnabled     bool   `json:"checkout_enabled"`
	PaymentsSandboxMode bool   `json:"payments_sandbox_mode"`
	mu                  sync.RWMutex
}

// Global settings instance
var (
	appSettings *AppSettings
	settingsMu  sync.RWMutex
)

// GetAppSettings returns the current application settings.
func GetAppSettings() *AppSettings {
	settingsMu.RLock()
	defer settingsMu.RUnlock()
	return appSettings
}

// LoadSettings loads settings from database into memory.
func LoadSettings(db *gorm.DB) error {
	settingsMu.Lock()
	defer settingsMu.Unlock()

	appSettings = &AppSettings{
		SiteTitle:           "MesaFácil",
		SiteDescription:     "Gestión para restaurantes",
		CheckoutEnabled:     true,
		PaymentsSandboxMode: false,
	}

	var settings []Setting
	if err := db.Find(&settings).Error; err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	for _, setting := range settings {
		switch setting.Key {
		case "site_title":
			appSettings.SiteTitle = setting.Value
		case "site_description":
			appSettings.SiteDescription = setting.Value
		case "checkout_enabled":
			appSettings.CheckoutEnabled = setting.Value == "true"
		case "payments_sandbox_mode":
			appSettings.PaymentsSandboxMode = setting.Value == "true"
		}
	}

	return nil
}

// SaveSettings persists the given settings to the database and swaps the
// in-memory instance.
func SaveSettings(db *gorm.DB, settings *AppSettings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	values := map[string]string{
		"site_title":            settings.SiteTitle,
		"site_description":      settings.SiteDescription,
		"checkout_enabled":      boolString(settings.CheckoutEnabled),
		"payments_sandbox_mode": boolString(settings.PaymentsSandboxMode),
	}

	for key, value := range values {
		var setting Setting
		err := db.Where("setting_key = ?", key).First(&setting).Error
		if err == gorm.ErrRecordNotFound {
			setting = Setting{Key: key, Value: value, Type: "string"}
			if err := db.Create(&setting).Error; err != nil {
				return fmt.Errorf("failed to create setting %s: %w", key, err)
			}
			continue
		} else if err != nil {
			return err
		}
		setting.Value = value
		if err := db.Save(&setting).Error; err != nil {
			return fmt.Errorf("failed to save setting %s: %w", key, err)
		}
	}

	settingsMu.Lock()
	appSettings = settings
	settingsMu.Unlock()

	return nil
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// IsCheckoutEnabled reports whether the subscription checkout flow is
// globally enabled.
func (s *AppSettings) IsCheckoutEnabled() bool {
	if s == nil {
		return true
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.CheckoutEnabled
}

// IsSandboxMode reports whether providers should use sandbox redirect URLs.
func (s *AppSettings) IsSandboxMode() bool {
	if s == nil {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.PaymentsSandboxMode
}

func (s *AppSettings) Validate() error {
	v := validator.New()

	return v.Struct(s)
}
