package repository

import (
	"time"

	"github.com/CamiloVelandia/MesaFacil/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// paymentEventRepository implements the PaymentEventRepository interface
type paymentEventRepository struct {
	db *gorm.DB
}

// NewPaymentEventRepository creates a new payment event repository instance
func NewPaymentEventRepository(db *gorm.DB) PaymentEventRepository {
	return &paymentEventRepository{db: db}
}

// CreateIfNotExists inserts the event unless one with the same provider
// event ID already exists. Returns false when the event was a duplicate, so
// webhook handlers can skip reprocessing.
func (r *paymentEventRepository) CreateIfNotExists(event *models.PaymentEvent) (bool, error) {
	result := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "provider"}, {Name: "provider_event_id"}},
		DoNothing: true,
	}).Create(event)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// GetByProviderEventID retrieves an event by its provider event ID
func (r *paymentEventRepository) GetByProviderEventID(provider, providerEventID string) (*models.PaymentEvent, error) {
	var event models.PaymentEvent
	err := r.db.Where("provider = ? AND provider_event_id = ?", provider, providerEventID).First(&event).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// MarkProcessed stamps the event as processed, recording the processing
// error if one occurred
func (r *paymentEventRepository) MarkProcessed(id uint, processingError string) error {
	now := time.Now()
	return r.db.Model(&models.PaymentEvent{}).Where("id = ?", id).Updates(map[string]interface{}{
		"processed_at":     &now,
		"processing_error": processingError,
	}).Error
}

// ListRecent retrieves the newest events for the admin audit view
func (r *paymentEventRepository) ListRecent(limit int) ([]models.PaymentEvent, error) {
	var events []models.PaymentEvent
	err := r.db.Order("created_at DESC").Limit(limit).Find(&events).Error
	return events, err
}

// CountSince returns the number of events recorded since the given time
func (r *paymentEventRepository) CountSince(since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.PaymentEvent{}).Where("created_at >= ?", since).Count(&count).Error
	return count, err
}
