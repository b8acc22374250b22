package repository

import (
	"github.com/CamiloVelandia/MesaFacil/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// subscriptionRepository implements the SubscriptionRepository interface
type subscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository creates a new subscription repository instance
func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

// Create creates a new subscription in the database
func (r *subscriptionRepository) Create(sub *models.Subscription) error {
	return r.db.Create(sub).Error
}

// GetByID retrieves a subscription by its ID
func (r *subscriptionRepository) GetByID(id uint) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.First(&sub, id).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// GetByProviderRef retrieves a subscription by its provider reference pair
func (r *subscriptionRepository) GetByProviderRef(provider, providerSubscriptionID string) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.Where("provider = ? AND provider_subscription_id = ?", provider, providerSubscriptionID).First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// GetByPaymentReference retrieves the newest subscription carrying the given
// manual payment reference
func (r *subscriptionRepository) GetByPaymentReference(reference string) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.Where("payment_reference = ?", reference).Order("id DESC").First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// GetCurrentForCompany retrieves the newest entitling or pending
// subscription of a company
func (r *subscriptionRepository) GetCurrentForCompany(companyID uint) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.Where("company_id = ? AND status IN ?", companyID, []string{
		models.SubscriptionStatusActive,
		models.SubscriptionStatusPastDue,
		models.SubscriptionStatusPending,
	}).Order("id DESC").First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// Upsert inserts the subscription or updates the existing row with the same
// provider reference. Keeps webhook processing idempotent under retries.
func (r *subscriptionRepository) Upsert(sub *models.Subscription) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "provider"}, {Name: "provider_subscription_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"plan_id", "status", "payment_reference",
			"current_period_start", "current_period_end",
			"cancel_at_period_end", "raw_payload_json", "updated_at",
		}),
	}).Create(sub).Error
}

// Update updates an existing subscription in the database
func (r *subscriptionRepository) Update(sub *models.Subscription) error {
	return r.db.Save(sub).Error
}

// ListByCompany retrieves all subscriptions of a company, newest first
func (r *subscriptionRepository) ListByCompany(companyID uint) ([]models.Subscription, error) {
	var subs []models.Subscription
	err := r.db.Where("company_id = ?", companyID).Order("id DESC").Find(&subs).Error
	return subs, err
}

// CountByStatus returns the number of subscriptions in the given status
func (r *subscriptionRepository) CountByStatus(status string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Subscription{}).Where("status = ?", status).Count(&count).Error
	return count, err
}
