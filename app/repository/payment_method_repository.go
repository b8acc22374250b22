package repository

import (
	"github.com/CamiloVelandia/MesaFacil/app/models"
	"gorm.io/gorm"
)

// paymentMethodRepository implements the PaymentMethodRepository interface
type paymentMethodRepository struct {
	db *gorm.DB
}

// NewPaymentMethodRepository creates a new payment method repository instance
func NewPaymentMethodRepository(db *gorm.DB) PaymentMethodRepository {
	return &paymentMethodRepository{db: db}
}

// Create creates a new payment method configuration
func (r *paymentMethodRepository) Create(method *models.PaymentMethodConfig) error {
	return r.db.Create(method).Error
}

// GetByID retrieves a payment method configuration by its ID
func (r *paymentMethodRepository) GetByID(id uint) (*models.PaymentMethodConfig, error) {
	var method models.PaymentMethodConfig
	err := r.db.First(&method, id).Error
	if err != nil {
		return nil, err
	}
	return &method, nil
}

// GetAll retrieves all payment method configurations in creation order
func (r *paymentMethodRepository) GetAll() ([]models.PaymentMethodConfig, error) {
	var methods []models.PaymentMethodConfig
	err := r.db.Order("created_at ASC, id ASC").Find(&methods).Error
	return methods, err
}

// GetActive retrieves active payment method configurations in creation order
func (r *paymentMethodRepository) GetActive() ([]models.PaymentMethodConfig, error) {
	var methods []models.PaymentMethodConfig
	err := r.db.Where("is_active = ?", true).Order("created_at ASC, id ASC").Find(&methods).Error
	return methods, err
}

// Update updates an existing payment method configuration
func (r *paymentMethodRepository) Update(method *models.PaymentMethodConfig) error {
	return r.db.Save(method).Error
}

// Delete deletes a payment method configuration by its ID
func (r *paymentMethodRepository) Delete(id uint) error {
	return r.db.Delete(&models.PaymentMethodConfig{}, id).Error
}

// CreateQRAsset creates a new QR payment asset
func (r *paymentMethodRepository) CreateQRAsset(asset *models.QRAsset) error {
	return r.db.Create(asset).Error
}

// GetQRAssetByID retrieves a QR asset by its ID
func (r *paymentMethodRepository) GetQRAssetByID(id uint) (*models.QRAsset, error) {
	var asset models.QRAsset
	err := r.db.First(&asset, id).Error
	if err != nil {
		return nil, err
	}
	return &asset, nil
}

// GetQRAssetsByPlan retrieves all QR assets provisioned for a plan
func (r *paymentMethodRepository) GetQRAssetsByPlan(planID uint) ([]models.QRAsset, error) {
	var assets []models.QRAsset
	err := r.db.Where("plan_id = ?", planID).Order("id ASC").Find(&assets).Error
	return assets, err
}

// GetAllQRAssets retrieves all QR assets
func (r *paymentMethodRepository) GetAllQRAssets() ([]models.QRAsset, error) {
	var assets []models.QRAsset
	err := r.db.Order("plan_id ASC, id ASC").Find(&assets).Error
	return assets, err
}

// UpdateQRAsset updates an existing QR asset
func (r *paymentMethodRepository) UpdateQRAsset(asset *models.QRAsset) error {
	return r.db.Save(asset).Error
}

// DeleteQRAsset deletes a QR asset by its ID
func (r *paymentMethodRepository) DeleteQRAsset(id uint) error {
	return r.db.Delete(&models.QRAsset{}, id).Error
}
