package checkout

import (
	"context"
	"errors"
	"time"

	"github.com/CamiloVelandia/MesaFacil/app/models"
	"gorm.io/gorm"
)

// Store provides the DB operations used by the orchestrator: reading the
// current payment configuration and recording checkout outcomes.
type Store interface {
	ListMethodConfigs(ctx context.Context) ([]models.PaymentMethodConfig, error)
	ListQRAssets(ctx context.Context, planID uint) ([]models.QRAsset, error)
	FindQRAsset(ctx context.Context, planID uint, provider string) (*models.QRAsset, error)
	RecordEvent(ctx context.Context, event *models.PaymentEvent) error
	CreatePendingSubscription(ctx context.Context, sub *models.Subscription) error
}

type gormStore struct {
	db *gorm.DB
}

// NewStore creates a checkout store backed by GORM.
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) ListMethodConfigs(ctx context.Context) ([]models.PaymentMethodConfig, error) {
	var methods []models.PaymentMethodConfig
	// Creation order keeps the eligible-set ordering stable.
	err := s.db.WithContext(ctx).Order("created_at ASC, id ASC").Find(&methods).Error
	return methods, err
}

func (s *gormStore) ListQRAssets(ctx context.Context, planID uint) ([]models.QRAsset, error) {
	var assets []models.QRAsset
	err := s.db.WithContext(ctx).Where("plan_id = ?", planID).Order("id ASC").Find(&assets).Error
	return assets, err
}

func (s *gormStore) FindQRAsset(ctx context.Context, planID uint, provider string) (*models.QRAsset, error) {
	var asset models.QRAsset
	err := s.db.WithContext(ctx).
		Where("plan_id = ? AND provider = ? AND is_active = ?", planID, provider, true).
		Where("expires_at IS NULL OR expires_at > ?", time.Now()).
		Order("id DESC").
		First(&asset).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &asset, nil
}

func (s *gormStore) RecordEvent(ctx context.Context, event *models.PaymentEvent) error {
	return s.db.WithContext(ctx).Create(event).Error
}

func (s *gormStore) CreatePendingSubscription(ctx context.Context, sub *models.Subscription) error {
	return s.db.WithContext(ctx).Create(sub).Error
}
