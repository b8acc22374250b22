package repository

import (
	"time"

	"github.com/CamiloVelandia/MesaFacil/app/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByActivationToken(token string) (*models.User, error)
	Update(user *models.User) error
	Delete(id uint) error
	List(offset, limit int) ([]models.User, error)
	ListByCompany(companyID uint) ([]models.User, error)
	Count() (int64, error)
	Search(query string) ([]models.User, error)
	GetDailyStats(startDate, endDate time.Time) ([]models.DailyStats, error)
}

// CompanyRepository defines the interface for tenant company operations
type CompanyRepository interface {
	Create(company *models.Company) error
	GetByID(id uint) (*models.Company, error)
	GetBySlug(slug string) (*models.Company, error)
	GetByOwnerID(ownerID uint) (*models.Company, error)
	Update(company *models.Company) error
	Delete(id uint) error
	List(offset, limit int) ([]models.Company, error)
	Count() (int64, error)
	SlugExists(slug string) (bool, error)
}

// PlanRepository defines the interface for subscription plan operations
type PlanRepository interface {
	Create(plan *models.Plan) error
	GetByID(id uint) (*models.Plan, error)
	GetByName(name string) (*models.Plan, error)
	GetActive() ([]models.Plan, error)
	GetAll() ([]models.Plan, error)
	Update(plan *models.Plan) error
	Delete(id uint) error
}

// PaymentMethodRepository defines the interface for payment method
// configuration and QR asset operations
type PaymentMethodRepository interface {
	Create(method *models.PaymentMethodConfig) error
	GetByID(id uint) (*models.PaymentMethodConfig, error)
	GetAll() ([]models.PaymentMethodConfig, error)
	GetActive() ([]models.PaymentMethodConfig, error)
	Update(method *models.PaymentMethodConfig) error
	Delete(id uint) error

	CreateQRAsset(asset *models.QRAsset) error
	GetQRAssetByID(id uint) (*models.QRAsset, error)
	GetQRAssetsByPlan(planID uint) ([]models.QRAsset, error)
	GetAllQRAssets() ([]models.QRAsset, error)
	UpdateQRAsset(asset *models.QRAsset) error
	DeleteQRAsset(id uint) error
}

// SubscriptionRepository defines the interface for subscription operations
type SubscriptionRepository interface {
	Create(sub *models.Subscription) error
	GetByID(id uint) (*models.Subscription, error)
	GetByProviderRef(provider, providerSubscriptionID string) (*models.Subscription, error)
	GetByPaymentReference(reference string) (*models.Subscription, error)
	GetCurrentForCompany(companyID uint) (*models.Subscription, error)
	Upsert(sub *models.Subscription) error
	Update(sub *models.Subscription) error
	ListByCompany(companyID uint) ([]models.Subscription, error)
	CountByStatus(status string) (int64, error)
}

// PaymentEventRepository defines the interface for webhook event storage
type PaymentEventRepository interface {
	CreateIfNotExists(event *models.PaymentEvent) (created bool, err error)
	GetByProviderEventID(provider, providerEventID string) (*models.PaymentEvent, error)
	MarkProcessed(id uint, processingError string) error
	ListRecent(limit int) ([]models.PaymentEvent, error)
	CountSince(since time.Time) (int64, error)
}

// ProductRepository defines the interface for menu product operations
type ProductRepository interface {
	Create(product *models.Product) error
	GetByID(id uint) (*models.Product, error)
	GetByCompany(companyID uint, offset, limit int) ([]models.Product, error)
	GetByCategory(companyID, categoryID uint) ([]models.Product, error)
	Update(product *models.Product) error
	Delete(id uint) error
	CountByCompany(companyID uint) (int64, error)
}

// CategoryRepository defines the interface for menu category operations
type CategoryRepository interface {
	Create(category *models.Category) error
	GetByID(id uint) (*models.Category, error)
	GetByCompany(companyID uint) ([]models.Category, error)
	Update(category *models.Category) error
	Delete(id uint) error
}

// SettingRepository defines the interface for application settings
type SettingRepository interface {
	Get() (*models.AppSettings, error)
	Save(settings *models.AppSettings) error
	GetValue(key string) (string, error)
	SetValue(key, value string) error
}

// Repositories struct holds all repository instances
type Repositories struct {
	User          UserRepository
	Company       CompanyRepository
	Plan          PlanRepository
	PaymentMethod PaymentMethodRepository
	Subscription  SubscriptionRepository
	PaymentEvent  PaymentEventRepository
	Product       ProductRepository
	Category      CategoryRepository
	Setting       SettingRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:          NewUserRepository(db),
		Company:       NewCompanyRepository(db),
		Plan:          NewPlanRepository(db),
		PaymentMethod: NewPaymentMethodRepository(db),
		Subscription:  NewSubscriptionRepository(db),
		PaymentEvent:  NewPaymentEventRepository(db),
		Product:       NewProductRepository(db),
		Category:      NewCategoryRepository(db),
		Setting:       NewSettingRepository(db),
	}
}
