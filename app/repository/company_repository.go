package repository

import (
	"errors"

	"github.com/CamiloVelandia/MesaFacil/app/models"
	"gorm.io/gorm"
)

// companyRepository implements the CompanyRepository interface
type companyRepository struct {
	db *gorm.DB
}

// NewCompanyRepository creates a new company repository instance
func NewCompanyRepository(db *gorm.DB) CompanyRepository {
	return &companyRepository{db: db}
}

// Create creates a new company in the database
func (r *companyRepository) Create(company *models.Company) error {
	return r.db.Create(company).Error
}

// GetByID retrieves a company by its ID
func (r *companyRepository) GetByID(id uint) (*models.Company, error) {
	var company models.Company
	err := r.db.First(&company, id).Error
	if err != nil {
		return nil, err
	}
	return &company, nil
}

// GetBySlug retrieves a company by its slug
func (r *companyRepository) GetBySlug(slug string) (*models.Company, error) {
	var company models.Company
	err := r.db.Where("slug = ?", slug).First(&company).Error
	if err != nil {
		return nil, err
	}
	return &company, nil
}

// GetByOwnerID retrieves the company owned by the given user
func (r *companyRepository) GetByOwnerID(ownerID uint) (*models.Company, error) {
	var company models.Company
	err := r.db.Where("owner_id = ?", ownerID).First(&company).Error
	if err != nil {
		return nil, err
	}
	return &company, nil
}

// Update updates an existing company in the database
func (r *companyRepository) Update(company *models.Company) error {
	return r.db.Save(company).Error
}

// Delete soft deletes a company by its ID
func (r *companyRepository) Delete(id uint) error {
	return r.db.Delete(&models.Company{}, id).Error
}

// List retrieves a paginated list of companies
func (r *companyRepository) List(offset, limit int) ([]models.Company, error) {
	var companies []models.Company
	err := r.db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&companies).Error
	return companies, err
}

// Count returns the total number of companies
func (r *companyRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Company{}).Count(&count).Error
	return count, err
}

// SlugExists checks if a company slug is already taken
func (r *companyRepository) SlugExists(slug string) (bool, error) {
	var company models.Company
	err := r.db.Select("id").Where("slug = ?", slug).First(&company).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
