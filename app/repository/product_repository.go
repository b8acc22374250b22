package repository

import (
	"github.com/CamiloVelandia/MesaFacil/app/models"
	"gorm.io/gorm"
)

// productRepository implements the ProductRepository interface
type productRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new product repository instance
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

// Create creates a new product in the database
func (r *productRepository) Create(product *models.Product) error {
	return r.db.Create(product).Error
}

// GetByID retrieves a product by its ID
func (r *productRepository) GetByID(id uint) (*models.Product, error) {
	var product models.Product
	err := r.db.First(&product, id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// GetByCompany retrieves a paginated list of a company's products
func (r *productRepository) GetByCompany(companyID uint, offset, limit int) ([]models.Product, error) {
	var products []models.Product
	err := r.db.Where("company_id = ?", companyID).
		Order("sort_order ASC, name ASC").
		Offset(offset).Limit(limit).
		Find(&products).Error
	return products, err
}

// GetByCategory retrieves a company's products within a category
func (r *productRepository) GetByCategory(companyID, categoryID uint) ([]models.Product, error) {
	var products []models.Product
	err := r.db.Where("company_id = ? AND category_id = ?", companyID, categoryID).
		Order("sort_order ASC, name ASC").
		Find(&products).Error
	return products, err
}

// Update updates an existing product in the database
func (r *productRepository) Update(product *models.Product) error {
	return r.db.Save(product).Error
}

// Delete soft deletes a product by its ID
func (r *productRepository) Delete(id uint) error {
	return r.db.Delete(&models.Product{}, id).Error
}

// CountByCompany returns the number of products in a company's catalog
func (r *productRepository) CountByCompany(companyID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Product{}).Where("company_id = ?", companyID).Count(&count).Error
	return count, err
}
