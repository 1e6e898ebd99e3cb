package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/vyapar/app/models"
)

// ProductFilter narrows a catalogue listing. Zero values mean "no filter".
type ProductFilter struct {
	Skip       int
	Limit      int
	CategoryID uint
	MinPrice   float64
	MaxPrice   float64
	Search     string
}

// ProductRepository handles database operations for products and categories.
type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// List returns products matching the filter.
func (r *ProductRepository) List(ctx context.Context, f ProductFilter) ([]models.Product, error) {
	q := r.db.WithContext(ctx).Model(&models.Product{})

	if f.CategoryID != 0 {
		q = q.Where("category_id = ?", f.CategoryID)
	}
	if f.MinPrice != 0 {
		q = q.Where("price >= ?", f.MinPrice)
	}
	if f.MaxPrice != 0 {
		q = q.Where("price <= ?", f.MaxPrice)
	}
	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		q = q.Where("name LIKE ? OR description LIKE ?", pattern, pattern)
	}

	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	var products []models.Product
	err := q.Offset(f.Skip).Limit(limit).Find(&products).Error
	return products, err
}

// FindByID looks up a product by primary key.
func (r *ProductRepository) FindByID(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).First(&product, id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// Create persists a new product.
func (r *ProductRepository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

// Save persists changes to an existing product.
func (r *ProductRepository) Save(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

// Delete removes a product.
func (r *ProductRepository) Delete(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Delete(product).Error
}

// ListCategories returns all categories.
func (r *ProductRepository) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := r.db.WithContext(ctx).Find(&categories).Error
	return categories, err
}

// CreateCategory persists a new category.
func (r *ProductRepository) CreateCategory(ctx context.Context, category *models.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

// CategoryExists reports whether a category with this id exists.
func (r *ProductRepository) CategoryExists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Category{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}
