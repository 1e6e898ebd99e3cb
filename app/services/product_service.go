package services

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/vyapar/app/models"
	"github.com/shashiranjanraj/vyapar/app/repositories"
	"github.com/shashiranjanraj/vyapar/pkg/apperr"
	"github.com/shashiranjanraj/vyapar/pkg/storage"
)

// ProductInput carries the fields for creating a product.
type ProductInput struct {
	SKU         string          `json:"sku" validate:"required,max=100"`
	Name        string          `json:"name" validate:"required,max=255"`
	Description string          `json:"description" validate:"nullable"`
	Price       decimal.Decimal `json:"price" validate:"required"`
	Stock       int             `json:"stock" validate:"gte=0"`
	CategoryID  *uint           `json:"category_id" validate:"nullable"`
}

// ProductUpdate carries partial-update fields; nil means "leave unchanged".
type ProductUpdate struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock"`
	CategoryID  *uint            `json:"category_id"`
}

// ProductService implements the catalogue: public reads, admin writes.
type ProductService struct {
	products *repositories.ProductRepository
	disk     storage.Disk
}

func NewProductService(products *repositories.ProductRepository, disk storage.Disk) *ProductService {
	return &ProductService{products: products, disk: disk}
}

// List returns products matching the filter.
func (s *ProductService) List(ctx context.Context, f repositories.ProductFilter) ([]models.Product, error) {
	return s.products.List(ctx, f)
}

// Get returns one product by id.
func (s *ProductService) Get(ctx context.Context, id uint) (*models.Product, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, apperr.NotFound("Product", id)
		}
		return nil, err
	}
	return product, nil
}

// Create adds a product to the catalogue.
func (s *ProductService) Create(ctx context.Context, in ProductInput) (*models.Product, error) {
	if in.Price.IsNegative() {
		return nil, apperr.BadRequest("Price must not be negative")
	}
	if in.CategoryID != nil {
		ok, err := s.products.CategoryExists(ctx, *in.CategoryID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, apperr.BadRequest("Category %d not found", *in.CategoryID)
		}
	}

	product := &models.Product{
		SKU:         in.SKU,
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Stock:       in.Stock,
		CategoryID:  in.CategoryID,
	}
	if err := s.products.Create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// Update applies a partial update to a product.
func (s *ProductService) Update(ctx context.Context, id uint, in ProductUpdate) (*models.Product, error) {
	product, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		product.Name = *in.Name
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	if in.Price != nil {
		if in.Price.IsNegative() {
			return nil, apperr.BadRequest("Price must not be negative")
		}
		product.Price = *in.Price
	}
	if in.Stock != nil {
		if *in.Stock < 0 {
			return nil, apperr.BadRequest("Stock must not be negative")
		}
		product.Stock = *in.Stock
	}
	if in.CategoryID != nil {
		ok, err := s.products.CategoryExists(ctx, *in.CategoryID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, apperr.BadRequest("Category %d not found", *in.CategoryID)
		}
		product.CategoryID = in.CategoryID
	}

	if err := s.products.Save(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// Delete removes a product from the catalogue. Existing order items keep
// their snapshots; carts referencing it render without the line.
func (s *ProductService) Delete(ctx context.Context, id uint) error {
	product, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	return s.products.Delete(ctx, product)
}

// AttachImage stores an uploaded product image on the configured disk and
// records its public URL.
func (s *ProductService) AttachImage(ctx context.Context, id uint, filename string, content io.Reader) (*models.Product, error) {
	product, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	ext := path.Ext(filename)
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp", ".gif":
	default:
		return nil, apperr.BadRequest("Unsupported image type %s", ext)
	}

	key := fmt.Sprintf("products/%d/image%s", product.ID, ext)
	if err := s.disk.PutStream(key, content); err != nil {
		return nil, err
	}

	product.ImageURL = s.disk.URL(key)
	if err := s.products.Save(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// ListCategories returns every category.
func (s *ProductService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.products.ListCategories(ctx)
}

// CreateCategory adds a category.
func (s *ProductService) CreateCategory(ctx context.Context, name, description string) (*models.Category, error) {
	category := &models.Category{Name: name, Description: description}
	if err := s.products.CreateCategory(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}
