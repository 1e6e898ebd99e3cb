package seeders

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/vyapar/app/models"
	"github.com/shashiranjanraj/vyapar/pkg/auth"
)

func init() {
	Register("admin_user", seedAdminUser)
	Register("catalog", seedCatalog)
}

// seedAdminUser creates the default admin account for local development.
// The password is only suitable for a dev database.
func seedAdminUser(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", "admin@vyapar.local").Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := auth.HashPassword("admin12345")
	if err != nil {
		return err
	}
	return db.Create(&models.User{
		Email:        "admin@vyapar.local",
		PasswordHash: hash,
		FullName:     "Administrator",
		IsActive:     true,
		IsAdmin:      true,
	}).Error
}

// seedCatalog inserts a small sample catalogue.
func seedCatalog(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Category{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	electronics := models.Category{Name: "Electronics", Description: "Gadgets and devices"}
	books := models.Category{Name: "Books", Description: "Printed and digital books"}
	if err := db.Create(&electronics).Error; err != nil {
		return err
	}
	if err := db.Create(&books).Error; err != nil {
		return err
	}

	products := []models.Product{
		{
			SKU:         "ELEC-0001",
			Name:        "Wireless Headphones",
			Description: "Over-ear, 30h battery",
			Price:       decimal.RequireFromString("59.99"),
			Stock:       120,
			CategoryID:  &electronics.ID,
		},
		{
			SKU:         "ELEC-0002",
			Name:        "Mechanical Keyboard",
			Description: "Tenkeyless, brown switches",
			Price:       decimal.RequireFromString("89.00"),
			Stock:       45,
			CategoryID:  &electronics.ID,
		},
		{
			SKU:         "BOOK-0001",
			Name:        "The Go Programming Language",
			Description: "Donovan & Kernighan",
			Price:       decimal.RequireFromString("39.95"),
			Stock:       200,
			CategoryID:  &books.ID,
		},
	}
	return db.Create(&products).Error
}
