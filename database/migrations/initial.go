package migrations

import (
	"gorm.io/gorm"

	"github.com/shashiranjanraj/vyapar/app/models"
	"github.com/shashiranjanraj/vyapar/pkg/migration"
)

func init() {
	migration.Register("20260115000000_create_users_table", &createUsersTable{})
	migration.Register("20260115000001_create_categories_table", &createCategoriesTable{})
	migration.Register("20260115000002_create_products_table", &createProductsTable{})
	migration.Register("20260115000003_create_orders_table", &createOrdersTable{})
	migration.Register("20260115000004_create_order_items_table", &createOrderItemsTable{})
}

type createUsersTable struct{}

func (m *createUsersTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.User{})
}

func (m *createUsersTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("users")
}

type createCategoriesTable struct{}

func (m *createCategoriesTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.Category{})
}

func (m *createCategoriesTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("categories")
}

type createProductsTable struct{}

func (m *createProductsTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.Product{})
}

func (m *createProductsTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("products")
}

type createOrdersTable struct{}

func (m *createOrdersTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.Order{})
}

func (m *createOrdersTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("orders")
}

type createOrderItemsTable struct{}

func (m *createOrderItemsTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.OrderItem{})
}

func (m *createOrderItemsTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("order_items")
}
