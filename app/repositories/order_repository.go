package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/vyapar/app/models"
	"github.com/shashiranjanraj/vyapar/pkg/apperr"
)

// OrderRepository handles database operations for orders.
type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// CreateFromCart converts a cart snapshot (product id → quantity) into a
// pending order inside a single transaction: every product is resolved and
// its stock checked before anything is written, then the order, its items
// and every stock decrement commit together. A failed check aborts before
// any mutation; a crash mid-way rolls everything back, so stock counters
// and order rows can never diverge.
func (r *OrderRepository) CreateFromCart(ctx context.Context, userID uint, cart map[uint]int) (*models.Order, error) {
	var created *models.Order

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		total := decimal.Zero
		items := make([]models.OrderItem, 0, len(cart))
		products := make([]*models.Product, 0, len(cart))

		for productID, quantity := range cart {
			var product models.Product
			if err := tx.First(&product, productID).Error; err != nil {
				if IsNotFound(err) {
					return apperr.BadRequest("Product %d not found", productID)
				}
				return err
			}

			if product.Stock < quantity {
				return apperr.BadRequest("Insufficient stock for product %s", product.Name)
			}

			items = append(items, models.OrderItem{
				ProductID: product.ID,
				Quantity:  quantity,
				UnitPrice: product.Price,
			})
			products = append(products, &product)
			total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(quantity))))
		}

		order := &models.Order{
			UserID:      userID,
			OrderNumber: uuid.NewString(),
			TotalAmount: total,
			Status:      models.OrderStatusPending,
			Items:       items,
		}
		if err := tx.Create(order).Error; err != nil {
			return err
		}

		for i, product := range products {
			quantity := items[i].Quantity
			result := tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", product.ID, quantity).
				UpdateColumn("stock", gorm.Expr("stock - ?", quantity))
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				// Lost a race with a concurrent order since the check above.
				return apperr.BadRequest("Insufficient stock for product %s", product.Name)
			}
		}

		created = order
		return nil
	})

	if err != nil {
		return nil, err
	}
	return created, nil
}

// ListByUser returns the user's orders, newest first.
func (r *OrderRepository) ListByUser(ctx context.Context, userID uint, skip, limit int) ([]models.Order, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	var orders []models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(skip).
		Limit(limit).
		Find(&orders).Error
	return orders, err
}

// FindForUser returns an order only when it exists AND belongs to the user.
// The two cases are indistinguishable to the caller so order ids cannot be
// probed for existence.
func (r *OrderRepository) FindForUser(ctx context.Context, userID, orderID uint) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ? AND user_id = ?", orderID, userID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// FindByID returns an order regardless of owner. Used by the webhook path,
// which authenticates by signature rather than bearer token.
func (r *OrderRepository) FindByID(ctx context.Context, orderID uint) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).Preload("Items").First(&order, orderID).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// Save persists changes to an existing order.
func (r *OrderRepository) Save(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Save(order).Error
}

// MarkPaid transitions a pending order to paid. Returns false when the
// order was not pending, so replayed or out-of-order webhooks no-op.
func (r *OrderRepository) MarkPaid(ctx context.Context, orderID uint) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ?", orderID, models.OrderStatusPending).
		Update("status", models.OrderStatusPaid)
	return result.RowsAffected > 0, result.Error
}
