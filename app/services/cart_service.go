package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/vyapar/app/repositories"
	"github.com/shashiranjanraj/vyapar/pkg/apperr"
)

// cartTTL is how long an untouched cart survives. Every write refreshes it.
const cartTTL = 7 * 24 * time.Hour

// CartLine is one rendered cart row, joined against the live product.
type CartLine struct {
	ProductID uint            `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// Cart is the rendered cart returned to clients.
type Cart struct {
	Items []CartLine      `json:"items"`
	Total decimal.Decimal `json:"total"`
}

// CartService keeps per-user carts in a Redis hash keyed cart:user:<id>,
// field = product id, value = quantity.
type CartService struct {
	rdb      *redis.Client
	products *repositories.ProductRepository
}

func NewCartService(rdb *redis.Client, products *repositories.ProductRepository) *CartService {
	return &CartService{rdb: rdb, products: products}
}

func cartKey(userID uint) string {
	return fmt.Sprintf("cart:user:%d", userID)
}

// Get renders the user's cart. Lines referencing products that no longer
// exist are dropped from the view but left in storage; the TTL reaps them.
func (s *CartService) Get(ctx context.Context, userID uint) (*Cart, error) {
	raw, err := s.rdb.HGetAll(ctx, cartKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("cart: read: %w", err)
	}

	cart := &Cart{Items: []CartLine{}, Total: decimal.Zero}
	for field, value := range raw {
		productID, err := strconv.ParseUint(field, 10, 64)
		if err != nil {
			continue
		}
		quantity, err := strconv.Atoi(value)
		if err != nil || quantity <= 0 {
			continue
		}

		product, err := s.products.FindByID(ctx, uint(productID))
		if err != nil {
			if repositories.IsNotFound(err) {
				continue // product deleted since it was added
			}
			return nil, err
		}

		subtotal := product.Price.Mul(decimal.NewFromInt(int64(quantity)))
		cart.Items = append(cart.Items, CartLine{
			ProductID: product.ID,
			Name:      product.Name,
			UnitPrice: product.Price,
			Quantity:  quantity,
			Subtotal:  subtotal,
		})
		cart.Total = cart.Total.Add(subtotal)
	}

	return cart, nil
}

// Add increments the quantity of a product in the cart. The increment is
// HINCRBY so concurrent adds from two devices never lose updates; if the
// combined quantity ends up above stock the increment is compensated and
// the request rejected.
func (s *CartService) Add(ctx context.Context, userID, productID uint, quantity int) (*Cart, error) {
	if quantity <= 0 {
		return nil, apperr.BadRequest("Quantity must be positive")
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, apperr.NotFound("Product", productID)
		}
		return nil, err
	}
	if product.Stock < quantity {
		return nil, apperr.BadRequest("Insufficient stock for product %s", product.Name)
	}

	key := cartKey(userID)
	field := strconv.FormatUint(uint64(productID), 10)

	newQty, err := s.rdb.HIncrBy(ctx, key, field, int64(quantity)).Result()
	if err != nil {
		return nil, fmt.Errorf("cart: increment: %w", err)
	}
	if newQty > int64(product.Stock) {
		if _, derr := s.rdb.HIncrBy(ctx, key, field, -int64(quantity)).Result(); derr != nil {
			return nil, fmt.Errorf("cart: compensate increment: %w", derr)
		}
		return nil, apperr.BadRequest("Insufficient stock for product %s", product.Name)
	}

	if err := s.rdb.Expire(ctx, key, cartTTL).Err(); err != nil {
		return nil, fmt.Errorf("cart: refresh ttl: %w", err)
	}

	return s.Get(ctx, userID)
}

// Update sets a product's quantity to an absolute value.
func (s *CartService) Update(ctx context.Context, userID, productID uint, quantity int) (*Cart, error) {
	if quantity <= 0 {
		return nil, apperr.BadRequest("Quantity must be positive")
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, apperr.NotFound("Product", productID)
		}
		return nil, err
	}
	if product.Stock < quantity {
		return nil, apperr.BadRequest("Insufficient stock for product %s", product.Name)
	}

	key := cartKey(userID)
	field := strconv.FormatUint(uint64(productID), 10)

	exists, err := s.rdb.HExists(ctx, key, field).Result()
	if err != nil {
		return nil, fmt.Errorf("cart: check item: %w", err)
	}
	if !exists {
		return nil, apperr.NotFound("Cart item", productID)
	}

	if err := s.rdb.HSet(ctx, key, field, quantity).Err(); err != nil {
		return nil, fmt.Errorf("cart: set quantity: %w", err)
	}
	if err := s.rdb.Expire(ctx, key, cartTTL).Err(); err != nil {
		return nil, fmt.Errorf("cart: refresh ttl: %w", err)
	}

	return s.Get(ctx, userID)
}

// Remove deletes one product line from the cart.
func (s *CartService) Remove(ctx context.Context, userID, productID uint) (*Cart, error) {
	field := strconv.FormatUint(uint64(productID), 10)
	removed, err := s.rdb.HDel(ctx, cartKey(userID), field).Result()
	if err != nil {
		return nil, fmt.Errorf("cart: remove item: %w", err)
	}
	if removed == 0 {
		return nil, apperr.NotFound("Cart item", productID)
	}
	return s.Get(ctx, userID)
}

// Clear drops the whole cart.
func (s *CartService) Clear(ctx context.Context, userID uint) error {
	if err := s.rdb.Del(ctx, cartKey(userID)).Err(); err != nil {
		return fmt.Errorf("cart: clear: %w", err)
	}
	return nil
}

// Snapshot returns the raw cart contents as product id → quantity. Used by
// order placement, which needs the stored quantities rather than the
// rendered view.
func (s *CartService) Snapshot(ctx context.Context, userID uint) (map[uint]int, error) {
	raw, err := s.rdb.HGetAll(ctx, cartKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("cart: snapshot: %w", err)
	}

	snapshot := make(map[uint]int, len(raw))
	for field, value := range raw {
		productID, err := strconv.ParseUint(field, 10, 64)
		if err != nil {
			continue
		}
		quantity, err := strconv.Atoi(value)
		if err != nil || quantity <= 0 {
			continue
		}
		snapshot[uint(productID)] = quantity
	}
	return snapshot, nil
}
