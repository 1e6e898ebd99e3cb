package services

import (
	"context"

	"github.com/shashiranjanraj/vyapar/app/models"
	"github.com/shashiranjanraj/vyapar/app/repositories"
	"github.com/shashiranjanraj/vyapar/pkg/apperr"
	"github.com/shashiranjanraj/vyapar/pkg/logger"
	"github.com/shashiranjanraj/vyapar/pkg/metrics"
)

// OrderService turns carts into orders and serves order history.
type OrderService struct {
	orders *repositories.OrderRepository
	cart   *CartService
}

func NewOrderService(orders *repositories.OrderRepository, cart *CartService) *OrderService {
	return &OrderService{orders: orders, cart: cart}
}

// Place converts the user's cart into a pending order. The cart snapshot is
// taken once up front; the repository then commits order, items and stock
// decrements in a single transaction. Only after the commit is the cart
// cleared, so a failed placement leaves the cart intact.
func (s *OrderService) Place(ctx context.Context, userID uint) (*models.Order, error) {
	snapshot, err := s.cart.Snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(snapshot) == 0 {
		return nil, apperr.BadRequest("Cart is empty")
	}

	order, err := s.orders.CreateFromCart(ctx, userID, snapshot)
	if err != nil {
		return nil, err
	}

	if err := s.cart.Clear(ctx, userID); err != nil {
		// The order is already committed; a surviving cart is an
		// annoyance, not a correctness problem.
		logger.WithCtx(ctx).Warn("order placed but cart not cleared",
			"user_id", userID, "order_id", order.ID, "error", err)
	}

	metrics.OrdersPlaced.Inc()
	logger.WithCtx(ctx).Info("order placed",
		"user_id", userID, "order_id", order.ID, "total", order.TotalAmount)
	return order, nil
}

// List returns the user's orders, newest first.
func (s *OrderService) List(ctx context.Context, userID uint, skip, limit int) ([]models.Order, error) {
	return s.orders.ListByUser(ctx, userID, skip, limit)
}

// Get returns one of the user's orders. An order that exists but belongs
// to someone else looks exactly like one that does not exist.
func (s *OrderService) Get(ctx context.Context, userID, orderID uint) (*models.Order, error) {
	order, err := s.orders.FindForUser(ctx, userID, orderID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, apperr.NotFound("Order", orderID)
		}
		return nil, err
	}
	return order, nil
}
