package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/shashiranjanraj/vyapar/app/models"
	"github.com/shashiranjanraj/vyapar/app/repositories"
	"github.com/shashiranjanraj/vyapar/pkg/apperr"
	"github.com/shashiranjanraj/vyapar/pkg/logger"
	"github.com/shashiranjanraj/vyapar/pkg/mail"
	"github.com/shashiranjanraj/vyapar/pkg/metrics"
	"github.com/shashiranjanraj/vyapar/pkg/stripe"
	"github.com/shashiranjanraj/vyapar/pkg/workerpool"
)

// IntentResult is returned to the client after creating a payment intent.
type IntentResult struct {
	ClientSecret    string `json:"client_secret"`
	PaymentIntentID string `json:"payment_intent_id"`
}

// PaymentService bridges orders to the payment processor: it creates
// payment intents for pending orders and consumes signed webhook events.
type PaymentService struct {
	stripe *stripe.Client
	orders *repositories.OrderRepository
	users  *repositories.UserRepository
	mailer *mail.Mailer
	pool   *workerpool.Pool
}

// NewPaymentService wires the bridge. pool runs confirmation email off the
// webhook request path; pass nil to send inline.
func NewPaymentService(sc *stripe.Client, orders *repositories.OrderRepository, users *repositories.UserRepository, mailer *mail.Mailer, pool *workerpool.Pool) *PaymentService {
	return &PaymentService{stripe: sc, orders: orders, users: users, mailer: mailer, pool: pool}
}

// CreateIntent creates a payment intent for one of the user's pending
// orders and stores the intent id on the order. The order id travels in
// the intent metadata and comes back on the webhook.
func (s *PaymentService) CreateIntent(ctx context.Context, userID, orderID uint) (*IntentResult, error) {
	order, err := s.orders.FindForUser(ctx, userID, orderID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, apperr.NotFound("Order", orderID)
		}
		return nil, err
	}
	if order.Status != models.OrderStatusPending {
		return nil, apperr.BadRequest("Order is not in pending status")
	}

	intent, err := s.stripe.CreateIntent(ctx, order.TotalAmount, "usd", map[string]string{
		"order_id": strconv.FormatUint(uint64(order.ID), 10),
		"user_id":  strconv.FormatUint(uint64(userID), 10),
	})
	if err != nil {
		return nil, fmt.Errorf("payment: create intent for order %d: %w", order.ID, err)
	}

	order.PaymentIntentID = intent.ID
	if err := s.orders.Save(ctx, order); err != nil {
		return nil, err
	}

	logger.WithCtx(ctx).Info("payment intent created",
		"order_id", order.ID, "intent_id", intent.ID)
	return &IntentResult{ClientSecret: intent.ClientSecret, PaymentIntentID: intent.ID}, nil
}

// HandleWebhook verifies and applies one webhook delivery. Signature
// failures reject the request; everything else acknowledges with 200 so
// the processor stops retrying. payment_intent.succeeded flips the order
// pending → paid; a replayed or out-of-order event finds the order already
// paid and no-ops.
func (s *PaymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := s.stripe.VerifyWebhook(payload, signature)
	if err != nil {
		metrics.WebhookEvents.WithLabelValues("rejected").Inc()
		if errors.Is(err, stripe.ErrInvalidSignature) {
			return apperr.BadRequest("Invalid webhook signature")
		}
		return apperr.BadRequest("Invalid webhook payload")
	}

	log := logger.WithCtx(ctx)

	if event.Type != "payment_intent.succeeded" {
		metrics.WebhookEvents.WithLabelValues("ignored").Inc()
		log.Debug("webhook event ignored", "type", event.Type)
		return nil
	}

	orderID, err := strconv.ParseUint(event.Data.Object.Metadata["order_id"], 10, 64)
	if err != nil {
		metrics.WebhookEvents.WithLabelValues("ignored").Inc()
		log.Warn("webhook with missing or malformed order_id metadata",
			"intent_id", event.Data.Object.ID)
		return nil
	}

	transitioned, err := s.orders.MarkPaid(ctx, uint(orderID))
	if err != nil {
		return err
	}
	if !transitioned {
		metrics.WebhookEvents.WithLabelValues("ignored").Inc()
		log.Info("webhook for unknown or already-settled order", "order_id", orderID)
		return nil
	}

	metrics.WebhookEvents.WithLabelValues("paid").Inc()
	log.Info("order paid", "order_id", orderID, "intent_id", event.Data.Object.ID)

	s.dispatchConfirmation(ctx, uint(orderID))
	return nil
}

// dispatchConfirmation hands the email off to the worker pool so slow SMTP
// never delays the webhook acknowledgement. A full or missing pool degrades
// to sending inline.
func (s *PaymentService) dispatchConfirmation(ctx context.Context, orderID uint) {
	if s.pool == nil {
		s.sendConfirmation(ctx, orderID)
		return
	}
	// Detached from the request: the webhook response must not wait on it.
	if err := s.pool.Submit(func() { s.sendConfirmation(context.Background(), orderID) }); err != nil {
		logger.WithCtx(ctx).Warn("confirmation email queued inline", "order_id", orderID, "error", err)
		s.sendConfirmation(ctx, orderID)
	}
}

// sendConfirmation emails the buyer. Failures are logged, never surfaced:
// the payment already settled and the webhook must still be acknowledged.
func (s *PaymentService) sendConfirmation(ctx context.Context, orderID uint) {
	log := logger.WithCtx(ctx)

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		log.Warn("confirmation email skipped: order lookup failed", "order_id", orderID, "error", err)
		return
	}
	user, err := s.users.FindByID(ctx, order.UserID)
	if err != nil {
		log.Warn("confirmation email skipped: user lookup failed", "order_id", orderID, "error", err)
		return
	}

	subject := fmt.Sprintf("Order %s confirmed", order.OrderNumber)
	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>Your payment of %s for order <b>%s</b> has been received.</p>",
		user.FullName, order.TotalAmount.StringFixed(2), order.OrderNumber,
	)
	if err := s.mailer.Send(user.Email, subject, body); err != nil {
		log.Warn("confirmation email failed", "order_id", orderID, "error", err)
	}
}
