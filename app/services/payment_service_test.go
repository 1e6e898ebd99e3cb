package services

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/vyapar/app/models"
	"github.com/shashiranjanraj/vyapar/app/repositories"
	"github.com/shashiranjanraj/vyapar/config"
	"github.com/shashiranjanraj/vyapar/pkg/apperr"
	"github.com/shashiranjanraj/vyapar/pkg/mail"
	"github.com/shashiranjanraj/vyapar/pkg/stripe"
)

func newPaymentFixture(t *testing.T, stripeBase string) (*PaymentService, *stripe.Client, *gorm.DB) {
	t.Helper()

	db := newTestDB(t)
	sc := stripe.NewClient("sk_test_dummy", "whsec_test", stripeBase)
	cfg, err := config.FromMap(map[string]string{})
	require.NoError(t, err)

	// nil pool: confirmation email runs inline, keeping tests deterministic.
	svc := NewPaymentService(sc,
		repositories.NewOrderRepository(db),
		repositories.NewUserRepository(db),
		mail.New(cfg), nil)
	return svc, sc, db
}

func placeTestOrder(t *testing.T, db *gorm.DB, userID uint) *models.Order {
	t.Helper()

	rdb, _ := newTestRedis(t)
	cart := NewCartService(rdb, repositories.NewProductRepository(db))
	orders := NewOrderService(repositories.NewOrderRepository(db), cart)

	product := createTestProduct(t, db, fmt.Sprintf("SKU-%d", time.Now().UnixNano()), "Widget", "25.00", 10)
	_, err := cart.Add(context.Background(), userID, product.ID, 1)
	require.NoError(t, err)

	order, err := orders.Place(context.Background(), userID)
	require.NoError(t, err)
	return order
}

func TestCreateIntentStoresIntentID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "2500", r.PostForm.Get("amount"))
		assert.NotEmpty(t, r.PostForm.Get("metadata[order_id]"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"pi_test","client_secret":"pi_test_secret"}`))
	}))
	defer srv.Close()

	svc, _, db := newPaymentFixture(t, srv.URL)
	user := createTestUser(t, db, "payer@example.com")
	order := placeTestOrder(t, db, user.ID)

	result, err := svc.CreateIntent(context.Background(), user.ID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "pi_test", result.PaymentIntentID)
	assert.Equal(t, "pi_test_secret", result.ClientSecret)

	var stored models.Order
	require.NoError(t, db.First(&stored, order.ID).Error)
	assert.Equal(t, "pi_test", stored.PaymentIntentID)
}

func TestCreateIntentForeignOrder(t *testing.T) {
	svc, _, db := newPaymentFixture(t, "http://unused")
	owner := createTestUser(t, db, "owner@example.com")
	other := createTestUser(t, db, "other@example.com")
	order := placeTestOrder(t, db, owner.ID)

	_, err := svc.CreateIntent(context.Background(), other.ID, order.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestCreateIntentNonPendingOrder(t *testing.T) {
	svc, _, db := newPaymentFixture(t, "http://unused")
	user := createTestUser(t, db, "payer@example.com")
	order := placeTestOrder(t, db, user.ID)

	require.NoError(t, db.Model(&models.Order{}).
		Where("id = ?", order.ID).
		Update("status", models.OrderStatusPaid).Error)

	_, err := svc.CreateIntent(context.Background(), user.ID, order.ID)
	require.True(t, apperr.IsKind(err, apperr.KindBadRequest))
	assert.Equal(t, "Order is not in pending status", apperr.ClientMessage(err))
}

func succeededPayload(orderID uint) []byte {
	return []byte(fmt.Sprintf(
		`{"id":"evt_1","type":"payment_intent.succeeded","data":{"object":{"id":"pi_1","metadata":{"order_id":"%d"}}}}`,
		orderID))
}

func TestWebhookMarksOrderPaid(t *testing.T) {
	svc, sc, db := newPaymentFixture(t, "http://unused")
	user := createTestUser(t, db, "payer@example.com")
	order := placeTestOrder(t, db, user.ID)

	payload := succeededPayload(order.ID)
	err := svc.HandleWebhook(context.Background(), payload, sc.Sign(payload, time.Now()))
	require.NoError(t, err)

	var stored models.Order
	require.NoError(t, db.First(&stored, order.ID).Error)
	assert.Equal(t, models.OrderStatusPaid, stored.Status)
}

func TestWebhookReplayIsIdempotent(t *testing.T) {
	svc, sc, db := newPaymentFixture(t, "http://unused")
	user := createTestUser(t, db, "payer@example.com")
	order := placeTestOrder(t, db, user.ID)

	payload := succeededPayload(order.ID)
	require.NoError(t, svc.HandleWebhook(context.Background(), payload, sc.Sign(payload, time.Now())))
	require.NoError(t, svc.HandleWebhook(context.Background(), payload, sc.Sign(payload, time.Now())))

	var stored models.Order
	require.NoError(t, db.First(&stored, order.ID).Error)
	assert.Equal(t, models.OrderStatusPaid, stored.Status)
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	svc, _, db := newPaymentFixture(t, "http://unused")
	user := createTestUser(t, db, "payer@example.com")
	order := placeTestOrder(t, db, user.ID)

	payload := succeededPayload(order.ID)
	foreign := stripe.NewClient("", "whsec_other", "http://unused")

	err := svc.HandleWebhook(context.Background(), payload, foreign.Sign(payload, time.Now()))
	require.True(t, apperr.IsKind(err, apperr.KindBadRequest))

	var stored models.Order
	require.NoError(t, db.First(&stored, order.ID).Error)
	assert.Equal(t, models.OrderStatusPending, stored.Status, "rejected webhook must not change state")
}

func TestWebhookUnknownOrderAcknowledged(t *testing.T) {
	svc, sc, _ := newPaymentFixture(t, "http://unused")

	payload := succeededPayload(9999)
	err := svc.HandleWebhook(context.Background(), payload, sc.Sign(payload, time.Now()))
	assert.NoError(t, err, "unknown orders are acknowledged, not retried")
}

func TestWebhookIgnoresOtherEventTypes(t *testing.T) {
	svc, sc, db := newPaymentFixture(t, "http://unused")
	user := createTestUser(t, db, "payer@example.com")
	order := placeTestOrder(t, db, user.ID)

	payload := []byte(fmt.Sprintf(
		`{"id":"evt_2","type":"payment_intent.payment_failed","data":{"object":{"id":"pi_1","metadata":{"order_id":"%d"}}}}`,
		order.ID))
	require.NoError(t, svc.HandleWebhook(context.Background(), payload, sc.Sign(payload, time.Now())))

	var stored models.Order
	require.NoError(t, db.First(&stored, order.ID).Error)
	assert.Equal(t, models.OrderStatusPending, stored.Status)
}
