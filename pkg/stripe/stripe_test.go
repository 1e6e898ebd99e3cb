package stripe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const webhookSecret = "whsec_test"

func testClient(base string) *Client {
	return NewClient("sk_test_dummy", webhookSecret, base)
}

func TestCreateIntentSendsFormBody(t *testing.T) {
	var got url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		got = r.PostForm
		assert.Equal(t, "Bearer sk_test_dummy", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"pi_123","client_secret":"pi_123_secret","status":"requires_payment_method"}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	intent, err := c.CreateIntent(context.Background(), decimal.RequireFromString("25.00"), "usd",
		map[string]string{"order_id": "7"})
	require.NoError(t, err)

	assert.Equal(t, "pi_123", intent.ID)
	assert.Equal(t, "pi_123_secret", intent.ClientSecret)
	assert.Equal(t, "2500", got.Get("amount"), "amount must be in cents")
	assert.Equal(t, "usd", got.Get("currency"))
	assert.Equal(t, "7", got.Get("metadata[order_id]"))
}

func TestCreateIntentSurfacesAPIErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"Invalid API Key"}}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).CreateIntent(context.Background(), decimal.NewFromInt(10), "usd", nil)
	assert.Error(t, err)
}

func TestVerifyWebhookAcceptsValidSignature(t *testing.T) {
	c := testClient("http://unused")
	payload := []byte(`{"id":"evt_1","type":"payment_intent.succeeded","data":{"object":{"id":"pi_1","metadata":{"order_id":"42"}}}}`)

	event, err := c.VerifyWebhook(payload, c.Sign(payload, time.Now()))
	require.NoError(t, err)

	assert.Equal(t, "payment_intent.succeeded", event.Type)
	assert.Equal(t, "42", event.Data.Object.Metadata["order_id"])
}

func TestVerifyWebhookRejectsWrongSecret(t *testing.T) {
	signer := NewClient("", "whsec_other", "http://unused")
	payload := []byte(`{"type":"payment_intent.succeeded"}`)

	_, err := testClient("http://unused").VerifyWebhook(payload, signer.Sign(payload, time.Now()))
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifyWebhookRejectsTamperedPayload(t *testing.T) {
	c := testClient("http://unused")
	payload := []byte(`{"type":"payment_intent.succeeded"}`)
	header := c.Sign(payload, time.Now())

	_, err := c.VerifyWebhook([]byte(`{"type":"payment_intent.failed"}`), header)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifyWebhookRejectsStaleTimestamp(t *testing.T) {
	c := testClient("http://unused")
	payload := []byte(`{"type":"payment_intent.succeeded"}`)

	_, err := c.VerifyWebhook(payload, c.Sign(payload, time.Now().Add(-time.Hour)))
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifyWebhookRejectsGarbageHeader(t *testing.T) {
	c := testClient("http://unused")

	for _, header := range []string{"", "t=abc,v1=00", "v1=00", "t=123"} {
		_, err := c.VerifyWebhook([]byte(`{}`), header)
		assert.ErrorIs(t, err, ErrInvalidSignature, "header %q", header)
	}
}
