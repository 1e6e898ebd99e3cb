// Package stripe is a thin client for the payment processor: creating
// payment intents and verifying webhook signatures.
package stripe

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/vyapar/pkg/httpclient"
)

// webhookTolerance bounds how old a signed webhook timestamp may be.
const webhookTolerance = 5 * time.Minute

// ErrInvalidSignature is returned for any webhook verification failure.
var ErrInvalidSignature = errors.New("stripe: invalid webhook signature")

// PaymentIntent is the processor's representation of an in-progress charge.
type PaymentIntent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Status       string `json:"status"`
}

// Event is a webhook notification.
type Event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID       string            `json:"id"`
			Metadata map[string]string `json:"metadata"`
		} `json:"object"`
	} `json:"data"`
}

// Client calls the payment processor's REST API.
type Client struct {
	apiKey        string
	webhookSecret string
	baseURL       string
	now           func() time.Time
}

// NewClient builds a Client. baseURL is normally the production API host;
// tests point it at a local stub.
func NewClient(apiKey, webhookSecret, baseURL string) *Client {
	return &Client{
		apiKey:        apiKey,
		webhookSecret: webhookSecret,
		baseURL:       strings.TrimRight(baseURL, "/"),
		now:           time.Now,
	}
}

// CreateIntent creates a payment intent for the given amount. The amount is
// converted to the processor's smallest-unit integer (cents). metadata is
// echoed back by the processor in webhook events.
func (c *Client) CreateIntent(ctx context.Context, amount decimal.Decimal, currency string, metadata map[string]string) (*PaymentIntent, error) {
	form := url.Values{}
	form.Set("amount", amount.Mul(decimal.NewFromInt(100)).Round(0).String())
	form.Set("currency", currency)
	for k, v := range metadata {
		form.Set(fmt.Sprintf("metadata[%s]", k), v)
	}

	resp, err := httpclient.Post(c.baseURL+"/v1/payment_intents").
		WithContext(ctx).
		Bearer(c.apiKey).
		Form(form).
		Timeout(15 * time.Second).
		Send()
	if err != nil {
		return nil, fmt.Errorf("stripe: create intent: %w", err)
	}
	if err := resp.Throw(); err != nil {
		return nil, fmt.Errorf("stripe: create intent: %w", err)
	}

	var intent PaymentIntent
	if err := resp.JSON(&intent); err != nil {
		return nil, fmt.Errorf("stripe: create intent: %w", err)
	}
	return &intent, nil
}

// VerifyWebhook checks the Stripe-Signature header against the raw payload
// and returns the decoded event. The header carries a timestamp and one or
// more v1 HMAC-SHA256 signatures over "<timestamp>.<payload>"; any of them
// may match. Stale timestamps (outside the tolerance window) are rejected
// to blunt replay.
func (c *Client) VerifyWebhook(payload []byte, header string) (*Event, error) {
	timestamp, signatures, err := parseSignatureHeader(header)
	if err != nil {
		return nil, err
	}

	age := c.now().Sub(time.Unix(timestamp, 0))
	if age > webhookTolerance || age < -webhookTolerance {
		return nil, ErrInvalidSignature
	}

	mac := hmac.New(sha256.New, []byte(c.webhookSecret))
	mac.Write([]byte(strconv.FormatInt(timestamp, 10)))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := mac.Sum(nil)

	verified := false
	for _, sig := range signatures {
		candidate, err := hex.DecodeString(sig)
		if err != nil {
			continue
		}
		if hmac.Equal(candidate, expected) {
			verified = true
			break
		}
	}
	if !verified {
		return nil, ErrInvalidSignature
	}

	var event Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("stripe: decode event: %w", err)
	}
	return &event, nil
}

// Sign produces a valid Stripe-Signature header for payload at t.
// Exported for tests and local webhook simulation.
func (c *Client) Sign(payload []byte, t time.Time) string {
	ts := strconv.FormatInt(t.Unix(), 10)
	mac := hmac.New(sha256.New, []byte(c.webhookSecret))
	mac.Write([]byte(ts))
	mac.Write([]byte("."))
	mac.Write(payload)
	return fmt.Sprintf("t=%s,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func parseSignatureHeader(header string) (int64, []string, error) {
	var timestamp int64 = -1
	var signatures []string

	for _, part := range strings.Split(header, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch key {
		case "t":
			ts, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return 0, nil, ErrInvalidSignature
			}
			timestamp = ts
		case "v1":
			signatures = append(signatures, value)
		}
	}

	if timestamp < 0 || len(signatures) == 0 {
		return 0, nil, ErrInvalidSignature
	}
	return timestamp, signatures, nil
}
