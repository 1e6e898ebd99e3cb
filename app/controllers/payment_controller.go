package controllers

import (
	"io"
	"net/http"

	"github.com/shashiranjanraj/vyapar/app/middleware"
	"github.com/shashiranjanraj/vyapar/app/services"
	"github.com/shashiranjanraj/vyapar/pkg/bind"
	"github.com/shashiranjanraj/vyapar/pkg/response"
)

// maxWebhookBytes caps webhook payloads; real events are a few KB.
const maxWebhookBytes = 1 << 20 // 1 MB

type PaymentController struct {
	payments     *services.PaymentService
	maxBodyBytes int64
}

func NewPaymentController(payments *services.PaymentService, maxBodyBytes int64) *PaymentController {
	return &PaymentController{payments: payments, maxBodyBytes: maxBodyBytes}
}

// CreateIntent handles POST /payments/create-intent.
func (c *PaymentController) CreateIntent(w http.ResponseWriter, r *http.Request) {
	var body struct {
		OrderID uint `json:"order_id" validate:"required"`
	}
	if errs, err := bind.JSON(r, &body, c.maxBodyBytes); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	user := middleware.CurrentUser(r.Context())
	result, err := c.payments.CreateIntent(r.Context(), user.ID, body.OrderID)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Success(w, result)
}

// Webhook handles POST /payments/webhook. The raw body is read before any
// decoding because the signature covers the exact bytes on the wire.
func (c *PaymentController) Webhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBytes))
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Unreadable payload")
		return
	}

	if err := c.payments.HandleWebhook(r.Context(), payload, r.Header.Get("Stripe-Signature")); err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Success(w, map[string]string{"received": "true"})
}
