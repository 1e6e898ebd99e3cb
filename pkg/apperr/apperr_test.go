package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/vyapar/pkg/apperr"
)

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{apperr.BadRequest("Cart is empty"), http.StatusBadRequest},
		{apperr.Unauthorized(""), http.StatusUnauthorized},
		{apperr.Forbidden("Admin privileges required"), http.StatusForbidden},
		{apperr.NotFound("Order", 7), http.StatusNotFound},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.status, apperr.Status(tc.err), "error: %v", tc.err)
	}
}

func TestStatusSeesWrappedErrors(t *testing.T) {
	err := fmt.Errorf("placing order: %w", apperr.BadRequest("Insufficient stock for product Chai"))
	assert.Equal(t, http.StatusBadRequest, apperr.Status(err))
	assert.Equal(t, "Insufficient stock for product Chai", apperr.ClientMessage(err))
}

func TestClientMessageHidesInternals(t *testing.T) {
	assert.Equal(t, "Internal Server Error", apperr.ClientMessage(errors.New("pq: connection refused")))
}

func TestNotFoundMessage(t *testing.T) {
	assert.Equal(t, "Product not found with id: 42", apperr.NotFound("Product", 42).Message)
	assert.Equal(t, "Product not found", apperr.NotFound("Product", nil).Message)
}

func TestCauseIsKeptButUnexposed(t *testing.T) {
	cause := errors.New("record not found")
	err := apperr.NotFound("Order", 1).Wrap(cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Order not found with id: 1", apperr.ClientMessage(err))
}

func TestIsKind(t *testing.T) {
	assert.True(t, apperr.IsKind(apperr.Forbidden(""), apperr.KindForbidden))
	assert.False(t, apperr.IsKind(apperr.Forbidden(""), apperr.KindNotFound))
	assert.False(t, apperr.IsKind(errors.New("x"), apperr.KindNotFound))
}
