package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/vyapar/app/middleware"
	"github.com/shashiranjanraj/vyapar/app/services"
	"github.com/shashiranjanraj/vyapar/pkg/bind"
	"github.com/shashiranjanraj/vyapar/pkg/response"
)

type CartController struct {
	cart         *services.CartService
	maxBodyBytes int64
}

func NewCartController(cart *services.CartService, maxBodyBytes int64) *CartController {
	return &CartController{cart: cart, maxBodyBytes: maxBodyBytes}
}

// Get handles GET /cart.
func (c *CartController) Get(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())
	cart, err := c.cart.Get(r.Context(), user.ID)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Success(w, cart)
}

// AddItem handles POST /cart/items.
func (c *CartController) AddItem(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ProductID uint `json:"product_id" validate:"required"`
		Quantity  int  `json:"quantity" validate:"required,gt=0"`
	}
	if errs, err := bind.JSON(r, &body, c.maxBodyBytes); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	user := middleware.CurrentUser(r.Context())
	cart, err := c.cart.Add(r.Context(), user.ID, body.ProductID, body.Quantity)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Success(w, cart)
}

// UpdateItem handles PUT /cart/items/{product_id}.
func (c *CartController) UpdateItem(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(w, r, "product_id")
	if !ok {
		return
	}

	var body struct {
		Quantity int `json:"quantity" validate:"required,gt=0"`
	}
	if errs, err := bind.JSON(r, &body, c.maxBodyBytes); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	user := middleware.CurrentUser(r.Context())
	cart, err := c.cart.Update(r.Context(), user.ID, productID, body.Quantity)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Success(w, cart)
}

// RemoveItem handles DELETE /cart/items/{product_id}.
func (c *CartController) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(w, r, "product_id")
	if !ok {
		return
	}

	user := middleware.CurrentUser(r.Context())
	cart, err := c.cart.Remove(r.Context(), user.ID, productID)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Success(w, cart)
}

// Clear handles DELETE /cart.
func (c *CartController) Clear(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())
	if err := c.cart.Clear(r.Context(), user.ID); err != nil {
		response.FromError(w, r, err)
		return
	}
	response.NoContent(w)
}
