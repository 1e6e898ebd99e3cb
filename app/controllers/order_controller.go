package controllers

import (
	"net/http"
	"strconv"

	"github.com/shashiranjanraj/vyapar/app/middleware"
	"github.com/shashiranjanraj/vyapar/app/services"
	"github.com/shashiranjanraj/vyapar/pkg/response"
)

type OrderController struct {
	orders *services.OrderService
}

func NewOrderController(orders *services.OrderService) *OrderController {
	return &OrderController{orders: orders}
}

// Place handles POST /orders: checkout of the current cart.
func (c *OrderController) Place(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())
	order, err := c.orders.Place(r.Context(), user.ID)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Created(w, order)
}

// List handles GET /orders?skip=&limit=.
func (c *OrderController) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())
	skip, _ := strconv.Atoi(r.URL.Query().Get("skip"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	orders, err := c.orders.List(r.Context(), user.ID, skip, limit)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Success(w, orders)
}

// Get handles GET /orders/{id}.
func (c *OrderController) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	user := middleware.CurrentUser(r.Context())
	order, err := c.orders.Get(r.Context(), user.ID, id)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Success(w, order)
}
