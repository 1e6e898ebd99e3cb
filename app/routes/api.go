// Package routes mounts the HTTP surface onto the router.
package routes

import (
	"net/http"

	"github.com/shashiranjanraj/vyapar/app/controllers"
	"github.com/shashiranjanraj/vyapar/app/middleware"
	"github.com/shashiranjanraj/vyapar/pkg/response"
	"github.com/shashiranjanraj/vyapar/pkg/router"
)

// Controllers bundles every controller the API mounts.
type Controllers struct {
	Auth    *controllers.AuthController
	Product *controllers.ProductController
	Cart    *controllers.CartController
	Order   *controllers.OrderController
	Payment *controllers.PaymentController
}

// RegisterAPI mounts all endpoints under /api/v1. Each resource group
// exposes its own health probe so per-service liveness can be checked
// behind one ingress.
func RegisterAPI(r *router.Router, guard *middleware.Guard, c Controllers) {
	r.Get("/", "root", func(w http.ResponseWriter, _ *http.Request) {
		response.Success(w, map[string]string{"service": "vyapar", "docs": "/api/v1"})
	})
	r.Get("/health", "health", healthProbe("vyapar"))

	api := r.Group("/api/v1")

	auth := api.Group("/auth")
	auth.Get("/health", "auth.health", healthProbe("auth"))
	auth.Post("/register", "auth.register", c.Auth.Register)
	auth.Post("/login", "auth.login", c.Auth.Login)
	auth.Post("/refresh", "auth.refresh", c.Auth.Refresh)
	auth.Get("/me", "auth.me", c.Auth.Me, guard.RequireAuth)

	products := api.Group("/products")
	products.Get("/health", "products.health", healthProbe("products"))
	products.Get("", "products.list", c.Product.List)
	products.Get("/categories/list", "categories.list", c.Product.ListCategories)
	products.Post("/categories", "categories.create", c.Product.CreateCategory, guard.RequireAdmin)
	products.Get("/{id}", "products.get", c.Product.Get)
	products.Post("", "products.create", c.Product.Create, guard.RequireAdmin)
	products.Put("/{id}", "products.update", c.Product.Update, guard.RequireAdmin)
	products.Delete("/{id}", "products.delete", c.Product.Delete, guard.RequireAdmin)
	products.Post("/{id}/image", "products.image", c.Product.UploadImage, guard.RequireAdmin)

	// Health probes stay public, so the guard is mounted per route
	// rather than on the group.
	cart := api.Group("/cart")
	cart.Get("/health", "cart.health", healthProbe("cart"))
	cart.Get("", "cart.get", c.Cart.Get, guard.RequireAuth)
	cart.Post("/items", "cart.add", c.Cart.AddItem, guard.RequireAuth)
	cart.Put("/items/{product_id}", "cart.update", c.Cart.UpdateItem, guard.RequireAuth)
	cart.Delete("/items/{product_id}", "cart.remove", c.Cart.RemoveItem, guard.RequireAuth)
	cart.Delete("", "cart.clear", c.Cart.Clear, guard.RequireAuth)

	orders := api.Group("/orders")
	orders.Get("/health", "orders.health", healthProbe("orders"))
	orders.Post("", "orders.place", c.Order.Place, guard.RequireAuth)
	orders.Get("", "orders.list", c.Order.List, guard.RequireAuth)
	orders.Get("/{id}", "orders.get", c.Order.Get, guard.RequireAuth)

	payments := api.Group("/payments")
	payments.Get("/health", "payments.health", healthProbe("payments"))
	payments.Post("/create-intent", "payments.intent", c.Payment.CreateIntent, guard.RequireAuth)
	// Webhook authenticates by signature, not bearer token.
	payments.Post("/webhook", "payments.webhook", c.Payment.Webhook)
}

func healthProbe(service string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		response.Success(w, map[string]string{"status": "healthy", "service": service})
	}
}
