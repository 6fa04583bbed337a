package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sakashimaa/webshop/internal/transport/http/handler"
)

type Handlers struct {
	Auth    *handler.AuthHandler
	Product *handler.ProductHandler
	Basket  *handler.BasketHandler
	Order   *handler.OrderHandler
}

// RegisterRoutes mounts the shop under prefix. actor must run before every
// handler that reads the requesting user.
func RegisterRoutes(app *fiber.App, prefix string, h *Handlers, actor fiber.Handler) {
	app.Get("/health", handler.Health)

	shop := app.Group(prefix, actor)

	authGroup := shop.Group("/auth")
	authGroup.Post("/register", h.Auth.Register)
	authGroup.Post("/login", h.Auth.Login)
	authGroup.Post("/logout", h.Auth.Logout)
	authGroup.Get("/me", h.Auth.GetMe)

	shop.Get("/", h.Product.List)

	product := shop.Group("/products")
	product.Get("/create/", h.Product.CreateForm)
	product.Post("/create/", h.Product.Create)
	product.Get("/:id/", h.Product.Detail)
	product.Get("/:id/update/", h.Product.UpdateForm)
	product.Post("/:id/update/", h.Product.Update)
	product.Get("/:id/delete/", h.Product.DeleteForm)
	product.Post("/:id/delete/", h.Product.Delete)

	basket := shop.Group("/basket")
	basket.Get("/change/", h.Basket.Change)
	basket.Get("/", h.Basket.View)
	basket.Post("/", h.Basket.Checkout)

	order := shop.Group("/orders")
	order.Get("/", h.Order.List)
	order.Get("/create", h.Order.CreateForm)
	order.Post("/create", h.Order.Create)
	order.Get("/:id/", h.Order.Detail)
	order.Get("/:id/update/", h.Order.UpdateForm)
	order.Post("/:id/update/", h.Order.Update)
	order.Get("/:id/deliver/", h.Order.Deliver)
	order.Post("/:id/delete/", h.Order.Cancel)

	shop.Get("/order/:id/add-product/", h.Order.AddProductForm)
	shop.Post("/order/:id/add-product/", h.Order.AddProduct)
}
