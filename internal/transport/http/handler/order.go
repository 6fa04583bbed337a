package handler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sakashimaa/webshop/internal/domain"
	"github.com/sakashimaa/webshop/internal/policy"
	"github.com/sakashimaa/webshop/internal/service"
	"github.com/sakashimaa/webshop/internal/transport/http/middleware"
	"github.com/sakashimaa/webshop/pkg/mylogger"
	"go.uber.org/zap"
)

var (
	orderFields    = []string{"user_id", "first_name", "last_name", "phone", "email", "status"}
	contactFields  = []string{"first_name", "last_name", "phone", "email"}
	lineItemFields = []string{"product_id", "quantity"}
)

type OrderHandler struct {
	orders   service.OrderService
	validate *validator.Validate
	logger   *zap.Logger
	timeout  time.Duration
	prefix   string
}

func NewOrderHandler(
	orders service.OrderService,
	validate *validator.Validate,
	logger *zap.Logger,
	timeout time.Duration,
	prefix string,
) *OrderHandler {
	return &OrderHandler{
		orders:   orders,
		validate: validate,
		logger:   logger,
		timeout:  timeout,
		prefix:   prefix,
	}
}

func (h *OrderHandler) List(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()

	orders, err := h.orders.List(ctx, middleware.ActorFrom(c))
	if err != nil {
		return writeError(ctx, c, h.logger, err)
	}

	return c.JSON(fiber.Map{"orders": orders})
}

// Detail returns the order with its line items and the fields of the
// add-product form.
func (h *OrderHandler) Detail(c *fiber.Ctx) error {
	id, ok := idParam(c)
	if !ok {
		return notFound(c)
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()

	order, err := h.orders.Get(ctx, middleware.ActorFrom(c), id)
	if err != nil {
		return writeError(ctx, c, h.logger, err)
	}

	return c.JSON(fiber.Map{"order": order, "form": lineItemFields})
}

func (h *OrderHandler) CreateForm(c *fiber.Ctx) error {
	if err := policy.CreateOrder(middleware.ActorFrom(c)); err != nil {
		return writeError(c.UserContext(), c, h.logger, err)
	}

	return c.JSON(fiber.Map{"fields": orderFields})
}

func (h *OrderHandler) Create(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()

	actor := middleware.ActorFrom(c)
	if err := policy.CreateOrder(actor); err != nil {
		return writeError(ctx, c, h.logger, err)
	}

	var in domain.CreateOrderInput
	if ok, err := bind(c, h.validate, h.logger, &in); !ok {
		return err
	}

	order, err := h.orders.Create(ctx, actor, in)
	if err != nil {
		return writeError(ctx, c, h.logger, err)
	}

	c.Location(h.detailURL(order.ID))
	return c.Status(fiber.StatusCreated).JSON(order)
}

func (h *OrderHandler) UpdateForm(c *fiber.Ctx) error {
	return h.form(c, policy.UpdateOrder, contactFields)
}

func (h *OrderHandler) Update(c *fiber.Ctx) error {
	id, ok := idParam(c)
	if !ok {
		return notFound(c)
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()

	var contact domain.OrderContact
	if ok, err := bind(c, h.validate, h.logger, &contact); !ok {
		return err
	}

	order, err := h.orders.UpdateContact(ctx, middleware.ActorFrom(c), id, contact)
	if err != nil {
		return writeError(ctx, c, h.logger, err)
	}

	c.Location(h.detailURL(order.ID))
	return c.JSON(order)
}

func (h *OrderHandler) Deliver(c *fiber.Ctx) error {
	return h.transition(c, h.orders.Deliver)
}

// Cancel marks the order canceled; the order itself is kept.
func (h *OrderHandler) Cancel(c *fiber.Ctx) error {
	return h.transition(c, h.orders.Cancel)
}

func (h *OrderHandler) AddProductForm(c *fiber.Ctx) error {
	return h.form(c, policy.AddLineItem, lineItemFields)
}

func (h *OrderHandler) AddProduct(c *fiber.Ctx) error {
	id, ok := idParam(c)
	if !ok {
		return notFound(c)
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()

	var in domain.LineItemInput
	if ok, err := bind(c, h.validate, h.logger, &in); !ok {
		return err
	}

	item, err := h.orders.AddLineItem(ctx, middleware.ActorFrom(c), id, in)
	if err != nil {
		return writeError(ctx, c, h.logger, err)
	}

	c.Location(h.detailURL(id))
	return c.Status(fiber.StatusCreated).JSON(item)
}

type transitionFunc func(ctx context.Context, actor domain.Actor, id int64) (*domain.Order, error)

func (h *OrderHandler) transition(c *fiber.Ctx, apply transitionFunc) error {
	id, ok := idParam(c)
	if !ok {
		return notFound(c)
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()

	order, err := apply(ctx, middleware.ActorFrom(c), id)
	if err != nil {
		return writeError(ctx, c, h.logger, err)
	}

	mylogger.Info(
		ctx,
		h.logger,
		"Order status changed",
		zap.Int64("order_id", order.ID),
		zap.String("status", string(order.Status)),
	)

	return c.Redirect(h.detailURL(order.ID), fiber.StatusFound)
}

func (h *OrderHandler) form(c *fiber.Ctx, rule policy.OrderRule, fields []string) error {
	id, ok := idParam(c)
	if !ok {
		return notFound(c)
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()

	order, err := h.orders.Load(ctx, middleware.ActorFrom(c), id, rule)
	if err != nil {
		return writeError(ctx, c, h.logger, err)
	}

	return c.JSON(fiber.Map{"order": order, "fields": fields})
}

func (h *OrderHandler) detailURL(id int64) string {
	return fmt.Sprintf("%s/orders/%d/", h.prefix, id)
}
