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

var productFields = []string{"name", "category", "price", "photo", "in_order"}

type ProductHandler struct {
	catalog  service.CatalogService
	validate *validator.Validate
	logger   *zap.Logger
	timeout  time.Duration
	prefix   string
}

func NewProductHandler(
	catalog service.CatalogService,
	validate *validator.Validate,
	logger *zap.Logger,
	timeout time.Duration,
	prefix string,
) *ProductHandler {
	return &ProductHandler{
		catalog:  catalog,
		validate: validate,
		logger:   logger,
		timeout:  timeout,
		prefix:   prefix,
	}
}

func (h *ProductHandler) List(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()

	products, err := h.catalog.List(ctx)
	if err != nil {
		return writeError(ctx, c, h.logger, err)
	}

	return c.JSON(fiber.Map{"products": products})
}

func (h *ProductHandler) Detail(c *fiber.Ctx) error {
	id, ok := idParam(c)
	if !ok {
		return notFound(c)
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()

	product, err := h.catalog.Get(ctx, id)
	if err != nil {
		return writeError(ctx, c, h.logger, err)
	}

	return c.JSON(product)
}

func (h *ProductHandler) CreateForm(c *fiber.Ctx) error {
	if err := policy.CreateProduct(middleware.ActorFrom(c)); err != nil {
		return writeError(c.UserContext(), c, h.logger, err)
	}

	return c.JSON(fiber.Map{"fields": productFields})
}

func (h *ProductHandler) Create(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()

	actor := middleware.ActorFrom(c)
	if err := policy.CreateProduct(actor); err != nil {
		return writeError(ctx, c, h.logger, err)
	}

	var in domain.ProductInput
	if ok, err := bind(c, h.validate, h.logger, &in); !ok {
		return err
	}

	product, err := h.catalog.Create(ctx, actor, in)
	if err != nil {
		return writeError(ctx, c, h.logger, err)
	}

	c.Location(h.detailURL(product.ID))
	return c.Status(fiber.StatusCreated).JSON(product)
}

// UpdateForm returns the current product as the initial form values.
func (h *ProductHandler) UpdateForm(c *fiber.Ctx) error {
	return h.confirm(c, policy.UpdateProduct)
}

func (h *ProductHandler) Update(c *fiber.Ctx) error {
	id, ok := idParam(c)
	if !ok {
		return notFound(c)
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()

	actor := middleware.ActorFrom(c)
	if err := policy.UpdateProduct(actor); err != nil {
		return writeError(ctx, c, h.logger, err)
	}

	var in domain.ProductInput
	if ok, err := bind(c, h.validate, h.logger, &in); !ok {
		return err
	}

	product, err := h.catalog.Update(ctx, actor, id, in)
	if err != nil {
		return writeError(ctx, c, h.logger, err)
	}

	c.Location(h.detailURL(product.ID))
	return c.JSON(product)
}

// DeleteForm asks for confirmation before hiding the product.
func (h *ProductHandler) DeleteForm(c *fiber.Ctx) error {
	return h.confirm(c, policy.HideProduct)
}

// Delete hides the product and redirects to the catalog.
func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	id, ok := idParam(c)
	if !ok {
		return notFound(c)
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()

	if _, err := h.catalog.Hide(ctx, middleware.ActorFrom(c), id); err != nil {
		return writeError(ctx, c, h.logger, err)
	}

	mylogger.Info(ctx, h.logger, "Product removed from catalog", zap.Int64("product_id", id))

	return c.Redirect(h.prefix+"/", fiber.StatusFound)
}

func (h *ProductHandler) confirm(c *fiber.Ctx, rule func(domain.Actor) error) error {
	id, ok := idParam(c)
	if !ok {
		return notFound(c)
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()

	if err := rule(middleware.ActorFrom(c)); err != nil {
		return writeError(ctx, c, h.logger, err)
	}

	product, err := h.catalog.Get(ctx, id)
	if err != nil {
		return writeError(ctx, c, h.logger, err)
	}

	return c.JSON(fiber.Map{"product": product, "fields": productFields})
}

func (h *ProductHandler) detailURL(id int64) string {
	return fmt.Sprintf("%s/products/%d/", h.prefix, id)
}
