package handler

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/sakashimaa/webshop/internal/domain"
	"github.com/sakashimaa/webshop/internal/service"
	"github.com/sakashimaa/webshop/internal/transport/http/middleware"
	"github.com/sakashimaa/webshop/pkg/mylogger"
	"go.uber.org/zap"
)

const (
	sessionProducts      = "products"
	sessionProductsCount = "products_count"
)

type BasketHandler struct {
	baskets  service.BasketService
	orders   service.OrderService
	sessions *session.Store
	validate *validator.Validate
	logger   *zap.Logger
	timeout  time.Duration
	prefix   string
}

func NewBasketHandler(
	baskets service.BasketService,
	orders service.OrderService,
	sessions *session.Store,
	validate *validator.Validate,
	logger *zap.Logger,
	timeout time.Duration,
	prefix string,
) *BasketHandler {
	sessions.RegisterType([]string{})

	return &BasketHandler{
		baskets:  baskets,
		orders:   orders,
		sessions: sessions,
		validate: validate,
		logger:   logger,
		timeout:  timeout,
		prefix:   prefix,
	}
}

// Change adds or removes one unit and redirects to ?next=.
func (h *BasketHandler) Change(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()

	sess, err := h.sessions.Get(c)
	if err != nil {
		return writeError(ctx, c, h.logger, fmt.Errorf("load session: %w", err))
	}

	basket, err := h.baskets.Change(ctx, basketFrom(sess), c.Query("pk"), c.Query("action"))
	if err != nil {
		return writeError(ctx, c, h.logger, err)
	}

	sess.Set(sessionProducts, basket.Items())
	sess.Set(sessionProductsCount, basket.Len())
	if err := sess.Save(); err != nil {
		return writeError(ctx, c, h.logger, fmt.Errorf("save session: %w", err))
	}

	return c.Redirect(h.safeNext(c.Query("next")), fiber.StatusFound)
}

func (h *BasketHandler) View(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()

	sess, err := h.sessions.Get(c)
	if err != nil {
		return writeError(ctx, c, h.logger, fmt.Errorf("load session: %w", err))
	}

	view, err := h.baskets.View(ctx, basketFrom(sess))
	if err != nil {
		return writeError(ctx, c, h.logger, err)
	}

	return c.JSON(view)
}

// Checkout places an order from the session basket and empties the basket
// once the order is stored.
func (h *BasketHandler) Checkout(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()

	var contact domain.OrderContact
	if ok, err := bind(c, h.validate, h.logger, &contact); !ok {
		return err
	}

	sess, err := h.sessions.Get(c)
	if err != nil {
		return writeError(ctx, c, h.logger, fmt.Errorf("load session: %w", err))
	}

	order, err := h.orders.Checkout(ctx, middleware.ActorFrom(c), contact, basketFrom(sess))
	if err != nil {
		return writeError(ctx, c, h.logger, err)
	}

	sess.Delete(sessionProducts)
	sess.Delete(sessionProductsCount)
	if err := sess.Save(); err != nil {
		mylogger.Error(ctx, h.logger, "Failed to clear basket", zap.Int64("order_id", order.ID), zap.Error(err))
	}

	c.Location(fmt.Sprintf("%s/orders/%d/", h.prefix, order.ID))
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "order placed",
		"order":   order,
	})
}

// safeNext only follows local absolute paths. Backslashes and control
// characters are refused.
func (h *BasketHandler) safeNext(next string) string {
	fallback := h.prefix + "/"

	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return fallback
	}
	if strings.ContainsFunc(next, func(r rune) bool { return r == '\\' || unicode.IsControl(r) }) {
		return fallback
	}

	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return fallback
	}

	return next
}

func basketFrom(sess *session.Session) domain.Basket {
	items, _ := sess.Get(sessionProducts).([]string)
	return domain.NewBasket(items)
}
