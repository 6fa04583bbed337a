package handler

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sakashimaa/webshop/internal/policy"
	"github.com/sakashimaa/webshop/internal/service"
	"github.com/sakashimaa/webshop/internal/transport/http/middleware"
	"go.uber.org/zap"
)

type AuthHandler struct {
	auth       service.AuthService
	validate   *validator.Validate
	logger     *zap.Logger
	cookieName string
	tokenTTL   time.Duration
	secure     bool
}

func NewAuthHandler(
	auth service.AuthService,
	validate *validator.Validate,
	logger *zap.Logger,
	cookieName string,
	tokenTTL time.Duration,
	secure bool,
) *AuthHandler {
	return &AuthHandler{
		auth:       auth,
		validate:   validate,
		logger:     logger,
		cookieName: cookieName,
		tokenTTL:   tokenTTL,
		secure:     secure,
	}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	var in service.RegisterInput
	if ok, err := bind(c, h.validate, h.logger, &in); !ok {
		return err
	}

	user, err := h.auth.Register(ctx, in)
	if err != nil {
		return writeError(ctx, c, h.logger, err)
	}

	return c.Status(fiber.StatusCreated).JSON(user)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	var in service.LoginInput
	if ok, err := bind(c, h.validate, h.logger, &in); !ok {
		return err
	}

	token, user, err := h.auth.Login(ctx, in)
	if err != nil {
		return writeError(ctx, c, h.logger, err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     h.cookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(h.tokenTTL),
		HTTPOnly: true,
		Secure:   h.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	return c.JSON(fiber.Map{
		"access_token": token,
		"user":         user,
	})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   h.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *AuthHandler) GetMe(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), time.Second)
	defer cancel()

	actor := middleware.ActorFrom(c)
	if !actor.IsAuthenticated() {
		return writeError(ctx, c, h.logger, policy.ErrUnauthenticated)
	}

	user, err := h.auth.Me(ctx, actor.UserID)
	if err != nil {
		return writeError(ctx, c, h.logger, err)
	}

	return c.JSON(user)
}
