package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sakashimaa/webshop/internal/domain"
	"github.com/sakashimaa/webshop/pkg/mylogger"
	"go.uber.org/zap"
)

const actorKey = "actor"

type ActorResolver interface {
	ResolveActor(ctx context.Context, token string) (domain.Actor, error)
}

// NewActorMiddleware resolves the requesting actor from a Bearer token or the
// access cookie. Requests without a valid token continue as anonymous.
func NewActorMiddleware(resolver ActorResolver, cookieName string, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c.Get(fiber.HeaderAuthorization))
		if token == "" {
			token = c.Cookies(cookieName)
		}

		ctx, cancel := context.WithTimeout(c.UserContext(), time.Second)
		defer cancel()

		actor, err := resolver.ResolveActor(ctx, token)
		if err != nil {
			mylogger.Error(ctx, logger, "Failed to resolve actor", zap.Error(err))

			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
		}

		c.Locals(actorKey, actor)
		return c.Next()
	}
}

// ActorFrom returns the actor stored by NewActorMiddleware, or the anonymous
// actor when the middleware did not run.
func ActorFrom(c *fiber.Ctx) domain.Actor {
	actor, ok := c.Locals(actorKey).(domain.Actor)
	if !ok {
		return domain.Anonymous()
	}
	return actor
}

func bearerToken(header string) string {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}
