package middleware

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/sakashimaa/webshop/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeResolver struct {
	tokens map[string]domain.Actor
	err    error
}

func (f fakeResolver) ResolveActor(_ context.Context, token string) (domain.Actor, error) {
	if f.err != nil {
		return domain.Anonymous(), f.err
	}
	return f.tokens[token], nil
}

func newApp(resolver ActorResolver) *fiber.App {
	app := fiber.New()
	app.Use(NewActorMiddleware(resolver, "access_token", zap.NewNop()))
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"user_id": ActorFrom(c).UserID})
	})
	return app
}

func TestActorMiddleware(t *testing.T) {
	resolver := fakeResolver{tokens: map[string]domain.Actor{
		"good": domain.NewActor(&domain.User{ID: 7}),
	}}
	app := newApp(resolver)

	tests := []struct {
		name   string
		header string
		cookie string
		want   string
	}{
		{"bearer", "Bearer good", "", `{"user_id":7}`},
		{"cookie", "", "good", `{"user_id":7}`},
		{"anonymous", "", "", `{"user_id":0}`},
		{"malformed header", "Token good", "", `{"user_id":0}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(fiber.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set(fiber.HeaderAuthorization, tt.header)
			}
			if tt.cookie != "" {
				req.Header.Set(fiber.HeaderCookie, "access_token="+tt.cookie)
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusOK, resp.StatusCode)

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(body))
		})
	}
}

func TestActorMiddleware_ResolverFailure(t *testing.T) {
	app := newApp(fakeResolver{err: errors.New("db down")})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}
