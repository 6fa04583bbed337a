package storage

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	redisstore "github.com/gofiber/storage/redis/v3"
	"github.com/sakashimaa/webshop/pkg/config"
)

// NewSessionStore keeps session data in Redis under random session ids. The
// session cookie is HttpOnly and Lax; secure marks it HTTPS-only.
func NewSessionStore(redisCfg config.Redis, sessionCfg config.Session, secure bool) *session.Store {
	return session.New(session.Config{
		Expiration:     sessionCfg.TTL,
		KeyLookup:      "cookie:" + sessionCfg.CookieName,
		CookieHTTPOnly: true,
		CookieSecure:   secure,
		CookieSameSite: fiber.CookieSameSiteLaxMode,
		Storage: redisstore.New(redisstore.Config{
			Addrs: []string{redisCfg.Addr},
		}),
	})
}
