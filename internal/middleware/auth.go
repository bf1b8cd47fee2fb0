package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/ovenfresh/internal/config"
	"github.com/example/ovenfresh/internal/store"
	"github.com/example/ovenfresh/internal/utils"
)

// SessionCookie is the cookie holding the signed session token.
const SessionCookie = "session"

const authContextKey = "authContext"

// AuthContext identifies the authenticated caller for downstream handlers.
// It is resolved once per request by AuthMiddleware.
type AuthContext struct {
	UserID     uuid.UUID
	IsAdmin    bool
	IsVerified bool
}

// AuthMiddleware validates the session cookie (or a bearer header) and loads
// the caller's AuthContext. The user row is re-read so admin/verified flags
// reflect the current account state, not the state at token issuance.
func AuthMiddleware(cfg *config.Config, st *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(SessionCookie)
		if token == "" {
			authHeader := c.Get("Authorization")
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
				token = parts[1]
			}
		}
		if token == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
		}

		userID, err := utils.ParseSessionToken(cfg.SessionSecret, token)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid session")
		}

		user, err := st.Users().GetByID(c.Context(), userID)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid session")
		}

		c.Locals(authContextKey, AuthContext{
			UserID:     user.ID,
			IsAdmin:    user.IsAdmin,
			IsVerified: user.IsVerified,
		})
		return c.Next()
	}
}

// RequireAdmin rejects callers whose AuthContext lacks the admin flag. It
// must run after AuthMiddleware.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		auth, ok := CurrentAuth(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
		}
		if !auth.IsAdmin {
			return fiber.NewError(fiber.StatusForbidden, "admin access required")
		}
		return c.Next()
	}
}

// CurrentAuth extracts the caller's AuthContext from the request.
func CurrentAuth(c *fiber.Ctx) (AuthContext, bool) {
	value := c.Locals(authContextKey)
	if value == nil {
		return AuthContext{}, false
	}

	if auth, ok := value.(AuthContext); ok {
		return auth, true
	}

	return AuthContext{}, false
}
