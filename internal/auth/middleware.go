package auth

import (
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"fintrack/internal/model"
	"fintrack/internal/response"
)

// currentUserKey is the echo context key the resolved user is stored under.
const currentUserKey = "current_user"

// RequireToken runs after the JWT middleware has verified the signature and
// rejects tokens whose backing record has been revoked. On success the
// owning user is stored on the context.
func RequireToken(issuer TokenIssuerInterface) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := c.Get("user").(*jwt.Token)
			if !ok {
				return response.Error(c, http.StatusUnauthorized, "User not authenticated.")
			}
			claims, ok := token.Claims.(*Claims)
			if !ok {
				return response.Error(c, http.StatusUnauthorized, "User not authenticated.")
			}

			user, err := issuer.Resolve(c.Request().Context(), claims)
			if err != nil {
				return response.Error(c, http.StatusUnauthorized, "User not authenticated.")
			}

			c.Set(currentUserKey, user)
			return next(c)
		}
	}
}

// CurrentUser returns the authenticated user placed on the context by
// RequireToken.
func CurrentUser(c echo.Context) (*model.User, bool) {
	user, ok := c.Get(currentUserKey).(*model.User)
	return user, ok
}

// SetCurrentUser stores a user on the context. Exposed for handler tests.
func SetCurrentUser(c echo.Context, user *model.User) {
	c.Set(currentUserKey, user)
}
