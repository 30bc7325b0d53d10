package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/neofitness/gym-management/internal/auth"
	"github.com/neofitness/gym-management/internal/utils"
)

// Context keys set by JWTAuth.
const (
	principalKey = "principal"
	userIDKey    = "user_id"
	roleKey      = "role"
)

// JWTAuth validates the Bearer access token and stores the resolved
// auth.Principal in the request context. Missing or invalid tokens are
// answered with 401 before the handler runs.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(h, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			p, err := utils.ParseAccessToken(secret, strings.TrimSpace(strings.TrimPrefix(h, "Bearer ")))
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			c.Set(principalKey, p)
			c.Set(userIDKey, strconv.FormatUint(p.SubjectID, 10))
			c.Set(roleKey, string(p.Role))
			return next(c)
		}
	}
}

// PrincipalFrom returns the caller resolved by JWTAuth.
func PrincipalFrom(c echo.Context) (auth.Principal, bool) {
	p, ok := c.Get(principalKey).(auth.Principal)
	return p, ok
}
