package middleware

import "github.com/labstack/echo/v4"

// userID is the rate-limit and cache identity of the caller: the account id
// when JWTAuth ran, "guest" otherwise.
func userID(c echo.Context) string {
	if v, ok := c.Get(userIDKey).(string); ok && v != "" {
		return v
	}
	return "guest"
}
