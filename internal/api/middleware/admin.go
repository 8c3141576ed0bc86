package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/estatehub/listing-api/internal/core/domain"
)

// AdminOnly restricts a route group to admin accounts. Must run after Auth.
func AdminOnly() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, _ := c.Get("user").(*domain.User)
			if user == nil || user.Role != domain.RoleAdmin {
				return c.JSON(http.StatusForbidden, map[string]string{"message": "Access denied"})
			}
			return next(c)
		}
	}
}
