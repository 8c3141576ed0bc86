package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/estatehub/listing-api/internal/core/domain"
	"github.com/estatehub/listing-api/internal/core/ports"
)

// ctxUser extracts the account injected by the Auth middleware. Its absence
// means the middleware did not run on this route; reject rather than proceed
// unauthenticated.
func ctxUser(c echo.Context) (*domain.User, error) {
	user, _ := c.Get("user").(*domain.User)
	if user == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication")
	}
	return user, nil
}

// ctxActor is ctxUser reduced to the identity the services need for
// ownership checks.
func ctxActor(c echo.Context) (ports.Actor, error) {
	user, err := ctxUser(c)
	if err != nil {
		return ports.Actor{}, err
	}
	return ports.Actor{ID: user.ID, Role: user.Role}, nil
}
