package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/estatehub/listing-api/internal/api/metrics"
	"github.com/estatehub/listing-api/internal/core/domain"
	"github.com/estatehub/listing-api/internal/core/ports"
)

// UserHandler covers profile management, the favorite/comparison lists and
// the admin user surface.
type UserHandler struct {
	profiles    ports.ProfileService
	collections ports.CollectionService
}

func NewUserHandler(profiles ports.ProfileService, collections ports.CollectionService) *UserHandler {
	return &UserHandler{profiles: profiles, collections: collections}
}

type updateProfileRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

type setStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active blocked"`
}

type togglePropertyRequest struct {
	PropertyID string `json:"propertyId" validate:"required"`
}

// The toggle responses always carry the full updated list, even when empty.
type favoriteToggleResponse struct {
	Message   string   `json:"message"`
	Action    string   `json:"action"`
	Favorites []string `json:"favorites"`
}

type comparisonToggleResponse struct {
	Message     string   `json:"message"`
	Action      string   `json:"action"`
	Comparisons []string `json:"comparisons"`
}

// Profile handles GET /api/users/profile.
//
// @Summary      Get the authenticated profile
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  userResponse
// @Router       /api/users/profile [get]
func (h *UserHandler) Profile(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	profile, err := h.profiles.Profile(c.Request().Context(), user.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(profile))
}

// UpdateProfile handles PUT /api/users/profile.
//
// @Summary      Update name and email
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateProfileRequest  true  "Profile fields"
// @Success      200   {object}  userResponse
// @Failure      400   {object}  map[string]string
// @Router       /api/users/profile [put]
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}

	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	updated, err := h.profiles.UpdateProfile(c.Request().Context(), user.ID, req.Name, req.Email)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(updated))
}

// ToggleFavorite handles POST /api/users/favorites.
//
// @Summary      Toggle a listing in favorites
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      togglePropertyRequest  true  "Property id"
// @Success      200   {object}  favoriteToggleResponse
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/users/favorites [post]
func (h *UserHandler) ToggleFavorite(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}

	var req togglePropertyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.collections.ToggleFavorite(c.Request().Context(), user.ID, req.PropertyID)
	if err != nil {
		return err
	}
	metrics.TogglesTotal.WithLabelValues("favorites", string(result.Action)).Inc()

	msg := "Property added to favorites"
	if result.Action == ports.ActionRemoved {
		msg = "Property removed from favorites"
	}
	return c.JSON(http.StatusOK, favoriteToggleResponse{
		Message:   msg,
		Action:    string(result.Action),
		Favorites: hexIDs(result.List),
	})
}

// ToggleComparison handles POST /api/users/comparisons.
//
// @Summary      Toggle a listing in comparisons
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      togglePropertyRequest  true  "Property id"
// @Success      200   {object}  comparisonToggleResponse
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/users/comparisons [post]
func (h *UserHandler) ToggleComparison(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}

	var req togglePropertyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.collections.ToggleComparison(c.Request().Context(), user.ID, req.PropertyID)
	if err != nil {
		return err
	}
	metrics.TogglesTotal.WithLabelValues("comparisons", string(result.Action)).Inc()

	msg := "Property added to comparisons"
	if result.Action == ports.ActionRemoved {
		msg = "Property removed from comparisons"
	}
	return c.JSON(http.StatusOK, comparisonToggleResponse{
		Message:     msg,
		Action:      string(result.Action),
		Comparisons: hexIDs(result.List),
	})
}

// Favorites handles GET /api/users/favorites.
//
// @Summary      List favorite listings
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  propertyResponse
// @Router       /api/users/favorites [get]
func (h *UserHandler) Favorites(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	props, err := h.collections.Favorites(c.Request().Context(), user.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toOwnedResponses(props))
}

// Comparisons handles GET /api/users/comparisons.
//
// @Summary      List listings queued for comparison
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  propertyResponse
// @Router       /api/users/comparisons [get]
func (h *UserHandler) Comparisons(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	props, err := h.collections.Comparisons(c.Request().Context(), user.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toOwnedResponses(props))
}

// ListUsers handles GET /api/admin/users.
//
// @Summary      List all accounts
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   userResponse
// @Failure      403  {object}  map[string]string
// @Router       /api/admin/users [get]
func (h *UserHandler) ListUsers(c echo.Context) error {
	users, err := h.profiles.ListUsers(c.Request().Context())
	if err != nil {
		return err
	}
	out := make([]userResponse, len(users))
	for i, u := range users {
		out[i] = toUserResponse(u)
	}
	return c.JSON(http.StatusOK, out)
}

// SetUserStatus handles PUT /api/admin/users/:id/status.
//
// @Summary      Block or unblock an account
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string            true  "User id"
// @Param        body  body      setStatusRequest  true  "New status"
// @Success      200   {object}  userResponse
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/admin/users/{id}/status [put]
func (h *UserHandler) SetUserStatus(c echo.Context) error {
	var req setStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	updated, err := h.profiles.SetUserStatus(c.Request().Context(), c.Param("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(updated))
}

// BlockUser handles PATCH /api/admin/block/:id, a shorthand for setting the
// blocked status.
//
// @Summary      Block an account
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  userResponse
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/admin/block/{id} [patch]
func (h *UserHandler) BlockUser(c echo.Context) error {
	updated, err := h.profiles.SetUserStatus(c.Request().Context(), c.Param("id"), domain.StatusBlocked)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(updated))
}

// UnblockUser handles PATCH /api/admin/unblock/:id.
//
// @Summary      Unblock an account
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  userResponse
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/admin/unblock/{id} [patch]
func (h *UserHandler) UnblockUser(c echo.Context) error {
	updated, err := h.profiles.SetUserStatus(c.Request().Context(), c.Param("id"), domain.StatusActive)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(updated))
}

// toOwnedResponses renders listings without resolving agent details; the
// collection endpoints return the caller's saved listings, not a directory.
func toOwnedResponses(props []*domain.Property) []propertyResponse {
	out := make([]propertyResponse, len(props))
	for i, p := range props {
		out[i] = toPropertyResponse(ports.PropertyView{
			Property: p,
			Agent:    ports.AgentSummary{ID: p.AgentID.Hex()},
		})
	}
	return out
}
