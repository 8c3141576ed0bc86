package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/estatehub/listing-api/internal/api/metrics"
	"github.com/estatehub/listing-api/internal/core/ports"
	"github.com/estatehub/listing-api/internal/infrastructure/db/redis"
)

// PropertyHandler handles HTTP requests for listing operations.
type PropertyHandler struct {
	service ports.PropertyService
	cache   *redis.QueryCache
	log     zerolog.Logger
}

// NewPropertyHandler creates a PropertyHandler. cache may be nil, in which
// case every search goes straight to the datastore.
func NewPropertyHandler(service ports.PropertyService, cache *redis.QueryCache, log zerolog.Logger) *PropertyHandler {
	return &PropertyHandler{service: service, cache: cache, log: log}
}

// List handles GET /api/properties.
//
// @Summary      Search listings
// @Tags         properties
// @Produce      json
// @Param        query      query     string  false  "Free-text search across title, description, location and amenities"
// @Param        city       query     string  false  "Location search (ignored when query is set)"
// @Param        type       query     string  false  "Listing type: apartment, house or office"
// @Param        minPrice   query     number  false  "Minimum price"
// @Param        maxPrice   query     number  false  "Maximum price"
// @Param        bedrooms   query     int     false  "Minimum number of bedrooms"
// @Param        amenities  query     string  false  "Comma-separated amenities, all required"
// @Param        lat        query     number  false  "Latitude (requires lng and radius)"
// @Param        lng        query     number  false  "Longitude (requires lat and radius)"
// @Param        radius     query     number  false  "Radius in km (requires lat and lng)"
// @Param        sortBy     query     string  false  "Sort field: price, createdAt, bedrooms, bathrooms, squareFootage, title"
// @Param        sortOrder  query     string  false  "asc or desc"
// @Param        page       query     int     false  "Page number (default 1)"
// @Param        limit      query     int     false  "Page size (default 10, max 100)"
// @Success      200        {object}  listPropertiesResponse
// @Failure      500        {object}  map[string]string
// @Router       /api/properties [get]
func (h *PropertyHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	var cacheKey string
	if h.cache != nil {
		key, err := h.cache.BuildKey(ctx, searchCacheParams(c))
		if err != nil {
			metrics.SearchesTotal.WithLabelValues("bypass").Inc()
			h.log.Warn().Err(err).Msg("search cache unavailable")
		} else {
			cacheKey = key
			var cached listPropertiesResponse
			hit, err := h.cache.Get(ctx, cacheKey, &cached)
			if err != nil {
				h.log.Warn().Err(err).Msg("search cache read failed")
			} else if hit {
				metrics.SearchesTotal.WithLabelValues("hit").Inc()
				return c.JSON(http.StatusOK, cached)
			}
		}
	}

	result, err := h.service.Search(ctx, parseListFilter(c))
	if err != nil {
		return err
	}
	resp := toListResponse(result)

	if cacheKey != "" {
		if err := h.cache.Set(ctx, cacheKey, resp); err != nil {
			h.log.Warn().Err(err).Msg("search cache write failed")
		}
		metrics.SearchesTotal.WithLabelValues("miss").Inc()
	} else if h.cache == nil {
		metrics.SearchesTotal.WithLabelValues("bypass").Inc()
	}

	return c.JSON(http.StatusOK, resp)
}

// Get handles GET /api/properties/:id.
//
// @Summary      Get a listing by id
// @Tags         properties
// @Produce      json
// @Param        id   path      string  true  "Property id"
// @Success      200  {object}  propertyResponse
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/properties/{id} [get]
func (h *PropertyHandler) Get(c echo.Context) error {
	view, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toPropertyResponse(*view))
}

// Nearby handles GET /api/properties/nearby/:id.
//
// @Summary      List listings near another listing
// @Tags         properties
// @Produce      json
// @Param        id      path      string  true   "Reference property id"
// @Param        radius  query     number  false  "Radius in km (default 5)"
// @Param        limit   query     int     false  "Maximum results (default 10)"
// @Success      200     {object}  nearbyPropertiesResponse
// @Failure      400     {object}  map[string]string
// @Failure      404     {object}  map[string]string
// @Router       /api/properties/nearby/{id} [get]
func (h *PropertyHandler) Nearby(c echo.Context) error {
	radius, err := strconv.ParseFloat(c.QueryParam("radius"), 64)
	if err != nil {
		radius = 0
	}
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil {
		limit = 0
	}

	result, err := h.service.Nearby(c.Request().Context(), c.Param("id"), radius, limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, nearbyPropertiesResponse{
		Center:     result.Center,
		RadiusKm:   result.RadiusKm,
		Properties: toPropertyResponses(result.Properties),
	})
}

// ByAgent handles GET /api/properties/user/:userId.
//
// @Summary      List a user's own listings
// @Tags         properties
// @Produce      json
// @Security     BearerAuth
// @Param        userId  path      string  true  "Agent user id"
// @Success      200     {array}   propertyResponse
// @Failure      403     {object}  map[string]string
// @Router       /api/properties/user/{userId} [get]
func (h *PropertyHandler) ByAgent(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	views, err := h.service.ListByAgent(c.Request().Context(), actor, c.Param("userId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toPropertyResponses(views))
}

// Create handles POST /api/properties.
//
// @Summary      Create a listing
// @Tags         properties
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createPropertyRequest  true  "Listing details"
// @Success      201   {object}  propertyResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /api/properties [post]
func (h *PropertyHandler) Create(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}

	var req createPropertyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	prop, err := h.service.Create(c.Request().Context(), toCreateInput(req, user.ID))
	if err != nil {
		return err
	}
	h.bumpCache(c)

	view := ports.PropertyView{
		Property: prop,
		Agent:    ports.AgentSummary{ID: user.ID.Hex(), Name: user.Name, Email: user.Email},
	}
	return c.JSON(http.StatusCreated, toPropertyResponse(view))
}

// Update handles PUT /api/properties/:id.
//
// @Summary      Update a listing
// @Tags         properties
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                 true  "Property id"
// @Param        body  body      updatePropertyRequest  true  "Fields to change"
// @Success      200   {object}  propertyResponse
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/properties/{id} [put]
func (h *PropertyHandler) Update(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req updatePropertyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	prop, err := h.service.Update(c.Request().Context(), actor, c.Param("id"), toPropertyUpdate(req))
	if err != nil {
		return err
	}
	h.bumpCache(c)

	user, _ := ctxUser(c)
	view := ports.PropertyView{Property: prop}
	if user != nil && prop.AgentID == user.ID {
		view.Agent = ports.AgentSummary{ID: user.ID.Hex(), Name: user.Name, Email: user.Email}
	} else {
		view.Agent = ports.AgentSummary{ID: prop.AgentID.Hex()}
	}
	return c.JSON(http.StatusOK, toPropertyResponse(view))
}

// Delete handles DELETE /api/properties/:id.
//
// @Summary      Delete a listing
// @Tags         properties
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Property id"
// @Success      200  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/properties/{id} [delete]
func (h *PropertyHandler) Delete(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), actor, c.Param("id")); err != nil {
		return err
	}
	h.bumpCache(c)
	return c.JSON(http.StatusOK, map[string]string{"message": "Property deleted"})
}

// bumpCache orphans all cached search responses after a listing write. Cache
// failures never fail the request.
func (h *PropertyHandler) bumpCache(c echo.Context) {
	if h.cache == nil {
		return
	}
	if err := h.cache.Bump(c.Request().Context()); err != nil {
		h.log.Warn().Err(err).Msg("search cache invalidation failed")
	}
}
