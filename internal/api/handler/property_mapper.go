package handler

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/estatehub/listing-api/internal/core/domain"
	"github.com/estatehub/listing-api/internal/core/ports"
)

// searchParamKeys are the query parameters the search endpoint recognises.
// They double as the cache key inputs; anything else on the URL is ignored.
var searchParamKeys = []string{
	"query", "city", "type", "minPrice", "maxPrice", "bedrooms", "amenities",
	"lat", "lng", "radius", "sortBy", "sortOrder", "page", "limit",
}

// parseListFilter reads the search parameters. Malformed numeric values drop
// that one filter instead of failing the whole request; the geo filter needs
// lat, lng and radius together or it is skipped entirely.
func parseListFilter(c echo.Context) ports.ListFilter {
	filter := ports.ListFilter{
		Query:     strings.TrimSpace(c.QueryParam("query")),
		City:      strings.TrimSpace(c.QueryParam("city")),
		Type:      strings.TrimSpace(c.QueryParam("type")),
		SortBy:    c.QueryParam("sortBy"),
		SortOrder: c.QueryParam("sortOrder"),
	}

	if v, err := strconv.ParseFloat(c.QueryParam("minPrice"), 64); err == nil {
		filter.MinPrice = &v
	}
	if v, err := strconv.ParseFloat(c.QueryParam("maxPrice"), 64); err == nil {
		filter.MaxPrice = &v
	}
	if v, err := strconv.Atoi(c.QueryParam("bedrooms")); err == nil {
		filter.Bedrooms = &v
	}

	if raw := c.QueryParam("amenities"); raw != "" {
		for _, a := range strings.Split(raw, ",") {
			if a = strings.TrimSpace(a); a != "" {
				filter.Amenities = append(filter.Amenities, a)
			}
		}
	}

	lat, latErr := strconv.ParseFloat(c.QueryParam("lat"), 64)
	lng, lngErr := strconv.ParseFloat(c.QueryParam("lng"), 64)
	radius, radErr := strconv.ParseFloat(c.QueryParam("radius"), 64)
	if latErr == nil && lngErr == nil && radErr == nil && radius > 0 {
		filter.Geo = &ports.GeoFilter{Lat: lat, Lng: lng, RadiusKm: radius}
	}

	if v, err := strconv.Atoi(c.QueryParam("page")); err == nil {
		filter.Page = v
	}
	if v, err := strconv.Atoi(c.QueryParam("limit")); err == nil {
		filter.Limit = v
	}

	return filter
}

// searchCacheParams collects the recognised parameters present on the request
// for cache key derivation.
func searchCacheParams(c echo.Context) map[string]string {
	params := make(map[string]string, len(searchParamKeys))
	for _, k := range searchParamKeys {
		if v := c.QueryParam(k); v != "" {
			params[k] = v
		}
	}
	return params
}

// --- Request → Service input ---

func toLocation(l locationRequest) domain.Location {
	return domain.Location{
		Address:     l.Address,
		City:        l.City,
		Region:      l.Region,
		Zip:         l.Zip,
		Coordinates: l.Coordinates,
	}
}

func toCreateInput(req createPropertyRequest, agentID primitive.ObjectID) ports.CreatePropertyInput {
	return ports.CreatePropertyInput{
		Title:          req.Title,
		Description:    req.Description,
		Price:          req.Price,
		Type:           domain.PropertyType(req.Type),
		Location:       toLocation(req.Location),
		Amenities:      req.Amenities,
		Bedrooms:       req.Bedrooms,
		Bathrooms:      req.Bathrooms,
		SquareFootage:  req.SquareFootage,
		Images:         req.Images,
		FloorPlans:     req.FloorPlans,
		VideoTourURL:   req.VideoTourURL,
		VirtualTourURL: req.VirtualTourURL,
		AgentID:        agentID,
	}
}

func toPropertyUpdate(req updatePropertyRequest) ports.PropertyUpdate {
	update := ports.PropertyUpdate{
		Title:         req.Title,
		Description:   req.Description,
		Price:         req.Price,
		Bedrooms:      req.Bedrooms,
		Bathrooms:     req.Bathrooms,
		SquareFootage: req.SquareFootage,
		Amenities:     req.Amenities,
		Images:        req.Images,
	}
	if req.Type != nil {
		t := domain.PropertyType(*req.Type)
		update.Type = &t
	}
	if req.Location != nil {
		loc := toLocation(*req.Location)
		update.Location = &loc
	}
	return update
}

// --- Service result → HTTP response ---

func toPropertyResponse(v ports.PropertyView) propertyResponse {
	p := v.Property
	return propertyResponse{
		ID:             p.ID.Hex(),
		Title:          p.Title,
		Description:    p.Description,
		Price:          p.Price,
		Type:           string(p.Type),
		Location:       p.Location,
		Amenities:      emptyIfNil(p.Amenities),
		Bedrooms:       p.Bedrooms,
		Bathrooms:      p.Bathrooms,
		SquareFootage:  p.SquareFootage,
		Images:         emptyIfNil(p.Images),
		FloorPlans:     p.FloorPlans,
		VideoTourURL:   p.VideoTourURL,
		VirtualTourURL: p.VirtualTourURL,
		Agent: agentResponse{
			ID:    v.Agent.ID,
			Name:  v.Agent.Name,
			Email: v.Agent.Email,
		},
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func toPropertyResponses(views []ports.PropertyView) []propertyResponse {
	out := make([]propertyResponse, len(views))
	for i, v := range views {
		out[i] = toPropertyResponse(v)
	}
	return out
}

func toListResponse(r *ports.ListResult) listPropertiesResponse {
	return listPropertiesResponse{
		Total:      r.Total,
		Page:       r.Page,
		Pages:      r.Pages,
		Properties: toPropertyResponses(r.Properties),
	}
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
