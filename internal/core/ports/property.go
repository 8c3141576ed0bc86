package ports

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/estatehub/listing-api/internal/core/domain"
)

// GeoFilter restricts results to a spherical cap around a point. It is only
// applied when lat, lng and radius were all present on the request.
type GeoFilter struct {
	Lat      float64
	Lng      float64
	RadiusKm float64
}

// ListFilter carries every recognised search parameter. Nil pointer fields
// mean "not supplied"; a malformed numeric parameter is dropped at parse time
// and never reaches this struct.
type ListFilter struct {
	Type string
	// City is a broad location-ish search: a case-insensitive substring OR
	// across city, region, address, title and description. Intentionally wider
	// than its name suggests; Query takes precedence when both are set.
	City      string
	Query     string
	MinPrice  *float64
	MaxPrice  *float64
	Bedrooms  *int
	Amenities []string
	Geo       *GeoFilter
	SortBy    string
	SortOrder string
	Page      int
	Limit     int
}

// PropertyUpdate holds the mutable listing fields. Nil means "leave as is".
type PropertyUpdate struct {
	Title         *string
	Description   *string
	Price         *float64
	Type          *domain.PropertyType
	Location      *domain.Location
	Bedrooms      *int
	Bathrooms     *int
	SquareFootage *float64
	Amenities     []string
	Images        []string
}

// PropertyRepository defines persistence operations for listings.
type PropertyRepository interface {
	Create(ctx context.Context, p *domain.Property) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Property, error)
	// List returns one page of listings matching filter plus the total count
	// before pagination.
	List(ctx context.Context, filter ListFilter) ([]*domain.Property, int64, error)
	ListByAgent(ctx context.Context, agentID primitive.ObjectID) ([]*domain.Property, error)
	// ListNear returns up to limit listings within radiusKm of center
	// ([lng, lat]), excluding excludeID.
	ListNear(ctx context.Context, center []float64, radiusKm float64, excludeID primitive.ObjectID, limit int) ([]*domain.Property, error)
	Update(ctx context.Context, id primitive.ObjectID, update PropertyUpdate) (*domain.Property, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// AgentSummary is the denormalised owner view embedded in listing responses.
type AgentSummary struct {
	ID    string
	Name  string
	Email string
}

// PropertyView pairs a listing with its resolved agent.
type PropertyView struct {
	Property *domain.Property
	Agent    AgentSummary
}

// ListResult is returned by Search: one page plus pagination metadata.
type ListResult struct {
	Total      int64
	Page       int
	Pages      int
	Properties []PropertyView
}

// NearbyResult is returned by Nearby.
type NearbyResult struct {
	Center     []float64
	RadiusKm   float64
	Properties []PropertyView
}

// CreatePropertyInput carries validated listing fields; Agent is always the
// authenticated caller, never client-supplied.
type CreatePropertyInput struct {
	Title          string
	Description    string
	Price          float64
	Type           domain.PropertyType
	Location       domain.Location
	Amenities      []string
	Bedrooms       int
	Bathrooms      int
	SquareFootage  float64
	Images         []string
	FloorPlans     []string
	VideoTourURL   string
	VirtualTourURL string
	AgentID        primitive.ObjectID
}

// Actor identifies the authenticated caller for ownership checks.
type Actor struct {
	ID   primitive.ObjectID
	Role string
}

// PropertyService defines the listing use cases.
type PropertyService interface {
	Search(ctx context.Context, filter ListFilter) (*ListResult, error)
	Get(ctx context.Context, id string) (*PropertyView, error)
	Nearby(ctx context.Context, id string, radiusKm float64, limit int) (*NearbyResult, error)
	ListByAgent(ctx context.Context, actor Actor, agentID string) ([]PropertyView, error)
	Create(ctx context.Context, input CreatePropertyInput) (*domain.Property, error)
	Update(ctx context.Context, actor Actor, id string, update PropertyUpdate) (*domain.Property, error)
	Delete(ctx context.Context, actor Actor, id string) error
}
