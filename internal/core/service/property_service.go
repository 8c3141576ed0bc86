package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/estatehub/listing-api/internal/core/domain"
	"github.com/estatehub/listing-api/internal/core/ports"
)

const (
	defaultPage     = 1
	defaultLimit    = 10
	maxLimit        = 100
	defaultRadiusKm = 5
)

type PropertyService struct {
	properties ports.PropertyRepository
	users      ports.UserRepository
	logger     zerolog.Logger
}

func NewPropertyService(properties ports.PropertyRepository, users ports.UserRepository, logger zerolog.Logger) *PropertyService {
	return &PropertyService{properties: properties, users: users, logger: logger}
}

// Search runs the filter against the listings collection and returns one page
// plus pagination metadata. Total is counted before pagination so that
// pages == ceil(total/limit) and walking pages 1..pages yields every match
// exactly once.
func (s *PropertyService) Search(ctx context.Context, filter ports.ListFilter) (*ports.ListResult, error) {
	if filter.Page < 1 {
		filter.Page = defaultPage
	}
	if filter.Limit < 1 {
		filter.Limit = defaultLimit
	}
	if filter.Limit > maxLimit {
		filter.Limit = maxLimit
	}

	props, total, err := s.properties.List(ctx, filter)
	if err != nil {
		s.logger.Error().Err(err).Msg("property search failed")
		return nil, err
	}

	views, err := s.resolveAgents(ctx, props)
	if err != nil {
		return nil, err
	}

	pages := int((total + int64(filter.Limit) - 1) / int64(filter.Limit))
	return &ports.ListResult{
		Total:      total,
		Page:       filter.Page,
		Pages:      pages,
		Properties: views,
	}, nil
}

func (s *PropertyService) Get(ctx context.Context, id string) (*ports.PropertyView, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	prop, err := s.properties.FindByID(ctx, oid)
	if err != nil {
		return nil, err
	}
	views, err := s.resolveAgents(ctx, []*domain.Property{prop})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// Nearby centres a radius search on an existing listing, excluding the
// listing itself.
func (s *PropertyService) Nearby(ctx context.Context, id string, radiusKm float64, limit int) (*ports.NearbyResult, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	prop, err := s.properties.FindByID(ctx, oid)
	if err != nil {
		return nil, err
	}
	if len(prop.Location.Coordinates) != 2 {
		return nil, domain.ErrMissingCoordinates
	}
	if radiusKm <= 0 {
		radiusKm = defaultRadiusKm
	}
	if limit < 1 {
		limit = defaultLimit
	}

	near, err := s.properties.ListNear(ctx, prop.Location.Coordinates, radiusKm, prop.ID, limit)
	if err != nil {
		return nil, err
	}
	views, err := s.resolveAgents(ctx, near)
	if err != nil {
		return nil, err
	}
	return &ports.NearbyResult{
		Center:     prop.Location.Coordinates,
		RadiusKm:   radiusKm,
		Properties: views,
	}, nil
}

// ListByAgent returns a user's own listings. Only the agent themselves or an
// admin may read them.
func (s *PropertyService) ListByAgent(ctx context.Context, actor ports.Actor, agentID string) ([]ports.PropertyView, error) {
	oid, err := parseID(agentID)
	if err != nil {
		return nil, err
	}
	if actor.Role != domain.RoleAdmin && actor.ID != oid {
		return nil, domain.ErrForbidden
	}
	props, err := s.properties.ListByAgent(ctx, oid)
	if err != nil {
		return nil, err
	}
	return s.resolveAgents(ctx, props)
}

func (s *PropertyService) Create(ctx context.Context, input ports.CreatePropertyInput) (*domain.Property, error) {
	now := time.Now().UTC()
	loc := input.Location
	if len(loc.Coordinates) != 2 {
		loc.Coordinates = []float64{0, 0}
	}
	prop := &domain.Property{
		Title:          input.Title,
		Description:    input.Description,
		Price:          input.Price,
		Type:           input.Type,
		Location:       loc,
		Amenities:      input.Amenities,
		Bedrooms:       input.Bedrooms,
		Bathrooms:      input.Bathrooms,
		SquareFootage:  input.SquareFootage,
		Images:         input.Images,
		FloorPlans:     input.FloorPlans,
		VideoTourURL:   input.VideoTourURL,
		VirtualTourURL: input.VirtualTourURL,
		AgentID:        input.AgentID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.properties.Create(ctx, prop); err != nil {
		s.logger.Error().Err(err).Msg("failed to create property")
		return nil, err
	}
	s.logger.Info().Str("property_id", prop.ID.Hex()).Str("agent_id", input.AgentID.Hex()).Msg("property created")
	return prop, nil
}

func (s *PropertyService) Update(ctx context.Context, actor ports.Actor, id string, update ports.PropertyUpdate) (*domain.Property, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	existing, err := s.properties.FindByID(ctx, oid)
	if err != nil {
		return nil, err
	}
	if !existing.OwnedBy(actor.ID, actor.Role) {
		return nil, domain.ErrForbidden
	}
	return s.properties.Update(ctx, oid, update)
}

func (s *PropertyService) Delete(ctx context.Context, actor ports.Actor, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	existing, err := s.properties.FindByID(ctx, oid)
	if err != nil {
		return err
	}
	if !existing.OwnedBy(actor.ID, actor.Role) {
		return domain.ErrForbidden
	}
	if err := s.properties.Delete(ctx, oid); err != nil {
		return err
	}
	s.logger.Info().Str("property_id", id).Msg("property deleted")
	return nil
}

// resolveAgents denormalises each listing's owner into the view. Unknown
// agents (deleted accounts) resolve to an empty summary rather than failing
// the whole page.
func (s *PropertyService) resolveAgents(ctx context.Context, props []*domain.Property) ([]ports.PropertyView, error) {
	ids := make([]primitive.ObjectID, 0, len(props))
	seen := make(map[primitive.ObjectID]struct{}, len(props))
	for _, p := range props {
		if _, ok := seen[p.AgentID]; !ok {
			seen[p.AgentID] = struct{}{}
			ids = append(ids, p.AgentID)
		}
	}

	agents := make(map[primitive.ObjectID]ports.AgentSummary, len(ids))
	if len(ids) > 0 {
		users, err := s.users.FindManyByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		for _, u := range users {
			agents[u.ID] = ports.AgentSummary{ID: u.ID.Hex(), Name: u.Name, Email: u.Email}
		}
	}

	views := make([]ports.PropertyView, len(props))
	for i, p := range props {
		views[i] = ports.PropertyView{Property: p, Agent: agents[p.AgentID]}
	}
	return views, nil
}

// parseID maps a syntactically invalid object id to the domain error so the
// transport layer renders 400 instead of 500.
func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, domain.ErrInvalidID
	}
	return oid, nil
}
