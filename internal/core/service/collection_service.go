package service

import (
	"context"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/estatehub/listing-api/internal/core/domain"
	"github.com/estatehub/listing-api/internal/core/ports"
)

// CollectionService implements the favorite/comparison toggles. A toggle is an
// involution: the second call with the same arguments always reverses the
// first. Mutations are single conditional updates in the repository, so two
// concurrent toggles degrade to one winning and one no-op instead of a lost
// update.
type CollectionService struct {
	users      ports.UserRepository
	properties ports.PropertyRepository
	logger     zerolog.Logger
}

func NewCollectionService(users ports.UserRepository, properties ports.PropertyRepository, logger zerolog.Logger) *CollectionService {
	return &CollectionService{users: users, properties: properties, logger: logger}
}

func (s *CollectionService) ToggleFavorite(ctx context.Context, userID primitive.ObjectID, propertyID string) (*ports.ToggleResult, error) {
	return s.toggle(ctx, userID, propertyID, ports.ListFavorites, 0)
}

func (s *CollectionService) ToggleComparison(ctx context.Context, userID primitive.ObjectID, propertyID string) (*ports.ToggleResult, error) {
	return s.toggle(ctx, userID, propertyID, ports.ListComparisons, domain.MaxComparisons)
}

func (s *CollectionService) toggle(ctx context.Context, userID primitive.ObjectID, propertyID string, list ports.ListName, maxLen int) (*ports.ToggleResult, error) {
	pid, err := parseID(propertyID)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	current := user.Favorites
	if list == ports.ListComparisons {
		current = user.Comparisons
	}

	var action ports.ToggleAction
	if containsID(current, pid) {
		if _, err := s.users.RemoveFromList(ctx, userID, list, pid); err != nil {
			return nil, err
		}
		action = ports.ActionRemoved
	} else {
		if maxLen > 0 && len(current) >= maxLen {
			return nil, domain.ErrComparisonLimit
		}
		added, err := s.users.AddToList(ctx, userID, list, pid, maxLen)
		if err != nil {
			return nil, err
		}
		if !added && maxLen > 0 {
			// Guarded add refused: a concurrent toggle filled the list
			// between our read and the update.
			return nil, domain.ErrComparisonLimit
		}
		// For uncapped lists a refused add means a concurrent request already
		// added the id; the list holds it either way, so report "added".
		action = ports.ActionAdded
	}

	updated, err := s.users.GetList(ctx, userID, list)
	if err != nil {
		return nil, err
	}

	s.logger.Debug().
		Str("user_id", userID.Hex()).
		Str("property_id", propertyID).
		Str("list", string(list)).
		Str("action", string(action)).
		Msg("list toggled")

	return &ports.ToggleResult{Action: action, List: updated}, nil
}

func (s *CollectionService) Favorites(ctx context.Context, userID primitive.ObjectID) ([]*domain.Property, error) {
	return s.populated(ctx, userID, ports.ListFavorites)
}

func (s *CollectionService) Comparisons(ctx context.Context, userID primitive.ObjectID) ([]*domain.Property, error) {
	return s.populated(ctx, userID, ports.ListComparisons)
}

// populated resolves the id list to full listings, preserving list order and
// skipping ids whose listing has since been deleted.
func (s *CollectionService) populated(ctx context.Context, userID primitive.ObjectID, list ports.ListName) ([]*domain.Property, error) {
	ids, err := s.users.GetList(ctx, userID, list)
	if err != nil {
		return nil, err
	}

	props := make([]*domain.Property, 0, len(ids))
	for _, id := range ids {
		p, err := s.properties.FindByID(ctx, id)
		if err != nil {
			if err == domain.ErrPropertyNotFound {
				continue
			}
			return nil, err
		}
		props = append(props, p)
	}
	return props, nil
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
