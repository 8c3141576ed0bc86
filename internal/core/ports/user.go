package ports

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/estatehub/listing-api/internal/core/domain"
)

// ListName selects which membership list a toggle operates on.
type ListName string

const (
	ListFavorites   ListName = "favorites"
	ListComparisons ListName = "comparisons"
)

// UserRepository defines persistence operations for accounts. The list
// mutations are single conditional updates so concurrent toggles cannot
// clobber each other.
type UserRepository interface {
	Create(ctx context.Context, u *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindManyByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*domain.User, error)
	ListAll(ctx context.Context) ([]*domain.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, name, email string) (*domain.User, error)
	UpdatePassword(ctx context.Context, id primitive.ObjectID, passwordHash string) error
	SetStatus(ctx context.Context, id primitive.ObjectID, status string) (*domain.User, error)

	// RemoveFromList pulls propertyID from the list if present. Reports
	// whether anything was removed.
	RemoveFromList(ctx context.Context, userID primitive.ObjectID, list ListName, propertyID primitive.ObjectID) (bool, error)
	// AddToList appends propertyID if absent and, when maxLen > 0, only while
	// the list holds fewer than maxLen entries. Reports whether it was added;
	// a missing user is ErrUserNotFound, matching RemoveFromList.
	AddToList(ctx context.Context, userID primitive.ObjectID, list ListName, propertyID primitive.ObjectID, maxLen int) (bool, error)
	GetList(ctx context.Context, userID primitive.ObjectID, list ListName) ([]primitive.ObjectID, error)
}

// ToggleAction reports which direction a toggle took.
type ToggleAction string

const (
	ActionAdded   ToggleAction = "added"
	ActionRemoved ToggleAction = "removed"
)

// ToggleResult carries the new list so callers can update their own view
// without re-fetching.
type ToggleResult struct {
	Action ToggleAction
	List   []primitive.ObjectID
}

// CollectionService owns the favorite/comparison lists: an idempotent
// XOR-on-membership toggle plus populated reads.
type CollectionService interface {
	ToggleFavorite(ctx context.Context, userID primitive.ObjectID, propertyID string) (*ToggleResult, error)
	ToggleComparison(ctx context.Context, userID primitive.ObjectID, propertyID string) (*ToggleResult, error)
	Favorites(ctx context.Context, userID primitive.ObjectID) ([]*domain.Property, error)
	Comparisons(ctx context.Context, userID primitive.ObjectID) ([]*domain.Property, error)
}

// ProfileService covers account self-management and the admin user surface.
type ProfileService interface {
	Profile(ctx context.Context, userID primitive.ObjectID) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID primitive.ObjectID, name, email string) (*domain.User, error)
	ListUsers(ctx context.Context) ([]*domain.User, error)
	SetUserStatus(ctx context.Context, userID string, status string) (*domain.User, error)
}
