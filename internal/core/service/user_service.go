package service

import (
	"context"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/estatehub/listing-api/internal/core/domain"
	"github.com/estatehub/listing-api/internal/core/ports"
)

// UserService covers profile self-management and the admin user surface.
type UserService struct {
	users  ports.UserRepository
	logger zerolog.Logger
}

func NewUserService(users ports.UserRepository, logger zerolog.Logger) *UserService {
	return &UserService{users: users, logger: logger}
}

func (s *UserService) Profile(ctx context.Context, userID primitive.ObjectID) (*domain.User, error) {
	return s.users.FindByID(ctx, userID)
}

func (s *UserService) UpdateProfile(ctx context.Context, userID primitive.ObjectID, name, email string) (*domain.User, error) {
	return s.users.UpdateProfile(ctx, userID, name, email)
}

func (s *UserService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return s.users.ListAll(ctx)
}

// SetUserStatus flips an account between active and blocked. Accounts are
// never hard-deleted; blocking is the only suspension mechanism.
func (s *UserService) SetUserStatus(ctx context.Context, userID string, status string) (*domain.User, error) {
	if status != domain.StatusActive && status != domain.StatusBlocked {
		return nil, domain.ErrInvalidID
	}
	uid, err := parseID(userID)
	if err != nil {
		return nil, err
	}
	user, err := s.users.SetStatus(ctx, uid, status)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("user_id", userID).Str("status", status).Msg("user status changed")
	return user, nil
}
