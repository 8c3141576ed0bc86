package service

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/estatehub/listing-api/internal/core/domain"
	"github.com/estatehub/listing-api/internal/core/ports"
)

const bcryptCost = 12

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// AuthService implements local signup/login and the password reset flow.
type AuthService struct {
	users        ports.UserRepository
	mailer       ports.Mailer
	jwtSecret    string
	tokenTTL     time.Duration
	resetTTL     time.Duration
	clientOrigin string
	logger       zerolog.Logger
}

func NewAuthService(users ports.UserRepository, mailer ports.Mailer, jwtSecret string, tokenTTL, resetTTL time.Duration, clientOrigin string, logger zerolog.Logger) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	if resetTTL <= 0 {
		resetTTL = time.Hour
	}
	return &AuthService{
		users:        users,
		mailer:       mailer,
		jwtSecret:    jwtSecret,
		tokenTTL:     tokenTTL,
		resetTTL:     resetTTL,
		clientOrigin: clientOrigin,
		logger:       logger,
	}
}

// Signup registers a local account. The role is always "user"; admins are
// promoted manually, never through the API.
func (s *AuthService) Signup(ctx context.Context, name, email, password string) (*ports.AuthResult, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}
	if !emailPattern.MatchString(email) {
		return nil, domain.ErrInvalidCredentials
	}
	if len(password) < 8 {
		return nil, domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
		Status:       domain.StatusActive,
		Favorites:    []primitive.ObjectID{},
		Comparisons:  []primitive.ObjectID{},
		CreatedAt:    time.Now().UTC(),
	}
	created, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	token, err := s.sessionToken(created)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("user_id", created.ID.Hex()).Msg("user signed up")
	return &ports.AuthResult{Token: token, User: created}, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if err == domain.ErrUserNotFound {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	// Federated accounts have no local password.
	if user.PasswordHash == "" {
		return nil, domain.ErrInvalidCredentials
	}
	if user.Blocked() {
		return nil, domain.ErrUserBlocked
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.sessionToken(user)
	if err != nil {
		return nil, err
	}
	return &ports.AuthResult{Token: token, User: user}, nil
}

// ForgotPassword issues a short-lived reset token and mails a link the
// frontend turns into a reset-password call.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return err
	}

	claims := jwt.MapClaims{
		"id":     user.ID.Hex(),
		"action": "reset",
		"exp":    time.Now().Add(s.resetTTL).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwtSecret))
	if err != nil {
		return err
	}

	resetURL := fmt.Sprintf("%s/reset-password?token=%s", s.clientOrigin, url.QueryEscape(token))
	name := user.Name
	if name == "" {
		name = "user"
	}
	body := fmt.Sprintf(
		`<p>Hi %s,</p><p>Click the link below to reset your password. The link expires in %s.</p><a href="%s">Reset password</a>`,
		name, s.resetTTL, resetURL,
	)
	if err := s.mailer.Send(ctx, user.Email, "Password reset", body); err != nil {
		s.logger.Error().Err(err).Str("user_id", user.ID.Hex()).Msg("failed to send reset email")
		return err
	}
	s.logger.Info().Str("user_id", user.ID.Hex()).Msg("password reset email sent")
	return nil
}

// ResetPassword verifies a reset token, stores the new hash, and logs the
// user straight back in with a fresh session token.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) (*ports.AuthResult, error) {
	if token == "" || len(newPassword) < 8 {
		return nil, domain.ErrInvalidCredentials
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil || !parsed.Valid {
		return nil, domain.ErrInvalidCredentials
	}
	if action, _ := claims["action"].(string); action != "reset" {
		return nil, domain.ErrInvalidCredentials
	}
	idHex, _ := claims["id"].(string)
	uid, err := primitive.ObjectIDFromHex(idHex)
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByID(ctx, uid)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return nil, err
	}
	if err := s.users.UpdatePassword(ctx, uid, string(hash)); err != nil {
		return nil, err
	}

	session, err := s.sessionToken(user)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("user_id", uid.Hex()).Msg("password reset")
	return &ports.AuthResult{Token: session, User: user}, nil
}

func (s *AuthService) sessionToken(user *domain.User) (string, error) {
	claims := jwt.MapClaims{
		"id":   user.ID.Hex(),
		"role": user.Role,
		"exp":  time.Now().Add(s.tokenTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwtSecret))
}
