package ports

import (
	"context"

	"github.com/estatehub/listing-api/internal/core/domain"
)

// AuthResult is returned by signup/login: a signed session token plus the
// account it belongs to.
type AuthResult struct {
	Token string
	User  *domain.User
}

// AuthService implements local signup/login and the email reset flow.
// Password hashing and token signing are internal; callers only see opaque
// token strings.
type AuthService interface {
	Signup(ctx context.Context, name, email, password string) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	// ForgotPassword mails a short-lived reset link to the account.
	ForgotPassword(ctx context.Context, email string) error
	// ResetPassword verifies a reset token, stores the new hash, and issues a
	// fresh session token.
	ResetPassword(ctx context.Context, token, newPassword string) (*AuthResult, error)
}

// Mailer is the outbound email collaborator. Delivery failures surface as
// errors; nothing is retried.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}
