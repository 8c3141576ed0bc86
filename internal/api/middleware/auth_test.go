package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/estatehub/listing-api/internal/core/domain"
	"github.com/estatehub/listing-api/internal/core/ports"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// stubUsers only answers FindByID; the middleware calls nothing else.
type stubUsers struct {
	ports.UserRepository
	user *domain.User
}

func (s *stubUsers) FindByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	if s.user != nil && s.user.ID == id {
		return s.user, nil
	}
	return nil, domain.ErrUserNotFound
}

func makeToken(t *testing.T, secret string, id primitive.ObjectID) string {
	t.Helper()
	claims := jwt.MapClaims{
		"id":   id.Hex(),
		"role": domain.RoleUser,
		"exp":  time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func runAuth(t *testing.T, users ports.UserRepository, authorization string) (echo.Context, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	c := e.NewContext(req, httptest.NewRecorder())

	next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	err := Auth(testSecret, users)(next)(c)
	return c, err
}

func TestAuthMissingHeader(t *testing.T) {
	_, err := runAuth(t, &stubUsers{}, "")
	assertHTTPError(t, err, http.StatusUnauthorized)
}

func TestAuthMalformedHeader(t *testing.T) {
	_, err := runAuth(t, &stubUsers{}, "Token abc")
	assertHTTPError(t, err, http.StatusUnauthorized)
}

func TestAuthForgedToken(t *testing.T) {
	uid := primitive.NewObjectID()
	token := makeToken(t, "wrong-secret-wrong-secret-wrong!", uid)
	_, err := runAuth(t, &stubUsers{}, "Bearer "+token)
	assertHTTPError(t, err, http.StatusUnauthorized)
}

func TestAuthUnknownUser(t *testing.T) {
	token := makeToken(t, testSecret, primitive.NewObjectID())
	_, err := runAuth(t, &stubUsers{}, "Bearer "+token)
	assertHTTPError(t, err, http.StatusUnauthorized)
}

func TestAuthBlockedUser(t *testing.T) {
	user := &domain.User{ID: primitive.NewObjectID(), Status: domain.StatusBlocked}
	token := makeToken(t, testSecret, user.ID)
	_, err := runAuth(t, &stubUsers{user: user}, "Bearer "+token)
	assertHTTPError(t, err, http.StatusForbidden)
}

func TestAuthInjectsUser(t *testing.T) {
	user := &domain.User{ID: primitive.NewObjectID(), Status: domain.StatusActive, Name: "Sam"}
	token := makeToken(t, testSecret, user.ID)

	c, err := runAuth(t, &stubUsers{user: user}, "Bearer "+token)
	if err != nil {
		t.Fatalf("auth: %v", err)
	}
	got, _ := c.Get("user").(*domain.User)
	if got == nil || got.ID != user.ID {
		t.Fatalf("context user = %v, want the loaded account", got)
	}
}

func assertHTTPError(t *testing.T, err error, code int) {
	t.Helper()
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("err = %v, want *echo.HTTPError", err)
	}
	if he.Code != code {
		t.Fatalf("status = %d, want %d", he.Code, code)
	}
}
