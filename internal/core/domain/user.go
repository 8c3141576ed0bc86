package domain

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

const (
	StatusActive  = "active"
	StatusBlocked = "blocked"
)

// MaxComparisons caps the comparison list. The compare view renders at most
// four listings side by side.
const MaxComparisons = 4

var ErrUserNotFound = errors.New("user not found")
var ErrUserExists = errors.New("user already exists")
var ErrUserBlocked = errors.New("user is blocked")
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrComparisonLimit = errors.New("maximum 4 properties can be compared")

// User models an account. PasswordHash is empty for federated-login accounts
// (GoogleID set); Name may be empty for the same reason.
type User struct {
	ID           primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	Name         string               `json:"name" bson:"name,omitempty"`
	Email        string               `json:"email" bson:"email"`
	PasswordHash string               `json:"-" bson:"password,omitempty"`
	Role         string               `json:"role" bson:"role"`
	GoogleID     string               `json:"-" bson:"googleId,omitempty"`
	Status       string               `json:"status" bson:"status"`
	Favorites    []primitive.ObjectID `json:"favorites" bson:"favorites"`
	Comparisons  []primitive.ObjectID `json:"comparisons" bson:"comparisons"`
	CreatedAt    time.Time            `json:"createdAt" bson:"createdAt"`
}

// Blocked reports whether the account has been suspended by an admin.
func (u *User) Blocked() bool {
	return u.Status == StatusBlocked
}
