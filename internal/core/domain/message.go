package domain

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrSelfMessage = errors.New("cannot message yourself")
var ErrEmptyMessage = errors.New("message text required")

// Message is one entry in a property conversation thread. The thread key is
// (property, participant pair): a message is created on send, its read marker
// may flip later, and nothing else ever mutates it.
type Message struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	PropertyID primitive.ObjectID `json:"propertyId" bson:"property"`
	FromID     primitive.ObjectID `json:"fromId" bson:"from"`
	ToID       primitive.ObjectID `json:"toId" bson:"to"`
	Text       string             `json:"text" bson:"message"`
	IsRead     bool               `json:"isRead" bson:"isRead"`
	CreatedAt  time.Time          `json:"createdAt" bson:"createdAt"`
}
