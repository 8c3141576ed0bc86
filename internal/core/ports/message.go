package ports

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/estatehub/listing-api/internal/core/domain"
)

// MessageRepository defines persistence for conversation threads.
type MessageRepository interface {
	Insert(ctx context.Context, m *domain.Message) error
	// ListThread returns the chronological thread for a property, restricted
	// to messages the given user sent or received.
	ListThread(ctx context.Context, propertyID, userID primitive.ObjectID) ([]*domain.Message, error)
	// MarkRead flips isRead on all unread messages from fromID to toID in the
	// property thread. Returns the number of messages updated.
	MarkRead(ctx context.Context, propertyID, fromID, toID primitive.ObjectID) (int64, error)
	// Conversations groups the user's messages by (property, counterpart),
	// split into threads the user started (inquired) and threads on the
	// user's own listings (property).
	Conversations(ctx context.Context, userID primitive.ObjectID) (*Conversations, error)
}

// UserRef is the minimal counterpart view in message payloads.
type UserRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// PropertyRef is the minimal listing view in message payloads.
type PropertyRef struct {
	ID     string   `json:"id"`
	Title  string   `json:"title"`
	Images []string `json:"images,omitempty"`
}

// MessageView is a message with sender/recipient/property resolved.
type MessageView struct {
	ID        string      `json:"id"`
	Property  PropertyRef `json:"property"`
	From      UserRef     `json:"from"`
	To        UserRef     `json:"to"`
	Text      string      `json:"text"`
	IsRead    bool        `json:"isRead"`
	CreatedAt time.Time   `json:"createdAt"`
}

// Conversation summarises one (property, counterpart) thread.
type Conversation struct {
	Type            string      `json:"type"` // "inquired" or "property"
	Property        PropertyRef `json:"property"`
	OtherUser       UserRef     `json:"otherUser"`
	LastMessage     string      `json:"lastMessage"`
	LastMessageDate time.Time   `json:"lastMessageDate"`
	UnreadCount     int         `json:"unreadCount"`
}

// Conversations is the inbox, split by the caller's role in each thread.
type Conversations struct {
	Inquired []Conversation `json:"inquired"`
	Property []Conversation `json:"property"`
}

// MessageService is the single write path for messages: both the REST send
// and the live relay persist through Send.
type MessageService interface {
	// Send validates the property exists and the sender is not its agent,
	// stores a message addressed to the agent, and returns it resolved.
	Send(ctx context.Context, fromID primitive.ObjectID, propertyID, text string) (*MessageView, error)
	// SendTo stores a message to an explicit recipient. One side of the pair
	// must be the property's agent; anything else is not a valid thread.
	SendTo(ctx context.Context, fromID primitive.ObjectID, toUserID, propertyID, text string) (*MessageView, error)
	Thread(ctx context.Context, userID primitive.ObjectID, propertyID string) ([]MessageView, error)
	Inbox(ctx context.Context, userID primitive.ObjectID) (*Conversations, error)
	MarkRead(ctx context.Context, userID primitive.ObjectID, propertyID, otherUserID string) error
}
