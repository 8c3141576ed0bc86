package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/estatehub/listing-api/internal/core/domain"
	"github.com/estatehub/listing-api/internal/core/ports"
)

// MessageService owns the persisted conversation history. It is the single
// write path for messages: the REST endpoint and the live relay both go
// through Send, so the two delivery surfaces can never diverge on content.
type MessageService struct {
	messages   ports.MessageRepository
	properties ports.PropertyRepository
	users      ports.UserRepository
	logger     zerolog.Logger
}

func NewMessageService(messages ports.MessageRepository, properties ports.PropertyRepository, users ports.UserRepository, logger zerolog.Logger) *MessageService {
	return &MessageService{messages: messages, properties: properties, users: users, logger: logger}
}

// Send stores a message from fromID to the agent of the given property.
// Owners cannot message their own listing.
func (s *MessageService) Send(ctx context.Context, fromID primitive.ObjectID, propertyID, text string) (*ports.MessageView, error) {
	if strings.TrimSpace(text) == "" {
		return nil, domain.ErrEmptyMessage
	}
	pid, err := parseID(propertyID)
	if err != nil {
		return nil, err
	}
	prop, err := s.properties.FindByID(ctx, pid)
	if err != nil {
		return nil, err
	}
	if prop.AgentID == fromID {
		return nil, domain.ErrSelfMessage
	}

	msg := &domain.Message{
		PropertyID: pid,
		FromID:     fromID,
		ToID:       prop.AgentID,
		Text:       text,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.messages.Insert(ctx, msg); err != nil {
		s.logger.Error().Err(err).Str("property_id", propertyID).Msg("failed to store message")
		return nil, err
	}

	view, err := s.resolve(ctx, msg, prop)
	if err != nil {
		return nil, err
	}
	s.logger.Info().
		Str("property_id", propertyID).
		Str("from", fromID.Hex()).
		Str("to", prop.AgentID.Hex()).
		Msg("message sent")
	return view, nil
}

// SendTo stores a message to an explicit recipient, which is how agents reply
// to inquirers. One side of the pair must be the listing's agent.
func (s *MessageService) SendTo(ctx context.Context, fromID primitive.ObjectID, toUserID, propertyID, text string) (*ports.MessageView, error) {
	if strings.TrimSpace(text) == "" {
		return nil, domain.ErrEmptyMessage
	}
	to, err := parseID(toUserID)
	if err != nil {
		return nil, err
	}
	if to == fromID {
		return nil, domain.ErrSelfMessage
	}
	pid, err := parseID(propertyID)
	if err != nil {
		return nil, err
	}
	prop, err := s.properties.FindByID(ctx, pid)
	if err != nil {
		return nil, err
	}
	if prop.AgentID != fromID && prop.AgentID != to {
		return nil, domain.ErrForbidden
	}
	if _, err := s.users.FindByID(ctx, to); err != nil {
		return nil, err
	}

	msg := &domain.Message{
		PropertyID: pid,
		FromID:     fromID,
		ToID:       to,
		Text:       text,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.messages.Insert(ctx, msg); err != nil {
		s.logger.Error().Err(err).Str("property_id", propertyID).Msg("failed to store message")
		return nil, err
	}
	return s.resolve(ctx, msg, prop)
}

// Thread returns the property conversation, scoped to messages the caller
// participates in.
func (s *MessageService) Thread(ctx context.Context, userID primitive.ObjectID, propertyID string) ([]ports.MessageView, error) {
	pid, err := parseID(propertyID)
	if err != nil {
		return nil, err
	}
	prop, err := s.properties.FindByID(ctx, pid)
	if err != nil {
		return nil, err
	}

	msgs, err := s.messages.ListThread(ctx, pid, userID)
	if err != nil {
		return nil, err
	}

	views := make([]ports.MessageView, 0, len(msgs))
	for _, m := range msgs {
		v, err := s.resolve(ctx, m, prop)
		if err != nil {
			return nil, err
		}
		views = append(views, *v)
	}
	return views, nil
}

func (s *MessageService) Inbox(ctx context.Context, userID primitive.ObjectID) (*ports.Conversations, error) {
	return s.messages.Conversations(ctx, userID)
}

// MarkRead flips the read marker on everything the other user sent the caller
// in a property thread.
func (s *MessageService) MarkRead(ctx context.Context, userID primitive.ObjectID, propertyID, otherUserID string) error {
	pid, err := parseID(propertyID)
	if err != nil {
		return err
	}
	other, err := parseID(otherUserID)
	if err != nil {
		return err
	}
	_, err = s.messages.MarkRead(ctx, pid, other, userID)
	return err
}

func (s *MessageService) resolve(ctx context.Context, m *domain.Message, prop *domain.Property) (*ports.MessageView, error) {
	users, err := s.users.FindManyByIDs(ctx, []primitive.ObjectID{m.FromID, m.ToID})
	if err != nil {
		return nil, err
	}
	refs := make(map[primitive.ObjectID]ports.UserRef, len(users))
	for _, u := range users {
		refs[u.ID] = ports.UserRef{ID: u.ID.Hex(), Name: u.Name, Email: u.Email}
	}
	return &ports.MessageView{
		ID:        m.ID.Hex(),
		Property:  ports.PropertyRef{ID: prop.ID.Hex(), Title: prop.Title, Images: prop.Images},
		From:      refs[m.FromID],
		To:        refs[m.ToID],
		Text:      m.Text,
		IsRead:    m.IsRead,
		CreatedAt: m.CreatedAt,
	}, nil
}
