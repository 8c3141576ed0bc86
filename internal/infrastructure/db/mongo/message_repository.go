package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/estatehub/listing-api/internal/core/domain"
	"github.com/estatehub/listing-api/internal/core/ports"
)

type MessageRepository struct {
	col *mongo.Collection
}

func NewMessageRepository(db *mongo.Database) *MessageRepository {
	return &MessageRepository{col: db.Collection(collectionMessages)}
}

func (r *MessageRepository) Insert(ctx context.Context, m *domain.Message) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.InsertOne(ctx, m)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		m.ID = oid
	}
	return nil
}

// ListThread returns the property thread in chronological order, limited to
// messages the user participates in.
func (r *MessageRepository) ListThread(ctx context.Context, propertyID, userID primitive.ObjectID) ([]*domain.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{
		"property": propertyID,
		"$or": bson.A{
			bson.M{"from": userID},
			bson.M{"to": userID},
		},
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})

	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var msgs []*domain.Message
	if err := cursor.All(ctx, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

func (r *MessageRepository) MarkRead(ctx context.Context, propertyID, fromID, toID primitive.ObjectID) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{
		"property": propertyID,
		"from":     fromID,
		"to":       toID,
		"isRead":   false,
	}
	res, err := r.col.UpdateMany(ctx, filter, bson.M{"$set": bson.M{"isRead": true}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// conversationRow is the shape produced by the inbox aggregation after the
// lookups are unwound.
type conversationRow struct {
	Property struct {
		ID     primitive.ObjectID `bson:"_id"`
		Title  string             `bson:"title"`
		Images []string           `bson:"images"`
		Agent  primitive.ObjectID `bson:"agent"`
	} `bson:"property"`
	OtherUser struct {
		ID    primitive.ObjectID `bson:"_id"`
		Name  string             `bson:"name"`
		Email string             `bson:"email"`
	} `bson:"otherUser"`
	LastMessage     string    `bson:"lastMessage"`
	LastMessageDate time.Time `bson:"lastMessageDate"`
	UnreadCount     int       `bson:"unreadCount"`
}

// Conversations groups the user's messages by (property, counterpart) in one
// aggregation, then splits threads by whether the user owns the listing.
func (r *MessageRepository) Conversations(ctx context.Context, userID primitive.ObjectID) (*ports.Conversations, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"$or": bson.A{
			bson.M{"from": userID},
			bson.M{"to": userID},
		}}}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
		{{Key: "$group", Value: bson.M{
			"_id": bson.M{
				"property": "$property",
				"other": bson.M{"$cond": bson.A{
					bson.M{"$eq": bson.A{"$from", userID}},
					"$to",
					"$from",
				}},
			},
			"lastMessage":     bson.M{"$first": "$message"},
			"lastMessageDate": bson.M{"$first": "$createdAt"},
			"unreadCount": bson.M{"$sum": bson.M{"$cond": bson.A{
				bson.M{"$and": bson.A{
					bson.M{"$eq": bson.A{"$to", userID}},
					bson.M{"$eq": bson.A{"$isRead", false}},
				}},
				1,
				0,
			}}},
		}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         collectionProperties,
			"localField":   "_id.property",
			"foreignField": "_id",
			"as":           "property",
		}}},
		{{Key: "$unwind", Value: "$property"}},
		{{Key: "$lookup", Value: bson.M{
			"from":         collectionUsers,
			"localField":   "_id.other",
			"foreignField": "_id",
			"as":           "otherUser",
		}}},
		{{Key: "$unwind", Value: "$otherUser"}},
		{{Key: "$sort", Value: bson.D{{Key: "lastMessageDate", Value: -1}}}},
	}

	cursor, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []conversationRow
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	out := &ports.Conversations{
		Inquired: []ports.Conversation{},
		Property: []ports.Conversation{},
	}
	for _, row := range rows {
		conv := ports.Conversation{
			Property: ports.PropertyRef{
				ID:     row.Property.ID.Hex(),
				Title:  row.Property.Title,
				Images: row.Property.Images,
			},
			OtherUser: ports.UserRef{
				ID:    row.OtherUser.ID.Hex(),
				Name:  row.OtherUser.Name,
				Email: row.OtherUser.Email,
			},
			LastMessage:     row.LastMessage,
			LastMessageDate: row.LastMessageDate,
			UnreadCount:     row.UnreadCount,
		}
		if row.Property.Agent == userID {
			conv.Type = "property"
			out.Property = append(out.Property, conv)
		} else {
			conv.Type = "inquired"
			out.Inquired = append(out.Inquired, conv)
		}
	}
	return out, nil
}

func (r *MessageRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "property", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "to", Value: 1}, {Key: "isRead", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
