package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/estatehub/listing-api/internal/core/domain"
	"github.com/estatehub/listing-api/internal/core/ports"
)

type PropertyRepository struct {
	col *mongo.Collection
}

func NewPropertyRepository(db *mongo.Database) *PropertyRepository {
	return &PropertyRepository{col: db.Collection(collectionProperties)}
}

// Create inserts a new listing document and backfills the generated id.
func (r *PropertyRepository) Create(ctx context.Context, p *domain.Property) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.InsertOne(ctx, p)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		p.ID = oid
	}
	return nil
}

func (r *PropertyRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Property, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var p domain.Property
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrPropertyNotFound
		}
		return nil, err
	}
	return &p, nil
}

// List returns one page of listings matching filter and the total count
// before pagination.
func (r *PropertyRepository) List(ctx context.Context, filter ports.ListFilter) ([]*domain.Property, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	predicate := buildListFilter(filter)

	total, err := r.col.CountDocuments(ctx, predicate)
	if err != nil {
		return nil, 0, err
	}

	skip := int64(filter.Page-1) * int64(filter.Limit)
	opts := options.Find().
		SetSort(buildSort(filter.SortBy, filter.SortOrder)).
		SetSkip(skip).
		SetLimit(int64(filter.Limit))

	cursor, err := r.col.Find(ctx, predicate, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var props []*domain.Property
	if err := cursor.All(ctx, &props); err != nil {
		return nil, 0, err
	}
	return props, total, nil
}

func (r *PropertyRepository) ListByAgent(ctx context.Context, agentID primitive.ObjectID) ([]*domain.Property, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.col.Find(ctx, bson.M{"agent": agentID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var props []*domain.Property
	if err := cursor.All(ctx, &props); err != nil {
		return nil, err
	}
	return props, nil
}

// ListNear returns listings within radiusKm of center ([lng, lat]), newest
// first, excluding excludeID.
func (r *PropertyRepository) ListNear(ctx context.Context, center []float64, radiusKm float64, excludeID primitive.ObjectID, limit int) ([]*domain.Property, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{
		"_id":                  bson.M{"$ne": excludeID},
		"location.coordinates": centerSphere(center[0], center[1], radiusKm),
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var props []*domain.Property
	if err := cursor.All(ctx, &props); err != nil {
		return nil, err
	}
	return props, nil
}

// Update applies the non-nil fields and returns the updated document.
func (r *PropertyRepository) Update(ctx context.Context, id primitive.ObjectID, update ports.PropertyUpdate) (*domain.Property, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := bson.M{"updatedAt": time.Now().UTC()}
	if update.Title != nil {
		set["title"] = *update.Title
	}
	if update.Description != nil {
		set["description"] = *update.Description
	}
	if update.Price != nil {
		set["price"] = *update.Price
	}
	if update.Type != nil {
		set["type"] = *update.Type
	}
	if update.Location != nil {
		set["location"] = *update.Location
	}
	if update.Bedrooms != nil {
		set["bedrooms"] = *update.Bedrooms
	}
	if update.Bathrooms != nil {
		set["bathrooms"] = *update.Bathrooms
	}
	if update.SquareFootage != nil {
		set["squareFootage"] = *update.SquareFootage
	}
	if update.Amenities != nil {
		set["amenities"] = update.Amenities
	}
	if update.Images != nil {
		set["images"] = update.Images
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var p domain.Property
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrPropertyNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *PropertyRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrPropertyNotFound
	}
	return nil
}

// EnsureIndexes creates the indexes the search path depends on, notably the
// 2dsphere index backing geo-radius queries.
func (r *PropertyRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "location.coordinates", Value: "2dsphere"}}},
		{Keys: bson.D{{Key: "agent", Value: 1}}},
		{Keys: bson.D{{Key: "type", Value: 1}, {Key: "price", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
