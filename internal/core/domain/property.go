package domain

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PropertyType classifies a listing.
type PropertyType string

const (
	TypeApartment PropertyType = "apartment"
	TypeHouse     PropertyType = "house"
	TypeOffice    PropertyType = "office"
)

// Valid reports whether t is one of the recognised property types.
func (t PropertyType) Valid() bool {
	switch t {
	case TypeApartment, TypeHouse, TypeOffice:
		return true
	}
	return false
}

var ErrPropertyNotFound = errors.New("property not found")
var ErrForbidden = errors.New("access denied")
var ErrInvalidID = errors.New("invalid id format")
var ErrMissingCoordinates = errors.New("property location not available")

// Location is the physical place of a listing. Coordinates are GeoJSON-ordered:
// [lng, lat].
type Location struct {
	Address     string    `json:"address" bson:"address,omitempty"`
	City        string    `json:"city" bson:"city,omitempty"`
	Region      string    `json:"region" bson:"region,omitempty"`
	Zip         string    `json:"zip" bson:"zip,omitempty"`
	Coordinates []float64 `json:"coordinates" bson:"coordinates"`
}

// Property is a single real-estate listing. Exactly one agent (the owning
// user) is attached at creation and never changes hands.
type Property struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Title          string             `json:"title" bson:"title"`
	Description    string             `json:"description,omitempty" bson:"description,omitempty"`
	Price          float64            `json:"price" bson:"price"`
	Type           PropertyType       `json:"type" bson:"type"`
	Location       Location           `json:"location" bson:"location"`
	Amenities      []string           `json:"amenities" bson:"amenities,omitempty"`
	Bedrooms       int                `json:"bedrooms" bson:"bedrooms,omitempty"`
	Bathrooms      int                `json:"bathrooms" bson:"bathrooms,omitempty"`
	SquareFootage  float64            `json:"squareFootage" bson:"squareFootage,omitempty"`
	Images         []string           `json:"images" bson:"images,omitempty"`
	FloorPlans     []string           `json:"floorPlans,omitempty" bson:"floorPlans,omitempty"`
	VideoTourURL   string             `json:"videoTourUrl,omitempty" bson:"videoTourUrl,omitempty"`
	VirtualTourURL string             `json:"virtualTourUrl,omitempty" bson:"virtualTourUrl,omitempty"`
	AgentID        primitive.ObjectID `json:"agentId" bson:"agent"`
	CreatedAt      time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// OwnedBy reports whether the given user may mutate the listing.
func (p *Property) OwnedBy(userID primitive.ObjectID, role string) bool {
	return role == RoleAdmin || p.AgentID == userID
}
