package handler

import (
	"time"

	"github.com/estatehub/listing-api/internal/core/domain"
)

// --- Request types ---

type locationRequest struct {
	Address     string    `json:"address"`
	City        string    `json:"city"`
	Region      string    `json:"region"`
	Zip         string    `json:"zip"`
	Coordinates []float64 `json:"coordinates"` // [lng, lat]
}

type createPropertyRequest struct {
	Title          string          `json:"title" validate:"required"`
	Description    string          `json:"description"`
	Price          float64         `json:"price" validate:"required,gt=0"`
	Type           string          `json:"type" validate:"required,oneof=apartment house office"`
	Location       locationRequest `json:"location" validate:"required"`
	Amenities      []string        `json:"amenities"`
	Bedrooms       int             `json:"bedrooms" validate:"gte=0"`
	Bathrooms      int             `json:"bathrooms" validate:"gte=0"`
	SquareFootage  float64         `json:"squareFootage" validate:"gte=0"`
	Images         []string        `json:"images"`
	FloorPlans     []string        `json:"floorPlans"`
	VideoTourURL   string          `json:"videoTourUrl"`
	VirtualTourURL string          `json:"virtualTourUrl"`
}

type updatePropertyRequest struct {
	Title         *string          `json:"title"`
	Description   *string          `json:"description"`
	Price         *float64         `json:"price" validate:"omitempty,gt=0"`
	Type          *string          `json:"type" validate:"omitempty,oneof=apartment house office"`
	Location      *locationRequest `json:"location"`
	Bedrooms      *int             `json:"bedrooms"`
	Bathrooms     *int             `json:"bathrooms"`
	SquareFootage *float64         `json:"squareFootage"`
	Amenities     []string         `json:"amenities"`
	Images        []string         `json:"images"`
}

// --- Response types ---

type agentResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type propertyResponse struct {
	ID             string          `json:"id"`
	Title          string          `json:"title"`
	Description    string          `json:"description,omitempty"`
	Price          float64         `json:"price"`
	Type           string          `json:"type"`
	Location       domain.Location `json:"location"`
	Amenities      []string        `json:"amenities"`
	Bedrooms       int             `json:"bedrooms"`
	Bathrooms      int             `json:"bathrooms"`
	SquareFootage  float64         `json:"squareFootage"`
	Images         []string        `json:"images"`
	FloorPlans     []string        `json:"floorPlans,omitempty"`
	VideoTourURL   string          `json:"videoTourUrl,omitempty"`
	VirtualTourURL string          `json:"virtualTourUrl,omitempty"`
	Agent          agentResponse   `json:"agent"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

type listPropertiesResponse struct {
	Total      int64              `json:"total"`
	Page       int                `json:"page"`
	Pages      int                `json:"pages"`
	Properties []propertyResponse `json:"properties"`
}

type nearbyPropertiesResponse struct {
	Center     []float64          `json:"center"`
	RadiusKm   float64            `json:"radiusKm"`
	Properties []propertyResponse `json:"properties"`
}
