package mongo

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/estatehub/listing-api/internal/core/ports"
)

// earthRadiusKm converts a kilometre radius to radians for $centerSphere.
const earthRadiusKm = 6378.1

// allowedSortFields is the sort allow-list. Anything else falls back to the
// default newest-first ordering; field names are never passed through to the
// datastore verbatim.
var allowedSortFields = map[string]string{
	"price":         "price",
	"createdAt":     "createdAt",
	"bedrooms":      "bedrooms",
	"bathrooms":     "bathrooms",
	"squareFootage": "squareFootage",
	"title":         "title",
}

// buildListFilter translates the search parameters into a Mongo predicate.
//
// Precedence of the OR groups: a free-text Query searches title, description,
// location fields and amenities; when absent, City runs its broad
// location-ish OR. They never combine.
func buildListFilter(f ports.ListFilter) bson.M {
	filter := bson.M{}

	if f.Query != "" {
		rx := ciRegex(f.Query)
		filter["$or"] = bson.A{
			bson.M{"title": rx},
			bson.M{"description": rx},
			bson.M{"location.city": rx},
			bson.M{"location.region": rx},
			bson.M{"location.address": rx},
			bson.M{"amenities": bson.M{"$in": bson.A{rx}}},
		}
	} else if f.City != "" {
		rx := ciRegex(f.City)
		filter["$or"] = bson.A{
			bson.M{"location.city": rx},
			bson.M{"location.region": rx},
			bson.M{"location.address": rx},
			bson.M{"title": rx},
			bson.M{"description": rx},
		}
	}

	if f.Type != "" {
		filter["type"] = f.Type
	}

	if f.MinPrice != nil || f.MaxPrice != nil {
		price := bson.M{}
		if f.MinPrice != nil {
			price["$gte"] = *f.MinPrice
		}
		if f.MaxPrice != nil {
			price["$lte"] = *f.MaxPrice
		}
		filter["price"] = price
	}

	if f.Bedrooms != nil {
		filter["bedrooms"] = bson.M{"$gte": *f.Bedrooms}
	}

	// Conjunctive: the listing's amenity set must contain every requested tag.
	if len(f.Amenities) > 0 {
		filter["amenities"] = bson.M{"$all": f.Amenities}
	}

	if f.Geo != nil {
		filter["location.coordinates"] = centerSphere(f.Geo.Lng, f.Geo.Lat, f.Geo.RadiusKm)
	}

	return filter
}

// buildSort maps sortBy/sortOrder onto an allow-listed sort document.
// Default is newest first.
func buildSort(sortBy, sortOrder string) bson.D {
	field, ok := allowedSortFields[sortBy]
	if !ok {
		return bson.D{{Key: "createdAt", Value: -1}}
	}
	order := 1
	if sortOrder == "desc" {
		order = -1
	}
	return bson.D{{Key: field, Value: order}}
}

// centerSphere builds a spherical-cap containment query around [lng, lat].
func centerSphere(lng, lat, radiusKm float64) bson.M {
	return bson.M{
		"$geoWithin": bson.M{
			"$centerSphere": bson.A{bson.A{lng, lat}, radiusKm / earthRadiusKm},
		},
	}
}

// ciRegex builds a case-insensitive substring matcher.
func ciRegex(s string) primitive.Regex {
	return primitive.Regex{Pattern: escapeRegex(s), Options: "i"}
}

// escapeRegex neutralises regex metacharacters so user input is matched
// literally.
func escapeRegex(s string) string {
	const meta = `\.+*?()|[]{}^$`
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		for j := 0; j < len(meta); j++ {
			if c == meta[j] {
				out = append(out, '\\')
				break
			}
		}
		out = append(out, c)
	}
	return string(out)
}
