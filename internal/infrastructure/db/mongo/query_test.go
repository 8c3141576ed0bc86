package mongo

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/estatehub/listing-api/internal/core/ports"
)

func f64(v float64) *float64 { return &v }

func TestBuildListFilterPriceRange(t *testing.T) {
	filter := buildListFilter(ports.ListFilter{MinPrice: f64(1000), MaxPrice: f64(2000)})

	price, ok := filter["price"].(bson.M)
	if !ok {
		t.Fatalf("price predicate missing: %v", filter)
	}
	if price["$gte"] != 1000.0 || price["$lte"] != 2000.0 {
		t.Fatalf("price = %v, want combined $gte/$lte", price)
	}
}

func TestBuildListFilterAmenitiesAreConjunctive(t *testing.T) {
	filter := buildListFilter(ports.ListFilter{Amenities: []string{"pool", "gym"}})

	all, ok := filter["amenities"].(bson.M)
	if !ok {
		t.Fatalf("amenities predicate missing: %v", filter)
	}
	tags, ok := all["$all"].([]string)
	if !ok || len(tags) != 2 {
		t.Fatalf("amenities = %v, want $all with both tags", all)
	}
}

func TestBuildListFilterQueryTakesPrecedenceOverCity(t *testing.T) {
	filter := buildListFilter(ports.ListFilter{Query: "loft", City: "Pune"})

	or, ok := filter["$or"].(bson.A)
	if !ok {
		t.Fatalf("$or missing: %v", filter)
	}
	// The free-text group includes an amenities clause; the city group does not.
	found := false
	for _, clause := range or {
		if m, ok := clause.(bson.M); ok {
			if _, ok := m["amenities"]; ok {
				found = true
			}
		}
	}
	if !found {
		t.Fatalf("$or = %v, want the free-text group, not the city group", or)
	}
}

func TestBuildListFilterCityMatchesBroadly(t *testing.T) {
	filter := buildListFilter(ports.ListFilter{City: "Pune"})

	or, ok := filter["$or"].(bson.A)
	if !ok || len(or) != 5 {
		t.Fatalf("$or = %v, want the five location-ish clauses", filter["$or"])
	}
}

func TestBuildListFilterGeo(t *testing.T) {
	filter := buildListFilter(ports.ListFilter{
		Geo: &ports.GeoFilter{Lat: 12.97, Lng: 77.59, RadiusKm: 10},
	})

	coords, ok := filter["location.coordinates"].(bson.M)
	if !ok {
		t.Fatalf("geo predicate missing: %v", filter)
	}
	within, ok := coords["$geoWithin"].(bson.M)
	if !ok {
		t.Fatalf("$geoWithin missing: %v", coords)
	}
	sphere, ok := within["$centerSphere"].(bson.A)
	if !ok || len(sphere) != 2 {
		t.Fatalf("$centerSphere = %v", within["$centerSphere"])
	}
	center, ok := sphere[0].(bson.A)
	if !ok || center[0] != 77.59 || center[1] != 12.97 {
		t.Fatalf("center = %v, want [lng lat]", sphere[0])
	}
	if sphere[1] != 10/earthRadiusKm {
		t.Fatalf("radius = %v, want km converted to radians", sphere[1])
	}
}

func TestBuildListFilterEmpty(t *testing.T) {
	filter := buildListFilter(ports.ListFilter{})
	if len(filter) != 0 {
		t.Fatalf("empty filter produced %v", filter)
	}
}

func TestBuildSortAllowList(t *testing.T) {
	cases := []struct {
		sortBy, sortOrder string
		wantField         string
		wantOrder         int
	}{
		{"price", "asc", "price", 1},
		{"price", "desc", "price", -1},
		{"bedrooms", "", "bedrooms", 1},
		{"createdAt", "desc", "createdAt", -1},
		// Not on the allow-list: fall back to newest first.
		{"password", "asc", "createdAt", -1},
		{"__proto__", "desc", "createdAt", -1},
		{"", "", "createdAt", -1},
	}
	for _, tc := range cases {
		sort := buildSort(tc.sortBy, tc.sortOrder)
		if len(sort) != 1 || sort[0].Key != tc.wantField || sort[0].Value != tc.wantOrder {
			t.Fatalf("buildSort(%q, %q) = %v, want {%s: %d}", tc.sortBy, tc.sortOrder, sort, tc.wantField, tc.wantOrder)
		}
	}
}

func TestCiRegexEscapesMetacharacters(t *testing.T) {
	rx := ciRegex("2br (city) $1000+")
	want := `2br \(city\) \$1000\+`
	if rx.Pattern != want {
		t.Fatalf("pattern = %q, want %q", rx.Pattern, want)
	}
	if rx.Options != "i" {
		t.Fatalf("options = %q, want case-insensitive", rx.Options)
	}
}
