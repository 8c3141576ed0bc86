package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func filterFor(t *testing.T, query string) echo.Context {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/properties?"+query, nil)
	return e.NewContext(req, httptest.NewRecorder())
}

func TestParseListFilterFullQuery(t *testing.T) {
	c := filterFor(t, "minPrice=1000&maxPrice=2000&city=Pune&amenities=pool,%20gym,&bedrooms=2&sortBy=price&sortOrder=asc&page=2&limit=20")
	f := parseListFilter(c)

	if f.MinPrice == nil || *f.MinPrice != 1000 {
		t.Fatalf("minPrice = %v, want 1000", f.MinPrice)
	}
	if f.MaxPrice == nil || *f.MaxPrice != 2000 {
		t.Fatalf("maxPrice = %v, want 2000", f.MaxPrice)
	}
	if f.City != "Pune" {
		t.Fatalf("city = %q", f.City)
	}
	if len(f.Amenities) != 2 || f.Amenities[0] != "pool" || f.Amenities[1] != "gym" {
		t.Fatalf("amenities = %v, want trimmed [pool gym]", f.Amenities)
	}
	if f.Bedrooms == nil || *f.Bedrooms != 2 {
		t.Fatalf("bedrooms = %v, want 2", f.Bedrooms)
	}
	if f.SortBy != "price" || f.SortOrder != "asc" {
		t.Fatalf("sort = %q/%q", f.SortBy, f.SortOrder)
	}
	if f.Page != 2 || f.Limit != 20 {
		t.Fatalf("page/limit = %d/%d", f.Page, f.Limit)
	}
}

func TestParseListFilterDropsMalformedNumerics(t *testing.T) {
	c := filterFor(t, "minPrice=cheap&maxPrice=2000&bedrooms=many")
	f := parseListFilter(c)

	if f.MinPrice != nil {
		t.Fatalf("minPrice = %v, want dropped", *f.MinPrice)
	}
	if f.MaxPrice == nil || *f.MaxPrice != 2000 {
		t.Fatalf("maxPrice = %v, want the valid bound kept", f.MaxPrice)
	}
	if f.Bedrooms != nil {
		t.Fatalf("bedrooms = %v, want dropped", *f.Bedrooms)
	}
}

func TestParseListFilterGeoNeedsAllThreeParams(t *testing.T) {
	partial := []string{
		"lat=12.97",
		"lat=12.97&lng=77.59",
		"lng=77.59&radius=10",
		"lat=12.97&lng=77.59&radius=oops",
		"lat=12.97&lng=77.59&radius=0",
	}
	for _, q := range partial {
		if f := parseListFilter(filterFor(t, q)); f.Geo != nil {
			t.Fatalf("query %q produced a geo filter: %+v", q, f.Geo)
		}
	}

	f := parseListFilter(filterFor(t, "lat=12.97&lng=77.59&radius=10"))
	if f.Geo == nil || f.Geo.Lat != 12.97 || f.Geo.Lng != 77.59 || f.Geo.RadiusKm != 10 {
		t.Fatalf("geo = %+v, want all three applied", f.Geo)
	}
}

func TestSearchCacheParamsIgnoresUnknownKeys(t *testing.T) {
	c := filterFor(t, "city=Pune&limit=20&utm_source=mailer&debug=1")
	params := searchCacheParams(c)

	if len(params) != 2 {
		t.Fatalf("params = %v, want only recognised keys", params)
	}
	if params["city"] != "Pune" || params["limit"] != "20" {
		t.Fatalf("params = %v", params)
	}
}
