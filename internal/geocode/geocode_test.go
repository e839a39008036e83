package geocode

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/palmvoyage/tripfund/internal/model"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient("test-key", srv.URL)
}

func TestNewClient_EmptyKey(t *testing.T) {
	if NewClient("  ", "") != nil {
		t.Fatal("NewClient with blank key should return nil")
	}
	c := NewClient("k", "")
	if c == nil || c.baseURL != DefaultBaseURL {
		t.Fatalf("NewClient default base = %+v", c)
	}
}

func TestGeocode_OK(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("address"); got != "Lisbon, Portugal" {
			t.Errorf("address = %q", got)
		}
		if got := r.URL.Query().Get("key"); got != "test-key" {
			t.Errorf("key = %q", got)
		}
		_, _ = w.Write([]byte(`{"status":"OK","results":[
			{"formatted_address":"Lisbon, Portugal","place_id":"ChIJ","geometry":{"location":{"lat":38.72,"lng":-9.14}}},
			{"formatted_address":"Other","place_id":"x","geometry":{"location":{"lat":1,"lng":2}}}]}`))
	})

	loc, err := c.Geocode(context.Background(), " Lisbon ", "Portugal")
	if err != nil {
		t.Fatalf("Geocode: %v", err)
	}
	if loc.Latitude != 38.72 || loc.Longitude != -9.14 || loc.PlaceID != "ChIJ" {
		t.Fatalf("loc = %+v", loc)
	}
}

func TestGeocode_Statuses(t *testing.T) {
	tests := []struct {
		name   string
		code   int
		body   string
		target error
	}{
		{"zero results", 200, `{"status":"ZERO_RESULTS","results":[]}`, ErrNotFound},
		{"denied", 200, `{"status":"REQUEST_DENIED","error_message":"bad key"}`, ErrUnauthorized},
		{"quota", 200, `{"status":"OVER_QUERY_LIMIT"}`, ErrRateLimited},
		{"http 429", 429, ``, ErrRateLimited},
		{"http 403", 403, ``, ErrUnauthorized},
		{"ok but empty", 200, `{"status":"OK","results":[]}`, ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.code)
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := c.Geocode(context.Background(), "Nowhere", "Land")
			if !errors.Is(err, tt.target) {
				t.Fatalf("err = %v, want %v", err, tt.target)
			}
		})
	}
}

func TestGeocode_UnknownStatus(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"INVALID_REQUEST","error_message":"missing address"}`))
	})
	_, err := c.Geocode(context.Background(), "", "")
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want generic status error", err)
	}
}

type countingGeocoder struct {
	calls int
	err   error
}

func (g *countingGeocoder) Geocode(_ context.Context, city, _ string) (Location, error) {
	g.calls++
	if g.err != nil {
		return Location{}, g.err
	}
	return Location{Latitude: 1, Longitude: 2, FormattedAddress: city}, nil
}

func TestCached(t *testing.T) {
	inner := &countingGeocoder{}
	cache := NewMemoryCache()
	g := NewCached(inner, cache, nil)

	for i := 0; i < 3; i++ {
		loc, err := g.Geocode(context.Background(), "Porto", "Portugal")
		if err != nil {
			t.Fatalf("Geocode: %v", err)
		}
		if loc.FormattedAddress != "Porto" {
			t.Fatalf("loc = %+v", loc)
		}
	}
	if _, err := g.Geocode(context.Background(), "  porto ", "PORTUGAL"); err != nil {
		t.Fatalf("Geocode normalised: %v", err)
	}
	if inner.calls != 1 {
		t.Fatalf("inner calls = %d, want 1", inner.calls)
	}
	if cache.Len() != 1 {
		t.Fatalf("cache entries = %d, want 1", cache.Len())
	}
}

func TestCached_ErrorsNotCached(t *testing.T) {
	inner := &countingGeocoder{err: ErrNotFound}
	cache := NewMemoryCache()
	g := NewCached(inner, cache, nil)
	for i := 0; i < 2; i++ {
		if _, err := g.Geocode(context.Background(), "X", "Y"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("err = %v", err)
		}
	}
	if inner.calls != 2 || cache.Len() != 0 {
		t.Fatalf("calls = %d, entries = %d", inner.calls, cache.Len())
	}
}

func TestFill(t *testing.T) {
	lat, lng := 9.0, 9.0
	trip := model.Trip{ID: uuid.New(), Destinations: []model.Destination{
		{City: "Lisbon", Country: "Portugal"},
		{City: "Porto", Country: "Portugal", Latitude: &lat, Longitude: &lng},
		{City: "", Country: "Portugal"},
	}}
	inner := &countingGeocoder{}
	if n := Fill(context.Background(), inner, &trip, nil); n != 1 {
		t.Fatalf("Fill = %d, want 1", n)
	}
	if inner.calls != 1 {
		t.Fatalf("calls = %d, want 1", inner.calls)
	}
	if !trip.Destinations[0].Located() || trip.Destinations[0].FormattedAddress != "Lisbon" {
		t.Fatalf("first stop = %+v", trip.Destinations[0])
	}
	if *trip.Destinations[1].Latitude != 9 {
		t.Fatal("located stop overwritten")
	}
}

func TestFill_FailureIsNonBlocking(t *testing.T) {
	trip := model.Trip{Destinations: []model.Destination{{City: "A", Country: "B"}, {City: "C", Country: "D"}}}
	inner := &countingGeocoder{err: ErrRateLimited}
	if n := Fill(context.Background(), inner, &trip, nil); n != 0 {
		t.Fatalf("Fill = %d, want 0", n)
	}
	if inner.calls != 2 {
		t.Fatalf("calls = %d, want every stop attempted", inner.calls)
	}
	if Fill(context.Background(), nil, &trip, nil) != 0 {
		t.Fatal("nil geocoder located stops")
	}
}
