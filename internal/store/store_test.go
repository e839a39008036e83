package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/palmvoyage/tripfund/internal/model"
	"github.com/shopspring/decimal"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "data", "trips.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	clock := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return s
}

func sampleTrip() model.Trip {
	start := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	lat, lng := 38.72, -9.14
	perPerson := decimal.RequireFromString("125.50")
	months := 6

	t := model.NewTrip("Lisbon & Porto")
	t.LodgingMode = model.LodgingPerStop
	t.FlightCost = decimal.RequireFromString("320.40")
	t.AdditionalExpenses = decimal.NewFromInt(150)
	t.Passengers = 2
	t.StartDate = &start
	t.TargetDate = &start
	t.Funding.MonthlyPerPerson = &perPerson
	t.Funding.Months = &months
	t.Destinations = []model.Destination{
		{Country: "Portugal", City: "Lisbon", HasLodging: true, Nights: 3, PricePerNight: decimal.NewFromInt(90),
			Latitude: &lat, Longitude: &lng, PlaceID: "abc", FormattedAddress: "Lisbon, Portugal"},
		{Country: "Portugal", City: "Porto", HasLodging: false},
	}
	return t
}

func TestSaveAndGetTrip(t *testing.T) {
	s := openTestStore(t)
	trip := sampleTrip()
	if err := s.SaveTrip(&trip); err != nil {
		t.Fatalf("SaveTrip: %v", err)
	}

	got, err := s.GetTrip(trip.ID)
	if err != nil {
		t.Fatalf("GetTrip: %v", err)
	}
	if got.Name != trip.Name || got.Passengers != 2 || got.LodgingMode != model.LodgingPerStop {
		t.Fatalf("trip = %+v", got)
	}
	if !got.FlightCost.Equal(trip.FlightCost) {
		t.Fatalf("flight = %s, want %s", got.FlightCost, trip.FlightCost)
	}
	if got.StartDate == nil || !got.StartDate.Equal(*trip.StartDate) {
		t.Fatalf("start = %v, want %v", got.StartDate, trip.StartDate)
	}
	if got.EndDate != nil {
		t.Fatalf("end = %v, want nil", got.EndDate)
	}
	if got.Funding.MonthlyPerPerson == nil || !got.Funding.MonthlyPerPerson.Equal(decimal.RequireFromString("125.5")) {
		t.Fatalf("monthly per person = %v", got.Funding.MonthlyPerPerson)
	}
	if got.Funding.MonthlyTotal != nil {
		t.Fatalf("monthly total = %v, want nil", got.Funding.MonthlyTotal)
	}
	if got.Funding.Months == nil || *got.Funding.Months != 6 {
		t.Fatalf("funding months = %v, want 6", got.Funding.Months)
	}

	if len(got.Destinations) != 2 {
		t.Fatalf("destinations = %d, want 2", len(got.Destinations))
	}
	lisbon := got.Destinations[0]
	if lisbon.City != "Lisbon" || lisbon.Nights != 3 || !lisbon.PricePerNight.Equal(decimal.NewFromInt(90)) {
		t.Fatalf("first stop = %+v", lisbon)
	}
	if !lisbon.Located() || *lisbon.Latitude != 38.72 || lisbon.PlaceID != "abc" {
		t.Fatalf("first stop location = %+v", lisbon)
	}
	if got.Destinations[1].HasLodging || got.Destinations[1].Located() {
		t.Fatalf("second stop = %+v", got.Destinations[1])
	}
}

func TestSaveTrip_ReplacesDestinations(t *testing.T) {
	s := openTestStore(t)
	trip := sampleTrip()
	if err := s.SaveTrip(&trip); err != nil {
		t.Fatalf("SaveTrip: %v", err)
	}
	created := trip.CreatedAt

	trip.Destinations = trip.Destinations[:1]
	trip.Name = "Lisbon only"
	if err := s.SaveTrip(&trip); err != nil {
		t.Fatalf("SaveTrip update: %v", err)
	}

	got, err := s.GetTrip(trip.ID)
	if err != nil {
		t.Fatalf("GetTrip: %v", err)
	}
	if got.Name != "Lisbon only" || len(got.Destinations) != 1 {
		t.Fatalf("updated trip = %q with %d stops", got.Name, len(got.Destinations))
	}
	if !got.CreatedAt.Equal(created) {
		t.Fatalf("created_at changed: %v -> %v", created, got.CreatedAt)
	}
	if !got.UpdatedAt.After(created) {
		t.Fatalf("updated_at %v not after %v", got.UpdatedAt, created)
	}
}

func TestListTrips_NewestFirst(t *testing.T) {
	s := openTestStore(t)
	var ids []uuid.UUID
	for _, name := range []string{"first", "second", "third"} {
		trip := sampleTrip()
		trip.Name = name
		if err := s.SaveTrip(&trip); err != nil {
			t.Fatalf("SaveTrip: %v", err)
		}
		ids = append(ids, trip.ID)
	}

	trips, err := s.ListTrips()
	if err != nil {
		t.Fatalf("ListTrips: %v", err)
	}
	if len(trips) != 3 {
		t.Fatalf("trips = %d, want 3", len(trips))
	}
	if trips[0].Name != "third" || trips[2].Name != "first" {
		t.Fatalf("order = %s, %s, %s", trips[0].Name, trips[1].Name, trips[2].Name)
	}
	for _, tr := range trips {
		if len(tr.Destinations) != 2 {
			t.Fatalf("%s has %d stops, want 2", tr.Name, len(tr.Destinations))
		}
	}

	n, err := s.TripCount()
	if err != nil || n != 3 {
		t.Fatalf("TripCount = %d, %v", n, err)
	}
}

func TestDeleteTrip(t *testing.T) {
	s := openTestStore(t)
	trip := sampleTrip()
	if err := s.SaveTrip(&trip); err != nil {
		t.Fatalf("SaveTrip: %v", err)
	}
	if err := s.DeleteTrip(trip.ID); err != nil {
		t.Fatalf("DeleteTrip: %v", err)
	}
	if _, err := s.GetTrip(trip.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetTrip after delete = %v, want ErrNotFound", err)
	}
	if err := s.DeleteTrip(trip.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second DeleteTrip = %v, want ErrNotFound", err)
	}

	var stops int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM trip_destinations").Scan(&stops); err != nil {
		t.Fatalf("count stops: %v", err)
	}
	if stops != 0 {
		t.Fatalf("orphan destinations = %d, want 0", stops)
	}
}

func TestFindTrip(t *testing.T) {
	s := openTestStore(t)
	a := sampleTrip()
	a.ID = uuid.MustParse("aaaa1111-0000-4000-8000-000000000001")
	b := sampleTrip()
	b.ID = uuid.MustParse("aaaa2222-0000-4000-8000-000000000002")
	for _, tr := range []*model.Trip{&a, &b} {
		if err := s.SaveTrip(tr); err != nil {
			t.Fatalf("SaveTrip: %v", err)
		}
	}

	got, err := s.FindTrip("AAAA2")
	if err != nil || got.ID != b.ID {
		t.Fatalf("FindTrip(prefix) = %v, %v", got.ID, err)
	}
	if _, err := s.FindTrip("aaaa"); !errors.Is(err, ErrAmbiguous) {
		t.Fatalf("FindTrip(ambiguous) = %v, want ErrAmbiguous", err)
	}
	if _, err := s.FindTrip("ffff"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("FindTrip(missing) = %v, want ErrNotFound", err)
	}
	if got, err := s.FindTrip(a.ID.String()); err != nil || got.ID != a.ID {
		t.Fatalf("FindTrip(full) = %v, %v", got.ID, err)
	}
}

func TestFingerprintChanges(t *testing.T) {
	s := openTestStore(t)
	before, err := s.Fingerprint()
	if err != nil {
		t.Fatalf("Fingerprint: %v", err)
	}
	trip := sampleTrip()
	if err := s.SaveTrip(&trip); err != nil {
		t.Fatalf("SaveTrip: %v", err)
	}
	afterAdd, _ := s.Fingerprint()
	if afterAdd == before {
		t.Fatal("fingerprint unchanged after insert")
	}
	if err := s.SaveTrip(&trip); err != nil {
		t.Fatalf("SaveTrip: %v", err)
	}
	afterUpdate, _ := s.Fingerprint()
	if afterUpdate == afterAdd {
		t.Fatal("fingerprint unchanged after update")
	}
}

func TestImportTracker(t *testing.T) {
	s := openTestStore(t)
	if err := s.TrackFile("/tmp/a.yaml", FileInfo{MtimeNs: 10, SizeBytes: 20}); err != nil {
		t.Fatalf("TrackFile: %v", err)
	}
	tracked, err := s.GetTrackedFiles()
	if err != nil {
		t.Fatalf("GetTrackedFiles: %v", err)
	}
	if tracked["/tmp/a.yaml"] != (FileInfo{MtimeNs: 10, SizeBytes: 20}) {
		t.Fatalf("tracked = %+v", tracked)
	}
	if err := s.DeleteFileTracker("/tmp/a.yaml"); err != nil {
		t.Fatalf("DeleteFileTracker: %v", err)
	}
	tracked, _ = s.GetTrackedFiles()
	if len(tracked) != 0 {
		t.Fatalf("tracked after delete = %+v", tracked)
	}
}
