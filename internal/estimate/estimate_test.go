package estimate

import (
	"errors"
	"testing"
	"time"

	"github.com/palmvoyage/tripfund/internal/model"
	"github.com/palmvoyage/tripfund/internal/planner"
	"github.com/shopspring/decimal"
)

var today = time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func sampleTrip() model.Trip {
	t := model.NewTrip("Portugal")
	t.FlightCost = dec("400")
	t.AccommodationCost = dec("600")
	t.AdditionalExpenses = dec("200")
	t.Passengers = 2
	t.Destinations = []model.Destination{
		{Country: "Portugal", City: "Lisbon", HasLodging: true, Nights: 3, PricePerNight: dec("80")},
		{Country: "Portugal", City: "Porto", HasLodging: false},
		{Country: "Portugal", City: "Faro", HasLodging: true, Nights: 2, PricePerNight: dec("55.50")},
	}
	return t
}

func TestBreakdown_GlobalLodging(t *testing.T) {
	b := Breakdown(sampleTrip())
	if !b.Accommodation.Equal(dec("600")) {
		t.Fatalf("accommodation = %s, want 600", b.Accommodation)
	}
	if !b.Total.Equal(dec("1200")) {
		t.Fatalf("total = %s, want 1200", b.Total)
	}
	if !b.PerPerson.Equal(dec("600")) {
		t.Fatalf("per person = %s, want 600", b.PerPerson)
	}
	if len(b.Shares) != 3 {
		t.Fatalf("shares = %d, want 3", len(b.Shares))
	}
	if b.Shares[1].Category != model.ExpenseAccommodation || b.Shares[1].Percent != 50 {
		t.Fatalf("accommodation share = %+v, want 50%%", b.Shares[1])
	}
}

func TestBreakdown_PerStopLodging(t *testing.T) {
	trip := sampleTrip()
	trip.LodgingMode = model.LodgingPerStop
	b := Breakdown(trip)
	// 3*80 + 2*55.50, Porto has no lodging
	if !b.Accommodation.Equal(dec("351")) {
		t.Fatalf("accommodation = %s, want 351", b.Accommodation)
	}
	if !b.Total.Equal(dec("951")) {
		t.Fatalf("total = %s, want 951", b.Total)
	}
}

func TestBreakdown_SkipsZeroShares(t *testing.T) {
	trip := model.NewTrip("Weekend")
	trip.FlightCost = dec("300")
	b := Breakdown(trip)
	if len(b.Shares) != 1 || b.Shares[0].Category != model.ExpenseFlight || b.Shares[0].Percent != 100 {
		t.Fatalf("shares = %+v, want flight only at 100%%", b.Shares)
	}

	empty := Breakdown(model.NewTrip("Nothing"))
	if empty.Shares != nil {
		t.Fatalf("shares of empty trip = %+v, want none", empty.Shares)
	}
}

func TestBreakdown_ZeroPassengers(t *testing.T) {
	trip := sampleTrip()
	trip.Passengers = 0
	b := Breakdown(trip)
	if !b.PerPerson.Equal(b.Total) || b.Passengers != 1 {
		t.Fatalf("per person = %s with %d pax, want total with 1", b.PerPerson, b.Passengers)
	}
}

func TestValidate_OK(t *testing.T) {
	trip := sampleTrip()
	start := today.AddDate(0, 2, 0)
	end := start.AddDate(0, 0, 10)
	trip.StartDate, trip.EndDate = &start, &end
	if err := Validate(trip, today); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if err := Validate(trip, start); err != nil {
		t.Fatalf("Validate on departure day: %v", err)
	}
}

func TestValidate_Failures(t *testing.T) {
	trip := sampleTrip()
	trip.Name = "  "
	trip.Passengers = 0
	trip.LodgingMode = model.LodgingPerStop
	trip.Destinations[2].PricePerNight = decimal.Zero
	trip.Destinations = append(trip.Destinations, model.Destination{City: "Braga"})
	start := today.AddDate(0, 0, -1)
	end := start.AddDate(0, 0, -3)
	trip.StartDate, trip.EndDate = &start, &end

	err := Validate(trip, today)
	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("err = %v, want ValidationErrors", err)
	}
	for _, field := range []string{"name", "destinations", "passengers", "start_date", "end_date", "lodging"} {
		if !verrs.Has(field) {
			t.Errorf("missing %s error in %v", field, err)
		}
	}
	if verrs[0].Field != "name" {
		t.Fatalf("first error = %s, want name", verrs[0].Field)
	}
}

func TestValidate_NoDestinations(t *testing.T) {
	trip := model.NewTrip("Somewhere")
	err := Validate(trip, today)
	var verrs ValidationErrors
	if !errors.As(err, &verrs) || !verrs.Has("destinations") {
		t.Fatalf("err = %v, want destinations error", err)
	}
}

func TestApplyPlanAndDepartOnceFunded(t *testing.T) {
	trip := sampleTrip()
	start := today.AddDate(0, 0, 30)
	end := start.AddDate(0, 0, 7)
	trip.StartDate, trip.EndDate = &start, &end

	override := dec("100")
	res, err := planner.Plan(today, PlanInputs(trip), &override)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	ApplyPlan(&trip, res)
	// 1200 / (100 * 2) = 6 months
	if trip.Funding.Months == nil || *trip.Funding.Months != 6 {
		t.Fatalf("funding months = %v, want 6", trip.Funding.Months)
	}
	if !trip.Funding.MonthlyTotal.Equal(dec("200")) {
		t.Fatalf("monthly total = %s, want 200", trip.Funding.MonthlyTotal)
	}

	if !DepartOnceFunded(&trip) {
		t.Fatal("DepartOnceFunded = false with a funding date")
	}
	wantStart := today.AddDate(0, 0, 180)
	if !trip.StartDate.Equal(wantStart) {
		t.Fatalf("start = %s, want %s", trip.StartDate, wantStart)
	}
	if !trip.EndDate.Equal(wantStart.AddDate(0, 0, 7)) {
		t.Fatalf("end = %s, want one week later", trip.EndDate)
	}
	if trip.TargetDate != trip.StartDate {
		t.Fatal("target date not mirrored")
	}
}

func TestDepartOnceFunded_NoPlan(t *testing.T) {
	trip := sampleTrip()
	if DepartOnceFunded(&trip) {
		t.Fatal("DepartOnceFunded = true without funding date")
	}
}
