package planner

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

var today = time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func datePtr(t time.Time) *time.Time { return &t }

func mustPlan(t *testing.T, in Inputs, override *decimal.Decimal) Result {
	t.Helper()
	res, err := Plan(today, in, override)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	return res
}

func wantDec(t *testing.T, name string, got *decimal.Decimal, want string) {
	t.Helper()
	if got == nil {
		t.Fatalf("%s = nil, want %s", name, want)
	}
	if !got.Equal(dec(want)) {
		t.Fatalf("%s = %s, want %s", name, got, want)
	}
}

func TestPlan_NinetyDays(t *testing.T) {
	res := mustPlan(t, Inputs{
		TotalCost:  dec("1200"),
		Passengers: 2,
		Departure:  datePtr(AddDays(today, 90)),
	}, nil)

	if m, ok := res.Horizon.Months(); !ok || m != 3 {
		t.Fatalf("months until departure = %d (known=%v), want 3", m, ok)
	}
	wantDec(t, "required total", res.RequiredMonthlyTotal, "400")
	wantDec(t, "required per person", res.RequiredMonthlyPerPerson, "200")
	if res.ChosenFrom != SourceRequired {
		t.Fatalf("chosen from = %v, want required", res.ChosenFrom)
	}
	if m, ok := res.Projection.Months(); !ok || m != 3 {
		t.Fatalf("months needed = %d, want 3", m)
	}
	if res.Feasibility != Feasible {
		t.Fatalf("feasibility = %v, want feasible", res.Feasibility)
	}
}

func TestPlan_PastDepartureIsInvalid(t *testing.T) {
	_, err := Plan(today, Inputs{
		TotalCost:  dec("1200"),
		Passengers: 2,
		Departure:  datePtr(AddDays(today, -1)),
	}, nil)

	var dateErr *InvalidDateError
	if !errors.As(err, &dateErr) {
		t.Fatalf("err = %v, want *InvalidDateError", err)
	}
	if !errors.Is(err, ErrInvalidDate) {
		t.Fatal("errors.Is(err, ErrInvalidDate) = false")
	}
	if !dateErr.Departure.Equal(AddDays(today, -1)) {
		t.Fatalf("Departure = %v", dateErr.Departure)
	}
}

func TestPlan_ZeroContribution(t *testing.T) {
	zero := decimal.Zero
	res := mustPlan(t, Inputs{
		TotalCost:  dec("1000"),
		Passengers: 1,
		Departure:  datePtr(AddDays(today, 60)),
	}, &zero)

	if res.Projection.Funded() {
		t.Fatal("projection funded, want never funded")
	}
	if _, ok := res.Projection.Date(); ok {
		t.Fatal("projected date defined, want none")
	}
	if res.Feasibility != TooLate {
		t.Fatalf("feasibility = %v, want too_late", res.Feasibility)
	}
}

func TestPlan_DepartureTodayIsOneMonth(t *testing.T) {
	for _, days := range []int{0, 1, 29, 30} {
		res := mustPlan(t, Inputs{TotalCost: dec("500"), Passengers: 1, Departure: datePtr(AddDays(today, days))}, nil)
		if m, _ := res.Horizon.Months(); m != 1 {
			t.Fatalf("days=%d: months = %d, want 1", days, m)
		}
	}
	res := mustPlan(t, Inputs{TotalCost: dec("500"), Passengers: 1, Departure: datePtr(AddDays(today, 31))}, nil)
	if m, _ := res.Horizon.Months(); m != 2 {
		t.Fatalf("days=31: months = %d, want 2", m)
	}
}

func TestPlan_RequiredRateCoversCost(t *testing.T) {
	costs := []string{"0", "1", "999.99", "1000", "1234.56", "7777"}
	for _, c := range costs {
		for pax := 1; pax <= 4; pax++ {
			for _, days := range []int{1, 45, 90, 100, 365, 1000} {
				res := mustPlan(t, Inputs{TotalCost: dec(c), Passengers: pax, Departure: datePtr(AddDays(today, days))}, nil)
				months, _ := res.Horizon.Months()
				if months < 1 {
					t.Fatalf("months = %d, want >= 1", months)
				}

				perPaxTimes := res.RequiredMonthlyPerPerson.Mul(decimal.NewFromInt(int64(pax)))
				if perPaxTimes.Sub(*res.RequiredMonthlyTotal).Abs().GreaterThan(dec("0.000001")) {
					t.Fatalf("cost=%s pax=%d: per person x pax = %s, total = %s", c, pax, perPaxTimes, res.RequiredMonthlyTotal)
				}

				covered := res.RequiredMonthlyTotal.Mul(decimal.NewFromInt(int64(months)))
				if dec(c).Sub(covered).GreaterThan(dec("0.000001")) {
					t.Fatalf("cost=%s days=%d: %s over %d months under-covers", c, days, res.RequiredMonthlyTotal, months)
				}

				if dec(c).IsPositive() {
					// 30-day months: the required rate lands on departure only
					// when the horizon is a whole number of months.
					want := TooLate
					if months*DaysPerMonth <= days {
						want = Feasible
					}
					if res.Feasibility != want {
						t.Fatalf("cost=%s pax=%d days=%d: feasibility = %v, want %v", c, pax, days, res.Feasibility, want)
					}
					if needed, _ := res.Projection.Months(); needed != months {
						t.Fatalf("cost=%s pax=%d days=%d: months needed = %d, want %d", c, pax, days, needed, months)
					}
				}
			}
		}
	}
}

func TestPlan_Idempotent(t *testing.T) {
	in := Inputs{TotalCost: dec("2345.67"), Passengers: 3, Departure: datePtr(AddDays(today, 200))}
	override := dec("150")
	a := mustPlan(t, in, &override)
	b := mustPlan(t, in, &override)

	ja, _ := json.Marshal(a.View())
	jb, _ := json.Marshal(b.View())
	if string(ja) != string(jb) {
		t.Fatalf("plans differ:\n%s\n%s", ja, jb)
	}
}

func TestPlan_NoDepartureUsesFallback(t *testing.T) {
	res := mustPlan(t, Inputs{TotalCost: dec("1000"), Passengers: 2}, nil)

	if res.Horizon.Known() {
		t.Fatal("horizon known without departure")
	}
	if res.RequiredMonthlyTotal != nil || res.RequiredMonthlyPerPerson != nil {
		t.Fatal("required rates set without departure")
	}
	// 1000 / 2 / 12 = 41.67 -> 50
	if !res.ChosenMonthlyPerPerson.Equal(dec("50")) {
		t.Fatalf("fallback = %s, want 50", res.ChosenMonthlyPerPerson)
	}
	if res.ChosenFrom != SourceFallback {
		t.Fatalf("chosen from = %v, want fallback", res.ChosenFrom)
	}
	if !res.ChosenMonthlyTotal.Equal(dec("100")) {
		t.Fatalf("chosen total = %s, want 100", res.ChosenMonthlyTotal)
	}
	if m, _ := res.Projection.Months(); m != 10 {
		t.Fatalf("months needed = %d, want 10", m)
	}
	if res.Feasibility != FeasibilityUnknown {
		t.Fatalf("feasibility = %v, want unknown", res.Feasibility)
	}
	if d, _ := res.Projection.Date(); !d.Equal(AddDays(today, 300)) {
		t.Fatalf("projected = %s, want %s", d, AddDays(today, 300))
	}
}

func TestPlan_FallbackCappedAtSliderMax(t *testing.T) {
	p := New(Options{SliderMax: dec("500")})
	res, err := p.Plan(today, Inputs{TotalCost: dec("120000"), Passengers: 1}, nil)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if !res.ChosenMonthlyPerPerson.Equal(dec("500")) {
		t.Fatalf("fallback = %s, want capped 500", res.ChosenMonthlyPerPerson)
	}
}

func TestPlan_NoDepartureNoCost(t *testing.T) {
	res := mustPlan(t, Inputs{Passengers: 1}, nil)
	if !res.ChosenMonthlyPerPerson.IsZero() || res.ChosenFrom != SourceNone {
		t.Fatalf("chosen = %s from %v, want 0 from none", res.ChosenMonthlyPerPerson, res.ChosenFrom)
	}
	if res.Projection.Funded() {
		t.Fatal("zero rate projection funded")
	}
}

func TestPlan_ZeroPassengersFlooredToOne(t *testing.T) {
	res := mustPlan(t, Inputs{TotalCost: dec("600"), Passengers: 0, Departure: datePtr(AddDays(today, 60))}, nil)
	wantDec(t, "required per person", res.RequiredMonthlyPerPerson, "300")
	if !res.ChosenMonthlyTotal.Equal(dec("300")) {
		t.Fatalf("chosen total = %s, want 300", res.ChosenMonthlyTotal)
	}
}

func TestPlan_ZeroCostWithDeparture(t *testing.T) {
	res := mustPlan(t, Inputs{TotalCost: decimal.Zero, Passengers: 2, Departure: datePtr(AddDays(today, 60))}, nil)
	wantDec(t, "required total", res.RequiredMonthlyTotal, "0")
	if res.Projection.Funded() {
		t.Fatal("zero rate projection funded")
	}
	if res.Feasibility != TooLate {
		t.Fatalf("feasibility = %v, want too_late", res.Feasibility)
	}
}

func TestPlan_OverrideTooLow(t *testing.T) {
	override := dec("100")
	res := mustPlan(t, Inputs{TotalCost: dec("1200"), Passengers: 1, Departure: datePtr(AddDays(today, 90))}, &override)
	// 1200 / 100 = 12 months, past a 90 day departure
	if m, _ := res.Projection.Months(); m != 12 {
		t.Fatalf("months needed = %d, want 12", m)
	}
	if d, _ := res.Projection.Date(); !d.Equal(AddDays(today, 360)) {
		t.Fatalf("projected = %s", d)
	}
	if res.Feasibility != TooLate {
		t.Fatalf("feasibility = %v, want too_late", res.Feasibility)
	}
}

func TestPlan_ProjectedOnDepartureIsFeasible(t *testing.T) {
	override := dec("200")
	res := mustPlan(t, Inputs{TotalCost: dec("600"), Passengers: 1, Departure: datePtr(AddDays(today, 90))}, &override)
	if res.Feasibility != Feasible {
		t.Fatalf("feasibility = %v, want feasible", res.Feasibility)
	}
}

func TestRecommended(t *testing.T) {
	res := mustPlan(t, Inputs{TotalCost: dec("1000"), Passengers: 3, Departure: datePtr(AddDays(today, 60))}, nil)
	rec, ok := Recommended(res)
	if !ok {
		t.Fatal("Recommended not available with a departure date")
	}
	// 1000 / 2 / 3 = 166.67
	if !rec.Equal(dec("167")) {
		t.Fatalf("Recommended = %s, want 167", rec)
	}

	noDate := mustPlan(t, Inputs{TotalCost: dec("1000"), Passengers: 3}, nil)
	if _, ok := Recommended(noDate); ok {
		t.Fatal("Recommended available without departure")
	}
}

func TestOverrideFromText(t *testing.T) {
	if OverrideFromText("   ") != nil {
		t.Fatal("blank text should not override")
	}
	got := OverrideFromText("1.234,50 €")
	if got == nil || !got.Equal(dec("1234.5")) {
		t.Fatalf("OverrideFromText = %v, want 1234.5", got)
	}
	zero := OverrideFromText("abc")
	if zero == nil || !zero.IsZero() {
		t.Fatalf("OverrideFromText(abc) = %v, want 0", zero)
	}
}

func TestView_NullsAndNeverFunded(t *testing.T) {
	zero := decimal.Zero
	res := mustPlan(t, Inputs{TotalCost: dec("1000"), Passengers: 1}, &zero)
	raw, err := json.Marshal(res.View())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"months_until_departure", "required_monthly_total", "months_needed", "projected_funding_date", "feasible_before_departure"} {
		if got[key] != nil {
			t.Errorf("%s = %v, want null", key, got[key])
		}
	}
	if got["never_funded"] != true {
		t.Errorf("never_funded = %v, want true", got["never_funded"])
	}
}

func TestShiftToFunding(t *testing.T) {
	start := mustParse(t, "2025-06-01")
	end := mustParse(t, "2025-06-15")
	funding := mustParse(t, "2025-09-10")

	s, e := ShiftToFunding(&start, &end, funding)
	if !s.Equal(funding) {
		t.Fatalf("start = %s, want %s", s, funding)
	}
	if !e.Equal(mustParse(t, "2025-09-24")) {
		t.Fatalf("end = %s, want 2025-09-24", e)
	}

	s, e = ShiftToFunding(&start, nil, funding)
	if !s.Equal(funding) || e != nil {
		t.Fatalf("start only: got %v, %v", s, e)
	}

	backwards := mustParse(t, "2025-05-01")
	s, e = ShiftToFunding(&start, &backwards, funding)
	if !s.Equal(funding) || !e.Equal(backwards) {
		t.Fatalf("inverted range: got %v, %v", s, e)
	}
}

func mustParse(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseDate(s)
	if err != nil {
		t.Fatalf("ParseDate(%q): %v", s, err)
	}
	return d
}
