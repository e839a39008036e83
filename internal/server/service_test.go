package server

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/palmvoyage/tripfund/internal/model"
	"github.com/palmvoyage/tripfund/internal/store"
	"github.com/shopspring/decimal"
)

var today = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, *store.Store) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "trips.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	s := New(Config{
		Interval:     10 * time.Second,
		EventsBuffer: 10,
		Today:        func() time.Time { return today },
	}, st)
	return s, st
}

func saveTrip(t *testing.T, st *store.Store, name string, flight int64, daysOut int) model.Trip {
	t.Helper()
	tr := model.NewTrip(name)
	tr.FlightCost = decimal.NewFromInt(flight)
	start := today.AddDate(0, 0, daysOut)
	tr.StartDate = &start
	tr.Destinations = []model.Destination{{Country: "Peru", City: "Cusco"}}
	if err := st.SaveTrip(&tr); err != nil {
		t.Fatalf("SaveTrip: %v", err)
	}
	return tr
}

func do(t *testing.T, s *Service, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestDiffSnapshots(t *testing.T) {
	prev := Snapshot{Trips: 2, TotalCost: decimal.RequireFromString("1500.50")}
	curr := Snapshot{Trips: 3, TotalCost: decimal.RequireFromString("2100.00")}

	delta := diffSnapshots(prev, curr)
	if delta.Trips != 1 {
		t.Fatalf("Trips delta = %d, want 1", delta.Trips)
	}
	if !delta.TotalCost.Equal(decimal.RequireFromString("599.50")) {
		t.Fatalf("TotalCost delta = %s, want 599.50", delta.TotalCost)
	}
}

func TestPublishEventRingBuffer(t *testing.T) {
	s := New(Config{EventsBuffer: 2}, nil)

	s.publishEvent(Event{ID: 1})
	s.publishEvent(Event{ID: 2})
	s.publishEvent(Event{ID: 3})

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.events) != 2 {
		t.Fatalf("events len = %d, want 2", len(s.events))
	}
	if s.events[0].ID != 2 || s.events[1].ID != 3 {
		t.Fatalf("events ring contains IDs [%d, %d], want [2, 3]", s.events[0].ID, s.events[1].ID)
	}
}

func TestPollOnce(t *testing.T) {
	s, st := newTestService(t)

	s.pollOnce()
	s.pollOnce()
	saveTrip(t, st, "Cusco", 900, 120)
	s.pollOnce()

	s.mu.RLock()
	events := append([]Event(nil), s.events...)
	polls := s.pollCount
	s.mu.RUnlock()

	if polls != 3 {
		t.Fatalf("pollCount = %d, want 3", polls)
	}
	if len(events) != 2 {
		t.Fatalf("events = %+v, want snapshot + trips_changed", events)
	}
	if events[0].Type != EventSnapshot || events[0].Snapshot.Trips != 0 {
		t.Fatalf("first event = %+v", events[0])
	}
	ev := events[1]
	if ev.Type != EventTripsChanged || ev.Delta.Trips != 1 || !ev.Delta.TotalCost.Equal(decimal.NewFromInt(900)) {
		t.Fatalf("second event = %+v", ev)
	}
	if ev.Snapshot.BestTrip != "Cusco" || ev.Snapshot.Dated != 1 {
		t.Fatalf("snapshot = %+v", ev.Snapshot)
	}
}

func TestHandleHealthAndStatus(t *testing.T) {
	s, _ := newTestService(t)
	s.pollOnce()

	if rec := do(t, s, http.MethodGet, "/healthz", ""); rec.Code != http.StatusOK || rec.Body.String() != "ok\n" {
		t.Fatalf("healthz = %d %q", rec.Code, rec.Body.String())
	}

	rec := do(t, s, http.MethodGet, "/v1/status", "")
	var st Status
	if err := json.NewDecoder(rec.Body).Decode(&st); err != nil {
		t.Fatal(err)
	}
	if st.PollCount != 1 || st.EventCount != 1 || st.PollIntervalSec != 10 {
		t.Fatalf("status = %+v", st)
	}
}

func TestHandlePlan(t *testing.T) {
	s, _ := newTestService(t)

	body := `{"total_cost": "1.200,00", "passengers": 2, "departure": "2025-04-01"}`
	rec := do(t, s, http.MethodPost, "/v1/plan", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var resp PlanResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}

	// 90 days -> 3 months -> 400 a month, 200 each.
	v := resp.Plan
	if !resp.TotalCost.Equal(decimal.NewFromInt(1200)) || !resp.PerPerson.Equal(decimal.NewFromInt(600)) {
		t.Fatalf("totals = %s / %s", resp.TotalCost, resp.PerPerson)
	}
	if v.MonthsUntilDeparture == nil || *v.MonthsUntilDeparture != 3 {
		t.Fatalf("months until departure = %v", v.MonthsUntilDeparture)
	}
	if !v.ChosenMonthlyPerPerson.Equal(decimal.NewFromInt(200)) || v.ChosenFrom != "required" {
		t.Fatalf("chosen = %s from %s", v.ChosenMonthlyPerPerson, v.ChosenFrom)
	}
	if v.FeasibleBeforeDeparture == nil || !*v.FeasibleBeforeDeparture {
		t.Fatal("required rate should be feasible")
	}
}

func TestHandlePlan_ApplyMinimumAndOverride(t *testing.T) {
	s, _ := newTestService(t)

	rec := do(t, s, http.MethodPost, "/v1/plan",
		`{"flight": 1000, "passengers": 3, "departure": "2025-04-01", "apply_minimum": true}`)
	var resp PlanResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	// 1000 / 3 months / 3 people = 111.11, rounded up to 112.
	if !resp.Plan.ChosenMonthlyPerPerson.Equal(decimal.NewFromInt(112)) || resp.Plan.ChosenFrom != "override" {
		t.Fatalf("chosen = %s from %s", resp.Plan.ChosenMonthlyPerPerson, resp.Plan.ChosenFrom)
	}

	rec = do(t, s, http.MethodPost, "/v1/plan", `{"total_cost": 1000, "monthly": "0"}`)
	resp = PlanResponse{}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Plan.NeverFunded || resp.Plan.MonthsNeeded != nil {
		t.Fatalf("zero override = %+v", resp.Plan)
	}

	// Blank text means no override, so the fallback applies.
	rec = do(t, s, http.MethodPost, "/v1/plan", `{"total_cost": 1200, "monthly": "  "}`)
	resp = PlanResponse{}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Plan.ChosenFrom != "fallback" || !resp.Plan.ChosenMonthlyPerPerson.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("blank override = %+v", resp.Plan)
	}
}

func TestHandlePlan_Errors(t *testing.T) {
	s, _ := newTestService(t)

	rec := do(t, s, http.MethodPost, "/v1/plan", `{"total_cost": 100, "departure": "2024-12-31"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("past departure status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "is before 2025-01-01") {
		t.Fatalf("past departure body = %s", rec.Body.String())
	}

	if rec := do(t, s, http.MethodPost, "/v1/plan", `{"departure": "01/04/2025"}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad date status = %d", rec.Code)
	}
	if rec := do(t, s, http.MethodPost, "/v1/plan", `{"budget": 1}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown field status = %d", rec.Code)
	}
	if rec := do(t, s, http.MethodGet, "/v1/plan", ""); rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("GET /v1/plan status = %d", rec.Code)
	}
}

func TestHandleScore(t *testing.T) {
	s, _ := newTestService(t)
	rec := do(t, s, http.MethodPost, "/v1/score",
		`{"total_cost": 6000, "monthly_amount": "1200", "months_to_target": 2}`)
	var resp ScoreResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Score != 30 || resp.Tier != "poor" {
		t.Fatalf("score = %+v", resp)
	}
}

func TestHandleTrips(t *testing.T) {
	s, st := newTestService(t)
	saveTrip(t, st, "Pricey", 7000, 30)
	cheap := saveTrip(t, st, "Cheap", 800, 400)

	rec := do(t, s, http.MethodGet, "/v1/trips", "")
	var trips []TripView
	if err := json.NewDecoder(rec.Body).Decode(&trips); err != nil {
		t.Fatal(err)
	}
	if len(trips) != 2 || trips[0].Name != "Cheap" || trips[0].Rank != 1 || trips[0].Route != "Cusco" {
		t.Fatalf("trips = %+v", trips)
	}

	rec = do(t, s, http.MethodGet, "/v1/trips/"+cheap.ID.String()[:8], "")
	if rec.Code != http.StatusOK {
		t.Fatalf("trip status = %d: %s", rec.Code, rec.Body.String())
	}
	var detail TripDetail
	if err := json.NewDecoder(rec.Body).Decode(&detail); err != nil {
		t.Fatal(err)
	}
	if detail.ID != cheap.ID.String() || detail.Plan == nil || detail.Plan.ChosenFrom != "required" {
		t.Fatalf("detail = %+v", detail)
	}

	if rec := do(t, s, http.MethodGet, "/v1/trips/ffffffff", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("missing trip status = %d", rec.Code)
	}
}

func TestHandleCompare(t *testing.T) {
	s, st := newTestService(t)
	a := saveTrip(t, st, "A", 7000, 30)
	b := saveTrip(t, st, "B", 800, 400)
	saveTrip(t, st, "C", 100, 400)

	rec := do(t, s, http.MethodGet, "/v1/compare?ids="+a.ID.String()+","+b.ID.String(), "")
	var resp CompareResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Count != 2 || resp.Trips[0].Name != "B" || resp.Trips[1].Name != "A" {
		t.Fatalf("compare = %+v", resp)
	}
	if !resp.TotalCost.Equal(decimal.NewFromInt(7800)) || len(resp.Shares) != 1 {
		t.Fatalf("totals = %s shares %+v", resp.TotalCost, resp.Shares)
	}

	rec = do(t, s, http.MethodGet, "/v1/compare", "")
	resp = CompareResponse{}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Count != 3 {
		t.Fatalf("compare all count = %d", resp.Count)
	}
}

func TestHandleStream(t *testing.T) {
	s, _ := newTestService(t)
	s.pollOnce()

	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/v1/stream", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content type = %q", ct)
	}

	line, err := bufio.NewReader(resp.Body).ReadString('\n')
	if err != nil {
		t.Fatal(err)
	}
	if line != "event: snapshot\n" {
		t.Fatalf("first line = %q", line)
	}
}
