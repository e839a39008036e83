package server

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/palmvoyage/tripfund/internal/model"
	"github.com/palmvoyage/tripfund/internal/money"
	"github.com/palmvoyage/tripfund/internal/planner"
	"github.com/shopspring/decimal"
)

// Amount is a money value sent either as a JSON number or as free text
// such as "1.234,50 €". Text goes through the same lenient parsing as the
// forms do.
type Amount struct {
	Value decimal.Decimal
	// Blank is set for an empty string.
	Blank bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (a *Amount) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		a.Blank = strings.TrimSpace(s) == ""
		a.Value = money.Parse(s)
		return nil
	}
	d, err := decimal.NewFromString(string(b))
	if err != nil {
		return fmt.Errorf("amount: %w", err)
	}
	if d.IsNegative() {
		d = decimal.Zero
	}
	a.Value = d
	return nil
}

// PlanRequest is the body of POST /v1/plan. TotalCost wins over the
// individual cost lines when given.
type PlanRequest struct {
	TotalCost     *Amount `json:"total_cost"`
	Flight        Amount  `json:"flight"`
	Accommodation Amount  `json:"accommodation"`
	Additional    Amount  `json:"additional"`
	Passengers    int     `json:"passengers"`
	Departure     string  `json:"departure"`
	Monthly       *Amount `json:"monthly"`
	ApplyMinimum  bool    `json:"apply_minimum"`
}

// PlanResponse is returned by POST /v1/plan.
type PlanResponse struct {
	TotalCost  decimal.Decimal `json:"total_cost"`
	PerPerson  decimal.Decimal `json:"per_person"`
	Passengers int             `json:"passengers"`
	Plan       planner.View    `json:"plan"`
}

// ScoreResponse is returned by POST /v1/score.
type ScoreResponse struct {
	Score int    `json:"score"`
	Tier  string `json:"tier"`
}

// DestinationView is the JSON shape of a stop.
type DestinationView struct {
	Country          string          `json:"country"`
	City             string          `json:"city"`
	HasLodging       bool            `json:"has_lodging"`
	Nights           int             `json:"nights,omitempty"`
	PricePerNight    decimal.Decimal `json:"price_per_night"`
	Latitude         *float64        `json:"latitude"`
	Longitude        *float64        `json:"longitude"`
	FormattedAddress string          `json:"formatted_address,omitempty"`
}

// ShareView is one expense category's part of a total.
type ShareView struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
	Percent  float64         `json:"percent"`
}

// CostView is the JSON shape of a cost breakdown.
type CostView struct {
	Flight        decimal.Decimal `json:"flight"`
	Accommodation decimal.Decimal `json:"accommodation"`
	Additional    decimal.Decimal `json:"additional"`
	Total         decimal.Decimal `json:"total"`
	PerPerson     decimal.Decimal `json:"per_person"`
	Shares        []ShareView     `json:"shares"`
}

// FundingView is the saved savings plan of a trip.
type FundingView struct {
	MonthlyPerPerson *decimal.Decimal `json:"monthly_per_person"`
	MonthlyTotal     *decimal.Decimal `json:"monthly_total"`
	Months           *int             `json:"months"`
	Date             *string          `json:"date"`
}

// TripView is the JSON shape of a trip with its score.
type TripView struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Route        string            `json:"route"`
	Countries    []string          `json:"countries"`
	LodgingMode  string            `json:"lodging_mode"`
	Passengers   int               `json:"passengers"`
	StartDate    *string           `json:"start_date"`
	EndDate      *string           `json:"end_date"`
	TargetDate   *string           `json:"target_date"`
	Destinations []DestinationView `json:"destinations"`
	Cost         CostView          `json:"cost"`
	Funding      *FundingView      `json:"funding"`
	Score        int               `json:"score"`
	Tier         string            `json:"tier"`
	Rank         int               `json:"rank,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// TripDetail is returned by GET /v1/trips/{id}: the trip and its plan as
// seen today. PlanError is set instead of Plan when the departure has
// already passed.
type TripDetail struct {
	TripView
	Plan      *planner.View `json:"plan"`
	PlanError string        `json:"plan_error,omitempty"`
}

// CompareResponse is returned by GET /v1/compare.
type CompareResponse struct {
	Trips        []TripView      `json:"trips"`
	Count        int             `json:"count"`
	TotalCost    decimal.Decimal `json:"total_cost"`
	AverageCost  decimal.Decimal `json:"average_cost"`
	AverageScore float64         `json:"average_score"`
	Shares       []ShareView     `json:"shares"`
}

func dateString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(planner.DateLayout)
	return &s
}

func sharesView(shares []model.ExpenseShare) []ShareView {
	out := make([]ShareView, 0, len(shares))
	for _, s := range shares {
		out = append(out, ShareView{Category: string(s.Category), Amount: s.Amount.Round(2), Percent: s.Percent})
	}
	return out
}

func tripView(s model.TripSummary) TripView {
	t := s.Trip
	b := s.Breakdown
	v := TripView{
		ID:          t.ID.String(),
		Name:        t.Name,
		Route:       t.Route(),
		Countries:   t.Countries(),
		LodgingMode: string(t.LodgingMode),
		Passengers:  t.Passengers,
		StartDate:   dateString(t.StartDate),
		EndDate:     dateString(t.EndDate),
		TargetDate:  dateString(t.TargetDate),
		Cost: CostView{
			Flight:        b.Flight.Round(2),
			Accommodation: b.Accommodation.Round(2),
			Additional:    b.Additional.Round(2),
			Total:         b.Total.Round(2),
			PerPerson:     b.PerPerson.Round(2),
			Shares:        sharesView(b.Shares),
		},
		Score:     s.Score,
		Tier:      s.Tier,
		Rank:      s.Rank,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
	if v.Countries == nil {
		v.Countries = []string{}
	}
	for _, d := range t.Destinations {
		v.Destinations = append(v.Destinations, DestinationView{
			Country:          d.Country,
			City:             d.City,
			HasLodging:       d.HasLodging,
			Nights:           d.Nights,
			PricePerNight:    d.PricePerNight,
			Latitude:         d.Latitude,
			Longitude:        d.Longitude,
			FormattedAddress: d.FormattedAddress,
		})
	}
	if t.Funding.Planned() {
		v.Funding = &FundingView{
			MonthlyPerPerson: t.Funding.MonthlyPerPerson,
			MonthlyTotal:     t.Funding.MonthlyTotal,
			Months:           t.Funding.Months,
			Date:             dateString(t.Funding.Date),
		}
	}
	return v
}
