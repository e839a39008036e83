// Package model defines domain types for trips and their funding plans.
package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LodgingMode selects how accommodation is priced.
type LodgingMode string

const (
	// LodgingGlobal prices accommodation as one amount for the whole trip.
	LodgingGlobal LodgingMode = "global"
	// LodgingPerStop prices accommodation per destination as nights x nightly rate.
	LodgingPerStop LodgingMode = "per_stop"
)

// Valid reports whether m is a known mode.
func (m LodgingMode) Valid() bool {
	return m == LodgingGlobal || m == LodgingPerStop
}

// Destination is one stop of a trip.
type Destination struct {
	ID            uuid.UUID
	Country       string
	City          string
	HasLodging    bool
	Nights        int
	PricePerNight decimal.Decimal

	Latitude         *float64
	Longitude        *float64
	PlaceID          string
	FormattedAddress string
}

// Located reports whether the destination already has coordinates.
func (d Destination) Located() bool {
	return d.Latitude != nil && d.Longitude != nil
}

// LodgingCost returns nights x nightly rate, or zero without lodging.
func (d Destination) LodgingCost() decimal.Decimal {
	if !d.HasLodging || d.Nights <= 0 {
		return decimal.Zero
	}
	return d.PricePerNight.Mul(decimal.NewFromInt(int64(d.Nights)))
}

// Trip is a planned trip with its costs and saved funding plan.
type Trip struct {
	ID           uuid.UUID
	Name         string
	Destinations []Destination

	LodgingMode        LodgingMode
	FlightCost         decimal.Decimal
	AccommodationCost  decimal.Decimal // used with LodgingGlobal
	AdditionalExpenses decimal.Decimal
	Passengers         int

	StartDate *time.Time
	EndDate   *time.Time
	// TargetDate is the deadline older trips were saved with before
	// StartDate existed. New saves mirror StartDate into it.
	TargetDate *time.Time

	Funding Funding

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewTrip returns an empty trip with a fresh ID and global lodging.
func NewTrip(name string) Trip {
	return Trip{
		ID:          uuid.New(),
		Name:        name,
		LodgingMode: LodgingGlobal,
		Passengers:  1,
	}
}

// Deadline is the date a trip must be funded by: its start date, else the
// legacy target date.
func (t Trip) Deadline() *time.Time {
	if t.StartDate != nil {
		return t.StartDate
	}
	return t.TargetDate
}

// Countries returns the distinct destination countries in stop order.
func (t Trip) Countries() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, d := range t.Destinations {
		if d.Country == "" {
			continue
		}
		if _, ok := seen[d.Country]; ok {
			continue
		}
		seen[d.Country] = struct{}{}
		out = append(out, d.Country)
	}
	return out
}

// Route joins the destination cities, e.g. "Lisbon → Porto".
func (t Trip) Route() string {
	cities := make([]string, 0, len(t.Destinations))
	for _, d := range t.Destinations {
		cities = append(cities, d.City)
	}
	return strings.Join(cities, " → ")
}
