// Package source discovers and parses YAML and JSON trip files.
package source

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/palmvoyage/tripfund/internal/model"
	"github.com/palmvoyage/tripfund/internal/money"
	"github.com/palmvoyage/tripfund/internal/planner"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Entry is one imported trip and the monthly rate it asks for, if any.
type Entry struct {
	Trip    model.Trip
	Monthly *decimal.Decimal
}

// ParseResult holds the output of parsing one trip file.
type ParseResult struct {
	File    DiscoveredFile
	Entries []Entry
	Err     error
}

// ParseFile reads a trip file. A file either holds one trip at the top
// level or a list under "trips". JSON files are read by the same decoder.
// Trips without an id get a stable one derived from the file path and
// their position, so re-importing a file updates the same trips.
func ParseFile(df DiscoveredFile) ParseResult {
	raw, err := os.ReadFile(df.Path)
	if err != nil {
		return ParseResult{File: df, Err: err}
	}
	entries, err := Parse(raw, "file://"+df.Path)
	if err != nil {
		return ParseResult{File: df, Err: fmt.Errorf("%s: %w", df.Path, err)}
	}
	return ParseResult{File: df, Entries: entries}
}

// Parse decodes trip documents. origin seeds the IDs of trips that do not
// carry one.
func Parse(raw []byte, origin string) ([]Entry, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, errors.New("empty trip file")
	}

	var doc RawDocument
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	if len(doc.Trips) == 0 {
		var single RawTrip
		if err := yaml.Unmarshal(raw, &single); err != nil {
			return nil, err
		}
		if strings.TrimSpace(single.Name) == "" {
			return nil, errors.New("no trips found")
		}
		doc.Trips = []RawTrip{single}
	}

	entries := make([]Entry, 0, len(doc.Trips))
	for i, rt := range doc.Trips {
		e, err := convert(rt, fmt.Sprintf("%s#%d", origin, i))
		if err != nil {
			return nil, fmt.Errorf("trip %d (%s): %w", i+1, rt.Name, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func convert(rt RawTrip, origin string) (Entry, error) {
	t := model.Trip{
		Name:               strings.TrimSpace(rt.Name),
		Passengers:         money.ParsePositiveInt(string(rt.Passengers), 1),
		FlightCost:         money.Parse(string(rt.Flight)),
		AccommodationCost:  money.Parse(string(rt.Accommodation)),
		AdditionalExpenses: money.Parse(string(rt.Additional)),
	}

	if rt.ID != "" {
		id, err := uuid.Parse(rt.ID)
		if err != nil {
			return Entry{}, fmt.Errorf("id: %w", err)
		}
		t.ID = id
	} else {
		t.ID = uuid.NewSHA1(uuid.NameSpaceURL, []byte(origin))
	}

	var err error
	if t.StartDate, err = optionalDate(rt.Start); err != nil {
		return Entry{}, fmt.Errorf("start: %w", err)
	}
	if t.EndDate, err = optionalDate(rt.End); err != nil {
		return Entry{}, fmt.Errorf("end: %w", err)
	}
	if t.TargetDate, err = optionalDate(rt.Target); err != nil {
		return Entry{}, fmt.Errorf("target: %w", err)
	}
	if t.StartDate == nil {
		t.StartDate = t.TargetDate
	}

	perStopDetails := false
	for _, rd := range rt.Destinations {
		d := model.Destination{
			Country:       strings.TrimSpace(rd.Country),
			City:          strings.TrimSpace(rd.City),
			HasLodging:    rd.Lodging == nil || *rd.Lodging,
			Nights:        money.ParsePositiveInt(string(rd.Nights), 0),
			PricePerNight: money.Parse(string(rd.PricePerNight)),
		}
		if d.Country == "" {
			d.Country = strings.TrimSpace(rt.Country)
		}
		if d.HasLodging && (d.Nights > 0 || d.PricePerNight.IsPositive()) {
			perStopDetails = true
		}
		t.Destinations = append(t.Destinations, d)
	}

	switch rt.Lodging {
	case "":
		t.LodgingMode = model.LodgingGlobal
		if perStopDetails {
			t.LodgingMode = model.LodgingPerStop
		}
	default:
		t.LodgingMode = model.LodgingMode(rt.Lodging)
		if !t.LodgingMode.Valid() {
			return Entry{}, fmt.Errorf("lodging: unknown mode %q", rt.Lodging)
		}
	}

	return Entry{Trip: t, Monthly: planner.OverrideFromText(string(rt.Monthly))}, nil
}

func optionalDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	d, err := planner.ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
