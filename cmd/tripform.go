package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/palmvoyage/tripfund/internal/model"
	"github.com/palmvoyage/tripfund/internal/money"
	"github.com/palmvoyage/tripfund/internal/planner"

	"github.com/charmbracelet/huh"
	"github.com/google/uuid"
)

// tripFields holds the raw text of a trip, from flags or the form.
type tripFields struct {
	name       string
	stops      []string
	flight     string
	lodging    string
	extra      string
	passengers string
	start      string
	end        string
	monthly    string
}

var errMixedLodging = errors.New("use --lodging or per-stop lodging, not both")

// parseStop reads "City, Country" or "City, Country, nights, price per night".
func parseStop(s string) (model.Destination, error) {
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	d := model.Destination{ID: uuid.New()}
	switch len(parts) {
	case 2:
	case 4:
		nights, err := strconv.Atoi(parts[2])
		if err != nil {
			return d, fmt.Errorf("stop %q: nights must be a whole number", s)
		}
		d.HasLodging = true
		d.Nights = nights
		d.PricePerNight = money.Parse(parts[3])
	default:
		return d, fmt.Errorf("stop %q: want \"City, Country\" or \"City, Country, nights, price\"", s)
	}
	d.City, d.Country = parts[0], parts[1]
	return d, nil
}

func parseOptionalDate(field, s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	d, err := planner.ParseDate(s)
	if err != nil {
		return nil, fmt.Errorf("%s: want YYYY-MM-DD", field)
	}
	return &d, nil
}

// build turns the raw fields into a trip. It only reports text that
// cannot be parsed; the trip itself is checked by estimate.Validate.
func (f tripFields) build() (model.Trip, error) {
	t := model.NewTrip(strings.TrimSpace(f.name))

	for _, s := range f.stops {
		if strings.TrimSpace(s) == "" {
			continue
		}
		d, err := parseStop(s)
		if err != nil {
			return t, err
		}
		if d.HasLodging {
			t.LodgingMode = model.LodgingPerStop
		}
		t.Destinations = append(t.Destinations, d)
	}
	if t.LodgingMode == model.LodgingPerStop && strings.TrimSpace(f.lodging) != "" {
		return t, errMixedLodging
	}

	t.FlightCost = money.Parse(f.flight)
	t.AccommodationCost = money.Parse(f.lodging)
	t.AdditionalExpenses = money.Parse(f.extra)

	pax := strings.TrimSpace(f.passengers)
	if pax == "" {
		pax = "1"
	}
	n, err := strconv.Atoi(pax)
	if err != nil {
		return t, errors.New("passengers: want a whole number")
	}
	t.Passengers = n

	if t.StartDate, err = parseOptionalDate("start", f.start); err != nil {
		return t, err
	}
	if t.EndDate, err = parseOptionalDate("end", f.end); err != nil {
		return t, err
	}
	t.TargetDate = t.StartDate
	return t, nil
}

func validateOptionalDate(s string) error {
	_, err := parseOptionalDate("date", s)
	return err
}

func validateStops(s string) error {
	n := 0
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if _, err := parseStop(line); err != nil {
			return err
		}
		n++
	}
	if n == 0 {
		return errors.New("add at least one stop")
	}
	return nil
}

// runTripForm asks for a trip interactively, starting from f.
func runTripForm(f tripFields) (tripFields, error) {
	stops := strings.Join(f.stops, "\n")
	if f.passengers == "" {
		f.passengers = "1"
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Trip name").
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("trip name is required")
					}
					return nil
				}).
				Value(&f.name),
			huh.NewText().
				Title("Stops").
				Description("One per line: City, Country  or  City, Country, nights, price per night").
				Validate(validateStops).
				Value(&stops),
		),
		huh.NewGroup(
			huh.NewInput().Title("Flights (€)").Placeholder("0").Value(&f.flight),
			huh.NewInput().
				Title("Accommodation (€)").
				Description("Leave empty when lodging is priced per stop.").
				Placeholder("0").
				Value(&f.lodging),
			huh.NewInput().Title("Other expenses (€)").Placeholder("0").Value(&f.extra),
			huh.NewInput().Title("Travellers").Value(&f.passengers),
		),
		huh.NewGroup(
			huh.NewInput().Title("Departure").Placeholder("YYYY-MM-DD").Validate(validateOptionalDate).Value(&f.start),
			huh.NewInput().Title("Return").Placeholder("YYYY-MM-DD").Validate(validateOptionalDate).Value(&f.end),
			huh.NewInput().
				Title("Monthly savings per person (€)").
				Description("Leave empty for the recommended amount.").
				Value(&f.monthly),
		),
	).WithTheme(huh.ThemeCharm())

	if err := form.Run(); err != nil {
		return f, err
	}
	f.stops = strings.Split(stops, "\n")
	return f, nil
}
