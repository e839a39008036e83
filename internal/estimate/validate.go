package estimate

import (
	"fmt"
	"strings"
	"time"

	"github.com/palmvoyage/tripfund/internal/model"
	"github.com/palmvoyage/tripfund/internal/planner"
)

// FieldError is one failed validation rule.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string { return e.Field + ": " + e.Message }

// ValidationErrors lists every rule a trip fails, in form order.
type ValidationErrors []*FieldError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, e := range v {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

// Has reports whether field failed.
func (v ValidationErrors) Has(field string) bool {
	for _, e := range v {
		if e.Field == field {
			return true
		}
	}
	return false
}

// Validate checks a trip before it is saved. It returns nil or a
// ValidationErrors value.
func Validate(t model.Trip, today time.Time) error {
	var errs ValidationErrors
	add := func(field, format string, args ...any) {
		errs = append(errs, &FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if strings.TrimSpace(t.Name) == "" {
		add("name", "trip name is required")
	}

	if len(t.Destinations) == 0 {
		add("destinations", "at least one destination is required")
	}
	for i, d := range t.Destinations {
		if strings.TrimSpace(d.City) == "" || strings.TrimSpace(d.Country) == "" {
			add("destinations", "stop %d needs a city and a country", i+1)
		}
	}

	if t.Passengers < 1 {
		add("passengers", "must be a whole number of at least 1")
	}

	today = planner.DateOf(today)
	if t.StartDate != nil && planner.DateOf(*t.StartDate).Before(today) {
		add("start_date", "departure must be today or later")
	}
	if t.StartDate != nil && t.EndDate != nil && planner.DateOf(*t.EndDate).Before(planner.DateOf(*t.StartDate)) {
		add("end_date", "return must be on or after departure")
	}

	if !t.LodgingMode.Valid() {
		add("lodging_mode", "unknown mode %q", t.LodgingMode)
	}
	if t.LodgingMode == model.LodgingPerStop {
		for i, d := range t.Destinations {
			if d.HasLodging && (d.Nights <= 0 || !d.PricePerNight.IsPositive()) {
				add("lodging", "stop %d needs nights and a nightly price", i+1)
			}
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}
