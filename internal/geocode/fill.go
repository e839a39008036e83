package geocode

import (
	"context"
	"strings"

	"github.com/palmvoyage/tripfund/internal/model"
	"go.uber.org/zap"
)

// Fill geocodes every destination of t that has a city and a country but
// no coordinates yet. A failed lookup is logged and leaves the stop
// without coordinates. It returns how many stops were located.
func Fill(ctx context.Context, g Geocoder, t *model.Trip, log *zap.Logger) int {
	if g == nil {
		return 0
	}
	if log == nil {
		log = zap.NewNop()
	}

	located := 0
	for i := range t.Destinations {
		d := &t.Destinations[i]
		city, country := strings.TrimSpace(d.City), strings.TrimSpace(d.Country)
		if city == "" || country == "" || d.Located() {
			continue
		}

		loc, err := g.Geocode(ctx, city, country)
		if err != nil {
			log.Warn("geocoding skipped",
				zap.String("city", city),
				zap.String("country", country),
				zap.Error(err))
			continue
		}

		lat, lng := loc.Latitude, loc.Longitude
		d.Latitude, d.Longitude = &lat, &lng
		d.PlaceID = loc.PlaceID
		d.FormattedAddress = loc.FormattedAddress
		located++
	}
	return located
}
