package config

import (
	"github.com/palmvoyage/tripfund/internal/planner"
	"github.com/shopspring/decimal"
)

// PlannerOptions converts the [planner] section into planner options.
// Unset or invalid values fall back to the planner defaults.
func PlannerOptions(cfg Config) planner.Options {
	def := planner.DefaultOptions()
	opts := planner.Options{
		SliderMax:      decimal.NewFromFloat(cfg.Planner.SliderMax),
		FallbackMonths: cfg.Planner.FallbackMonths,
		FallbackStep:   decimal.NewFromFloat(cfg.Planner.FallbackStep),
	}
	if cfg.Planner.SliderMax < 0 {
		opts.SliderMax = def.SliderMax
	}
	return opts
}
