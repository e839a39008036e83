package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/palmvoyage/tripfund/internal/config"
	"github.com/palmvoyage/tripfund/internal/estimate"
	"github.com/palmvoyage/tripfund/internal/geocode"
	"github.com/palmvoyage/tripfund/internal/logging"
	"github.com/palmvoyage/tripfund/internal/planner"
	"github.com/palmvoyage/tripfund/internal/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	flagConfig  string
	flagDB      string
	flagToday   string
	flagVerbose bool
	flagQuiet   bool
)

// cfg is loaded once per invocation by the root pre-run hook.
var cfg = config.DefaultConfig()

var rootCmd = &cobra.Command{
	Use:   "tripfund",
	Short: "Trip savings planner",
	Long:  "Estimate what your trips cost and how much to put aside each month to fund them before departure.",
	RunE:  runTripList,

	SilenceUsage: true,

	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		loaded, err := config.LoadFrom(flagConfig)
		if err != nil {
			return err
		}
		cfg = loaded

		logCfg := cfg.Logging
		switch {
		case flagVerbose:
			logCfg.Level = "debug"
		case flagQuiet:
			logCfg.Level = "error"
		}
		return logging.Initialize(logCfg)
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		logging.Sync()
	},
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", config.ConfigPath(), "Config file")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "Trip database (default from config or $TRIPFUND_DB)")
	rootCmd.PersistentFlags().StringVar(&flagToday, "today", "", "Plan as of this date (YYYY-MM-DD)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Debug logging")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
}

func dbPath() string {
	if flagDB != "" {
		return flagDB
	}
	return config.GetDBPath(cfg)
}

func openStore() (*store.Store, error) {
	st, err := store.Open(dbPath())
	if err != nil {
		return nil, fmt.Errorf("opening trips: %w", err)
	}
	return st, nil
}

// today returns the --today override or the current date.
func today() (time.Time, error) {
	if flagToday == "" {
		return estimate.Today(), nil
	}
	t, err := planner.ParseDate(flagToday)
	if err != nil {
		return time.Time{}, fmt.Errorf("--today: %w", err)
	}
	return t, nil
}

func newPlanner() *planner.Planner {
	return planner.New(config.PlannerOptions(cfg))
}

// newGeocoder builds the cached geocoder from config. It returns nil when
// no API key is configured. Redis is used when reachable, memory otherwise.
func newGeocoder(ctx context.Context) (geocode.Geocoder, func()) {
	log := logging.Named("geocode")

	client := geocode.NewClient(config.GetMapsAPIKey(cfg), cfg.Maps.BaseURL)
	if client == nil {
		log.Debug("no maps API key, skipping geocoding")
		return nil, func() {}
	}

	if addr := config.GetRedisAddr(cfg); addr != "" {
		rc := geocode.NewRedisCache(addr, cfg.Cache.CacheTTL())
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := rc.Ping(pingCtx)
		cancel()
		if err == nil {
			return geocode.NewCached(client, rc, log), func() { _ = rc.Close() }
		}
		_ = rc.Close()
		log.Warn("redis unavailable, caching in memory", zap.String("addr", addr), zap.Error(err))
	}
	return geocode.NewCached(client, geocode.NewMemoryCache(), log), func() {}
}

// progressf writes transient progress to stderr unless --quiet.
func progressf(format string, args ...any) {
	if flagQuiet {
		return
	}
	fmt.Fprintf(os.Stderr, format, args...)
}
