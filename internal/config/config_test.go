package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestLoadFrom_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Planner.SliderMax != 2000 || cfg.Server.Addr != "127.0.0.1:8787" {
		t.Fatalf("cfg = %+v, want defaults", cfg)
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg := DefaultConfig()
	cfg.Planner.SliderMax = 750
	cfg.Maps.APIKey = "secret"
	cfg.Logging.Level = "debug"
	if ExistsAt(path) {
		t.Fatal("ExistsAt before save = true")
	}
	if err := SaveTo(path, cfg); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}
	if !ExistsAt(path) {
		t.Fatal("ExistsAt after save = false")
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("perm = %o, want 600", perm)
	}

	got, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if got.Planner.SliderMax != 750 || got.Maps.APIKey != "secret" || got.Logging.Level != "debug" {
		t.Fatalf("round trip = %+v", got)
	}
}

func TestLoadFrom_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[server]\naddr = \":9000\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Server.Addr != ":9000" {
		t.Fatalf("addr = %q", cfg.Server.Addr)
	}
	if cfg.Server.PollIntervalSecs != 5 || cfg.Planner.FallbackMonths != 12 {
		t.Fatalf("defaults lost: %+v", cfg)
	}
}

func TestLoadFrom_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[planner\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Fatal("LoadFrom accepted invalid TOML")
	}
}

func TestEnvOverrides(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Maps.APIKey = "from-config"
	cfg.Cache.RedisAddr = "config:6379"
	cfg.General.DBPath = "/config/trips.db"

	t.Setenv("GOOGLE_MAPS_API_KEY", "")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("TRIPFUND_DB", "")
	if GetMapsAPIKey(cfg) != "from-config" || GetRedisAddr(cfg) != "config:6379" || GetDBPath(cfg) != "/config/trips.db" {
		t.Fatal("config values not used without env")
	}

	t.Setenv("GOOGLE_MAPS_API_KEY", "from-env")
	t.Setenv("REDIS_ADDR", "env:6379")
	t.Setenv("TRIPFUND_DB", "/env/trips.db")
	if GetMapsAPIKey(cfg) != "from-env" || GetRedisAddr(cfg) != "env:6379" || GetDBPath(cfg) != "/env/trips.db" {
		t.Fatal("env values do not win")
	}
}

func TestGetDBPath_DefaultsToDataDir(t *testing.T) {
	t.Setenv("TRIPFUND_DB", "")
	t.Setenv("XDG_DATA_HOME", "/xdg/data")
	if got := GetDBPath(DefaultConfig()); got != "/xdg/data/tripfund/trips.db" {
		t.Fatalf("GetDBPath = %q", got)
	}
}

func TestDurations(t *testing.T) {
	if (ServerConfig{}).PollInterval() != time.Second {
		t.Fatal("zero poll interval not floored to 1s")
	}
	if (CacheConfig{TTLHours: 2}).CacheTTL() != 2*time.Hour {
		t.Fatal("ttl hours not converted")
	}
	if (CacheConfig{}).CacheTTL() != 0 {
		t.Fatal("zero ttl should mean no expiry")
	}
}

func TestPlannerOptions(t *testing.T) {
	opts := PlannerOptions(DefaultConfig())
	if !opts.SliderMax.Equal(decimal.NewFromInt(2000)) || opts.FallbackMonths != 12 || !opts.FallbackStep.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("opts = %+v", opts)
	}

	cfg := DefaultConfig()
	cfg.Planner.SliderMax = -1
	if !PlannerOptions(cfg).SliderMax.Equal(decimal.NewFromInt(2000)) {
		t.Fatal("negative slider max not reset")
	}
}
