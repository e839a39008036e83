package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/palmvoyage/tripfund/internal/logging"
)

const appName = "tripfund"

// Config holds all tripfund configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Planner    PlannerConfig    `toml:"planner"`
	Maps       MapsConfig       `toml:"maps"`
	Cache      CacheConfig      `toml:"cache"`
	Server     ServerConfig     `toml:"server"`
	Appearance AppearanceConfig `toml:"appearance"`
	Logging    logging.Config   `toml:"logging"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	DBPath string `toml:"db_path,omitempty"`
}

// PlannerConfig tunes the savings rate suggested when a trip has no
// departure date.
type PlannerConfig struct {
	// SliderMax is the highest monthly amount per person the planner
	// suggests, in euros.
	SliderMax      float64 `toml:"slider_max"`
	FallbackMonths int     `toml:"fallback_months"`
	FallbackStep   float64 `toml:"fallback_step"`
}

// MapsConfig holds Geocoding API settings.
type MapsConfig struct {
	APIKey  string `toml:"api_key,omitempty"`
	BaseURL string `toml:"base_url,omitempty"`
}

// CacheConfig holds geocode cache settings. Without a Redis address
// results are cached in memory for the life of the process.
type CacheConfig struct {
	RedisAddr string `toml:"redis_addr,omitempty"`
	TTLHours  int    `toml:"ttl_hours"`
}

// ServerConfig holds settings for the local HTTP API.
type ServerConfig struct {
	Addr             string `toml:"addr"`
	PollIntervalSecs int    `toml:"poll_interval_secs"`
	EventsBuffer     int    `toml:"events_buffer"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Planner: PlannerConfig{
			SliderMax:      2000,
			FallbackMonths: 12,
			FallbackStep:   10,
		},
		Cache: CacheConfig{
			TTLHours: 24 * 30,
		},
		Server: ServerConfig{
			Addr:             "127.0.0.1:8787",
			PollIntervalSecs: 5,
			EventsBuffer:     200,
		},
		Appearance: AppearanceConfig{
			Theme: "palm",
		},
		Logging: logging.DefaultConfig(),
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", appName)
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// DataDir returns the XDG-compliant data directory.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", appName)
}

// LoadFrom reads the config file at path, returning defaults if it doesn't
// exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path) //nolint:gosec // path comes from the user's own flag or XDG dir
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// SaveTo writes the config to path.
func SaveTo(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600) //nolint:gosec // see LoadFrom
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return toml.NewEncoder(f).Encode(cfg)
}

// ExistsAt reports whether a config file exists at path.
func ExistsAt(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// GetDBPath returns the database path from env var, config or the data
// dir, in that order.
func GetDBPath(cfg Config) string {
	if p := os.Getenv("TRIPFUND_DB"); p != "" {
		return p
	}
	if cfg.General.DBPath != "" {
		return cfg.General.DBPath
	}
	return filepath.Join(DataDir(), "trips.db")
}

// GetMapsAPIKey returns the Geocoding API key from env var or config, in
// that order.
func GetMapsAPIKey(cfg Config) string {
	if key := os.Getenv("GOOGLE_MAPS_API_KEY"); key != "" {
		return key
	}
	return cfg.Maps.APIKey
}

// GetRedisAddr returns the geocode cache address from env var or config.
func GetRedisAddr(cfg Config) string {
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		return addr
	}
	return cfg.Cache.RedisAddr
}

// CacheTTL returns the geocode cache expiry.
func (c CacheConfig) CacheTTL() time.Duration {
	if c.TTLHours <= 0 {
		return 0
	}
	return time.Duration(c.TTLHours) * time.Hour
}

// PollInterval returns the store polling interval, at least one second.
func (s ServerConfig) PollInterval() time.Duration {
	if s.PollIntervalSecs < 1 {
		return time.Second
	}
	return time.Duration(s.PollIntervalSecs) * time.Second
}
