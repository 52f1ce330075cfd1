package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// GeneratorConfig holds the settings for generating and serving a field.
type GeneratorConfig struct {
	// Tileset is the path to the tile definition file.
	Tileset string `yaml:"tileset"`

	// Seed for sector generation. 0 picks one from the clock at startup.
	Seed int64 `yaml:"seed"`

	// MaxRetries is how many seeds a sector is tried with before giving up.
	MaxRetries int `yaml:"max_retries"`

	Sector SectorConfig `yaml:"sector"`
	Cell   CellConfig   `yaml:"cell"`
	Store  StoreConfig  `yaml:"store"`
	Feed   FeedConfig   `yaml:"feed"`
}

// SectorConfig is the size of every sector in cells.
type SectorConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// CellConfig is the size of one cell in world units.
type CellConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// StoreConfig selects where collapsed sectors are persisted.
type StoreConfig struct {
	// Driver is "sqlite" or "postgres".
	Driver string `yaml:"driver"`

	// Path is the SQLite database file.
	Path string `yaml:"path"`

	Postgres PostgresConfig `yaml:"postgres"`
}

// PostgresConfig holds PostgreSQL connection settings.
type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`

	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// FeedConfig holds render feed settings.
type FeedConfig struct {
	Enabled bool   `yaml:"enabled"`
	Address string `yaml:"address"`

	// AllowedOrigins is a list of origins allowed to connect.
	// Empty list enforces same-origin policy, "*" allows all.
	AllowedOrigins []string `yaml:"allowed_origins"`

	// MaxMessageSize is the largest request accepted, in bytes.
	MaxMessageSize int64 `yaml:"max_message_size"`

	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig caps sector requests per connection.
type RateLimitConfig struct {
	Enabled     bool          `yaml:"enabled"`
	MaxRequests int           `yaml:"max_requests"`
	Window      time.Duration `yaml:"window"`
}

// DefaultConfig returns a GeneratorConfig with 16x16 sectors of 32x32 cells.
func DefaultConfig() *GeneratorConfig {
	return &GeneratorConfig{
		Tileset:    "data/tileset.yaml",
		Seed:       0,
		MaxRetries: 10,
		Sector: SectorConfig{
			Width:  16,
			Height: 16,
		},
		Cell: CellConfig{
			Width:  32,
			Height: 32,
		},
		Store: StoreConfig{
			Driver: "sqlite",
			Path:   "data/wavefield.db",
			Postgres: PostgresConfig{
				Host:            "localhost",
				Port:            5432,
				SSLMode:         "disable",
				MaxOpenConns:    25,
				MaxIdleConns:    5,
				ConnMaxLifetime: 5 * time.Minute,
			},
		},
		Feed: FeedConfig{
			Enabled:        false,
			Address:        ":4450",
			AllowedOrigins: []string{},
			MaxMessageSize: 4096,
			RateLimit: RateLimitConfig{
				Enabled:     true,
				MaxRequests: 20,
				Window:      time.Second,
			},
		},
	}
}

// LoadConfig loads generator configuration from a YAML file.
// A missing file yields the defaults. A file that cannot be parsed yields
// the defaults and the parse error.
func LoadConfig(path string) (*GeneratorConfig, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			config.applyEnv()
			return config, nil
		}
		return config, err
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return DefaultConfig(), fmt.Errorf("parse %s: %w", path, err)
	}

	config.applyEnv()
	return config, nil
}

// applyEnv keeps the database password out of config files
func (c *GeneratorConfig) applyEnv() {
	if pw := os.Getenv("WAVEFIELD_PG_PASSWORD"); pw != "" {
		c.Store.Postgres.Password = pw
	}
}

// Validate reports every setting that cannot be used.
func (c *GeneratorConfig) Validate() error {
	var errs []error
	if c.Sector.Width <= 0 || c.Sector.Height <= 0 {
		errs = append(errs, fmt.Errorf("sector size %dx%d must be positive", c.Sector.Width, c.Sector.Height))
	}
	if c.Cell.Width <= 0 || c.Cell.Height <= 0 {
		errs = append(errs, fmt.Errorf("cell size %vx%v must be positive", c.Cell.Width, c.Cell.Height))
	}
	if c.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("max_retries %d must not be negative", c.MaxRetries))
	}
	switch c.Store.Driver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Errorf("unknown store driver %q", c.Store.Driver))
	}
	if c.Feed.Enabled && c.Feed.Address == "" {
		errs = append(errs, errors.New("feed enabled without an address"))
	}
	if rl := c.Feed.RateLimit; rl.Enabled && (rl.MaxRequests <= 0 || rl.Window <= 0) {
		errs = append(errs, fmt.Errorf("rate_limit needs positive max_requests and window, got %d per %v", rl.MaxRequests, rl.Window))
	}
	return errors.Join(errs...)
}

// IsOriginAllowed checks if the given origin may open a feed connection.
// Returns true if:
// - AllowedOrigins contains "*" (allow all)
// - AllowedOrigins contains the exact origin
// - AllowedOrigins is empty and origin matches the request host (same-origin)
func (c *FeedConfig) IsOriginAllowed(origin, requestHost string) bool {
	if len(c.AllowedOrigins) == 0 {
		return isSameOrigin(origin, requestHost)
	}

	for _, allowed := range c.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

// isSameOrigin checks if the origin matches the request host.
func isSameOrigin(origin, requestHost string) bool {
	if origin == "" {
		return true // non-browser client
	}

	originHost := origin
	if idx := strings.Index(origin, "://"); idx != -1 {
		originHost = origin[idx+3:]
	}
	originHost = strings.TrimSuffix(originHost, "/")

	return originHost == requestHost
}
