package extension

import (
	"time"

	"github.com/xraph/digigate/plugin"
	redisstore "github.com/xraph/digigate/store/redis"
)

// Store drivers understood by the extension.
const (
	DriverMemory   = "memory"
	DriverRedis    = "redis"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

// Config holds the digigate extension configuration.
// Fields can be set programmatically via Option functions or loaded from
// YAML configuration files (under "extensions.digigate" or "digigate" keys).
type Config struct {
	// DisableMigrate prevents auto-migration on start.
	DisableMigrate bool `json:"disable_migrate" mapstructure:"disable_migrate" yaml:"disable_migrate"`

	// StoreDriver selects the persistence backend (default: "memory").
	// The grove-backed drivers (sqlite, postgres, mongo) need WithGroveDB.
	StoreDriver string `json:"store_driver" mapstructure:"store_driver" yaml:"store_driver"`

	// Redis holds the connection settings used when StoreDriver is "redis".
	Redis redisstore.Config `json:"redis" mapstructure:"redis" yaml:"redis"`

	// Timezone is the IANA zone in which the daily download counter rolls
	// over (default: "UTC").
	Timezone string `json:"timezone" mapstructure:"timezone" yaml:"timezone"`

	// PlansFile points at a YAML plan catalog. Empty means the built-in catalog.
	PlansFile string `json:"plans_file" mapstructure:"plans_file" yaml:"plans_file"`

	// PluginTimeout bounds each plugin hook call (default: 5s).
	PluginTimeout time.Duration `json:"plugin_timeout" mapstructure:"plugin_timeout" yaml:"plugin_timeout"`

	// RequireConfig requires config to be present in YAML files.
	// If true and no config is found, Register returns an error.
	RequireConfig bool `json:"-" yaml:"-"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		StoreDriver:   DriverMemory,
		Timezone:      "UTC",
		PluginTimeout: plugin.DefaultTimeout,
		Redis: redisstore.Config{
			Addr:        "localhost:6379",
			MaxRetries:  3,
			DialTimeout: 5 * time.Second,
			Timeout:     3 * time.Second,
		},
	}
}
