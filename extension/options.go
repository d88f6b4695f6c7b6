package extension

import (
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/digigate"
	"github.com/xraph/digigate/plugin"
	"github.com/xraph/digigate/store"
	redisstore "github.com/xraph/digigate/store/redis"
)

// Option configures the digigate Forge extension.
type Option func(*Extension)

// WithStore sets the store for the engine. It takes precedence over
// StoreDriver.
func WithStore(s store.Store) Option {
	return func(e *Extension) {
		e.store = s
	}
}

// WithEngineOption passes a digigate.Option through to the underlying engine.
func WithEngineOption(opt digigate.Option) Option {
	return func(e *Extension) {
		e.engineOpts = append(e.engineOpts, opt)
	}
}

// WithPlugin registers a digigate plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Extension) {
		e.engineOpts = append(e.engineOpts, digigate.WithPlugin(p))
	}
}

// WithConfig sets the Forge extension configuration.
func WithConfig(cfg Config) Option {
	return func(e *Extension) { e.config = cfg }
}

// WithDisableMigrate prevents auto-migration on start.
func WithDisableMigrate() Option {
	return func(e *Extension) { e.config.DisableMigrate = true }
}

// WithRequireConfig requires config to be present in YAML files.
// If true and no config is found, Register returns an error.
func WithRequireConfig(require bool) Option {
	return func(e *Extension) { e.config.RequireConfig = require }
}

// WithStoreDriver selects the persistence backend by name.
func WithStoreDriver(driver string) Option {
	return func(e *Extension) { e.config.StoreDriver = driver }
}

// WithRedis selects the redis backend with the given settings.
func WithRedis(cfg redisstore.Config) Option {
	return func(e *Extension) {
		e.config.StoreDriver = DriverRedis
		e.config.Redis = cfg
	}
}

// WithGroveDB provides the grove database used by the sqlite, postgres and
// mongo drivers.
func WithGroveDB(db *grove.DB) Option {
	return func(e *Extension) { e.groveDB = db }
}

// WithTimezone sets the zone in which daily counters roll over.
func WithTimezone(name string) Option {
	return func(e *Extension) { e.config.Timezone = name }
}

// WithPlansFile loads the plan catalog from a YAML file.
func WithPlansFile(path string) Option {
	return func(e *Extension) { e.config.PlansFile = path }
}

// WithPluginTimeout bounds each plugin hook call.
func WithPluginTimeout(d time.Duration) Option {
	return func(e *Extension) { e.config.PluginTimeout = d }
}
