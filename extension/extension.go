// Package extension provides the Forge extension adapter for digigate.
//
// It implements the forge.Extension interface to integrate the entitlement
// engine into a Forge application with DI registration and lifecycle
// management.
//
// Configuration can be provided programmatically via Option functions
// or via YAML configuration files under "extensions.digigate" or "digigate" keys.
package extension

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xraph/forge"
	"github.com/xraph/grove"
	"github.com/xraph/vessel"

	"github.com/xraph/digigate"
	"github.com/xraph/digigate/plan"
	"github.com/xraph/digigate/store"
	"github.com/xraph/digigate/store/memory"
	mongostore "github.com/xraph/digigate/store/mongo"
	pgstore "github.com/xraph/digigate/store/postgres"
	redisstore "github.com/xraph/digigate/store/redis"
	sqlitestore "github.com/xraph/digigate/store/sqlite"
)

// ExtensionName is the name registered with Forge.
const ExtensionName = "digigate"

// ExtensionDescription is the human-readable description.
const ExtensionDescription = "Trial, subscription and download entitlements"

// ExtensionVersion is the semantic version.
const ExtensionVersion = "0.1.0"

// Ensure Extension implements forge.Extension at compile time.
var _ forge.Extension = (*Extension)(nil)

// Extension adapts digigate as a Forge extension.
type Extension struct {
	*forge.BaseExtension

	config     Config
	engine     *digigate.Engine
	store      store.Store
	groveDB    *grove.DB
	engineOpts []digigate.Option
}

// New creates a new digigate Forge extension with the given options.
func New(opts ...Option) *Extension {
	e := &Extension{
		BaseExtension: forge.NewBaseExtension(ExtensionName, ExtensionVersion, ExtensionDescription),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Engine returns the underlying engine.
// This is nil until Register is called.
func (e *Extension) Engine() *digigate.Engine { return e.engine }

// Register implements [forge.Extension]. It loads configuration,
// initializes the engine, and registers it in the DI container.
func (e *Extension) Register(fapp forge.App) error {
	if err := e.BaseExtension.Register(fapp); err != nil {
		return err
	}

	if err := e.loadConfiguration(); err != nil {
		return err
	}

	if err := e.build(context.Background()); err != nil {
		return err
	}

	return vessel.Provide(fapp.Container(), func() (*digigate.Engine, error) {
		return e.engine, nil
	})
}

// build opens the store and constructs the engine from the resolved config.
func (e *Extension) build(ctx context.Context) error {
	if e.store == nil {
		s, err := e.openStore(ctx)
		if err != nil {
			return err
		}
		e.store = s
	}

	opts, err := e.buildEngineOpts()
	if err != nil {
		return err
	}

	e.engine = digigate.New(e.store, opts...)
	return nil
}

// Start implements [forge.Extension].
func (e *Extension) Start(ctx context.Context) error {
	if e.engine == nil {
		return errors.New("digigate: extension not initialized")
	}

	if !e.config.DisableMigrate {
		if err := e.engine.Start(ctx); err != nil {
			return err
		}
	}

	e.MarkStarted()
	return nil
}

// Stop implements [forge.Extension].
func (e *Extension) Stop(_ context.Context) error {
	if e.engine != nil {
		if err := e.engine.Stop(); err != nil {
			e.MarkStopped()
			return err
		}
	}
	e.MarkStopped()
	return nil
}

// Health implements [forge.Extension].
func (e *Extension) Health(ctx context.Context) error {
	if e.store == nil {
		return errors.New("digigate: store not initialized")
	}
	return e.store.Ping(ctx)
}

// openStore builds the backend named by StoreDriver.
func (e *Extension) openStore(ctx context.Context) (store.Store, error) {
	switch e.config.StoreDriver {
	case "", DriverMemory:
		return memory.New(), nil
	case DriverRedis:
		return redisstore.Open(ctx, e.config.Redis)
	case DriverSQLite, DriverPostgres, DriverMongo:
		if e.groveDB == nil {
			return nil, fmt.Errorf("digigate: store driver %q needs a grove database", e.config.StoreDriver)
		}
	default:
		return nil, fmt.Errorf("digigate: unknown store driver %q", e.config.StoreDriver)
	}

	switch e.config.StoreDriver {
	case DriverSQLite:
		return sqlitestore.New(e.groveDB), nil
	case DriverPostgres:
		return pgstore.New(e.groveDB), nil
	default:
		return mongostore.New(e.groveDB), nil
	}
}

// buildEngineOpts constructs digigate.Option values from the resolved config.
func (e *Extension) buildEngineOpts() ([]digigate.Option, error) {
	opts := make([]digigate.Option, 0, len(e.engineOpts)+3)

	if e.config.Timezone != "" {
		loc, err := time.LoadLocation(e.config.Timezone)
		if err != nil {
			return nil, fmt.Errorf("digigate: timezone %q: %w", e.config.Timezone, err)
		}
		opts = append(opts, digigate.WithLocation(loc))
	}

	if e.config.PlansFile != "" {
		catalog, err := plan.LoadFile(e.config.PlansFile)
		if err != nil {
			return nil, err
		}
		opts = append(opts, digigate.WithCatalog(catalog))
	}

	if e.config.PluginTimeout > 0 {
		opts = append(opts, digigate.WithPluginTimeout(e.config.PluginTimeout))
	}

	// Append any pass-through engine options.
	opts = append(opts, e.engineOpts...)

	return opts, nil
}

// --- Config Loading ---

// loadConfiguration loads config from YAML files or programmatic sources.
func (e *Extension) loadConfiguration() error {
	programmaticConfig := e.config

	// Try loading from config file.
	fileConfig, configLoaded := e.tryLoadFromConfigFile()

	if !configLoaded {
		if programmaticConfig.RequireConfig {
			return errors.New("digigate: configuration is required but not found in config files; " +
				"ensure 'extensions.digigate' or 'digigate' key exists in your config")
		}

		e.config = mergeWithDefaults(programmaticConfig)
	} else {
		e.config = mergeConfigurations(fileConfig, programmaticConfig)
	}

	e.Logger().Debug("digigate: configuration loaded",
		forge.F("disable_migrate", e.config.DisableMigrate),
		forge.F("store_driver", e.config.StoreDriver),
		forge.F("timezone", e.config.Timezone),
		forge.F("plans_file", e.config.PlansFile),
		forge.F("plugin_timeout", e.config.PluginTimeout),
	)

	return nil
}

// tryLoadFromConfigFile attempts to load config from YAML files.
func (e *Extension) tryLoadFromConfigFile() (Config, bool) {
	cm := e.App().Config()
	var cfg Config

	for _, key := range []string{"extensions.digigate", "digigate"} {
		if !cm.IsSet(key) {
			continue
		}
		if err := cm.Bind(key, &cfg); err == nil {
			e.Logger().Debug("digigate: loaded config from file",
				forge.F("key", key),
			)
			return cfg, true
		}
		e.Logger().Warn("digigate: failed to bind config",
			forge.F("key", key),
			forge.F("error", "bind failed"),
		)
	}

	return Config{}, false
}

// mergeWithDefaults fills zero-valued fields with defaults.
func mergeWithDefaults(cfg Config) Config {
	defaults := DefaultConfig()
	if cfg.StoreDriver == "" {
		cfg.StoreDriver = defaults.StoreDriver
	}
	if cfg.Timezone == "" {
		cfg.Timezone = defaults.Timezone
	}
	if cfg.PluginTimeout == 0 {
		cfg.PluginTimeout = defaults.PluginTimeout
	}
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = defaults.Redis.Addr
	}
	if cfg.Redis.MaxRetries == 0 {
		cfg.Redis.MaxRetries = defaults.Redis.MaxRetries
	}
	if cfg.Redis.DialTimeout == 0 {
		cfg.Redis.DialTimeout = defaults.Redis.DialTimeout
	}
	if cfg.Redis.Timeout == 0 {
		cfg.Redis.Timeout = defaults.Redis.Timeout
	}
	return cfg
}

// mergeConfigurations merges YAML config with programmatic options.
// YAML config takes precedence; programmatic values fill gaps.
func mergeConfigurations(yamlConfig, programmaticConfig Config) Config {
	if programmaticConfig.DisableMigrate {
		yamlConfig.DisableMigrate = true
	}

	if yamlConfig.StoreDriver == "" {
		yamlConfig.StoreDriver = programmaticConfig.StoreDriver
	}
	if yamlConfig.Timezone == "" {
		yamlConfig.Timezone = programmaticConfig.Timezone
	}
	if yamlConfig.PlansFile == "" {
		yamlConfig.PlansFile = programmaticConfig.PlansFile
	}
	if yamlConfig.PluginTimeout == 0 {
		yamlConfig.PluginTimeout = programmaticConfig.PluginTimeout
	}
	if yamlConfig.Redis == (redisstore.Config{}) {
		yamlConfig.Redis = programmaticConfig.Redis
	}

	return mergeWithDefaults(yamlConfig)
}
