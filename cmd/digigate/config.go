package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"

	redisstore "github.com/xraph/digigate/store/redis"
)

// Config is read from an optional YAML file and DIGIGATE_* variables.
type Config struct {
	UserID    string            `yaml:"user_id" env:"DIGIGATE_USER" env-default:"demo"`
	Store     string            `yaml:"store" env:"DIGIGATE_STORE" env-default:"memory"`
	Timezone  string            `yaml:"timezone" env:"DIGIGATE_TIMEZONE" env-default:"UTC"`
	PlansFile string            `yaml:"plans_file" env:"DIGIGATE_PLANS_FILE"`
	LogLevel  string            `yaml:"log_level" env:"DIGIGATE_LOG_LEVEL" env-default:"warn"`
	Redis     redisstore.Config `yaml:"redis"`
}

// loadConfig reads envFile (if present) into the process environment, then
// fills Config from path or, when path is empty, from the environment alone.
func loadConfig(path, envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	var cfg Config
	if path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		return cfg, nil
	}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read environment: %w", err)
	}
	return cfg, nil
}

func (c Config) level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
