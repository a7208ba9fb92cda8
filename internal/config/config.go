// Package config resolves LOTUS_* settings from the environment, an optional
// .env file and an optional lotus.env config file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/danielpatrickdp/lotus-engine/internal/generator"
)

// #region keys

const (
	KeyDB             = "LOTUS_DB"
	KeyContentDir     = "LOTUS_CONTENT_DIR"
	KeyCatalog        = "LOTUS_CATALOG"
	KeyGRPCAddr       = "LOTUS_GRPC_ADDR"
	KeyLogLevel       = "LOTUS_LOG_LEVEL"
	KeyMaxAttempts    = "LOTUS_MAX_ATTEMPTS"
	KeyWildcardChance = "LOTUS_WILDCARD_CHANCE"
)

// #endregion keys

// #region config

// Config holds resolved runtime settings.
type Config struct {
	DB             string
	ContentDir     string // empty means the embedded content
	Catalog        string
	GRPCAddr       string
	LogLevel       string
	MaxAttempts    int
	WildcardChance float64
}

// ConfigFile is the only file name New looks for.
const ConfigFile = "lotus.env"

// New returns a viper instance with defaults and env binding. The config file
// is the first lotus.env found in the current directory, then home.
func New() *viper.Viper {
	v := viper.New()
	v.SetConfigType("env")
	if path, ok := findConfigFile(searchDirs()); ok {
		v.SetConfigFile(path)
	}

	v.SetDefault(KeyDB, "lotus.db")
	v.SetDefault(KeyContentDir, "")
	v.SetDefault(KeyCatalog, "")
	v.SetDefault(KeyGRPCAddr, "localhost:50061")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyMaxAttempts, generator.DefaultMaxAttempts)
	v.SetDefault(KeyWildcardChance, 0.10)
	v.AutomaticEnv()
	return v
}

func searchDirs() []string {
	dirs := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, home)
	}
	return dirs
}

// findConfigFile returns the first regular lotus.env file in dirs.
func findConfigFile(dirs []string) (string, bool) {
	for _, dir := range dirs {
		path := filepath.Join(dir, ConfigFile)
		if fi, err := os.Stat(path); err == nil && fi.Mode().IsRegular() {
			return path, true
		}
	}
	return "", false
}

// LoadDotEnv loads .env files into the process environment. Missing files
// are skipped; existing variables win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// Load reads the config file if one exists and resolves every key.
func Load(v *viper.Viper) (Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	c := Config{
		DB:             v.GetString(KeyDB),
		ContentDir:     v.GetString(KeyContentDir),
		Catalog:        v.GetString(KeyCatalog),
		GRPCAddr:       v.GetString(KeyGRPCAddr),
		LogLevel:       strings.ToLower(v.GetString(KeyLogLevel)),
		MaxAttempts:    v.GetInt(KeyMaxAttempts),
		WildcardChance: v.GetFloat64(KeyWildcardChance),
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate rejects settings the engine cannot run with.
func (c Config) Validate() error {
	if c.MaxAttempts < 1 {
		return fmt.Errorf("%s must be at least 1, got %d", KeyMaxAttempts, c.MaxAttempts)
	}
	if c.WildcardChance < 0 || c.WildcardChance > 1 {
		return fmt.Errorf("%s must be in [0, 1], got %g", KeyWildcardChance, c.WildcardChance)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// #endregion config

// #region derived

// Level returns the slog level for LogLevel, defaulting to info.
func (c Config) Level() slog.Level {
	l, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return l
}

// Generator returns generator settings with the configured tuning.
func (c Config) Generator() generator.Config {
	g := generator.DefaultConfig()
	g.MaxAttempts = c.MaxAttempts
	g.Selector.WildcardChance = c.WildcardChance
	return g
}

func parseLevel(s string) (slog.Level, error) {
	switch s {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("%s: unknown level %q", KeyLogLevel, s)
	}
}

// #endregion derived
