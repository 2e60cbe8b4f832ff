package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	envPrefix  = "LOBBYMATCH"
	DotEnvFile = ".env"

	KeyListen          = "listen"
	KeyHistoryLimit    = "history_limit"
	KeyServer          = "server"
	KeyLogLevel        = "log_level"
	KeyShutdownTimeout = "shutdown_timeout"
	KeyArchivePath     = "archive.path"
)

type Config struct {
	Listen          string
	HistoryLimit    int
	Server          string
	LogLevel        slog.Level
	ShutdownTimeout time.Duration
	ArchivePath     string
}

// New returns a viper instance with defaults and LOBBYMATCH_* environment
// bindings applied.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyListen, "0.0.0.0:5000")
	v.SetDefault(KeyHistoryLimit, 8)
	v.SetDefault(KeyServer, "http://127.0.0.1:5000")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyShutdownTimeout, 5*time.Second)
	v.SetDefault(KeyArchivePath, "")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// LoadEnvFile exports the variables of a dotenv file into the process
// environment. Variables that are already set win, and a missing file is not
// an error.
func LoadEnvFile(path string) error {
	if path == "" {
		path = DotEnvFile
	}

	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", path, err)
	}

	return nil
}

// Load reads the optional config file and resolves every setting.
func Load(v *viper.Viper, configFile string) (Config, error) {
	if v == nil {
		v = New()
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	level, err := parseLevel(v.GetString(KeyLogLevel))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Listen:          v.GetString(KeyListen),
		HistoryLimit:    v.GetInt(KeyHistoryLimit),
		Server:          v.GetString(KeyServer),
		LogLevel:        level,
		ShutdownTimeout: v.GetDuration(KeyShutdownTimeout),
		ArchivePath:     v.GetString(KeyArchivePath),
	}

	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Listen) == "" {
		return fmt.Errorf("%s is required", KeyListen)
	}
	if c.HistoryLimit < 1 {
		return fmt.Errorf("%s must be at least 1, got %d", KeyHistoryLimit, c.HistoryLimit)
	}
	if c.ShutdownTimeout < 0 {
		return fmt.Errorf("%s must not be negative, got %s", KeyShutdownTimeout, c.ShutdownTimeout)
	}
	return nil
}

func parseLevel(raw string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(raw))); err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", KeyLogLevel, raw, err)
	}
	return level, nil
}
