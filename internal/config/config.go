// Package config loads coverdraft settings from an optional .env file, an
// optional coverdraft.yaml and COVERDRAFT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the resolved application configuration.
type Config struct {
	Library  LibraryConfig  `mapstructure:"library"`
	Database DatabaseConfig `mapstructure:"database"`
	User     UserConfig     `mapstructure:"user"`
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	AI       AIConfig       `mapstructure:"ai"`
	Export   ExportConfig   `mapstructure:"export"`
}

type LibraryConfig struct {
	Dir string `mapstructure:"dir"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// UserConfig pins an identity. When ID is empty the signed-in user from the
// library's identity file is used instead.
type UserConfig struct {
	ID string `mapstructure:"id"`
}

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type AIConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type ExportConfig struct {
	Dir          string `mapstructure:"dir"`
	Width        int    `mapstructure:"width"`
	LinesPerPage int    `mapstructure:"lines_per_page"`
}

const envPrefix = "COVERDRAFT"

var keys = []string{
	"library.dir",
	"database.path",
	"user.id",
	"server.port",
	"log.level",
	"log.format",
	"ai.api_key",
	"ai.model",
	"export.dir",
	"export.width",
	"export.lines_per_page",
}

// Load reads configuration using the default search paths.
func Load() (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigName("coverdraft")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".coverdraft"))
	}
	return load(v)
}

// LoadFile reads configuration from an explicit YAML file.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	// Unmarshal only sees env overrides for keys viper already knows about.
	for _, key := range keys {
		_ = v.BindEnv(key)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := applyDefaults(&cfg); err != nil {
		return nil, err
	}
	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func loadEnvFile() {
	for _, path := range []string{".env", filepath.Join("..", ".env")} {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

func applyDefaults(cfg *Config) error {
	if cfg.Library.Dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to resolve home directory: %w", err)
		}
		cfg.Library.Dir = filepath.Join(home, ".coverdraft")
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = filepath.Join(cfg.Library.Dir, "letters.db")
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.AI.Model == "" {
		cfg.AI.Model = "gemini-1.5-flash"
	}
	if cfg.Export.Dir == "" {
		cfg.Export.Dir = filepath.Join(cfg.Library.Dir, "exports")
	}
	if cfg.Export.Width == 0 {
		cfg.Export.Width = 80
	}
	if cfg.Export.LinesPerPage == 0 {
		cfg.Export.LinesPerPage = 54
	}
	return nil
}

func validateConfig(cfg *Config) error {
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", cfg.Server.Port)
	}
	switch strings.ToLower(cfg.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error, got %q", cfg.Log.Level)
	}
	switch strings.ToLower(cfg.Log.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("log.format must be json or console, got %q", cfg.Log.Format)
	}
	if cfg.Export.Width < 20 {
		return fmt.Errorf("export.width must be at least 20, got %d", cfg.Export.Width)
	}
	if cfg.Export.LinesPerPage < 1 {
		return fmt.Errorf("export.lines_per_page must be positive, got %d", cfg.Export.LinesPerPage)
	}
	return nil
}

// LogFile is where the TUI writes its log so output never lands on screen.
func (c *Config) LogFile() string {
	return filepath.Join(c.Library.Dir, "logs", "coverdraft.log")
}
