package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	ServerPort     string
	DatabaseType   string
	DatabasePath   string
	DatabaseURL    string
	MigrationsPath string
	LogLevel       string
	Debug          bool

	RateLimitRequests int
	RateLimitWindow   time.Duration

	SESRegion    string
	SESFromEmail string
	SESFromName  string
	AppBaseURL   string
}

// Load reads configuration from the environment (and an optional .env file)
// with sensible defaults
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom is Load plus an optional YAML config file. A missing file is not
// an error; environment variables always win over file values.
func LoadFrom(configFile string) (*Config, error) {
	// .env is optional and never overrides variables already set
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if configFile != "" {
		if _, err := os.Stat(configFile); err == nil {
			v.SetConfigFile(configFile)
			v.SetConfigType("yaml")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
			}
		}
	}

	return &Config{
		ServerPort:        v.GetString("port"),
		DatabaseType:      v.GetString("database_type"),
		DatabasePath:      v.GetString("db_path"),
		DatabaseURL:       v.GetString("database_url"),
		MigrationsPath:    v.GetString("migrations_path"),
		LogLevel:          v.GetString("log_level"),
		Debug:             v.GetBool("debug"),
		RateLimitRequests: v.GetInt("rate_limit_requests"),
		RateLimitWindow:   v.GetDuration("rate_limit_window"),
		SESRegion:         v.GetString("ses_region"),
		SESFromEmail:      v.GetString("ses_from_email"),
		SESFromName:       v.GetString("ses_from_name"),
		AppBaseURL:        v.GetString("app_base_url"),
	}, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("database_type", "sqlite")
	v.SetDefault("db_path", "./playtrack.db")
	v.SetDefault("database_url", "")
	// empty means the migrations embedded in the binary
	v.SetDefault("migrations_path", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("debug", false)
	v.SetDefault("rate_limit_requests", 60)
	v.SetDefault("rate_limit_window", time.Minute)
	v.SetDefault("ses_region", "us-east-1")
	v.SetDefault("ses_from_email", "")
	v.SetDefault("ses_from_name", "PlayTrack")
	v.SetDefault("app_base_url", "http://localhost:8080")
}
