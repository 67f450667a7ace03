package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/rpattn/sightline/internal/db"
)

// Config is the full process configuration.
type Config struct {
	DB       db.Config
	Server   ServerConfig
	Auth     AuthConfig
	Geocoder GeocoderConfig
	Import   ImportConfig
}

// ServerConfig tunes the HTTP listener.
type ServerConfig struct {
	Addr           string
	AllowedOrigins []string
}

// AuthConfig carries the endpoint guard tokens.
type AuthConfig struct {
	AdminToken string
	CronToken  string
}

// GeocoderConfig points at the forward-geocoding service.
type GeocoderConfig struct {
	BaseURL    string
	APIKey     string
	SweepLimit int
}

// ImportConfig tunes the ingestion pipeline.
type ImportConfig struct {
	ChunkSize    int
	ProfileFile  string
	FetchTimeout int // seconds
}

// Load reads config.yaml from configPath with environment overrides
// (SIGHTLINE_ prefix, e.g. SIGHTLINE_DATABASE_HOST).
func Load(configPath string) (Config, error) {
	cfg := Config{
		DB: db.DefaultConfig(),
		Server: ServerConfig{
			Addr:           ":8080",
			AllowedOrigins: []string{"*"},
		},
		Geocoder: GeocoderConfig{
			BaseURL:    "https://us1.locationiq.com",
			SweepLimit: 50,
		},
		Import: ImportConfig{
			ChunkSize:    500,
			FetchTimeout: 30,
		},
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AutomaticEnv()
	v.SetEnvPrefix("SIGHTLINE")

	v.BindEnv("database.host")
	v.BindEnv("database.port")
	v.BindEnv("database.user")
	v.BindEnv("database.password")
	v.BindEnv("database.dbname")
	v.BindEnv("database.sslmode")
	v.BindEnv("server.addr")
	v.BindEnv("auth.admin_token")
	v.BindEnv("auth.cron_token")
	v.BindEnv("geocoder.base_url")
	v.BindEnv("geocoder.api_key")

	if err := v.ReadInConfig(); err != nil {
		fmt.Println("No config.yaml found, using defaults and env vars")
	} else {
		fmt.Println("Loaded config.yaml")
	}

	if v.IsSet("database.host") {
		cfg.DB.Host = v.GetString("database.host")
	}
	if v.IsSet("database.port") {
		cfg.DB.Port = v.GetInt("database.port")
	}
	if v.IsSet("database.user") {
		cfg.DB.User = v.GetString("database.user")
	}
	if v.IsSet("database.password") {
		cfg.DB.Password = v.GetString("database.password")
	}
	if v.IsSet("database.dbname") {
		cfg.DB.DBName = v.GetString("database.dbname")
	}
	if v.IsSet("database.sslmode") {
		cfg.DB.SSLMode = v.GetString("database.sslmode")
	}

	if v.IsSet("server.addr") {
		cfg.Server.Addr = v.GetString("server.addr")
	}
	if v.IsSet("server.allowed_origins") {
		cfg.Server.AllowedOrigins = v.GetStringSlice("server.allowed_origins")
	}

	if v.IsSet("auth.admin_token") {
		cfg.Auth.AdminToken = v.GetString("auth.admin_token")
	}
	if v.IsSet("auth.cron_token") {
		cfg.Auth.CronToken = v.GetString("auth.cron_token")
	}

	if v.IsSet("geocoder.base_url") {
		cfg.Geocoder.BaseURL = v.GetString("geocoder.base_url")
	}
	if v.IsSet("geocoder.api_key") {
		cfg.Geocoder.APIKey = v.GetString("geocoder.api_key")
	}
	if v.IsSet("geocoder.sweep_limit") {
		cfg.Geocoder.SweepLimit = v.GetInt("geocoder.sweep_limit")
	}

	if v.IsSet("import.chunk_size") {
		cfg.Import.ChunkSize = v.GetInt("import.chunk_size")
	}
	if v.IsSet("import.profile_file") {
		cfg.Import.ProfileFile = v.GetString("import.profile_file")
	}
	if v.IsSet("import.fetch_timeout") {
		cfg.Import.FetchTimeout = v.GetInt("import.fetch_timeout")
	}

	return cfg, nil
}
