package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables that override values from the YAML file.
const (
	EnvDatabasePassword = "FOTHEBYS_DB_PASSWORD"
	EnvMongoURI         = "FOTHEBYS_MONGO_URI"
	EnvAuthSecret       = "FOTHEBYS_AUTH_SECRET"
	EnvNATSURL          = "FOTHEBYS_NATS_URL"
	EnvEnvironment      = "FOTHEBYS_ENVIRONMENT"
)

// Store driver names accepted in database.driver.
const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverMemory   = "memory"
)

// minSecretLen is the shortest HMAC secret accepted for token verification.
const minSecretLen = 32

// Config represents the application configuration.
type Config struct {
	Database       DatabaseConfig       `yaml:"database"`
	Server         ServerConfig         `yaml:"server"`
	Auth           AuthConfig           `yaml:"auth"`
	Telemetry      TelemetryConfig      `yaml:"telemetry"`
	LeaderElection LeaderElectionConfig `yaml:"leader_election"`
	NATS           NATSConfig           `yaml:"nats"`
}

// DatabaseConfig holds catalog store connection settings.
type DatabaseConfig struct {
	Driver   string `yaml:"driver"` // "postgres", "mongo" or "memory"
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
	// URI is the MongoDB connection string; only read by the mongo driver.
	URI         string `yaml:"uri"`
	AutoMigrate bool   `yaml:"auto_migrate"`
}

// DSN returns the Postgres connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// AuthConfig holds bearer token verification settings.
type AuthConfig struct {
	Secret   string        `yaml:"secret"`
	Issuer   string        `yaml:"issuer"`
	TokenTTL time.Duration `yaml:"token_ttl"`
}

// TelemetryConfig holds OpenTelemetry settings.
type TelemetryConfig struct {
	ServiceName    string  `yaml:"service_name"`
	ServiceVersion string  `yaml:"service_version"`
	Environment    string  `yaml:"environment"` // deployment.environment resource attribute
	OTLPEndpoint   string  `yaml:"otlp_endpoint"`
	Insecure       bool    `yaml:"insecure"`
	SampleRatio    float64 `yaml:"sample_ratio"`
}

// LeaderElectionConfig holds Kubernetes leader election settings.
type LeaderElectionConfig struct {
	Enabled        bool          `yaml:"enabled"`
	LeaseName      string        `yaml:"lease_name"`
	LeaseNamespace string        `yaml:"lease_namespace"`
	LeaseDuration  time.Duration `yaml:"lease_duration"`
	RenewDeadline  time.Duration `yaml:"renew_deadline"`
	RetryPeriod    time.Duration `yaml:"retry_period"`
}

// NATSConfig holds integration event publishing settings. An empty URL disables publishing.
type NATSConfig struct {
	URL           string `yaml:"url"`
	SubjectPrefix string `yaml:"subject_prefix"`
}

// Load reads a YAML configuration file from the given path, then applies
// overrides from the environment and an optional .env file in the working directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}
	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ShutdownTimeout: 15 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:      DriverPostgres,
			Host:        "localhost",
			Port:        5432,
			SSLMode:     "disable",
			AutoMigrate: true,
		},
		Auth: AuthConfig{
			Issuer:   "fothebys",
			TokenTTL: 24 * time.Hour,
		},
		Telemetry: TelemetryConfig{
			ServiceName:    "fothebys",
			ServiceVersion: "0.1.0",
			Environment:    "development",
			SampleRatio:    1,
		},
		LeaderElection: LeaderElectionConfig{
			Enabled:        false,
			LeaseName:      "fothebys-migrations",
			LeaseNamespace: "default",
			LeaseDuration:  15 * time.Second,
			RenewDeadline:  10 * time.Second,
			RetryPeriod:    2 * time.Second,
		},
		NATS: NATSConfig{
			SubjectPrefix: "fothebys",
		},
	}
}

// applyEnv copies non-empty overrides from the process environment.
func (c *Config) applyEnv() {
	if v := os.Getenv(EnvDatabasePassword); v != "" {
		c.Database.Password = v
	}
	if v := os.Getenv(EnvMongoURI); v != "" {
		c.Database.URI = v
	}
	if v := os.Getenv(EnvAuthSecret); v != "" {
		c.Auth.Secret = v
	}
	if v := os.Getenv(EnvNATSURL); v != "" {
		c.NATS.URL = v
	}
	if v := os.Getenv(EnvEnvironment); v != "" {
		c.Telemetry.Environment = v
	}
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverMemory:
	case DriverMongo:
		if c.Database.URI == "" {
			return errors.New("database.uri is required for the mongo driver")
		}
	default:
		return fmt.Errorf("unsupported database driver %q: must be %q, %q or %q",
			c.Database.Driver, DriverPostgres, DriverMongo, DriverMemory)
	}
	if len(c.Auth.Secret) < minSecretLen {
		return fmt.Errorf("auth.secret must be at least %d bytes", minSecretLen)
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("auth.token_ttl must be positive")
	}
	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > 1 {
		return fmt.Errorf("telemetry.sample_ratio %v must be within [0, 1]", c.Telemetry.SampleRatio)
	}
	return nil
}
