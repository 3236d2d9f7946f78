package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the archivist API configuration.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Auth       AuthConfig       `yaml:"auth"`
	Repository RepositoryConfig `yaml:"repository"`
	Metadata   MetadataConfig   `yaml:"metadata"`
	Storage    StorageConfig    `yaml:"storage"`
	Catalog    CatalogConfig    `yaml:"catalog"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// RepositoryConfig holds document repository endpoints.
type RepositoryConfig struct {
	AdHocQueryPath  string `yaml:"adhoc_query_path"`
	IndexLookupPath string `yaml:"index_lookup_path"`
	Credentials     string `yaml:"credentials"` // pre-encoded Basic credentials
	TimeoutSec      int    `yaml:"timeout_sec"`
}

// MetadataConfig holds the page-count database settings. An empty driver
// disables page-count enrichment.
type MetadataConfig struct {
	Driver           string `yaml:"driver"` // postgres, sqlserver, sqlite
	DSN              string `yaml:"dsn"`
	Table            string `yaml:"table"`
	MaxConnections   int    `yaml:"max_connections"`
	ReadinessTimeout int    `yaml:"readiness_timeout_sec"`
}

// Enabled reports whether a metadata database is configured.
func (m MetadataConfig) Enabled() bool { return m.Driver != "" }

// StorageConfig holds object storage settings.
type StorageConfig struct {
	Bucket             string `yaml:"bucket"`
	Region             string `yaml:"region"`
	AccessKeyID        string `yaml:"access_key_id"`
	SecretAccessKey    string `yaml:"secret_access_key"`
	Endpoint           string `yaml:"endpoint"`
	URLTTLSec          int    `yaml:"url_ttl_sec"`
	DownloadTimeoutSec int    `yaml:"download_timeout_sec"`
}

// CatalogConfig points at an optional catalog file.
type CatalogConfig struct {
	File string `yaml:"file"` // empty = built-in catalog
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from path.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 120 // document downloads stream through
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Repository.TimeoutSec <= 0 {
		c.Repository.TimeoutSec = 30
	}
	if c.Metadata.Table == "" {
		c.Metadata.Table = "historical"
	}
	if c.Metadata.MaxConnections <= 0 {
		c.Metadata.MaxConnections = 4
	}
	if c.Metadata.ReadinessTimeout <= 0 {
		c.Metadata.ReadinessTimeout = 10
	}
	if c.Storage.URLTTLSec <= 0 {
		c.Storage.URLTTLSec = 120
	}
	if c.Storage.DownloadTimeoutSec <= 0 {
		c.Storage.DownloadTimeoutSec = 300
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Repository.AdHocQueryPath == "" {
		return fmt.Errorf("repository.adhoc_query_path is required")
	}
	if c.Repository.IndexLookupPath == "" {
		return fmt.Errorf("repository.index_lookup_path is required")
	}
	switch c.Metadata.Driver {
	case "":
		// enrichment disabled
	case "postgres", "sqlserver", "sqlite":
		if c.Metadata.DSN == "" {
			return fmt.Errorf("metadata.dsn is required for driver %q", c.Metadata.Driver)
		}
	default:
		return fmt.Errorf(
			"metadata.driver must be \"postgres\", \"sqlserver\" or \"sqlite\", got %q",
			c.Metadata.Driver,
		)
	}
	if c.Storage.Bucket == "" {
		return fmt.Errorf("storage.bucket is required")
	}
	if c.Storage.Region == "" {
		return fmt.Errorf("storage.region is required")
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
