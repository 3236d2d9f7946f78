package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func validConfig() Config {
	return Config{
		HTTP: HTTPConfig{Port: 8080},
		Repository: RepositoryConfig{
			AdHocQueryPath:  "http://ax.local/AppXtender/Rest/api/adhocqueryresults",
			IndexLookupPath: "http://ax.local/AppXtender/Rest/api/selectindexlookup",
		},
		Storage: StorageConfig{Bucket: "archive", Region: "us-east-1"},
	}
}

func TestValidate_Valid(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"adhoc path", func(c *Config) { c.Repository.AdHocQueryPath = "" }, "repository.adhoc_query_path"},
		{"lookup path", func(c *Config) { c.Repository.IndexLookupPath = "" }, "repository.index_lookup_path"},
		{"bucket", func(c *Config) { c.Storage.Bucket = "" }, "storage.bucket"},
		{"region", func(c *Config) { c.Storage.Region = "" }, "storage.region"},
		{"metadata dsn", func(c *Config) { c.Metadata.Driver = "postgres" }, "metadata.dsn"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestValidate_MetadataDriver(t *testing.T) {
	for _, driver := range []string{"", "postgres", "sqlserver", "sqlite"} {
		t.Run("driver="+driver, func(t *testing.T) {
			cfg := validConfig()
			cfg.Metadata = MetadataConfig{Driver: driver, DSN: "x"}
			if err := cfg.Validate(); err != nil {
				t.Fatalf("unexpected error for driver %q: %v", driver, err)
			}
		})
	}

	cfg := validConfig()
	cfg.Metadata = MetadataConfig{Driver: "oracle", DSN: "x"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for unsupported driver")
	}
	expected := `metadata.driver must be "postgres", "sqlserver" or "sqlite", got "oracle"`
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 120 {
		t.Errorf("expected WriteTimeoutSec=120, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.Repository.TimeoutSec != 30 {
		t.Errorf("expected Repository.TimeoutSec=30, got %d", cfg.Repository.TimeoutSec)
	}
	if cfg.Metadata.Table != "historical" {
		t.Errorf("expected Metadata.Table=historical, got %q", cfg.Metadata.Table)
	}
	if cfg.Metadata.ReadinessTimeout != 10 {
		t.Errorf("expected ReadinessTimeout=10, got %d", cfg.Metadata.ReadinessTimeout)
	}
	if cfg.Storage.URLTTLSec != 120 {
		t.Errorf("expected URLTTLSec=120, got %d", cfg.Storage.URLTTLSec)
	}
	if cfg.Metadata.Enabled() {
		t.Error("metadata must be disabled without a driver")
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:     HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Metadata: MetadataConfig{Table: "ax.historical", MaxConnections: 10},
		Storage:  StorageConfig{URLTTLSec: 30},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.WriteTimeoutSec != 60 {
		t.Errorf("expected WriteTimeoutSec=60, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Metadata.Table != "ax.historical" {
		t.Errorf("expected Table=ax.historical, got %q", cfg.Metadata.Table)
	}
	if cfg.Metadata.MaxConnections != 10 {
		t.Errorf("expected MaxConnections=10, got %d", cfg.Metadata.MaxConnections)
	}
	if cfg.Storage.URLTTLSec != 30 {
		t.Errorf("expected URLTTLSec=30, got %d", cfg.Storage.URLTTLSec)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("ARCHIVIST_TEST_BUCKET", "scans")

	got := string(expandEnvVars([]byte("a: ${ARCHIVIST_TEST_BUCKET}\nb: ${ARCHIVIST_TEST_MISSING:-fallback}\nc: ${ARCHIVIST_TEST_MISSING}")))
	want := "a: scans\nb: fallback\nc: "
	if got != want {
		t.Errorf("expandEnvVars = %q, want %q", got, want)
	}
}

func TestLoadFile(t *testing.T) {
	t.Setenv("ARCHIVIST_TEST_PORT", "9090")

	path := filepath.Join(t.TempDir(), "test.yaml")
	data := `
http:
  port: ${ARCHIVIST_TEST_PORT}
repository:
  adhoc_query_path: http://ax.local/adhoc
  index_lookup_path: http://ax.local/lookup
  credentials: dXNlcjpwYXNz
metadata:
  driver: sqlite
  dsn: file:pages.db
storage:
  bucket: archive
  region: ${ARCHIVIST_TEST_REGION:-us-east-1}
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.HTTP.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.HTTP.Port)
	}
	if cfg.Storage.Region != "us-east-1" {
		t.Errorf("region = %q", cfg.Storage.Region)
	}
	if !cfg.Metadata.Enabled() || cfg.Metadata.Table != "historical" {
		t.Errorf("metadata = %+v", cfg.Metadata)
	}
}

func TestLoadFile_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("http:\n  port: 8080\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected validation error")
	}
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected read error")
	}
}
