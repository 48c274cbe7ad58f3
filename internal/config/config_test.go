package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rhm-kanzlei/mailroom/internal/config"
)

const baseConfig = `
shutdown_timeout = "30s"
version = "0.1.0"

[server]
host = "0.0.0.0"
port = 8080
read_timeout = "1m"
write_timeout = "15m"
shutdown_timeout = "30s"

[database]
host = "localhost"
port = 5432
name = "mailroom"
user = "mailroom"
password = "mailroom"
ssl_mode = "disable"
max_open_conns = 25
max_idle_conns = 5
conn_max_lifetime = "15m"
conn_timeout = "5s"

[storage]
container_name = "intake"
connection_string = "DefaultEndpointsProtocol=http;AccountName=mailroomstore;AccountKey=key;BlobEndpoint=http://127.0.0.1:10000/mailroomstore;"

[api]
base_path = "/api"

[api.cors]
enabled = false

[api.pagination]
default_page_size = 25
max_page_size = 50

[pipeline]
mode = "keyword"
marker_word = "trennseite"

[analyzer]
model = "gpt-4o-mini"
`

const overlayConfig = `
[server]
port = 9090

[database]
host = "prodhost"

[pipeline]
mode = "structural"
`

// minimalConfig provides the minimum fields required for validation to pass.
const minimalConfig = `
shutdown_timeout = "30s"

[server]
port = 8080

[database]
name = "mailroom"
user = "mailroom"

[storage]
connection_string = "conn"

[api]
base_path = "/api"
`

func writeConfig(t *testing.T, dir, filename, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, filename), []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", filename, err)
	}
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	orig, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(orig) })
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	chdir(t, dir)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("server port: got %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Host != "localhost" {
		t.Errorf("db host: got %s, want localhost", cfg.Database.Host)
	}
	if cfg.Storage.ContainerName != "intake" {
		t.Errorf("storage container: got %s, want intake", cfg.Storage.ContainerName)
	}
	if cfg.API.BasePath != "/api" {
		t.Errorf("api base_path: got %s, want /api", cfg.API.BasePath)
	}
	if cfg.API.Pagination.DefaultPageSize != 25 {
		t.Errorf("pagination default_page_size: got %d, want 25", cfg.API.Pagination.DefaultPageSize)
	}
	if cfg.Pipeline.Mode != "keyword" {
		t.Errorf("pipeline mode: got %s, want keyword", cfg.Pipeline.Mode)
	}
	if cfg.Analyzer.Model != "gpt-4o-mini" {
		t.Errorf("analyzer model: got %s, want gpt-4o-mini", cfg.Analyzer.Model)
	}
}

func TestLoadWithOverlay(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	writeConfig(t, dir, "config.staging.toml", overlayConfig)
	chdir(t, dir)

	t.Setenv("MAILROOM_ENV", "staging")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("server port: got %d, want 9090 (from overlay)", cfg.Server.Port)
	}
	if cfg.Database.Host != "prodhost" {
		t.Errorf("db host: got %s, want prodhost (from overlay)", cfg.Database.Host)
	}
	if cfg.Database.Port != 5432 {
		t.Errorf("db port: got %d, want 5432 (from base)", cfg.Database.Port)
	}
	if cfg.Pipeline.Mode != "structural" {
		t.Errorf("pipeline mode: got %s, want structural (from overlay)", cfg.Pipeline.Mode)
	}
}

func TestLoadEnvVarOverrides(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	chdir(t, dir)

	t.Setenv("MAILROOM_VERSION", "2.0.0")
	t.Setenv("MAILROOM_SERVER_PORT", "3000")
	t.Setenv("MAILROOM_PIPELINE_MODE", "reference")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Version != "2.0.0" {
		t.Errorf("version: got %s, want 2.0.0", cfg.Version)
	}
	if cfg.Server.Port != 3000 {
		t.Errorf("server port: got %d, want 3000", cfg.Server.Port)
	}
	if cfg.Pipeline.Mode != "reference" {
		t.Errorf("pipeline mode: got %s, want reference", cfg.Pipeline.Mode)
	}
}

func TestLoadNoConfigFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	t.Setenv("MAILROOM_DB_NAME", "testdb")
	t.Setenv("MAILROOM_DB_USER", "testuser")
	t.Setenv("MAILROOM_STORAGE_CONNECTION_STRING", "conn")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load without config.toml failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("server port default: got %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Name != "testdb" {
		t.Errorf("db name from env: got %s, want testdb", cfg.Database.Name)
	}
	if cfg.Pipeline.Mode != "structural" {
		t.Errorf("pipeline mode default: got %s, want structural", cfg.Pipeline.Mode)
	}
}

func TestLoadInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", `invalid = `)
	chdir(t, dir)

	_, err := config.Load()
	if err == nil {
		t.Fatal("expected error for invalid TOML")
	}
}

func TestLoadInvalidPipelineMode(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", minimalConfig+"\n[pipeline]\nmode = \"magic\"\n")
	chdir(t, dir)

	_, err := config.Load()
	if err == nil {
		t.Fatal("expected error for unknown segmentation mode")
	}
	if !strings.Contains(err.Error(), "unknown segmentation mode") {
		t.Errorf("error = %v, want unknown segmentation mode", err)
	}
}

func TestEnvDefault(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	chdir(t, dir)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Env() != "local" {
		t.Errorf("env: got %s, want local", cfg.Env())
	}
}

func TestShutdownTimeoutDuration(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	chdir(t, dir)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if d := cfg.ShutdownTimeoutDuration(); d != 30*time.Second {
		t.Errorf("shutdown timeout: got %v, want 30s", d)
	}
}

func TestServerAddr(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	chdir(t, dir)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if addr := cfg.Server.Addr(); addr != "0.0.0.0:8080" {
		t.Errorf("addr: got %s, want 0.0.0.0:8080", addr)
	}
}

func TestPaginationDefaults(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", minimalConfig)
	chdir(t, dir)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.API.Pagination.DefaultPageSize != 20 {
		t.Errorf("pagination default_page_size: got %d, want 20", cfg.API.Pagination.DefaultPageSize)
	}
	if cfg.API.Pagination.MaxPageSize != 100 {
		t.Errorf("pagination max_page_size: got %d, want 100", cfg.API.Pagination.MaxPageSize)
	}
}

func TestMaxUploadSizeBytes(t *testing.T) {
	tests := []struct {
		name string
		size string
		want int64
	}{
		{"valid 50MB", "50MB", 50 * 1024 * 1024},
		{"valid 10MB", "10MB", 10 * 1024 * 1024},
		{"valid 1GB", "1GB", 1024 * 1024 * 1024},
		{"invalid falls back to 50MB", "bad", 50 * 1024 * 1024},
		{"empty falls back to 50MB", "", 50 * 1024 * 1024},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.APIConfig{MaxUploadSize: tt.size}
			got := cfg.MaxUploadSizeBytes()
			if got != tt.want {
				t.Errorf("MaxUploadSizeBytes() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestServerValidation(t *testing.T) {
	tests := []struct {
		name    string
		config  string
		wantErr string
	}{
		{
			name: "invalid port",
			config: `
shutdown_timeout = "30s"

[server]
port = 99999

[database]
name = "mailroom"
user = "mailroom"

[storage]
connection_string = "conn"
`,
			wantErr: "invalid port",
		},
		{
			name: "invalid read_timeout",
			config: `
shutdown_timeout = "30s"

[server]
read_timeout = "bad"

[database]
name = "mailroom"
user = "mailroom"

[storage]
connection_string = "conn"
`,
			wantErr: "invalid read_timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfig(t, dir, "config.toml", tt.config)
			chdir(t, dir)

			_, err := config.Load()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestAnalyzerEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	chdir(t, dir)

	t.Setenv("MAILROOM_OPENAI_API_KEY", "sk-test")
	t.Setenv("MAILROOM_OPENAI_MODEL", "gpt-4o")
	t.Setenv("MAILROOM_OPENAI_BASE_URL", "http://localhost:11434/v1")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Analyzer.APIKey != "sk-test" {
		t.Errorf("analyzer api key: got %s, want sk-test", cfg.Analyzer.APIKey)
	}
	if cfg.Analyzer.Model != "gpt-4o" {
		t.Errorf("analyzer model: got %s, want gpt-4o", cfg.Analyzer.Model)
	}
	if cfg.Analyzer.BaseURL != "http://localhost:11434/v1" {
		t.Errorf("analyzer base_url: got %s", cfg.Analyzer.BaseURL)
	}
}

func TestAnalyzerKeyNotRequired(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", minimalConfig)
	chdir(t, dir)

	os.Unsetenv("MAILROOM_OPENAI_API_KEY")
	os.Unsetenv("OPENAI_API_KEY")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Analyzer.APIKey != "" {
		t.Errorf("analyzer api key should be empty, got %s", cfg.Analyzer.APIKey)
	}
}

func TestPipelineTablesFile(t *testing.T) {
	dir := t.TempDir()
	tablesPath := filepath.Join(dir, "tables.yaml")
	writeConfig(t, dir, "tables.yaml", `
thresholds:
  oversize_glyph: 120

rules:
  accept: 0.5

reference:
  codes: ["AB", "CD"]
  field_markers: ["unser zeichen"]
`)
	writeConfig(t, dir, "config.toml", minimalConfig+"\n[pipeline]\ntables_file = \""+tablesPath+"\"\n")
	chdir(t, dir)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	tables, err := cfg.Pipeline.LoadTables()
	if err != nil {
		t.Fatalf("load tables failed: %v", err)
	}

	if tables.Thresholds.OversizeGlyph != 120 {
		t.Errorf("oversize_glyph: got %v, want 120", tables.Thresholds.OversizeGlyph)
	}
	if tables.Rules.Accept != 0.5 {
		t.Errorf("accept threshold: got %v, want 0.5", tables.Rules.Accept)
	}
	if len(tables.Reference.Codes) != 2 {
		t.Errorf("reference codes: got %v, want [AB CD]", tables.Reference.Codes)
	}
	// Keys absent from the file keep their defaults.
	if tables.Rules.Cap != 0.99 {
		t.Errorf("cap should keep default 0.99, got %v", tables.Rules.Cap)
	}
	if tables.Categories.DefaultFolder == "" {
		t.Error("category defaults should be populated")
	}
}

func TestLoadTablesNoFile(t *testing.T) {
	cfg := config.PipelineConfig{}

	tables, err := cfg.LoadTables()
	if err != nil {
		t.Fatalf("load tables failed: %v", err)
	}

	if len(tables.Reference.Codes) == 0 {
		t.Error("default reference codes should be populated")
	}
	if tables.Rules.Accept == 0 {
		t.Error("default rule thresholds should be populated")
	}
}
