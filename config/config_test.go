package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestToolConfigApplyDefaults(t *testing.T) {
	cfg := ToolConfig{}
	cfg.ApplyDefaults()
	if cfg.Name != "apikit" {
		t.Errorf("expected name 'apikit', got %q", cfg.Name)
	}
	if cfg.Environment != "development" {
		t.Errorf("expected 'development', got %q", cfg.Environment)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected logging defaults, got level %q", cfg.Logging.Level)
	}
	if cfg.Telemetry.SampleRate != 1.0 {
		t.Errorf("expected sample rate 1.0, got %v", cfg.Telemetry.SampleRate)
	}
	if tc := cfg.Telemetry.Tracer(); tc.ServiceName != "apikit" || tc.Endpoint != "localhost:4318" {
		t.Errorf("unexpected tracer config %+v", tc)
	}
}

func TestToolConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ToolConfig)
		wantErr string
	}{
		{"defaults", func(*ToolConfig) {}, ""},
		{"invalid environment", func(c *ToolConfig) { c.Environment = "invalid" }, "config.environment must be one of"},
		{"invalid logging", func(c *ToolConfig) { c.Logging.Format = "xml" }, "config.logging"},
		{"invalid sample rate", func(c *ToolConfig) { c.Telemetry.SampleRate = 2 }, "config.telemetry"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := ToolConfig{}
			cfg.ApplyDefaults()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestLoadConfigWithYAML(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "apikit.yml")

	yamlContent := `
catalog: ./items.yml
provider: acme
properties:
  max-retries: "2"
logging:
  level: debug
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	var cfg ToolConfig
	err := LoadConfig("apikit", &cfg, WithConfigFile(configPath), WithEnviron([]string{"ENDPOINT=https://api.acme.test"}))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Catalog != "./items.yml" || cfg.Provider != "acme" {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.Properties["max-retries"] != "2" {
		t.Errorf("expected properties to load, got %v", cfg.Properties)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected logging level debug, got %q", cfg.Logging.Level)
	}
	if cfg.Endpoint != "https://api.acme.test" {
		t.Errorf("expected endpoint from environment, got %q", cfg.Endpoint)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	var cfg ToolConfig
	err := LoadConfig("nonexistent", &cfg, WithConfigFile("/nonexistent/path.yml"), WithEnviron([]string{}))
	if err != nil {
		t.Fatalf("expected LoadConfig to succeed with missing file, got %v", err)
	}
}

func TestLoadProperties(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "apikit.yml")
	envPath := filepath.Join(dir, ".env")

	yamlContent := `
apikit:
  max-retries: 1
  user-agent: from-file
acme:
  endpoint: https://file.acme.test
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	if err := os.WriteFile(envPath, []byte("APIKIT_MAX_RETRIES=2\nACME_IDENTITY=bob\n"), 0644); err != nil {
		t.Fatalf("failed to write env: %v", err)
	}

	props, err := LoadProperties("acme",
		WithConfigFile(configPath),
		WithEnvFile(envPath),
		WithEnviron([]string{"APIKIT_MAX_RETRIES=3", "HOME=/root"}),
	)
	if err != nil {
		t.Fatalf("LoadProperties failed: %v", err)
	}

	want := map[string]string{
		"apikit.max-retries": "3",
		"apikit.user-agent":  "from-file",
		"acme.endpoint":      "https://file.acme.test",
		"acme.identity":      "bob",
	}
	for k, v := range want {
		if props[k] != v {
			t.Errorf("%s: expected %q, got %q", k, v, props[k])
		}
	}
	if len(props) != len(want) {
		t.Errorf("unexpected extra properties: %v", props)
	}
}

func TestLoadPropertiesBrokenFile(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "apikit.yml")
	if err := os.WriteFile(configPath, []byte("apikit: [unclosed"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	if _, err := LoadProperties("acme", WithConfigFile(configPath), WithEnviron([]string{})); err == nil {
		t.Fatal("expected error for malformed properties file")
	}
}

func TestResolverWithMockFS(t *testing.T) {
	fs := &mockFS{files: map[string]bool{
		"./config/apikit.yaml": true,
		"./.env":               true,
	}}
	resolver := &Resolver{FileSystem: fs}
	files := resolver.ResolveFiles("apikit", LoaderConfig{})
	if files.ConfigFile != "./config/apikit.yaml" {
		t.Errorf("expected config file at ./config/apikit.yaml, got %q", files.ConfigFile)
	}
	if files.EnvFile != "./.env" {
		t.Errorf("expected env file at ./.env, got %q", files.EnvFile)
	}

	files = resolver.ResolveFiles("apikit", LoaderConfig{ConfigFile: "explicit.yml"})
	if files.ConfigFile != "explicit.yml" {
		t.Errorf("explicit path must win, got %q", files.ConfigFile)
	}
}

type mockFS struct {
	files map[string]bool
}

func (m *mockFS) Exists(path string) bool { return m.files[path] }

func (m *mockFS) ReadEnv(string) (map[string]string, error) { return map[string]string{}, nil }

func TestGenerateEnvKeyVariants(t *testing.T) {
	got := generateEnvKeyVariants("LOGGING_NO_COLOR")
	want := map[string]bool{"logging_no_color": true, "logging.no.color": true, "logging.no_color": true}
	for _, v := range got {
		delete(want, v)
	}
	if len(want) != 0 {
		t.Errorf("missing variants %v in %v", want, got)
	}
}

func TestLoaderOptions(t *testing.T) {
	var lc LoaderConfig
	WithConfigFile("/path/to/config.yml")(&lc)
	WithEnvFile("/path/to/.env")(&lc)
	WithFileSystem(&mockFS{})(&lc)
	if lc.ConfigFile != "/path/to/config.yml" || lc.EnvFile != "/path/to/.env" || lc.FileSystem == nil {
		t.Errorf("options not applied: %+v", lc)
	}
}
