package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// Helper to create a temp config file.
func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	tmpDir := t.TempDir()

	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create temp config file: %v", err)
	}

	return configPath
}

// validConfigYAML is a minimal valid configuration.
const validConfigYAML = `
public:
  list_url: "https://example.org/en/category/media-releases/"
  start_page: 1
  end_page: 2
  limit_per_page: 5
network:
  timeout_sec: 15
  max_body_kb: 2048
cms:
  base_url: "https://cms.example.org"
  storage_state: "state.json"
output:
  path: "missing.csv"
logging:
  level: "debug"
`

func TestLoadConfig_Valid(t *testing.T) {
	configPath := createTempConfigFile(t, validConfigYAML)

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg == nil {
		t.Fatal("Expected config, got nil")
	}

	if cfg.Public.ListURL != "https://example.org/en/category/media-releases/" {
		t.Errorf("Expected list URL from file, got '%s'", cfg.Public.ListURL)
	}

	if cfg.Public.EndPage != 2 {
		t.Errorf("Expected end page 2, got %d", cfg.Public.EndPage)
	}

	if cfg.Network.TimeoutSec != 15 {
		t.Errorf("Expected timeout 15, got %d", cfg.Network.TimeoutSec)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("Expected level debug, got '%s'", cfg.Logging.Level)
	}
}

func TestLoadConfig_PartialFileKeepsDefaults(t *testing.T) {
	configPath := createTempConfigFile(t, `
cms:
  base_url: "https://cms.example.org"
`)

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Public.ListURL != DefaultListURL {
		t.Errorf("Expected default list URL, got '%s'", cfg.Public.ListURL)
	}

	if cfg.Output.Path != DefaultOutputPath {
		t.Errorf("Expected default output path, got '%s'", cfg.Output.Path)
	}

	if cfg.CMS.BaseURL != "https://cms.example.org" {
		t.Errorf("Expected base URL from file, got '%s'", cfg.CMS.BaseURL)
	}
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	_, err := LoadConfig("/nonexistent/path/config.yaml")
	if err == nil {
		t.Fatal("Expected error for nonexistent file, got nil")
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	configPath := createTempConfigFile(t, "invalid: yaml: content: [}")

	_, err := LoadConfig(configPath)
	if err == nil {
		t.Fatal("Expected error for invalid YAML, got nil")
	}
}

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("DefaultConfig should validate, got: %v", err)
	}
}

func TestConfig_Validate_MissingListURL(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Public.ListURL = ""

	if err := cfg.Validate(); !errors.Is(err, ErrMissingListURL) {
		t.Errorf("Validate() = %v, want ErrMissingListURL", err)
	}
}

func TestConfig_Validate_InvalidStartPage(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Public.StartPage = 0

	if err := cfg.Validate(); !errors.Is(err, ErrInvalidStartPage) {
		t.Errorf("Validate() = %v, want ErrInvalidStartPage", err)
	}
}

func TestConfig_Validate_InvalidPageRange(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Public.StartPage = 5
	cfg.Public.EndPage = 2

	if err := cfg.Validate(); !errors.Is(err, ErrInvalidPageRange) {
		t.Errorf("Validate() = %v, want ErrInvalidPageRange", err)
	}
}

func TestConfig_Validate_NegativeLimitPerPage(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Public.LimitPerPage = -1

	if err := cfg.Validate(); !errors.Is(err, ErrInvalidLimitPerPage) {
		t.Errorf("Validate() = %v, want ErrInvalidLimitPerPage", err)
	}
}

func TestConfig_Validate_InvalidTimeout(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Network.TimeoutSec = 0

	if err := cfg.Validate(); !errors.Is(err, ErrInvalidTimeout) {
		t.Errorf("Validate() = %v, want ErrInvalidTimeout", err)
	}
}

func TestConfig_Validate_InvalidMaxBody(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Network.MaxBodyKb = 0

	if err := cfg.Validate(); !errors.Is(err, ErrInvalidMaxBody) {
		t.Errorf("Validate() = %v, want ErrInvalidMaxBody", err)
	}
}

func TestConfig_Validate_MissingStoragePath(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CMS.StorageState = ""

	if err := cfg.Validate(); !errors.Is(err, ErrMissingStoragePath) {
		t.Errorf("Validate() = %v, want ErrMissingStoragePath", err)
	}
}

func TestConfig_Validate_MissingOutputPath(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Output.Path = ""

	if err := cfg.Validate(); !errors.Is(err, ErrMissingOutputPath) {
		t.Errorf("Validate() = %v, want ErrMissingOutputPath", err)
	}
}

func TestConfig_Validate_InvalidLogLevel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Logging.Level = "verbose"

	if err := cfg.Validate(); !errors.Is(err, ErrInvalidLogLevel) {
		t.Errorf("Validate() = %v, want ErrInvalidLogLevel", err)
	}
}

func TestConfig_Validate_BaseURLNotRequired(t *testing.T) {
	// The CMS base URL may arrive via environment or flag after loading.
	cfg := DefaultConfig()
	cfg.CMS.BaseURL = ""

	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil when base_url is empty", err)
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "out.yaml")

	cfg := DefaultConfig()
	cfg.CMS.BaseURL = "https://cms.example.org"

	if err := cfg.SaveConfig(configPath); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loaded, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig after save failed: %v", err)
	}

	if loaded.CMS.BaseURL != "https://cms.example.org" {
		t.Errorf("Expected saved base URL, got '%s'", loaded.CMS.BaseURL)
	}

	if loaded.Public.EndPage != cfg.Public.EndPage {
		t.Errorf("Expected end page %d, got %d", cfg.Public.EndPage, loaded.Public.EndPage)
	}
}

func TestNetworkConfig_GetTimeout(t *testing.T) {
	n := NetworkConfig{TimeoutSec: 30}
	expected := 30 * time.Second

	if got := n.GetTimeout(); got != expected {
		t.Errorf("GetTimeout() = %v, want %v", got, expected)
	}
}

func TestNetworkConfig_MaxBodyBytes(t *testing.T) {
	n := NetworkConfig{MaxBodyKb: 2}

	if got := n.MaxBodyBytes(); got != 2048 {
		t.Errorf("MaxBodyBytes() = %d, want 2048", got)
	}
}
