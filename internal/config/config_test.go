package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Graphics.Width != 1024 {
		t.Errorf("expected width 1024, got %d", cfg.Graphics.Width)
	}
	if cfg.Graphics.Height != 768 {
		t.Errorf("expected height 768, got %d", cfg.Graphics.Height)
	}
	if !cfg.Graphics.VSync {
		t.Error("expected vsync to be true by default")
	}

	if cfg.Curl.MaxSplits != 10 {
		t.Errorf("expected max_splits 10, got %d", cfg.Curl.MaxSplits)
	}
	if !cfg.Curl.TwoPages {
		t.Error("expected two_pages to be true by default")
	}
	if cfg.Curl.PressureDefault != 0.8 {
		t.Errorf("expected pressure_default 0.8, got %g", cfg.Curl.PressureDefault)
	}
	if cfg.Curl.CrestDarkness != 0.1 {
		t.Errorf("expected crest_darkness 0.1, got %g", cfg.Curl.CrestDarkness)
	}
	if len(cfg.Curl.ShadowInner) != 4 || cfg.Curl.ShadowInner[3] != 0.5 {
		t.Errorf("unexpected shadow_inner default: %v", cfg.Curl.ShadowInner)
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero splits", func(c *Config) { c.Curl.MaxSplits = 0 }},
		{"negative splits", func(c *Config) { c.Curl.MaxSplits = -3 }},
		{"crest darkness above 1", func(c *Config) { c.Curl.CrestDarkness = 1.5 }},
		{"negative crest darkness", func(c *Config) { c.Curl.CrestDarkness = -0.1 }},
		{"pressure out of range", func(c *Config) { c.Curl.PressureDefault = 2 }},
		{"short shadow color", func(c *Config) { c.Curl.ShadowInner = []float64{0, 0, 0} }},
		{"shadow component out of range", func(c *Config) { c.Curl.ShadowOuter = []float64{0, 0, 0, 1.5} }},
		{"zero snap duration", func(c *Config) { c.Curl.SnapDurationMs = 0 }},
		{"negative page aspect", func(c *Config) { c.Curl.PageAspect = -0.7 }},
		{"margin too large", func(c *Config) { c.Curl.MarginLeft = 0.5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
graphics:
  width: 1920
  height: 1080
  fullscreen: true
  vsync: false

curl:
  max_splits: 16
  two_pages: false
  pressure_default: 0.5
  crest_darkness: 0.2
  snap_duration_ms: 250

pages:
  dir: "/data/pages"
  sample_count: 5

logging:
  level: "debug"
  log_file: "viewer.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Graphics.Width != 1920 {
		t.Errorf("expected width 1920, got %d", cfg.Graphics.Width)
	}
	if !cfg.Graphics.Fullscreen {
		t.Error("expected fullscreen to be true")
	}
	if cfg.Graphics.VSync {
		t.Error("expected vsync to be false")
	}

	if cfg.Curl.MaxSplits != 16 {
		t.Errorf("expected max_splits 16, got %d", cfg.Curl.MaxSplits)
	}
	if cfg.Curl.TwoPages {
		t.Error("expected two_pages to be false")
	}
	if cfg.Curl.PressureDefault != 0.5 {
		t.Errorf("expected pressure_default 0.5, got %g", cfg.Curl.PressureDefault)
	}

	// Values absent from the file keep their defaults.
	if cfg.Curl.JumpDurationMs != 800 {
		t.Errorf("expected jump_duration_ms default 800, got %d", cfg.Curl.JumpDurationMs)
	}

	if cfg.Pages.Dir != "/data/pages" {
		t.Errorf("expected pages dir /data/pages, got %s", cfg.Pages.Dir)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
graphics:
  width: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFromFile(cfg, "/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "sub", "config.yaml")

	cfg := Default()
	cfg.Curl.MaxSplits = 7
	cfg.Pages.Dir = "/books"

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("failed to reload config: %v", err)
	}
	if loaded.Curl.MaxSplits != 7 {
		t.Errorf("expected max_splits 7 after round trip, got %d", loaded.Curl.MaxSplits)
	}
	if loaded.Pages.Dir != "/books" {
		t.Errorf("expected pages dir /books after round trip, got %s", loaded.Pages.Dir)
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name:  "fullscreen flag",
			setup: func() { *flagFullscreen = true },
			verify: func(cfg *Config) {
				if !cfg.Graphics.Fullscreen {
					t.Error("expected fullscreen to be true with fullscreen flag")
				}
			},
			teardown: func() { *flagFullscreen = false },
		},
		{
			name: "width and height flags",
			setup: func() {
				*flagWidth = 2560
				*flagHeight = 1440
			},
			verify: func(cfg *Config) {
				if cfg.Graphics.Width != 2560 {
					t.Errorf("expected width 2560, got %d", cfg.Graphics.Width)
				}
				if cfg.Graphics.Height != 1440 {
					t.Errorf("expected height 1440, got %d", cfg.Graphics.Height)
				}
			},
			teardown: func() {
				*flagWidth = 0
				*flagHeight = 0
			},
		},
		{
			name:  "pages flag",
			setup: func() { *flagPages = "/books" },
			verify: func(cfg *Config) {
				if cfg.Pages.Dir != "/books" {
					t.Errorf("expected pages dir /books, got %s", cfg.Pages.Dir)
				}
			},
			teardown: func() { *flagPages = "" },
		},
		{
			name:  "onepage flag",
			setup: func() { *flagOnePage = true },
			verify: func(cfg *Config) {
				if cfg.Curl.TwoPages {
					t.Error("expected two_pages to be false with onepage flag")
				}
			},
			teardown: func() { *flagOnePage = false },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)
			tt.verify(cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
graphics:
  width: 1600
  height: 900
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagWidth = 1920
	defer func() {
		*flagConfig = ""
		*flagWidth = 0
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Width should come from flag (1920), not file (1600).
	if cfg.Graphics.Width != 1920 {
		t.Errorf("expected width 1920 from flag, got %d", cfg.Graphics.Width)
	}
	// Height should come from file since no flag override.
	if cfg.Graphics.Height != 900 {
		t.Errorf("expected height 900 from file, got %d", cfg.Graphics.Height)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
curl:
  max_splits: 0
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	defer func() { *flagConfig = "" }()

	if _, err := Load(); err == nil {
		t.Error("expected Load to reject max_splits 0")
	}
}
