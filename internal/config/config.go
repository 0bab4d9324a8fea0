// Package config handles viewer configuration loading and management.
package config

import "fmt"

// Config holds all viewer settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	Curl     CurlConfig     `yaml:"curl"`
	Pages    PagesConfig    `yaml:"pages"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GraphicsConfig holds display settings.
type GraphicsConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
}

// CurlConfig holds page-curl geometry and interaction settings.
type CurlConfig struct {
	// MaxSplits fixes the curl poly budget; must be at least 1.
	MaxSplits int `yaml:"max_splits"`
	// TwoPages shows a two-page spread instead of a single page.
	TwoPages bool `yaml:"two_pages"`
	// AllowLastPageCurl lets the final page be curled away.
	AllowLastPageCurl bool `yaml:"allow_last_page_curl"`
	// RenderLeftPage draws the left page in two-page mode.
	RenderLeftPage bool `yaml:"render_left_page"`
	// PressureSensitivity scales curl radius by pointer pressure.
	PressureSensitivity bool `yaml:"pressure_sensitivity"`
	// PressureDefault is the assumed pressure when sensitivity is off.
	// The 1-pressure attenuation curve gives poor results on some
	// hardware, so this is a tunable rather than a constant.
	PressureDefault float64 `yaml:"pressure_default"`
	// CrestDarkness is the color multiplier floor at the curl crest,
	// in [0, 1]; lower values darken the fold more.
	CrestDarkness float64 `yaml:"crest_darkness"`
	// Shadows enables drop and self shadow strips.
	Shadows bool `yaml:"shadows"`
	// ShadowInner and ShadowOuter are RGBA shadow gradient endpoints.
	ShadowInner []float64 `yaml:"shadow_inner"`
	ShadowOuter []float64 `yaml:"shadow_outer"`
	// Snap and jump animation durations in milliseconds.
	SnapDurationMs int `yaml:"snap_duration_ms"`
	JumpDurationMs int `yaml:"jump_duration_ms"`
	// PageAspect constrains each page to a width/height ratio inside
	// the margins; zero lets pages fill the available space.
	PageAspect float64 `yaml:"page_aspect"`
	// Margins as proportions of the viewport.
	MarginLeft   float64 `yaml:"margin_left"`
	MarginTop    float64 `yaml:"margin_top"`
	MarginRight  float64 `yaml:"margin_right"`
	MarginBottom float64 `yaml:"margin_bottom"`
}

// PagesConfig holds page content settings.
type PagesConfig struct {
	// Dir is a directory of page images; empty uses generated sample pages.
	Dir string `yaml:"dir"`
	// SampleCount is the number of generated sample pages.
	SampleCount int `yaml:"sample_count"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:      1024,
			Height:     768,
			Fullscreen: false,
			VSync:      true,
		},
		Curl: CurlConfig{
			MaxSplits:           10,
			TwoPages:            true,
			AllowLastPageCurl:   true,
			RenderLeftPage:      true,
			PressureSensitivity: false,
			PressureDefault:     0.8,
			CrestDarkness:       0.1,
			Shadows:             true,
			ShadowInner:         []float64{0, 0, 0, 0.5},
			ShadowOuter:         []float64{0, 0, 0, 0},
			SnapDurationMs:      300,
			JumpDurationMs:      800,
			PageAspect:          0,
			MarginLeft:          0.05,
			MarginTop:           0.05,
			MarginRight:         0.05,
			MarginBottom:        0.05,
		},
		Pages: PagesConfig{
			Dir:         "",
			SampleCount: 12,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate rejects invalid curl parameters eagerly, before any mesh is
// built from them.
func (c *Config) Validate() error {
	if c.Curl.MaxSplits < 1 {
		return fmt.Errorf("curl.max_splits must be at least 1, got %d", c.Curl.MaxSplits)
	}
	if c.Curl.CrestDarkness < 0 || c.Curl.CrestDarkness > 1 {
		return fmt.Errorf("curl.crest_darkness must be in [0, 1], got %g", c.Curl.CrestDarkness)
	}
	if c.Curl.PressureDefault < 0 || c.Curl.PressureDefault > 1 {
		return fmt.Errorf("curl.pressure_default must be in [0, 1], got %g", c.Curl.PressureDefault)
	}
	if err := validateColor("curl.shadow_inner", c.Curl.ShadowInner); err != nil {
		return err
	}
	if err := validateColor("curl.shadow_outer", c.Curl.ShadowOuter); err != nil {
		return err
	}
	if c.Curl.SnapDurationMs <= 0 || c.Curl.JumpDurationMs <= 0 {
		return fmt.Errorf("curl animation durations must be positive")
	}
	if c.Curl.PageAspect < 0 {
		return fmt.Errorf("curl.page_aspect must not be negative, got %g", c.Curl.PageAspect)
	}
	for _, m := range []float64{c.Curl.MarginLeft, c.Curl.MarginTop, c.Curl.MarginRight, c.Curl.MarginBottom} {
		if m < 0 || m >= 0.5 {
			return fmt.Errorf("curl margins must be in [0, 0.5), got %g", m)
		}
	}
	return nil
}

func validateColor(name string, c []float64) error {
	if len(c) != 4 {
		return fmt.Errorf("%s must have 4 components (RGBA), got %d", name, len(c))
	}
	for i, v := range c {
		if v < 0 || v > 1 {
			return fmt.Errorf("%s[%d] must be in [0, 1], got %g", name, i, v)
		}
	}
	return nil
}
