// Package config loads and validates the YAML configuration of the preview
// pipeline: site URLs, dataset paths, chart defaults, the preview server and
// the print settings.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-itmarket/internal/dateutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Field limits.
const (
	MaxURLLength   = 2048 // Browser limit
	MaxPathLength  = 4096 // PATH_MAX on Linux
	MaxAddrLength  = 100  // host:port
	MinChartSize   = 100  // pixels
	MaxChartSize   = 4000 // pixels
	MaxPDFTimeout  = 10 * time.Minute
	MaxViewportPix = 4000
)

// Defaults.
const (
	DefaultBaseURL     = "https://dietechrecruiter.de"
	DefaultChartScript = "/itmarket-charts.js"
	DefaultStylesheet  = "/cw-style.css"
	DefaultDataset     = "monthly.toml"
	DefaultChartWidth  = 960
	DefaultChartHeight = 540
	DefaultServeAddr   = "127.0.0.1:8080"
	DefaultPDFTimeout  = 30 * time.Second
	DefaultViewport    = 1440
	DefaultMonth       = "auto"
)

// Config holds all configuration for the preview pipeline.
type Config struct {
	Site      SiteConfig      `yaml:"site"`
	Assets    AssetsConfig    `yaml:"assets"`
	Dataset   DatasetConfig   `yaml:"dataset"`
	Chart     ChartConfig     `yaml:"chart"`
	Serve     ServeConfig     `yaml:"serve"`
	PDF       PDFConfig       `yaml:"pdf"`
	Normalize NormalizeConfig `yaml:"normalize"`
}

// SiteConfig describes the site the article is published on.
type SiteConfig struct {
	BaseURL     string `yaml:"baseUrl"`     // Root-relative URLs resolve against it (empty = keep relative)
	ChartScript string `yaml:"chartScript"` // Client-side chart script
	Stylesheet  string `yaml:"stylesheet"`  // Site stylesheet
}

// AssetsConfig defines asset loading options.
type AssetsConfig struct {
	BasePath string `yaml:"basePath"` // Empty = use embedded assets
}

// DatasetConfig locates the monthly dataset.
type DatasetConfig struct {
	Path  string `yaml:"path"`
	Patch string `yaml:"patch"` // Optional current-month overrides
}

// ChartConfig holds chart embed defaults.
type ChartConfig struct {
	Width     int  `yaml:"width"`  // 0 = default
	Height    int  `yaml:"height"` // 0 = default
	Animation bool `yaml:"animation"`
}

// ServeConfig configures the preview server.
type ServeConfig struct {
	Addr string `yaml:"addr"`
}

// PDFConfig configures printing.
type PDFConfig struct {
	Timeout  time.Duration `yaml:"timeout"`
	Viewport int           `yaml:"viewport"` // CSS pixels, 0 = default
}

// NormalizeConfig controls body normalization before rendering.
type NormalizeConfig struct {
	Enabled bool   `yaml:"enabled"`
	Month   string `yaml:"month"` // Used when the article header has no date: YYYY-MM, "auto" or "auto:prev"
}

// Validate checks field lengths and ranges. Called by LoadConfig, but
// available for callers that build a Config by hand.
func (c *Config) Validate() error {
	if err := validateFieldLength("site.baseUrl", c.Site.BaseURL, MaxURLLength); err != nil {
		return err
	}
	if c.Site.BaseURL != "" {
		u, err := url.Parse(c.Site.BaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: site.baseUrl %q (must be an absolute http(s) URL)", ErrInvalidValue, c.Site.BaseURL)
		}
	}
	if err := validateFieldLength("site.chartScript", c.Site.ChartScript, MaxURLLength); err != nil {
		return err
	}
	if err := validateFieldLength("site.stylesheet", c.Site.Stylesheet, MaxURLLength); err != nil {
		return err
	}

	if err := validateFieldLength("assets.basePath", c.Assets.BasePath, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("dataset.path", c.Dataset.Path, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("dataset.patch", c.Dataset.Patch, MaxPathLength); err != nil {
		return err
	}

	if err := validateChartSize("chart.width", c.Chart.Width); err != nil {
		return err
	}
	if err := validateChartSize("chart.height", c.Chart.Height); err != nil {
		return err
	}

	if err := validateFieldLength("serve.addr", c.Serve.Addr, MaxAddrLength); err != nil {
		return err
	}

	if c.PDF.Timeout < 0 || c.PDF.Timeout > MaxPDFTimeout {
		return fmt.Errorf("%w: pdf.timeout must be between 0 and %s, got %s", ErrInvalidValue, MaxPDFTimeout, c.PDF.Timeout)
	}
	if c.PDF.Viewport < 0 || c.PDF.Viewport > MaxViewportPix {
		return fmt.Errorf("%w: pdf.viewport must be between 0 and %d, got %d", ErrInvalidValue, MaxViewportPix, c.PDF.Viewport)
	}

	if c.Normalize.Month != "" {
		if _, err := dateutil.ResolveMonth(c.Normalize.Month, time.Now()); err != nil {
			return fmt.Errorf("%w: normalize.month: %v", ErrInvalidValue, err)
		}
	}

	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// validateChartSize accepts 0 (use default) or MinChartSize..MaxChartSize.
func validateChartSize(fieldName string, v int) error {
	if v == 0 {
		return nil
	}
	if v < MinChartSize || v > MaxChartSize {
		return fmt.Errorf("%w: %s must be 0 or between %d and %d, got %d", ErrInvalidValue, fieldName, MinChartSize, MaxChartSize, v)
	}
	return nil
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Site: SiteConfig{
			BaseURL:     DefaultBaseURL,
			ChartScript: DefaultChartScript,
			Stylesheet:  DefaultStylesheet,
		},
		Dataset:   DatasetConfig{Path: DefaultDataset},
		Chart:     ChartConfig{Width: DefaultChartWidth, Height: DefaultChartHeight},
		Serve:     ServeConfig{Addr: DefaultServeAddr},
		PDF:       PDFConfig{Timeout: DefaultPDFTimeout, Viewport: DefaultViewport},
		Normalize: NormalizeConfig{Month: DefaultMonth},
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's searched in the current directory and ~/.config/go-itmarket/.
// Keys missing from the file keep their defaults.
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if isFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := unmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// isFilePath returns true if the string looks like a file path.
func isFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, ~/.config/go-itmarket/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		localPath := name + ext
		if fileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, "go-itmarket", name+ext)
			if fileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}

// fileExists returns true if the path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
