package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	itmarket "github.com/alnah/go-itmarket"
	"github.com/alnah/go-itmarket/internal/assets"
	"github.com/alnah/go-itmarket/internal/config"
	"github.com/alnah/go-itmarket/internal/dataset"
	"github.com/alnah/go-itmarket/internal/dateutil"
	"github.com/alnah/go-itmarket/internal/fileutil"
	"github.com/alnah/go-itmarket/internal/frontmatter"
)

// File permission constants.
const (
	dirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	filePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// stdoutPath selects standard output for -o.
const stdoutPath = "-"

// newLogger returns a text logger on w. --verbose shows Debug, --quiet
// only Error.
func newLogger(w io.Writer, common commonFlags) *slog.Logger {
	level := slog.LevelInfo
	switch {
	case common.verbose:
		level = slog.LevelDebug
	case common.quiet:
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// loadConfig resolves defaults, the config file and ITMARKET_* variables.
// Callers apply their flags on top and then call Validate.
func loadConfig(common commonFlags, env *Environment) (*config.Config, error) {
	envCfg := loadEnvConfig()
	warnUnknownEnvVars(env.Stderr)

	name := common.config
	if name == "" {
		name = envCfg.ConfigPath
	}

	var cfg *config.Config
	if name != "" {
		loaded, err := config.LoadConfig(name)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		c := *env.Config
		cfg = &c
	}

	applyEnvConfig(envCfg, cfg)
	return cfg, nil
}

// applyDataFlags overrides the dataset location.
func applyDataFlags(f dataFlags, set map[string]bool, cfg *config.Config) {
	if set["dataset"] {
		cfg.Dataset.Path = f.dataset
	}
	if set["patch"] {
		cfg.Dataset.Patch = f.patch
	}
}

// applyArticleFlags overrides site and normalization settings. Only flags
// given on the command line count, so --base-url "" can clear the base.
func applyArticleFlags(f articleFlags, set map[string]bool, cfg *config.Config) {
	if set["base-url"] {
		cfg.Site.BaseURL = f.baseURL
	}
	if set["normalize"] {
		cfg.Normalize.Enabled = f.normalize
	}
	if set["animation"] {
		cfg.Chart.Animation = f.animation
	}
}

// applyBrowserFlags overrides print settings.
func applyBrowserFlags(f browserFlags, set map[string]bool, cfg *config.Config) error {
	if set["timeout"] {
		d, err := time.ParseDuration(f.timeout)
		if err != nil || d <= 0 {
			return fmt.Errorf("%w: --timeout %q must be a positive duration", ErrInvalidFlags, f.timeout)
		}
		cfg.PDF.Timeout = d
	}
	if set["viewport"] {
		cfg.PDF.Viewport = f.viewport
	}
	if f.workers < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidWorkerCount, f.workers)
	}
	return nil
}

// assetLoader returns the configured asset directory with embedded
// fallback, or env's loader when none is configured.
func assetLoader(cfg *config.Config, env *Environment) (assets.AssetLoader, error) {
	if cfg.Assets.BasePath == "" {
		return env.AssetLoader, nil
	}
	return assets.NewAssetResolver(cfg.Assets.BasePath)
}

// newAssembler builds an Assembler over ds with the site settings of cfg.
func newAssembler(cfg *config.Config, ds dataset.Dataset, loader assets.AssetLoader, logger *slog.Logger) (*itmarket.Assembler, error) {
	return itmarket.NewAssembler(ds,
		itmarket.WithLogger(logger.With(slog.String("module", "assembler"))),
		itmarket.WithAssetLoader(loader),
		itmarket.WithBaseURL(cfg.Site.BaseURL),
		itmarket.WithChartScript(cfg.Site.ChartScript),
		itmarket.WithStylesheet(cfg.Site.Stylesheet),
		itmarket.WithAnimation(cfg.Chart.Animation),
		itmarket.WithNormalize(cfg.Normalize.Enabled),
	)
}

// readArticle reads a Markdown article.
func readArticle(path string) (string, error) {
	if err := validateMarkdownExtension(path); err != nil {
		return "", err
	}
	data, err := os.ReadFile(path) // #nosec G304 -- path is user-provided
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrReadArticle, err)
	}
	return string(data), nil
}

// validateMarkdownExtension checks that the file has a .md or .markdown extension.
func validateMarkdownExtension(path string) error {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".md" && ext != ".markdown" {
		return fmt.Errorf("%w: %s", ErrInvalidExtension, path)
	}
	return nil
}

// articleMonth picks the month shortcodes are pinned to. An explicit
// --month wins. Otherwise the article's own date is used, and the
// configured month only fills in for articles without one.
func articleMonth(flagMonth, source string, cfg *config.Config, now time.Time) (string, error) {
	if flagMonth != "" {
		return dateutil.ResolveMonth(flagMonth, now)
	}
	if !cfg.Normalize.Enabled || hasHeaderDate(source) || cfg.Normalize.Month == "" {
		return "", nil
	}
	return dateutil.ResolveMonth(cfg.Normalize.Month, now)
}

func hasHeaderDate(source string) bool {
	header, _, ok := frontmatter.Split(source)
	if !ok {
		return false
	}
	fm, err := frontmatter.Parse(header)
	return err == nil && fm.Date != ""
}

// outputPath replaces the extension of input with ext.
func outputPath(input, ext string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + "." + ext
}

// writeOutput writes data to path, or to stdout for "-". Parent
// directories are created as needed.
func writeOutput(path string, data []byte, stdout io.Writer) error {
	if path == stdoutPath {
		if _, err := stdout.Write(data); err != nil {
			return fmt.Errorf("%w: %v", ErrWriteOutput, err)
		}
		return nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, dirPermissions); err != nil {
			return fmt.Errorf("%w: %v", ErrWriteOutput, err)
		}
	}
	if err := fileutil.WriteFileAtomic(path, data, filePermissions); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	return nil
}
