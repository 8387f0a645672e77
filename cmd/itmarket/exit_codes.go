package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"syscall"

	itmarket "github.com/alnah/go-itmarket"
	"github.com/alnah/go-itmarket/internal/assets"
	"github.com/alnah/go-itmarket/internal/chart"
	"github.com/alnah/go-itmarket/internal/config"
	"github.com/alnah/go-itmarket/internal/dataset"
	"github.com/alnah/go-itmarket/internal/dateutil"
	"github.com/alnah/go-itmarket/internal/hints"
	"github.com/alnah/go-itmarket/internal/printer"
)

// Exit codes for the itmarket CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Command completed
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, month, format or article header
	ExitIO      = 3 // File not found, permission denied, port unavailable
	ExitBrowser = 4 // Browser/Chrome errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Browser errors (exit 4)
	if errors.Is(err, printer.ErrBrowserConnect) ||
		errors.Is(err, printer.ErrPageCreate) ||
		errors.Is(err, printer.ErrPageLoad) ||
		errors.Is(err, printer.ErrPDFGeneration) ||
		errors.Is(err, printer.ErrScreenshot) ||
		errors.Is(err, printer.ErrPoolClosed) {
		return ExitBrowser
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrNoInput) ||
		errors.Is(err, ErrReadArticle) ||
		errors.Is(err, ErrReadFigures) ||
		errors.Is(err, ErrWriteOutput) ||
		errors.Is(err, ErrListen) ||
		errors.Is(err, dataset.ErrDatasetRead) ||
		errors.Is(err, dataset.ErrDatasetWrite) ||
		errors.Is(err, assets.ErrAssetRead) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrInvalidFlags) ||
		errors.Is(err, ErrInvalidExtension) ||
		errors.Is(err, ErrInvalidWorkerCount) ||
		errors.Is(err, ErrParseFigures) ||
		errors.Is(err, ErrUnknownSeries) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, dateutil.ErrInvalidMonth) ||
		errors.Is(err, dataset.ErrDatasetParse) ||
		errors.Is(err, dataset.ErrMalformedEntry) ||
		errors.Is(err, chart.ErrUnsupportedFormat) ||
		errors.Is(err, printer.ErrUnsupportedFormat) ||
		errors.Is(err, itmarket.ErrEmptyDocument) ||
		errors.Is(err, itmarket.ErrInvalidFrontmatter) ||
		errors.Is(err, itmarket.ErrTemplateLoad) ||
		errors.Is(err, assets.ErrInvalidAssetName) ||
		errors.Is(err, assets.ErrInvalidBasePath) ||
		errors.Is(err, assets.ErrPathTraversal) {
		return ExitUsage
	}

	return ExitGeneral
}

// hintFor returns an actionable hint for err, or "".
func hintFor(err error) string {
	switch {
	case errors.Is(err, printer.ErrBrowserConnect):
		return hints.ForBrowserConnect()
	case errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfigNotFound(userConfigPaths())
	case errors.Is(err, dataset.ErrDatasetRead):
		return hints.ForDatasetNotFound()
	case errors.Is(err, dataset.ErrDatasetParse):
		return hints.ForDatasetParse(dataset.SeriesNames)
	case errors.Is(err, dateutil.ErrInvalidMonth):
		return hints.ForMonth()
	case errors.Is(err, syscall.EADDRINUSE):
		return hints.ForAddrInUse()
	case errors.Is(err, chart.ErrUnsupportedFormat):
		return hints.ForImageFormat(chart.ImageFormats)
	case errors.Is(err, printer.ErrUnsupportedFormat):
		return hints.ForImageFormat([]string{string(printer.FormatPDF), string(printer.FormatPNG)})
	case errors.Is(err, ErrWriteOutput):
		return hints.ForOutputDirectory()
	}
	return ""
}

// userConfigPaths lists where a named config is looked up outside the
// working directory.
func userConfigPaths() []string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return nil
	}
	return []string{filepath.Join(dir, "go-itmarket", "default.yaml")}
}
