package main

// Notes:
// - exitCodeFor: we test every sentinel the commands can return, plus
//   wrapped errors to verify the errors.Is chain.
// - hintFor: we test that the classified errors get their hint and that
//   unrelated errors get none. Hint wording is owned by internal/hints.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"
	"testing"

	itmarket "github.com/alnah/go-itmarket"
	"github.com/alnah/go-itmarket/internal/assets"
	"github.com/alnah/go-itmarket/internal/chart"
	"github.com/alnah/go-itmarket/internal/config"
	"github.com/alnah/go-itmarket/internal/dataset"
	"github.com/alnah/go-itmarket/internal/dateutil"
	"github.com/alnah/go-itmarket/internal/printer"
)

// ---------------------------------------------------------------------------
// TestExitCodeFor - Error to exit code mapping
// ---------------------------------------------------------------------------

func TestExitCodeFor(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		want int
	}{
		// Success
		{"nil error", nil, ExitSuccess},

		// Browser errors (exit 4)
		{"browser connect", printer.ErrBrowserConnect, ExitBrowser},
		{"page create", printer.ErrPageCreate, ExitBrowser},
		{"page load", printer.ErrPageLoad, ExitBrowser},
		{"pdf generation", printer.ErrPDFGeneration, ExitBrowser},
		{"screenshot", printer.ErrScreenshot, ExitBrowser},
		{"pool closed", printer.ErrPoolClosed, ExitBrowser},
		{"wrapped browser connect", fmt.Errorf("a.md: %w", printer.ErrBrowserConnect), ExitBrowser},

		// I/O errors (exit 3)
		{"file not exist", os.ErrNotExist, ExitIO},
		{"permission denied", os.ErrPermission, ExitIO},
		{"no input", ErrNoInput, ExitIO},
		{"read article", ErrReadArticle, ExitIO},
		{"read figures", ErrReadFigures, ExitIO},
		{"write output", ErrWriteOutput, ExitIO},
		{"listen", fmt.Errorf("%w: %w", ErrListen, syscall.EADDRINUSE), ExitIO},
		{"dataset read", dataset.ErrDatasetRead, ExitIO},
		{"dataset write", dataset.ErrDatasetWrite, ExitIO},
		{"asset read", assets.ErrAssetRead, ExitIO},

		// Usage/config/validation errors (exit 2)
		{"invalid flags", ErrInvalidFlags, ExitUsage},
		{"invalid extension", ErrInvalidExtension, ExitUsage},
		{"invalid workers", ErrInvalidWorkerCount, ExitUsage},
		{"parse figures", ErrParseFigures, ExitUsage},
		{"unknown series", ErrUnknownSeries, ExitUsage},
		{"config not found", config.ErrConfigNotFound, ExitUsage},
		{"config parse", config.ErrConfigParse, ExitUsage},
		{"empty config name", config.ErrEmptyConfigName, ExitUsage},
		{"field too long", config.ErrFieldTooLong, ExitUsage},
		{"invalid value", config.ErrInvalidValue, ExitUsage},
		{"invalid month", dateutil.ErrInvalidMonth, ExitUsage},
		{"dataset parse", dataset.ErrDatasetParse, ExitUsage},
		{"malformed entry", dataset.ErrMalformedEntry, ExitUsage},
		{"chart format", chart.ErrUnsupportedFormat, ExitUsage},
		{"print format", printer.ErrUnsupportedFormat, ExitUsage},
		{"empty document", itmarket.ErrEmptyDocument, ExitUsage},
		{"invalid frontmatter", itmarket.ErrInvalidFrontmatter, ExitUsage},
		{"template load", itmarket.ErrTemplateLoad, ExitUsage},
		{"invalid asset name", assets.ErrInvalidAssetName, ExitUsage},
		{"invalid base path", assets.ErrInvalidBasePath, ExitUsage},
		{"path traversal", assets.ErrPathTraversal, ExitUsage},
		{"wrapped config parse", fmt.Errorf("loading: %w", config.ErrConfigParse), ExitUsage},

		// General errors (exit 1)
		{"unknown error", errors.New("something unexpected"), ExitGeneral},
		{"internal", itmarket.ErrInternal, ExitGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := exitCodeFor(tt.err); got != tt.want {
				t.Errorf("exitCodeFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestExitCodeConstants - Unix conventions
// ---------------------------------------------------------------------------

func TestExitCodeConstants(t *testing.T) {
	t.Parallel()

	if ExitSuccess != 0 || ExitGeneral != 1 || ExitUsage != 2 {
		t.Errorf("conventional codes changed: %d %d %d", ExitSuccess, ExitGeneral, ExitUsage)
	}
	for _, code := range []int{ExitIO, ExitBrowser} {
		if code >= 126 {
			t.Errorf("custom exit code %d collides with shell-reserved codes", code)
		}
	}
}

// ---------------------------------------------------------------------------
// TestHintFor - Actionable hints
// ---------------------------------------------------------------------------

func TestHintFor(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		err      error
		contains string
	}{
		{"timeout", fmt.Errorf("a.md: %w", context.DeadlineExceeded), "--timeout"},
		{"config not found", config.ErrConfigNotFound, "--config"},
		{"dataset missing", fmt.Errorf("%w: open monthly.toml", dataset.ErrDatasetRead), "ITMARKET_DATASET"},
		{"dataset parse", dataset.ErrDatasetParse, "[[it_aggregate]]"},
		{"month", dateutil.ErrInvalidMonth, "auto:prev"},
		{"address in use", fmt.Errorf("%w: %w", ErrListen, syscall.EADDRINUSE), "--addr"},
		{"chart format", chart.ErrUnsupportedFormat, "png, svg, pdf"},
		{"print format", printer.ErrUnsupportedFormat, "pdf, png"},
		{"write output", ErrWriteOutput, "writable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := hintFor(tt.err)
			if !strings.Contains(got, "hint:") || !strings.Contains(got, tt.contains) {
				t.Errorf("hintFor(%v) = %q, want hint containing %q", tt.err, got, tt.contains)
			}
		})
	}

	t.Run("no hint for unrelated errors", func(t *testing.T) {
		t.Parallel()

		if got := hintFor(errors.New("boom")); got != "" {
			t.Errorf("hintFor() = %q, want empty", got)
		}
	})
}
