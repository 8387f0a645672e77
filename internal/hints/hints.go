// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"strings"

	"github.com/alnah/go-itmarket/internal/fileutil"
)

// IsInContainer reports whether the process runs inside Docker.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ForBrowserConnect returns hints for browser connection errors.
// Detects CI and Docker and suggests the relevant environment variables.
func ForBrowserConnect() string {
	var hints []string

	inCI := os.Getenv("CI") != "" ||
		os.Getenv("GITHUB_ACTIONS") != "" ||
		os.Getenv("GITLAB_CI") != "" ||
		os.Getenv("JENKINS_URL") != ""

	if (inCI || IsInContainer()) && os.Getenv("ROD_NO_SANDBOX") != "1" {
		hints = append(hints, "set ROD_NO_SANDBOX=1 for Docker/CI")
	}
	if os.Getenv("ROD_BROWSER_BIN") == "" {
		hints = append(hints, "set ROD_BROWSER_BIN to use custom Chrome")
	}

	return formatHints(hints)
}

// ForTimeout returns a hint about increasing the print timeout.
func ForTimeout() string {
	return format("for long articles, use --timeout flag")
}

// ForConfigNotFound suggests --config or a user config in ~/.config/go-itmarket/.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	for _, p := range searchedPaths {
		if strings.Contains(p, ".config/go-itmarket") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForDatasetNotFound returns hints when the dataset file is missing.
func ForDatasetNotFound() string {
	return format("use --dataset /path/to/monthly.toml or set ITMARKET_DATASET")
}

// ForDatasetParse lists the sections a dataset file must contain.
func ForDatasetParse(sections []string) string {
	if len(sections) == 0 {
		return ""
	}
	return format("expected [[" + strings.Join(sections, "]], [[") + "]] tables")
}

// ForMonth returns the accepted month spellings.
func ForMonth() string {
	return format("use YYYY-MM, auto or auto:prev")
}

// ForAddrInUse suggests another listen address.
func ForAddrInUse() string {
	return format("use --addr to pick a free port, e.g. --addr 127.0.0.1:8081")
}

// ForImageFormat lists supported image formats.
func ForImageFormat(available []string) string {
	if len(available) == 0 {
		return ""
	}
	return format("available: " + strings.Join(available, ", "))
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
