package main

// Notes:
// - buildScene: we test series selection, unknown series and month bounds.
//   Geometry is covered by internal/chart.
// - runChart: we test SVG to a file, stdout output and the format check.
//   PNG/PDF bytes come from gonum/plot and are only checked for magic.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/alnah/go-itmarket/internal/chart"
	"github.com/alnah/go-itmarket/internal/dataset"
	"github.com/alnah/go-itmarket/internal/dateutil"
)

// ---------------------------------------------------------------------------
// TestBuildScene - Series selection
// ---------------------------------------------------------------------------

func TestBuildScene(t *testing.T) {
	t.Parallel()

	layerNames := func(s chart.Scene) []string {
		var names []string
		for _, l := range s.Layers {
			names = append(names, l.Name)
		}
		return names
	}

	tests := []struct {
		name    string
		req     chartRequest
		want    []string
		wantErr error
	}{
		{
			name: "all mode draws three layers",
			req:  chartRequest{Mode: chart.ModeAll},
			want: []string{"Arbeitslose", "Arbeitssuchende", "IT-Jobs"},
		},
		{
			name: "pair mode",
			req:  chartRequest{Mode: chart.ModePair},
			want: []string{"Arbeitslose", "Arbeitssuchende"},
		},
		{
			name: "jobs mode on infra series",
			req:  chartRequest{Mode: chart.ModeJobs, AggKey: dataset.InfraAggregate, JobsKey: dataset.InfraJobs},
			want: []string{"IT-Jobs"},
		},
		{
			name: "single month is empty",
			req:  chartRequest{Mode: chart.ModeAll, Range: "1"},
			want: nil,
		},
		{
			name: "month bounds",
			req:  chartRequest{Mode: chart.ModePair, From: "2025-10"},
			want: []string{"Arbeitslose", "Arbeitssuchende"},
		},
		{
			name: "bounds keep one month",
			req:  chartRequest{Mode: chart.ModePair, To: "2024-12"},
			want: nil,
		},
		{
			name:    "unknown aggregate",
			req:     chartRequest{AggKey: "it_jobs"},
			wantErr: ErrUnknownSeries,
		},
		{
			name:    "unknown jobs series",
			req:     chartRequest{JobsKey: "germany"},
			wantErr: ErrUnknownSeries,
		},
		{
			name:    "malformed from",
			req:     chartRequest{From: "2025-13"},
			wantErr: dateutil.ErrInvalidMonth,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			scene, err := buildScene(testDataset(), tt.req)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("buildScene() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("buildScene() unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, layerNames(scene)); diff != "" {
				t.Errorf("layers mismatch (-want +got):\n%s", diff)
			}
			if len(tt.want) == 0 && !scene.Empty() {
				t.Error("scene should be empty")
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestMonthRange - Open bounds
// ---------------------------------------------------------------------------

func TestMonthRange(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		from, to string
		want     dataset.Range
		wantErr  bool
	}{
		{"no bounds", "", "", dataset.Range{}, false},
		{"both bounds", "2025-01", "2025-06", dataset.Range{From: "2025-01", To: "2025-06"}, false},
		{"only from", "2025-01", "", dataset.Range{From: "2025-01", To: lastMonth}, false},
		{"only to", "", "2025-06", dataset.Range{From: firstMonth, To: "2025-06"}, false},
		{"invalid to", "", "June", dataset.Range{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := monthRange(tt.from, tt.to)
			if (err != nil) != tt.wantErr {
				t.Fatalf("monthRange() error = %v, wantErr %v", err, tt.wantErr)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("monthRange() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestRunChart - Command
// ---------------------------------------------------------------------------

func TestRunChart(t *testing.T) {
	t.Parallel()

	t.Run("svg to file", func(t *testing.T) {
		t.Parallel()

		dir, ds, _ := fixture(t)
		env, stdout, _ := testEnv(t, nil)
		out := filepath.Join(dir, "charts", "it.svg")

		err := runChart([]string{"--dataset", ds, "-m", "pair", "--animation", "-o", out}, env)
		if err != nil {
			t.Fatalf("runChart() error: %v", err)
		}
		data, err := os.ReadFile(out)
		if err != nil {
			t.Fatalf("reading output: %v", err)
		}
		if !strings.Contains(string(data), "<svg") || !strings.Contains(string(data), "<animate") {
			t.Errorf("output is not an animated SVG: %.200s", data)
		}
		if !strings.Contains(stdout.String(), "Created "+out) {
			t.Errorf("stdout = %q, want Created message", stdout.String())
		}
	})

	t.Run("stdout by default", func(t *testing.T) {
		t.Parallel()

		_, ds, _ := fixture(t)
		env, stdout, _ := testEnv(t, nil)

		if err := runChart([]string{"--dataset", ds, "-q"}, env); err != nil {
			t.Fatalf("runChart() error: %v", err)
		}
		if !strings.HasPrefix(strings.TrimSpace(stdout.String()), "<svg") {
			t.Errorf("stdout should hold the SVG, got %.80q", stdout.String())
		}
	})

	t.Run("png", func(t *testing.T) {
		t.Parallel()

		dir, ds, _ := fixture(t)
		env, _, _ := testEnv(t, nil)
		out := filepath.Join(dir, "it.png")

		if err := runChart([]string{"--dataset", ds, "-f", "png", "-o", out, "-q"}, env); err != nil {
			t.Fatalf("runChart() error: %v", err)
		}
		data, err := os.ReadFile(out)
		if err != nil {
			t.Fatalf("reading output: %v", err)
		}
		if !bytes.HasPrefix(data, []byte("\x89PNG")) {
			t.Error("output is not a PNG")
		}
	})

	t.Run("empty selection warns", func(t *testing.T) {
		t.Parallel()

		_, ds, _ := fixture(t)
		env, _, stderr := testEnv(t, nil)

		if err := runChart([]string{"--dataset", ds, "-r", "1"}, env); err != nil {
			t.Fatalf("runChart() error: %v", err)
		}
		if !strings.Contains(stderr.String(), "chart is empty") {
			t.Errorf("stderr = %q, want empty-chart warning", stderr.String())
		}
	})

	t.Run("errors", func(t *testing.T) {
		t.Parallel()

		_, ds, _ := fixture(t)
		tests := []struct {
			name    string
			args    []string
			wantErr error
		}{
			{"bad format", []string{"--dataset", ds, "-f", "gif"}, chart.ErrUnsupportedFormat},
			{"positional argument", []string{"extra"}, ErrInvalidFlags},
			{"missing dataset", []string{"--dataset", filepath.Join(t.TempDir(), "none.toml")}, dataset.ErrDatasetRead},
			{"unknown series", []string{"--dataset", ds, "--agg", "nope"}, ErrUnknownSeries},
		}
		for _, tt := range tests {
			env, _, _ := testEnv(t, nil)
			err := runChart(tt.args, env)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("%s: runChart() error = %v, want %v", tt.name, err, tt.wantErr)
			}
		}
	})
}
