package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alnah/go-itmarket/internal/assets"
	"github.com/alnah/go-itmarket/internal/config"
	"github.com/alnah/go-itmarket/internal/dataset"
	"github.com/alnah/go-itmarket/internal/printer"
)

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

// fixedNow is the clock of every test environment.
var fixedNow = time.Date(2025, time.December, 15, 10, 0, 0, 0, time.UTC)

// fakeRenderer stands in for the browser.
type fakeRenderer struct {
	mu    sync.Mutex
	err   error
	calls int
}

func (f *fakeRenderer) RenderFile(_ context.Context, filePath string, format printer.Format, _ printer.Options) ([]byte, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if _, err := os.Stat(filePath); err != nil {
		return nil, err
	}
	return []byte("fake-" + string(format)), nil
}

func (f *fakeRenderer) Close() error { return nil }

// testEnv returns an environment writing to buffers, with a fake browser.
func testEnv(t *testing.T, renderer *fakeRenderer) (*Environment, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	if renderer == nil {
		renderer = &fakeRenderer{}
	}
	var stdout, stderr bytes.Buffer
	env := &Environment{
		Now:         func() time.Time { return fixedNow },
		Stdout:      &stdout,
		Stderr:      &stderr,
		AssetLoader: assets.NewEmbeddedLoader(),
		Config:      config.DefaultConfig(),
		NewPool: func(size int, _ time.Duration) *printer.Pool {
			return printer.NewPoolWith(size, func() *printer.Printer { return printer.New(renderer) })
		},
	}
	return env, &stdout, &stderr
}

func testDataset() dataset.Dataset {
	agg := func(month, label string, unemployed, seeking int) dataset.AggregateEntry {
		return dataset.AggregateEntry{Month: month, Label: label, Unemployed: unemployed, Seeking: seeking}
	}
	return dataset.Dataset{
		ITAggregate: []dataset.AggregateEntry{
			agg("2024-11", "November 2024", 50, 100),
			agg("2025-10", "Oktober 2025", 52, 110),
			agg("2025-11", "November 2025", 55, 120),
		},
		ITJobs: []dataset.JobsEntry{
			{Month: "2024-11", Label: "November 2024", ITJobs: 4000},
			{Month: "2025-10", Label: "Oktober 2025", ITJobs: 3200},
			{Month: "2025-11", Label: "November 2025", ITJobs: 3000},
		},
		Germany: []dataset.NationalEntry{
			{Month: "2024-11", Label: "11/24", Unemployed: 2800000, Seeking: 5400000, Jobs: 700000},
			{Month: "2025-11", Label: "11/25", Unemployed: 2900000, Seeking: 5500000, Jobs: 630000},
		},
		InfraAggregate: []dataset.AggregateEntry{
			agg("2025-10", "Oktober 2025", 10, 20),
			agg("2025-11", "November 2025", 11, 21),
		},
		InfraJobs: []dataset.JobsEntry{
			{Month: "2025-10", Label: "Oktober 2025", ITJobs: 300},
			{Month: "2025-11", Label: "November 2025", ITJobs: 310},
		},
		SoftwareAggregate: []dataset.AggregateEntry{
			agg("2025-10", "Oktober 2025", 20, 40),
			agg("2025-11", "November 2025", 21, 41),
		},
		SoftwareJobs: []dataset.JobsEntry{
			{Month: "2025-10", Label: "Oktober 2025", ITJobs: 900},
			{Month: "2025-11", Label: "November 2025", ITJobs: 950},
		},
	}
}

const testArticle = `+++
title = "IT-Arbeitsmarkt November 2025"
date = "2025-12-02"
author = "max-mustermann"
+++

## Überblick

Die Zahlen im Vergleich.

{{< itmarket_table type="compare" month="2025-11" >}}

{{< chart_itmarket_all last="12" >}}
`

// writeFile writes content to dir/name and returns the path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

// appendFile appends text to the file at path.
func appendFile(t *testing.T, path, text string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0)
	if err != nil {
		t.Fatalf("opening %s: %v", path, err)
	}
	defer f.Close()
	if _, err := f.WriteString(text); err != nil {
		t.Fatalf("appending to %s: %v", path, err)
	}
}

// writeDataset saves ds as TOML in dir and returns the path.
func writeDataset(t *testing.T, dir string, ds dataset.Dataset) string {
	t.Helper()
	path := filepath.Join(dir, "monthly.toml")
	if err := dataset.Save(path, ds); err != nil {
		t.Fatalf("saving dataset: %v", err)
	}
	return path
}

// fixture writes the test dataset and article into a temp dir.
func fixture(t *testing.T) (dir, datasetPath, articlePath string) {
	t.Helper()
	dir = t.TempDir()
	return dir, writeDataset(t, dir, testDataset()), writeFile(t, dir, "article.md", testArticle)
}
