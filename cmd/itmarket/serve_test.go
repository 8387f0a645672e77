package main

// Notes:
// - routes: we drive the handler with httptest, no listener. The print
//   routes use the fake browser from helpers_test.go.
// - runServe: only its argument checks are tested; serving is covered
//   through routes.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	itmarket "github.com/alnah/go-itmarket"
	"github.com/alnah/go-itmarket/internal/config"
	"github.com/alnah/go-itmarket/internal/dataset"
	"github.com/alnah/go-itmarket/internal/dateutil"
	"github.com/alnah/go-itmarket/internal/printer"
)

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

type serveFixture struct {
	handler  http.Handler
	article  string
	dataset  string
	renderer *fakeRenderer
	pool     *printer.Pool
}

func newServeFixture(t *testing.T) serveFixture {
	t.Helper()

	_, ds, article := fixture(t)
	renderer := &fakeRenderer{}
	env, _, _ := testEnv(t, renderer)

	cfg := config.DefaultConfig()
	cfg.Dataset.Path = ds
	pool := env.NewPool(1, cfg.PDF.Timeout)
	t.Cleanup(func() { _ = pool.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv, err := newPreviewServer(article, "", cfg, env, logger, pool)
	if err != nil {
		t.Fatalf("newPreviewServer() error: %v", err)
	}
	return serveFixture{handler: srv.routes(), article: article, dataset: ds, renderer: renderer, pool: pool}
}

func (f serveFixture) get(t *testing.T, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

// ---------------------------------------------------------------------------
// TestPreviewServer_Preview - Article page
// ---------------------------------------------------------------------------

func TestPreviewServer_Preview(t *testing.T) {
	t.Parallel()

	t.Run("renders the article", func(t *testing.T) {
		t.Parallel()

		f := newServeFixture(t)
		rec := f.get(t, "/")

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
		}
		if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
			t.Errorf("Content-Type = %q", ct)
		}
		body := rec.Body.String()
		for _, want := range []string{"IT-Arbeitsmarkt November 2025", "<table", "<svg"} {
			if !strings.Contains(body, want) {
				t.Errorf("preview lacks %q", want)
			}
		}
	})

	t.Run("reload shows edits", func(t *testing.T) {
		t.Parallel()

		f := newServeFixture(t)
		if rec := f.get(t, "/"); rec.Code != http.StatusOK {
			t.Fatalf("first status = %d", rec.Code)
		}

		edited := strings.Replace(testArticle, "Die Zahlen im Vergleich.", "Neuer Absatz nach dem Speichern.", 1)
		if err := os.WriteFile(f.article, []byte(edited), 0o644); err != nil {
			t.Fatalf("editing article: %v", err)
		}

		rec := f.get(t, "/")
		if !strings.Contains(rec.Body.String(), "Neuer Absatz nach dem Speichern.") {
			t.Error("reload did not pick up the edited article")
		}
	})

	t.Run("broken dataset is unprocessable", func(t *testing.T) {
		t.Parallel()

		f := newServeFixture(t)
		if err := os.WriteFile(f.dataset, []byte("[[it_aggregate]\n"), 0o644); err != nil {
			t.Fatalf("breaking dataset: %v", err)
		}

		if rec := f.get(t, "/"); rec.Code != http.StatusUnprocessableEntity {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusUnprocessableEntity)
		}
	})

	t.Run("only GET", func(t *testing.T) {
		t.Parallel()

		f := newServeFixture(t)
		rec := httptest.NewRecorder()
		f.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))

		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
		}
	})

	t.Run("unknown path", func(t *testing.T) {
		t.Parallel()

		f := newServeFixture(t)
		if rec := f.get(t, "/nope"); rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
		}
	})
}

// ---------------------------------------------------------------------------
// TestPreviewServer_Chart - Live chart routes
// ---------------------------------------------------------------------------

func TestPreviewServer_Chart(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		target      string
		wantStatus  int
		contains    []string
		notContains []string
	}{
		{
			name:        "svg static by default",
			target:      "/chart.svg",
			wantStatus:  http.StatusOK,
			contains:    []string{"<svg", "IT-Jobs"},
			notContains: []string{"<animate"},
		},
		{
			name:       "svg animated on request",
			target:     "/chart.svg?animation=on",
			wantStatus: http.StatusOK,
			contains:   []string{"<animate"},
		},
		{
			name:        "svg jobs mode",
			target:      "/chart.svg?mode=jobs&range=12",
			wantStatus:  http.StatusOK,
			contains:    []string{"IT-Jobs"},
			notContains: []string{"Arbeitslose"},
		},
		{
			name:       "page marks selection",
			target:     "/chart?mode=pair&range=6&animation=on",
			wantStatus: http.StatusOK,
			contains:   []string{`<option value="pair" selected>`, `<option value="6" selected>`, "<svg"},
		},
		{
			name:       "bad month",
			target:     "/chart.svg?from=2025-13",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown series",
			target:     "/chart.svg?agg=nope",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "oversized",
			target:     fmt.Sprintf("/chart.svg?width=%d", config.MaxChartSize+1),
			wantStatus: http.StatusBadRequest,
		},
	}

	f := newServeFixture(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := f.get(t, tt.target)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %q)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			body := rec.Body.String()
			for _, want := range tt.contains {
				if !strings.Contains(body, want) {
					t.Errorf("body lacks %q", want)
				}
			}
			for _, unwanted := range tt.notContains {
				if strings.Contains(body, unwanted) {
					t.Errorf("body should not contain %q", unwanted)
				}
			}
		})
	}

	t.Run("svg headers", func(t *testing.T) {
		t.Parallel()

		rec := f.get(t, "/chart.svg")
		if ct := rec.Header().Get("Content-Type"); ct != "image/svg+xml" {
			t.Errorf("Content-Type = %q", ct)
		}
		if cc := rec.Header().Get("Cache-Control"); cc != "no-store" {
			t.Errorf("Cache-Control = %q", cc)
		}
	})
}

// ---------------------------------------------------------------------------
// TestPreviewServer_Print - Browser routes
// ---------------------------------------------------------------------------

func TestPreviewServer_Print(t *testing.T) {
	t.Parallel()

	tests := []struct {
		target      string
		contentType string
		body        string
	}{
		{"/preview.pdf", "application/pdf", "fake-pdf"},
		{"/preview.png", "image/png", "fake-png"},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			t.Parallel()

			f := newServeFixture(t)
			rec := f.get(t, tt.target)

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
			}
			if ct := rec.Header().Get("Content-Type"); ct != tt.contentType {
				t.Errorf("Content-Type = %q, want %q", ct, tt.contentType)
			}
			if rec.Body.String() != tt.body {
				t.Errorf("body = %q, want %q", rec.Body.String(), tt.body)
			}
		})
	}

	t.Run("browser failure is bad gateway", func(t *testing.T) {
		t.Parallel()

		f := newServeFixture(t)
		f.renderer.err = fmt.Errorf("%w: no chrome", printer.ErrBrowserConnect)

		rec := f.get(t, "/preview.pdf")
		if rec.Code != http.StatusBadGateway {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusBadGateway)
		}
		if body := strings.TrimSpace(rec.Body.String()); body != http.StatusText(http.StatusBadGateway) {
			t.Errorf("body = %q, want only the status text", body)
		}
	})

	t.Run("closed pool is unavailable", func(t *testing.T) {
		t.Parallel()

		f := newServeFixture(t)
		if err := f.pool.Close(); err != nil {
			t.Fatalf("Close() error = %v", err)
		}

		if rec := f.get(t, "/preview.png"); rec.Code != http.StatusServiceUnavailable {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
		}
	})
}

// ---------------------------------------------------------------------------
// TestPreviewServer_ErrorBodies - What reaches the client
// ---------------------------------------------------------------------------

func TestPreviewServer_ErrorBodies(t *testing.T) {
	t.Parallel()

	t.Run("server error hides paths", func(t *testing.T) {
		t.Parallel()

		f := newServeFixture(t)
		if err := os.Remove(f.dataset); err != nil {
			t.Fatalf("removing dataset: %v", err)
		}

		rec := f.get(t, "/")
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
		}
		if strings.Contains(rec.Body.String(), f.dataset) {
			t.Errorf("body leaks the dataset path: %q", rec.Body.String())
		}
	})

	t.Run("client error keeps the message", func(t *testing.T) {
		t.Parallel()

		f := newServeFixture(t)
		rec := f.get(t, "/chart.svg?from=2025-13")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
		}
		if !strings.Contains(rec.Body.String(), "2025-13") {
			t.Errorf("body = %q, want the rejected month", rec.Body.String())
		}
	})
}

// ---------------------------------------------------------------------------
// TestStatusFor - Error classification
// ---------------------------------------------------------------------------

func TestStatusFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want int
	}{
		{dateutil.ErrInvalidMonth, http.StatusBadRequest},
		{ErrUnknownSeries, http.StatusBadRequest},
		{config.ErrInvalidValue, http.StatusBadRequest},
		{itmarket.ErrEmptyDocument, http.StatusUnprocessableEntity},
		{itmarket.ErrInvalidFrontmatter, http.StatusUnprocessableEntity},
		{dataset.ErrDatasetParse, http.StatusUnprocessableEntity},
		{dataset.ErrMalformedEntry, http.StatusUnprocessableEntity},
		{printer.ErrPageLoad, http.StatusBadGateway},
		{fmt.Errorf("print: %w", context.DeadlineExceeded), http.StatusGatewayTimeout},
		{printer.ErrPoolClosed, http.StatusServiceUnavailable},
		{dataset.ErrDatasetRead, http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			t.Parallel()

			if got := statusFor(tt.err); got != tt.want {
				t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestIsOn - Query switches
// ---------------------------------------------------------------------------

func TestIsOn(t *testing.T) {
	t.Parallel()

	for _, v := range []string{"on", "1", "true", "Yes", " enabled "} {
		if !isOn(v) {
			t.Errorf("isOn(%q) = false", v)
		}
	}
	for _, v := range []string{"", "off", "0", "no"} {
		if isOn(v) {
			t.Errorf("isOn(%q) = true", v)
		}
	}
}

// ---------------------------------------------------------------------------
// TestRunServe_Arguments - Checks before listening
// ---------------------------------------------------------------------------

func TestRunServe_Arguments(t *testing.T) {
	t.Parallel()

	_, ds, article := fixture(t)
	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{"no article", nil, ErrNoInput},
		{"two articles", []string{article, article}, ErrNoInput},
		{"wrong extension", []string{"notes.txt"}, ErrInvalidExtension},
		{"missing article", []string{"missing.md"}, ErrReadArticle},
		{"bad month", []string{article, "--dataset", ds, "--month", "13/2025"}, dateutil.ErrInvalidMonth},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env, _, _ := testEnv(t, nil)
			err := runServe(context.Background(), tt.args, env)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("runServe() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
