package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	itmarket "github.com/alnah/go-itmarket"
	"github.com/alnah/go-itmarket/internal/assets"
	"github.com/alnah/go-itmarket/internal/chart"
	"github.com/alnah/go-itmarket/internal/config"
	"github.com/alnah/go-itmarket/internal/dataset"
	"github.com/alnah/go-itmarket/internal/dateutil"
	"github.com/alnah/go-itmarket/internal/printer"
)

// Server timeouts.
const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// option is one <option> of a chart page select.
type option struct {
	Value    string
	Label    string
	Selected bool
}

var chartModes = []option{
	{Value: string(chart.ModeAll), Label: "Alle Reihen"},
	{Value: string(chart.ModePair), Label: "Arbeitslose und Arbeitsuchende"},
	{Value: string(chart.ModeJobs), Label: "IT-Jobs"},
}

var chartRanges = []option{
	{Value: "all", Label: "Gesamter Zeitraum"},
	{Value: "24", Label: "24 Monate"},
	{Value: "12", Label: "12 Monate"},
	{Value: "6", Label: "6 Monate"},
}

// chartPageView is the data of the chart page template.
type chartPageView struct {
	CSS       template.CSS
	Action    string
	Modes     []option
	Ranges    []option
	From      string
	To        string
	Animation bool
	Chart     template.HTML
	Legend    template.HTML
}

// previewServer serves one article and live charts of the dataset. Every
// request reads the article and dataset again, so edits show on reload.
type previewServer struct {
	article   string
	month     string
	cfg       *config.Config
	env       *Environment
	loader    assets.AssetLoader
	logger    *slog.Logger
	pool      *printer.Pool
	chartPage *template.Template
	css       template.CSS
}

// newPreviewServer loads the chart page template and stylesheet once.
func newPreviewServer(article, month string, cfg *config.Config, env *Environment, logger *slog.Logger, pool *printer.Pool) (*previewServer, error) {
	loader, err := assetLoader(cfg, env)
	if err != nil {
		return nil, err
	}
	text, err := loader.LoadTemplate(assets.ChartPageTemplate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", itmarket.ErrTemplateLoad, err)
	}
	page, err := template.New(assets.ChartPageTemplate).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing: %v", itmarket.ErrTemplateLoad, err)
	}
	css, err := loader.LoadStyle(assets.PreviewStyle)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", itmarket.ErrTemplateLoad, err)
	}

	return &previewServer{
		article:   article,
		month:     month,
		cfg:       cfg,
		env:       env,
		loader:    loader,
		logger:    logger,
		pool:      pool,
		chartPage: page,
		css:       template.CSS(css), // #nosec G203 -- stylesheet comes from the asset loader
	}, nil
}

// routes returns the server's handler.
func (s *previewServer) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handlePreview)
	mux.HandleFunc("GET /chart", s.handleChartPage)
	mux.HandleFunc("GET /chart.svg", s.handleChartSVG)
	mux.HandleFunc("GET /preview.pdf", s.handlePrint(printer.FormatPDF))
	mux.HandleFunc("GET /preview.png", s.handlePrint(printer.FormatPNG))
	return s.logRequests(mux)
}

func (s *previewServer) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Duration("took", time.Since(start)))
	})
}

// loadData reads the base dataset and, when configured, the patch.
func (s *previewServer) loadData() (dataset.Dataset, *dataset.Dataset, error) {
	base, err := dataset.Load(s.cfg.Dataset.Path)
	if err != nil {
		return dataset.Dataset{}, nil, err
	}
	if s.cfg.Dataset.Patch == "" {
		return base, nil, nil
	}
	patch, err := dataset.Load(s.cfg.Dataset.Patch)
	if err != nil {
		return dataset.Dataset{}, nil, fmt.Errorf("patch: %w", err)
	}
	return base, &patch, nil
}

// render assembles the article against the current dataset files.
func (s *previewServer) render(ctx context.Context) (string, error) {
	source, err := readArticle(s.article)
	if err != nil {
		return "", err
	}
	month, err := articleMonth(s.month, source, s.cfg, s.env.Now())
	if err != nil {
		return "", err
	}
	base, patch, err := s.loadData()
	if err != nil {
		return "", err
	}
	asm, err := newAssembler(s.cfg, base, s.loader, s.logger)
	if err != nil {
		return "", err
	}
	res, err := asm.Render(ctx, itmarket.Document{Source: source, Month: month, Patch: patch})
	if err != nil {
		return "", err
	}
	return res.HTML, nil
}

func (s *previewServer) handlePreview(w http.ResponseWriter, r *http.Request) {
	page, err := s.render(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(page))
}

func (s *previewServer) handleChartSVG(w http.ResponseWriter, r *http.Request) {
	scene, _, err := s.scene(r.URL.Query())
	if err != nil {
		s.fail(w, err)
		return
	}
	var buf bytes.Buffer
	if err := chart.RenderSVG(&buf, scene); err != nil {
		s.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}

func (s *previewServer) handleChartPage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	scene, req, err := s.scene(q)
	if err != nil {
		s.fail(w, err)
		return
	}

	var svg, legend bytes.Buffer
	if err := chart.RenderSVG(&svg, scene); err != nil {
		s.fail(w, err)
		return
	}
	if err := chart.RenderLegend(&legend, scene); err != nil {
		s.fail(w, err)
		return
	}

	view := chartPageView{
		CSS:       s.css,
		Action:    "/chart",
		Modes:     selectOption(chartModes, string(req.Mode)),
		Ranges:    selectOption(chartRanges, valueOr(req.Range, "all")),
		From:      req.From,
		To:        req.To,
		Animation: req.Animated,
		// Both fragments come from html/template with escaped data.
		Chart:  template.HTML(svg.String()),    // #nosec G203
		Legend: template.HTML(legend.String()), // #nosec G203
	}

	var page bytes.Buffer
	if err := s.chartPage.Execute(&page, view); err != nil {
		s.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page.Bytes())
}

// handlePrint renders the preview in the browser and returns the file.
func (s *previewServer) handlePrint(format printer.Format) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := s.render(r.Context())
		if err != nil {
			s.fail(w, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), s.cfg.PDF.Timeout)
		defer cancel()

		p, err := s.pool.Acquire(ctx)
		if err != nil {
			s.fail(w, err)
			return
		}
		data, err := p.Print(ctx, page, format, printer.Options{Width: s.cfg.PDF.Viewport})
		s.pool.Release(p)
		if err != nil {
			s.fail(w, err)
			return
		}

		if format == printer.FormatPDF {
			w.Header().Set("Content-Type", "application/pdf")
		} else {
			w.Header().Set("Content-Type", "image/png")
		}
		_, _ = w.Write(data)
	}
}

// scene builds the chart described by query parameters. mode, range,
// from, to, width, height, agg and jobs select the view; animation is
// "on" or "off". Without mode or animation the configured animation
// default applies, so an unchecked box in a submitted form means off.
func (s *previewServer) scene(q url.Values) (chart.Scene, chartRequest, error) {
	req := chartRequest{
		ID:       "live",
		Mode:     chart.ParseMode(q.Get("mode")),
		Range:    q.Get("range"),
		From:     q.Get("from"),
		To:       q.Get("to"),
		AggKey:   q.Get("agg"),
		JobsKey:  q.Get("jobs"),
		Width:    intParam(q, "width", s.cfg.Chart.Width),
		Height:   intParam(q, "height", s.cfg.Chart.Height),
		Animated: s.cfg.Chart.Animation,
	}
	if q.Has("animation") || q.Has("mode") {
		req.Animated = isOn(q.Get("animation"))
	}
	if req.Width > config.MaxChartSize || req.Height > config.MaxChartSize {
		return chart.Scene{}, req, fmt.Errorf("%w: chart size above %d", config.ErrInvalidValue, config.MaxChartSize)
	}

	ds, patch, err := s.loadData()
	if err != nil {
		return chart.Scene{}, req, err
	}
	if patch != nil {
		ds = ds.Merge(*patch)
	}

	scene, err := buildScene(ds, req)
	return scene, req, err
}

// fail writes a status derived from err. Client errors carry the message;
// server errors are logged and answered with the status text only, so
// paths and browser output stay on the server.
func (s *previewServer) fail(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", slog.Int("status", status), slog.Any("error", err))
		http.Error(w, http.StatusText(status), status)
		return
	}
	s.logger.Debug("bad request", slog.Any("error", err))
	http.Error(w, err.Error(), status)
}

// statusFor maps an error to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, dateutil.ErrInvalidMonth),
		errors.Is(err, ErrUnknownSeries),
		errors.Is(err, config.ErrInvalidValue):
		return http.StatusBadRequest
	case errors.Is(err, itmarket.ErrEmptyDocument),
		errors.Is(err, itmarket.ErrInvalidFrontmatter),
		errors.Is(err, dataset.ErrDatasetParse),
		errors.Is(err, dataset.ErrMalformedEntry):
		return http.StatusUnprocessableEntity
	case errors.Is(err, printer.ErrBrowserConnect),
		errors.Is(err, printer.ErrPageCreate),
		errors.Is(err, printer.ErrPageLoad),
		errors.Is(err, printer.ErrPDFGeneration),
		errors.Is(err, printer.ErrScreenshot):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, printer.ErrPoolClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func selectOption(opts []option, value string) []option {
	out := make([]option, len(opts))
	for i, o := range opts {
		o.Selected = o.Value == value
		out[i] = o
	}
	return out
}

func intParam(q url.Values, key string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(q.Get(key)))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func isOn(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "on", "1", "true", "yes", "enabled":
		return true
	}
	return false
}

// runServe serves the preview until the context is canceled.
func runServe(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseServeFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if len(positional) != 1 {
		return fmt.Errorf("%w: serve takes exactly one article", ErrNoInput)
	}
	article := positional[0]
	if err := validateMarkdownExtension(article); err != nil {
		return err
	}
	if _, err := os.Stat(article); err != nil {
		return fmt.Errorf("%w: %v", ErrReadArticle, err)
	}

	cfg, err := loadConfig(flags.common, env)
	if err != nil {
		return err
	}
	applyDataFlags(flags.data, flags.set, cfg)
	applyArticleFlags(flags.article, flags.set, cfg)
	if err := applyBrowserFlags(flags.browser, flags.set, cfg); err != nil {
		return err
	}
	if flags.set["addr"] {
		cfg.Serve.Addr = flags.addr
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if flags.article.month != "" {
		if _, err := dateutil.ResolveMonth(flags.article.month, env.Now()); err != nil {
			return err
		}
	}

	logger := newLogger(env.Stderr, flags.common)
	pool := env.NewPool(printer.ResolvePoolSize(flags.browser.workers), cfg.PDF.Timeout)
	defer func() {
		if err := pool.Close(); err != nil {
			logger.Warn("closing browsers", slog.Any("error", err))
		}
	}()

	srv, err := newPreviewServer(article, flags.article.month, cfg, env, logger, pool)
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", cfg.Serve.Addr)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrListen, err)
	}

	httpSrv := &http.Server{
		Handler:           srv.routes(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	if !flags.common.quiet {
		fmt.Fprintf(env.Stdout, "Preview at http://%s/ (chart at /chart)\n", ln.Addr())
	}
	logger.Info("serving preview", slog.String("addr", ln.Addr().String()), slog.String("article", article))

	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.Serve(ln) }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
