package main

import (
	"bytes"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/alnah/go-itmarket/internal/chart"
	"github.com/alnah/go-itmarket/internal/dataset"
	"github.com/alnah/go-itmarket/internal/dateutil"
)

// ErrUnknownSeries is returned for a series name the dataset does not have.
var ErrUnknownSeries = errors.New("unknown series")

// Open month bounds used when only one side of a range is given.
const (
	firstMonth = "0000-01"
	lastMonth  = "9999-12"
)

// chartRequest describes one chart view.
type chartRequest struct {
	ID       string
	Mode     chart.Mode
	Range    string // last N months, or "all"
	From     string
	To       string
	AggKey   string
	JobsKey  string
	Width    int
	Height   int
	Animated bool
}

// buildScene selects the series of req from ds and computes the scene.
// Every call starts from the data; nothing is carried over between views.
func buildScene(ds dataset.Dataset, req chartRequest) (chart.Scene, error) {
	aggKey := valueOr(req.AggKey, dataset.ITAggregate)
	jobsKey := valueOr(req.JobsKey, dataset.ITJobs)

	agg, ok := ds.AggregateSeries(aggKey)
	if !ok {
		return chart.Scene{}, fmt.Errorf("%w: %q", ErrUnknownSeries, aggKey)
	}
	jobs, ok := ds.JobsSeries(jobsKey)
	if !ok {
		return chart.Scene{}, fmt.Errorf("%w: %q", ErrUnknownSeries, jobsKey)
	}

	r, err := monthRange(req.From, req.To)
	if err != nil {
		return chart.Scene{}, err
	}

	payload := chart.NewPayload(dataset.FilterRange(agg, r), dataset.FilterRange(jobs, r))
	return chart.Build(chart.Options{
		ID:       req.ID,
		Width:    req.Width,
		Height:   req.Height,
		Mode:     req.Mode,
		Animated: req.Animated,
	}, chart.Series(payload, req.Mode, req.Range)), nil
}

// monthRange validates from and to and opens a missing bound.
func monthRange(from, to string) (dataset.Range, error) {
	for _, m := range []string{from, to} {
		if m != "" && !dataset.ValidMonth(m) {
			return dataset.Range{}, fmt.Errorf("%w: %q, use YYYY-MM", dateutil.ErrInvalidMonth, m)
		}
	}
	if from == "" && to == "" {
		return dataset.Range{}, nil
	}
	return dataset.Range{From: valueOr(from, firstMonth), To: valueOr(to, lastMonth)}, nil
}

// runChart draws one chart from the dataset.
func runChart(args []string, env *Environment) error {
	flags, positional, err := parseChartFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if len(positional) > 0 {
		return fmt.Errorf("%w: unexpected argument %q", ErrInvalidFlags, positional[0])
	}

	format := strings.ToLower(strings.TrimSpace(flags.format))
	if !slices.Contains(chart.ImageFormats, format) {
		return fmt.Errorf("%w: %q", chart.ErrUnsupportedFormat, flags.format)
	}

	cfg, err := loadConfig(flags.common, env)
	if err != nil {
		return err
	}
	applyDataFlags(flags.data, flags.set, cfg)
	if flags.set["width"] {
		cfg.Chart.Width = flags.width
	}
	if flags.set["height"] {
		cfg.Chart.Height = flags.height
	}
	if flags.set["animation"] {
		cfg.Chart.Animation = flags.animation
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ds, err := dataset.LoadWithPatch(cfg.Dataset.Path, cfg.Dataset.Patch)
	if err != nil {
		return err
	}

	scene, err := buildScene(ds, chartRequest{
		ID:       "chart",
		Mode:     chart.ParseMode(flags.mode),
		Range:    flags.rangeSel,
		From:     flags.from,
		To:       flags.to,
		AggKey:   flags.aggKey,
		JobsKey:  flags.jobsKey,
		Width:    cfg.Chart.Width,
		Height:   cfg.Chart.Height,
		Animated: cfg.Chart.Animation,
	})
	if err != nil {
		return err
	}
	if scene.Empty() {
		newLogger(env.Stderr, flags.common).Warn("fewer than two months selected, chart is empty")
	}

	var buf bytes.Buffer
	if format == "svg" && !flags.static {
		err = chart.RenderSVG(&buf, scene)
	} else {
		err = chart.RenderImage(&buf, scene, format)
	}
	if err != nil {
		return err
	}

	output := valueOr(flags.output, stdoutPath)
	if err := writeOutput(output, buf.Bytes(), env.Stdout); err != nil {
		return err
	}
	if output != stdoutPath && !flags.common.quiet {
		fmt.Fprintf(env.Stdout, "Created %s\n", output)
	}
	return nil
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
