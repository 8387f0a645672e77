package main

import (
	"errors"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// dataFlags locate the dataset.
type dataFlags struct {
	dataset string
	patch   string
}

// articleFlags control how an article is assembled.
type articleFlags struct {
	baseURL   string
	month     string
	normalize bool
	animation bool
}

// browserFlags control printing.
type browserFlags struct {
	timeout  string
	viewport int
	workers  int
}

// renderFlags holds all flags for the render command.
type renderFlags struct {
	common  commonFlags
	data    dataFlags
	article articleFlags
	output  string
	set     map[string]bool
}

// printFlags holds all flags for the pdf and png commands.
type printFlags struct {
	common  commonFlags
	data    dataFlags
	article articleFlags
	browser browserFlags
	output  string
	set     map[string]bool
}

// chartFlags holds all flags for the chart command.
type chartFlags struct {
	common    commonFlags
	data      dataFlags
	output    string
	format    string
	mode      string
	rangeSel  string
	from      string
	to        string
	aggKey    string
	jobsKey   string
	width     int
	height    int
	animation bool
	static    bool
	set       map[string]bool
}

// serveFlags holds all flags for the serve command.
type serveFlags struct {
	common  commonFlags
	data    dataFlags
	article articleFlags
	browser browserFlags
	addr    string
	set     map[string]bool
}

// configFlags holds all flags for the config command.
type configFlags struct {
	common commonFlags
	data   dataFlags
	set    map[string]bool
}

// normalizeFlags holds all flags for the normalize command.
type normalizeFlags struct {
	common  commonFlags
	month   string
	output  string
	spacers bool
}

// patchFlags holds all flags for the patch command.
type patchFlags struct {
	common commonFlags
	data   dataFlags
	month  string
	output string
	apply  bool
	set    map[string]bool
}

func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug logs")
}

func addDataFlags(fs *flag.FlagSet, f *dataFlags) {
	fs.StringVar(&f.dataset, "dataset", "", "monthly dataset file (TOML)")
	fs.StringVar(&f.patch, "patch", "", "current-month patch file merged over the dataset")
}

func addArticleFlags(fs *flag.FlagSet, f *articleFlags) {
	fs.StringVar(&f.baseURL, "base-url", "", "site root for root-relative URLs (\"\" keeps them relative)")
	fs.StringVar(&f.month, "month", "", "article month: YYYY-MM, auto or auto:prev")
	fs.BoolVar(&f.normalize, "normalize", false, "normalize the article body before rendering")
	fs.BoolVar(&f.animation, "animation", false, "start chart embeds animated")
}

func addBrowserFlags(fs *flag.FlagSet, f *browserFlags) {
	fs.StringVarP(&f.timeout, "timeout", "t", "", "print timeout (e.g., 30s, 2m)")
	fs.IntVar(&f.viewport, "viewport", 0, "browser viewport width in CSS pixels")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel browsers (0 = auto)")
}

// parse parses args and records which flags were given, so zero values can
// still override the config.
func parse(fs *flag.FlagSet, args []string) (map[string]bool, error) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidFlags, err)
	}
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set, nil
}

func newFlagSet(name string, usage func(io.Writer), w io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(w)
	fs.Usage = func() { usage(w) }
	return fs
}

func parseRenderFlags(args []string, w io.Writer) (*renderFlags, []string, error) {
	fs := newFlagSet("render", printRenderUsage, w)
	f := &renderFlags{}

	fs.StringVarP(&f.output, "output", "o", "", "output file (\"-\" = stdout)")
	addCommonFlags(fs, &f.common)
	addDataFlags(fs, &f.data)
	addArticleFlags(fs, &f.article)

	set, err := parse(fs, args)
	if err != nil {
		return nil, nil, err
	}
	f.set = set
	return f, fs.Args(), nil
}

func parsePrintFlags(name string, args []string, w io.Writer) (*printFlags, []string, error) {
	fs := newFlagSet(name, func(w io.Writer) { printPrintUsage(w, name) }, w)
	f := &printFlags{}

	fs.StringVarP(&f.output, "output", "o", "", "output file (single article) or directory")
	addCommonFlags(fs, &f.common)
	addDataFlags(fs, &f.data)
	addArticleFlags(fs, &f.article)
	addBrowserFlags(fs, &f.browser)

	set, err := parse(fs, args)
	if err != nil {
		return nil, nil, err
	}
	f.set = set
	return f, fs.Args(), nil
}

func parseChartFlags(args []string, w io.Writer) (*chartFlags, []string, error) {
	fs := newFlagSet("chart", printChartUsage, w)
	f := &chartFlags{}

	fs.StringVarP(&f.output, "output", "o", "", "output file (default stdout)")
	fs.StringVarP(&f.format, "format", "f", "svg", "image format: svg, png, pdf")
	fs.StringVarP(&f.mode, "mode", "m", "all", "series: all, pair, jobs")
	fs.StringVarP(&f.rangeSel, "range", "r", "all", "keep the last N months (\"all\" = every month)")
	fs.StringVar(&f.from, "from", "", "first month, YYYY-MM")
	fs.StringVar(&f.to, "to", "", "last month, YYYY-MM")
	fs.StringVar(&f.aggKey, "agg", "", "aggregate series (default it_aggregate)")
	fs.StringVar(&f.jobsKey, "jobs", "", "job series (default it_jobs)")
	fs.IntVar(&f.width, "width", 0, "chart width in pixels")
	fs.IntVar(&f.height, "height", 0, "chart height in pixels")
	fs.BoolVar(&f.animation, "animation", false, "animate the interactive SVG")
	fs.BoolVar(&f.static, "static", false, "draw SVG with the static image renderer")
	addCommonFlags(fs, &f.common)
	addDataFlags(fs, &f.data)

	set, err := parse(fs, args)
	if err != nil {
		return nil, nil, err
	}
	f.set = set
	return f, fs.Args(), nil
}

func parseServeFlags(args []string, w io.Writer) (*serveFlags, []string, error) {
	fs := newFlagSet("serve", printServeUsage, w)
	f := &serveFlags{}

	fs.StringVar(&f.addr, "addr", "", "listen address (default 127.0.0.1:8080)")
	addCommonFlags(fs, &f.common)
	addDataFlags(fs, &f.data)
	addArticleFlags(fs, &f.article)
	addBrowserFlags(fs, &f.browser)

	set, err := parse(fs, args)
	if err != nil {
		return nil, nil, err
	}
	f.set = set
	return f, fs.Args(), nil
}

func parsePatchFlags(args []string, w io.Writer) (*patchFlags, []string, error) {
	fs := newFlagSet("patch", printPatchUsage, w)
	f := &patchFlags{}

	fs.StringVar(&f.month, "month", "", "report month: YYYY-MM, auto or auto:prev (default from file)")
	fs.StringVarP(&f.output, "output", "o", "", "write the snippet to a file (default stdout)")
	fs.BoolVar(&f.apply, "apply", false, "merge the figures into the dataset file")
	addCommonFlags(fs, &f.common)
	addDataFlags(fs, &f.data)

	set, err := parse(fs, args)
	if err != nil {
		return nil, nil, err
	}
	f.set = set
	return f, fs.Args(), nil
}

func parseNormalizeFlags(args []string, w io.Writer) (*normalizeFlags, []string, error) {
	fs := newFlagSet("normalize", printNormalizeUsage, w)
	f := &normalizeFlags{}

	fs.StringVar(&f.month, "month", "", "article month: YYYY-MM, auto or auto:prev (default from header date)")
	fs.StringVarP(&f.output, "output", "o", "", "output file (default stdout)")
	fs.BoolVar(&f.spacers, "spacers", false, "join paragraphs with space shortcodes")
	addCommonFlags(fs, &f.common)

	if _, err := parse(fs, args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

func parseConfigFlags(args []string, w io.Writer) (*configFlags, error) {
	fs := newFlagSet("config", printConfigUsage, w)
	f := &configFlags{}

	addCommonFlags(fs, &f.common)
	addDataFlags(fs, &f.data)

	set, err := parse(fs, args)
	if err != nil {
		return nil, err
	}
	f.set = set
	return f, nil
}
