package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	itmarket "github.com/alnah/go-itmarket"
	"github.com/alnah/go-itmarket/internal/config"
	"github.com/alnah/go-itmarket/internal/printer"
)

// printJob is one article to print.
type printJob struct {
	InputPath  string
	OutputPath string
}

// printResult holds the outcome of a single print.
type printResult struct {
	InputPath  string
	OutputPath string
	Err        error
	Duration   time.Duration
}

// printParams groups what every print job shares.
type printParams struct {
	asm    *itmarket.Assembler
	cfg    *config.Config
	env    *Environment
	logger *slog.Logger
	month  string
	format printer.Format
}

// runPrint renders articles in headless Chrome and writes PDF or PNG files.
func runPrint(ctx context.Context, args []string, env *Environment, format printer.Format) error {
	flags, positional, err := parsePrintFlags(string(format), args, env.Stderr)
	if err != nil {
		return err
	}
	if len(positional) == 0 {
		return fmt.Errorf("%w: %s needs at least one article", ErrNoInput, format)
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
	if err := cfg.Validate(); err != nil {
		return err
	}

	jobs, err := planPrintJobs(positional, flags.output, format)
	if err != nil {
		return err
	}

	logger := newLogger(env.Stderr, flags.common)
	asm, err := loadAssembler(cfg, env, logger)
	if err != nil {
		return err
	}

	pool := env.NewPool(min(printer.ResolvePoolSize(flags.browser.workers), len(jobs)), cfg.PDF.Timeout)
	defer func() {
		if err := pool.Close(); err != nil {
			logger.Warn("closing browsers", slog.Any("error", err))
		}
	}()

	results := printBatch(ctx, pool, jobs, &printParams{
		asm:    asm,
		cfg:    cfg,
		env:    env,
		logger: logger,
		month:  flags.article.month,
		format: format,
	})

	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, r.Err)
		}
	}
	printResults(results, flags.common, env)
	return errors.Join(errs...)
}

// planPrintJobs pairs inputs with output paths. With one input, output is
// the target file; with several it is a directory. Empty output writes next
// to each input.
func planPrintJobs(inputs []string, output string, format printer.Format) ([]printJob, error) {
	jobs := make([]printJob, 0, len(inputs))
	for _, in := range inputs {
		if err := validateMarkdownExtension(in); err != nil {
			return nil, err
		}
		out := outputPath(in, string(format))
		switch {
		case output == "":
		case len(inputs) == 1:
			out = output
		default:
			out = filepath.Join(output, filepath.Base(out))
		}
		jobs = append(jobs, printJob{InputPath: in, OutputPath: out})
	}
	return jobs, nil
}

// printBatch prints jobs concurrently, one browser per worker.
func printBatch(ctx context.Context, pool *printer.Pool, jobs []printJob, params *printParams) []printResult {
	if len(jobs) == 0 {
		return nil
	}

	concurrency := min(pool.Size(), len(jobs))
	results := make([]printResult, len(jobs))
	var wg sync.WaitGroup
	queue := make(chan int, len(jobs))

	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			p, err := pool.Acquire(ctx)
			if err != nil {
				for idx := range queue {
					results[idx] = printResult{InputPath: jobs[idx].InputPath, Err: err}
				}
				return
			}
			defer pool.Release(p)

			for idx := range queue {
				if ctx.Err() != nil {
					results[idx] = printResult{InputPath: jobs[idx].InputPath, Err: ctx.Err()}
					continue
				}
				results[idx] = printFile(ctx, p, jobs[idx], params)
			}
		}()
	}

	for i := range jobs {
		queue <- i
	}
	close(queue)

	wg.Wait()
	return results
}

// printFile renders and prints a single article.
func printFile(ctx context.Context, p *printer.Printer, job printJob, params *printParams) printResult {
	start := time.Now()
	result := printResult{InputPath: job.InputPath, OutputPath: job.OutputPath}

	html, err := renderArticle(ctx, params.asm, job.InputPath, params.month, params.cfg, params.env, params.logger)
	if err != nil {
		result.Err = err
		result.Duration = time.Since(start)
		return result
	}

	printCtx, cancel := context.WithTimeout(ctx, params.cfg.PDF.Timeout)
	defer cancel()

	data, err := p.Print(printCtx, html, params.format, printer.Options{Width: params.cfg.PDF.Viewport})
	if err != nil {
		result.Err = fmt.Errorf("%s: %w", job.InputPath, err)
		result.Duration = time.Since(start)
		return result
	}

	if err := writeOutput(job.OutputPath, data, params.env.Stdout); err != nil {
		result.Err = err
	}
	result.Duration = time.Since(start)
	return result
}

// printResults reports each print. Failures are returned to the caller,
// which prints them once with a hint.
func printResults(results []printResult, common commonFlags, env *Environment) {
	if common.quiet {
		return
	}

	var ok, failed int
	for _, r := range results {
		if r.Err != nil {
			failed++
			continue
		}
		ok++
		if r.OutputPath == stdoutPath {
			continue
		}
		if common.verbose {
			fmt.Fprintf(env.Stdout, "%s -> %s (%v)\n", r.InputPath, r.OutputPath, r.Duration.Round(time.Millisecond))
		} else {
			fmt.Fprintf(env.Stdout, "Created %s\n", r.OutputPath)
		}
	}

	if len(results) > 1 {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed\n", ok, failed)
	}
}
