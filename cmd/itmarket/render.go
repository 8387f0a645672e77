package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	itmarket "github.com/alnah/go-itmarket"
	"github.com/alnah/go-itmarket/internal/config"
	"github.com/alnah/go-itmarket/internal/dataset"
)

// Sentinel errors for CLI operations.
var (
	ErrNoInput            = errors.New("no input specified")
	ErrReadArticle        = errors.New("failed to read article")
	ErrReadFigures        = errors.New("failed to read figures file")
	ErrParseFigures       = errors.New("invalid figures file")
	ErrWriteOutput        = errors.New("failed to write output")
	ErrListen             = errors.New("failed to listen")
	ErrInvalidExtension   = errors.New("file must have .md or .markdown extension")
	ErrInvalidFlags       = errors.New("invalid flags")
	ErrInvalidWorkerCount = errors.New("invalid worker count")
)

// runRender assembles one article into a standalone preview page.
func runRender(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseRenderFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if len(positional) != 1 {
		return fmt.Errorf("%w: render takes exactly one article", ErrNoInput)
	}
	input := positional[0]
	if err := validateMarkdownExtension(input); err != nil {
		return err
	}

	cfg, err := loadConfig(flags.common, env)
	if err != nil {
		return err
	}
	applyDataFlags(flags.data, flags.set, cfg)
	applyArticleFlags(flags.article, flags.set, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := newLogger(env.Stderr, flags.common)
	asm, err := loadAssembler(cfg, env, logger)
	if err != nil {
		return err
	}
	html, err := renderArticle(ctx, asm, input, flags.article.month, cfg, env, logger)
	if err != nil {
		return err
	}

	output := flags.output
	if output == "" {
		output = outputPath(input, "html")
	}
	if err := writeOutput(output, []byte(html), env.Stdout); err != nil {
		return err
	}
	if output != stdoutPath && !flags.common.quiet {
		fmt.Fprintf(env.Stdout, "Created %s\n", output)
	}
	return nil
}

// loadAssembler loads the dataset and builds an Assembler over it.
func loadAssembler(cfg *config.Config, env *Environment, logger *slog.Logger) (*itmarket.Assembler, error) {
	ds, err := dataset.LoadWithPatch(cfg.Dataset.Path, cfg.Dataset.Patch)
	if err != nil {
		return nil, err
	}
	loader, err := assetLoader(cfg, env)
	if err != nil {
		return nil, err
	}
	return newAssembler(cfg, ds, loader, logger)
}

// renderArticle reads and renders the article at input.
func renderArticle(ctx context.Context, asm *itmarket.Assembler, input, flagMonth string, cfg *config.Config, env *Environment, logger *slog.Logger) (string, error) {
	source, err := readArticle(input)
	if err != nil {
		return "", err
	}
	month, err := articleMonth(flagMonth, source, cfg, env.Now())
	if err != nil {
		return "", err
	}

	res, err := asm.Render(ctx, itmarket.Document{Source: source, Month: month})
	if err != nil {
		return "", fmt.Errorf("%s: %w", input, err)
	}
	logger.Debug("assembled article",
		slog.String("input", input),
		slog.String("title", res.Header.Title),
		slog.Int("panels", res.Panels))
	return res.HTML, nil
}
