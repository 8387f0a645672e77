package main

import (
	"fmt"

	itmarket "github.com/alnah/go-itmarket"
	"github.com/alnah/go-itmarket/internal/dataset"
	"github.com/alnah/go-itmarket/internal/dateutil"
	"github.com/alnah/go-itmarket/internal/frontmatter"
	"github.com/alnah/go-itmarket/internal/pipeline"
	"github.com/alnah/go-itmarket/internal/shortcode"
)

// runNormalize rewrites an article in its canonical form: header in the
// canonical TOML layout, body normalized for the article month, shortcodes
// spelled out.
func runNormalize(args []string, env *Environment) error {
	flags, positional, err := parseNormalizeFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if len(positional) != 1 {
		return fmt.Errorf("%w: normalize takes exactly one article", ErrNoInput)
	}
	input := positional[0]

	source, err := readArticle(input)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(flags.common, env)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	out, err := normalizeArticle(source, flags.month, flags.spacers, cfg.Normalize.Month, env)
	if err != nil {
		return fmt.Errorf("%s: %w", input, err)
	}

	output := valueOr(flags.output, stdoutPath)
	if err := writeOutput(output, []byte(out), env.Stdout); err != nil {
		return err
	}
	if output != stdoutPath && !flags.common.quiet {
		fmt.Fprintf(env.Stdout, "Normalized %s -> %s\n", input, output)
	}
	return nil
}

// normalizeArticle returns the canonical form of source. With spacers the
// paragraphs are joined by spacer shortcodes before normalization, so none
// lands right after a heading.
func normalizeArticle(source, flagMonth string, spacers bool, configMonth string, env *Environment) (string, error) {
	header, body, hasHeader := frontmatter.Split(source)
	var fm frontmatter.Frontmatter
	if hasHeader {
		var err error
		if fm, err = frontmatter.Parse(header); err != nil {
			return "", fmt.Errorf("%w: %v", itmarket.ErrInvalidFrontmatter, err)
		}
	}

	month, err := normalizeMonth(flagMonth, fm, configMonth, env)
	if err != nil {
		return "", err
	}

	if spacers {
		body = pipeline.InsertSpacers(body)
	}
	body = shortcode.Canonicalize(pipeline.NormalizeBody(body, month))

	if !hasHeader {
		return body + "\n", nil
	}
	head, err := frontmatter.Serialize(fm)
	if err != nil {
		return "", err
	}
	return head + "\n\n" + body + "\n", nil
}

// normalizeMonth picks the article month: --month, then the header date,
// then the configured month.
func normalizeMonth(flagMonth string, fm frontmatter.Frontmatter, configMonth string, env *Environment) (string, error) {
	if flagMonth != "" {
		return dateutil.ResolveMonth(flagMonth, env.Now())
	}
	if m := fm.Month(); dataset.ValidMonth(m) {
		return m, nil
	}
	if configMonth != "" {
		return dateutil.ResolveMonth(configMonth, env.Now())
	}
	return "", fmt.Errorf("%w: article has no date, use --month", dateutil.ErrInvalidMonth)
}
