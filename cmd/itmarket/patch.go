package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/alnah/go-itmarket/internal/config"
	"github.com/alnah/go-itmarket/internal/dataset"
	"github.com/alnah/go-itmarket/internal/dateutil"
)

// countsFile is one aggregate series in a figures file.
type countsFile struct {
	Unemployed int `yaml:"unemployed"`
	Seeking    int `yaml:"seeking"`
}

// nationalFile holds nationwide figures.
type nationalFile struct {
	Unemployed int `yaml:"unemployed"`
	Seeking    int `yaml:"seeking"`
	Jobs       int `yaml:"jobs"`
}

// figuresFile is the YAML form of one month's published figures.
type figuresFile struct {
	Month    string     `yaml:"month"`
	Label    string     `yaml:"label"` // Default "Oktober 2025"
	IT       countsFile `yaml:"it"`
	Infra    countsFile `yaml:"infra"`
	Software countsFile `yaml:"software"`
	Jobs     struct {
		IT       int `yaml:"it"`
		Infra    int `yaml:"infra"`
		Software int `yaml:"software"`
	} `yaml:"jobs"`
	Germany   nationalFile  `yaml:"germany"`
	PriorYear *nationalFile `yaml:"priorYear"` // Optional nationwide figures one year earlier
}

// readFigures decodes a figures file strictly.
func readFigures(path string) (*figuresFile, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is user-provided
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadFigures, err)
	}
	var f figuresFile
	if err := yaml.UnmarshalWithOptions(data, &f, yaml.Strict()); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrParseFigures, path, err)
	}
	return &f, nil
}

// monthPatch turns f into a dataset holding the month's entries, plus the
// prior-year nationwide entry when given.
func monthPatch(f *figuresFile, month string) (dataset.Dataset, error) {
	label := f.Label
	if label == "" {
		var err error
		if label, err = dateutil.MonthYear(month); err != nil {
			return dataset.Dataset{}, err
		}
	}

	figures := dataset.MonthFigures{
		Month:        month,
		Label:        label,
		IT:           dataset.Counts(f.IT),
		Infra:        dataset.Counts(f.Infra),
		Software:     dataset.Counts(f.Software),
		ITJobs:       f.Jobs.IT,
		InfraJobs:    f.Jobs.Infra,
		SoftwareJobs: f.Jobs.Software,
		Germany:      dataset.NationalCounts(f.Germany),
	}

	patch := figures.Patch()
	if f.PriorYear != nil {
		patch.Germany = append(patch.Germany,
			dataset.PriorYearReference(month, dataset.NationalCounts(*f.PriorYear)))
	}
	if err := patch.Validate(); err != nil {
		return dataset.Dataset{}, err
	}
	return patch, nil
}

// runPatch turns a figures file into a dataset snippet, or merges it into
// the dataset file with --apply.
func runPatch(args []string, env *Environment) error {
	flags, positional, err := parsePatchFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if len(positional) != 1 {
		return fmt.Errorf("%w: patch takes exactly one figures file", ErrNoInput)
	}

	figures, err := readFigures(positional[0])
	if err != nil {
		return err
	}

	month := figures.Month
	if flags.month != "" {
		month = flags.month
	}
	if month, err = dateutil.ResolveMonth(month, env.Now()); err != nil {
		return err
	}

	patch, err := monthPatch(figures, month)
	if err != nil {
		return err
	}

	if flags.apply {
		cfg, err := loadConfig(flags.common, env)
		if err != nil {
			return err
		}
		applyDataFlags(flags.data, flags.set, cfg)
		return applyPatch(cfg, patch, flags.common, env)
	}

	snippet, err := dataset.Serialize(patch)
	if err != nil {
		return err
	}
	output := valueOr(flags.output, stdoutPath)
	if err := writeOutput(output, []byte(snippet), env.Stdout); err != nil {
		return err
	}
	if output != stdoutPath && !flags.common.quiet {
		fmt.Fprintf(env.Stdout, "Created %s\n", output)
	}
	return nil
}

// applyPatch upserts patch into the configured dataset file.
func applyPatch(cfg *config.Config, patch dataset.Dataset, common commonFlags, env *Environment) error {
	ds, err := dataset.Load(cfg.Dataset.Path)
	if err != nil {
		return err
	}
	if keys := unknownDatasetKeys(cfg.Dataset.Path); len(keys) > 0 {
		newLogger(env.Stderr, common).Warn("unknown dataset keys are dropped on rewrite",
			slog.String("path", cfg.Dataset.Path),
			slog.String("keys", strings.Join(keys, ", ")))
	}
	merged := ds.Merge(patch)
	if err := merged.Validate(); err != nil {
		return err
	}
	if err := dataset.Save(cfg.Dataset.Path, merged); err != nil {
		return err
	}
	if !common.quiet {
		fmt.Fprintf(env.Stdout, "Updated %s\n", cfg.Dataset.Path)
	}
	return nil
}
