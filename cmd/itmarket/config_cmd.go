package main

import (
	"github.com/alnah/go-itmarket/internal/config"
)

// runConfig prints the effective configuration as YAML: defaults, config
// file and environment, with --dataset and --patch applied.
func runConfig(args []string, env *Environment) error {
	flags, err := parseConfigFlags(args, env.Stderr)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(flags.common, env)
	if err != nil {
		return err
	}
	applyDataFlags(flags.data, flags.set, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	out, err := config.Marshal(cfg)
	if err != nil {
		return err
	}
	_, err = env.Stdout.Write(out)
	return err
}
