package main

import (
	"io"
	"os"
	"time"

	"github.com/alnah/go-itmarket/internal/assets"
	"github.com/alnah/go-itmarket/internal/config"
	"github.com/alnah/go-itmarket/internal/printer"
)

// Environment holds injectable dependencies for testability.
// Includes I/O, time, configuration, asset loading and the browser.
type Environment struct {
	Now         func() time.Time
	Stdout      io.Writer
	Stderr      io.Writer
	AssetLoader assets.AssetLoader
	Config      *config.Config // Used when no --config is given

	// NewPool builds the printer pool for pdf, png and the server's print
	// routes.
	NewPool func(size int, timeout time.Duration) *printer.Pool
}

// DefaultEnv returns production environment with embedded assets.
func DefaultEnv() *Environment {
	return &Environment{
		Now:         time.Now,
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
		AssetLoader: assets.NewEmbeddedLoader(),
		Config:      config.DefaultConfig(),
		NewPool:     printer.NewPool,
	}
}
