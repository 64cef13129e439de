// Package raster converts PDF documents into ordered page images for the
// recognition engine, which operates on raster input only. The Rasterizer
// port keeps the conversion backend swappable and testable.
package raster

import (
	"context"
	"os/exec"
)

// Rasterizer renders a PDF into one image per page. The returned paths are
// ordered by page: index 0 is page 1. An empty slice with a nil error means
// the document produced no pages.
type Rasterizer interface {
	Rasterize(ctx context.Context, pdfPath, destDir string) ([]string, error)
}

// CommandRunner abstracts external process execution so rasterizer tests can
// substitute deterministic doubles.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}
