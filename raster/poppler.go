package raster

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// DefaultDPI is the rasterization resolution used when none is configured.
// 200 DPI keeps page images small enough for fast recognition while staying
// above Tesseract's accuracy floor.
const DefaultDPI = 200

// ErrPopplerNotFound is returned when the pdftoppm binary is not installed.
var ErrPopplerNotFound = errors.New("pdftoppm not found in PATH")

// InstallInstructions returns platform hints for installing poppler.
func InstallInstructions() string {
	return "pdftoppm is part of poppler: `brew install poppler` (macOS) or `apt install poppler-utils` (Debian/Ubuntu)"
}

// Poppler rasterizes PDFs by shelling out to pdftoppm. The zero value is not
// usable; construct with NewPoppler.
type Poppler struct {
	binary string
	dpi    int
	runner CommandRunner
}

// PopplerOption configures a Poppler rasterizer.
type PopplerOption func(*Poppler)

// WithBinary overrides the pdftoppm binary path.
func WithBinary(path string) PopplerOption {
	return func(p *Poppler) { p.binary = path }
}

// WithDPI sets the rasterization resolution.
func WithDPI(dpi int) PopplerOption {
	return func(p *Poppler) {
		if dpi > 0 {
			p.dpi = dpi
		}
	}
}

// WithRunner substitutes the process runner. Used by tests.
func WithRunner(r CommandRunner) PopplerOption {
	return func(p *Poppler) { p.runner = r }
}

// NewPoppler constructs a pdftoppm-backed rasterizer.
func NewPoppler(opts ...PopplerOption) *Poppler {
	p := &Poppler{
		binary: "pdftoppm",
		dpi:    DefaultDPI,
		runner: execRunner{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Rasterize renders every page of the PDF at pdfPath into PNG files under
// destDir and returns their paths in page order. A failure is fatal for the
// whole document: no partial page list is returned.
func (p *Poppler) Rasterize(ctx context.Context, pdfPath, destDir string) ([]string, error) {
	if _, err := exec.LookPath(p.binary); err != nil {
		return nil, fmt.Errorf("%w (%s)", ErrPopplerNotFound, InstallInstructions())
	}

	prefix := filepath.Join(destDir, "page")
	args := []string{"-png", "-r", strconv.Itoa(p.dpi), pdfPath, prefix}
	if out, err := p.runner.Run(ctx, p.binary, args...); err != nil {
		return nil, fmt.Errorf("pdftoppm %s: %w: %s", pdfPath, err, strings.TrimSpace(string(out)))
	}

	pages, err := collectPages(destDir)
	if err != nil {
		return nil, fmt.Errorf("collect rasterized pages: %w", err)
	}
	return pages, nil
}

// collectPages lists the page-*.png files pdftoppm produced and orders them
// by the numeric page index embedded in the filename. Lexicographic order is
// not enough: pdftoppm only zero-pads indexes within one run's width.
func collectPages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	type page struct {
		index int
		path  string
	}
	var pages []page
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, "page-") || !strings.HasSuffix(name, ".png") {
			continue
		}
		idx, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(name, "page-"), ".png"))
		if err != nil {
			continue
		}
		pages = append(pages, page{index: idx, path: filepath.Join(dir, name)})
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].index < pages[j].index })

	paths := make([]string, 0, len(pages))
	for _, pg := range pages {
		paths = append(paths, pg.path)
	}
	return paths, nil
}
