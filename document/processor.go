// Package document implements the OCR document-processing pipeline: it drives
// the recognition engine and rasterizer over single images or multi-page
// PDFs, normalizes raw detections into uniform text blocks, derives a coarse
// structural classification, and renders markdown from the result.
package document

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pagesift/pagesift/observability"
	"github.com/pagesift/pagesift/ocr"
	"github.com/pagesift/pagesift/raster"
)

// Processor orchestrates recognition across one or many pages. Construct it
// once at startup and share it: the processor holds no per-call state, so a
// single instance is safe for concurrent use as long as the injected engine
// honors its own concurrency contract.
type Processor struct {
	engine     ocr.Engine
	rasterizer raster.Rasterizer
	log        observability.Logger
	inputOpts  []ocr.InputOption
	tempDir    string
}

// Option configures a Processor.
type Option func(*Processor)

// WithLogger attaches a logger for per-call progress and timing.
func WithLogger(log observability.Logger) Option {
	return func(p *Processor) {
		if log != nil {
			p.log = log
		}
	}
}

// WithInputOptions sets recognition options applied to every engine call
// (language hints, DPI, engine-specific variables).
func WithInputOptions(opts ...ocr.InputOption) Option {
	return func(p *Processor) { p.inputOpts = opts }
}

// WithTempDir sets the parent directory for per-call rasterization scratch
// space. Empty means the system default.
func WithTempDir(dir string) Option {
	return func(p *Processor) { p.tempDir = dir }
}

// New constructs a Processor. A nil engine falls back to the package default
// (Tesseract when the tesseract subpackage is imported); a nil rasterizer
// falls back to the pdftoppm-backed one.
func New(engine ocr.Engine, rasterizer raster.Rasterizer, opts ...Option) *Processor {
	p := &Processor{
		engine:     engine,
		rasterizer: rasterizer,
		log:        observability.NopLogger{},
	}
	if p.engine == nil {
		p.engine = ocr.DefaultEngine()
	}
	if p.rasterizer == nil {
		p.rasterizer = raster.NewPoppler()
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ProcessImage recognizes a single image as a one-page document.
func (p *Processor) ProcessImage(ctx context.Context, path string) (*DocumentResult, error) {
	start := time.Now()
	if err := ensureExists(path); err != nil {
		return nil, err
	}

	region, err := p.recognizePage(ctx, path)
	if err != nil {
		return nil, err
	}

	result := &DocumentResult{
		Text:           region.Text,
		Blocks:         region.Blocks,
		Markdown:       region.Markdown,
		PageCount:      1,
		ProcessingTime: Elapsed(time.Since(start)),
	}
	p.log.Info("processed image",
		observability.String("path", path),
		observability.Int("blocks", len(result.Blocks)),
		observability.Duration("elapsed", time.Since(start)))
	return result, nil
}

// ProcessPDF rasterizes the PDF and recognizes every page in order. Each
// block is stamped with its 1-based page number, page texts are joined with
// "--- Page N ---" separators, and blocks aggregate in page order then
// within-page emission order. A PDF that rasterizes to zero pages yields
// PageCount 0 with empty text and blocks, not an error.
func (p *Processor) ProcessPDF(ctx context.Context, path string) (*DocumentResult, error) {
	start := time.Now()
	if err := ensureExists(path); err != nil {
		return nil, err
	}

	pages, cleanup, err := p.rasterize(ctx, path)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	var (
		blocks []TextBlock
		texts  []string
	)
	for i, pagePath := range pages {
		pageNum := i + 1
		region, err := p.recognizePDFPage(ctx, path, pagePath, pageNum)
		if err != nil {
			return nil, err
		}
		for j := range region.Blocks {
			region.Blocks[j].Page = pageNum
		}
		blocks = append(blocks, region.Blocks...)
		texts = append(texts, fmt.Sprintf("--- Page %d ---\n%s", pageNum, region.Text))
	}

	result := &DocumentResult{
		Text:           strings.Join(texts, "\n\n"),
		Blocks:         blocks,
		Markdown:       renderFlat(texts),
		PageCount:      len(pages),
		ProcessingTime: Elapsed(time.Since(start)),
	}
	p.log.Info("processed pdf",
		observability.String("path", path),
		observability.Int("pages", result.PageCount),
		observability.Int("blocks", len(result.Blocks)),
		observability.Duration("elapsed", time.Since(start)))
	return result, nil
}

// ProcessStructure runs the same per-page recognition as ProcessImage or
// ProcessPDF (dispatching on the file extension), classifies every block
// before aggregation, and renders structured markdown instead of flat.
func (p *Processor) ProcessStructure(ctx context.Context, path string) (*StructureResult, error) {
	start := time.Now()
	if err := ensureExists(path); err != nil {
		return nil, err
	}

	var blocks []StructureBlock
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		pages, cleanup, err := p.rasterize(ctx, path)
		if err != nil {
			return nil, err
		}
		defer cleanup()

		for i, pagePath := range pages {
			pageNum := i + 1
			region, err := p.recognizePDFPage(ctx, path, pagePath, pageNum)
			if err != nil {
				return nil, err
			}
			pageBlocks := classifyBlocks(region.Blocks)
			for j := range pageBlocks {
				pageBlocks[j].Page = pageNum
			}
			blocks = append(blocks, pageBlocks...)
		}
	} else {
		region, err := p.recognizePage(ctx, path)
		if err != nil {
			return nil, err
		}
		blocks = classifyBlocks(region.Blocks)
	}

	result := &StructureResult{
		Blocks:         blocks,
		Markdown:       renderStructure(blocks),
		Tables:         ExtractTables(blocks),
		ProcessingTime: Elapsed(time.Since(start)),
	}
	p.log.Info("processed structure",
		observability.String("path", path),
		observability.Int("blocks", len(result.Blocks)),
		observability.Duration("elapsed", time.Since(start)))
	return result, nil
}

// rasterize renders the PDF into a scratch directory scoped to this call.
// The cleanup func removes the directory and must run on every exit path.
func (p *Processor) rasterize(ctx context.Context, path string) ([]string, func(), error) {
	tmpDir, err := os.MkdirTemp(p.tempDir, "pagesift-raster-*")
	if err != nil {
		return nil, nil, fmt.Errorf("create scratch dir: %w", err)
	}
	cleanup := func() { os.RemoveAll(tmpDir) }

	pages, err := p.rasterizer.Rasterize(ctx, path, tmpDir)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("%w: %s: %w", ErrRasterize, path, err)
	}
	return pages, cleanup, nil
}

func (p *Processor) recognizePage(ctx context.Context, path string) (RegionResult, error) {
	res, err := p.engine.Recognize(ctx, ocr.NewInput(path, p.inputOpts...))
	if err != nil {
		return RegionResult{}, fmt.Errorf("%w: %s: %w", ErrRecognize, path, err)
	}
	return normalizeResult(res), nil
}

func (p *Processor) recognizePDFPage(ctx context.Context, docPath, pagePath string, pageNum int) (RegionResult, error) {
	res, err := p.engine.Recognize(ctx, ocr.NewInput(pagePath, p.inputOpts...))
	if err != nil {
		return RegionResult{}, fmt.Errorf("%w: %s page %d: %w", ErrRecognize, docPath, pageNum, err)
	}
	return normalizeResult(res), nil
}

func ensureExists(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return fmt.Errorf("stat %s: %w", path, err)
	}
	return nil
}
