package document

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pagesift/pagesift/ocr"
)

// fakeEngine returns queued results in order and records every input it saw.
type fakeEngine struct {
	queue  []ocr.Result
	err    error
	inputs []ocr.Input
}

func (f *fakeEngine) Name() string { return "fake" }

func (f *fakeEngine) Recognize(_ context.Context, in ocr.Input) (ocr.Result, error) {
	f.inputs = append(f.inputs, in)
	if f.err != nil {
		return ocr.Result{}, f.err
	}
	if len(f.queue) == 0 {
		return ocr.Result{}, nil
	}
	res := f.queue[0]
	f.queue = f.queue[1:]
	return res, nil
}

// fakeRasterizer emits a fixed number of page paths under destDir and records
// the directories it was handed.
type fakeRasterizer struct {
	pages    int
	err      error
	calls    int
	destDirs []string
}

func (f *fakeRasterizer) Rasterize(_ context.Context, _, destDir string) ([]string, error) {
	f.calls++
	f.destDirs = append(f.destDirs, destDir)
	if f.err != nil {
		return nil, f.err
	}
	paths := make([]string, 0, f.pages)
	for i := 1; i <= f.pages; i++ {
		paths = append(paths, filepath.Join(destDir, fmt.Sprintf("page-%d.png", i)))
	}
	return paths, nil
}

func writeFile(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("payload"), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}
	return path
}

func pageResult(texts ...string) ocr.Result {
	dets := make([]ocr.Detection, 0, len(texts))
	for i, text := range texts {
		y := float64(i * 30)
		dets = append(dets, ocr.Detection{
			Quad:       quad(0, y, 100, y+20),
			Text:       text,
			Confidence: 0.9,
		})
	}
	return ocr.Result{Detections: dets}
}

func TestProcessImage(t *testing.T) {
	path := writeFile(t, "scan.png")
	engine := &fakeEngine{queue: []ocr.Result{pageResult("TITLE", "body line")}}
	p := New(engine, &fakeRasterizer{})

	res, err := p.ProcessImage(context.Background(), path)
	if err != nil {
		t.Fatalf("ProcessImage() error = %v", err)
	}
	if res.PageCount != 1 {
		t.Fatalf("page count = %d, want 1", res.PageCount)
	}
	if res.Text != "TITLE\nbody line" {
		t.Fatalf("unexpected text: %q", res.Text)
	}
	if len(res.Blocks) != 2 {
		t.Fatalf("blocks = %d, want 2", len(res.Blocks))
	}
	if res.Blocks[0].Page != 0 {
		t.Fatalf("image blocks must not carry a page stamp, got %d", res.Blocks[0].Page)
	}
	if len(engine.inputs) != 1 || engine.inputs[0].Path != path {
		t.Fatalf("engine saw inputs %+v", engine.inputs)
	}
}

func TestProcessImageEmptyRecognition(t *testing.T) {
	path := writeFile(t, "blank.png")
	p := New(&fakeEngine{queue: []ocr.Result{{}}}, &fakeRasterizer{})

	res, err := p.ProcessImage(context.Background(), path)
	if err != nil {
		t.Fatalf("empty recognition must not fail: %v", err)
	}
	if res.Text != "" || len(res.Blocks) != 0 || res.Markdown != "" {
		t.Fatalf("expected empty result, got %+v", res)
	}
}

func TestProcessPDF(t *testing.T) {
	path := writeFile(t, "doc.pdf")
	engine := &fakeEngine{queue: []ocr.Result{
		pageResult("PAGE ONE HEADING", "first body"),
		pageResult("second page text"),
		pageResult("THIRD"),
	}}
	rast := &fakeRasterizer{pages: 3}
	p := New(engine, rast)

	res, err := p.ProcessPDF(context.Background(), path)
	if err != nil {
		t.Fatalf("ProcessPDF() error = %v", err)
	}
	if res.PageCount != 3 {
		t.Fatalf("page count = %d, want 3", res.PageCount)
	}
	if len(res.Blocks) != 4 {
		t.Fatalf("blocks = %d, want 4", len(res.Blocks))
	}

	last := 0
	for i, b := range res.Blocks {
		if b.Page < 1 || b.Page > 3 {
			t.Fatalf("block %d page %d outside [1,3]", i, b.Page)
		}
		if b.Page < last {
			t.Fatalf("page numbers decreased at block %d", i)
		}
		last = b.Page
	}

	for n := 1; n <= 3; n++ {
		sep := fmt.Sprintf("--- Page %d ---", n)
		if !strings.Contains(res.Text, sep) {
			t.Fatalf("text missing separator %q: %q", sep, res.Text)
		}
	}
	if !strings.HasPrefix(res.Text, "--- Page 1 ---\nPAGE ONE HEADING\nfirst body") {
		t.Fatalf("unexpected text prefix: %q", res.Text)
	}
}

func TestProcessPDFZeroPages(t *testing.T) {
	path := writeFile(t, "empty.pdf")
	engine := &fakeEngine{}
	p := New(engine, &fakeRasterizer{pages: 0})

	res, err := p.ProcessPDF(context.Background(), path)
	if err != nil {
		t.Fatalf("zero-page pdf must not fail: %v", err)
	}
	if res.PageCount != 0 {
		t.Fatalf("page count = %d, want 0", res.PageCount)
	}
	if res.Text != "" || len(res.Blocks) != 0 || res.Markdown != "" {
		t.Fatalf("expected empty result, got %+v", res)
	}
	if len(engine.inputs) != 0 {
		t.Fatalf("engine should not run without pages, saw %d calls", len(engine.inputs))
	}
}

func TestProcessNotFoundBeforeCollaborators(t *testing.T) {
	engine := &fakeEngine{}
	rast := &fakeRasterizer{pages: 1}
	p := New(engine, rast)
	missing := filepath.Join(t.TempDir(), "absent.pdf")

	if _, err := p.ProcessImage(context.Background(), missing); !errors.Is(err, ErrNotFound) {
		t.Fatalf("ProcessImage error = %v, want ErrNotFound", err)
	}
	if _, err := p.ProcessPDF(context.Background(), missing); !errors.Is(err, ErrNotFound) {
		t.Fatalf("ProcessPDF error = %v, want ErrNotFound", err)
	}
	if _, err := p.ProcessStructure(context.Background(), missing); !errors.Is(err, ErrNotFound) {
		t.Fatalf("ProcessStructure error = %v, want ErrNotFound", err)
	}

	if len(engine.inputs) != 0 {
		t.Fatalf("engine called %d times before existence check", len(engine.inputs))
	}
	if rast.calls != 0 {
		t.Fatalf("rasterizer called %d times before existence check", rast.calls)
	}
}

func TestProcessPDFRasterizationFailure(t *testing.T) {
	path := writeFile(t, "broken.pdf")
	engine := &fakeEngine{}
	p := New(engine, &fakeRasterizer{err: errors.New("corrupt xref")})

	_, err := p.ProcessPDF(context.Background(), path)
	if !errors.Is(err, ErrRasterize) {
		t.Fatalf("error = %v, want ErrRasterize", err)
	}
	if len(engine.inputs) != 0 {
		t.Fatalf("engine must not run after rasterization failure")
	}
}

func TestProcessPDFRecognitionFailureAborts(t *testing.T) {
	path := writeFile(t, "doc.pdf")
	engine := &fakeEngine{err: errors.New("engine crashed")}
	p := New(engine, &fakeRasterizer{pages: 2})

	res, err := p.ProcessPDF(context.Background(), path)
	if !errors.Is(err, ErrRecognize) {
		t.Fatalf("error = %v, want ErrRecognize", err)
	}
	if res != nil {
		t.Fatalf("no partial result allowed, got %+v", res)
	}
	if len(engine.inputs) != 1 {
		t.Fatalf("processing must stop at the first failure, saw %d calls", len(engine.inputs))
	}
}

func TestProcessPDFCleansScratchDir(t *testing.T) {
	path := writeFile(t, "doc.pdf")
	rast := &fakeRasterizer{pages: 1}
	p := New(&fakeEngine{queue: []ocr.Result{pageResult("x")}}, rast)

	if _, err := p.ProcessPDF(context.Background(), path); err != nil {
		t.Fatalf("ProcessPDF() error = %v", err)
	}
	if len(rast.destDirs) != 1 {
		t.Fatalf("expected one scratch dir, got %d", len(rast.destDirs))
	}
	if _, err := os.Stat(rast.destDirs[0]); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("scratch dir not removed: %v", err)
	}
}

func TestProcessPDFCleansScratchDirOnFailure(t *testing.T) {
	path := writeFile(t, "doc.pdf")
	rast := &fakeRasterizer{pages: 1}
	p := New(&fakeEngine{err: errors.New("boom")}, rast)

	if _, err := p.ProcessPDF(context.Background(), path); err == nil {
		t.Fatalf("expected recognition failure")
	}
	if _, err := os.Stat(rast.destDirs[0]); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("scratch dir not removed after failure: %v", err)
	}
}

func TestProcessStructurePDF(t *testing.T) {
	path := writeFile(t, "report.PDF")
	engine := &fakeEngine{queue: []ocr.Result{
		pageResult("1. Overview", "The year went well."),
		pageResult("APPENDIX"),
	}}
	p := New(engine, &fakeRasterizer{pages: 2})

	res, err := p.ProcessStructure(context.Background(), path)
	if err != nil {
		t.Fatalf("ProcessStructure() error = %v", err)
	}
	if len(res.Blocks) != 3 {
		t.Fatalf("blocks = %d, want 3", len(res.Blocks))
	}
	if res.Blocks[0].Type != BlockTitle || res.Blocks[0].Page != 1 {
		t.Fatalf("unexpected first block: %+v", res.Blocks[0])
	}
	if res.Blocks[1].Type != BlockText || res.Blocks[1].Page != 1 {
		t.Fatalf("unexpected second block: %+v", res.Blocks[1])
	}
	if res.Blocks[2].Type != BlockTitle || res.Blocks[2].Page != 2 {
		t.Fatalf("unexpected third block: %+v", res.Blocks[2])
	}
	if res.Markdown != "## 1. Overview\n\nThe year went well.\n\n## APPENDIX" {
		t.Fatalf("unexpected markdown: %q", res.Markdown)
	}
	if res.Tables == nil || len(res.Tables) != 0 {
		t.Fatalf("expected empty table set, got %+v", res.Tables)
	}
}

func TestProcessStructureImage(t *testing.T) {
	path := writeFile(t, "poster.png")
	engine := &fakeEngine{queue: []ocr.Result{pageResult("SALE", "everything must go")}}
	rast := &fakeRasterizer{pages: 5}
	p := New(engine, rast)

	res, err := p.ProcessStructure(context.Background(), path)
	if err != nil {
		t.Fatalf("ProcessStructure() error = %v", err)
	}
	if rast.calls != 0 {
		t.Fatalf("image input must bypass the rasterizer")
	}
	if len(res.Blocks) != 2 {
		t.Fatalf("blocks = %d, want 2", len(res.Blocks))
	}
	if res.Blocks[0].Page != 0 {
		t.Fatalf("image blocks must not carry a page stamp, got %d", res.Blocks[0].Page)
	}
	if res.Markdown != "## SALE\n\neverything must go" {
		t.Fatalf("unexpected markdown: %q", res.Markdown)
	}
}

func TestProcessorRecordsElapsedTime(t *testing.T) {
	path := writeFile(t, "scan.png")
	p := New(&fakeEngine{queue: []ocr.Result{pageResult("x")}}, &fakeRasterizer{})

	res, err := p.ProcessImage(context.Background(), path)
	if err != nil {
		t.Fatalf("ProcessImage() error = %v", err)
	}
	if res.ProcessingTime < 0 {
		t.Fatalf("negative processing time: %v", res.ProcessingTime)
	}
	if got := res.ProcessingTime.String(); !strings.HasSuffix(got, "s") {
		t.Fatalf("processing time format: %q", got)
	}
}

func TestProcessorAppliesInputOptions(t *testing.T) {
	path := writeFile(t, "scan.png")
	engine := &fakeEngine{queue: []ocr.Result{{}}}
	p := New(engine, &fakeRasterizer{}, WithInputOptions(ocr.WithLanguages("kor"), ocr.WithDPI(300)))

	if _, err := p.ProcessImage(context.Background(), path); err != nil {
		t.Fatalf("ProcessImage() error = %v", err)
	}
	in := engine.inputs[0]
	if len(in.Languages) != 1 || in.Languages[0] != "kor" || in.DPI != 300 {
		t.Fatalf("input options not applied: %+v", in)
	}
}
