package ocr

import "context"

var defaultEngine Engine = &noopEngine{}

// DefaultEngine returns the package's default OCR engine. Importing the
// tesseract subpackage replaces the no-op default with a Tesseract-backed one.
func DefaultEngine() Engine {
	return defaultEngine
}

// SetDefaultEngine sets the package's default OCR engine.
func SetDefaultEngine(engine Engine) {
	defaultEngine = engine
}

type noopEngine struct{}

func (n noopEngine) Name() string {
	return "noop"
}

func (n noopEngine) Recognize(ctx context.Context, input Input) (Result, error) {
	return Result{}, nil
}
