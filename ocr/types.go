package ocr

import "context"

// Point is a 2D pixel coordinate with the origin in the upper-left corner of
// the image.
type Point struct {
	X float64
	Y float64
}

// Quad is the four corner points of a detected text region in emission order.
// The region may be rotated, so the quad is not necessarily axis-aligned.
type Quad [4]Point

// Detection is a single localized text region recognized in an image.
type Detection struct {
	// Quad locates the region in the source image.
	Quad Quad
	// Text is the recognized content of the region.
	Text string
	// Confidence is the engine's recognition confidence in [0, 1].
	Confidence float64
}

// Input encapsulates a single image submitted for recognition.
type Input struct {
	// Path is the filesystem location of the encoded image.
	Path string
	// Languages is a list of language hints (e.g., "eng", "kor") that
	// providers can use to select trained data.
	Languages []string
	// DPI carries the effective dots-per-inch for the image. Providers such as
	// Tesseract use this for scaling and layout heuristics; zero means unknown.
	DPI int
	// Metadata allows callers to pass through engine-specific knobs (e.g.,
	// "tessedit_pageseg_mode" for Tesseract) without hard-coding them into the
	// API surface.
	Metadata map[string]string
}

// Result captures the raw engine output for a single input image. An empty
// detection list means the engine found no text; that is not an error.
type Result struct {
	Detections []Detection
}

// Engine is the OCR provider contract: one image in, one raw result out.
// Implementations must be safe for concurrent use; the pipeline shares a
// single long-lived engine handle across processing calls.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, input Input) (Result, error)
}
