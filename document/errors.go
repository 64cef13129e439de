package document

import "errors"

// Error kinds surfaced by the processor. Match with errors.Is; each wrapped
// error also carries the underlying collaborator failure and path context.
var (
	// ErrNotFound reports that the input path does not exist. It is raised
	// before any engine or rasterizer call.
	ErrNotFound = errors.New("input file not found")

	// ErrRasterize reports that the PDF could not be converted to page
	// images. The failure is fatal for the whole document; no partial pages
	// are produced.
	ErrRasterize = errors.New("pdf rasterization failed")

	// ErrRecognize reports that the OCR engine failed for a page or image.
	// The whole processing call fails; there is no partial-document result.
	ErrRecognize = errors.New("recognition failed")
)
