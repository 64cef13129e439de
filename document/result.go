package document

import (
	"fmt"
	"time"
)

// BBox is an axis-aligned bounding box [x1, y1, x2, y2] in image pixel
// coordinates, with x1 <= x2 and y1 <= y2. It serializes as a bare JSON array
// for compatibility with existing API consumers.
type BBox [4]float64

// NewBBox builds a bounding box, normalizing corner order.
func NewBBox(x1, y1, x2, y2 float64) BBox {
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	if y1 > y2 {
		y1, y2 = y2, y1
	}
	return BBox{x1, y1, x2, y2}
}

// Width returns the horizontal extent of the box.
func (b BBox) Width() float64 { return b[2] - b[0] }

// Height returns the vertical extent of the box.
func (b BBox) Height() float64 { return b[3] - b[1] }

// TextBlock is one recognized unit of text with its geometry. Page is the
// 1-based page number for blocks produced from a PDF; zero (omitted in JSON)
// for single-image input. Blocks are immutable once created.
type TextBlock struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	BBox       BBox    `json:"bbox"`
	Page       int     `json:"page,omitempty"`
}

// BlockType is the coarse structural label assigned by the classifier.
type BlockType string

const (
	BlockTitle BlockType = "title"
	BlockText  BlockType = "text"
)

// StructureBlock is a TextBlock with a structural label and trimmed content.
type StructureBlock struct {
	Type       BlockType `json:"type"`
	Content    string    `json:"content"`
	BBox       BBox      `json:"bbox"`
	Confidence float64   `json:"confidence"`
	Page       int       `json:"page,omitempty"`
}

// Table is a placeholder for structural table detection. The extractor
// currently never produces one; the type pins the extension point's shape.
type Table struct {
	Page int        `json:"page,omitempty"`
	BBox BBox       `json:"bbox"`
	Rows [][]string `json:"rows"`
}

// Elapsed is a wall-clock duration that serializes in the "1.23s" form the
// API has always used for processing_time.
type Elapsed time.Duration

func (e Elapsed) String() string {
	return fmt.Sprintf("%.2fs", time.Duration(e).Seconds())
}

// MarshalJSON renders the duration as a quoted seconds string.
func (e Elapsed) MarshalJSON() ([]byte, error) {
	return []byte(`"` + e.String() + `"`), nil
}

// RegionResult is the normalized output for one raster image: joined text,
// uniform blocks in emission order, and a flat markdown rendering.
type RegionResult struct {
	Text     string      `json:"text"`
	Blocks   []TextBlock `json:"blocks"`
	Markdown string      `json:"markdown"`
}

// DocumentResult aggregates recognition output for a whole document.
type DocumentResult struct {
	Text           string      `json:"text"`
	Blocks         []TextBlock `json:"blocks"`
	Markdown       string      `json:"markdown"`
	PageCount      int         `json:"page_count"`
	ProcessingTime Elapsed     `json:"processing_time"`
}

// StructureResult carries classified blocks, the structured markdown
// rendering, and any detected tables.
type StructureResult struct {
	Blocks         []StructureBlock `json:"blocks"`
	Markdown       string           `json:"markdown"`
	Tables         []Table          `json:"tables"`
	ProcessingTime Elapsed          `json:"processing_time"`
}
