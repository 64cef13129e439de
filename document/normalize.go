package document

import (
	"math"
	"strings"

	"github.com/pagesift/pagesift/ocr"
)

// normalizeResult converts one raw engine result into uniform text blocks in
// emission order. The bounding box of each block is the axis-aligned hull of
// the detection quad; rotation is discarded deliberately, and downstream
// consumers depend on that exact reduction. An empty result is not an error:
// it normalizes to empty text, no blocks, and empty markdown.
func normalizeResult(res ocr.Result) RegionResult {
	var (
		blocks []TextBlock
		texts  []string
	)
	for _, det := range res.Detections {
		blocks = append(blocks, TextBlock{
			Text:       det.Text,
			Confidence: roundConfidence(det.Confidence),
			BBox:       quadHull(det.Quad),
		})
		texts = append(texts, det.Text)
	}
	return RegionResult{
		Text:     strings.Join(texts, "\n"),
		Blocks:   blocks,
		Markdown: renderFlat(texts),
	}
}

// quadHull reduces a (possibly rotated) quadrilateral to the axis-aligned box
// [min x, min y, max x, max y] over its four corners.
func quadHull(q ocr.Quad) BBox {
	minX, minY := q[0].X, q[0].Y
	maxX, maxY := q[0].X, q[0].Y
	for _, pt := range q[1:] {
		minX = math.Min(minX, pt.X)
		minY = math.Min(minY, pt.Y)
		maxX = math.Max(maxX, pt.X)
		maxY = math.Max(maxY, pt.Y)
	}
	return BBox{minX, minY, maxX, maxY}
}

// roundConfidence rounds to 4 decimal places.
func roundConfidence(c float64) float64 {
	return math.Round(c*1e4) / 1e4
}
