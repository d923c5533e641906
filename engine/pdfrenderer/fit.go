package pdfrenderer

import (
	"fmt"
	"math"
)

// FitWithin returns the pixel size for a page of pageWidth x pageHeight points.
// The width is set to the target and the height follows the aspect ratio; when
// the height would exceed MaxHeight both sides are scaled down to fit.
func FitWithin(pageWidth, pageHeight float64, config RenderConfig) (int, int, error) {
	if pageWidth <= 0 || pageHeight <= 0 {
		return 0, 0, fmt.Errorf("invalid page size %gx%g", pageWidth, pageHeight)
	}
	if config.TargetWidth <= 0 {
		return 0, 0, fmt.Errorf("invalid target width %d", config.TargetWidth)
	}

	width := config.TargetWidth
	height := scale(pageHeight, pageWidth, width)
	if config.MaxHeight > 0 && height > config.MaxHeight {
		height = config.MaxHeight
		width = scale(pageWidth, pageHeight, height)
	}
	return width, height, nil
}

// scale returns numerator/denominator * length rounded, never below one pixel
func scale(numerator, denominator float64, length int) int {
	scaled := int(math.Round(numerator / denominator * float64(length)))
	if scaled < 1 {
		return 1
	}
	return scaled
}
