package pdfgen

import (
	"context"
)

// HTMLRenderer turns a complete HTML document into PDF bytes
type HTMLRenderer interface {
	RenderHTML(ctx context.Context, html string, opts PrintOptions) ([]byte, error)
}

// PrintOptions controls page geometry. Margins are in millimetres.
type PrintOptions struct {
	PaperWidthMM   float64
	PaperHeightMM  float64
	MarginTopMM    float64
	MarginRightMM  float64
	MarginBottomMM float64
	MarginLeftMM   float64
	Landscape      bool

	// MediaType is emulated before printing, "screen" or "print"
	MediaType string
}

const (
	a4WidthMM  = 210.0
	a4HeightMM = 297.0
)

// A4 returns portrait A4 options with the given margins and screen media
func A4(top, right, bottom, left float64) PrintOptions {
	return PrintOptions{
		PaperWidthMM:   a4WidthMM,
		PaperHeightMM:  a4HeightMM,
		MarginTopMM:    top,
		MarginRightMM:  right,
		MarginBottomMM: bottom,
		MarginLeftMM:   left,
		MediaType:      "screen",
	}
}
