package swatch

import (
	"bytes"
	"fmt"
	"image/png"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/loganlanou/merch-storefront/internal/catalog"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	MinSize     = 32
	MaxSize     = 512
	DefaultSize = 96

	maxLabelRunes = 18
)

var (
	fontOnce sync.Once
	goFont   *truetype.Font
	fontErr  error
)

func regularFont() (*truetype.Font, error) {
	fontOnce.Do(func() {
		goFont, fontErr = truetype.Parse(goregular.TTF)
	})
	return goFont, fontErr
}

// Render draws a color dot with its label underneath and returns a PNG.
// Light colors get a grey outline so they stay visible on white pages.
func Render(hex, label string, size int) ([]byte, error) {
	fill, err := catalog.ParseHex(hex)
	if err != nil {
		return nil, err
	}
	size = clampSize(size)

	labelHeight := 0.0
	if label != "" {
		labelHeight = float64(size) * 0.3
	}
	width := float64(size)
	height := width + labelHeight

	dc := gg.NewContext(size, int(height))
	dc.SetRGBA(0, 0, 0, 0)
	dc.Clear()

	radius := width/2 - 2
	dc.DrawCircle(width/2, width/2, radius)
	dc.SetColor(fill)
	dc.FillPreserve()
	if catalog.IsLight(hex) {
		dc.SetRGB255(0xcc, 0xcc, 0xcc)
		dc.SetLineWidth(2)
		dc.Stroke()
	} else {
		dc.ClearPath()
	}

	if label != "" {
		f, err := regularFont()
		if err != nil {
			return nil, fmt.Errorf("parse font: %w", err)
		}
		face := truetype.NewFace(f, &truetype.Options{Size: labelHeight * 0.6})
		dc.SetFontFace(face)
		dc.SetRGB255(0x33, 0x33, 0x33)
		dc.DrawStringAnchored(truncateLabel(label), width/2, width+labelHeight/2, 0.5, 0.5)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, dc.Image()); err != nil {
		return nil, fmt.Errorf("encode swatch: %w", err)
	}
	return buf.Bytes(), nil
}

func clampSize(size int) int {
	switch {
	case size <= 0:
		return DefaultSize
	case size < MinSize:
		return MinSize
	case size > MaxSize:
		return MaxSize
	}
	return size
}

func truncateLabel(label string) string {
	runes := []rune(label)
	if len(runes) <= maxLabelRunes {
		return label
	}
	return string(runes[:maxLabelRunes-1]) + "…"
}
