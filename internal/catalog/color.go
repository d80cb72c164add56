package catalog

import (
	"fmt"
	"image/color"
	"slices"
	"strconv"
	"strings"
)

// ParseHex accepts "#rgb", "#rrggbb" and the same forms without '#'.
func ParseHex(hex string) (color.RGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid hex color %q", hex)
	}
	n, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid hex color %q: %w", hex, err)
	}
	return color.RGBA{R: uint8(n >> 16), G: uint8(n >> 8), B: uint8(n), A: 0xff}, nil
}

// Brightness is the perceived luminance, 0 (black) to 255 (white).
func Brightness(hex string) (float64, error) {
	c, err := ParseHex(hex)
	if err != nil {
		return 0, err
	}
	return 0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B), nil
}

// IsLight reports whether dark text reads better on the color. Unparseable
// colors count as dark.
func IsLight(hex string) bool {
	b, err := Brightness(hex)
	return err == nil && b > 128
}

// SortByBrightness returns the swatches ordered dark to light; ties keep catalog order.
func SortByBrightness[D ~string](swatches []Swatch[D]) []Swatch[D] {
	out := slices.Clone(swatches)
	slices.SortStableFunc(out, func(a, b Swatch[D]) int {
		ba, _ := Brightness(a.Hex)
		bb, _ := Brightness(b.Hex)
		switch {
		case ba < bb:
			return -1
		case ba > bb:
			return 1
		}
		return 0
	})
	return out
}
