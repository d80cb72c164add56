package catalog

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHex(t *testing.T) {
	tests := []struct {
		in      string
		want    color.RGBA
		wantErr bool
	}{
		{"#ffffff", color.RGBA{255, 255, 255, 255}, false},
		{"131928", color.RGBA{0x13, 0x19, 0x28, 255}, false},
		{"#3E3C3D", color.RGBA{0x3e, 0x3c, 0x3d, 255}, false},
		{"#fff", color.RGBA{255, 255, 255, 255}, false},
		{"#12345", color.RGBA{}, true},
		{"#zzzzzz", color.RGBA{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseHex(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsLight(t *testing.T) {
	assert.True(t, IsLight("#ffffff"))
	assert.True(t, IsLight("#f3d4e3"))
	assert.False(t, IsLight("#0b0b0b"))
	assert.False(t, IsLight("#da0a1a"))
	assert.False(t, IsLight("not-a-color"))

	b, err := Brightness("#000")
	require.NoError(t, err)
	assert.Zero(t, b)
}

func TestSortByBrightnessIsStable(t *testing.T) {
	in := []Swatch[Style]{
		{Name: "White", Hex: "#ffffff"},
		{Name: "Black", Hex: "#000000"},
		{Name: "Snow", Hex: "#fff"},
		{Name: "Navy", Hex: "#1c2330"},
	}
	out := SortByBrightness(in)

	names := make([]string, len(out))
	for i, s := range out {
		names[i] = s.Name
	}
	assert.Equal(t, []string{"Black", "Navy", "White", "Snow"}, names)
	assert.Equal(t, "White", in[0].Name)
}
