package tmxcolor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHex(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Color
		wantErr bool
	}{
		{"six digits", "#ffdca8", Color{1, 220.0 / 255, 168.0 / 255, 1}, false},
		{"no hash", "ff0000", RGB(1, 0, 0), false},
		{"three digits", "#f00", RGB(1, 0, 0), false},
		{"alpha first", "#80ff0000", Color{1, 0, 0, 128.0 / 255}, false},
		{"bad length", "#ff00", Color{}, true},
		{"not hex", "#gg0000", Color{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseHex(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want.R, got.R, 1e-9)
			assert.InDelta(t, tt.want.G, got.G, 1e-9)
			assert.InDelta(t, tt.want.B, got.B, 1e-9)
			assert.InDelta(t, tt.want.A, got.A, 1e-9)
		})
	}
}

func TestColor_Hex(t *testing.T) {
	assert.Equal(t, "#ff0000", RGB(1, 0, 0).Hex())
	assert.Equal(t, "#80ff0000", Color{1, 0, 0, 128.0 / 255}.Hex())

	c, err := ParseHex("#aabbcc")
	require.NoError(t, err)
	assert.Equal(t, "#aabbcc", c.Hex())
}

func TestFromColor(t *testing.T) {
	c := FromColor(RGB(0, 1, 0).NRGBA())
	assert.Equal(t, RGB(0, 1, 0), c)
}
