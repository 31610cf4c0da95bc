package tilemap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allFlags() []FlipFlags {
	var out []FlipFlags
	for c := uint8(0); c < 8; c++ {
		out = append(out, flagsFromCode(c))
	}
	return out
}

func TestFlipFlags_GroupLaws(t *testing.T) {
	for _, f := range allFlags() {
		t.Run(f.String(), func(t *testing.T) {
			assert.Equal(t, f, f.Rotate().Rotate().Rotate().Rotate())
			assert.Equal(t, f, f.HFlip().HFlip())
			assert.Equal(t, f, f.VFlip().VFlip())
			assert.Equal(t, f, f.Rotate().RotateCounterClockwise())
			assert.NotEqual(t, f, f.Rotate())
			assert.NotEqual(t, f, f.Rotate().Rotate())
			// a half turn is both flips
			assert.Equal(t, f.HFlip().VFlip(), f.Rotate().Rotate())
		})
	}
}

func TestFlipFlags_Scenario(t *testing.T) {
	f := FlipFlags{H: true}
	f = f.VFlip()
	assert.Equal(t, FlipFlags{H: true, V: true}, f)
	f = f.Rotate()
	assert.Equal(t, FlipFlags{V: true, D: true}, f)
}

func TestFlipFlags_RotationCycle(t *testing.T) {
	f := FlipFlags{}
	var seen []FlipFlags
	for i := 0; i < 4; i++ {
		f = f.Rotate()
		seen = append(seen, f)
	}
	assert.Equal(t, []FlipFlags{
		{H: true, D: true},
		{H: true, V: true},
		{V: true, D: true},
		{},
	}, seen)
}

func TestFlipFlags_RotateBy(t *testing.T) {
	f := FlipFlags{H: true}

	got, err := f.RotateBy(270)
	require.NoError(t, err)
	assert.Equal(t, f.RotateCounterClockwise(), got)

	got, err = f.RotateBy(-180)
	require.NoError(t, err)
	assert.Equal(t, f.Rotate().Rotate(), got)

	got, err = f.RotateBy(720)
	require.NoError(t, err)
	assert.Equal(t, f, got)

	_, err = f.RotateBy(45)
	require.Error(t, err)
}

func TestTileValue(t *testing.T) {
	v := NewTileValue(11, FlipFlags{H: true, D: true})
	assert.Equal(t, TileValue(0xA000000B), v)
	assert.Equal(t, uint32(11), v.GID())
	assert.Equal(t, FlipFlags{H: true, D: true}, v.Flags())
	assert.False(t, v.IsEmpty())

	v = v.WithGID(27)
	assert.Equal(t, uint32(27), v.GID())
	assert.Equal(t, FlipFlags{H: true, D: true}, v.Flags())

	v = v.WithFlags(FlipFlags{V: true})
	assert.Equal(t, TileValue(0x4000001B), v)

	assert.True(t, TileValue(FlagHorizontal).IsEmpty())
}
