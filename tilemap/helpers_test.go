package tilemap

import (
	"testing"

	"github.com/jamesrr39/tmxkit/tmximage"
	"github.com/stretchr/testify/require"
)

var tile8 = Size{8, 8}

// gridTileset creates an image tileset of cols x rows 8px tiles.
func gridTileset(t *testing.T, name string, cols, rows int) *Tileset {
	ts, err := NewImageTileset(name, tile8, tmximage.NewMemory(cols*8, rows*8), 0, 0)
	require.NoError(t, err)
	require.Equal(t, cols*rows, ts.Len())
	return ts
}

func newTestMap(t *testing.T, w, h int) *Map {
	m, err := NewMap(Size{w, h}, tile8, OrientationOrthogonal)
	require.NoError(t, err)
	return m
}

func mustTile(t *testing.T, ts *Tileset, n int) *TilesetTile {
	tt, err := ts.Tile(n)
	require.NoError(t, err)
	return tt
}

func mustCell(t *testing.T, l *TileLayer, x, y int) *Tile {
	tile, err := l.Tile(x, y)
	require.NoError(t, err)
	return tile
}

type resolved struct {
	tileset *Tileset
	number  int
	flags   FlipFlags
}

func resolveAll(t *testing.T, m *Map) []resolved {
	var out []resolved
	for _, tile := range m.AllTiles() {
		tt, err := tile.TilesetTile()
		require.NoError(t, err)
		if tt == nil {
			out = append(out, resolved{})
			continue
		}
		out = append(out, resolved{tt.Tileset(), tt.Number(), tile.Flags()})
	}
	return out
}
