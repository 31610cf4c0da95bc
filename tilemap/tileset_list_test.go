package tilemap

import (
	"testing"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/tmxkit/namedlist"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTilesetList_MoveRenumbers(t *testing.T) {
	m := newTestMap(t, 4, 4)
	a := gridTileset(t, "A", 8, 6)
	b := gridTileset(t, "B", 4, 4)
	require.NoError(t, m.Tilesets.Append(a, b))

	layer, err := m.AddTileLayer("ground", AtEnd())
	require.NoError(t, err)
	require.NoError(t, layer.SetValue(1, 2, NewTileValue(11, FlipFlags{})))

	first, err := a.FirstGID(m)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), first)
	first, err = b.FirstGID(m)
	require.NoError(t, err)
	assert.Equal(t, uint32(49), first)

	tile := mustCell(t, layer, 1, 2)
	number, err := tile.Number()
	require.NoError(t, err)
	assert.Equal(t, 10, number)

	require.NoError(t, m.Tilesets.Move(namedlist.Name("B"), 0))

	first, err = a.FirstGID(m)
	require.NoError(t, err)
	assert.Equal(t, uint32(17), first)
	first, err = b.FirstGID(m)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), first)

	assert.Equal(t, uint32(27), tile.GID())
	ts, err := tile.Tileset()
	require.NoError(t, err)
	assert.True(t, ts == a)
	number, err = tile.Number()
	require.NoError(t, err)
	assert.Equal(t, 10, number)
}

func TestTilesetList_EditsKeepIdentity(t *testing.T) {
	m := newTestMap(t, 3, 2)
	a := gridTileset(t, "A", 2, 2)
	b := gridTileset(t, "B", 3, 1)
	c := gridTileset(t, "C", 1, 1)
	d := gridTileset(t, "D", 5, 1)
	require.NoError(t, m.Tilesets.Append(a, b, c))

	layer, err := m.AddTileLayer("l", AtEnd())
	require.NoError(t, err)
	require.NoError(t, layer.SetTilesetTile(0, 0, mustTile(t, a, 3)))
	require.NoError(t, layer.SetTilesetTile(1, 0, mustTile(t, b, 0)))
	require.NoError(t, layer.SetTilesetTile(2, 0, mustTile(t, c, 0)))
	require.NoError(t, layer.SetTilesetTile(0, 1, mustTile(t, b, 2)))
	mustCell(t, layer, 0, 1).Rotate()
	mustCell(t, layer, 1, 0).HFlip()

	objects, err := m.AddObjectLayer("objects", AtEnd())
	require.NoError(t, err)
	obj, err := objects.AddTileObject("lamp", orb.Point{4, 8}, mustTile(t, c, 0))
	require.NoError(t, err)
	obj.Tile().VFlip()

	before := resolveAll(t, m)

	edits := []struct {
		name string
		edit func() errorsx.Error
	}{
		{"insert in the middle", func() errorsx.Error { return m.Tilesets.Insert(1, d) }},
		{"move last to front", func() errorsx.Error { return m.Tilesets.Move(namedlist.Index(-1), 0) }},
		{"shift", func() errorsx.Error { return m.Tilesets.Shift(namedlist.Name("A"), 2) }},
		{"remove unused", func() errorsx.Error {
			_, err := m.Tilesets.Remove(namedlist.Name("D"))
			return err
		}},
		{"reverse in one edit", func() errorsx.Error {
			return m.Tilesets.Modify(func(current []*Tileset) ([]*Tileset, errorsx.Error) {
				for i, j := 0, len(current)-1; i < j; i, j = i+1, j-1 {
					current[i], current[j] = current[j], current[i]
				}
				return current, nil
			})
		}},
	}
	for _, e := range edits {
		require.NoError(t, e.edit(), e.name)
		assert.Equal(t, before, resolveAll(t, m), e.name)
	}
	assert.Empty(t, m.CheckConsistency())
}

func TestTilesetList_RemoveUsed(t *testing.T) {
	m := newTestMap(t, 2, 2)
	a := gridTileset(t, "A", 2, 1)
	b := gridTileset(t, "B", 2, 1)
	require.NoError(t, m.Tilesets.Append(a, b))

	layer, err := m.AddTileLayer("l", AtEnd())
	require.NoError(t, err)
	require.NoError(t, layer.SetTilesetTile(1, 1, mustTile(t, b, 1)))

	_, err = m.Tilesets.Remove(namedlist.Name("B"))
	require.Error(t, err)
	assert.Equal(t, ErrUsedTileset, errorsx.Cause(err))
	assert.Equal(t, []*Tileset{a, b}, m.Tilesets.Items())
	assert.Equal(t, TileValue(4), mustCell(t, layer, 1, 1).Value())

	removed, err := m.Tilesets.Remove(namedlist.Name("A"))
	require.NoError(t, err)
	assert.True(t, removed == a)
	assert.Equal(t, []*Tileset{b}, m.Tilesets.Items())
	assert.Equal(t, TileValue(2), mustCell(t, layer, 1, 1).Value())
}

func TestTilesetList_RemoveUsedByTileObject(t *testing.T) {
	m := newTestMap(t, 2, 2)
	a := gridTileset(t, "A", 2, 1)
	objects, err := m.AddObjectLayer("objects", AtEnd())
	require.NoError(t, err)
	_, err = objects.AddTileObject("thing", orb.Point{0, 8}, mustTile(t, a, 0))
	require.NoError(t, err)

	_, err = m.Tilesets.Remove(namedlist.Index(0))
	assert.Equal(t, ErrUsedTileset, errorsx.Cause(err))
	assert.Equal(t, 1, m.Tilesets.Len())
}

func TestTilesetList_AppendSkipsRenumbering(t *testing.T) {
	m := newTestMap(t, 2, 1)
	a := gridTileset(t, "A", 2, 1)
	require.NoError(t, m.Tilesets.Append(a))
	layer, err := m.AddTileLayer("l", AtEnd())
	require.NoError(t, err)
	require.NoError(t, layer.SetValue(0, 0, 2))

	// make the cell point past the end of the tilesets, as a stale value would
	layer.data[1] = 9

	require.NoError(t, m.Tilesets.Append(gridTileset(t, "B", 1, 1)))
	assert.Equal(t, TileValue(9), mustCell(t, layer, 1, 0).Value())

	err = m.Tilesets.Move(namedlist.Name("B"), 0)
	assert.Equal(t, ErrTilesetNotInMap, errorsx.Cause(err))
	assert.Equal(t, "A", m.Tilesets.Items()[0].Name)
	assert.Equal(t, TileValue(2), mustCell(t, layer, 0, 0).Value())
}

func TestTilesetList_RemovedLayersKeepTheirTiles(t *testing.T) {
	m := newTestMap(t, 2, 1)
	a := gridTileset(t, "A", 2, 1)
	b := gridTileset(t, "B", 2, 1)
	require.NoError(t, m.Tilesets.Append(a, b))

	layer, err := m.AddTileLayer("l", AtEnd())
	require.NoError(t, err)
	require.NoError(t, layer.SetTilesetTile(0, 0, mustTile(t, b, 1)))
	require.NoError(t, layer.SetTilesetTile(1, 0, mustTile(t, a, 0)))
	objects, err := m.AddObjectLayer("objects", AtEnd())
	require.NoError(t, err)
	obj, err := objects.AddTileObject("thing", orb.Point{0, 8}, mustTile(t, b, 0))
	require.NoError(t, err)

	_, err = m.Layers.Remove(namedlist.Name("l"))
	require.NoError(t, err)
	_, err = m.Layers.Remove(namedlist.Name("objects"))
	require.NoError(t, err)
	require.NoError(t, m.Tilesets.Move(namedlist.Name("B"), 0))

	// out of the map, cells keep their old GIDs but still know their tiles
	cell := mustCell(t, layer, 0, 0)
	assert.Equal(t, TileValue(4), cell.Value())
	tt, err := cell.TilesetTile()
	require.NoError(t, err)
	assert.True(t, tt == mustTile(t, b, 1))

	require.NoError(t, m.Layers.Append(layer, objects))
	assert.Equal(t, []TileValue{2, 3}, layer.Data())
	assert.Equal(t, TileValue(1), obj.Shape.(*TileShape).Value)

	ts, err := cell.Tileset()
	require.NoError(t, err)
	assert.True(t, ts == b)
	number, err := cell.Number()
	require.NoError(t, err)
	assert.Equal(t, 1, number)
	assert.Empty(t, m.CheckConsistency())
}

func TestTilesetList_RemoveTilesetOfRemovedLayer(t *testing.T) {
	m := newTestMap(t, 2, 1)
	a := gridTileset(t, "A", 2, 1)
	b := gridTileset(t, "B", 2, 1)
	require.NoError(t, m.Tilesets.Append(a, b))
	layer, err := m.AddTileLayer("l", AtEnd())
	require.NoError(t, err)
	require.NoError(t, layer.SetTilesetTile(0, 0, mustTile(t, b, 1)))

	_, err = m.Layers.Remove(namedlist.Name("l"))
	require.NoError(t, err)
	_, err = m.Tilesets.Remove(namedlist.Name("B"))
	require.NoError(t, err)

	err = m.Layers.Append(layer)
	assert.Equal(t, ErrTilesetNotInMap, errorsx.Cause(err))
	assert.Equal(t, 0, m.Layers.Len())

	require.NoError(t, m.Tilesets.Insert(0, b))
	require.NoError(t, m.Layers.Append(layer))
	assert.Equal(t, TileValue(2), mustCell(t, layer, 0, 0).Value())
}

func TestTilesetList_Duplicates(t *testing.T) {
	m := newTestMap(t, 1, 1)
	a := gridTileset(t, "A", 1, 1)
	require.NoError(t, m.Tilesets.Append(a))
	err := m.Tilesets.Append(a)
	assert.Equal(t, ErrDuplicateTileset, errorsx.Cause(err))
	assert.Equal(t, 1, m.Tilesets.Len())
}

func TestTilesetList_Resolve(t *testing.T) {
	m := newTestMap(t, 1, 1)
	a := gridTileset(t, "A", 3, 1)
	b := gridTileset(t, "B", 2, 1)
	require.NoError(t, m.Tilesets.Append(a, b))

	assert.Equal(t, uint32(6), m.EndGID())
	end, err := a.EndGID(m)
	require.NoError(t, err)
	assert.Equal(t, uint32(4), end)

	tests := []struct {
		gid     uint32
		tileset *Tileset
		number  int
		wantErr error
	}{
		{1, a, 0, nil},
		{3, a, 2, nil},
		{4, b, 0, nil},
		{5, b, 1, nil},
		{6, nil, 0, ErrTilesetNotInMap},
		{0, nil, 0, ErrInvalidGID},
	}
	for _, tt := range tests {
		ts, number, err := m.Tilesets.Resolve(tt.gid)
		if tt.wantErr != nil {
			assert.Equal(t, tt.wantErr, errorsx.Cause(err))
			continue
		}
		require.NoError(t, err)
		assert.True(t, ts == tt.tileset)
		assert.Equal(t, tt.number, number)
	}

	_, err = gridTileset(t, "C", 1, 1).FirstGID(m)
	assert.Equal(t, ErrTilesetNotInMap, errorsx.Cause(err))
}

func TestMap_RemoveUnusedTilesets(t *testing.T) {
	m := newTestMap(t, 2, 1)
	a := gridTileset(t, "A", 2, 1)
	b := gridTileset(t, "B", 2, 1)
	c := gridTileset(t, "C", 2, 1)
	require.NoError(t, m.Tilesets.Append(a, b, c))
	layer, err := m.AddTileLayer("l", AtEnd())
	require.NoError(t, err)
	require.NoError(t, layer.SetTilesetTile(0, 0, mustTile(t, c, 1)))

	assert.Equal(t, []*Tileset{c}, m.UsedTilesets())
	require.NoError(t, m.RemoveUnusedTilesets())
	assert.Equal(t, []*Tileset{c}, m.Tilesets.Items())
	assert.Equal(t, TileValue(2), mustCell(t, layer, 0, 0).Value())
}
