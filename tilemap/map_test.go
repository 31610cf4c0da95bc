package tilemap

import (
	"testing"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/tmxkit/namedlist"
	"github.com/jamesrr39/tmxkit/tmximage"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMap(t *testing.T) {
	tests := []struct {
		name     string
		size     Size
		tileSize Size
		wantErr  bool
	}{
		{"ok", Size{10, 5}, Size{16, 8}, false},
		{"zero width", Size{0, 5}, Size{16, 8}, true},
		{"negative tile", Size{10, 5}, Size{16, -8}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewMap(tt.size, tt.tileSize, "")
			if tt.wantErr {
				assert.Equal(t, ErrInvalidSize, errorsx.Cause(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, OrientationOrthogonal, m.Orientation)
			assert.Equal(t, Size{tt.size.Width * tt.tileSize.Width, tt.size.Height * tt.tileSize.Height}, m.PixelSize())
			assert.Equal(t, uint32(1), m.EndGID())
		})
	}

	m, err := NewMap(Size{1, 1}, Size{1, 1}, "some-future-orientation")
	require.NoError(t, err)
	assert.Equal(t, "some-future-orientation", m.Orientation)
}

func layerNames(m *Map) []string {
	var names []string
	for _, l := range m.Layers.Items() {
		names = append(names, l.GetName())
	}
	return names
}

func TestMap_AddLayers(t *testing.T) {
	m := newTestMap(t, 3, 3)

	ground, err := m.AddTileLayer("ground", AtEnd())
	require.NoError(t, err)
	_, err = m.AddObjectLayer("objects", AtEnd())
	require.NoError(t, err)
	_, err = m.AddImageLayer("sky", tmximage.NewMemory(4, 4), Before(namedlist.Name("ground")))
	require.NoError(t, err)
	_, err = m.AddTileLayer("decor", After(namedlist.Name("ground")))
	require.NoError(t, err)

	assert.Equal(t, []string{"sky", "ground", "decor", "objects"}, layerNames(m))
	assert.Equal(t, 1, ground.ID)
	assert.Equal(t, 1, ground.Index())
	assert.Equal(t, 5, m.NextLayerID)
	assert.Len(t, m.Layers.TileLayers(), 2)

	_, err = m.AddTileLayer("nowhere", After(namedlist.Name("missing")))
	assert.Equal(t, namedlist.ErrNameNotFound, errorsx.Cause(err))
	assert.Equal(t, 4, m.Layers.Len())

	other := newTestMap(t, 3, 3)
	err = m.Layers.Append(NewTileLayer(other, "foreign"))
	assert.Equal(t, ErrForeignLayer, errorsx.Cause(err))

	require.NoError(t, m.Layers.Shift(namedlist.Name("objects"), -3))
	assert.Equal(t, []string{"objects", "sky", "ground", "decor"}, layerNames(m))
}

func TestMap_TilesAt(t *testing.T) {
	m := newTestMap(t, 2, 2)
	a := gridTileset(t, "A", 4, 1)
	bottom, err := m.AddTileLayer("bottom", AtEnd())
	require.NoError(t, err)
	_, err = m.AddObjectLayer("objects", AtEnd())
	require.NoError(t, err)
	top, err := m.AddTileLayer("top", AtEnd())
	require.NoError(t, err)

	assert.True(t, bottom.IsEmpty())
	require.NoError(t, bottom.SetTilesetTile(1, 0, mustTile(t, a, 2)))
	require.NoError(t, top.SetTilesetTile(1, 0, mustTile(t, a, -1)))
	assert.False(t, bottom.IsEmpty())

	tiles, err := m.TilesAt(1, 0)
	require.NoError(t, err)
	require.Len(t, tiles, 2)
	assert.Equal(t, uint32(3), tiles[0].GID())
	assert.Equal(t, uint32(4), tiles[1].GID())

	_, err = m.TilesAt(5, 5)
	assert.Equal(t, ErrIndexOutOfRange, errorsx.Cause(err))

	assert.Len(t, m.AllTiles(), 8)
}

func TestTileLayer_SetData(t *testing.T) {
	m := newTestMap(t, 2, 1)
	require.NoError(t, m.Tilesets.Append(gridTileset(t, "A", 2, 1)))
	layer, err := m.AddTileLayer("l", AtEnd())
	require.NoError(t, err)

	require.NoError(t, layer.SetData([]TileValue{1, NewTileValue(2, FlipFlags{D: true})}))
	assert.Equal(t, []TileValue{1, 0x20000002}, layer.Data())

	err = layer.SetData([]TileValue{1})
	assert.Equal(t, ErrInvalidSize, errorsx.Cause(err))

	err = layer.SetData([]TileValue{1, 3})
	assert.Equal(t, ErrInvalidGID, errorsx.Cause(err))
	assert.Equal(t, []TileValue{1, 0x20000002}, layer.Data())
}

func TestObjectLayer(t *testing.T) {
	m := newTestMap(t, 2, 2)
	objects, err := m.AddObjectLayer("objects", AtEnd())
	require.NoError(t, err)
	assert.True(t, objects.IsEmpty())

	poly := NewObject("fence", orb.Point{10, 10}, &Polygon{Points: orb.Ring{{0, 0}, {5, -2}, {3, 4}}})
	require.NoError(t, objects.AddObject(poly))
	line := NewObject("path", orb.Point{0, 0}, &Polyline{Points: orb.LineString{{1, 1}, {2, 3}}})
	require.NoError(t, objects.AddObject(line))
	rect := NewObject("zone", orb.Point{1, 2}, nil)
	rect.Width, rect.Height = 3, 4
	require.NoError(t, objects.AddObject(rect))

	assert.Equal(t, []int{1, 2, 3}, []int{poly.ID, line.ID, rect.ID})
	assert.Equal(t, ObjectKindRectangle, rect.Kind())
	assert.True(t, rect.Layer() == objects)
	assert.Equal(t, orb.Bound{Min: orb.Point{10, 8}, Max: orb.Point{15, 14}}, poly.Bound())
	assert.Equal(t, orb.Bound{Min: orb.Point{1, 2}, Max: orb.Point{4, 6}}, rect.Bound())
	assert.Empty(t, objects.Tiles())

	got, err := objects.Objects.Get(namedlist.Name("path"))
	require.NoError(t, err)
	assert.True(t, got == line)

	other, err := m.AddObjectLayer("other", AtEnd())
	require.NoError(t, err)
	err = other.AddObject(rect)
	assert.Equal(t, ErrForeignObject, errorsx.Cause(err))

	_, err = objects.Objects.Remove(namedlist.Name("zone"))
	require.NoError(t, err)
	assert.Nil(t, rect.Layer())
	require.NoError(t, other.AddObject(rect))
	assert.Equal(t, 3, rect.ID)

	err = objects.AddObject(NewObject("bad tile", orb.Point{}, &TileShape{Value: 7}))
	assert.Equal(t, ErrInvalidGID, errorsx.Cause(err))
}

func TestObjectLayer_checksTileObjectsOnEveryEdit(t *testing.T) {
	m := newTestMap(t, 2, 2)
	require.NoError(t, m.Tilesets.Append(gridTileset(t, "A", 2, 1)))
	objects, err := m.AddObjectLayer("objects", AtEnd())
	require.NoError(t, err)

	ok := NewObject("ok", orb.Point{}, &TileShape{Value: 2})
	require.NoError(t, objects.Objects.Append(ok))

	bad := NewObject("bad", orb.Point{}, &TileShape{Value: 9})
	edits := map[string]func() errorsx.Error{
		"append": func() errorsx.Error { return objects.Objects.Append(bad) },
		"insert": func() errorsx.Error { return objects.Objects.Insert(0, bad) },
		"set":    func() errorsx.Error { return objects.Objects.Set(namedlist.Name("ok"), bad) },
	}
	for name, edit := range edits {
		t.Run(name, func(t *testing.T) {
			err := edit()
			assert.Equal(t, ErrInvalidGID, errorsx.Cause(err))
			assert.Equal(t, []*MapObject{ok}, objects.Objects.Items())
			assert.Nil(t, bad.Layer())
		})
	}

	require.NoError(t, m.Tilesets.Insert(0, gridTileset(t, "B", 1, 1)))
	assert.Equal(t, TileValue(3), ok.Shape.(*TileShape).Value)
	assert.Empty(t, m.CheckConsistency())
}

func TestLoadingKeepsUnresolvedGIDs(t *testing.T) {
	m := newTestMap(t, 2, 1)
	require.NoError(t, m.Tilesets.Append(gridTileset(t, "A", 2, 1)))

	layer := NewTileLayer(m, "l")
	require.NoError(t, layer.LoadData([]TileValue{2, 7}))
	err := layer.LoadData([]TileValue{1})
	assert.Equal(t, ErrInvalidSize, errorsx.Cause(err))
	require.NoError(t, m.AddLayer(layer, AtEnd()))
	assert.Equal(t, []TileValue{2, 7}, layer.Data())

	objects := NewObjectLayer(m, "objects")
	require.NoError(t, objects.LoadObject(NewObject("raw", orb.Point{}, &TileShape{Value: 8})))
	require.NoError(t, m.AddLayer(objects, AtEnd()))
	err = objects.AddObject(NewObject("added", orb.Point{}, &TileShape{Value: 8}))
	assert.Equal(t, ErrInvalidGID, errorsx.Cause(err))

	var kinds []ViolationKind
	for _, v := range m.CheckConsistency() {
		kinds = append(kinds, v.Kind)
	}
	assert.Equal(t, []ViolationKind{ViolationUnresolvedGID, ViolationUnresolvedGID}, kinds)
}

func TestMap_CheckConsistency(t *testing.T) {
	m := newTestMap(t, 2, 2)
	require.NoError(t, m.Tilesets.Append(gridTileset(t, "A", 2, 1)))
	good, err := m.AddTileLayer("good", AtEnd())
	require.NoError(t, err)
	require.NoError(t, good.SetValue(0, 0, 2))
	assert.Empty(t, m.CheckConsistency())

	bad, err := m.AddTileLayer("bad", AtEnd())
	require.NoError(t, err)
	bad.data[3] = 9
	bad.data[2] = NewTileValue(3, FlipFlags{H: true})
	bad.DeclaredSize = Size{3, 2}
	bad.ID = good.ID

	violations := m.CheckConsistency()
	var kinds []ViolationKind
	for _, v := range violations {
		kinds = append(kinds, v.Kind)
		assert.Equal(t, "bad", v.Layer)
	}
	assert.Equal(t, []ViolationKind{
		ViolationDuplicateLayerID,
		ViolationLayerSize,
		ViolationUnresolvedGID,
		ViolationUnresolvedGID,
	}, kinds)
	assert.Contains(t, violations[2].Error(), "gid 3")
}

func TestTileset(t *testing.T) {
	ts := gridTileset(t, "A", 3, 2)
	last, err := ts.Tile(-1)
	require.NoError(t, err)
	assert.Equal(t, 5, last.Number())
	_, err = ts.Tile(6)
	assert.Equal(t, ErrIndexOutOfRange, errorsx.Cause(err))
	_, err = ts.Tile(-7)
	assert.Equal(t, ErrIndexOutOfRange, errorsx.Cause(err))
	assert.Equal(t, 2, ts.Rows())

	region, ok := mustTile(t, ts, 4).Image().(*tmximage.Region)
	require.True(t, ok)
	x, y := region.TopLeft()
	assert.Equal(t, [2]int{8, 8}, [2]int{x, y})
	assert.True(t, region == mustTile(t, ts, 4).Image())

	water, err := ts.Terrains.AppendNew("water", mustTile(t, ts, 0))
	require.NoError(t, err)
	_, err = ts.Terrains.AppendNew("grass", mustTile(t, ts, 1))
	require.NoError(t, err)
	tt := mustTile(t, ts, 2)
	tt.TerrainIndices = []int{0, 1, -1, 5}
	terrains := tt.Terrains()
	require.Len(t, terrains, 4)
	assert.True(t, terrains[0] == water)
	assert.Equal(t, "grass", terrains[1].Name)
	assert.Nil(t, terrains[2])
	assert.Nil(t, terrains[3])

	_, err = NewImageTileset("bad", Size{0, 8}, tmximage.NewMemory(8, 8), 0, 0)
	assert.Equal(t, ErrInvalidSize, errorsx.Cause(err))
}

func TestIndividualTileset(t *testing.T) {
	small := tmximage.NewMemory(4, 4)
	big := tmximage.NewMemory(16, 32)
	ts, err := NewIndividualTileset("things", Size{8, 8}, []tmximage.Image{small, nil, big})
	require.NoError(t, err)

	assert.Equal(t, 3, ts.Len())
	assert.Equal(t, 5, ts.Columns())
	assert.Equal(t, 1, ts.Rows())
	ts.SetColumns(2)
	assert.Equal(t, 2, ts.Rows())

	assert.Equal(t, Size{4, 4}, mustTile(t, ts, 0).PixelSize())
	assert.Equal(t, Size{8, 8}, mustTile(t, ts, 1).PixelSize())
	assert.Equal(t, Size{16, 32}, mustTile(t, ts, 2).PixelSize())

	_, err = mustTile(t, ts, 1).Pixel(0, 0)
	assert.Equal(t, tmximage.ErrImageDataNotAvailable, errorsx.Cause(err))

	require.NoError(t, ts.SetTileImage(1, big))
	assert.Equal(t, Size{16, 32}, mustTile(t, ts, 1).PixelSize())

	grid := gridTileset(t, "grid", 1, 1)
	require.Error(t, grid.SetTileImage(0, big))
}

func TestMap_AddLayerKeepsExplicitIDs(t *testing.T) {
	m := newTestMap(t, 2, 2)

	loaded := NewTileLayer(m, "loaded")
	loaded.ID = 7
	require.NoError(t, m.AddLayer(loaded, AtEnd()))
	assert.Equal(t, 7, loaded.ID)
	assert.Equal(t, 8, m.NextLayerID)

	objects, err := m.AddObjectLayer("objects", AtEnd())
	require.NoError(t, err)
	assert.Equal(t, 8, objects.ID)

	obj := NewObject("chest", orb.Point{8, 8}, nil)
	obj.ID = 3
	require.NoError(t, objects.AddObject(obj))
	assert.Equal(t, 4, m.NextObjectID)
}
