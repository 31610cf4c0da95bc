// Package tilemap is the in-memory model of a tile map: tilesets, layers, tiles and objects,
// and the GID numbering that ties tiles to tilesets.
//
// A Map is not safe for concurrent modification. Tilesets can be shared between maps;
// callers sharing them across goroutines must synchronise writes themselves.
package tilemap

import (
	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/tmxkit/namedlist"
	"github.com/jamesrr39/tmxkit/properties"
	"github.com/jamesrr39/tmxkit/tmxcolor"
	"github.com/jamesrr39/tmxkit/tmximage"
)

const (
	OrientationOrthogonal = "orthogonal"
	OrientationIsometric  = "isometric"
	OrientationStaggered  = "staggered"
	OrientationHexagonal  = "hexagonal"
)

// Map is the document root.
type Map struct {
	// Orientation is kept as given; it is not checked against the known orientations.
	Orientation     string
	RenderOrder     string
	BackgroundColor *tmxcolor.Color
	Infinite        bool
	StaggerAxis     string
	StaggerIndex    string
	HexSideLength   int
	NextLayerID     int
	NextObjectID    int
	Version         string
	TiledVersion    string
	Properties      *properties.Store

	Tilesets *TilesetList
	Layers   *LayerList

	size     Size
	tileSize Size
}

// NewMap creates an empty map of size tiles, each tileSize pixels.
func NewMap(size, tileSize Size, orientation string) (*Map, errorsx.Error) {
	err := size.validate("map")
	if err != nil {
		return nil, err
	}
	err = tileSize.validate("tile")
	if err != nil {
		return nil, err
	}
	if orientation == "" {
		orientation = OrientationOrthogonal
	}

	m := &Map{
		Orientation:  orientation,
		Properties:   properties.NewStore(),
		NextLayerID:  1,
		NextObjectID: 1,
		Version:      "1.0",
		size:         size,
		tileSize:     tileSize,
	}
	m.Tilesets = newTilesetList(m)
	m.Layers = newLayerList(m)
	return m, nil
}

// Size is the map size in tiles.
func (m *Map) Size() Size {
	return m.size
}

// TileSize is the size of one grid cell in pixels.
func (m *Map) TileSize() Size {
	return m.tileSize
}

// PixelSize is Size multiplied by TileSize.
func (m *Map) PixelSize() Size {
	return m.size.Mul(m.tileSize)
}

// EndGID is the first GID not covered by the map's tilesets.
func (m *Map) EndGID() uint32 {
	return m.Tilesets.EndGID()
}

func (m *Map) validateValue(v TileValue) errorsx.Error {
	gid := v.GID()
	if gid != 0 && gid >= m.EndGID() {
		return errorsx.Wrap(ErrInvalidGID, "gid", gid, "endGID", m.EndGID())
	}
	return nil
}

// gidForAdding returns tt's GID, first appending its tileset if the map does not use it yet.
func (m *Map) gidForAdding(tt *TilesetTile) (uint32, errorsx.Error) {
	if tt == nil {
		return 0, errorsx.Errorf("nil tileset tile")
	}
	if !m.Tilesets.Contains(tt.tileset) {
		err := m.Tilesets.Append(tt.tileset)
		if err != nil {
			return 0, err
		}
	}
	return tt.GID(m)
}

func (m *Map) allocLayerID() int {
	if m.NextLayerID <= 0 {
		m.NextLayerID = 1
	}
	id := m.NextLayerID
	m.NextLayerID++
	return id
}

func (m *Map) allocObjectID() int {
	if m.NextObjectID <= 0 {
		m.NextObjectID = 1
	}
	id := m.NextObjectID
	m.NextObjectID++
	return id
}

// Placement says where a new layer goes in the layer list.
type Placement struct {
	key   namedlist.Key
	after bool
	set   bool
}

// AtEnd places a layer on top of all others.
func AtEnd() Placement {
	return Placement{}
}

func Before(key namedlist.Key) Placement {
	return Placement{key: key, set: true}
}

func After(key namedlist.Key) Placement {
	return Placement{key: key, after: true, set: true}
}

// AddLayer inserts layer, which must have been created for m, and gives it an id if it has none.
// NextLayerID is kept past any id the layer already carries.
func (m *Map) AddLayer(layer Layer, at Placement) errorsx.Error {
	var err errorsx.Error
	switch {
	case !at.set:
		err = m.Layers.Append(layer)
	case at.after:
		err = m.Layers.InsertAfter(at.key, layer)
	default:
		err = m.Layers.InsertBefore(at.key, layer)
	}
	if err != nil {
		return err
	}
	base := layer.Base()
	switch {
	case base.ID == 0:
		base.ID = m.allocLayerID()
	case base.ID >= m.NextLayerID:
		m.NextLayerID = base.ID + 1
	}
	return nil
}

func (m *Map) AddTileLayer(name string, at Placement) (*TileLayer, errorsx.Error) {
	layer := NewTileLayer(m, name)
	err := m.AddLayer(layer, at)
	if err != nil {
		return nil, err
	}
	return layer, nil
}

func (m *Map) AddObjectLayer(name string, at Placement) (*ObjectLayer, errorsx.Error) {
	layer := NewObjectLayer(m, name)
	err := m.AddLayer(layer, at)
	if err != nil {
		return nil, err
	}
	return layer, nil
}

func (m *Map) AddImageLayer(name string, img tmximage.Image, at Placement) (*ImageLayer, errorsx.Error) {
	layer := NewImageLayer(m, name, img)
	err := m.AddLayer(layer, at)
	if err != nil {
		return nil, err
	}
	return layer, nil
}

// AllTiles returns every tile in the map: all cells of all tile layers, empty ones included,
// and all tile objects.
func (m *Map) AllTiles() []*Tile {
	var tiles []*Tile
	for _, layer := range m.Layers.Items() {
		tiles = append(tiles, layer.Tiles()...)
	}
	return tiles
}

// AllObjects returns the objects of every object layer.
func (m *Map) AllObjects() []*MapObject {
	var objects []*MapObject
	for _, layer := range m.Layers.Items() {
		if ol, ok := layer.(*ObjectLayer); ok {
			objects = append(objects, ol.Objects.Items()...)
		}
	}
	return objects
}

// TilesAt returns the tile at (x, y) of each tile layer, bottom layer first.
func (m *Map) TilesAt(x, y int) ([]*Tile, errorsx.Error) {
	var tiles []*Tile
	for _, layer := range m.Layers.TileLayers() {
		tile, err := layer.Tile(x, y)
		if err != nil {
			return nil, err
		}
		tiles = append(tiles, tile)
	}
	return tiles, nil
}

// UsedTilesets returns the tilesets that at least one tile in the map points into.
func (m *Map) UsedTilesets() []*Tileset {
	used := make(map[*Tileset]bool)
	for _, tile := range m.AllTiles() {
		ts, err := tile.Tileset()
		if err == nil && ts != nil {
			used[ts] = true
		}
	}
	var out []*Tileset
	for _, ts := range m.Tilesets.Items() {
		if used[ts] {
			out = append(out, ts)
		}
	}
	return out
}

// RemoveUnusedTilesets drops every tileset no tile points into, as a single renumbering edit.
func (m *Map) RemoveUnusedTilesets() errorsx.Error {
	used := make(map[*Tileset]bool)
	for _, ts := range m.UsedTilesets() {
		used[ts] = true
	}
	return m.Tilesets.Modify(func(current []*Tileset) ([]*Tileset, errorsx.Error) {
		var kept []*Tileset
		for _, ts := range current {
			if used[ts] {
				kept = append(kept, ts)
			}
		}
		return kept, nil
	})
}
