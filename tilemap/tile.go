package tilemap

import (
	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/tmxkit/properties"
	"github.com/jamesrr39/tmxkit/tmxcolor"
)

// Tile is a live handle onto a tile value: either a cell of a tile layer or the tile of a tile object.
// It holds no copy of the value; reads and writes go straight to the owning layer or object.
type Tile struct {
	layer  *TileLayer
	x, y   int
	object *MapObject
}

// Map is the map the tile belongs to. It is nil for a tile object that is on no layer.
func (t *Tile) Map() *Map {
	if t.object != nil {
		if t.object.layer == nil {
			return nil
		}
		return t.object.layer.m
	}
	return t.layer.m
}

// Layer is the tile layer or object layer holding the tile, nil for a tile object that is on no layer.
func (t *Tile) Layer() Layer {
	if t.object != nil {
		if t.object.layer == nil {
			return nil
		}
		return t.object.layer
	}
	return t.layer
}

// Position is the cell position. It is (0, 0) for tile objects.
func (t *Tile) Position() (int, int) {
	return t.x, t.y
}

// Object is the tile object behind the handle, or nil for grid cells.
func (t *Tile) Object() *MapObject {
	return t.object
}

func (t *Tile) layerName() string {
	layer := t.Layer()
	if layer == nil {
		return ""
	}
	return layer.GetName()
}

func (t *Tile) cell() int {
	return t.x + t.y*t.layer.m.size.Width
}

// live reports whether the tile takes part in its map's GID numbering,
// that is whether its layer is in the map's layer list.
func (t *Tile) live() bool {
	if t.object != nil {
		return t.object.live()
	}
	return t.layer.attached
}

// held is the tileset tile remembered for a tile that is not live.
func (t *Tile) held() *TilesetTile {
	if t.object != nil {
		return t.object.heldTile()
	}
	return t.layer.refs[t.cell()]
}

func (t *Tile) hold(tt *TilesetTile) {
	if t.object != nil {
		t.object.holdTile(tt)
		return
	}
	t.layer.refs[t.cell()] = tt
}

// Value is the raw value. While the tile is outside its map's layer list, its GID is the one it had
// when it left; it is renumbered when the tile comes back.
func (t *Tile) Value() TileValue {
	if t.object != nil {
		return t.object.Shape.(*TileShape).Value
	}
	return t.layer.data[t.cell()]
}

func (t *Tile) store(v TileValue) {
	if t.object != nil {
		t.object.Shape.(*TileShape).Value = v
		return
	}
	t.layer.data[t.cell()] = v
}

func (t *Tile) owner() (*Map, errorsx.Error) {
	m := t.Map()
	if m == nil {
		return nil, errorsx.Wrap(ErrDetachedTile, "object", t.object.Name)
	}
	return m, nil
}

// SetValue writes a raw value. Its GID must be 0 or covered by the map's tilesets.
func (t *Tile) SetValue(v TileValue) errorsx.Error {
	m, err := t.owner()
	if err != nil {
		return err
	}
	err = m.validateValue(v)
	if err != nil {
		return err
	}
	if t.live() {
		t.store(v)
		return nil
	}

	var tt *TilesetTile
	if !v.IsEmpty() {
		tt, _ = m.Tilesets.ResolveTile(v.GID())
	}
	t.store(v)
	t.hold(tt)
	return nil
}

func (t *Tile) GID() uint32 {
	return t.Value().GID()
}

func (t *Tile) Flags() FlipFlags {
	return t.Value().Flags()
}

// SetFlags changes the flip state. It does nothing on an empty tile.
func (t *Tile) SetFlags(flags FlipFlags) {
	v := t.Value()
	if v.IsEmpty() {
		return
	}
	t.store(v.WithFlags(flags))
}

func (t *Tile) IsEmpty() bool {
	return t.Value().IsEmpty()
}

func (t *Tile) HFlip() {
	t.SetFlags(t.Flags().HFlip())
}

func (t *Tile) VFlip() {
	t.SetFlags(t.Flags().VFlip())
}

// Rotate turns the tile a quarter turn clockwise.
func (t *Tile) Rotate() {
	t.SetFlags(t.Flags().Rotate())
}

// RotateBy turns the tile by a multiple of 90 degrees; positive is clockwise.
func (t *Tile) RotateBy(degrees int) errorsx.Error {
	flags, err := t.Flags().RotateBy(degrees)
	if err != nil {
		return err
	}
	t.SetFlags(flags)
	return nil
}

// TilesetTile resolves the tile in the map's current tileset list. It is nil for an empty tile.
func (t *Tile) TilesetTile() (*TilesetTile, errorsx.Error) {
	gid := t.GID()
	if gid == 0 {
		return nil, nil
	}
	if !t.live() {
		if tt := t.held(); tt != nil {
			return tt, nil
		}
		if t.Map() == nil {
			return nil, errorsx.Wrap(ErrDetachedTile, "object", t.object.Name, "gid", gid)
		}
		return nil, errorsx.Wrap(ErrTilesetNotInMap, "gid", gid, "layer", t.layerName(), "x", t.x, "y", t.y)
	}
	tt, err := t.Map().Tilesets.ResolveTile(gid)
	if err != nil {
		return nil, errorsx.Wrap(err, "layer", t.layerName(), "x", t.x, "y", t.y)
	}
	return tt, nil
}

// Tileset is the tileset the tile comes from, nil for an empty tile.
func (t *Tile) Tileset() (*Tileset, errorsx.Error) {
	tt, err := t.TilesetTile()
	if err != nil || tt == nil {
		return nil, err
	}
	return tt.tileset, nil
}

// Number is the local number of the tile in its tileset, 0 for an empty tile.
func (t *Tile) Number() (int, errorsx.Error) {
	tt, err := t.TilesetTile()
	if err != nil || tt == nil {
		return 0, err
	}
	return tt.number, nil
}

// SetTilesetTile points the tile at tt and clears its flip state.
// If tt's tileset is not used by the map yet, it is appended to the map's tilesets.
func (t *Tile) SetTilesetTile(tt *TilesetTile) errorsx.Error {
	m, err := t.owner()
	if err != nil {
		return err
	}
	gid, err := m.gidForAdding(tt)
	if err != nil {
		return err
	}
	t.store(NewTileValue(gid, FlipFlags{}))
	if !t.live() {
		t.hold(tt)
	}
	return nil
}

// Properties are the properties of the referenced tileset tile, shared by every tile using it.
// It is nil for an empty or unresolvable tile.
func (t *Tile) Properties() *properties.Store {
	tt, err := t.TilesetTile()
	if err != nil || tt == nil {
		return nil
	}
	return tt.Properties
}

// PixelSize is the displayed size of the tile: the tileset tile's size, transposed when flipped diagonally.
func (t *Tile) PixelSize() (Size, errorsx.Error) {
	tt, err := t.TilesetTile()
	if err != nil || tt == nil {
		return Size{}, err
	}
	size := tt.PixelSize()
	if t.Flags().D {
		return size.Transposed(), nil
	}
	return size, nil
}

// ImageCoordinates maps a pixel of the displayed tile to the pixel of the tileset tile image shown there.
// Negative coordinates count from the far edge.
func (t *Tile) ImageCoordinates(x, y int) (int, int, errorsx.Error) {
	size, err := t.PixelSize()
	if err != nil {
		return 0, 0, err
	}
	return imageCoordinates(t.Flags(), size, x, y)
}

func imageCoordinates(flags FlipFlags, displayed Size, x, y int) (int, int, errorsx.Error) {
	if x < 0 {
		x += displayed.Width
	}
	if y < 0 {
		y += displayed.Height
	}
	if x < 0 || y < 0 || x >= displayed.Width || y >= displayed.Height {
		return 0, 0, errorsx.Wrap(ErrIndexOutOfRange, "x", x, "y", y, "width", displayed.Width, "height", displayed.Height)
	}
	if flags.V {
		y = displayed.Height - y - 1
	}
	if flags.H {
		x = displayed.Width - x - 1
	}
	if flags.D {
		x, y = y, x
	}
	return x, y, nil
}

// Pixel returns the colour visible at (x, y) of the displayed tile. Empty tiles are transparent.
func (t *Tile) Pixel(x, y int) (tmxcolor.Color, errorsx.Error) {
	tt, err := t.TilesetTile()
	if err != nil {
		return tmxcolor.Color{}, err
	}
	if tt == nil {
		return tmxcolor.Transparent, nil
	}
	ix, iy, err := t.ImageCoordinates(x, y)
	if err != nil {
		return tmxcolor.Color{}, err
	}
	return tt.Pixel(ix, iy)
}
