package tilemap

import (
	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/tmxkit/namedlist"
	"github.com/jamesrr39/tmxkit/properties"
	"github.com/jamesrr39/tmxkit/tmxcolor"
	"github.com/jamesrr39/tmxkit/tmximage"
)

type TilesetKind string

const (
	// TilesetKindImage tilesets cut their tiles out of a single image, on a grid.
	TilesetKindImage TilesetKind = "image"
	// TilesetKindIndividual tilesets have one image per tile.
	TilesetKindIndividual TilesetKind = "individual"
)

const defaultIndividualColumns = 5

// Tileset is a catalogue of tiles. The number of tiles is fixed when the tileset is created.
// A tileset is not owned by a map: the same *Tileset may be used by any number of maps,
// and changes to it are seen by all of them.
type Tileset struct {
	Name     string
	TileSize Size
	// Source is the path of the external file the tileset was loaded from, or "" for embedded tilesets.
	Source     string
	Properties *properties.Store
	Terrains   *TerrainList
	TileOffset Offset

	kind    TilesetKind
	image   tmximage.Image
	margin  int
	spacing int
	columns int
	tiles   []*TilesetTile
	images  []tmximage.Image
}

// Offset is a pixel offset.
type Offset struct {
	X, Y float64
}

// NewImageTileset creates a tileset whose tiles are laid out on a grid inside img.
// The tile count is derived from the image size, so img must know its size.
func NewImageTileset(name string, tileSize Size, img tmximage.Image, margin, spacing int) (*Tileset, errorsx.Error) {
	err := tileSize.validate("tile")
	if err != nil {
		return nil, err
	}
	if img == nil {
		return nil, errorsx.Wrap(tmximage.ErrImageDataNotAvailable, "tileset", name)
	}
	if margin < 0 || spacing < 0 {
		return nil, errorsx.Errorf("tileset %q: margin and spacing must not be negative", name)
	}

	ts := newTileset(name, tileSize, TilesetKindImage)
	ts.image = img
	ts.margin = margin
	ts.spacing = spacing
	ts.columns = gridCount(img.Width(), tileSize.Width, margin, spacing)
	rows := gridCount(img.Height(), tileSize.Height, margin, spacing)
	ts.buildTiles(ts.columns * rows)
	return ts, nil
}

// NewIndividualTileset creates a tileset with one image per tile. Entries of images may be nil.
func NewIndividualTileset(name string, tileSize Size, images []tmximage.Image) (*Tileset, errorsx.Error) {
	err := tileSize.validate("tile")
	if err != nil {
		return nil, err
	}
	ts := newTileset(name, tileSize, TilesetKindIndividual)
	ts.images = append([]tmximage.Image(nil), images...)
	ts.buildTiles(len(images))
	return ts, nil
}

func newTileset(name string, tileSize Size, kind TilesetKind) *Tileset {
	ts := &Tileset{
		Name:       name,
		TileSize:   tileSize,
		Properties: properties.NewStore(),
		kind:       kind,
	}
	ts.Terrains = NewTerrainList()
	return ts
}

func (ts *Tileset) buildTiles(count int) {
	if count < 0 {
		count = 0
	}
	ts.tiles = make([]*TilesetTile, count)
	for i := range ts.tiles {
		ts.tiles[i] = &TilesetTile{
			tileset:    ts,
			number:     i,
			Properties: properties.NewStore(),
		}
	}
}

func gridCount(imageSize, tileSize, margin, spacing int) int {
	n := (imageSize - 2*margin + spacing) / (tileSize + spacing)
	if n < 0 {
		return 0
	}
	return n
}

func (ts *Tileset) GetName() string {
	return ts.Name
}

func (ts *Tileset) Kind() TilesetKind {
	return ts.kind
}

func (ts *Tileset) Len() int {
	return len(ts.tiles)
}

// Tile returns the tile with local number i. Negative numbers count from the end.
func (ts *Tileset) Tile(i int) (*TilesetTile, errorsx.Error) {
	if i < 0 {
		i += len(ts.tiles)
	}
	if i < 0 || i >= len(ts.tiles) {
		return nil, errorsx.Wrap(ErrIndexOutOfRange, "tileset", ts.Name, "number", i, "length", len(ts.tiles))
	}
	return ts.tiles[i], nil
}

func (ts *Tileset) Tiles() []*TilesetTile {
	return append([]*TilesetTile(nil), ts.tiles...)
}

// Image is the source image of an image tileset, nil for individual tilesets.
func (ts *Tileset) Image() tmximage.Image {
	return ts.image
}

func (ts *Tileset) Margin() int {
	return ts.margin
}

func (ts *Tileset) Spacing() int {
	return ts.spacing
}

// Columns is the number of tile columns; for individual tilesets it is only a display hint.
func (ts *Tileset) Columns() int {
	if ts.kind == TilesetKindIndividual && ts.columns <= 0 {
		return defaultIndividualColumns
	}
	return ts.columns
}

// SetColumns sets the display column count of an individual tileset.
func (ts *Tileset) SetColumns(columns int) {
	if ts.kind == TilesetKindIndividual {
		ts.columns = columns
	}
}

func (ts *Tileset) Rows() int {
	cols := ts.Columns()
	if cols == 0 {
		return 0
	}
	return (len(ts.tiles) + cols - 1) / cols
}

// TransparentColor is the image colour key, if the image has one.
func (ts *Tileset) TransparentColor() *tmxcolor.Color {
	if fi, ok := ts.image.(*tmximage.FileImage); ok {
		return fi.Trans
	}
	return nil
}

// SetTileImage replaces the image of one tile of an individual tileset.
func (ts *Tileset) SetTileImage(number int, img tmximage.Image) errorsx.Error {
	if ts.kind != TilesetKindIndividual {
		return errorsx.Errorf("tileset %q: tile images can only be set on individual tilesets", ts.Name)
	}
	tile, err := ts.Tile(number)
	if err != nil {
		return err
	}
	ts.images[tile.number] = img
	tile.image = nil
	return nil
}

// FirstGID returns the GID of tile 0 of this tileset in m.
func (ts *Tileset) FirstGID(m *Map) (uint32, errorsx.Error) {
	return m.Tilesets.FirstGID(ts)
}

// EndGID returns the first GID after this tileset's range in m.
func (ts *Tileset) EndGID(m *Map) (uint32, errorsx.Error) {
	first, err := m.Tilesets.FirstGID(ts)
	if err != nil {
		return 0, err
	}
	return first + uint32(len(ts.tiles)), nil
}

// TilesetTile is one tile definition of a tileset.
type TilesetTile struct {
	Properties *properties.Store
	// Probability is the relative chance of the tile being picked by terrain tools, if set.
	Probability *float64
	// TerrainIndices index into the tileset's terrain list, one per corner
	// (top-left, top-right, bottom-left, bottom-right). -1 means no terrain.
	TerrainIndices []int

	tileset *Tileset
	number  int
	image   tmximage.Image
}

func (tt *TilesetTile) Tileset() *Tileset {
	return tt.tileset
}

// Number is the tile's local number inside its tileset.
func (tt *TilesetTile) Number() int {
	return tt.number
}

// GID is the tile's global id in m.
func (tt *TilesetTile) GID(m *Map) (uint32, errorsx.Error) {
	first, err := tt.tileset.FirstGID(m)
	if err != nil {
		return 0, err
	}
	return first + uint32(tt.number), nil
}

// Image returns the tile's pixels. For image tilesets it is a region of the tileset image,
// computed on first use. It is nil for individual tiles without an image.
func (tt *TilesetTile) Image() tmximage.Image {
	if tt.image != nil {
		return tt.image
	}
	ts := tt.tileset
	switch ts.kind {
	case TilesetKindImage:
		cols := ts.columns
		if cols == 0 {
			return nil
		}
		row, col := tt.number/cols, tt.number%cols
		left := ts.margin + col*(ts.TileSize.Width+ts.spacing)
		top := ts.margin + row*(ts.TileSize.Height+ts.spacing)
		tt.image = tmximage.NewRegion(ts.image, left, top, ts.TileSize.Width, ts.TileSize.Height)
	case TilesetKindIndividual:
		tt.image = ts.images[tt.number]
	}
	return tt.image
}

// PixelSize is the size of the tile image. Individual tiles may differ from the tileset's tile size.
func (tt *TilesetTile) PixelSize() Size {
	if tt.tileset.kind == TilesetKindImage {
		return tt.tileset.TileSize
	}
	img := tt.Image()
	if img == nil {
		return tt.tileset.TileSize
	}
	return Size{img.Width(), img.Height()}
}

func (tt *TilesetTile) Pixel(x, y int) (tmxcolor.Color, errorsx.Error) {
	img := tt.Image()
	if img == nil {
		return tmxcolor.Color{}, errorsx.Wrap(tmximage.ErrImageDataNotAvailable, "tileset", tt.tileset.Name, "number", tt.number)
	}
	return img.Pixel(x, y)
}

// Terrains resolves TerrainIndices. Entries that are unset or out of range are nil.
func (tt *TilesetTile) Terrains() []*Terrain {
	out := make([]*Terrain, len(tt.TerrainIndices))
	for i, idx := range tt.TerrainIndices {
		if idx < 0 {
			continue
		}
		terrain, ok := tt.tileset.Terrains.Lookup(namedlist.Index(idx))
		if ok {
			out[i] = terrain
		}
	}
	return out
}

// Terrain is a named terrain type of a tileset, shown by a representative tile.
type Terrain struct {
	Name       string
	Tile       *TilesetTile
	Properties *properties.Store
}

func (t *Terrain) GetName() string {
	return t.Name
}

// TerrainList is the ordered terrain list of a tileset.
type TerrainList struct {
	*namedlist.List[*Terrain]
}

func NewTerrainList() *TerrainList {
	return &TerrainList{namedlist.New[*Terrain](nil)}
}

// AppendNew creates a terrain and adds it to the end of the list.
func (l *TerrainList) AppendNew(name string, tile *TilesetTile) (*Terrain, errorsx.Error) {
	t := &Terrain{Name: name, Tile: tile, Properties: properties.NewStore()}
	err := l.Append(t)
	if err != nil {
		return nil, err
	}
	return t, nil
}
