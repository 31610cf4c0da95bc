package tilemap

import (
	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/tmxkit/namedlist"
	"github.com/jamesrr39/tmxkit/properties"
	"github.com/jamesrr39/tmxkit/tmxcolor"
	"github.com/jamesrr39/tmxkit/tmximage"
)

type LayerKind string

const (
	LayerKindTiles   LayerKind = "tilelayer"
	LayerKindObjects LayerKind = "objectgroup"
	LayerKindImage   LayerKind = "imagelayer"
)

// Layer is one of *TileLayer, *ObjectLayer or *ImageLayer.
type Layer interface {
	GetName() string
	Kind() LayerKind
	Base() *LayerBase
	Map() *Map
	// IsEmpty reports whether the layer has no content.
	IsEmpty() bool
	// Tiles returns every tile of the layer: all cells of a tile layer, or the tile objects of an object layer.
	Tiles() []*Tile
	isLayer()
	// detach, checkAttach and attach move the layer's tiles out of and back into the map's GID numbering.
	detach()
	checkAttach() errorsx.Error
	attach()
}

// LayerBase holds the attributes common to all layers.
type LayerBase struct {
	ID         int
	Name       string
	Visible    bool
	Opacity    float64
	Offset     Offset
	Properties *properties.Store

	m *Map

	// attached is set while the layer is in m.Layers; only attached layers are renumbered.
	attached bool
}

func newLayerBase(m *Map, name string) LayerBase {
	return LayerBase{
		Name:       name,
		Visible:    true,
		Opacity:    1,
		Properties: properties.NewStore(),
		m:          m,
	}
}

func (b *LayerBase) GetName() string {
	return b.Name
}

func (b *LayerBase) Base() *LayerBase {
	return b
}

func (b *LayerBase) Map() *Map {
	return b.m
}

// Index is the position of the layer in its map's layer list, or -1 if it is not in the list.
func (b *LayerBase) Index() int {
	for i, l := range b.m.Layers.Items() {
		if l.Base() == b {
			return i
		}
	}
	return -1
}

func (b *LayerBase) isLayer() {}

func (b *LayerBase) detach()                    {}
func (b *LayerBase) checkAttach() errorsx.Error { return nil }
func (b *LayerBase) attach()                    {}

// TileLayer is a grid of tile values the size of its map, stored row-major.
type TileLayer struct {
	LayerBase
	// Encoding and Compression record how the grid is written out ("csv", "base64" or "" for XML elements;
	// "", "zlib", "gzip" or "zstd").
	Encoding    string
	Compression string
	// DeclaredSize is the size a loaded document gave the layer. It is zero for layers created in memory.
	DeclaredSize Size

	data []TileValue
	// refs holds, while the layer is not in the map, the tileset tile each cell shows.
	// A nil entry is an empty cell or one whose GID did not resolve.
	refs []*TilesetTile
}

// NewTileLayer creates an empty tile layer for m. It still has to be added to m.Layers.
// Until it is, the tileset tile of each cell is remembered rather than its GID,
// so edits to m.Tilesets in the meantime do not change what the cells show.
// The same holds for a layer taken out of m.Layers and added back later.
func NewTileLayer(m *Map, name string) *TileLayer {
	n := m.size.Width * m.size.Height
	return &TileLayer{
		LayerBase:   newLayerBase(m, name),
		Encoding:    "base64",
		Compression: "zlib",
		data:        make([]TileValue, n),
		refs:        make([]*TilesetTile, n),
	}
}

func (l *TileLayer) Kind() LayerKind {
	return LayerKindTiles
}

func (l *TileLayer) Size() Size {
	return l.m.size
}

func (l *TileLayer) index(x, y int) (int, int, int, errorsx.Error) {
	w, h := l.m.size.Width, l.m.size.Height
	if x < 0 {
		x += w
	}
	if y < 0 {
		y += h
	}
	if x < 0 || y < 0 || x >= w || y >= h {
		return 0, 0, 0, errorsx.Wrap(ErrIndexOutOfRange, "layer", l.Name, "x", x, "y", y, "width", w, "height", h)
	}
	return x + y*w, x, y, nil
}

// Tile returns a live handle onto the cell at (x, y). Negative coordinates count from the far edge.
func (l *TileLayer) Tile(x, y int) (*Tile, errorsx.Error) {
	_, x, y, err := l.index(x, y)
	if err != nil {
		return nil, err
	}
	return &Tile{layer: l, x: x, y: y}, nil
}

func (l *TileLayer) Value(x, y int) (TileValue, errorsx.Error) {
	i, _, _, err := l.index(x, y)
	if err != nil {
		return 0, err
	}
	return l.data[i], nil
}

// SetValue stores a raw value. Its GID must be 0 or covered by the map's tilesets.
func (l *TileLayer) SetValue(x, y int, v TileValue) errorsx.Error {
	tile, err := l.Tile(x, y)
	if err != nil {
		return err
	}
	return tile.SetValue(v)
}

// SetTilesetTile points the cell at tt, adding tt's tileset to the map if needed.
func (l *TileLayer) SetTilesetTile(x, y int, tt *TilesetTile) errorsx.Error {
	tile, err := l.Tile(x, y)
	if err != nil {
		return err
	}
	return tile.SetTilesetTile(tt)
}

// Data returns a copy of the grid, row-major.
func (l *TileLayer) Data() []TileValue {
	return append([]TileValue(nil), l.data...)
}

// SetData replaces the whole grid. Every value is validated before anything is written.
func (l *TileLayer) SetData(data []TileValue) errorsx.Error {
	if len(data) != len(l.data) {
		return errorsx.Wrap(ErrInvalidSize, "layer", l.Name, "expected", len(l.data), "got", len(data))
	}
	for _, v := range data {
		err := l.m.validateValue(v)
		if err != nil {
			return errorsx.Wrap(err, "layer", l.Name)
		}
	}
	copy(l.data, data)
	if !l.attached {
		l.detach()
	}
	return nil
}

// LoadData replaces the whole grid without checking GIDs, for loaders reading a document as it is.
// Values no tileset covers are kept and show up in CheckConsistency.
func (l *TileLayer) LoadData(data []TileValue) errorsx.Error {
	if len(data) != len(l.data) {
		return errorsx.Wrap(ErrInvalidSize, "layer", l.Name, "expected", len(l.data), "got", len(data))
	}
	copy(l.data, data)
	if !l.attached {
		l.detach()
	}
	return nil
}

func (l *TileLayer) detach() {
	l.refs = make([]*TilesetTile, len(l.data))
	for i, v := range l.data {
		if v.IsEmpty() {
			continue
		}
		tt, err := l.m.Tilesets.ResolveTile(v.GID())
		if err == nil {
			l.refs[i] = tt
		}
	}
}

func (l *TileLayer) checkAttach() errorsx.Error {
	for _, tt := range l.refs {
		if tt != nil && !l.m.Tilesets.Contains(tt.tileset) {
			return errorsx.Wrap(ErrTilesetNotInMap, "tileset", tt.tileset.Name, "layer", l.Name)
		}
	}
	return nil
}

// attach rewrites each remembered cell with its tile's GID in the current numbering.
func (l *TileLayer) attach() {
	for i, tt := range l.refs {
		if tt == nil {
			continue
		}
		gid, _ := tt.GID(l.m)
		l.data[i] = l.data[i].WithGID(gid)
	}
	l.refs = nil
}

func (l *TileLayer) Tiles() []*Tile {
	w := l.m.size.Width
	tiles := make([]*Tile, len(l.data))
	for i := range l.data {
		tiles[i] = &Tile{layer: l, x: i % w, y: i / w}
	}
	return tiles
}

func (l *TileLayer) IsEmpty() bool {
	for _, v := range l.data {
		if !v.IsEmpty() {
			return false
		}
	}
	return true
}

// ImageLayer shows a single image.
type ImageLayer struct {
	LayerBase
	Image tmximage.Image
	// TransparentColor is the image colour key, if any.
	TransparentColor *tmxcolor.Color
}

func NewImageLayer(m *Map, name string, img tmximage.Image) *ImageLayer {
	return &ImageLayer{
		LayerBase: newLayerBase(m, name),
		Image:     img,
	}
}

func (l *ImageLayer) Kind() LayerKind {
	return LayerKindImage
}

func (l *ImageLayer) IsEmpty() bool {
	return l.Image == nil
}

func (l *ImageLayer) Tiles() []*Tile {
	return nil
}

// LayerList is the ordered list of a map's layers. Layers belong to one map and cannot be shared.
type LayerList struct {
	*namedlist.List[Layer]
	m *Map
}

func newLayerList(m *Map) *LayerList {
	l := &LayerList{m: m}
	l.List = namedlist.New[Layer](&layerListHooks{m: m})
	return l
}

// TileLayers returns the tile layers, in order.
func (l *LayerList) TileLayers() []*TileLayer {
	var out []*TileLayer
	for _, layer := range l.Items() {
		if tl, ok := layer.(*TileLayer); ok {
			out = append(out, tl)
		}
	}
	return out
}

type layerListHooks struct {
	namedlist.BaseHooks[Layer]
	m *Map
}

func (h *layerListHooks) Stored(layer Layer) (Layer, errorsx.Error) {
	if layer == nil {
		return nil, errorsx.Errorf("nil layer")
	}
	if layer.Map() != h.m {
		return nil, errorsx.Wrap(ErrForeignLayer, "layer", layer.GetName())
	}
	return layer, nil
}

// DidMutate takes removed layers out of the GID numbering and brings added ones back into it.
// Added layers are checked first so that a failing edit changes nothing.
func (h *layerListHooks) DidMutate(previous, current []Layer) errorsx.Error {
	removed, added := diff(previous, current, func(layer Layer) *LayerBase { return layer.Base() })
	for _, layer := range added {
		err := layer.checkAttach()
		if err != nil {
			return err
		}
	}
	for _, layer := range removed {
		layer.detach()
		layer.Base().attached = false
	}
	for _, layer := range added {
		layer.attach()
		layer.Base().attached = true
	}
	return nil
}

// diff returns the items of previous missing from current and the items of current missing from previous.
func diff[T any, K comparable](previous, current []T, key func(T) K) (removed, added []T) {
	inPrevious := make(map[K]bool, len(previous))
	for _, item := range previous {
		inPrevious[key(item)] = true
	}
	inCurrent := make(map[K]bool, len(current))
	for _, item := range current {
		k := key(item)
		if !inCurrent[k] && !inPrevious[k] {
			added = append(added, item)
		}
		inCurrent[k] = true
	}
	for _, item := range previous {
		k := key(item)
		if !inCurrent[k] {
			removed = append(removed, item)
			inCurrent[k] = true
		}
	}
	return removed, added
}
