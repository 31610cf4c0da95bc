package tilemap

import (
	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/tmxkit/namedlist"
	"github.com/jamesrr39/tmxkit/properties"
	"github.com/jamesrr39/tmxkit/tmxcolor"
	"github.com/paulmach/orb"
)

type ObjectKind string

const (
	ObjectKindRectangle ObjectKind = "rectangle"
	ObjectKindEllipse   ObjectKind = "ellipse"
	ObjectKindPoint     ObjectKind = "point"
	ObjectKindPolygon   ObjectKind = "polygon"
	ObjectKindPolyline  ObjectKind = "polyline"
	ObjectKindTile      ObjectKind = "tile"
)

// Shape is one of Rectangle, Ellipse, Point, *Polygon, *Polyline or *TileShape.
type Shape interface {
	Kind() ObjectKind
	isShape()
}

type Rectangle struct{}
type Ellipse struct{}
type Point struct{}

// Polygon is a closed shape. Points are relative to the object position.
type Polygon struct {
	Points orb.Ring
}

// Polyline is an open path. Points are relative to the object position.
type Polyline struct {
	Points orb.LineString
}

// TileShape places a tileset tile, with its own flip state.
type TileShape struct {
	Value TileValue
}

func (Rectangle) Kind() ObjectKind  { return ObjectKindRectangle }
func (Ellipse) Kind() ObjectKind    { return ObjectKindEllipse }
func (Point) Kind() ObjectKind      { return ObjectKindPoint }
func (*Polygon) Kind() ObjectKind   { return ObjectKindPolygon }
func (*Polyline) Kind() ObjectKind  { return ObjectKindPolyline }
func (*TileShape) Kind() ObjectKind { return ObjectKindTile }

func (Rectangle) isShape()  {}
func (Ellipse) isShape()    {}
func (Point) isShape()      {}
func (*Polygon) isShape()   {}
func (*Polyline) isShape()  {}
func (*TileShape) isShape() {}

// MapObject is a freely placed shape or tile on an object layer. Position and Size are in pixels.
// Rotation is in degrees clockwise and is unrelated to the flip state of tile objects.
type MapObject struct {
	ID       int
	Name     string
	Type     string
	Position orb.Point
	Width    float64
	Height   float64
	Rotation float64
	Visible  bool
	Shape    Shape
	// Properties are the object's own properties. Tile objects also inherit their tile's properties.
	Properties *properties.Store

	layer *ObjectLayer
	held  *heldTile
}

// heldTile remembers the tileset tile of a tile object that is outside its map's GID numbering.
// It only stands while the object keeps the same TileShape and GID.
type heldTile struct {
	shape *TileShape
	gid   uint32
	tile  *TilesetTile
}

// NewObject creates an object with the given shape. A nil shape is a rectangle.
func NewObject(name string, position orb.Point, shape Shape) *MapObject {
	if shape == nil {
		shape = Rectangle{}
	}
	return &MapObject{
		Name:       name,
		Position:   position,
		Visible:    true,
		Shape:      shape,
		Properties: properties.NewStore(),
	}
}

func (o *MapObject) GetName() string {
	return o.Name
}

func (o *MapObject) Kind() ObjectKind {
	return o.Shape.Kind()
}

// Layer is the object layer holding the object, nil if it is not on one.
func (o *MapObject) Layer() *ObjectLayer {
	return o.layer
}

// Tile returns a live handle onto the tile of a tile object, or nil for other shapes.
func (o *MapObject) Tile() *Tile {
	if _, ok := o.Shape.(*TileShape); !ok || o.layer == nil {
		return nil
	}
	return &Tile{object: o}
}

func (o *MapObject) live() bool {
	return o.layer != nil && o.layer.attached
}

func (o *MapObject) heldTile() *TilesetTile {
	ts, ok := o.Shape.(*TileShape)
	if !ok || o.held == nil || o.held.shape != ts || o.held.gid != ts.Value.GID() {
		return nil
	}
	return o.held.tile
}

func (o *MapObject) holdTile(tt *TilesetTile) {
	ts, ok := o.Shape.(*TileShape)
	if !ok || tt == nil {
		o.held = nil
		return
	}
	o.held = &heldTile{shape: ts, gid: ts.Value.GID(), tile: tt}
}

// detachTile remembers the tile the object shows in m's current numbering.
func (o *MapObject) detachTile(m *Map) {
	ts, ok := o.Shape.(*TileShape)
	if !ok || ts.Value.IsEmpty() {
		o.held = nil
		return
	}
	tt, err := m.Tilesets.ResolveTile(ts.Value.GID())
	if err != nil {
		o.held = nil
		return
	}
	o.holdTile(tt)
}

func (o *MapObject) checkTile(m *Map, live, unchecked bool) errorsx.Error {
	ts, ok := o.Shape.(*TileShape)
	if !ok {
		return nil
	}
	if tt := o.heldTile(); tt != nil {
		if live && !m.Tilesets.Contains(tt.tileset) {
			return errorsx.Wrap(ErrTilesetNotInMap, "tileset", tt.tileset.Name, "object", o.Name)
		}
		return nil
	}
	if unchecked {
		return nil
	}
	err := m.validateValue(ts.Value)
	if err != nil {
		return errorsx.Wrap(err, "object", o.Name)
	}
	return nil
}

// attachTile rewrites a remembered tile with its GID in m's current numbering.
func (o *MapObject) attachTile(m *Map) {
	tt := o.heldTile()
	o.held = nil
	if tt == nil {
		return
	}
	gid, err := tt.GID(m)
	if err != nil {
		return
	}
	ts := o.Shape.(*TileShape)
	ts.Value = ts.Value.WithGID(gid)
}

// Bound is the object's bounding box in map pixels, ignoring rotation.
func (o *MapObject) Bound() orb.Bound {
	switch s := o.Shape.(type) {
	case *Polygon:
		return translate(s.Points.Bound(), o.Position)
	case *Polyline:
		return translate(s.Points.Bound(), o.Position)
	case *TileShape:
		// tile objects are anchored at their bottom-left corner
		return orb.Bound{
			Min: orb.Point{o.Position.X(), o.Position.Y() - o.Height},
			Max: orb.Point{o.Position.X() + o.Width, o.Position.Y()},
		}
	}
	return orb.Bound{
		Min: o.Position,
		Max: orb.Point{o.Position.X() + o.Width, o.Position.Y() + o.Height},
	}
}

// ObjectLayer holds map objects. DrawOrder is "topdown" or "index".
type ObjectLayer struct {
	LayerBase
	Color     *tmxcolor.Color
	DrawOrder string
	Objects   *namedlist.List[*MapObject]

	hooks *objectListHooks
}

func NewObjectLayer(m *Map, name string) *ObjectLayer {
	l := &ObjectLayer{LayerBase: newLayerBase(m, name)}
	l.hooks = &objectListHooks{layer: l}
	l.Objects = namedlist.New[*MapObject](l.hooks)
	return l
}

func (l *ObjectLayer) Kind() LayerKind {
	return LayerKindObjects
}

func (l *ObjectLayer) IsEmpty() bool {
	return l.Objects.Len() == 0
}

func (l *ObjectLayer) Tiles() []*Tile {
	var tiles []*Tile
	for _, o := range l.Objects.Items() {
		if t := o.Tile(); t != nil {
			tiles = append(tiles, t)
		}
	}
	return tiles
}

func (l *ObjectLayer) detach() {
	for _, obj := range l.Objects.Items() {
		obj.detachTile(l.m)
	}
}

func (l *ObjectLayer) checkAttach() errorsx.Error {
	for _, obj := range l.Objects.Items() {
		err := obj.checkTile(l.m, true, true)
		if err != nil {
			return errorsx.Wrap(err, "layer", l.Name)
		}
	}
	return nil
}

func (l *ObjectLayer) attach() {
	for _, obj := range l.Objects.Items() {
		obj.attachTile(l.m)
	}
}

// AddObject appends obj, giving it the map's next object id if it has none.
// The value of a tile object must be covered by the map's tilesets.
func (l *ObjectLayer) AddObject(obj *MapObject) errorsx.Error {
	return l.addObject(obj, false)
}

// LoadObject is AddObject for decoders: a tile object's GID is kept as read,
// even when no tileset covers it. Map.CheckConsistency reports such values.
func (l *ObjectLayer) LoadObject(obj *MapObject) errorsx.Error {
	return l.addObject(obj, true)
}

func (l *ObjectLayer) addObject(obj *MapObject, unchecked bool) errorsx.Error {
	if obj == nil {
		return errorsx.Errorf("nil object")
	}
	l.hooks.unchecked = unchecked
	err := l.Objects.Append(obj)
	l.hooks.unchecked = false
	if err != nil {
		return err
	}
	switch {
	case obj.ID == 0:
		obj.ID = l.m.allocObjectID()
	case obj.ID >= l.m.NextObjectID:
		l.m.NextObjectID = obj.ID + 1
	}
	return nil
}

// AddTileObject places tt at position. The tileset is added to the map if needed,
// and the object takes the tile's pixel size.
func (l *ObjectLayer) AddTileObject(name string, position orb.Point, tt *TilesetTile) (*MapObject, errorsx.Error) {
	gid, err := l.m.gidForAdding(tt)
	if err != nil {
		return nil, err
	}
	size := tt.PixelSize()
	obj := NewObject(name, position, &TileShape{Value: NewTileValue(gid, FlipFlags{})})
	obj.Width, obj.Height = float64(size.Width), float64(size.Height)
	err = l.AddObject(obj)
	if err != nil {
		return nil, err
	}
	return obj, nil
}

type objectListHooks struct {
	namedlist.BaseHooks[*MapObject]
	layer *ObjectLayer

	// unchecked skips GID validation of added tile objects.
	unchecked bool
}

func (h *objectListHooks) Stored(obj *MapObject) (*MapObject, errorsx.Error) {
	if obj == nil {
		return nil, errorsx.Errorf("nil object")
	}
	if obj.layer != nil && obj.layer != h.layer {
		return nil, errorsx.Wrap(ErrForeignObject, "object", obj.Name, "layer", h.layer.Name)
	}
	if obj.Shape == nil {
		obj.Shape = Rectangle{}
	}
	return obj, nil
}

// DidMutate checks the tiles of added objects before moving any object in or out of the layer.
func (h *objectListHooks) DidMutate(previous, current []*MapObject) errorsx.Error {
	removed, added := diff(previous, current, func(obj *MapObject) *MapObject { return obj })
	m, live := h.layer.m, h.layer.attached
	for _, obj := range added {
		err := obj.checkTile(m, live, h.unchecked)
		if err != nil {
			return err
		}
	}
	for _, obj := range removed {
		if live {
			obj.detachTile(m)
		}
		obj.layer = nil
	}
	for _, obj := range added {
		obj.layer = h.layer
		switch {
		case live:
			obj.attachTile(m)
		case obj.heldTile() == nil:
			obj.detachTile(m)
		}
	}
	return nil
}

func translate(b orb.Bound, by orb.Point) orb.Bound {
	return orb.Bound{
		Min: orb.Point{b.Min.X() + by.X(), b.Min.Y() + by.Y()},
		Max: orb.Point{b.Max.X() + by.X(), b.Max.Y() + by.Y()},
	}
}
