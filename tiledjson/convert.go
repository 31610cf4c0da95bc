package tiledjson

import (
	"path/filepath"
	"strconv"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/gofs"
	"github.com/jamesrr39/tmxkit/properties"
	"github.com/jamesrr39/tmxkit/tilemap"
	"github.com/jamesrr39/tmxkit/tmxcolor"
	"github.com/jamesrr39/tmxkit/tmximage"
	"github.com/paulmach/orb"
	"golang.org/x/exp/errors/fmt"
)

// TilesetOpener loads external tilesets referenced by documents. *tmxfile.Serializer implements it.
type TilesetOpener interface {
	OpenTileset(path string) (*tilemap.Tileset, errorsx.Error)
}

type Converter struct {
	fs       gofs.Fs
	tilesets TilesetOpener
}

// NewConverter creates a converter. tilesets may be nil when documents never reference external tilesets.
func NewConverter(fs gofs.Fs, tilesets TilesetOpener) *Converter {
	return &Converter{fs: fs, tilesets: tilesets}
}

// ToDocument describes m. File references are written relative to baseDir.
func (c *Converter) ToDocument(m *tilemap.Map, baseDir string) (*Document, errorsx.Error) {
	doc := &Document{
		Type:          documentType,
		Version:       documentVersion,
		TiledVersion:  m.TiledVersion,
		Orientation:   m.Orientation,
		RenderOrder:   m.RenderOrder,
		Width:         m.Size().Width,
		Height:        m.Size().Height,
		TileWidth:     m.TileSize().Width,
		TileHeight:    m.TileSize().Height,
		Infinite:      m.Infinite,
		HexSideLength: m.HexSideLength,
		StaggerAxis:   m.StaggerAxis,
		StaggerIndex:  m.StaggerIndex,
		NextLayerID:   m.NextLayerID,
		NextObjectID:  m.NextObjectID,
		Properties:    propertiesToDoc(m.Properties),
		Tilesets:      []*Tileset{},
		Layers:        []*Layer{},
	}
	if m.BackgroundColor != nil {
		doc.BackgroundColor = m.BackgroundColor.Hex()
	}

	for _, ts := range m.Tilesets.Items() {
		first, err := ts.FirstGID(m)
		if err != nil {
			return nil, err
		}
		if ts.Source != "" {
			doc.Tilesets = append(doc.Tilesets, &Tileset{FirstGID: first, Source: relPath(baseDir, ts.Source)})
			continue
		}
		dts, err := c.tilesetToDoc(ts, baseDir)
		if err != nil {
			return nil, err
		}
		dts.FirstGID = first
		doc.Tilesets = append(doc.Tilesets, dts)
	}

	for _, layer := range m.Layers.Items() {
		base := layer.Base()
		dl := &Layer{
			ID:         base.ID,
			Name:       base.Name,
			Type:       string(layer.Kind()),
			Visible:    base.Visible,
			Opacity:    base.Opacity,
			OffsetX:    base.Offset.X,
			OffsetY:    base.Offset.Y,
			Properties: propertiesToDoc(base.Properties),
		}
		switch l := layer.(type) {
		case *tilemap.TileLayer:
			dl.Width, dl.Height = l.Size().Width, l.Size().Height
			values := l.Data()
			dl.Data = make([]uint32, len(values))
			for i, v := range values {
				dl.Data[i] = uint32(v)
			}
		case *tilemap.ObjectLayer:
			if l.Color != nil {
				dl.Color = l.Color.Hex()
			}
			dl.DrawOrder = l.DrawOrder
			dl.Objects = []*Object{}
			for _, obj := range l.Objects.Items() {
				dl.Objects = append(dl.Objects, objectToDoc(obj))
			}
		case *tilemap.ImageLayer:
			if l.Image != nil {
				source, _, _, err := imageSource(l.Image, baseDir)
				if err != nil {
					return nil, errorsx.Wrap(err, "layer", l.Name)
				}
				dl.Image = source
			}
			if l.TransparentColor != nil {
				dl.TransparentColor = l.TransparentColor.Hex()
			}
		}
		doc.Layers = append(doc.Layers, dl)
	}
	return doc, nil
}

func (c *Converter) tilesetToDoc(ts *tilemap.Tileset, baseDir string) (*Tileset, errorsx.Error) {
	dts := &Tileset{
		Name:       ts.Name,
		TileWidth:  ts.TileSize.Width,
		TileHeight: ts.TileSize.Height,
		TileCount:  ts.Len(),
		Columns:    ts.Columns(),
		Properties: propertiesToDoc(ts.Properties),
	}
	if ts.TileOffset != (tilemap.Offset{}) {
		dts.TileOffset = &Offset{X: ts.TileOffset.X, Y: ts.TileOffset.Y}
	}

	if ts.Kind() == tilemap.TilesetKindImage {
		source, w, h, err := imageSource(ts.Image(), baseDir)
		if err != nil {
			return nil, errorsx.Wrap(err, "tileset", ts.Name)
		}
		dts.Image, dts.ImageWidth, dts.ImageHeight = source, w, h
		dts.Margin = ts.Margin()
		dts.Spacing = ts.Spacing()
		if trans := ts.TransparentColor(); trans != nil {
			dts.TransparentColor = trans.Hex()
		}
	}

	for _, terrain := range ts.Terrains.Items() {
		number := -1
		if terrain.Tile != nil {
			number = terrain.Tile.Number()
		}
		dts.Terrains = append(dts.Terrains, &Terrain{
			Name:       terrain.Name,
			Tile:       number,
			Properties: propertiesToDoc(terrain.Properties),
		})
	}

	for _, tt := range ts.Tiles() {
		dt := &Tile{
			ID:          tt.Number(),
			Probability: tt.Probability,
			Terrain:     tt.TerrainIndices,
			Properties:  propertiesToDoc(tt.Properties),
		}
		if ts.Kind() == tilemap.TilesetKindIndividual {
			if img := tt.Image(); img != nil {
				source, w, h, err := imageSource(img, baseDir)
				if err != nil {
					return nil, errorsx.Wrap(err, "tileset", ts.Name, "tile", tt.Number())
				}
				dt.Image, dt.ImageWidth, dt.ImageHeight = source, w, h
			}
		}
		if dt.Image == "" && dt.Probability == nil && len(dt.Terrain) == 0 && len(dt.Properties) == 0 {
			continue
		}
		dts.Tiles = append(dts.Tiles, dt)
	}
	return dts, nil
}

func imageSource(img tmximage.Image, baseDir string) (string, int, int, errorsx.Error) {
	fi, ok := img.(*tmximage.FileImage)
	if !ok {
		return "", 0, 0, errorsx.Wrap(tmximage.ErrImageDataNotAvailable, "reason", "only images loaded from files can be referenced from a document")
	}
	return relPath(baseDir, fi.Path()), fi.Width(), fi.Height(), nil
}

func objectToDoc(obj *tilemap.MapObject) *Object {
	do := &Object{
		ID:         obj.ID,
		Name:       obj.Name,
		Type:       obj.Type,
		X:          obj.Position.X(),
		Y:          obj.Position.Y(),
		Width:      obj.Width,
		Height:     obj.Height,
		Rotation:   obj.Rotation,
		Visible:    obj.Visible,
		Properties: propertiesToDoc(obj.Properties),
	}
	switch s := obj.Shape.(type) {
	case *tilemap.TileShape:
		do.GID = uint32(s.Value)
	case tilemap.Ellipse:
		do.Ellipse = true
	case tilemap.Point:
		do.Point = true
	case *tilemap.Polygon:
		do.Polygon = pointsToDoc(s.Points)
	case *tilemap.Polyline:
		do.Polyline = pointsToDoc(s.Points)
	}
	return do
}

func pointsToDoc(points []orb.Point) []Point {
	out := make([]Point, len(points))
	for i, p := range points {
		out[i] = Point{X: p.X(), Y: p.Y()}
	}
	return out
}

func propertiesToDoc(store *properties.Store) []Property {
	var out []Property
	store.Each(func(name string, value properties.Value) {
		p := Property{Name: name, Type: string(value.Type())}
		switch value.Type() {
		case properties.TypeInt:
			p.Value = value.AsInt()
		case properties.TypeFloat:
			p.Value = value.AsFloat()
		case properties.TypeBool:
			p.Value = value.AsBool()
		default:
			p.Value = value.Raw()
		}
		out = append(out, p)
	})
	return out
}

// FromDocument builds a map from doc. Relative file references are resolved against baseDir.
func (c *Converter) FromDocument(doc *Document, baseDir string) (*tilemap.Map, errorsx.Error) {
	if doc.Type != "" && doc.Type != documentType {
		return nil, errorsx.Wrap(ErrUnsupportedDocument, "type", doc.Type)
	}
	if doc.Infinite {
		return nil, errorsx.Wrap(ErrUnsupportedDocument, "reason", "infinite maps are stored in chunks, which are not supported")
	}

	m, err := tilemap.NewMap(
		tilemap.Size{Width: doc.Width, Height: doc.Height},
		tilemap.Size{Width: doc.TileWidth, Height: doc.TileHeight},
		doc.Orientation,
	)
	if err != nil {
		return nil, err
	}
	if doc.Version != "" {
		m.Version = doc.Version
	}
	m.TiledVersion = doc.TiledVersion
	m.RenderOrder = doc.RenderOrder
	m.HexSideLength = doc.HexSideLength
	m.StaggerAxis = doc.StaggerAxis
	m.StaggerIndex = doc.StaggerIndex
	if doc.NextLayerID > 0 {
		m.NextLayerID = doc.NextLayerID
	}
	if doc.NextObjectID > 0 {
		m.NextObjectID = doc.NextObjectID
	}
	m.BackgroundColor, err = parseOptionalColor("backgroundcolor", doc.BackgroundColor)
	if err != nil {
		return nil, err
	}
	err = propertiesFromDoc(m.Properties, doc.Properties)
	if err != nil {
		return nil, err
	}

	var recorded []uint32
	for _, dts := range doc.Tilesets {
		ts, err := c.tilesetFromDoc(dts, baseDir)
		if err != nil {
			return nil, err
		}
		err = m.Tilesets.Append(ts)
		if err != nil {
			return nil, errorsx.Wrap(err, "tileset", ts.Name)
		}
		first := dts.FirstGID
		if first == 0 {
			first, _ = ts.FirstGID(m)
		}
		recorded = append(recorded, first)
	}
	remap, err := tilemap.NewGIDRemap(m, recorded)
	if err != nil {
		return nil, err
	}

	for _, dl := range doc.Layers {
		layer, err := c.layerFromDoc(m, dl, remap, baseDir)
		if err != nil {
			return nil, errorsx.Wrap(err, "layer", dl.Name)
		}
		err = m.AddLayer(layer, tilemap.AtEnd())
		if err != nil {
			return nil, errorsx.Wrap(err, "layer", dl.Name)
		}
	}
	return m, nil
}

func (c *Converter) tilesetFromDoc(dts *Tileset, baseDir string) (*tilemap.Tileset, errorsx.Error) {
	if dts.Source != "" {
		if c.tilesets == nil {
			return nil, errorsx.Wrap(ErrUnsupportedDocument, "reason", "no tileset opener for external tileset", "source", dts.Source)
		}
		path := dts.Source
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		return c.tilesets.OpenTileset(path)
	}

	tileSize := tilemap.Size{Width: dts.TileWidth, Height: dts.TileHeight}
	var ts *tilemap.Tileset
	var err errorsx.Error
	if dts.Image != "" {
		img := tmximage.NewFileImage(c.fs, baseDir, dts.Image, dts.ImageWidth, dts.ImageHeight)
		img.Trans, err = parseOptionalColor("transparentcolor", dts.TransparentColor)
		if err != nil {
			return nil, err
		}
		if dts.ImageWidth == 0 || dts.ImageHeight == 0 {
			err = img.Load()
			if err != nil {
				return nil, errorsx.Wrap(err, "tileset", dts.Name)
			}
		}
		ts, err = tilemap.NewImageTileset(dts.Name, tileSize, img, dts.Margin, dts.Spacing)
		if err != nil {
			return nil, err
		}
	} else {
		count := dts.TileCount
		for _, dt := range dts.Tiles {
			if dt.ID+1 > count {
				count = dt.ID + 1
			}
		}
		images := make([]tmximage.Image, count)
		for _, dt := range dts.Tiles {
			if dt.ID < 0 {
				return nil, errorsx.Wrap(ErrUnsupportedDocument, "tileset", dts.Name, "tile", dt.ID)
			}
			if dt.Image != "" {
				images[dt.ID] = tmximage.NewFileImage(c.fs, baseDir, dt.Image, dt.ImageWidth, dt.ImageHeight)
			}
		}
		ts, err = tilemap.NewIndividualTileset(dts.Name, tileSize, images)
		if err != nil {
			return nil, err
		}
		if dts.Columns > 0 {
			ts.SetColumns(dts.Columns)
		}
	}

	if dts.TileOffset != nil {
		ts.TileOffset = tilemap.Offset{X: dts.TileOffset.X, Y: dts.TileOffset.Y}
	}
	err = propertiesFromDoc(ts.Properties, dts.Properties)
	if err != nil {
		return nil, err
	}

	for _, dt := range dts.Terrains {
		var tile *tilemap.TilesetTile
		if dt.Tile >= 0 {
			tile, err = ts.Tile(dt.Tile)
			if err != nil {
				return nil, errorsx.Wrap(err, "terrain", dt.Name)
			}
		}
		terrain, err := ts.Terrains.AppendNew(dt.Name, tile)
		if err != nil {
			return nil, err
		}
		err = propertiesFromDoc(terrain.Properties, dt.Properties)
		if err != nil {
			return nil, err
		}
	}

	for _, dt := range dts.Tiles {
		if dt.ID < 0 || dt.ID >= ts.Len() {
			return nil, errorsx.Wrap(ErrUnsupportedDocument, "tileset", dts.Name, "tile", dt.ID, "tilecount", ts.Len())
		}
		tt, err := ts.Tile(dt.ID)
		if err != nil {
			return nil, err
		}
		tt.Probability = dt.Probability
		tt.TerrainIndices = dt.Terrain
		err = propertiesFromDoc(tt.Properties, dt.Properties)
		if err != nil {
			return nil, err
		}
	}
	return ts, nil
}

func (c *Converter) layerFromDoc(m *tilemap.Map, dl *Layer, remap *tilemap.GIDRemap, baseDir string) (tilemap.Layer, errorsx.Error) {
	var layer tilemap.Layer
	switch tilemap.LayerKind(dl.Type) {
	case tilemap.LayerKindTiles:
		tl := tilemap.NewTileLayer(m, dl.Name)
		tl.DeclaredSize = tilemap.Size{Width: dl.Width, Height: dl.Height}
		size := m.Size()
		if len(dl.Data) != size.Width*size.Height {
			return nil, errorsx.Wrap(ErrUnsupportedDocument, "reason", "wrong number of tiles in layer data", "expected", size.Width*size.Height, "got", len(dl.Data))
		}
		values := make([]tilemap.TileValue, len(dl.Data))
		for i, v := range dl.Data {
			values[i] = remap.Apply(tilemap.TileValue(v))
		}
		err := tl.LoadData(values)
		if err != nil {
			return nil, err
		}
		layer = tl
	case tilemap.LayerKindObjects:
		ol := tilemap.NewObjectLayer(m, dl.Name)
		color, err := parseOptionalColor("color", dl.Color)
		if err != nil {
			return nil, err
		}
		ol.Color = color
		ol.DrawOrder = dl.DrawOrder
		for _, do := range dl.Objects {
			obj, err := objectFromDoc(do, remap)
			if err != nil {
				return nil, err
			}
			err = ol.LoadObject(obj)
			if err != nil {
				return nil, err
			}
		}
		layer = ol
	case tilemap.LayerKindImage:
		var img tmximage.Image
		trans, err := parseOptionalColor("transparentcolor", dl.TransparentColor)
		if err != nil {
			return nil, err
		}
		if dl.Image != "" {
			fi := tmximage.NewFileImage(c.fs, baseDir, dl.Image, 0, 0)
			fi.Trans = trans
			img = fi
		}
		il := tilemap.NewImageLayer(m, dl.Name, img)
		il.TransparentColor = trans
		layer = il
	default:
		return nil, errorsx.Wrap(ErrUnsupportedDocument, "layerType", dl.Type)
	}

	base := layer.Base()
	base.ID = dl.ID
	base.Visible = dl.Visible
	base.Opacity = dl.Opacity
	base.Offset = tilemap.Offset{X: dl.OffsetX, Y: dl.OffsetY}
	err := propertiesFromDoc(base.Properties, dl.Properties)
	if err != nil {
		return nil, err
	}
	return layer, nil
}

func objectFromDoc(do *Object, remap *tilemap.GIDRemap) (*tilemap.MapObject, errorsx.Error) {
	var shape tilemap.Shape
	switch {
	case do.GID != 0:
		shape = &tilemap.TileShape{Value: remap.Apply(tilemap.TileValue(do.GID))}
	case do.Ellipse:
		shape = tilemap.Ellipse{}
	case do.Point:
		shape = tilemap.Point{}
	case len(do.Polygon) > 0:
		shape = &tilemap.Polygon{Points: orb.Ring(pointsFromDoc(do.Polygon))}
	case len(do.Polyline) > 0:
		shape = &tilemap.Polyline{Points: orb.LineString(pointsFromDoc(do.Polyline))}
	}

	obj := tilemap.NewObject(do.Name, orb.Point{do.X, do.Y}, shape)
	obj.ID = do.ID
	obj.Type = do.Type
	obj.Width = do.Width
	obj.Height = do.Height
	obj.Rotation = do.Rotation
	obj.Visible = do.Visible
	err := propertiesFromDoc(obj.Properties, do.Properties)
	if err != nil {
		return nil, errorsx.Wrap(err, "object", do.Name)
	}
	return obj, nil
}

func pointsFromDoc(points []Point) []orb.Point {
	out := make([]orb.Point, len(points))
	for i, p := range points {
		out[i] = orb.Point{p.X, p.Y}
	}
	return out
}

func propertiesFromDoc(store *properties.Store, props []Property) errorsx.Error {
	for _, p := range props {
		t, err := properties.ParseType(p.Type)
		if err != nil {
			// types this package does not model, such as object references, are kept as text
			t = properties.TypeString
		}
		err = store.SetRaw(p.Name, t, rawValue(p.Value))
		if err != nil {
			return errorsx.Wrap(err, "property", p.Name)
		}
	}
	return nil
}

// rawValue turns a decoded scalar into its TMX text form. JSON numbers arrive as float64,
// YAML integers as int.
func rawValue(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	}
	return fmt.Sprint(v)
}

func parseOptionalColor(field, s string) (*tmxcolor.Color, errorsx.Error) {
	if s == "" {
		return nil, nil
	}
	c, err := tmxcolor.ParseHex(s)
	if err != nil {
		return nil, errorsx.Wrap(ErrUnsupportedDocument, "field", field, "value", s)
	}
	return &c, nil
}

func relPath(baseDir, target string) string {
	if baseDir == "" {
		return target
	}
	rel, err := filepath.Rel(baseDir, target)
	if err != nil {
		return target
	}
	return filepath.ToSlash(rel)
}
