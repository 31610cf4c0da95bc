package tmxfile

import (
	"path/filepath"
	"strings"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/tmxkit/tilemap"
	"github.com/jamesrr39/tmxkit/tmximage"
	"github.com/paulmach/orb"
)

type mapReader struct {
	s       *Serializer
	baseDir string
}

func (r *mapReader) readMap(doc *xmlMap) (*tilemap.Map, errorsx.Error) {
	ar := &attrReader{element: "map"}
	size := tilemap.Size{
		Width:  ar.requiredInt("width", doc.Width),
		Height: ar.requiredInt("height", doc.Height),
	}
	tileSize := tilemap.Size{
		Width:  ar.requiredInt("tilewidth", doc.TileWidth),
		Height: ar.requiredInt("tileheight", doc.TileHeight),
	}
	hexSideLength := ar.optionalInt("hexsidelength", doc.HexSideLength, 0)
	infinite := ar.optionalBool("infinite", doc.Infinite, false)
	backgroundColor := ar.optionalColor("backgroundcolor", doc.BackgroundColor)
	nextLayerID := ar.optionalInt("nextlayerid", doc.NextLayerID, 1)
	nextObjectID := ar.optionalInt("nextobjectid", doc.NextObjectID, 1)
	if ar.err != nil {
		return nil, ar.err
	}
	if infinite {
		return nil, errorsx.Wrap(ErrUnsupportedEncoding, "reason", "infinite maps are stored in chunks, which are not supported")
	}

	m, err := tilemap.NewMap(size, tileSize, doc.Orientation)
	if err != nil {
		return nil, err
	}
	if doc.Version != "" {
		m.Version = doc.Version
	}
	m.TiledVersion = doc.TiledVersion
	m.RenderOrder = doc.RenderOrder
	m.StaggerAxis = doc.StaggerAxis
	m.StaggerIndex = doc.StaggerIndex
	m.HexSideLength = hexSideLength
	m.BackgroundColor = backgroundColor
	m.NextLayerID = nextLayerID
	m.NextObjectID = nextObjectID

	for _, name := range doc.Skipped {
		r.s.logger.Warn("skipping unsupported map element <%s>", name)
	}

	err = readProperties(r.s.logger, m.Properties, doc.Properties)
	if err != nil {
		return nil, err
	}

	var recordedFirstGIDs []uint32
	for _, xts := range doc.Tilesets {
		ts, recorded, err := r.readMapTileset(xts)
		if err != nil {
			return nil, err
		}
		err = m.Tilesets.Append(ts)
		if err != nil {
			return nil, errorsx.Wrap(err, "tileset", ts.Name)
		}
		actual, err := ts.FirstGID(m)
		if err != nil {
			return nil, err
		}
		if recorded != actual {
			r.s.logger.Warn("tileset %q: firstgid is %d in the document but %d after numbering; tile values are remapped", ts.Name, recorded, actual)
		}
		recordedFirstGIDs = append(recordedFirstGIDs, recorded)
	}
	remap, err := tilemap.NewGIDRemap(m, recordedFirstGIDs)
	if err != nil {
		return nil, err
	}

	for _, xl := range doc.Layers {
		var layer tilemap.Layer
		switch l := xl.(type) {
		case *xmlLayer:
			layer, err = r.readTileLayer(m, l, remap)
		case *xmlObjectGroup:
			layer, err = r.readObjectLayer(m, l, remap)
		case *xmlImageLayer:
			layer, err = r.readImageLayer(m, l)
		}
		if err != nil {
			return nil, err
		}
		err = m.AddLayer(layer, tilemap.AtEnd())
		if err != nil {
			return nil, errorsx.Wrap(err, "layer", layer.GetName())
		}
	}

	return m, nil
}

func (r *mapReader) readMapTileset(xts *xmlTileset) (*tilemap.Tileset, uint32, errorsx.Error) {
	ar := &attrReader{element: "tileset"}
	firstGID := ar.requiredInt("firstgid", xts.FirstGID)
	if ar.err == nil && firstGID < 1 {
		ar.fail("firstgid", xts.FirstGID, "must be at least 1")
	}
	if ar.err != nil {
		return nil, 0, ar.err
	}

	if xts.Source != "" {
		path := xts.Source
		if !filepath.IsAbs(path) {
			path = filepath.Join(r.baseDir, path)
		}
		ts, err := r.s.OpenTileset(path)
		if err != nil {
			return nil, 0, err
		}
		return ts, uint32(firstGID), nil
	}

	ts, err := r.readTileset(xts)
	if err != nil {
		return nil, 0, err
	}
	return ts, uint32(firstGID), nil
}

func (r *mapReader) readTileset(xts *xmlTileset) (*tilemap.Tileset, errorsx.Error) {
	ar := &attrReader{element: "tileset"}
	tileSize := tilemap.Size{
		Width:  ar.requiredInt("tilewidth", xts.TileWidth),
		Height: ar.requiredInt("tileheight", xts.TileHeight),
	}
	spacing := ar.optionalInt("spacing", xts.Spacing, 0)
	margin := ar.optionalInt("margin", xts.Margin, 0)
	tileCount := ar.optionalInt("tilecount", xts.TileCount, -1)
	columns := ar.optionalInt("columns", xts.Columns, 0)
	var offset tilemap.Offset
	if xts.TileOffset != nil {
		offset.X = ar.optionalFloat("x", xts.TileOffset.X, 0)
		offset.Y = ar.optionalFloat("y", xts.TileOffset.Y, 0)
	}
	if ar.err != nil {
		return nil, ar.err
	}

	var ts *tilemap.Tileset
	var err errorsx.Error
	if xts.Image != nil {
		ts, err = r.readImageTileset(xts, tileSize, margin, spacing)
		if err != nil {
			return nil, err
		}
		if tileCount >= 0 && tileCount != ts.Len() {
			r.s.logger.Warn("tileset %q declares %d tiles but its image holds %d", xts.Name, tileCount, ts.Len())
		}
	} else {
		ts, err = r.readIndividualTileset(xts, tileSize, tileCount)
		if err != nil {
			return nil, err
		}
		if columns > 0 {
			ts.SetColumns(columns)
		}
	}
	ts.TileOffset = offset

	if xts.TerrainTypes != nil {
		for _, xt := range xts.TerrainTypes.Terrains {
			tar := &attrReader{element: "terrain"}
			number := tar.optionalInt("tile", xt.Tile, -1)
			if tar.err != nil {
				return nil, tar.err
			}
			var tile *tilemap.TilesetTile
			if number >= 0 {
				tile, err = ts.Tile(number)
				if err != nil {
					return nil, errorsx.Wrap(ErrMalformedDocument, "terrain", xt.Name, "tile", number)
				}
			}
			terrain, err := ts.Terrains.AppendNew(xt.Name, tile)
			if err != nil {
				return nil, err
			}
			err = readProperties(r.s.logger, terrain.Properties, xt.Properties)
			if err != nil {
				return nil, err
			}
		}
	}

	for _, xt := range xts.Tiles {
		err = r.readTilesetTile(ts, xt)
		if err != nil {
			return nil, errorsx.Wrap(err, "tileset", xts.Name)
		}
	}

	err = readProperties(r.s.logger, ts.Properties, xts.Properties)
	if err != nil {
		return nil, err
	}
	return ts, nil
}

func (r *mapReader) readImageTileset(xts *xmlTileset, tileSize tilemap.Size, margin, spacing int) (*tilemap.Tileset, errorsx.Error) {
	img, err := r.readImage(xts.Image)
	if err != nil {
		return nil, err
	}
	// the tile count comes from the image size; decode the image if the document does not say
	if w, h := img.DeclaredSize(); w == 0 || h == 0 {
		err = img.Load()
		if err != nil {
			return nil, errorsx.Wrap(err, "tileset", xts.Name)
		}
	}
	return tilemap.NewImageTileset(xts.Name, tileSize, img, margin, spacing)
}

func (r *mapReader) readIndividualTileset(xts *xmlTileset, tileSize tilemap.Size, tileCount int) (*tilemap.Tileset, errorsx.Error) {
	count := tileCount
	if count < 0 {
		count = 0
		for _, xt := range xts.Tiles {
			ar := &attrReader{element: "tile"}
			id := ar.requiredInt("id", xt.ID)
			if ar.err != nil {
				return nil, ar.err
			}
			if id+1 > count {
				count = id + 1
			}
		}
	}

	images := make([]tmximage.Image, count)
	for _, xt := range xts.Tiles {
		if xt.Image == nil {
			continue
		}
		ar := &attrReader{element: "tile"}
		id := ar.requiredInt("id", xt.ID)
		if ar.err != nil {
			return nil, ar.err
		}
		if id < 0 || id >= count {
			return nil, errorsx.Wrap(ErrMalformedDocument, "tileset", xts.Name, "tile", id, "tilecount", count)
		}
		img, err := r.readImage(xt.Image)
		if err != nil {
			return nil, err
		}
		images[id] = img
	}
	return tilemap.NewIndividualTileset(xts.Name, tileSize, images)
}

func (r *mapReader) readTilesetTile(ts *tilemap.Tileset, xt *xmlTile) errorsx.Error {
	ar := &attrReader{element: "tile"}
	id := ar.requiredInt("id", xt.ID)
	var probability *float64
	if xt.Probability != "" {
		p := ar.optionalFloat("probability", xt.Probability, 1)
		probability = &p
	}
	var terrain []int
	if xt.Terrain != "" {
		for _, part := range strings.Split(xt.Terrain, ",") {
			terrain = append(terrain, ar.optionalInt("terrain", strings.TrimSpace(part), -1))
		}
	}
	if ar.err != nil {
		return ar.err
	}
	if id < 0 || id >= ts.Len() {
		return errorsx.Wrap(ErrMalformedDocument, "tile", id, "tilecount", ts.Len())
	}

	tt, err := ts.Tile(id)
	if err != nil {
		return err
	}
	tt.Probability = probability
	tt.TerrainIndices = terrain
	return readProperties(r.s.logger, tt.Properties, xt.Properties)
}

func (r *mapReader) readImage(xi *xmlImage) (*tmximage.FileImage, errorsx.Error) {
	ar := &attrReader{element: "image"}
	width := ar.optionalInt("width", xi.Width, 0)
	height := ar.optionalInt("height", xi.Height, 0)
	trans := xi.Trans
	if trans != "" && !strings.HasPrefix(trans, "#") {
		trans = "#" + trans
	}
	transColor := ar.optionalColor("trans", trans)
	if ar.err != nil {
		return nil, ar.err
	}
	if xi.Source == "" {
		return nil, errorsx.Wrap(ErrMalformedDocument, "element", "image", "attribute", "source", "reason", "missing required attribute")
	}

	img := tmximage.NewFileImage(r.s.fs, r.baseDir, xi.Source, width, height)
	img.Trans = transColor
	return img, nil
}

type layerAttrs struct {
	id      int
	opacity float64
	visible bool
	offset  tilemap.Offset
}

func readLayerAttrs(ar *attrReader, id, opacity, visible, offsetX, offsetY string) layerAttrs {
	return layerAttrs{
		id:      ar.optionalInt("id", id, 0),
		opacity: ar.optionalFloat("opacity", opacity, 1),
		visible: ar.optionalBool("visible", visible, true),
		offset: tilemap.Offset{
			X: ar.optionalFloat("offsetx", offsetX, 0),
			Y: ar.optionalFloat("offsety", offsetY, 0),
		},
	}
}

func (a layerAttrs) apply(base *tilemap.LayerBase) {
	base.ID = a.id
	base.Opacity = a.opacity
	base.Visible = a.visible
	base.Offset = a.offset
}

func (r *mapReader) readTileLayer(m *tilemap.Map, xl *xmlLayer, remap *tilemap.GIDRemap) (*tilemap.TileLayer, errorsx.Error) {
	ar := &attrReader{element: "layer"}
	declared := tilemap.Size{
		Width:  ar.requiredInt("width", xl.Width),
		Height: ar.requiredInt("height", xl.Height),
	}
	attrs := readLayerAttrs(ar, xl.ID, xl.Opacity, xl.Visible, xl.OffsetX, xl.OffsetY)
	if ar.err != nil {
		return nil, ar.err
	}
	if xl.Data == nil {
		return nil, errorsx.Wrap(ErrMalformedDocument, "layer", xl.Name, "reason", "missing data element")
	}
	if declared != m.Size() {
		r.s.logger.Warn("layer %q is declared as %dx%d on a %dx%d map", xl.Name, declared.Width, declared.Height, m.Size().Width, m.Size().Height)
	}

	layer := tilemap.NewTileLayer(m, xl.Name)
	attrs.apply(&layer.LayerBase)
	layer.DeclaredSize = declared
	layer.Encoding = xl.Data.Encoding
	layer.Compression = xl.Data.Compression

	values, err := decodeData(xl.Data, m.Size().Width*m.Size().Height)
	if err != nil {
		return nil, errorsx.Wrap(err, "layer", xl.Name)
	}
	for i, v := range values {
		values[i] = remap.Apply(v)
	}
	err = layer.LoadData(values)
	if err != nil {
		return nil, err
	}

	err = readProperties(r.s.logger, layer.Properties, xl.Properties)
	if err != nil {
		return nil, err
	}
	return layer, nil
}

func (r *mapReader) readObjectLayer(m *tilemap.Map, xl *xmlObjectGroup, remap *tilemap.GIDRemap) (*tilemap.ObjectLayer, errorsx.Error) {
	ar := &attrReader{element: "objectgroup"}
	attrs := readLayerAttrs(ar, xl.ID, xl.Opacity, xl.Visible, xl.OffsetX, xl.OffsetY)
	color := ar.optionalColor("color", xl.Color)
	if ar.err != nil {
		return nil, ar.err
	}

	layer := tilemap.NewObjectLayer(m, xl.Name)
	attrs.apply(&layer.LayerBase)
	layer.Color = color
	layer.DrawOrder = xl.DrawOrder

	err := readProperties(r.s.logger, layer.Properties, xl.Properties)
	if err != nil {
		return nil, err
	}

	for _, xo := range xl.Objects {
		obj, err := r.readObject(xo, remap)
		if err != nil {
			return nil, errorsx.Wrap(err, "layer", xl.Name)
		}
		err = layer.LoadObject(obj)
		if err != nil {
			return nil, errorsx.Wrap(err, "layer", xl.Name)
		}
	}
	return layer, nil
}

func (r *mapReader) readObject(xo *xmlObject, remap *tilemap.GIDRemap) (*tilemap.MapObject, errorsx.Error) {
	ar := &attrReader{element: "object"}
	id := ar.optionalInt("id", xo.ID, 0)
	x := ar.optionalFloat("x", xo.X, 0)
	y := ar.optionalFloat("y", xo.Y, 0)
	width := ar.optionalFloat("width", xo.Width, 0)
	height := ar.optionalFloat("height", xo.Height, 0)
	rotation := ar.optionalFloat("rotation", xo.Rotation, 0)
	visible := ar.optionalBool("visible", xo.Visible, true)
	if ar.err != nil {
		return nil, ar.err
	}

	var shape tilemap.Shape
	switch {
	case xo.GID != "":
		v, err := parseTileValue(xo.GID)
		if err != nil {
			return nil, err
		}
		shape = &tilemap.TileShape{Value: remap.Apply(v)}
	case xo.Ellipse != nil:
		shape = tilemap.Ellipse{}
	case xo.Point != nil:
		shape = tilemap.Point{}
	case xo.Polygon != nil:
		points, err := parsePoints(xo.Polygon.Points)
		if err != nil {
			return nil, err
		}
		shape = &tilemap.Polygon{Points: orb.Ring(points)}
	case xo.Polyline != nil:
		points, err := parsePoints(xo.Polyline.Points)
		if err != nil {
			return nil, err
		}
		shape = &tilemap.Polyline{Points: orb.LineString(points)}
	default:
		shape = tilemap.Rectangle{}
	}

	obj := tilemap.NewObject(xo.Name, orb.Point{x, y}, shape)
	obj.ID = id
	obj.Type = xo.Type
	obj.Width = width
	obj.Height = height
	obj.Rotation = rotation
	obj.Visible = visible
	err := readProperties(r.s.logger, obj.Properties, xo.Properties)
	if err != nil {
		return nil, err
	}
	return obj, nil
}

// parsePoints reads the "x1,y1 x2,y2 ..." format of polygons and polylines.
func parsePoints(s string) ([]orb.Point, errorsx.Error) {
	ar := &attrReader{element: "points"}
	var points []orb.Point
	for _, pair := range strings.Fields(s) {
		parts := strings.Split(pair, ",")
		if len(parts) != 2 {
			return nil, errorsx.Wrap(ErrMalformedDocument, "points", s)
		}
		points = append(points, orb.Point{
			ar.optionalFloat("x", parts[0], 0),
			ar.optionalFloat("y", parts[1], 0),
		})
	}
	if ar.err != nil {
		return nil, ar.err
	}
	return points, nil
}

func (r *mapReader) readImageLayer(m *tilemap.Map, xl *xmlImageLayer) (*tilemap.ImageLayer, errorsx.Error) {
	ar := &attrReader{element: "imagelayer"}
	attrs := readLayerAttrs(ar, xl.ID, xl.Opacity, xl.Visible, xl.OffsetX, xl.OffsetY)
	if ar.err != nil {
		return nil, ar.err
	}

	layer := tilemap.NewImageLayer(m, xl.Name, nil)
	attrs.apply(&layer.LayerBase)
	if xl.Image != nil && xl.Image.Source != "" {
		img, err := r.readImage(xl.Image)
		if err != nil {
			return nil, err
		}
		layer.Image = img
		layer.TransparentColor = img.Trans
	}

	err := readProperties(r.s.logger, layer.Properties, xl.Properties)
	if err != nil {
		return nil, err
	}
	return layer, nil
}
