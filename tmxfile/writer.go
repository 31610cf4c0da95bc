package tmxfile

import (
	"strconv"
	"strings"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/tmxkit/tilemap"
	"github.com/jamesrr39/tmxkit/tmximage"
	"github.com/paulmach/orb"
)

type mapWriter struct {
	s       *Serializer
	baseDir string
}

func (w *mapWriter) writeMap(m *tilemap.Map) (*xmlMap, errorsx.Error) {
	doc := &xmlMap{
		Version:         m.Version,
		TiledVersion:    m.TiledVersion,
		Orientation:     m.Orientation,
		RenderOrder:     m.RenderOrder,
		Width:           formatInt(m.Size().Width),
		Height:          formatInt(m.Size().Height),
		TileWidth:       formatInt(m.TileSize().Width),
		TileHeight:      formatInt(m.TileSize().Height),
		StaggerAxis:     m.StaggerAxis,
		StaggerIndex:    m.StaggerIndex,
		BackgroundColor: formatColor(m.BackgroundColor),
		NextLayerID:     formatInt(m.NextLayerID),
		NextObjectID:    formatInt(m.NextObjectID),
		Properties:      writeProperties(m.Properties),
	}
	if m.HexSideLength != 0 {
		doc.HexSideLength = formatInt(m.HexSideLength)
	}
	if m.Infinite {
		doc.Infinite = "1"
	}

	for _, ts := range m.Tilesets.Items() {
		first, err := ts.FirstGID(m)
		if err != nil {
			return nil, err
		}
		if ts.Source != "" && !w.s.options.EmbedTilesets {
			doc.Tilesets = append(doc.Tilesets, &xmlTileset{
				FirstGID: strconv.FormatUint(uint64(first), 10),
				Source:   relPath(w.baseDir, ts.Source),
			})
			continue
		}
		xts, err := w.writeTileset(ts)
		if err != nil {
			return nil, err
		}
		xts.FirstGID = strconv.FormatUint(uint64(first), 10)
		doc.Tilesets = append(doc.Tilesets, xts)
	}

	for _, layer := range m.Layers.Items() {
		var xl interface{}
		var err errorsx.Error
		switch l := layer.(type) {
		case *tilemap.TileLayer:
			xl, err = w.writeTileLayer(l)
		case *tilemap.ObjectLayer:
			xl = w.writeObjectLayer(l)
		case *tilemap.ImageLayer:
			xl, err = w.writeImageLayer(l)
		}
		if err != nil {
			return nil, errorsx.Wrap(err, "layer", layer.GetName())
		}
		doc.Layers = append(doc.Layers, xl)
	}
	return doc, nil
}

func (w *mapWriter) writeTileset(ts *tilemap.Tileset) (*xmlTileset, errorsx.Error) {
	xts := &xmlTileset{
		Name:       ts.Name,
		TileWidth:  formatInt(ts.TileSize.Width),
		TileHeight: formatInt(ts.TileSize.Height),
		TileCount:  formatInt(ts.Len()),
		Columns:    formatInt(ts.Columns()),
		Properties: writeProperties(ts.Properties),
	}
	if ts.TileOffset != (tilemap.Offset{}) {
		xts.TileOffset = &xmlTileOffset{X: formatFloat(ts.TileOffset.X), Y: formatFloat(ts.TileOffset.Y)}
	}

	if ts.Kind() == tilemap.TilesetKindImage {
		if ts.Spacing() != 0 {
			xts.Spacing = formatInt(ts.Spacing())
		}
		if ts.Margin() != 0 {
			xts.Margin = formatInt(ts.Margin())
		}
		xi, err := w.writeImage(ts.Image())
		if err != nil {
			return nil, errorsx.Wrap(err, "tileset", ts.Name)
		}
		xts.Image = xi
	}

	if ts.Terrains.Len() > 0 {
		xts.TerrainTypes = new(xmlTerrainTypes)
		for _, terrain := range ts.Terrains.Items() {
			number := -1
			if terrain.Tile != nil {
				number = terrain.Tile.Number()
			}
			xts.TerrainTypes.Terrains = append(xts.TerrainTypes.Terrains, &xmlTerrain{
				Name:       terrain.Name,
				Tile:       formatInt(number),
				Properties: writeProperties(terrain.Properties),
			})
		}
	}

	for _, tt := range ts.Tiles() {
		xt := &xmlTile{
			ID:         formatInt(tt.Number()),
			Properties: writeProperties(tt.Properties),
		}
		if tt.Probability != nil {
			xt.Probability = formatFloat(*tt.Probability)
		}
		if len(tt.TerrainIndices) > 0 {
			parts := make([]string, len(tt.TerrainIndices))
			for i, idx := range tt.TerrainIndices {
				if idx >= 0 {
					parts[i] = formatInt(idx)
				}
			}
			xt.Terrain = strings.Join(parts, ",")
		}
		if ts.Kind() == tilemap.TilesetKindIndividual {
			if img := tt.Image(); img != nil {
				xi, err := w.writeImage(img)
				if err != nil {
					return nil, errorsx.Wrap(err, "tileset", ts.Name, "tile", tt.Number())
				}
				xt.Image = xi
			}
		}
		if xt.Properties == nil && xt.Probability == "" && xt.Terrain == "" && xt.Image == nil {
			continue
		}
		xts.Tiles = append(xts.Tiles, xt)
	}
	return xts, nil
}

// writeImage references the file an image came from. Images built in memory have no file and cannot be written.
func (w *mapWriter) writeImage(img tmximage.Image) (*xmlImage, errorsx.Error) {
	fi, ok := img.(*tmximage.FileImage)
	if !ok {
		return nil, errorsx.Wrap(tmximage.ErrImageDataNotAvailable, "reason", "only images loaded from files can be referenced from a document")
	}
	xi := &xmlImage{Source: relPath(w.baseDir, fi.Path())}
	if fi.Trans != nil {
		xi.Trans = strings.TrimPrefix(fi.Trans.Hex(), "#")
	}
	if width, height := fi.Width(), fi.Height(); width > 0 && height > 0 {
		xi.Width = formatInt(width)
		xi.Height = formatInt(height)
	}
	return xi, nil
}

func formatID(id int) string {
	if id == 0 {
		return ""
	}
	return formatInt(id)
}

func (w *mapWriter) writeTileLayer(l *tilemap.TileLayer) (*xmlLayer, errorsx.Error) {
	encoding, compression := l.Encoding, l.Compression
	if w.s.options.Encoding != "" {
		encoding = w.s.options.Encoding
	}
	if w.s.options.Compression != "" {
		compression = w.s.options.Compression
	}
	if encoding != EncodingBase64 {
		compression = ""
	}

	size := l.Size()
	data, err := encodeData(l.Data(), size.Width, encoding, compression)
	if err != nil {
		return nil, err
	}
	return &xmlLayer{
		ID:         formatID(l.ID),
		Name:       l.Name,
		Width:      formatInt(size.Width),
		Height:     formatInt(size.Height),
		Opacity:    formatOptionalFloat(l.Opacity, 1),
		Visible:    formatVisible(l.Visible),
		OffsetX:    formatOptionalFloat(l.Offset.X, 0),
		OffsetY:    formatOptionalFloat(l.Offset.Y, 0),
		Properties: writeProperties(l.Properties),
		Data:       data,
	}, nil
}

func (w *mapWriter) writeObjectLayer(l *tilemap.ObjectLayer) *xmlObjectGroup {
	xl := &xmlObjectGroup{
		ID:         formatID(l.ID),
		Name:       l.Name,
		Color:      formatColor(l.Color),
		Opacity:    formatOptionalFloat(l.Opacity, 1),
		Visible:    formatVisible(l.Visible),
		OffsetX:    formatOptionalFloat(l.Offset.X, 0),
		OffsetY:    formatOptionalFloat(l.Offset.Y, 0),
		DrawOrder:  l.DrawOrder,
		Properties: writeProperties(l.Properties),
	}
	for _, obj := range l.Objects.Items() {
		xl.Objects = append(xl.Objects, writeObject(obj))
	}
	return xl
}

func writeObject(obj *tilemap.MapObject) *xmlObject {
	xo := &xmlObject{
		ID:         formatID(obj.ID),
		Name:       obj.Name,
		Type:       obj.Type,
		X:          formatFloat(obj.Position.X()),
		Y:          formatFloat(obj.Position.Y()),
		Width:      formatOptionalFloat(obj.Width, 0),
		Height:     formatOptionalFloat(obj.Height, 0),
		Rotation:   formatOptionalFloat(obj.Rotation, 0),
		Visible:    formatVisible(obj.Visible),
		Properties: writeProperties(obj.Properties),
	}
	switch s := obj.Shape.(type) {
	case *tilemap.TileShape:
		xo.GID = strconv.FormatUint(uint64(s.Value), 10)
	case tilemap.Ellipse:
		xo.Ellipse = &struct{}{}
	case tilemap.Point:
		xo.Point = &struct{}{}
	case *tilemap.Polygon:
		xo.Polygon = &xmlPoints{Points: formatPoints(s.Points)}
	case *tilemap.Polyline:
		xo.Polyline = &xmlPoints{Points: formatPoints(s.Points)}
	}
	return xo
}

func formatPoints(points []orb.Point) string {
	parts := make([]string, len(points))
	for i, p := range points {
		parts[i] = formatFloat(p.X()) + "," + formatFloat(p.Y())
	}
	return strings.Join(parts, " ")
}

func (w *mapWriter) writeImageLayer(l *tilemap.ImageLayer) (*xmlImageLayer, errorsx.Error) {
	xl := &xmlImageLayer{
		ID:         formatID(l.ID),
		Name:       l.Name,
		Opacity:    formatOptionalFloat(l.Opacity, 1),
		Visible:    formatVisible(l.Visible),
		OffsetX:    formatOptionalFloat(l.Offset.X, 0),
		OffsetY:    formatOptionalFloat(l.Offset.Y, 0),
		Properties: writeProperties(l.Properties),
	}
	if l.Image != nil {
		xi, err := w.writeImage(l.Image)
		if err != nil {
			return nil, err
		}
		if l.TransparentColor != nil {
			xi.Trans = strings.TrimPrefix(l.TransparentColor.Hex(), "#")
		}
		xl.Image = xi
	}
	return xl, nil
}
