package tmxfile

import (
	"encoding/xml"
)

// The types in this file mirror TMX elements. Numeric attributes that may be absent, or whose
// absence must be detected, are kept as strings and parsed by the reader.

type xmlMap struct {
	XMLName         xml.Name `xml:"map"`
	Version         string   `xml:"version,attr,omitempty"`
	TiledVersion    string   `xml:"tiledversion,attr,omitempty"`
	Orientation     string   `xml:"orientation,attr,omitempty"`
	RenderOrder     string   `xml:"renderorder,attr,omitempty"`
	Width           string   `xml:"width,attr"`
	Height          string   `xml:"height,attr"`
	TileWidth       string   `xml:"tilewidth,attr"`
	TileHeight      string   `xml:"tileheight,attr"`
	HexSideLength   string   `xml:"hexsidelength,attr,omitempty"`
	StaggerAxis     string   `xml:"staggeraxis,attr,omitempty"`
	StaggerIndex    string   `xml:"staggerindex,attr,omitempty"`
	Infinite        string   `xml:"infinite,attr,omitempty"`
	BackgroundColor string   `xml:"backgroundcolor,attr,omitempty"`
	NextLayerID     string   `xml:"nextlayerid,attr,omitempty"`
	NextObjectID    string   `xml:"nextobjectid,attr,omitempty"`

	Properties *xmlProperties `xml:"properties,omitempty"`
	Tilesets   []*xmlTileset  `xml:"tileset"`
	// Layers holds *xmlLayer, *xmlObjectGroup and *xmlImageLayer values in document order.
	Layers []interface{}
	// Skipped lists elements the reader does not understand.
	Skipped []string `xml:"-"`
}

// UnmarshalXML keeps the relative order of the different layer elements.
func (m *xmlMap) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	*m = xmlMap{XMLName: start.Name}
	fields := map[string]*string{
		"version":         &m.Version,
		"tiledversion":    &m.TiledVersion,
		"orientation":     &m.Orientation,
		"renderorder":     &m.RenderOrder,
		"width":           &m.Width,
		"height":          &m.Height,
		"tilewidth":       &m.TileWidth,
		"tileheight":      &m.TileHeight,
		"hexsidelength":   &m.HexSideLength,
		"staggeraxis":     &m.StaggerAxis,
		"staggerindex":    &m.StaggerIndex,
		"infinite":        &m.Infinite,
		"backgroundcolor": &m.BackgroundColor,
		"nextlayerid":     &m.NextLayerID,
		"nextobjectid":    &m.NextObjectID,
	}
	for _, a := range start.Attr {
		field, ok := fields[a.Name.Local]
		if ok {
			*field = a.Value
		}
	}

	for {
		token, err := d.Token()
		if err != nil {
			return err
		}
		switch t := token.(type) {
		case xml.EndElement:
			return nil
		case xml.StartElement:
			var target interface{}
			switch t.Name.Local {
			case "properties":
				m.Properties = new(xmlProperties)
				target = m.Properties
			case "tileset":
				ts := new(xmlTileset)
				m.Tilesets = append(m.Tilesets, ts)
				target = ts
			case "layer":
				l := new(xmlLayer)
				m.Layers = append(m.Layers, l)
				target = l
			case "objectgroup":
				l := new(xmlObjectGroup)
				m.Layers = append(m.Layers, l)
				target = l
			case "imagelayer":
				l := new(xmlImageLayer)
				m.Layers = append(m.Layers, l)
				target = l
			default:
				m.Skipped = append(m.Skipped, t.Name.Local)
				err = d.Skip()
				if err != nil {
					return err
				}
				continue
			}
			err = d.DecodeElement(target, &t)
			if err != nil {
				return err
			}
		}
	}
}

type xmlProperties struct {
	Properties []*xmlProperty `xml:"property"`
}

type xmlProperty struct {
	Name  string `xml:"name,attr"`
	Type  string `xml:"type,attr,omitempty"`
	Value string `xml:"value,attr,omitempty"`
	// Text holds multi-line values, which are written as element content.
	Text string `xml:",chardata"`
}

type xmlTileset struct {
	XMLName      xml.Name `xml:"tileset"`
	FirstGID     string   `xml:"firstgid,attr,omitempty"`
	Source       string   `xml:"source,attr,omitempty"`
	Version      string   `xml:"version,attr,omitempty"`
	TiledVersion string   `xml:"tiledversion,attr,omitempty"`
	Name         string   `xml:"name,attr,omitempty"`
	TileWidth    string   `xml:"tilewidth,attr,omitempty"`
	TileHeight   string   `xml:"tileheight,attr,omitempty"`
	Spacing      string   `xml:"spacing,attr,omitempty"`
	Margin       string   `xml:"margin,attr,omitempty"`
	TileCount    string   `xml:"tilecount,attr,omitempty"`
	Columns      string   `xml:"columns,attr,omitempty"`

	TileOffset   *xmlTileOffset   `xml:"tileoffset,omitempty"`
	Image        *xmlImage        `xml:"image,omitempty"`
	TerrainTypes *xmlTerrainTypes `xml:"terraintypes,omitempty"`
	Tiles        []*xmlTile       `xml:"tile"`
	Properties   *xmlProperties   `xml:"properties,omitempty"`
}

type xmlTileOffset struct {
	X string `xml:"x,attr"`
	Y string `xml:"y,attr"`
}

type xmlImage struct {
	Source string `xml:"source,attr"`
	Trans  string `xml:"trans,attr,omitempty"`
	Width  string `xml:"width,attr,omitempty"`
	Height string `xml:"height,attr,omitempty"`
}

type xmlTerrainTypes struct {
	Terrains []*xmlTerrain `xml:"terrain"`
}

type xmlTerrain struct {
	Name       string         `xml:"name,attr"`
	Tile       string         `xml:"tile,attr"`
	Properties *xmlProperties `xml:"properties,omitempty"`
}

type xmlTile struct {
	ID          string         `xml:"id,attr"`
	Terrain     string         `xml:"terrain,attr,omitempty"`
	Probability string         `xml:"probability,attr,omitempty"`
	Properties  *xmlProperties `xml:"properties,omitempty"`
	Image       *xmlImage      `xml:"image,omitempty"`
}

type xmlLayer struct {
	XMLName    xml.Name       `xml:"layer"`
	ID         string         `xml:"id,attr,omitempty"`
	Name       string         `xml:"name,attr"`
	Width      string         `xml:"width,attr"`
	Height     string         `xml:"height,attr"`
	Opacity    string         `xml:"opacity,attr,omitempty"`
	Visible    string         `xml:"visible,attr,omitempty"`
	OffsetX    string         `xml:"offsetx,attr,omitempty"`
	OffsetY    string         `xml:"offsety,attr,omitempty"`
	Properties *xmlProperties `xml:"properties,omitempty"`
	Data       *xmlData       `xml:"data"`
}

type xmlData struct {
	Encoding    string `xml:"encoding,attr,omitempty"`
	Compression string `xml:"compression,attr,omitempty"`
	// Text is read from the document; Raw is written verbatim.
	Text  string         `xml:",chardata"`
	Raw   string         `xml:",innerxml"`
	Tiles []*xmlDataTile `xml:"tile"`
}

type xmlDataTile struct {
	GID string `xml:"gid,attr,omitempty"`
}

type xmlObjectGroup struct {
	XMLName    xml.Name       `xml:"objectgroup"`
	ID         string         `xml:"id,attr,omitempty"`
	Name       string         `xml:"name,attr"`
	Color      string         `xml:"color,attr,omitempty"`
	Width      string         `xml:"width,attr,omitempty"`
	Height     string         `xml:"height,attr,omitempty"`
	Opacity    string         `xml:"opacity,attr,omitempty"`
	Visible    string         `xml:"visible,attr,omitempty"`
	OffsetX    string         `xml:"offsetx,attr,omitempty"`
	OffsetY    string         `xml:"offsety,attr,omitempty"`
	DrawOrder  string         `xml:"draworder,attr,omitempty"`
	Properties *xmlProperties `xml:"properties,omitempty"`
	Objects    []*xmlObject   `xml:"object"`
}

type xmlObject struct {
	ID         string         `xml:"id,attr,omitempty"`
	Name       string         `xml:"name,attr,omitempty"`
	Type       string         `xml:"type,attr,omitempty"`
	GID        string         `xml:"gid,attr,omitempty"`
	X          string         `xml:"x,attr"`
	Y          string         `xml:"y,attr"`
	Width      string         `xml:"width,attr,omitempty"`
	Height     string         `xml:"height,attr,omitempty"`
	Rotation   string         `xml:"rotation,attr,omitempty"`
	Visible    string         `xml:"visible,attr,omitempty"`
	Properties *xmlProperties `xml:"properties,omitempty"`
	Ellipse    *struct{}      `xml:"ellipse,omitempty"`
	Point      *struct{}      `xml:"point,omitempty"`
	Polygon    *xmlPoints     `xml:"polygon,omitempty"`
	Polyline   *xmlPoints     `xml:"polyline,omitempty"`
}

type xmlPoints struct {
	Points string `xml:"points,attr"`
}

type xmlImageLayer struct {
	XMLName    xml.Name       `xml:"imagelayer"`
	ID         string         `xml:"id,attr,omitempty"`
	Name       string         `xml:"name,attr"`
	Width      string         `xml:"width,attr,omitempty"`
	Height     string         `xml:"height,attr,omitempty"`
	Opacity    string         `xml:"opacity,attr,omitempty"`
	Visible    string         `xml:"visible,attr,omitempty"`
	OffsetX    string         `xml:"offsetx,attr,omitempty"`
	OffsetY    string         `xml:"offsety,attr,omitempty"`
	Properties *xmlProperties `xml:"properties,omitempty"`
	Image      *xmlImage      `xml:"image,omitempty"`
}
