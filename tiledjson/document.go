// Package tiledjson converts maps to and from the Tiled JSON document layout.
// Documents can be encoded as JSON or as YAML.
package tiledjson

import (
	"encoding/json"
	"errors"

	"github.com/jamesrr39/goutil/errorsx"
	"gopkg.in/yaml.v3"
)

// ErrUnsupportedDocument is returned for documents of another type or version, and for documents
// that are missing required fields.
var ErrUnsupportedDocument = errors.New("UnsupportedDocument")

const (
	documentType    = "map"
	documentVersion = "1.10"
)

type Document struct {
	Type            string     `json:"type" yaml:"type"`
	Version         string     `json:"version" yaml:"version"`
	TiledVersion    string     `json:"tiledversion,omitempty" yaml:"tiledversion,omitempty"`
	Orientation     string     `json:"orientation" yaml:"orientation"`
	RenderOrder     string     `json:"renderorder,omitempty" yaml:"renderorder,omitempty"`
	Width           int        `json:"width" yaml:"width"`
	Height          int        `json:"height" yaml:"height"`
	TileWidth       int        `json:"tilewidth" yaml:"tilewidth"`
	TileHeight      int        `json:"tileheight" yaml:"tileheight"`
	Infinite        bool       `json:"infinite" yaml:"infinite"`
	BackgroundColor string     `json:"backgroundcolor,omitempty" yaml:"backgroundcolor,omitempty"`
	HexSideLength   int        `json:"hexsidelength,omitempty" yaml:"hexsidelength,omitempty"`
	StaggerAxis     string     `json:"staggeraxis,omitempty" yaml:"staggeraxis,omitempty"`
	StaggerIndex    string     `json:"staggerindex,omitempty" yaml:"staggerindex,omitempty"`
	NextLayerID     int        `json:"nextlayerid" yaml:"nextlayerid"`
	NextObjectID    int        `json:"nextobjectid" yaml:"nextobjectid"`
	Properties      []Property `json:"properties,omitempty" yaml:"properties,omitempty"`
	Tilesets        []*Tileset `json:"tilesets" yaml:"tilesets"`
	Layers          []*Layer   `json:"layers" yaml:"layers"`
}

// Property values are JSON scalars: numbers for int and float, booleans for bool, strings otherwise.
type Property struct {
	Name  string      `json:"name" yaml:"name"`
	Type  string      `json:"type" yaml:"type"`
	Value interface{} `json:"value" yaml:"value"`
}

// Tileset is either a reference to an external tileset file (FirstGID and Source only) or a full definition.
type Tileset struct {
	FirstGID         uint32     `json:"firstgid" yaml:"firstgid"`
	Source           string     `json:"source,omitempty" yaml:"source,omitempty"`
	Name             string     `json:"name,omitempty" yaml:"name,omitempty"`
	TileWidth        int        `json:"tilewidth,omitempty" yaml:"tilewidth,omitempty"`
	TileHeight       int        `json:"tileheight,omitempty" yaml:"tileheight,omitempty"`
	TileCount        int        `json:"tilecount,omitempty" yaml:"tilecount,omitempty"`
	Columns          int        `json:"columns,omitempty" yaml:"columns,omitempty"`
	Image            string     `json:"image,omitempty" yaml:"image,omitempty"`
	ImageWidth       int        `json:"imagewidth,omitempty" yaml:"imagewidth,omitempty"`
	ImageHeight      int        `json:"imageheight,omitempty" yaml:"imageheight,omitempty"`
	Margin           int        `json:"margin,omitempty" yaml:"margin,omitempty"`
	Spacing          int        `json:"spacing,omitempty" yaml:"spacing,omitempty"`
	TransparentColor string     `json:"transparentcolor,omitempty" yaml:"transparentcolor,omitempty"`
	TileOffset       *Offset    `json:"tileoffset,omitempty" yaml:"tileoffset,omitempty"`
	Terrains         []*Terrain `json:"terrains,omitempty" yaml:"terrains,omitempty"`
	Tiles            []*Tile    `json:"tiles,omitempty" yaml:"tiles,omitempty"`
	Properties       []Property `json:"properties,omitempty" yaml:"properties,omitempty"`
}

type Offset struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

type Terrain struct {
	Name       string     `json:"name" yaml:"name"`
	Tile       int        `json:"tile" yaml:"tile"`
	Properties []Property `json:"properties,omitempty" yaml:"properties,omitempty"`
}

// Tile carries the per-tile data of a tileset. Only tiles with something to say are listed.
type Tile struct {
	ID          int        `json:"id" yaml:"id"`
	Image       string     `json:"image,omitempty" yaml:"image,omitempty"`
	ImageWidth  int        `json:"imagewidth,omitempty" yaml:"imagewidth,omitempty"`
	ImageHeight int        `json:"imageheight,omitempty" yaml:"imageheight,omitempty"`
	Probability *float64   `json:"probability,omitempty" yaml:"probability,omitempty"`
	Terrain     []int      `json:"terrain,omitempty" yaml:"terrain,omitempty"`
	Properties  []Property `json:"properties,omitempty" yaml:"properties,omitempty"`
}

// Layer holds the fields of all layer types; Type says which ones apply.
type Layer struct {
	ID               int        `json:"id,omitempty" yaml:"id,omitempty"`
	Name             string     `json:"name" yaml:"name"`
	Type             string     `json:"type" yaml:"type"`
	Visible          bool       `json:"visible" yaml:"visible"`
	Opacity          float64    `json:"opacity" yaml:"opacity"`
	X                int        `json:"x" yaml:"x"`
	Y                int        `json:"y" yaml:"y"`
	OffsetX          float64    `json:"offsetx,omitempty" yaml:"offsetx,omitempty"`
	OffsetY          float64    `json:"offsety,omitempty" yaml:"offsety,omitempty"`
	Width            int        `json:"width,omitempty" yaml:"width,omitempty"`
	Height           int        `json:"height,omitempty" yaml:"height,omitempty"`
	Data             []uint32   `json:"data,omitempty" yaml:"data,omitempty,flow"`
	Color            string     `json:"color,omitempty" yaml:"color,omitempty"`
	DrawOrder        string     `json:"draworder,omitempty" yaml:"draworder,omitempty"`
	Objects          []*Object  `json:"objects,omitempty" yaml:"objects,omitempty"`
	Image            string     `json:"image,omitempty" yaml:"image,omitempty"`
	TransparentColor string     `json:"transparentcolor,omitempty" yaml:"transparentcolor,omitempty"`
	Properties       []Property `json:"properties,omitempty" yaml:"properties,omitempty"`
}

type Object struct {
	ID         int        `json:"id" yaml:"id"`
	Name       string     `json:"name" yaml:"name"`
	Type       string     `json:"type" yaml:"type"`
	X          float64    `json:"x" yaml:"x"`
	Y          float64    `json:"y" yaml:"y"`
	Width      float64    `json:"width" yaml:"width"`
	Height     float64    `json:"height" yaml:"height"`
	Rotation   float64    `json:"rotation" yaml:"rotation"`
	Visible    bool       `json:"visible" yaml:"visible"`
	GID        uint32     `json:"gid,omitempty" yaml:"gid,omitempty"`
	Ellipse    bool       `json:"ellipse,omitempty" yaml:"ellipse,omitempty"`
	Point      bool       `json:"point,omitempty" yaml:"point,omitempty"`
	Polygon    []Point    `json:"polygon,omitempty" yaml:"polygon,omitempty"`
	Polyline   []Point    `json:"polyline,omitempty" yaml:"polyline,omitempty"`
	Properties []Property `json:"properties,omitempty" yaml:"properties,omitempty"`
}

type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

func EncodeJSON(doc *Document) ([]byte, errorsx.Error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, errorsx.Wrap(err)
	}
	return append(data, '\n'), nil
}

func DecodeJSON(data []byte) (*Document, errorsx.Error) {
	doc := new(Document)
	err := json.Unmarshal(data, doc)
	if err != nil {
		return nil, errorsx.Wrap(ErrUnsupportedDocument, "cause", err.Error())
	}
	return doc, nil
}

func EncodeYAML(doc *Document) ([]byte, errorsx.Error) {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return nil, errorsx.Wrap(err)
	}
	return data, nil
}

func DecodeYAML(data []byte) (*Document, errorsx.Error) {
	doc := new(Document)
	err := yaml.Unmarshal(data, doc)
	if err != nil {
		return nil, errorsx.Wrap(ErrUnsupportedDocument, "cause", err.Error())
	}
	return doc, nil
}
