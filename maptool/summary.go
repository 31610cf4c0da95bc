package maptool

import (
	"fmt"
	"io"
	"strings"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/humanise"
	"github.com/jamesrr39/tmxkit/tilemap"
)

type TilesetSummary struct {
	Name      string
	Kind      tilemap.TilesetKind
	FirstGID  uint32
	TileCount int
	Source    string
	Used      bool
}

type LayerSummary struct {
	ID      int
	Name    string
	Kind    tilemap.LayerKind
	Visible bool
	// Tiles counts the non-empty cells of a tile layer and the tile objects of an object layer.
	Tiles   int
	Objects int
}

// Summary describes a map for people to read.
type Summary struct {
	Orientation string
	Size        tilemap.Size
	TileSize    tilemap.Size
	EndGID      uint32
	Properties  int
	Tilesets    []TilesetSummary
	Layers      []LayerSummary
	// FileSize is the size of the document the map was read from, if known.
	FileSize int64
}

func Summarize(m *tilemap.Map) (*Summary, errorsx.Error) {
	s := &Summary{
		Orientation: m.Orientation,
		Size:        m.Size(),
		TileSize:    m.TileSize(),
		EndGID:      m.EndGID(),
		Properties:  m.Properties.Len(),
	}

	used := make(map[*tilemap.Tileset]bool)
	for _, ts := range m.UsedTilesets() {
		used[ts] = true
	}
	for _, ts := range m.Tilesets.Items() {
		first, err := ts.FirstGID(m)
		if err != nil {
			return nil, err
		}
		s.Tilesets = append(s.Tilesets, TilesetSummary{
			Name:      ts.Name,
			Kind:      ts.Kind(),
			FirstGID:  first,
			TileCount: ts.Len(),
			Source:    ts.Source,
			Used:      used[ts],
		})
	}

	for _, layer := range m.Layers.Items() {
		ls := LayerSummary{
			ID:      layer.Base().ID,
			Name:    layer.GetName(),
			Kind:    layer.Kind(),
			Visible: layer.Base().Visible,
		}
		for _, tile := range layer.Tiles() {
			if !tile.IsEmpty() {
				ls.Tiles++
			}
		}
		if ol, ok := layer.(*tilemap.ObjectLayer); ok {
			ls.Objects = ol.Objects.Len()
		}
		s.Layers = append(s.Layers, ls)
	}
	return s, nil
}

func (s *Summary) WriteText(w io.Writer) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s map, %dx%d tiles of %dx%d px", s.Orientation, s.Size.Width, s.Size.Height, s.TileSize.Width, s.TileSize.Height)
	if s.FileSize > 0 {
		fmt.Fprintf(&sb, ", %s", humanise.HumaniseBytes(s.FileSize))
	}
	fmt.Fprintf(&sb, "\nproperties: %d\n", s.Properties)

	fmt.Fprintf(&sb, "tilesets (end gid %d):\n", s.EndGID)
	for _, ts := range s.Tilesets {
		fmt.Fprintf(&sb, "  %4d %-20s %-10s %5d tiles", ts.FirstGID, ts.Name, ts.Kind, ts.TileCount)
		if ts.Source != "" {
			fmt.Fprintf(&sb, " from %s", ts.Source)
		}
		if !ts.Used {
			sb.WriteString(" (unused)")
		}
		sb.WriteString("\n")
	}

	sb.WriteString("layers:\n")
	for _, l := range s.Layers {
		fmt.Fprintf(&sb, "  %4d %-20s %-11s", l.ID, l.Name, l.Kind)
		switch l.Kind {
		case tilemap.LayerKindTiles:
			fmt.Fprintf(&sb, " %d tiles", l.Tiles)
		case tilemap.LayerKindObjects:
			fmt.Fprintf(&sb, " %d objects, %d of them tiles", l.Objects, l.Tiles)
		}
		if !l.Visible {
			sb.WriteString(" (hidden)")
		}
		sb.WriteString("\n")
	}

	_, err := io.WriteString(w, sb.String())
	return err
}
