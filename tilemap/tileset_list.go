package tilemap

import (
	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/tmxkit/namedlist"
)

// TilesetList is the ordered list of tilesets used by a map.
// A tileset's GID range follows from its position: the first tileset starts at GID 1
// and each following tileset starts where the previous one ends.
//
// Whenever the list changes, every tile in the map is renumbered so that it keeps
// pointing at the same tileset tile.
type TilesetList struct {
	*namedlist.List[*Tileset]
	m *Map
}

func newTilesetList(m *Map) *TilesetList {
	l := &TilesetList{m: m}
	l.List = namedlist.New[*Tileset](&tilesetListHooks{l})
	return l
}

// FirstGID returns the first GID of ts in this list.
func (l *TilesetList) FirstGID(ts *Tileset) (uint32, errorsx.Error) {
	first, ok := firstGIDIn(l.Items(), ts)
	if !ok {
		return 0, errorsx.Wrap(ErrTilesetNotInMap, "tileset", ts.Name)
	}
	return first, nil
}

// EndGID is the first GID not used by any tileset of the list.
func (l *TilesetList) EndGID() uint32 {
	return endGIDOf(l.Items())
}

// Resolve finds the tileset and local tile number of gid.
func (l *TilesetList) Resolve(gid uint32) (*Tileset, int, errorsx.Error) {
	return resolveIn(l.Items(), gid)
}

// ResolveTile is Resolve returning the tileset tile itself.
func (l *TilesetList) ResolveTile(gid uint32) (*TilesetTile, errorsx.Error) {
	ts, number, err := l.Resolve(gid)
	if err != nil {
		return nil, err
	}
	return ts.tiles[number], nil
}

func firstGIDIn(tilesets []*Tileset, ts *Tileset) (uint32, bool) {
	first := uint32(1)
	for _, candidate := range tilesets {
		if candidate == ts {
			return first, true
		}
		first += uint32(candidate.Len())
	}
	return 0, false
}

func endGIDOf(tilesets []*Tileset) uint32 {
	end := uint64(1)
	for _, ts := range tilesets {
		end += uint64(ts.Len())
	}
	if end > uint64(GIDMask)+1 {
		return GIDMask + 1
	}
	return uint32(end)
}

func resolveIn(tilesets []*Tileset, gid uint32) (*Tileset, int, errorsx.Error) {
	if gid == 0 {
		return nil, 0, errorsx.Wrap(ErrInvalidGID, "gid", gid, "reason", "empty")
	}
	number := int(gid) - 1
	for _, ts := range tilesets {
		if number < ts.Len() {
			return ts, number, nil
		}
		number -= ts.Len()
	}
	return nil, 0, errorsx.Wrap(ErrTilesetNotInMap, "gid", gid)
}

type tilesetListHooks struct {
	l *TilesetList
}

func (h *tilesetListHooks) Stored(ts *Tileset) (*Tileset, errorsx.Error) {
	if ts == nil {
		return nil, errorsx.Errorf("nil tileset")
	}
	return ts, nil
}

func (h *tilesetListHooks) Retrieved(ts *Tileset) *Tileset {
	return ts
}

func (h *tilesetListHooks) WillMutate(current []*Tileset) errorsx.Error {
	return nil
}

// DidMutate renumbers the map's tiles from the old tileset order to the new one.
// Tile values still hold the old numbering at this point, so they are resolved against previous.
func (h *tilesetListHooks) DidMutate(previous, current []*Tileset) errorsx.Error {
	seen := make(map[*Tileset]bool, len(current))
	for _, ts := range current {
		if seen[ts] {
			return errorsx.Wrap(ErrDuplicateTileset, "tileset", ts.Name)
		}
		seen[ts] = true
	}

	var total uint64
	for _, ts := range current {
		total += uint64(ts.Len())
	}
	if total > uint64(GIDMask) {
		return errorsx.Wrap(ErrTooManyTiles, "tiles", total)
	}

	if isPrefix(previous, current) {
		// appending does not move any existing range
		return nil
	}

	tiles := h.l.m.AllTiles()
	gidMap := make(map[uint32]uint32)
	for _, tile := range tiles {
		gid := tile.GID()
		if gid == 0 {
			continue
		}
		if _, ok := gidMap[gid]; ok {
			continue
		}
		ts, number, err := resolveIn(previous, gid)
		if err != nil {
			return errorsx.Wrap(err, "layer", tile.layerName())
		}
		first, ok := firstGIDIn(current, ts)
		if !ok {
			return errorsx.Wrap(ErrUsedTileset, "tileset", ts.Name, "layer", tile.layerName())
		}
		gidMap[gid] = first + uint32(number)
	}

	for _, tile := range tiles {
		v := tile.Value()
		if v.IsEmpty() {
			continue
		}
		tile.store(v.WithGID(gidMap[v.GID()]))
	}
	return nil
}

func isPrefix(previous, current []*Tileset) bool {
	if len(previous) > len(current) {
		return false
	}
	for i, ts := range previous {
		if current[i] != ts {
			return false
		}
	}
	return true
}
