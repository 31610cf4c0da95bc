package tilemap

import (
	"sort"

	"github.com/jamesrr39/goutil/errorsx"
)

// GIDRemap rewrites tile values that were written against the firstgids a document recorded
// so that they point at the same tiles under the map's own numbering.
type GIDRemap struct {
	ranges   []gidRange
	identity bool
}

type gidRange struct {
	recorded uint32
	actual   uint32
	count    uint32
}

// NewGIDRemap pairs recorded[i] with the i-th tileset of m.
func NewGIDRemap(m *Map, recorded []uint32) (*GIDRemap, errorsx.Error) {
	tilesets := m.Tilesets.Items()
	if len(recorded) != len(tilesets) {
		return nil, errorsx.Errorf("%d recorded firstgids for %d tilesets", len(recorded), len(tilesets))
	}

	r := &GIDRemap{identity: true}
	for i, ts := range tilesets {
		actual, _ := firstGIDIn(tilesets, ts)
		if actual != recorded[i] {
			r.identity = false
		}
		r.ranges = append(r.ranges, gidRange{recorded: recorded[i], actual: actual, count: uint32(ts.Len())})
	}
	sort.SliceStable(r.ranges, func(i, j int) bool {
		return r.ranges[i].recorded < r.ranges[j].recorded
	})
	return r, nil
}

// Identity reports whether every recorded firstgid matches the map's numbering.
func (r *GIDRemap) Identity() bool {
	return r.identity
}

// Apply moves v into the range of the tileset it was recorded against, keeping its flags.
// Values outside every recorded range are returned unchanged.
func (r *GIDRemap) Apply(v TileValue) TileValue {
	if r.identity || v.IsEmpty() {
		return v
	}
	gid := v.GID()
	i := sort.Search(len(r.ranges), func(i int) bool {
		return r.ranges[i].recorded > gid
	}) - 1
	if i < 0 {
		return v
	}
	rg := r.ranges[i]
	if gid-rg.recorded >= rg.count {
		return v
	}
	return v.WithGID(rg.actual + gid - rg.recorded)
}
