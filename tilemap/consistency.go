package tilemap

import (
	"fmt"
)

type ViolationKind string

const (
	ViolationUnresolvedGID    ViolationKind = "unresolved-gid"
	ViolationLayerSize        ViolationKind = "layer-size"
	ViolationDuplicateNumber  ViolationKind = "duplicate-tile-number"
	ViolationDuplicateLayerID ViolationKind = "duplicate-layer-id"
)

// ConsistencyViolation is one problem found by CheckConsistency.
type ConsistencyViolation struct {
	Kind    ViolationKind
	Layer   string
	Tileset string
	Message string
}

func (v *ConsistencyViolation) Error() string {
	return fmt.Sprintf("%s: %s", v.Kind, v.Message)
}

// CheckConsistency looks for tiles whose GID no tileset covers, tile layers whose grid does not
// match the map size, tilesets with repeated local numbers and layers sharing an id.
// It reports every problem found and changes nothing.
func (m *Map) CheckConsistency() []*ConsistencyViolation {
	var violations []*ConsistencyViolation
	add := func(v *ConsistencyViolation) {
		violations = append(violations, v)
	}

	endGID := m.EndGID()
	layerIDs := make(map[int]string)
	for _, layer := range m.Layers.Items() {
		base := layer.Base()
		if base.ID != 0 {
			if other, ok := layerIDs[base.ID]; ok {
				add(&ConsistencyViolation{
					Kind:    ViolationDuplicateLayerID,
					Layer:   base.Name,
					Message: fmt.Sprintf("layer %q has the same id (%d) as layer %q", base.Name, base.ID, other),
				})
			}
			layerIDs[base.ID] = base.Name
		}

		if tl, ok := layer.(*TileLayer); ok {
			declared := tl.DeclaredSize
			if declared != (Size{}) && declared != m.size {
				add(&ConsistencyViolation{
					Kind:    ViolationLayerSize,
					Layer:   base.Name,
					Message: fmt.Sprintf("layer %q is %dx%d, the map is %dx%d", base.Name, declared.Width, declared.Height, m.size.Width, m.size.Height),
				})
			}
			expected := m.size.Width * m.size.Height
			if len(tl.data) != expected {
				add(&ConsistencyViolation{
					Kind:    ViolationLayerSize,
					Layer:   base.Name,
					Message: fmt.Sprintf("layer %q has %d cells, the map has %d", base.Name, len(tl.data), expected),
				})
			}
		}

		for _, tile := range layer.Tiles() {
			gid := tile.GID()
			if gid == 0 || gid < endGID {
				continue
			}
			where := fmt.Sprintf("(%d, %d)", tile.x, tile.y)
			if tile.object != nil {
				where = fmt.Sprintf("object %d %q", tile.object.ID, tile.object.Name)
			}
			add(&ConsistencyViolation{
				Kind:    ViolationUnresolvedGID,
				Layer:   base.Name,
				Message: fmt.Sprintf("layer %q %s: gid %d is not covered by any tileset (end gid %d)", base.Name, where, gid, endGID),
			})
		}
	}

	for _, ts := range m.Tilesets.Items() {
		seen := make(map[int]bool, ts.Len())
		for i, tt := range ts.tiles {
			if seen[tt.number] || tt.number != i || tt.tileset != ts {
				add(&ConsistencyViolation{
					Kind:    ViolationDuplicateNumber,
					Tileset: ts.Name,
					Message: fmt.Sprintf("tileset %q: tile at position %d has number %d", ts.Name, i, tt.number),
				})
			}
			seen[tt.number] = true
		}
	}

	return violations
}
