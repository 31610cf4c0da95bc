package maptool

import (
	"bytes"
	"testing"

	snapshot "github.com/jamesrr39/go-snapshot-testing"
	"github.com/jamesrr39/tmxkit/properties"
	"github.com/jamesrr39/tmxkit/tilemap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	docs, _, _ := newTestDocuments(t)
	m, err := docs.Open("/maps/field.tmx")
	require.NoError(t, err)
	m.Properties.Set("title", properties.String("Field"))

	summary, err := Summarize(m)
	require.NoError(t, err)
	summary.FileSize = 2048

	assert.Equal(t, uint32(5), summary.EndGID)
	require.Len(t, summary.Layers, 2)
	assert.Equal(t, LayerSummary{ID: 1, Name: "ground", Kind: tilemap.LayerKindTiles, Visible: true, Tiles: 4}, summary.Layers[0])
	assert.Equal(t, LayerSummary{ID: 2, Name: "things", Kind: tilemap.LayerKindObjects, Visible: true, Tiles: 1, Objects: 1}, summary.Layers[1])

	buf := bytes.NewBuffer(nil)
	require.NoError(t, summary.WriteText(buf))
	snapshot.AssertMatchesSnapshot(t, "field_summary", snapshot.NewTextSnapshot(buf.String()))
}
