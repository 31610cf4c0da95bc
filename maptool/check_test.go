package maptool

import (
	"bytes"
	"io"
	"testing"

	proto "github.com/gogo/protobuf/proto"
	tracing "github.com/jamesrr39/go-tracing"
	"github.com/jamesrr39/goutil/gofs/mockfs"
	"github.com/jamesrr39/goutil/logpkg"
	"github.com/jamesrr39/goutil/streamtostorage"
	"github.com/jamesrr39/tmxkit/tilemap"
	"github.com/jamesrr39/tmxkit/tmxfile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readTraces(t *testing.T, data []byte) map[string]*tracing.Trace {
	reader := streamtostorage.NewReader(bytes.NewReader(data), streamtostorage.MessageSizeBufferLenDefault)
	traces := make(map[string]*tracing.Trace)
	for {
		message, err := reader.ReadNextMessage()
		if err == io.EOF {
			return traces
		}
		require.NoError(t, err)

		trace := new(tracing.Trace)
		require.NoError(t, proto.Unmarshal(message, trace))
		traces[trace.Name] = trace
	}
}

func spanNames(trace *tracing.Trace) []string {
	var names []string
	for _, span := range trace.Spans {
		names = append(names, span.Name)
	}
	return names
}

func TestChecker_CheckAll(t *testing.T) {
	fs := mockfs.NewMockFs()
	writeTestMaps(t, fs)
	logger := logpkg.NewLogger(io.Discard, logpkg.LogLevelDebug)
	traceBuf := bytes.NewBuffer(nil)

	checker := NewChecker(logger, NewDocuments(fs, logger, tmxfile.Options{}), tracing.NewTracer(traceBuf), 2)

	paths := []string{"/maps/field.tmx", "/maps/broken.tmx", "/maps/missing.tmx", "/maps/field.tmx"}
	reports := checker.CheckAll(paths)
	require.Len(t, reports, len(paths))

	for i, report := range reports {
		assert.Equal(t, paths[i], report.Path)
	}

	assert.True(t, reports[0].OK())
	assert.True(t, reports[3].OK())
	assert.Equal(t, "/maps/field.tmx: ok", reports[0].String()[:len("/maps/field.tmx: ok")])

	assert.False(t, reports[1].OK())
	assert.NoError(t, reports[1].Err)
	require.Len(t, reports[1].Violations, 1)
	assert.Equal(t, tilemap.ViolationDuplicateLayerID, reports[1].Violations[0].Kind)
	assert.Equal(t, "/maps/broken.tmx: 1 problem(s)", reports[1].String())

	assert.False(t, reports[2].OK())
	assert.Error(t, reports[2].Err)
	assert.Empty(t, reports[2].Violations)

	traces := readTraces(t, traceBuf.Bytes())
	require.Len(t, traces, 3)
	assert.Equal(t, []string{"open", "check consistency"}, spanNames(traces["/maps/field.tmx"]))
	assert.Equal(t, []string{"open"}, spanNames(traces["/maps/missing.tmx"]))
	assert.Equal(t, "/maps/broken.tmx: 1 problem(s)", traces["/maps/broken.tmx"].Summary)
}
