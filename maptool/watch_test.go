package maptool

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	tracing "github.com/jamesrr39/go-tracing"
	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/gofs"
	"github.com/jamesrr39/goutil/logpkg"
	"github.com/jamesrr39/tmxkit/tmxfile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nextReport(t *testing.T, reports <-chan *Report) *Report {
	select {
	case report := <-reports:
		return report
	case <-time.After(5 * time.Second):
		require.FailNow(t, "timed out waiting for a check")
		return nil
	}
}

func TestChecker_Watch(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "tilesets"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tilesets", "field.tsx"), []byte(fieldTSX), 0644))
	path := filepath.Join(dir, "field.tmx")
	require.NoError(t, os.WriteFile(path, []byte(fieldTMX), 0644))

	logger := logpkg.NewLogger(io.Discard, logpkg.LogLevelError)
	checker := NewChecker(logger, NewDocuments(gofs.NewOsFs(), logger, tmxfile.Options{}), tracing.NewTracer(io.Discard), 1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reports := make(chan *Report, 16)
	done := make(chan errorsx.Error, 1)
	go func() {
		done <- checker.Watch(ctx, path, func(r *Report) {
			reports <- r
		})
	}()

	first := nextReport(t, reports)
	assert.True(t, first.OK())

	// unrelated files in the same directory are ignored
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hello"), 0644))
	require.NoError(t, os.WriteFile(path, []byte(brokenTMX), 0644))

	// a save can show up as several events, and a half-written file fails to open
	for {
		report := nextReport(t, reports)
		assert.Equal(t, path, report.Path)
		if len(report.Violations) > 0 {
			break
		}
		assert.False(t, report.OK())
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		require.FailNow(t, "watch did not stop")
	}
}
