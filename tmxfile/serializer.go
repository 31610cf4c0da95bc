// Package tmxfile reads and writes maps and tilesets in the TMX/TSX XML formats.
package tmxfile

import (
	"encoding/xml"
	"path/filepath"
	"sync"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/gofs"
	"github.com/jamesrr39/goutil/logpkg"
	"github.com/jamesrr39/tmxkit/tilemap"
)

const filePerm = 0644

type Options struct {
	// Encoding and Compression, when set, override the choice stored on each tile layer.
	// Compression only applies to base64 data.
	Encoding    string
	Compression string
	// EmbedTilesets writes tilesets loaded from TSX files inline instead of by reference.
	EmbedTilesets bool
}

// Serializer converts between documents and the tilemap model. External tilesets are loaded
// once per path and shared by every map the Serializer loads.
type Serializer struct {
	fs      gofs.Fs
	logger  *logpkg.Logger
	options Options

	mu       sync.Mutex
	tilesets map[string]*tilemap.Tileset
}

func NewSerializer(fs gofs.Fs, logger *logpkg.Logger, options Options) *Serializer {
	return &Serializer{
		fs:       fs,
		logger:   logger,
		options:  options,
		tilesets: make(map[string]*tilemap.Tileset),
	}
}

// OpenMap reads the map document at path. Relative paths inside it are resolved against its directory.
func (s *Serializer) OpenMap(path string) (*tilemap.Map, errorsx.Error) {
	data, err := s.fs.ReadFile(path)
	if err != nil {
		return nil, errorsx.Wrap(err, "path", path)
	}
	m, err := s.LoadMap(data, filepath.Dir(path))
	if err != nil {
		return nil, errorsx.Wrap(err, "path", path)
	}
	return m, nil
}

// LoadMap parses a map document. baseDir is the directory relative references are resolved against.
func (s *Serializer) LoadMap(data []byte, baseDir string) (*tilemap.Map, errorsx.Error) {
	var doc xmlMap
	err := xml.Unmarshal(data, &doc)
	if err != nil {
		return nil, errorsx.Wrap(ErrMalformedDocument, "cause", err.Error())
	}
	if doc.XMLName.Local != "map" {
		return nil, errorsx.Wrap(ErrMalformedDocument, "reason", "root element is not a map", "root", doc.XMLName.Local)
	}
	r := &mapReader{s: s, baseDir: baseDir}
	return r.readMap(&doc)
}

// DumpMap writes m as a document. References to external files are written relative to baseDir.
func (s *Serializer) DumpMap(m *tilemap.Map, baseDir string) ([]byte, errorsx.Error) {
	w := &mapWriter{s: s, baseDir: baseDir}
	doc, err := w.writeMap(m)
	if err != nil {
		return nil, err
	}
	return marshal(doc)
}

// SaveMap writes m to path. External tilesets are referenced, not written.
func (s *Serializer) SaveMap(m *tilemap.Map, path string) errorsx.Error {
	data, err := s.DumpMap(m, filepath.Dir(path))
	if err != nil {
		return err
	}
	return s.writeFile(path, data)
}

// OpenTileset reads the TSX document at path, or returns the tileset already loaded from it.
func (s *Serializer) OpenTileset(path string) (*tilemap.Tileset, errorsx.Error) {
	key := filepath.Clean(path)

	s.mu.Lock()
	ts, ok := s.tilesets[key]
	s.mu.Unlock()
	if ok {
		return ts, nil
	}

	s.logger.Debug("loading tileset %q", key)
	data, err := s.fs.ReadFile(key)
	if err != nil {
		return nil, errorsx.Wrap(err, "path", key)
	}
	ts, err = s.LoadTileset(data, filepath.Dir(key))
	if err != nil {
		return nil, errorsx.Wrap(err, "path", key)
	}
	ts.Source = key

	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.tilesets[key]
	if ok {
		return existing, nil
	}
	s.tilesets[key] = ts
	return ts, nil
}

// LoadTileset parses a TSX document.
func (s *Serializer) LoadTileset(data []byte, baseDir string) (*tilemap.Tileset, errorsx.Error) {
	var doc xmlTileset
	err := xml.Unmarshal(data, &doc)
	if err != nil {
		return nil, errorsx.Wrap(ErrMalformedDocument, "cause", err.Error())
	}
	if doc.XMLName.Local != "tileset" {
		return nil, errorsx.Wrap(ErrMalformedDocument, "reason", "root element is not a tileset", "root", doc.XMLName.Local)
	}
	r := &mapReader{s: s, baseDir: baseDir}
	return r.readTileset(&doc)
}

func (s *Serializer) DumpTileset(ts *tilemap.Tileset, baseDir string) ([]byte, errorsx.Error) {
	w := &mapWriter{s: s, baseDir: baseDir}
	doc, err := w.writeTileset(ts)
	if err != nil {
		return nil, err
	}
	return marshal(doc)
}

// SaveTileset writes ts to path as a TSX document.
func (s *Serializer) SaveTileset(ts *tilemap.Tileset, path string) errorsx.Error {
	data, err := s.DumpTileset(ts, filepath.Dir(path))
	if err != nil {
		return err
	}
	return s.writeFile(path, data)
}

func (s *Serializer) writeFile(path string, data []byte) errorsx.Error {
	err := s.fs.MkdirAll(filepath.Dir(path), 0755)
	if err != nil {
		return errorsx.Wrap(err, "path", path)
	}
	err = s.fs.WriteFile(path, data, filePerm)
	if err != nil {
		return errorsx.Wrap(err, "path", path)
	}
	s.logger.Debug("wrote %q (%d bytes)", path, len(data))
	return nil
}

func marshal(doc interface{}) ([]byte, errorsx.Error) {
	out, err := xml.MarshalIndent(doc, "", " ")
	if err != nil {
		return nil, errorsx.Wrap(err)
	}
	data := append([]byte(xml.Header), out...)
	return append(data, '\n'), nil
}

// relPath expresses target relative to baseDir, falling back to target when that is not possible.
func relPath(baseDir, target string) string {
	if baseDir == "" {
		return target
	}
	rel, err := filepath.Rel(baseDir, target)
	if err != nil {
		return target
	}
	return filepath.ToSlash(rel)
}
