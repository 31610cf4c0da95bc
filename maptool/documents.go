// Package maptool holds the operations behind the tmxtool command: opening and saving maps in any of the
// supported document formats, consistency checks over many files and file watching.
package maptool

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/gofs"
	"github.com/jamesrr39/goutil/logpkg"
	"github.com/jamesrr39/tmxkit/tiledjson"
	"github.com/jamesrr39/tmxkit/tilemap"
	"github.com/jamesrr39/tmxkit/tmxfile"
)

var ErrUnknownFormat = errors.New("UnknownFormat")

type Format string

const (
	FormatTMX  Format = "tmx"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatForPath picks the document format from the file extension.
func FormatForPath(path string) (Format, errorsx.Error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tmx", ".xml":
		return FormatTMX, nil
	case ".json", ".tmj":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", errorsx.Wrap(ErrUnknownFormat, "path", path)
}

// Documents opens and saves maps, choosing the format by file extension.
// External tilesets are shared between all maps it opens.
type Documents struct {
	fs         gofs.Fs
	logger     *logpkg.Logger
	serializer *tmxfile.Serializer
	converter  *tiledjson.Converter
}

func NewDocuments(fs gofs.Fs, logger *logpkg.Logger, options tmxfile.Options) *Documents {
	serializer := tmxfile.NewSerializer(fs, logger, options)
	return &Documents{
		fs:         fs,
		logger:     logger,
		serializer: serializer,
		converter:  tiledjson.NewConverter(fs, serializer),
	}
}

func (d *Documents) Open(path string) (*tilemap.Map, errorsx.Error) {
	format, err := FormatForPath(path)
	if err != nil {
		return nil, err
	}

	if format == FormatTMX {
		return d.serializer.OpenMap(path)
	}

	data, readErr := d.fs.ReadFile(path)
	if readErr != nil {
		return nil, errorsx.Wrap(readErr, "path", path)
	}

	var doc *tiledjson.Document
	switch format {
	case FormatJSON:
		doc, err = tiledjson.DecodeJSON(data)
	case FormatYAML:
		doc, err = tiledjson.DecodeYAML(data)
	}
	if err != nil {
		return nil, errorsx.Wrap(err, "path", path)
	}

	m, err := d.converter.FromDocument(doc, filepath.Dir(path))
	if err != nil {
		return nil, errorsx.Wrap(err, "path", path)
	}
	return m, nil
}

func (d *Documents) Save(m *tilemap.Map, path string) errorsx.Error {
	format, err := FormatForPath(path)
	if err != nil {
		return err
	}

	if format == FormatTMX {
		return d.serializer.SaveMap(m, path)
	}

	doc, err := d.converter.ToDocument(m, filepath.Dir(path))
	if err != nil {
		return errorsx.Wrap(err, "path", path)
	}

	var data []byte
	switch format {
	case FormatJSON:
		data, err = tiledjson.EncodeJSON(doc)
	case FormatYAML:
		data, err = tiledjson.EncodeYAML(doc)
	}
	if err != nil {
		return errorsx.Wrap(err, "path", path)
	}

	mkdirErr := d.fs.MkdirAll(filepath.Dir(path), 0755)
	if mkdirErr != nil {
		return errorsx.Wrap(mkdirErr, "path", path)
	}
	writeErr := d.fs.WriteFile(path, data, 0644)
	if writeErr != nil {
		return errorsx.Wrap(writeErr, "path", path)
	}
	d.logger.Debug("wrote %q as %s (%d bytes)", path, format, len(data))
	return nil
}
