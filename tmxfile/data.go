package tmxfile

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/tmxkit/tilemap"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
)

// Layer data encodings. Tile layers store EncodingXML as "".
const (
	EncodingXML    = "xml"
	EncodingCSV    = "csv"
	EncodingBase64 = "base64"
)

// Compressions of base64 layer data. Tile layers store CompressionNone as "".
const (
	CompressionNone = "none"
	CompressionZlib = "zlib"
	CompressionGzip = "gzip"
	CompressionZstd = "zstd"
)

func decodeData(d *xmlData, count int) ([]tilemap.TileValue, errorsx.Error) {
	var values []tilemap.TileValue
	switch d.Encoding {
	case "":
		if d.Compression != "" {
			return nil, errorsx.Wrap(ErrUnsupportedEncoding, "encoding", EncodingXML, "compression", d.Compression)
		}
		values = make([]tilemap.TileValue, 0, len(d.Tiles))
		for _, t := range d.Tiles {
			v, err := parseTileValue(t.GID)
			if err != nil {
				return nil, err
			}
			values = append(values, v)
		}
	case EncodingCSV:
		if d.Compression != "" {
			return nil, errorsx.Wrap(ErrUnsupportedEncoding, "encoding", EncodingCSV, "compression", d.Compression)
		}
		fields := strings.FieldsFunc(d.Text, func(r rune) bool {
			return r == ',' || unicode.IsSpace(r)
		})
		values = make([]tilemap.TileValue, 0, len(fields))
		for _, field := range fields {
			v, err := parseTileValue(field)
			if err != nil {
				return nil, err
			}
			values = append(values, v)
		}
	case EncodingBase64:
		raw, err := base64.StdEncoding.DecodeString(strings.Join(strings.Fields(d.Text), ""))
		if err != nil {
			return nil, errorsx.Wrap(ErrMalformedDocument, "cause", err.Error())
		}
		raw, err = decompress(raw, d.Compression, count*4)
		if err != nil {
			return nil, errorsx.Wrap(err, "compression", d.Compression)
		}
		if len(raw)%4 != 0 {
			return nil, errorsx.Wrap(ErrMalformedDocument, "reason", "layer data is not a whole number of 32-bit values", "bytes", len(raw))
		}
		values = make([]tilemap.TileValue, len(raw)/4)
		for i := range values {
			values[i] = tilemap.TileValue(binary.LittleEndian.Uint32(raw[i*4:]))
		}
	default:
		return nil, errorsx.Wrap(ErrUnsupportedEncoding, "encoding", d.Encoding)
	}

	if len(values) != count {
		return nil, errorsx.Wrap(ErrMalformedDocument, "reason", "wrong number of tiles in layer data", "expected", count, "got", len(values))
	}
	return values, nil
}

func parseTileValue(s string) (tilemap.TileValue, errorsx.Error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, errorsx.Wrap(ErrMalformedDocument, "gid", s)
	}
	return tilemap.TileValue(v), nil
}

// maxZstdDecoderMemory caps the window a zstd frame may ask the decoder to allocate.
const maxZstdDecoderMemory = 64 << 20

// decompress inflates layer data. Output longer than limit bytes is rejected without being read in full.
func decompress(data []byte, compression string, limit int) ([]byte, error) {
	switch compression {
	case "":
		return data, nil
	case CompressionZlib:
		r, err := zlib.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, errorsx.Wrap(ErrMalformedDocument, "cause", err.Error())
		}
		defer r.Close()
		return readAll(r, limit)
	case CompressionGzip:
		r, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, errorsx.Wrap(ErrMalformedDocument, "cause", err.Error())
		}
		defer r.Close()
		return readAll(r, limit)
	case CompressionZstd:
		dec, err := zstd.NewReader(bytes.NewReader(data), zstd.WithDecoderMaxMemory(maxZstdDecoderMemory))
		if err != nil {
			return nil, errorsx.Wrap(ErrMalformedDocument, "cause", err.Error())
		}
		defer dec.Close()
		return readAll(dec, limit)
	default:
		return nil, ErrUnsupportedEncoding
	}
}

func readAll(r io.Reader, limit int) ([]byte, error) {
	out, err := io.ReadAll(io.LimitReader(r, int64(limit)+1))
	if err != nil {
		return nil, errorsx.Wrap(ErrMalformedDocument, "cause", err.Error())
	}
	if len(out) > limit {
		return nil, errorsx.Wrap(ErrMalformedDocument, "reason", "layer data inflates past the size of the map", "limit", limit)
	}
	return out, nil
}

func encodeData(values []tilemap.TileValue, width int, encoding, compression string) (*xmlData, errorsx.Error) {
	switch encoding {
	case "", EncodingXML:
		d := &xmlData{Tiles: make([]*xmlDataTile, len(values))}
		for i, v := range values {
			d.Tiles[i] = &xmlDataTile{}
			if v != 0 {
				d.Tiles[i].GID = strconv.FormatUint(uint64(v), 10)
			}
		}
		return d, nil
	case EncodingCSV:
		var sb strings.Builder
		sb.WriteString("\n")
		for i, v := range values {
			sb.WriteString(strconv.FormatUint(uint64(v), 10))
			if i != len(values)-1 {
				sb.WriteString(",")
			}
			if (i+1)%width == 0 {
				sb.WriteString("\n")
			}
		}
		return &xmlData{Encoding: EncodingCSV, Raw: sb.String()}, nil
	case EncodingBase64:
		raw := make([]byte, len(values)*4)
		for i, v := range values {
			binary.LittleEndian.PutUint32(raw[i*4:], uint32(v))
		}
		if compression == CompressionNone {
			compression = ""
		}
		compressed, err := compress(raw, compression)
		if err != nil {
			return nil, errorsx.Wrap(err, "compression", compression)
		}
		return &xmlData{
			Encoding:    EncodingBase64,
			Compression: compression,
			Raw:         base64.StdEncoding.EncodeToString(compressed),
		}, nil
	default:
		return nil, errorsx.Wrap(ErrUnsupportedEncoding, "encoding", encoding)
	}
}

func compress(data []byte, compression string) ([]byte, error) {
	var buf bytes.Buffer
	switch compression {
	case "":
		return data, nil
	case CompressionZlib:
		w := zlib.NewWriter(&buf)
		_, err := w.Write(data)
		if err != nil {
			return nil, err
		}
		err = w.Close()
		if err != nil {
			return nil, err
		}
	case CompressionGzip:
		w := gzip.NewWriter(&buf)
		_, err := w.Write(data)
		if err != nil {
			return nil, err
		}
		err = w.Close()
		if err != nil {
			return nil, err
		}
	case CompressionZstd:
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, err
		}
		out := enc.EncodeAll(data, nil)
		err = enc.Close()
		if err != nil {
			return nil, err
		}
		return out, nil
	default:
		return nil, ErrUnsupportedEncoding
	}
	return buf.Bytes(), nil
}
