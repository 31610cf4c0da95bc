package tmxfile

import "errors"

var (
	// ErrMalformedDocument is returned when a document is missing required attributes,
	// has unparsable values or has layer data of the wrong length.
	ErrMalformedDocument = errors.New("MalformedDocument")
	// ErrUnsupportedEncoding is returned for layer data encodings or compressions that cannot be read or written.
	ErrUnsupportedEncoding = errors.New("UnsupportedEncoding")
)
