package tilemap

import (
	"errors"

	"github.com/jamesrr39/tmxkit/namedlist"
)

var (
	// ErrUsedTileset is returned when removing a tileset that tiles in the map still use.
	ErrUsedTileset = errors.New("UsedTileset")
	// ErrTilesetNotInMap is returned when a GID is not covered by any of the map's tilesets.
	ErrTilesetNotInMap  = errors.New("TilesetNotInMap")
	ErrInvalidGID       = errors.New("InvalidGID")
	ErrTooManyTiles     = errors.New("TooManyTiles")
	ErrInvalidSize      = errors.New("InvalidSize")
	ErrForeignLayer     = errors.New("ForeignLayer")
	ErrForeignObject    = errors.New("ForeignObject")
	ErrDuplicateTileset = errors.New("DuplicateTileset")
	// ErrDetachedTile is returned when a tile object that is on no layer is asked to change its tile.
	ErrDetachedTile = errors.New("DetachedTile")

	ErrIndexOutOfRange = namedlist.ErrIndexOutOfRange
)
