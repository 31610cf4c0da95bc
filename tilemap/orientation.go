package tilemap

import (
	"strings"

	"github.com/jamesrr39/goutil/errorsx"
)

// Bit layout of an encoded cell value, shared with every other TMX tool.
const (
	FlagHorizontal uint32 = 0x80000000
	FlagVertical   uint32 = 0x40000000
	FlagDiagonal   uint32 = 0x20000000
	GIDMask        uint32 = 0x1FFFFFFF
	flagMask              = FlagHorizontal | FlagVertical | FlagDiagonal
)

// FlipFlags is one of the eight symmetries of a square, stored as independent flip bits.
// The diagonal flip is applied first, then the horizontal, then the vertical one.
type FlipFlags struct {
	H, V, D bool
}

// successors of each state code (H<<2 | V<<1 | D) under a quarter turn
var (
	clockwise        = [8]uint8{5, 4, 1, 0, 7, 6, 3, 2}
	counterClockwise = [8]uint8{3, 2, 7, 6, 1, 0, 5, 4}
)

func (f FlipFlags) code() uint8 {
	var c uint8
	if f.H {
		c |= 4
	}
	if f.V {
		c |= 2
	}
	if f.D {
		c |= 1
	}
	return c
}

func flagsFromCode(c uint8) FlipFlags {
	return FlipFlags{H: c&4 != 0, V: c&2 != 0, D: c&1 != 0}
}

func (f FlipFlags) HFlip() FlipFlags {
	f.H = !f.H
	return f
}

func (f FlipFlags) VFlip() FlipFlags {
	f.V = !f.V
	return f
}

// Rotate turns the state a quarter turn clockwise.
func (f FlipFlags) Rotate() FlipFlags {
	return flagsFromCode(clockwise[f.code()])
}

// RotateCounterClockwise turns the state a quarter turn counter-clockwise.
func (f FlipFlags) RotateCounterClockwise() FlipFlags {
	return flagsFromCode(counterClockwise[f.code()])
}

// RotateBy turns the state by a multiple of 90 degrees. Positive is clockwise.
func (f FlipFlags) RotateBy(degrees int) (FlipFlags, errorsx.Error) {
	if degrees%90 != 0 {
		return f, errorsx.Errorf("tiles can only be rotated in 90 degree steps, got %d", degrees)
	}
	steps := degrees / 90
	table := &clockwise
	if steps < 0 {
		table = &counterClockwise
		steps = -steps
	}
	c := f.code()
	for i := 0; i < steps%4; i++ {
		c = table[c]
	}
	return flagsFromCode(c), nil
}

func (f FlipFlags) bits() uint32 {
	var b uint32
	if f.H {
		b |= FlagHorizontal
	}
	if f.V {
		b |= FlagVertical
	}
	if f.D {
		b |= FlagDiagonal
	}
	return b
}

func (f FlipFlags) String() string {
	var sb strings.Builder
	if f.H {
		sb.WriteByte('H')
	}
	if f.V {
		sb.WriteByte('V')
	}
	if f.D {
		sb.WriteByte('D')
	}
	return sb.String()
}

// TileValue is the raw encoded content of a cell: a GID plus the three flip bits. 0 is an empty cell.
type TileValue uint32

func NewTileValue(gid uint32, flags FlipFlags) TileValue {
	return TileValue(gid&GIDMask | flags.bits())
}

func (v TileValue) GID() uint32 {
	return uint32(v) & GIDMask
}

func (v TileValue) Flags() FlipFlags {
	return FlipFlags{
		H: uint32(v)&FlagHorizontal != 0,
		V: uint32(v)&FlagVertical != 0,
		D: uint32(v)&FlagDiagonal != 0,
	}
}

func (v TileValue) IsEmpty() bool {
	return v.GID() == 0
}

func (v TileValue) WithGID(gid uint32) TileValue {
	return TileValue(uint32(v)&flagMask | gid&GIDMask)
}

func (v TileValue) WithFlags(flags FlipFlags) TileValue {
	return NewTileValue(v.GID(), flags)
}
