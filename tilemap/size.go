package tilemap

import "github.com/jamesrr39/goutil/errorsx"

// Size is a width/height pair, in tiles or in pixels depending on context.
type Size struct {
	Width  int
	Height int
}

func (s Size) validate(what string) errorsx.Error {
	if s.Width <= 0 || s.Height <= 0 {
		return errorsx.Wrap(ErrInvalidSize, "of", what, "width", s.Width, "height", s.Height)
	}
	return nil
}

// Mul multiplies component-wise.
func (s Size) Mul(other Size) Size {
	return Size{s.Width * other.Width, s.Height * other.Height}
}

// Transposed swaps width and height.
func (s Size) Transposed() Size {
	return Size{s.Height, s.Width}
}
