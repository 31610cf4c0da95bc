// Package tmximage holds the pixel access backends used by tilesets and image layers.
package tmximage

import (
	"errors"
	"image"
	"image/draw"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/tmxkit/tmxcolor"
)

var (
	ErrPixelOutOfBounds      = errors.New("PixelOutOfBounds")
	ErrImageDataNotAvailable = errors.New("ImageDataNotAvailable")
)

// Image is a 2D grid of pixels. Negative coordinates wrap around from the far edge.
// SetPixel changes only the in-memory pixels; nothing is written back to a source file.
type Image interface {
	Width() int
	Height() int
	Pixel(x, y int) (tmxcolor.Color, errorsx.Error)
	SetPixel(x, y int, c tmxcolor.Color) errorsx.Error
}

// wrap applies negative-index wrapping and bounds checks.
func wrap(x, y, w, h int) (int, int, errorsx.Error) {
	if x < 0 {
		x += w
	}
	if y < 0 {
		y += h
	}
	if x < 0 || y < 0 || x >= w || y >= h {
		return 0, 0, errorsx.Wrap(ErrPixelOutOfBounds, "x", x, "y", y, "width", w, "height", h)
	}
	return x, y, nil
}

// Memory is an in-memory image.
type Memory struct {
	img *image.NRGBA
}

func NewMemory(width, height int) *Memory {
	return &Memory{image.NewNRGBA(image.Rect(0, 0, width, height))}
}

// FromImage copies any decoded image into a Memory image with its origin at (0,0).
func FromImage(src image.Image) *Memory {
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return &Memory{dst}
}

func (m *Memory) Width() int {
	return m.img.Bounds().Dx()
}

func (m *Memory) Height() int {
	return m.img.Bounds().Dy()
}

func (m *Memory) Pixel(x, y int) (tmxcolor.Color, errorsx.Error) {
	x, y, err := wrap(x, y, m.Width(), m.Height())
	if err != nil {
		return tmxcolor.Color{}, err
	}
	return tmxcolor.FromColor(m.img.NRGBAAt(x, y)), nil
}

func (m *Memory) SetPixel(x, y int, c tmxcolor.Color) errorsx.Error {
	x, y, err := wrap(x, y, m.Width(), m.Height())
	if err != nil {
		return err
	}
	m.img.SetNRGBA(x, y, c.NRGBA())
	return nil
}

// NRGBA exposes the backing pixels.
func (m *Memory) NRGBA() *image.NRGBA {
	return m.img
}

// Region is a rectangular window onto a larger image.
type Region struct {
	parent        Image
	left, top     int
	width, height int
}

func NewRegion(parent Image, left, top, width, height int) *Region {
	return &Region{parent, left, top, width, height}
}

func (r *Region) Parent() Image {
	return r.parent
}

// TopLeft is the position of the region inside its parent.
func (r *Region) TopLeft() (int, int) {
	return r.left, r.top
}

func (r *Region) Width() int {
	return r.width
}

func (r *Region) Height() int {
	return r.height
}

func (r *Region) Pixel(x, y int) (tmxcolor.Color, errorsx.Error) {
	x, y, err := wrap(x, y, r.width, r.height)
	if err != nil {
		return tmxcolor.Color{}, err
	}
	return r.parent.Pixel(x+r.left, y+r.top)
}

func (r *Region) SetPixel(x, y int, c tmxcolor.Color) errorsx.Error {
	x, y, err := wrap(x, y, r.width, r.height)
	if err != nil {
		return err
	}
	return r.parent.SetPixel(x+r.left, y+r.top, c)
}
