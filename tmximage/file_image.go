package tmximage

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"path/filepath"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/gofs"
	"github.com/jamesrr39/tmxkit/tmxcolor"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// FileImage is an image referenced by path from a map or tileset document.
// It is decoded the first time pixel data or an undeclared size is needed.
type FileImage struct {
	Source string
	// Trans is the colour key rendered as transparent, if any.
	Trans *tmxcolor.Color

	declaredWidth, declaredHeight int

	fs      gofs.Fs
	baseDir string
	decoded *Memory
}

// NewFileImage creates an image for source, resolved relative to baseDir.
// width and height are the size recorded in the document, or 0 when unknown.
func NewFileImage(fs gofs.Fs, baseDir, source string, width, height int) *FileImage {
	return &FileImage{
		Source:         source,
		declaredWidth:  width,
		declaredHeight: height,
		fs:             fs,
		baseDir:        baseDir,
	}
}

// Path is where the image is read from.
func (f *FileImage) Path() string {
	if filepath.IsAbs(f.Source) || f.baseDir == "" {
		return f.Source
	}
	return filepath.Join(f.baseDir, f.Source)
}

// DeclaredSize returns the size recorded in the document without decoding anything.
func (f *FileImage) DeclaredSize() (int, int) {
	return f.declaredWidth, f.declaredHeight
}

func (f *FileImage) Loaded() bool {
	return f.decoded != nil
}

// Load reads and decodes the file. Calling it again is a no-op.
func (f *FileImage) Load() errorsx.Error {
	if f.decoded != nil {
		return nil
	}
	if f.fs == nil || f.Source == "" {
		return errorsx.Wrap(ErrImageDataNotAvailable, "source", f.Source)
	}

	data, err := f.fs.ReadFile(f.Path())
	if err != nil {
		return errorsx.Wrap(err, "path", f.Path())
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return errorsx.Wrap(err, "path", f.Path())
	}

	mem := FromImage(img)
	if f.declaredWidth > 0 && f.declaredHeight > 0 &&
		(mem.Width() != f.declaredWidth || mem.Height() != f.declaredHeight) {
		return errorsx.Errorf(
			"image %q (%s) is %dx%d, but the document declares %dx%d",
			f.Path(), format, mem.Width(), mem.Height(), f.declaredWidth, f.declaredHeight,
		)
	}

	if f.Trans != nil {
		key := f.Trans.NRGBA()
		pix := mem.NRGBA()
		for y := 0; y < mem.Height(); y++ {
			for x := 0; x < mem.Width(); x++ {
				c := pix.NRGBAAt(x, y)
				if c.R == key.R && c.G == key.G && c.B == key.B {
					c.A = 0
					pix.SetNRGBA(x, y, c)
				}
			}
		}
	}

	f.decoded = mem
	return nil
}

// Width is the declared width, or the decoded width when none was declared.
// It is 0 if neither is available.
func (f *FileImage) Width() int {
	if f.declaredWidth > 0 {
		return f.declaredWidth
	}
	if f.Load() != nil {
		return 0
	}
	return f.decoded.Width()
}

func (f *FileImage) Height() int {
	if f.declaredHeight > 0 {
		return f.declaredHeight
	}
	if f.Load() != nil {
		return 0
	}
	return f.decoded.Height()
}

func (f *FileImage) Pixel(x, y int) (tmxcolor.Color, errorsx.Error) {
	err := f.Load()
	if err != nil {
		return tmxcolor.Color{}, err
	}
	return f.decoded.Pixel(x, y)
}

func (f *FileImage) SetPixel(x, y int, c tmxcolor.Color) errorsx.Error {
	err := f.Load()
	if err != nil {
		return err
	}
	return f.decoded.SetPixel(x, y, c)
}
