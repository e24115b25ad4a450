// Package alpha converts true-color frames to paletted ones without losing
// transparency.
//
// Palette index 0 of every converted frame is reserved for transparent
// pixels, and its color differs from every color used by an opaque pixel.
// Encoders that key transparency on a color, rather than an index, can then
// never make an opaque pixel disappear.
package alpha

import (
	"fmt"
	"image"
)

// Quantizer reduces an opaque frame to at most 256 colors. The palette order
// and contents are up to the implementation.
type Quantizer interface {
	Reduce(img *image.NRGBA) (*image.Paletted, error)
}

// Options control Convert. The zero value is ready to use.
type Options struct {
	// Pixels with alpha at or below Threshold are transparent.
	Threshold uint8

	// Keys picks the color of index 0. nil means Scan{}.
	Keys KeyPicker

	// Fill colors unused palette slots. nil means black.
	Fill FillFunc
}

func (o Options) keys() KeyPicker {
	if o.Keys == nil {
		return Scan{}
	}
	return o.Keys
}

func (o Options) fill() RGB {
	if o.Fill == nil {
		return RGB{}
	}
	return o.Fill()
}

// opaqueCopy returns frame with full alpha everywhere. Transparent pixels take
// the color of the first opaque pixel, so they don't add colors of their own
// for the quantizer to spend palette entries on.
func opaqueCopy(frame *image.NRGBA, trans TransparentSet) *image.NRGBA {
	b := frame.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))

	var filler [4]uint8
	filler[3] = 255
	for y := 0; y < h; y++ {
		src := frame.Pix[y*frame.Stride : y*frame.Stride+w*4]
		copy(dst.Pix[y*dst.Stride:], src)
	}
	for p := 0; p < w*h; p++ {
		if !trans.Has(p) {
			copy(filler[:3], dst.Pix[p*4:p*4+3])
			break
		}
	}
	for p := 0; p < w*h; p++ {
		if trans.Has(p) {
			copy(dst.Pix[p*4:p*4+4], filler[:])
		} else {
			dst.Pix[p*4+3] = 255
		}
	}
	return dst
}

// indices returns the pixel indices of m as one byte per pixel, row by row,
// after checking that m matches the frame and its palette covers them.
func indices(m *image.Paletted, w, h int) ([]uint8, error) {
	if m == nil {
		return nil, fmt.Errorf("%w: no image", ErrInconsistentPalette)
	}
	if m.Bounds().Dx() != w || m.Bounds().Dy() != h {
		return nil, fmt.Errorf("%w: got %dx%d, want %dx%d",
			ErrInconsistentPalette, m.Bounds().Dx(), m.Bounds().Dy(), w, h)
	}
	if len(m.Palette) == 0 || len(m.Palette) > 256 {
		return nil, fmt.Errorf("%w: %d palette entries", ErrInconsistentPalette, len(m.Palette))
	}
	pix := make([]uint8, w*h)
	for y := 0; y < h; y++ {
		copy(pix[y*w:(y+1)*w], m.Pix[y*m.Stride:y*m.Stride+w])
	}
	for p, idx := range pix {
		if int(idx) >= len(m.Palette) || m.Palette[idx] == nil {
			return nil, fmt.Errorf("%w: pixel %d uses undefined index %d", ErrInconsistentPalette, p, idx)
		}
	}
	return pix, nil
}

// Convert turns frame into a paletted image whose index 0 is transparent.
// Every pixel with alpha at or below the threshold ends up at index 0, and no
// other pixel does. The returned image's bounds start at the origin.
func Convert(frame *image.NRGBA, q Quantizer, opts Options) (*image.Paletted, error) {
	b := frame.Bounds()
	w, h := b.Dx(), b.Dy()

	trans := Detect(frame, opts.Threshold)
	m, err := q.Reduce(opaqueCopy(frame, trans))
	if err != nil {
		return nil, fmt.Errorf("error quantizing frame: %w", err)
	}
	pix, err := indices(m, w, h)
	if err != nil {
		return nil, err
	}

	res, err := Resolve(pix, MapPalette(m.Palette), trans, opts.keys())
	if err != nil {
		return nil, err
	}

	return &image.Paletted{
		Pix:     Rewrite(pix, res.Remap, trans),
		Stride:  w,
		Rect:    image.Rect(0, 0, w, h),
		Palette: WritePalette(res.Colors, opts.fill()),
	}, nil
}
