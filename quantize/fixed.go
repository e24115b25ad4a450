package quantize

import (
	"errors"
	"image"
	"image/color"

	"github.com/makeworld-the-better-one/dither/v2"
)

// Fixed ignores the colors of the frame and maps it onto Palette each time.
// This is useful for a palette the user picked, or one of the standard ones
// like palette.Plan9.
type Fixed struct {
	Palette []color.Color

	Matrix     dither.ErrorDiffusionMatrix
	Serpentine bool
}

// Quantize implements draw.Quantizer, so a Fixed can also be given to the
// image/gif encoder directly.
func (f *Fixed) Quantize(p color.Palette, m image.Image) color.Palette {
	return f.Palette
}

func (f *Fixed) Reduce(img *image.NRGBA) (*image.Paletted, error) {
	if len(f.Palette) == 0 {
		return nil, errors.New("fixed palette is empty")
	}
	if len(f.Palette) > MaxColors {
		return nil, errors.New("the GIF format only supports 256 colors or less in the palette")
	}
	return mapTo(img, f.Palette, f.Matrix, f.Serpentine), nil
}
