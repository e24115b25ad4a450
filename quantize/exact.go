package quantize

import (
	"errors"
	"image"
	"image/color"
)

// Exact keeps every color of a frame that has at most Max of them. The palette
// is in order of first appearance, scanning rows top to bottom. Frames with
// more colors are handed to Fallback.
type Exact struct {
	Max      int
	Fallback Quantizer
}

func (e *Exact) Reduce(img *image.NRGBA) (*image.Paletted, error) {
	limit := e.Max
	if limit <= 0 || limit > MaxColors {
		limit = MaxColors
	}

	b := img.Bounds()
	pm := image.NewPaletted(b, make(color.Palette, 0, limit))
	index := make(map[color.NRGBA]uint8, limit)

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := img.NRGBAAt(x, y)
			i, ok := index[c]
			if !ok {
				if len(pm.Palette) == limit {
					if e.Fallback == nil {
						return nil, errors.New("frame has too many colors and no fallback quantizer is set")
					}
					return e.Fallback.Reduce(img)
				}
				i = uint8(len(pm.Palette))
				index[c] = i
				pm.Palette = append(pm.Palette, c)
			}
			pm.SetColorIndex(x, y, i)
		}
	}
	return pm, nil
}
