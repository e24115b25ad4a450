package quantize

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/makeworld-the-better-one/dither/v2"
	"github.com/mccutchen/palettor"
)

// sampleSize bounds the thumbnail palettes are extracted from. Keeps
// palettor.Extract fast, see the palettor CLI source:
// https://github.com/mccutchen/palettor/blob/3eaed180/cmd/palettor/palettor.go#L57
const sampleSize = 200

// KMeans extracts a palette per frame with k-means clustering, then maps the
// frame onto it.
type KMeans struct {
	// Colors is the palette size, 256 if 0.
	Colors int
	// Iterations caps the clustering, 500 if 0.
	Iterations int

	// Matrix dithers the mapping. nil picks the nearest color for every pixel.
	Matrix     dither.ErrorDiffusionMatrix
	Serpentine bool
}

// Palette returns the colors extracted from img.
func (k *KMeans) Palette(img *image.NRGBA) ([]color.Color, error) {
	colors := k.Colors
	if colors <= 0 || colors > MaxColors {
		colors = MaxColors
	}
	iterations := k.Iterations
	if iterations <= 0 {
		iterations = 500
	}

	sample := imaging.Fit(img, sampleSize, sampleSize, imaging.NearestNeighbor)
	if sample.Bounds().Empty() {
		return nil, fmt.Errorf("frame has no pixels")
	}
	// The sample can have fewer colors than the frame, and then there's
	// nothing to cluster
	if few := distinctColors(sample, colors); few != nil {
		return few, nil
	}

	p, err := palettor.Extract(colors, iterations, sample)
	if err != nil {
		return nil, fmt.Errorf("error extracting palette: %w", err)
	}
	extracted := p.Colors()
	palette := make([]color.Color, 0, len(extracted))
	for _, c := range extracted {
		palette = append(palette, opaque(c))
	}
	if len(palette) == 0 {
		return nil, fmt.Errorf("no palette extracted")
	}
	return palette, nil
}

func (k *KMeans) Reduce(img *image.NRGBA) (*image.Paletted, error) {
	palette, err := k.Palette(img)
	if err != nil {
		return nil, err
	}
	return mapTo(img, palette, k.Matrix, k.Serpentine), nil
}
