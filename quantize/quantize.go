// Package quantize reduces true-color frames to paletted images of at most 256
// colors. The quantizers here don't know about transparency, they're handed
// opaque frames by package alpha.
package quantize

import (
	"image"
	"image/color"
	"image/draw"
	"strings"

	"github.com/makeworld-the-better-one/dither/v2"
)

// MaxColors is the largest palette a GIF frame can have.
const MaxColors = 256

// Quantizer is implemented by every type in this package. It matches
// alpha.Quantizer.
type Quantizer interface {
	Reduce(img *image.NRGBA) (*image.Paletted, error)
}

var edmName = map[string]dither.ErrorDiffusionMatrix{
	"simple2d":            dither.Simple2D,
	"floydsteinberg":      dither.FloydSteinberg,
	"falsefloydsteinberg": dither.FalseFloydSteinberg,
	"jarvisjudiceninke":   dither.JarvisJudiceNinke,
	"atkinson":            dither.Atkinson,
	"stucki":              dither.Stucki,
	"burkes":              dither.Burkes,
	"sierra":              dither.Sierra,
	"sierra3":             dither.Sierra3,
	"tworowsierra":        dither.TwoRowSierra,
	"sierralite":          dither.SierraLite,
	"sierra2_4a":          dither.Sierra2_4A,
	"stevenpigeon":        dither.StevenPigeon,
}

// Matrix returns the error diffusion matrix with the given name. Names are
// case insensitive and dashes count as underscores. "none" returns a nil
// matrix, which maps every pixel to its nearest palette color.
func Matrix(name string) (dither.ErrorDiffusionMatrix, bool) {
	name = strings.ReplaceAll(strings.ToLower(name), "-", "_")
	if name == "none" || name == "" {
		return nil, true
	}
	m, ok := edmName[name]
	return m, ok
}

// New returns the quantizer used by the command line: frames with few enough
// colors are mapped exactly, the rest go through k-means with the given number
// of colors. If palette isn't empty it's used for every frame instead.
func New(palette []color.Color, colors int, matrix dither.ErrorDiffusionMatrix, serpentine bool) Quantizer {
	if len(palette) > 0 {
		return &Fixed{Palette: palette, Matrix: matrix, Serpentine: serpentine}
	}
	if colors <= 0 || colors > MaxColors {
		colors = MaxColors
	}
	return &Exact{
		Max: colors,
		Fallback: &KMeans{
			Colors:     colors,
			Matrix:     matrix,
			Serpentine: serpentine,
		},
	}
}

// opaque converts c to fully opaque NRGBA.
func opaque(c color.Color) color.NRGBA {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	n.A = 255
	return n
}

// mapTo maps img onto palette, dithering with matrix if it's set.
func mapTo(img image.Image, palette []color.Color, matrix dither.ErrorDiffusionMatrix, serpentine bool) *image.Paletted {
	if matrix != nil && len(palette) >= 2 {
		d := dither.NewDitherer(palette)
		if d != nil {
			d.Matrix = matrix
			d.Serpentine = serpentine
			return d.DitherPaletted(img)
		}
	}
	// Nearest color, see image.Paletted.Set
	pm := image.NewPaletted(img.Bounds(), color.Palette(palette))
	draw.Draw(pm, pm.Rect, img, img.Bounds().Min, draw.Src)
	return pm
}

// distinctColors returns the colors of img in order of appearance, or nil
// once there are more than limit of them.
func distinctColors(img *image.NRGBA, limit int) []color.Color {
	seen := make(map[color.NRGBA]struct{})
	var colors []color.Color
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := img.NRGBAAt(x, y)
			if _, ok := seen[c]; ok {
				continue
			}
			if len(colors) == limit {
				return nil
			}
			seen[c] = struct{}{}
			colors = append(colors, opaque(c))
		}
	}
	return colors
}
