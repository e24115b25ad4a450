// Package anim assembles frames into an animated GIF that keeps their
// transparency.
package anim

import (
	"context"
	"fmt"
	"image"
	"image/gif"
	"io"
	"log"
	"math"
	"runtime"
	"time"

	"github.com/disintegration/imaging"
	"golang.org/x/sync/errgroup"

	"github.com/makeworld-the-better-one/alphagif/alpha"
)

// Assembler turns a list of frames into a GIF.
type Assembler struct {
	// Quantizer reduces every frame to at most 256 colors. Required.
	Quantizer alpha.Quantizer

	Options alpha.Options

	// MaxWidth and MaxHeight bound the canvas. Frames are shrunk to fit,
	// keeping their aspect ratio, but never enlarged. 0 means no bound.
	MaxWidth, MaxHeight int

	// Scale resizes every frame by a factor before fitting it. 0 and 1 keep the
	// size.
	Scale float64

	// Filter is used by Scale and the canvas bound. nil means imaging.Box,
	// which is good at downscaling.
	Filter *imaging.ResampleFilter

	// Upscale enlarges the finished frames by an integer factor, using nearest
	// neighbor so palette indices are kept. 0 and 1 keep the size.
	Upscale int

	// Workers is the number of frames converted at once. 0 means GOMAXPROCS.
	Workers int

	// Log receives progress messages. nil means no logging.
	Log *log.Logger
}

func (a *Assembler) logf(format string, v ...interface{}) {
	if a.Log != nil {
		a.Log.Printf(format, v...)
	}
}

// CheckSizes returns ErrDimensionMismatch if the frames aren't all the same
// size, and ErrEmptyInput if there are none.
func CheckSizes(frames []image.Image) error {
	if len(frames) == 0 {
		return ErrEmptyInput
	}
	first := frames[0].Bounds()
	for i, f := range frames[1:] {
		b := f.Bounds()
		if b.Dx() != first.Dx() || b.Dy() != first.Dy() {
			return fmt.Errorf("%w: frame %d is %dx%d, frame 0 is %dx%d",
				ErrDimensionMismatch, i+1, b.Dx(), b.Dy(), first.Dx(), first.Dy())
		}
	}
	return nil
}

// Assemble converts every frame and returns them as one looping animation.
// Frames keep their order, and each one is shown for its duration from
// durations, see Delays.
//
// All the input is checked before any frame is converted. If any frame fails,
// the first error is returned and there's no animation.
func (a *Assembler) Assemble(ctx context.Context, frames []image.Image, durations []time.Duration) (*gif.GIF, error) {
	if a.Quantizer == nil {
		return nil, fmt.Errorf("assembler has no quantizer")
	}
	if err := CheckSizes(frames); err != nil {
		return nil, err
	}
	delays, err := Delays(durations, len(frames))
	if err != nil {
		return nil, err
	}

	workers := a.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	out := make([]*image.Paletted, len(frames))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range frames {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			pm, err := a.frame(frames[i])
			if err != nil {
				return fmt.Errorf("frame %d: %w", i, err)
			}
			out[i] = pm
			a.logf("Converted frame %d of %d", i+1, len(frames))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	disposal := make([]byte, len(out))
	for i := range disposal {
		// Clearing to the background is the only method that doesn't show
		// earlier frames through transparent pixels
		disposal[i] = gif.DisposalBackground
	}
	b := out[0].Bounds()
	return &gif.GIF{
		Image:    out,
		Delay:    delays,
		Disposal: disposal,
		// 0 loops forever
		LoopCount: 0,
		// The transparent index
		BackgroundIndex: 0,
		Config: image.Config{
			Width:  b.Dx(),
			Height: b.Dy(),
		},
	}, nil
}

// frame prepares and converts one frame.
func (a *Assembler) frame(img image.Image) (*image.Paletted, error) {
	pm, err := alpha.Convert(a.prepare(img), a.Quantizer, a.Options)
	if err != nil {
		return nil, err
	}
	return upscale(pm, a.Upscale), nil
}

func (a *Assembler) filter() imaging.ResampleFilter {
	if a.Filter == nil {
		return imaging.Box
	}
	return *a.Filter
}

// prepare returns an NRGBA copy of img, at the origin, resized as configured.
func (a *Assembler) prepare(img image.Image) *image.NRGBA {
	dst := imaging.Clone(img)

	if a.Scale > 0 && a.Scale != 1 {
		w := int(math.Round(float64(dst.Bounds().Dx()) * a.Scale))
		if w < 1 {
			w = 1
		}
		dst = imaging.Resize(dst, w, 0, a.filter())
	}

	if a.MaxWidth > 0 || a.MaxHeight > 0 {
		maxW, maxH := a.MaxWidth, a.MaxHeight
		// Fit needs both, and a missing bound can't be hit anyway
		if maxW <= 0 {
			maxW = dst.Bounds().Dx()
		}
		if maxH <= 0 {
			maxH = dst.Bounds().Dy()
		}
		dst = imaging.Fit(dst, maxW, maxH, a.filter())
	}
	return dst
}

// upscale enlarges pm by factor n, copying indices so transparency is kept
// exactly.
func upscale(pm *image.Paletted, n int) *image.Paletted {
	if n <= 1 {
		return pm
	}
	b := pm.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewPaletted(image.Rect(0, 0, w*n, h*n), pm.Palette)
	for y := 0; y < h*n; y++ {
		src := pm.Pix[(y/n)*pm.Stride:]
		row := dst.Pix[y*dst.Stride : y*dst.Stride+w*n]
		for x := range row {
			row[x] = src[x/n]
		}
	}
	return dst
}

// Encode writes g as a GIF.
func Encode(w io.Writer, g *gif.GIF) error {
	return gif.EncodeAll(w, g)
}
