package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/makeworld-the-better-one/dither/v2"
	"github.com/urfave/cli/v2"

	"github.com/makeworld-the-better-one/alphagif/alpha"
	"github.com/makeworld-the-better-one/alphagif/anim"
	"github.com/makeworld-the-better-one/alphagif/quantize"
)

var (
	// palette is the fixed palette for every frame, if the user chose one.
	// Guaranteed to only hold color.NRGBA.
	palette []color.Color

	// paletteSample means the palette is extracted from the first frame.
	paletteSample bool

	colors     int
	matrix     dither.ErrorDiffusionMatrix
	serpentine bool
	threshold  uint8

	durations []time.Duration

	autoOrientation imaging.DecodeOption

	inputImages []string
	inputDir    string
	inputExt    string

	outPath     string
	previewPath string

	outFileFlags int // For os.OpenFile

	width  int
	height int
	// 0 means no scaling
	scale float64
	// upscale will always be 1 or above
	upscale int

	keys alpha.KeyPicker
	fill alpha.FillFunc

	workers int
)

// preProcess is automatically called by the app before anything else.
// It's run in the global context.
func preProcess(c *cli.Context) error {
	runtime.GOMAXPROCS(int(c.Uint("threads")))
	workers = int(c.Uint("threads"))

	var err error

	autoOrientation = imaging.AutoOrientation(!c.Bool("no-exif-rotation"))

	inputImages = make([]string, 0)
	for _, path := range c.StringSlice("in") {
		if strings.Contains(path, "*") {
			// Parse as glob
			paths, err := filepath.Glob(path)
			if err != nil {
				return fmt.Errorf("bad glob pattern '%s': %w", path, err)
			}
			inputImages = append(inputImages, paths...)
		} else {
			inputImages = append(inputImages, path)
		}
	}
	inputDir = c.String("dir")
	inputExt = strings.TrimPrefix(strings.ToLower(c.String("ext")), ".")
	if len(inputImages) > 0 && inputDir != "" {
		return errors.New("use either --in or --dir, not both")
	}

	outPath = c.String("out")
	previewPath = c.String("preview")
	if inputDir != "" {
		// <dir>/export/<dir>.gif, and a copy of the last frame next to it
		base := filepath.Base(filepath.Clean(inputDir))
		if outPath == "" {
			outPath = filepath.Join(inputDir, "export", base+".gif")
		}
		if previewPath == "" {
			previewPath = filepath.Join(filepath.Dir(outPath), base+"."+inputExt)
		}
	}
	if c.Bool("no-preview") {
		previewPath = ""
	}

	if c.IsSet("delay") && c.IsSet("fps") {
		return errors.New("use either --delay or --fps, not both")
	}
	if c.IsSet("fps") {
		if c.Float64("fps") <= 0 {
			return errors.New("fps must be above 0")
		}
		durations = []time.Duration{anim.FPS(c.Float64("fps"))}
	} else {
		durations, err = parseDurations(c.String("delay"))
		if err != nil {
			return fmt.Errorf("delay: %w", err)
		}
	}

	if c.Uint("threshold") > 255 {
		return errors.New("threshold must be in the range 0-255")
	}
	threshold = uint8(c.Uint("threshold"))

	colors = int(c.Uint("colors"))
	if colors < 2 || colors > quantize.MaxColors {
		return errors.New("colors must be in the range 2-256")
	}

	palette = nil
	paletteSample = false
	switch p := strings.ToLower(c.String("palette")); p {
	case "auto", "":
	case "sample":
		paletteSample = true
	default:
		palette, err = parsePalette(c.String("palette"))
		if err != nil {
			return err
		}
		if len(palette) > quantize.MaxColors {
			return errors.New("the GIF format only supports 256 colors or less in the palette")
		}
	}

	var ok bool
	matrix, ok = quantize.Matrix(c.String("dither"))
	if !ok {
		return fmt.Errorf("dither: '%s' is not an error diffusion matrix name", c.String("dither"))
	}
	serpentine = c.Bool("serpentine")

	if c.Bool("no-overwrite") {
		outFileFlags = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	} else {
		outFileFlags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}

	// Set here for convenience
	width = int(c.Uint("width"))
	height = int(c.Uint("height"))
	scale, err = parsePercentArg(c.String("scale"), true)
	if err != nil {
		return fmt.Errorf("scale: %w", err)
	}
	if scale < 0 {
		return errors.New("scale can't be negative")
	}
	upscale = int(c.Uint("upscale"))
	if upscale == 0 {
		// Invalid
		upscale = 1
	}

	switch c.String("search") {
	case "scan":
		keys = alpha.Scan{}
		fill = nil
	case "random":
		seed := c.Int64("seed")
		if c.IsSet("seed") {
			// Make deterministic
			workers = 1
		} else {
			// Seed with something that won't repeat next use
			seed = time.Now().UnixNano()
		}
		probe := alpha.NewRandomProbe(seed)
		keys = probe
		fill = probe.Fill
	default:
		return fmt.Errorf("search: '%s' is not 'scan' or 'random'", c.String("search"))
	}

	if c.String("key") != "" {
		key, err := parseColor("key", c.String("key"))
		if err != nil {
			return err
		}
		keys = alpha.Preferred{Color: alpha.RGBOf(key), Next: keys}
	}
	if c.String("fill") != "" {
		f, err := parseColor("fill", c.String("fill"))
		if err != nil {
			return err
		}
		fill = alpha.FixedFill(alpha.RGBOf(f))
	}

	return nil
}

// makeGIF loads every input frame, assembles them and writes the GIF. Nothing
// is written unless the whole animation was encoded.
func makeGIF(c *cli.Context) error {
	paths := inputImages
	if inputDir != "" {
		var err error
		dir := frameDir(inputDir)
		paths, err = listFrames(dir, inputExt)
		if err != nil {
			return err
		}
		if len(paths) == 0 {
			return fmt.Errorf("no %s files found in '%s'", inputExt, dir)
		}
	}
	if len(paths) == 0 {
		return errors.New("no input images, set --in or --dir")
	}
	if outPath == "" {
		return errors.New("no output path, set --out")
	}

	// Check the preview before anything is written, so a bad preview doesn't
	// leave a GIF behind
	var preview []byte
	if previewPath != "" {
		var err error
		preview, err = readPreview(paths[len(paths)-1], previewPath)
		if err != nil {
			return fmt.Errorf("preview: %w", err)
		}
	}

	log.Printf("Reading %d images", len(paths))
	frames := make([]image.Image, len(paths))
	for i, path := range paths {
		img, err := getInputImage(path)
		if err != nil {
			return fmt.Errorf("error loading '%s': %w", path, err)
		}
		frames[i] = img
	}
	// Fail on sizes before anything else happens
	if err := anim.CheckSizes(frames); err != nil {
		return err
	}

	pal := palette
	if paletteSample {
		var err error
		pal, err = (&quantize.KMeans{Colors: colors}).Palette(imaging.Clone(frames[0]))
		if err != nil {
			return fmt.Errorf("error extracting palette from '%s': %w", paths[0], err)
		}
		log.Printf("Extracted palette of %d colors from '%s'", len(pal), paths[0])
	}

	a := &anim.Assembler{
		Quantizer: quantize.New(pal, colors, matrix, serpentine),
		Options: alpha.Options{
			Threshold: threshold,
			Keys:      keys,
			Fill:      fill,
		},
		MaxWidth:  width,
		MaxHeight: height,
		Scale:     scale,
		Upscale:   upscale,
		Workers:   workers,
		Log:       log.Default(),
	}

	log.Println("Creating gif...")
	g, err := a.Assemble(context.Background(), frames, durations)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := anim.Encode(&buf, g); err != nil {
		return fmt.Errorf("error encoding GIF: %w", err)
	}

	if outPath == "-" {
		_, err = os.Stdout.Write(buf.Bytes())
		return err
	}
	if inputDir != "" {
		if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
			return err
		}
	}
	if err := writeFile(outPath, buf.Bytes()); err != nil {
		return err
	}

	if previewPath != "" {
		// A copy of the last frame as a still preview
		if err := writeFile(previewPath, preview); err != nil {
			return fmt.Errorf("error writing preview: %w", err)
		}
	}

	fmt.Printf("Wrote %s (%dx%d, %d frames) - %s\n",
		outPath, g.Config.Width, g.Config.Height, len(g.Image), formatSize(buf.Len()))
	return nil
}

var disposalName = map[byte]string{
	0:                      "unspecified",
	gif.DisposalNone:       "none",
	gif.DisposalBackground: "background",
	gif.DisposalPrevious:   "previous",
}

// inspect prints what a GIF is made of.
func inspect(c *cli.Context) error {
	if c.Args().Len() != 1 {
		return errors.New("inspect needs exactly one GIF file")
	}
	path := c.Args().First()

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	g, err := gif.DecodeAll(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("error decoding '%s': %w", path, err)
	}

	fmt.Printf("%s: %dx%d, %d frames, %s, %s\n",
		path, g.Config.Width, g.Config.Height, len(g.Image), loopString(g.LoopCount), formatSize(len(data)))
	for i, pm := range g.Image {
		var disposal byte
		if i < len(g.Disposal) {
			disposal = g.Disposal[i]
		}
		fmt.Printf("frame %d: %s, %d colors, disposal %s, transparent index %s\n",
			i, time.Duration(g.Delay[i])*10*time.Millisecond, len(pm.Palette),
			disposalName[disposal], transparentIndex(pm))
	}
	return nil
}
