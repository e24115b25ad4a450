package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

// Set by the linker, with -ldflags "-X main.version=..."
var (
	version = "v0.1.0"
	commit  = "unknown"
	builtBy = "unknown"
)

func newApp() *cli.App {
	return &cli.App{
		Name:                   "alphagif",
		Usage:                  "assemble frames into an animated GIF without losing transparency.",
		Description:            "alphagif turns a sequence of images into an animated GIF.\n\nPalette index 0 of every frame is reserved for transparent pixels,\nso no opaque pixel is ever shown as transparent.",
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.UintFlag{
				Name:    "threads",
				Aliases: []string{"j"},
			},
			&cli.StringSliceFlag{
				Name:    "in",
				Aliases: []string{"i"},
			},
			&cli.StringFlag{
				Name:    "dir",
				Aliases: []string{"d"},
			},
			&cli.StringFlag{
				Name:    "ext",
				Aliases: []string{"e"},
				Value:   "png",
			},
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
			},
			&cli.BoolFlag{
				Name: "no-overwrite",
			},
			&cli.StringFlag{
				Name: "preview",
			},
			&cli.BoolFlag{
				Name: "no-preview",
			},
			&cli.StringFlag{
				Name:    "delay",
				Aliases: []string{"t"},
			},
			&cli.Float64Flag{
				Name: "fps",
			},
			&cli.UintFlag{
				Name:    "threshold",
				Aliases: []string{"a"},
			},
			&cli.StringFlag{
				Name:    "palette",
				Aliases: []string{"p"},
				Value:   "auto",
			},
			&cli.UintFlag{
				Name:    "colors",
				Aliases: []string{"c"},
				Value:   256,
			},
			&cli.StringFlag{
				Name:  "dither",
				Value: "none",
			},
			&cli.BoolFlag{
				Name: "serpentine",
			},
			&cli.UintFlag{
				Name:    "width",
				Aliases: []string{"x"},
			},
			&cli.UintFlag{
				Name:    "height",
				Aliases: []string{"y"},
			},
			&cli.StringFlag{
				Name:    "scale",
				Aliases: []string{"s"},
			},
			&cli.UintFlag{
				Name:    "upscale",
				Aliases: []string{"u"},
				Value:   1,
			},
			&cli.BoolFlag{
				Name: "no-exif-rotation",
			},
			&cli.StringFlag{
				Name:    "key",
				Aliases: []string{"k"},
			},
			&cli.StringFlag{
				Name: "fill",
			},
			&cli.StringFlag{
				Name:  "search",
				Value: "random",
			},
			&cli.Int64Flag{
				Name: "seed",
			},
			&cli.BoolFlag{
				Name:    "version",
				Aliases: []string{"v"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:                   "make",
				Usage:                  "assemble the input frames into an animated GIF",
				UseShortOptionHandling: true,
				Action:                 makeGIF,
			},
			{
				Name:      "inspect",
				Usage:     "print the frames, timing and transparency of a GIF",
				ArgsUsage: "FILE",
				Action:    inspect,
			},
		},
		Before: preProcess,
		Action: func(c *cli.Context) error {
			return errors.New("no command specified")
		},
	}
}

func main() {
	app := newApp()

	// Handle version flag
	if len(os.Args) == 2 && (os.Args[1] == "-v" || os.Args[1] == "--version") {
		fmt.Println("alphagif", version)
		fmt.Println("Commit:", commit)
		fmt.Println("Built by:", builtBy)
		return
	}

	err := app.Run(os.Args)
	if err != nil {
		if len(os.Args) == 1 {
			// Just ran the command with no flags
			return
		}
		fmt.Println(err)
		os.Exit(1)
	}
}
