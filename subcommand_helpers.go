package main

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	stdpalette "image/color/palette"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/dustin/go-humanize"
	"golang.org/x/image/colornames"
)

// parsePercentArg takes a string like "0.5" or "50%" and will return a float
// like 50 or 0.5, depending on the second argument. An empty string returns 0.
//
// If `maxOne` is true, then "50%" will return 0.5. Otherwise it will return 50.
func parsePercentArg(arg string, maxOne bool) (float64, error) {
	if arg == "" {
		return 0, nil
	}
	if strings.HasSuffix(arg, "%") {
		arg = arg[:len(arg)-1]
		f64, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return 0, err
		}
		if maxOne {
			f64 /= 100.0
		}
		return f64, nil
	}
	f64, err := strconv.ParseFloat(arg, 64)
	if !maxOne {
		f64 *= 100.0
	}
	return f64, err
}

// parseArgs takes arguments and splits them using the provided split characters.
func parseArgs(args []string, splitRunes string) []string {
	finalArgs := make([]string, 0)
	for _, arg := range args {
		finalArgs = append(finalArgs, strings.FieldsFunc(arg, func(c rune) bool {
			for _, c2 := range splitRunes {
				if c == c2 {
					return true
				}
			}
			return false
		})...)
	}
	return finalArgs
}

// parseDurations parses a list of frame durations. Plain numbers are
// milliseconds, anything else must be a Go duration like "1.5s".
func parseDurations(arg string) ([]time.Duration, error) {
	args := parseArgs([]string{arg}, " ,")
	durations := make([]time.Duration, len(args))
	for i, arg := range args {
		ms, err := strconv.ParseFloat(arg, 64)
		if err == nil {
			durations[i] = time.Duration(ms * float64(time.Millisecond))
		} else {
			durations[i], err = time.ParseDuration(arg)
			if err != nil {
				return nil, fmt.Errorf("%s is not a number of milliseconds or a duration", arg)
			}
		}
		if durations[i] < 0 {
			return nil, fmt.Errorf("%s is negative", arg)
		}
	}
	return durations, nil
}

func hexToColor(hex string) (color.NRGBA, error) {
	// Modified from https://github.com/lucasb-eyer/go-colorful/blob/v1.2.0/colors.go#L333

	hex = strings.TrimPrefix(hex, "#")

	format := "%02x%02x%02x"
	var r, g, b uint8
	n, err := fmt.Sscanf(strings.ToLower(hex), format, &r, &g, &b)
	if err != nil {
		return color.NRGBA{}, err
	}
	if n != 3 {
		return color.NRGBA{}, fmt.Errorf("%s is not a hex color", hex)
	}
	return color.NRGBA{r, g, b, 255}, nil
}

func rgbToColor(s string) (color.NRGBA, error) {
	format := "%d,%d,%d"
	var r, g, b uint8
	n, err := fmt.Sscanf(s, format, &r, &g, &b)
	if err != nil {
		return color.NRGBA{}, err
	}
	if n != 3 {
		return color.NRGBA{}, fmt.Errorf("%s is not an RGB tuple", s)
	}
	return color.NRGBA{r, g, b, 255}, nil
}

// parseColors takes space separated colors and turns them into a color slice.
// All returned colors are guaranteed to only be color.NRGBA.
func parseColors(flag, value string) ([]color.Color, error) {
	args := parseArgs([]string{value}, " ")

	colors := make([]color.Color, len(args))

	for i, arg := range args {
		// Try to parse as RGB numbers, then hex, then grayscale, then SVG colors, then fail

		if strings.Count(arg, ",") == 2 {
			rgbColor, err := rgbToColor(arg)
			if err != nil {
				return nil, fmt.Errorf("%s: %s is not a valid RGB tuple. Example: 25,200,150", flag, arg)
			}
			colors[i] = rgbColor
			continue
		}

		hexColor, err := hexToColor(arg)
		if err == nil {
			colors[i] = hexColor
			continue
		}

		n, err := strconv.Atoi(arg)
		if err == nil {
			if n > 255 || n < 0 {
				return nil, fmt.Errorf("%s: single numbers like %d must be in the range 0-255", flag, n)
			}
			colors[i] = color.NRGBA{uint8(n), uint8(n), uint8(n), 255}
			continue
		}

		htmlColor, ok := colornames.Map[strings.ToLower(arg)]
		if ok {
			colors[i] = color.NRGBAModel.Convert(htmlColor).(color.NRGBA)
			continue
		}

		return nil, fmt.Errorf("%s: %s not recognized as an RGB tuple, hex code, number 0-255, or SVG color name", flag, arg)
	}

	return colors, nil
}

// parseColor parses exactly one color, see parseColors.
func parseColor(flag, value string) (color.NRGBA, error) {
	colors, err := parseColors(flag, value)
	if err != nil {
		return color.NRGBA{}, err
	}
	if len(colors) != 1 {
		return color.NRGBA{}, fmt.Errorf("%s: expected one color, got %d", flag, len(colors))
	}
	return colors[0].(color.NRGBA), nil
}

// parsePalette parses the palette flag, which is either the name of a
// standard palette or a list of colors.
func parsePalette(value string) ([]color.Color, error) {
	var named color.Palette
	switch strings.ToLower(value) {
	case "plan9":
		named = stdpalette.Plan9
	case "websafe":
		named = stdpalette.WebSafe
	default:
		colors, err := parseColors("palette", value)
		if err != nil {
			return nil, err
		}
		if len(colors) == 0 {
			return nil, fmt.Errorf("palette: no colors")
		}
		return colors, nil
	}
	colors := make([]color.Color, len(named))
	for i, c := range named {
		colors[i] = color.NRGBAModel.Convert(c).(color.NRGBA)
	}
	return colors, nil
}

// frameDir returns the directory frames are read from: <dir>/output if it
// exists, dir otherwise.
func frameDir(dir string) string {
	sub := filepath.Join(dir, "output")
	if fi, err := os.Stat(sub); err == nil && fi.IsDir() {
		return sub
	}
	return dir
}

// listFrames returns the files in dir with the extension ext, sorted by name.
// The extension is matched case insensitively.
func listFrames(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasSuffix(strings.ToLower(e.Name()), "."+ext) {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// getInputImage decodes an input image arg, "-" being stdin.
func getInputImage(arg string) (image.Image, error) {
	if arg == "-" {
		return imaging.Decode(os.Stdin, autoOrientation)
	}
	return imaging.Open(arg, autoOrientation)
}

// writeFile writes data to path, respecting --no-overwrite.
func writeFile(path string, data []byte) error {
	file, err := os.OpenFile(path, outFileFlags, 0644)
	if err != nil {
		return fmt.Errorf("'%s': %w", path, err)
	}
	_, err = file.Write(data)
	if err != nil {
		file.Close()
		return fmt.Errorf("error writing '%s': %w", path, err)
	}
	return file.Close()
}

// readPreview returns the contents of the frame to copy as a preview, after
// checking that dst can be written.
func readPreview(src, dst string) ([]byte, error) {
	if src == "-" {
		return nil, errors.New("can't copy stdin as a preview, set --no-preview")
	}
	if dst == "-" || filepath.Clean(dst) == filepath.Clean(outPath) {
		return nil, fmt.Errorf("'%s' can't be both the preview and the output", dst)
	}
	if outFileFlags&os.O_EXCL != 0 {
		if _, err := os.Stat(dst); err == nil {
			return nil, fmt.Errorf("'%s': %w", dst, os.ErrExist)
		}
	}
	return os.ReadFile(src)
}

// formatSize returns n bytes in a human readable form, like "1.5 KiB".
func formatSize(n int) string {
	return humanize.IBytes(uint64(n))
}

func loopString(loopCount int) string {
	switch {
	case loopCount == 0:
		return "loops forever"
	case loopCount < 0:
		return "plays once"
	default:
		// "the animation is looped LoopCount+1 times."
		return fmt.Sprintf("plays %d times", loopCount+1)
	}
}

// transparentIndex returns the first palette index with zero alpha, as a
// string, or "none". The gif decoder only clears the alpha of the index the
// file marks as transparent.
func transparentIndex(pm *image.Paletted) string {
	for i, c := range pm.Palette {
		if _, _, _, a := c.RGBA(); a == 0 {
			return strconv.Itoa(i)
		}
	}
	return "none"
}
