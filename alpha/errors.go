package alpha

import "errors"

var (
	// ErrPaletteExhausted means no color is left for the transparent slot.
	// It can't happen with fewer than 2^24 opaque colors, and is always fatal.
	ErrPaletteExhausted = errors.New("no free color left for the transparent palette slot")

	// ErrInconsistentPalette is returned when a Quantizer produces an image that
	// references palette indices it doesn't define, or has the wrong size.
	ErrInconsistentPalette = errors.New("quantizer returned an inconsistent paletted image")
)
