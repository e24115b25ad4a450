package alpha

import "image/color"

// FillFunc returns the color for palette slots no pixel refers to. It's
// called once per frame.
type FillFunc func() RGB

// FixedFill always returns c.
func FixedFill(c RGB) FillFunc {
	return func() RGB { return c }
}

// keyColor returns the transparent palette entry for c.
//
// image/gif marks the first palette entry with zero alpha as transparent, and
// writes the RGB values returned by the color as is. A color.RGBA with A=0 but
// non-zero channels isn't a valid premultiplied color, but it lets the key
// color reach the file instead of black.
func keyColor(c RGB) color.RGBA {
	return color.RGBA{c.R, c.G, c.B, 0}
}

// WritePalette expands cm into a full 256 entry palette. Index 0 is always the
// transparent entry, and every unset index gets fill.
func WritePalette(cm ColorMap, fill RGB) color.Palette {
	p := make(color.Palette, len(cm.Colors))
	p[0] = keyColor(cm.Colors[0])
	for i := 1; i < len(p); i++ {
		if cm.Set[i] {
			p[i] = cm.Colors[i].Opaque()
		} else {
			p[i] = fill.Opaque()
		}
	}
	return p
}
