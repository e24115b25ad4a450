package alpha

import "image/color"

// RGB is an opaque 24-bit color.
type RGB struct {
	R, G, B uint8
}

// RGBOf returns the color channels of c. Partially transparent colors are
// un-premultiplied. Colors with zero alpha keep their raw channels, so the
// transparent palette entry written by WritePalette reads back as its key
// color. A nil color is black.
func RGBOf(c color.Color) RGB {
	switch c := c.(type) {
	case nil:
		return RGB{}
	case color.RGBA:
		if c.A == 0 || c.A == 0xff {
			return RGB{c.R, c.G, c.B}
		}
	case color.NRGBA:
		return RGB{c.R, c.G, c.B}
	}
	r, g, b, a := c.RGBA()
	if a == 0 || a == 0xffff {
		return RGB{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8)}
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return RGB{n.R, n.G, n.B}
}

// Opaque returns c as a fully opaque color.NRGBA.
func (c RGB) Opaque() color.NRGBA {
	return color.NRGBA{c.R, c.G, c.B, 255}
}

func (c RGB) pack() uint32 {
	return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

func unpack(v uint32) RGB {
	return RGB{uint8(v >> 16), uint8(v >> 8), uint8(v)}
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}

// Manhattan returns the sum of the absolute per-channel differences of a and b.
func Manhattan(a, b RGB) int {
	return absDiff(a.R, b.R) + absDiff(a.G, b.G) + absDiff(a.B, b.B)
}

// ColorMap is the working palette of a frame: a color per index, and whether
// that index holds a color at all.
type ColorMap struct {
	Colors [256]RGB
	Set    [256]bool
}

// MapPalette builds a ColorMap from the first 256 entries of p.
func MapPalette(p color.Palette) ColorMap {
	var cm ColorMap
	for i, c := range p {
		if i >= len(cm.Colors) {
			break
		}
		if c == nil {
			continue
		}
		cm.Colors[i] = RGBOf(c)
		cm.Set[i] = true
	}
	return cm
}

// ColorSet is a set of at most 256 colors. The zero value is empty.
type ColorSet struct {
	colors [256]RGB
	n      int
}

// Add inserts c. It returns false if the set is full and c is not already in it.
func (s *ColorSet) Add(c RGB) bool {
	if s.Has(c) {
		return true
	}
	if s.n == len(s.colors) {
		return false
	}
	s.colors[s.n] = c
	s.n++
	return true
}

// Has reports whether c is in the set.
func (s *ColorSet) Has(c RGB) bool {
	for i := 0; i < s.n; i++ {
		if s.colors[i] == c {
			return true
		}
	}
	return false
}

// Len returns the number of colors in the set.
func (s *ColorSet) Len() int {
	return s.n
}
