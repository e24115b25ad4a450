package alpha

import "image"

// TransparentSet holds one flag per pixel of a frame, indexed by the linear
// position y*width + x relative to the frame bounds.
type TransparentSet []bool

// Has reports whether linear position p is transparent.
func (t TransparentSet) Has(p int) bool {
	return p >= 0 && p < len(t) && t[p]
}

// Count returns the number of transparent pixels.
func (t TransparentSet) Count() int {
	n := 0
	for _, v := range t {
		if v {
			n++
		}
	}
	return n
}

// Detect returns the pixels of frame whose alpha is less than or equal to
// threshold. A threshold of 0 only selects fully transparent pixels.
func Detect(frame *image.NRGBA, threshold uint8) TransparentSet {
	b := frame.Bounds()
	w, h := b.Dx(), b.Dy()
	t := make(TransparentSet, w*h)
	for y := 0; y < h; y++ {
		row := frame.Pix[y*frame.Stride : y*frame.Stride+w*4]
		for x := 0; x < w; x++ {
			// NRGBA alpha is not premultiplied, so it can be compared directly
			t[y*w+x] = row[x*4+3] <= threshold
		}
	}
	return t
}
