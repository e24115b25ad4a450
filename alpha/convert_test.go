package alpha

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

// exactQuantizer maps each distinct color to an index in order of appearance.
type exactQuantizer struct{}

func (exactQuantizer) Reduce(img *image.NRGBA) (*image.Paletted, error) {
	b := img.Bounds()
	m := image.NewPaletted(b, nil)
	seen := make(map[color.NRGBA]uint8)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := img.NRGBAAt(x, y)
			idx, ok := seen[c]
			if !ok {
				idx = uint8(len(m.Palette))
				seen[c] = idx
				m.Palette = append(m.Palette, c)
			}
			m.SetColorIndex(x, y, idx)
		}
	}
	return m, nil
}

type badQuantizer struct{}

func (badQuantizer) Reduce(img *image.NRGBA) (*image.Paletted, error) {
	m := image.NewPaletted(img.Bounds(), color.Palette{color.Black})
	m.Pix[0] = 3
	return m, nil
}

func checker(w, h int, a, b color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x+y)%2 == 0 {
				img.SetNRGBA(x, y, a)
			} else {
				img.SetNRGBA(x, y, b)
			}
		}
	}
	return img
}

// checkInvariants verifies that exactly the transparent pixels use index 0, and
// that index 0's color isn't used by any opaque index.
func checkInvariants(t *testing.T, frame *image.NRGBA, threshold uint8, m *image.Paletted) {
	t.Helper()
	trans := Detect(frame, threshold)
	key := RGBOf(m.Palette[0])
	if _, _, _, a := m.Palette[0].RGBA(); a != 0 {
		t.Error("index 0 is not transparent")
	}
	for p, idx := range m.Pix {
		if trans.Has(p) != (idx == 0) {
			t.Errorf("pixel %d: transparent=%v but index %d", p, trans.Has(p), idx)
		}
	}
	for _, idx := range keyCollisions(m) {
		t.Errorf("index %d has the key color %v", idx, key)
	}
}

// keyCollisions returns the indices used by pixels, other than 0, whose color
// equals the color of index 0.
func keyCollisions(m *image.Paletted) []uint8 {
	key := RGBOf(m.Palette[0])
	var seen [256]bool
	var out []uint8
	for _, idx := range m.Pix {
		if idx != 0 && !seen[idx] && RGBOf(m.Palette[idx]) == key {
			seen[idx] = true
			out = append(out, idx)
		}
	}
	return out
}

func TestKeyCollisions(t *testing.T) {
	var cm ColorMap
	cm.Colors[0], cm.Set[0] = RGB{90, 80, 70}, true
	cm.Colors[1], cm.Set[1] = RGB{1, 2, 3}, true
	cm.Colors[2], cm.Set[2] = RGB{90, 80, 70}, true
	m := &image.Paletted{
		Pix:     []uint8{0, 1, 2, 2},
		Stride:  4,
		Rect:    image.Rect(0, 0, 4, 1),
		Palette: WritePalette(cm, RGB{}),
	}
	if got := keyCollisions(m); len(got) != 1 || got[0] != 2 {
		t.Errorf("got %v, expected [2]", got)
	}
}

func TestConvertPreferredKeyReadsBack(t *testing.T) {
	frame := checker(4, 4, color.NRGBA{200, 0, 0, 255}, color.NRGBA{})
	want := RGB{9, 8, 7}

	m, err := Convert(frame, exactQuantizer{}, Options{Keys: Preferred{Color: want}})
	if err != nil {
		t.Fatal(err)
	}
	checkInvariants(t, frame, 0, m)
	if key := RGBOf(m.Palette[0]); key != want {
		t.Errorf("got key %v, expected %v", key, want)
	}
}

func TestConvertOpaqueChecker(t *testing.T) {
	white := color.NRGBA{255, 255, 255, 255}
	black := color.NRGBA{0, 0, 0, 255}
	frame := checker(8, 8, white, black)

	m, err := Convert(frame, exactQuantizer{}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	checkInvariants(t, frame, 0, m)

	used := make(map[uint8]bool)
	for _, idx := range m.Pix {
		used[idx] = true
	}
	if len(used) != 2 || used[0] {
		t.Errorf("got indices %v, expected two opaque indices other than 0", used)
	}
	if len(m.Palette) != 256 {
		t.Errorf("got %d palette entries, expected 256", len(m.Palette))
	}
	// Black is taken, so the scan lands on the next color
	if key := RGBOf(m.Palette[0]); key != (RGB{0, 0, 1}) {
		t.Errorf("got key %v, expected {0 0 1}", key)
	}
}

func TestConvertHalfTransparent(t *testing.T) {
	frame := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			switch {
			case y < 2:
				frame.SetNRGBA(x, y, color.NRGBA{0, 0, 0, 0})
			case x < 2:
				frame.SetNRGBA(x, y, color.NRGBA{200, 0, 0, 255})
			default:
				frame.SetNRGBA(x, y, color.NRGBA{0, 0, 200, 255})
			}
		}
	}

	m, err := Convert(frame, exactQuantizer{}, Options{Keys: Preferred{Color: RGB{200, 0, 0}}})
	if err != nil {
		t.Fatal(err)
	}
	checkInvariants(t, frame, 0, m)

	opaque := make(map[uint8]bool)
	for p, idx := range m.Pix {
		if p >= 8 {
			opaque[idx] = true
		}
	}
	if len(opaque) != 2 {
		t.Errorf("got opaque indices %v, expected 2", opaque)
	}
	key := RGBOf(m.Palette[0])
	if key == (RGB{200, 0, 0}) || key == (RGB{0, 0, 200}) {
		t.Errorf("key %v equals an opaque color", key)
	}
}

func TestConvertThreshold(t *testing.T) {
	frame := image.NewNRGBA(image.Rect(0, 0, 3, 1))
	frame.SetNRGBA(0, 0, color.NRGBA{50, 50, 50, 99})
	frame.SetNRGBA(1, 0, color.NRGBA{50, 50, 50, 100})
	frame.SetNRGBA(2, 0, color.NRGBA{50, 50, 50, 101})

	m, err := Convert(frame, exactQuantizer{}, Options{Threshold: 100})
	if err != nil {
		t.Fatal(err)
	}
	checkInvariants(t, frame, 100, m)
	if m.Pix[0] != 0 || m.Pix[1] != 0 || m.Pix[2] == 0 {
		t.Errorf("got indices %v, expected [0 0 x] with x != 0", m.Pix)
	}
}

func TestConvertFullyTransparent(t *testing.T) {
	frame := image.NewNRGBA(image.Rect(0, 0, 2, 2))

	m, err := Convert(frame, exactQuantizer{}, Options{Fill: FixedFill(green)})
	if err != nil {
		t.Fatal(err)
	}
	for p, idx := range m.Pix {
		if idx != 0 {
			t.Errorf("pixel %d has index %d, expected 0", p, idx)
		}
	}
	if m.Palette[1] != green.Opaque() {
		t.Errorf("got fill %v, expected green", m.Palette[1])
	}
}

func TestConvertOffsetBounds(t *testing.T) {
	full := checker(6, 6, color.NRGBA{1, 1, 1, 255}, color.NRGBA{})
	frame := full.SubImage(image.Rect(2, 2, 5, 6)).(*image.NRGBA)

	m, err := Convert(frame, exactQuantizer{}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if m.Bounds() != image.Rect(0, 0, 3, 4) {
		t.Errorf("got bounds %v, expected origin based 3x4", m.Bounds())
	}
	checkInvariants(t, frame, 0, m)
}

func TestConvertInconsistentQuantizer(t *testing.T) {
	frame := checker(2, 2, color.NRGBA{1, 1, 1, 255}, color.NRGBA{2, 2, 2, 255})
	_, err := Convert(frame, badQuantizer{}, Options{})
	if !errors.Is(err, ErrInconsistentPalette) {
		t.Errorf("got %v, expected ErrInconsistentPalette", err)
	}
}

func TestOpaqueCopy(t *testing.T) {
	frame := image.NewNRGBA(image.Rect(0, 0, 3, 1))
	frame.SetNRGBA(0, 0, color.NRGBA{9, 9, 9, 0})
	frame.SetNRGBA(1, 0, color.NRGBA{10, 20, 30, 128})
	frame.SetNRGBA(2, 0, color.NRGBA{40, 50, 60, 255})

	cp := opaqueCopy(frame, Detect(frame, 0))
	want := []color.NRGBA{{10, 20, 30, 255}, {10, 20, 30, 255}, {40, 50, 60, 255}}
	for x, w := range want {
		if c := cp.NRGBAAt(x, 0); c != w {
			t.Errorf("pixel %d: got %v, expected %v", x, c, w)
		}
	}
	if frame.NRGBAAt(0, 0).A != 0 {
		t.Error("opaqueCopy modified the frame")
	}
}
