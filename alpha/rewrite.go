package alpha

// Rewrite returns a copy of pix with remap applied to every pixel, and every
// transparent pixel set to index 0. The remapping happens first, so pixels
// moved off index 0 aren't confused with transparent ones.
func Rewrite(pix []uint8, remap Remapping, trans TransparentSet) []uint8 {
	var table [256]uint8
	for i := range table {
		table[i] = uint8(i)
	}
	for _, r := range remap {
		table[r.From] = r.To
	}

	out := make([]uint8, len(pix))
	for p, idx := range pix {
		if trans.Has(p) {
			out[p] = 0
		} else {
			out[p] = table[idx]
		}
	}
	return out
}
