package alpha

import "fmt"

// Remap moves every pixel with index From to index To.
type Remap struct {
	From, To uint8
}

// Remapping is an ordered list of index moves. Resolve produces at most one.
type Remapping []Remap

// Resolution is the outcome of Resolve.
type Resolution struct {
	Remap Remapping

	// Colors is the working palette. Index 0 holds Key, and no index used by an
	// opaque pixel has that color.
	Colors ColorMap

	Key RGB
}

// opaqueIndices marks each palette index referenced by a pixel that isn't
// transparent.
func opaqueIndices(pix []uint8, trans TransparentSet) [256]bool {
	var used [256]bool
	for p, idx := range pix {
		if !trans.Has(p) {
			used[idx] = true
		}
	}
	return used
}

// nearest returns the set index in 1-255 whose color is closest to c.
// The first index wins a tie.
func nearest(cm *ColorMap, c RGB) (uint8, bool) {
	best, bestDist := 0, -1
	for i := 1; i < len(cm.Colors); i++ {
		if !cm.Set[i] {
			continue
		}
		d := Manhattan(cm.Colors[i], c)
		if bestDist < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	return uint8(best), bestDist >= 0
}

// Resolve frees palette index 0 for transparency.
//
// If an opaque pixel uses index 0, its color is moved to the lowest index no
// opaque pixel uses. When all 256 indices are taken, those pixels are merged
// into the closest existing color instead. Then index 0 gets a color, chosen
// by keys, that no opaque index has.
//
// pix and cm aren't modified.
func Resolve(pix []uint8, cm ColorMap, trans TransparentSet, keys KeyPicker) (Resolution, error) {
	if keys == nil {
		keys = Scan{}
	}
	used := opaqueIndices(pix, trans)

	var remap Remapping
	if used[0] {
		orig := cm.Colors[0]
		to := -1
		for i := 1; i < len(used); i++ {
			if !used[i] {
				to = i
				break
			}
		}
		if to > 0 {
			cm.Colors[to] = orig
			cm.Set[to] = true
		} else {
			i, ok := nearest(&cm, orig)
			if !ok {
				return Resolution{}, fmt.Errorf("%w: no color to merge index 0 into", ErrInconsistentPalette)
			}
			to = int(i)
		}
		remap = Remapping{{From: 0, To: uint8(to)}}
		used[to] = true
		used[0] = false
	}
	cm.Colors[0] = RGB{}
	cm.Set[0] = false

	var taken ColorSet
	for i := 1; i < len(used); i++ {
		if used[i] {
			taken.Add(cm.Colors[i])
		}
	}
	key, err := keys.Pick(&taken)
	if err != nil {
		return Resolution{}, err
	}
	if taken.Has(key) {
		return Resolution{}, fmt.Errorf("%w: key color %v is used by an opaque pixel", ErrPaletteExhausted, key)
	}
	cm.Colors[0] = key
	cm.Set[0] = true

	return Resolution{Remap: remap, Colors: cm, Key: key}, nil
}
