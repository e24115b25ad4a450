package alpha

import (
	"math/rand"
	"sync"
)

// KeyPicker chooses the color stored at the transparent index 0. It must
// return a color that is not in taken, or ErrPaletteExhausted.
//
// Implementations must be safe for concurrent use, frames are converted in
// parallel.
type KeyPicker interface {
	Pick(taken *ColorSet) (RGB, error)
}

const colorSpace = 1 << 24

// Scan walks the whole RGB cube in lexicographic order, starting at Start and
// wrapping around. It's deterministic.
type Scan struct {
	Start RGB
}

func (s Scan) Pick(taken *ColorSet) (RGB, error) {
	start := s.Start.pack()
	for i := uint32(0); i < colorSpace; i++ {
		c := unpack((start + i) % colorSpace)
		if !taken.Has(c) {
			return c, nil
		}
	}
	return RGB{}, ErrPaletteExhausted
}

// RandomProbe tries random colors, and falls back to a Scan from the last
// probe once Probes attempts have failed.
type RandomProbe struct {
	// Probes is the number of random attempts. 0 means 64.
	Probes int

	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomProbe returns a RandomProbe seeded with seed.
func NewRandomProbe(seed int64) *RandomProbe {
	return &RandomProbe{rng: rand.New(rand.NewSource(seed))}
}

func (p *RandomProbe) random() RGB {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.rng == nil {
		p.rng = rand.New(rand.NewSource(rand.Int63()))
	}
	return unpack(uint32(p.rng.Int31n(colorSpace)))
}

func (p *RandomProbe) Pick(taken *ColorSet) (RGB, error) {
	probes := p.Probes
	if probes <= 0 {
		probes = 64
	}
	var c RGB
	for i := 0; i < probes; i++ {
		c = p.random()
		if !taken.Has(c) {
			return c, nil
		}
	}
	return Scan{Start: c}.Pick(taken)
}

// Fill returns a random color. It can be used as a FillFunc.
func (p *RandomProbe) Fill() RGB {
	return p.random()
}

// Preferred picks Color when it's free, and otherwise asks Next.
// A nil Next scans onwards from Color.
type Preferred struct {
	Color RGB
	Next  KeyPicker
}

func (p Preferred) Pick(taken *ColorSet) (RGB, error) {
	if !taken.Has(p.Color) {
		return p.Color, nil
	}
	if p.Next == nil {
		return Scan{Start: p.Color}.Pick(taken)
	}
	return p.Next.Pick(taken)
}
