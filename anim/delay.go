package anim

import (
	"fmt"
	"math"
	"time"
)

// DefaultDelay is the duration of frames when none is given.
const DefaultDelay = 100 * time.Millisecond

// centisecond is the unit of GIF frame delays.
const centisecond = 10 * time.Millisecond

// MaxDelay is the longest frame duration, delays are stored as 16-bit
// centiseconds.
const MaxDelay = math.MaxUint16 * centisecond

// Delays converts display durations into GIF delays for n frames.
//
// No durations means DefaultDelay for every frame, and a single duration is
// used for all of them. Otherwise there must be exactly n durations.
//
// Durations are rounded to the nearest hundredth of a second, which is all the
// GIF format supports. The lowest delay is 1, or 100 FPS, and durations that
// round above MaxDelay are an error.
func Delays(durations []time.Duration, n int) ([]int, error) {
	switch len(durations) {
	case 0:
		durations = []time.Duration{DefaultDelay}
		fallthrough
	case 1:
		if n != 1 {
			all := make([]time.Duration, n)
			for i := range all {
				all[i] = durations[0]
			}
			durations = all
		}
	}
	if len(durations) != n {
		return nil, fmt.Errorf("%w: got %d durations for %d frames", ErrDurationMismatch, len(durations), n)
	}

	delays := make([]int, n)
	for i, d := range durations {
		if d < 0 {
			return nil, fmt.Errorf("duration of frame %d is negative: %v", i, d)
		}
		cs := math.Max(math.Round(float64(d)/float64(centisecond)), 1)
		if cs > math.MaxUint16 {
			return nil, fmt.Errorf("duration of frame %d is longer than %v: %v", i, MaxDelay, d)
		}
		delays[i] = int(cs)
	}
	return delays, nil
}

// FPS returns the frame duration for a frame rate.
func FPS(fps float64) time.Duration {
	if fps <= 0 {
		return DefaultDelay
	}
	return time.Duration(float64(time.Second) / fps)
}
