package anim

import "errors"

var (
	// ErrEmptyInput means there are no frames to assemble.
	ErrEmptyInput = errors.New("no frames to assemble")

	// ErrDimensionMismatch means a frame isn't the same size as the first one.
	ErrDimensionMismatch = errors.New("frame sizes differ, all sizes must match to create an animated GIF")

	// ErrDurationMismatch means a list of per-frame durations doesn't have one
	// entry per frame.
	ErrDurationMismatch = errors.New("number of durations doesn't match the number of frames")
)
