// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"math"
)

// Extend loops b until it is targetFrames long.
//
// Output frame i is source frame i mod b.Frames() on every channel. Sample
// rate and channel count are kept; nothing is resampled. targetFrames must
// not be shorter than b.
func Extend(b *Buffer, targetFrames int) (*Buffer, error) {
	if err := checkNotEmpty(b, "looped"); err != nil {
		return nil, err
	}

	n := b.Frames()
	if targetFrames < n {
		return nil, fmt.Errorf("%w: target of %d frames is shorter than the %d-frame buffer",
			ErrInvalidInput, targetFrames, n)
	}
	if targetFrames > math.MaxInt/b.channels {
		return nil, fmt.Errorf("%w: target of %d frames overflows", ErrInvalidInput, targetFrames)
	}

	out := make([]float32, targetFrames*b.channels)
	// whole periods, then the partial tail; copy stops at len(out)
	for off := 0; off < len(out); off += len(b.samples) {
		copy(out[off:], b.samples)
	}

	return newBuffer(b.sampleRate, b.channels, out), nil
}

// Truncate keeps the first frames frames of b.
func Truncate(b *Buffer, frames int) (*Buffer, error) {
	if b == nil {
		return nil, fmt.Errorf("%w: truncated buffer is nil", ErrInvalidInput)
	}
	if frames < 0 || frames > b.Frames() {
		return nil, fmt.Errorf("%w: cannot keep %d frames of a %d-frame buffer",
			ErrInvalidInput, frames, b.Frames())
	}

	out := make([]float32, frames*b.channels)
	copy(out, b.samples)

	return newBuffer(b.sampleRate, b.channels, out), nil
}
