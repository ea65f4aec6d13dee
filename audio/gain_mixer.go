// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"

	"github.com/ik5/moodmix/utils"
)

// Mix sums a*gainA and b*gainB sample by sample and clips the result to [-1, 1].
//
// Both buffers must share sample rate, channel count and length. Mix never
// resamples or remaps channels; use Conform and MixWithDurationMatch for that.
func Mix(a *Buffer, gainA Gain, b *Buffer, gainB Gain) (*Buffer, error) {
	if err := checkNotEmpty(a, "first"); err != nil {
		return nil, err
	}
	if err := checkNotEmpty(b, "second"); err != nil {
		return nil, err
	}
	if err := gainA.Validate(); err != nil {
		return nil, fmt.Errorf("first gain: %w", err)
	}
	if err := gainB.Validate(); err != nil {
		return nil, fmt.Errorf("second gain: %w", err)
	}
	if err := checkSameFormat(a, "first", b, "second"); err != nil {
		return nil, err
	}
	if a.Frames() != b.Frames() {
		return nil, fmt.Errorf("%w: second buffer has %d frames, first has %d",
			ErrFormatMismatch, b.Frames(), a.Frames())
	}

	ga, gb := float32(gainA), float32(gainB)
	out := make([]float32, len(a.samples))
	for i := range out {
		// no FMA fusion: the sum must not depend on operand order
		out[i] = utils.Clip(float32(a.samples[i]*ga) + float32(b.samples[i]*gb))
	}

	return newBuffer(a.sampleRate, a.channels, out), nil
}
