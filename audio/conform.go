// SPDX-License-Identifier: EPL-2.0

package audio

import "fmt"

// Conform wraps src so it produces sampleRate Hz audio with the given
// channel count.
//
// Channels are converted first (MonoMixer to fold down, ChannelExpander to
// duplicate mono), then the result is resampled. Stages that would be no-ops
// are skipped, so a source already in the right format is returned as is.
func Conform(src Source, sampleRate, channels int) (Source, error) {
	if err := CheckFormat(src.SampleRate(), src.Channels()); err != nil {
		return nil, fmt.Errorf("conform source: %w", err)
	}
	if err := CheckFormat(sampleRate, channels); err != nil {
		return nil, fmt.Errorf("conform target: %w", err)
	}

	out := src
	switch {
	case out.Channels() == channels:
	case channels == 1:
		out = NewMonoMixer(out)
	case out.Channels() == 1:
		out = NewChannelExpander(out, channels)
	default:
		out = NewChannelExpander(NewMonoMixer(out), channels)
	}

	if out.SampleRate() != sampleRate {
		out = NewResampler(out, sampleRate)
	}

	return out, nil
}
