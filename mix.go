// SPDX-License-Identifier: EPL-2.0

package moodmix

import (
	"fmt"

	"github.com/ik5/moodmix/audio"
	"github.com/ik5/moodmix/formats"
	"github.com/ik5/moodmix/formats/wav"
)

// DefaultMaxSamples is ten minutes of 48 kHz stereo.
const DefaultMaxSamples = 48000 * 2 * 600

// Options holds the gains applied to each track and the output size cap.
type Options struct {
	PrimaryGain   audio.Gain
	SecondaryGain audio.Gain
	// MaxSamples caps the primary, and so the output, in interleaved
	// samples. Zero means no cap.
	MaxSamples int
}

// DefaultOptions keeps the voice at full level and the mood at 0.15.
func DefaultOptions() Options {
	return Options{
		PrimaryGain:   1.0,
		SecondaryGain: 0.15,
		MaxSamples:    DefaultMaxSamples,
	}
}

// Validate checks both gains.
func (o Options) Validate() error {
	if err := o.PrimaryGain.Validate(); err != nil {
		return fmt.Errorf("primary gain: %w", err)
	}
	if err := o.SecondaryGain.Validate(); err != nil {
		return fmt.Errorf("secondary gain: %w", err)
	}
	if o.MaxSamples < 0 {
		return fmt.Errorf("%w: max samples %d", audio.ErrInvalidInput, o.MaxSamples)
	}

	return nil
}

// Mix drains both sources and mixes them at the primary's format. The
// secondary is resampled and remixed to match before the duration policy is
// applied. Only as much of the secondary as the primary needs is decoded.
// A primary longer than opts.MaxSamples is rejected with
// audio.ErrInvalidInput. Sources are not closed.
func Mix(primary, secondary audio.Source, opts Options) (*audio.Buffer, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := audio.CheckFormat(primary.SampleRate(), primary.Channels()); err != nil {
		return nil, fmt.Errorf("primary: %w", err)
	}

	maxFrames := 0
	if opts.MaxSamples > 0 {
		maxFrames = opts.MaxSamples/primary.Channels() + 1
	}
	voice, err := audio.ReadFrames(primary, maxFrames)
	if err != nil {
		return nil, fmt.Errorf("reading primary: %w", err)
	}
	if opts.MaxSamples > 0 && voice.Frames()*voice.Channels() > opts.MaxSamples {
		return nil, fmt.Errorf("%w: primary exceeds %d samples", audio.ErrInvalidInput, opts.MaxSamples)
	}

	conformed, err := audio.Conform(secondary, voice.SampleRate(), voice.Channels())
	if err != nil {
		return nil, fmt.Errorf("converting secondary: %w", err)
	}

	// the duration policy keeps at most voice.Frames() of the secondary
	mood, err := audio.ReadFrames(conformed, max(voice.Frames(), 1))
	if err != nil {
		return nil, fmt.Errorf("reading secondary: %w", err)
	}

	return audio.MixRequest{
		Primary:       voice,
		Secondary:     mood,
		PrimaryGain:   opts.PrimaryGain,
		SecondaryGain: opts.SecondaryGain,
	}.Run()
}

// MixToWAV is Mix followed by wav.Encode.
func MixToWAV(primary, secondary audio.Source, opts Options) ([]byte, error) {
	mixed, err := Mix(primary, secondary, opts)
	if err != nil {
		return nil, err
	}

	return wav.Encode(mixed)
}

// MixBytes decodes two complete files of any supported format, sniffing
// each container, and returns the mixed WAV.
func MixBytes(primary, secondary []byte, opts Options) ([]byte, error) {
	p, err := formats.Decode(primary, "")
	if err != nil {
		return nil, fmt.Errorf("primary: %w", err)
	}
	defer p.Close()

	s, err := formats.Decode(secondary, "")
	if err != nil {
		return nil, fmt.Errorf("secondary: %w", err)
	}
	defer s.Close()

	return MixToWAV(p, s, opts)
}
