// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"
	"math"
	"time"
)

// Buffer is a fully materialized block of interleaved float32 PCM.
//
// A Buffer never changes after construction. Every transform in this package
// returns a new Buffer, so a Buffer can be shared between goroutines freely.
type Buffer struct {
	sampleRate int
	channels   int
	samples    []float32
}

// Limits on the stream format a Buffer or Source may declare. Anything
// outside them comes from a corrupt or hostile header.
const (
	MinSampleRate = 1
	MaxSampleRate = 768000
	MaxChannels   = 32
)

// CheckFormat reports whether sampleRate and channels are within the limits.
func CheckFormat(sampleRate, channels int) error {
	if sampleRate < MinSampleRate || sampleRate > MaxSampleRate {
		return fmt.Errorf("%w: sample rate %d Hz outside [%d, %d]",
			ErrInvalidInput, sampleRate, MinSampleRate, MaxSampleRate)
	}
	if channels <= 0 || channels > MaxChannels {
		return fmt.Errorf("%w: channel count %d outside [1, %d]", ErrInvalidInput, channels, MaxChannels)
	}

	return nil
}

// NewBuffer copies samples into a new Buffer. samples are interleaved and
// their count must be a multiple of channels.
func NewBuffer(sampleRate, channels int, samples []float32) (*Buffer, error) {
	if err := CheckFormat(sampleRate, channels); err != nil {
		return nil, err
	}
	if len(samples)%channels != 0 {
		return nil, fmt.Errorf("%w: %d samples is not a whole number of %d-channel frames",
			ErrInvalidInput, len(samples), channels)
	}

	cp := make([]float32, len(samples))
	copy(cp, samples)

	return newBuffer(sampleRate, channels, cp), nil
}

// NewBufferFromFrames builds a Buffer from a list of frames, each frame
// holding one sample per channel.
func NewBufferFromFrames(sampleRate int, frames [][]float32) (*Buffer, error) {
	if len(frames) == 0 {
		return nil, fmt.Errorf("%w: no frames to infer the channel count from", ErrInvalidInput)
	}

	channels := len(frames[0])
	samples := make([]float32, 0, len(frames)*channels)
	for i, f := range frames {
		if len(f) != channels {
			return nil, fmt.Errorf("%w: frame %d has %d samples, frame 0 has %d",
				ErrInvalidInput, i, len(f), channels)
		}
		samples = append(samples, f...)
	}

	return NewBuffer(sampleRate, channels, samples)
}

// newBuffer takes ownership of samples.
func newBuffer(sampleRate, channels int, samples []float32) *Buffer {
	return &Buffer{
		sampleRate: sampleRate,
		channels:   channels,
		samples:    samples,
	}
}

func (b *Buffer) SampleRate() int { return b.sampleRate }
func (b *Buffer) Channels() int   { return b.channels }

// Frames is the number of sample instants in the buffer.
func (b *Buffer) Frames() int { return len(b.samples) / b.channels }

// Duration of the buffer at its sample rate.
func (b *Buffer) Duration() time.Duration {
	return time.Duration(float64(b.Frames()) / float64(b.sampleRate) * float64(time.Second))
}

// At returns the sample of channel ch at frame.
func (b *Buffer) At(frame, ch int) float32 {
	return b.samples[frame*b.channels+ch]
}

// Frame returns a copy of one frame.
func (b *Buffer) Frame(i int) []float32 {
	out := make([]float32, b.channels)
	copy(out, b.samples[i*b.channels:(i+1)*b.channels])

	return out
}

// Samples returns a copy of the interleaved samples.
func (b *Buffer) Samples() []float32 {
	out := make([]float32, len(b.samples))
	copy(out, b.samples)

	return out
}

// Channel returns a copy of the samples of a single channel.
func (b *Buffer) Channel(ch int) []float32 {
	out := make([]float32, b.Frames())
	for i := range out {
		out[i] = b.samples[i*b.channels+ch]
	}

	return out
}

// Equal reports whether both buffers have the same format and identical samples.
func (b *Buffer) Equal(o *Buffer) bool {
	if b == nil || o == nil {
		return b == o
	}
	if b.sampleRate != o.sampleRate || b.channels != o.channels || len(b.samples) != len(o.samples) {
		return false
	}
	for i := range b.samples {
		if b.samples[i] != o.samples[i] {
			return false
		}
	}

	return true
}

// Source streams the buffer from its first frame.
func (b *Buffer) Source() Source {
	return &bufferSource{buf: b}
}

type bufferSource struct {
	buf *Buffer
	pos int // index into buf.samples
}

func (s *bufferSource) SampleRate() int { return s.buf.sampleRate }
func (s *bufferSource) Channels() int   { return s.buf.channels }
func (s *bufferSource) BufSize() int    { return 4096 - 4096%s.buf.channels }
func (s *bufferSource) Close() error    { return nil }

func (s *bufferSource) ReadSamples(dst []float32) (int, error) {
	remaining := len(s.buf.samples) - s.pos
	if remaining == 0 {
		return 0, io.EOF
	}
	if len(dst) == 0 {
		return 0, nil
	}

	n := min(len(dst)-len(dst)%s.buf.channels, remaining)
	if n == 0 {
		return 0, ErrInvalidDstSize
	}

	copy(dst, s.buf.samples[s.pos:s.pos+n])
	s.pos += n

	if s.pos == len(s.buf.samples) {
		return n, io.EOF
	}

	return n, nil
}

// Gain is a linear amplitude multiplier.
type Gain float32

// Validate rejects negative, NaN and infinite gains.
func (g Gain) Validate() error {
	f := float64(g)
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return fmt.Errorf("%w: gain %v must be a finite non-negative number", ErrInvalidInput, f)
	}

	return nil
}

// checkNotEmpty rejects nil and zero-frame buffers. name identifies the
// buffer in the error ("primary", "secondary", ...).
func checkNotEmpty(b *Buffer, name string) error {
	if b == nil {
		return fmt.Errorf("%w: %s buffer is nil", ErrInvalidInput, name)
	}
	if b.Frames() == 0 {
		return fmt.Errorf("%w: %s buffer has zero frames", ErrInvalidInput, name)
	}

	return nil
}

// checkSameFormat compares sample rate and channel count of b against a.
func checkSameFormat(a *Buffer, nameA string, b *Buffer, nameB string) error {
	if a.sampleRate != b.sampleRate {
		return fmt.Errorf("%w: %s sample rate %d Hz differs from %s sample rate %d Hz",
			ErrFormatMismatch, nameB, b.sampleRate, nameA, a.sampleRate)
	}
	if a.channels != b.channels {
		return fmt.Errorf("%w: %s has %d channels, %s has %d",
			ErrFormatMismatch, nameB, b.channels, nameA, a.channels)
	}

	return nil
}
