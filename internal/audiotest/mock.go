// SPDX-License-Identifier: EPL-2.0

// Package audiotest provides synthetic sources for tests.
package audiotest

import (
	"errors"
	"io"
	"math"
)

// MockSource generates audio from a waveform function.
// It implements the audio.Source interface without importing it.
type MockSource struct {
	sampleRate  int
	channels    int
	totalFrames int
	generated   int // frames generated so far
	waveform    func(frame int, channel int) float32
	closed      bool
}

// NewMockSource creates a source of totalFrames frames whose samples come from waveform.
func NewMockSource(sampleRate, channels, totalFrames int, waveform func(frame int, channel int) float32) *MockSource {
	return &MockSource{
		sampleRate:  sampleRate,
		channels:    channels,
		totalFrames: totalFrames,
		waveform:    waveform,
	}
}

// NewSilentSource creates a mock source that generates silence.
func NewSilentSource(sampleRate, channels, totalFrames int) *MockSource {
	return NewConstantSource(sampleRate, channels, totalFrames, 0)
}

// NewSineSource creates a mock source that generates a sine wave.
func NewSineSource(sampleRate, channels, totalFrames int, frequency float64) *MockSource {
	return NewMockSource(sampleRate, channels, totalFrames, func(frame int, _ int) float32 {
		t := float64(frame) / float64(sampleRate)
		return float32(math.Sin(2 * math.Pi * frequency * t))
	})
}

// NewConstantSource creates a mock source with constant value.
func NewConstantSource(sampleRate, channels, totalFrames int, value float32) *MockSource {
	return NewMockSource(sampleRate, channels, totalFrames, func(int, int) float32 {
		return value
	})
}

// NewRampSource yields frame/totalFrames on every channel, handy for
// checking sample order.
func NewRampSource(sampleRate, channels, totalFrames int) *MockSource {
	return NewMockSource(sampleRate, channels, totalFrames, func(frame int, _ int) float32 {
		return float32(frame) / float32(totalFrames)
	})
}

func (m *MockSource) SampleRate() int { return m.sampleRate }
func (m *MockSource) Channels() int   { return m.channels }
func (m *MockSource) BufSize() int    { return 4096 }

func (m *MockSource) Close() error {
	m.closed = true
	return nil
}

// Closed reports whether Close was called.
func (m *MockSource) Closed() bool { return m.closed }

// Generated reports how many frames have been read so far.
func (m *MockSource) Generated() int { return m.generated }

// Reset rewinds the source to its first frame.
func (m *MockSource) Reset() {
	m.generated = 0
}

func (m *MockSource) ReadSamples(dst []float32) (int, error) {
	if m.generated >= m.totalFrames {
		return 0, io.EOF
	}

	frames := min(len(dst)/m.channels, m.totalFrames-m.generated)
	for f := range frames {
		for ch := range m.channels {
			dst[f*m.channels+ch] = m.waveform(m.generated+f, ch)
		}
	}

	m.generated += frames
	if m.generated >= m.totalFrames {
		return frames * m.channels, io.EOF
	}

	return frames * m.channels, nil
}

// ErrMockRead is returned by FailingSource.
var ErrMockRead = errors.New("mock read failure")

// FailingSource reports a format and then fails on the first read.
type FailingSource struct {
	Rate int
	Chan int
}

func (f FailingSource) SampleRate() int                    { return f.Rate }
func (f FailingSource) Channels() int                      { return f.Chan }
func (f FailingSource) BufSize() int                       { return 4096 }
func (f FailingSource) Close() error                       { return nil }
func (f FailingSource) ReadSamples([]float32) (int, error) { return 0, ErrMockRead }

// StallingSource never produces data and never ends.
type StallingSource struct {
	Rate int
	Chan int
}

func (s StallingSource) SampleRate() int                    { return s.Rate }
func (s StallingSource) Channels() int                      { return s.Chan }
func (s StallingSource) BufSize() int                       { return 4096 }
func (s StallingSource) Close() error                       { return nil }
func (s StallingSource) ReadSamples([]float32) (int, error) { return 0, nil }
