// SPDX-License-Identifier: EPL-2.0

package audio

import "fmt"

// ChannelExpander copies a mono source onto every output channel.
type ChannelExpander struct {
	src      Source
	channels int
	tmp      []float32
}

func NewChannelExpander(src Source, channels int) *ChannelExpander {
	return &ChannelExpander{
		src:      src,
		channels: channels,
		tmp:      make([]float32, 4096),
	}
}

func (e *ChannelExpander) SampleRate() int { return e.src.SampleRate() }
func (e *ChannelExpander) Channels() int   { return e.channels }
func (e *ChannelExpander) BufSize() int    { return e.src.BufSize() * e.channels }

func (e *ChannelExpander) Close() error {
	if err := e.src.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

func (e *ChannelExpander) ReadSamples(dst []float32) (int, error) {
	if e.src.Channels() != 1 {
		return 0, fmt.Errorf("%w: channel expander needs a mono source, got %d channels",
			ErrInvalidInput, e.src.Channels())
	}
	if len(dst)%e.channels != 0 {
		return 0, ErrInvalidDstSize
	}

	frames := len(dst) / e.channels
	if frames == 0 {
		return 0, nil
	}
	if cap(e.tmp) < frames {
		e.tmp = make([]float32, frames)
	}

	n, err := e.src.ReadSamples(e.tmp[:frames])
	for f := range n {
		v := e.tmp[f]
		base := f * e.channels
		for c := range e.channels {
			dst[base+c] = v
		}
	}

	return n * e.channels, err
}
