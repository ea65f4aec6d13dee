// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
	"io"

	"github.com/ik5/moodmix/utils"
)

// Resampler streams src at a new sample rate using cubic interpolation.
// Works on interleaved samples; preserves channel count. A one-pole
// low-pass runs on the input when downsampling.
//
// Output frame k sits at source position k*srcRate/dstRate, computed in
// integers so long streams do not drift.
type Resampler struct {
	src      Source
	srcRate  int64
	dstRate  int64
	channels int

	// window[1] holds source frame base; window[0], [2], [3] are its
	// neighbours at base-1, base+1, base+2.
	window [4][]float32
	valid  [4]bool
	base   int64
	out    int64 // next output frame index

	frame  []float32
	primed bool
	eof    bool

	lowpass bool
	warm    bool
	alpha   float32
	state   []float32
}

func NewResampler(src Source, dstRate int) *Resampler {
	channels := src.Channels()

	r := &Resampler{
		src:      src,
		srcRate:  int64(src.SampleRate()),
		dstRate:  int64(dstRate),
		channels: channels,
		frame:    make([]float32, channels),
		lowpass:  src.SampleRate() > dstRate,
		alpha:    0.5,
		state:    make([]float32, channels),
	}
	for i := range r.window {
		r.window[i] = make([]float32, channels)
	}

	return r
}

func (r *Resampler) SampleRate() int { return int(r.dstRate) }
func (r *Resampler) Channels() int   { return r.channels }
func (r *Resampler) BufSize() int    { return r.src.BufSize() }

func (r *Resampler) Close() error {
	if err := r.src.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

// readFrame pulls one frame from src into r.frame. It reports false once
// the source is exhausted.
func (r *Resampler) readFrame() (bool, error) {
	for range maxEmptyReads {
		if r.eof {
			return false, nil
		}

		n, err := r.src.ReadSamples(r.frame)
		if errors.Is(err, io.EOF) {
			r.eof = true
		} else if err != nil {
			return false, fmt.Errorf("%w", err)
		}

		if n > 0 {
			clear(r.frame[n:])
			r.filter(r.frame)
			return true, nil
		}
	}

	return false, io.ErrNoProgress
}

func (r *Resampler) filter(frame []float32) {
	if !r.lowpass {
		return
	}
	if !r.warm {
		// start the filter settled on the first frame
		copy(r.state, frame)
		r.warm = true
		return
	}
	for c, x := range frame {
		y := r.alpha*x + (1-r.alpha)*r.state[c]
		r.state[c] = y
		frame[c] = y
	}
}

// prime loads frames 0, 1 and 2, repeating frame 0 as its own predecessor.
func (r *Resampler) prime() error {
	r.primed = true

	ok, err := r.readFrame()
	if err != nil || !ok {
		return err
	}
	copy(r.window[0], r.frame)
	copy(r.window[1], r.frame)
	r.valid[0], r.valid[1] = true, true

	for slot := 2; slot < 4; slot++ {
		ok, err := r.readFrame()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		copy(r.window[slot], r.frame)
		r.valid[slot] = true
	}

	return nil
}

// advance slides the window forward by one source frame.
func (r *Resampler) advance() error {
	first := r.window[0]
	copy(r.window[:], r.window[1:])
	r.window[3] = first
	copy(r.valid[:], r.valid[1:])
	r.base++

	ok, err := r.readFrame()
	if err != nil {
		return err
	}
	r.valid[3] = ok
	if ok {
		copy(r.window[3], r.frame)
	}

	return nil
}

// ReadSamples produces dst samples at the destination rate.
// dst length should be a multiple of r.channels.
func (r *Resampler) ReadSamples(dst []float32) (int, error) {
	if len(dst)%r.channels != 0 {
		return 0, ErrInvalidDstSize
	}
	if !r.primed {
		if err := r.prime(); err != nil {
			return 0, err
		}
	}

	frames := len(dst) / r.channels
	written := 0

	for written < frames {
		pos := r.out * r.srcRate
		target := pos / r.dstRate

		for r.base < target && r.valid[1] {
			if err := r.advance(); err != nil {
				return written * r.channels, err
			}
		}
		if !r.valid[1] {
			return written * r.channels, io.EOF
		}

		x := float32(pos%r.dstRate) / float32(r.dstRate)
		r.interpolate(dst[written*r.channels:(written+1)*r.channels], x)

		written++
		r.out++
	}

	return written * r.channels, nil
}

// interpolate writes one output frame at fractional offset x past window[1].
// Missing neighbours at the stream edges repeat the nearest valid frame.
func (r *Resampler) interpolate(dst []float32, x float32) {
	y1 := r.window[1]
	y0, y2, y3 := y1, y1, y1
	if r.valid[0] {
		y0 = r.window[0]
	}
	if r.valid[2] {
		y2 = r.window[2]
		y3 = y2
	}
	if r.valid[3] {
		y3 = r.window[3]
	}

	for c := range dst {
		dst[c] = utils.CubicInterpolate(y0[c], y1[c], y2[c], y3[c], x)
	}
}
