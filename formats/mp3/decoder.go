// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"

	"github.com/ik5/moodmix/audio"
	"github.com/ik5/moodmix/utils"
)

// ErrNotMP3File is returned when go-mp3 cannot find a valid frame header.
var ErrNotMP3File = errors.New("not an MP3 file")

// go-mp3 always decodes to interleaved stereo 16-bit little-endian PCM.
const (
	channels    = 2
	frameBytes  = channels * 2
	defaultSize = 4096
)

// mp3Reader is the part of gomp3.Decoder the source needs; tests substitute it.
type mp3Reader interface {
	Read([]byte) (int, error)
	SampleRate() int
}

type source struct {
	dec        mp3Reader
	sampleRate int
	buf        []byte
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return channels }
func (s *source) Close() error    { return nil }
func (s *source) BufSize() int    { return defaultSize }

func (s *source) ReadSamples(dst []float32) (int, error) {
	frames := len(dst) / channels
	if frames == 0 {
		if len(dst) == 0 {
			return 0, nil
		}
		return 0, audio.ErrInvalidDstSize
	}

	want := frames * frameBytes
	if cap(s.buf) < want {
		s.buf = make([]byte, want)
	}
	s.buf = s.buf[:want]

	n, err := io.ReadFull(s.dec, s.buf)
	switch {
	case errors.Is(err, io.ErrUnexpectedEOF):
		err = io.EOF
	case err != nil && !errors.Is(err, io.EOF):
		return 0, fmt.Errorf("decoding MP3: %w", err)
	}

	// a trailing partial frame is dropped
	n -= n % frameBytes
	samples := n / 2
	for i := range samples {
		dst[i] = utils.Int16ToFloat32(int16(binary.LittleEndian.Uint16(s.buf[2*i:])))
	}

	return samples, err
}

// Decoder reads MPEG-1/2 Layer III audio. Mono files are upmixed to stereo by
// go-mp3, so sources always report two channels.
type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotMP3File, err)
	}
	if err := audio.CheckFormat(dec.SampleRate(), channels); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotMP3File, err)
	}

	return &source{
		dec:        dec,
		sampleRate: dec.SampleRate(),
		buf:        make([]byte, defaultSize*2),
	}, nil
}
