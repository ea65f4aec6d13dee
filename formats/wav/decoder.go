// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/ik5/moodmix/audio"
	"github.com/ik5/moodmix/utils"
)

// pcmReader is the part of wav.Decoder the source needs; tests substitute it.
type pcmReader interface {
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

type wavSource struct {
	dec        pcmReader
	sampleRate int
	channels   int
	bitDepth   int
	intBuf     *goaudio.IntBuffer
}

func (s *wavSource) SampleRate() int { return s.sampleRate }
func (s *wavSource) Channels() int   { return s.channels }
func (s *wavSource) BufSize() int    { return 4096 - 4096%s.channels }
func (s *wavSource) Close() error    { return nil }

func (s *wavSource) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	if cap(s.intBuf.Data) < len(dst) {
		s.intBuf.Data = make([]int, len(dst))
	}
	s.intBuf.Data = s.intBuf.Data[:len(dst)]

	n, err := s.dec.PCMBuffer(s.intBuf)
	if err != nil && !errors.Is(err, io.EOF) {
		return 0, fmt.Errorf("reading WAV PCM: %w", err)
	}
	if n == 0 {
		return 0, io.EOF
	}

	data := s.intBuf.Data[:n]
	switch s.bitDepth {
	case 8:
		// 8-bit WAV is unsigned with silence at 128
		for i, v := range data {
			dst[i] = utils.Clip(float32(v-128) / 127)
		}
	default:
		for i, v := range data {
			dst[i] = utils.SignedPCMToFloat32(v, s.bitDepth)
		}
	}

	if n < len(dst) {
		return n, io.EOF
	}

	return n, nil
}

// Decoder reads RIFF/WAVE files holding integer PCM at 8, 16, 24 or 32 bits.
// Chunks other than "fmt " and "data" are skipped.
type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	// go-audio needs an io.ReadSeeker
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("reading WAV data: %w", err)
		}
		rs = bytes.NewReader(data)
	}

	var magic [12]byte
	if _, err := io.ReadFull(rs, magic[:]); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotWavFile, err)
	}
	if string(magic[0:4]) != "RIFF" || string(magic[8:12]) != "WAVE" {
		return nil, ErrNotWavFile
	}
	if _, err := rs.Seek(-int64(len(magic)), io.SeekCurrent); err != nil {
		return nil, fmt.Errorf("rewinding WAV reader: %w", err)
	}

	dec := wav.NewDecoder(rs)
	dec.ReadInfo()
	if err := dec.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedWavLayout, err)
	}

	if dec.WavAudioFormat != formatPCM {
		return nil, fmt.Errorf("%w: format code %d", ErrUnsupportedEncoding, dec.WavAudioFormat)
	}
	switch dec.BitDepth {
	case 8, 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: %d bits", ErrUnsupportedBitDepth, dec.BitDepth)
	}
	if err := audio.CheckFormat(int(dec.SampleRate), int(dec.NumChans)); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedWavLayout, err)
	}

	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("%w: no data chunk: %w", ErrUnsupportedWavLayout, err)
	}
	if dec.PCMChunk == nil {
		return nil, fmt.Errorf("%w: no data chunk", ErrUnsupportedWavLayout)
	}

	format := &goaudio.Format{
		NumChannels: int(dec.NumChans),
		SampleRate:  int(dec.SampleRate),
	}

	return &wavSource{
		dec:        dec,
		sampleRate: format.SampleRate,
		channels:   format.NumChannels,
		bitDepth:   int(dec.BitDepth),
		intBuf: &goaudio.IntBuffer{
			Format:         format,
			Data:           make([]int, 4096),
			SourceBitDepth: int(dec.BitDepth),
		},
	}, nil
}
