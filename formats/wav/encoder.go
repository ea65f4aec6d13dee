// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/ik5/moodmix/audio"
	"github.com/ik5/moodmix/utils"
)

// HeaderSize is the length of the canonical RIFF/WAVE PCM header.
const HeaderSize = 44

const (
	formatPCM      = 1
	bitsPerSample  = 16
	bytesPerSample = bitsPerSample / 8
)

// Encode serializes b as a 16-bit PCM WAV file: a 44-byte header followed by
// interleaved little-endian samples. Each sample is clipped to [-1, 1],
// scaled by 32767 and truncated.
//
// Buffers whose size does not fit the uint32 header fields fail with
// audio.ErrEncodingFailure before anything is allocated.
func Encode(b *audio.Buffer) ([]byte, error) {
	if b == nil {
		return nil, fmt.Errorf("%w: nil buffer", audio.ErrInvalidInput)
	}

	samples := b.Frames() * b.Channels()
	header, err := pcm16Header(b.SampleRate(), b.Channels(), samples)
	if err != nil {
		return nil, err
	}

	out := make([]byte, HeaderSize+samples*bytesPerSample)
	copy(out, header[:])

	payload := out[HeaderSize:]
	for i, s := range b.Samples() {
		binary.LittleEndian.PutUint16(payload[2*i:], uint16(utils.Float32ToInt16(s)))
	}

	return out, nil
}

// WritePCM16 writes a complete 16-bit PCM WAV stream of interleaved samples
// to w.
func WritePCM16(w io.Writer, sampleRate, channels int, samples []int16) error {
	if channels <= 0 || len(samples)%channels != 0 {
		return fmt.Errorf("%w: %d samples is not a whole number of %d-channel frames",
			audio.ErrInvalidInput, len(samples), channels)
	}

	header, err := pcm16Header(sampleRate, channels, len(samples))
	if err != nil {
		return err
	}
	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("writing WAV header: %w", err)
	}

	if len(samples) == 0 {
		return nil
	}

	const chunkSize = 8192
	buf := make([]byte, min(len(samples), chunkSize)*bytesPerSample)

	for i := 0; i < len(samples); i += chunkSize {
		chunk := samples[i:min(i+chunkSize, len(samples))]
		buf = buf[:len(chunk)*bytesPerSample]

		for j, s := range chunk {
			binary.LittleEndian.PutUint16(buf[2*j:], uint16(s))
		}

		if _, err := w.Write(buf); err != nil {
			return fmt.Errorf("writing WAV payload: %w", err)
		}
	}

	return nil
}

// pcm16Header builds the header for samples interleaved 16-bit values.
func pcm16Header(sampleRate, channels, samples int) ([HeaderSize]byte, error) {
	var h [HeaderSize]byte

	if sampleRate <= 0 || channels <= 0 || samples < 0 {
		return h, fmt.Errorf("%w: %d Hz, %d channels, %d samples",
			audio.ErrInvalidInput, sampleRate, channels, samples)
	}
	if channels > math.MaxUint16/bytesPerSample {
		return h, fmt.Errorf("%w: %d channels overflow the block align field",
			audio.ErrEncodingFailure, channels)
	}

	byteRate := uint64(sampleRate) * uint64(channels) * bytesPerSample
	if byteRate > math.MaxUint32 {
		return h, fmt.Errorf("%w: byte rate %d overflows uint32", audio.ErrEncodingFailure, byteRate)
	}

	dataSize := uint64(samples) * bytesPerSample
	if dataSize > math.MaxUint32-(HeaderSize-8) {
		return h, fmt.Errorf("%w: %d bytes of PCM do not fit a WAV file", audio.ErrEncodingFailure, dataSize)
	}

	copy(h[0:4], "RIFF")
	binary.LittleEndian.PutUint32(h[4:8], uint32(dataSize)+HeaderSize-8)
	copy(h[8:12], "WAVE")

	copy(h[12:16], "fmt ")
	binary.LittleEndian.PutUint32(h[16:20], 16)
	binary.LittleEndian.PutUint16(h[20:22], formatPCM)
	binary.LittleEndian.PutUint16(h[22:24], uint16(channels))
	binary.LittleEndian.PutUint32(h[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(h[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(h[32:34], uint16(channels*bytesPerSample))
	binary.LittleEndian.PutUint16(h[34:36], bitsPerSample)

	copy(h[36:40], "data")
	binary.LittleEndian.PutUint32(h[40:44], uint32(dataSize))

	return h, nil
}
