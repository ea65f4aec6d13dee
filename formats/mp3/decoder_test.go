// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"

	"github.com/ik5/moodmix/audio"
)

// mockMP3Reader hands out PCM bytes in chunks of at most step bytes, the way
// go-mp3 returns whatever one MPEG frame produced.
type mockMP3Reader struct {
	sampleRate int
	pcm        []byte
	step       int
	err        error
}

func newMockReader(rate, step int, samples ...int16) *mockMP3Reader {
	pcm := make([]byte, 2*len(samples))
	for i, s := range samples {
		binary.LittleEndian.PutUint16(pcm[2*i:], uint16(s))
	}
	return &mockMP3Reader{sampleRate: rate, pcm: pcm, step: step}
}

func (m *mockMP3Reader) SampleRate() int { return m.sampleRate }

func (m *mockMP3Reader) Read(p []byte) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	if len(m.pcm) == 0 {
		return 0, io.EOF
	}
	n := copy(p[:min(len(p), m.step)], m.pcm)
	m.pcm = m.pcm[n:]

	return n, nil
}

func TestDecoder_InvalidInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
	}{
		{name: "text", data: []byte("This is not MP3 data")},
		{name: "empty", data: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := (Decoder{}).Decode(bytes.NewReader(tt.data)); !errors.Is(err, ErrNotMP3File) {
				t.Errorf("Decode() error = %v, want ErrNotMP3File", err)
			}
		})
	}
}

func TestSource_ReadSamples(t *testing.T) {
	t.Parallel()

	// odd step sizes split samples across Read calls
	src := &source{dec: newMockReader(44100, 3, 0, 32767, -32767, 16384, 100, -100), sampleRate: 44100}

	if src.SampleRate() != 44100 || src.Channels() != 2 || src.BufSize() <= 0 {
		t.Fatalf("metadata = %d Hz %d ch buf %d", src.SampleRate(), src.Channels(), src.BufSize())
	}

	buf, err := audio.ReadAll(src)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}

	want := []float32{0, 1, -1, 16384.0 / 32767, 100.0 / 32767, -100.0 / 32767}
	got := buf.Samples()
	if len(got) != len(want) {
		t.Fatalf("got %d samples, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestSource_DropsPartialFrame(t *testing.T) {
	t.Parallel()

	src := &source{dec: newMockReader(8000, 64, 1, 2, 3), sampleRate: 8000}

	dst := make([]float32, 8)
	n, err := src.ReadSamples(dst)
	if n != 2 || !errors.Is(err, io.EOF) {
		t.Errorf("ReadSamples() = %d, %v, want 2, EOF", n, err)
	}
}

func TestSource_Errors(t *testing.T) {
	t.Parallel()

	broken := &source{dec: &mockMP3Reader{err: errors.New("bad huffman table")}}
	if _, err := broken.ReadSamples(make([]float32, 4)); err == nil || errors.Is(err, io.EOF) {
		t.Errorf("ReadSamples() error = %v, want decode error", err)
	}

	src := &source{dec: newMockReader(8000, 8, 1, 2)}
	if _, err := src.ReadSamples(make([]float32, 1)); !errors.Is(err, audio.ErrInvalidDstSize) {
		t.Errorf("ReadSamples(1) error = %v, want ErrInvalidDstSize", err)
	}
	if n, err := src.ReadSamples(nil); n != 0 || err != nil {
		t.Errorf("ReadSamples(nil) = %d, %v, want 0, nil", n, err)
	}
}
