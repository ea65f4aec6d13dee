// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"io"
	"testing"

	"github.com/ik5/moodmix/internal/audiotest"
)

// raggedSource emits samples in whatever chunk sizes it was given, ignoring
// frame alignment.
type raggedSource struct {
	chunks [][]float32
}

func (r *raggedSource) SampleRate() int { return 8000 }
func (r *raggedSource) Channels() int   { return 2 }
func (r *raggedSource) BufSize() int    { return 16 }
func (r *raggedSource) Close() error    { return nil }

func (r *raggedSource) ReadSamples(dst []float32) (int, error) {
	if len(r.chunks) == 0 {
		return 0, io.EOF
	}
	n := copy(dst, r.chunks[0])
	r.chunks = r.chunks[1:]

	return n, nil
}

func TestReadAll(t *testing.T) {
	t.Parallel()

	src := audiotest.NewRampSource(22050, 2, 10000)

	buf, err := ReadAll(src)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if buf.SampleRate() != 22050 || buf.Channels() != 2 || buf.Frames() != 10000 {
		t.Fatalf("ReadAll() = %d Hz %d ch %d frames", buf.SampleRate(), buf.Channels(), buf.Frames())
	}
	for _, f := range []int{0, 1, 4095, 9999} {
		if got, want := buf.At(f, 1), float32(f)/10000; got != want {
			t.Errorf("frame %d = %v, want %v", f, got, want)
		}
	}
	if src.Closed() {
		t.Error("ReadAll() closed the source")
	}
}

func TestReadAll_DropsTrailingPartialFrame(t *testing.T) {
	t.Parallel()

	src := &raggedSource{chunks: [][]float32{{0.1, 0.2, 0.3}, {}, {0.4, 0.5}}}

	buf, err := ReadAll(src)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if buf.Frames() != 2 {
		t.Fatalf("Frames() = %d, want 2", buf.Frames())
	}
	if buf.At(1, 1) != 0.4 {
		t.Errorf("At(1, 1) = %v, want 0.4", buf.At(1, 1))
	}
}

func TestReadAll_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		src     Source
		wantErr error
	}{
		{name: "read failure", src: audiotest.FailingSource{Rate: 8000, Chan: 1}, wantErr: audiotest.ErrMockRead},
		{name: "stalled source", src: audiotest.StallingSource{Rate: 8000, Chan: 1}, wantErr: io.ErrNoProgress},
		{name: "zero sample rate", src: audiotest.FailingSource{Rate: 0, Chan: 1}, wantErr: ErrInvalidInput},
		{name: "zero channels", src: audiotest.FailingSource{Rate: 8000, Chan: 0}, wantErr: ErrInvalidInput},
		{name: "absurd sample rate", src: audiotest.FailingSource{Rate: 400_000_000, Chan: 1}, wantErr: ErrInvalidInput},
		{name: "absurd channel count", src: audiotest.FailingSource{Rate: 8000, Chan: 0x4000}, wantErr: ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := ReadAll(tt.src); !errors.Is(err, tt.wantErr) {
				t.Errorf("ReadAll() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestReadAll_EmptySource(t *testing.T) {
	t.Parallel()

	buf, err := ReadAll(audiotest.NewSilentSource(8000, 1, 0))
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if buf.Frames() != 0 {
		t.Errorf("Frames() = %d, want 0", buf.Frames())
	}
}
