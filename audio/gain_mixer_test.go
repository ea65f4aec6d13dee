// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"math"
	"testing"
)

func TestMix_WeightedSum(t *testing.T) {
	t.Parallel()

	a := mustFrames(t, 8000, [][]float32{{0.5, -0.5}, {0.1, 0.2}})
	b := mustFrames(t, 8000, [][]float32{{0.5, 0.5}, {-0.4, 1}})

	out, err := Mix(a, 1, b, 0.5)
	if err != nil {
		t.Fatalf("Mix() error = %v", err)
	}

	want := [][]float32{{0.75, -0.25}, {-0.1, 0.7}}
	for i, frame := range want {
		for c, w := range frame {
			if got := out.At(i, c); math.Abs(float64(got-w)) > 1e-6 {
				t.Errorf("Mix()[%d][%d] = %v, want %v", i, c, got, w)
			}
		}
	}
}

func TestMix_ClipsInsteadOfWrapping(t *testing.T) {
	t.Parallel()

	a := mustFrames(t, 8000, [][]float32{{0.9}, {-0.9}})
	b := mustFrames(t, 8000, [][]float32{{0.9}, {-0.9}})

	out, err := Mix(a, 1, b, 1)
	if err != nil {
		t.Fatalf("Mix() error = %v", err)
	}
	if out.At(0, 0) != 1 || out.At(1, 0) != -1 {
		t.Errorf("Mix() = %v, want [1 -1]", out.Samples())
	}
}

func TestMix_ZeroSecondaryGainIsIdentity(t *testing.T) {
	t.Parallel()

	a := mustFrames(t, 44100, [][]float32{{0.3, -0.7}, {1, -1}, {0, 0.123}})
	b := mustFrames(t, 44100, [][]float32{{0.9, 0.9}, {-0.2, 0.4}, {1, -1}})

	out, err := Mix(a, 1, b, 0)
	if err != nil {
		t.Fatalf("Mix() error = %v", err)
	}
	if !out.Equal(a) {
		t.Errorf("Mix(a, 1, b, 0) = %v, want %v", out.Samples(), a.Samples())
	}
}

func TestMix_CommutesWithSwappedGains(t *testing.T) {
	t.Parallel()

	a := mustFrames(t, 16000, [][]float32{{0.31, -0.77}, {0.05, 0.6}, {-0.99, 0.42}})
	b := mustFrames(t, 16000, [][]float32{{0.12, 0.33}, {-0.5, 0.25}, {0.7, -0.13}})

	ab, err := Mix(a, 0.8, b, 0.15)
	if err != nil {
		t.Fatalf("Mix(a, b) error = %v", err)
	}
	ba, err := Mix(b, 0.15, a, 0.8)
	if err != nil {
		t.Fatalf("Mix(b, a) error = %v", err)
	}
	if !ab.Equal(ba) {
		t.Errorf("Mix(a,g1,b,g2) = %v, Mix(b,g2,a,g1) = %v", ab.Samples(), ba.Samples())
	}
}

func TestMix_Errors(t *testing.T) {
	t.Parallel()

	base := mustFrames(t, 44100, [][]float32{{0, 0}, {0, 0}})
	otherRate := mustFrames(t, 22050, [][]float32{{0, 0}, {0, 0}})
	mono := mustFrames(t, 44100, [][]float32{{0}, {0}})
	longer := mustFrames(t, 44100, [][]float32{{0, 0}, {0, 0}, {0, 0}})
	empty, _ := NewBuffer(44100, 2, nil)

	tests := []struct {
		name    string
		b       *Buffer
		gainA   Gain
		gainB   Gain
		wantErr error
	}{
		{name: "sample rate mismatch", b: otherRate, gainA: 1, gainB: 0.2, wantErr: ErrFormatMismatch},
		{name: "channel mismatch", b: mono, gainA: 1, gainB: 0.2, wantErr: ErrFormatMismatch},
		{name: "length mismatch", b: longer, gainA: 1, gainB: 0.2, wantErr: ErrFormatMismatch},
		{name: "empty buffer", b: empty, gainA: 1, gainB: 0.2, wantErr: ErrInvalidInput},
		{name: "negative gain", b: base, gainA: 1, gainB: -0.2, wantErr: ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			out, err := Mix(base, tt.gainA, tt.b, tt.gainB)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Mix() error = %v, want %v", err, tt.wantErr)
			}
			if out != nil {
				t.Error("Mix() returned output alongside an error")
			}
		})
	}
}

func TestMix_DoesNotModifyInputs(t *testing.T) {
	t.Parallel()

	a := mustFrames(t, 8000, [][]float32{{0.5}})
	b := mustFrames(t, 8000, [][]float32{{0.5}})

	if _, err := Mix(a, 2, b, 2); err != nil {
		t.Fatalf("Mix() error = %v", err)
	}
	if a.At(0, 0) != 0.5 || b.At(0, 0) != 0.5 {
		t.Error("Mix() modified its inputs")
	}
}

func BenchmarkMix_OneMinuteStereo(b *testing.B) {
	n := 44100 * 60 * 2
	x, _ := NewBuffer(44100, 2, make([]float32, n))
	y, _ := NewBuffer(44100, 2, make([]float32, n))

	b.ReportAllocs()
	for range b.N {
		_, _ = Mix(x, 1, y, 0.15)
	}
}
