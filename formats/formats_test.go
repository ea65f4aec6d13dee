// SPDX-License-Identifier: EPL-2.0

package formats

import (
	"errors"
	"testing"

	"github.com/ik5/moodmix/audio"
	"github.com/ik5/moodmix/formats/wav"
)

func TestDetect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		header []byte
		want   string
	}{
		{name: "wav", header: []byte("RIFF\x00\x00\x00\x00WAVEfmt "), want: WAV},
		{name: "avi is not wav", header: []byte("RIFF\x00\x00\x00\x00AVI LIST"), want: ""},
		{name: "aiff", header: []byte("FORM\x00\x00\x00\x00AIFFCOMM"), want: AIFF},
		{name: "aifc", header: []byte("FORM\x00\x00\x00\x00AIFCFVER"), want: AIFF},
		{name: "ogg", header: []byte("OggS\x00\x02"), want: Ogg},
		{name: "mp3 with id3", header: []byte("ID3\x04\x00"), want: MP3},
		{name: "mp3 frame sync", header: []byte{0xFF, 0xFB, 0x90, 0x64}, want: MP3},
		{name: "text", header: []byte("hello world"), want: ""},
		{name: "empty", header: nil, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Detect(tt.header); got != tt.want {
				t.Errorf("Detect(%q) = %q, want %q", tt.header, got, tt.want)
			}
		})
	}
}

func TestByExtension(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"voice.wav":                         WAV,
		"VOICE.WAV":                         WAV,
		"moods/A.mp3":                       MP3,
		"https://cdn.example.com/a.mp3?x=1": MP3,
		"take.ogg":                          Ogg,
		"take.aif":                          AIFF,
		"notes.txt":                         "",
		"noextension":                       "",
	}

	for name, want := range tests {
		if got := ByExtension(name); got != want {
			t.Errorf("ByExtension(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestContentType(t *testing.T) {
	t.Parallel()

	if got := ContentType(WAV); got != "audio/wav" {
		t.Errorf("ContentType(wav) = %q", got)
	}
	if got := ContentType(MP3); got != "audio/mpeg" {
		t.Errorf("ContentType(mp3) = %q", got)
	}
	if got := ContentType("flac"); got != "application/octet-stream" {
		t.Errorf("ContentType(flac) = %q", got)
	}
}

func TestNewRegistry(t *testing.T) {
	t.Parallel()

	got := NewRegistry().Formats()
	want := []string{AIFF, MP3, Ogg, WAV}
	if len(got) != len(want) {
		t.Fatalf("Formats() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Formats()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestDecodeBuffer(t *testing.T) {
	t.Parallel()

	in, _ := audio.NewBuffer(16000, 2, []float32{0.5, -0.5, 0.25, -0.25})
	data, err := wav.Encode(in)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	// content wins over a misleading hint
	out, err := DecodeBuffer(data, "mislabelled.mp3")
	if err != nil {
		t.Fatalf("DecodeBuffer() error = %v", err)
	}
	if out.SampleRate() != 16000 || out.Channels() != 2 || out.Frames() != 2 {
		t.Errorf("decoded %d Hz %d ch %d frames", out.SampleRate(), out.Channels(), out.Frames())
	}
}

func TestDecode_Errors(t *testing.T) {
	t.Parallel()

	if _, err := Decode([]byte("plain text"), "notes.txt"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("Decode(text) error = %v, want ErrUnknownFormat", err)
	}

	// the hint selects a decoder that then rejects the data
	if _, err := Decode([]byte("garbage"), "wav"); !errors.Is(err, wav.ErrNotWavFile) {
		t.Errorf("Decode(garbage, wav) error = %v, want ErrNotWavFile", err)
	}
	if _, err := Decode([]byte("garbage"), "wav"); !errors.Is(err, ErrUndecodable) {
		t.Errorf("Decode(garbage, wav) error = %v, want ErrUndecodable", err)
	}
	if _, err := Decode([]byte("plain text"), "notes.txt"); errors.Is(err, ErrUndecodable) {
		t.Errorf("Decode(text) error = %v, must not be ErrUndecodable", err)
	}
}
