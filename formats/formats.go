// SPDX-License-Identifier: EPL-2.0

// Package formats ties the individual decoders together: it recognises a
// file's container from its first bytes or its name and hands back a
// decoded audio.Source.
package formats

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ik5/moodmix/audio"
	"github.com/ik5/moodmix/formats/aiff"
	"github.com/ik5/moodmix/formats/mp3"
	"github.com/ik5/moodmix/formats/vorbis"
	"github.com/ik5/moodmix/formats/wav"
)

// Format keys used by the registry.
const (
	WAV  = "wav"
	MP3  = "mp3"
	Ogg  = "ogg"
	AIFF = "aiff"
)

// ErrUnknownFormat is returned when neither the content nor the hint names a
// supported container.
var ErrUnknownFormat = errors.New("unknown audio format")

// ErrUndecodable wraps every error a decoder returns from Decode, so callers
// can tell malformed content apart from other failures.
var ErrUndecodable = errors.New("undecodable audio")

var defaultRegistry = NewRegistry()

// NewRegistry returns a registry holding every decoder in the module.
func NewRegistry() *audio.Registry {
	r := audio.NewRegistry()
	r.Register(WAV, wav.Decoder{})
	r.Register(MP3, mp3.Decoder{})
	r.Register(Ogg, vorbis.Decoder{})
	r.Register(AIFF, aiff.Decoder{})

	return r
}

// Detect sniffs the container from the leading bytes of a file. It returns
// "" when nothing matches.
func Detect(header []byte) string {
	switch {
	case len(header) >= 12 && bytes.Equal(header[0:4], []byte("RIFF")) && bytes.Equal(header[8:12], []byte("WAVE")):
		return WAV
	case len(header) >= 12 && bytes.Equal(header[0:4], []byte("FORM")) &&
		(bytes.Equal(header[8:12], []byte("AIFF")) || bytes.Equal(header[8:12], []byte("AIFC"))):
		return AIFF
	case bytes.HasPrefix(header, []byte("OggS")):
		return Ogg
	case bytes.HasPrefix(header, []byte("ID3")):
		return MP3
	case len(header) >= 2 && header[0] == 0xFF && header[1]&0xE0 == 0xE0:
		// MPEG audio frame sync
		return MP3
	}

	return ""
}

// ByExtension maps a file name or URL path to a format key by its extension.
func ByExtension(name string) string {
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}

	switch strings.ToLower(filepath.Ext(name)) {
	case ".wav", ".wave":
		return WAV
	case ".mp3":
		return MP3
	case ".ogg", ".oga":
		return Ogg
	case ".aif", ".aiff", ".aifc":
		return AIFF
	}

	return ""
}

// ContentType is the MIME type served for a format key.
func ContentType(format string) string {
	switch format {
	case WAV:
		return "audio/wav"
	case MP3:
		return "audio/mpeg"
	case Ogg:
		return "audio/ogg"
	case AIFF:
		return "audio/aiff"
	}

	return "application/octet-stream"
}

// Decode picks a decoder by sniffing data and falls back to hint, which may
// be a format key or a file name.
func Decode(data []byte, hint string) (audio.Source, error) {
	format := Detect(data)
	if format == "" {
		format = ByExtension(hint)
	}
	if format == "" {
		format = strings.ToLower(hint)
	}

	dec, ok := defaultRegistry.Get(format)
	if !ok {
		return nil, fmt.Errorf("%w: hint %q", ErrUnknownFormat, hint)
	}

	src, err := dec.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %w", ErrUndecodable, format, err)
	}

	return src, nil
}

// DecodeBuffer decodes data fully into memory.
func DecodeBuffer(data []byte, hint string) (*audio.Buffer, error) {
	src, err := Decode(data, hint)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	return audio.ReadAll(src)
}
