// SPDX-License-Identifier: EPL-2.0

// Package wav reads and writes RIFF/WAVE audio.
//
// Encode turns an audio.Buffer into a 16-bit PCM file with the canonical
// 44-byte header, which any player can open:
//
//	data, err := wav.Encode(mixed)
//
// WritePCM16 streams the same layout for samples that are already int16.
//
// Decoder reads integer PCM at 8, 16, 24 or 32 bits through
// github.com/go-audio/wav and yields float32 samples in [-1.0, 1.0]. 16-bit
// samples are divided by 32767, the inverse of the encoder, so an
// encode/decode round trip stays within one quantization step. IEEE float
// and compressed WAV are rejected with ErrUnsupportedEncoding.
package wav
