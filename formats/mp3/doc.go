// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MP3 audio with github.com/hajimehoshi/go-mp3.
//
// Mood tracks are stored as MP3, so this is the decoder the mixer uses most.
// go-mp3 always produces interleaved stereo 16-bit PCM; samples are scaled
// to [-1.0, 1.0] by dividing by 32767.
//
//	src, err := mp3.Decoder{}.Decode(f)
//	loop, err := audio.ReadAll(src)
package mp3
