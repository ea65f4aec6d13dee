// SPDX-License-Identifier: EPL-2.0

// Package moodmix lays a looping mood track under a voice message and
// returns the result as a WAV file.
//
// It is the single entry point used by the HTTP server and the command line
// tool, so both apply the same gains and the same duration policy:
//
//	out, err := moodmix.MixBytes(voice, loop, moodmix.DefaultOptions())
//
// The primary (voice) decides the output length, sample rate and channel
// count. The secondary (mood) is converted to the primary's format, looped
// when shorter and cut when longer, attenuated by Options.SecondaryGain and
// summed with clipping. The sub-packages hold the pieces:
//
//   - audio: buffers, the looping extender, the gain mixer and streaming
//     conversions
//   - formats: container sniffing plus WAV, MP3, Ogg Vorbis and AIFF decoders
//   - formats/wav: the 16-bit PCM WAV encoder
package moodmix
