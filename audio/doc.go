// SPDX-License-Identifier: EPL-2.0

// Package audio holds the sample-level building blocks of the mixer.
//
// # Buffers
//
// A Buffer is an immutable block of interleaved float32 PCM with a fixed
// sample rate and channel count. Samples are nominally in [-1.0, 1.0].
// Every operation returns a new Buffer and leaves its inputs untouched.
//
//	voice, _ := audio.NewBuffer(44100, 2, samples)
//	fmt.Println(voice.Frames(), voice.Duration())
//
// # Duration matching
//
// MixWithDurationMatch lays a secondary track (usually a mood loop) under a
// primary one. The secondary is looped with Extend when it is shorter and
// cut with Truncate when it is longer, then both are combined by Mix:
//
//	out, err := audio.MixWithDurationMatch(voice, loop, 1.0, 0.15)
//
// The output always has the primary's frame count. Mixing never resamples:
// buffers with different sample rates or channel counts fail with
// ErrFormatMismatch. Use Conform on the streaming side to bring a Source to
// the primary's format first.
//
// Mix clips each summed sample to [-1.0, 1.0], so overdriven mixes saturate
// instead of wrapping once quantized.
//
// # Sources
//
// Source is the streaming side of the package, implemented by every decoder:
//
//	type Source interface {
//	    SampleRate() int
//	    Channels() int
//	    ReadSamples(dst []float32) (int, error)
//	    BufSize() int
//	    Close() error
//	}
//
// Sources can be chained. Resampler changes the sample rate using cubic
// interpolation, MonoMixer folds channels down by averaging and
// ChannelExpander copies a mono stream onto several channels. Conform picks
// the chain needed to reach a target format, and ReadAll drains a Source
// into a Buffer:
//
//	src, _ := audio.Conform(decoded, voice.SampleRate(), voice.Channels())
//	loop, err := audio.ReadAll(src)
//
// ReadSamples returns io.EOF when no more data is available; samples
// returned alongside io.EOF are valid and must be consumed.
//
// # Format registry
//
// Registry maps format keys to decoders:
//
//	registry := audio.NewRegistry()
//	registry.Register("wav", wav.Decoder{})
//	decoder, _ := registry.Get("wav")
package audio
