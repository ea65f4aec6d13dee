// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
	"io"
)

// ReadAll drains src into a Buffer.
//
// A trailing partial frame, which some decoders emit at end of stream, is
// dropped. ReadAll does not close src.
func ReadAll(src Source) (*Buffer, error) {
	return ReadFrames(src, 0)
}

// ReadFrames reads at most maxFrames frames from src into a Buffer and stops
// there, leaving the rest of the stream unread. maxFrames <= 0 reads to the
// end. ReadFrames does not close src.
func ReadFrames(src Source, maxFrames int) (*Buffer, error) {
	rate, channels := src.SampleRate(), src.Channels()
	if err := CheckFormat(rate, channels); err != nil {
		return nil, fmt.Errorf("source format: %w", err)
	}

	chunk := src.BufSize()
	if chunk < channels || chunk > maxChunk {
		chunk = defaultChunk
	}
	chunk -= chunk % channels

	limit := -1
	if maxFrames > 0 {
		limit = maxFrames * channels
	}

	prealloc := 16 * chunk
	if limit >= 0 {
		prealloc = min(prealloc, limit)
	}
	samples := make([]float32, 0, prealloc)
	buf := make([]float32, chunk)
	stalls := 0

	for limit < 0 || len(samples) < limit {
		n, err := src.ReadSamples(buf)
		if n > 0 {
			take := buf[:n]
			if limit >= 0 && len(samples)+n > limit {
				take = take[:limit-len(samples)]
			}
			samples = append(samples, take...)
			stalls = 0
		}

		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading source: %w", err)
		}

		if n == 0 {
			stalls++
			if stalls > maxEmptyReads {
				return nil, fmt.Errorf("reading source: %w", io.ErrNoProgress)
			}
		}
	}

	samples = samples[:len(samples)-len(samples)%channels]

	return newBuffer(rate, channels, samples), nil
}

// Read chunk bounds, in samples.
const (
	defaultChunk = 4096
	maxChunk     = 1 << 16
)

// maxEmptyReads bounds consecutive (0, nil) reads before a source is
// considered stuck.
const maxEmptyReads = 100
