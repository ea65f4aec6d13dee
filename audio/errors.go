// SPDX-License-Identifier: EPL-2.0

package audio

import "errors"

var (
	ErrInvalidDstSize = errors.New("dst size must be multiple of channels")

	// ErrInvalidInput reports an empty buffer, a bad gain or an impossible target length.
	ErrInvalidInput = errors.New("invalid input")

	// ErrFormatMismatch reports buffers that differ in sample rate, channel count or length.
	ErrFormatMismatch = errors.New("format mismatch")

	// ErrEncodingFailure reports a buffer too large for the output container.
	ErrEncodingFailure = errors.New("encoding failure")
)
