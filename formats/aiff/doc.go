// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes uncompressed AIFF audio with github.com/go-audio/aiff.
//
// Recordings made on macOS and iOS frequently arrive as AIFF. 8, 16, 24 and
// 32-bit signed PCM is supported; samples are scaled to [-1.0, 1.0].
package aiff
