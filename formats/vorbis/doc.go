// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis audio with github.com/jfreymuth/oggvorbis.
//
// Browsers that cannot record WAV often produce Ogg, so recordings may
// arrive in this format. Decoded samples are clipped to [-1.0, 1.0].
package vorbis
