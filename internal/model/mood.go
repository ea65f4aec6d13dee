// SPDX-License-Identifier: EPL-2.0

package model

import (
	"fmt"
	"strings"
)

// Mood tags a media item with one of the background tracks, "A" through "I".
type Mood string

const (
	MoodA Mood = "A"
	MoodB Mood = "B"
	MoodC Mood = "C"
	MoodD Mood = "D"
	MoodE Mood = "E"
	MoodF Mood = "F"
	MoodG Mood = "G"
	MoodH Mood = "H"
	MoodI Mood = "I"

	// FallbackMood is used when a stored tag matches no track.
	FallbackMood = MoodI
)

// Moods lists every tag in order.
var Moods = []Mood{MoodA, MoodB, MoodC, MoodD, MoodE, MoodF, MoodG, MoodH, MoodI}

// ParseMood accepts a tag in either case, surrounded by optional whitespace.
func ParseMood(s string) (Mood, error) {
	m := Mood(strings.ToUpper(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", fmt.Errorf("%w: mood %q is not one of %s", ErrInvalidDocument, s, moodList())
	}

	return m, nil
}

func (m Mood) Valid() bool {
	return len(m) == 1 && m[0] >= 'A' && m[0] <= 'I'
}

// TrackObject is the bucket object holding the mood's background track.
// Unknown tags resolve to the FallbackMood track.
func (m Mood) TrackObject() string {
	if !m.Valid() {
		m = FallbackMood
	}

	return "moods/" + string(m) + ".mp3"
}

func moodList() string {
	return string(Moods[0]) + ".." + string(Moods[len(Moods)-1])
}
