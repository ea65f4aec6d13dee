// SPDX-License-Identifier: EPL-2.0

package audio

import "fmt"

// MixRequest pairs a primary and a secondary buffer with their gains.
type MixRequest struct {
	Primary       *Buffer
	Secondary     *Buffer
	PrimaryGain   Gain
	SecondaryGain Gain
}

// Run mixes the request with MixWithDurationMatch.
func (r MixRequest) Run() (*Buffer, error) {
	return MixWithDurationMatch(r.Primary, r.Secondary, r.PrimaryGain, r.SecondaryGain)
}

// MixWithDurationMatch mixes secondary under primary and returns a buffer
// exactly as long as primary.
//
// A shorter secondary is looped with Extend, a longer one is cut with
// Truncate. Sample rate and channel count must already match.
func MixWithDurationMatch(primary, secondary *Buffer, gainPrimary, gainSecondary Gain) (*Buffer, error) {
	if err := checkNotEmpty(primary, "primary"); err != nil {
		return nil, err
	}
	if err := checkNotEmpty(secondary, "secondary"); err != nil {
		return nil, err
	}
	if err := gainPrimary.Validate(); err != nil {
		return nil, fmt.Errorf("primary gain: %w", err)
	}
	if err := gainSecondary.Validate(); err != nil {
		return nil, fmt.Errorf("secondary gain: %w", err)
	}
	if err := checkSameFormat(primary, "primary", secondary, "secondary"); err != nil {
		return nil, err
	}

	var err error
	switch n := primary.Frames(); {
	case secondary.Frames() < n:
		secondary, err = Extend(secondary, n)
	case secondary.Frames() > n:
		secondary, err = Truncate(secondary, n)
	}
	if err != nil {
		return nil, fmt.Errorf("matching secondary duration: %w", err)
	}

	return Mix(primary, gainPrimary, secondary, gainSecondary)
}
