// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
	"testing"
)

func TestSentinelErrors_Distinct(t *testing.T) {
	t.Parallel()

	all := []error{ErrInvalidDstSize, ErrInvalidInput, ErrFormatMismatch, ErrEncodingFailure}
	for i, a := range all {
		for j, b := range all {
			if i != j && errors.Is(a, b) {
				t.Errorf("errors.Is(%v, %v) = true, want false", a, b)
			}
		}
	}
}

func TestSentinelErrors_Wrapping(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("secondary gain: %w", fmt.Errorf("%w: gain -1", ErrInvalidInput))
	if !errors.Is(wrapped, ErrInvalidInput) {
		t.Error("errors.Is() failed for wrapped ErrInvalidInput")
	}
	if errors.Is(wrapped, ErrFormatMismatch) {
		t.Error("errors.Is() matched the wrong sentinel")
	}
}
