package cli

import (
	"errors"
	"fmt"
	"testing"
)

// ---------------------------------------------------------------------------
// Tests for sentinel errors
// ---------------------------------------------------------------------------

func TestSentinelErrors_CanBeWrapped(t *testing.T) {
	t.Parallel()

	sentinels := []error{ErrInvalidFlag, ErrDuplicateID}

	for i, sentinel := range sentinels {
		wrapped := fmt.Errorf("context: %w", sentinel)
		if !errors.Is(wrapped, sentinel) {
			t.Errorf("wrapped %v should match its sentinel", sentinel)
		}
		for j, other := range sentinels {
			if i != j && errors.Is(sentinel, other) {
				t.Errorf("sentinels %d and %d should not match", i, j)
			}
		}
	}
}
