package workflow

import (
	"context"
	"reflect"
	"testing"
)

func TestOrderedLineCodesIsDeterministic(t *testing.T) {
	want := []string{"BL-2026-011", "BL-2026-042", "BL-2026-107"}

	permutations := [][]string{
		{"BL-2026-011", "BL-2026-042", "BL-2026-107"},
		{"BL-2026-107", "BL-2026-042", "BL-2026-011"},
		{"BL-2026-042", "BL-2026-011", "BL-2026-107"},
	}
	for _, input := range permutations {
		if got := orderedLineCodes(input); !reflect.DeepEqual(got, want) {
			t.Errorf("orderedLineCodes(%v) = %v, want %v", input, got, want)
		}
	}
}

func TestOrderedLineCodesDoesNotMutateInput(t *testing.T) {
	input := []string{"B", "A"}
	_ = orderedLineCodes(input)
	if input[0] != "B" || input[1] != "A" {
		t.Errorf("input was reordered in place: %v", input)
	}
}

func TestHeldLocksReleaseIsIdempotent(t *testing.T) {
	// Release is deferred past Commit/Rollback at every call site; it must
	// tolerate a nil receiver and repeated calls
	var none *HeldLocks
	none.Release(context.Background())

	empty := &HeldLocks{}
	empty.Release(context.Background())
	empty.Release(context.Background())
}
