package exercise

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTruncateDescription(t *testing.T) {
	short := "Sit back onto the box."
	if got := truncateDescription(short); got != short {
		t.Errorf("truncateDescription(short) = %q, want unchanged", got)
	}

	// A two-byte rune straddling the limit must be dropped entirely rather
	// than cut in half.
	straddling := strings.Repeat("a", maxDescriptionLen-1) + "über"
	got := truncateDescription(straddling)
	if len(got) > maxDescriptionLen {
		t.Errorf("len = %d, want at most %d", len(got), maxDescriptionLen)
	}
	if !utf8.ValidString(got) {
		t.Errorf("truncated description is not valid UTF-8: %q", got[len(got)-4:])
	}
	if want := strings.Repeat("a", maxDescriptionLen-1); got != want {
		t.Errorf("truncateDescription() kept %d bytes, want the rune boundary at %d", len(got), len(want))
	}
}
