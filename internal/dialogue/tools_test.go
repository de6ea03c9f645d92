package dialogue

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTruncateCountsRunes(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"short ascii untouched", "hello", 10, "hello"},
		{"ascii cut", "abcdef", 3, "abc"},
		{"trims whitespace first", "  hai  ", 10, "hai"},
		{"multi-byte runes stay intact", strings.Repeat("é", 5), 3, "ééé"},
		{"exact length untouched", strings.Repeat("膀", 4), 4, strings.Repeat("膀", 4)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.in, tt.max)
			if got != tt.want {
				t.Fatalf("truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Fatalf("truncate produced invalid utf-8: %q", got)
			}
		})
	}
}
