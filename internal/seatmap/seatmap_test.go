package seatmap

import "testing"

func TestAllSeatsAreValidAndUnique(t *testing.T) {
	seen := make(map[string]int)
	for _, code := range All() {
		seen[code]++
		if !IsValid(code) {
			t.Errorf("seat %q from All() is not valid", code)
		}
	}
	for code, n := range seen {
		if n != 1 {
			t.Errorf("seat %q appears %d times in All()", code, n)
		}
	}
	if got, want := Total(), len(Rows())*10; got != want {
		t.Errorf("Total() = %d, want %d", got, want)
	}
}

func TestIsValid(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"A1", true},
		{"D7", true},
		{"M10", true},
		{"Z99", false},
		{"A0", false},
		{"A11", false},
		{"d7", false}, // codes must already be upper-cased
		{"", false},
	}
	for _, tt := range tests {
		if got := IsValid(tt.code); got != tt.want {
			t.Errorf("IsValid(%q) = %v, want %v", tt.code, got, tt.want)
		}
	}
}
