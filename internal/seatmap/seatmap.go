// Package seatmap holds the static seating layout of the single studio
// hall used by the assistant.  The layout is pure data: rows A through M
// with ten seats each, giving codes like "A1" or "M10".  Seat validity
// is always checked against this map before any repository call.
package seatmap

import "fmt"

// rowLabels enumerates the rows in physical order, front to back.
const rowLabels = "ABCDEFGHIJKLM"

// seatsPerRow is the number of seats in every row.
const seatsPerRow = 10

var (
	all   []string
	valid map[string]struct{}
)

func init() {
	all = make([]string, 0, len(rowLabels)*seatsPerRow)
	valid = make(map[string]struct{}, len(rowLabels)*seatsPerRow)
	for _, row := range rowLabels {
		for n := 1; n <= seatsPerRow; n++ {
			code := fmt.Sprintf("%c%d", row, n)
			all = append(all, code)
			valid[code] = struct{}{}
		}
	}
}

// All returns every seat code in layout order (row A first, seat 1
// first within a row).  Callers must not mutate the returned slice.
func All() []string { return all }

// IsValid reports whether the given code names a seat that exists in
// the layout.  Codes are expected to be upper-cased already.
func IsValid(code string) bool {
	_, ok := valid[code]
	return ok
}

// Rows returns the row labels in layout order.
func Rows() string { return rowLabels }

// Total returns the number of seats in the layout.
func Total() int { return len(all) }
