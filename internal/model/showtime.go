package model

import "time"

// Showtime is a scheduled screening of a movie.  Three slots are
// generated per movie at seed time and the rows are immutable
// afterwards.
//
// Fields:
//  ID      – primary key identifier.
//  MovieID – movie being screened.
//  Time    – local start time of the screening.
type Showtime struct {
	ID      int64     // showtimes.id
	MovieID int64     // showtimes.movie_id
	Time    time.Time // showtimes.time
}

// showtimeDisplayLayout matches the label format users see when picking a
// slot, e.g. "Friday, 29 August 2026 21:30".
const showtimeDisplayLayout = "Monday, 02 January 2006 15:04"

// Display renders the showtime in the human-readable form used in
// assistant messages and confirmation summaries.
func (s Showtime) Display() string {
	return s.Time.Format(showtimeDisplayLayout)
}
