package model

import "time"

// Movie represents a film that can be booked through the assistant.
// Each movie is assigned to exactly one studio, and the studio number
// is unique across the catalogue.  Movies are seeded once at startup
// and never modified afterwards.
//
// Fields:
//  ID           – primary key identifier.
//  Title        – display title of the movie.
//  Description  – short synopsis shown when listing candidates.
//  StudioNumber – unique studio assignment.
//  ReleaseDate  – original theatrical release date.
type Movie struct {
	ID           int64     // movies.id
	Title        string    // movies.title
	Description  string    // movies.description
	StudioNumber int       // movies.studio_number
	ReleaseDate  time.Time // movies.release_date
	Genres       []string  // joined from genres via movie_genres
}
