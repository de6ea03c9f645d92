package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/cinema-ticket-assistant/internal/model"
)

// MovieRepo provides read access to the movie catalogue.  Movies are
// seeded once at startup and immutable afterwards, so the repository
// only ever queries.
type MovieRepo struct {
	db *sql.DB
}

// NewMovieRepo returns a new MovieRepo bound to the given database.
func NewMovieRepo(db *sql.DB) *MovieRepo { return &MovieRepo{db: db} }

// Search finds movies whose title contains the given fragment and/or
// that carry a genre whose name contains the genre fragment.  Both
// filters are case-insensitive substring matches; passing both empty
// strings returns the whole catalogue.  Results keep insertion order
// so ordinal replies ("pilih 2") stay stable across turns.
func (r *MovieRepo) Search(ctx context.Context, title, genre string) ([]model.Movie, error) {
	query := `SELECT DISTINCT m.id, m.title, m.description, m.studio_number, m.release_date
	          FROM movies m`
	var (
		conds []string
		args  []interface{}
	)
	if genre != "" {
		query += ` JOIN movie_genres mg ON mg.movie_id = m.id
		           JOIN genres g ON g.id = mg.genre_id`
		conds = append(conds, `LOWER(g.name) LIKE ?`)
		args = append(args, "%"+strings.ToLower(genre)+"%")
	}
	if title != "" {
		conds = append(conds, `LOWER(m.title) LIKE ?`)
		args = append(args, "%"+strings.ToLower(title)+"%")
	}
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, ` AND `)
	}
	query += ` ORDER BY m.id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	movies := make([]model.Movie, 0)
	for rows.Next() {
		var (
			m       model.Movie
			desc    sql.NullString
			release sql.NullString
		)
		if err := rows.Scan(&m.ID, &m.Title, &desc, &m.StudioNumber, &release); err != nil {
			return nil, err
		}
		m.Description = desc.String
		if release.Valid {
			if t, err2 := time.Parse("2006-01-02", release.String); err2 == nil {
				m.ReleaseDate = t
			}
		}
		movies = append(movies, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.loadGenres(ctx, movies); err != nil {
		return nil, err
	}
	return movies, nil
}

// loadGenres fills the Genres slice of each movie in place.
func (r *MovieRepo) loadGenres(ctx context.Context, movies []model.Movie) error {
	if len(movies) == 0 {
		return nil
	}
	byID := make(map[int64]*model.Movie, len(movies))
	placeholders := make([]string, 0, len(movies))
	args := make([]interface{}, 0, len(movies))
	for i := range movies {
		byID[movies[i].ID] = &movies[i]
		placeholders = append(placeholders, "?")
		args = append(args, movies[i].ID)
	}

	query := `SELECT mg.movie_id, g.name
	          FROM movie_genres mg
	          JOIN genres g ON g.id = mg.genre_id
	          WHERE mg.movie_id IN (` + strings.Join(placeholders, ", ") + `)
	          ORDER BY mg.movie_id, g.id`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			movieID int64
			name    string
		)
		if err := rows.Scan(&movieID, &name); err != nil {
			return err
		}
		if m, ok := byID[movieID]; ok {
			m.Genres = append(m.Genres, name)
		}
	}
	return rows.Err()
}

// TitleByID returns the title of the movie with the given id, or
// ErrMovieNotFound when no such movie exists.
func (r *MovieRepo) TitleByID(ctx context.Context, movieID int64) (string, error) {
	var title string
	err := r.db.QueryRowContext(ctx, `SELECT title FROM movies WHERE id = ?`, movieID).Scan(&title)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrMovieNotFound
	}
	if err != nil {
		return "", err
	}
	return title, nil
}
