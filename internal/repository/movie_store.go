package repository

import (
	"context"
	"database/sql"

	"github.com/cinegate/cinema-booking/internal/model"
)

// ListMovies returns every movie in the catalog ordered by title. The
// catalog is owned by an external process; this store never writes it.
func (s *MySQLStore) ListMovies(ctx context.Context) ([]model.Movie, error) {
	const q = `SELECT id, title, genre, description, duration_min
			   FROM movies ORDER BY title, id`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var movies []model.Movie
	for rows.Next() {
		var m model.Movie
		if err := rows.Scan(&m.ID, &m.Title, &m.Genre, &m.Description, &m.DurationMin); err != nil {
			return nil, err
		}
		movies = append(movies, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return movies, nil
}

// GetMovie returns a single movie by ID, or a NotFound conflict.
func (s *MySQLStore) GetMovie(ctx context.Context, id uint64) (model.Movie, error) {
	const q = `SELECT id, title, genre, description, duration_min FROM movies WHERE id = ?`
	var m model.Movie
	err := s.db.QueryRowContext(ctx, q, id).Scan(&m.ID, &m.Title, &m.Genre, &m.Description, &m.DurationMin)
	if err == sql.ErrNoRows {
		return model.Movie{}, NewConflict(NotFound, "movie %d not found", id)
	}
	if err != nil {
		return model.Movie{}, err
	}
	return m, nil
}
