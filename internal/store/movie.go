package store

import (
	"database/sql"
	"fmt"

	"github.com/pfrost/cinelog/internal/model"
)

type MovieStore struct {
	db *sql.DB
}

func NewMovieStore(db *sql.DB) *MovieStore {
	return &MovieStore{db: db}
}

func scanMovie(scanner interface{ Scan(...any) error }) (*model.Movie, error) {
	var m model.Movie
	var review sql.NullString
	var rating sql.NullFloat64

	err := scanner.Scan(&m.ID, &m.UserID, &m.Title, &m.PosterPath, &review, &rating, &m.CreatedAt)
	if err != nil {
		return nil, err
	}

	if review.Valid {
		m.Review = &review.String
	}
	if rating.Valid {
		m.Rating = &rating.Float64
	}
	return &m, nil
}

const movieCols = `id, user_id, title, poster_path, review, rating, created_at`

// ListForUser returns the user's saved movies in insertion order.
func (s *MovieStore) ListForUser(userID int64) ([]model.Movie, error) {
	rows, err := s.db.Query(
		`SELECT `+movieCols+` FROM movies WHERE user_id = ? ORDER BY id ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list movies: %w", err)
	}
	defer rows.Close()

	var movies []model.Movie
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movie: %w", err)
		}
		movies = append(movies, *m)
	}
	return movies, rows.Err()
}

// Add saves a movie for the user with no review or rating yet. Returns
// ErrDuplicateTitle when the user already saved this title.
func (s *MovieStore) Add(userID int64, title, posterPath string) (*model.Movie, error) {
	result, err := s.db.Exec(
		`INSERT INTO movies (user_id, title, poster_path) VALUES (?, ?, ?)`,
		userID, title, posterPath,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateTitle
		}
		return nil, fmt.Errorf("insert movie: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	row := s.db.QueryRow(`SELECT `+movieCols+` FROM movies WHERE id = ?`, id)
	return scanMovie(row)
}

// SetReview updates the review and rating on the user's saved title. A nil
// rating clears the column; an out-of-range rating fails with
// ErrInvalidRating before anything is written. Returns ErrMovieNotFound when
// the user has no row for the title.
func (s *MovieStore) SetReview(userID int64, title, review string, rating *float64) error {
	if rating != nil && (*rating < 0 || *rating > 10) {
		return ErrInvalidRating
	}

	var rev sql.NullString
	if review != "" {
		rev = sql.NullString{String: review, Valid: true}
	}
	var rat sql.NullFloat64
	if rating != nil {
		rat = sql.NullFloat64{Float64: *rating, Valid: true}
	}

	result, err := s.db.Exec(
		`UPDATE movies SET review = ?, rating = ? WHERE user_id = ? AND title = ?`,
		rev, rat, userID, title,
	)
	if err != nil {
		return fmt.Errorf("update review: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrMovieNotFound
	}
	return nil
}

// GetByTitle returns the user's saved movie with the exact title, or nil.
func (s *MovieStore) GetByTitle(userID int64, title string) (*model.Movie, error) {
	row := s.db.QueryRow(
		`SELECT `+movieCols+` FROM movies WHERE user_id = ? AND title = ?`,
		userID, title,
	)
	m, err := scanMovie(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get movie by title: %w", err)
	}
	return m, nil
}

// DeleteByTitle removes the user's saved title. Deleting a title the user
// never saved is not an error.
func (s *MovieStore) DeleteByTitle(userID int64, title string) error {
	_, err := s.db.Exec(`DELETE FROM movies WHERE user_id = ? AND title = ?`, userID, title)
	if err != nil {
		return fmt.Errorf("delete movie: %w", err)
	}
	return nil
}
