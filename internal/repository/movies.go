package repository

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Clark-Hu/movie-catalog/internal/domain"
)

// MoviesRepository provides read access to movies together with their
// director and genre.
type MoviesRepository struct {
	pool *pgxpool.Pool
}

// MovieFilter narrows a movie listing. When both ids are set DirectorID wins
// and GenreID is ignored.
type MovieFilter struct {
	DirectorID *int64
	GenreID    *int64
}

var movieSelect = psql.
	Select(
		"m.id",
		"m.title",
		"m.description",
		"m.trailer",
		"m.year",
		"m.rating",
		"m.director_id",
		"m.genre_id",
		"d.id",
		"d.name",
		"g.id",
		"g.name",
	).
	From("movie m").
	LeftJoin("director d ON d.id = m.director_id").
	LeftJoin("genre g ON g.id = m.genre_id")

// List returns movies that match the provided filter, ordered by id.
func (r *MoviesRepository) List(ctx context.Context, filter MovieFilter) ([]domain.Movie, error) {
	builder := movieSelect
	switch {
	case filter.DirectorID != nil:
		builder = builder.Where(sq.Eq{"m.director_id": *filter.DirectorID})
	case filter.GenreID != nil:
		builder = builder.Where(sq.Eq{"m.genre_id": *filter.GenreID})
	}

	query, args, err := builder.OrderBy("m.id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build movie list query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.Movie, 0)
	for rows.Next() {
		movie, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, movie)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// GetByID fetches a movie by its identifier.
func (r *MoviesRepository) GetByID(ctx context.Context, id int64) (domain.Movie, error) {
	query, args, err := movieSelect.Where(sq.Eq{"m.id": id}).ToSql()
	if err != nil {
		return domain.Movie{}, fmt.Errorf("build movie query: %w", err)
	}

	movie, err := scanMovie(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Movie{}, ErrNotFound
		}
		return domain.Movie{}, err
	}
	return movie, nil
}

func scanMovie(row pgx.Row) (domain.Movie, error) {
	var (
		movie        domain.Movie
		directorID   *int64
		directorName *string
		genreID      *int64
		genreName    *string
	)

	err := row.Scan(
		&movie.ID,
		&movie.Title,
		&movie.Description,
		&movie.Trailer,
		&movie.Year,
		&movie.Rating,
		&movie.DirectorID,
		&movie.GenreID,
		&directorID,
		&directorName,
		&genreID,
		&genreName,
	)
	if err != nil {
		return domain.Movie{}, err
	}

	// The joined ids are NULL when the foreign key is unset.
	if directorID != nil {
		movie.Director = &domain.Director{ID: *directorID, Name: derefString(directorName)}
	}
	if genreID != nil {
		movie.Genre = &domain.Genre{ID: *genreID, Name: derefString(genreName)}
	}
	return movie, nil
}

func derefString(ptr *string) string {
	if ptr == nil {
		return ""
	}
	return *ptr
}
