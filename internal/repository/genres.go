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

// GenresRepository provides read access to genres.
type GenresRepository struct {
	pool *pgxpool.Pool
}

var genreSelect = psql.Select("id", "name").From("genre")

// List returns every genre ordered by id.
func (r *GenresRepository) List(ctx context.Context) ([]domain.Genre, error) {
	query, args, err := genreSelect.OrderBy("id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build genre list query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.Genre, 0)
	for rows.Next() {
		var genre domain.Genre
		if err := rows.Scan(&genre.ID, &genre.Name); err != nil {
			return nil, err
		}
		items = append(items, genre)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// GetByID fetches a genre by its identifier.
func (r *GenresRepository) GetByID(ctx context.Context, id int64) (domain.Genre, error) {
	query, args, err := genreSelect.Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return domain.Genre{}, fmt.Errorf("build genre query: %w", err)
	}

	var genre domain.Genre
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&genre.ID, &genre.Name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Genre{}, ErrNotFound
		}
		return domain.Genre{}, err
	}
	return genre, nil
}
