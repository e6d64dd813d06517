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

// DirectorsRepository provides read access to directors.
type DirectorsRepository struct {
	pool *pgxpool.Pool
}

var directorSelect = psql.Select("id", "name").From("director")

// List returns every director ordered by id.
func (r *DirectorsRepository) List(ctx context.Context) ([]domain.Director, error) {
	query, args, err := directorSelect.OrderBy("id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build director list query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.Director, 0)
	for rows.Next() {
		var director domain.Director
		if err := rows.Scan(&director.ID, &director.Name); err != nil {
			return nil, err
		}
		items = append(items, director)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// GetByID fetches a director by its identifier.
func (r *DirectorsRepository) GetByID(ctx context.Context, id int64) (domain.Director, error) {
	query, args, err := directorSelect.Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return domain.Director{}, fmt.Errorf("build director query: %w", err)
	}

	var director domain.Director
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&director.ID, &director.Name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Director{}, ErrNotFound
		}
		return domain.Director{}, err
	}
	return director, nil
}
