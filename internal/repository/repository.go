package repository

import (
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Clark-Hu/movie-catalog/internal/store"
)

// ErrNotFound indicates the requested entity does not exist.
var ErrNotFound = errors.New("repository: not found")

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Repository aggregates all catalog repositories.
type Repository struct {
	Movies    *MoviesRepository
	Directors *DirectorsRepository
	Genres    *GenresRepository

	pool *pgxpool.Pool
}

// New constructs a Repository backed by the provided store.
func New(st *store.Store) *Repository {
	return NewWithPool(st.Pool())
}

// NewWithPool allows constructing repositories directly from a pgx pool.
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{
		Movies:    &MoviesRepository{pool: pool},
		Directors: &DirectorsRepository{pool: pool},
		Genres:    &GenresRepository{pool: pool},
		pool:      pool,
	}
}
