package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5"
)

// Catalog is the administrative fixture document loaded by Seed.
type Catalog struct {
	Directors []DirectorRecord `json:"directors" validate:"unique=ID,dive"`
	Genres    []GenreRecord    `json:"genres" validate:"unique=ID,dive"`
	Movies    []MovieRecord    `json:"movies" validate:"unique=ID,dive"`
}

// DirectorRecord is a director row in a Catalog.
type DirectorRecord struct {
	ID   int64  `json:"id" validate:"gt=0"`
	Name string `json:"name" validate:"required,max=255"`
}

// GenreRecord is a genre row in a Catalog.
type GenreRecord struct {
	ID   int64  `json:"id" validate:"gt=0"`
	Name string `json:"name" validate:"required,max=255"`
}

// MovieRecord is a movie row in a Catalog. Director and genre references are
// checked by the database, so they may point at rows outside the document.
type MovieRecord struct {
	ID          int64   `json:"id" validate:"gt=0"`
	Title       string  `json:"title" validate:"required,max=255"`
	Description string  `json:"description" validate:"max=255"`
	Trailer     string  `json:"trailer" validate:"omitempty,url,max=255"`
	Year        int     `json:"year" validate:"gte=0"`
	Rating      float64 `json:"rating" validate:"gte=0,lte=10"`
	DirectorID  *int64  `json:"director_id" validate:"omitempty,gt=0"`
	GenreID     *int64  `json:"genre_id" validate:"omitempty,gt=0"`
}

var catalogValidator = validator.New()

// DecodeCatalog parses a JSON catalog document, rejecting unknown fields.
func DecodeCatalog(r io.Reader) (Catalog, error) {
	var catalog Catalog
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&catalog); err != nil {
		return Catalog{}, fmt.Errorf("decode catalog: %w", err)
	}
	return catalog, nil
}

// Validate reports the first structural problem in the catalog.
func (c Catalog) Validate() error {
	if err := catalogValidator.Struct(c); err != nil {
		return fmt.Errorf("invalid catalog: %w", err)
	}
	return nil
}

// Seed upserts every record of the catalog in a single transaction and moves
// the identity sequences past the highest stored id.
func (r *Repository) Seed(ctx context.Context, catalog Catalog) error {
	if err := catalog.Validate(); err != nil {
		return err
	}

	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, d := range catalog.Directors {
			batch.Queue(`
                INSERT INTO director (id, name) VALUES ($1, $2)
                ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name
            `, d.ID, d.Name)
		}
		for _, g := range catalog.Genres {
			batch.Queue(`
                INSERT INTO genre (id, name) VALUES ($1, $2)
                ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name
            `, g.ID, g.Name)
		}
		for _, m := range catalog.Movies {
			batch.Queue(`
                INSERT INTO movie (id, title, description, trailer, year, rating, director_id, genre_id)
                VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
                ON CONFLICT (id) DO UPDATE
                SET title = EXCLUDED.title,
                    description = EXCLUDED.description,
                    trailer = EXCLUDED.trailer,
                    year = EXCLUDED.year,
                    rating = EXCLUDED.rating,
                    director_id = EXCLUDED.director_id,
                    genre_id = EXCLUDED.genre_id
            `, m.ID, m.Title, m.Description, m.Trailer, m.Year, m.Rating, m.DirectorID, m.GenreID)
		}
		for _, table := range []string{"director", "genre", "movie"} {
			batch.Queue(fmt.Sprintf(
				`SELECT setval(pg_get_serial_sequence('%[1]s', 'id'), COALESCE(MAX(id), 0) + 1, false) FROM %[1]s`,
				table,
			))
		}

		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("seed catalog: %w", err)
		}
		return nil
	})
}
