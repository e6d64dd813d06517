package domain

// Director is a person credited with directing zero or more movies.
type Director struct {
	ID   int64
	Name string
}

// Genre classifies movies.
type Genre struct {
	ID   int64
	Name string
}

// Movie represents the canonical movie entity in the database/service.
// Director and Genre are loaded alongside the movie when the matching
// foreign key is set and are nil otherwise.
type Movie struct {
	ID          int64
	Title       string
	Description string
	Trailer     string
	Year        int
	Rating      float64
	DirectorID  *int64
	GenreID     *int64
	Director    *Director
	Genre       *Genre
}
