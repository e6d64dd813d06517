package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Clark-Hu/movie-catalog/internal/config"
	"github.com/Clark-Hu/movie-catalog/internal/domain"
	"github.com/Clark-Hu/movie-catalog/internal/repository"
)

type fakeMovies struct {
	movies    []domain.Movie
	err       error
	gotFilter *repository.MovieFilter
	calls     int
}

func (f *fakeMovies) List(_ context.Context, filter repository.MovieFilter) ([]domain.Movie, error) {
	f.calls++
	f.gotFilter = &filter
	if f.err != nil {
		return nil, f.err
	}
	return f.movies, nil
}

func (f *fakeMovies) GetByID(_ context.Context, id int64) (domain.Movie, error) {
	f.calls++
	if f.err != nil {
		return domain.Movie{}, f.err
	}
	for _, m := range f.movies {
		if m.ID == id {
			return m, nil
		}
	}
	return domain.Movie{}, repository.ErrNotFound
}

type fakeDirectors struct {
	directors []domain.Director
	err       error
}

func (f *fakeDirectors) List(context.Context) ([]domain.Director, error) {
	return f.directors, f.err
}

func (f *fakeDirectors) GetByID(_ context.Context, id int64) (domain.Director, error) {
	if f.err != nil {
		return domain.Director{}, f.err
	}
	for _, d := range f.directors {
		if d.ID == id {
			return d, nil
		}
	}
	return domain.Director{}, repository.ErrNotFound
}

type fakeGenres struct {
	genres []domain.Genre
	err    error
}

func (f *fakeGenres) List(context.Context) ([]domain.Genre, error) {
	return f.genres, f.err
}

func (f *fakeGenres) GetByID(_ context.Context, id int64) (domain.Genre, error) {
	if f.err != nil {
		return domain.Genre{}, f.err
	}
	for _, g := range f.genres {
		if g.ID == id {
			return g, nil
		}
	}
	return domain.Genre{}, repository.ErrNotFound
}

type fakeHealth struct{ err error }

func (f fakeHealth) HealthCheck(context.Context) error { return f.err }
func (f fakeHealth) Stats() *pgxpool.Stat              { return nil }

func int64Ptr(v int64) *int64 { return &v }

var (
	nolan  = domain.Director{ID: 1, Name: "Nolan"}
	scifi  = domain.Genre{ID: 2, Name: "Sci-Fi"}
	amelie = domain.Movie{ID: 14, Title: "Amélie", Description: "Paris 🎬", Year: 2001, Rating: 8.3}
)

func inception() domain.Movie {
	return domain.Movie{
		ID:          10,
		Title:       "Inception",
		Description: "Dreams within dreams",
		Trailer:     "https://example.com/inception?a=1&b=2",
		Year:        2010,
		Rating:      8.8,
		DirectorID:  int64Ptr(1),
		GenreID:     int64Ptr(2),
		Director:    &nolan,
		Genre:       &scifi,
	}
}

func newFakeServer(cfg config.Config, movies *fakeMovies) *Server {
	return newServer(cfg, chi.NewRouter(), fakeHealth{}, movies,
		&fakeDirectors{directors: []domain.Director{nolan}},
		&fakeGenres{genres: []domain.Genre{scifi}},
		log.New(io.Discard, "", 0))
}

func doRequest(t *testing.T, srv http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestBuildMovieFilter(t *testing.T) {
	tests := []struct {
		name         string
		query        string
		wantDirector *int64
		wantGenre    *int64
		wantErr      bool
	}{
		{name: "no filter", query: ""},
		{name: "director", query: "director_id=1", wantDirector: int64Ptr(1)},
		{name: "genre", query: "genre_id=2", wantGenre: int64Ptr(2)},
		{name: "director wins", query: "genre_id=2&director_id=1", wantDirector: int64Ptr(1)},
		{name: "empty director falls back to genre", query: "director_id=&genre_id=2", wantGenre: int64Ptr(2)},
		{name: "whitespace is trimmed", query: "director_id=%2007%20", wantDirector: int64Ptr(7)},
		{name: "non-numeric director", query: "director_id=abc&genre_id=2", wantErr: true},
		{name: "whitespace-only director still governs", query: "director_id=%20&genre_id=2", wantErr: true},
		{name: "whitespace-only genre", query: "genre_id=%20%20", wantErr: true},
		{name: "non-numeric genre", query: "genre_id=x", wantErr: true},
		{name: "overflow", query: "director_id=99999999999999999999", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := url.ParseQuery(tt.query)
			require.NoError(t, err)

			filter, err := buildMovieFilter(values)
			if tt.wantErr {
				assert.ErrorIs(t, err, errUnmatchableFilter)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantDirector, filter.DirectorID)
			assert.Equal(t, tt.wantGenre, filter.GenreID)
		})
	}
}

func TestToMovieResponse_NullRelations(t *testing.T) {
	body, err := encodeJSON(toMovieResponse(domain.Movie{ID: 5, Title: "Orphan"}), false)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":5,"title":"Orphan","description":"","trailer":"","year":0,"rating":0,"genre":null,"director":null}`, string(body))
}

func TestEncodeJSON_KeyOrderAndHTML(t *testing.T) {
	body, err := encodeJSON(toMovieResponse(inception()), false)
	require.NoError(t, err)
	assert.Equal(t,
		`{"id":10,"title":"Inception","description":"Dreams within dreams","trailer":"https://example.com/inception?a=1&b=2","year":2010,"rating":8.8,"genre":{"id":2,"name":"Sci-Fi"},"director":{"id":1,"name":"Nolan"}}`+"\n",
		string(body))
}

func TestEncodeJSON_EnsureASCII(t *testing.T) {
	literal, err := encodeJSON(toMovieResponse(amelie), false)
	require.NoError(t, err)
	assert.Contains(t, string(literal), `"title":"Amélie"`)
	assert.Contains(t, string(literal), `"description":"Paris 🎬"`)

	escaped, err := encodeJSON(toMovieResponse(amelie), true)
	require.NoError(t, err)
	assert.Contains(t, string(escaped), `"title":"Am\u00e9lie"`)
	assert.Contains(t, string(escaped), `"description":"Paris \ud83c\udfac"`)

	var a, b movieResponse
	require.NoError(t, json.Unmarshal(literal, &a))
	require.NoError(t, json.Unmarshal(escaped, &b))
	assert.Equal(t, a, b)
}

func TestEncodeJSON_LineSeparatorsLiteral(t *testing.T) {
	payload := map[string]string{"s": "a\u2028b\u2029c", "path": `C:\u2028`}

	literal, err := encodeJSON(payload, false)
	require.NoError(t, err)
	assert.Equal(t, "{\"path\":\"C:\\\\u2028\",\"s\":\"a\u2028b\u2029c\"}\n", string(literal))

	escaped, err := encodeJSON(payload, true)
	require.NoError(t, err)
	assert.Contains(t, string(escaped), `"s":"a\u2028b\u2029c"`)

	var got map[string]string
	require.NoError(t, json.Unmarshal(literal, &got))
	assert.Equal(t, payload, got)
}

func TestEscapeNonASCII(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`"plain <&>"`, `"plain <&>"`},
		{"\"é\"", `"\u00e9"`},
		{"\"日本\"", `"\u65e5\u672c"`},
		{"\"𝄞\"", `"\ud834\udd1e"`},
		{"\"�\"", `"\ufffd"`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, string(escapeNonASCII([]byte(tt.in))), "input %q", tt.in)
	}
}

func TestHandleListMovies(t *testing.T) {
	movies := &fakeMovies{movies: []domain.Movie{inception(), amelie}}
	srv := newFakeServer(config.Config{}, movies)

	rec := doRequest(t, srv, "/movies/?genre_id=2&director_id=1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.NotNil(t, movies.gotFilter)
	assert.Equal(t, int64Ptr(1), movies.gotFilter.DirectorID)
	assert.Nil(t, movies.gotFilter.GenreID)

	var got []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, map[string]interface{}{"id": float64(1), "name": "Nolan"}, got[0]["director"])
	assert.Nil(t, got[1]["director"])
	assert.Nil(t, got[1]["genre"])
}

func TestHandleListMovies_NonNumericFilterIsEmpty(t *testing.T) {
	movies := &fakeMovies{movies: []domain.Movie{inception()}}
	srv := newFakeServer(config.Config{}, movies)

	rec := doRequest(t, srv, "/movies/?director_id=abc")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())
	assert.Zero(t, movies.calls, "store must not be queried")
}

func TestHandleListMovies_WhitespaceDirectorIsEmpty(t *testing.T) {
	movies := &fakeMovies{movies: []domain.Movie{inception()}}
	srv := newFakeServer(config.Config{}, movies)

	for _, target := range []string{"/movies/?director_id=%20", "/movies/?director_id=%20&genre_id=2"} {
		rec := doRequest(t, srv, target)
		require.Equal(t, http.StatusOK, rec.Code, target)
		assert.Equal(t, "[]\n", rec.Body.String(), target)
	}
	assert.Zero(t, movies.calls, "store must not be queried")
}

func TestHandleListMovies_EmptyResultIsArray(t *testing.T) {
	srv := newFakeServer(config.Config{}, &fakeMovies{})

	rec := doRequest(t, srv, "/movies/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())
}

func TestHandleListMovies_InternalError(t *testing.T) {
	srv := newFakeServer(config.Config{}, &fakeMovies{err: errors.New("connection reset")})

	rec := doRequest(t, srv, "/movies/")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"code":"INTERNAL_ERROR","message":"Failed to list movies"}`, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "connection reset")
}

func TestHandleGetMovie(t *testing.T) {
	srv := newFakeServer(config.Config{}, &fakeMovies{movies: []domain.Movie{inception()}})

	rec := doRequest(t, srv, "/movies/10")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"id": 10,
		"title": "Inception",
		"description": "Dreams within dreams",
		"trailer": "https://example.com/inception?a=1&b=2",
		"year": 2010,
		"rating": 8.8,
		"genre": {"id": 2, "name": "Sci-Fi"},
		"director": {"id": 1, "name": "Nolan"}
	}`, rec.Body.String())
}

func TestHandleGetMovie_NotFound(t *testing.T) {
	srv := newFakeServer(config.Config{}, &fakeMovies{movies: []domain.Movie{inception()}})

	for _, target := range []string{"/movies/99999", "/movies/0", "/movies/99999999999999999999", "/movies/abc", "/unknown"} {
		rec := doRequest(t, srv, target)
		assert.Equal(t, http.StatusNotFound, rec.Code, target)
		assert.JSONEq(t, `{"code":"NOT_FOUND","message":"Resource not found"}`, rec.Body.String(), target)
	}
}

func TestHandleGetMovie_InternalError(t *testing.T) {
	srv := newFakeServer(config.Config{}, &fakeMovies{err: errors.New("boom")})

	rec := doRequest(t, srv, "/movies/10")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHandleGetMovie_EnsureASCII(t *testing.T) {
	srv := newFakeServer(config.Config{JSONEnsureASCII: true}, &fakeMovies{movies: []domain.Movie{amelie}})

	rec := doRequest(t, srv, "/movies/14")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `Am\u00e9lie`)
	for _, b := range rec.Body.Bytes() {
		require.Less(t, b, byte(0x80), "body must be pure ASCII")
	}
}

func TestHandleDirectorsAndGenres(t *testing.T) {
	srv := newFakeServer(config.Config{}, &fakeMovies{})

	rec := doRequest(t, srv, "/directors/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"id":1,"name":"Nolan"}]`, rec.Body.String())

	rec = doRequest(t, srv, "/directors/1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":1,"name":"Nolan"}`, rec.Body.String())

	rec = doRequest(t, srv, "/directors/2")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, srv, "/genres/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"id":2,"name":"Sci-Fi"}]`, rec.Body.String())

	rec = doRequest(t, srv, "/genres/2")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":2,"name":"Sci-Fi"}`, rec.Body.String())

	rec = doRequest(t, srv, "/genres/1")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleDirectorsAndGenres_InternalError(t *testing.T) {
	boom := errors.New("boom")
	srv := newServer(config.Config{}, chi.NewRouter(), fakeHealth{}, &fakeMovies{},
		&fakeDirectors{err: boom}, &fakeGenres{err: boom}, log.New(io.Discard, "", 0))

	for _, target := range []string{"/directors/", "/directors/1", "/genres/", "/genres/1"} {
		rec := doRequest(t, srv, target)
		assert.Equal(t, http.StatusInternalServerError, rec.Code, target)
	}
}

func TestHandleHealthz(t *testing.T) {
	srv := newFakeServer(config.Config{}, &fakeMovies{})
	rec := doRequest(t, srv, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	down := newServer(config.Config{}, chi.NewRouter(), fakeHealth{err: errors.New("down")}, &fakeMovies{},
		&fakeDirectors{}, &fakeGenres{}, log.New(io.Discard, "", 0))
	rec = doRequest(t, down, "/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"code":"UNAVAILABLE","message":"Database unavailable"}`, rec.Body.String())
}
