package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Clark-Hu/movie-catalog/internal/repository"
)

// errUnmatchableFilter marks a filter value that can never equal a stored id.
var errUnmatchableFilter = errors.New("filter value is not an integer")

func (s *Server) handleListMovies(w http.ResponseWriter, r *http.Request) {
	filter, err := buildMovieFilter(r.URL.Query())
	if err != nil {
		s.respondJSON(w, http.StatusOK, []movieResponse{})
		return
	}

	movies, err := s.movies.List(r.Context(), filter)
	if err != nil {
		s.logger.Printf("list movies error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list movies")
		return
	}
	s.respondJSON(w, http.StatusOK, toMovieResponses(movies))
}

// buildMovieFilter picks the governing filter: director_id when it is
// non-empty, otherwise genre_id. Only the empty string counts as absent.
func buildMovieFilter(query url.Values) (repository.MovieFilter, error) {
	var filter repository.MovieFilter

	if raw := query.Get("director_id"); raw != "" {
		id, err := parseFilterID("director_id", raw)
		if err != nil {
			return filter, err
		}
		filter.DirectorID = &id
		return filter, nil
	}
	if raw := query.Get("genre_id"); raw != "" {
		id, err := parseFilterID("genre_id", raw)
		if err != nil {
			return filter, err
		}
		filter.GenreID = &id
	}
	return filter, nil
}

// parseFilterID tolerates surrounding whitespace, so a whitespace-only value
// is present but unmatchable.
func parseFilterID(name, raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s %q: %w", name, raw, errUnmatchableFilter)
	}
	return id, nil
}

func (s *Server) handleGetMovie(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r)
	if !ok {
		s.respondNotFound(w)
		return
	}

	movie, err := s.movies.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondNotFound(w)
			return
		}
		s.logger.Printf("get movie %d error: %v", id, err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch movie")
		return
	}
	s.respondJSON(w, http.StatusOK, toMovieResponse(movie))
}

// parseIDParam reads the {id} segment. Values that overflow int64 or are zero
// cannot name a record, so they report false.
func parseIDParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
