package httpserver

import (
	"errors"
	"net/http"

	"github.com/Clark-Hu/movie-catalog/internal/repository"
)

func (s *Server) handleListDirectors(w http.ResponseWriter, r *http.Request) {
	directors, err := s.directors.List(r.Context())
	if err != nil {
		s.logger.Printf("list directors error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list directors")
		return
	}
	s.respondJSON(w, http.StatusOK, toDirectorResponses(directors))
}

func (s *Server) handleGetDirector(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r)
	if !ok {
		s.respondNotFound(w)
		return
	}

	director, err := s.directors.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondNotFound(w)
			return
		}
		s.logger.Printf("get director %d error: %v", id, err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch director")
		return
	}
	s.respondJSON(w, http.StatusOK, toDirectorResponse(director))
}

func (s *Server) handleListGenres(w http.ResponseWriter, r *http.Request) {
	genres, err := s.genres.List(r.Context())
	if err != nil {
		s.logger.Printf("list genres error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list genres")
		return
	}
	s.respondJSON(w, http.StatusOK, toGenreResponses(genres))
}

func (s *Server) handleGetGenre(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r)
	if !ok {
		s.respondNotFound(w)
		return
	}

	genre, err := s.genres.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondNotFound(w)
			return
		}
		s.logger.Printf("get genre %d error: %v", id, err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch genre")
		return
	}
	s.respondJSON(w, http.StatusOK, toGenreResponse(genre))
}
