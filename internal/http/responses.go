package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/Clark-Hu/movie-catalog/internal/domain"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type directorResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type genreResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type movieResponse struct {
	ID          int64             `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Trailer     string            `json:"trailer"`
	Year        int               `json:"year"`
	Rating      float64           `json:"rating"`
	Genre       *genreResponse    `json:"genre"`
	Director    *directorResponse `json:"director"`
}

func toDirectorResponse(director domain.Director) directorResponse {
	return directorResponse{ID: director.ID, Name: director.Name}
}

func toGenreResponse(genre domain.Genre) genreResponse {
	return genreResponse{ID: genre.ID, Name: genre.Name}
}

func toMovieResponse(movie domain.Movie) movieResponse {
	resp := movieResponse{
		ID:          movie.ID,
		Title:       movie.Title,
		Description: movie.Description,
		Trailer:     movie.Trailer,
		Year:        movie.Year,
		Rating:      movie.Rating,
	}
	if movie.Genre != nil {
		genre := toGenreResponse(*movie.Genre)
		resp.Genre = &genre
	}
	if movie.Director != nil {
		director := toDirectorResponse(*movie.Director)
		resp.Director = &director
	}
	return resp
}

func toMovieResponses(movies []domain.Movie) []movieResponse {
	items := make([]movieResponse, 0, len(movies))
	for _, movie := range movies {
		items = append(items, toMovieResponse(movie))
	}
	return items
}

func toDirectorResponses(directors []domain.Director) []directorResponse {
	items := make([]directorResponse, 0, len(directors))
	for _, director := range directors {
		items = append(items, toDirectorResponse(director))
	}
	return items
}

func toGenreResponses(genres []domain.Genre) []genreResponse {
	items := make([]genreResponse, 0, len(genres))
	for _, genre := range genres {
		items = append(items, toGenreResponse(genre))
	}
	return items
}

// respondJSON encodes payload before touching w so an encoding failure can
// still be reported as a 500.
func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	body, err := encodeJSON(payload, s.cfg.JSONEnsureASCII)
	if err != nil {
		s.logger.Printf("failed to encode response: %v", err)
		status = http.StatusInternalServerError
		body, _ = encodeJSON(errorResponse{Code: "INTERNAL_ERROR", Message: "Failed to encode response"}, false)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		s.logger.Printf("failed to write response: %v", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, code, message string) {
	s.respondJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

func (s *Server) respondNotFound(w http.ResponseWriter) {
	s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
}

// encodeJSON writes non-ASCII text literally unless ensureASCII is set. HTML
// characters are never escaped.
func encodeJSON(payload interface{}, ensureASCII bool) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(payload); err != nil {
		return nil, err
	}
	if ensureASCII {
		return escapeNonASCII(buf.Bytes()), nil
	}
	return unescapeLineSeparators(buf.Bytes()), nil
}

// unescapeLineSeparators undoes encoding/json's unconditional escaping of
// U+2028 and U+2029 so they are written literally like other non-ASCII text.
func unescapeLineSeparators(src []byte) []byte {
	if !bytes.Contains(src, []byte(`\u202`)) {
		return src
	}
	out := make([]byte, 0, len(src))
	for i := 0; i < len(src); i++ {
		if src[i] != '\\' || i+1 >= len(src) {
			out = append(out, src[i])
			continue
		}
		if rest := src[i:]; bytes.HasPrefix(rest, []byte(`\u2028`)) || bytes.HasPrefix(rest, []byte(`\u2029`)) {
			r := '\u2028'
			if rest[5] == '9' {
				r = '\u2029'
			}
			out = utf8.AppendRune(out, r)
			i += 5
			continue
		}
		// Copy any other escape pair whole so an escaped backslash is not
		// mistaken for the start of a sequence.
		out = append(out, src[i], src[i+1])
		i++
	}
	return out
}

// escapeNonASCII rewrites every non-ASCII rune of an encoded JSON document as
// a \uXXXX escape, using surrogate pairs above the BMP. Non-ASCII bytes only
// occur inside string literals, so the result is equivalent JSON.
func escapeNonASCII(src []byte) []byte {
	out := make([]byte, 0, len(src))
	for i := 0; i < len(src); {
		c := src[i]
		if c < utf8.RuneSelf {
			out = append(out, c)
			i++
			continue
		}
		r, size := utf8.DecodeRune(src[i:])
		i += size
		if r1, r2 := utf16.EncodeRune(r); r1 != utf8.RuneError {
			out = appendUnicodeEscape(out, r1)
			out = appendUnicodeEscape(out, r2)
			continue
		}
		out = appendUnicodeEscape(out, r)
	}
	return out
}

func appendUnicodeEscape(dst []byte, r rune) []byte {
	const hex = "0123456789abcdef"
	return append(dst, '\\', 'u', hex[r>>12&0xf], hex[r>>8&0xf], hex[r>>4&0xf], hex[r&0xf])
}
