package server

import (
	"errors"
	"net/http"

	"github.com/SoundFoodPhygital/menu-server-demo/internal/menus/domain/models"
	"github.com/goccy/go-json"
)

var (
	errInternal   = errors.New("internal server error")
	errBadJSON    = models.NewError(models.ErrBadRequest, "invalid JSON body")
	errBadID      = models.NewError(models.ErrBadRequest, "invalid id")
	errNoToken    = models.NewError(models.ErrUnauthorized, "missing token")
	errForbidden  = models.NewError(models.ErrForbidden, "access denied")
	errTooMany    = errors.New("too many requests")
	errNotAllowed = errors.New("method not allowed")
	errNoRoute    = errors.New("not found")
)

type Error struct {
	Err string `json:"error"`
}

func (se Error) ToJSON() []byte {
	b, err := json.Marshal(se)
	if err != nil {
		return []byte(`{"error": "marshal error"}`)
	}

	return b
}

func handleError(w http.ResponseWriter, err error, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	e := Error{err.Error()}

	w.Write(e.ToJSON()) //nolint:errcheck
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, models.ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, models.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError hides everything that isn't a classified error behind a
// generic message. The details go to the log.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusOf(err)
	if code == http.StatusInternalServerError {
		s.lg.Errorf("%s %s: %s", r.Method, r.URL.Path, err.Error())
		handleError(w, errInternal, code)

		return
	}

	handleError(w, err, code)
}

// TooManyRequests is the rate limiter's reject handler.
func TooManyRequests(w http.ResponseWriter, _ *http.Request) {
	handleError(w, errTooMany, http.StatusTooManyRequests)
}

func errBadQuery(name string) error {
	return models.NewError(models.ErrBadRequest, "invalid "+name)
}
