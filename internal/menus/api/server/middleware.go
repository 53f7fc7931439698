package server

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/SoundFoodPhygital/menu-server-demo/internal/menus/domain/models"
	"github.com/SoundFoodPhygital/menu-server-demo/pkg/logger"
	"github.com/go-chi/chi/v5/middleware"
)

type ctxKey int

const (
	identityKey ctxKey = iota
	requestInfoKey
)

// requestInfo is filled by inner middlewares and read by the request log
// once the handler returned.
type requestInfo struct {
	userID *int64
}

func loggingMiddleware(logg logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			var body bytes.Buffer
			ww.Tee(&body)

			defer func() {
				latency := time.Since(start).String()

				logg.Infof("METHOD %s %s URI %s STATUS %d Latency %s Client IP %s User Agent %s Request ID %s",
					r.Method,
					r.Proto,
					r.URL.RequestURI(),
					statusCode(ww),
					latency,
					r.RemoteAddr,
					r.UserAgent(),
					middleware.GetReqID(r.Context()),
				)

				if statusCode(ww) >= 400 && body.Len() != 0 {
					logg.Errorf("error: %s", body.String())
				}
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

// requestLogMiddleware appends one row per request to the request log.
func (s *Server) requestLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		info := &requestInfo{}
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r.WithContext(context.WithValue(r.Context(), requestInfoKey, info)))

		s.admin.LogRequest(context.WithoutCancel(r.Context()), models.RequestLog{ //nolint:exhaustruct
			Method:     r.Method,
			Endpoint:   r.URL.Path,
			StatusCode: statusCode(ww),
			UserID:     info.userID,
		})
	})
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")

	token, ok := strings.CutPrefix(h, "Bearer ")
	if !ok {
		return ""
	}

	return strings.TrimSpace(token)
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			handleError(w, errNoToken, http.StatusUnauthorized)

			return
		}

		id, err := s.auth.Resolve(r.Context(), token)
		if err != nil {
			s.writeError(w, r, err)

			return
		}

		if info, ok := r.Context().Value(requestInfoKey).(*requestInfo); ok {
			uid := id.UserID
			info.userID = &uid
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), identityKey, id)))
	})
}

// rbacMiddleware must run after authMiddleware.
func (s *Server) rbacMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := identity(r)

		ok, err := s.rbac.Allowed(id.Role.String(), r.URL.Path, r.Method)
		if err != nil {
			s.writeError(w, r, err)

			return
		}

		if !ok {
			handleError(w, errForbidden, http.StatusForbidden)

			return
		}

		next.ServeHTTP(w, r)
	})
}

func identity(r *http.Request) models.Identity {
	id, _ := r.Context().Value(identityKey).(models.Identity)

	return id
}

func statusCode(ww middleware.WrapResponseWriter) int {
	if code := ww.Status(); code != 0 {
		return code
	}

	return http.StatusOK
}
