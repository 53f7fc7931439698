package server

import (
	"net/http"

	"github.com/SoundFoodPhygital/menu-server-demo/internal/menus/services/authservice"
)

// Health pings the database
// (GET /api/health).
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(r.Context()); err != nil {
		s.lg.Warnf("health check: %s", err.Error())
		s.respond(w, r, http.StatusServiceUnavailable, HealthResponse{Status: "unhealthy", Database: "disconnected"})

		return
	}

	s.respond(w, r, http.StatusOK, HealthResponse{Status: "healthy", Database: "connected"})
}

// Register a user
// (POST /auth/register).
func (s *Server) Register(w http.ResponseWriter, r *http.Request) {
	var req authservice.CredentialsRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)

		return
	}

	id, err := s.auth.Register(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	s.respond(w, r, http.StatusCreated, RegisterResponse{Message: "User registered successfully", UserID: id})
}

// Login issues an access token
// (POST /auth/login).
func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var req authservice.CredentialsRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)

		return
	}

	resp, err := s.auth.Login(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	s.respond(w, r, http.StatusOK, resp)
}

// (POST /auth/logout).
func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	if err := s.auth.Logout(r.Context(), identity(r)); err != nil {
		s.writeError(w, r, err)

		return
	}

	s.respond(w, r, http.StatusOK, MessageResponse{Message: "Successfully logged out"}) //nolint:exhaustruct
}

// (GET /auth/me).
func (s *Server) Me(w http.ResponseWriter, r *http.Request) {
	u, err := s.auth.Me(r.Context(), identity(r))
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	s.respond(w, r, http.StatusOK, MeResponse{ID: u.ID, Username: u.Username, Role: u.Role.String()})
}

func (s *Server) respond(w http.ResponseWriter, r *http.Request, code int, v any) {
	if err := writeJSON(w, code, v); err != nil {
		s.lg.Errorf("%s %s write response error: %s", r.Method, r.URL.Path, err.Error())
	}
}
