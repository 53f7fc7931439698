package server

import (
	"net/http"

	"github.com/SoundFoodPhygital/menu-server-demo/internal/menus/domain/models"
)

// (GET /admin/stats).
func (s *Server) AdminStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.admin.Stats(r.Context())
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	s.respond(w, r, http.StatusOK, st)
}

// Most recent requests, ?limit= caps the count
// (GET /admin/request-logs).
func (s *Server) AdminRequestLogs(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	logs, err := s.admin.RecentLogs(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	if logs == nil {
		logs = []models.RequestLog{}
	}

	s.respond(w, r, http.StatusOK, logs)
}

// (GET /admin/request-logs/daily).
func (s *Server) AdminDailyCounts(w http.ResponseWriter, r *http.Request) {
	days, err := queryInt(r, "days")
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	counts, err := s.admin.DailyCounts(r.Context(), days)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	if counts == nil {
		counts = []models.DailyCount{}
	}

	s.respond(w, r, http.StatusOK, counts)
}

// (GET /admin/users).
func (s *Server) AdminUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.admin.ListUsers(r.Context())
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	if users == nil {
		users = []models.User{}
	}

	s.respond(w, r, http.StatusOK, users)
}

// Change a role; the user's tokens are revoked
// (PUT /admin/users/{id}/role).
func (s *Server) AdminChangeRole(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	var req RoleRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)

		return
	}

	if err := s.admin.ChangeRole(r.Context(), id, req.Role); err != nil {
		s.writeError(w, r, err)

		return
	}

	s.respond(w, r, http.StatusOK, MessageResponse{Message: "Role updated"}) //nolint:exhaustruct
}

// (GET /admin/menus).
func (s *Server) AdminMenus(w http.ResponseWriter, r *http.Request) {
	menus, err := s.admin.ListMenus(r.Context())
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	if menus == nil {
		menus = []models.Menu{}
	}

	s.respond(w, r, http.StatusOK, menus)
}
