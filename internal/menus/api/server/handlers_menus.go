package server

import (
	"net/http"

	"github.com/SoundFoodPhygital/menu-server-demo/internal/menus/domain/models"
	"github.com/SoundFoodPhygital/menu-server-demo/internal/menus/services/menuservice"
)

// List the caller's menus
// (GET /api/menus).
func (s *Server) ListMenus(w http.ResponseWriter, r *http.Request) {
	menus, err := s.menus.ListMenus(r.Context(), identity(r))
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	if menus == nil {
		menus = []models.Menu{}
	}

	s.respond(w, r, http.StatusOK, menus)
}

// Create a menu
// (POST /api/menus).
func (s *Server) CreateMenu(w http.ResponseWriter, r *http.Request) {
	var req menuservice.MenuRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)

		return
	}

	id, err := s.menus.CreateMenu(r.Context(), identity(r), req)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	s.respond(w, r, http.StatusCreated, MessageResponse{Message: "Menu created", ID: id})
}

// Get a menu with its dishes
// (GET /api/menus/{id}).
func (s *Server) GetMenu(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	m, err := s.menus.GetMenu(r.Context(), identity(r), id)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	if m.Dishes == nil {
		m.Dishes = []models.Dish{}
	}

	s.respond(w, r, http.StatusOK, m)
}

// (PUT /api/menus/{id}).
func (s *Server) UpdateMenu(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	var req menuservice.MenuRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)

		return
	}

	if err := s.menus.UpdateMenu(r.Context(), identity(r), id, req); err != nil {
		s.writeError(w, r, err)

		return
	}

	s.respond(w, r, http.StatusOK, MessageResponse{Message: "Menu updated"}) //nolint:exhaustruct
}

// Delete a menu with all of its dishes
// (DELETE /api/menus/{id}).
func (s *Server) DeleteMenu(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	if err := s.menus.DeleteMenu(r.Context(), identity(r), id); err != nil {
		s.writeError(w, r, err)

		return
	}

	s.respond(w, r, http.StatusOK, MessageResponse{Message: "Menu deleted"}) //nolint:exhaustruct
}

// (GET /api/menus/{id}/dishes).
func (s *Server) ListDishes(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	dishes, err := s.menus.ListDishes(r.Context(), identity(r), id)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	if dishes == nil {
		dishes = []models.Dish{}
	}

	s.respond(w, r, http.StatusOK, dishes)
}

// Add a dish to a menu
// (POST /api/menus/{id}/dishes).
func (s *Server) CreateDish(w http.ResponseWriter, r *http.Request) {
	menuID, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	var req menuservice.DishRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)

		return
	}

	id, err := s.menus.CreateDish(r.Context(), identity(r), menuID, req)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	s.respond(w, r, http.StatusCreated, MessageResponse{Message: "Dish created", ID: id})
}

// (GET /api/dishes/{id}).
func (s *Server) GetDish(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	d, err := s.menus.GetDish(r.Context(), identity(r), id)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	s.respond(w, r, http.StatusOK, d)
}

// Partial update, absent fields keep their values
// (PUT /api/dishes/{id}).
func (s *Server) UpdateDish(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	var req menuservice.DishRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)

		return
	}

	if err := s.menus.UpdateDish(r.Context(), identity(r), id, req); err != nil {
		s.writeError(w, r, err)

		return
	}

	s.respond(w, r, http.StatusOK, MessageResponse{Message: "Dish updated"}) //nolint:exhaustruct
}

// (DELETE /api/dishes/{id}).
func (s *Server) DeleteDish(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	if err := s.menus.DeleteDish(r.Context(), identity(r), id); err != nil {
		s.writeError(w, r, err)

		return
	}

	s.respond(w, r, http.StatusOK, MessageResponse{Message: "Dish deleted"}) //nolint:exhaustruct
}

// (GET /api/emotions|textures|shapes).
func (s *Server) listAttributes(kind models.AttributeKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		attrs, err := s.catalog.List(r.Context(), kind)
		if err != nil {
			s.writeError(w, r, err)

			return
		}

		if attrs == nil {
			attrs = []models.Attribute{}
		}

		s.respond(w, r, http.StatusOK, attrs)
	}
}
