package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/SoundFoodPhygital/menu-server-demo/internal/menus/domain/models"
	"github.com/SoundFoodPhygital/menu-server-demo/internal/menus/services/authservice"
	"github.com/SoundFoodPhygital/menu-server-demo/internal/menus/services/menuservice"
	"github.com/SoundFoodPhygital/menu-server-demo/internal/pkg/config"
	"github.com/SoundFoodPhygital/menu-server-demo/internal/pkg/ratelimit"
	"github.com/SoundFoodPhygital/menu-server-demo/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Server struct {
	serv    *http.Server
	auth    AuthService
	menus   MenuService
	catalog CatalogService
	admin   AdminService
	db      Pinger
	rbac    Authorizer
	limiter *ratelimit.Limiter
	metrics *metrics
	lg      logger.Logger
}

type AuthService interface {
	Register(context.Context, authservice.CredentialsRequest) (int64, error)
	Login(context.Context, authservice.CredentialsRequest) (authservice.LoginResponse, error)
	Logout(context.Context, models.Identity) error
	Resolve(context.Context, string) (models.Identity, error)
	Me(context.Context, models.Identity) (models.User, error)
}

type MenuService interface {
	ListMenus(context.Context, models.Identity) ([]models.Menu, error)
	CreateMenu(context.Context, models.Identity, menuservice.MenuRequest) (int64, error)
	GetMenu(context.Context, models.Identity, int64) (models.Menu, error)
	UpdateMenu(context.Context, models.Identity, int64, menuservice.MenuRequest) error
	DeleteMenu(context.Context, models.Identity, int64) error
	ListDishes(context.Context, models.Identity, int64) ([]models.Dish, error)
	CreateDish(context.Context, models.Identity, int64, menuservice.DishRequest) (int64, error)
	GetDish(context.Context, models.Identity, int64) (models.Dish, error)
	UpdateDish(context.Context, models.Identity, int64, menuservice.DishRequest) error
	DeleteDish(context.Context, models.Identity, int64) error
}

type CatalogService interface {
	List(context.Context, models.AttributeKind) ([]models.Attribute, error)
}

type AdminService interface {
	Stats(context.Context) (models.Stats, error)
	LogRequest(context.Context, models.RequestLog)
	RecentLogs(context.Context, int) ([]models.RequestLog, error)
	DailyCounts(context.Context, int) ([]models.DailyCount, error)
	ListUsers(context.Context) ([]models.User, error)
	ListMenus(context.Context) ([]models.Menu, error)
	ChangeRole(context.Context, int64, string) error
}

type Pinger interface {
	Ping(context.Context) error
}

type Authorizer interface {
	Allowed(role, path, method string) (bool, error)
}

type Deps struct {
	Auth    AuthService
	Menus   MenuService
	Catalog CatalogService
	Admin   AdminService
	DB      Pinger
	RBAC    Authorizer
	Limiter *ratelimit.Limiter
}

func New(cfg config.Server, corsCfg config.CORS, deps Deps, lg logger.Logger) *Server {
	s := &Server{
		auth:    deps.Auth,
		menus:   deps.Menus,
		catalog: deps.Catalog,
		admin:   deps.Admin,
		db:      deps.DB,
		rbac:    deps.RBAC,
		limiter: deps.Limiter,
		metrics: newMetrics(),
		lg:      lg,
	}

	s.serv = &http.Server{ //nolint:exhaustruct
		Addr:         cfg.Addr,
		Handler:      s.routes(corsCfg),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

func (s *Server) routes(corsCfg config.CORS) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.metrics.middleware)
	r.Use(loggingMiddleware(s.lg))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{ //nolint:exhaustruct
		AllowedOrigins: corsCfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{"Retry-After", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		MaxAge:         300, //nolint:gomnd
	}))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		handleError(w, errNoRoute, http.StatusNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		handleError(w, errNotAllowed, http.StatusMethodNotAllowed)
	})

	r.Handle("/metrics", s.metrics.handler())

	lim := s.limiter.Class

	r.Route("/api", func(r chi.Router) {
		r.Use(s.requestLogMiddleware)

		r.With(lim(ratelimit.Health)).Get("/health", s.Health)

		// the limiter counts requests before auth rejects them
		authed := func(class string) chi.Router {
			return r.With(lim(class), s.authMiddleware)
		}

		authed(ratelimit.Read).Get("/menus", s.ListMenus)
		authed(ratelimit.MenuCreate).Post("/menus", s.CreateMenu)
		authed(ratelimit.Read).Get("/menus/{id}", s.GetMenu)
		authed(ratelimit.MenuUpdate).Put("/menus/{id}", s.UpdateMenu)
		authed(ratelimit.MenuDelete).Delete("/menus/{id}", s.DeleteMenu)

		authed(ratelimit.Read).Get("/menus/{id}/dishes", s.ListDishes)
		authed(ratelimit.DishCreate).Post("/menus/{id}/dishes", s.CreateDish)
		authed(ratelimit.Read).Get("/dishes/{id}", s.GetDish)
		authed(ratelimit.DishUpdate).Put("/dishes/{id}", s.UpdateDish)
		authed(ratelimit.DishDelete).Delete("/dishes/{id}", s.DeleteDish)

		authed(ratelimit.Read).Get("/emotions", s.listAttributes(models.KindEmotion))
		authed(ratelimit.Read).Get("/textures", s.listAttributes(models.KindTexture))
		authed(ratelimit.Read).Get("/shapes", s.listAttributes(models.KindShape))
	})

	r.Route("/auth", func(r chi.Router) {
		r.With(lim(ratelimit.Register)).Post("/register", s.Register)
		r.With(lim(ratelimit.Login)).Post("/login", s.Login)

		r.Group(func(r chi.Router) {
			r.Use(lim(ratelimit.Default), s.authMiddleware)

			r.Post("/logout", s.Logout)
			r.Get("/me", s.Me)
		})
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(lim(ratelimit.Admin), s.authMiddleware, s.rbacMiddleware)

		r.Get("/stats", s.AdminStats)
		r.Get("/request-logs", s.AdminRequestLogs)
		r.Get("/request-logs/daily", s.AdminDailyCounts)
		r.Get("/users", s.AdminUsers)
		r.Put("/users/{id}/role", s.AdminChangeRole)
		r.Get("/menus", s.AdminMenus)
	})

	return r
}

// Handler exposes the router, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.serv.Handler
}

func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		if err := s.serv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			close(errCh)
		}
	}()

	s.lg.Infof("server listening on %s", s.serv.Addr)

	select {
	case <-ctx.Done():
		ctxS, cancel := context.WithTimeout(context.Background(), time.Second*5) //nolint:gomnd
		defer cancel()

		if err := s.Shutdown(ctxS); err != nil { //nolint:contextcheck
			return fmt.Errorf("context error: %w server error %w", ctxS.Err(), err)
		}

		if !errors.Is(ctx.Err(), context.Canceled) {
			return fmt.Errorf("context cancelled error: %w", ctx.Err())
		}

		return nil
	case err := <-errCh:
		return fmt.Errorf("listen and serve error: %w", err)
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	ctxS, cancel := context.WithTimeout(ctx, s.serv.IdleTimeout)
	defer cancel()

	if err := s.serv.Shutdown(ctxS); err != nil {
		return fmt.Errorf("shutdown server error: %w", err)
	}

	return nil
}
