package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SoundFoodPhygital/menu-server-demo/internal/menus/api/server"
	eventsamqp "github.com/SoundFoodPhygital/menu-server-demo/internal/menus/events/amqp"
	ar "github.com/SoundFoodPhygital/menu-server-demo/internal/menus/repository/adminrepo/postgres"
	catalogcache "github.com/SoundFoodPhygital/menu-server-demo/internal/menus/repository/catalogcache/redis"
	cr "github.com/SoundFoodPhygital/menu-server-demo/internal/menus/repository/catalogrepo/postgres"
	mr "github.com/SoundFoodPhygital/menu-server-demo/internal/menus/repository/menurepo/postgres"
	lr "github.com/SoundFoodPhygital/menu-server-demo/internal/menus/repository/requestlogrepo/postgres"
	statscache "github.com/SoundFoodPhygital/menu-server-demo/internal/menus/repository/statscache/redis"
	tokenstore "github.com/SoundFoodPhygital/menu-server-demo/internal/menus/repository/tokenstore/redis"
	ur "github.com/SoundFoodPhygital/menu-server-demo/internal/menus/repository/userrepo/postgres"
	"github.com/SoundFoodPhygital/menu-server-demo/internal/menus/services/adminservice"
	"github.com/SoundFoodPhygital/menu-server-demo/internal/menus/services/authservice"
	"github.com/SoundFoodPhygital/menu-server-demo/internal/menus/services/catalogservice"
	"github.com/SoundFoodPhygital/menu-server-demo/internal/menus/services/menuservice"
	"github.com/SoundFoodPhygital/menu-server-demo/internal/pkg/config"
	"github.com/SoundFoodPhygital/menu-server-demo/internal/pkg/pgtools"
	"github.com/SoundFoodPhygital/menu-server-demo/internal/pkg/ratelimit"
	"github.com/SoundFoodPhygital/menu-server-demo/internal/pkg/rbac"
	"github.com/SoundFoodPhygital/menu-server-demo/internal/pkg/redistools"
	"github.com/SoundFoodPhygital/menu-server-demo/pkg/logger"
	"github.com/redis/go-redis/v9"
)

type Server interface {
	Start(context.Context) error
	Shutdown(context.Context) error
}

type MenusApp struct {
	s         Server
	db        pgtools.DB
	rdb       *redis.Client
	publisher eventsamqp.EventPublisher
	lg        logger.ZapLogger
	cfg       config.Config
}

func New(ctx context.Context, cfg config.Config) (*MenusApp, error) { //nolint:funlen
	lg, err := logger.New(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("can't get logger error: %w", err)
	}

	if err := pgtools.ApplyMigration(ctx, cfg.PostgresDB); err != nil {
		return nil, fmt.Errorf("apply migration error: %w", err)
	}

	db, err := pgtools.Connect(ctx, cfg.PostgresDB.ConnString())
	if err != nil {
		return nil, fmt.Errorf("postgres initializing error: %w", err)
	}

	rdb, err := redistools.New(ctx, cfg.Redis)
	if err != nil {
		db.Close()

		return nil, fmt.Errorf("redis initializing error: %w", err)
	}

	closeStores := func() {
		if err := rdb.Close(); err != nil {
			lg.Errorf("redis close error: %s", err.Error())
		}

		db.Close()
	}

	tokens := tokenstore.New(rdb)
	userRepo := ur.New(db)
	menuRepo := mr.New(db)

	authService := authservice.New(userRepo, tokens, cfg.Auth)

	catalogService := catalogservice.New(cr.New(db), catalogcache.New(rdb, cfg.Catalog.TTL), lg)
	if err := catalogService.Warm(ctx); err != nil {
		lg.Warnf("catalog warm error: %s", err.Error())
	}

	adminService := adminservice.New(adminservice.Deps{
		Stats:  ar.New(db),
		Cache:  statscache.New(rdb, cfg.Stats.TTL),
		Logs:   lr.New(db),
		Users:  userRepo,
		Menus:  menuRepo,
		Tokens: tokens,
	}, cfg.Auth.TTL, lg)

	if !cfg.Bootstrap.Disabled {
		created, err := authService.EnsureAdmin(ctx, cfg.Bootstrap.Username, cfg.Bootstrap.Password)
		if err != nil {
			closeStores()

			return nil, fmt.Errorf("ensure admin error: %w", err)
		}

		if created {
			lg.Infof("created admin user %q", cfg.Bootstrap.Username)
		}
	}

	enforcer, err := rbac.New()
	if err != nil {
		closeStores()

		return nil, fmt.Errorf("rbac initializing error: %w", err)
	}

	publisher := eventsamqp.New(cfg.Events, lg)
	menuService := menuservice.New(menuRepo, catalogService, publisher, lg)

	s := server.New(cfg.Server, cfg.CORS, server.Deps{
		Auth:    authService,
		Menus:   menuService,
		Catalog: catalogService,
		Admin:   adminService,
		DB:      db,
		RBAC:    enforcer,
		Limiter: ratelimit.New(rdb, cfg.RateLimit, server.TooManyRequests, lg),
	}, lg)

	return &MenusApp{
		s:         s,
		db:        db,
		rdb:       rdb,
		publisher: publisher,
		lg:        lg,
		cfg:       cfg,
	}, nil
}

func (ma *MenusApp) Run(ctx context.Context) {
	ma.lg.Infof("STARTED SERVER ON %s", ma.cfg.Server.Addr)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		if err := ma.s.Start(ctx); err != nil {
			ma.lg.Errorf("server start error: %s", err.Error())
			cancel()
		}
	}()

	<-ctx.Done()

	ctxS, cancelS := context.WithTimeout(context.Background(), time.Second*5) //nolint:gomnd
	defer cancelS()

	if err := ma.Stop(ctxS); err != nil { //nolint:contextcheck
		ma.lg.Errorf("shutdown error: %s", err.Error())
	}
}

// Stop closes the server first, then the stores it depends on.
func (ma *MenusApp) Stop(ctx context.Context) error {
	var errs []error

	if err := ma.s.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
	}

	if err := ma.publisher.Close(); err != nil {
		errs = append(errs, fmt.Errorf("publisher close error: %w", err))
	}

	if err := ma.rdb.Close(); err != nil {
		errs = append(errs, fmt.Errorf("redis close error: %w", err))
	}

	if err := pgtools.Shutdown(ctx, ma.db); err != nil {
		errs = append(errs, fmt.Errorf("postgres shutdown error: %w", err))
	}

	ma.lg.Sync() //nolint:errcheck

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	ma.lg.Info("Shutdowned successfully")

	return nil
}
