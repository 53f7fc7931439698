package ratelimit

import (
	"net/http"
	"time"

	"github.com/SoundFoodPhygital/menu-server-demo/internal/pkg/config"
	"github.com/SoundFoodPhygital/menu-server-demo/pkg/logger"
	"github.com/go-chi/httprate"
	"github.com/redis/go-redis/v9"
)

// Endpoint classes.
const (
	Health     = "health"
	Register   = "register"
	Login      = "login"
	Read       = "read"
	MenuCreate = "menu_create"
	MenuUpdate = "menu_update"
	MenuDelete = "menu_delete"
	DishCreate = "dish_create"
	DishUpdate = "dish_update"
	DishDelete = "dish_delete"
	Admin      = "admin"
	Default    = "default"
)

var DefaultClasses = map[string]config.Limit{ //nolint:gochecknoglobals
	Health:     {Requests: 120, Window: time.Minute},
	Register:   {Requests: 5, Window: time.Minute},
	Login:      {Requests: 10, Window: time.Minute},
	Read:       {Requests: 60, Window: time.Minute},
	MenuCreate: {Requests: 20, Window: time.Minute},
	MenuUpdate: {Requests: 30, Window: time.Minute},
	MenuDelete: {Requests: 10, Window: time.Minute},
	DishCreate: {Requests: 30, Window: time.Minute},
	DishUpdate: {Requests: 30, Window: time.Minute},
	DishDelete: {Requests: 20, Window: time.Minute},
	Admin:      {Requests: 60, Window: time.Minute},
	Default:    {Requests: 50, Window: time.Hour},
}

type Limiter struct {
	rdb      redis.Cmdable
	classes  map[string]config.Limit
	disabled bool
	onLimit  http.HandlerFunc
	lg       logger.Logger
}

// New builds per-class limiters sharing counters through rdb. onLimit writes
// the 429 response.
func New(rdb redis.Cmdable, cfg config.RateLimit, onLimit http.HandlerFunc, lg logger.Logger) *Limiter {
	classes := make(map[string]config.Limit, len(DefaultClasses))

	for name, l := range DefaultClasses {
		classes[name] = l
	}

	for name, l := range cfg.Classes {
		if l.Requests > 0 && l.Window > 0 {
			classes[name] = l
		}
	}

	return &Limiter{
		rdb:      rdb,
		classes:  classes,
		disabled: cfg.Disabled,
		onLimit:  onLimit,
		lg:       lg,
	}
}

func (l *Limiter) Limit(class string) config.Limit {
	if lim, ok := l.classes[class]; ok {
		return lim
	}

	return l.classes[Default]
}

// Class returns a middleware counting requests per client IP within class.
func (l *Limiter) Class(class string) func(http.Handler) http.Handler {
	if l.disabled {
		return func(next http.Handler) http.Handler { return next }
	}

	lim := l.Limit(class)

	return httprate.Limit(lim.Requests, lim.Window,
		httprate.WithKeyByIP(),
		httprate.WithLimitCounter(NewCounter(l.rdb, class, l.lg)),
		httprate.WithLimitHandler(l.onLimit),
	)
}
