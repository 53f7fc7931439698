package adminservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SoundFoodPhygital/menu-server-demo/internal/menus/domain/models"
	"github.com/SoundFoodPhygital/menu-server-demo/internal/menus/repository/userrepo"
	"github.com/SoundFoodPhygital/menu-server-demo/pkg/logger"
)

const (
	DefaultLogLimit = 10
	MaxLogLimit     = 500
	DefaultDays     = 30
	MaxDays         = 365
)

var (
	ErrUnknownRole  = models.NewError(models.ErrBadRequest, "unknown role")
	ErrUserNotFound = models.NewError(models.ErrNotFound, "user not found")
)

type AdminService struct {
	stats    StatsRepository
	cache    StatsCache
	logs     RequestLogRepository
	users    UserRepository
	menus    MenuRepository
	tokens   TokenRevoker
	tokenTTL time.Duration
	lg       logger.Logger
}

type StatsRepository interface {
	Stats(context.Context) (models.Stats, error)
}

type StatsCache interface {
	Get(context.Context) (models.Stats, error)
	Set(context.Context, models.Stats) error
}

type RequestLogRepository interface {
	CreateLog(context.Context, models.RequestLog) error
	RecentLogs(context.Context, int) ([]models.RequestLog, error)
	DailyCounts(context.Context, int) ([]models.DailyCount, error)
}

type UserRepository interface {
	ListUsers(context.Context) ([]models.User, error)
	UpdateRole(context.Context, int64, models.Role) error
}

type MenuRepository interface {
	ListMenus(context.Context) ([]models.Menu, error)
}

type TokenRevoker interface {
	RevokeUser(ctx context.Context, userID int64, cutoff time.Time, ttl time.Duration) error
}

type Deps struct {
	Stats  StatsRepository
	Cache  StatsCache
	Logs   RequestLogRepository
	Users  UserRepository
	Menus  MenuRepository
	Tokens TokenRevoker
}

// New builds the service. tokenTTL is the lifetime of access tokens, the
// user revocation marker must outlive them.
func New(deps Deps, tokenTTL time.Duration, lg logger.Logger) *AdminService {
	return &AdminService{
		stats:    deps.Stats,
		cache:    deps.Cache,
		logs:     deps.Logs,
		users:    deps.Users,
		menus:    deps.Menus,
		tokens:   deps.Tokens,
		tokenTTL: tokenTTL,
		lg:       lg,
	}
}

func (as *AdminService) Stats(ctx context.Context) (models.Stats, error) {
	s, err := as.cache.Get(ctx)
	if err == nil {
		return s, nil
	}

	s, err = as.stats.Stats(ctx)
	if err != nil {
		return models.Stats{}, fmt.Errorf("stats error: %w", err)
	}

	if err := as.cache.Set(ctx, s); err != nil {
		as.lg.Errorf("set stats cache error: %s", err.Error())
	}

	return s, nil
}

// LogRequest stores one access record. Failures are only logged.
func (as *AdminService) LogRequest(ctx context.Context, l models.RequestLog) {
	if err := as.logs.CreateLog(ctx, l); err != nil {
		as.lg.Errorf("create request log error: %s", err.Error())
	}
}

func (as *AdminService) RecentLogs(ctx context.Context, limit int) ([]models.RequestLog, error) {
	logs, err := as.logs.RecentLogs(ctx, clamp(limit, DefaultLogLimit, MaxLogLimit))
	if err != nil {
		return nil, fmt.Errorf("recent logs error: %w", err)
	}

	return logs, nil
}

func (as *AdminService) DailyCounts(ctx context.Context, days int) ([]models.DailyCount, error) {
	counts, err := as.logs.DailyCounts(ctx, clamp(days, DefaultDays, MaxDays))
	if err != nil {
		return nil, fmt.Errorf("daily counts error: %w", err)
	}

	return counts, nil
}

func (as *AdminService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := as.users.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users error: %w", err)
	}

	return users, nil
}

func (as *AdminService) ListMenus(ctx context.Context) ([]models.Menu, error) {
	menus, err := as.menus.ListMenus(ctx)
	if err != nil {
		return nil, fmt.Errorf("list menus error: %w", err)
	}

	return menus, nil
}

// ChangeRole updates the role and revokes every token the user holds, so
// the old role claim can't be used any more.
func (as *AdminService) ChangeRole(ctx context.Context, userID int64, role string) error {
	r, err := models.ParseRole(role)
	if err != nil {
		return ErrUnknownRole
	}

	err = as.users.UpdateRole(ctx, userID, r)
	if errors.Is(err, userrepo.ErrNotFound) {
		return ErrUserNotFound
	} else if err != nil {
		return fmt.Errorf("update role error: %w", err)
	}

	if err := as.tokens.RevokeUser(ctx, userID, time.Now(), as.tokenTTL); err != nil {
		return fmt.Errorf("revoke user error: %w", err)
	}

	return nil
}

func clamp(v, def, maxV int) int {
	if v <= 0 {
		return def
	}

	return min(v, maxV)
}
