package adminservice_test

import (
	"context"
	"testing"
	"time"

	"github.com/SoundFoodPhygital/menu-server-demo/internal/menus/domain/models"
	statscache "github.com/SoundFoodPhygital/menu-server-demo/internal/menus/repository/statscache/redis"
	"github.com/SoundFoodPhygital/menu-server-demo/internal/menus/repository/userrepo"
	"github.com/SoundFoodPhygital/menu-server-demo/internal/menus/services/adminservice"
	"github.com/SoundFoodPhygital/menu-server-demo/pkg/logger"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type statsFake struct{ calls int }

func (s *statsFake) Stats(context.Context) (models.Stats, error) {
	s.calls++

	return models.Stats{Users: int64(s.calls)}, nil
}

type logsFake struct {
	limit, days int
	created     []models.RequestLog
}

func (l *logsFake) CreateLog(_ context.Context, r models.RequestLog) error {
	l.created = append(l.created, r)

	return nil
}

func (l *logsFake) RecentLogs(_ context.Context, limit int) ([]models.RequestLog, error) {
	l.limit = limit

	return nil, nil
}

func (l *logsFake) DailyCounts(_ context.Context, days int) ([]models.DailyCount, error) {
	l.days = days

	return nil, nil
}

type usersFake struct{ roles map[int64]models.Role }

func (u *usersFake) ListUsers(context.Context) ([]models.User, error) { return nil, nil }

func (u *usersFake) UpdateRole(_ context.Context, id int64, r models.Role) error {
	if _, ok := u.roles[id]; !ok {
		return userrepo.ErrNotFound
	}

	u.roles[id] = r

	return nil
}

type menusFake struct{}

func (menusFake) ListMenus(context.Context) ([]models.Menu, error) { return nil, nil }

type revokerFake struct{ revoked map[int64]time.Duration }

func (r *revokerFake) RevokeUser(_ context.Context, id int64, _ time.Time, ttl time.Duration) error {
	r.revoked[id] = ttl

	return nil
}

type fixture struct {
	svc     *adminservice.AdminService
	stats   *statsFake
	logs    *logsFake
	users   *usersFake
	revoker *revokerFake
	mr      *miniredis.Miniredis
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	f := fixture{
		stats:   &statsFake{},
		logs:    &logsFake{},
		users:   &usersFake{roles: map[int64]models.Role{1: models.RoleUser}},
		revoker: &revokerFake{revoked: map[int64]time.Duration{}},
		mr:      mr,
	}

	f.svc = adminservice.New(adminservice.Deps{
		Stats:  f.stats,
		Cache:  statscache.New(rdb, 5*time.Minute),
		Logs:   f.logs,
		Users:  f.users,
		Menus:  menusFake{},
		Tokens: f.revoker,
	}, time.Hour, logger.Nop())

	return f
}

func TestStatsAreCached(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	s, err := f.svc.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), s.Users)

	s, err = f.svc.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), s.Users)
	require.Equal(t, 1, f.stats.calls)

	f.mr.FastForward(6 * time.Minute)

	s, err = f.svc.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(2), s.Users)
}

func TestLogLimits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		in, limit, days int
	}{
		{0, adminservice.DefaultLogLimit, adminservice.DefaultDays},
		{-5, adminservice.DefaultLogLimit, adminservice.DefaultDays},
		{7, 7, 7},
		{10000, adminservice.MaxLogLimit, adminservice.MaxDays},
	}

	for _, tc := range tests {
		_, err := f.svc.RecentLogs(ctx, tc.in)
		require.NoError(t, err)
		require.Equal(t, tc.limit, f.logs.limit)

		_, err = f.svc.DailyCounts(ctx, tc.in)
		require.NoError(t, err)
		require.Equal(t, tc.days, f.logs.days)
	}
}

func TestChangeRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.ChangeRole(ctx, 1, "manager"))
	require.Equal(t, models.RoleManager, f.users.roles[1])
	require.Equal(t, time.Hour, f.revoker.revoked[1])

	require.ErrorIs(t, f.svc.ChangeRole(ctx, 1, "root"), models.ErrBadRequest)
	require.ErrorIs(t, f.svc.ChangeRole(ctx, 42, "admin"), models.ErrNotFound)
	require.NotContains(t, f.revoker.revoked, int64(42))
}
