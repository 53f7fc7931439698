package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/SoundFoodPhygital/menu-server-demo/internal/menus/domain/models"
	"github.com/SoundFoodPhygital/menu-server-demo/internal/menus/repository/catalogrepo"
	statscache "github.com/SoundFoodPhygital/menu-server-demo/internal/menus/repository/statscache/redis"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestStatsCache(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sc := statscache.New(rdb, 5*time.Minute)
	ctx := context.Background()

	_, err := sc.Get(ctx)
	require.ErrorIs(t, err, catalogrepo.ErrCacheMiss)

	want := models.Stats{Users: 1, Menus: 2, Dishes: 3}
	require.NoError(t, sc.Set(ctx, want))

	got, err := sc.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, want, got)

	mr.FastForward(6 * time.Minute)

	_, err = sc.Get(ctx)
	require.ErrorIs(t, err, catalogrepo.ErrCacheMiss)
}
