package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SoundFoodPhygital/menu-server-demo/internal/menus/domain/models"
	"github.com/SoundFoodPhygital/menu-server-demo/internal/menus/repository/catalogrepo"
	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

const statsKey = "admin:stats"

type StatsCache struct {
	rdb     redis.Cmdable
	expTime time.Duration
}

func New(rdb redis.Cmdable, expTime time.Duration) StatsCache {
	return StatsCache{
		rdb:     rdb,
		expTime: expTime,
	}
}

func (sc StatsCache) Set(ctx context.Context, s models.Stats) error {
	b, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal error: %w", err)
	}

	if err := sc.rdb.Set(ctx, statsKey, b, sc.expTime).Err(); err != nil {
		return fmt.Errorf("set error: %w", err)
	}

	return nil
}

func (sc StatsCache) Get(ctx context.Context) (models.Stats, error) {
	b, err := sc.rdb.Get(ctx, statsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.Stats{}, catalogrepo.ErrCacheMiss
	} else if err != nil {
		return models.Stats{}, fmt.Errorf("get error: %w", err)
	}

	var s models.Stats

	if err := json.Unmarshal(b, &s); err != nil {
		return models.Stats{}, fmt.Errorf("unmarshal error: %w", err)
	}

	return s, nil
}
