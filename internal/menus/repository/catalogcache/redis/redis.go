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

type CatalogCache struct {
	rdb     redis.Cmdable
	expTime time.Duration
}

func New(rdb redis.Cmdable, expTime time.Duration) CatalogCache {
	return CatalogCache{
		rdb:     rdb,
		expTime: expTime,
	}
}

func key(kind models.AttributeKind) string {
	return "catalog:" + string(kind)
}

func (cc CatalogCache) Set(ctx context.Context, kind models.AttributeKind, attrs []models.Attribute) error {
	b, err := json.Marshal(attrs)
	if err != nil {
		return fmt.Errorf("marshal error: %w", err)
	}

	if err := cc.rdb.Set(ctx, key(kind), b, cc.expTime).Err(); err != nil {
		return fmt.Errorf("set error: %w", err)
	}

	return nil
}

func (cc CatalogCache) Get(ctx context.Context, kind models.AttributeKind) ([]models.Attribute, error) {
	b, err := cc.rdb.Get(ctx, key(kind)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, catalogrepo.ErrCacheMiss
	} else if err != nil {
		return nil, fmt.Errorf("get error: %w", err)
	}

	var attrs []models.Attribute

	if err := json.Unmarshal(b, &attrs); err != nil {
		return nil, fmt.Errorf("unmarshal error: %w", err)
	}

	return attrs, nil
}
