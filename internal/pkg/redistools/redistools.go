package redistools

import (
	"context"
	"fmt"
	"time"

	"github.com/SoundFoodPhygital/menu-server-demo/internal/pkg/config"
	"github.com/redis/go-redis/v9"
)

// New creates a client and waits until the server answers.
func New(ctx context.Context, cfg config.Redis) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{ //nolint:exhaustruct
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := Connect(ctx, rdb); err != nil {
		rdb.Close() //nolint:errcheck

		return nil, fmt.Errorf("connect error: %w", err)
	}

	return rdb, nil
}

func Connect(ctx context.Context, rdb *redis.Client) error {
	errCh := make(chan error)
	go func() {
		defer close(errCh)

		delay := time.Second

		for {
			if err := rdb.Ping(ctx).Err(); err != nil {
				time.Sleep(delay)
				delay += time.Second

				if delay > time.Second*10 {
					errCh <- fmt.Errorf("cannot ping redis db error: %w", err)

					return
				}

				continue
			}

			break
		}
	}()
	select {
	case <-ctx.Done():
		return fmt.Errorf("context error: %w", ctx.Err())
	case err := <-errCh:
		return err
	}
}
