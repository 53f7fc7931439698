package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenStore keeps revocation state shared by every instance. Entries expire
// together with the tokens they revoke.
type TokenStore struct {
	rdb redis.Cmdable
}

func New(rdb redis.Cmdable) TokenStore {
	return TokenStore{rdb: rdb}
}

func tokenKey(jti string) string {
	return "revoked:token:" + jti
}

func userKey(userID int64) string {
	return "revoked:user:" + strconv.FormatInt(userID, 10)
}

// Revoke marks a single token revoked until it would have expired anyway.
func (ts TokenStore) Revoke(ctx context.Context, jti string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}

	if err := ts.rdb.Set(ctx, tokenKey(jti), 1, ttl).Err(); err != nil {
		return fmt.Errorf("set error: %w", err)
	}

	return nil
}

// RevokeUser kills every token of the user issued at or before cutoff.
// ttl must cover the longest token lifetime.
func (ts TokenStore) RevokeUser(ctx context.Context, userID int64, cutoff time.Time, ttl time.Duration) error {
	if err := ts.rdb.Set(ctx, userKey(userID), cutoff.UnixMilli(), ttl).Err(); err != nil {
		return fmt.Errorf("set error: %w", err)
	}

	return nil
}

func (ts TokenStore) IsRevoked(ctx context.Context, jti string, userID int64, issuedAt time.Time) (bool, error) {
	vals, err := ts.rdb.MGet(ctx, tokenKey(jti), userKey(userID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return false, fmt.Errorf("mget error: %w", err)
	}

	if len(vals) != 2 { //nolint:gomnd
		return false, fmt.Errorf("mget error: unexpected reply length %d", len(vals))
	}

	if vals[0] != nil {
		return true, nil
	}

	if s, ok := vals[1].(string); ok {
		cutoff, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return false, fmt.Errorf("parse cutoff error: %w", err)
		}

		return issuedAt.UnixMilli() <= cutoff, nil
	}

	return false, nil
}
