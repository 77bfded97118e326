// README: Session store backed by Redis JSON values with a sliding TTL.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"tripmate/internal/types"
)

const sessionKeyPrefix = "tripmate:session:%s"

type RedisStore struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewRedisStore stores each session under its own key. ttl <= 0 keeps keys
// until they are deleted.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{redis: client, ttl: ttl}
}

func (s *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	raw, err := s.redis.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get session: %w", err)
	}
	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	if sess.Preferences.Currency == "" {
		sess.Preferences.Currency = types.DefaultCurrency
	}
	return &sess, nil
}

// Put writes under WATCH so that two replicas cannot both commit on top of
// the same version.
func (s *RedisStore) Put(ctx context.Context, sess *Session) error {
	next := sess.Clone()
	next.Version++
	raw, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", sess.ID, err)
	}
	ttl := s.ttl
	if ttl < 0 {
		ttl = 0
	}

	key := sessionKey(sess.ID)
	err = s.redis.Watch(ctx, func(tx *redis.Tx) error {
		stored, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
		case err != nil:
			return fmt.Errorf("redis get session: %w", err)
		default:
			var cur struct {
				Version int64 `json:"version"`
			}
			if err := json.Unmarshal(stored, &cur); err != nil {
				return fmt.Errorf("decode session %s: %w", sess.ID, err)
			}
			if cur.Version != sess.Version {
				return ErrConflict
			}
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, raw, ttl)
			return nil
		})
		return err
	}, key)
	if errors.Is(err, redis.TxFailedErr) {
		return ErrConflict
	}
	if err != nil {
		return err
	}
	sess.Version = next.Version
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.redis.Del(ctx, sessionKey(id)).Err()
}

func sessionKey(id string) string {
	return fmt.Sprintf(sessionKeyPrefix, id)
}
