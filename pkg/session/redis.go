package session

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/synvisio/pkg/errors"
)

// DefaultKeyPrefix namespaces session keys in Redis.
const DefaultKeyPrefix = "synvisio:session:"

// redisClient is the subset of redis.Cmdable the store uses.
type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisStore keeps sessions in Redis with the session's remaining lifetime
// as the key TTL.
type RedisStore struct {
	client redisClient
	closer func() error
	prefix string
}

// RedisConfig configures [NewRedisStore].
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "connect to redis at %s", cfg.Addr)
	}
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &RedisStore{client: client, closer: client.Close, prefix: prefix}, nil
}

func (r *RedisStore) key(id string) string { return r.prefix + id }

func (r *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	data, err := r.client.Get(ctx, r.key(id)).Bytes()
	if stderrors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "get session %s", id)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "parse session %s", id)
	}
	if sess.IsExpired() {
		return nil, nil
	}
	return &sess, nil
}

func (r *RedisStore) Set(ctx context.Context, sess *Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "marshal session")
	}
	var ttl time.Duration
	if !sess.ExpiresAt.IsZero() {
		if ttl = time.Until(sess.ExpiresAt); ttl <= 0 {
			return r.Delete(ctx, sess.ID)
		}
	}
	if err := r.client.Set(ctx, r.key(sess.ID), data, ttl).Err(); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "set session %s", sess.ID)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, r.key(id)).Err(); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "delete session %s", id)
	}
	return nil
}

func (r *RedisStore) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer()
}

var _ Store = (*RedisStore)(nil)
