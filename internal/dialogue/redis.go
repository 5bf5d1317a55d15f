package dialogue

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/desertthunder/plbot/internal/shared"
	"github.com/redis/go-redis/v9"
)

// DefaultKeyPrefix namespaces dialogue keys in a shared redis database.
const DefaultKeyPrefix = "plbot:dialogue:"

// RedisStore keeps sessions in redis as JSON values that expire after the store's TTL.
//
// The TTL restarts on every Put, so a session expires after ttl of inactivity.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

func NewRedisStore(client redis.UniversalClient, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}
}

// NewRedisClient connects to a single redis instance and verifies the connection.
func NewRedisClient(ctx context.Context, cfg shared.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, errors.Wrapf(err, "failed to ping redis at %s", cfg.Addr)
	}
	return client, nil
}

func (r *RedisStore) key(userID int64) string {
	return r.prefix + strconv.FormatInt(userID, 10)
}

func (r *RedisStore) Get(ctx context.Context, userID int64) (*Session, error) {
	data, err := r.client.Get(ctx, r.key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, shared.StoreError(err, "failed to read dialogue")
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, shared.StoreError(err, "failed to decode dialogue")
	}
	return &s, nil
}

func (r *RedisStore) Put(ctx context.Context, userID int64, s Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return errors.Wrap(err, "failed to encode dialogue")
	}

	if err := r.client.Set(ctx, r.key(userID), data, r.ttl).Err(); err != nil {
		return shared.StoreError(err, "failed to write dialogue")
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, userID int64) error {
	if err := r.client.Del(ctx, r.key(userID)).Err(); err != nil {
		return shared.StoreError(err, "failed to delete dialogue")
	}
	return nil
}
