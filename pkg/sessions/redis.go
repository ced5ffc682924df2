package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/cerveza-fortuna/cicerone-engine/pkg/apperrors"
	"github.com/cerveza-fortuna/cicerone-engine/pkg/models"
)

const redisKeyPrefix = "cicerone:session:"

// RedisStore persists sessions as JSON documents in Redis, one key per
// session id. Idle expiry is delegated to Redis key TTLs, refreshed on
// every Save.
type RedisStore struct {
	client      *redis.Client
	idleTimeout time.Duration
	logger      *zap.Logger
}

// RedisConfig holds connection settings for the Redis session store.
type RedisConfig struct {
	Addr        string
	Password    string
	DB          int
	IdleTimeout time.Duration
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, cfg RedisConfig, logger *zap.Logger) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &RedisStore{
		client:      client,
		idleTimeout: cfg.IdleTimeout,
		logger:      logger.Named("sessions-redis"),
	}, nil
}

var _ Store = (*RedisStore)(nil)

// Get retrieves and decodes a session document.
func (r *RedisStore) Get(ctx context.Context, id string) (*models.TastingSession, error) {
	data, err := r.client.Get(ctx, redisKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, apperrors.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get session %s: %w", id, err)
	}

	var session models.TastingSession
	if err := json.Unmarshal(data, &session); err != nil {
		// A corrupt document is unrecoverable; treat as absent rather than
		// poisoning every subsequent turn.
		r.logger.Error("Discarding corrupt session document",
			zap.String("session_id", id),
			zap.Error(err))
		return nil, apperrors.ErrSessionNotFound
	}
	return &session, nil
}

// Save encodes the session and refreshes its idle TTL.
func (r *RedisStore) Save(ctx context.Context, session *models.TastingSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", session.ID, err)
	}
	if err := r.client.Set(ctx, redisKeyPrefix+session.ID, data, r.idleTimeout).Err(); err != nil {
		return fmt.Errorf("redis save session %s: %w", session.ID, err)
	}
	return nil
}

// Delete removes a session document.
func (r *RedisStore) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, redisKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("redis delete session %s: %w", id, err)
	}
	return nil
}

// Count returns the number of live session keys.
func (r *RedisStore) Count(ctx context.Context) (int, error) {
	var count int
	iter := r.client.Scan(ctx, 0, redisKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		count++
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("redis scan sessions: %w", err)
	}
	return count, nil
}

// Close releases the underlying connection pool.
func (r *RedisStore) Close() error {
	return r.client.Close()
}
