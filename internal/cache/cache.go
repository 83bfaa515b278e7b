// Package cache keeps short-lived copies of per-user task lists.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/isdelr/fuego-api/internal/models"
)

// TaskLists caches the result of listing a user's tasks. Entries belong to a
// generation: Get reports the current one, Set files the list under the
// generation the caller read, and Invalidate starts a new one. A list read
// before an invalidation therefore never becomes visible after it. Failures
// are logged and swallowed; callers fall back to the store.
type TaskLists interface {
	Get(ctx context.Context, userID int64) (tasks []models.Task, gen int64, ok bool)
	Set(ctx context.Context, userID, gen int64, tasks []models.Task)
	Invalidate(ctx context.Context, userID int64)
}

// Noop is a TaskLists that never hits.
type Noop struct{}

func (Noop) Get(context.Context, int64) ([]models.Task, int64, bool) { return nil, 0, false }
func (Noop) Set(context.Context, int64, int64, []models.Task)        {}
func (Noop) Invalidate(context.Context, int64)                       {}

// Redis stores the generation counter under fuego:tasks:gen:<userID> and each
// list as JSON under fuego:tasks:<userID>:<gen>. Superseded lists are left to
// expire.
type Redis struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedis connects to addr and verifies the connection.
func NewRedis(ctx context.Context, addr string, ttl time.Duration) (*Redis, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return NewRedisWithClient(client, ttl), nil
}

// NewRedisWithClient wraps an existing client.
func NewRedisWithClient(client redis.UniversalClient, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

func genKey(userID int64) string {
	return "fuego:tasks:gen:" + strconv.FormatInt(userID, 10)
}

func listKey(userID, gen int64) string {
	return "fuego:tasks:" + strconv.FormatInt(userID, 10) + ":" + strconv.FormatInt(gen, 10)
}

// Get returns the cached list for the current generation, if any. On a miss
// the generation is still returned so the caller can fill the entry. A
// negative generation means the counter could not be read and Set is skipped.
func (r *Redis) Get(ctx context.Context, userID int64) ([]models.Task, int64, bool) {
	gen, err := r.client.Get(ctx, genKey(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		gen = 0
	} else if err != nil {
		log.Warn().Err(err).Int64("user_id", userID).Msg("Task cache generation read failed")
		return nil, -1, false
	}

	data, err := r.client.Get(ctx, listKey(userID, gen)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, gen, false
	} else if err != nil {
		log.Warn().Err(err).Int64("user_id", userID).Msg("Task cache read failed")
		return nil, gen, false
	}
	var tasks []models.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		log.Warn().Err(err).Int64("user_id", userID).Msg("Discarding corrupt task cache entry")
		r.client.Del(ctx, listKey(userID, gen))
		return nil, gen, false
	}
	return tasks, gen, true
}

// Set stores the list under gen with the configured TTL.
func (r *Redis) Set(ctx context.Context, userID, gen int64, tasks []models.Task) {
	if gen < 0 {
		return
	}
	data, err := json.Marshal(tasks)
	if err != nil {
		return
	}
	if err := r.client.Set(ctx, listKey(userID, gen), data, r.ttl).Err(); err != nil {
		log.Warn().Err(err).Int64("user_id", userID).Msg("Task cache write failed")
	}
}

// Invalidate advances the user's generation.
func (r *Redis) Invalidate(ctx context.Context, userID int64) {
	if err := r.client.Incr(ctx, genKey(userID)).Err(); err != nil {
		log.Warn().Err(err).Int64("user_id", userID).Msg("Task cache invalidation failed")
	}
}

// Close releases the underlying connection pool.
func (r *Redis) Close() error {
	return r.client.Close()
}
