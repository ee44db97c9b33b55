// Copyright 2025 The LunarDB Security Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package admission

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// admitScript runs the membership and capacity test atomically so that
// concurrent processes sharing one key never push the set past capacity.
//
// KEYS[1] = set key, ARGV[1] = identifier, ARGV[2] = capacity
var admitScript = redis.NewScript(`
if redis.call('SISMEMBER', KEYS[1], ARGV[1]) == 1 then
  return 1
end
if redis.call('SCARD', KEYS[1]) >= tonumber(ARGV[2]) then
  return 0
end
redis.call('SADD', KEYS[1], ARGV[1])
return 1
`)

// RedisTracker is a Tracker whose admitted set lives in Redis, so several
// processes can share one gate. Redis errors fail closed.
type RedisTracker struct {
	client   *redis.Client
	key      string
	capacity int
}

// NewRedisTracker creates a tracker stored under "admission:<name>".
func NewRedisTracker(client *redis.Client, name string, capacity int) *RedisTracker {
	if capacity < 0 {
		capacity = 0
	}
	return &RedisTracker{
		client:   client,
		key:      fmt.Sprintf("admission:%s", name),
		capacity: capacity,
	}
}

// ConnectRedis parses a redis:// URL and verifies the connection.
func ConnectRedis(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// Check has Tracker.Check semantics. On a Redis error it returns false.
func (t *RedisTracker) Check(ctx context.Context, id string) bool {
	ok, err := t.check(ctx, id)
	return err == nil && ok
}

// Admit returns ErrCapacityExceeded on rejection and wraps Redis errors.
func (t *RedisTracker) Admit(ctx context.Context, id string) error {
	ok, err := t.check(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrCapacityExceeded
	}
	return nil
}

func (t *RedisTracker) check(ctx context.Context, id string) (bool, error) {
	n, err := admitScript.Run(ctx, t.client, []string{t.key}, id, t.capacity).Int()
	if err != nil {
		return false, fmt.Errorf("admission check failed for %s: %w", t.key, err)
	}
	return n == 1, nil
}

// Len returns the number of admitted identifiers.
func (t *RedisTracker) Len(ctx context.Context) (int, error) {
	n, err := t.client.SCard(ctx, t.key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count admitted identifiers: %w", err)
	}
	return int(n), nil
}

// Capacity returns the configured capacity.
func (t *RedisTracker) Capacity() int {
	return t.capacity
}

// Key returns the Redis key holding the admitted set.
func (t *RedisTracker) Key() string {
	return t.key
}
