// api/db/redis.go
package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	logger "github.com/dev-mohitbeniwal/arbiter/api/logging"
	"github.com/dev-mohitbeniwal/arbiter/api/model"
)

var RedisClient *redis.Client

func InitRedis() error {
	RedisClient = redis.NewClient(&redis.Options{
		Addr:         viper.GetString("redis.addr"),
		Password:     viper.GetString("redis.password"),
		DB:           viper.GetInt("redis.db"),
		DialTimeout:  viper.GetDuration("redis.dialTimeout"),
		ReadTimeout:  viper.GetDuration("redis.readTimeout"),
		WriteTimeout: viper.GetDuration("redis.writeTimeout"),
		PoolSize:     viper.GetInt("redis.poolSize"),
		PoolTimeout:  viper.GetDuration("redis.poolTimeout"),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := RedisClient.Ping(ctx).Result()
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Successfully connected to Redis")
	return nil
}

func CloseRedis() {
	if RedisClient != nil {
		if err := RedisClient.Close(); err != nil {
			logger.Error("Error closing Redis connection", zap.Error(err))
		}
	}
}

// DecisionCache de-duplicates oracle calls inside a short window using Redis.
// All methods are best-effort: a Redis failure is logged and treated as a
// cache miss, never as a decision failure.
type DecisionCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewDecisionCache(client *redis.Client, ttl time.Duration) *DecisionCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &DecisionCache{client: client, ttl: ttl}
}

func (c *DecisionCache) GetDecision(ctx context.Context, key string) (*model.Decision, bool) {
	raw, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, false
	} else if err != nil {
		logger.Debug("Decision cache read failed", zap.Error(err), zap.String("key", key))
		return nil, false
	}

	var d model.Decision
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		logger.Debug("Decision cache entry unreadable", zap.Error(err), zap.String("key", key))
		return nil, false
	}
	return &d, true
}

func (c *DecisionCache) PutDecision(ctx context.Context, key string, d *model.Decision) {
	data, err := json.Marshal(d)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		logger.Debug("Decision cache write failed", zap.Error(err), zap.String("key", key))
	}
}

// ExecutionGuard remembers executed (tool, context) keys across processes so
// a replayed request cannot re-run a non-idempotent tool.
type ExecutionGuard struct {
	client *redis.Client
	ttl    time.Duration
}

func NewExecutionGuard(client *redis.Client, ttl time.Duration) *ExecutionGuard {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &ExecutionGuard{client: client, ttl: ttl}
}

func (g *ExecutionGuard) FirstExecution(ctx context.Context, key string) (bool, error) {
	first, err := g.client.SetNX(ctx, key, "executed", g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark execution: %w", err)
	}
	return first, nil
}

func RateLimit(ctx context.Context, key string, limit int, per time.Duration) (bool, error) {
	pipe := RedisClient.Pipeline()
	now := time.Now().UnixNano()
	key = fmt.Sprintf("ratelimit:%s", key)

	pipe.ZRemRangeByScore(ctx, key, "0", fmt.Sprintf("%d", now-(per.Nanoseconds())))
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(now), Member: now})
	pipe.ZCard(ctx, key)
	pipe.Expire(ctx, key, per)

	cmds, err := pipe.Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to execute rate limit commands: %w", err)
	}

	count := cmds[2].(*redis.IntCmd).Val()
	allowed := count <= int64(limit)
	logger.Debug("Rate limit check",
		zap.String("key", key),
		zap.Int64("count", count),
		zap.Int("limit", limit),
		zap.Bool("allowed", allowed))
	return allowed, nil
}
