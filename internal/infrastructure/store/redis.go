package store

import (
	"context"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"

	"github.com/mvickers/leaguedesk/internal/platform/logging"
	"github.com/mvickers/leaguedesk/internal/platform/resilience"
)

// RedisConfig carries connection settings for the Redis-backed KV.
type RedisConfig struct {
	Addr           string
	Password       string
	DB             int
	CircuitBreaker resilience.CircuitBreakerConfig
}

// RedisKV implements KV on go-redis. All I/O failures are wrapped and
// marked ErrUnavailable; WRONGTYPE replies become ErrWrongType so the codec
// can fall through to the next candidate shape.
type RedisKV struct {
	client         *redis.Client
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
}

func NewRedisKV(cfg RedisConfig, logger *logging.Logger) *RedisKV {
	if logger == nil {
		logger = logging.Default()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		logger.Warn("unable to reach redis", "addr", cfg.Addr, "error", err)
	} else {
		logger.Info("connected to redis", "addr", cfg.Addr)
	}

	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &RedisKV{
		client:         client,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

func (r *RedisKV) Close() error {
	if r == nil || r.client == nil {
		return nil
	}
	return r.client.Close()
}

func (r *RedisKV) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return crerr.Mark(crerr.Wrap(err, "redis ping"), ErrUnavailable)
	}
	return nil
}

func (r *RedisKV) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.do(ctx, func() error {
		var innerErr error
		value, innerErr = r.client.Get(ctx, key).Result()
		return innerErr
	})
	if err != nil {
		if crerr.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, r.classify(err, "redis get %s", key)
	}
	return value, true, nil
}

func (r *RedisKV) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	err := r.do(ctx, func() error {
		return r.client.Set(ctx, key, value, ttl).Err()
	})
	if err != nil {
		return r.classify(err, "redis set %s", key)
	}
	return nil
}

func (r *RedisKV) Delete(ctx context.Context, key string) error {
	err := r.do(ctx, func() error {
		return r.client.Del(ctx, key).Err()
	})
	if err != nil {
		return r.classify(err, "redis del %s", key)
	}
	return nil
}

func (r *RedisKV) SetMembers(ctx context.Context, key string) ([]string, bool, error) {
	var members []string
	err := r.do(ctx, func() error {
		var innerErr error
		members, innerErr = r.client.SMembers(ctx, key).Result()
		return innerErr
	})
	if err != nil {
		return nil, false, r.classify(err, "redis smembers %s", key)
	}
	if len(members) == 0 {
		// SMEMBERS cannot distinguish an empty set from a missing key.
		var exists int64
		existsErr := r.do(ctx, func() error {
			var innerErr error
			exists, innerErr = r.client.Exists(ctx, key).Result()
			return innerErr
		})
		if existsErr != nil {
			return nil, false, r.classify(existsErr, "redis exists %s", key)
		}
		if exists == 0 {
			return nil, false, nil
		}
	}
	return members, true, nil
}

func (r *RedisKV) AddToSet(ctx context.Context, key string, members ...string) error {
	if len(members) == 0 {
		return nil
	}
	args := make([]any, 0, len(members))
	for _, m := range members {
		args = append(args, m)
	}
	err := r.do(ctx, func() error {
		return r.client.SAdd(ctx, key, args...).Err()
	})
	if err != nil {
		return r.classify(err, "redis sadd %s", key)
	}
	return nil
}

func (r *RedisKV) RemoveFromSet(ctx context.Context, key string, members ...string) error {
	if len(members) == 0 {
		return nil
	}
	args := make([]any, 0, len(members))
	for _, m := range members {
		args = append(args, m)
	}
	err := r.do(ctx, func() error {
		return r.client.SRem(ctx, key, args...).Err()
	})
	if err != nil {
		return r.classify(err, "redis srem %s", key)
	}
	return nil
}

func (r *RedisKV) ReplaceSet(ctx context.Context, key string, members []string) error {
	err := r.do(ctx, func() error {
		pipe := r.client.TxPipeline()
		pipe.Del(ctx, key)
		if len(members) > 0 {
			args := make([]any, 0, len(members))
			for _, m := range members {
				args = append(args, m)
			}
			pipe.SAdd(ctx, key, args...)
		}
		_, innerErr := pipe.Exec(ctx)
		return innerErr
	})
	if err != nil {
		return r.classify(err, "redis replace set %s", key)
	}
	return nil
}

func (r *RedisKV) HashGetAll(ctx context.Context, key string) (map[string]string, bool, error) {
	var fields map[string]string
	err := r.do(ctx, func() error {
		var innerErr error
		fields, innerErr = r.client.HGetAll(ctx, key).Result()
		return innerErr
	})
	if err != nil {
		return nil, false, r.classify(err, "redis hgetall %s", key)
	}
	if len(fields) == 0 {
		return nil, false, nil
	}
	return fields, true, nil
}

func (r *RedisKV) HashSetAll(ctx context.Context, key string, fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	args := make([]any, 0, len(fields)*2)
	for field, value := range fields {
		args = append(args, field, value)
	}
	err := r.do(ctx, func() error {
		return r.client.HSet(ctx, key, args...).Err()
	})
	if err != nil {
		return r.classify(err, "redis hset %s", key)
	}
	return nil
}

func (r *RedisKV) Incr(ctx context.Context, key string) (int64, error) {
	var value int64
	err := r.do(ctx, func() error {
		var innerErr error
		value, innerErr = r.client.Incr(ctx, key).Result()
		return innerErr
	})
	if err != nil {
		return 0, r.classify(err, "redis incr %s", key)
	}
	return value, nil
}

func (r *RedisKV) Expire(ctx context.Context, key string, ttl time.Duration) error {
	err := r.do(ctx, func() error {
		return r.client.Expire(ctx, key, ttl).Err()
	})
	if err != nil {
		return r.classify(err, "redis expire %s", key)
	}
	return nil
}

func (r *RedisKV) ScanKeys(ctx context.Context, pattern string) ([]string, error) {
	var keys []string
	err := r.do(ctx, func() error {
		iter := r.client.Scan(ctx, 0, pattern, 0).Iterator()
		for iter.Next(ctx) {
			keys = append(keys, iter.Val())
		}
		return iter.Err()
	})
	if err != nil {
		return nil, r.classify(err, "redis scan %s", pattern)
	}
	return keys, nil
}

// do runs one store call through the circuit breaker. redis.Nil and
// WRONGTYPE replies are deliberate outcomes, not dependency failures, so
// they do not count against the breaker.
func (r *RedisKV) do(ctx context.Context, fn func() error) error {
	if !r.circuitEnabled {
		return fn()
	}
	if err := r.breaker.Allow(); err != nil {
		return crerr.Mark(err, ErrUnavailable)
	}
	err := fn()
	if err == nil || crerr.Is(err, redis.Nil) || isWrongTypeReply(err) {
		r.breaker.RecordSuccess()
		return err
	}
	r.breaker.RecordFailure()
	return err
}

func (r *RedisKV) classify(err error, format string, args ...any) error {
	if isWrongTypeReply(err) {
		return ErrWrongType
	}
	if crerr.Is(err, resilience.ErrCircuitOpen) || crerr.Is(err, ErrUnavailable) {
		return err
	}
	return crerr.Mark(crerr.Wrapf(err, format, args...), ErrUnavailable)
}

func isWrongTypeReply(err error) bool {
	return err != nil && strings.HasPrefix(err.Error(), "WRONGTYPE")
}
