// Package cache stores analysis snapshots in Redis so repeated requests over
// unchanged inputs skip recomputation.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/iwvelando/pnl-analysis/internal/analysis"
	"github.com/iwvelando/pnl-analysis/internal/ledger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// KeyPrefix namespaces every cached snapshot.
const KeyPrefix = "pnl:analysis:"

// Options configures the Redis connection.
type Options struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// Redis caches analysis results keyed by a digest of their inputs.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewClient builds a go-redis client from opts.
func NewClient(opts Options) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
}

// NewRedis wraps client. A non-positive ttl keeps entries until evicted.
func NewRedis(client *redis.Client, ttl time.Duration, logger *zap.Logger) *Redis {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl < 0 {
		ttl = 0
	}
	return &Redis{client: client, ttl: ttl, logger: logger}
}

// Key digests the analysis inputs. Map keys are serialized in sorted order,
// so equal inputs always produce the same key.
func Key(pl ledger.PLData, hc ledger.HeadcountData, months []string) (string, error) {
	payload, err := json.Marshal(struct {
		PL        ledger.PLData        `json:"pl"`
		Headcount ledger.HeadcountData `json:"headcount"`
		Months    []string             `json:"months"`
	}{pl, hc, months})
	if err != nil {
		return "", fmt.Errorf("encode cache key: %w", err)
	}
	sum := sha256.Sum256(payload)
	return KeyPrefix + hex.EncodeToString(sum[:]), nil
}

// Get returns the snapshot stored under key. ok is false on a miss.
func (r *Redis) Get(ctx context.Context, key string) (*analysis.Result, bool, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", key, err)
	}
	var result analysis.Result
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, false, fmt.Errorf("decode %s: %w", key, err)
	}
	return &result, true, nil
}

// Set stores result under key with the configured TTL.
func (r *Redis) Set(ctx context.Context, key string, result *analysis.Result) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Analyze returns the cached snapshot for the inputs, computing and storing
// it on a miss. Cache failures are logged and the result is computed
// directly.
func (r *Redis) Analyze(ctx context.Context, pl ledger.PLData, hc ledger.HeadcountData, months []string) *analysis.Result {
	key, err := Key(pl, hc, months)
	if err != nil {
		r.logger.Warn("failed to build cache key",
			zap.String("op", "cache.Analyze"),
			zap.Error(err),
		)
		return analysis.Run(pl, hc, months)
	}

	cached, ok, err := r.Get(ctx, key)
	if err != nil {
		r.logger.Warn("cache lookup failed",
			zap.String("op", "cache.Analyze"),
			zap.Error(err),
		)
	}
	if ok {
		r.logger.Debug("cache hit",
			zap.String("op", "cache.Analyze"),
			zap.String("key", key),
		)
		return cached
	}

	result := analysis.Run(pl, hc, months)
	if err == nil {
		if setErr := r.Set(ctx, key, result); setErr != nil {
			r.logger.Warn("cache store failed",
				zap.String("op", "cache.Analyze"),
				zap.Error(setErr),
			)
		}
	}
	return result
}
