// Package cache memoizes C1 syntax-validation outcomes in Redis.
// Submissions are frequently re-validated (a resubmission after a
// cosmetic edit, a retry from a flaky caller) and parsing is pure and
// keyed entirely on the source text, so the result is safe to cache by
// content hash with a TTL. The cache lives in Redis rather than in a
// single process's memory because cmd/queueconsumer can run several
// execution-core processes against the same queue.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/practiceraptor/execcore/internal/obslog"
	"github.com/practiceraptor/execcore/internal/validator"
	"github.com/practiceraptor/execcore/pkg/constants"
	"github.com/practiceraptor/execcore/pkg/fault"
)

const keyPrefix = "execcore:syntax:"

// SyntaxCache validates source, reusing a prior result when the same
// source text was already validated within the TTL.
type SyntaxCache interface {
	ValidateSyntax(ctx context.Context, source string) *fault.Fault
}

type redisCache struct {
	client *redis.Client
	logger *zap.SugaredLogger
}

// New builds a SyntaxCache backed by the given Redis client.
func New(client *redis.Client) SyntaxCache {
	return &redisCache{client: client, logger: obslog.NewNamedLogger("cache")}
}

func (c *redisCache) ValidateSyntax(ctx context.Context, source string) *fault.Fault {
	key := keyPrefix + c.hash(source)

	if cached, ok := c.get(ctx, key); ok {
		c.logger.Debugf("syntax cache hit")
		return cached
	}

	f := validator.ValidateSyntax(source)
	c.set(ctx, key, f)
	return f
}

// entryWire is the JSON shape stored in Redis: a present fault means
// invalid source, an absent one means it validated cleanly.
type entryWire struct {
	Fault *fault.Fault `json:"fault,omitempty"`
}

func (c *redisCache) get(ctx context.Context, key string) (*fault.Fault, bool) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warnf("syntax cache read failed, falling back to direct validation: %v", err)
		}
		return nil, false
	}

	var wire entryWire
	if err := json.Unmarshal(data, &wire); err != nil {
		c.logger.Warnf("syntax cache entry unreadable, falling back to direct validation: %v", err)
		return nil, false
	}
	return wire.Fault, true
}

func (c *redisCache) set(ctx context.Context, key string, f *fault.Fault) {
	data, err := json.Marshal(entryWire{Fault: f})
	if err != nil {
		c.logger.Warnf("failed to encode syntax cache entry: %v", err)
		return
	}
	if err := c.client.Set(ctx, key, data, constants.CacheTTL).Err(); err != nil {
		c.logger.Warnf("failed to write syntax cache entry: %v", err)
	}
}

func (c *redisCache) hash(source string) string {
	sum := sha256.Sum256([]byte(source))
	return hex.EncodeToString(sum[:])
}
