package evidence

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/itsatony/mediabase-sub001/internal/domain"
)

// bundleKeyPrefix namespaces evidence keys in a shared Redis.
const bundleKeyPrefix = "mediabase:evidence:"

// CachedProvider wraps a bundle provider with a Redis read-through cache.
// Cache failures degrade to direct fetches; they are logged, never fatal.
type CachedProvider struct {
	inner      Provider
	redis      *redis.Client
	defaultTTL time.Duration
	logger     *logrus.Logger
}

// Provider is the fetch interface CachedProvider can wrap.
type Provider interface {
	FetchBundle(ctx context.Context, subject string) (*domain.EvidenceBundle, error)
}

// cachedBundle carries expiry metadata alongside the bundle.
type cachedBundle struct {
	Bundle    *domain.EvidenceBundle `json:"bundle"`
	CachedAt  time.Time              `json:"cached_at"`
	ExpiresAt time.Time              `json:"expires_at"`
}

// NewCachedProvider creates a read-through cache around an inner provider.
func NewCachedProvider(inner Provider, config domain.CacheConfig, logger *logrus.Logger) (*CachedProvider, error) {
	opts, err := redis.ParseURL(config.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	opts.PoolSize = config.PoolSize
	opts.PoolTimeout = config.PoolTimeout
	opts.MaxRetries = config.MaxRetries

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	ttl := config.DefaultTTL
	if ttl == 0 {
		ttl = 24 * time.Hour
	}

	return &CachedProvider{
		inner:      inner,
		redis:      client,
		defaultTTL: ttl,
		logger:     logger,
	}, nil
}

// FetchBundle returns a cached bundle when fresh, otherwise fetches and
// caches.
func (p *CachedProvider) FetchBundle(ctx context.Context, subject string) (*domain.EvidenceBundle, error) {
	key := bundleKeyPrefix + subject

	val, err := p.redis.Get(ctx, key).Result()
	if err == nil {
		var cached cachedBundle
		if jsonErr := json.Unmarshal([]byte(val), &cached); jsonErr == nil {
			if time.Now().Before(cached.ExpiresAt) {
				p.logger.WithField("subject", subject).Debug("Evidence cache hit")
				return cached.Bundle, nil
			}
		}
		// Corrupted or expired entry
		p.redis.Del(ctx, key)
	} else if err != redis.Nil {
		p.logger.WithError(err).WithField("subject", subject).Warn("Evidence cache read failed")
	}

	bundle, err := p.inner.FetchBundle(ctx, subject)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(cachedBundle{
		Bundle:    bundle,
		CachedAt:  time.Now().UTC(),
		ExpiresAt: time.Now().UTC().Add(p.defaultTTL),
	})
	if err == nil {
		if setErr := p.redis.Set(ctx, key, payload, p.defaultTTL).Err(); setErr != nil {
			p.logger.WithError(setErr).WithField("subject", subject).Warn("Evidence cache write failed")
		}
	}

	return bundle, nil
}

// Invalidate drops a subject's cached bundle.
func (p *CachedProvider) Invalidate(ctx context.Context, subject string) error {
	return p.redis.Del(ctx, bundleKeyPrefix+subject).Err()
}

// Close releases the Redis connection.
func (p *CachedProvider) Close() error {
	return p.redis.Close()
}
