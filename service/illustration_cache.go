package service

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// CachedIllustrationResolver fetches, optimizes and memoizes illustrations as data URIs.
// Concurrent requests for the same name share a single fetch.
type CachedIllustrationResolver struct {
	source       IllustrationSource
	cache        *cache.Cache
	group        singleflight.Group
	fetchTimeout time.Duration
	log          *zap.Logger
}

// DefaultIllustrationFetchTimeout bounds one shared illustration fetch
const DefaultIllustrationFetchTimeout = 30 * time.Second

// Ensure CachedIllustrationResolver implements IllustrationResolver
var _ IllustrationResolver = (*CachedIllustrationResolver)(nil)

// NewCachedIllustrationResolver creates a resolver. ttl <= 0 keeps entries forever.
func NewCachedIllustrationResolver(source IllustrationSource, ttl time.Duration, log *zap.Logger) *CachedIllustrationResolver {
	expiration := ttl
	cleanup := ttl * 2
	if ttl <= 0 {
		expiration = cache.NoExpiration
		cleanup = 0
	}
	return &CachedIllustrationResolver{
		source:       source,
		cache:        cache.New(expiration, cleanup),
		fetchTimeout: DefaultIllustrationFetchTimeout,
		log:          log,
	}
}

// Resolve returns the data URI for an illustration. A shared fetch runs
// detached from any one caller, so canceling ctx only abandons this caller's wait.
func (r *CachedIllustrationResolver) Resolve(ctx context.Context, page int, name string) (string, error) {
	if uri, ok := r.cache.Get(name); ok {
		return uri.(string), nil
	}

	ch := r.group.DoChan(name, func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.fetchTimeout)
		defer cancel()

		raw, err := r.source.Fetch(fetchCtx, name)
		if err != nil {
			return nil, err
		}
		optimized, err := OptimizeImage(r.log, raw, SizePage)
		if err != nil {
			return nil, err
		}
		uri := JPEGDataURI(optimized)
		r.cache.Set(name, uri, cache.DefaultExpiration)
		r.log.Debug("✓ Illustration cached", zap.String("name", name), zap.Int("bytes", len(optimized)))
		return uri, nil
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", illustrationNotFound(page, name, res.Err)
		}
		if res.Shared {
			r.log.Debug("🔁 Illustration fetch shared", zap.String("name", name))
		}
		return res.Val.(string), nil
	}
}

// Flush drops every memoized illustration
func (r *CachedIllustrationResolver) Flush() {
	r.cache.Flush()
}
