package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	ArticleSlugKeyPrefix     = "article:slug:%s"
	ProfileKeyPrefix         = "profile:%s"
	ProfileUsernameKeyPrefix = "profile:username:%s"
)

// DefaultTTL applies until Configure sets CACHE_TTL_SECONDS.
const DefaultTTL = 30 * time.Second

var ttl = DefaultTTL

// Configure sets the TTL used for every cached entry. Non-positive values
// keep the default.
func Configure(seconds int) {
	if seconds > 0 {
		ttl = time.Duration(seconds) * time.Second
		return
	}
	ttl = DefaultTTL
}

// TTL returns the configured entry lifetime.
func TTL() time.Duration {
	return ttl
}

func ArticleSlugKey(slug string) string {
	return fmt.Sprintf(ArticleSlugKeyPrefix, slug)
}

func ProfileKey(id string) string {
	return fmt.Sprintf(ProfileKeyPrefix, id)
}

func ProfileUsernameKey(username string) string {
	return fmt.Sprintf(ProfileUsernameKeyPrefix, username)
}

// Invalidate deletes keys, ignoring errors; stale entries expire with the TTL.
func Invalidate(ctx context.Context, keys ...string) {
	if client == nil || len(keys) == 0 {
		return
	}
	client.Del(ctx, keys...)
}

func InvalidateArticle(ctx context.Context, slug string) {
	Invalidate(ctx, ArticleSlugKey(slug))
}

func InvalidateProfile(ctx context.Context, id, username string) {
	Invalidate(ctx, ProfileKey(id), ProfileUsernameKey(username))
}
