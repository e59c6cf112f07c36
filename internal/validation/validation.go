// Package validation checks user-chosen identifiers that end up in URLs.
package validation

import (
	"fmt"
	"regexp"
)

// MaxSlugLen matches the articles.slug column.
const MaxSlugLen = 255

var usernameRegex = regexp.MustCompile(`^[a-z0-9_]{3,30}$`)

var reservedUsernames = map[string]struct{}{
	"admin":    {},
	"api":      {},
	"me":       {},
	"new":      {},
	"settings": {},
	"profiles": {},
	"articles": {},
	"swagger":  {},
	"metrics":  {},
	"ws":       {},
	"login":    {},
	"signup":   {},
}

// Article slugs that would collide with fixed /api/articles/* routes.
var reservedArticleSlugs = map[string]struct{}{
	"search": {},
	"tag":    {},
}

// ValidateUsername validates username format and reserved names.
func ValidateUsername(username string) error {
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("username must be 3-30 characters and contain only lowercase letters, numbers, and underscores")
	}

	if _, exists := reservedUsernames[username]; exists {
		return fmt.Errorf("username is reserved")
	}

	return nil
}

// ValidateArticleSlug rejects empty slugs and slugs shadowed by routes.
// Format is guaranteed by content.Slugify.
func ValidateArticleSlug(slug string) error {
	if slug == "" {
		return fmt.Errorf("title must contain at least one letter or digit")
	}
	if len(slug) > MaxSlugLen {
		return fmt.Errorf("slug is too long (max %d characters)", MaxSlugLen)
	}
	if _, exists := reservedArticleSlugs[slug]; exists {
		return fmt.Errorf("slug %q is reserved", slug)
	}
	return nil
}
