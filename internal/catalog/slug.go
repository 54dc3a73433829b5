package catalog

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	// MaxSlugLength is the hard limit on stored slugs.
	MaxSlugLength = 100

	// maxBaseSlugLength leaves room for "-10", the longest collision suffix.
	maxBaseSlugLength = MaxSlugLength - 3

	// slugFallback is used when the source title reduces to nothing.
	slugFallback = "product"

	// MaxSlugRetries bounds the collision-suffix loop on insert.
	MaxSlugRetries = 10
)

var (
	slugPattern  = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	nonSlugRunes = regexp.MustCompile(`[^a-z0-9]+`)

	stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// IsValidSlug reports whether s is an acceptable caller-supplied slug:
// lowercase alphanumerics and hyphens, no edge hyphens, at most 100 chars.
func IsValidSlug(s string) bool {
	return len(s) <= MaxSlugLength && slugPattern.MatchString(s)
}

// Slugify derives a URL-safe base slug from a title: diacritics stripped,
// lowercased, runs of non-alphanumerics collapsed to single hyphens, edge
// hyphens trimmed, truncated so the longest collision suffix still fits.
// An empty result falls back to "product".
func Slugify(title string) string {
	if folded, _, err := transform.String(stripMarks, title); err == nil {
		title = folded
	}

	slug := strings.ToLower(title)
	slug = nonSlugRunes.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")

	if len(slug) > maxBaseSlugLength {
		slug = strings.TrimRight(slug[:maxBaseSlugLength], "-")
	}

	if slug == "" {
		return slugFallback
	}
	return slug
}

// SlugAttempt returns the nth candidate for a base slug: the base itself for
// attempt 0, then "base-1", "base-2", and so on.
func SlugAttempt(base string, attempt int) string {
	if attempt == 0 {
		return base
	}
	return fmt.Sprintf("%s-%d", base, attempt)
}
