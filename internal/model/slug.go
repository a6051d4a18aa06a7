package model

import "github.com/gosimple/slug"

// Slugify derives a URL-safe identifier from a display name:
// transliterated to Latin, lowercased, whitespace collapsed to single
// hyphens, everything else stripped. Applying it to its own output is a
// no-op.
func Slugify(name string) string {
	return slug.Make(name)
}
