package keys

import (
	"path"
	"strings"
)

// Slug lowercases s and collapses every run of characters outside [a-z0-9]
// into a single hyphen, trimming hyphens at both ends.
func Slug(s string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}
	return b.String()
}

// CategoryClass returns the card styling class for a record's first category.
func CategoryClass(categories []string) string {
	if len(categories) == 0 {
		return "category-default"
	}
	return "category-" + Slug(categories[0])
}

// Dataset returns the canonical S3 key for a named dataset.
func Dataset(name string) string {
	name = strings.TrimSuffix(name, path.Ext(name))
	return path.Join("datasets", Slug(name)+".json")
}
