// Package tag holds the ordered, duplicate-free label lists used for post tags and profile skills.
package tag

import "strings"

// Set is an ordered list of labels. Insertion order is preserved and a label is never stored twice.
type Set []string

// Normalize trims every entry, drops blanks and keeps only the first occurrence of each label.
func Normalize(labels []string) Set {
	return Set(nil).Add(labels...)
}

// Add appends labels that are not already present. The receiver is not modified.
func (s Set) Add(labels ...string) Set {
	out := make(Set, 0, len(s)+len(labels))
	seen := make(map[string]struct{}, len(s)+len(labels))
	appendOne := func(l string) {
		l = strings.TrimSpace(l)
		if l == "" {
			return
		}
		if _, dup := seen[l]; dup {
			return
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	for _, l := range s {
		appendOne(l)
	}
	for _, l := range labels {
		appendOne(l)
	}
	return out
}

// Remove drops a label if present.
func (s Set) Remove(label string) Set {
	label = strings.TrimSpace(label)
	out := make(Set, 0, len(s))
	for _, l := range s {
		if l != label {
			out = append(out, l)
		}
	}
	return out
}

func (s Set) Contains(label string) bool {
	label = strings.TrimSpace(label)
	for _, l := range s {
		if l == label {
			return true
		}
	}
	return false
}

// Merge is the union used when AI suggestions arrive: existing labels keep their order as a
// prefix and suggested labels follow in response order.
func Merge(existing, suggested []string) Set {
	return Normalize(existing).Add(suggested...)
}

// Slug lowercases a label and joins words with hyphens, for feed categories and URLs.
func Slug(label string) string {
	return strings.ToLower(strings.Join(strings.Fields(label), "-"))
}
