package lifecycle

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Meta maps lifecycle states to an auxiliary value (a sort weight, an icon
// key, a display label) with a defined fallback so lookups stay total.
type Meta[S ~string, V any] struct {
	values   map[S]V
	fallback V
}

// NewMeta copies the given table and records the fallback returned for
// states absent from it.
func NewMeta[S ~string, V any](values map[S]V, fallback V) Meta[S, V] {
	copied := make(map[S]V, len(values))
	for k, v := range values {
		copied[k] = v
	}
	return Meta[S, V]{values: copied, fallback: fallback}
}

// Get returns the value for s, or the fallback when s is unknown.
func (m Meta[S, V]) Get(s S) V {
	if v, ok := m.values[s]; ok {
		return v
	}
	return m.fallback
}

// Lookup returns the value for s and whether it was present in the table.
func (m Meta[S, V]) Lookup(s S) (V, bool) {
	v, ok := m.values[s]
	if !ok {
		return m.fallback, false
	}
	return v, true
}

var titleCaser = cases.Title(language.English)

// Humanize renders a raw state token as a display string: underscores become
// spaces and each word is title-cased ("in_progress" -> "In Progress").
// Used as the display fallback for states without an explicit label.
func Humanize[S ~string](s S) string {
	return titleCaser.String(strings.ReplaceAll(string(s), "_", " "))
}
