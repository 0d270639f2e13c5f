package recipes

import (
	"iter"
	"strings"

	"github.com/KRoses96/Neverita/internal/storage"
)

// FilterByName returns a lazy sequence of the recipes whose name
// contains query, compared case-insensitively. An empty query matches
// everything. The sequence can be ranged over more than once; each
// pass re-scans the slice, so it observes the slice as it was when
// FilterByName was called.
func FilterByName(recipes []storage.Recipe, query string) iter.Seq[storage.Recipe] {
	needle := strings.ToLower(strings.TrimSpace(query))
	return func(yield func(storage.Recipe) bool) {
		for _, r := range recipes {
			if needle != "" && !strings.Contains(strings.ToLower(r.Name), needle) {
				continue
			}
			if !yield(r) {
				return
			}
		}
	}
}
