// Package ordering sorts catalog entities that carry a mandatory name and
// an optional creation time.
package ordering

import (
	"sort"
	"strings"
	"time"
)

// Entity is anything sortable by the time-or-name rule.
type Entity interface {
	OrderingName() string
	OrderingTime() *time.Time
}

// Compare orders two entities by time ascending when both carry one, and by
// name otherwise. Entities are not guaranteed to have a time present, but
// are guaranteed to have a name; when either side misses its time the whole
// comparison falls back to names, not just the missing side. Across a set
// with sparse times this is not a strict weak ordering; callers get a
// stable display order, nothing stronger.
func Compare(a, b Entity) int {
	t1, t2 := a.OrderingTime(), b.OrderingTime()
	if t1 != nil && t2 != nil {
		return t1.Compare(*t2)
	}
	return strings.Compare(a.OrderingName(), b.OrderingName())
}

// SortedNames sorts the entities by Compare and returns their names.
func SortedNames[T Entity](entities []T) []string {
	sorted := make([]T, len(entities))
	copy(sorted, entities)
	sort.SliceStable(sorted, func(i, j int) bool {
		return Compare(sorted[i], sorted[j]) < 0
	})
	names := make([]string, len(sorted))
	for i, e := range sorted {
		names[i] = e.OrderingName()
	}
	return names
}
