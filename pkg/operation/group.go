package operation

import (
	"sort"
	"time"
)

// GroupKey buckets operations by the expiration of their first leg.
type GroupKey string

// NoExpiry is the group of operations without legs.
const NoExpiry GroupKey = "N/A"

// KeyFor derives the group an operation belongs to.
func KeyFor(op Operation) GroupKey {
	if len(op.Legs) == 0 || op.Legs[0].Expiration.IsZero() {
		return NoExpiry
	}
	return GroupKey(op.Legs[0].Expiration.String())
}

// Date returns the calendar date of the key, false for NoExpiry or malformed keys.
func (k GroupKey) Date() (time.Time, bool) {
	d, err := ParseDate(string(k))
	if err != nil {
		return time.Time{}, false
	}
	return d.Time, true
}

// SortKeys orders keys ascending. ISO dates sort chronologically as strings
// and NoExpiry sorts after every date.
func SortKeys(keys []GroupKey) {
	sort.Slice(keys, func(i, j int) bool {
		return keys[i] < keys[j]
	})
}
