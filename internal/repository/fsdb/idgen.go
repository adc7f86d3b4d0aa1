package fsdb

import (
	"strconv"
	"sync"
	"time"
)

// idGenerator produces time-derived, strictly increasing article ids.
// Ids are millisecond timestamps rendered as decimal strings; when two
// creations land in the same millisecond (or the clock steps backwards) the
// value is bumped past the last one handed out, so uniqueness never depends
// on the wall clock alone.
type idGenerator struct {
	mu   sync.Mutex
	last int64
}

// newIDGenerator seeds the generator so the next id is greater than seed.
// Seeding with the highest id already on disk keeps ids unique across
// process restarts.
func newIDGenerator(seed int64) *idGenerator {
	return &idGenerator{last: seed}
}

func (g *idGenerator) next(now time.Time) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	millis := now.UnixMilli()
	if millis <= g.last {
		millis = g.last + 1
	}
	g.last = millis
	return strconv.FormatInt(millis, 10)
}

// isRecordID reports whether s has the shape of a generated id (a non-empty
// decimal string). Anything else cannot name a record file.
func isRecordID(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// compareIDs orders two generated ids numerically without parsing; a longer
// decimal string is always the larger number.
func compareIDs(a, b string) int {
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
