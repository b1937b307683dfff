package results

import (
	"fmt"
	"time"

	"github.com/runger/tubedash/internal/timefmt"
)

// ShortsMaxSeconds is the exclusive upper bound on a short's duration.
const ShortsMaxSeconds = 60

// LengthMode restricts records by duration.
type LengthMode string

const (
	LengthAll    LengthMode = "all"
	LengthShorts LengthMode = "shorts"
	LengthLong   LengthMode = "long"
)

// LengthModes lists the modes in the order the UI cycles through them.
var LengthModes = []LengthMode{LengthAll, LengthShorts, LengthLong}

// ParseLengthMode validates a length mode name. Empty means all.
func ParseLengthMode(s string) (LengthMode, error) {
	switch LengthMode(s) {
	case "", LengthAll:
		return LengthAll, nil
	case LengthShorts, LengthLong:
		return LengthMode(s), nil
	default:
		return "", fmt.Errorf("invalid length mode %q (must be all, shorts, or long)", s)
	}
}

// LevelSet is a set of selected performance levels. An empty set imposes no
// restriction.
type LevelSet map[int]struct{}

// NewLevelSet builds a set from the given levels.
func NewLevelSet(levels ...int) LevelSet {
	s := make(LevelSet, len(levels))
	for _, l := range levels {
		s[l] = struct{}{}
	}
	return s
}

// Has reports whether level l is selected.
func (s LevelSet) Has(l int) bool {
	_, ok := s[l]
	return ok
}

// Filter returns the records satisfying every active predicate, in input
// order. after may be nil to disable the date predicate; records whose
// PublishedAt does not parse are dropped when it is set.
func Filter(records []Record, length LengthMode, after *time.Time, levels LevelSet) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if !matchesLength(r, length) {
			continue
		}
		if after != nil && !publishedOnOrAfter(r, *after) {
			continue
		}
		if len(levels) > 0 && (r.PerformanceLevel == nil || !levels.Has(*r.PerformanceLevel)) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func matchesLength(r Record, mode LengthMode) bool {
	switch mode {
	case LengthShorts:
		return r.DurationSec != nil && *r.DurationSec < ShortsMaxSeconds
	case LengthLong:
		return r.DurationSec != nil && *r.DurationSec >= ShortsMaxSeconds
	default:
		return true
	}
}

func publishedOnOrAfter(r Record, boundary time.Time) bool {
	p, ok := timefmt.ParseTimestamp(r.PublishedAt)
	if !ok {
		return false
	}
	return !p.Before(boundary)
}
