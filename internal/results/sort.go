package results

import (
	"fmt"
	"math"
	"slices"

	"github.com/runger/tubedash/internal/timefmt"
)

// SortField names a sortable record column.
type SortField string

const (
	SortPublishedAt      SortField = "publishedAt"
	SortDurationSec      SortField = "durationSec"
	SortViewCount        SortField = "viewCount"
	SortLikeCount        SortField = "likeCount"
	SortPerformanceRatio SortField = "performanceRatio"
)

// SortFields lists the sortable columns in table order.
var SortFields = []SortField{
	SortPublishedAt,
	SortDurationSec,
	SortViewCount,
	SortLikeCount,
	SortPerformanceRatio,
}

// ParseSortField validates a sort field name.
func ParseSortField(s string) (SortField, error) {
	for _, f := range SortFields {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("invalid sort field %q", s)
}

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Flip returns the opposite direction.
func (d Direction) Flip() Direction {
	if d == Asc {
		return Desc
	}
	return Asc
}

// Arrow renders the direction as a header marker.
func (d Direction) Arrow() string {
	if d == Asc {
		return "▲"
	}
	return "▼"
}

// SortState is the active sort column and direction.
type SortState struct {
	Field     SortField `json:"field"`
	Direction Direction `json:"direction"`
}

// DefaultSort is applied after every completed search.
var DefaultSort = SortState{Field: SortPerformanceRatio, Direction: Desc}

// Sort returns a stably sorted copy of records. Records with no value for
// field always come last, in either direction.
func Sort(records []Record, field SortField, dir Direction) []Record {
	out := slices.Clone(records)
	mul := 1
	if dir == Desc {
		mul = -1
	}
	slices.SortStableFunc(out, func(a, b Record) int {
		va, aok := sortValue(a, field)
		vb, bok := sortValue(b, field)
		switch {
		case !aok && !bok:
			return 0
		case !aok:
			return 1
		case !bok:
			return -1
		case va < vb:
			return -mul
		case va > vb:
			return mul
		}
		return 0
	})
	return out
}

// sortValue extracts the numeric key for field. ok is false for nil, NaN and
// unparsable timestamps.
func sortValue(r Record, field SortField) (v float64, ok bool) {
	switch field {
	case SortPublishedAt:
		t, ok := timefmt.ParseTimestamp(r.PublishedAt)
		if !ok {
			return 0, false
		}
		return float64(t.UnixMilli()), true
	case SortDurationSec:
		return intValue(r.DurationSec)
	case SortViewCount:
		return intValue(r.ViewCount)
	case SortLikeCount:
		return intValue(r.LikeCount)
	case SortPerformanceRatio:
		if r.PerformanceRatio == nil || math.IsNaN(*r.PerformanceRatio) {
			return 0, false
		}
		return *r.PerformanceRatio, true
	}
	return 0, false
}

func intValue(p *int64) (float64, bool) {
	if p == nil {
		return 0, false
	}
	return float64(*p), true
}
