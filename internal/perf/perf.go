// Package perf derives the channel-relative performance metric: views divided
// by the owning channel's subscriber count, bucketed into five levels.
package perf

import (
	"fmt"
	"math"
)

// Levels lists every performance level in ascending order.
var Levels = []int{1, 2, 3, 4, 5}

// thresholds are exclusive upper bounds for levels 1-4; anything at or above
// the last bound is level 5.
var thresholds = [...]float64{0.3, 0.9, 1.5, 5}

// Ratio returns views/subscribers, or nil when either value is unknown or
// the channel reports no subscribers.
func Ratio(views, subscribers *int64) *float64 {
	if views == nil || subscribers == nil || *subscribers <= 0 {
		return nil
	}
	r := float64(*views) / float64(*subscribers)
	return &r
}

// Classify maps a ratio to its level (1-5). Nil and non-finite ratios have
// no level.
func Classify(ratio *float64) *int {
	if ratio == nil || math.IsNaN(*ratio) || math.IsInf(*ratio, 0) {
		return nil
	}
	level := len(thresholds) + 1
	for i, bound := range thresholds {
		if *ratio < bound {
			level = i + 1
			break
		}
	}
	return &level
}

// ValidLevel reports whether n is a known level.
func ValidLevel(n int) bool {
	return n >= 1 && n <= len(thresholds)+1
}

// Label renders a ratio/level pair the way the dashboard shows it, e.g.
// "2.00 (Lv.4)", or "N/A" when there is no ratio.
func Label(ratio *float64, level *int) string {
	if ratio == nil || level == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.2f (Lv.%d)", *ratio, *level)
}
