// Package render formats dashboard snapshots as text for headless output
// and provides the cell formatters shared with the interactive view.
package render

import (
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/runger/tubedash/internal/perf"
	"github.com/runger/tubedash/internal/results"
	"github.com/runger/tubedash/internal/textutil"
	"github.com/runger/tubedash/internal/timefmt"
)

// Missing is shown for unknown values.
const Missing = "-"

// Count renders a counter with thousands separators, or Missing.
func Count(n *int64) string {
	if n == nil {
		return Missing
	}
	return humanize.Comma(*n)
}

// Date renders an RFC 3339 timestamp as a local-independent calendar date.
func Date(s string) string {
	t, ok := timefmt.ParseTimestamp(s)
	if !ok {
		return Missing
	}
	return t.UTC().Format("2006-01-02")
}

// DateTime renders an RFC 3339 timestamp to the minute in UTC.
func DateTime(s string) string {
	t, ok := timefmt.ParseTimestamp(s)
	if !ok {
		return Missing
	}
	return t.UTC().Format("2006-01-02 15:04")
}

// Performance renders the ratio and level, e.g. "2.00 (Lv.4)".
func Performance(r results.Record) string {
	return perf.Label(r.PerformanceRatio, r.PerformanceLevel)
}

// Tags renders up to limit tags as "#a #b". A non-positive limit shows all.
func Tags(tags []string, limit int) string {
	if limit > 0 && len(tags) > limit {
		tags = tags[:limit]
	}
	parts := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = textutil.Clean(t); t != "" {
			parts = append(parts, "#"+t)
		}
	}
	return strings.Join(parts, " ")
}

// Channel renders "Title (12,345 subs)".
func Channel(r results.Record) string {
	title := textutil.Clean(r.ChannelTitle)
	if title == "" {
		title = Missing
	}
	return title + " (" + Count(r.SubscriberCount) + " subs)"
}

// Column describes one table column.
type Column struct {
	Title string
	Width int
	Sort  results.SortField // empty when the column is not sortable
	Right bool
}

// Columns is the table layout shared by the text and interactive tables.
var Columns = []Column{
	{Title: "Title", Width: 40},
	{Title: "Channel", Width: 24},
	{Title: "Published", Width: 16, Sort: results.SortPublishedAt},
	{Title: "Length", Width: 8, Sort: results.SortDurationSec, Right: true},
	{Title: "Views", Width: 13, Sort: results.SortViewCount, Right: true},
	{Title: "Likes", Width: 11, Sort: results.SortLikeCount, Right: true},
	{Title: "Performance", Width: 14, Sort: results.SortPerformanceRatio, Right: true},
	{Title: "Tags", Width: 30},
}

// HeaderTitle returns the column title with the sort arrow when active.
func HeaderTitle(c Column, st results.SortState) string {
	if c.Sort != "" && c.Sort == st.Field {
		return c.Title + " " + st.Direction.Arrow()
	}
	return c.Title
}

// Cells renders a record in Columns order, unpadded.
func Cells(r results.Record, tagLimit int) []string {
	return []string{
		textutil.Clean(r.Title),
		Channel(r),
		DateTime(r.PublishedAt),
		r.DurationHMS,
		Count(r.ViewCount),
		Count(r.LikeCount),
		Performance(r),
		Tags(r.Tags, tagLimit),
	}
}
