// Package export serializes result records to CSV.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/runger/tubedash/internal/results"
)

// Filename is the default export file name.
const Filename = "youtube_results.csv"

// Header is the fixed column order of every export.
var Header = []string{
	"videoId",
	"title",
	"description",
	"tags",
	"channelTitle",
	"subscriberCount",
	"publishedAt",
	"duration",
	"durationSec",
	"viewCount",
	"likeCount",
	"performanceRatio",
	"performanceLevel",
	"url",
	"thumbnail",
}

// TagSeparator joins a record's tags into one field.
const TagSeparator = "|"

// WriteCSV writes the header and one row per record, in the order given.
// Rows are separated by "\n" with no trailing newline; unknown values are
// empty fields.
func WriteCSV(w io.Writer, records []results.Record) error {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range records {
		if err := cw.Write(Row(r)); err != nil {
			return fmt.Errorf("write row %s: %w", r.VideoID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}

	if _, err := w.Write(bytes.TrimSuffix(buf.Bytes(), []byte("\n"))); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// Row renders one record in Header order.
func Row(r results.Record) []string {
	return []string{
		r.VideoID,
		r.Title,
		r.Description,
		strings.Join(r.Tags, TagSeparator),
		r.ChannelTitle,
		formatInt(r.SubscriberCount),
		r.PublishedAt,
		r.DurationHMS,
		formatInt(r.DurationSec),
		formatInt(r.ViewCount),
		formatInt(r.LikeCount),
		formatFloat(r.PerformanceRatio),
		formatLevel(r.PerformanceLevel),
		r.WatchURL(),
		r.Thumbnail,
	}
}

func formatInt(p *int64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatInt(*p, 10)
}

func formatFloat(p *float64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatFloat(*p, 'f', -1, 64)
}

func formatLevel(p *int) string {
	if p == nil {
		return ""
	}
	return strconv.Itoa(*p)
}
