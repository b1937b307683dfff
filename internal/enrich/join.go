package enrich

import (
	"github.com/runger/tubedash/internal/perf"
	"github.com/runger/tubedash/internal/results"
	"github.com/runger/tubedash/internal/timefmt"
	"github.com/runger/tubedash/internal/youtube"
)

// thumbnailPreference is the rendition order used to pick a thumbnail.
var thumbnailPreference = []string{"maxres", "standard", "high", "medium", "default"}

// join builds records in search order. A video id with no detail still
// produces a record, with every derived field empty.
func join(ss searchStage, ds detailStage, cs channelStage) []results.Record {
	out := make([]results.Record, 0, len(ss.videoIDs))
	for _, id := range ss.videoIDs {
		out = append(out, buildRecord(id, ds.byID[id], cs.subscribers))
	}
	return out
}

func buildRecord(id string, v youtube.VideoDetail, subscribers map[string]*int64) results.Record {
	duration := timefmt.ParseSeconds(v.ContentDetails.Duration)
	views := youtube.ParseCount(v.Statistics.ViewCount)
	var subs *int64
	if v.Snippet.ChannelID != "" {
		subs = subscribers[v.Snippet.ChannelID]
	}
	ratio := perf.Ratio(views, subs)

	tags := v.Snippet.Tags
	if tags == nil {
		tags = []string{}
	}

	return results.Record{
		VideoID:          id,
		Title:            v.Snippet.Title,
		Description:      v.Snippet.Description,
		Tags:             tags,
		ChannelID:        v.Snippet.ChannelID,
		ChannelTitle:     v.Snippet.ChannelTitle,
		SubscriberCount:  subs,
		PublishedAt:      v.Snippet.PublishedAt,
		DurationSec:      duration,
		DurationHMS:      timefmt.Clock(duration),
		ViewCount:        views,
		LikeCount:        youtube.ParseCount(v.Statistics.LikeCount),
		PerformanceRatio: ratio,
		PerformanceLevel: perf.Classify(ratio),
		Thumbnail:        pickThumbnail(v.Snippet.Thumbnails),
	}
}

func pickThumbnail(thumbs map[string]youtube.Thumbnail) string {
	for _, k := range thumbnailPreference {
		if t, ok := thumbs[k]; ok && t.URL != "" {
			return t.URL
		}
	}
	return ""
}
