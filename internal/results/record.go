// Package results holds the normalized per-video record and the pure filter
// and sort functions that derive the dashboard projection from it.
package results

// WatchURLPrefix is the canonical watch-page URL prefix for a video id.
const WatchURLPrefix = "https://www.youtube.com/watch?v="

// Record is one enriched search result. Records are built once by the
// enrichment pipeline and never mutated; nil pointer fields mean the value
// is unknown upstream.
type Record struct {
	VideoID          string   `json:"videoId"`
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	Tags             []string `json:"tags"`
	ChannelID        string   `json:"channelId,omitempty"`
	ChannelTitle     string   `json:"channelTitle"`
	SubscriberCount  *int64   `json:"subscriberCount"`
	PublishedAt      string   `json:"publishedAt"`
	DurationSec      *int64   `json:"durationSec"`
	DurationHMS      string   `json:"durationHMS"`
	ViewCount        *int64   `json:"viewCount"`
	LikeCount        *int64   `json:"likeCount"`
	PerformanceRatio *float64 `json:"performanceRatio"`
	PerformanceLevel *int     `json:"performanceLevel"`
	Thumbnail        string   `json:"thumbnail"`
}

// WatchURL returns the watch-page URL for the record's video.
func (r Record) WatchURL() string {
	return WatchURLPrefix + r.VideoID
}
