package youtube

import (
	"fmt"
	"strconv"
)

// Order is a search result ordering accepted by search.list.
type Order string

const (
	OrderRelevance Order = "relevance"
	OrderDate      Order = "date"
	OrderViewCount Order = "viewCount"
	OrderRating    Order = "rating"
	OrderTitle     Order = "title"
)

// Orders lists the supported orderings in the order the UI cycles them.
var Orders = []Order{OrderRelevance, OrderDate, OrderViewCount, OrderRating, OrderTitle}

// ParseOrder validates an ordering name. Empty means relevance.
func ParseOrder(s string) (Order, error) {
	if s == "" {
		return OrderRelevance, nil
	}
	for _, o := range Orders {
		if string(o) == s {
			return o, nil
		}
	}
	return "", fmt.Errorf("invalid order %q (must be relevance, date, viewCount, rating, or title)", s)
}

// --- search.list ---

type searchResponse struct {
	Items []SearchHit `json:"items"`
}

// SearchHit is one search.list item. Only the ids survive enrichment.
type SearchHit struct {
	ID struct {
		VideoID string `json:"videoId"`
	} `json:"id"`
	Snippet struct {
		ChannelID string `json:"channelId"`
	} `json:"snippet"`
}

// --- videos.list ---

type videosResponse struct {
	Items []VideoDetail `json:"items"`
}

// Thumbnail is a single thumbnail rendition.
type Thumbnail struct {
	URL string `json:"url"`
}

// VideoDetail is one videos.list item with snippet, statistics and
// contentDetails parts.
type VideoDetail struct {
	ID      string `json:"id"`
	Snippet struct {
		Title        string               `json:"title"`
		Description  string               `json:"description"`
		ChannelID    string               `json:"channelId"`
		ChannelTitle string               `json:"channelTitle"`
		PublishedAt  string               `json:"publishedAt"`
		Tags         []string             `json:"tags"`
		Thumbnails   map[string]Thumbnail `json:"thumbnails"`
	} `json:"snippet"`
	Statistics struct {
		ViewCount string `json:"viewCount"`
		LikeCount string `json:"likeCount"`
	} `json:"statistics"`
	ContentDetails struct {
		Duration string `json:"duration"`
	} `json:"contentDetails"`
}

// --- channels.list ---

type channelsResponse struct {
	Items []ChannelStat `json:"items"`
}

// ChannelStat is one channels.list item with the statistics part.
type ChannelStat struct {
	ID         string `json:"id"`
	Statistics struct {
		SubscriberCount string `json:"subscriberCount"`
	} `json:"statistics"`
}

// ParseCount converts a statistics counter, which the API encodes as a
// decimal string, into an integer. Missing, negative or non-numeric values
// yield nil.
func ParseCount(s string) *int64 {
	if s == "" {
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return nil
	}
	return &n
}
