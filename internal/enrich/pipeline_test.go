package enrich

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runger/tubedash/internal/youtube"
)

// fakeAPI serves canned responses per path and records every request.
type fakeAPI struct {
	mu       sync.Mutex
	bodies   map[string]string
	statuses map[string]int
	calls    []*http.Request
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.calls = append(f.calls, r)
	status, body := f.statuses[r.URL.Path], f.bodies[r.URL.Path]
	f.mu.Unlock()

	if status != 0 {
		w.WriteHeader(status)
	}
	fmt.Fprint(w, body)
}

func (f *fakeAPI) paths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	for i, r := range f.calls {
		out[i] = r.URL.Path
	}
	return out
}

func (f *fakeAPI) query(i int) url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[i].URL.Query()
}

func newPipeline(t *testing.T, f *fakeAPI) *Pipeline {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return New(youtube.NewClient(youtube.WithBaseURL(srv.URL)), nil)
}

const searchTwo = `{"items":[
  {"id":{"videoId":"v1"},"snippet":{"channelId":"c1"}},
  {"id":{"videoId":"v2"},"snippet":{"channelId":"c1"}},
  {"id":{"videoId":"v3"},"snippet":{"channelId":"c2"}}
]}`

// videos come back out of order and v3 is missing.
const videosTwo = `{"items":[
  {"id":"v2","snippet":{"title":"Second","channelId":"c1","channelTitle":"Chan One",
    "publishedAt":"2025-03-01T00:00:00Z",
    "thumbnails":{"default":{"url":"d2"},"medium":{"url":"m2"}}},
   "statistics":{"viewCount":"50"},"contentDetails":{"duration":"PT45S"}},
  {"id":"v1","snippet":{"title":"First","description":"desc","channelId":"c1","channelTitle":"Chan One",
    "publishedAt":"2025-02-01T00:00:00Z","tags":["go","tui"],
    "thumbnails":{"default":{"url":"d1"},"high":{"url":"h1"},"maxres":{"url":"x1"}}},
   "statistics":{"viewCount":"1000","likeCount":"10"},"contentDetails":{"duration":"PT1H2M3S"}}
]}`

const channelsOne = `{"items":[{"id":"c1","statistics":{"subscriberCount":"500"}}]}`

func TestRun_EndToEnd(t *testing.T) {
	t.Parallel()

	f := &fakeAPI{bodies: map[string]string{
		"/search":   searchTwo,
		"/videos":   videosTwo,
		"/channels": channelsOne,
	}}
	p := newPipeline(t, f)

	recs, err := p.Run(context.Background(), Request{APIKey: "k", Query: "go", Order: youtube.OrderRelevance})
	require.NoError(t, err)
	require.Len(t, recs, 3)

	assert.Equal(t, []string{"/search", "/videos", "/channels"}, f.paths())
	assert.Equal(t, "v1,v2,v3", f.query(1).Get("id"))
	assert.Equal(t, "c1,c2", f.query(2).Get("id"), "channel ids are deduplicated in first-seen order")

	first := recs[0]
	assert.Equal(t, "v1", first.VideoID)
	assert.Equal(t, "First", first.Title)
	assert.Equal(t, "desc", first.Description)
	assert.Equal(t, []string{"go", "tui"}, first.Tags)
	require.NotNil(t, first.DurationSec)
	assert.Equal(t, int64(3723), *first.DurationSec)
	assert.Equal(t, "1:02:03", first.DurationHMS)
	require.NotNil(t, first.SubscriberCount)
	assert.Equal(t, int64(500), *first.SubscriberCount)
	require.NotNil(t, first.PerformanceRatio)
	assert.InDelta(t, 2.0, *first.PerformanceRatio, 1e-9)
	require.NotNil(t, first.PerformanceLevel)
	assert.Equal(t, 4, *first.PerformanceLevel)
	assert.Equal(t, "x1", first.Thumbnail)
	require.NotNil(t, first.LikeCount)
	assert.Equal(t, int64(10), *first.LikeCount)

	second := recs[1]
	assert.Equal(t, "v2", second.VideoID)
	assert.Equal(t, "m2", second.Thumbnail)
	assert.Nil(t, second.LikeCount)
	assert.Equal(t, []string{}, second.Tags)
	require.NotNil(t, second.PerformanceLevel)
	assert.Equal(t, 1, *second.PerformanceLevel) // 50/500 = 0.1

	missing := recs[2]
	assert.Equal(t, "v3", missing.VideoID)
	assert.Empty(t, missing.Title)
	assert.Nil(t, missing.DurationSec)
	assert.Equal(t, "0:00", missing.DurationHMS)
	assert.Nil(t, missing.ViewCount)
	assert.Nil(t, missing.SubscriberCount)
	assert.Nil(t, missing.PerformanceRatio)
	assert.Nil(t, missing.PerformanceLevel)
	assert.Empty(t, missing.Thumbnail)
}

func TestRun_ZeroHitsStopsAfterSearch(t *testing.T) {
	t.Parallel()

	f := &fakeAPI{bodies: map[string]string{"/search": `{"items":[]}`}}
	p := newPipeline(t, f)

	recs, err := p.Run(context.Background(), Request{APIKey: "k", Query: "nothing"})
	require.NoError(t, err)
	assert.NotNil(t, recs)
	assert.Empty(t, recs)
	assert.Equal(t, []string{"/search"}, f.paths())
}

func TestRun_PublishedAfterIsSentInMillisecondForm(t *testing.T) {
	t.Parallel()

	f := &fakeAPI{bodies: map[string]string{"/search": `{"items":[]}`}}
	p := newPipeline(t, f)

	after := time.Date(2025, time.April, 5, 6, 7, 8, 0, time.UTC)
	_, err := p.Run(context.Background(), Request{APIKey: "k", Query: "q", Order: youtube.OrderDate, PublishedAfter: &after})
	require.NoError(t, err)
	assert.Equal(t, "2025-04-05T06:07:08.000Z", f.query(0).Get("publishedAfter"))
	assert.Equal(t, "date", f.query(0).Get("order"))
}

func TestRun_ForbiddenAborts(t *testing.T) {
	t.Parallel()

	f := &fakeAPI{
		bodies:   map[string]string{"/search": `{"error":{"message":"quotaExceeded"}}`},
		statuses: map[string]int{"/search": http.StatusForbidden},
	}
	p := newPipeline(t, f)

	recs, err := p.Run(context.Background(), Request{APIKey: "k", Query: "q"})
	require.Error(t, err)
	assert.Nil(t, recs)
	assert.True(t, youtube.IsForbidden(err))

	var ue *youtube.UpstreamError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, "quotaExceeded", ue.Message)
	assert.Equal(t, []string{"/search"}, f.paths())
}

func TestRun_ChannelFailureDiscardsPartialResults(t *testing.T) {
	t.Parallel()

	f := &fakeAPI{
		bodies: map[string]string{
			"/search":   searchTwo,
			"/videos":   videosTwo,
			"/channels": `{}`,
		},
		statuses: map[string]int{"/channels": http.StatusInternalServerError},
	}
	p := newPipeline(t, f)

	recs, err := p.Run(context.Background(), Request{APIKey: "k", Query: "q"})
	require.Error(t, err)
	assert.Nil(t, recs)

	var ue *youtube.UpstreamError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, youtube.OpChannels, ue.Op)
	assert.Equal(t, "HTTP 500", ue.Message)
}

// stubUpstream lets tests observe calls without HTTP.
type stubUpstream struct {
	hits          []youtube.SearchHit
	videos        []youtube.VideoDetail
	channelsCalls int
}

func (s *stubUpstream) Search(context.Context, youtube.SearchParams) ([]youtube.SearchHit, error) {
	return s.hits, nil
}

func (s *stubUpstream) Videos(context.Context, string, []string) ([]youtube.VideoDetail, error) {
	return s.videos, nil
}

func (s *stubUpstream) Channels(context.Context, string, []string) ([]youtube.ChannelStat, error) {
	s.channelsCalls++
	return nil, nil
}

func TestRun_SkipsChannelsWithoutChannelIDs(t *testing.T) {
	t.Parallel()

	var hit youtube.SearchHit
	hit.ID.VideoID = "v1"
	var detail youtube.VideoDetail
	detail.ID = "v1"
	detail.Statistics.ViewCount = "10"

	s := &stubUpstream{hits: []youtube.SearchHit{hit}, videos: []youtube.VideoDetail{detail}}
	recs, err := New(s, nil).Run(context.Background(), Request{APIKey: "k", Query: "q"})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, 0, s.channelsCalls)
	assert.Nil(t, recs[0].PerformanceRatio)
	require.NotNil(t, recs[0].ViewCount)
	assert.Equal(t, int64(10), *recs[0].ViewCount)
}

func TestPickThumbnail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		thumbs map[string]youtube.Thumbnail
		want   string
	}{
		{"none", nil, ""},
		{"default only", map[string]youtube.Thumbnail{"default": {URL: "d"}}, "d"},
		{"standard beats high", map[string]youtube.Thumbnail{"high": {URL: "h"}, "standard": {URL: "s"}}, "s"},
		{"empty url skipped", map[string]youtube.Thumbnail{"maxres": {}, "medium": {URL: "m"}}, "m"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pickThumbnail(tt.thumbs))
		})
	}
}
