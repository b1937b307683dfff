// Package enrich runs the search → video details → channel statistics
// sequence against the Data API and joins the three responses into
// normalized records.
package enrich

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/runger/tubedash/internal/results"
	"github.com/runger/tubedash/internal/timefmt"
	"github.com/runger/tubedash/internal/youtube"
)

// Upstream is the subset of the Data API the pipeline needs.
// *youtube.Client satisfies it.
type Upstream interface {
	Search(ctx context.Context, p youtube.SearchParams) ([]youtube.SearchHit, error)
	Videos(ctx context.Context, apiKey string, ids []string) ([]youtube.VideoDetail, error)
	Channels(ctx context.Context, apiKey string, ids []string) ([]youtube.ChannelStat, error)
}

// Request describes one search run.
type Request struct {
	APIKey         string
	Query          string
	Order          youtube.Order
	PublishedAfter *time.Time
}

// Pipeline composes the three upstream calls. It is safe for concurrent use;
// each Run carries its own state.
type Pipeline struct {
	api    Upstream
	logger *slog.Logger
}

// New creates a Pipeline. A nil logger discards output.
func New(api Upstream, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Pipeline{api: api, logger: logger}
}

// searchStage is the outcome of search.list.
type searchStage struct {
	videoIDs   []string
	channelIDs []string
}

// detailStage is the outcome of videos.list, keyed by video id.
type detailStage struct {
	byID map[string]youtube.VideoDetail
}

// channelStage is the outcome of channels.list, keyed by channel id.
type channelStage struct {
	subscribers map[string]*int64
}

// Run executes the pipeline. Calls are strictly sequential and never
// retried; the first failure aborts the run and no partial records are
// returned. A search with no hits returns an empty, non-nil slice.
func (p *Pipeline) Run(ctx context.Context, req Request) ([]results.Record, error) {
	log := p.logger.With("run_id", uuid.NewString())
	log.Debug("search started", "query", req.Query, "order", string(req.Order))

	start := time.Now()
	ss, err := p.search(ctx, req)
	if err != nil {
		log.Warn("search failed", "stage", youtube.OpSearch, "error", err)
		return nil, err
	}
	log.Debug("stage done", "stage", youtube.OpSearch, "hits", len(ss.videoIDs),
		"latency_ms", time.Since(start).Milliseconds())
	if len(ss.videoIDs) == 0 {
		return []results.Record{}, nil
	}

	start = time.Now()
	ds, err := p.details(ctx, req.APIKey, ss.videoIDs)
	if err != nil {
		log.Warn("search failed", "stage", youtube.OpVideos, "error", err)
		return nil, err
	}
	log.Debug("stage done", "stage", youtube.OpVideos, "details", len(ds.byID),
		"latency_ms", time.Since(start).Milliseconds())

	start = time.Now()
	cs, err := p.channels(ctx, req.APIKey, ss.channelIDs)
	if err != nil {
		log.Warn("search failed", "stage", youtube.OpChannels, "error", err)
		return nil, err
	}
	log.Debug("stage done", "stage", youtube.OpChannels, "channels", len(cs.subscribers),
		"latency_ms", time.Since(start).Milliseconds())

	records := join(ss, ds, cs)
	log.Info("search complete", "records", len(records))
	return records, nil
}

func (p *Pipeline) search(ctx context.Context, req Request) (searchStage, error) {
	params := youtube.SearchParams{
		APIKey: req.APIKey,
		Query:  req.Query,
		Order:  req.Order,
	}
	if req.PublishedAfter != nil {
		params.PublishedAfter = timefmt.FormatTimestamp(*req.PublishedAfter)
	}

	hits, err := p.api.Search(ctx, params)
	if err != nil {
		return searchStage{}, fmt.Errorf("search: %w", err)
	}

	var ss searchStage
	seen := make(map[string]bool)
	for _, h := range hits {
		if h.ID.VideoID == "" {
			continue
		}
		ss.videoIDs = append(ss.videoIDs, h.ID.VideoID)
		if ch := h.Snippet.ChannelID; ch != "" && !seen[ch] {
			seen[ch] = true
			ss.channelIDs = append(ss.channelIDs, ch)
		}
	}
	return ss, nil
}

func (p *Pipeline) details(ctx context.Context, apiKey string, ids []string) (detailStage, error) {
	items, err := p.api.Videos(ctx, apiKey, ids)
	if err != nil {
		return detailStage{}, fmt.Errorf("video details: %w", err)
	}
	ds := detailStage{byID: make(map[string]youtube.VideoDetail, len(items))}
	for _, v := range items {
		ds.byID[v.ID] = v
	}
	return ds, nil
}

func (p *Pipeline) channels(ctx context.Context, apiKey string, ids []string) (channelStage, error) {
	cs := channelStage{subscribers: make(map[string]*int64, len(ids))}
	if len(ids) == 0 {
		return cs, nil
	}
	items, err := p.api.Channels(ctx, apiKey, ids)
	if err != nil {
		return channelStage{}, fmt.Errorf("channel statistics: %w", err)
	}
	for _, c := range items {
		cs.subscribers[c.ID] = youtube.ParseCount(c.Statistics.SubscriberCount)
	}
	return cs, nil
}
