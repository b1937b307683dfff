package dashboard

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runger/tubedash/internal/credential"
	"github.com/runger/tubedash/internal/enrich"
	"github.com/runger/tubedash/internal/results"
	"github.com/runger/tubedash/internal/youtube"
)

// recorder is a Presenter that remembers every call.
type recorder struct {
	mu       sync.Mutex
	busy     []bool
	messages []string
	renders  []Snapshot
}

func (r *recorder) SetBusy(b bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.busy = append(r.busy, b)
}

func (r *recorder) ShowMessage(m string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, m)
}

func (r *recorder) Render(s Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.renders = append(r.renders, s)
}

// runnerFunc adapts a function to Runner.
type runnerFunc func(ctx context.Context, req enrich.Request) ([]results.Record, error)

func (f runnerFunc) Run(ctx context.Context, req enrich.Request) ([]results.Record, error) {
	return f(ctx, req)
}

func keyedStore(t *testing.T) credential.Store {
	t.Helper()
	s := credential.NewMemory()
	require.NoError(t, s.Set(context.Background(), "key-123"))
	return s
}

func fixedClock() time.Time { return searchTime }

func TestSearch_MissingKeyNeverRunsPipeline(t *testing.T) {
	t.Parallel()

	called := false
	run := runnerFunc(func(context.Context, enrich.Request) ([]results.Record, error) {
		called = true
		return nil, nil
	})
	rec := &recorder{}
	c := NewController(credential.NewMemory(), run, rec)

	err := c.Search(context.Background(), "golang", youtube.OrderRelevance)
	var cfgErr *ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, ReasonMissingKey, cfgErr.Reason)
	assert.False(t, called)
	assert.Equal(t, []string{ReasonMissingKey}, rec.messages)
	assert.Empty(t, rec.busy)
}

func TestSearch_EmptyQueryNeverRunsPipeline(t *testing.T) {
	t.Parallel()

	called := false
	run := runnerFunc(func(context.Context, enrich.Request) ([]results.Record, error) {
		called = true
		return nil, nil
	})
	c := NewController(keyedStore(t), run, nil)

	err := c.Search(context.Background(), "   ", youtube.OrderRelevance)
	var cfgErr *ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, ReasonEmptyQuery, cfgErr.Reason)
	assert.False(t, called)
}

func TestSearch_SuccessRendersDefaultSort(t *testing.T) {
	t.Parallel()

	var got enrich.Request
	run := runnerFunc(func(_ context.Context, req enrich.Request) ([]results.Record, error) {
		got = req
		return sample(), nil
	})
	rec := &recorder{}
	c := NewController(keyedStore(t), run, rec, WithClock(fixedClock))
	c.ActivateSort(results.SortViewCount)
	c.ToggleView()

	require.NoError(t, c.Search(context.Background(), "  golang  ", youtube.OrderDate))

	assert.Equal(t, "key-123", got.APIKey)
	assert.Equal(t, "golang", got.Query)
	assert.Equal(t, youtube.OrderDate, got.Order)
	assert.Nil(t, got.PublishedAfter)

	assert.Equal(t, []bool{true, false}, rec.busy)
	require.NotEmpty(t, rec.renders)
	last := rec.renders[len(rec.renders)-1]
	assert.Equal(t, ViewGallery, last.View)
	assert.Equal(t, results.DefaultSort, last.Sort)
	assert.Equal(t, 4, last.Total)
	assert.Equal(t, "golang", last.Query)
	assert.Equal(t, "long-new", last.Records[0].VideoID)
	assert.Empty(t, rec.messages)
}

func TestSearch_DateFilterSetsPublishedAfterFromSearchTime(t *testing.T) {
	t.Parallel()

	var got enrich.Request
	run := runnerFunc(func(_ context.Context, req enrich.Request) ([]results.Record, error) {
		got = req
		return sample(), nil
	})
	c := NewController(keyedStore(t), run, nil, WithClock(fixedClock))
	c.SetFilters(Filters{Date: Date1M})

	require.NoError(t, c.Search(context.Background(), "q", ""))
	require.NotNil(t, got.PublishedAfter)
	assert.Equal(t, time.Date(2025, time.May, 15, 12, 0, 0, 0, time.UTC), *got.PublishedAfter)
	assert.Equal(t, youtube.OrderRelevance, got.Order)

	snap := c.Snapshot()
	assert.ElementsMatch(t, []string{"short-new", "long-new"}, ids(snap.Records))
}

func TestSearch_EmptyResultMessage(t *testing.T) {
	t.Parallel()

	run := runnerFunc(func(context.Context, enrich.Request) ([]results.Record, error) {
		return []results.Record{}, nil
	})
	rec := &recorder{}
	c := NewController(keyedStore(t), run, rec)

	require.NoError(t, c.Search(context.Background(), "test", youtube.OrderRelevance))
	assert.Equal(t, []string{ErrEmptyResult.Error()}, rec.messages)
	require.Len(t, rec.renders, 1)
	assert.Empty(t, rec.renders[0].Records)
}

func TestSearch_ForbiddenShowsQuotaHintAndKeepsPreviousResults(t *testing.T) {
	t.Parallel()

	fail := false
	run := runnerFunc(func(context.Context, enrich.Request) ([]results.Record, error) {
		if fail {
			return nil, &youtube.UpstreamError{Op: youtube.OpSearch, Status: 403, Message: "quotaExceeded"}
		}
		return sample(), nil
	})
	rec := &recorder{}
	c := NewController(keyedStore(t), run, rec)
	require.NoError(t, c.Search(context.Background(), "first", youtube.OrderRelevance))

	fail = true
	err := c.Search(context.Background(), "second", youtube.OrderRelevance)
	require.Error(t, err)
	assert.Equal(t, []string{QuotaHint}, rec.messages)
	assert.NotContains(t, rec.messages[0], "quotaExceeded")
	assert.Equal(t, []bool{true, false, true, false}, rec.busy)

	snap := c.Snapshot()
	assert.Equal(t, 4, snap.Total)
	assert.Equal(t, "first", snap.Query)
}

func TestSearch_OtherUpstreamErrorsVerbatim(t *testing.T) {
	t.Parallel()

	run := runnerFunc(func(context.Context, enrich.Request) ([]results.Record, error) {
		return nil, &youtube.UpstreamError{Op: youtube.OpVideos, Status: 400, Message: "Bad Request"}
	})
	rec := &recorder{}
	c := NewController(keyedStore(t), run, rec)

	require.Error(t, c.Search(context.Background(), "q", youtube.OrderRelevance))
	assert.Equal(t, []string{"error: videos.list failed (400): Bad Request"}, rec.messages)
}

func TestSearch_NewerSearchSupersedesInFlight(t *testing.T) {
	t.Parallel()

	started := make(chan struct{})
	run := runnerFunc(func(ctx context.Context, req enrich.Request) ([]results.Record, error) {
		if req.Query == "slow" {
			close(started)
			<-ctx.Done()
			return nil, ctx.Err()
		}
		return []results.Record{{VideoID: "fast"}}, nil
	})
	rec := &recorder{}
	c := NewController(keyedStore(t), run, rec)

	slowErr := make(chan error, 1)
	go func() { slowErr <- c.Search(context.Background(), "slow", youtube.OrderRelevance) }()
	<-started

	require.NoError(t, c.Search(context.Background(), "fast", youtube.OrderRelevance))
	assert.ErrorIs(t, <-slowErr, ErrSuperseded)

	snap := c.Snapshot()
	assert.Equal(t, "fast", snap.Query)
	assert.Equal(t, []string{"fast"}, ids(snap.Records))
	assert.Empty(t, rec.messages, "superseded searches stay silent")
	assert.True(t, IsSilent(ErrSuperseded))
}

func TestCancel_DiscardsInFlightResult(t *testing.T) {
	t.Parallel()

	started := make(chan struct{})
	release := make(chan struct{})
	run := runnerFunc(func(context.Context, enrich.Request) ([]results.Record, error) {
		close(started)
		<-release
		return sample(), nil
	})
	rec := &recorder{}
	c := NewController(keyedStore(t), run, rec)

	done := make(chan error, 1)
	go func() { done <- c.Search(context.Background(), "q", youtube.OrderRelevance) }()
	<-started
	c.Cancel()
	close(release)

	assert.ErrorIs(t, <-done, ErrSuperseded)
	assert.Equal(t, 0, c.Snapshot().Total)
	assert.Equal(t, []bool{true, false}, rec.busy)
}

func TestControllerIntentsRender(t *testing.T) {
	t.Parallel()

	run := runnerFunc(func(context.Context, enrich.Request) ([]results.Record, error) {
		return sample(), nil
	})
	rec := &recorder{}
	c := NewController(keyedStore(t), run, rec)
	require.NoError(t, c.Search(context.Background(), "q", youtube.OrderRelevance))

	snap := c.ToggleView()
	assert.Equal(t, ViewTable, snap.View)

	snap = c.ActivateSort(results.SortDurationSec)
	assert.Equal(t, results.Asc, snap.Sort.Direction)
	assert.Equal(t, "short-new", snap.Records[0].VideoID)

	snap = c.UpdateFilters(func(f *Filters) { f.Length = results.LengthShorts })
	assert.Equal(t, []string{"short-new"}, ids(snap.Records))
	assert.Equal(t, ViewTable, snap.View)

	snap = c.SetView(ViewGallery)
	assert.Equal(t, ViewGallery, snap.View)

	assert.Len(t, rec.renders, 5)
}

func TestExportFile(t *testing.T) {
	t.Parallel()

	run := runnerFunc(func(context.Context, enrich.Request) ([]results.Record, error) {
		return sample(), nil
	})
	rec := &recorder{}
	c := NewController(keyedStore(t), run, rec)
	path := filepath.Join(t.TempDir(), "out", "youtube_results.csv")

	assert.ErrorIs(t, c.ExportFile(path), ErrExportEmpty)
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "no file on refused export")

	require.NoError(t, c.Search(context.Background(), "q", youtube.OrderRelevance))
	require.NoError(t, c.ExportFile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "https://www.youtube.com/watch?v=long-new")
	assert.Contains(t, rec.messages[len(rec.messages)-1], "exported 4 rows")
}

func TestSaveKey(t *testing.T) {
	t.Parallel()

	store := credential.NewMemory()
	c := NewController(store, nil, nil)

	var cfgErr *ConfigurationError
	require.True(t, errors.As(c.SaveKey(context.Background(), "  "), &cfgErr))
	assert.Equal(t, ReasonEmptyKey, cfgErr.Reason)

	require.NoError(t, c.SaveKey(context.Background(), " new-key "))
	v, err := store.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "new-key", v)
}

func TestValidate_HasNoSideEffects(t *testing.T) {
	t.Parallel()

	started := make(chan struct{})
	release := make(chan struct{})
	run := runnerFunc(func(ctx context.Context, _ enrich.Request) ([]results.Record, error) {
		close(started)
		<-release
		return []results.Record{{VideoID: "v1"}}, nil
	})
	rec := &recorder{}
	c := NewController(keyedStore(t), run, rec, WithClock(fixedClock))

	done := make(chan error, 1)
	go func() { done <- c.Search(context.Background(), "golang", youtube.OrderRelevance) }()
	<-started

	var cfgErr *ConfigurationError
	require.True(t, errors.As(c.Validate(context.Background(), "  "), &cfgErr))
	assert.Equal(t, ReasonEmptyQuery, cfgErr.Reason)
	assert.NoError(t, c.Validate(context.Background(), "rust"))

	close(release)
	require.NoError(t, <-done, "the in-flight search is not superseded")
	assert.Equal(t, 1, c.Snapshot().Total)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Empty(t, rec.messages)

	missing := NewController(credential.NewMemory(), run, rec)
	require.True(t, errors.As(missing.Validate(context.Background(), "golang"), &cfgErr))
	assert.Equal(t, ReasonMissingKey, cfgErr.Reason)
}

func TestUserMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"superseded", ErrSuperseded, ""},
		{"canceled", context.Canceled, ""},
		{"config", &ConfigurationError{Reason: ReasonEmptyQuery}, ReasonEmptyQuery},
		{"forbidden wrapped", errors.Join(errors.New("ctx"), &youtube.UpstreamError{Status: 403}), QuotaHint},
		{"empty", ErrEmptyResult, "no results found"},
		{"other", errors.New("boom"), "error: boom"},
		{"redacted", errors.New(`Get "/search?key=abc&q=go": EOF`), `error: Get "/search?key=[REDACTED]&q=go": EOF`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UserMessage(tt.err))
		})
	}
}
