package tui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runger/tubedash/internal/credential"
	"github.com/runger/tubedash/internal/dashboard"
	"github.com/runger/tubedash/internal/enrich"
	"github.com/runger/tubedash/internal/results"
	"github.com/runger/tubedash/internal/youtube"
)

// stubRunner returns canned records and remembers the last request.
type stubRunner struct {
	records []results.Record
	err     error
	last    enrich.Request
	calls   int
}

func (s *stubRunner) Run(_ context.Context, req enrich.Request) ([]results.Record, error) {
	s.calls++
	s.last = req
	return s.records, s.err
}

func i64(n int64) *int64 { return &n }

func rec(id string, views int64, level int) results.Record {
	ratio := float64(level)
	return results.Record{
		VideoID:          id,
		Title:            "video " + id,
		ChannelTitle:     "chan",
		PublishedAt:      "2025-06-01T00:00:00.000Z",
		DurationSec:      i64(300),
		DurationHMS:      "5:00",
		ViewCount:        i64(views),
		PerformanceRatio: &ratio,
		PerformanceLevel: &level,
	}
}

func sampleRecords() []results.Record {
	return []results.Record{rec("a", 100, 2), rec("b", 300, 4), rec("c", 200, 5)}
}

func newTestModel(t *testing.T, runner *stubRunner, opts Options) Model {
	t.Helper()
	creds := credential.NewMemory()
	require.NoError(t, creds.Set(context.Background(), "key-123"))
	ctrl := dashboard.NewController(creds, runner, nil,
		dashboard.WithClock(func() time.Time { return time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC) }))
	return NewModel(ctrl, opts)
}

func runCmd(cmd tea.Cmd) tea.Msg {
	if cmd == nil {
		return nil
	}
	return cmd()
}

// drainBatch runs a batch cmd and feeds the resulting messages into the
// model, returning the final state and the cmd from the last message.
func drainBatch(t *testing.T, m Model, batchCmd tea.Cmd) (Model, tea.Cmd) {
	t.Helper()
	msg := runCmd(batchCmd)
	if msg == nil {
		return m, nil
	}
	if batch, ok := msg.(tea.BatchMsg); ok {
		var lastCmd tea.Cmd
		for _, cmd := range batch {
			sub := runCmd(cmd)
			if sub == nil {
				continue
			}
			var result tea.Model
			result, lastCmd = m.Update(sub)
			m = result.(Model)
		}
		return m, lastCmd
	}
	result, cmd := m.Update(msg)
	return result.(Model), cmd
}

func press(t *testing.T, m Model, keys ...string) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "end":
			msg = tea.KeyMsg{Type: tea.KeyEnd}
		case "ctrl+c":
			msg = tea.KeyMsg{Type: tea.KeyCtrlC}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		var result tea.Model
		result, cmd = m.Update(msg)
		m = result.(Model)
	}
	return m, cmd
}

// searched runs the initial search for a model created with a query.
func searched(t *testing.T, runner *stubRunner) Model {
	t.Helper()
	m := newTestModel(t, runner, Options{Query: "golang"})
	m, cmd := drainBatch(t, m, m.Init())
	require.NotNil(t, cmd, "initMsg should start a search")
	m, _ = drainBatch(t, m, cmd)
	require.False(t, m.busy)
	return m
}

func ids(recs []results.Record) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.VideoID
	}
	return out
}

func TestNewModel_WithoutQueryFocusesInput(t *testing.T) {
	t.Parallel()

	m := newTestModel(t, &stubRunner{}, Options{})
	assert.Equal(t, modeQuery, m.mode)
	assert.True(t, m.query.Focused())
	assert.Equal(t, youtube.OrderRelevance, m.order)
	assert.Equal(t, "youtube_results.csv", m.opts.ExportPath)
	assert.Contains(t, m.View(), "Type a query and press enter.")
}

func TestModel_InitialQuerySearches(t *testing.T) {
	t.Parallel()

	runner := &stubRunner{records: sampleRecords()}
	m := searched(t, runner)

	assert.Equal(t, 1, runner.calls)
	assert.Equal(t, "golang", runner.last.Query)
	assert.Equal(t, "key-123", runner.last.APIKey)
	assert.Equal(t, []string{"c", "b", "a"}, ids(m.snap.Records), "default sort is performance desc")
	assert.Equal(t, 3, m.snap.Total)
	assert.Empty(t, m.message)

	view := m.View()
	assert.Contains(t, view, "tubedash")
	assert.Contains(t, view, "video c")
}

func TestModel_EmptyQueryShowsReason(t *testing.T) {
	t.Parallel()

	runner := &stubRunner{records: sampleRecords()}
	m := newTestModel(t, runner, Options{})

	m, cmd := press(t, m, "enter")
	assert.Equal(t, modeBrowse, m.mode)
	m, _ = drainBatch(t, m, cmd)

	assert.Zero(t, runner.calls)
	assert.False(t, m.busy)
	assert.True(t, m.msgIsErr)
	assert.Equal(t, dashboard.ReasonEmptyQuery, m.message)
}

func TestModel_QueryTypedThenSearched(t *testing.T) {
	t.Parallel()

	runner := &stubRunner{records: sampleRecords()}
	m := newTestModel(t, runner, Options{})

	m, cmd := press(t, m, "go tui", "enter")
	m, _ = drainBatch(t, m, cmd)

	assert.Equal(t, "go tui", runner.last.Query)
	assert.Len(t, m.snap.Records, 3)
}

func TestModel_NoResultsMessage(t *testing.T) {
	t.Parallel()

	m := searched(t, &stubRunner{})
	assert.Equal(t, "no results found", m.message)
	assert.False(t, m.msgIsErr)
	assert.Contains(t, m.View(), "no results found")
}

func TestModel_UpstreamErrorKeepsResults(t *testing.T) {
	t.Parallel()

	runner := &stubRunner{records: sampleRecords()}
	m := searched(t, runner)

	runner.err = &youtube.UpstreamError{Op: youtube.OpSearch, Status: 403, Message: "quota"}
	m, cmd := press(t, m, "enter")
	m, _ = drainBatch(t, m, cmd)

	assert.True(t, m.msgIsErr)
	assert.Equal(t, dashboard.QuotaHint, m.message)
	assert.Len(t, m.snap.Records, 3)
}

func TestModel_StaleResultDropped(t *testing.T) {
	t.Parallel()

	m := searched(t, &stubRunner{records: sampleRecords()})
	before := ids(m.snap.Records)

	m.requestID = 5
	m.busy = true
	result, _ := m.Update(searchDoneMsg{requestID: 4, err: errors.New("late failure")})
	m = result.(Model)

	assert.True(t, m.busy, "stale reply must not clear busy")
	assert.Empty(t, m.message)
	assert.Equal(t, before, ids(m.snap.Records))
}

func TestModel_SupersededIsSilent(t *testing.T) {
	t.Parallel()

	m := newTestModel(t, &stubRunner{}, Options{})
	m.requestID = 1
	m.busy = true
	result, _ := m.Update(searchDoneMsg{requestID: 1, err: dashboard.ErrSuperseded})
	m = result.(Model)

	assert.False(t, m.busy)
	assert.Empty(t, m.message)
}

// gatedRunner holds every run until release is closed.
type gatedRunner struct {
	records []results.Record
	started chan struct{}
	release chan struct{}
}

func (g *gatedRunner) Run(ctx context.Context, _ enrich.Request) ([]results.Record, error) {
	g.started <- struct{}{}
	select {
	case <-g.release:
		return g.records, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// searchCmd extracts the search closure from the batch startSearch returns.
func searchCmd(t *testing.T, cmd tea.Cmd) tea.Cmd {
	t.Helper()
	batch, ok := runCmd(cmd).(tea.BatchMsg)
	require.True(t, ok, "startSearch returns a batch")
	require.Len(t, batch, 2)
	return batch[1]
}

func TestModel_RejectedInputKeepsInFlightSearch(t *testing.T) {
	t.Parallel()

	runner := &gatedRunner{
		records: sampleRecords(),
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	creds := credential.NewMemory()
	require.NoError(t, creds.Set(context.Background(), "key-123"))
	ctrl := dashboard.NewController(creds, runner, nil)
	m := NewModel(ctrl, Options{})

	m, cmd := press(t, m, "go", "enter")
	require.True(t, m.busy)
	reqID := m.requestID

	replies := make(chan tea.Msg, 1)
	search := searchCmd(t, cmd)
	go func() { replies <- search() }()
	<-runner.started

	// A blank query is refused without superseding the running search.
	m, _ = press(t, m, "/")
	m.query.SetValue("   ")
	m, cmd = press(t, m, "enter")
	assert.Nil(t, cmd)
	assert.Equal(t, reqID, m.requestID)
	assert.True(t, m.busy, "spinner keeps running for the in-flight search")
	assert.Equal(t, dashboard.ReasonEmptyQuery, m.message)

	close(runner.release)
	result, _ := m.Update(<-replies)
	m = result.(Model)

	assert.False(t, m.busy)
	assert.Equal(t, 3, m.snap.Total)
	assert.Equal(t, ctrl.Snapshot().Total, m.snap.Total, "screen matches controller state")
	assert.Equal(t, ids(ctrl.Snapshot().Records), ids(m.snap.Records))
}

func TestModel_MissingKeyDoesNotStartSearch(t *testing.T) {
	t.Parallel()

	runner := &stubRunner{records: sampleRecords()}
	ctrl := dashboard.NewController(credential.NewMemory(), runner, nil)
	m := NewModel(ctrl, Options{})

	m, cmd := press(t, m, "go", "enter")
	assert.Nil(t, cmd)
	assert.Zero(t, m.requestID)
	assert.False(t, m.busy)
	assert.Equal(t, dashboard.ReasonMissingKey, m.message)
	assert.Zero(t, runner.calls)
}

func TestModel_SortKeys(t *testing.T) {
	t.Parallel()

	m := searched(t, &stubRunner{records: sampleRecords()})

	m, _ = press(t, m, "w")
	assert.Equal(t, results.SortState{Field: results.SortViewCount, Direction: results.Asc}, m.snap.Sort)
	assert.Equal(t, []string{"a", "c", "b"}, ids(m.snap.Records))

	m, _ = press(t, m, "w")
	assert.Equal(t, results.Desc, m.snap.Sort.Direction)
	assert.Equal(t, []string{"b", "c", "a"}, ids(m.snap.Records))
	assert.Equal(t, "Views ▼", m.table.Columns()[4].Title)
}

func TestModel_ViewToggleAndCursor(t *testing.T) {
	t.Parallel()

	m := searched(t, &stubRunner{records: sampleRecords()})
	assert.Equal(t, dashboard.ViewGallery, m.snap.View)

	m, _ = press(t, m, "tab")
	assert.Equal(t, dashboard.ViewTable, m.snap.View)
	assert.Contains(t, m.View(), "Performance ▼")

	m, _ = press(t, m, "down", "down", "down")
	assert.Equal(t, 2, m.cursor, "cursor stops at the last row")
	assert.Equal(t, 2, m.table.Cursor())

	m, _ = press(t, m, "up")
	assert.Equal(t, 1, m.cursor)
}

func TestModel_LevelFilterKeys(t *testing.T) {
	t.Parallel()

	m := searched(t, &stubRunner{records: sampleRecords()})

	m, _ = press(t, m, "4")
	assert.Equal(t, []string{"b"}, ids(m.snap.Records))
	assert.Equal(t, 3, m.snap.Total)

	m, _ = press(t, m, "5")
	assert.Equal(t, []string{"c", "b"}, ids(m.snap.Records))

	m, _ = press(t, m, "4")
	assert.Equal(t, []string{"c"}, ids(m.snap.Records))

	m, _ = press(t, m, "3")
	m, _ = press(t, m, "5")
	assert.Empty(t, m.snap.Records)
	assert.Contains(t, m.View(), "No results match the current filters.")

	m, _ = press(t, m, "0")
	assert.Len(t, m.snap.Records, 3)
}

func TestModel_CycleKeys(t *testing.T) {
	t.Parallel()

	m := searched(t, &stubRunner{records: sampleRecords()})

	m, _ = press(t, m, "L")
	assert.Equal(t, results.LengthModes[1], m.snap.Filters.Length)

	m, _ = press(t, m, "D")
	assert.Equal(t, dashboard.DateModes[1], m.snap.Filters.Date)

	m, _ = press(t, m, "O")
	assert.Equal(t, youtube.OrderDate, m.order)
	assert.Equal(t, youtube.OrderRelevance, m.snap.Order, "order applies to the next search")
	assert.Contains(t, m.message, "next search")
}

func TestModel_Commands(t *testing.T) {
	t.Parallel()

	m := searched(t, &stubRunner{records: sampleRecords()})

	m, _ = press(t, m, ":", "sort viewCount asc", "enter")
	assert.Equal(t, modeBrowse, m.mode)
	assert.Equal(t, results.SortState{Field: results.SortViewCount, Direction: results.Asc}, m.snap.Sort)

	m, _ = press(t, m, ":", "perf 4,5", "enter")
	assert.Equal(t, []int{4, 5}, m.snap.Filters.SortedLevels())

	m, _ = press(t, m, ":", "view table", "enter")
	assert.Equal(t, dashboard.ViewTable, m.snap.View)

	m, _ = press(t, m, ":", "order rating", "enter")
	assert.Equal(t, youtube.OrderRating, m.order)

	m, _ = press(t, m, ":", "bogus", "enter")
	assert.True(t, m.msgIsErr)
	assert.Contains(t, m.message, `unknown command "bogus"`)

	m, _ = press(t, m, ":", "perf 9", "enter")
	assert.True(t, m.msgIsErr)
	assert.Contains(t, m.message, "invalid performance level")

	m, _ = press(t, m, ":", `export "unterminated`, "enter")
	assert.True(t, m.msgIsErr)
	assert.Contains(t, m.message, "parse command")
}

func TestModel_CommandEscCancels(t *testing.T) {
	t.Parallel()

	m := searched(t, &stubRunner{records: sampleRecords()})
	m, _ = press(t, m, ":", "view table", "esc")

	assert.Equal(t, modeBrowse, m.mode)
	assert.Empty(t, m.cmdline.Value())
	assert.Equal(t, dashboard.ViewGallery, m.snap.View)
}

func TestModel_ExportCommand(t *testing.T) {
	t.Parallel()

	m := searched(t, &stubRunner{records: sampleRecords()})
	path := filepath.Join(t.TempDir(), "out dir", "results.csv")

	m, _ = press(t, m, ":", `export "`+path+`"`, "enter")
	require.False(t, m.msgIsErr, m.message)
	assert.Equal(t, "exported 3 rows to "+path, m.message)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(string(data), "\n")
	assert.Len(t, lines, 4)
}

func TestModel_ExportEmptyProjection(t *testing.T) {
	t.Parallel()

	m := newTestModel(t, &stubRunner{}, Options{ExportPath: filepath.Join(t.TempDir(), "x.csv")})
	m, _ = press(t, m, "esc", "e")

	assert.True(t, m.msgIsErr)
	assert.Equal(t, dashboard.ErrExportEmpty.Error(), m.message)
}

func TestModel_KeyCommand(t *testing.T) {
	t.Parallel()

	creds := credential.NewMemory()
	ctrl := dashboard.NewController(creds, &stubRunner{}, nil)
	m := NewModel(ctrl, Options{})

	m, _ = press(t, m, "esc", ":", "key  new-key ", "enter")
	assert.Equal(t, "API key saved", m.message)

	got, err := creds.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "new-key", got)
}

func TestModel_Quit(t *testing.T) {
	t.Parallel()

	m := searched(t, &stubRunner{records: sampleRecords()})

	m, cmd := press(t, m, "q")
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.True(t, m.quitting)
	assert.Empty(t, m.View())

	m = searched(t, &stubRunner{records: sampleRecords()})
	m, _ = press(t, m, "/")
	_, cmd = press(t, m, "ctrl+c")
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModel_WindowResize(t *testing.T) {
	t.Parallel()

	m := searched(t, &stubRunner{records: sampleRecords()})
	result, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	m = result.(Model)

	assert.Equal(t, 120, m.width)
	assert.Equal(t, 4, m.pageSize(), "24 body lines hold four cards")

	m, _ = press(t, m, "tab")
	assert.Equal(t, 22, m.pageSize())
}

func TestTableColumns_ShrinkTitle(t *testing.T) {
	t.Parallel()

	wide := tableColumns(results.DefaultSort, 0)
	assert.Equal(t, 40, wide[0].Width)
	assert.Equal(t, "Performance ▼", wide[6].Title)

	// 156 columns plus two padding cells each.
	narrow := tableColumns(results.DefaultSort, 150)
	assert.Equal(t, 18, narrow[0].Width)

	tiny := tableColumns(results.DefaultSort, 20)
	assert.Equal(t, 10, tiny[0].Width)
}

func TestCycle(t *testing.T) {
	t.Parallel()

	assert.Equal(t, youtube.OrderDate, cycle(youtube.Orders, youtube.OrderRelevance))
	assert.Equal(t, youtube.OrderRelevance, cycle(youtube.Orders, youtube.OrderTitle))
	assert.Equal(t, youtube.OrderRelevance, cycle(youtube.Orders, youtube.Order("bogus")))
}
