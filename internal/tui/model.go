// Package tui is the interactive Bubble Tea dashboard. It drives a
// dashboard.Controller and renders its snapshots as a gallery of cards or a
// sortable table.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/runger/tubedash/internal/dashboard"
	"github.com/runger/tubedash/internal/export"
	"github.com/runger/tubedash/internal/results"
	"github.com/runger/tubedash/internal/youtube"
)

// inputMode is which widget owns the keyboard.
type inputMode int

const (
	modeBrowse  inputMode = iota // single-key shortcuts
	modeQuery                    // editing the search query
	modeCommand                  // editing a ":" command
)

// searchDoneMsg is sent when an async Controller.Search completes.
type searchDoneMsg struct {
	requestID uint64
	snap      dashboard.Snapshot
	err       error
}

// initMsg triggers the initial search through Update.
type initMsg struct{}

// Options configures a Model.
type Options struct {
	Query      string        // initial query; searched immediately when non-empty
	Order      youtube.Order // initial order
	ExportPath string        // default target for "e" and ":export"
	TagLimit   int
	Height     int // result rows; 0 fits the terminal
}

// Model is the Bubble Tea model for the dashboard.
type Model struct {
	ctrl *dashboard.Controller
	opts Options

	mode    inputMode
	query   textinput.Model
	cmdline textinput.Model
	spinner spinner.Model
	table   table.Model

	snap   dashboard.Snapshot
	order  youtube.Order
	cursor int // selected record in the projection

	busy      bool
	message   string
	msgIsErr  bool
	requestID uint64 // monotonic counter for stale detection
	autoRun   bool

	width  int
	height int

	quitting bool
}

// NewModel creates a dashboard model around ctrl.
func NewModel(ctrl *dashboard.Controller, opts Options) Model {
	if opts.ExportPath == "" {
		opts.ExportPath = export.Filename
	}
	if opts.Order == "" {
		opts.Order = youtube.OrderRelevance
	}

	q := textinput.New()
	q.Prompt = "/ "
	q.Placeholder = "search YouTube"
	q.CharLimit = 200
	q.SetValue(opts.Query)

	c := textinput.New()
	c.Prompt = ":"
	c.CharLimit = 500

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = accentStyle

	m := Model{
		ctrl:    ctrl,
		opts:    opts,
		query:   q,
		cmdline: c,
		spinner: sp,
		table:   newTable(),
		order:   opts.Order,
		autoRun: strings.TrimSpace(opts.Query) != "",
	}
	m.applySnapshot(ctrl.Snapshot())
	if !m.autoRun {
		m.mode = modeQuery
		m.query.Focus()
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}
	if m.autoRun {
		cmds = append(cmds, func() tea.Msg { return initMsg{} })
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeTable()
		return m, nil

	case searchDoneMsg:
		return m.handleSearchDone(msg)

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case initMsg:
		cmd := m.startSearch()
		return m, cmd
	}

	cmd := m.updateInputs(msg)
	return m, cmd
}

// updateInputs forwards non-key messages (cursor blink) to the focused input.
func (m *Model) updateInputs(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch m.mode {
	case modeQuery:
		m.query, cmd = m.query.Update(msg)
	case modeCommand:
		m.cmdline, cmd = m.cmdline.Update(msg)
	}
	return cmd
}

// startSearch runs the controller search for the current query. A search
// started while one is in flight supersedes it: the controller cancels the
// older run and its reply is dropped here by requestID. Input the controller
// would reject is reported without touching requestID, so the in-flight run
// stays current.
func (m *Model) startSearch() tea.Cmd {
	ctrl := m.ctrl
	query := m.query.Value()
	order := m.order

	if err := ctrl.Validate(context.Background(), query); err != nil {
		m.setMessage(dashboard.UserMessage(err), true)
		return nil
	}

	m.requestID++
	reqID := m.requestID
	m.busy = true
	m.setMessage("", false)

	search := func() tea.Msg {
		err := ctrl.Search(context.Background(), query, order)
		return searchDoneMsg{requestID: reqID, snap: ctrl.Snapshot(), err: err}
	}
	return tea.Batch(m.spinner.Tick, search)
}

// handleSearchDone applies the result of an async search.
func (m Model) handleSearchDone(msg searchDoneMsg) (tea.Model, tea.Cmd) {
	if msg.requestID != m.requestID {
		return m, nil
	}
	m.busy = false

	if msg.err != nil {
		if !dashboard.IsSilent(msg.err) {
			m.setMessage(dashboard.UserMessage(msg.err), true)
		}
		return m, nil
	}

	m.cursor = 0
	m.applySnapshot(msg.snap)
	if msg.snap.Total == 0 {
		m.setMessage(dashboard.UserMessage(dashboard.ErrEmptyResult), false)
	}
	return m, nil
}

// applySnapshot stores snap and refreshes the table.
func (m *Model) applySnapshot(snap dashboard.Snapshot) {
	m.snap = snap
	m.clampCursor()
	m.table.SetColumns(tableColumns(snap.Sort, m.width))
	m.table.SetRows(tableRows(snap.Records, m.opts.TagLimit))
	m.table.SetCursor(max(m.cursor, 0))
}

func (m *Model) clampCursor() {
	n := len(m.snap.Records)
	switch {
	case n == 0:
		m.cursor = 0
	case m.cursor >= n:
		m.cursor = n - 1
	case m.cursor < 0:
		m.cursor = 0
	}
}

func (m *Model) setMessage(msg string, isErr bool) {
	m.message = msg
	m.msgIsErr = isErr
}

// quit cancels any in-flight search and exits.
func (m Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	m.ctrl.Cancel()
	return m, tea.Quit
}

// Snapshot returns the last applied snapshot.
func (m Model) Snapshot() dashboard.Snapshot {
	return m.snap
}

// cycle returns the element after cur in list, wrapping around.
func cycle[T comparable](list []T, cur T) T {
	for i, v := range list {
		if v == cur {
			return list[(i+1)%len(list)]
		}
	}
	return list[0]
}

// sortKeys maps browse-mode keys to sortable columns.
var sortKeys = map[string]results.SortField{
	"p": results.SortPublishedAt,
	"u": results.SortDurationSec,
	"w": results.SortViewCount,
	"k": results.SortLikeCount,
	"r": results.SortPerformanceRatio,
}
