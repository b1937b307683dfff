package dashboard

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/runger/tubedash/internal/credential"
	"github.com/runger/tubedash/internal/enrich"
	"github.com/runger/tubedash/internal/results"
	"github.com/runger/tubedash/internal/youtube"
)

// Runner executes one enrichment run. *enrich.Pipeline satisfies it.
type Runner interface {
	Run(ctx context.Context, req enrich.Request) ([]results.Record, error)
}

// Presenter is the presentation port. Implementations must not call back
// into the Controller from these methods.
type Presenter interface {
	SetBusy(busy bool)
	ShowMessage(msg string)
	Render(snap Snapshot)
}

// Snapshot is a finalized, sorted view of the state handed to a Presenter.
type Snapshot struct {
	Query      string
	Order      youtube.Order
	Records    []results.Record // the projection
	Total      int              // size of the canonical collection
	View       ViewMode
	Sort       results.SortState
	Filters    Filters
	SearchedAt time.Time
}

// Controller serializes user intents against a State and reports through a
// Presenter. It is safe for concurrent use.
type Controller struct {
	creds     credential.Store
	runner    Runner
	presenter Presenter
	logger    *slog.Logger
	now       func() time.Time

	mu     sync.Mutex
	state  *State
	query  string
	order  youtube.Order
	gen    uint64
	cancel context.CancelFunc
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithLogger sets the controller logger.
func WithLogger(l *slog.Logger) ControllerOption {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithClock overrides the time source used to stamp searches.
func WithClock(now func() time.Time) ControllerOption {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// NewController wires a controller. presenter may be nil when the caller
// only reads snapshots.
func NewController(creds credential.Store, runner Runner, presenter Presenter, opts ...ControllerOption) *Controller {
	if presenter == nil {
		presenter = nopPresenter{}
	}
	c := &Controller{
		creds:     creds,
		runner:    runner,
		presenter: presenter,
		logger:    slog.New(slog.DiscardHandler),
		now:       time.Now,
		state:     NewState(),
		order:     youtube.OrderRelevance,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search runs the pipeline for query and, on success, replaces the record
// collection. A search started while another is in flight cancels the
// older one, whose result is discarded with ErrSuperseded.
func (c *Controller) Search(ctx context.Context, query string, order youtube.Order) error {
	query = strings.TrimSpace(query)
	if order == "" {
		order = youtube.OrderRelevance
	}

	key, err := c.validate(ctx, query)
	if err != nil {
		c.notify(err)
		return err
	}

	runCtx, gen, at, after := c.begin(ctx)
	c.presenter.SetBusy(true)
	defer func() {
		if c.isCurrent(gen) {
			c.presenter.SetBusy(false)
		}
	}()

	records, err := c.runner.Run(runCtx, enrich.Request{
		APIKey:         key,
		Query:          query,
		Order:          order,
		PublishedAfter: after,
	})

	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		c.logger.Debug("discarding superseded search", "query", query, "generation", gen)
		return ErrSuperseded
	}
	c.cancel()
	c.cancel = nil
	if err != nil {
		c.mu.Unlock()
		c.notify(err)
		return err
	}
	c.state.CompleteSearch(records, at)
	c.query, c.order = query, order
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.presenter.Render(snap)
	if snap.Total == 0 {
		c.presenter.ShowMessage(UserMessage(ErrEmptyResult))
	}
	return nil
}

// Validate reports the error Search would return before starting a run: a
// credential read failure or a *ConfigurationError. It has no side effects,
// so a caller can check input without disturbing an in-flight search.
func (c *Controller) Validate(ctx context.Context, query string) error {
	_, err := c.validate(ctx, query)
	return err
}

func (c *Controller) validate(ctx context.Context, query string) (string, error) {
	key, err := credential.Lookup(ctx, c.creds)
	if err != nil {
		return "", fmt.Errorf("read credential: %w", err)
	}
	if key == "" {
		return "", &ConfigurationError{Reason: ReasonMissingKey}
	}
	if strings.TrimSpace(query) == "" {
		return "", &ConfigurationError{Reason: ReasonEmptyQuery}
	}
	return key, nil
}

// begin registers a new search generation, cancelling any in-flight run.
// The date boundary is fixed here so the server-side publishedAfter and the
// client-side date filter agree.
func (c *Controller) begin(ctx context.Context) (context.Context, uint64, time.Time, *time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
	}
	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.gen++

	at := c.now()
	return runCtx, c.gen, at, c.state.filters.Date.Boundary(at)
}

func (c *Controller) isCurrent(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen == gen
}

func (c *Controller) reject(err *ConfigurationError) error {
	c.notify(err)
	return err
}

func (c *Controller) notify(err error) {
	if msg := UserMessage(err); msg != "" {
		c.presenter.ShowMessage(msg)
	}
}

// Cancel aborts any in-flight search. Its result will be discarded.
func (c *Controller) Cancel() {
	c.mu.Lock()
	inFlight := c.cancel != nil
	if inFlight {
		c.cancel()
		c.cancel = nil
		c.gen++
	}
	c.mu.Unlock()

	if inFlight {
		c.presenter.SetBusy(false)
	}
}

// ActivateSort applies a sort-header activation and re-renders.
func (c *Controller) ActivateSort(field results.SortField) Snapshot {
	return c.update(func(s *State) { s.ActivateSort(field) })
}

// SetSort sets the sort explicitly and re-renders.
func (c *Controller) SetSort(st results.SortState) Snapshot {
	return c.update(func(s *State) { s.SetSort(st) })
}

// ToggleView switches gallery/table and re-renders.
func (c *Controller) ToggleView() Snapshot {
	return c.update(func(s *State) { s.ToggleView() })
}

// SetView sets the view explicitly and re-renders.
func (c *Controller) SetView(v ViewMode) Snapshot {
	return c.update(func(s *State) { s.SetView(v) })
}

// SetFilters replaces the filters and re-renders.
func (c *Controller) SetFilters(f Filters) Snapshot {
	return c.update(func(s *State) { s.SetFilters(f) })
}

// UpdateFilters applies fn to a copy of the current filters.
func (c *Controller) UpdateFilters(fn func(*Filters)) Snapshot {
	return c.update(func(s *State) {
		f := s.Filters()
		fn(&f)
		s.SetFilters(f)
	})
}

// Snapshot returns the current projection without rendering.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) update(fn func(*State)) Snapshot {
	c.mu.Lock()
	fn(c.state)
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.presenter.Render(snap)
	return snap
}

func (c *Controller) snapshotLocked() Snapshot {
	return Snapshot{
		Query:      c.query,
		Order:      c.order,
		Records:    c.state.Projection(),
		Total:      len(c.state.records),
		View:       c.state.view,
		Sort:       c.state.sort,
		Filters:    c.state.Filters(),
		SearchedAt: c.state.searchedAt,
	}
}

// ExportFile writes the current projection to path as CSV, creating parent
// directories. It returns ErrExportEmpty, creating no file, when the
// projection is empty. The outcome is also reported to the presenter.
func (c *Controller) ExportFile(path string) error {
	c.mu.Lock()
	var buf bytes.Buffer
	err := c.state.Export(&buf)
	rows := len(c.state.Projection())
	c.mu.Unlock()

	if err == nil {
		err = writeFile(path, buf.Bytes())
	}
	if err != nil {
		c.notify(err)
		return err
	}
	c.logger.Info("exported results", "path", path, "rows", rows)
	c.presenter.ShowMessage(fmt.Sprintf("exported %d rows to %s", rows, path))
	return nil
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create export directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	return nil
}

// SaveKey stores a new API key. Blank keys are rejected.
func (c *Controller) SaveKey(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return c.reject(&ConfigurationError{Reason: ReasonEmptyKey})
	}
	if err := c.creds.Set(ctx, key); err != nil {
		err = fmt.Errorf("save credential: %w", err)
		c.notify(err)
		return err
	}
	c.presenter.ShowMessage("API key saved")
	return nil
}

// IsSilent reports whether err should produce no user-visible output.
func IsSilent(err error) bool {
	return errors.Is(err, ErrSuperseded) || errors.Is(err, context.Canceled)
}

type nopPresenter struct{}

func (nopPresenter) SetBusy(bool) {}

func (nopPresenter) ShowMessage(string) {}

func (nopPresenter) Render(Snapshot) {}
