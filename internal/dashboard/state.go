// Package dashboard owns the application state of a search session: the
// canonical record collection, the active filters, sort and view, and the
// controller that drives searches through a presentation port.
package dashboard

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/runger/tubedash/internal/export"
	"github.com/runger/tubedash/internal/perf"
	"github.com/runger/tubedash/internal/results"
	"github.com/runger/tubedash/internal/timefmt"
)

// ViewMode selects how the projection is presented.
type ViewMode string

const (
	ViewGallery ViewMode = "gallery"
	ViewTable   ViewMode = "table"
)

// ParseViewMode validates a view name. Empty means gallery.
func ParseViewMode(s string) (ViewMode, error) {
	switch ViewMode(s) {
	case "", ViewGallery:
		return ViewGallery, nil
	case ViewTable:
		return ViewTable, nil
	}
	return "", fmt.Errorf("invalid view %q (must be gallery or table)", s)
}

// Toggle returns the other view mode.
func (v ViewMode) Toggle() ViewMode {
	if v == ViewTable {
		return ViewGallery
	}
	return ViewTable
}

// DateMode restricts records to a trailing window of calendar months.
type DateMode string

const (
	DateAll DateMode = "all"
	Date1M  DateMode = "1m"
	Date2M  DateMode = "2m"
	Date6M  DateMode = "6m"
	Date12M DateMode = "12m"
)

// DateModes lists the modes in the order the UI cycles through them.
var DateModes = []DateMode{DateAll, Date1M, Date2M, Date6M, Date12M}

var dateMonths = map[DateMode]int{Date1M: 1, Date2M: 2, Date6M: 6, Date12M: 12}

// ParseDateMode validates a date mode name. Empty means all.
func ParseDateMode(s string) (DateMode, error) {
	if s == "" || DateMode(s) == DateAll {
		return DateAll, nil
	}
	if _, ok := dateMonths[DateMode(s)]; ok {
		return DateMode(s), nil
	}
	return "", fmt.Errorf("invalid date mode %q (must be all, 1m, 2m, 6m, or 12m)", s)
}

// Boundary returns the earliest publish time admitted by the mode, relative
// to ref, or nil for DateAll.
func (d DateMode) Boundary(ref time.Time) *time.Time {
	n, ok := dateMonths[d]
	if !ok {
		return nil
	}
	b := timefmt.MonthsAgo(ref, n)
	return &b
}

// Filters is the active filter selection. The zero value (after Normalize)
// restricts nothing.
type Filters struct {
	Length results.LengthMode
	Date   DateMode
	Levels results.LevelSet
}

// DefaultFilters restrict nothing.
func DefaultFilters() Filters {
	return Filters{Length: results.LengthAll, Date: DateAll, Levels: results.NewLevelSet()}
}

// normalize fills empty fields and copies the level set so callers cannot
// alias state.
func (f Filters) normalize() Filters {
	if f.Length == "" {
		f.Length = results.LengthAll
	}
	if f.Date == "" {
		f.Date = DateAll
	}
	levels := results.NewLevelSet()
	for l := range f.Levels {
		levels[l] = struct{}{}
	}
	f.Levels = levels
	return f
}

// SortedLevels returns the selected levels in ascending order.
func (f Filters) SortedLevels() []int {
	out := make([]int, 0, len(f.Levels))
	for l := range f.Levels {
		out = append(out, l)
	}
	slices.Sort(out)
	return out
}

// ParseLevels parses level arguments such as ["4", "5"] or ["4,5"]. No
// arguments yield an empty set, which selects every level.
func ParseLevels(args []string) (results.LevelSet, error) {
	set := results.NewLevelSet()
	for _, a := range args {
		for _, part := range strings.Split(a, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			n, err := strconv.Atoi(part)
			if err != nil || !perf.ValidLevel(n) {
				return nil, fmt.Errorf("invalid performance level %q (must be 1-5)", part)
			}
			set[n] = struct{}{}
		}
	}
	return set, nil
}

// State is the canonical search-session state. It is not safe for
// concurrent use; Controller serializes access.
type State struct {
	records    []results.Record
	searchedAt time.Time
	view       ViewMode
	sort       results.SortState
	filters    Filters
}

// NewState returns an empty state in gallery view with the default sort.
func NewState() *State {
	return &State{
		records: []results.Record{},
		view:    ViewGallery,
		sort:    results.DefaultSort,
		filters: DefaultFilters(),
	}
}

// CompleteSearch replaces the record collection wholesale and resets the
// sort and view. Filters are kept.
func (s *State) CompleteSearch(records []results.Record, at time.Time) {
	s.records = slices.Clone(records)
	if s.records == nil {
		s.records = []results.Record{}
	}
	s.searchedAt = at
	s.sort = results.DefaultSort
	s.view = ViewGallery
}

// ActivateSort flips the direction when field is already active, otherwise
// makes field active in ascending order.
func (s *State) ActivateSort(field results.SortField) {
	if s.sort.Field == field {
		s.sort.Direction = s.sort.Direction.Flip()
		return
	}
	s.sort = results.SortState{Field: field, Direction: results.Asc}
}

// SetSort sets the sort explicitly.
func (s *State) SetSort(st results.SortState) {
	s.sort = st
}

// ToggleView switches between gallery and table.
func (s *State) ToggleView() {
	s.view = s.view.Toggle()
}

// SetView sets the view explicitly.
func (s *State) SetView(v ViewMode) {
	s.view = v
}

// SetFilters replaces the filter selection. Sort and view are untouched.
func (s *State) SetFilters(f Filters) {
	s.filters = f.normalize()
}

// View returns the active view mode.
func (s *State) View() ViewMode { return s.view }

// Sort returns the active sort.
func (s *State) Sort() results.SortState { return s.sort }

// Filters returns a copy of the active filters.
func (s *State) Filters() Filters { return s.filters.normalize() }

// Projection filters then sorts the canonical collection. It is recomputed
// on every call.
func (s *State) Projection() []results.Record {
	after := s.filters.Date.Boundary(s.searchedAt)
	filtered := results.Filter(s.records, s.filters.Length, after, s.filters.Levels)
	return results.Sort(filtered, s.sort.Field, s.sort.Direction)
}

// Export writes the current projection as CSV. It refuses with
// ErrExportEmpty, writing nothing, when the projection is empty.
func (s *State) Export(w io.Writer) error {
	rows := s.Projection()
	if len(rows) == 0 {
		return ErrExportEmpty
	}
	return export.WriteCSV(w, rows)
}
