package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/runger/tubedash/internal/dashboard"
	"github.com/runger/tubedash/internal/results"
	"github.com/runger/tubedash/internal/textutil"
)

// Style holds the escape sequences used for emphasis. The zero value prints
// plain text.
type Style struct {
	Bold   string
	Dim    string
	Cyan   string
	Green  string
	Yellow string
	Red    string
	Reset  string
}

// ANSI is the default colored style.
func ANSI() Style {
	return Style{
		Bold:   "\033[1m",
		Dim:    "\033[2m",
		Cyan:   "\033[0;36m",
		Green:  "\033[0;32m",
		Yellow: "\033[0;33m",
		Red:    "\033[0;31m",
		Reset:  "\033[0m",
	}
}

// Options controls text rendering.
type Options struct {
	Width    int // terminal width; 0 means 100
	TagLimit int
	Style    Style
}

func (o Options) width() int {
	if o.Width <= 0 {
		return 100
	}
	return o.Width
}

// WriteSnapshot renders the snapshot in its view mode.
func WriteSnapshot(w io.Writer, snap dashboard.Snapshot, opts Options) error {
	if snap.View == dashboard.ViewTable {
		return WriteTable(w, snap, opts)
	}
	return WriteGallery(w, snap, opts)
}

// Summary describes the projection in one line.
func Summary(snap dashboard.Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d of %d results", len(snap.Records), snap.Total)
	if snap.Query != "" {
		fmt.Fprintf(&b, " for %q", snap.Query)
	}
	fmt.Fprintf(&b, " · order %s · sort %s %s", snap.Order, snap.Sort.Field, snap.Sort.Direction.Arrow())
	fmt.Fprintf(&b, " · length %s · date %s", snap.Filters.Length, snap.Filters.Date)
	if levels := snap.Filters.SortedLevels(); len(levels) > 0 {
		fmt.Fprintf(&b, " · perf %s", strings.Trim(fmt.Sprint(levels), "[]"))
	}
	return b.String()
}

// WriteGallery renders one card per record.
func WriteGallery(w io.Writer, snap dashboard.Snapshot, opts Options) error {
	st := opts.Style
	width := opts.width()
	bw := &errWriter{w: w}

	bw.printf("%s%s%s\n\n", st.Dim, Summary(snap), st.Reset)
	if len(snap.Records) == 0 {
		bw.printf("No results.\n")
		return bw.err
	}
	for i, r := range snap.Records {
		bw.printf("%s%2d. %s%s\n", st.Bold, i+1, textutil.Truncate(textutil.Clean(r.Title), width-4), st.Reset)
		bw.printf("    %s · %s\n", textutil.Truncate(Channel(r), width-20), Date(r.PublishedAt))
		bw.printf("    length %s · views %s · likes %s\n", r.DurationHMS, Count(r.ViewCount), Count(r.LikeCount))
		bw.printf("    performance %s%s%s\n", levelColor(st, r.PerformanceLevel), Performance(r), st.Reset)
		if desc := textutil.Clean(r.Description); desc != "" {
			bw.printf("    %s%s%s\n", st.Dim, textutil.Truncate(desc, width-4), st.Reset)
		}
		if tags := Tags(r.Tags, opts.TagLimit); tags != "" {
			bw.printf("    %s%s%s\n", st.Cyan, textutil.Truncate(tags, width-4), st.Reset)
		}
		bw.printf("    %s\n\n", r.WatchURL())
	}
	return bw.err
}

// WriteTable renders an aligned table with the sort arrow on the active
// column.
func WriteTable(w io.Writer, snap dashboard.Snapshot, opts Options) error {
	st := opts.Style
	bw := &errWriter{w: w}

	bw.printf("%s%s%s\n\n", st.Dim, Summary(snap), st.Reset)

	header := make([]string, len(Columns))
	for i, c := range Columns {
		header[i] = pad(HeaderTitle(c, snap.Sort), c)
	}
	bw.printf("%s%s%s\n", st.Bold, strings.Join(header, "  "), st.Reset)

	if len(snap.Records) == 0 {
		bw.printf("No results.\n")
		return bw.err
	}
	for _, r := range snap.Records {
		cells := Cells(r, opts.TagLimit)
		for i, c := range Columns {
			cells[i] = pad(cells[i], c)
		}
		bw.printf("%s\n", strings.TrimRight(strings.Join(cells, "  "), " "))
	}
	return bw.err
}

func pad(s string, c Column) string {
	if c.Right {
		return textutil.PadLeft(s, c.Width)
	}
	return textutil.PadRight(s, c.Width)
}

func levelColor(st Style, level *int) string {
	if level == nil {
		return st.Dim
	}
	switch {
	case *level >= 5:
		return st.Green + st.Bold
	case *level == 4:
		return st.Green
	case *level == 3:
		return st.Yellow
	default:
		return st.Red
	}
}

// jsonOutput is the --json document.
type jsonOutput struct {
	Query   string            `json:"query"`
	Order   string            `json:"order"`
	Sort    results.SortState `json:"sort"`
	Total   int               `json:"total"`
	Count   int               `json:"count"`
	Results []results.Record  `json:"results"`
}

// WriteJSON writes the projection as one JSON document.
func WriteJSON(w io.Writer, snap dashboard.Snapshot) error {
	recs := snap.Records
	if recs == nil {
		recs = []results.Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(jsonOutput{
		Query:   snap.Query,
		Order:   string(snap.Order),
		Sort:    snap.Sort,
		Total:   snap.Total,
		Count:   len(recs),
		Results: recs,
	})
}

// errWriter keeps the first write error so rendering code can stay linear.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}

// TextPresenter implements dashboard.Presenter for headless commands.
// Rendered snapshots go to Out; status and messages go to Err.
type TextPresenter struct {
	Out     io.Writer
	Err     io.Writer
	Options Options
	JSON    bool

	mu sync.Mutex
}

func (p *TextPresenter) SetBusy(busy bool) {
	if !busy || p.JSON {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.Err, "%sSearching…%s\n", p.Options.Style.Dim, p.Options.Style.Reset)
}

func (p *TextPresenter) ShowMessage(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.Err, "%s%s%s\n", p.Options.Style.Yellow, msg, p.Options.Style.Reset)
}

func (p *TextPresenter) Render(snap dashboard.Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	var err error
	if p.JSON {
		err = WriteJSON(p.Out, snap)
	} else {
		err = WriteSnapshot(p.Out, snap, p.Options)
	}
	if err != nil {
		fmt.Fprintf(p.Err, "render: %v\n", err)
	}
}
