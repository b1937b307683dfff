package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/runger/tubedash/internal/dashboard"
	"github.com/runger/tubedash/internal/render"
	"github.com/runger/tubedash/internal/results"
	"github.com/runger/tubedash/internal/textutil"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("124")).Padding(0, 1)
	accentStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	normalStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	tagStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	cardStyle     = lipgloss.NewStyle().BorderStyle(lipgloss.NormalBorder()).BorderLeft(true).BorderForeground(lipgloss.Color("238")).PaddingLeft(1)
	activeCard    = cardStyle.BorderStyle(lipgloss.ThickBorder()).BorderForeground(lipgloss.Color("214"))
)

// levelStyles colors the performance label by level.
var levelStyles = map[int]lipgloss.Style{
	1: lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	2: lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
	3: lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
	4: lipgloss.NewStyle().Foreground(lipgloss.Color("76")),
	5: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("46")),
}

// chrome is the number of lines outside the result body.
const chrome = 6

// cardLines is the height of one gallery card.
const cardLines = 5

// helpKeys are the browse-mode bindings shown in the footer.
var helpKeys = []key.Binding{
	key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "query")),
	key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "search")),
	key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "view")),
	key.NewBinding(key.WithKeys("p", "u", "w", "k", "r"), key.WithHelp("p/u/w/k/r", "sort")),
	key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "0"), key.WithHelp("1-5/0", "perf")),
	key.NewBinding(key.WithKeys("L", "D", "O"), key.WithHelp("L/D/O", "length/date/order")),
	key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "export")),
	key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "command")),
	key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
}

func newTable() table.Model {
	st := table.DefaultStyles()
	st.Header = st.Header.BorderStyle(lipgloss.NormalBorder()).BorderBottom(true).Bold(true)
	st.Selected = st.Selected.Foreground(lipgloss.Color("15")).Background(lipgloss.Color("62"))
	return table.New(
		table.WithColumns(tableColumns(results.DefaultSort, 0)),
		table.WithFocused(true),
		table.WithStyles(st),
	)
}

// tableColumns builds the header for the active sort. When width is known
// the title column absorbs any shortfall.
func tableColumns(sort results.SortState, width int) []table.Column {
	cols := make([]table.Column, len(render.Columns))
	total := 0
	for i, c := range render.Columns {
		cols[i] = table.Column{Title: render.HeaderTitle(c, sort), Width: c.Width}
		total += c.Width + 2 // cell padding
	}
	if width > 0 && total > width {
		cols[0].Width = max(cols[0].Width-(total-width), 10)
	}
	return cols
}

func tableRows(records []results.Record, tagLimit int) []table.Row {
	rows := make([]table.Row, len(records))
	for i, r := range records {
		cells := render.Cells(r, tagLimit)
		for j, c := range render.Columns {
			if c.Right {
				cells[j] = textutil.PadLeft(cells[j], c.Width)
			}
		}
		rows[i] = table.Row(cells)
	}
	return rows
}

func (m *Model) bodyHeight() int {
	if m.opts.Height > 0 {
		return m.opts.Height
	}
	if m.height <= 0 {
		return 20
	}
	return max(m.height-chrome, 3)
}

func (m *Model) resizeTable() {
	m.table.SetHeight(m.bodyHeight())
	if m.width > 0 {
		m.table.SetWidth(m.width)
	}
	m.table.SetColumns(tableColumns(m.snap.Sort, m.width))
}

// pageSize is how far pgup/pgdown move in the current view.
func (m Model) pageSize() int {
	if m.snap.View == dashboard.ViewTable {
		return max(m.bodyHeight()-2, 1)
	}
	return max(m.bodyHeight()/cardLines, 1)
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.summaryLine()))
	b.WriteString("\n")

	switch {
	case m.busy && len(m.snap.Records) == 0:
		b.WriteString(m.spinner.View() + " " + dimStyle.Render("Searching..."))
	case len(m.snap.Records) == 0:
		b.WriteString(dimStyle.Render(m.emptyText()))
	case m.snap.View == dashboard.ViewTable:
		b.WriteString(m.table.View())
	default:
		b.WriteString(m.renderGallery())
	}
	b.WriteString("\n")

	b.WriteString(m.renderStatus())
	b.WriteString("\n")
	b.WriteString(m.renderInput())
	b.WriteString("\n")
	b.WriteString(help.New().ShortHelpView(helpKeys))
	return b.String()
}

func (m Model) renderHeader() string {
	header := titleStyle.Render("tubedash")
	if m.busy {
		header += " " + m.spinner.View()
	}
	if m.snap.Query != "" {
		header += " " + accentStyle.Render(textutil.Truncate(m.snap.Query, max(m.width-20, 10)))
	}
	return header
}

// summaryLine describes the projection and the order for the next search.
func (m Model) summaryLine() string {
	if m.snap.SearchedAt.IsZero() {
		return fmt.Sprintf("order %s · no search yet", m.order)
	}
	s := render.Summary(m.snap)
	if m.order != m.snap.Order {
		s += fmt.Sprintf(" · next order %s", m.order)
	}
	return s
}

func (m Model) emptyText() string {
	switch {
	case m.snap.SearchedAt.IsZero():
		return "Type a query and press enter."
	case m.snap.Total == 0:
		return dashboard.ErrEmptyResult.Error()
	}
	return "No results match the current filters."
}

func (m Model) renderStatus() string {
	if m.message == "" {
		return ""
	}
	if m.msgIsErr {
		return errorStyle.Render(m.message)
	}
	return accentStyle.Render(m.message)
}

func (m Model) renderInput() string {
	switch m.mode {
	case modeQuery:
		return m.query.View()
	case modeCommand:
		return m.cmdline.View()
	}
	if q := m.query.Value(); q != "" {
		return dimStyle.Render("/ " + q)
	}
	return ""
}

// renderGallery draws the cards that fit on screen, keeping the cursor
// visible.
func (m Model) renderGallery() string {
	perPage := max(m.bodyHeight()/cardLines, 1)
	start := 0
	if m.cursor >= perPage {
		start = m.cursor - perPage + 1
	}
	end := min(start+perPage, len(m.snap.Records))

	width := m.width
	if width <= 0 {
		width = 100
	}
	inner := max(width-4, 20)

	cards := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		cards = append(cards, m.renderCard(i, inner))
	}
	return strings.Join(cards, "\n")
}

func (m Model) renderCard(i, width int) string {
	r := m.snap.Records[i]

	titleS, box := normalStyle, cardStyle
	if i == m.cursor {
		titleS, box = selectedStyle, activeCard
	}

	lines := []string{
		titleS.Render(textutil.Truncate(fmt.Sprintf("%d. %s", i+1, textutil.Clean(r.Title)), width)),
		dimStyle.Render(textutil.Truncate(render.Channel(r)+" · "+render.Date(r.PublishedAt), width)),
		fmt.Sprintf("%s · views %s · likes %s · %s",
			r.DurationHMS, render.Count(r.ViewCount), render.Count(r.LikeCount), performance(r)),
		tagStyle.Render(textutil.Truncate(render.Tags(r.Tags, m.opts.TagLimit), width)),
		dimStyle.Render(r.WatchURL()),
	}
	return box.Render(strings.Join(lines, "\n"))
}

func performance(r results.Record) string {
	label := render.Performance(r)
	if r.PerformanceLevel == nil {
		return dimStyle.Render(label)
	}
	if st, ok := levelStyles[*r.PerformanceLevel]; ok {
		return st.Render(label)
	}
	return label
}
