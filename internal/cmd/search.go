package cmd

import (
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/runger/tubedash/internal/dashboard"
	"github.com/runger/tubedash/internal/render"
	"github.com/runger/tubedash/internal/results"
	"github.com/runger/tubedash/internal/youtube"
)

var (
	searchOrder  string
	searchLength string
	searchDate   string
	searchPerf   string
	searchSort   string
	searchDesc   bool
	searchView   string
	searchJSON   bool
	searchCSV    string
)

var searchCmd = &cobra.Command{
	Use:     "search <query>",
	Short:   "Search YouTube and print enriched results",
	GroupID: groupCore,
	Long: `Search YouTube, enrich every hit with video and channel statistics, then
filter, sort and print the results without opening the dashboard.

Performance is views per channel subscriber, graded into levels 1-5.

Examples:
  tubedash search "go tutorial"
  tubedash search --order viewCount --length long --date 6m homelab
  tubedash search --perf 4,5 --sort viewCount --desc --view table rust
  tubedash search --json "bubble tea" | jq '.results[].title'
  tubedash search --csv out/results.csv golang`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVar(&searchOrder, "order", "", "upstream order: date, rating, relevance, title, viewCount")
	searchCmd.Flags().StringVar(&searchLength, "length", "all", "length filter: all, shorts, long")
	searchCmd.Flags().StringVar(&searchDate, "date", "all", "published within: all, 1m, 2m, 6m, 12m")
	searchCmd.Flags().StringVar(&searchPerf, "perf", "", "performance levels to keep, e.g. 4,5")
	searchCmd.Flags().StringVar(&searchSort, "sort", "", "sort field: publishedAt, durationSec, viewCount, likeCount, performanceRatio")
	searchCmd.Flags().BoolVar(&searchDesc, "desc", false, "sort descending (with --sort)")
	searchCmd.Flags().StringVar(&searchView, "view", "gallery", "output layout: gallery or table")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	searchCmd.Flags().StringVar(&searchCSV, "csv", "", "also export the results to this CSV file")
}

// searchOptions are the parsed search flags.
type searchOptions struct {
	order   youtube.Order
	filters dashboard.Filters
	sort    *results.SortState
	view    dashboard.ViewMode
}

func parseSearchFlags(defaultOrder youtube.Order) (searchOptions, error) {
	opts := searchOptions{order: defaultOrder, filters: dashboard.DefaultFilters()}
	var err error

	if searchOrder != "" {
		if opts.order, err = youtube.ParseOrder(searchOrder); err != nil {
			return opts, err
		}
	}
	if opts.filters.Length, err = results.ParseLengthMode(searchLength); err != nil {
		return opts, err
	}
	if opts.filters.Date, err = dashboard.ParseDateMode(searchDate); err != nil {
		return opts, err
	}
	if searchPerf != "" {
		if opts.filters.Levels, err = dashboard.ParseLevels([]string{searchPerf}); err != nil {
			return opts, err
		}
	}
	if searchSort != "" {
		field, err := results.ParseSortField(searchSort)
		if err != nil {
			return opts, err
		}
		dir := results.Asc
		if searchDesc {
			dir = results.Desc
		}
		opts.sort = &results.SortState{Field: field, Direction: dir}
	}
	if opts.view, err = dashboard.ParseViewMode(searchView); err != nil {
		return opts, err
	}
	return opts, nil
}

// heldPresenter forwards status and messages but drops renders while held,
// so the snapshot is printed once after flags are applied.
type heldPresenter struct {
	*render.TextPresenter
	held bool
}

func (p *heldPresenter) Render(snap dashboard.Snapshot) {
	if !p.held {
		p.TextPresenter.Render(snap)
	}
}

func runSearch(cmd *cobra.Command, args []string) error {
	applyColorMode()

	a, err := openApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	opts, err := parseSearchFlags(a.defaultOrder())
	if err != nil {
		return err
	}

	out := &heldPresenter{
		TextPresenter: &render.TextPresenter{
			Out: cmd.OutOrStdout(),
			Err: cmd.ErrOrStderr(),
			Options: render.Options{
				Width:    terminalWidth(),
				TagLimit: a.cfg.UI.TagLimit,
				Style:    textStyle(),
			},
			JSON: searchJSON,
		},
		held: true,
	}
	ctrl := a.newController(out)
	ctrl.SetFilters(opts.filters)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	if err := ctrl.Search(ctx, strings.Join(args, " "), opts.order); err != nil {
		// The controller has already shown the message.
		if dashboard.IsSilent(err) || ctx.Err() != nil {
			return &exitError{code: 130}
		}
		return &exitError{code: 1}
	}

	if opts.sort != nil {
		ctrl.SetSort(*opts.sort)
	}
	snap := ctrl.SetView(opts.view)

	out.held = false
	if snap.Total > 0 || searchJSON {
		out.Render(snap)
	}

	if searchCSV != "" {
		if err := ctrl.ExportFile(searchCSV); err != nil {
			return &exitError{code: 1}
		}
	}
	return nil
}
