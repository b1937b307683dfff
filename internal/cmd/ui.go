package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/runger/tubedash/internal/tui"
	"github.com/runger/tubedash/internal/youtube"
)

var uiOrder string

var uiCmd = &cobra.Command{
	Use:     "ui [query]",
	Short:   "Open the interactive dashboard",
	GroupID: groupCore,
	Long: `Open the full-screen dashboard. With a query, the search starts right away.

Keys:
  /        edit the query         enter    search
  tab      gallery/table          p u w k r  sort by published, length, views, likes, performance
  1-5      toggle a level         0        clear levels
  L D O    cycle length, date, order
  e        export CSV             :        command line (:help)
  q        quit

Examples:
  tubedash ui
  tubedash ui "go tutorial"
  tubedash ui --order viewCount "homelab"`,
	Args: cobra.ArbitraryArgs,
	RunE: runUI,
}

func init() {
	uiCmd.Flags().StringVar(&uiOrder, "order", "", "initial order: date, rating, relevance, title, viewCount")
}

func runUI(cmd *cobra.Command, args []string) error {
	a, err := openApp(nil)
	if err != nil {
		return err
	}
	defer a.Close()

	order := a.defaultOrder()
	if uiOrder != "" {
		if order, err = youtube.ParseOrder(uiOrder); err != nil {
			return err
		}
	}

	ctrl := a.newController(nil)
	err = tui.Run(ctrl, tui.Options{
		Query:      strings.Join(args, " "),
		Order:      order,
		ExportPath: a.cfg.ExportPath(),
		TagLimit:   a.cfg.UI.TagLimit,
		Height:     a.cfg.UI.TableHeight,
	})
	if err != nil {
		a.logger.Error("dashboard failed", "error", err)
		return fmt.Errorf("dashboard: %w", err)
	}
	return nil
}
