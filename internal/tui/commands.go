package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/shlex"

	"github.com/runger/tubedash/internal/dashboard"
	"github.com/runger/tubedash/internal/results"
	"github.com/runger/tubedash/internal/youtube"
)

// commandHelp lists the ":" commands.
const commandHelp = "commands: search <q> · export [path] · sort <field> [asc|desc] · order <mode> · " +
	"length <mode> · date <mode> · perf [1-5...] · view <gallery|table> · key <value> · quit"

// runCommand executes one ":" command line. Arguments are split with shell
// quoting rules, so `:export "my results.csv"` works.
func (m Model) runCommand(line string) (tea.Model, tea.Cmd) {
	args, err := shlex.Split(line)
	if err != nil {
		m.setMessage(fmt.Sprintf("parse command: %v", err), true)
		return m, nil
	}
	if len(args) == 0 {
		return m, nil
	}

	name, rest := strings.ToLower(args[0]), args[1:]
	switch name {
	case "q", "quit":
		return m.quit()

	case "help", "?":
		m.setMessage(commandHelp, false)

	case "search", "s":
		if len(rest) > 0 {
			m.query.SetValue(strings.Join(rest, " "))
		}
		cmd := m.startSearch()
		return m, cmd

	case "export", "e":
		path := m.opts.ExportPath
		if len(rest) > 0 {
			path = rest[0]
		}
		m.exportTo(path)

	case "sort":
		err = m.cmdSort(rest)

	case "order":
		err = m.cmdOrder(rest)

	case "length", "len":
		err = m.cmdLength(rest)

	case "date":
		err = m.cmdDate(rest)

	case "perf":
		err = m.cmdPerf(rest)

	case "view":
		err = m.cmdView(rest)

	case "key":
		if len(rest) != 1 {
			err = fmt.Errorf("usage: key <value>")
			break
		}
		if err = m.ctrl.SaveKey(context.Background(), rest[0]); err == nil {
			m.setMessage("API key saved", false)
		}

	default:
		err = fmt.Errorf("unknown command %q (try :help)", name)
	}

	if err != nil {
		m.setMessage(dashboard.UserMessage(err), true)
	}
	return m, nil
}

func (m *Model) cmdSort(args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return fmt.Errorf("usage: sort <field> [asc|desc]")
	}
	field, err := results.ParseSortField(args[0])
	if err != nil {
		return err
	}
	if len(args) == 1 {
		m.applySnapshot(m.ctrl.ActivateSort(field))
		return nil
	}
	dir := results.Direction(strings.ToLower(args[1]))
	if dir != results.Asc && dir != results.Desc {
		return fmt.Errorf("invalid direction %q (must be asc or desc)", args[1])
	}
	m.applySnapshot(m.ctrl.SetSort(results.SortState{Field: field, Direction: dir}))
	return nil
}

func (m *Model) cmdOrder(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: order <relevance|date|viewCount|rating|title>")
	}
	o, err := youtube.ParseOrder(args[0])
	if err != nil {
		return err
	}
	m.order = o
	m.setMessage(fmt.Sprintf("order %s applies to the next search", o), false)
	return nil
}

func (m *Model) cmdLength(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: length <all|shorts|long>")
	}
	l, err := results.ParseLengthMode(args[0])
	if err != nil {
		return err
	}
	m.applySnapshot(m.ctrl.UpdateFilters(func(f *dashboard.Filters) { f.Length = l }))
	return nil
}

func (m *Model) cmdDate(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: date <all|1m|2m|6m|12m>")
	}
	d, err := dashboard.ParseDateMode(args[0])
	if err != nil {
		return err
	}
	m.applySnapshot(m.ctrl.UpdateFilters(func(f *dashboard.Filters) { f.Date = d }))
	return nil
}

// cmdPerf replaces the level selection; no arguments clears it. Levels may
// be given separately or comma-joined.
func (m *Model) cmdPerf(args []string) error {
	levels, err := dashboard.ParseLevels(args)
	if err != nil {
		return err
	}
	m.applySnapshot(m.ctrl.UpdateFilters(func(f *dashboard.Filters) { f.Levels = levels }))
	return nil
}

func (m *Model) cmdView(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: view <gallery|table>")
	}
	v, err := dashboard.ParseViewMode(args[0])
	if err != nil {
		return err
	}
	m.applySnapshot(m.ctrl.SetView(v))
	return nil
}
