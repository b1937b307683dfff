package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/runger/tubedash/internal/dashboard"
	"github.com/runger/tubedash/internal/results"
	"github.com/runger/tubedash/internal/youtube"
)

// handleKey dispatches keyboard input by mode.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m.quit()
	}

	switch m.mode {
	case modeQuery:
		return m.handleQueryKey(msg)
	case modeCommand:
		return m.handleCommandKey(msg)
	}
	return m.handleBrowseKey(msg)
}

func (m Model) handleQueryKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.mode = modeBrowse
		m.query.Blur()
		cmd := m.startSearch()
		return m, cmd
	case tea.KeyEsc:
		m.mode = modeBrowse
		m.query.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.query, cmd = m.query.Update(msg)
	return m, cmd
}

func (m Model) handleCommandKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		line := m.cmdline.Value()
		m.mode = modeBrowse
		m.cmdline.Blur()
		m.cmdline.Reset()
		return m.runCommand(line)
	case tea.KeyEsc:
		m.mode = modeBrowse
		m.cmdline.Blur()
		m.cmdline.Reset()
		return m, nil
	}
	var cmd tea.Cmd
	m.cmdline, cmd = m.cmdline.Update(msg)
	return m, cmd
}

func (m Model) handleBrowseKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if field, ok := sortKeys[key]; ok {
		m.applySnapshot(m.ctrl.ActivateSort(field))
		return m, nil
	}

	switch key {
	case "q":
		return m.quit()

	case "/":
		m.mode = modeQuery
		cmd := m.query.Focus()
		return m, cmd

	case ":":
		m.mode = modeCommand
		cmd := m.cmdline.Focus()
		return m, cmd

	case "enter":
		cmd := m.startSearch()
		return m, cmd

	case "tab":
		m.applySnapshot(m.ctrl.ToggleView())
		return m, nil

	case "1", "2", "3", "4", "5":
		level := int(key[0] - '0')
		m.applySnapshot(m.ctrl.UpdateFilters(func(f *dashboard.Filters) {
			if f.Levels.Has(level) {
				delete(f.Levels, level)
			} else {
				f.Levels[level] = struct{}{}
			}
		}))
		return m, nil

	case "0":
		m.applySnapshot(m.ctrl.UpdateFilters(func(f *dashboard.Filters) {
			f.Levels = results.NewLevelSet()
		}))
		return m, nil

	case "L":
		m.applySnapshot(m.ctrl.UpdateFilters(func(f *dashboard.Filters) {
			f.Length = cycle(results.LengthModes, f.Length)
		}))
		return m, nil

	case "D":
		m.applySnapshot(m.ctrl.UpdateFilters(func(f *dashboard.Filters) {
			f.Date = cycle(dashboard.DateModes, f.Date)
		}))
		return m, nil

	case "O":
		m.order = cycle(youtube.Orders, m.order)
		m.setMessage(fmt.Sprintf("order %s applies to the next search", m.order), false)
		return m, nil

	case "e":
		m.exportTo(m.opts.ExportPath)
		return m, nil

	case "up":
		m.moveCursor(-1)
		return m, nil
	case "down":
		m.moveCursor(1)
		return m, nil
	case "pgup":
		m.moveCursor(-m.pageSize())
		return m, nil
	case "pgdown":
		m.moveCursor(m.pageSize())
		return m, nil
	case "home":
		m.moveCursor(-len(m.snap.Records))
		return m, nil
	case "end":
		m.moveCursor(len(m.snap.Records))
		return m, nil
	}
	return m, nil
}

// moveCursor moves the selection by delta, keeping the table in step.
func (m *Model) moveCursor(delta int) {
	m.cursor += delta
	m.clampCursor()
	m.table.SetCursor(m.cursor)
}

// exportTo writes the projection and reports the outcome in the status line.
func (m *Model) exportTo(path string) {
	if err := m.ctrl.ExportFile(path); err != nil {
		m.setMessage(dashboard.UserMessage(err), true)
		return
	}
	m.setMessage(fmt.Sprintf("exported %d rows to %s", len(m.snap.Records), path), false)
}
