// Package tui implements the default interactive Resolver: a fuzzy-ish
// single/multi-select list picker and a free-text prompt, built with
// bubbletea and lipgloss.
package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	styleTitle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("69"))
	stylePreview  = lipgloss.NewStyle().Faint(true)
	styleCursor   = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	styleSelected = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	styleDesc     = lipgloss.NewStyle().Faint(true)
)

// listItem is one selectable row: a picked alias, identifier, or choice,
// rendered as "label  desc".
type listItem struct {
	Label string
	Desc  string
}

type mode int

const (
	modeSingle mode = iota
	modeMulti
	modeText
)

// listModel drives every list-shaped pick (pickAlias, pickIdentifier,
// pickFromList, pickFromDynamic); textModel drives pickFreeText.
type listModel struct {
	title    string
	preview  string
	items    []listItem
	cursor   int
	selected map[int]bool
	mode     mode
	done     bool
	aborted  bool
	filter   string
}

func newListModel(title, preview string, items []listItem, multi bool) listModel {
	m := modeSingle
	if multi {
		m = modeMulti
	}
	return listModel{
		title:    title,
		preview:  preview,
		items:    items,
		selected: map[int]bool{},
		mode:     m,
	}
}

func (m listModel) Init() tea.Cmd { return nil }

func (m listModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch keyMsg.String() {
	case "ctrl+c", "esc":
		m.aborted = true
		m.done = true
		return m, tea.Quit
	case "up", "k":
		m.cursor = wrap(m.cursor-1, len(m.visible()))
	case "down", "j":
		m.cursor = wrap(m.cursor+1, len(m.visible()))
	case " ":
		if m.mode == modeMulti {
			idx := m.visibleIndex(m.cursor)
			if idx >= 0 {
				m.selected[idx] = !m.selected[idx]
			}
		}
	case "enter":
		m.done = true
		return m, tea.Quit
	case "backspace":
		if len(m.filter) > 0 {
			m.filter = m.filter[:len(m.filter)-1]
			m.cursor = 0
		}
	default:
		if len(keyMsg.Runes) > 0 {
			m.filter += string(keyMsg.Runes)
			m.cursor = 0
		}
	}
	return m, nil
}

func (m listModel) View() string {
	var b strings.Builder
	b.WriteString(styleTitle.Render(m.title))
	b.WriteString("\n")
	if m.preview != "" {
		b.WriteString(stylePreview.Render(m.preview))
		b.WriteString("\n")
	}
	if m.filter != "" {
		b.WriteString("filter: " + m.filter + "\n")
	}
	for i, it := range m.visible() {
		cursor := "  "
		if i == m.cursor {
			cursor = styleCursor.Render("> ")
		}
		mark := ""
		if m.mode == modeMulti {
			if m.selected[m.visibleIndex(i)] {
				mark = styleSelected.Render("[x] ")
			} else {
				mark = "[ ] "
			}
		}
		line := it.Label
		if it.Desc != "" {
			line += "  " + styleDesc.Render(it.Desc)
		}
		b.WriteString(cursor + mark + line + "\n")
	}
	b.WriteString(stylePreview.Render("\n↑/↓ move · space toggle (multi) · enter confirm · esc cancel\n"))
	return b.String()
}

// visible returns items matching the current filter substring, case
// insensitively over Label and Desc.
func (m listModel) visible() []listItem {
	if m.filter == "" {
		return m.items
	}
	var out []listItem
	needle := strings.ToLower(m.filter)
	for _, it := range m.items {
		if strings.Contains(strings.ToLower(it.Label), needle) || strings.Contains(strings.ToLower(it.Desc), needle) {
			out = append(out, it)
		}
	}
	return out
}

// visibleIndex maps a cursor position in the filtered view back to an index
// into m.items.
func (m listModel) visibleIndex(pos int) int {
	visible := m.visible()
	if pos < 0 || pos >= len(visible) {
		return -1
	}
	target := visible[pos]
	// Identical rows all pass the filter alike, so the n-th copy of target
	// in the filtered view is the n-th copy in m.items.
	occurrence := 0
	for _, it := range visible[:pos] {
		if it == target {
			occurrence++
		}
	}
	count := -1
	for i, it := range m.items {
		if it == target {
			count++
			if count == occurrence {
				return i
			}
		}
	}
	return -1
}

// Selection returns the chosen item indices into m.items: every toggled
// item in multi mode, or the single item under the cursor otherwise.
func (m listModel) Selection() []int {
	if m.mode == modeMulti {
		var out []int
		for idx, on := range m.selected {
			if on {
				out = append(out, idx)
			}
		}
		if len(out) == 0 {
			if idx := m.visibleIndex(m.cursor); idx >= 0 {
				out = []int{idx}
			}
		}
		return out
	}
	if idx := m.visibleIndex(m.cursor); idx >= 0 {
		return []int{idx}
	}
	return nil
}

func wrap(i, n int) int {
	if n == 0 {
		return 0
	}
	if i < 0 {
		return n - 1
	}
	if i >= n {
		return 0
	}
	return i
}

// textModel drives the free-text prompt.
type textModel struct {
	title   string
	preview string
	prompt  string
	value   string
	done    bool
	aborted bool
}

func newTextModel(title, preview, prompt string) textModel {
	return textModel{title: title, preview: preview, prompt: prompt}
}

func (m textModel) Init() tea.Cmd { return nil }

func (m textModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch keyMsg.String() {
	case "ctrl+c", "esc":
		m.aborted = true
		m.done = true
		return m, tea.Quit
	case "enter":
		m.done = true
		return m, tea.Quit
	case "backspace":
		if len(m.value) > 0 {
			m.value = m.value[:len(m.value)-1]
		}
	default:
		if len(keyMsg.Runes) > 0 {
			m.value += string(keyMsg.Runes)
		}
	}
	return m, nil
}

func (m textModel) View() string {
	var b strings.Builder
	b.WriteString(styleTitle.Render(m.title))
	b.WriteString("\n")
	if m.preview != "" {
		b.WriteString(stylePreview.Render(m.preview))
		b.WriteString("\n")
	}
	b.WriteString(m.prompt + ": " + m.value + "█\n")
	return b.String()
}
