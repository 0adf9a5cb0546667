// Package tui implements the interactive dashboard viewer.
package tui

import (
	"slices"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/decision-queue/internal/dashboard"
	"github.com/Veraticus/decision-queue/internal/model"
	"github.com/Veraticus/decision-queue/internal/tui/themes"
)

// row is one line of a list. pass is empty for rollup children.
type row struct {
	item model.DecisionItem
	pass dashboard.Pass
}

// frame is one level of the drill-down stack.
type frame struct {
	title  string
	rows   []row
	cursor int
}

// Model holds the viewer state. The bottom frame is the dashboard; each
// opened rollup pushes a frame listing its children.
type Model struct {
	now      time.Time
	theme    themes.Theme
	keymap   KeyMap
	help     help.Model
	stack    []frame
	width    int
	height   int
	showHelp bool
	quitting bool
}

// New creates a viewer over dashboard picks.
func New(picks []dashboard.Pick, opts ...Option) Model {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Now.IsZero() {
		cfg.Now = time.Now()
	}

	rows := make([]row, len(picks))
	for i, p := range picks {
		rows[i] = row{item: p.Item, pass: p.Pass}
	}

	h := help.New()
	h.ShowAll = false

	return Model{
		now:      cfg.Now,
		theme:    cfg.Theme,
		keymap:   DefaultKeyMap(),
		help:     h,
		stack:    []frame{{title: cfg.Title, rows: rows}},
		width:    cfg.Width,
		height:   cfg.Height,
		showHelp: cfg.ShowHelp,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Models are values; the stack must not be shared with the previous one.
	m.stack = slices.Clone(m.stack)
	top := &m.stack[len(m.stack)-1]

	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keymap.Up):
		if top.cursor > 0 {
			top.cursor--
		}

	case key.Matches(msg, m.keymap.Down):
		if top.cursor < len(top.rows)-1 {
			top.cursor++
		}

	case key.Matches(msg, m.keymap.Home):
		top.cursor = 0

	case key.Matches(msg, m.keymap.End):
		if len(top.rows) > 0 {
			top.cursor = len(top.rows) - 1
		}

	case key.Matches(msg, m.keymap.Open):
		m = m.open()

	case key.Matches(msg, m.keymap.Back):
		if len(m.stack) > 1 {
			m.stack = m.stack[:len(m.stack)-1]
		}

	case key.Matches(msg, m.keymap.Help):
		m.help.ShowAll = !m.help.ShowAll
	}

	return m, nil
}

// open pushes the children of the selected rollup. Other items are left as they are.
func (m Model) open() Model {
	item, ok := m.Selected()
	if !ok || !item.IsRollup() {
		return m
	}

	rows := make([]row, len(item.Children))
	for i, child := range item.Children {
		rows[i] = row{item: child}
	}

	m.stack = append(m.stack, frame{title: item.Title, rows: rows})
	return m
}

// Selected returns the item under the cursor in the current frame.
func (m Model) Selected() (model.DecisionItem, bool) {
	top := m.stack[len(m.stack)-1]
	if len(top.rows) == 0 {
		return model.DecisionItem{}, false
	}
	return top.rows[top.cursor].item, true
}

// Depth returns how many rollups are open.
func (m Model) Depth() int {
	return len(m.stack) - 1
}

// Quitting reports whether the user asked to quit.
func (m Model) Quitting() bool {
	return m.quitting
}
