// Package tui implements the interactive dashboard and suggestion review screen.
package tui

import (
	"fmt"
	"sort"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/dealflow/internal/app"
	"github.com/Veraticus/dealflow/internal/deals"
	"github.com/Veraticus/dealflow/internal/model"
	"github.com/Veraticus/dealflow/internal/rowstore"
	"github.com/Veraticus/dealflow/internal/tui/themes"
)

// Session is the application state the TUI reads and mutates.
type Session interface {
	Snapshot() app.Snapshot
	Pending() []model.Suggestion
	Accept(s model.Suggestion) error
	Reject(s model.Suggestion)
	QueryDeals(q deals.Query) (deals.Page, error)
	DealDetail(rowID int) (model.Deal, rowstore.Row, bool)
}

// View is one of the screens the TUI cycles through.
type View int

// Views in tab order.
const (
	ViewSuggestions View = iota
	ViewDeals
	ViewDashboard
)

var viewNames = map[View]string{
	ViewSuggestions: "Suggestions",
	ViewDeals:       "Deals",
	ViewDashboard:   "Dashboard",
}

func (v View) String() string {
	return viewNames[v]
}

var sortCycle = []deals.SortOrder{deals.SortAmountDesc, deals.SortAmountAsc, deals.SortNameAsc, deals.SortNameDesc}

var sizeCycle = []deals.SizeBucket{deals.SizeAll, deals.SizeSmall, deals.SizeMedium, deals.SizeLarge, deals.SizeXLarge}

type detail struct {
	row  rowstore.Row
	deal model.Deal
}

// Model holds the TUI state.
type Model struct {
	session   Session
	lastError error
	detail    *detail
	theme     themes.Theme
	status    string
	pending   []model.Suggestion
	page      deals.Page
	query     deals.Query
	keymap    KeyMap
	help      help.Model
	snapshot  app.Snapshot
	statusSeq int
	cursor    int
	width     int
	height    int
	level     statusLevel
	view      View
	quitting  bool
}

func newModel(session Session, cfg Config) Model {
	h := help.New()
	h.ShowAll = cfg.ShowHelp

	m := Model{
		session: session,
		theme:   cfg.Theme,
		keymap:  DefaultKeyMap(),
		help:    h,
		width:   cfg.Width,
		height:  cfg.Height,
		query:   deals.Query{Page: 1, PerPage: cfg.PerPage},
	}
	m.refresh()
	if len(m.pending) == 0 {
		m.view = ViewDeals
	}
	return m
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
		return m, nil

	case clearStatusMsg:
		if msg.seq == m.statusSeq {
			m.status = ""
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.ForceQuit), key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keymap.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	if m.detail != nil {
		if key.Matches(msg, m.keymap.Back) || key.Matches(msg, m.keymap.Select) {
			m.detail = nil
		}
		return m, nil
	}

	if key.Matches(msg, m.keymap.ToggleView) {
		m.view = (m.view + 1) % 3
		m.cursor = 0
		return m, nil
	}

	switch m.view {
	case ViewSuggestions:
		return m.handleSuggestionKey(msg)
	case ViewDeals:
		return m.handleDealKey(msg)
	}
	return m, nil
}

func (m Model) handleSuggestionKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Up):
		m.moveCursor(-1, len(m.pending))
	case key.Matches(msg, m.keymap.Down):
		m.moveCursor(1, len(m.pending))
	case key.Matches(msg, m.keymap.Home):
		m.cursor = 0
	case key.Matches(msg, m.keymap.End):
		m.cursor = max(len(m.pending)-1, 0)

	case key.Matches(msg, m.keymap.Accept):
		s, ok := m.selectedSuggestion()
		if !ok {
			return m, nil
		}
		if err := m.session.Accept(s); err != nil {
			return m.setStatus(statusError, fmt.Sprintf("Could not apply suggestion: %v", err))
		}
		m.refresh()
		return m.setStatus(statusSuccess, "Applied "+describe(s))

	case key.Matches(msg, m.keymap.Reject):
		s, ok := m.selectedSuggestion()
		if !ok {
			return m, nil
		}
		m.session.Reject(s)
		m.refresh()
		return m.setStatus(statusInfo, "Rejected "+describe(s))

	case key.Matches(msg, m.keymap.AcceptAll):
		applied, failed := 0, 0
		for _, s := range m.pending {
			if err := m.session.Accept(s); err != nil {
				failed++
				continue
			}
			applied++
		}
		m.refresh()
		if failed > 0 {
			return m.setStatus(statusError, fmt.Sprintf("Applied %d suggestions, %d failed", applied, failed))
		}
		return m.setStatus(statusSuccess, fmt.Sprintf("Applied %d suggestions", applied))
	}
	return m, nil
}

func (m Model) handleDealKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Up):
		m.moveCursor(-1, len(m.page.Deals))
	case key.Matches(msg, m.keymap.Down):
		m.moveCursor(1, len(m.page.Deals))
	case key.Matches(msg, m.keymap.Home):
		m.cursor = 0
	case key.Matches(msg, m.keymap.End):
		m.cursor = max(len(m.page.Deals)-1, 0)

	case key.Matches(msg, m.keymap.PrevPage):
		if m.query.Page > 1 {
			m.query.Page--
			m.requery()
		}
	case key.Matches(msg, m.keymap.NextPage):
		if m.query.Page < m.page.TotalPages {
			m.query.Page++
			m.requery()
		}

	case key.Matches(msg, m.keymap.CycleSort):
		m.query.Sort = nextSort(m.query.Sort)
		m.query.Page = 1
		m.requery()
	case key.Matches(msg, m.keymap.CycleSize):
		m.query.Size = nextSize(m.query.Size)
		m.query.Page = 1
		m.requery()
	case key.Matches(msg, m.keymap.CycleStage):
		m.query.Stage = nextStage(m.query.Stage, m.stages())
		m.query.Page = 1
		m.requery()
	case key.Matches(msg, m.keymap.ClearFilter):
		m.query.Stage = ""
		m.query.Size = deals.SizeAll
		m.query.Page = 1
		m.requery()

	case key.Matches(msg, m.keymap.Select):
		if m.cursor < len(m.page.Deals) {
			d, row, ok := m.session.DealDetail(m.page.Deals[m.cursor].RowID)
			if ok {
				m.detail = &detail{deal: d, row: row}
			}
		}
	}
	return m, nil
}

func (m *Model) moveCursor(delta, n int) {
	if n == 0 {
		m.cursor = 0
		return
	}
	m.cursor = min(max(m.cursor+delta, 0), n-1)
}

func (m Model) selectedSuggestion() (model.Suggestion, bool) {
	if m.cursor < 0 || m.cursor >= len(m.pending) {
		return nil, false
	}
	return m.pending[m.cursor], true
}

// refresh reloads everything derived from the session.
func (m *Model) refresh() {
	m.snapshot = m.session.Snapshot()
	m.pending = m.session.Pending()
	if m.cursor >= len(m.pending) && m.view == ViewSuggestions {
		m.cursor = max(len(m.pending)-1, 0)
	}
	m.requery()
}

func (m *Model) requery() {
	page, err := m.session.QueryDeals(m.query)
	if err != nil {
		m.lastError = err
		m.page = deals.Page{Page: 1, TotalPages: 1}
		return
	}
	m.lastError = nil
	m.page = page
	m.query.Page = page.Page
	if m.view == ViewDeals && m.cursor >= len(page.Deals) {
		m.cursor = max(len(page.Deals)-1, 0)
	}
}

func (m Model) setStatus(level statusLevel, text string) (tea.Model, tea.Cmd) {
	m.statusSeq++
	m.status = text
	m.level = level
	return m, clearStatusAfter(m.statusSeq)
}

// stages lists the distinct stages of the current deals in sorted order.
func (m Model) stages() []string {
	if m.snapshot.Dashboard == nil {
		return nil
	}
	seen := make(map[string]bool)
	var out []string
	for _, d := range m.snapshot.Dashboard.Deals {
		if d.Stage == "" || seen[d.Stage] {
			continue
		}
		seen[d.Stage] = true
		out = append(out, d.Stage)
	}
	sort.Strings(out)
	return out
}

func nextSort(current deals.SortOrder) deals.SortOrder {
	for i, s := range sortCycle {
		if s == current {
			return sortCycle[(i+1)%len(sortCycle)]
		}
	}
	return sortCycle[1]
}

func nextSize(current deals.SizeBucket) deals.SizeBucket {
	for i, s := range sizeCycle {
		if s == current {
			return sizeCycle[(i+1)%len(sizeCycle)]
		}
	}
	return deals.SizeAll
}

// nextStage cycles "" → stages[0] → ... → stages[n-1] → "".
func nextStage(current string, stages []string) string {
	if current == "" {
		if len(stages) == 0 {
			return ""
		}
		return stages[0]
	}
	for i, s := range stages {
		if s == current && i+1 < len(stages) {
			return stages[i+1]
		}
	}
	return ""
}

func describe(s model.Suggestion) string {
	switch v := s.(type) {
	case model.UpdateSuggestion:
		return "update to " + v.DealName
	case model.CreationSuggestion:
		return "new deal " + v.Deal.DealName
	}
	return s.Key()
}
