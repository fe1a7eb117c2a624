// Package tui is the terminal window of the student manager: a menu bar,
// a toolbar, the student grid and a status area, with the dialogs shown
// below the grid.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"studentms/internal/dialog"
	"studentms/internal/grid"
)

const windowTitle = "Student Management System"

var columnWidths = []int{6, 24, 12, 16}

// reloadMsg asks for an unfiltered refresh, as done once at startup.
type reloadMsg struct{}

// Model runs every statement synchronously inside Update, so only one
// operation is ever in flight and the grid is only touched from here.
type Model struct {
	ctx   context.Context
	grid  *grid.Grid
	store dialog.Store

	table   table.Model
	modal   modal
	buttons bool // Edit/Delete buttons shown in the status area
	status  string
	height  int
}

func New(ctx context.Context, g *grid.Grid, store dialog.Store) *Model {
	cols := g.Columns()
	tcols := make([]table.Column, len(cols))
	for i, c := range cols {
		tcols[i] = table.Column{Title: c, Width: columnWidths[i]}
	}

	return &Model{
		ctx:   ctx,
		grid:  g,
		store: store,
		table: table.New(table.WithColumns(tcols), table.WithFocused(true), table.WithHeight(20)),
	}
}

// Run opens the window and blocks until the user quits.
func Run(ctx context.Context, g *grid.Grid, store dialog.Store) error {
	_, err := tea.NewProgram(New(ctx, g, store), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(tea.SetWindowTitle(windowTitle), func() tea.Msg { return reloadMsg{} })
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case reloadMsg:
		m.refresh(nil)
		return m, nil

	case tea.WindowSizeMsg:
		m.height = msg.Height
		m.resizeTable()
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.modal != nil {
			out, cmd := m.modal.handleKey(m.ctx, msg)
			if out.done {
				m.apply(out)
				m.resizeTable()
			}
			return m, cmd
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "a", "ctrl+n":
		m.open(newFormModal(dialog.NewAdd(m.store), "Name", "Number"))
		return m, nil
	case "s", "ctrl+f":
		m.open(newSearchModal(dialog.NewSearch()))
		return m, nil
	case "?", "f1":
		m.open(&messageModal{title: dialog.AboutTitle, text: dialog.AboutText})
		return m, nil
	case "ctrl+r":
		m.refresh(nil)
		return m, nil
	case "enter":
		// A row click: show the Edit/Delete buttons, replacing any old ones.
		if _, ok := m.grid.Select(m.table.Cursor()); ok {
			m.buttons = true
		}
		return m, nil
	case "e":
		if sel, ok := m.selection(); ok {
			m.open(newFormModal(dialog.NewEdit(m.store, sel), sel.Name, sel.Mobile))
		}
		return m, nil
	case "d":
		if sel, ok := m.selection(); ok {
			m.open(newConfirmModal(dialog.NewDelete(m.store, sel)))
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// selection is the row under the cursor, available once the row was
// clicked and the status buttons are showing.
func (m *Model) selection() (grid.Selection, bool) {
	if !m.buttons {
		return grid.Selection{}, false
	}
	return m.grid.Select(m.table.Cursor())
}

func (m *Model) open(md modal) {
	m.modal = md
	m.status = ""
	m.resizeTable()
}

// apply carries out a finished dialog action. A failed statement leaves the
// grid and the dialog as they were.
func (m *Model) apply(out outcome) {
	if out.err != nil {
		logrus.WithError(out.err).Error("dialog action failed")
		m.status = out.err.Error()
		return
	}

	res := out.result
	switch res.Action {
	case dialog.Refresh:
		m.refresh(nil)
	case dialog.Search:
		name := res.Name
		m.refresh(&name)
	}
	if res.Close {
		m.modal = nil
	}
	if res.Notice != "" {
		m.modal = &messageModal{title: dialog.DeletedTitle, text: res.Notice}
	}
}

func (m *Model) refresh(filter *string) {
	if err := m.grid.Refresh(m.ctx, filter); err != nil {
		logrus.WithError(err).Error("refresh grid")
		m.status = err.Error()
		return
	}

	rows := m.grid.Rows()
	trows := make([]table.Row, len(rows))
	for i, r := range rows {
		trows[i] = table.Row(r)
	}
	m.table.SetRows(trows)
	if n := len(trows); n > 0 {
		m.table.SetCursor(min(max(m.table.Cursor(), 0), n-1))
	}
	m.buttons = false
	m.status = ""
}

func (m *Model) resizeTable() {
	if m.height == 0 {
		return
	}
	// menu, toolbar, status and the table header and borders
	h := m.height - 6
	if m.modal != nil {
		h -= 8
	}
	m.table.SetHeight(max(3, h))
}

func (m *Model) View() string {
	menu := menuStyle.Render("File: Add Student (a)   Edit: Search (s)   Help: About (?)")
	toolbar := toolbarStyle.Render(button("Add Student", false) + " " + button("Search", false) + "   ctrl+r show all · q quit")

	parts := []string{menu, toolbar, m.table.View()}
	if m.modal != nil {
		parts = append(parts, m.modal.view())
	}

	status := ""
	if m.buttons {
		status = button("Edit Record (e)", false) + " " + button("Delete Record (d)", false)
	}
	if m.status != "" {
		status += " " + errorStyle.Render(m.status)
	}
	parts = append(parts, statusStyle.Render(status))

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
