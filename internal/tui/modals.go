package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"studentms/internal/dialog"
)

// outcome is what a modal hands back to the shell after a key press.
type outcome struct {
	result dialog.Result
	err    error
	done   bool // a statement ran or the modal was dismissed
}

type modal interface {
	handleKey(ctx context.Context, msg tea.KeyMsg) (outcome, tea.Cmd)
	view() string
}

// studentForm is the part of the Add and Edit dialogs a form modal drives.
type studentForm interface {
	Title() string
	Button() string
	Course() string
	NextCourse()
	PrevCourse()
	SetText(name, mobile string)
	Text() (name, mobile string)
	Submit(ctx context.Context) (dialog.Result, error)
}

const (
	focusName = iota
	focusCourse
	focusMobile
	focusButton
	focusCount
)

type formModal struct {
	form   studentForm
	name   textinput.Model
	mobile textinput.Model
	focus  int
}

func newFormModal(form studentForm, namePlaceholder, mobilePlaceholder string) *formModal {
	name, mobile := form.Text()

	m := &formModal{form: form, name: textinput.New(), mobile: textinput.New()}
	m.name.Placeholder = namePlaceholder
	m.name.SetValue(name)
	m.mobile.Placeholder = mobilePlaceholder
	m.mobile.SetValue(mobile)
	m.setFocus(focusName)
	return m
}

func (m *formModal) setFocus(f int) {
	m.focus = (f + focusCount) % focusCount
	m.name.Blur()
	m.mobile.Blur()
	switch m.focus {
	case focusName:
		m.name.Focus()
	case focusMobile:
		m.mobile.Focus()
	}
}

func (m *formModal) handleKey(ctx context.Context, msg tea.KeyMsg) (outcome, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return outcome{result: dialog.Result{Close: true}, done: true}, nil
	case "tab", "down":
		m.setFocus(m.focus + 1)
		return outcome{}, nil
	case "shift+tab", "up":
		m.setFocus(m.focus - 1)
		return outcome{}, nil
	case "enter":
		if m.focus != focusButton {
			m.setFocus(m.focus + 1)
			return outcome{}, nil
		}
		m.form.SetText(m.name.Value(), m.mobile.Value())
		res, err := m.form.Submit(ctx)
		return outcome{result: res, err: err, done: true}, nil
	}

	var cmd tea.Cmd
	switch m.focus {
	case focusName:
		m.name, cmd = m.name.Update(msg)
	case focusMobile:
		m.mobile, cmd = m.mobile.Update(msg)
	case focusCourse:
		switch msg.String() {
		case "left", "h":
			m.form.PrevCourse()
		case "right", "l", " ":
			m.form.NextCourse()
		}
	}
	return outcome{}, cmd
}

func (m *formModal) view() string {
	course := "‹ " + m.form.Course() + " ›"
	if m.focus == focusCourse {
		course = activeStyle.Render(course)
	}
	return modalStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(m.form.Title()),
		m.name.View(),
		course,
		m.mobile.View(),
		button(m.form.Button(), m.focus == focusButton),
	))
}

type searchModal struct {
	search *dialog.SearchDialog
	input  textinput.Model
}

func newSearchModal(search *dialog.SearchDialog) *searchModal {
	m := &searchModal{search: search, input: textinput.New()}
	m.input.Placeholder = search.Placeholder()
	m.input.Focus()
	return m
}

func (m *searchModal) handleKey(_ context.Context, msg tea.KeyMsg) (outcome, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return outcome{result: dialog.Result{Close: true}, done: true}, nil
	case "enter":
		m.search.Name = m.input.Value()
		return outcome{result: m.search.Submit(), done: true}, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return outcome{}, cmd
}

func (m *searchModal) view() string {
	return modalStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(m.search.Title()),
		m.input.View(),
		button(m.search.Button(), true),
	))
}

type confirmModal struct {
	del *dialog.DeleteDialog
	yes bool
}

func newConfirmModal(del *dialog.DeleteDialog) *confirmModal {
	return &confirmModal{del: del, yes: true}
}

func (m *confirmModal) handleKey(ctx context.Context, msg tea.KeyMsg) (outcome, tea.Cmd) {
	switch msg.String() {
	case "left", "right", "tab", "h", "l":
		m.yes = !m.yes
		return outcome{}, nil
	case "y":
		m.yes = true
	case "n", "esc":
		m.yes = false
	case "enter":
	default:
		return outcome{}, nil
	}
	res, err := m.del.Confirm(ctx, m.yes)
	return outcome{result: res, err: err, done: true}, nil
}

func (m *confirmModal) view() string {
	return modalStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(m.del.Title()),
		m.del.Prompt(),
		lipgloss.JoinHorizontal(lipgloss.Top, button("Yes", m.yes), " ", button("No", !m.yes)),
	))
}

// messageModal is a plain message box closed by enter or esc.
type messageModal struct {
	title string
	text  string
}

func (m *messageModal) handleKey(_ context.Context, msg tea.KeyMsg) (outcome, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc", " ":
		return outcome{result: dialog.Result{Close: true}, done: true}, nil
	}
	return outcome{}, nil
}

func (m *messageModal) view() string {
	return modalStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(m.title),
		strings.TrimSpace(m.text),
		button("OK", true),
	))
}
