package tui

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studentms/internal/config"
	"studentms/internal/database"
	"studentms/internal/dialog"
	"studentms/internal/grid"
	"studentms/internal/model"
	"studentms/internal/service"
)

func setupShell(t *testing.T, rows ...model.Student) (*Model, *service.StudentService) {
	t.Helper()
	p, err := database.Open(&config.Config{
		DBDriver: database.DriverSQLite,
		DBPath:   filepath.Join(t.TempDir(), "students.db"),
	})
	require.NoError(t, err)
	svc := service.NewStudentService(p)
	for _, r := range rows {
		_, err := svc.AddStudent(context.Background(), r.Name, r.Course, r.Mobile)
		require.NoError(t, err)
	}

	m := New(context.Background(), grid.New(svc), svc)
	m.Update(reloadMsg{})
	return m, svc
}

func press(m *Model, keys ...string) {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "right":
			msg = tea.KeyMsg{Type: tea.KeyRight}
		case "ctrl+r":
			msg = tea.KeyMsg{Type: tea.KeyCtrlR}
		case "backspace":
			msg = tea.KeyMsg{Type: tea.KeyBackspace}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		m.Update(msg)
	}
}

func typeText(m *Model, s string) {
	for _, r := range s {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

var fixtures = []model.Student{
	{Name: "John Doe", Course: "Math", Mobile: "111"},
	{Name: "Jane Doe", Course: "Physics", Mobile: "222"},
	{Name: "John Doe", Course: "Biology", Mobile: "333"},
}

func TestStartupLoadsAllRows(t *testing.T) {
	m, _ := setupShell(t, fixtures...)

	assert.Equal(t, 3, m.grid.Len())
	assert.Len(t, m.table.Rows(), 3)
	assert.Contains(t, m.View(), "Jane Doe")
	assert.Nil(t, m.modal)
}

func TestAddStudent(t *testing.T) {
	m, svc := setupShell(t, fixtures...)

	press(m, "a")
	require.IsType(t, &formModal{}, m.modal)
	typeText(m, "Ada Lovelace")
	press(m, "tab", "right", "right", "tab")
	typeText(m, "0700")
	press(m, "tab", "enter")

	all, err := svc.ListStudents(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 4)
	added := all[3]
	assert.NotZero(t, added.ID)
	assert.Equal(t, model.Student{ID: added.ID, Name: "Ada Lovelace", Course: "Astronomy", Mobile: "0700"}, added)

	assert.Equal(t, 4, m.grid.Len())
	assert.NotNil(t, m.modal, "the add dialog stays open")

	press(m, "esc")
	assert.Nil(t, m.modal)
}

func TestTypingInDialogDoesNotTriggerShortcuts(t *testing.T) {
	m, _ := setupShell(t)

	press(m, "s")
	typeText(m, "qad?")
	require.IsType(t, &searchModal{}, m.modal)
	assert.Equal(t, "qad?", m.modal.(*searchModal).input.Value())
}

func TestEditStudent(t *testing.T) {
	m, svc := setupShell(t, fixtures...)

	press(m, "e")
	assert.Nil(t, m.modal, "edit needs a clicked row")

	press(m, "down", "enter")
	assert.True(t, m.buttons)
	assert.Contains(t, m.View(), "Edit Record")

	press(m, "e")
	form, ok := m.modal.(*formModal)
	require.True(t, ok)
	assert.Equal(t, "Jane Doe", form.name.Value())
	assert.Equal(t, "Physics", form.form.Course())
	assert.Equal(t, "222", form.mobile.Value())

	typeText(m, " Roe")
	press(m, "tab", "right", "tab", "tab", "enter")
	assert.Nil(t, m.modal, "edit closes itself")

	all, err := svc.ListStudents(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Jane Doe Roe", all[1].Name)
	assert.Equal(t, "Biology", all[1].Course)
	assert.Equal(t, "222", all[1].Mobile)
	assert.Equal(t, "Jane Doe Roe", m.grid.Rows()[1][1])
}

func TestDeleteStudent(t *testing.T) {
	m, svc := setupShell(t, fixtures...)
	victim, _ := m.grid.Select(0)

	press(m, "enter", "d")
	require.IsType(t, &confirmModal{}, m.modal)
	assert.Contains(t, m.View(), dialog.DeletePrompt)

	press(m, "y")
	msg, ok := m.modal.(*messageModal)
	require.True(t, ok)
	assert.Equal(t, dialog.DeletedNotice, msg.text)

	all, err := svc.ListStudents(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 2)
	for _, s := range all {
		assert.NotEqual(t, victim.ID, s.ID)
	}
	assert.Equal(t, 2, m.grid.Len())

	press(m, "enter")
	assert.Nil(t, m.modal)
}

func TestDeleteDeclined(t *testing.T) {
	m, svc := setupShell(t, fixtures...)

	press(m, "enter", "d", "n")
	assert.Nil(t, m.modal)

	all, err := svc.ListStudents(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestSearch(t *testing.T) {
	m, _ := setupShell(t, fixtures...)

	tests := []struct {
		name string
		want int
	}{
		{"John Doe", 2},
		{"Jane Doe", 1},
		{"Nobody", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			press(m, "s")
			typeText(m, tt.name)
			press(m, "enter")

			assert.Equal(t, tt.want, m.grid.Len())
			assert.Len(t, m.table.Rows(), tt.want)
			for _, r := range m.grid.Rows() {
				assert.Equal(t, tt.name, r[1])
			}
			press(m, "esc")
		})
	}

	press(m, "ctrl+r")
	assert.Equal(t, 3, m.grid.Len())
}

func TestEditAfterExternalDelete(t *testing.T) {
	m, svc := setupShell(t, fixtures...)
	sel, _ := m.grid.Select(0)

	press(m, "enter", "e")
	_, err := svc.DeleteStudent(context.Background(), sel.ID)
	require.NoError(t, err)

	press(m, "tab", "tab", "tab", "enter")
	assert.Nil(t, m.modal)
	assert.Empty(t, m.status)
	assert.Equal(t, 2, m.grid.Len())
}

func TestAbout(t *testing.T) {
	m, _ := setupShell(t)

	press(m, "?")
	assert.Contains(t, m.View(), dialog.AboutText)
	press(m, "esc")
	assert.Nil(t, m.modal)
}

type failingStore struct{}

func (failingStore) AddStudent(context.Context, string, string, string) (model.Student, error) {
	return model.Student{}, errors.New("attempt to write a readonly database")
}

func (failingStore) UpdateStudent(context.Context, uint, string, string, string) (int64, error) {
	return 0, errors.New("attempt to write a readonly database")
}

func (failingStore) DeleteStudent(context.Context, uint) (int64, error) {
	return 0, errors.New("attempt to write a readonly database")
}

func TestStoreErrorKeepsPriorState(t *testing.T) {
	m, svc := setupShell(t, fixtures...)
	m.store = failingStore{}

	press(m, "a")
	typeText(m, "Ada")
	press(m, "tab", "tab", "tab", "enter")

	assert.NotNil(t, m.modal)
	assert.Equal(t, "attempt to write a readonly database", m.status)
	assert.Equal(t, 3, m.grid.Len())

	all, err := svc.ListStudents(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestWindowResize(t *testing.T) {
	m, _ := setupShell(t, fixtures...)

	m.Update(tea.WindowSizeMsg{Width: 80, Height: 30})
	before := m.table.Height()

	press(m, "s")
	assert.Less(t, m.table.Height(), before)

	press(m, "esc")
	assert.Equal(t, before, m.table.Height())
}
