// Package grid holds the table view of the students table. Every refresh
// throws the previous rows away and rebuilds them from a new query.
package grid

import (
	"context"
	"strconv"

	"studentms/internal/model"
)

var columns = []string{"Id", "Name", "Course", "Mobile"}

// Source is the query side of the student service.
type Source interface {
	ListStudents(ctx context.Context) ([]model.Student, error)
	SearchByName(ctx context.Context, name string) ([]model.Student, error)
}

// Selection is the row data a dialog needs about the clicked row.
type Selection struct {
	ID     uint
	Name   string
	Course string
	Mobile string
}

type Grid struct {
	src    Source
	rows   [][]string
	ids    []uint
	filter *string
}

func New(src Source) *Grid {
	return &Grid{src: src}
}

// Refresh runs select-all when filter is nil and an exact-name select
// otherwise. On error the current rows are left untouched.
func (g *Grid) Refresh(ctx context.Context, filter *string) error {
	var (
		students []model.Student
		err      error
	)
	if filter == nil {
		students, err = g.src.ListStudents(ctx)
	} else {
		students, err = g.src.SearchByName(ctx, *filter)
	}
	if err != nil {
		return err
	}

	g.rows = g.rows[:0]
	g.ids = g.ids[:0]
	for _, s := range students {
		g.rows = append(g.rows, []string{strconv.FormatUint(uint64(s.ID), 10), s.Name, s.Course, s.Mobile})
		g.ids = append(g.ids, s.ID)
	}
	if filter == nil {
		g.filter = nil
	} else {
		f := *filter
		g.filter = &f
	}
	return nil
}

func (g *Grid) Columns() []string {
	return append([]string(nil), columns...)
}

// Rows returns a copy of the displayed cells.
func (g *Grid) Rows() [][]string {
	out := make([][]string, len(g.rows))
	for i, r := range g.rows {
		out[i] = append([]string(nil), r...)
	}
	return out
}

func (g *Grid) Len() int {
	return len(g.rows)
}

// Filter reports the name of the last search, or nil after select-all.
func (g *Grid) Filter() *string {
	return g.filter
}

func (g *Grid) Select(index int) (Selection, bool) {
	if index < 0 || index >= len(g.rows) {
		return Selection{}, false
	}
	r := g.rows[index]
	return Selection{ID: g.ids[index], Name: r[1], Course: r[2], Mobile: r[3]}, true
}
