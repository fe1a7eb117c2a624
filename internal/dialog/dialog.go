// Package dialog implements the modal forms of the student manager. Each
// dialog receives the data it needs when it is built and reports what the
// shell should do with the grid through a Result; none of them touch the
// grid directly.
package dialog

import (
	"context"

	"studentms/internal/model"
)

// Store is the write side of the student service.
type Store interface {
	AddStudent(ctx context.Context, name, course, mobile string) (model.Student, error)
	UpdateStudent(ctx context.Context, id uint, name, course, mobile string) (int64, error)
	DeleteStudent(ctx context.Context, id uint) (int64, error)
}

type Action int

const (
	None Action = iota
	// Refresh asks for an unfiltered reload of the grid.
	Refresh
	// Search asks for the grid to be reloaded with Result.Name as filter.
	Search
)

type Result struct {
	Action Action
	Name   string
	Close  bool
	Notice string
}

const (
	AboutTitle    = "About"
	AboutText     = "A Student Management App."
	DeletePrompt  = "Are you sure you want to delete this student data?"
	DeletedTitle  = "Success"
	DeletedNotice = "The student data was successfully deleted"
)

// form holds the inputs shared by the Add and Edit dialogs.
type form struct {
	Name   string
	Mobile string
	course int
}

// SetText replaces the free-text inputs.
func (f *form) SetText(name, mobile string) {
	f.Name = name
	f.Mobile = mobile
}

func (f *form) Text() (name, mobile string) {
	return f.Name, f.Mobile
}

func (f *form) Course() string {
	return model.Courses[f.course]
}

// SetCourse selects course and reports whether it is one of model.Courses.
func (f *form) SetCourse(course string) bool {
	i := model.CourseIndex(course)
	if i < 0 {
		return false
	}
	f.course = i
	return true
}

func (f *form) NextCourse() {
	f.course = (f.course + 1) % len(model.Courses)
}

func (f *form) PrevCourse() {
	f.course = (f.course + len(model.Courses) - 1) % len(model.Courses)
}
