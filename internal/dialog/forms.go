package dialog

import (
	"context"

	"studentms/internal/grid"
)

type AddDialog struct {
	form
	store Store
}

func NewAdd(store Store) *AddDialog {
	return &AddDialog{store: store}
}

func (d *AddDialog) Title() string  { return "Add Student" }
func (d *AddDialog) Button() string { return "Add Student" }

// Submit inserts one row. The dialog stays open so several students can be
// entered in a row.
func (d *AddDialog) Submit(ctx context.Context) (Result, error) {
	if _, err := d.store.AddStudent(ctx, d.Name, d.Course(), d.Mobile); err != nil {
		return Result{}, err
	}
	return Result{Action: Refresh}, nil
}

type EditDialog struct {
	form
	id    uint
	store Store
}

// NewEdit pre-fills the form from sel. A course outside model.Courses falls
// back to the first one.
func NewEdit(store Store, sel grid.Selection) *EditDialog {
	d := &EditDialog{id: sel.ID, store: store}
	d.Name = sel.Name
	d.Mobile = sel.Mobile
	d.SetCourse(sel.Course)
	return d
}

func (d *EditDialog) Title() string  { return "Update Student" }
func (d *EditDialog) Button() string { return "Update Student" }
func (d *EditDialog) ID() uint       { return d.id }

func (d *EditDialog) Submit(ctx context.Context) (Result, error) {
	if _, err := d.store.UpdateStudent(ctx, d.id, d.Name, d.Course(), d.Mobile); err != nil {
		return Result{}, err
	}
	return Result{Action: Refresh, Close: true}, nil
}

type DeleteDialog struct {
	id    uint
	store Store
}

func NewDelete(store Store, sel grid.Selection) *DeleteDialog {
	return &DeleteDialog{id: sel.ID, store: store}
}

func (d *DeleteDialog) Title() string  { return "Delete Student" }
func (d *DeleteDialog) Prompt() string { return DeletePrompt }
func (d *DeleteDialog) ID() uint       { return d.id }

// Confirm deletes the row when yes is true. Either way the dialog closes.
func (d *DeleteDialog) Confirm(ctx context.Context, yes bool) (Result, error) {
	if !yes {
		return Result{Close: true}, nil
	}
	if _, err := d.store.DeleteStudent(ctx, d.id); err != nil {
		return Result{}, err
	}
	return Result{Action: Refresh, Close: true, Notice: DeletedNotice}, nil
}

type SearchDialog struct {
	Name string
}

func NewSearch() *SearchDialog {
	return &SearchDialog{}
}

func (d *SearchDialog) Title() string       { return "Search Student" }
func (d *SearchDialog) Button() string      { return "Search" }
func (d *SearchDialog) Placeholder() string { return "Name" }

// Submit hands the name to the shell, which runs the filtered query.
func (d *SearchDialog) Submit() Result {
	return Result{Action: Search, Name: d.Name}
}
