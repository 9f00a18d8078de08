package manager

import (
	"github.com/harrisonrobin/tolist/pkg/model"
)

// Patch holds optional replacements for a task's fields. A nil field is
// left unchanged. A non-nil empty DueDate clears the due date.
type Patch struct {
	Title       *string
	Description *string
	Priority    *int
	DueDate     *string
}

func StringField(s string) *string { return &s }

func IntField(i int) *int { return &i }

// PatchFromForm builds a Patch the way the edit form submits it: empty
// text fields mean "keep the current value", the priority is always
// applied, and an empty due date never clears an existing one.
func PatchFromForm(title, description string, priority int, dueDate string) Patch {
	patch := Patch{Priority: IntField(priority)}
	if title != "" {
		patch.Title = StringField(title)
	}
	if description != "" {
		patch.Description = StringField(description)
	}
	if dueDate != "" {
		patch.DueDate = StringField(dueDate)
	}
	return patch
}

// Empty reports whether the patch supplies no field.
func (p Patch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Priority == nil && p.DueDate == nil
}

func (p Patch) apply(task model.Task) (model.Task, error) {
	updated := task.Clone()
	if p.DueDate != nil {
		if *p.DueDate == "" {
			updated.DueDate = nil
		} else {
			d, err := model.ParseDate(*p.DueDate)
			if err != nil {
				return task, err
			}
			updated.DueDate = &d
		}
	}
	if p.Title != nil {
		updated.Title = *p.Title
	}
	if p.Description != nil {
		updated.Description = *p.Description
	}
	if p.Priority != nil {
		updated.Priority = *p.Priority
	}
	return updated, nil
}
