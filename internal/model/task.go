package model

import (
	"errors"
	"strings"
	"time"

	"github.com/nhle/taskplanner/internal/entity"
)

// ErrDescriptionRequired is returned when a task has a blank description.
var ErrDescriptionRequired = errors.New("description is required")

// Task is a single to-do item.
type Task struct {
	ID          ID         `json:"id"`
	Description string     `json:"description"`
	Completed   bool       `json:"completed"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	ProjectID   *int64     `json:"project_id,omitempty"`
}

// TaskDraft holds the user-supplied fields of a task that does not exist yet.
type TaskDraft struct {
	Description string
	DueDate     *time.Time
	ProjectID   *int64
}

// Validate checks the draft before any write is attempted.
func (d TaskDraft) Validate() error {
	if strings.TrimSpace(d.Description) == "" {
		return ErrDescriptionRequired
	}
	return nil
}

// Task returns a new, incomplete task built from the draft with the given id.
func (d TaskDraft) Task(id ID) Task {
	return Task{
		ID:          id,
		Description: strings.TrimSpace(d.Description),
		DueDate:     d.DueDate,
		ProjectID:   d.ProjectID,
	}
}

// InProject reports whether the task belongs to the project with store key id.
func (t Task) InProject(id int64) bool {
	return t.ProjectID != nil && *t.ProjectID == id
}

// TaskKey is the key function used to build a TaskMap.
func TaskKey(t Task) ID { return t.ID }

// TaskMap is an ordered, id-addressable collection of tasks.
type TaskMap = entity.Map[ID, Task]

// NewTaskMap builds a TaskMap preserving the order of tasks.
func NewTaskMap(tasks []Task) TaskMap {
	return entity.Build(tasks, TaskKey)
}

// SameDueDate reports whether two optional due dates denote the same instant.
func SameDueDate(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

// SameProject reports whether two optional project references are equal.
func SameProject(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
