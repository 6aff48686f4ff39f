package store

import (
	"context"
	"errors"
	"time"

	"github.com/nhle/taskplanner/internal/model"
)

// ErrNotFound is returned when a task or project id has no row.
var ErrNotFound = errors.New("not found")

// TaskFilter narrows ListTasks. Zero fields do not filter.
type TaskFilter struct {
	ProjectID   *int64     // tasks assigned to this project
	NoProject   bool       // tasks with no project
	Completed   *bool      // completion state
	DueFrom     *time.Time // due on or after, inclusive
	DueBefore   *time.Time // due strictly before
	Unscheduled bool       // tasks with no due date
	Query       string     // substring of the description
}

// Store defines the persistence interface for tasks and projects.
// Ids are assigned by the store on insert.
type Store interface {
	// === Tasks ===

	AddTask(ctx context.Context, draft model.TaskDraft) (model.Task, error)
	UpdateTask(ctx context.Context, task model.Task) (model.Task, error)
	DeleteTask(ctx context.Context, id int64) error
	GetTask(ctx context.Context, id int64) (model.Task, error)
	ListTasks(ctx context.Context, filter TaskFilter) ([]model.Task, error)
	FilterTasks(ctx context.Context, keep func(model.Task) bool) ([]model.Task, error)

	// === Projects ===

	AddProject(ctx context.Context, name string) (model.Project, error)
	GetProject(ctx context.Context, id int64) (model.Project, error)
	ListProjects(ctx context.Context) ([]model.Project, error)
}
