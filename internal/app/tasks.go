package app

import (
	"context"
	"fmt"
	"log"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/taskplanner/internal/bucket"
	"github.com/nhle/taskplanner/internal/model"
	"github.com/nhle/taskplanner/internal/query"
)

// mutationResultMsg is sent after a write settled, successfully or not.
type mutationResultMsg struct {
	action string
	err    error
}

// mutate runs fn off the UI loop. The cache already shows the optimistic
// value by the time fn blocks on the store.
func (m Model) mutate(action string, fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		err := fn(context.Background())
		if err != nil {
			log.Printf("%s: %v", action, err)
		}
		return mutationResultMsg{action: action, err: err}
	}
}

// createKey picks the collection a new task is added to: the project page
// being shown, or the due-date group the draft falls into.
func (m Model) createKey(draft model.TaskDraft) string {
	if pid := m.taskList.ProjectID(); pid != nil {
		return query.ProjectTasksKey(*pid)
	}
	id, ok := bucket.Classify(m.handlers.Groups(), draft.DueDate)
	if !ok {
		return query.GroupKey(string(bucket.Unscheduled))
	}
	return query.GroupKey(string(id))
}

func (m Model) createTask(draft model.TaskDraft) tea.Cmd {
	h := m.handlers
	key := m.createKey(draft)
	return m.mutate("creating task", func(ctx context.Context) error {
		_, err := h.CreateTask(ctx, key, draft)
		return err
	})
}

func (m Model) createProject(name string) tea.Cmd {
	h := m.handlers
	return m.mutate("creating project", func(ctx context.Context) error {
		_, err := h.CreateProject(ctx, name)
		return err
	})
}

func (m Model) toggleTask(key string, task model.Task) tea.Cmd {
	h := m.handlers
	return m.mutate("updating task", func(ctx context.Context) error {
		_, err := h.ToggleCompleted(ctx, key, task)
		return err
	})
}

func (m Model) setDueDate(key string, task model.Task, due *time.Time) tea.Cmd {
	h := m.handlers
	return m.mutate("changing due date", func(ctx context.Context) error {
		_, err := h.SetDueDate(ctx, key, task, due)
		return err
	})
}

func (m Model) assignProject(key string, task model.Task, projectID *int64) tea.Cmd {
	h := m.handlers
	return m.mutate("moving task", func(ctx context.Context) error {
		_, err := h.AssignProject(ctx, key, task, projectID)
		return err
	})
}

func (m Model) editDescription(key string, task model.Task, description string) tea.Cmd {
	h := m.handlers
	return m.mutate("editing task", func(ctx context.Context) error {
		_, err := h.EditDescription(ctx, key, task, description)
		return err
	})
}

func (m Model) deleteTask(key string, task model.Task) tea.Cmd {
	h := m.handlers
	return m.mutate("deleting task", func(ctx context.Context) error {
		return h.DeleteTask(ctx, key, task)
	})
}

// statusFor formats a failed mutation for the status bar.
func statusFor(msg mutationResultMsg) string {
	if msg.err == nil {
		return ""
	}
	return fmt.Sprintf("Error %s: %v", msg.action, msg.err)
}
