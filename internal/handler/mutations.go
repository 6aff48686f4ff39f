package handler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nhle/taskplanner/internal/model"
	"github.com/nhle/taskplanner/internal/query"
)

// CreateProject adds a project to /projects under a pending id, stores it,
// then swaps the pending id for the stored one without moving it.
func (h *Handlers) CreateProject(ctx context.Context, name string) (model.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Project{}, model.ErrProjectNameRequired
	}

	key := query.ProjectsKey()
	pending := model.Project{ID: model.NewPendingID(), Name: name}
	var opts []query.MutateOption
	if cached, ok := h.cachedProjects(); ok {
		opts = append(opts, query.WithOptimistic(cached.Append(pending.ID, pending)))
	}

	var created model.Project
	_, err := query.MutateAs(ctx, h.cache, key, func(ctx context.Context) (model.ProjectMap, error) {
		p, err := h.store.AddProject(ctx, name)
		if err != nil {
			return model.ProjectMap{}, fmt.Errorf("creating project %q: %w", name, err)
		}
		created = p
		if cached, ok := h.cachedProjects(); ok {
			return cached.ReplaceKey(pending.ID, p.ID, p), nil
		}
		projects, err := h.listProjects(ctx)
		if err != nil {
			return model.ProjectMap{}, fmt.Errorf("reading projects after write: %w", err)
		}
		return projects, nil
	}, h.mutateOptions(opts...)...)
	if err != nil {
		return model.Project{}, err
	}
	return created, nil
}

// CreateTask adds a task to the collection at key. If the draft belongs
// there it is shown at once under a pending id.
func (h *Handlers) CreateTask(ctx context.Context, key string, draft model.TaskDraft) (model.Task, error) {
	if err := draft.Validate(); err != nil {
		return model.Task{}, err
	}
	if query.ParseKey(key).Kind == query.KindTask {
		return model.Task{}, fmt.Errorf("creating task under %s: %w", key, ErrUnsupportedKey)
	}

	pending := draft.Task(model.NewPendingID())
	var opts []query.MutateOption
	if cached, ok := h.cachedTasks(key); ok && h.Belongs(key, pending) {
		opts = append(opts, query.WithOptimistic(cached.Append(pending.ID, pending)))
	}

	var created model.Task
	_, err := query.MutateAs(ctx, h.cache, key, func(ctx context.Context) (model.TaskMap, error) {
		t, err := h.store.AddTask(ctx, draft)
		if err != nil {
			return model.TaskMap{}, fmt.Errorf("creating task: %w", err)
		}
		created = t
		return h.settleTasks(ctx, key, func(m model.TaskMap) model.TaskMap {
			if !h.Belongs(key, t) {
				return m.Remove(pending.ID)
			}
			return m.ReplaceKey(pending.ID, t.ID, t)
		})
	}, h.mutateOptions(opts...)...)
	if err != nil {
		return model.Task{}, err
	}

	h.revalidateTaskViews(ctx, key)
	return created, nil
}

// UpdateTask writes every field of task. In the collection at key the task
// is replaced in place, or removed if the change moved it out.
func (h *Handlers) UpdateTask(ctx context.Context, key string, task model.Task) (model.Task, error) {
	if task.ID.IsPending() {
		return model.Task{}, ErrPendingTask
	}
	if strings.TrimSpace(task.Description) == "" {
		return model.Task{}, model.ErrDescriptionRequired
	}

	var updated model.Task
	write := func(ctx context.Context) error {
		t, err := h.store.UpdateTask(ctx, task)
		if err != nil {
			return fmt.Errorf("updating task %s: %w", task.ID, err)
		}
		updated = t
		return nil
	}

	var err error
	if query.ParseKey(key).Kind == query.KindTask {
		_, err = query.MutateAs(ctx, h.cache, key, func(ctx context.Context) (model.Task, error) {
			if err := write(ctx); err != nil {
				return model.Task{}, err
			}
			return updated, nil
		}, h.mutateOptions(query.WithOptimistic(task))...)
	} else {
		var opts []query.MutateOption
		if cached, ok := h.cachedTasks(key); ok {
			opts = append(opts, query.WithOptimistic(h.place(key, cached, task)))
		}
		_, err = query.MutateAs(ctx, h.cache, key, func(ctx context.Context) (model.TaskMap, error) {
			if err := write(ctx); err != nil {
				return model.TaskMap{}, err
			}
			return h.settleTasks(ctx, key, func(m model.TaskMap) model.TaskMap {
				return h.place(key, m, updated)
			})
		}, h.mutateOptions(opts...)...)
	}
	if err != nil {
		return model.Task{}, err
	}

	h.revalidateTaskViews(ctx, key)
	return updated, nil
}

// ToggleCompleted flips the completion state of task.
func (h *Handlers) ToggleCompleted(ctx context.Context, key string, task model.Task) (model.Task, error) {
	task.Completed = !task.Completed
	return h.UpdateTask(ctx, key, task)
}

// SetDueDate changes the due date of task. A nil due unschedules it.
func (h *Handlers) SetDueDate(ctx context.Context, key string, task model.Task, due *time.Time) (model.Task, error) {
	task.DueDate = due
	return h.UpdateTask(ctx, key, task)
}

// AssignProject moves task to the project with store id projectID, or to
// no project when projectID is nil.
func (h *Handlers) AssignProject(ctx context.Context, key string, task model.Task, projectID *int64) (model.Task, error) {
	task.ProjectID = projectID
	return h.UpdateTask(ctx, key, task)
}

// EditDescription replaces the description of task.
func (h *Handlers) EditDescription(ctx context.Context, key string, task model.Task, description string) (model.Task, error) {
	task.Description = strings.TrimSpace(description)
	return h.UpdateTask(ctx, key, task)
}

// DeleteTask removes task from the collection at key and from the store.
func (h *Handlers) DeleteTask(ctx context.Context, key string, task model.Task) error {
	if task.ID.IsPending() {
		return ErrPendingTask
	}
	id, ok := task.ID.StoreID()
	if !ok {
		return fmt.Errorf("deleting task %s: %w", task.ID, ErrUnsupportedKey)
	}

	write := func(ctx context.Context) error {
		if err := h.store.DeleteTask(ctx, id); err != nil {
			return fmt.Errorf("deleting task %d: %w", id, err)
		}
		return nil
	}

	var err error
	if query.ParseKey(key).Kind == query.KindTask {
		_, err = h.cache.Mutate(ctx, key, func(ctx context.Context) (any, error) {
			return nil, write(ctx)
		}, h.mutateOptions(query.WithOptimistic(nil))...)
	} else {
		var opts []query.MutateOption
		if cached, ok := h.cachedTasks(key); ok {
			opts = append(opts, query.WithOptimistic(cached.Remove(task.ID)))
		}
		_, err = query.MutateAs(ctx, h.cache, key, func(ctx context.Context) (model.TaskMap, error) {
			if err := write(ctx); err != nil {
				return model.TaskMap{}, err
			}
			return h.settleTasks(ctx, key, func(m model.TaskMap) model.TaskMap {
				return m.Remove(task.ID)
			})
		}, h.mutateOptions(opts...)...)
	}
	if err != nil {
		return err
	}

	h.revalidateTaskViews(ctx, key)
	return nil
}
